package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates order progression. Values are the wire strings used by
// the warehouse portal.
type Status string

const (
	StatusVerified          Status = "Verificado"
	StatusPackedForDispatch Status = "Empacado x despachar"
	StatusDispatched        Status = "Despachado"
)

var (
	ErrNoLines            = errors.New("order must contain at least one line")
	ErrInvalidQuantity    = errors.New("quantity must be greater than zero")
	ErrInvalidProductCode = errors.New("product code must be greater than zero")
	ErrInvalidPrice       = errors.New("unit price must not be negative")
	ErrInvalidStatus      = errors.New("order status is invalid")
	ErrInvalidTransition  = errors.New("order status transition not allowed")
)

// priceScale matches the precision unit prices are stored with.
const priceScale = 2

// ProductSnapshot is the name and price of a product captured when the order is created.
type ProductSnapshot struct {
	Code      int64
	Name      string
	UnitPrice decimal.Decimal
}

// LineRequest is a requested product/quantity pair before resolution.
type LineRequest struct {
	ProductCode int64
	Quantity    int32
}

// Line is one product entry owned by an order. It never references live inventory.
type Line struct {
	ProductCode int64
	Name        string
	UnitPrice   decimal.Decimal
	Quantity    int32
}

// Subtotal returns unit price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt32(l.Quantity))
}

// Order models the warehouse order aggregate.
type Order struct {
	ID        int64
	CreatedOn time.Time
	VIP       bool
	Status    Status
	Lines     []Line
}

// ValidateRequests checks the raw input before any product lookups happen.
func ValidateRequests(requests []LineRequest) error {
	if len(requests) == 0 {
		return ErrNoLines
	}
	for _, req := range requests {
		if req.ProductCode <= 0 {
			return ErrInvalidProductCode
		}
		if req.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

// NewOrder builds a verified order from requested lines and their resolved snapshots.
// Lines keep the order of requests.
func NewOrder(requests []LineRequest, snapshots map[int64]ProductSnapshot, vip bool, createdOn time.Time) (*Order, error) {
	if err := ValidateRequests(requests); err != nil {
		return nil, err
	}
	lines := make([]Line, 0, len(requests))
	for _, req := range requests {
		snap, ok := snapshots[req.ProductCode]
		if !ok {
			return nil, ErrInvalidProductCode
		}
		if snap.UnitPrice.IsNegative() {
			return nil, ErrInvalidPrice
		}
		lines = append(lines, Line{
			ProductCode: req.ProductCode,
			Name:        snap.Name,
			UnitPrice:   snap.UnitPrice.Round(priceScale),
			Quantity:    req.Quantity,
		})
	}
	y, m, d := createdOn.Date()
	return &Order{
		CreatedOn: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		VIP:       vip,
		Status:    StatusVerified,
		Lines:     lines,
	}, nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if len(o.Lines) == 0 {
		return ErrNoLines
	}
	for _, line := range o.Lines {
		if line.ProductCode <= 0 {
			return ErrInvalidProductCode
		}
		if line.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if line.UnitPrice.IsNegative() {
			return ErrInvalidPrice
		}
	}
	if !IsValidStatus(o.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// Total sums the line subtotals.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// MarkPacked moves the order to PackedForDispatch. With strict set, only
// verified orders may move. Without it any order is accepted, but a
// dispatched order keeps its terminal status.
func (o *Order) MarkPacked(strict bool) error {
	if strict && o.Status != StatusVerified {
		return ErrInvalidTransition
	}
	if o.Status == StatusDispatched {
		return nil
	}
	o.Status = StatusPackedForDispatch
	return nil
}

// MarkDispatched moves a packed order to its terminal state.
func (o *Order) MarkDispatched() error {
	if o.Status != StatusPackedForDispatch {
		return ErrInvalidTransition
	}
	o.Status = StatusDispatched
	return nil
}

// Clone returns a deep copy so adapters never share line slices.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Lines = append([]Line(nil), o.Lines...)
	return &clone
}

// IsValidStatus reports whether status is one of the known states.
func IsValidStatus(status Status) bool {
	switch status {
	case StatusVerified, StatusPackedForDispatch, StatusDispatched:
		return true
	default:
		return false
	}
}
