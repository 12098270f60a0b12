package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrMissingOrder = errors.New("invoice must reference a persisted order")

// Invoice is the billing snapshot of one order. Its total never changes after issue.
type Invoice struct {
	ID              int64
	OrderID         int64
	Total           decimal.Decimal
	ProductionOrder bool
	IssuedAt        time.Time
}

// IssueInvoice transitions the order to PackedForDispatch and returns the
// invoice carrying its total. The caller persists both together.
func IssueInvoice(order *Order, strict bool, issuedAt time.Time) (*Invoice, error) {
	if order == nil || order.ID <= 0 {
		return nil, ErrMissingOrder
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	if err := order.MarkPacked(strict); err != nil {
		return nil, err
	}
	return &Invoice{
		OrderID:  order.ID,
		Total:    order.Total(),
		IssuedAt: issuedAt.UTC(),
	}, nil
}
