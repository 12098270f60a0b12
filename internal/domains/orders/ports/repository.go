package ports

import (
	"context"
	"errors"

	"github.com/Apurer/wms-orders/internal/domains/orders/domain"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrInvoiceExists   = errors.New("order already has an invoice")
	ErrOrderProtected  = errors.New("order is referenced by an invoice")
)

// OrderFilter narrows order listings. Zero values match everything.
type OrderFilter struct {
	Status domain.Status
	IDs    []int64
}

// InvoiceFilter narrows invoice listings. Zero values match everything.
type InvoiceFilter struct {
	OrderIDs []int64
}

// IssueFunc derives an invoice from a loaded order, mutating the order's status.
type IssueFunc func(order *domain.Order) (*domain.Invoice, error)

// MutateFunc changes a loaded order in place.
type MutateFunc func(order *domain.Order) error

// Repository persists orders with their lines and the invoices issued for them.
// Every method is a single atomic unit against the store.
type Repository interface {
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
	// UpdateOrder loads the order, applies mutate and persists the status, all in one transaction.
	UpdateOrder(ctx context.Context, id int64, mutate MutateFunc) (*domain.Order, error)
	// DeleteOrder removes the order and its lines. Fails with ErrOrderProtected while an invoice references it.
	DeleteOrder(ctx context.Context, id int64) error

	// IssueInvoice loads the order, calls issue and stores the invoice together with
	// the order's new status. ErrInvoiceExists is returned when the order was already invoiced.
	IssueInvoice(ctx context.Context, orderID int64, issue IssueFunc) (*domain.Invoice, error)
	GetInvoice(ctx context.Context, id int64) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]*domain.Invoice, error)
	DeleteInvoice(ctx context.Context, id int64) error
}
