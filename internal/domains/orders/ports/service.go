package ports

import (
	"context"

	"github.com/Apurer/wms-orders/internal/domains/orders/domain"
	"github.com/Apurer/wms-orders/internal/shared/auth"
)

// CreateOrderInput carries a create_order request.
type CreateOrderInput struct {
	Principal      auth.Principal
	Lines          []domain.LineRequest
	VIP            bool
	IdempotencyKey string
}

// CreateOrderResult reports the order and whether it was replayed from an earlier request.
type CreateOrderResult struct {
	Order    *domain.Order
	Replayed bool
}

// Service defines the order/invoice workflow use cases exposed to adapters.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
	MarkDispatched(ctx context.Context, orderID int64) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id int64) error

	GenerateInvoice(ctx context.Context, orderID int64) (*domain.Invoice, error)
	GetInvoice(ctx context.Context, id int64) (*domain.Invoice, error)
	ListPendingInvoices(ctx context.Context) ([]*domain.Invoice, error)
	DeleteInvoice(ctx context.Context, id int64) error
}
