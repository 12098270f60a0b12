package invoicing

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/wms-orders/internal/domains/orders/application"
	"github.com/Apurer/wms-orders/internal/domains/orders/domain"
	"github.com/Apurer/wms-orders/internal/domains/orders/ports"
)

const (
	// GenerateInvoiceActivityName issues the invoice and moves the order to PackedForDispatch.
	GenerateInvoiceActivityName = "orders.activities.GenerateInvoice"
)

// GenerateInvoiceInput identifies the order to invoice.
type GenerateInvoiceInput struct {
	OrderID int64
}

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service ports.Service
}

// NewActivities wires the orders service into the Temporal activities bundle.
func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// GenerateInvoice runs the invoicing use case. Failures are returned as
// non-retryable application errors typed with their kind.
func (a *Activities) GenerateInvoice(ctx context.Context, input GenerateInvoiceInput) (*domain.Invoice, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("invoice activity not initialized", "orderId", input.OrderID)
		return nil, errors.New("invoice activity not initialized")
	}
	logger.Info("GenerateInvoice activity started", "orderId", input.OrderID)
	invoice, err := a.service.GenerateInvoice(ctx, input.OrderID)
	if err != nil {
		kind := application.KindOf(err)
		logger.Error("GenerateInvoice activity failed", "orderId", input.OrderID, "kind", string(kind), "error", err)
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), string(kind), nil)
	}
	logger.Info("GenerateInvoice activity completed", "orderId", input.OrderID, "invoiceId", invoice.ID)
	return invoice, nil
}
