package ports

import (
	"context"

	"github.com/Apurer/wms-orders/internal/domains/orders/domain"
)

// WorkflowOrchestrator runs invoice generation, durably when a workflow engine is available.
type WorkflowOrchestrator interface {
	GenerateInvoice(ctx context.Context, orderID int64) (*domain.Invoice, error)
}
