package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/wms-orders/internal/domains/orders/domain"
	invoiceactivities "github.com/Apurer/wms-orders/internal/durable/temporal/activities/invoicing"
)

// RunInvoiceSequence executes the invoicing activity exactly once; the use case is
// not retried on failure.
func RunInvoiceSequence(ctx workflow.Context, orderID int64) (*domain.Invoice, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("invoice sequence started", "orderId", orderID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var invoice domain.Invoice
	err := workflow.ExecuteActivity(ctx, invoiceactivities.GenerateInvoiceActivityName,
		invoiceactivities.GenerateInvoiceInput{OrderID: orderID}).Get(ctx, &invoice)
	if err != nil {
		logger.Error("invoice sequence failed", "orderId", orderID, "error", err)
		return nil, err
	}
	logger.Info("invoice sequence completed", "orderId", orderID, "invoiceId", invoice.ID)
	return &invoice, nil
}
