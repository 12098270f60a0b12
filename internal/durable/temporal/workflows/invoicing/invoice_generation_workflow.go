package invoicing

import (
	"fmt"

	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/wms-orders/internal/domains/orders/domain"
	"github.com/Apurer/wms-orders/internal/durable/temporal/sequences"
)

const (
	// InvoiceGenerationWorkflowName is the public identifier for registering the workflow.
	InvoiceGenerationWorkflowName = "orders.workflows.InvoiceGeneration"
	// InvoiceGenerationTaskQueue is the queue consumed by the worker processing invoice workflows.
	InvoiceGenerationTaskQueue = "ORDER_INVOICING"
)

// InvoiceGenerationWorkflowInput captures the order to invoice.
type InvoiceGenerationWorkflowInput struct {
	OrderID int64
	TraceID string
}

// WorkflowID is deterministic per order so two concurrent invoicing requests cannot both run.
func WorkflowID(orderID int64) string {
	return fmt.Sprintf("invoice-order-%d", orderID)
}

// InvoiceGenerationWorkflow issues the invoice for one order.
func InvoiceGenerationWorkflow(ctx workflow.Context, input InvoiceGenerationWorkflowInput) (*domain.Invoice, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("InvoiceGenerationWorkflow started", withTraceID(input.TraceID, "orderId", input.OrderID)...)
	invoice, err := sequences.RunInvoiceSequence(ctx, input.OrderID)
	if err != nil {
		logger.Error("InvoiceGenerationWorkflow failed", withTraceID(input.TraceID, "orderId", input.OrderID, "error", err)...)
		return nil, err
	}
	logger.Info("InvoiceGenerationWorkflow completed", withTraceID(input.TraceID, "orderId", input.OrderID, "invoiceId", invoice.ID)...)
	return invoice, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
