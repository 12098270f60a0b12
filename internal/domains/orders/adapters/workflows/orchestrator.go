package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/wms-orders/internal/domains/orders/application"
	"github.com/Apurer/wms-orders/internal/domains/orders/domain"
	"github.com/Apurer/wms-orders/internal/domains/orders/ports"
	invoiceworkflows "github.com/Apurer/wms-orders/internal/durable/temporal/workflows/invoicing"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalInvoiceWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineInvoiceWorkflows)(nil)
)

// TemporalInvoiceWorkflows starts invoice workflows on a Temporal cluster.
type TemporalInvoiceWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalInvoiceWorkflows wires a Temporal client into the orchestrator.
func NewTemporalInvoiceWorkflows(c client.Client) *TemporalInvoiceWorkflows {
	return &TemporalInvoiceWorkflows{client: c, taskQueue: invoiceworkflows.InvoiceGenerationTaskQueue}
}

// GenerateInvoice runs the invoicing workflow for the order and waits for its result.
// A workflow already running for the same order is reported as a conflict.
func (o *TemporalInvoiceWorkflows) GenerateInvoice(ctx context.Context, orderID int64) (*domain.Invoice, error) {
	if o == nil || o.client == nil {
		return nil, fmt.Errorf("%w: temporal invoice workflows not configured", application.ErrUnavailable)
	}
	if orderID <= 0 {
		return nil, fmt.Errorf("%w: %w", application.ErrInvalidInput, domain.ErrMissingOrder)
	}
	options := client.StartWorkflowOptions{
		ID:                                       invoiceworkflows.WorkflowID(orderID),
		TaskQueue:                                o.taskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		invoiceworkflows.InvoiceGenerationWorkflow,
		invoiceworkflows.InvoiceGenerationWorkflowInput{OrderID: orderID, TraceID: workflowTraceComponent(ctx)},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return nil, fmt.Errorf("%w: invoice for order %d is already being generated", application.ErrConflict, orderID)
		}
		return nil, fmt.Errorf("%w: %w", application.ErrUnavailable, err)
	}
	var invoice domain.Invoice
	if err := run.Get(ctx, &invoice); err != nil {
		return nil, unwrapWorkflowError(err)
	}
	return &invoice, nil
}

// InlineInvoiceWorkflows executes the service directly without Temporal, useful for tests or dev fallbacks.
type InlineInvoiceWorkflows struct {
	service ports.Service
}

// NewInlineInvoiceWorkflows wraps the orders service for synchronous execution.
func NewInlineInvoiceWorkflows(service ports.Service) *InlineInvoiceWorkflows {
	return &InlineInvoiceWorkflows{service: service}
}

// GenerateInvoice delegates to the application service without durable orchestration.
func (o *InlineInvoiceWorkflows) GenerateInvoice(ctx context.Context, orderID int64) (*domain.Invoice, error) {
	if o == nil || o.service == nil {
		return nil, fmt.Errorf("%w: inline invoice workflows not configured", application.ErrUnavailable)
	}
	return o.service.GenerateInvoice(ctx, orderID)
}

// unwrapWorkflowError restores the application error kind carried by the activity failure.
func unwrapWorkflowError(err error) error {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		return application.ErrorForKind(application.Kind(appErr.Type()), appErr.Error())
	}
	var timeoutErr *temporal.TimeoutError
	if errors.As(err, &timeoutErr) {
		return fmt.Errorf("%w: %w", application.ErrUnavailable, err)
	}
	return err
}

func workflowTraceComponent(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if spanCtx := span.SpanContext(); spanCtx.IsValid() && spanCtx.TraceID().IsValid() {
		return spanCtx.TraceID().String()
	}
	return "fallback-" + uuid.NewString()
}
