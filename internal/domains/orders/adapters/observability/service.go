package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/wms-orders/internal/domains/orders/application"
	"github.com/Apurer/wms-orders/internal/domains/orders/domain"
	"github.com/Apurer/wms-orders/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/wms-orders/internal/domains/orders/adapters/observability/service"

// Service decorates the orders service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core orders service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*ports.CreateOrderResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.CreateOrder",
		trace.WithAttributes(
			attribute.Int("order.line_count", len(input.Lines)),
			attribute.Bool("order.vip", input.VIP),
			attribute.Bool("order.idempotent", input.IdempotencyKey != ""),
		))
	defer span.End()

	s.logInfo(ctx, "creating order", slog.Int("order.line_count", len(input.Lines)), slog.String("principal", input.Principal.Subject))
	result, err := s.inner.CreateOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.Int("order.line_count", len(input.Lines)))
	}
	span.SetAttributes(attribute.Int64("order.id", result.Order.ID), attribute.Bool("order.replayed", result.Replayed))
	if !result.Replayed {
		s.metrics.recordCreated(ctx, result.Order)
	}
	s.logInfo(ctx, "order created",
		slog.Int64("order.id", result.Order.ID),
		slog.String("status", string(result.Order.Status)),
		slog.Bool("replayed", result.Replayed))
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.GetOrder", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.Int64("order.id", id))
	}
	return result, nil
}

func (s *Service) ListOrders(ctx context.Context, filter ports.OrderFilter) ([]*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.ListOrders", trace.WithAttributes(attribute.String("order.status_filter", string(filter.Status))))
	defer span.End()

	result, err := s.inner.ListOrders(ctx, filter)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("order.count", len(result)))
	return result, nil
}

func (s *Service) MarkDispatched(ctx context.Context, orderID int64) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.MarkDispatched", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	s.logInfo(ctx, "dispatching order", slog.Int64("order.id", orderID))
	result, err := s.inner.MarkDispatched(ctx, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to dispatch order", slog.Int64("order.id", orderID))
	}
	s.metrics.recordDispatched(ctx)
	s.logInfo(ctx, "order dispatched", slog.Int64("order.id", result.ID))
	return result, nil
}

func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "OrdersService.DeleteOrder", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if err := s.inner.DeleteOrder(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete order", slog.Int64("order.id", id))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "order deleted", slog.Int64("order.id", id))
	return nil
}

func (s *Service) GenerateInvoice(ctx context.Context, orderID int64) (*domain.Invoice, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.GenerateInvoice", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	s.logInfo(ctx, "generating invoice", slog.Int64("order.id", orderID))
	result, err := s.inner.GenerateInvoice(ctx, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to generate invoice", slog.Int64("order.id", orderID))
	}
	span.SetAttributes(attribute.Int64("invoice.id", result.ID), attribute.String("invoice.total", result.Total.String()))
	s.metrics.recordInvoiced(ctx, result)
	s.logInfo(ctx, "invoice generated",
		slog.Int64("order.id", orderID),
		slog.Int64("invoice.id", result.ID),
		slog.String("invoice.total", result.Total.String()))
	return result, nil
}

func (s *Service) GetInvoice(ctx context.Context, id int64) (*domain.Invoice, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.GetInvoice", trace.WithAttributes(attribute.Int64("invoice.id", id)))
	defer span.End()

	result, err := s.inner.GetInvoice(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load invoice", slog.Int64("invoice.id", id))
	}
	return result, nil
}

func (s *Service) ListPendingInvoices(ctx context.Context) ([]*domain.Invoice, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.ListPendingInvoices")
	defer span.End()

	result, err := s.inner.ListPendingInvoices(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list invoices")
	}
	span.SetAttributes(attribute.Int("invoice.count", len(result)))
	return result, nil
}

func (s *Service) DeleteInvoice(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "OrdersService.DeleteInvoice", trace.WithAttributes(attribute.Int64("invoice.id", id)))
	defer span.End()

	if err := s.inner.DeleteInvoice(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete invoice", slog.Int64("invoice.id", id))
	}
	s.logInfo(ctx, "invoice deleted", slog.Int64("invoice.id", id))
	return nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	kind := application.KindOf(err)
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.kind", string(kind)))
	}
	if s.logger != nil {
		// Caller errors log at warn.
		level := slog.LevelWarn
		if kind == application.KindInternal || kind == application.KindUnavailable {
			level = slog.LevelError
		}
		attrs = append(attrs, slog.String("error", err.Error()), slog.String("error.kind", string(kind)))
		s.logger.LogAttrs(ctx, level, msg, attrs...)
	}
	return err
}

type serviceMetrics struct {
	ordersCreated     metric.Int64Counter
	ordersDispatched  metric.Int64Counter
	ordersDeleted     metric.Int64Counter
	invoicesGenerated metric.Int64Counter
	invoiceTotal      metric.Float64Histogram
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersCreated, _ := m.Int64Counter("orders.service.orders_created", metric.WithDescription("Number of orders created"))
	ordersDispatched, _ := m.Int64Counter("orders.service.orders_dispatched", metric.WithDescription("Number of orders dispatched"))
	ordersDeleted, _ := m.Int64Counter("orders.service.orders_deleted", metric.WithDescription("Number of orders deleted"))
	invoicesGenerated, _ := m.Int64Counter("orders.service.invoices_generated", metric.WithDescription("Number of invoices generated"))
	invoiceTotal, _ := m.Float64Histogram("orders.service.invoice_total", metric.WithDescription("Invoice totals"))
	return serviceMetrics{
		ordersCreated:     ordersCreated,
		ordersDispatched:  ordersDispatched,
		ordersDeleted:     ordersDeleted,
		invoicesGenerated: invoicesGenerated,
		invoiceTotal:      invoiceTotal,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context, order *domain.Order) {
	if m.ordersCreated != nil {
		m.ordersCreated.Add(ctx, 1, metric.WithAttributes(attribute.Bool("order.vip", order.VIP)))
	}
}

func (m serviceMetrics) recordDispatched(ctx context.Context) {
	if m.ordersDispatched != nil {
		m.ordersDispatched.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	if m.ordersDeleted != nil {
		m.ordersDeleted.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordInvoiced(ctx context.Context, invoice *domain.Invoice) {
	if m.invoicesGenerated != nil {
		m.invoicesGenerated.Add(ctx, 1)
	}
	if m.invoiceTotal != nil {
		// Histograms are float-only; the stored total stays exact.
		total, _ := invoice.Total.Float64()
		m.invoiceTotal.Record(ctx, total)
	}
}

var _ ports.Service = (*Service)(nil)
