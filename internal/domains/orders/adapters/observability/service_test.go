package observability

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Apurer/wms-orders/internal/domains/orders/application"
	"github.com/Apurer/wms-orders/internal/domains/orders/domain"
	"github.com/Apurer/wms-orders/internal/domains/orders/ports"
)

// stubService answers invoice calls; the embedded port panics on anything else.
type stubService struct {
	ports.Service
	invoice *domain.Invoice
	err     error
}

func (s *stubService) GenerateInvoice(_ context.Context, orderID int64) (*domain.Invoice, error) {
	if s.err != nil {
		return nil, s.err
	}
	invoice := *s.invoice
	invoice.OrderID = orderID
	return &invoice, nil
}

type harness struct {
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	logs   *bytes.Buffer
}

func newDecorated(t *testing.T, inner ports.Service) (ports.Service, harness) {
	t.Helper()
	h := harness{
		spans:  tracetest.NewSpanRecorder(),
		reader: sdkmetric.NewManualReader(),
		logs:   &bytes.Buffer{},
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(h.spans))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(h.reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})
	svc := New(inner,
		WithTracer(tp.Tracer("test")),
		WithMeter(mp.Meter("test")),
		WithLogger(slog.New(slog.NewJSONHandler(h.logs, nil))),
	)
	return svc, h
}

func TestGenerateInvoiceRecordsSpanAndCounter(t *testing.T) {
	inner := &stubService{invoice: &domain.Invoice{
		ID:       11,
		Total:    decimal.RequireFromString("83999.97"),
		IssuedAt: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
	}}
	svc, h := newDecorated(t, inner)

	invoice, err := svc.GenerateInvoice(context.Background(), 4)
	require.NoError(t, err)
	require.Equal(t, int64(4), invoice.OrderID)

	ended := h.spans.Ended()
	require.Len(t, ended, 1)
	require.Equal(t, "OrdersService.GenerateInvoice", ended[0].Name())
	require.Equal(t, codes.Unset, ended[0].Status().Code)

	var rm metricdata.ResourceMetrics
	require.NoError(t, h.reader.Collect(context.Background(), &rm))
	require.Equal(t, int64(1), counterValue(t, rm, "orders.service.invoices_generated"))
	require.Contains(t, h.logs.String(), `"invoice.total":"83999.97"`)
}

func TestGenerateInvoiceFailureMarksSpanWithKind(t *testing.T) {
	inner := &stubService{err: fmt.Errorf("%w: order 4 already invoiced", application.ErrConflict)}
	svc, h := newDecorated(t, inner)

	_, err := svc.GenerateInvoice(context.Background(), 4)
	require.True(t, errors.Is(err, application.ErrConflict))

	ended := h.spans.Ended()
	require.Len(t, ended, 1)
	require.Equal(t, codes.Error, ended[0].Status().Code)
	var kind string
	for _, attr := range ended[0].Attributes() {
		if attr.Key == "error.kind" {
			kind = attr.Value.AsString()
		}
	}
	require.Equal(t, string(application.KindConflict), kind)
	require.Contains(t, h.logs.String(), `"level":"WARN"`)
}

func TestNewWithoutOptionsIsUsable(t *testing.T) {
	inner := &stubService{err: errors.New("boom")}
	svc := New(inner)

	_, err := svc.GenerateInvoice(context.Background(), 1)
	require.EqualError(t, err, "boom")
}

func counterValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	t.Fatalf("metric %s not collected", name)
	return 0
}
