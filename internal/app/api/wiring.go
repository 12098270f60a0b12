package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	inventoryclient "github.com/Apurer/wms-orders/internal/clients/http/inventory"
	inventoryadapter "github.com/Apurer/wms-orders/internal/domains/orders/adapters/external/inventory"
	ordersmemory "github.com/Apurer/wms-orders/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/wms-orders/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/wms-orders/internal/domains/orders/adapters/persistence/postgres"
	ordersworkflows "github.com/Apurer/wms-orders/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/wms-orders/internal/domains/orders/application"
	ordersports "github.com/Apurer/wms-orders/internal/domains/orders/ports"
	"github.com/Apurer/wms-orders/internal/platform/migrations"
	platformobservability "github.com/Apurer/wms-orders/internal/platform/observability"
	platformpostgres "github.com/Apurer/wms-orders/internal/platform/postgres"
)

// Orders bundles the wired orders bounded context shared by the API and the worker.
type Orders struct {
	Service     ordersports.Service
	Repository  ordersports.Repository
	Idempotency ordersports.IdempotencyStore
	// Durable is true when orders live in a store other processes share.
	Durable bool
}

// InitObservability configures slog and OpenTelemetry for a process.
func InitObservability(ctx context.Context, cfg Config, serviceName string) (*platformobservability.Instruments, func(context.Context) error, error) {
	return platformobservability.Init(ctx, platformobservability.Config{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		LogLevel:     cfg.LogLevel,
		OTLPEndpoint: cfg.OTLPEndpoint,
		OTLPInsecure: cfg.Environment == "local",
	})
}

// BuildOrders wires storage, the inventory resolver and the instrumented service.
// Without POSTGRES_DSN the in-memory adapters are used.
func BuildOrders(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*Orders, func(), error) {
	logger := instruments.EffectiveLogger()

	var (
		repo        ordersports.Repository
		idempotency ordersports.IdempotencyStore
		durable     bool
	)
	db, cleanup := platformpostgres.ConnectDSN(ctx, cfg.PostgresDSN, logger)
	if db != nil {
		if err := migrations.Run(db); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		repo = orderspostgres.NewRepository(db)
		idempotency = orderspostgres.NewIdempotencyStore(db)
		durable = true
		logger.Info("orders repository configured with postgres")
	} else {
		repo = ordersmemory.NewRepository()
		store := ordersmemory.NewIdempotencyStore()
		store.WithTTL(cfg.IdempotencyTTL)
		idempotency = store
	}

	resolver, err := buildResolver(cfg, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	core := ordersapp.NewService(
		repo,
		resolver,
		ordersapp.WithIdempotencyStore(idempotency),
		ordersapp.WithCreatorRole(cfg.CreatorRole),
		ordersapp.WithStrictInvoicing(cfg.StrictInvoicing),
		ordersapp.WithResolveConcurrency(cfg.ResolveConcurrency),
	)
	service := ordersobs.New(
		core,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	return &Orders{Service: service, Repository: repo, Idempotency: idempotency, Durable: durable}, cleanup, nil
}

// ChooseInvoiceWorkflows runs invoicing through Temporal only when the worker can see
// the same orders as the API. In-memory stores, disabled or unreachable Temporal fall
// back to inline invoicing. The returned func releases the Temporal client.
func ChooseInvoiceWorkflows(orders *Orders, logger *slog.Logger, dial func() (client.Client, error)) (ordersports.WorkflowOrchestrator, func()) {
	inline := ordersworkflows.NewInlineInvoiceWorkflows(orders.Service)
	if !orders.Durable {
		logger.Warn("orders are kept in memory, generating invoices inline instead of through Temporal")
		return inline, func() {}
	}
	temporalClient, err := dial()
	if err != nil {
		logger.Warn("Temporal workflows unavailable, generating invoices inline", slog.String("error", err.Error()))
		return inline, func() {}
	}
	logger.Info("Temporal workflows enabled")
	return ordersworkflows.NewTemporalInvoiceWorkflows(temporalClient), temporalClient.Close
}

// buildResolver returns nil when no inventory service is configured; order creation
// then fails as unavailable.
func buildResolver(cfg Config, logger *slog.Logger) (ordersports.ProductResolver, error) {
	if cfg.InventoryBaseURL == "" {
		logger.Warn("INVENTORY_BASE_URL not set, order creation will report the inventory as unavailable")
		return nil, nil
	}
	c, err := inventoryclient.NewClient(cfg.InventoryBaseURL, inventoryclient.NewHTTPClient(cfg.InventoryTimeout))
	if err != nil {
		return nil, fmt.Errorf("invalid INVENTORY_BASE_URL: %w", err)
	}
	logger.Info("inventory resolver configured", slog.String("baseURL", cfg.InventoryBaseURL))
	return inventoryadapter.NewResolver(c), nil
}

// DialTemporal connects to Temporal with tracing and structured logging.
func DialTemporal(cfg Config, instruments *platformobservability.Instruments, tracerName string) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer(tracerName)
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(instruments.EffectiveLogger()),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}
