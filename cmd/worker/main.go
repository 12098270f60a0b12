package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/wms-orders/internal/app/api"
	invoiceactivities "github.com/Apurer/wms-orders/internal/durable/temporal/activities/invoicing"
	invoiceworkflows "github.com/Apurer/wms-orders/internal/durable/temporal/workflows/invoicing"
)

func main() {
	ctx := context.Background()
	const serviceName = "wms-orders-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := api.InitObservability(ctx, cfg, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	orders, cleanup, err := api.BuildOrders(ctx, cfg, instruments)
	if err != nil {
		logger.Error("failed to build orders service", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()
	if !orders.Durable {
		logger.Error("worker requires POSTGRES_DSN: in-memory orders are not shared with the API")
		os.Exit(1)
	}
	activities := invoiceactivities.NewActivities(orders.Service)

	temporalClient, err := api.DialTemporal(cfg, instruments, "temporal-worker")
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, invoiceworkflows.InvoiceGenerationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(invoiceworkflows.InvoiceGenerationWorkflow, workflow.RegisterOptions{Name: invoiceworkflows.InvoiceGenerationWorkflowName})
	w.RegisterActivityWithOptions(activities.GenerateInvoice, activity.RegisterOptions{Name: invoiceactivities.GenerateInvoiceActivityName})

	logger.Info("worker listening", slog.String("taskQueue", invoiceworkflows.InvoiceGenerationTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
