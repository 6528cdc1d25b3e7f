package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopmesh/order-svc/internal/dal/inventory"
	"github.com/shopmesh/order-svc/internal/dal/postgres"
	"github.com/shopmesh/order-svc/internal/dal/rabbitmq"
	outboxrepo "github.com/shopmesh/order-svc/internal/dal/repositories/outbox/postgres"
	stockjobrepo "github.com/shopmesh/order-svc/internal/dal/repositories/stockjob/postgres"
	"github.com/shopmesh/order-svc/internal/otel"
	"github.com/shopmesh/order-svc/internal/service/services/checkoutsvc"
	"github.com/shopmesh/order-svc/internal/service/services/lifecyclesvc"
	"github.com/shopmesh/order-svc/internal/service/services/ordersvc"
	"github.com/shopmesh/order-svc/internal/service/services/reconciler"
	httptransport "github.com/shopmesh/order-svc/internal/transport/http"
	outboxworker "github.com/shopmesh/order-svc/internal/worker/outbox"
	"github.com/shopmesh/order-svc/internal/worker/stockretry"
	"github.com/spf13/viper"
)

// App represents the application.
type App struct {
	transport      *httptransport.HTTPTransport
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	otelController *otel.OtelController
	outboxWorker   *outboxworker.Worker
	stockWorker    *stockretry.Worker
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()

	gateway := inventory.NewClient(inventory.Config{
		BaseURL:      viper.GetString("inventory.base_url"),
		Timeout:      time.Duration(viper.GetInt("inventory.timeout_seconds")) * time.Second,
		MaxRetries:   viper.GetUint64("inventory.max_retries"),
		RetryBackoff: time.Duration(viper.GetInt("inventory.retry_backoff_ms")) * time.Millisecond,
	})

	stockJobs := stockjobrepo.NewStockJobRepository(postgresClient.Pool())

	stockReconciler := reconciler.MustNewReconciler(
		reconciler.WithInventoryGateway(gateway),
		reconciler.WithStockJobRepository(stockJobs),
	)

	checkoutSvc := checkoutsvc.MustNewCheckoutService(
		checkoutsvc.WithPostgresClient(postgresClient),
		checkoutsvc.WithInventoryGateway(gateway),
		checkoutsvc.WithReconciler(stockReconciler),
	)

	lifecycleSvc := lifecyclesvc.MustNewLifecycleService(
		lifecyclesvc.WithPostgresClient(postgresClient),
		lifecyclesvc.WithReconciler(stockReconciler),
	)

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
	)

	transport := httptransport.NewHTTPTransport(checkoutSvc, lifecycleSvc, orderSvc)
	transport.RegisterRoutes()

	return &App{
		transport:      transport,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
		otelController: otelController,
		outboxWorker:   outboxworker.NewWorker(outboxrepo.NewOutboxRepository(postgresClient.Pool()), rabbitClient),
		stockWorker:    stockretry.NewWorker(stockJobs, gateway),
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())

	go a.outboxWorker.Start(workerCtx)
	go a.stockWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	cancelWorkers()
	a.outboxWorker.Stop()
	a.stockWorker.Stop()

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
