package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/backend-labs/ordering/internal/dal/catalog"
	"github.com/corray333/backend-labs/ordering/internal/dal/orderstore"
	"github.com/corray333/backend-labs/ordering/internal/dal/postgres"
	"github.com/corray333/backend-labs/ordering/internal/dal/rabbitmq"
	outboxrepo "github.com/corray333/backend-labs/ordering/internal/dal/repositories/outbox/postgres"
	"github.com/corray333/backend-labs/ordering/internal/otel"
	"github.com/corray333/backend-labs/ordering/internal/service/services/ordersvc"
	httptransport "github.com/corray333/backend-labs/ordering/internal/transport/http"
	"github.com/corray333/backend-labs/ordering/internal/worker/outbox"
	"github.com/corray333/backend-labs/ordering/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
)

// App represents the application.
type App struct {
	otelController *otel.OtelController
	transport      *httptransport.HTTPTransport
	outboxWorker   *outbox.Worker
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	postgresClient := postgres.MustNewClient()

	ordersQueue := viper.GetString("rabbitmq.orders_queue")
	rabbitClient := rabbitmq.MustNewClient()
	rabbitClient.MustDeclareQueue(ordersQueue)

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithOrderStore(orderstore.NewStore(postgresClient, ordersQueue)),
		ordersvc.WithProductLookup(catalog.MustNewClient()),
		ordersvc.WithLookupConcurrency(viper.GetInt("catalog.lookup_concurrency")),
		ordersvc.WithRecorder(metrics.NewOrderMetrics(registry, "orders")),
	)

	transport := httptransport.NewHTTPTransport(orderSvc, registry, registry)
	transport.RegisterRoutes()

	outboxWorker := outbox.NewWorker(
		outboxrepo.NewOutboxRepository(postgresClient.Pool()),
		rabbitClient,
	)

	return &App{
		otelController: otelController,
		transport:      transport,
		outboxWorker:   outboxWorker,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		a.outboxWorker.Start(workerCtx)
	}()

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	cancelWorker()
	<-workerDone

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(ctx); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
