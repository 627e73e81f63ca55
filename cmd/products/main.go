package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"product-catalog/internal/config"
	"product-catalog/internal/products"
	producthttp "product-catalog/internal/products/http"
	"product-catalog/internal/products/messaging"
	"product-catalog/internal/products/repository"
	"product-catalog/internal/products/service"
	"product-catalog/internal/telemetry"

	_ "product-catalog/docs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	metricCreatedTotal = "products_created_total"
	metricUpdatedTotal = "products_updated_total"
	metricDeletedTotal = "products_deleted_total"
)

type eventPublisher interface {
	service.Publisher
	Close() error
}

// @title        Product Catalog API
// @version      1.0
// @description  Product catalog CRUD service with change events.
// @host         localhost:8080
// @BasePath     /
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadProducts()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	os.Exit(run(cfg, logger))
}

func run(cfg config.Products, logger *slog.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.InitTracing(ctx, cfg.ServiceName, cfg.OTLPEndpoint, logger)
	if err != nil {
		logger.Error("init tracing", "error", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error("tracer shutdown failed", "error", err)
		}
	}()

	store, err := repository.Open(ctx, cfg.Storage)
	if err != nil {
		logger.Error("open storage", "driver", cfg.Storage.Driver, "error", err)
		return 1
	}
	defer store.Close()
	logger.Info("storage ready", "driver", cfg.Storage.Driver)

	publisher, closeBroker, err := openPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		logger.Error("init publisher", "error", err)
		return 1
	}
	defer closeBroker()
	defer publisher.Close()

	counters := service.Counters{
		Created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricCreatedTotal,
			Help: "Total number of products created",
		}),
		Updated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricUpdatedTotal,
			Help: "Total number of products updated",
		}),
		Deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricDeletedTotal,
			Help: "Total number of products deleted",
		}),
	}
	prometheus.MustRegister(counters.Created, counters.Updated, counters.Deleted)

	svc := service.New(store, publisher, logger, counters)
	handler := producthttp.NewHandler(svc, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(producthttp.RequestIDMiddleware())
	router.Use(producthttp.AccessLogMiddleware(logger))
	producthttp.RegisterRoutes(router, handler, store)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(router, cfg.ServiceName),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("products service started", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("http server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		return 1
	}
	logger.Info("products service stopped")
	return 0
}

// openPublisher connects to RabbitMQ when url is set. Without a broker,
// events are dropped.
func openPublisher(url string, logger *slog.Logger) (eventPublisher, func(), error) {
	if url == "" {
		logger.Warn("RABBITMQ_URL not set, product events will not be published")
		return messaging.NewNopPublisher(logger), func() {}, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}

	publisher, err := messaging.NewRabbitPublisher(conn, products.EventsQueue)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	return publisher, func() { _ = conn.Close() }, nil
}
