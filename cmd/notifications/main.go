package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"product-catalog/internal/config"
	"product-catalog/internal/notifications"
	"product-catalog/internal/products"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadNotifications()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	logger = newLogger(os.Stdout, cfg.LogLevel)

	os.Exit(run(cfg, logger))
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func run(cfg config.Notifications, logger *slog.Logger) int {
	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("connect rabbitmq", "error", err)
		return 1
	}
	defer conn.Close()

	consumer, err := notifications.NewConsumer(conn, products.EventsQueue, notifications.LogHandler(logger), logger)
	if err != nil {
		logger.Error("init consumer", "error", err)
		return 1
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Listen(gctx)
	})
	g.Go(func() error {
		select {
		case amqpErr, ok := <-connClosed:
			if ok && amqpErr != nil {
				return fmt.Errorf("rabbitmq connection lost: %w", amqpErr)
			}
			return nil
		case <-gctx.Done():
			return nil
		}
	})

	logger.Info("notifications service started", "queue", products.EventsQueue)

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("consumer failed", "error", err)
			return 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		select {
		case err := <-done:
			if err != nil {
				logger.Error("consumer stop failed", "error", err)
				return 1
			}
		case <-time.After(cfg.ShutdownTimeout):
			logger.Warn("consumer shutdown timeout reached")
		}
	}

	logger.Info("notifications service stopped")
	return 0
}
