// Command moneywise-worker consumes transaction events from the message
// queue and maintains the audit trail.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"moneywise/internal/amqp"
	"moneywise/internal/api"
	"moneywise/internal/config"
	applog "moneywise/internal/log"
	"moneywise/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: "worker"})
	applog.SetDefault(logger)

	logger.Info("Starting moneywise-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	client, err := api.NewClient(cfg.ServerURL)
	if err != nil {
		logger.Error("Failed to initialize API client", "error", err, "url", cfg.ServerURL)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	auditLog, err := os.OpenFile(cfg.AuditLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logger.Error("Failed to open audit log", "error", err, "path", cfg.AuditLogPath)
		os.Exit(1)
	}
	defer auditLog.Close()

	auditWorker := worker.NewAuditWorker(client, auditLog)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Consuming transaction events",
		"queue", cfg.AMQPQueue,
		"audit_log", cfg.AuditLogPath)

	err = amqpClient.ConsumeTransactionEvents(ctx, func(event *amqp.TransactionEvent) error {
		return auditWorker.HandleTransactionEvent(ctx, event)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Event consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped")
}
