package common

import (
	"context"
	"log"
	"strings"

	"payment-settlement-go/internal/database"
	"payment-settlement-go/internal/models"
	"payment-settlement-go/internal/payment"
	"payment-settlement-go/internal/processor"
	"payment-settlement-go/internal/webhook"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Try to load .env file - if it doesn't exist, that's okay
	// Environment variables can be set via other means (shell export, docker, etc.)
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	DbService      *database.Service
	PaymentService *payment.Service
	Dispatcher     *webhook.Dispatcher
	Processor      *processor.SettlementProcessor
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	dispatcher := webhook.NewDispatcher(dbService, cfg.Webhook.RequestTimeout)
	paymentService := payment.NewService(dbService)

	policy := processor.NewWeightedOutcomePolicy(cfg.Processor.SuccessRate, nil)
	settlementProcessor := processor.NewSettlementProcessor(processor.SettlementProcessorConfig{
		DbService:     dbService,
		Dispatcher:    dispatcher,
		Policy:        policy,
		SweepInterval: cfg.Processor.SweepInterval,
	})

	return &Services{
		DbService:      dbService,
		PaymentService: paymentService,
		Dispatcher:     dispatcher,
		Processor:      settlementProcessor,
	}, nil
}

// InitializeDatabaseOnly initializes just the database service
// Useful for read-only operations like querying balances
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return dbService, nil
}

func (cs *Services) Close() {
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
