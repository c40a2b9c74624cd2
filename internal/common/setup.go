package common

import (
	"context"
	"fmt"
	"log"
	"strings"

	"bank-cards-go/internal/api"
	"bank-cards-go/internal/codec"
	"bank-cards-go/internal/database"
	"bank-cards-go/internal/models"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	DbService   *database.Service
	CardService *api.CardService
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

// InitializeServices builds the card number codec from the configured key,
// opens the database behind it and wraps both in the card service.
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	cardCodec, err := codec.New(cfg.Codec.EncryptionKey, codec.WithKeyId(cfg.Codec.KeyId))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize card number codec: %w", err)
	}
	zap.L().Info("Card number codec ready", zap.String("key_id", cardCodec.KeyId()))

	dbService, err := database.NewService(ctx, cfg.Database, cardCodec)
	if err != nil {
		return nil, err
	}

	return &Services{
		DbService:   dbService,
		CardService: api.NewCardService(dbService),
	}, nil
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
