package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bank-cards-go/internal/codec"
	"bank-cards-go/internal/models"
	"bank-cards-go/internal/store"

	"github.com/shopspring/decimal"
)

const testEncryptionKey = "test-master-key-0123456789abcdef"

func testConfig(t *testing.T) models.DatabaseConfig {
	return models.DatabaseConfig{
		Path:            filepath.Join(t.TempDir(), "cards.db"),
		MaxOpenConns:    8,
		MaxIdleConns:    4,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
		PingTimeout:     5 * time.Second,
		BusyTimeout:     5 * time.Second,
		ConflictRetries: 3,
	}
}

func setupTestService(t *testing.T) (*Service, func()) {
	t.Helper()

	c, err := codec.New(testEncryptionKey)
	if err != nil {
		t.Fatalf("Failed to create codec: %v", err)
	}

	service, err := NewService(context.Background(), testConfig(t), c)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}

	cleanup := func() {
		service.Close()
	}
	return service, cleanup
}

func createTestUser(t *testing.T, s *Service, username string, role models.Role) *models.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), store.CreateUserParams{Username: username, Role: role})
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

func createTestCard(t *testing.T, s *Service, userId, number, balance string) *models.Card {
	t.Helper()
	card, err := s.CreateCard(context.Background(), store.CreateCardParams{
		UserId:         userId,
		CardNumber:     number,
		Owner:          "Test Holder",
		ExpiryDate:     time.Now().AddDate(2, 0, 0),
		InitialBalance: decimal.RequireFromString(balance),
	})
	if err != nil {
		t.Fatalf("Failed to create card %s: %v", number, err)
	}
	return card
}

func mustBalance(t *testing.T, s *Service, cardId, want string) {
	t.Helper()
	card, err := s.GetCard(context.Background(), cardId)
	if err != nil {
		t.Fatalf("GetCard failed: %v", err)
	}
	if !card.Balance.Equal(decimal.RequireFromString(want)) {
		t.Errorf("Expected balance %s for card %s, got %s", want, cardId, card.Balance.StringFixed(2))
	}
}

func TestNewService_ValidatesConfig(t *testing.T) {
	c, err := codec.New(testEncryptionKey)
	if err != nil {
		t.Fatalf("Failed to create codec: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(cfg *models.DatabaseConfig)
	}{
		{"empty path", func(cfg *models.DatabaseConfig) { cfg.Path = "" }},
		{"zero open conns", func(cfg *models.DatabaseConfig) { cfg.MaxOpenConns = 0 }},
		{"negative idle conns", func(cfg *models.DatabaseConfig) { cfg.MaxIdleConns = -1 }},
		{"zero ping timeout", func(cfg *models.DatabaseConfig) { cfg.PingTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(&cfg)
			if _, err := NewService(context.Background(), cfg, c); err == nil {
				t.Error("Expected configuration error")
			}
		})
	}

	if _, err := NewService(context.Background(), testConfig(t), nil); err == nil {
		t.Error("Expected error without codec")
	}
}

func TestDataSourceName(t *testing.T) {
	dsn := dataSourceName(models.DatabaseConfig{Path: "cards.db", BusyTimeout: 2 * time.Second})
	want := "cards.db?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_txlock=immediate&_busy_timeout=2000"
	if dsn != want {
		t.Errorf("Expected %q, got %q", want, dsn)
	}

	dsn = dataSourceName(models.DatabaseConfig{Path: "file:cards.db?cache=shared"})
	if dsn[:len("file:cards.db?cache=shared&")] != "file:cards.db?cache=shared&" {
		t.Errorf("Expected existing query to be extended, got %q", dsn)
	}
}
