package expiry

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bank-cards-go/internal/codec"
	"bank-cards-go/internal/database"
	"bank-cards-go/internal/models"
	"bank-cards-go/internal/store"

	"github.com/shopspring/decimal"
)

func setupTestStore(t *testing.T) (*database.Service, func()) {
	t.Helper()
	c, err := codec.New("expiry-test-master-key-0123456789abcdef")
	if err != nil {
		t.Fatalf("Failed to create codec: %v", err)
	}
	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "expiry.db"),
		MaxOpenConns: 4,
		PingTimeout:  5 * time.Second,
	}, c)
	if err != nil {
		t.Fatalf("Failed to create database service: %v", err)
	}
	return db, db.Close
}

func TestNewSweeper_Validation(t *testing.T) {
	db, cleanup := setupTestStore(t)
	defer cleanup()

	if _, err := NewSweeper(SweeperConfig{}); err == nil {
		t.Error("Expected error for missing store")
	}
	if _, err := NewSweeper(SweeperConfig{Store: db, Schedule: "every tuesday"}); err == nil {
		t.Error("Expected error for invalid schedule")
	}
	s, err := NewSweeper(SweeperConfig{Store: db})
	if err != nil {
		t.Fatalf("NewSweeper failed: %v", err)
	}
	if s.schedule != DefaultSchedule {
		t.Errorf("Expected default schedule, got %s", s.schedule)
	}
}

func TestSweeper_RunOnce(t *testing.T) {
	db, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	user, err := db.CreateUser(ctx, store.CreateUserParams{Username: "alice", Role: models.RoleUser})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	expiry := time.Now().UTC().AddDate(0, 0, 10)
	card, err := db.CreateCard(ctx, store.CreateCardParams{
		UserId: user.Id, CardNumber: "4111111111111111", Owner: "Alice", ExpiryDate: expiry, InitialBalance: decimal.NewFromInt(5),
	})
	if err != nil {
		t.Fatalf("CreateCard failed: %v", err)
	}

	clock := time.Now().UTC()
	s, err := NewSweeper(SweeperConfig{Store: db, Schedule: "@hourly", Now: func() time.Time { return clock }})
	if err != nil {
		t.Fatalf("NewSweeper failed: %v", err)
	}

	if n, err := s.RunOnce(ctx); err != nil || n != 0 {
		t.Fatalf("Expected nothing expired today, got %d (%v)", n, err)
	}

	clock = expiry.AddDate(0, 0, 1)
	if n, err := s.RunOnce(ctx); err != nil || n != 1 {
		t.Fatalf("Expected 1 expired card, got %d (%v)", n, err)
	}

	got, err := db.GetCard(ctx, card.Id)
	if err != nil {
		t.Fatalf("GetCard failed: %v", err)
	}
	if got.Status != models.CardStatusExpired {
		t.Errorf("Expected EXPIRED, got %s", got.Status)
	}

	lastRun, lastCount, runs := s.Stats()
	if !lastRun.Equal(clock) || lastCount != 1 || runs != 2 {
		t.Errorf("Unexpected stats %v %d %d", lastRun, lastCount, runs)
	}
}

func TestSweeper_StartStop(t *testing.T) {
	db, cleanup := setupTestStore(t)
	defer cleanup()

	s, err := NewSweeper(SweeperConfig{Store: db, Schedule: "@every 1h"})
	if err != nil {
		t.Fatalf("NewSweeper failed: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	s.Stop()

	if _, _, runs := s.Stats(); runs != 1 {
		t.Errorf("Expected the startup sweep to run once, got %d", runs)
	}
}
