package database

import (
	"context"
	"testing"

	"bank-cards-go/internal/models"
	"bank-cards-go/internal/store"

	"github.com/shopspring/decimal"
)

func TestGetUserBalance(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "alice", models.RoleUser)
	createTestCard(t, service, user.Id, "4000000000000001", "1000.00")
	blocked := createTestCard(t, service, user.Id, "4000000000000002", "250.50")
	if _, err := service.BlockCard(ctx, blocked.Id); err != nil {
		t.Fatalf("BlockCard failed: %v", err)
	}

	report, err := service.GetUserBalance(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetUserBalance failed: %v", err)
	}
	if !report.TotalBalance.Equal(decimal.RequireFromString("1250.50")) {
		t.Errorf("Expected total 1250.50 across all statuses, got %s", report.TotalBalance)
	}
	if len(report.Cards) != 2 {
		t.Fatalf("Expected 2 cards, got %d", len(report.Cards))
	}
	if report.Cards[0].MaskedNumber != "**** **** **** 0001" {
		t.Errorf("Expected masked number, got %q", report.Cards[0].MaskedNumber)
	}
}

func TestGetUserBalance_NoCards(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	user := createTestUser(t, service, "alice", models.RoleUser)
	report, err := service.GetUserBalance(context.Background(), user.Id)
	if err != nil {
		t.Fatalf("GetUserBalance failed: %v", err)
	}
	if !report.TotalBalance.IsZero() || len(report.Cards) != 0 {
		t.Errorf("Expected empty report, got %+v", report)
	}

	if _, err := service.GetUserBalance(context.Background(), "missing"); !store.IsKind(err, store.KindNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}
