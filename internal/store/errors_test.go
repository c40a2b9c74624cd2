package store

import (
	"errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/shopspring/decimal"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("Card", "c1"), KindNotFound},
		{"duplicate", Duplicate("Card number already exists"), KindDuplicate},
		{"invalid input", InvalidInput("Amount must be positive"), KindInvalidInput},
		{"insufficient funds", InsufficientFunds(decimal.RequireFromString("2000"), decimal.RequireFromString("1000")), KindInsufficientFunds},
		{"card inactive", CardInactive(SideSource, "BLOCKED"), KindCardInactive},
		{"state transition", InvalidStateTransition("Request is not in PENDING status", "APPROVED"), KindInvalidStateTransition},
		{"forbidden", Forbidden("Access denied"), KindForbidden},
		{"internal", Internal(), KindInternal},
		{"plain error", errors.New("boom"), KindInternal},
		{"wrapped", fmt.Errorf("outer: %w", NotFound("Transaction", "t1")), KindNotFound},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInsufficientFunds_ReportsAmounts(t *testing.T) {
	err := InsufficientFunds(decimal.RequireFromString("2000"), decimal.RequireFromString("1000"))

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryOperation {
		t.Errorf("expected operation category, got %q", rich.Category)
	}
	if rich.Message != "Insufficient funds. Required: 2000.00, Available: 1000.00" {
		t.Errorf("unexpected message %q", rich.Message)
	}

	meta := Metadata(err)
	if meta["required"] != "2000.00" {
		t.Errorf("expected required 2000.00, got %v", meta["required"])
	}
	if meta["available"] != "1000.00" {
		t.Errorf("expected available 1000.00, got %v", meta["available"])
	}
}

func TestCardInactive_NamesSide(t *testing.T) {
	var rich *goerrors.Error
	if !goerrors.As(CardInactive(SideDestination, "EXPIRED"), &rich) {
		t.Fatal("expected go-errors envelope")
	}
	if rich.Message != "Destination card is not active" {
		t.Errorf("unexpected message %q", rich.Message)
	}
	if rich.Metadata["side"] != SideDestination {
		t.Errorf("expected side %q, got %v", SideDestination, rich.Metadata["side"])
	}
}

func TestInternal_DoesNotLeakCause(t *testing.T) {
	var rich *goerrors.Error
	if !goerrors.As(Internal(), &rich) {
		t.Fatal("expected go-errors envelope")
	}
	if rich.Message != InternalMessage {
		t.Errorf("expected generic message, got %q", rich.Message)
	}
	if rich.Code != 500 {
		t.Errorf("expected code 500, got %d", rich.Code)
	}
}
