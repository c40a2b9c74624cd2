package store

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		amount  string
		wantErr bool
	}{
		{"100.00", false},
		{"0.01", false},
		{"100000000.00", false},
		{"0", true},
		{"-5", true},
		{"0.001", true},
		{"100000000.01", true},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tt.amount))
			if tt.wantErr && !IsKind(err, KindInvalidInput) {
				t.Errorf("Expected invalid input, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestValidateInitialBalance(t *testing.T) {
	if err := ValidateInitialBalance(decimal.Zero); err != nil {
		t.Errorf("Zero balance should be accepted: %v", err)
	}
	if err := ValidateInitialBalance(decimal.RequireFromString("-0.01")); !IsKind(err, KindInvalidInput) {
		t.Errorf("Expected invalid input for negative balance, got %v", err)
	}
}

func TestValidateOwner(t *testing.T) {
	if err := ValidateOwner("J", 1); err != nil {
		t.Errorf("Single character owner should pass on create: %v", err)
	}
	if err := ValidateOwner("J", MinOwnerLength); err == nil {
		t.Error("Single character owner should fail on update")
	}
	if err := ValidateOwner(strings.Repeat("a", MaxOwnerLength+1), 1); err == nil {
		t.Error("Expected error for long owner")
	}
	if err := ValidateOwner("   ", 1); err == nil {
		t.Error("Expected error for blank owner")
	}
}

func TestValidateExpiry(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	if err := ValidateExpiry(now, now); err == nil {
		t.Error("Today should not count as future")
	}
	if err := ValidateExpiry(now.AddDate(0, 0, 1), now); err != nil {
		t.Errorf("Tomorrow should be accepted: %v", err)
	}
	if err := ValidateExpiry(time.Time{}, now); err == nil {
		t.Error("Expected error for missing expiry")
	}
}

func TestValidateReason(t *testing.T) {
	if err := ValidateReason(""); err == nil {
		t.Error("Expected error for empty reason")
	}
	if err := ValidateReason(strings.Repeat("x", MaxReasonLength+1)); err == nil {
		t.Error("Expected error for long reason")
	}
	if err := ValidateReason("lost"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
