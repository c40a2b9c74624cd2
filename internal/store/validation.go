package store

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Field limits shared by the engine and its callers.
const (
	MaxOwnerLength       = 100
	MinOwnerLength       = 2
	MaxDescriptionLength = 500
	MaxReasonLength      = 500
	MaxUsernameLength    = 50
	AmountScale          = 2
)

// MaxAmount bounds initial balances, top-ups and transfers.
var MaxAmount = decimal.RequireFromString("100000000.00")

// ValidateAmount checks a strictly positive money amount.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return InvalidInput("Amount must be greater than 0")
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return InvalidInput("Amount must have at most 2 decimal places")
	}
	if amount.GreaterThan(MaxAmount) {
		return InvalidInput("Amount must not exceed 100,000,000.00")
	}
	return nil
}

// ValidateInitialBalance allows zero, unlike ValidateAmount.
func ValidateInitialBalance(balance decimal.Decimal) error {
	switch {
	case balance.IsNegative():
		return InvalidInput("Balance cannot be negative")
	case !balance.Equal(balance.Truncate(AmountScale)):
		return InvalidInput("Balance must have at most 2 decimal places")
	case balance.GreaterThan(MaxAmount):
		return InvalidInput("Balance must not exceed 100,000,000.00")
	}
	return nil
}

func ValidateOwner(owner string, minLength int) error {
	trimmed := strings.TrimSpace(owner)
	if trimmed == "" {
		return InvalidInput("Owner name is required")
	}
	n := utf8.RuneCountInString(trimmed)
	if n < minLength || n > MaxOwnerLength {
		if minLength > 1 {
			return InvalidInput("Cardholder name must be between 2 and 100 characters")
		}
		return InvalidInput("Owner name must not exceed 100 characters")
	}
	return nil
}

// ValidateExpiry requires a date strictly after today.
func ValidateExpiry(expiry, now time.Time) error {
	if expiry.IsZero() {
		return InvalidInput("Expiry date is required")
	}
	if !DateOnly(expiry).After(DateOnly(now)) {
		return InvalidInput("Expiry date must be in the future")
	}
	return nil
}

func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return InvalidInput("Description must not exceed 500 characters")
	}
	return nil
}

func ValidateReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return InvalidInput("Reason is required")
	}
	if utf8.RuneCountInString(reason) > MaxReasonLength {
		return InvalidInput("Reason must not exceed 500 characters")
	}
	return nil
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
