package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

func ParseTransactionStatus(value string) (TransactionStatus, error) {
	switch status := TransactionStatus(strings.ToUpper(strings.TrimSpace(value))); status {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("unknown transaction status %q", value)
	}
}

// IsTerminal reports whether no further transitions are allowed
func (s TransactionStatus) IsTerminal() bool {
	return s != TransactionStatusPending
}

// Transaction is a transfer between two cards of the same user
type Transaction struct {
	Id            string            `db:"id"`
	UserId        string            `db:"user_id"`
	FromCardId    string            `db:"from_card_id"`
	ToCardId      string            `db:"to_card_id"`
	Amount        decimal.Decimal   `db:"amount"`
	Status        TransactionStatus `db:"status"`
	Description   string            `db:"description"`
	FailureReason string            `db:"failure_reason"`
	CreatedAt     time.Time         `db:"created_at"`
	ProcessedAt   *time.Time        `db:"processed_at"`
}

// JournalEntry is one signed balance movement on a card
type JournalEntry struct {
	Id            string          `db:"id"`
	CardId        string          `db:"card_id"`
	TransactionId string          `db:"transaction_id"`
	EntryType     string          `db:"entry_type"`
	Amount        decimal.Decimal `db:"amount"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	CreatedAt     time.Time       `db:"created_at"`
}

const (
	EntryTypeOpening        = "opening"
	EntryTypeTopUp          = "top_up"
	EntryTypeTransferDebit  = "transfer_debit"
	EntryTypeTransferCredit = "transfer_credit"
)
