package database

import (
	"context"
	"database/sql"
	"fmt"

	"bank-cards-go/internal/models"
	"bank-cards-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// addJournalEntry records one signed movement on a card inside tx.
func (s *Service) addJournalEntry(ctx context.Context, tx *sql.Tx, cardId, transactionId, entryType string, amount, balanceAfter decimal.Decimal) error {
	_, err := tx.ExecContext(ctx, queryInsertJournalEntry,
		uuid.New().String(), cardId, transactionId, entryType,
		amount.StringFixed(2), balanceAfter.StringFixed(2), s.now())
	if err != nil {
		return fmt.Errorf("failed to add %s journal entry: %w", entryType, err)
	}
	return nil
}

func (s *Service) getCardJournal(ctx context.Context, q querier, cardId string) ([]models.JournalEntry, error) {
	rows, err := q.QueryContext(ctx, queryGetCardJournal, cardId)
	if err != nil {
		return nil, fmt.Errorf("failed to get journal: %w", err)
	}
	defer closeRows(rows)

	var entries []models.JournalEntry
	for rows.Next() {
		var entry models.JournalEntry
		var amountStr, balanceAfterStr string
		if err := rows.Scan(&entry.Id, &entry.CardId, &entry.TransactionId, &entry.EntryType,
			&amountStr, &balanceAfterStr, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}

		entry.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
		}
		entry.BalanceAfter, err = decimal.NewFromString(balanceAfterStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse balance after '%s': %w", balanceAfterStr, err)
		}
		entries = append(entries, entry)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal rows: %w", err)
	}
	return entries, nil
}

// ReconcileCard recomputes a card's balance from its journal (opening
// balance, top-ups, credits minus debits) and compares it with the stored
// balance. Both are read in one transaction so no transfer can land between them.
func (s *Service) ReconcileCard(ctx context.Context, cardId string) (*store.ReconcileResult, error) {
	zap.L().Info("Reconciling card balance", zap.String("card_id", cardId))

	var result *store.ReconcileResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		card, err := s.getCard(ctx, tx, cardId)
		if err != nil {
			return err
		}
		entries, err := s.getCardJournal(ctx, tx, cardId)
		if err != nil {
			return err
		}

		calculated := decimal.Zero
		for _, entry := range entries {
			calculated = calculated.Add(entry.Amount)
		}

		result = &store.ReconcileResult{
			CardId:            cardId,
			StoredBalance:     card.Balance,
			CalculatedBalance: calculated,
			Entries:           len(entries),
		}
		return nil
	})
	if err != nil {
		return nil, classify("reconcile card", err, zap.String("card_id", cardId))
	}

	if !result.Balanced() {
		zap.L().Error("Balance reconciliation failed",
			zap.String("card_id", cardId),
			zap.String("stored_balance", result.StoredBalance.StringFixed(2)),
			zap.String("calculated_balance", result.CalculatedBalance.StringFixed(2)),
			zap.String("difference", result.StoredBalance.Sub(result.CalculatedBalance).StringFixed(2)))
		return result, nil
	}

	zap.L().Info("Balance reconciliation successful",
		zap.String("card_id", cardId),
		zap.String("balance", result.StoredBalance.StringFixed(2)),
		zap.Int("entries", result.Entries))
	return result, nil
}
