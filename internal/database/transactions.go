package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bank-cards-go/internal/models"
	"bank-cards-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var txn models.Transaction
	var amountStr, status string
	var processedAt sql.NullTime
	err := row.Scan(&txn.Id, &txn.UserId, &txn.FromCardId, &txn.ToCardId, &amountStr, &status,
		&txn.Description, &txn.FailureReason, &txn.CreatedAt, &processedAt)
	if err != nil {
		return nil, err
	}

	txn.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	txn.Status = models.TransactionStatus(status)
	if processedAt.Valid {
		processed := processedAt.Time
		txn.ProcessedAt = &processed
	}
	return &txn, nil
}

func (s *Service) getTransaction(ctx context.Context, q querier, transactionId string) (*models.Transaction, error) {
	txn, err := scanTransaction(q.QueryRowContext(ctx, queryGetTransactionById, transactionId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound("Transaction", transactionId)
		}
		return nil, err
	}
	return txn, nil
}

func (s *Service) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer closeRows(rows)

	var transactions []models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return transactions, nil
}

// validateTransfer runs the request-only checks: a valid positive amount,
// two distinct cards and a bounded description.
func validateTransfer(params store.TransferParams) error {
	if err := store.ValidateAmount(params.Amount); err != nil {
		return err
	}
	if params.FromCardId == params.ToCardId {
		return store.InvalidInput("Cannot transfer to the same card")
	}
	return store.ValidateDescription(params.Description)
}

// resolveTransferCards loads both cards and requires a common owner.
func (s *Service) resolveTransferCards(ctx context.Context, q querier, params store.TransferParams) (*models.Card, *models.Card, error) {
	from, err := s.getCard(ctx, q, params.FromCardId)
	if err != nil {
		return nil, nil, err
	}
	to, err := s.getCard(ctx, q, params.ToCardId)
	if err != nil {
		return nil, nil, err
	}
	if from.UserId != to.UserId {
		return nil, nil, store.InvalidInput("Transaction between cards of different users is not allowed")
	}
	return from, to, nil
}

// checkTransferable applies the balance and status checks, in that order.
func checkTransferable(from, to *models.Card, amount decimal.Decimal) error {
	if from.Balance.LessThan(amount) {
		return store.InsufficientFunds(amount, from.Balance)
	}
	if !from.IsActive() {
		return store.CardInactive(store.SideSource, string(from.Status))
	}
	if !to.IsActive() {
		return store.CardInactive(store.SideDestination, string(to.Status))
	}
	return nil
}

// Transfer moves funds between two cards of the same user in one step.
// Nothing is persisted unless every check passes.
func (s *Service) Transfer(ctx context.Context, params store.TransferParams) (*models.Transaction, error) {
	zap.L().Info("Processing transfer",
		zap.String("from_card_id", params.FromCardId),
		zap.String("to_card_id", params.ToCardId),
		zap.String("amount", params.Amount.String()))

	if err := validateTransfer(params); err != nil {
		return nil, err
	}
	// Fail fast on unknown or foreign cards before queueing on the card locks.
	if _, _, err := s.resolveTransferCards(ctx, s.db, params); err != nil {
		return nil, classify("resolve transfer cards", err)
	}

	unlock := s.locks.lock(params.FromCardId, params.ToCardId)
	defer unlock()

	txn, err := s.settle(ctx, params, nil)
	if err != nil {
		zap.L().Warn("Transfer rejected",
			zap.String("from_card_id", params.FromCardId),
			zap.String("to_card_id", params.ToCardId),
			zap.String("reason", store.Message(err)))
		return nil, classify("transfer", err, zap.String("from_card_id", params.FromCardId))
	}

	zap.L().Info("Transfer completed successfully",
		zap.String("transaction_id", txn.Id),
		zap.String("amount", txn.Amount.StringFixed(2)))
	return txn, nil
}

// settle re-reads both cards inside a database transaction, applies the
// balance and status checks, and writes debit, credit and the COMPLETED
// record as one unit. With pending set the existing PENDING record is
// completed instead of inserting a new one. Callers hold both card locks.
func (s *Service) settle(ctx context.Context, params store.TransferParams, pending *models.Transaction) (*models.Transaction, error) {
	for attempt := 0; ; attempt++ {
		var txn *models.Transaction
		err := s.withTx(ctx, func(tx *sql.Tx) error {
			if pending != nil {
				current, err := s.getTransaction(ctx, tx, pending.Id)
				if err != nil {
					return err
				}
				if current.Status != models.TransactionStatusPending {
					return store.InvalidStateTransition(
						fmt.Sprintf("Cannot execute transaction in status: %s", current.Status), string(current.Status))
				}
			}

			from, to, err := s.resolveTransferCards(ctx, tx, params)
			if err != nil {
				return err
			}
			if err := checkTransferable(from, to, params.Amount); err != nil {
				return err
			}

			now := s.now()
			txn = &models.Transaction{
				Id:          uuid.New().String(),
				UserId:      from.UserId,
				FromCardId:  from.Id,
				ToCardId:    to.Id,
				Amount:      params.Amount,
				Status:      models.TransactionStatusCompleted,
				Description: params.Description,
				CreatedAt:   now,
				ProcessedAt: &now,
			}
			if pending != nil {
				txn.Id = pending.Id
				txn.CreatedAt = pending.CreatedAt
			}

			fromBalance := from.Balance.Sub(params.Amount)
			toBalance := to.Balance.Add(params.Amount)
			if err := s.writeBalance(ctx, tx, from, fromBalance); err != nil {
				return err
			}
			if err := s.writeBalance(ctx, tx, to, toBalance); err != nil {
				return err
			}

			if pending == nil {
				_, err = tx.ExecContext(ctx, queryInsertTransaction,
					txn.Id, txn.UserId, txn.FromCardId, txn.ToCardId, txn.Amount.StringFixed(2),
					string(txn.Status), txn.Description, txn.CreatedAt, now)
				if err != nil {
					return fmt.Errorf("failed to insert transaction: %w", err)
				}
			} else {
				result, err := tx.ExecContext(ctx, queryCompletePendingTransaction, now, txn.Id)
				if err != nil {
					return fmt.Errorf("failed to complete transaction: %w", err)
				}
				rowsAffected, err := result.RowsAffected()
				if err != nil {
					return fmt.Errorf("failed to check rows affected: %w", err)
				}
				if rowsAffected == 0 {
					return fmt.Errorf("transaction completion failed - %w", store.ErrConcurrentModification)
				}
			}

			if err := s.addJournalEntry(ctx, tx, from.Id, txn.Id, models.EntryTypeTransferDebit, params.Amount.Neg(), fromBalance); err != nil {
				return err
			}
			return s.addJournalEntry(ctx, tx, to.Id, txn.Id, models.EntryTypeTransferCredit, params.Amount, toBalance)
		})

		if errors.Is(err, store.ErrConcurrentModification) && attempt < s.maxRetries {
			zap.L().Warn("Transfer hit a concurrent modification, retrying",
				zap.String("from_card_id", params.FromCardId),
				zap.String("to_card_id", params.ToCardId),
				zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, err
		}
		return txn, nil
	}
}

// CreatePendingTransfer records a transfer request without moving funds.
// Amount, card identity, existence and ownership are checked now; balance
// and status are checked when the transfer is executed.
func (s *Service) CreatePendingTransfer(ctx context.Context, params store.TransferParams) (*models.Transaction, error) {
	if err := validateTransfer(params); err != nil {
		return nil, err
	}
	from, _, err := s.resolveTransferCards(ctx, s.db, params)
	if err != nil {
		return nil, classify("resolve transfer cards", err)
	}

	txn := &models.Transaction{
		Id:          uuid.New().String(),
		UserId:      from.UserId,
		FromCardId:  params.FromCardId,
		ToCardId:    params.ToCardId,
		Amount:      params.Amount,
		Status:      models.TransactionStatusPending,
		Description: params.Description,
		CreatedAt:   s.now(),
	}

	_, err = s.db.ExecContext(ctx, queryInsertTransaction,
		txn.Id, txn.UserId, txn.FromCardId, txn.ToCardId, txn.Amount.StringFixed(2),
		string(txn.Status), txn.Description, txn.CreatedAt, nil)
	if err != nil {
		return nil, classify("create pending transfer", err)
	}

	zap.L().Info("Pending transfer created",
		zap.String("transaction_id", txn.Id),
		zap.String("amount", txn.Amount.StringFixed(2)))
	return txn, nil
}

// ExecuteTransfer settles a PENDING transfer. A business rejection marks it
// FAILED with the reason and returns the rejection; an unexpected failure
// leaves it PENDING with balances untouched.
func (s *Service) ExecuteTransfer(ctx context.Context, transactionId string) (*models.Transaction, error) {
	pending, err := s.getTransaction(ctx, s.db, transactionId)
	if err != nil {
		return nil, classify("get transaction", err, zap.String("transaction_id", transactionId))
	}
	if pending.Status != models.TransactionStatusPending {
		return nil, store.InvalidStateTransition(
			fmt.Sprintf("Cannot execute transaction in status: %s", pending.Status), string(pending.Status))
	}

	params := store.TransferParams{
		FromCardId:  pending.FromCardId,
		ToCardId:    pending.ToCardId,
		Amount:      pending.Amount,
		Description: pending.Description,
	}

	unlock := s.locks.lock(params.FromCardId, params.ToCardId)
	defer unlock()

	txn, err := s.settle(ctx, params, pending)
	if err != nil {
		if isSettlementRejection(err) {
			if failErr := s.failPending(ctx, transactionId, store.Message(err)); failErr != nil {
				return nil, classify("fail pending transfer", failErr, zap.String("transaction_id", transactionId))
			}
		}
		return nil, classify("execute transfer", err, zap.String("transaction_id", transactionId))
	}

	zap.L().Info("Pending transfer executed",
		zap.String("transaction_id", txn.Id),
		zap.String("amount", txn.Amount.StringFixed(2)))
	return txn, nil
}

func isSettlementRejection(err error) bool {
	switch store.KindOf(err) {
	case store.KindInsufficientFunds, store.KindCardInactive, store.KindNotFound, store.KindInvalidInput:
		return true
	default:
		return false
	}
}

func (s *Service) failPending(ctx context.Context, transactionId, reason string) error {
	_, err := s.db.ExecContext(ctx, queryFailPendingTransaction, reason, s.now(), transactionId)
	if err != nil {
		return fmt.Errorf("failed to mark transaction failed: %w", err)
	}
	zap.L().Warn("Pending transfer failed", zap.String("transaction_id", transactionId), zap.String("reason", reason))
	return nil
}

// CancelTransfer moves a PENDING transfer to CANCELLED. Balances are never touched.
func (s *Service) CancelTransfer(ctx context.Context, transactionId string) (*models.Transaction, error) {
	zap.L().Info("Cancelling transaction", zap.String("transaction_id", transactionId))

	result, err := s.db.ExecContext(ctx, queryCancelPendingTransaction, s.now(), transactionId)
	if err != nil {
		return nil, classify("cancel transfer", err, zap.String("transaction_id", transactionId))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, classify("cancel transfer", err, zap.String("transaction_id", transactionId))
	}

	txn, err := s.getTransaction(ctx, s.db, transactionId)
	if err != nil {
		return nil, classify("get transaction", err, zap.String("transaction_id", transactionId))
	}
	if rowsAffected == 0 {
		return nil, store.InvalidStateTransition(
			fmt.Sprintf("Cannot cancel transaction in status: %s", txn.Status), string(txn.Status))
	}

	zap.L().Info("Transaction cancelled successfully", zap.String("transaction_id", transactionId))
	return txn, nil
}

func (s *Service) GetTransaction(ctx context.Context, transactionId string) (*models.Transaction, error) {
	txn, err := s.getTransaction(ctx, s.db, transactionId)
	if err != nil {
		return nil, classify("get transaction", err, zap.String("transaction_id", transactionId))
	}
	return txn, nil
}

func (s *Service) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	transactions, err := s.queryTransactions(ctx, queryGetAllTransactions)
	if err != nil {
		return nil, classify("list transactions", err)
	}
	return transactions, nil
}

// ListUserTransactions returns transfers touching any card of the user, newest first.
func (s *Service) ListUserTransactions(ctx context.Context, userId string) ([]models.Transaction, error) {
	transactions, err := s.queryTransactions(ctx, queryGetUserTransactions, userId)
	if err != nil {
		return nil, classify("list user transactions", err, zap.String("user_id", userId))
	}
	return transactions, nil
}

// ListCardTransactions returns transfers where the card is either side.
func (s *Service) ListCardTransactions(ctx context.Context, cardId string) ([]models.Transaction, error) {
	if _, err := s.getCard(ctx, s.db, cardId); err != nil {
		return nil, classify("get card", err, zap.String("card_id", cardId))
	}
	transactions, err := s.queryTransactions(ctx, queryGetCardTransactions, cardId, cardId)
	if err != nil {
		return nil, classify("list card transactions", err, zap.String("card_id", cardId))
	}
	return transactions, nil
}
