/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bank-cards-go/internal/models"
	"bank-cards-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

var sortColumns = map[string]string{
	store.SortFieldCreatedAt:  "created_at",
	store.SortFieldExpiryDate: "expiry_date",
	store.SortFieldBalance:    "CAST(balance AS REAL)",
	store.SortFieldOwner:      "owner",
	store.SortFieldStatus:     "status",
}

func (s *Service) scanCard(row rowScanner) (*models.Card, error) {
	var card models.Card
	var ciphertext, expiry, status, balance string
	err := row.Scan(&card.Id, &card.UserId, &ciphertext, &card.Owner, &expiry, &status,
		&balance, &card.Version, &card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		return nil, err
	}

	card.ExpiryDate, err = time.Parse(dateLayout, expiry)
	if err != nil {
		return nil, fmt.Errorf("failed to parse expiry date '%s': %w", expiry, err)
	}
	card.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance '%s': %w", balance, err)
	}
	card.Status = models.CardStatus(status)

	card.CardNumber, err = s.codec.Decode(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decode number of card %s: %w", card.Id, err)
	}
	return &card, nil
}

func (s *Service) queryCards(ctx context.Context, q querier, query string, args ...any) ([]models.Card, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer closeRows(rows)

	var cards []models.Card
	for rows.Next() {
		card, err := s.scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, *card)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card rows: %w", err)
	}
	return cards, nil
}

// getCard loads a card through q, returning NotFound when it does not exist.
func (s *Service) getCard(ctx context.Context, q querier, cardId string) (*models.Card, error) {
	card, err := s.scanCard(q.QueryRowContext(ctx, queryGetCardById, cardId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound("Card", cardId)
		}
		return nil, err
	}
	return card, nil
}

func (s *Service) CreateCard(ctx context.Context, params store.CreateCardParams) (*models.Card, error) {
	if err := store.ValidateOwner(params.Owner, 1); err != nil {
		return nil, err
	}
	if err := store.ValidateExpiry(params.ExpiryDate, s.now()); err != nil {
		return nil, err
	}
	if err := store.ValidateInitialBalance(params.InitialBalance); err != nil {
		return nil, err
	}
	if _, err := s.GetUser(ctx, params.UserId); err != nil {
		return nil, err
	}

	ciphertext, err := s.codec.Encode(params.CardNumber)
	if err != nil {
		return nil, classify("encode card number", err, zap.String("user_id", params.UserId))
	}

	now := s.now()
	card := &models.Card{
		Id:         uuid.New().String(),
		UserId:     params.UserId,
		CardNumber: params.CardNumber,
		Owner:      strings.TrimSpace(params.Owner),
		ExpiryDate: store.DateOnly(params.ExpiryDate),
		Status:     models.CardStatusActive,
		Balance:    params.InitialBalance.Round(store.AmountScale),
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	zap.L().Info("Creating card",
		zap.String("card_id", card.Id),
		zap.String("user_id", card.UserId),
		zap.String("card_number", card.MaskedNumber()),
		zap.String("initial_balance", card.Balance.StringFixed(2)))

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, queryInsertCard,
			card.Id, card.UserId, ciphertext, s.codec.Fingerprint(params.CardNumber), card.Owner,
			card.ExpiryDate.Format(dateLayout), string(card.Status), card.Balance.StringFixed(2), now, now)
		if err != nil {
			return err
		}
		return s.addJournalEntry(ctx, tx, card.Id, "", models.EntryTypeOpening, card.Balance, card.Balance)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.Duplicate("Card with this number already exists")
		}
		if isForeignKeyViolation(err) {
			return nil, store.NotFound("User", params.UserId)
		}
		return nil, classify("create card", err, zap.String("card_id", card.Id))
	}

	zap.L().Info("Card created successfully", zap.String("card_id", card.Id), zap.String("user_id", card.UserId))
	return card, nil
}

func (s *Service) GetCard(ctx context.Context, cardId string) (*models.Card, error) {
	card, err := s.getCard(ctx, s.db, cardId)
	if err != nil {
		return nil, classify("get card", err, zap.String("card_id", cardId))
	}
	return card, nil
}

// GetCardByNumber looks a card up by its plaintext number through the blind index.
func (s *Service) GetCardByNumber(ctx context.Context, cardNumber string) (*models.Card, error) {
	card, err := s.scanCard(s.db.QueryRowContext(ctx, queryGetCardByFingerprint, s.codec.Fingerprint(cardNumber)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound("Card", models.MaskCardNumber(cardNumber))
		}
		return nil, classify("get card by number", err)
	}
	return card, nil
}

func (s *Service) ListCards(ctx context.Context) ([]models.Card, error) {
	cards, err := s.queryCards(ctx, s.db, queryGetAllCards)
	if err != nil {
		return nil, classify("list cards", err)
	}
	zap.L().Debug("Retrieved all cards", zap.Int("count", len(cards)))
	return cards, nil
}

func (s *Service) GetUserCards(ctx context.Context, userId string) ([]models.Card, error) {
	cards, err := s.queryCards(ctx, s.db, queryGetUserCards, userId)
	if err != nil {
		return nil, classify("get user cards", err, zap.String("user_id", userId))
	}
	return cards, nil
}

// ListUserCards returns one page of the user's cards and the total card count.
func (s *Service) ListUserCards(ctx context.Context, params store.ListCardsParams) ([]models.Card, int, error) {
	if params.Page < 0 || params.Size <= 0 {
		return nil, 0, store.InvalidInput("Page must be >= 0 and size must be > 0")
	}

	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = sortColumns[store.SortFieldCreatedAt]
	}
	direction := "DESC"
	if params.SortAsc {
		direction = "ASC"
	}

	var total int
	if err := s.db.QueryRowContext(ctx, queryCountUserCards, params.UserId).Scan(&total); err != nil {
		return nil, 0, classify("count user cards", err, zap.String("user_id", params.UserId))
	}

	query := fmt.Sprintf("%s ORDER BY %s %s, id %s LIMIT ? OFFSET ?", queryGetUserCardsPage, column, direction, direction)
	cards, err := s.queryCards(ctx, s.db, query, params.UserId, params.Size, params.Page*params.Size)
	if err != nil {
		return nil, 0, classify("list user cards", err, zap.String("user_id", params.UserId))
	}

	zap.L().Debug("Retrieved user cards page",
		zap.String("user_id", params.UserId),
		zap.Int("page", params.Page),
		zap.Int("size", params.Size),
		zap.Int("total", total))
	return cards, total, nil
}

// mutateCard serializes a read-modify-write of one card: it takes the card
// lock, re-reads the row inside a transaction and applies fn. A version
// conflict from another process restarts the cycle.
func (s *Service) mutateCard(ctx context.Context, operation, cardId string, fn func(tx *sql.Tx, card *models.Card) error) (*models.Card, error) {
	unlock := s.locks.lock(cardId)
	defer unlock()

	for attempt := 0; ; attempt++ {
		var card *models.Card
		err := s.withTx(ctx, func(tx *sql.Tx) error {
			var err error
			card, err = s.getCard(ctx, tx, cardId)
			if err != nil {
				return err
			}
			return fn(tx, card)
		})
		if errors.Is(err, store.ErrConcurrentModification) && attempt < s.maxRetries {
			zap.L().Warn("Card modified concurrently, retrying",
				zap.String("operation", operation),
				zap.String("card_id", cardId),
				zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, classify(operation, err, zap.String("card_id", cardId))
		}
		return card, nil
	}
}

// writeBalance persists a new balance guarded by the card's version.
func (s *Service) writeBalance(ctx context.Context, tx *sql.Tx, card *models.Card, balance decimal.Decimal) error {
	now := s.now()
	result, err := tx.ExecContext(ctx, queryUpdateCardBalance, balance.StringFixed(2), now, card.Id, card.Version)
	if err := checkVersionedUpdate(result, err, "balance"); err != nil {
		return err
	}
	card.Balance = balance
	card.Version++
	card.UpdatedAt = now
	return nil
}

func (s *Service) writeStatus(ctx context.Context, tx *sql.Tx, card *models.Card, status models.CardStatus) error {
	now := s.now()
	result, err := tx.ExecContext(ctx, queryUpdateCardStatus, string(status), now, card.Id, card.Version)
	if err := checkVersionedUpdate(result, err, "status"); err != nil {
		return err
	}
	card.Status = status
	card.Version++
	card.UpdatedAt = now
	return nil
}

func checkVersionedUpdate(result sql.Result, err error, field string) error {
	if err != nil {
		return fmt.Errorf("failed to update card %s: %w", field, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("card %s update failed - %w", field, store.ErrConcurrentModification)
	}
	return nil
}

// TopUp credits an ACTIVE card.
func (s *Service) TopUp(ctx context.Context, cardId string, amount decimal.Decimal) (*models.Card, error) {
	if err := store.ValidateAmount(amount); err != nil {
		return nil, err
	}

	card, err := s.mutateCard(ctx, "top up card", cardId, func(tx *sql.Tx, card *models.Card) error {
		if !card.IsActive() {
			return store.CardInactive("", string(card.Status))
		}
		newBalance := card.Balance.Add(amount)
		if err := s.writeBalance(ctx, tx, card, newBalance); err != nil {
			return err
		}
		return s.addJournalEntry(ctx, tx, card.Id, "", models.EntryTypeTopUp, amount, newBalance)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Card topped up",
		zap.String("card_id", cardId),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("new_balance", card.Balance.StringFixed(2)))
	return card, nil
}

func (s *Service) BlockCard(ctx context.Context, cardId string) (*models.Card, error) {
	zap.L().Info("Blocking card", zap.String("card_id", cardId))
	return s.setStatus(ctx, "block card", cardId, models.CardStatusBlocked)
}

func (s *Service) UnblockCard(ctx context.Context, cardId string) (*models.Card, error) {
	zap.L().Info("Unblocking card", zap.String("card_id", cardId))
	return s.setStatus(ctx, "unblock card", cardId, models.CardStatusActive)
}

func (s *Service) setStatus(ctx context.Context, operation, cardId string, status models.CardStatus) (*models.Card, error) {
	card, err := s.mutateCard(ctx, operation, cardId, func(tx *sql.Tx, card *models.Card) error {
		if card.Status == status {
			return nil
		}
		return s.writeStatus(ctx, tx, card, status)
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("Card status updated", zap.String("card_id", cardId), zap.String("status", string(card.Status)))
	return card, nil
}

// UpdateCard changes the cardholder name and expiry date.
func (s *Service) UpdateCard(ctx context.Context, params store.UpdateCardParams) (*models.Card, error) {
	if err := store.ValidateOwner(params.Owner, store.MinOwnerLength); err != nil {
		return nil, err
	}
	if err := store.ValidateExpiry(params.ExpiryDate, s.now()); err != nil {
		return nil, err
	}

	owner := strings.TrimSpace(params.Owner)
	expiry := store.DateOnly(params.ExpiryDate)

	return s.mutateCard(ctx, "update card", params.CardId, func(tx *sql.Tx, card *models.Card) error {
		now := s.now()
		result, err := tx.ExecContext(ctx, queryUpdateCardDetails, owner, expiry.Format(dateLayout), now, card.Id, card.Version)
		if err := checkVersionedUpdate(result, err, "details"); err != nil {
			return err
		}
		card.Owner = owner
		card.ExpiryDate = expiry
		card.Version++
		card.UpdatedAt = now
		return nil
	})
}

// DeleteCard removes the card with its journal and block requests.
// Transfers that referenced it keep their history.
func (s *Service) DeleteCard(ctx context.Context, cardId string) error {
	zap.L().Info("Deleting card", zap.String("card_id", cardId))

	unlock := s.locks.lock(cardId)
	defer unlock()

	result, err := s.db.ExecContext(ctx, queryDeleteCard, cardId)
	if err != nil {
		return classify("delete card", err, zap.String("card_id", cardId))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return classify("delete card", err, zap.String("card_id", cardId))
	}
	if rowsAffected == 0 {
		return store.NotFound("Card", cardId)
	}

	zap.L().Info("Card deleted successfully", zap.String("card_id", cardId))
	return nil
}

// ExpireCards moves every ACTIVE card whose expiry date is before asOf to
// EXPIRED and returns how many cards changed. The version bump makes any
// in-flight transfer on those cards retry and observe the new status.
func (s *Service) ExpireCards(ctx context.Context, asOf time.Time) (int, error) {
	cutoff := store.DateOnly(asOf).Format(dateLayout)

	result, err := s.db.ExecContext(ctx, queryExpireCards, s.now(), cutoff)
	if err != nil {
		return 0, classify("expire cards", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, classify("expire cards", err)
	}

	zap.L().Info("Expired cards", zap.String("as_of", cutoff), zap.Int64("count", rowsAffected))
	return int(rowsAffected), nil
}
