package api

import (
	"context"

	"bank-cards-go/internal/codec"
	"bank-cards-go/internal/models"
	"bank-cards-go/internal/store"

	"github.com/shopspring/decimal"
)

// TransferRequest moves funds between two of the caller's cards.
type TransferRequest struct {
	FromCardId  string
	ToCardId    string
	Amount      decimal.Decimal
	Description string
}

func (r TransferRequest) params() store.TransferParams {
	return store.TransferParams{
		FromCardId:  r.FromCardId,
		ToCardId:    r.ToCardId,
		Amount:      r.Amount,
		Description: r.Description,
	}
}

// requireOwnCards checks that both cards of a transfer belong to the caller.
// Admins get no exception: transfers are always on the caller's own cards.
func (s *CardService) requireOwnCards(ctx context.Context, id Identity, req TransferRequest) error {
	if err := s.requireCardOwner(ctx, id, req.FromCardId); err != nil {
		return err
	}
	return s.requireCardOwner(ctx, id, req.ToCardId)
}

func (s *CardService) Transfer(ctx context.Context, id Identity, req TransferRequest) (*models.Transaction, error) {
	if err := s.requireOwnCards(ctx, id, req); err != nil {
		return nil, err
	}
	return s.store.Transfer(ctx, req.params())
}

// TransferByNumbers resolves both cards from their plaintext numbers first.
// Spaces and dashes in the numbers are ignored.
func (s *CardService) TransferByNumbers(ctx context.Context, id Identity, fromNumber, toNumber string, amount decimal.Decimal, description string) (*models.Transaction, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}
	from, err := s.store.GetCardByNumber(ctx, codec.NormalizeNumber(fromNumber))
	if err != nil {
		return nil, err
	}
	to, err := s.store.GetCardByNumber(ctx, codec.NormalizeNumber(toNumber))
	if err != nil {
		return nil, err
	}
	return s.Transfer(ctx, id, TransferRequest{
		FromCardId:  from.Id,
		ToCardId:    to.Id,
		Amount:      amount,
		Description: description,
	})
}

func (s *CardService) CreatePendingTransfer(ctx context.Context, id Identity, req TransferRequest) (*models.Transaction, error) {
	if err := s.requireOwnCards(ctx, id, req); err != nil {
		return nil, err
	}
	return s.store.CreatePendingTransfer(ctx, req.params())
}

func (s *CardService) ExecuteTransfer(ctx context.Context, id Identity, transactionId string) (*models.Transaction, error) {
	if _, err := s.ownTransaction(ctx, id, transactionId, false); err != nil {
		return nil, err
	}
	return s.store.ExecuteTransfer(ctx, transactionId)
}

func (s *CardService) CancelTransfer(ctx context.Context, id Identity, transactionId string) (*models.Transaction, error) {
	if _, err := s.ownTransaction(ctx, id, transactionId, true); err != nil {
		return nil, err
	}
	return s.store.CancelTransfer(ctx, transactionId)
}

func (s *CardService) GetTransaction(ctx context.Context, id Identity, transactionId string) (*models.Transaction, error) {
	return s.ownTransaction(ctx, id, transactionId, true)
}

// ownTransaction loads a transaction the caller may act on: their own, or
// any when adminAllowed and the caller is an admin.
func (s *CardService) ownTransaction(ctx context.Context, id Identity, transactionId string, adminAllowed bool) (*models.Transaction, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}
	txn, err := s.store.GetTransaction(ctx, transactionId)
	if err != nil {
		return nil, err
	}
	if txn.UserId != id.UserID && !(adminAllowed && id.IsAdmin()) {
		return nil, store.Forbidden("Access denied to this transaction")
	}
	return txn, nil
}

func (s *CardService) ListMyTransactions(ctx context.Context, id Identity) ([]models.Transaction, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}
	return s.store.ListUserTransactions(ctx, id.UserID)
}

func (s *CardService) ListCardTransactions(ctx context.Context, id Identity, cardId string) ([]models.Transaction, error) {
	if err := s.requireCardAccess(ctx, id, cardId); err != nil {
		return nil, err
	}
	return s.store.ListCardTransactions(ctx, cardId)
}

func (s *CardService) ListAllTransactions(ctx context.Context, id Identity) ([]models.Transaction, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	return s.store.ListTransactions(ctx)
}
