package api

import (
	"context"
	"fmt"

	"bank-cards-go/internal/models"
	"bank-cards-go/internal/store"
)

// RequestBlock files a block request for one of the caller's cards.
func (s *CardService) RequestBlock(ctx context.Context, id Identity, cardId, reason string) (*models.BlockRequest, error) {
	if err := s.requireCardOwner(ctx, id, cardId); err != nil {
		return nil, err
	}
	return s.store.CreateBlockRequest(ctx, store.CreateBlockRequestParams{
		CardId:      cardId,
		RequesterId: id.UserID,
		Reason:      reason,
	})
}

func (s *CardService) ListMyBlockRequests(ctx context.Context, id Identity) ([]models.BlockRequest, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}
	return s.store.ListBlockRequestsByRequester(ctx, id.UserID)
}

// ListBlockRequests returns every request, or only those in status when
// status is not empty.
func (s *CardService) ListBlockRequests(ctx context.Context, id Identity, status string) ([]models.BlockRequest, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	if status == "" {
		return s.store.ListBlockRequests(ctx)
	}
	parsed, err := models.ParseBlockRequestStatus(status)
	if err != nil {
		return nil, store.InvalidInput(fmt.Sprintf("Invalid status: %s", status))
	}
	return s.store.ListBlockRequestsByStatus(ctx, parsed)
}

func (s *CardService) ApproveBlockRequest(ctx context.Context, id Identity, requestId string) (*models.BlockRequest, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	return s.store.ApproveBlockRequest(ctx, requestId, id.UserID)
}

func (s *CardService) RejectBlockRequest(ctx context.Context, id Identity, requestId string) (*models.BlockRequest, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	return s.store.RejectBlockRequest(ctx, requestId, id.UserID)
}
