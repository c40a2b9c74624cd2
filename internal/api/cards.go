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

package api

import (
	"context"
	"time"

	"bank-cards-go/internal/codec"
	"bank-cards-go/internal/models"
	"bank-cards-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateCardRequest is the admin input for issuing a card.
type CreateCardRequest struct {
	UserId         string
	CardNumber     string
	Owner          string
	ExpiryDate     time.Time
	InitialBalance decimal.Decimal
}

func (s *CardService) CreateCard(ctx context.Context, id Identity, req CreateCardRequest) (*models.CardView, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}

	card, err := s.store.CreateCard(ctx, store.CreateCardParams{
		UserId:         req.UserId,
		CardNumber:     codec.NormalizeNumber(req.CardNumber),
		Owner:          req.Owner,
		ExpiryDate:     req.ExpiryDate,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		return nil, err
	}

	view := toCardView(card)
	return &view, nil
}

func (s *CardService) GetCard(ctx context.Context, id Identity, cardId string) (*models.CardView, error) {
	if err := s.requireCardAccess(ctx, id, cardId); err != nil {
		return nil, err
	}
	card, err := s.store.GetCard(ctx, cardId)
	if err != nil {
		return nil, err
	}
	view := toCardView(card)
	return &view, nil
}

// ListMyCards returns one page of the caller's own cards.
func (s *CardService) ListMyCards(ctx context.Context, id Identity, page PageRequest) (*models.CardPage, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}
	p := page.normalize()

	cards, total, err := s.store.ListUserCards(ctx, store.ListCardsParams{
		UserId:  id.UserID,
		Page:    p.Page,
		Size:    p.Size,
		SortBy:  p.SortBy,
		SortAsc: p.SortDirection == "asc",
	})
	if err != nil {
		return nil, err
	}

	pages := totalPages(total, p.Size)
	zap.L().Debug("Listed cards page",
		zap.String("user_id", id.UserID),
		zap.Int("page", p.Page),
		zap.Int("size", p.Size),
		zap.Int("total_pages", pages))

	return &models.CardPage{
		Items:         toCardViews(cards),
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: total,
		TotalPages:    pages,
		First:         p.Page == 0,
		Last:          p.Page >= pages-1,
		HasNext:       p.Page < pages-1,
		HasPrevious:   p.Page > 0,
	}, nil
}

func (s *CardService) ListAllCards(ctx context.Context, id Identity) ([]models.CardView, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	cards, err := s.store.ListCards(ctx)
	if err != nil {
		return nil, err
	}
	return toCardViews(cards), nil
}

// TopUp credits one of the caller's own cards.
func (s *CardService) TopUp(ctx context.Context, id Identity, cardId string, amount decimal.Decimal) (*models.CardView, error) {
	if err := s.requireCardOwner(ctx, id, cardId); err != nil {
		return nil, err
	}
	card, err := s.store.TopUp(ctx, cardId, amount)
	if err != nil {
		return nil, err
	}
	view := toCardView(card)
	return &view, nil
}

func (s *CardService) BlockCard(ctx context.Context, id Identity, cardId string) (*models.CardView, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	card, err := s.store.BlockCard(ctx, cardId)
	if err != nil {
		return nil, err
	}
	view := toCardView(card)
	return &view, nil
}

func (s *CardService) UnblockCard(ctx context.Context, id Identity, cardId string) (*models.CardView, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	card, err := s.store.UnblockCard(ctx, cardId)
	if err != nil {
		return nil, err
	}
	view := toCardView(card)
	return &view, nil
}

func (s *CardService) UpdateCard(ctx context.Context, id Identity, cardId, owner string, expiry time.Time) (*models.CardView, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	card, err := s.store.UpdateCard(ctx, store.UpdateCardParams{CardId: cardId, Owner: owner, ExpiryDate: expiry})
	if err != nil {
		return nil, err
	}
	view := toCardView(card)
	return &view, nil
}

func (s *CardService) DeleteCard(ctx context.Context, id Identity, cardId string) error {
	if err := requireAdmin(id); err != nil {
		return err
	}
	return s.store.DeleteCard(ctx, cardId)
}

// GetMyBalance totals the caller's cards of every status.
func (s *CardService) GetMyBalance(ctx context.Context, id Identity) (*models.UserBalance, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}
	return s.store.GetUserBalance(ctx, id.UserID)
}

func (s *CardService) GetUserBalance(ctx context.Context, id Identity, userId string) (*models.UserBalance, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	return s.store.GetUserBalance(ctx, userId)
}
