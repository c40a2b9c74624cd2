package database

import (
	"context"

	"bank-cards-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetUserBalance sums the balances of every card the user holds, whatever
// its status, and lists each card with its masked number.
func (s *Service) GetUserBalance(ctx context.Context, userId string) (*models.UserBalance, error) {
	zap.L().Debug("Getting total balance", zap.String("user_id", userId))

	if _, err := s.GetUser(ctx, userId); err != nil {
		return nil, err
	}

	cards, err := s.queryCards(ctx, s.db, queryGetUserCards, userId)
	if err != nil {
		return nil, classify("get user balance", err, zap.String("user_id", userId))
	}

	report := &models.UserBalance{
		UserId:       userId,
		TotalBalance: decimal.Zero,
		Cards:        make([]models.CardBalance, 0, len(cards)),
	}
	for i := range cards {
		card := &cards[i]
		report.TotalBalance = report.TotalBalance.Add(card.Balance)
		report.Cards = append(report.Cards, models.CardBalance{
			CardId:       card.Id,
			MaskedNumber: card.MaskedNumber(),
			Balance:      card.Balance,
			Status:       card.Status,
		})
	}

	zap.L().Debug("Retrieved total balance",
		zap.String("user_id", userId),
		zap.Int("cards", len(report.Cards)),
		zap.String("total", report.TotalBalance.StringFixed(2)))
	return report, nil
}
