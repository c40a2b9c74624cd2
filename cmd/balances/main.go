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

package main

import (
	"context"
	"flag"
	"fmt"

	"bank-cards-go/internal/common"
	"bank-cards-go/internal/config"
	"bank-cards-go/internal/database"
	"bank-cards-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type balanceStats struct {
	totalUsers     int
	usersWithCards int
	totalCards     int
	grandTotal     decimal.Decimal
	unbalanced     int
}

func printCard(ctx context.Context, dbService *database.Service, card models.CardBalance, isLast bool) bool {
	balanced := true
	marker := ""
	result, err := dbService.ReconcileCard(ctx, card.CardId)
	if err != nil {
		zap.L().Warn("Failed to reconcile card", zap.String("card_id", card.CardId), zap.Error(err))
		marker = "  [reconcile failed]"
	} else if !result.Balanced() {
		balanced = false
		marker = fmt.Sprintf("  [JOURNAL MISMATCH: journal=%s]", common.FormatAmount(result.CalculatedBalance))
	}

	fmt.Printf("%s %s  %-8s %15s%s\n",
		common.BoxPrefix(isLast),
		card.MaskedNumber,
		card.Status,
		common.FormatAmount(card.Balance),
		marker)
	return balanced
}

func printUserHeader(user models.User, balance *models.UserBalance) {
	fmt.Printf("\n┌─ User: %s (%s)\n", user.Username, user.Role)
	fmt.Printf("│  ID: %s\n", user.Id)
	fmt.Printf("│  Cards: %d  Total: %s\n", len(balance.Cards), common.FormatAmount(balance.TotalBalance))
	common.PrintBoxSeparator(78)
}

func processUsersAndGenerateReport(ctx context.Context, users []models.User, dbService *database.Service, logger *zap.Logger) balanceStats {
	stats := balanceStats{grandTotal: decimal.Zero}

	for _, user := range users {
		stats.totalUsers++

		balance, err := dbService.GetUserBalance(ctx, user.Id)
		if err != nil {
			logger.Error("Failed to get user balance",
				zap.String("user_id", user.Id),
				zap.String("username", user.Username),
				zap.Error(err))
			continue
		}
		if len(balance.Cards) == 0 {
			continue
		}

		stats.usersWithCards++
		stats.totalCards += len(balance.Cards)
		stats.grandTotal = stats.grandTotal.Add(balance.TotalBalance)

		printUserHeader(user, balance)
		for i, card := range balance.Cards {
			if !printCard(ctx, dbService, card, i == len(balance.Cards)-1) {
				stats.unbalanced++
			}
		}
	}

	return stats
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	usernameFlag := flag.String("username", "", "Filter by specific username (optional)")
	flag.Parse()

	logger.Info("Starting balance query")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Connecting to database", zap.String("path", cfg.Database.Path))
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	users, err := common.InitializeUsers(ctx, services.DbService, *usernameFlag, logger)
	if err != nil {
		logger.Fatal("Failed to initialize users", zap.Error(err))
	}

	common.PrintHeader("CARD BALANCE REPORT", common.DefaultWidth)

	stats := processUsersAndGenerateReport(ctx, users, services.DbService, logger)

	summary := fmt.Sprintf("SUMMARY: %d cards across %d users (%d queried), total %s, %d journal mismatches",
		stats.totalCards, stats.usersWithCards, stats.totalUsers, common.FormatAmount(stats.grandTotal), stats.unbalanced)
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Balance query completed",
		zap.Int("users_queried", stats.totalUsers),
		zap.Int("users_with_cards", stats.usersWithCards),
		zap.Int("total_cards", stats.totalCards),
		zap.Int("journal_mismatches", stats.unbalanced))
}
