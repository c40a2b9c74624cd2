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
	"time"

	"bank-cards-go/internal/api"
	"bank-cards-go/internal/common"
	"bank-cards-go/internal/config"
	"bank-cards-go/internal/models"
	"bank-cards-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type cardRequest struct {
	number  string
	owner   string
	expiry  time.Time
	balance decimal.Decimal
}

// parseCardFlags returns nil when no card number was given.
func parseCardFlags(number, owner, expiry, balance string) (*cardRequest, error) {
	if number == "" {
		return nil, nil
	}
	if owner == "" || expiry == "" {
		return nil, fmt.Errorf("--card requires --owner and --expiry")
	}

	expiryDate, err := time.Parse(time.DateOnly, expiry)
	if err != nil {
		return nil, fmt.Errorf("invalid expiry format, expected YYYY-MM-DD: %w", err)
	}

	amount := decimal.Zero
	if balance != "" {
		if amount, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("invalid balance format: %w", err)
		}
	}

	return &cardRequest{number: number, owner: owner, expiry: expiryDate, balance: amount}, nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	usernameFlag := flag.String("username", "", "Username (required)")
	roleFlag := flag.String("role", "USER", "Role: USER or ADMIN")
	adminFlag := flag.String("admin", "", "Issuing admin username (required with --card)")
	cardFlag := flag.String("card", "", "Optional 16-digit card number to issue to the new user")
	ownerFlag := flag.String("owner", "", "Cardholder name printed on the card")
	expiryFlag := flag.String("expiry", "", "Card expiry date (YYYY-MM-DD)")
	balanceFlag := flag.String("balance", "0", "Opening balance")
	flag.Parse()

	if *usernameFlag == "" {
		zap.L().Fatal("The --username flag is required")
	}
	role, err := models.ParseRole(*roleFlag)
	if err != nil {
		zap.L().Fatal("Invalid role", zap.Error(err))
	}
	card, err := parseCardFlags(*cardFlag, *ownerFlag, *expiryFlag, *balanceFlag)
	if err != nil {
		zap.L().Fatal("Invalid card flags", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	zap.L().Info("Creating user",
		zap.String("username", *usernameFlag),
		zap.String("role", string(role)))

	user, err := services.DbService.CreateUser(ctx, store.CreateUserParams{Username: *usernameFlag, Role: role})
	if err != nil {
		if store.IsKind(err, store.KindDuplicate) {
			zap.L().Fatal("User already exists", zap.String("username", *usernameFlag))
		}
		zap.L().Fatal("Failed to create user", zap.Error(err))
	}

	common.PrintHeader("USER CREATED", common.DefaultWidth)
	fmt.Printf("ID:       %s\n", user.Id)
	fmt.Printf("Username: %s\n", user.Username)
	fmt.Printf("Role:     %s\n", user.Role)
	common.PrintSeparator("=", common.DefaultWidth)

	if card == nil {
		return
	}

	admin, err := common.ResolveIdentity(ctx, services.DbService, *adminFlag)
	if err != nil {
		zap.L().Fatal("Failed to resolve issuing admin", zap.Error(err))
	}

	view, err := services.CardService.CreateCard(ctx, admin, api.CreateCardRequest{
		UserId:         user.Id,
		CardNumber:     card.number,
		Owner:          card.owner,
		ExpiryDate:     card.expiry,
		InitialBalance: card.balance,
	})
	if err != nil {
		zap.L().Fatal("Failed to issue card",
			zap.String("user_id", user.Id),
			zap.String("reason", store.Message(err)),
			zap.Error(err))
	}

	common.PrintHeader("CARD ISSUED", common.DefaultWidth)
	fmt.Printf("ID:       %s\n", view.Id)
	fmt.Printf("Number:   %s\n", view.MaskedNumber)
	fmt.Printf("Owner:    %s\n", view.Owner)
	fmt.Printf("Expiry:   %s\n", view.ExpiryDate)
	fmt.Printf("Balance:  %s\n", common.FormatAmount(view.Balance))
	common.PrintSeparator("=", common.DefaultWidth)
}
