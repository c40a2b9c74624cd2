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

package common

import (
	"context"
	"fmt"

	"bank-cards-go/internal/api"
	"bank-cards-go/internal/models"
	"bank-cards-go/internal/store"

	"go.uber.org/zap"
)

// InitializeUsers retrieves users based on an optional username filter.
// If usernameFilter is provided, returns a single user with that username.
// If usernameFilter is empty, returns all users.
func InitializeUsers(ctx context.Context, cards store.CardStore, usernameFilter string, logger *zap.Logger) ([]models.User, error) {
	if usernameFilter != "" {
		logger.Info("Looking up user by username", zap.String("username", usernameFilter))
		user, err := cards.GetUserByUsername(ctx, usernameFilter)
		if err != nil {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return []models.User{*user}, nil
	}

	users, err := cards.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	logger.Info("Retrieved users", zap.Int("count", len(users)))
	return users, nil
}

// ResolveIdentity looks up username and returns the caller identity the card
// service expects.
func ResolveIdentity(ctx context.Context, cards store.CardStore, username string) (api.Identity, error) {
	if username == "" {
		return api.Identity{}, fmt.Errorf("username is required")
	}
	user, err := cards.GetUserByUsername(ctx, username)
	if err != nil {
		return api.Identity{}, fmt.Errorf("unknown user %s: %w", username, err)
	}
	return api.Identity{UserID: user.Id, Role: user.Role}, nil
}
