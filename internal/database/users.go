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

	"bank-cards-go/internal/models"
	"bank-cards-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var role string
	if err := row.Scan(&user.Id, &user.Username, &role, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.Role = models.Role(role)
	return &user, nil
}

func (s *Service) CreateUser(ctx context.Context, params store.CreateUserParams) (*models.User, error) {
	username := strings.TrimSpace(params.Username)
	if username == "" {
		return nil, store.InvalidInput("Username is required")
	}
	if len(username) > store.MaxUsernameLength {
		return nil, store.InvalidInput(fmt.Sprintf("Username must not exceed %d characters", store.MaxUsernameLength))
	}
	role, err := models.ParseRole(string(params.Role))
	if err != nil {
		return nil, store.InvalidInput(fmt.Sprintf("Invalid role: %s", params.Role))
	}

	user := &models.User{
		Id:        uuid.New().String(),
		Username:  username,
		Role:      role,
		CreatedAt: s.now(),
	}

	zap.L().Info("Creating user", zap.String("id", user.Id), zap.String("username", username), zap.String("role", string(role)))

	_, err = s.db.ExecContext(ctx, queryInsertUser, user.Id, user.Username, string(user.Role), user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.Duplicate(fmt.Sprintf("Username already exists: %s", username))
		}
		return nil, classify("create user", err, zap.String("username", username))
	}

	zap.L().Info("User created successfully", zap.String("id", user.Id), zap.String("username", username))
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	zap.L().Debug("Querying users")

	rows, err := s.db.QueryContext(ctx, queryGetUsers)
	if err != nil {
		return nil, classify("list users", err)
	}
	defer closeRows(rows)

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, classify("scan user", err)
		}
		users = append(users, *user)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		return nil, classify("iterate users", err)
	}

	zap.L().Debug("Retrieved users", zap.Int("count", len(users)))
	return users, nil
}

func (s *Service) GetUser(ctx context.Context, userId string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, queryGetUserById, userId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound("User", userId)
		}
		return nil, classify("get user", err, zap.String("user_id", userId))
	}
	return user, nil
}

func (s *Service) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, queryGetUserByUsername, strings.TrimSpace(username)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound("User", username)
		}
		return nil, classify("get user by username", err, zap.String("username", username))
	}
	return user, nil
}

// IsCardOwnedBy reports whether userId owns cardId. A missing card is NotFound.
func (s *Service) IsCardOwnedBy(ctx context.Context, cardId, userId string) (bool, error) {
	var ownerId string
	err := s.db.QueryRowContext(ctx, queryGetCardOwner, cardId).Scan(&ownerId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, store.NotFound("Card", cardId)
		}
		return false, classify("check card owner", err, zap.String("card_id", cardId))
	}
	return ownerId == userId, nil
}
