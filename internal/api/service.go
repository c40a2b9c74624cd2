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
	"fmt"

	"bank-cards-go/internal/store"
)

// CardService is the caller-facing entry point of the card engine. Every
// operation takes the caller's Identity, checks role and ownership once,
// then delegates to the store.
type CardService struct {
	store store.CardStore
}

func NewCardService(s store.CardStore) *CardService {
	return &CardService{
		store: s,
	}
}

func (s *CardService) HealthCheck(ctx context.Context) error {
	_, err := s.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}
