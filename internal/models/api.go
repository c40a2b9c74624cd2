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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CardView is the outbound representation of a card; the number is masked
type CardView struct {
	Id           string          `json:"id"`
	MaskedNumber string          `json:"card_number"`
	Owner        string          `json:"owner"`
	ExpiryDate   string          `json:"expiry_date"`
	Status       CardStatus      `json:"status"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    time.Time       `json:"created_at"`
}

// CardBalance is a single line of a user's balance report
type CardBalance struct {
	CardId       string          `json:"card_id"`
	MaskedNumber string          `json:"card_number"`
	Balance      decimal.Decimal `json:"balance"`
	Status       CardStatus      `json:"status"`
}

// UserBalance aggregates balances across all of a user's cards regardless of status
type UserBalance struct {
	UserId       string          `json:"user_id"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	Cards        []CardBalance   `json:"cards"`
}

// CardPage is one page of a user's cards
type CardPage struct {
	Items         []CardView `json:"content"`
	Page          int        `json:"page"`
	Size          int        `json:"size"`
	TotalElements int        `json:"total_elements"`
	TotalPages    int        `json:"total_pages"`
	First         bool       `json:"first"`
	Last          bool       `json:"last"`
	HasNext       bool       `json:"has_next"`
	HasPrevious   bool       `json:"has_previous"`
}
