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
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CardStatus is the lifecycle state of a card
type CardStatus string

const (
	CardStatusActive  CardStatus = "ACTIVE"
	CardStatusBlocked CardStatus = "BLOCKED"
	CardStatusExpired CardStatus = "EXPIRED"
)

func ParseCardStatus(value string) (CardStatus, error) {
	switch status := CardStatus(strings.ToUpper(strings.TrimSpace(value))); status {
	case CardStatusActive, CardStatusBlocked, CardStatusExpired:
		return status, nil
	default:
		return "", fmt.Errorf("unknown card status %q", value)
	}
}

// Card is a bank card with its balance. CardNumber holds the decoded
// number and is never serialized.
type Card struct {
	Id         string          `db:"id"`
	UserId     string          `db:"user_id"`
	CardNumber string          `db:"-" json:"-"`
	Owner      string          `db:"owner"`
	ExpiryDate time.Time       `db:"expiry_date"`
	Status     CardStatus      `db:"status"`
	Balance    decimal.Decimal `db:"balance"`
	Version    int64           `db:"version"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

func (c *Card) IsActive() bool {
	return c.Status == CardStatusActive
}

// MaskedNumber is the display form of the card number
func (c *Card) MaskedNumber() string {
	return MaskCardNumber(c.CardNumber)
}

// MaskCardNumber keeps only the last four digits: "**** **** **** 1234".
// Anything shorter than four characters is fully masked.
func MaskCardNumber(number string) string {
	if len(number) < 4 {
		return "**** **** **** ****"
	}
	return "**** **** **** " + number[len(number)-4:]
}
