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
)

type BlockRequestStatus string

const (
	BlockRequestStatusPending  BlockRequestStatus = "PENDING"
	BlockRequestStatusApproved BlockRequestStatus = "APPROVED"
	BlockRequestStatusRejected BlockRequestStatus = "REJECTED"
)

func ParseBlockRequestStatus(value string) (BlockRequestStatus, error) {
	switch status := BlockRequestStatus(strings.ToUpper(strings.TrimSpace(value))); status {
	case BlockRequestStatusPending, BlockRequestStatusApproved, BlockRequestStatusRejected:
		return status, nil
	default:
		return "", fmt.Errorf("unknown block request status %q", value)
	}
}

// BlockRequest asks an admin to move a card to BLOCKED.
// ProcessedBy and ProcessedAt are set once the request leaves PENDING.
type BlockRequest struct {
	Id          string             `db:"id"`
	CardId      string             `db:"card_id"`
	RequesterId string             `db:"requester_id"`
	Reason      string             `db:"reason"`
	Status      BlockRequestStatus `db:"status"`
	ProcessedBy string             `db:"processed_by"`
	ProcessedAt *time.Time         `db:"processed_at"`
	CreatedAt   time.Time          `db:"created_at"`
	UpdatedAt   time.Time          `db:"updated_at"`
}
