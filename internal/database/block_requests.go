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

	"bank-cards-go/internal/models"
	"bank-cards-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func scanBlockRequest(row rowScanner) (*models.BlockRequest, error) {
	var request models.BlockRequest
	var status string
	var processedAt sql.NullTime
	err := row.Scan(&request.Id, &request.CardId, &request.RequesterId, &request.Reason, &status,
		&request.ProcessedBy, &processedAt, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return nil, err
	}
	request.Status = models.BlockRequestStatus(status)
	if processedAt.Valid {
		processed := processedAt.Time
		request.ProcessedAt = &processed
	}
	return &request, nil
}

func (s *Service) getBlockRequest(ctx context.Context, q querier, requestId string) (*models.BlockRequest, error) {
	request, err := scanBlockRequest(q.QueryRowContext(ctx, queryGetBlockRequestById, requestId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound("Card block request", requestId)
		}
		return nil, err
	}
	return request, nil
}

func (s *Service) queryBlockRequests(ctx context.Context, query string, args ...any) ([]models.BlockRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query block requests: %w", err)
	}
	defer closeRows(rows)

	var requests []models.BlockRequest
	for rows.Next() {
		request, err := scanBlockRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan block request: %w", err)
		}
		requests = append(requests, *request)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating block request rows: %w", err)
	}
	return requests, nil
}

// CreateBlockRequest opens a PENDING request for the card. The partial unique
// index on pending requests rejects a second one atomically.
func (s *Service) CreateBlockRequest(ctx context.Context, params store.CreateBlockRequestParams) (*models.BlockRequest, error) {
	if err := store.ValidateReason(params.Reason); err != nil {
		return nil, err
	}

	card, err := s.getCard(ctx, s.db, params.CardId)
	if err != nil {
		return nil, classify("get card", err, zap.String("card_id", params.CardId))
	}
	if card.UserId != params.RequesterId {
		return nil, store.Forbidden("You can only request blocking of your own cards")
	}

	now := s.now()
	request := &models.BlockRequest{
		Id:          uuid.New().String(),
		CardId:      params.CardId,
		RequesterId: params.RequesterId,
		Reason:      params.Reason,
		Status:      models.BlockRequestStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = s.db.ExecContext(ctx, queryInsertBlockRequest,
		request.Id, request.CardId, request.RequesterId, request.Reason, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.Duplicate("There is already a pending block request for this card")
		}
		if isForeignKeyViolation(err) {
			return nil, store.NotFound("Card", params.CardId)
		}
		return nil, classify("create block request", err, zap.String("card_id", params.CardId))
	}

	zap.L().Info("Block request created",
		zap.String("request_id", request.Id),
		zap.String("card_id", request.CardId),
		zap.String("requester_id", request.RequesterId))
	return request, nil
}

func (s *Service) GetBlockRequest(ctx context.Context, requestId string) (*models.BlockRequest, error) {
	request, err := s.getBlockRequest(ctx, s.db, requestId)
	if err != nil {
		return nil, classify("get block request", err, zap.String("request_id", requestId))
	}
	return request, nil
}

// ApproveBlockRequest blocks the card and approves the request in one commit.
func (s *Service) ApproveBlockRequest(ctx context.Context, requestId, adminId string) (*models.BlockRequest, error) {
	zap.L().Info("Approving block request", zap.String("request_id", requestId), zap.String("admin_id", adminId))
	return s.processBlockRequest(ctx, requestId, adminId, models.BlockRequestStatusApproved)
}

// RejectBlockRequest closes the request and leaves the card untouched.
func (s *Service) RejectBlockRequest(ctx context.Context, requestId, adminId string) (*models.BlockRequest, error) {
	zap.L().Info("Rejecting block request", zap.String("request_id", requestId), zap.String("admin_id", adminId))
	return s.processBlockRequest(ctx, requestId, adminId, models.BlockRequestStatusRejected)
}

func (s *Service) processBlockRequest(ctx context.Context, requestId, adminId string, decision models.BlockRequestStatus) (*models.BlockRequest, error) {
	request, err := s.getBlockRequest(ctx, s.db, requestId)
	if err != nil {
		return nil, classify("get block request", err, zap.String("request_id", requestId))
	}
	if request.Status != models.BlockRequestStatusPending {
		return nil, store.InvalidStateTransition("Request is not in PENDING status", string(request.Status))
	}

	unlock := s.locks.lock(request.CardId)
	defer unlock()

	for attempt := 0; ; attempt++ {
		var processed *models.BlockRequest
		err := s.withTx(ctx, func(tx *sql.Tx) error {
			current, err := s.getBlockRequest(ctx, tx, requestId)
			if err != nil {
				return err
			}
			if current.Status != models.BlockRequestStatusPending {
				return store.InvalidStateTransition("Request is not in PENDING status", string(current.Status))
			}

			if decision == models.BlockRequestStatusApproved {
				card, err := s.getCard(ctx, tx, current.CardId)
				if err != nil {
					return err
				}
				if card.Status != models.CardStatusBlocked {
					if err := s.writeStatus(ctx, tx, card, models.CardStatusBlocked); err != nil {
						return err
					}
				}
			}

			now := s.now()
			result, err := tx.ExecContext(ctx, queryProcessBlockRequest, string(decision), adminId, now, now, requestId)
			if err != nil {
				return fmt.Errorf("failed to update block request: %w", err)
			}
			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to check rows affected: %w", err)
			}
			if rowsAffected == 0 {
				return fmt.Errorf("block request update failed - %w", store.ErrConcurrentModification)
			}

			current.Status = decision
			current.ProcessedBy = adminId
			current.ProcessedAt = &now
			current.UpdatedAt = now
			processed = current
			return nil
		})
		if errors.Is(err, store.ErrConcurrentModification) && attempt < s.maxRetries {
			continue
		}
		if err != nil {
			return nil, classify("process block request", err, zap.String("request_id", requestId))
		}

		zap.L().Info("Block request processed",
			zap.String("request_id", requestId),
			zap.String("card_id", processed.CardId),
			zap.String("status", string(processed.Status)),
			zap.String("processed_by", adminId))
		return processed, nil
	}
}

func (s *Service) ListBlockRequests(ctx context.Context) ([]models.BlockRequest, error) {
	requests, err := s.queryBlockRequests(ctx, queryGetAllBlockRequests)
	if err != nil {
		return nil, classify("list block requests", err)
	}
	return requests, nil
}

func (s *Service) ListBlockRequestsByStatus(ctx context.Context, status models.BlockRequestStatus) ([]models.BlockRequest, error) {
	requests, err := s.queryBlockRequests(ctx, queryGetBlockRequestsByStatus, string(status))
	if err != nil {
		return nil, classify("list block requests by status", err, zap.String("status", string(status)))
	}
	return requests, nil
}

func (s *Service) ListBlockRequestsByRequester(ctx context.Context, requesterId string) ([]models.BlockRequest, error) {
	requests, err := s.queryBlockRequests(ctx, queryGetBlockRequestsByRequester, requesterId)
	if err != nil {
		return nil, classify("list block requests by requester", err, zap.String("requester_id", requesterId))
	}
	return requests, nil
}
