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

	"bank-cards-go/internal/api"
	"bank-cards-go/internal/common"
	"bank-cards-go/internal/config"
	"bank-cards-go/internal/models"
	"bank-cards-go/internal/store"

	"go.uber.org/zap"
)

const (
	actionList    = "list"
	actionCreate  = "create"
	actionApprove = "approve"
	actionReject  = "reject"
)

func printRequests(requests []models.BlockRequest) {
	for i, r := range requests {
		processed := "-"
		if r.ProcessedAt != nil {
			processed = fmt.Sprintf("%s by %s", r.ProcessedAt.Format("2006-01-02 15:04:05"), common.ShortId(r.ProcessedBy))
		}
		fmt.Printf("%s %s  card=%s  %-8s  %q  processed: %s\n",
			common.BoxPrefix(i == len(requests)-1),
			common.ShortId(r.Id),
			common.ShortId(r.CardId),
			r.Status,
			r.Reason,
			processed)
	}
}

func run(ctx context.Context, cards *api.CardService, id api.Identity, action, cardId, requestId, reason, status string) error {
	switch action {
	case actionList:
		var requests []models.BlockRequest
		var err error
		if id.IsAdmin() {
			requests, err = cards.ListBlockRequests(ctx, id, status)
		} else {
			requests, err = cards.ListMyBlockRequests(ctx, id)
		}
		if err != nil {
			return err
		}
		common.PrintHeader(fmt.Sprintf("BLOCK REQUESTS (%d)", len(requests)), common.WideWidth)
		printRequests(requests)
		common.PrintSeparator("=", common.WideWidth)
		return nil

	case actionCreate:
		if cardId == "" {
			return fmt.Errorf("--card is required for create")
		}
		request, err := cards.RequestBlock(ctx, id, cardId, reason)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Block request %s filed for card %s\n", request.Id, request.CardId)
		return nil

	case actionApprove, actionReject:
		if requestId == "" {
			return fmt.Errorf("--request is required for %s", action)
		}
		var request *models.BlockRequest
		var err error
		if action == actionApprove {
			request, err = cards.ApproveBlockRequest(ctx, id, requestId)
		} else {
			request, err = cards.RejectBlockRequest(ctx, id, requestId)
		}
		if err != nil {
			return err
		}
		fmt.Printf("✓ Block request %s is now %s\n", request.Id, request.Status)
		return nil

	default:
		return fmt.Errorf("unknown action %q: expected list, create, approve or reject", action)
	}
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	usernameFlag := flag.String("username", "", "Acting username (required)")
	actionFlag := flag.String("action", actionList, "One of: list, create, approve, reject")
	cardFlag := flag.String("card", "", "Card id (create)")
	requestFlag := flag.String("request", "", "Block request id (approve, reject)")
	reasonFlag := flag.String("reason", "", "Reason for blocking (create)")
	statusFlag := flag.String("status", "", "Status filter for admins (list)")
	flag.Parse()

	if *usernameFlag == "" {
		zap.L().Fatal("The --username flag is required")
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

	id, err := common.ResolveIdentity(ctx, services.DbService, *usernameFlag)
	if err != nil {
		zap.L().Fatal("Failed to resolve user", zap.Error(err))
	}

	if err := run(ctx, services.CardService, id, *actionFlag, *cardFlag, *requestFlag, *reasonFlag, *statusFlag); err != nil {
		zap.L().Error("Block request action failed",
			zap.String("action", *actionFlag),
			zap.String("kind", string(store.KindOf(err))),
			zap.Error(err))
		fmt.Printf("\n✗ %s\n\n", store.Message(err))
	}
}
