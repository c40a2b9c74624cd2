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

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type transferRequest struct {
	username    string
	from        string
	to          string
	amount      decimal.Decimal
	description string
	byNumber    bool
	pending     bool
	executeId   string
	cancelId    string
}

func parseAndValidateFlags() (*transferRequest, error) {
	usernameFlag := flag.String("username", "", "Username of the card owner (required)")
	fromFlag := flag.String("from", "", "Source card id, or number with --by-number (required)")
	toFlag := flag.String("to", "", "Destination card id, or number with --by-number (required)")
	amountFlag := flag.String("amount", "", "Amount to transfer (required)")
	descriptionFlag := flag.String("description", "", "Optional description")
	byNumberFlag := flag.Bool("by-number", false, "Treat --from and --to as card numbers")
	pendingFlag := flag.Bool("pending", false, "Record a PENDING transfer without executing it")
	executeFlag := flag.String("execute", "", "Execute the PENDING transaction with this id")
	cancelFlag := flag.String("cancel", "", "Cancel the PENDING transaction with this id")
	flag.Parse()

	if *usernameFlag == "" {
		return nil, fmt.Errorf("the --username flag is required")
	}
	if *executeFlag != "" || *cancelFlag != "" {
		if *executeFlag != "" && *cancelFlag != "" {
			return nil, fmt.Errorf("--execute and --cancel are mutually exclusive")
		}
		return &transferRequest{username: *usernameFlag, executeId: *executeFlag, cancelId: *cancelFlag}, nil
	}

	if *fromFlag == "" || *toFlag == "" || *amountFlag == "" {
		return nil, fmt.Errorf("all flags are required: --username, --from, --to, --amount")
	}
	if *byNumberFlag && *pendingFlag {
		return nil, fmt.Errorf("--pending cannot be combined with --by-number")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	return &transferRequest{
		username:    *usernameFlag,
		from:        *fromFlag,
		to:          *toFlag,
		amount:      amount,
		description: *descriptionFlag,
		byNumber:    *byNumberFlag,
		pending:     *pendingFlag,
	}, nil
}

func execute(ctx context.Context, cards *api.CardService, id api.Identity, req *transferRequest) (*models.Transaction, error) {
	switch {
	case req.executeId != "":
		return cards.ExecuteTransfer(ctx, id, req.executeId)
	case req.cancelId != "":
		return cards.CancelTransfer(ctx, id, req.cancelId)
	case req.byNumber:
		return cards.TransferByNumbers(ctx, id, req.from, req.to, req.amount, req.description)
	}

	transfer := api.TransferRequest{
		FromCardId:  req.from,
		ToCardId:    req.to,
		Amount:      req.amount,
		Description: req.description,
	}
	if req.pending {
		return cards.CreatePendingTransfer(ctx, id, transfer)
	}
	return cards.Transfer(ctx, id, transfer)
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	req, err := parseAndValidateFlags()
	if err != nil {
		zap.L().Fatal("Invalid flags", zap.Error(err))
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

	id, err := common.ResolveIdentity(ctx, services.DbService, req.username)
	if err != nil {
		zap.L().Fatal("Failed to resolve user", zap.Error(err))
	}

	zap.L().Info("Submitting transfer",
		zap.String("user_id", id.UserID),
		zap.String("amount", req.amount.String()),
		zap.Bool("pending", req.pending))

	txn, err := execute(ctx, services.CardService, id, req)
	if err != nil {
		zap.L().Error("Transfer rejected",
			zap.String("kind", string(store.KindOf(err))),
			zap.String("reason", store.Message(err)),
			zap.Any("details", store.Metadata(err)))
		fmt.Printf("\n✗ Transfer rejected: %s\n\n", store.Message(err))
		return
	}

	common.PrintHeader("TRANSFER RECORDED", common.DefaultWidth)
	fmt.Printf("Transaction: %s\n", txn.Id)
	fmt.Printf("From card:   %s\n", txn.FromCardId)
	fmt.Printf("To card:     %s\n", txn.ToCardId)
	fmt.Printf("Amount:      %s\n", common.FormatAmount(txn.Amount))
	fmt.Printf("Status:      %s\n", txn.Status)
	if txn.FailureReason != "" {
		fmt.Printf("Reason:      %s\n", txn.FailureReason)
	}
	common.PrintSeparator("=", common.DefaultWidth)
}
