package api

import (
	"context"
	"testing"

	"bank-cards-go/internal/models"
	"bank-cards-go/internal/store"

	"github.com/shopspring/decimal"
)

func TestTransfer_OwnCards(t *testing.T) {
	f, cleanup := setupTestCardService(t)
	defer cleanup()

	ctx := context.Background()
	from := f.issueCard(t, f.alice, "4000000000000001", "100.00")
	to := f.issueCard(t, f.alice, "4000000000000002", "0")

	txn, err := f.svc.Transfer(ctx, f.alice, TransferRequest{
		FromCardId: from.Id, ToCardId: to.Id, Amount: decimal.RequireFromString("25.50"), Description: "rent",
	})
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if txn.Status != models.TransactionStatusCompleted || txn.UserId != f.alice.UserID {
		t.Errorf("Unexpected transaction %+v", txn)
	}

	mine, err := f.svc.ListMyTransactions(ctx, f.alice)
	if err != nil || len(mine) != 1 {
		t.Errorf("Expected 1 transaction, got %d (%v)", len(mine), err)
	}
	if others, _ := f.svc.ListMyTransactions(ctx, f.bob); len(others) != 0 {
		t.Errorf("Expected bob to see no transactions, got %d", len(others))
	}
	if _, err := f.svc.GetTransaction(ctx, f.bob, txn.Id); !store.IsKind(err, store.KindForbidden) {
		t.Errorf("Expected forbidden, got %v", err)
	}
	if _, err := f.svc.GetTransaction(ctx, f.admin, txn.Id); err != nil {
		t.Errorf("Admin should read any transaction: %v", err)
	}
}

func TestTransfer_ForeignCardForbidden(t *testing.T) {
	f, cleanup := setupTestCardService(t)
	defer cleanup()

	ctx := context.Background()
	mine := f.issueCard(t, f.alice, "4000000000000001", "100.00")
	theirs := f.issueCard(t, f.bob, "4000000000000002", "100.00")

	_, err := f.svc.Transfer(ctx, f.alice, TransferRequest{FromCardId: mine.Id, ToCardId: theirs.Id, Amount: decimal.NewFromInt(1)})
	if !store.IsKind(err, store.KindForbidden) {
		t.Errorf("Expected forbidden, got %v", err)
	}
	// Admins transfer only between their own cards as well.
	_, err = f.svc.Transfer(ctx, f.admin, TransferRequest{FromCardId: mine.Id, ToCardId: theirs.Id, Amount: decimal.NewFromInt(1)})
	if !store.IsKind(err, store.KindForbidden) {
		t.Errorf("Expected forbidden for admin, got %v", err)
	}
}

func TestTransferByNumbers(t *testing.T) {
	f, cleanup := setupTestCardService(t)
	defer cleanup()

	ctx := context.Background()
	from := f.issueCard(t, f.alice, "4000000000000001", "10.00")
	to := f.issueCard(t, f.alice, "4000000000000002", "0")

	if _, err := f.svc.TransferByNumbers(ctx, f.alice, "4000 0000 0000 0001", "4000000000000002", decimal.NewFromInt(4), ""); err != nil {
		t.Fatalf("TransferByNumbers failed: %v", err)
	}
	card, err := f.svc.GetCard(ctx, f.alice, to.Id)
	if err != nil || !card.Balance.Equal(decimal.NewFromInt(4)) {
		t.Errorf("Expected 4.00 on destination, got %+v (%v)", card, err)
	}
	card, err = f.svc.GetCard(ctx, f.alice, from.Id)
	if err != nil || !card.Balance.Equal(decimal.NewFromInt(6)) {
		t.Errorf("Expected 6.00 on source, got %+v (%v)", card, err)
	}

	if _, err := f.svc.TransferByNumbers(ctx, f.alice, "4000000000000009", "4000000000000002", decimal.NewFromInt(1), ""); !store.IsKind(err, store.KindNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestPendingTransfer_Lifecycle(t *testing.T) {
	f, cleanup := setupTestCardService(t)
	defer cleanup()

	ctx := context.Background()
	from := f.issueCard(t, f.alice, "4000000000000001", "50.00")
	to := f.issueCard(t, f.alice, "4000000000000002", "0")
	req := TransferRequest{FromCardId: from.Id, ToCardId: to.Id, Amount: decimal.NewFromInt(20)}

	pending, err := f.svc.CreatePendingTransfer(ctx, f.alice, req)
	if err != nil {
		t.Fatalf("CreatePendingTransfer failed: %v", err)
	}
	if _, err := f.svc.ExecuteTransfer(ctx, f.admin, pending.Id); !store.IsKind(err, store.KindForbidden) {
		t.Errorf("Expected admin execute to be forbidden, got %v", err)
	}
	done, err := f.svc.ExecuteTransfer(ctx, f.alice, pending.Id)
	if err != nil || done.Status != models.TransactionStatusCompleted {
		t.Fatalf("Expected COMPLETED, got %+v (%v)", done, err)
	}

	second, err := f.svc.CreatePendingTransfer(ctx, f.alice, req)
	if err != nil {
		t.Fatalf("CreatePendingTransfer failed: %v", err)
	}
	if _, err := f.svc.CancelTransfer(ctx, f.bob, second.Id); !store.IsKind(err, store.KindForbidden) {
		t.Errorf("Expected forbidden cancel, got %v", err)
	}
	cancelled, err := f.svc.CancelTransfer(ctx, f.admin, second.Id)
	if err != nil || cancelled.Status != models.TransactionStatusCancelled {
		t.Errorf("Expected CANCELLED, got %+v (%v)", cancelled, err)
	}
}

func TestListCardTransactions_Access(t *testing.T) {
	f, cleanup := setupTestCardService(t)
	defer cleanup()

	ctx := context.Background()
	from := f.issueCard(t, f.alice, "4000000000000001", "5.00")
	to := f.issueCard(t, f.alice, "4000000000000002", "0")
	if _, err := f.svc.Transfer(ctx, f.alice, TransferRequest{FromCardId: from.Id, ToCardId: to.Id, Amount: decimal.NewFromInt(1)}); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	if _, err := f.svc.ListCardTransactions(ctx, f.bob, to.Id); !store.IsKind(err, store.KindForbidden) {
		t.Errorf("Expected forbidden, got %v", err)
	}
	txns, err := f.svc.ListCardTransactions(ctx, f.admin, to.Id)
	if err != nil || len(txns) != 1 {
		t.Errorf("Expected 1 transaction, got %d (%v)", len(txns), err)
	}
	if _, err := f.svc.ListAllTransactions(ctx, f.alice); !store.IsKind(err, store.KindForbidden) {
		t.Errorf("Expected forbidden, got %v", err)
	}
}

func TestTransfer_OwnershipCheckedBeforeAmount(t *testing.T) {
	f, cleanup := setupTestCardService(t)
	defer cleanup()

	ctx := context.Background()
	from := f.issueCard(t, f.alice, "4000000000000001", "10.00")

	_, err := f.svc.Transfer(ctx, f.alice, TransferRequest{
		FromCardId: from.Id, ToCardId: "missing-card", Amount: decimal.Zero,
	})
	if !store.IsKind(err, store.KindNotFound) {
		t.Errorf("Expected not found for unknown card, got %v", err)
	}

	to := f.issueCard(t, f.alice, "4000000000000002", "0")
	_, err = f.svc.Transfer(ctx, f.alice, TransferRequest{
		FromCardId: from.Id, ToCardId: to.Id, Amount: decimal.Zero,
	})
	if !store.IsKind(err, store.KindInvalidInput) {
		t.Errorf("Expected invalid input for zero amount, got %v", err)
	}
}
