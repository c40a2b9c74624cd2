package api

import (
	"context"
	"testing"

	"bank-cards-go/internal/models"
	"bank-cards-go/internal/store"
)

func TestBlockRequestWorkflow(t *testing.T) {
	f, cleanup := setupTestCardService(t)
	defer cleanup()

	ctx := context.Background()
	card := f.issueCard(t, f.alice, "4000000000000001", "0")

	if _, err := f.svc.RequestBlock(ctx, f.bob, card.Id, "not mine"); !store.IsKind(err, store.KindForbidden) {
		t.Errorf("Expected forbidden, got %v", err)
	}

	req, err := f.svc.RequestBlock(ctx, f.alice, card.Id, "Lost wallet")
	if err != nil {
		t.Fatalf("RequestBlock failed: %v", err)
	}
	if req.Status != models.BlockRequestStatusPending || req.RequesterId != f.alice.UserID {
		t.Errorf("Unexpected request %+v", req)
	}

	if _, err := f.svc.ApproveBlockRequest(ctx, f.alice, req.Id); !store.IsKind(err, store.KindForbidden) {
		t.Errorf("Expected forbidden approve, got %v", err)
	}

	listed, err := f.svc.ListBlockRequests(ctx, f.admin, "pending")
	if err != nil || len(listed) != 1 {
		t.Fatalf("Expected 1 pending request, got %d (%v)", len(listed), err)
	}

	approved, err := f.svc.ApproveBlockRequest(ctx, f.admin, req.Id)
	if err != nil {
		t.Fatalf("ApproveBlockRequest failed: %v", err)
	}
	if approved.Status != models.BlockRequestStatusApproved || approved.ProcessedBy != f.admin.UserID {
		t.Errorf("Unexpected approved request %+v", approved)
	}

	view, err := f.svc.GetCard(ctx, f.alice, card.Id)
	if err != nil || view.Status != models.CardStatusBlocked {
		t.Errorf("Expected card BLOCKED, got %+v (%v)", view, err)
	}

	if _, err := f.svc.RejectBlockRequest(ctx, f.admin, req.Id); !store.IsKind(err, store.KindInvalidStateTransition) {
		t.Errorf("Expected invalid state transition, got %v", err)
	}

	mine, err := f.svc.ListMyBlockRequests(ctx, f.alice)
	if err != nil || len(mine) != 1 {
		t.Errorf("Expected 1 request for alice, got %d (%v)", len(mine), err)
	}
	all, err := f.svc.ListBlockRequests(ctx, f.admin, "")
	if err != nil || len(all) != 1 {
		t.Errorf("Expected 1 request overall, got %d (%v)", len(all), err)
	}
}

func TestListBlockRequests_StatusFilter(t *testing.T) {
	f, cleanup := setupTestCardService(t)
	defer cleanup()

	ctx := context.Background()
	card := f.issueCard(t, f.alice, "4000000000000002", "0")
	if _, err := f.svc.RequestBlock(ctx, f.alice, card.Id, "Stolen"); err != nil {
		t.Fatalf("RequestBlock failed: %v", err)
	}

	tests := []struct {
		status string
		want   int
	}{
		{"", 1},
		{"PENDING", 1},
		{" approved ", 0},
		{"REJECTED", 0},
	}
	for _, tt := range tests {
		got, err := f.svc.ListBlockRequests(ctx, f.admin, tt.status)
		if err != nil {
			t.Errorf("ListBlockRequests(%q) failed: %v", tt.status, err)
			continue
		}
		if len(got) != tt.want {
			t.Errorf("ListBlockRequests(%q) returned %d requests, want %d", tt.status, len(got), tt.want)
		}
	}

	_, err := f.svc.ListBlockRequests(ctx, f.admin, "BOGUS")
	if !store.IsKind(err, store.KindInvalidInput) {
		t.Fatalf("Expected invalid input for unknown status, got %v", err)
	}
	if msg := store.Message(err); msg != "Invalid status: BOGUS" {
		t.Errorf("Unexpected message %q", msg)
	}

	if _, err := f.svc.ListBlockRequests(ctx, f.alice, "BOGUS"); !store.IsKind(err, store.KindForbidden) {
		t.Errorf("Expected forbidden for non-admin, got %v", err)
	}
}
