package api

import (
	"context"
	"fmt"
	"testing"

	"bank-cards-go/internal/store"

	"github.com/shopspring/decimal"
)

func TestPageRequest_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{"defaults", PageRequest{}, PageRequest{Page: 0, Size: 20, SortBy: "createdAt", SortDirection: "desc"}},
		{"negative page", PageRequest{Page: -3, Size: 5}, PageRequest{Page: 0, Size: 5, SortBy: "createdAt", SortDirection: "desc"}},
		{"size too large", PageRequest{Size: 500}, PageRequest{Size: 100, SortBy: "createdAt", SortDirection: "desc"}},
		{"negative size", PageRequest{Size: -1}, PageRequest{Size: 1, SortBy: "createdAt", SortDirection: "desc"}},
		{"valid sort", PageRequest{Size: 10, SortBy: store.SortFieldBalance, SortDirection: "ASC"}, PageRequest{Size: 10, SortBy: "balance", SortDirection: "asc"}},
		{"unknown sort", PageRequest{Size: 10, SortBy: "cardNumber", SortDirection: "sideways"}, PageRequest{Size: 10, SortBy: "createdAt", SortDirection: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.normalize(); got != tt.want {
				t.Errorf("normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestListMyCards(t *testing.T) {
	f, cleanup := setupTestCardService(t)
	defer cleanup()

	for i := 1; i <= 5; i++ {
		f.issueCard(t, f.alice, fmt.Sprintf("40000000000000%02d", i), fmt.Sprintf("%d.00", i*10))
	}
	f.issueCard(t, f.bob, "4000000000000099", "1.00")

	page, err := f.svc.ListMyCards(context.Background(), f.alice, PageRequest{Page: 1, Size: 2, SortBy: "balance", SortDirection: "desc"})
	if err != nil {
		t.Fatalf("ListMyCards failed: %v", err)
	}
	if page.TotalElements != 5 || page.TotalPages != 3 {
		t.Errorf("Expected 5 elements over 3 pages, got %d/%d", page.TotalElements, page.TotalPages)
	}
	if len(page.Items) != 2 || !page.Items[0].Balance.Equal(decimal.NewFromInt(30)) || !page.Items[1].Balance.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Unexpected page items %+v", page.Items)
	}
	if page.First || page.Last || !page.HasNext || !page.HasPrevious {
		t.Errorf("Unexpected page flags %+v", page)
	}
	for _, item := range page.Items {
		if item.MaskedNumber[:4] != "****" {
			t.Errorf("Expected masked number, got %q", item.MaskedNumber)
		}
	}
}
