package common

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bank-cards-go/internal/codec"
	"bank-cards-go/internal/database"
	"bank-cards-go/internal/models"

	"github.com/shopspring/decimal"
)

const testSeed = `
users:
  - username: admin
    role: ADMIN
  - username: alice
    role: user
    cards:
      - number: "4111 1111 1111 1111"
        owner: Alice Smith
        expiry: "2099-12-31"
        balance: "150.25"
      - number: "4111111111112222"
        owner: Alice Smith
        expiry: "2099-06-30"
`

func TestParseSeed(t *testing.T) {
	seed, err := ParseSeed([]byte(testSeed))
	if err != nil {
		t.Fatalf("ParseSeed failed: %v", err)
	}
	if len(seed.Users) != 2 || len(seed.Users[1].Cards) != 2 {
		t.Errorf("Unexpected seed contents %+v", seed)
	}
}

func TestParseSeed_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"missing username", "users:\n  - role: USER\n", "missing username"},
		{"bad role", "users:\n  - username: x\n    role: ROOT\n", "unknown role"},
		{"bad number", "users:\n  - username: x\n    role: USER\n    cards:\n      - number: \"1234\"\n        expiry: \"2099-01-01\"\n", "invalid number"},
		{"bad expiry", "users:\n  - username: x\n    role: USER\n    cards:\n      - number: \"4111111111111111\"\n        expiry: \"12/99\"\n", "invalid expiry"},
		{"bad balance", "users:\n  - username: x\n    role: USER\n    cards:\n      - number: \"4111111111111111\"\n        expiry: \"2099-01-01\"\n        balance: lots\n", "invalid balance"},
		{"not yaml", "users: [", "unable to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeed([]byte(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestApplySeed_Idempotent(t *testing.T) {
	ctx := context.Background()
	c, err := codec.New("seed-test-master-key-0123456789abcdef")
	if err != nil {
		t.Fatalf("Failed to create codec: %v", err)
	}
	db, err := database.NewService(ctx, models.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "seed.db"),
		MaxOpenConns: 4,
		PingTimeout:  5 * time.Second,
	}, c)
	if err != nil {
		t.Fatalf("Failed to create database service: %v", err)
	}
	defer db.Close()

	seed, err := ParseSeed([]byte(testSeed))
	if err != nil {
		t.Fatalf("ParseSeed failed: %v", err)
	}

	first, err := ApplySeed(ctx, db, seed)
	if err != nil {
		t.Fatalf("ApplySeed failed: %v", err)
	}
	if first.UsersCreated != 2 || first.CardsCreated != 2 {
		t.Errorf("Unexpected first run %+v", first)
	}

	second, err := ApplySeed(ctx, db, seed)
	if err != nil {
		t.Fatalf("Second ApplySeed failed: %v", err)
	}
	if second.UsersCreated != 0 || second.CardsCreated != 0 || second.UsersSkipped != 2 || second.CardsSkipped != 2 {
		t.Errorf("Unexpected second run %+v", second)
	}

	card, err := db.GetCardByNumber(ctx, "4111111111111111")
	if err != nil {
		t.Fatalf("GetCardByNumber failed: %v", err)
	}
	if !card.Balance.Equal(decimal.RequireFromString("150.25")) {
		t.Errorf("Expected 150.25, got %s", card.Balance)
	}

	id, err := ResolveIdentity(ctx, db, "admin")
	if err != nil || !id.IsAdmin() {
		t.Errorf("Expected admin identity, got %+v (%v)", id, err)
	}
}

func TestShortId(t *testing.T) {
	if got := ShortId(""); got != "none" {
		t.Errorf("Expected none, got %s", got)
	}
	if got := ShortId("0123456789"); got != "01234567..." {
		t.Errorf("Unexpected short id %s", got)
	}
}
