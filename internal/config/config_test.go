package config

import (
	"strings"
	"testing"
	"time"
)

const testKey = "config-test-master-key-0123456789"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CARD_ENCRYPTION_KEY", testKey)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Path != "cards.db" {
		t.Errorf("Expected default path cards.db, got %s", cfg.Database.Path)
	}
	if cfg.Database.MaxOpenConns != 25 || cfg.Database.MaxIdleConns != 5 {
		t.Errorf("Unexpected pool defaults %+v", cfg.Database)
	}
	if cfg.Database.BusyTimeout != 5*time.Second {
		t.Errorf("Expected 5s busy timeout, got %v", cfg.Database.BusyTimeout)
	}
	if cfg.Database.ConflictRetries != 3 {
		t.Errorf("Expected 3 retries, got %d", cfg.Database.ConflictRetries)
	}
	if cfg.Codec.KeyId != "card-key" {
		t.Errorf("Expected default key id, got %s", cfg.Codec.KeyId)
	}
	if cfg.Expiry.Schedule != "@daily" {
		t.Errorf("Expected @daily schedule, got %s", cfg.Expiry.Schedule)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CARD_ENCRYPTION_KEY", testKey)
	t.Setenv("DATABASE_PATH", "/tmp/other.db")
	t.Setenv("DB_BUSY_TIMEOUT", "250ms")
	t.Setenv("TRANSFER_MAX_RETRIES", "7")
	t.Setenv("CARD_KEY_ID", "k2")
	t.Setenv("SEED_FILE", "fixtures.yaml")
	t.Setenv("EXPIRY_SCHEDULE", "0 3 * * *")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Path != "/tmp/other.db" || cfg.Database.BusyTimeout != 250*time.Millisecond {
		t.Errorf("Unexpected database config %+v", cfg.Database)
	}
	if cfg.Database.ConflictRetries != 7 || cfg.Codec.KeyId != "k2" {
		t.Errorf("Unexpected overrides %+v %+v", cfg.Database, cfg.Codec)
	}
	if cfg.Seed.File != "fixtures.yaml" || cfg.Expiry.Schedule != "0 3 * * *" {
		t.Errorf("Unexpected seed/expiry config %+v %+v", cfg.Seed, cfg.Expiry)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing key", map[string]string{"CARD_ENCRYPTION_KEY": ""}, "CARD_ENCRYPTION_KEY is required"},
		{"short key", map[string]string{"CARD_ENCRYPTION_KEY": "short"}, "at least 32 bytes"},
		{"bad duration", map[string]string{"CARD_ENCRYPTION_KEY": testKey, "DB_PING_TIMEOUT": "soon"}, "invalid duration for DB_PING_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
