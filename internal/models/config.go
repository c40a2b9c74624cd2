package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Codec    CodecConfig
	Seed     SeedConfig
	Expiry   ExpiryConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	BusyTimeout     time.Duration
	ConflictRetries int
}

// CodecConfig holds the card number encryption settings
type CodecConfig struct {
	EncryptionKey string
	KeyId         string
}

type SeedConfig struct {
	File string
}

// ExpiryConfig holds the card expiry sweep settings
type ExpiryConfig struct {
	Schedule string
}
