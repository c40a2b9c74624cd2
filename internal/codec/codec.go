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

package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"bank-cards-go/internal/store"

	"golang.org/x/crypto/hkdf"
)

const (
	envelopePrefix = "cardnum.v1:"
	algorithm      = "aes-256-gcm"

	// MinKeyLength is the shortest accepted master key.
	MinKeyLength = 32

	CardNumberLength = 16

	encryptionInfo  = "bank-cards/card-number/encryption"
	fingerprintInfo = "bank-cards/card-number/fingerprint"
)

var _ store.CardNumberCodec = (*Codec)(nil)

type Option func(*Codec)

// Codec encrypts card numbers with AES-256-GCM under a random nonce and
// computes an HMAC-SHA256 blind index for equality lookups. Both keys are
// derived from one master key.
type Codec struct {
	aead    cipher.AEAD
	macKey  []byte
	keyId   string
	version int
}

type envelope struct {
	KeyId      string `json:"kid"`
	Version    int    `json:"ver"`
	Algorithm  string `json:"alg"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

func WithKeyId(id string) Option {
	return func(c *Codec) {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			c.keyId = trimmed
		}
	}
}

func WithVersion(version int) Option {
	return func(c *Codec) {
		if version > 0 {
			c.version = version
		}
	}
}

func New(masterKey string, opts ...Option) (*Codec, error) {
	key := []byte(strings.TrimSpace(masterKey))
	if len(key) < MinKeyLength {
		return nil, fmt.Errorf("codec: master key must be at least %d bytes, got %d", MinKeyLength, len(key))
	}

	encKey, err := deriveKey(key, encryptionInfo)
	if err != nil {
		return nil, err
	}
	macKey, err := deriveKey(key, fingerprintInfo)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("codec: create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("codec: create gcm: %w", err)
	}

	c := &Codec{
		aead:    gcm,
		macKey:  macKey,
		keyId:   "card-key",
		version: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func deriveKey(master []byte, info string) ([]byte, error) {
	out := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(info)), out); err != nil {
		return nil, fmt.Errorf("codec: derive %s key: %w", info, err)
	}
	return out, nil
}

// Encode returns a self-describing ciphertext for a 16-digit card number.
// Two encodings of the same number never match.
func (c *Codec) Encode(plaintext string) (string, error) {
	if !IsValidNumber(plaintext) {
		return "", store.InvalidInput("Card number must be exactly 16 digits")
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("codec: nonce generation failed: %w", err)
	}

	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), []byte(c.keyId))
	data, err := json.Marshal(envelope{
		KeyId:      c.keyId,
		Version:    c.version,
		Algorithm:  algorithm,
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(sealed),
	})
	if err != nil {
		return "", fmt.Errorf("codec: encode envelope: %w", err)
	}

	return envelopePrefix + base64.RawURLEncoding.EncodeToString(data), nil
}

func (c *Codec) Decode(ciphertext string) (string, error) {
	payload, ok := strings.CutPrefix(ciphertext, envelopePrefix)
	if !ok {
		return "", fmt.Errorf("codec: missing %q prefix", envelopePrefix)
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("codec: decode payload: %w", err)
	}

	var parsed envelope
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("codec: decode envelope: %w", err)
	}
	if parsed.Algorithm != algorithm {
		return "", fmt.Errorf("codec: unsupported algorithm %q", parsed.Algorithm)
	}
	if parsed.KeyId != c.keyId {
		return "", fmt.Errorf("codec: key id mismatch: got %q want %q", parsed.KeyId, c.keyId)
	}
	if parsed.Version != c.version {
		return "", fmt.Errorf("codec: key version mismatch: got %d want %d", parsed.Version, c.version)
	}

	nonce, err := base64.StdEncoding.DecodeString(parsed.Nonce)
	if err != nil {
		return "", fmt.Errorf("codec: decode nonce: %w", err)
	}
	if len(nonce) != c.aead.NonceSize() {
		return "", fmt.Errorf("codec: invalid nonce size %d", len(nonce))
	}
	sealed, err := base64.StdEncoding.DecodeString(parsed.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("codec: decode ciphertext: %w", err)
	}

	plaintext, err := c.aead.Open(nil, nonce, sealed, []byte(parsed.KeyId))
	if err != nil {
		return "", fmt.Errorf("codec: decrypt payload: %w", err)
	}
	return string(plaintext), nil
}

// Fingerprint is the keyed blind index of a card number.
func (c *Codec) Fingerprint(plaintext string) string {
	mac := hmac.New(sha256.New, c.macKey)
	mac.Write([]byte(plaintext))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Codec) KeyId() string {
	return c.keyId
}

// IsValidNumber reports whether value is exactly sixteen ASCII digits.
func IsValidNumber(value string) bool {
	if len(value) != CardNumberLength {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

// NormalizeNumber strips the spaces and dashes people type into card numbers.
func NormalizeNumber(value string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(value))
}
