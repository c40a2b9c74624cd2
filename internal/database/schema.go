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

const schema = `
	-- Users known to the account directory
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL CHECK (role IN ('USER', 'ADMIN')),
		created_at TIMESTAMP NOT NULL
	);

	-- Cards; the number is stored encrypted with a keyed fingerprint for uniqueness
	CREATE TABLE IF NOT EXISTS cards (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		number_ciphertext TEXT NOT NULL,
		number_fingerprint TEXT NOT NULL UNIQUE,
		owner TEXT NOT NULL,
		expiry_date TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('ACTIVE', 'BLOCKED', 'EXPIRED')),
		balance TEXT NOT NULL DEFAULT '0.00' CHECK (CAST(balance AS REAL) >= 0),
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cards_user_id ON cards(user_id);
	CREATE INDEX IF NOT EXISTS idx_cards_status_expiry ON cards(status, expiry_date);

	-- Transfers; card references are kept as plain ids so history outlives deleted cards
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		from_card_id TEXT NOT NULL,
		to_card_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('PENDING', 'COMPLETED', 'FAILED', 'CANCELLED')),
		description TEXT NOT NULL DEFAULT '',
		failure_reason TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		processed_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions(user_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_from_card ON transactions(from_card_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_to_card ON transactions(to_card_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at);

	-- Signed balance movements per card, used for reconciliation
	CREATE TABLE IF NOT EXISTS journal_entries (
		id TEXT PRIMARY KEY,
		card_id TEXT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
		transaction_id TEXT NOT NULL DEFAULT '',
		entry_type TEXT NOT NULL,
		amount TEXT NOT NULL,
		balance_after TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_journal_card_id ON journal_entries(card_id);
	CREATE INDEX IF NOT EXISTS idx_journal_transaction_id ON journal_entries(transaction_id);

	-- Card block requests
	CREATE TABLE IF NOT EXISTS block_requests (
		id TEXT PRIMARY KEY,
		card_id TEXT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
		requester_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		reason TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('PENDING', 'APPROVED', 'REJECTED')),
		processed_by TEXT NOT NULL DEFAULT '',
		processed_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	-- At most one pending request per card
	CREATE UNIQUE INDEX IF NOT EXISTS idx_block_requests_pending_card
		ON block_requests(card_id) WHERE status = 'PENDING';
	CREATE INDEX IF NOT EXISTS idx_block_requests_status ON block_requests(status);
	CREATE INDEX IF NOT EXISTS idx_block_requests_requester ON block_requests(requester_id);
`
