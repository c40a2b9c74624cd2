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

const (
	// User queries
	queryInsertUser = `
		INSERT INTO users (id, username, role, created_at) VALUES (?, ?, ?, ?)`

	queryGetUsers = `
		SELECT id, username, role, created_at
		FROM users
		ORDER BY created_at, id`

	queryGetUserById = `
		SELECT id, username, role, created_at
		FROM users
		WHERE id = ?`

	queryGetUserByUsername = `
		SELECT id, username, role, created_at
		FROM users
		WHERE username = ?`

	queryGetCardOwner = `
		SELECT user_id FROM cards WHERE id = ?`

	// Card queries
	cardColumns = `id, user_id, number_ciphertext, owner, expiry_date, status, balance, version, created_at, updated_at`

	queryInsertCard = `
		INSERT INTO cards (id, user_id, number_ciphertext, number_fingerprint, owner, expiry_date, status, balance, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`

	queryGetCardById = `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE id = ?`

	queryGetCardByFingerprint = `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE number_fingerprint = ?`

	queryGetAllCards = `
		SELECT ` + cardColumns + `
		FROM cards
		ORDER BY created_at, id`

	queryGetUserCards = `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE user_id = ?
		ORDER BY created_at, id`

	// ORDER BY is appended by ListUserCards from a fixed column whitelist.
	queryGetUserCardsPage = `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE user_id = ?`

	queryCountUserCards = `
		SELECT COUNT(*) FROM cards WHERE user_id = ?`

	queryUpdateCardBalance = `
		UPDATE cards
		SET balance = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`

	queryUpdateCardStatus = `
		UPDATE cards
		SET status = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`

	queryUpdateCardDetails = `
		UPDATE cards
		SET owner = ?, expiry_date = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`

	queryDeleteCard = `
		DELETE FROM cards WHERE id = ?`

	queryExpireCards = `
		UPDATE cards
		SET status = 'EXPIRED', version = version + 1, updated_at = ?
		WHERE status = 'ACTIVE' AND expiry_date < ?`

	// Transaction queries
	transactionColumns = `id, user_id, from_card_id, to_card_id, amount, status, description, failure_reason, created_at, processed_at`

	queryInsertTransaction = `
		INSERT INTO transactions (id, user_id, from_card_id, to_card_id, amount, status, description, failure_reason, created_at, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, '', ?, ?)`

	queryGetTransactionById = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = ?`

	queryGetAllTransactions = `
		SELECT ` + transactionColumns + `
		FROM transactions
		ORDER BY created_at DESC, id`

	queryGetUserTransactions = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = ?
		ORDER BY created_at DESC, id`

	queryGetCardTransactions = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE from_card_id = ? OR to_card_id = ?
		ORDER BY created_at DESC, id`

	queryCompletePendingTransaction = `
		UPDATE transactions
		SET status = 'COMPLETED', processed_at = ?
		WHERE id = ? AND status = 'PENDING'`

	queryFailPendingTransaction = `
		UPDATE transactions
		SET status = 'FAILED', failure_reason = ?, processed_at = ?
		WHERE id = ? AND status = 'PENDING'`

	queryCancelPendingTransaction = `
		UPDATE transactions
		SET status = 'CANCELLED', processed_at = ?
		WHERE id = ? AND status = 'PENDING'`

	// Journal queries
	queryInsertJournalEntry = `
		INSERT INTO journal_entries (id, card_id, transaction_id, entry_type, amount, balance_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryGetCardJournal = `
		SELECT id, card_id, transaction_id, entry_type, amount, balance_after, created_at
		FROM journal_entries
		WHERE card_id = ?
		ORDER BY created_at, rowid`

	// Block request queries
	blockRequestColumns = `id, card_id, requester_id, reason, status, processed_by, processed_at, created_at, updated_at`

	queryInsertBlockRequest = `
		INSERT INTO block_requests (id, card_id, requester_id, reason, status, processed_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, 'PENDING', '', ?, ?)`

	queryGetBlockRequestById = `
		SELECT ` + blockRequestColumns + `
		FROM block_requests
		WHERE id = ?`

	queryGetAllBlockRequests = `
		SELECT ` + blockRequestColumns + `
		FROM block_requests
		ORDER BY created_at DESC, id`

	queryGetBlockRequestsByStatus = `
		SELECT ` + blockRequestColumns + `
		FROM block_requests
		WHERE status = ?
		ORDER BY created_at DESC, id`

	queryGetBlockRequestsByRequester = `
		SELECT ` + blockRequestColumns + `
		FROM block_requests
		WHERE requester_id = ?
		ORDER BY created_at DESC, id`

	queryProcessBlockRequest = `
		UPDATE block_requests
		SET status = ?, processed_by = ?, processed_at = ?, updated_at = ?
		WHERE id = ? AND status = 'PENDING'`
)
