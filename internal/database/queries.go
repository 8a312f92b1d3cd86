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
		INSERT INTO users (id, user_type, created_at, updated_at)
		VALUES (?, ?, ?, ?)`

	queryGetUserById = `
		SELECT id, user_type, created_at, updated_at
		FROM users
		WHERE id = ?`

	// Account queries
	queryGetAccountById = `
		SELECT id, user_id, balance, frozen_amount, currency, version, created_at, updated_at
		FROM accounts
		WHERE id = ?`

	queryGetAccountByUserId = `
		SELECT id, user_id, balance, frozen_amount, currency, version, created_at, updated_at
		FROM accounts
		WHERE user_id = ?`

	queryGetAccounts = `
		SELECT id, user_id, balance, frozen_amount, currency, version, created_at, updated_at
		FROM accounts
		ORDER BY created_at`

	queryInsertAccount = `
		INSERT INTO accounts (id, user_id, balance, frozen_amount, currency, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?)`

	queryUpdateAccountFunds = `
		UPDATE accounts
		SET balance = ?, frozen_amount = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions (
			id, account_from, account_to, amount, currency, payment_method, card_number,
			language, notification_url, status, message, type,
			customer_first_name, customer_last_name, customer_country, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetTransactionById = `
		SELECT id, account_from, account_to, amount, currency, payment_method, card_number,
		       language, notification_url, status, message, type,
		       customer_first_name, customer_last_name, customer_country, created_at, updated_at
		FROM transactions
		WHERE id = ?`

	queryGetTransactions = `
		SELECT id, account_from, account_to, amount, currency, payment_method, card_number,
		       language, notification_url, status, message, type,
		       customer_first_name, customer_last_name, customer_country, created_at, updated_at
		FROM transactions
		ORDER BY created_at`

	queryGetTransactionsByStatus = `
		SELECT id, account_from, account_to, amount, currency, payment_method, card_number,
		       language, notification_url, status, message, type,
		       customer_first_name, customer_last_name, customer_country, created_at, updated_at
		FROM transactions
		WHERE status = ?
		ORDER BY created_at`

	queryGetTransactionsByCreatedBetween = `
		SELECT id, account_from, account_to, amount, currency, payment_method, card_number,
		       language, notification_url, status, message, type,
		       customer_first_name, customer_last_name, customer_country, created_at, updated_at
		FROM transactions
		WHERE created_at BETWEEN ? AND ?
		ORDER BY created_at`

	queryUpdateTransactionStatus = `
		UPDATE transactions
		SET status = ?, message = ?, updated_at = ?
		WHERE id = ?`

	// Webhook queries
	queryInsertWebhook = `
		INSERT INTO webhooks (id, transaction_id, request_body, response_body, status, attempt_number, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetWebhooksByTransactionId = `
		SELECT id, transaction_id, request_body, response_body, status, attempt_number, created_at, updated_at
		FROM webhooks
		WHERE transaction_id = ?
		ORDER BY created_at`

	// Customer queries
	queryInsertCustomer = `
		INSERT INTO customers (id, user_id, first_name, last_name, country, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryGetCustomerByName = `
		SELECT id, user_id, first_name, last_name, country, created_at, updated_at
		FROM customers
		WHERE first_name = ? AND last_name = ?`

	// Merchant queries
	queryInsertMerchant = `
		INSERT INTO merchants (id, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)`

	queryGetMerchantById = `
		SELECT id, user_id, created_at, updated_at
		FROM merchants
		WHERE id = ?`

	queryGetMerchantByUserId = `
		SELECT id, user_id, created_at, updated_at
		FROM merchants
		WHERE user_id = ?`

	queryGetDefaultMerchant = `
		SELECT id, user_id, created_at, updated_at
		FROM merchants
		ORDER BY created_at
		LIMIT 1`

	// Card queries
	queryInsertCard = `
		INSERT INTO cards (id, account_id, card_number, card_type, exp_date, cvv, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetCardByNumber = `
		SELECT id, account_id, card_number, card_type, exp_date, cvv, created_at, updated_at
		FROM cards
		WHERE card_number = ?`
)
