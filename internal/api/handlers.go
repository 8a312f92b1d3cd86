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

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"payment-settlement-go/internal/models"
	"payment-settlement-go/internal/payment"
	"payment-settlement-go/internal/store"
	"payment-settlement-go/internal/webhook"

	"go.uber.org/zap"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTopUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}

	var req models.TopUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	result, err := s.payments.ProcessTopUp(r.Context(), req)
	if err != nil {
		s.writePaymentError(w, "top-up", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePayout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}

	var req models.PayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	result, err := s.payments.ProcessWithdrawal(r.Context(), req)
	if err != nil {
		s.writePaymentError(w, "payout", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleTransactionList returns either every transaction or, when both
// start_date and end_date are present (RFC 3339), the ones created in that
// window.
func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}

	var (
		transactions []models.Transaction
		err          error
	)

	startParam := r.URL.Query().Get("start_date")
	endParam := r.URL.Query().Get("end_date")
	if startParam != "" || endParam != "" {
		// The window bounds come as a pair.
		if startParam == "" || endParam == "" {
			writeError(w, http.StatusBadRequest, "incomplete_date_window")
			return
		}
		start, parseErr := time.Parse(time.RFC3339, startParam)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_date")
			return
		}
		end, parseErr := time.Parse(time.RFC3339, endParam)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "invalid_end_date")
			return
		}
		transactions, err = s.db.GetTransactionsByCreatedBetween(r.Context(), start, end)
	} else {
		transactions, err = s.db.GetTransactions(r.Context())
	}
	if err != nil {
		zap.L().Error("Failed to list transactions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	records := make([]models.TransactionRecord, 0, len(transactions))
	for _, transaction := range transactions {
		records = append(records, toTransactionRecord(transaction))
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleTransactionDetails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/payments/transaction/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "details" {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	transaction, err := s.db.GetTransactionById(r.Context(), parts[0])
	if err != nil {
		if errors.Is(err, store.ErrTransactionNotFound) {
			writeError(w, http.StatusNotFound, "transaction_not_found")
			return
		}
		zap.L().Error("Failed to get transaction",
			zap.String("transaction_id", parts[0]),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	writeJSON(w, http.StatusOK, toTransactionRecord(*transaction))
}

// handleWebhookSend re-sends the notification for a transaction with the
// caller-supplied status. Unlike the settlement sweep, a delivery failure is
// reported to the caller.
func (s *Server) handleWebhookSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}

	transactionId := strings.TrimPrefix(r.URL.Path, "/api/webhooks/send/")
	if transactionId == "" || strings.Contains(transactionId, "/") {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	status := r.URL.Query().Get("status")
	if status != webhook.StatusSuccess && status != webhook.StatusFailed {
		writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}

	if err := s.dispatcher.Notify(r.Context(), transactionId, status); err != nil {
		if errors.Is(err, store.ErrTransactionNotFound) {
			writeError(w, http.StatusNotFound, "transaction_not_found")
			return
		}
		zap.L().Error("Webhook delivery failed",
			zap.String("transaction_id", transactionId),
			zap.Error(err))
		writeError(w, http.StatusBadGateway, "webhook_delivery_failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"transaction_id": transactionId,
		"status":         "sent",
	})
}

func (s *Server) handleWebhookResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}

	var result models.WebhookResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if result.TransactionId == "" {
		writeError(w, http.StatusBadRequest, "missing_transaction_id")
		return
	}

	saved, err := s.dispatcher.SaveWebhookResult(r.Context(), result)
	if err != nil {
		if errors.Is(err, store.ErrTransactionNotFound) {
			writeError(w, http.StatusNotFound, "transaction_not_found")
			return
		}
		zap.L().Error("Failed to save webhook result",
			zap.String("transaction_id", result.TransactionId),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

// writePaymentError maps the ledger and registry sentinels onto HTTP codes.
func (s *Server) writePaymentError(w http.ResponseWriter, operation string, err error) {
	switch {
	case errors.Is(err, store.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, "insufficient_funds")
	case errors.Is(err, store.ErrCardNotFound):
		writeError(w, http.StatusNotFound, "card_not_found")
	case errors.Is(err, store.ErrInvalidCard):
		writeError(w, http.StatusBadRequest, "invalid_card")
	case errors.Is(err, store.ErrMerchantNotFound):
		writeError(w, http.StatusNotFound, "merchant_not_found")
	case errors.Is(err, store.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "account_not_found")
	case errors.Is(err, payment.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "invalid_amount")
	default:
		zap.L().Error("Payment processing failed",
			zap.String("operation", operation),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

func toTransactionRecord(transaction models.Transaction) models.TransactionRecord {
	return models.TransactionRecord{
		Id:                transaction.Id,
		AccountFrom:       transaction.AccountFrom,
		AccountTo:         transaction.AccountTo,
		Amount:            transaction.Amount,
		Currency:          transaction.Currency,
		PaymentMethod:     transaction.PaymentMethod,
		Language:          transaction.Language,
		NotificationUrl:   transaction.NotificationUrl,
		Status:            transaction.Status,
		Message:           transaction.Message,
		Type:              transaction.Type,
		CustomerFirstName: transaction.CustomerFirstName,
		CustomerLastName:  transaction.CustomerLastName,
		CustomerCountry:   transaction.CustomerCountry,
		CreatedAt:         transaction.CreatedAt,
		UpdatedAt:         transaction.UpdatedAt,
	}
}
