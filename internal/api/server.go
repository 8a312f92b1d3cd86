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
	"net/http"

	"payment-settlement-go/internal/payment"
	"payment-settlement-go/internal/store"
	"payment-settlement-go/internal/webhook"
)

type Server struct {
	db         store.PaymentStore
	payments   *payment.Service
	dispatcher *webhook.Dispatcher
}

func NewServer(db store.PaymentStore, payments *payment.Service, dispatcher *webhook.Dispatcher) *Server {
	return &Server{
		db:         db,
		payments:   payments,
		dispatcher: dispatcher,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/payments/topups", s.handleTopUp)
	mux.HandleFunc("/api/v1/payments/payout", s.handlePayout)
	mux.HandleFunc("/api/v1/payments/transaction/list", s.handleTransactionList)
	mux.HandleFunc("/api/v1/payments/transaction/", s.handleTransactionDetails)
	mux.HandleFunc("/api/webhooks/send/", s.handleWebhookSend)
	mux.HandleFunc("/api/webhooks/result", s.handleWebhookResult)
	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, errorResponse{Error: code})
}
