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

package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"payment-settlement-go/internal/models"
	"payment-settlement-go/internal/store"

	"go.uber.org/zap"
)

// Delivery attempt outcomes recorded in the webhook table.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// maxResponseBody caps how much of the remote response is persisted.
const maxResponseBody = 4096

// Dispatcher posts settlement notifications to the callback URL stored on
// the transaction and records every attempt.
type Dispatcher struct {
	db     store.PaymentStore
	client *http.Client
}

func NewDispatcher(db store.PaymentStore, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		db:     db,
		client: &http.Client{Timeout: timeout},
	}
}

type notificationPayload struct {
	TransactionId string `json:"transaction_id"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
}

// SendWebhook notifies the registered callback URL of the transaction's
// outcome. Delivery failures are absorbed: the attempt is recorded as FAILED
// and nil is returned, because the attempt itself succeeded. Only a missing
// transaction or a persistence failure is surfaced to the caller.
func (d *Dispatcher) SendWebhook(ctx context.Context, transactionId, status string) error {
	_, err := d.dispatch(ctx, transactionId, status)
	return err
}

// Notify behaves like SendWebhook but reports the delivery error to the
// caller. Used by the synchronous re-notify API path where the caller wants
// to know whether the remote endpoint accepted the notification.
func (d *Dispatcher) Notify(ctx context.Context, transactionId, status string) error {
	deliveryErr, err := d.dispatch(ctx, transactionId, status)
	if err != nil {
		return err
	}
	return deliveryErr
}

func (d *Dispatcher) dispatch(ctx context.Context, transactionId, status string) (deliveryErr error, err error) {
	transaction, err := d.db.GetTransactionById(ctx, transactionId)
	if err != nil {
		return nil, err
	}

	requestBody, err := json.Marshal(notificationPayload{
		TransactionId: transaction.Id,
		Status:        status,
		Amount:        transaction.Amount.String(),
		Currency:      transaction.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	zap.L().Debug("Sending webhook",
		zap.String("transaction_id", transactionId),
		zap.String("url", transaction.NotificationUrl),
		zap.String("status", status))

	responseBody, deliveryErr := d.deliver(ctx, transaction.NotificationUrl, requestBody)

	params := store.CreateWebhookParams{
		TransactionId: transaction.Id,
		RequestBody:   string(requestBody),
		AttemptNumber: 1,
	}
	if deliveryErr != nil {
		zap.L().Error("Webhook delivery failed",
			zap.String("transaction_id", transactionId),
			zap.String("url", transaction.NotificationUrl),
			zap.Error(deliveryErr))
		params.Status = StatusFailed
		params.ResponseBody = deliveryErr.Error()
	} else {
		zap.L().Info("Webhook delivered",
			zap.String("transaction_id", transactionId),
			zap.String("url", transaction.NotificationUrl))
		params.Status = StatusSuccess
		params.ResponseBody = responseBody
	}

	if _, err := d.db.CreateWebhook(ctx, params); err != nil {
		return deliveryErr, fmt.Errorf("failed to record webhook attempt: %w", err)
	}
	return deliveryErr, nil
}

func (d *Dispatcher) deliver(ctx context.Context, url string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			zap.L().Warn("Failed to close webhook response body", zap.Error(err))
		}
	}()

	responseBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("callback endpoint returned status %d", resp.StatusCode)
	}
	return string(responseBody), nil
}

// SaveWebhookResult persists a delivery outcome supplied by the notified
// party through the result-ingestion endpoint.
func (d *Dispatcher) SaveWebhookResult(ctx context.Context, result models.WebhookResult) (*models.Webhook, error) {
	if _, err := d.db.GetTransactionById(ctx, result.TransactionId); err != nil {
		return nil, err
	}

	return d.db.CreateWebhook(ctx, store.CreateWebhookParams{
		TransactionId: result.TransactionId,
		RequestBody:   result.RequestBody,
		ResponseBody:  result.ResponseBody,
		Status:        result.Status,
		AttemptNumber: result.AttemptNumber,
	})
}
