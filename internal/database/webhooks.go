package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"payment-settlement-go/internal/models"
	"payment-settlement-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateWebhook appends one delivery attempt record. Attempts are never
// updated in place; a retry inserts a new row.
func (s *Service) CreateWebhook(ctx context.Context, params store.CreateWebhookParams) (*models.Webhook, error) {
	webhookId := uuid.New().String()
	now := time.Now().UTC()

	attempt := params.AttemptNumber
	if attempt <= 0 {
		attempt = 1
	}

	zap.L().Info("Recording webhook attempt",
		zap.String("webhook_id", webhookId),
		zap.String("transaction_id", params.TransactionId),
		zap.String("status", params.Status),
		zap.Int("attempt_number", attempt))

	_, err := s.db.ExecContext(ctx, queryInsertWebhook,
		webhookId, params.TransactionId, params.RequestBody, params.ResponseBody,
		params.Status, attempt, now, now)
	if err != nil {
		return nil, fmt.Errorf("unable to insert webhook: %w", err)
	}

	return &models.Webhook{
		Id:            webhookId,
		TransactionId: params.TransactionId,
		RequestBody:   params.RequestBody,
		ResponseBody:  params.ResponseBody,
		Status:        params.Status,
		AttemptNumber: attempt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (s *Service) GetWebhooksByTransactionId(ctx context.Context, transactionId string) ([]models.Webhook, error) {
	rows, err := s.db.QueryContext(ctx, queryGetWebhooksByTransactionId, transactionId)
	if err != nil {
		return nil, fmt.Errorf("unable to query webhooks: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var webhooks []models.Webhook
	for rows.Next() {
		var webhook models.Webhook
		var requestBody, responseBody sql.NullString
		err := rows.Scan(&webhook.Id, &webhook.TransactionId, &requestBody, &responseBody,
			&webhook.Status, &webhook.AttemptNumber, &webhook.CreatedAt, &webhook.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("unable to scan webhook row: %w", err)
		}
		webhook.RequestBody = requestBody.String
		webhook.ResponseBody = responseBody.String
		webhooks = append(webhooks, webhook)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating webhook rows: %w", err)
	}
	return webhooks, nil
}
