package database

import (
	"context"
	"testing"

	"payment-settlement-go/internal/store"
)

func TestCreateWebhook_DefaultsAttemptNumber(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	transaction := createTestTransaction(t, service)

	webhook, err := service.CreateWebhook(ctx, store.CreateWebhookParams{
		TransactionId: transaction.Id,
		RequestBody:   `{"transaction_id":"x"}`,
		ResponseBody:  "ok",
		Status:        "SUCCESS",
	})
	if err != nil {
		t.Fatalf("CreateWebhook failed: %v", err)
	}

	if webhook.AttemptNumber != 1 {
		t.Errorf("Expected attempt number 1, got %d", webhook.AttemptNumber)
	}
}

func TestGetWebhooksByTransactionId_RecordsEveryAttempt(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	transaction := createTestTransaction(t, service)

	attempts := []store.CreateWebhookParams{
		{TransactionId: transaction.Id, RequestBody: "a", Status: "FAILED", AttemptNumber: 1},
		{TransactionId: transaction.Id, RequestBody: "b", Status: "SUCCESS", AttemptNumber: 1},
	}
	for _, params := range attempts {
		if _, err := service.CreateWebhook(ctx, params); err != nil {
			t.Fatalf("CreateWebhook failed: %v", err)
		}
	}

	webhooks, err := service.GetWebhooksByTransactionId(ctx, transaction.Id)
	if err != nil {
		t.Fatalf("GetWebhooksByTransactionId failed: %v", err)
	}

	if len(webhooks) != 2 {
		t.Fatalf("Expected 2 recorded attempts, got %d", len(webhooks))
	}
	for _, webhook := range webhooks {
		if webhook.TransactionId != transaction.Id {
			t.Errorf("Unexpected transaction id %s", webhook.TransactionId)
		}
	}
}
