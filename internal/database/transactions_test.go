package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"payment-settlement-go/internal/models"
	"payment-settlement-go/internal/store"

	"github.com/shopspring/decimal"
)

func createTestTransaction(t *testing.T, service *Service) *models.Transaction {
	t.Helper()

	ctx := context.Background()
	source := createTestAccount(t, service, "500")
	destination := createTestAccount(t, service, "0")

	transaction, err := service.CreateTransaction(ctx, store.CreateTransactionParams{
		AccountFrom:       source.Id,
		AccountTo:         destination.Id,
		Amount:            decimal.NewFromInt(100),
		Currency:          "USD",
		PaymentMethod:     "CARD",
		CardNumber:        "4102778822334893",
		Language:          "en",
		NotificationUrl:   "http://localhost/callback",
		Type:              models.TransactionTopUp,
		Message:           "created",
		CustomerFirstName: "John",
		CustomerLastName:  "Doe",
		CustomerCountry:   "BR",
	})
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	return transaction
}

func TestCreateTransaction_StartsInProgress(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	transaction := createTestTransaction(t, service)

	if transaction.Status != models.TransactionInProgress {
		t.Errorf("Expected status %s, got %s", models.TransactionInProgress, transaction.Status)
	}
	if transaction.Id == "" {
		t.Error("Expected a generated transaction id")
	}

	fetched, err := service.GetTransactionById(context.Background(), transaction.Id)
	if err != nil {
		t.Fatalf("GetTransactionById failed: %v", err)
	}
	if !fetched.Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected amount 100, got %s", fetched.Amount.String())
	}
	if fetched.CustomerFirstName != "John" || fetched.CustomerLastName != "Doe" {
		t.Errorf("Unexpected customer: %s %s", fetched.CustomerFirstName, fetched.CustomerLastName)
	}
}

func TestUpdateTransactionStatus(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	transaction := createTestTransaction(t, service)

	updated, err := service.UpdateTransactionStatus(ctx, transaction.Id, models.TransactionSuccess, "Transaction processed successfully")
	if err != nil {
		t.Fatalf("UpdateTransactionStatus failed: %v", err)
	}

	if updated.Status != models.TransactionSuccess {
		t.Errorf("Expected status %s, got %s", models.TransactionSuccess, updated.Status)
	}
	if updated.Message != "Transaction processed successfully" {
		t.Errorf("Unexpected message: %s", updated.Message)
	}
}

func TestUpdateTransactionStatus_NotFound(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	_, err := service.UpdateTransactionStatus(context.Background(), "no-such-id", models.TransactionFailed, "declined")
	if !errors.Is(err, store.ErrTransactionNotFound) {
		t.Fatalf("Expected ErrTransactionNotFound, got %v", err)
	}
}

func TestGetTransactionsByStatus(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	first := createTestTransaction(t, service)
	second := createTestTransaction(t, service)

	if _, err := service.UpdateTransactionStatus(ctx, second.Id, models.TransactionFailed, "declined"); err != nil {
		t.Fatalf("UpdateTransactionStatus failed: %v", err)
	}

	pending, err := service.GetTransactionsByStatus(ctx, models.TransactionInProgress)
	if err != nil {
		t.Fatalf("GetTransactionsByStatus failed: %v", err)
	}

	if len(pending) != 1 {
		t.Fatalf("Expected 1 pending transaction, got %d", len(pending))
	}
	if pending[0].Id != first.Id {
		t.Errorf("Expected transaction %s, got %s", first.Id, pending[0].Id)
	}
}

func TestGetTransactionsByCreatedBetween(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	transaction := createTestTransaction(t, service)

	now := time.Now().UTC()

	inWindow, err := service.GetTransactionsByCreatedBetween(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetTransactionsByCreatedBetween failed: %v", err)
	}
	if len(inWindow) != 1 || inWindow[0].Id != transaction.Id {
		t.Fatalf("Expected 1 transaction in window, got %d", len(inWindow))
	}

	outOfWindow, err := service.GetTransactionsByCreatedBetween(ctx, now.Add(-2*time.Hour), now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("GetTransactionsByCreatedBetween failed: %v", err)
	}
	if len(outOfWindow) != 0 {
		t.Fatalf("Expected no transactions in past window, got %d", len(outOfWindow))
	}
}
