package database

import (
	"context"
	"database/sql"
	"testing"

	"payment-settlement-go/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// setupTestDb opens an in-memory database with the full schema. A single
// connection keeps the shared in-memory database visible to every caller.
func setupTestDb(t *testing.T) (*Service, func()) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	service := &Service{db: db}
	if err := service.initSchema(); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	cleanup := func() {
		db.Close()
	}
	return service, cleanup
}

// createTestAccount provisions a user with an account holding the given balance.
func createTestAccount(t *testing.T, service *Service, balance string) *models.Account {
	t.Helper()

	ctx := context.Background()
	user, err := service.CreateUser(ctx, models.UserTypeCustomer)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	amount, err := decimal.NewFromString(balance)
	if err != nil {
		t.Fatalf("Invalid test balance %q: %v", balance, err)
	}

	account, err := service.CreateAccount(ctx, user.Id, "USD", amount)
	if err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}
	return account
}
