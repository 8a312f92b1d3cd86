package database

import (
	"context"
	"errors"
	"testing"

	"payment-settlement-go/internal/models"
	"payment-settlement-go/internal/store"

	"github.com/shopspring/decimal"
)

func TestFindOrCreateCustomer_ProvisionsUserAndAccount(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	customer, err := service.FindOrCreateCustomer(ctx, store.CustomerParams{
		FirstName: "John",
		LastName:  "Doe",
		Country:   "BR",
		Currency:  "USD",
	})
	if err != nil {
		t.Fatalf("FindOrCreateCustomer failed: %v", err)
	}

	user, err := service.GetUserById(ctx, customer.UserId)
	if err != nil {
		t.Fatalf("GetUserById failed: %v", err)
	}
	if user.UserType != models.UserTypeCustomer {
		t.Errorf("Expected user type %s, got %s", models.UserTypeCustomer, user.UserType)
	}

	account, err := service.GetAccountByUserId(ctx, customer.UserId)
	if err != nil {
		t.Fatalf("GetAccountByUserId failed: %v", err)
	}
	if !account.Balance.Equal(decimal.Zero) {
		t.Errorf("Expected zero opening balance, got %s", account.Balance.String())
	}
	if account.Currency != "USD" {
		t.Errorf("Expected currency USD, got %s", account.Currency)
	}
}

func TestFindOrCreateCustomer_MatchesOnName(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	params := store.CustomerParams{FirstName: "Jane", LastName: "Smith", Country: "US", Currency: "USD"}

	first, err := service.FindOrCreateCustomer(ctx, params)
	if err != nil {
		t.Fatalf("FindOrCreateCustomer failed: %v", err)
	}
	second, err := service.FindOrCreateCustomer(ctx, params)
	if err != nil {
		t.Fatalf("FindOrCreateCustomer failed on lookup: %v", err)
	}

	if first.Id != second.Id {
		t.Errorf("Expected same customer, got %s and %s", first.Id, second.Id)
	}
}

func TestGetDefaultMerchant_ReturnsFirstCreated(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()

	_, err := service.GetDefaultMerchant(ctx)
	if !errors.Is(err, store.ErrMerchantNotFound) {
		t.Fatalf("Expected ErrMerchantNotFound on empty registry, got %v", err)
	}

	firstUser, err := service.CreateUser(ctx, models.UserTypeMerchant)
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	firstMerchant, err := service.CreateMerchant(ctx, firstUser.Id)
	if err != nil {
		t.Fatalf("CreateMerchant failed: %v", err)
	}

	secondUser, err := service.CreateUser(ctx, models.UserTypeMerchant)
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := service.CreateMerchant(ctx, secondUser.Id); err != nil {
		t.Fatalf("CreateMerchant failed: %v", err)
	}

	defaultMerchant, err := service.GetDefaultMerchant(ctx)
	if err != nil {
		t.Fatalf("GetDefaultMerchant failed: %v", err)
	}
	if defaultMerchant.Id != firstMerchant.Id {
		t.Errorf("Expected merchant %s, got %s", firstMerchant.Id, defaultMerchant.Id)
	}
}

func TestValidateCard(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	account := createTestAccount(t, service, "0")

	card, err := service.CreateCard(ctx, account.Id, "4102778822334893", "DEBIT", "11/25", "566")
	if err != nil {
		t.Fatalf("CreateCard failed: %v", err)
	}

	validated, err := service.ValidateCard(ctx, card.CardNumber, "11/25", "566")
	if err != nil {
		t.Fatalf("ValidateCard failed: %v", err)
	}
	if validated.Id != card.Id {
		t.Errorf("Expected card %s, got %s", card.Id, validated.Id)
	}

	if _, err := service.ValidateCard(ctx, card.CardNumber, "11/25", "999"); !errors.Is(err, store.ErrInvalidCard) {
		t.Errorf("Expected ErrInvalidCard on wrong cvv, got %v", err)
	}
	if _, err := service.ValidateCard(ctx, "0000000000000000", "11/25", "566"); !errors.Is(err, store.ErrCardNotFound) {
		t.Errorf("Expected ErrCardNotFound, got %v", err)
	}
}
