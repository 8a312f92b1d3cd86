package database

import (
	"context"
	"errors"
	"sync"
	"testing"

	"payment-settlement-go/internal/store"

	"github.com/shopspring/decimal"
)

func TestFreezeFunds_MovesBalanceToFrozen(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	account := createTestAccount(t, service, "200")

	updated, err := service.FreezeFunds(ctx, account.Id, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("FreezeFunds failed: %v", err)
	}

	if !updated.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected balance 100, got %s", updated.Balance.String())
	}
	if !updated.FrozenAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected frozen 100, got %s", updated.FrozenAmount.String())
	}
	if updated.Version != account.Version+1 {
		t.Errorf("Expected version %d, got %d", account.Version+1, updated.Version)
	}
}

func TestFreezeFunds_InsufficientFundsLeavesAccountUntouched(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	account := createTestAccount(t, service, "50")

	_, err := service.FreezeFunds(ctx, account.Id, decimal.NewFromInt(100))
	if !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}

	after, err := service.GetAccountById(ctx, account.Id)
	if err != nil {
		t.Fatalf("GetAccountById failed: %v", err)
	}
	if !after.Balance.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected balance 50, got %s", after.Balance.String())
	}
	if !after.FrozenAmount.Equal(decimal.Zero) {
		t.Errorf("Expected frozen 0, got %s", after.FrozenAmount.String())
	}
}

func TestUnfreezeFunds_RestoresBalance(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	account := createTestAccount(t, service, "200")

	if _, err := service.FreezeFunds(ctx, account.Id, decimal.NewFromInt(80)); err != nil {
		t.Fatalf("FreezeFunds failed: %v", err)
	}

	restored, err := service.UnfreezeFunds(ctx, account.Id, decimal.NewFromInt(80))
	if err != nil {
		t.Fatalf("UnfreezeFunds failed: %v", err)
	}

	if !restored.Balance.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Expected balance 200, got %s", restored.Balance.String())
	}
	if !restored.FrozenAmount.Equal(decimal.Zero) {
		t.Errorf("Expected frozen 0, got %s", restored.FrozenAmount.String())
	}
}

func TestUnfreezeFunds_InsufficientFrozen(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	account := createTestAccount(t, service, "200")

	_, err := service.UnfreezeFunds(ctx, account.Id, decimal.NewFromInt(10))
	if !errors.Is(err, store.ErrInsufficientFrozenFunds) {
		t.Fatalf("Expected ErrInsufficientFrozenFunds, got %v", err)
	}
}

func TestTransferFunds_ConsumesReservation(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	source := createTestAccount(t, service, "200")
	destination := createTestAccount(t, service, "0")

	if _, err := service.FreezeFunds(ctx, source.Id, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("FreezeFunds failed: %v", err)
	}

	if err := service.TransferFunds(ctx, source.Id, destination.Id, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("TransferFunds failed: %v", err)
	}

	sourceAfter, err := service.GetAccountById(ctx, source.Id)
	if err != nil {
		t.Fatalf("GetAccountById failed: %v", err)
	}
	destinationAfter, err := service.GetAccountById(ctx, destination.Id)
	if err != nil {
		t.Fatalf("GetAccountById failed: %v", err)
	}

	// The settlement consumes the reservation: available balance unchanged.
	if !sourceAfter.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected source balance 100, got %s", sourceAfter.Balance.String())
	}
	if !sourceAfter.FrozenAmount.Equal(decimal.Zero) {
		t.Errorf("Expected source frozen 0, got %s", sourceAfter.FrozenAmount.String())
	}
	if !destinationAfter.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected destination balance 100, got %s", destinationAfter.Balance.String())
	}
}

func TestTransferFunds_RequiresReservation(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	source := createTestAccount(t, service, "200")
	destination := createTestAccount(t, service, "0")

	err := service.TransferFunds(ctx, source.Id, destination.Id, decimal.NewFromInt(100))
	if !errors.Is(err, store.ErrInsufficientFrozenFunds) {
		t.Fatalf("Expected ErrInsufficientFrozenFunds, got %v", err)
	}
}

func TestConcurrentFreezes_ConserveFunds(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	account := createTestAccount(t, service, "100")

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.FreezeFunds(ctx, account.Id, decimal.NewFromInt(60))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes int
	for err := range results {
		if err == nil {
			successes++
		}
	}

	// 60 + 60 > 100: at most one reservation can go through.
	if successes > 1 {
		t.Fatalf("Expected at most one successful freeze, got %d", successes)
	}

	after, err := service.GetAccountById(ctx, account.Id)
	if err != nil {
		t.Fatalf("GetAccountById failed: %v", err)
	}
	total := after.Balance.Add(after.FrozenAmount)
	if !total.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected balance + frozen = 100, got %s", total.String())
	}
}

func TestGetAccountById_NotFound(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	_, err := service.GetAccountById(context.Background(), "no-such-account")
	if !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("Expected ErrAccountNotFound, got %v", err)
	}
}
