package processor

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"payment-settlement-go/internal/database"
	"payment-settlement-go/internal/models"
	"payment-settlement-go/internal/store"
	"payment-settlement-go/internal/webhook"

	"github.com/shopspring/decimal"
)

// fixedOutcomePolicy always returns the same terminal status.
type fixedOutcomePolicy struct {
	status  string
	message string
}

func (p fixedOutcomePolicy) Decide(models.Transaction) (string, string) {
	return p.status, p.message
}

func setupTestDb(t *testing.T) (*database.Service, func()) {
	t.Helper()

	dbService, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	return dbService, dbService.Close
}

// seedPendingTransaction creates two accounts with a reservation on the
// source and a pending transaction between them.
func seedPendingTransaction(t *testing.T, dbService *database.Service, notificationUrl string) (*models.Transaction, *models.Account, *models.Account) {
	t.Helper()

	ctx := context.Background()
	sourceUser, err := dbService.CreateUser(ctx, models.UserTypeCustomer)
	if err != nil {
		t.Fatalf("Failed to create source user: %v", err)
	}
	source, err := dbService.CreateAccount(ctx, sourceUser.Id, "USD", decimal.NewFromInt(200))
	if err != nil {
		t.Fatalf("Failed to create source account: %v", err)
	}

	destUser, err := dbService.CreateUser(ctx, models.UserTypeMerchant)
	if err != nil {
		t.Fatalf("Failed to create destination user: %v", err)
	}
	destination, err := dbService.CreateAccount(ctx, destUser.Id, "USD", decimal.NewFromInt(0))
	if err != nil {
		t.Fatalf("Failed to create destination account: %v", err)
	}

	if _, err := dbService.FreezeFunds(ctx, source.Id, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("Failed to freeze funds: %v", err)
	}

	transaction, err := dbService.CreateTransaction(ctx, store.CreateTransactionParams{
		AccountFrom:     source.Id,
		AccountTo:       destination.Id,
		Amount:          decimal.NewFromInt(100),
		Currency:        "USD",
		Type:            models.TransactionTopUp,
		NotificationUrl: notificationUrl,
	})
	if err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}
	return transaction, source, destination
}

func runProcessor(t *testing.T, dbService *database.Service, policy OutcomePolicy) {
	t.Helper()

	processor := NewSettlementProcessor(SettlementProcessorConfig{
		DbService:     dbService,
		Dispatcher:    webhook.NewDispatcher(dbService, 5*time.Second),
		Policy:        policy,
		SweepInterval: 10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	processor.Start(ctx)
	time.Sleep(150 * time.Millisecond)
	processor.Stop()
}

func TestSweep_SuccessTransfersReservedFunds(t *testing.T) {
	dbService, cleanup := setupTestDb(t)
	defer cleanup()

	var deliveries atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deliveries.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transaction, source, destination := seedPendingTransaction(t, dbService, server.URL)

	runProcessor(t, dbService, fixedOutcomePolicy{models.TransactionSuccess, "Transaction processed successfully"})

	ctx := context.Background()
	resolved, err := dbService.GetTransactionById(ctx, transaction.Id)
	if err != nil {
		t.Fatalf("GetTransactionById failed: %v", err)
	}
	if resolved.Status != models.TransactionSuccess {
		t.Fatalf("Expected status %s, got %s", models.TransactionSuccess, resolved.Status)
	}

	sourceAfter, err := dbService.GetAccountById(ctx, source.Id)
	if err != nil {
		t.Fatalf("GetAccountById failed: %v", err)
	}
	if !sourceAfter.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected source balance 100, got %s", sourceAfter.Balance.String())
	}
	if !sourceAfter.FrozenAmount.Equal(decimal.Zero) {
		t.Errorf("Expected source frozen 0, got %s", sourceAfter.FrozenAmount.String())
	}

	destinationAfter, err := dbService.GetAccountById(ctx, destination.Id)
	if err != nil {
		t.Fatalf("GetAccountById failed: %v", err)
	}
	if !destinationAfter.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected destination balance 100, got %s", destinationAfter.Balance.String())
	}

	// A resolved transaction leaves the sweep's working set: even with many
	// sweep intervals elapsed the transfer and the notification happen once.
	if got := deliveries.Load(); got != 1 {
		t.Errorf("Expected exactly 1 webhook delivery, got %d", got)
	}
	webhooks, err := dbService.GetWebhooksByTransactionId(ctx, transaction.Id)
	if err != nil {
		t.Fatalf("GetWebhooksByTransactionId failed: %v", err)
	}
	if len(webhooks) != 1 {
		t.Errorf("Expected 1 recorded webhook, got %d", len(webhooks))
	}
}

func TestSweep_FailureReleasesReservation(t *testing.T) {
	dbService, cleanup := setupTestDb(t)
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transaction, source, destination := seedPendingTransaction(t, dbService, server.URL)

	runProcessor(t, dbService, fixedOutcomePolicy{models.TransactionFailed, "Transaction declined"})

	ctx := context.Background()
	resolved, err := dbService.GetTransactionById(ctx, transaction.Id)
	if err != nil {
		t.Fatalf("GetTransactionById failed: %v", err)
	}
	if resolved.Status != models.TransactionFailed {
		t.Fatalf("Expected status %s, got %s", models.TransactionFailed, resolved.Status)
	}
	if resolved.Message != "Transaction declined" {
		t.Errorf("Unexpected message: %s", resolved.Message)
	}

	sourceAfter, err := dbService.GetAccountById(ctx, source.Id)
	if err != nil {
		t.Fatalf("GetAccountById failed: %v", err)
	}
	if !sourceAfter.Balance.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Expected source balance restored to 200, got %s", sourceAfter.Balance.String())
	}
	if !sourceAfter.FrozenAmount.Equal(decimal.Zero) {
		t.Errorf("Expected source frozen 0, got %s", sourceAfter.FrozenAmount.String())
	}

	destinationAfter, err := dbService.GetAccountById(ctx, destination.Id)
	if err != nil {
		t.Fatalf("GetAccountById failed: %v", err)
	}
	if !destinationAfter.Balance.Equal(decimal.Zero) {
		t.Errorf("Expected destination balance 0, got %s", destinationAfter.Balance.String())
	}
}

// conflictingStore loses the version race a fixed number of times before
// delegating to the real store.
type conflictingStore struct {
	store.PaymentStore
	conflicts atomic.Int64
}

func (s *conflictingStore) TransferFunds(ctx context.Context, fromAccountId, toAccountId string, amount decimal.Decimal) error {
	if s.conflicts.Add(-1) >= 0 {
		return store.ErrConcurrentModification
	}
	return s.PaymentStore.TransferFunds(ctx, fromAccountId, toAccountId, amount)
}

func TestSweep_RetriesConflictedLedgerUpdate(t *testing.T) {
	dbService, cleanup := setupTestDb(t)
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transaction, source, destination := seedPendingTransaction(t, dbService, server.URL)

	conflicted := &conflictingStore{PaymentStore: dbService}
	conflicted.conflicts.Store(2)

	processor := NewSettlementProcessor(SettlementProcessorConfig{
		DbService:     conflicted,
		Dispatcher:    webhook.NewDispatcher(conflicted, 5*time.Second),
		Policy:        fixedOutcomePolicy{models.TransactionSuccess, "Transaction processed successfully"},
		SweepInterval: 10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	processor.Start(ctx)
	time.Sleep(150 * time.Millisecond)
	processor.Stop()

	resolved, err := dbService.GetTransactionById(ctx, transaction.Id)
	if err != nil {
		t.Fatalf("GetTransactionById failed: %v", err)
	}
	if resolved.Status != models.TransactionSuccess {
		t.Fatalf("Expected status %s, got %s", models.TransactionSuccess, resolved.Status)
	}

	sourceAfter, err := dbService.GetAccountById(ctx, source.Id)
	if err != nil {
		t.Fatalf("GetAccountById failed: %v", err)
	}
	if !sourceAfter.FrozenAmount.Equal(decimal.Zero) {
		t.Errorf("Expected reservation consumed, frozen is %s", sourceAfter.FrozenAmount.String())
	}

	destinationAfter, err := dbService.GetAccountById(ctx, destination.Id)
	if err != nil {
		t.Fatalf("GetAccountById failed: %v", err)
	}
	if !destinationAfter.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected destination credited 100, got %s", destinationAfter.Balance.String())
	}
}

func TestRetryOnConflict_GivesUpAfterBoundedAttempts(t *testing.T) {
	var calls int
	err := retryOnConflict(func() error {
		calls++
		return store.ErrConcurrentModification
	})

	if !errors.Is(err, store.ErrConcurrentModification) {
		t.Fatalf("Expected ErrConcurrentModification, got %v", err)
	}
	if calls != ledgerRetryAttempts {
		t.Errorf("Expected %d attempts, got %d", ledgerRetryAttempts, calls)
	}
}

func TestWeightedOutcomePolicy_Distribution(t *testing.T) {
	policy := NewWeightedOutcomePolicy(0.8, rand.New(rand.NewSource(42)))

	var successes int
	const draws = 10000
	for i := 0; i < draws; i++ {
		status, _ := policy.Decide(models.Transaction{})
		if status == models.TransactionSuccess {
			successes++
		}
	}

	ratio := float64(successes) / draws
	if ratio < 0.77 || ratio > 0.83 {
		t.Errorf("Expected success ratio near 0.8, got %.3f", ratio)
	}
}

func TestWeightedOutcomePolicy_Bounds(t *testing.T) {
	alwaysFail := NewWeightedOutcomePolicy(0, rand.New(rand.NewSource(1)))
	if status, _ := alwaysFail.Decide(models.Transaction{}); status != models.TransactionFailed {
		t.Errorf("Expected %s with rate 0, got %s", models.TransactionFailed, status)
	}

	alwaysSucceed := NewWeightedOutcomePolicy(1, rand.New(rand.NewSource(1)))
	if status, _ := alwaysSucceed.Decide(models.Transaction{}); status != models.TransactionSuccess {
		t.Errorf("Expected %s with rate 1, got %s", models.TransactionSuccess, status)
	}
}
