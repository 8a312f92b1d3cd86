package store

import (
	"context"
	"errors"
	"time"

	"payment-settlement-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrAccountNotFound         = errors.New("account not found")
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrMerchantNotFound        = errors.New("merchant not found")
	ErrCustomerNotFound        = errors.New("customer not found")
	ErrCardNotFound            = errors.New("card not found")
	ErrUserNotFound            = errors.New("user not found")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrInsufficientFrozenFunds = errors.New("insufficient frozen funds")
	ErrInvalidCard             = errors.New("invalid card details")
	ErrConcurrentModification  = errors.New("concurrent modification detected")
)

// CreateTransactionParams contains the parameters for recording a new payment attempt.
type CreateTransactionParams struct {
	AccountFrom       string
	AccountTo         string
	Amount            decimal.Decimal
	Currency          string
	PaymentMethod     string
	CardNumber        string
	Language          string
	NotificationUrl   string
	Type              string
	Message           string
	CustomerFirstName string
	CustomerLastName  string
	CustomerCountry   string
}

// CreateWebhookParams contains the parameters for recording one delivery attempt.
type CreateWebhookParams struct {
	TransactionId string
	RequestBody   string
	ResponseBody  string
	Status        string
	AttemptNumber int
}

// CustomerParams identifies a customer profile for find-or-create.
// Currency is used only when a new customer account is provisioned.
type CustomerParams struct {
	FirstName string
	LastName  string
	Country   string
	Currency  string

	// Balance is the opening balance for a newly provisioned customer
	// account. Payment requests leave it at zero; only seed tooling sets it.
	Balance decimal.Decimal
}

// PaymentStore defines the contract that every backend must satisfy.
type PaymentStore interface {
	// --- Ledger ---
	GetAccountById(ctx context.Context, id string) (*models.Account, error)
	GetAccountByUserId(ctx context.Context, userId string) (*models.Account, error)
	GetAccounts(ctx context.Context) ([]models.Account, error)
	CreateAccount(ctx context.Context, userId, currency string, balance decimal.Decimal) (*models.Account, error)
	FreezeFunds(ctx context.Context, accountId string, amount decimal.Decimal) (*models.Account, error)
	UnfreezeFunds(ctx context.Context, accountId string, amount decimal.Decimal) (*models.Account, error)
	TransferFunds(ctx context.Context, fromAccountId, toAccountId string, amount decimal.Decimal) error

	// --- Transactions ---
	CreateTransaction(ctx context.Context, params CreateTransactionParams) (*models.Transaction, error)
	GetTransactionById(ctx context.Context, id string) (*models.Transaction, error)
	GetTransactions(ctx context.Context) ([]models.Transaction, error)
	GetTransactionsByStatus(ctx context.Context, status string) ([]models.Transaction, error)
	GetTransactionsByCreatedBetween(ctx context.Context, start, end time.Time) ([]models.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id, status, message string) (*models.Transaction, error)

	// --- Webhooks ---
	CreateWebhook(ctx context.Context, params CreateWebhookParams) (*models.Webhook, error)
	GetWebhooksByTransactionId(ctx context.Context, transactionId string) ([]models.Webhook, error)

	// --- Registry ---
	CreateUser(ctx context.Context, userType string) (*models.User, error)
	GetUserById(ctx context.Context, id string) (*models.User, error)
	FindOrCreateCustomer(ctx context.Context, params CustomerParams) (*models.Customer, error)
	CreateMerchant(ctx context.Context, userId string) (*models.Merchant, error)
	GetMerchantById(ctx context.Context, id string) (*models.Merchant, error)
	GetMerchantByUserId(ctx context.Context, userId string) (*models.Merchant, error)
	GetDefaultMerchant(ctx context.Context) (*models.Merchant, error)
	CreateCard(ctx context.Context, accountId, cardNumber, cardType, expDate, cvv string) (*models.Card, error)
	ValidateCard(ctx context.Context, cardNumber, expDate, cvv string) (*models.Card, error)

	// --- Lifecycle ---
	Close()
}
