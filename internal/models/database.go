package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction lifecycle statuses.
const (
	TransactionInProgress = "IN_PROGRESS"
	TransactionSuccess    = "SUCCESS"
	TransactionFailed     = "FAILED"
)

// Transaction types.
const (
	TransactionTopUp      = "TOP_UP"
	TransactionWithdrawal = "WITHDRAWAL"
)

// User types.
const (
	UserTypeMerchant = "MERCHANT"
	UserTypeCustomer = "CUSTOMER"
)

// User represents an identity that owns exactly one account
type User struct {
	Id        string    `db:"id"`
	UserType  string    `db:"user_type"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Account holds the available balance and the frozen pool for one owner.
// Funds committed to a pending outgoing transaction live in FrozenAmount,
// never in Balance.
type Account struct {
	Id           string          `db:"id"`
	UserId       string          `db:"user_id"`
	Balance      decimal.Decimal `db:"balance"`
	FrozenAmount decimal.Decimal `db:"frozen_amount"`
	Currency     string          `db:"currency"`
	Version      int64           `db:"version"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

// Customer represents a paying/receiving customer profile
type Customer struct {
	Id        string    `db:"id"`
	UserId    string    `db:"user_id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Country   string    `db:"country"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Merchant represents a merchant tenant
type Merchant struct {
	Id        string    `db:"id"`
	UserId    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Card represents a stored card used to validate top-up requests
type Card struct {
	Id         string    `db:"id"`
	AccountId  string    `db:"account_id"`
	CardNumber string    `db:"card_number"`
	CardType   string    `db:"card_type"`
	ExpDate    string    `db:"exp_date"`
	Cvv        string    `db:"cvv"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Transaction represents one payment attempt and its lifecycle state.
// AccountFrom is always the debited (frozen) side; AccountTo is credited
// on settlement success.
type Transaction struct {
	Id                string          `db:"id"`
	AccountFrom       string          `db:"account_from"`
	AccountTo         string          `db:"account_to"`
	Amount            decimal.Decimal `db:"amount"`
	Currency          string          `db:"currency"`
	PaymentMethod     string          `db:"payment_method"`
	CardNumber        string          `db:"card_number"`
	Language          string          `db:"language"`
	NotificationUrl   string          `db:"notification_url"`
	Status            string          `db:"status"`
	Message           string          `db:"message"`
	Type              string          `db:"type"`
	CustomerFirstName string          `db:"customer_first_name"`
	CustomerLastName  string          `db:"customer_last_name"`
	CustomerCountry   string          `db:"customer_country"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

// Webhook represents one recorded delivery attempt for a transaction
// notification. Rows are append-only; a retry creates a new row.
type Webhook struct {
	Id            string    `db:"id"`
	TransactionId string    `db:"transaction_id"`
	RequestBody   string    `db:"request_body"`
	ResponseBody  string    `db:"response_body"`
	Status        string    `db:"status"`
	AttemptNumber int       `db:"attempt_number"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}
