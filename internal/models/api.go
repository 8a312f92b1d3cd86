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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CardData carries the card details supplied with a payment request
type CardData struct {
	CardNumber string `json:"card_number"`
	ExpDate    string `json:"exp_date"`
	Cvv        string `json:"cvv"`
}

// CustomerProfile carries the customer details supplied with a payment request
type CustomerProfile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Country   string `json:"country"`
}

// TopUpRequest is a request to credit the merchant from a customer's card
type TopUpRequest struct {
	PaymentMethod   string          `json:"payment_method"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	CardData        CardData        `json:"card_data"`
	Language        string          `json:"language"`
	NotificationUrl string          `json:"notification_url"`
	Customer        CustomerProfile `json:"customer"`
}

// PayoutRequest is a request to pay a customer out of a merchant's account
type PayoutRequest struct {
	MerchantId      string          `json:"merchant_id"`
	PaymentMethod   string          `json:"payment_method"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	CardData        CardData        `json:"card_data"`
	Language        string          `json:"language"`
	NotificationUrl string          `json:"notification_url"`
	Customer        CustomerProfile `json:"customer"`
}

// PaymentResult is returned to the submitter of a top-up or payout request
type PaymentResult struct {
	TransactionId string `json:"transaction_id"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

// TransactionRecord is the outward representation of a transaction
type TransactionRecord struct {
	Id                string          `json:"id"`
	AccountFrom       string          `json:"account_from"`
	AccountTo         string          `json:"account_to"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	PaymentMethod     string          `json:"payment_method"`
	Language          string          `json:"language"`
	NotificationUrl   string          `json:"notification_url"`
	Status            string          `json:"status"`
	Message           string          `json:"message"`
	Type              string          `json:"type"`
	CustomerFirstName string          `json:"customer_first_name"`
	CustomerLastName  string          `json:"customer_last_name"`
	CustomerCountry   string          `json:"customer_country"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// WebhookResult is an externally confirmed delivery outcome posted back
// by the notified party
type WebhookResult struct {
	TransactionId string `json:"transaction_id"`
	RequestBody   string `json:"request_body"`
	ResponseBody  string `json:"response_body"`
	Status        string `json:"status"`
	AttemptNumber int    `json:"attempt_number"`
}
