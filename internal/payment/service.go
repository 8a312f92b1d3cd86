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

package payment

import (
	"context"
	"errors"
	"fmt"

	"payment-settlement-go/internal/models"
	"payment-settlement-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const createdMessage = "Transaction created successfully"

// ErrInvalidAmount indicates the requested amount is zero or negative
var ErrInvalidAmount = errors.New("payment amount must be positive")

// Service orchestrates top-up and payout requests: it resolves the parties,
// reserves the funds on the source account and records the transaction the
// settlement processor will later resolve.
type Service struct {
	db store.PaymentStore
}

func NewService(db store.PaymentStore) *Service {
	return &Service{db: db}
}

// ProcessTopUp handles a customer-funded payment. Funds flow
// customer -> merchant: the customer's account is the frozen source.
func (s *Service) ProcessTopUp(ctx context.Context, request models.TopUpRequest) (*models.PaymentResult, error) {
	zap.L().Info("Processing top-up request",
		zap.String("amount", request.Amount.String()),
		zap.String("currency", request.Currency))

	if err := validateAmount(request.Amount); err != nil {
		return nil, err
	}

	if _, err := s.db.ValidateCard(ctx, request.CardData.CardNumber, request.CardData.ExpDate, request.CardData.Cvv); err != nil {
		return nil, err
	}

	customer, err := s.db.FindOrCreateCustomer(ctx, store.CustomerParams{
		FirstName: request.Customer.FirstName,
		LastName:  request.Customer.LastName,
		Country:   request.Customer.Country,
		Currency:  request.Currency,
	})
	if err != nil {
		return nil, err
	}

	customerAccount, err := s.db.GetAccountByUserId(ctx, customer.UserId)
	if err != nil {
		return nil, err
	}

	merchant, err := s.db.GetDefaultMerchant(ctx)
	if err != nil {
		return nil, err
	}

	merchantAccount, err := s.db.GetAccountByUserId(ctx, merchant.UserId)
	if err != nil {
		return nil, err
	}

	transaction, err := s.freezeAndCreate(ctx, customerAccount.Id, merchantAccount.Id, models.TransactionTopUp, request.Amount, store.CreateTransactionParams{
		Currency:          request.Currency,
		PaymentMethod:     request.PaymentMethod,
		CardNumber:        request.CardData.CardNumber,
		Language:          request.Language,
		NotificationUrl:   request.NotificationUrl,
		CustomerFirstName: customer.FirstName,
		CustomerLastName:  customer.LastName,
		CustomerCountry:   customer.Country,
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Top-up request processed",
		zap.String("transaction_id", transaction.Id),
		zap.String("customer_account", customerAccount.Id),
		zap.String("merchant_account", merchantAccount.Id))

	return &models.PaymentResult{
		TransactionId: transaction.Id,
		Status:        transaction.Status,
		Message:       createdMessage,
	}, nil
}

// ProcessWithdrawal handles a merchant-funded payout. Funds flow
// merchant -> customer: the merchant's account is the frozen source.
func (s *Service) ProcessWithdrawal(ctx context.Context, request models.PayoutRequest) (*models.PaymentResult, error) {
	zap.L().Info("Processing withdrawal request",
		zap.String("merchant_id", request.MerchantId),
		zap.String("amount", request.Amount.String()),
		zap.String("currency", request.Currency))

	if err := validateAmount(request.Amount); err != nil {
		return nil, err
	}

	merchant, err := s.db.GetMerchantById(ctx, request.MerchantId)
	if err != nil {
		return nil, err
	}

	merchantAccount, err := s.db.GetAccountByUserId(ctx, merchant.UserId)
	if err != nil {
		return nil, err
	}

	customer, err := s.db.FindOrCreateCustomer(ctx, store.CustomerParams{
		FirstName: request.Customer.FirstName,
		LastName:  request.Customer.LastName,
		Country:   request.Customer.Country,
		Currency:  request.Currency,
	})
	if err != nil {
		return nil, err
	}

	customerAccount, err := s.db.GetAccountByUserId(ctx, customer.UserId)
	if err != nil {
		return nil, err
	}

	transaction, err := s.freezeAndCreate(ctx, merchantAccount.Id, customerAccount.Id, models.TransactionWithdrawal, request.Amount, store.CreateTransactionParams{
		Currency:          request.Currency,
		PaymentMethod:     request.PaymentMethod,
		CardNumber:        request.CardData.CardNumber,
		Language:          request.Language,
		NotificationUrl:   request.NotificationUrl,
		CustomerFirstName: customer.FirstName,
		CustomerLastName:  customer.LastName,
		CustomerCountry:   customer.Country,
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Withdrawal request processed",
		zap.String("transaction_id", transaction.Id),
		zap.String("merchant_account", merchantAccount.Id),
		zap.String("customer_account", customerAccount.Id))

	return &models.PaymentResult{
		TransactionId: transaction.Id,
		Status:        transaction.Status,
		Message:       createdMessage,
	}, nil
}

// freezeAndCreate reserves the funds and records the transaction. If the
// record cannot be written the reservation is released again, so a failed
// request never leaves funds stuck frozen.
func (s *Service) freezeAndCreate(ctx context.Context, fromAccountId, toAccountId, txType string, amount decimal.Decimal, params store.CreateTransactionParams) (*models.Transaction, error) {
	if _, err := s.db.FreezeFunds(ctx, fromAccountId, amount); err != nil {
		return nil, err
	}

	params.AccountFrom = fromAccountId
	params.AccountTo = toAccountId
	params.Amount = amount
	params.Type = txType
	params.Message = createdMessage

	transaction, err := s.db.CreateTransaction(ctx, params)
	if err != nil {
		zap.L().Error("Transaction creation failed after freeze, releasing reservation",
			zap.String("account_id", fromAccountId),
			zap.String("amount", amount.String()),
			zap.Error(err))
		if _, uerr := s.db.UnfreezeFunds(ctx, fromAccountId, amount); uerr != nil {
			zap.L().Error("Compensating unfreeze failed, funds stuck frozen",
				zap.String("account_id", fromAccountId),
				zap.String("amount", amount.String()),
				zap.Error(uerr))
		}
		return nil, err
	}
	return transaction, nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w, got %s", ErrInvalidAmount, amount.String())
	}
	return nil
}
