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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"payment-settlement-go/internal/models"
	"payment-settlement-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Service) CreateUser(ctx context.Context, userType string) (*models.User, error) {
	userId := uuid.New().String()
	now := time.Now().UTC()

	zap.L().Info("Creating user", zap.String("user_id", userId), zap.String("user_type", userType))

	_, err := s.db.ExecContext(ctx, queryInsertUser, userId, userType, now, now)
	if err != nil {
		return nil, fmt.Errorf("unable to insert user: %w", err)
	}

	return &models.User{Id: userId, UserType: userType, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *Service) GetUserById(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, queryGetUserById, id).Scan(
		&user.Id, &user.UserType, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, id)
		}
		return nil, fmt.Errorf("unable to query user by ID: %w", err)
	}
	return &user, nil
}

// FindOrCreateCustomer matches on (firstName, lastName). A new customer is
// provisioned together with a user identity and an account holding the
// opening balance, so a first-time payment never fails on a missing account.
func (s *Service) FindOrCreateCustomer(ctx context.Context, params store.CustomerParams) (*models.Customer, error) {
	customer, err := s.getCustomerByName(ctx, params.FirstName, params.LastName)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, store.ErrCustomerNotFound) {
		return nil, err
	}

	zap.L().Info("Customer not found, creating",
		zap.String("first_name", params.FirstName),
		zap.String("last_name", params.LastName),
		zap.String("country", params.Country))

	user, err := s.CreateUser(ctx, models.UserTypeCustomer)
	if err != nil {
		return nil, err
	}

	currency := params.Currency
	if currency == "" {
		currency = "USD"
	}
	if _, err := s.CreateAccount(ctx, user.Id, currency, params.Balance); err != nil {
		return nil, err
	}

	customerId := uuid.New().String()
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, queryInsertCustomer,
		customerId, user.Id, params.FirstName, params.LastName, params.Country, now, now)
	if err != nil {
		return nil, fmt.Errorf("unable to insert customer: %w", err)
	}

	zap.L().Info("Customer created",
		zap.String("customer_id", customerId),
		zap.String("user_id", user.Id))

	return &models.Customer{
		Id:        customerId,
		UserId:    user.Id,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Country:   params.Country,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *Service) getCustomerByName(ctx context.Context, firstName, lastName string) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.QueryRowContext(ctx, queryGetCustomerByName, firstName, lastName).Scan(
		&customer.Id, &customer.UserId, &customer.FirstName, &customer.LastName,
		&customer.Country, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s %s", store.ErrCustomerNotFound, firstName, lastName)
		}
		return nil, fmt.Errorf("unable to query customer: %w", err)
	}
	return &customer, nil
}

func (s *Service) CreateMerchant(ctx context.Context, userId string) (*models.Merchant, error) {
	merchantId := uuid.New().String()
	now := time.Now().UTC()

	zap.L().Info("Creating merchant", zap.String("merchant_id", merchantId), zap.String("user_id", userId))

	_, err := s.db.ExecContext(ctx, queryInsertMerchant, merchantId, userId, now, now)
	if err != nil {
		return nil, fmt.Errorf("unable to insert merchant: %w", err)
	}

	return &models.Merchant{Id: merchantId, UserId: userId, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *Service) GetMerchantById(ctx context.Context, id string) (*models.Merchant, error) {
	return s.scanMerchantRow(s.db.QueryRowContext(ctx, queryGetMerchantById, id), id)
}

func (s *Service) GetMerchantByUserId(ctx context.Context, userId string) (*models.Merchant, error) {
	return s.scanMerchantRow(s.db.QueryRowContext(ctx, queryGetMerchantByUserId, userId), userId)
}

// GetDefaultMerchant returns the oldest merchant in the system. The service
// runs single-tenant; top-ups always credit this merchant.
func (s *Service) GetDefaultMerchant(ctx context.Context) (*models.Merchant, error) {
	merchant, err := s.scanMerchantRow(s.db.QueryRowContext(ctx, queryGetDefaultMerchant), "default")
	if err != nil {
		if errors.Is(err, store.ErrMerchantNotFound) {
			return nil, fmt.Errorf("%w: no merchants registered", store.ErrMerchantNotFound)
		}
		return nil, err
	}
	return merchant, nil
}

func (s *Service) scanMerchantRow(row *sql.Row, key string) (*models.Merchant, error) {
	var merchant models.Merchant
	err := row.Scan(&merchant.Id, &merchant.UserId, &merchant.CreatedAt, &merchant.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrMerchantNotFound, key)
		}
		return nil, fmt.Errorf("unable to query merchant: %w", err)
	}
	return &merchant, nil
}

func (s *Service) CreateCard(ctx context.Context, accountId, cardNumber, cardType, expDate, cvv string) (*models.Card, error) {
	cardId := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, queryInsertCard,
		cardId, accountId, cardNumber, cardType, expDate, cvv, now, now)
	if err != nil {
		return nil, fmt.Errorf("unable to insert card: %w", err)
	}

	zap.L().Info("Card created", zap.String("card_id", cardId), zap.String("account_id", accountId))

	return &models.Card{
		Id:         cardId,
		AccountId:  accountId,
		CardNumber: cardNumber,
		CardType:   cardType,
		ExpDate:    expDate,
		Cvv:        cvv,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// ValidateCard checks the supplied card details against the stored record.
// An unknown number yields ErrCardNotFound; a known number with a wrong
// expiry or CVV yields ErrInvalidCard.
func (s *Service) ValidateCard(ctx context.Context, cardNumber, expDate, cvv string) (*models.Card, error) {
	var card models.Card
	err := s.db.QueryRowContext(ctx, queryGetCardByNumber, cardNumber).Scan(
		&card.Id, &card.AccountId, &card.CardNumber, &card.CardType,
		&card.ExpDate, &card.Cvv, &card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrCardNotFound, cardNumber)
		}
		return nil, fmt.Errorf("unable to query card: %w", err)
	}

	if card.ExpDate != expDate || card.Cvv != cvv {
		return nil, store.ErrInvalidCard
	}

	zap.L().Debug("Card validated", zap.String("card_id", card.Id))
	return &card, nil
}
