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

package main

import (
	"context"
	"flag"

	"payment-settlement-go/internal/common"
	"payment-settlement-go/internal/config"
	"payment-settlement-go/internal/database"
	"payment-settlement-go/internal/models"
	"payment-settlement-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func seedMerchants(ctx context.Context, dbService *database.Service, merchants []common.SeedMerchant) (string, error) {
	var firstAccountId string

	for _, seed := range merchants {
		balance, err := decimal.NewFromString(seed.Balance)
		if err != nil {
			zap.L().Error("Invalid merchant balance, skipping",
				zap.String("name", seed.Name),
				zap.String("balance", seed.Balance),
				zap.Error(err))
			continue
		}

		user, err := dbService.CreateUser(ctx, models.UserTypeMerchant)
		if err != nil {
			return "", err
		}
		account, err := dbService.CreateAccount(ctx, user.Id, seed.Currency, balance)
		if err != nil {
			return "", err
		}
		merchant, err := dbService.CreateMerchant(ctx, user.Id)
		if err != nil {
			return "", err
		}

		zap.L().Info("Seeded merchant",
			zap.String("merchant_id", merchant.Id),
			zap.String("name", seed.Name),
			zap.String("account_id", account.Id),
			zap.String("balance", balance.String()))

		if firstAccountId == "" {
			firstAccountId = account.Id
		}
	}

	return firstAccountId, nil
}

func seedCustomers(ctx context.Context, dbService *database.Service, customers []common.SeedCustomer) error {
	for _, seed := range customers {
		balance := decimal.Zero
		if seed.Balance != "" {
			parsed, err := decimal.NewFromString(seed.Balance)
			if err != nil {
				zap.L().Error("Invalid customer balance, skipping",
					zap.String("first_name", seed.FirstName),
					zap.String("last_name", seed.LastName),
					zap.Error(err))
				continue
			}
			balance = parsed
		}

		customer, err := dbService.FindOrCreateCustomer(ctx, store.CustomerParams{
			FirstName: seed.FirstName,
			LastName:  seed.LastName,
			Country:   seed.Country,
			Currency:  seed.Currency,
			Balance:   balance,
		})
		if err != nil {
			return err
		}

		zap.L().Info("Seeded customer",
			zap.String("customer_id", customer.Id),
			zap.String("first_name", seed.FirstName),
			zap.String("last_name", seed.LastName))
	}

	return nil
}

func seedCards(ctx context.Context, dbService *database.Service, accountId string, cards []common.SeedCard) error {
	if accountId == "" && len(cards) > 0 {
		zap.L().Warn("No seeded account available, skipping cards")
		return nil
	}

	for _, seed := range cards {
		card, err := dbService.CreateCard(ctx, accountId, seed.CardNumber, "DEBIT", seed.ExpDate, seed.Cvv)
		if err != nil {
			zap.L().Error("Failed to seed card",
				zap.String("card_number", seed.CardNumber),
				zap.Error(err))
			continue
		}

		zap.L().Info("Seeded card",
			zap.String("card_id", card.Id),
			zap.String("card_number", card.CardNumber))
	}

	return nil
}

func main() {
	seedFile := flag.String("seed", "seed.yaml", "Path to the seed fixture file")
	flag.Parse()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	seed, err := common.LoadSeedConfig(*seedFile)
	if err != nil {
		zap.L().Fatal("Failed to load seed file", zap.Error(err))
	}

	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	zap.L().Info("Seeding database",
		zap.Int("merchants", len(seed.Merchants)),
		zap.Int("customers", len(seed.Customers)),
		zap.Int("cards", len(seed.Cards)))

	firstAccountId, err := seedMerchants(ctx, dbService, seed.Merchants)
	if err != nil {
		zap.L().Fatal("Failed to seed merchants", zap.Error(err))
	}

	if err := seedCustomers(ctx, dbService, seed.Customers); err != nil {
		zap.L().Fatal("Failed to seed customers", zap.Error(err))
	}

	if err := seedCards(ctx, dbService, firstAccountId, seed.Cards); err != nil {
		zap.L().Fatal("Failed to seed cards", zap.Error(err))
	}

	zap.L().Info("Seeding complete")
}
