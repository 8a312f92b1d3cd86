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
	"fmt"

	"payment-settlement-go/internal/common"
	"payment-settlement-go/internal/config"
	"payment-settlement-go/internal/models"

	"go.uber.org/zap"
)

func formatId(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}

func printAccount(account models.Account, isLast bool) {
	symbol := common.BoxPrefix(isLast)

	fmt.Printf("%s %-12s  user: %-11s  balance: %16s  frozen: %16s  (v%d, updated: %s)\n",
		symbol,
		formatId(account.Id),
		formatId(account.UserId),
		account.Balance.String()+" "+account.Currency,
		account.FrozenAmount.String()+" "+account.Currency,
		account.Version,
		account.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func main() {
	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	accounts, err := dbService.GetAccounts(ctx)
	if err != nil {
		zap.L().Fatal("Failed to read accounts", zap.Error(err))
	}

	common.PrintHeader("ACCOUNT BALANCES", common.DefaultWidth)

	if len(accounts) == 0 {
		fmt.Println("No accounts found. Run the setup command to seed the database.")
	}

	for i, account := range accounts {
		printAccount(account, i == len(accounts)-1)
	}

	common.PrintFooter(fmt.Sprintf("Total accounts: %d", len(accounts)), common.DefaultWidth)
}
