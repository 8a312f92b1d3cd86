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

package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"payment-settlement-go/internal/models"
	"payment-settlement-go/internal/store"
	"payment-settlement-go/internal/webhook"

	"go.uber.org/zap"
)

// SettlementProcessorConfig contains configuration for SettlementProcessor
type SettlementProcessorConfig struct {
	DbService     store.PaymentStore
	Dispatcher    *webhook.Dispatcher
	Policy        OutcomePolicy
	SweepInterval time.Duration
}

// SettlementProcessor periodically resolves IN_PROGRESS transactions to a
// terminal outcome, reconciles the ledger and triggers the webhook
// notification.
type SettlementProcessor struct {
	dbService  store.PaymentStore
	dispatcher *webhook.Dispatcher
	policy     OutcomePolicy

	sweepInterval time.Duration

	// Control channels
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewSettlementProcessor creates a new settlement processor
func NewSettlementProcessor(cfg SettlementProcessorConfig) *SettlementProcessor {
	return &SettlementProcessor{
		dbService:     cfg.DbService,
		dispatcher:    cfg.Dispatcher,
		policy:        cfg.Policy,
		sweepInterval: cfg.SweepInterval,
		stopChan:      make(chan struct{}),
		doneChan:      make(chan struct{}),
	}
}

// Start begins the settlement sweep loop
func (p *SettlementProcessor) Start(ctx context.Context) {
	zap.L().Info("Starting settlement processor",
		zap.Duration("sweep_interval", p.sweepInterval))
	go p.sweepLoop(ctx)
}

// Stop gracefully stops the settlement processor
func (p *SettlementProcessor) Stop() {
	zap.L().Info("Stopping settlement processor")
	close(p.stopChan)
	<-p.doneChan
	zap.L().Info("Settlement processor stopped")
}

// sweepLoop runs the recurring sweep. The sweep executes on this goroutine,
// so a sweep that outlasts the interval simply drops ticks: two sweeps never
// run at the same time.
func (p *SettlementProcessor) sweepLoop(ctx context.Context) {
	defer close(p.doneChan)

	ticker := time.NewTicker(p.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.sweep(ctx)
		case <-p.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// sweep fetches all pending transactions and resolves them concurrently.
// A failure on one transaction never aborts the others.
func (p *SettlementProcessor) sweep(ctx context.Context) {
	transactions, err := p.dbService.GetTransactionsByStatus(ctx, models.TransactionInProgress)
	if err != nil {
		zap.L().Error("Failed to fetch pending transactions", zap.Error(err))
		return
	}

	if len(transactions) == 0 {
		zap.L().Debug("No pending transactions")
		return
	}

	zap.L().Info("Settlement sweep started", zap.Int("pending", len(transactions)))

	var wg sync.WaitGroup
	for _, transaction := range transactions {
		wg.Add(1)

		go func(tx models.Transaction) {
			defer wg.Done()

			if err := p.resolveTransaction(ctx, tx); err != nil {
				zap.L().Error("Failed to resolve transaction",
					zap.String("transaction_id", tx.Id),
					zap.Error(err))
			}
		}(transaction)
	}
	wg.Wait()

	zap.L().Info("Settlement sweep finished", zap.Int("processed", len(transactions)))
}

// resolveTransaction decides the outcome, persists it, reconciles the ledger
// and notifies the callback URL. Once the status leaves IN_PROGRESS the
// transaction is excluded from every later sweep.
func (p *SettlementProcessor) resolveTransaction(ctx context.Context, transaction models.Transaction) error {
	status, message := p.policy.Decide(transaction)

	updated, err := p.dbService.UpdateTransactionStatus(ctx, transaction.Id, status, message)
	if err != nil {
		return fmt.Errorf("failed to persist outcome: %w", err)
	}

	zap.L().Info("Transaction resolved",
		zap.String("transaction_id", updated.Id),
		zap.String("type", updated.Type),
		zap.String("status", updated.Status),
		zap.String("amount", updated.Amount.String()))

	// Top-up and withdrawal reconcile identically: direction is already
	// encoded in accountFrom/accountTo. The status is terminal at this point,
	// so a version conflict on the ledger update is retried rather than left
	// as a settled transaction with an unconsumed reservation.
	switch updated.Status {
	case models.TransactionSuccess:
		err := retryOnConflict(func() error {
			return p.dbService.TransferFunds(ctx, updated.AccountFrom, updated.AccountTo, updated.Amount)
		})
		if err != nil {
			return fmt.Errorf("failed to transfer settled funds: %w", err)
		}
	case models.TransactionFailed:
		err := retryOnConflict(func() error {
			_, err := p.dbService.UnfreezeFunds(ctx, updated.AccountFrom, updated.Amount)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to release reservation: %w", err)
		}
	default:
		return fmt.Errorf("outcome policy returned non-terminal status %q", updated.Status)
	}

	if err := p.dispatcher.SendWebhook(ctx, updated.Id, updated.Status); err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	return nil
}

// ledgerRetryAttempts bounds how often a conflicted ledger update is retried.
const ledgerRetryAttempts = 3

// retryOnConflict re-runs op when it loses a version race on the account row.
// Any other error, including success, is returned immediately.
func retryOnConflict(op func() error) error {
	var err error
	for attempt := 1; attempt <= ledgerRetryAttempts; attempt++ {
		err = op()
		if !errors.Is(err, store.ErrConcurrentModification) {
			return err
		}
		zap.L().Warn("Ledger update lost version race, retrying",
			zap.Int("attempt", attempt))
	}
	return err
}
