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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *Service) GetAccountById(ctx context.Context, id string) (*models.Account, error) {
	zap.L().Debug("Querying account by ID", zap.String("account_id", id))

	account, err := scanAccount(s.db.QueryRowContext(ctx, queryGetAccountById, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrAccountNotFound, id)
		}
		return nil, fmt.Errorf("unable to query account by ID: %w", err)
	}
	return account, nil
}

func (s *Service) GetAccountByUserId(ctx context.Context, userId string) (*models.Account, error) {
	zap.L().Debug("Querying account by user ID", zap.String("user_id", userId))

	account, err := scanAccount(s.db.QueryRowContext(ctx, queryGetAccountByUserId, userId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no account for user %s", store.ErrAccountNotFound, userId)
		}
		return nil, fmt.Errorf("unable to query account by user ID: %w", err)
	}
	return account, nil
}

func (s *Service) GetAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, queryGetAccounts)
	if err != nil {
		return nil, fmt.Errorf("unable to query accounts: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan account row: %w", err)
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

func (s *Service) CreateAccount(ctx context.Context, userId, currency string, balance decimal.Decimal) (*models.Account, error) {
	if balance.IsNegative() {
		return nil, fmt.Errorf("opening balance cannot be negative, got %s", balance.String())
	}

	accountId := uuid.New().String()
	now := time.Now().UTC()

	zap.L().Info("Creating account",
		zap.String("account_id", accountId),
		zap.String("user_id", userId),
		zap.String("currency", currency),
		zap.String("balance", balance.String()))

	_, err := s.db.ExecContext(ctx, queryInsertAccount,
		accountId, userId, balance.String(), decimal.Zero.String(), currency, now, now)
	if err != nil {
		return nil, fmt.Errorf("unable to insert account: %w", err)
	}

	return s.GetAccountById(ctx, accountId)
}

// FreezeFunds moves amount from the available balance into the frozen pool.
// The update is guarded by the account version so two concurrent freezes
// cannot both pass the sufficiency check against a stale balance.
func (s *Service) FreezeFunds(ctx context.Context, accountId string, amount decimal.Decimal) (*models.Account, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("freeze amount must be positive, got %s", amount.String())
	}

	zap.L().Debug("Freezing funds",
		zap.String("account_id", accountId),
		zap.String("amount", amount.String()))

	account, err := s.updateFunds(ctx, accountId, func(balance, frozen decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
		if balance.LessThan(amount) {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: account %s", store.ErrInsufficientFunds, accountId)
		}
		return balance.Sub(amount), frozen.Add(amount), nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Funds frozen",
		zap.String("account_id", accountId),
		zap.String("amount", amount.String()),
		zap.String("balance", account.Balance.String()),
		zap.String("frozen_amount", account.FrozenAmount.String()))
	return account, nil
}

// UnfreezeFunds returns amount from the frozen pool to the available balance.
func (s *Service) UnfreezeFunds(ctx context.Context, accountId string, amount decimal.Decimal) (*models.Account, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("unfreeze amount must be positive, got %s", amount.String())
	}

	zap.L().Debug("Unfreezing funds",
		zap.String("account_id", accountId),
		zap.String("amount", amount.String()))

	account, err := s.updateFunds(ctx, accountId, func(balance, frozen decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
		if frozen.LessThan(amount) {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: account %s", store.ErrInsufficientFrozenFunds, accountId)
		}
		return balance.Add(amount), frozen.Sub(amount), nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Funds unfrozen",
		zap.String("account_id", accountId),
		zap.String("amount", amount.String()),
		zap.String("balance", account.Balance.String()),
		zap.String("frozen_amount", account.FrozenAmount.String()))
	return account, nil
}

// TransferFunds debits the source frozen pool and credits the destination
// balance inside a single database transaction. The caller froze the amount
// at request time, so a successful settlement consumes that reservation
// instead of touching the available balance of the source.
func (s *Service) TransferFunds(ctx context.Context, fromAccountId, toAccountId string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("transfer amount must be positive, got %s", amount.String())
	}

	zap.L().Debug("Transferring funds",
		zap.String("from_account", fromAccountId),
		zap.String("to_account", toAccountId),
		zap.String("amount", amount.String()))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	from, err := scanAccount(tx.QueryRowContext(ctx, queryGetAccountById, fromAccountId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: from account %s", store.ErrAccountNotFound, fromAccountId)
		}
		return fmt.Errorf("unable to load source account: %w", err)
	}

	if from.FrozenAmount.LessThan(amount) {
		return fmt.Errorf("%w: account %s", store.ErrInsufficientFrozenFunds, fromAccountId)
	}

	to, err := scanAccount(tx.QueryRowContext(ctx, queryGetAccountById, toAccountId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: to account %s", store.ErrAccountNotFound, toAccountId)
		}
		return fmt.Errorf("unable to load destination account: %w", err)
	}

	now := time.Now().UTC()

	if err := applyFundsUpdate(ctx, tx, from.Id, from.Balance, from.FrozenAmount.Sub(amount), from.Version, now); err != nil {
		return err
	}
	if err := applyFundsUpdate(ctx, tx, to.Id, to.Balance.Add(amount), to.FrozenAmount, to.Version, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transfer: %w", err)
	}

	zap.L().Info("Funds transferred",
		zap.String("from_account", fromAccountId),
		zap.String("to_account", toAccountId),
		zap.String("amount", amount.String()))
	return nil
}

// updateFunds applies a balance/frozen mutation under the version guard.
func (s *Service) updateFunds(ctx context.Context, accountId string, mutate func(balance, frozen decimal.Decimal) (decimal.Decimal, decimal.Decimal, error)) (*models.Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	account, err := scanAccount(tx.QueryRowContext(ctx, queryGetAccountById, accountId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrAccountNotFound, accountId)
		}
		return nil, fmt.Errorf("unable to load account: %w", err)
	}

	newBalance, newFrozen, err := mutate(account.Balance, account.FrozenAmount)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := applyFundsUpdate(ctx, tx, accountId, newBalance, newFrozen, account.Version, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit funds update: %w", err)
	}

	account.Balance = newBalance
	account.FrozenAmount = newFrozen
	account.Version++
	account.UpdatedAt = now
	return account, nil
}

func applyFundsUpdate(ctx context.Context, tx *sql.Tx, accountId string, balance, frozen decimal.Decimal, version int64, now time.Time) error {
	result, err := tx.ExecContext(ctx, queryUpdateAccountFunds,
		balance.String(), frozen.String(), now, accountId, version)
	if err != nil {
		return fmt.Errorf("failed to update account funds: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("funds update failed for account %s - %w", accountId, store.ErrConcurrentModification)
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var account models.Account
	var balanceStr, frozenStr string

	err := row.Scan(&account.Id, &account.UserId, &balanceStr, &frozenStr,
		&account.Currency, &account.Version, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}

	account.Balance, err = decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance '%s': %w", balanceStr, err)
	}
	account.FrozenAmount, err = decimal.NewFromString(frozenStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse frozen amount '%s': %w", frozenStr, err)
	}
	return &account, nil
}
