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

// CreateTransaction records a new payment attempt.
func (s *Service) CreateTransaction(ctx context.Context, params store.CreateTransactionParams) (*models.Transaction, error) {
	transactionId := uuid.New().String()
	now := time.Now().UTC()

	zap.L().Info("Creating transaction",
		zap.String("transaction_id", transactionId),
		zap.String("account_from", params.AccountFrom),
		zap.String("account_to", params.AccountTo),
		zap.String("amount", params.Amount.String()),
		zap.String("type", params.Type))

	_, err := s.db.ExecContext(ctx, queryInsertTransaction,
		transactionId, params.AccountFrom, params.AccountTo, params.Amount.String(),
		params.Currency, params.PaymentMethod, params.CardNumber,
		params.Language, params.NotificationUrl, models.TransactionInProgress,
		params.Message, params.Type,
		params.CustomerFirstName, params.CustomerLastName, params.CustomerCountry,
		now, now)
	if err != nil {
		return nil, fmt.Errorf("unable to insert transaction: %w", err)
	}

	return s.GetTransactionById(ctx, transactionId)
}

func (s *Service) GetTransactionById(ctx context.Context, id string) (*models.Transaction, error) {
	zap.L().Debug("Querying transaction by ID", zap.String("transaction_id", id))

	transaction, err := scanTransaction(s.db.QueryRowContext(ctx, queryGetTransactionById, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrTransactionNotFound, id)
		}
		return nil, fmt.Errorf("unable to query transaction by ID: %w", err)
	}
	return transaction, nil
}

func (s *Service) GetTransactions(ctx context.Context) ([]models.Transaction, error) {
	return s.queryTransactions(ctx, queryGetTransactions)
}

func (s *Service) GetTransactionsByStatus(ctx context.Context, status string) ([]models.Transaction, error) {
	zap.L().Debug("Querying transactions by status", zap.String("status", status))
	return s.queryTransactions(ctx, queryGetTransactionsByStatus, status)
}

func (s *Service) GetTransactionsByCreatedBetween(ctx context.Context, start, end time.Time) ([]models.Transaction, error) {
	zap.L().Debug("Querying transactions by creation window",
		zap.Time("start", start),
		zap.Time("end", end))
	return s.queryTransactions(ctx, queryGetTransactionsByCreatedBetween, start.UTC(), end.UTC())
}

// UpdateTransactionStatus overwrites status and message unconditionally.
// Single-transition discipline is the caller's responsibility: the processor
// only ever resolves transactions it fetched as IN_PROGRESS.
func (s *Service) UpdateTransactionStatus(ctx context.Context, id, status, message string) (*models.Transaction, error) {
	now := time.Now().UTC()

	result, err := s.db.ExecContext(ctx, queryUpdateTransactionStatus, status, message, now, id)
	if err != nil {
		return nil, fmt.Errorf("unable to update transaction status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s", store.ErrTransactionNotFound, id)
	}

	zap.L().Info("Transaction status updated",
		zap.String("transaction_id", id),
		zap.String("status", status))

	return s.GetTransactionById(ctx, id)
}

func (s *Service) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("unable to query transactions: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var transactions []models.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan transaction row: %w", err)
		}
		transactions = append(transactions, *transaction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return transactions, nil
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var transaction models.Transaction
	var amountStr string
	var cardNumber, language, message, firstName, lastName, country sql.NullString

	err := row.Scan(&transaction.Id, &transaction.AccountFrom, &transaction.AccountTo,
		&amountStr, &transaction.Currency, &transaction.PaymentMethod, &cardNumber,
		&language, &transaction.NotificationUrl, &transaction.Status, &message,
		&transaction.Type, &firstName, &lastName, &country,
		&transaction.CreatedAt, &transaction.UpdatedAt)
	if err != nil {
		return nil, err
	}

	transaction.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}

	transaction.CardNumber = cardNumber.String
	transaction.Language = language.String
	transaction.Message = message.String
	transaction.CustomerFirstName = firstName.String
	transaction.CustomerLastName = lastName.String
	transaction.CustomerCountry = country.String
	return &transaction, nil
}
