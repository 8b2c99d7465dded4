package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rupayx/wallet-service/internal/infrastructure/observability"
	"github.com/rupayx/wallet-service/internal/models"
	pkgerrors "github.com/rupayx/wallet-service/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type PostgresTransactionRepository struct {
	db *sql.DB
}

func NewPostgresTransactionRepository(db *sql.DB) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{db: db}
}

const transactionColumns = `id, type, amount, commission, date, status, COALESCE(details, ''), COALESCE(screenshot, ''), user_email, COALESCE(task_title, '')`

func validateTransaction(tx *models.Transaction) error {
	if tx == nil {
		return pkgerrors.ErrNilTransaction
	}
	if tx.Type != models.TypeBuy && tx.Type != models.TypeSell {
		return fmt.Errorf("%w: unknown transaction type %q", pkgerrors.ErrValidation, tx.Type)
	}
	if tx.Status != models.StatusPending && tx.Status != models.StatusCompleted && tx.Status != models.StatusRejected {
		return fmt.Errorf("%w: unknown transaction status %q", pkgerrors.ErrValidation, tx.Status)
	}
	if !tx.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", pkgerrors.ErrValidation)
	}
	return nil
}

func (r *PostgresTransactionRepository) instrument(method string, err *error, start time.Time) {
	status := "success"
	if *err != nil {
		status = "error"
	}
	observability.RepositoryCalls.WithLabelValues(method, status).Inc()
	observability.RepositoryDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

func (r *PostgresTransactionRepository) Create(ctx context.Context, tx *models.Transaction) (err error) {
	tracer := otel.Tracer("transaction-repository")
	ctx, span := tracer.Start(ctx, "CreateTransaction")
	defer span.End()
	defer r.instrument("CreateTransaction", &err, time.Now())
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if err = validateTransaction(tx); err != nil {
		slog.Error("failed to create transaction", "method", "Create", "error", err)
		return err
	}

	span.SetAttributes(
		attribute.String("transaction_id", tx.ID),
		attribute.String("user_email", tx.UserEmail),
		attribute.String("type", string(tx.Type)),
		attribute.String("status", string(tx.Status)),
	)

	query := `
	INSERT INTO transactions (id, type, amount, commission, date, status, details, screenshot, user_email, task_title)
	VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, NULLIF($10, ''))
	`
	_, err = r.db.ExecContext(ctx, query,
		tx.ID, tx.Type, tx.Amount, tx.Commission, tx.Date, tx.Status,
		tx.Details, tx.Screenshot, tx.UserEmail, tx.TaskTitle,
	)
	if err != nil {
		slog.Error("failed to create transaction", "method", "Create", "id", tx.ID, "user_email", tx.UserEmail, "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	slog.Info("transaction created", "method", "Create", "id", tx.ID, "user_email", tx.UserEmail, "type", tx.Type, "status", tx.Status)
	return nil
}

func (r *PostgresTransactionRepository) CreateWithDebit(ctx context.Context, tx *models.Transaction) (err error) {
	tracer := otel.Tracer("transaction-repository")
	ctx, span := tracer.Start(ctx, "CreateTransactionWithDebit")
	defer span.End()
	defer r.instrument("CreateTransactionWithDebit", &err, time.Now())
	defer func() {
		if err != nil && !stderrors.Is(err, pkgerrors.ErrInsufficientFunds) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if err = validateTransaction(tx); err != nil {
		return err
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	debit := `
	UPDATE users
	SET balance = balance - $1
	WHERE email = $2 AND balance >= $1
	RETURNING balance
	`
	var newBalance decimal.Decimal
	err = dbTx.QueryRowContext(ctx, debit, tx.Amount, tx.UserEmail).Scan(&newBalance)
	if stderrors.Is(err, sql.ErrNoRows) {
		dbTx.Rollback()
		return pkgerrors.ErrInsufficientFunds
	}
	if err != nil {
		dbTx.Rollback()
		return fmt.Errorf("failed to debit balance: %w", err)
	}

	insert := `
	INSERT INTO transactions (id, type, amount, commission, date, status, details, screenshot, user_email, task_title)
	VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, NULLIF($10, ''))
	`
	_, err = dbTx.ExecContext(ctx, insert,
		tx.ID, tx.Type, tx.Amount, tx.Commission, tx.Date, tx.Status,
		tx.Details, tx.Screenshot, tx.UserEmail, tx.TaskTitle,
	)
	if err != nil {
		dbTx.Rollback()
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	if err = dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("sell transaction created with debit", "id", tx.ID, "user_email", tx.UserEmail, "amount", tx.Amount.String(), "new_balance", newBalance.String())
	return nil
}

func (r *PostgresTransactionRepository) GetByID(ctx context.Context, id string) (tx *models.Transaction, err error) {
	tracer := otel.Tracer("transaction-repository")
	ctx, span := tracer.Start(ctx, "GetTransactionByID")
	span.SetAttributes(attribute.String("transaction_id", id))
	defer span.End()
	defer r.instrument("GetTransactionByID", &err, time.Now())

	var t models.Transaction
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	err = r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Type, &t.Amount, &t.Commission, &t.Date, &t.Status,
		&t.Details, &t.Screenshot, &t.UserEmail, &t.TaskTitle,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrTransactionNotFound
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction by id: %w", err)
	}
	return &t, nil
}

func (r *PostgresTransactionRepository) ListByUser(ctx context.Context, userEmail string) (txs []models.Transaction, err error) {
	tracer := otel.Tracer("transaction-repository")
	ctx, span := tracer.Start(ctx, "ListTransactionsByUser")
	defer span.End()
	defer r.instrument("ListTransactionsByUser", &err, time.Now())

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_email = $1 ORDER BY date DESC`
	return r.queryTransactions(ctx, query, userEmail)
}

func (r *PostgresTransactionRepository) ListPending(ctx context.Context, txType models.TransactionType) (txs []models.Transaction, err error) {
	tracer := otel.Tracer("transaction-repository")
	ctx, span := tracer.Start(ctx, "ListPendingTransactions")
	defer span.End()
	defer r.instrument("ListPendingTransactions", &err, time.Now())

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE type = $1 AND status = $2 ORDER BY date DESC`
	return r.queryTransactions(ctx, query, txType, models.StatusPending)
}

func (r *PostgresTransactionRepository) queryTransactions(ctx context.Context, query string, args ...interface{}) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(
			&t.ID, &t.Type, &t.Amount, &t.Commission, &t.Date, &t.Status,
			&t.Details, &t.Screenshot, &t.UserEmail, &t.TaskTitle,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *PostgresTransactionRepository) ApplyStatus(ctx context.Context, id string, newStatus models.TransactionStatus, balanceDelta decimal.Decimal) (applied bool, err error) {
	tracer := otel.Tracer("transaction-repository")
	ctx, span := tracer.Start(ctx, "ApplyTransactionStatus")
	span.SetAttributes(
		attribute.String("transaction_id", id),
		attribute.String("new_status", string(newStatus)),
	)
	defer span.End()
	defer r.instrument("ApplyTransactionStatus", &err, time.Now())
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Only a Pending row may move; terminal states stay frozen.
	update := `
	UPDATE transactions
	SET status = $1
	WHERE id = $2 AND status = $3
	RETURNING user_email
	`
	var userEmail string
	err = dbTx.QueryRowContext(ctx, update, newStatus, id, models.StatusPending).Scan(&userEmail)
	if stderrors.Is(err, sql.ErrNoRows) {
		dbTx.Rollback()
		return false, nil
	}
	if err != nil {
		dbTx.Rollback()
		return false, fmt.Errorf("failed to update transaction status: %w", err)
	}

	if !balanceDelta.IsZero() {
		if _, err = dbTx.ExecContext(ctx, `UPDATE users SET balance = balance + $1 WHERE email = $2`, balanceDelta, userEmail); err != nil {
			dbTx.Rollback()
			return false, fmt.Errorf("failed to apply balance delta: %w", err)
		}
	}

	if err = dbTx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("transaction status applied", "id", id, "status", newStatus, "user_email", userEmail, "balance_delta", balanceDelta.String())
	return true, nil
}
