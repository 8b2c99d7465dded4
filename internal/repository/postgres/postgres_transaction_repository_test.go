package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rupayx/wallet-service/internal/models"
	repository "github.com/rupayx/wallet-service/internal/repository/postgres"
	pkgerrors "github.com/rupayx/wallet-service/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var transactionColumns = []string{"id", "type", "amount", "commission", "date", "status", "details", "screenshot", "user_email", "task_title"}

func pendingSell(amount int64) *models.Transaction {
	return &models.Transaction{
		ID:         "ORD1700000000000",
		Type:       models.TypeSell,
		Amount:     decimal.NewFromInt(amount),
		Commission: decimal.Zero,
		Date:       time.Now(),
		Status:     models.StatusPending,
		Details:    "user@ybl",
		UserEmail:  "user@example.com",
	}
}

func TestPostgresTransactionRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresTransactionRepository(db)
	ctx := context.Background()

	t.Run("NilTransaction", func(t *testing.T) {
		err := repo.Create(ctx, nil)
		assert.ErrorIs(t, err, pkgerrors.ErrNilTransaction)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownType", func(t *testing.T) {
		tx := pendingSell(100)
		tx.Type = "Transfer"
		err := repo.Create(ctx, tx)
		assert.ErrorIs(t, err, pkgerrors.ErrValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		tx := pendingSell(0)
		err := repo.Create(ctx, tx)
		assert.ErrorIs(t, err, pkgerrors.ErrValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success", func(t *testing.T) {
		tx := pendingSell(100)
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO transactions`)).
			WithArgs(tx.ID, tx.Type, tx.Amount, tx.Commission, tx.Date, tx.Status, tx.Details, tx.Screenshot, tx.UserEmail, tx.TaskTitle).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(ctx, tx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTransactionRepository_CreateWithDebit(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresTransactionRepository(db)
	ctx := context.Background()

	t.Run("InsufficientFunds", func(t *testing.T) {
		tx := pendingSell(500)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users`)).
			WithArgs(tx.Amount, tx.UserEmail).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}))
		mock.ExpectRollback()

		err := repo.CreateWithDebit(ctx, tx)
		assert.ErrorIs(t, err, pkgerrors.ErrInsufficientFunds)
		assert.NoError(t, mock.ExpectationsWereMet(), "nothing may be written when the debit fails")
	})

	t.Run("Success", func(t *testing.T) {
		tx := pendingSell(400)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users`)).
			WithArgs(tx.Amount, tx.UserEmail).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("600"))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO transactions`)).
			WithArgs(tx.ID, tx.Type, tx.Amount, tx.Commission, tx.Date, tx.Status, tx.Details, tx.Screenshot, tx.UserEmail, tx.TaskTitle).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.CreateWithDebit(ctx, tx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTransactionRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresTransactionRepository(db)
	ctx := context.Background()

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
			WithArgs("ORD404").
			WillReturnRows(sqlmock.NewRows(transactionColumns))

		_, err := repo.GetByID(ctx, "ORD404")
		assert.ErrorIs(t, err, pkgerrors.ErrTransactionNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
			WithArgs("ORD1").
			WillReturnRows(sqlmock.NewRows(transactionColumns).
				AddRow("ORD1", "Buy", "1000", "50", now, "Pending", "123456789012", "receipt.png", "user@example.com", "Gold Pack"))

		tx, err := repo.GetByID(ctx, "ORD1")
		assert.NoError(t, err)
		assert.Equal(t, models.TypeBuy, tx.Type)
		assert.True(t, tx.Commission.Equal(decimal.NewFromInt(50)))
		assert.Equal(t, "Gold Pack", tx.TaskTitle)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTransactionRepository_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresTransactionRepository(db)
	ctx := context.Background()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
		WithArgs("user@example.com").
		WillReturnRows(sqlmock.NewRows(transactionColumns).
			AddRow("ORD2", "Sell", "200", "0", now, "Pending", "user@ybl", "", "user@example.com", "").
			AddRow("ORD1", "Buy", "1000", "50", now.Add(-time.Hour), "Completed", "123456789012", "", "user@example.com", "Gold Pack"))

	txs, err := repo.ListByUser(ctx, "user@example.com")
	assert.NoError(t, err)
	assert.Len(t, txs, 2)
	assert.Equal(t, "ORD2", txs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTransactionRepository_ApplyStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresTransactionRepository(db)
	ctx := context.Background()

	t.Run("NoLongerPending", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`UPDATE transactions`)).
			WithArgs(models.StatusRejected, "ORD1", models.StatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"user_email"}))
		mock.ExpectRollback()

		applied, err := repo.ApplyStatus(ctx, "ORD1", models.StatusRejected, decimal.NewFromInt(400))
		assert.NoError(t, err)
		assert.False(t, applied, "settled transactions must not move again")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AppliesDelta", func(t *testing.T) {
		delta := decimal.NewFromInt(1050)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`UPDATE transactions`)).
			WithArgs(models.StatusCompleted, "ORD1", models.StatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"user_email"}).AddRow("user@example.com"))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET balance = balance + $1 WHERE email = $2`)).
			WithArgs(delta, "user@example.com").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		applied, err := repo.ApplyStatus(ctx, "ORD1", models.StatusCompleted, delta)
		assert.NoError(t, err)
		assert.True(t, applied)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ZeroDeltaSkipsBalanceUpdate", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`UPDATE transactions`)).
			WithArgs(models.StatusRejected, "ORD1", models.StatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"user_email"}).AddRow("user@example.com"))
		mock.ExpectCommit()

		applied, err := repo.ApplyStatus(ctx, "ORD1", models.StatusRejected, decimal.Zero)
		assert.NoError(t, err)
		assert.True(t, applied)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
