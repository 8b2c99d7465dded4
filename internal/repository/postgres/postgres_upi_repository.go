package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rupayx/wallet-service/internal/models"
	pkgerrors "github.com/rupayx/wallet-service/pkg/errors"
)

type PostgresUpiRepository struct {
	db *sql.DB
}

func NewPostgresUpiRepository(db *sql.DB) *PostgresUpiRepository {
	return &PostgresUpiRepository{db: db}
}

func (r *PostgresUpiRepository) Create(ctx context.Context, account *models.UpiAccount) error {
	if account == nil || account.UpiID == "" {
		return fmt.Errorf("%w: upi id is required", pkgerrors.ErrValidation)
	}
	if !models.ValidUpiApp(account.AppName) {
		return fmt.Errorf("%w: unknown UPI app %q", pkgerrors.ErrValidation, account.AppName)
	}

	query := `INSERT INTO upi_accounts (id, upi_id, app_name) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, account.ID, account.UpiID, account.AppName); err != nil {
		return fmt.Errorf("failed to create upi account: %w", err)
	}
	return nil
}

func (r *PostgresUpiRepository) List(ctx context.Context) ([]models.UpiAccount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, upi_id, app_name FROM upi_accounts ORDER BY upi_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list upi accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.UpiAccount
	for rows.Next() {
		var a models.UpiAccount
		if err := rows.Scan(&a.ID, &a.UpiID, &a.AppName); err != nil {
			return nil, fmt.Errorf("failed to scan upi account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *PostgresUpiRepository) GetByUpiID(ctx context.Context, upiID string) (*models.UpiAccount, error) {
	var a models.UpiAccount
	err := r.db.QueryRowContext(ctx, `SELECT id, upi_id, app_name FROM upi_accounts WHERE upi_id = $1`, upiID).
		Scan(&a.ID, &a.UpiID, &a.AppName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrUpiNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upi account: %w", err)
	}
	return &a, nil
}

func (r *PostgresUpiRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM upi_accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete upi account: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return pkgerrors.ErrUpiNotFound
	}
	return nil
}
