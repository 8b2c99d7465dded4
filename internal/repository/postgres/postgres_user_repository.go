package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/rupayx/wallet-service/internal/models"
	pkgerrors "github.com/rupayx/wallet-service/pkg/errors"
	"github.com/shopspring/decimal"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `uid, email, password_hash, balance, is_banned, joined_date, referral_code, COALESCE(referred_by, '')`

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.UID,
		&user.Email,
		&user.PasswordHash,
		&user.Balance,
		&user.IsBanned,
		&user.JoinedDate,
		&user.ReferralCode,
		&user.ReferredBy,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return pkgerrors.ErrNilUser
	}
	if user.Email == "" || user.PasswordHash == "" {
		return fmt.Errorf("%w: email and password are required", pkgerrors.ErrValidation)
	}

	query := `
	INSERT INTO users (uid, email, password_hash, balance, is_banned, joined_date, referral_code, referred_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
	`
	_, err := r.db.ExecContext(
		ctx,
		query,
		user.UID,
		user.Email,
		user.PasswordHash,
		user.Balance,
		user.IsBanned,
		user.JoinedDate,
		user.ReferralCode,
		user.ReferredBy,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return pkgerrors.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email cannot be empty", pkgerrors.ErrValidation)
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, pkgerrors.ErrUserNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (r *PostgresUserRepository) GetByReferralCode(ctx context.Context, code string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE referral_code = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, code))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, pkgerrors.ErrUserNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to get user by referral code: %w", err)
	}
	return user, nil
}

func (r *PostgresUserRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY joined_date DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.UID,
			&user.Email,
			&user.PasswordHash,
			&user.Balance,
			&user.IsBanned,
			&user.JoinedDate,
			&user.ReferralCode,
			&user.ReferredBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *PostgresUserRepository) ChangeBalance(ctx context.Context, email string, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE users
		SET balance = balance + $1
		WHERE email = $2
		RETURNING balance
		`
	var newBalance decimal.Decimal
	err := r.db.QueryRowContext(ctx, query, delta, email).Scan(&newBalance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, pkgerrors.ErrUserNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to change balance: %w", err)
	}
	return newBalance, nil
}

func (r *PostgresUserRepository) SetBanned(ctx context.Context, email string, banned bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_banned = $1 WHERE email = $2`, banned, email)
	if err != nil {
		return fmt.Errorf("failed to set ban flag: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return pkgerrors.ErrUserNotFound
	}
	return nil
}
