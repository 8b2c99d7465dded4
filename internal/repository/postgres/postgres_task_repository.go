package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rupayx/wallet-service/internal/models"
	pkgerrors "github.com/rupayx/wallet-service/pkg/errors"
)

type PostgresTaskRepository struct {
	db *sql.DB
}

func NewPostgresTaskRepository(db *sql.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{db: db}
}

func (r *PostgresTaskRepository) Create(ctx context.Context, task *models.DepositTask) error {
	if task == nil || task.Title == "" {
		return fmt.Errorf("%w: task title is required", pkgerrors.ErrValidation)
	}
	if !task.Amount.IsPositive() {
		return fmt.Errorf("%w: task amount must be positive", pkgerrors.ErrValidation)
	}

	query := `INSERT INTO deposit_tasks (id, title, amount) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, task.ID, task.Title, task.Amount); err != nil {
		return fmt.Errorf("failed to create deposit task: %w", err)
	}
	return nil
}

func (r *PostgresTaskRepository) GetByID(ctx context.Context, id string) (*models.DepositTask, error) {
	var t models.DepositTask
	err := r.db.QueryRowContext(ctx, `SELECT id, title, amount FROM deposit_tasks WHERE id = $1`, id).
		Scan(&t.ID, &t.Title, &t.Amount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deposit task: %w", err)
	}
	return &t, nil
}

func (r *PostgresTaskRepository) List(ctx context.Context) ([]models.DepositTask, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, amount FROM deposit_tasks ORDER BY amount`)
	if err != nil {
		return nil, fmt.Errorf("failed to list deposit tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.DepositTask
	for rows.Next() {
		var t models.DepositTask
		if err := rows.Scan(&t.ID, &t.Title, &t.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan deposit task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *PostgresTaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM deposit_tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete deposit task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return pkgerrors.ErrTaskNotFound
	}
	return nil
}
