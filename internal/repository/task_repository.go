package repository

import (
	"context"

	"github.com/rupayx/wallet-service/internal/models"
)

type TaskRepository interface {
	Create(ctx context.Context, task *models.DepositTask) error
	GetByID(ctx context.Context, id string) (*models.DepositTask, error)
	List(ctx context.Context) ([]models.DepositTask, error)
	Delete(ctx context.Context, id string) error
}
