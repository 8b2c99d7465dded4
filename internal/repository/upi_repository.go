package repository

import (
	"context"

	"github.com/rupayx/wallet-service/internal/models"
)

// UpiRepository manages the saved payout destinations. The collection is a
// single global list, matching the system this replaces.
type UpiRepository interface {
	Create(ctx context.Context, account *models.UpiAccount) error
	List(ctx context.Context) ([]models.UpiAccount, error)
	GetByUpiID(ctx context.Context, upiID string) (*models.UpiAccount, error)
	Delete(ctx context.Context, id string) error
}
