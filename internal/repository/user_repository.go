package repository

import (
	"context"

	"github.com/rupayx/wallet-service/internal/models"
	"github.com/shopspring/decimal"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByReferralCode(ctx context.Context, code string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	// ChangeBalance applies delta unconditionally (admin adjustments may
	// push a balance negative) and returns the new balance.
	ChangeBalance(ctx context.Context, email string, delta decimal.Decimal) (decimal.Decimal, error)
	SetBanned(ctx context.Context, email string, banned bool) error
}
