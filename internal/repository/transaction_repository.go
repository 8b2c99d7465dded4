package repository

import (
	"context"

	"github.com/rupayx/wallet-service/internal/models"
	"github.com/shopspring/decimal"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	// CreateWithDebit inserts a Sell transaction and debits the owner's
	// balance in one database transaction. Returns ErrInsufficientFunds
	// when the balance does not cover the amount; nothing is written then.
	CreateWithDebit(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	// ListByUser returns the user's transactions newest-first.
	ListByUser(ctx context.Context, userEmail string) ([]models.Transaction, error)
	ListPending(ctx context.Context, txType models.TransactionType) ([]models.Transaction, error)
	// ApplyStatus moves a Pending transaction to newStatus and applies
	// balanceDelta to the owner atomically. It reports false when the
	// transaction was not Pending (terminal states are frozen).
	ApplyStatus(ctx context.Context, id string, newStatus models.TransactionStatus, balanceDelta decimal.Decimal) (bool, error)
}
