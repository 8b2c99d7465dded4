package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	stderrors "errors"

	"github.com/google/uuid"
	"github.com/rupayx/wallet-service/internal/models"
	"github.com/rupayx/wallet-service/internal/repository"
	pkgerrors "github.com/rupayx/wallet-service/pkg/errors"
)

// UpiService manages the saved payout destinations used by withdrawals.
type UpiService interface {
	AddAccount(ctx context.Context, upiID string, app models.UpiApp) (*models.UpiAccount, error)
	ListAccounts(ctx context.Context) ([]models.UpiAccount, error)
	RemoveAccount(ctx context.Context, id string) error
}

type upiService struct {
	upiRepo repository.UpiRepository
}

func NewUpiService(upiRepo repository.UpiRepository) *upiService {
	return &upiService{upiRepo: upiRepo}
}

func (s *upiService) AddAccount(ctx context.Context, upiID string, app models.UpiApp) (*models.UpiAccount, error) {
	upiID = strings.TrimSpace(upiID)
	if upiID == "" {
		return nil, fmt.Errorf("%w: UPI ID is required", pkgerrors.ErrValidation)
	}
	if !models.ValidUpiApp(app) {
		return nil, fmt.Errorf("%w: unknown UPI app %q", pkgerrors.ErrValidation, app)
	}

	if _, err := s.upiRepo.GetByUpiID(ctx, upiID); err == nil {
		return nil, fmt.Errorf("%w: UPI ID already saved", pkgerrors.ErrValidation)
	} else if !stderrors.Is(err, pkgerrors.ErrUpiNotFound) {
		return nil, fmt.Errorf("%w: failed to check UPI ID", pkgerrors.ErrInternal)
	}

	account := &models.UpiAccount{
		ID:      uuid.NewString(),
		UpiID:   upiID,
		AppName: app,
	}
	if err := s.upiRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("%w: failed to save UPI account", pkgerrors.ErrInternal)
	}

	slog.Info("UPI account saved", "upi_id", upiID, "app", app)
	return account, nil
}

func (s *upiService) ListAccounts(ctx context.Context) ([]models.UpiAccount, error) {
	accounts, err := s.upiRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list UPI accounts", pkgerrors.ErrInternal)
	}
	return accounts, nil
}

func (s *upiService) RemoveAccount(ctx context.Context, id string) error {
	if err := s.upiRepo.Delete(ctx, id); err != nil {
		if stderrors.Is(err, pkgerrors.ErrUpiNotFound) {
			return err
		}
		return fmt.Errorf("%w: failed to delete UPI account", pkgerrors.ErrInternal)
	}
	slog.Info("UPI account removed", "id", id)
	return nil
}
