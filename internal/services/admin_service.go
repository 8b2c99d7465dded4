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
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// AdminService covers the back-office operations: user moderation, payout
// plan management and the editable payment/help settings.
type AdminService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	SetUserBanned(ctx context.Context, email string, banned bool) error

	BankDetails(ctx context.Context) (*models.BankDetails, error)
	UpdateBankDetails(ctx context.Context, details *models.BankDetails) error
	HelpLinks(ctx context.Context) (*models.HelpLinks, error)
	UpdateHelpLinks(ctx context.Context, links *models.HelpLinks) error

	ListTasks(ctx context.Context) ([]models.DepositTask, error)
	CreateTask(ctx context.Context, title string, amount decimal.Decimal) (*models.DepositTask, error)
	DeleteTask(ctx context.Context, id string) error
}

type adminService struct {
	userRepo     repository.UserRepository
	taskRepo     repository.TaskRepository
	settingsRepo repository.SettingsRepository
}

func NewAdminService(
	userRepo repository.UserRepository,
	taskRepo repository.TaskRepository,
	settingsRepo repository.SettingsRepository,
) *adminService {
	return &adminService{
		userRepo:     userRepo,
		taskRepo:     taskRepo,
		settingsRepo: settingsRepo,
	}
}

func (s *adminService) ListUsers(ctx context.Context) ([]models.User, error) {
	tracer := otel.Tracer("admin-service")
	ctx, span := tracer.Start(ctx, "ListUsers")
	defer span.End()

	users, err := s.userRepo.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: failed to list users", pkgerrors.ErrInternal)
	}
	return users, nil
}

func (s *adminService) SetUserBanned(ctx context.Context, email string, banned bool) error {
	tracer := otel.Tracer("admin-service")
	ctx, span := tracer.Start(ctx, "SetUserBanned")
	defer span.End()

	if err := s.userRepo.SetBanned(ctx, email, banned); err != nil {
		if stderrors.Is(err, pkgerrors.ErrUserNotFound) {
			span.SetStatus(codes.Error, "user not found")
			return err
		}
		span.RecordError(err)
		return fmt.Errorf("%w: failed to update ban flag", pkgerrors.ErrInternal)
	}

	slog.Info("user ban flag changed", "email", email, "banned", banned)
	return nil
}

func (s *adminService) BankDetails(ctx context.Context) (*models.BankDetails, error) {
	details, err := s.settingsRepo.GetBankDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load bank details", pkgerrors.ErrInternal)
	}
	return details, nil
}

func (s *adminService) UpdateBankDetails(ctx context.Context, details *models.BankDetails) error {
	if details == nil {
		return fmt.Errorf("%w: bank details are required", pkgerrors.ErrValidation)
	}
	if details.AccountNumber == "" || details.IFSC == "" {
		return fmt.Errorf("%w: account number and IFSC are required", pkgerrors.ErrValidation)
	}
	if err := s.settingsRepo.SaveBankDetails(ctx, details); err != nil {
		return fmt.Errorf("%w: failed to save bank details", pkgerrors.ErrInternal)
	}
	slog.Info("bank details updated", "bank", details.BankName)
	return nil
}

func (s *adminService) HelpLinks(ctx context.Context) (*models.HelpLinks, error) {
	links, err := s.settingsRepo.GetHelpLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load help links", pkgerrors.ErrInternal)
	}
	return links, nil
}

func (s *adminService) UpdateHelpLinks(ctx context.Context, links *models.HelpLinks) error {
	if links == nil {
		return fmt.Errorf("%w: help links are required", pkgerrors.ErrValidation)
	}
	if err := s.settingsRepo.SaveHelpLinks(ctx, links); err != nil {
		return fmt.Errorf("%w: failed to save help links", pkgerrors.ErrInternal)
	}
	slog.Info("help links updated")
	return nil
}

func (s *adminService) ListTasks(ctx context.Context) ([]models.DepositTask, error) {
	tasks, err := s.taskRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list deposit plans", pkgerrors.ErrInternal)
	}
	return tasks, nil
}

func (s *adminService) CreateTask(ctx context.Context, title string, amount decimal.Decimal) (*models.DepositTask, error) {
	tracer := otel.Tracer("admin-service")
	ctx, span := tracer.Start(ctx, "CreateTask")
	defer span.End()

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: plan title is required", pkgerrors.ErrValidation)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: plan amount must be positive", pkgerrors.ErrValidation)
	}

	task := &models.DepositTask{
		ID:     uuid.NewString(),
		Title:  title,
		Amount: amount,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: failed to create deposit plan", pkgerrors.ErrInternal)
	}

	slog.Info("deposit plan created", "id", task.ID, "title", title, "amount", amount)
	return task, nil
}

func (s *adminService) DeleteTask(ctx context.Context, id string) error {
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		if stderrors.Is(err, pkgerrors.ErrTaskNotFound) {
			return err
		}
		return fmt.Errorf("%w: failed to delete deposit plan", pkgerrors.ErrInternal)
	}
	slog.Info("deposit plan deleted", "id", id)
	return nil
}
