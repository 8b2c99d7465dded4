// Package seed writes the default singleton settings and starter deposit
// plans on first boot so a fresh database is immediately usable.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	stderrors "errors"

	"github.com/google/uuid"
	"github.com/rupayx/wallet-service/internal/models"
	"github.com/rupayx/wallet-service/internal/repository"
	pkgerrors "github.com/rupayx/wallet-service/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultAdminUsername = "MEWAT0786"
	defaultAdminPassword = "MEWAT0000"
)

var defaultBankDetails = models.BankDetails{
	AccountNumber: "987654321012",
	IFSC:          "SBIN0001234",
	BankName:      "State Bank of India",
	AccountName:   "RupayX Official",
	UpiID:         "admin@sbi",
}

var defaultHelpLinks = models.HelpLinks{
	Telegram:        "https://t.me/rupayx_official",
	CustomerService: "https://t.me/rupayx_support",
}

var starterTasks = []struct {
	title  string
	amount int64
}{
	{"Starter Pack", 500},
	{"Silver Pack", 1000},
	{"Gold Pack", 2500},
	{"Platinum Pack", 5000},
}

// EnsureDefaults creates any missing singleton settings and, when no
// deposit plans exist at all, the starter set. Existing values are never
// overwritten.
func EnsureDefaults(ctx context.Context, settingsRepo repository.SettingsRepository, taskRepo repository.TaskRepository) error {
	if _, err := settingsRepo.GetAdminCredentials(ctx); stderrors.Is(err, pkgerrors.ErrSettingNotFound) {
		hash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash default admin password: %w", err)
		}
		creds := &models.AdminCredentials{
			Username:     defaultAdminUsername,
			PasswordHash: string(hash),
		}
		if err := settingsRepo.SaveAdminCredentials(ctx, creds); err != nil {
			return fmt.Errorf("failed to seed admin credentials: %w", err)
		}
		slog.Info("seeded default admin credentials", "username", defaultAdminUsername)
	} else if err != nil {
		return fmt.Errorf("failed to check admin credentials: %w", err)
	}

	if _, err := settingsRepo.GetBankDetails(ctx); stderrors.Is(err, pkgerrors.ErrSettingNotFound) {
		details := defaultBankDetails
		if err := settingsRepo.SaveBankDetails(ctx, &details); err != nil {
			return fmt.Errorf("failed to seed bank details: %w", err)
		}
		slog.Info("seeded default bank details", "bank", details.BankName)
	} else if err != nil {
		return fmt.Errorf("failed to check bank details: %w", err)
	}

	if _, err := settingsRepo.GetHelpLinks(ctx); stderrors.Is(err, pkgerrors.ErrSettingNotFound) {
		links := defaultHelpLinks
		if err := settingsRepo.SaveHelpLinks(ctx, &links); err != nil {
			return fmt.Errorf("failed to seed help links: %w", err)
		}
		slog.Info("seeded default help links")
	} else if err != nil {
		return fmt.Errorf("failed to check help links: %w", err)
	}

	tasks, err := taskRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list deposit plans: %w", err)
	}
	if len(tasks) == 0 {
		for _, t := range starterTasks {
			task := &models.DepositTask{
				ID:     uuid.NewString(),
				Title:  t.title,
				Amount: decimal.NewFromInt(t.amount),
			}
			if err := taskRepo.Create(ctx, task); err != nil {
				return fmt.Errorf("failed to seed deposit plan %q: %w", t.title, err)
			}
		}
		slog.Info("seeded starter deposit plans", "count", len(starterTasks))
	}

	return nil
}
