package repository

import (
	"context"

	"github.com/rupayx/wallet-service/internal/models"
)

// SettingsRepository stores the singleton records (bank details, help
// links, admin credentials) as named JSON documents.
type SettingsRepository interface {
	GetBankDetails(ctx context.Context) (*models.BankDetails, error)
	SaveBankDetails(ctx context.Context, details *models.BankDetails) error
	GetHelpLinks(ctx context.Context) (*models.HelpLinks, error)
	SaveHelpLinks(ctx context.Context, links *models.HelpLinks) error
	GetAdminCredentials(ctx context.Context) (*models.AdminCredentials, error)
	SaveAdminCredentials(ctx context.Context, creds *models.AdminCredentials) error
}
