package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rupayx/wallet-service/internal/models"
	pkgerrors "github.com/rupayx/wallet-service/pkg/errors"
)

const (
	settingBankDetails = "bank_details"
	settingHelpLinks   = "help_links"
	settingAdminCreds  = "admin_credentials"
)

// PostgresSettingsRepository keeps each singleton record as one JSON
// document in a name/value table.
type PostgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

func (r *PostgresSettingsRepository) get(ctx context.Context, name string, out interface{}) error {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE name = $1`, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return pkgerrors.ErrSettingNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read setting %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode setting %s: %w", name, err)
	}
	return nil
}

func (r *PostgresSettingsRepository) save(ctx context.Context, name string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", name, err)
	}
	query := `
	INSERT INTO settings (name, value) VALUES ($1, $2)
	ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := r.db.ExecContext(ctx, query, name, raw); err != nil {
		return fmt.Errorf("failed to save setting %s: %w", name, err)
	}
	return nil
}

func (r *PostgresSettingsRepository) GetBankDetails(ctx context.Context) (*models.BankDetails, error) {
	var details models.BankDetails
	if err := r.get(ctx, settingBankDetails, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (r *PostgresSettingsRepository) SaveBankDetails(ctx context.Context, details *models.BankDetails) error {
	return r.save(ctx, settingBankDetails, details)
}

func (r *PostgresSettingsRepository) GetHelpLinks(ctx context.Context) (*models.HelpLinks, error) {
	var links models.HelpLinks
	if err := r.get(ctx, settingHelpLinks, &links); err != nil {
		return nil, err
	}
	return &links, nil
}

func (r *PostgresSettingsRepository) SaveHelpLinks(ctx context.Context, links *models.HelpLinks) error {
	return r.save(ctx, settingHelpLinks, links)
}

func (r *PostgresSettingsRepository) GetAdminCredentials(ctx context.Context) (*models.AdminCredentials, error) {
	var creds models.AdminCredentials
	if err := r.get(ctx, settingAdminCreds, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (r *PostgresSettingsRepository) SaveAdminCredentials(ctx context.Context, creds *models.AdminCredentials) error {
	return r.save(ctx, settingAdminCreds, creds)
}
