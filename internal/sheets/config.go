// Package sheets exports timesheets to Google Sheets.
package sheets

import (
	"fmt"
	"time"

	"github.com/Veraticus/hourglass/internal/common"
)

// Config holds the configuration for the Google Sheets writer.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	TokenFile          string
	SpreadsheetID      string
	SpreadsheetName    string
	SheetName          string
	TimeZone           string
	BatchSize          int
	RetryAttempts      int
	RetryDelay         time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName: "Hourglass Timesheet",
		SheetName:       "Timesheet",
		TimeZone:        "UTC",
		TokenFile:       "$HOME/.config/hourglass/sheets-token.json",
		BatchSize:       500,
		RetryAttempts:   3,
		RetryDelay:      time.Second,
	}
}

// HasOAuth reports whether OAuth2 client credentials are present.
func (c *Config) HasOAuth() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	hasServiceAccount := c.ServiceAccountPath != ""

	if !c.HasOAuth() && !hasServiceAccount {
		return fmt.Errorf("%w: sheets credentials (service_account_path or client_id/client_secret/refresh_token)", common.ErrMissingConfig)
	}
	if c.HasOAuth() && hasServiceAccount {
		return fmt.Errorf("%w: multiple sheets authentication methods configured; use either OAuth2 or a service account", common.ErrInvalidConfig)
	}
	if c.SheetName == "" {
		return fmt.Errorf("%w: sheet name is required", common.ErrInvalidConfig)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", common.ErrInvalidConfig)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry attempts cannot be negative", common.ErrInvalidConfig)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}
