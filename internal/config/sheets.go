package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/hourglass/internal/sheets"
)

// LoadSheetsConfig builds the Sheets exporter settings. Precedence:
// viper (config file or HOURGLASS_SHEETS_* env), then the GOOGLE_SHEETS_*
// variables, then defaults.
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	cfg := sheets.DefaultConfig()

	if s := v.GetString("sheets.service_account_path"); s != "" {
		cfg.ServiceAccountPath = ExpandPath(s)
	}
	if s := v.GetString("sheets.client_id"); s != "" {
		cfg.ClientID = s
	}
	if s := v.GetString("sheets.client_secret"); s != "" {
		cfg.ClientSecret = s
	}
	if s := v.GetString("sheets.refresh_token"); s != "" {
		cfg.RefreshToken = s
	}
	if s := v.GetString("sheets.spreadsheet_id"); s != "" {
		cfg.SpreadsheetID = s
	}
	if s := v.GetString("sheets.spreadsheet_name"); s != "" {
		cfg.SpreadsheetName = s
	}
	if s := v.GetString("sheets.sheet_name"); s != "" {
		cfg.SheetName = s
	}
	if s := v.GetString("sheets.token_file"); s != "" {
		cfg.TokenFile = ExpandPath(s)
	}
	if s := v.GetString("timezone"); s != "" {
		cfg.TimeZone = s
	}
	if n := v.GetInt("sheets.batch_size"); n > 0 {
		cfg.BatchSize = n
	}

	if cfg.ServiceAccountPath == "" {
		if s := os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"); s != "" {
			cfg.ServiceAccountPath = ExpandPath(s)
		}
	}
	if cfg.ClientID == "" {
		cfg.ClientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		cfg.ClientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if cfg.RefreshToken == "" {
		cfg.RefreshToken = os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN")
	}
	if cfg.SpreadsheetID == "" {
		cfg.SpreadsheetID = os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID")
	}

	if cfg.RefreshToken == "" && cfg.TokenFile != "" && cfg.ServiceAccountPath == "" {
		if tok, err := sheets.LoadToken(cfg.TokenFile); err == nil {
			cfg.RefreshToken = tok.RefreshToken
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
