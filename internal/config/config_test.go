package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/hourglass/internal/common"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("HOURGLASS_TEST_DIR", "/srv/data")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/db/hourglass.db", filepath.Join(home, "db/hourglass.db")},
		{"$HOURGLASS_TEST_DIR/hourglass.db", "/srv/data/hourglass.db"},
		{"/abs/path.db", "/abs/path.db"},
		{"~user/file", "~user/file"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, []string{DefaultCORSOrigin}, cfg.Server.CORSOrigins)
	assert.Equal(t, DefaultReadHeaderTimeout, cfg.Server.ReadHeaderTimeout)
	assert.Equal(t, DefaultTokenTTL, cfg.Auth.TokenTTL)
	assert.NotContains(t, cfg.Database.Path, "$HOME")
	assert.False(t, cfg.Server.TLS)
	assert.Contains(t, cfg.Server.CertDir, filepath.Join(".config", "hourglass", "certs"))

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	assert.ErrorIs(t, cfg.RequireSecret(), common.ErrMissingConfig)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HOURGLASS_SERVER_ADDR", ":8080")
	t.Setenv("HOURGLASS_SERVER_CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("HOURGLASS_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("HOURGLASS_AUTH_TOKEN_TTL", "2h")
	t.Setenv("HOURGLASS_TIMEZONE", "America/New_York")

	cfg, err := Load(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.NoError(t, cfg.RequireSecret())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /tmp/hourglass-test.db
server:
  cors_origins:
    - http://one.test
    - http://two.test
logging:
  level: debug
`), 0o600))

	v := newViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/hourglass-test.db", cfg.Database.Path)
	assert.Equal(t, []string{"http://one.test", "http://two.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		want  error
	}{
		{"bad level", "logging.level", "loud", common.ErrInvalidConfig},
		{"bad timezone", "timezone", "Mars/Olympus", common.ErrInvalidConfig},
		{"zero ttl", "auth.token_ttl", "0s", common.ErrInvalidConfig},
		{"empty path", "database.path", "", common.ErrMissingConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper(t)
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("HOURGLASS_DOTENV_PROBE=loaded\n"), 0o600))
	t.Setenv("HOURGLASS_DOTENV_PROBE", "")
	require.NoError(t, os.Unsetenv("HOURGLASS_DOTENV_PROBE"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "loaded", os.Getenv("HOURGLASS_DOTENV_PROBE"))
}

func TestLoadSheetsConfig(t *testing.T) {
	v := newViper(t)
	v.Set("sheets.client_id", "id")
	v.Set("sheets.client_secret", "secret")
	v.Set("sheets.refresh_token", "refresh")
	v.Set("sheets.spreadsheet_name", "Hours")

	cfg, err := LoadSheetsConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "Hours", cfg.SpreadsheetName)
	assert.Equal(t, "refresh", cfg.RefreshToken)

	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "")
	_, err = LoadSheetsConfig(newViper(t))
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}
