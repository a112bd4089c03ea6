package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Veraticus/hourglass/internal/common"
)

// EnvPrefix is prepended to every environment override, e.g. HOURGLASS_SERVER_ADDR.
const EnvPrefix = "HOURGLASS"

// Defaults.
const (
	DefaultDatabasePath      = "$HOME/.local/share/hourglass/hourglass.db"
	DefaultAddr              = ":3001"
	DefaultCORSOrigin        = "http://localhost:5173"
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultTokenTTL          = 7 * 24 * time.Hour
	DefaultCertDir           = "$HOME/.config/hourglass/certs"
)

// Config is the resolved application configuration.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Logging  LoggingConfig
	// Timezone names the IANA zone used for calendar-day bucketing. Empty means the host zone.
	Timezone string
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr              string
	CORSOrigins       []string
	ReadHeaderTimeout time.Duration
	// TLS serves HTTPS with a self-signed certificate kept in CertDir.
	TLS     bool
	CertDir string
}

// AuthConfig configures bearer tokens.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// LoggingConfig configures the global slog handler.
type LoggingConfig struct {
	Level  string
	Format string
}

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("server.addr", DefaultAddr)
	v.SetDefault("server.cors_origins", []string{DefaultCORSOrigin})
	v.SetDefault("server.read_header_timeout", DefaultReadHeaderTimeout)
	v.SetDefault("server.tls", false)
	v.SetDefault("server.cert_dir", DefaultCertDir)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", DefaultTokenTTL)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("timezone", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped; existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(ExpandPath(p)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load resolves the configuration from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Path: ExpandPath(v.GetString("database.path")),
		},
		Server: ServerConfig{
			Addr:              v.GetString("server.addr"),
			CORSOrigins:       splitList(v.GetStringSlice("server.cors_origins")),
			ReadHeaderTimeout: v.GetDuration("server.read_header_timeout"),
			TLS:               v.GetBool("server.tls"),
			CertDir:           ExpandPath(v.GetString("server.cert_dir")),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			TokenTTL:  v.GetDuration("auth.token_ttl"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Timezone: v.GetString("timezone"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings every command depends on. The JWT secret is
// checked by RequireSecret since only the server and user commands need it.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		return fmt.Errorf("%w: server.read_header_timeout must be positive", common.ErrInvalidConfig)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("%w: auth.token_ttl must be positive", common.ErrInvalidConfig)
	}
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// RequireSecret reports a missing JWT secret.
func (c *Config) RequireSecret() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("%w: auth.jwt_secret (set %s_AUTH_JWT_SECRET)", common.ErrMissingConfig, EnvPrefix)
	}
	return nil
}

// Location returns the configured zone, or time.Local when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", common.ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// splitList flattens comma separated values so env overrides like
// "a,b" behave the same as a YAML list.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
