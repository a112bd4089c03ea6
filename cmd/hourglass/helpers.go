package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/hourglass/internal/analytics"
	"github.com/Veraticus/hourglass/internal/auth"
	"github.com/Veraticus/hourglass/internal/common"
	"github.com/Veraticus/hourglass/internal/config"
	"github.com/Veraticus/hourglass/internal/model"
	"github.com/Veraticus/hourglass/internal/planner"
	"github.com/Veraticus/hourglass/internal/storage"
	"github.com/Veraticus/hourglass/internal/tracker"
)

// app bundles the services a command needs.
type app struct {
	cfg       *config.Config
	store     *storage.SQLiteStorage
	loc       *time.Location
	tracker   *tracker.Tracker
	planner   *planner.Planner
	analytics *analytics.Engine
}

// openApp loads configuration, opens and migrates the database, and wires services.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := initStorage(ctx, cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	clock := time.Now
	return &app{
		cfg:       cfg,
		store:     store,
		loc:       loc,
		tracker:   tracker.New(store, clock),
		planner:   planner.New(store, clock),
		analytics: analytics.NewEngine(store, clock, loc),
	}, nil
}

func (a *app) Close() {
	_ = a.store.Close()
}

// authService requires a JWT secret.
func (a *app) authService() (*auth.Service, error) {
	if err := a.cfg.RequireSecret(); err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokens(a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenTTL, time.Now)
	if err != nil {
		return nil, err
	}
	return auth.NewService(a.store, tokens, time.Now), nil
}

// currentUser resolves the account named by --user or HOURGLASS_USER.
func (a *app) currentUser(ctx context.Context) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(viper.GetString("user")))
	if email == "" {
		return nil, common.NewUserError(
			fmt.Sprintf("pass --user <email> or set %s_USER", config.EnvPrefix),
			fmt.Errorf("%w: user", common.ErrMissingConfig))
	}
	user, err := a.store.GetUserByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewUserError(
			fmt.Sprintf("no account for %s; create one with: hourglass users add %s", email, email), err)
	}
	return user, err
}

// initStorage opens the database, creating its directory, and applies migrations.
func initStorage(ctx context.Context, dbPath string) (*storage.SQLiteStorage, error) {
	dbPath = config.ExpandPath(dbPath)
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// parseRange turns --from/--to dates into an inclusive range; empty values
// default to the last 30 days ending today.
func parseRange(from, to string, now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	today := analytics.StartOfDay(now, loc)

	end := today
	if to != "" {
		t, err := time.ParseInLocation(model.DateLayout, to, loc)
		if err != nil {
			return time.Time{}, time.Time{}, common.NewValidationError("to", "must be YYYY-MM-DD")
		}
		end = t
	}
	start := end.AddDate(0, 0, -(analytics.DefaultDays - 1))
	if from != "" {
		t, err := time.ParseInLocation(model.DateLayout, from, loc)
		if err != nil {
			return time.Time{}, time.Time{}, common.NewValidationError("from", "must be YYYY-MM-DD")
		}
		start = t
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, common.NewValidationError("to", "must not be before from")
	}
	return start, end.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		if m := int(d.Minutes()); m != 1 {
			return fmt.Sprintf("%d minutes ago", m)
		}
		return "1 minute ago"
	case d < 24*time.Hour:
		if h := int(d.Hours()); h != 1 {
			return fmt.Sprintf("%d hours ago", h)
		}
		return "1 hour ago"
	case d < 7*24*time.Hour:
		if days := int(d.Hours() / 24); days != 1 {
			return fmt.Sprintf("%d days ago", days)
		}
		return "yesterday"
	}
	return t.Local().Format("2006-01-02 15:04")
}
