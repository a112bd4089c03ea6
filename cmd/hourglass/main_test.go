package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/hourglass/internal/common"
)

func TestParseRange(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 3, 15, 18, 30, 0, 0, loc)

	t.Run("defaults to the last 30 days", func(t *testing.T) {
		start, end, err := parseRange("", "", now, loc)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 2, 15, 0, 0, 0, 0, loc), start)
		assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, loc).Add(-time.Nanosecond), end)
	})

	t.Run("explicit bounds are inclusive", func(t *testing.T) {
		start, end, err := parseRange("2024-03-01", "2024-03-01", now, loc)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, loc), start)
		assert.Equal(t, 24*time.Hour, end.Sub(start)+time.Nanosecond)
	})

	for name, tc := range map[string][2]string{
		"bad from":       {"03/01/2024", ""},
		"bad to":         {"", "tomorrow"},
		"to before from": {"2024-03-10", "2024-03-01"},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := parseRange(tc[0], tc[1], now, loc)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		want string
		size int64
	}{
		{"0 B", 0},
		{"1023 B", 1023},
		{"1.0 KB", 1024},
		{"1.5 KB", 1536},
		{"2.0 MB", 2 * 1024 * 1024},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatFileSize(tt.size))
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "just now", formatRelativeTime(now.Add(-10*time.Second), now))
	assert.Equal(t, "1 minute ago", formatRelativeTime(now.Add(-time.Minute), now))
	assert.Equal(t, "5 minutes ago", formatRelativeTime(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3 hours ago", formatRelativeTime(now.Add(-3*time.Hour), now))
	assert.Equal(t, "yesterday", formatRelativeTime(now.Add(-25*time.Hour), now))
	assert.Equal(t, "4 days ago", formatRelativeTime(now.Add(-4*24*time.Hour), now))
	assert.Contains(t, formatRelativeTime(now.Add(-30*24*time.Hour), now), "2024-02")
}

func TestFormatCommandError(t *testing.T) {
	plain := formatCommandError(errors.New("disk full"))
	assert.Contains(t, plain, "disk full")

	wrapped := fmt.Errorf("timer: %w", common.NewUserError("no account for ada@example.com", common.ErrNotFound))
	msg := formatCommandError(wrapped)
	assert.Contains(t, msg, "no account for ada@example.com")
	assert.NotContains(t, msg, "not found")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("HOURGLASS_DATABASE_PATH", filepath.Join(dir, "data", "hourglass.db"))
	t.Setenv("HOURGLASS_AUTH_JWT_SECRET", "cmd-test-secret")
	t.Setenv("HOURGLASS_TIMEZONE", "UTC")
	t.Setenv("HOURGLASS_USER", "ada@example.com")

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 4")

	out, err = run(t, "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 4")

	out, err = run(t, "users", "add", "ada@example.com", "--name", "Ada", "--password", "correct-horse")
	require.NoError(t, err)
	assert.Contains(t, out, "Created ada@example.com")

	out, err = run(t, "timer", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No timer running")

	t.Setenv("HOURGLASS_USER", "grace@example.com")
	_, err = run(t, "timer", "status")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Contains(t, formatCommandError(err), "hourglass users add grace@example.com")
	t.Setenv("HOURGLASS_USER", "ada@example.com")

	out, err = run(t, "timer", "start", "work")
	require.NoError(t, err)
	assert.Contains(t, out, "Work")

	_, err = run(t, "timer", "start", "Study")
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Contains(t, formatCommandError(err), "stop it first with: hourglass timer stop")
	assert.NotContains(t, formatCommandError(err), "conflict:")

	_, err = run(t, "timer", "stop", "--notes", "first session")
	require.NoError(t, err)

	_, err = run(t, "timer", "abandon")
	assert.ErrorIs(t, err, common.ErrNotFound)

	csvPath := filepath.Join(dir, "import.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"category,start,end,notes\n"+
			"Reading,2024-03-01T09:00:00Z,2024-03-01T10:00:00Z,novel\n"+
			"Gardening,2024-03-01T11:00:00Z,2024-03-01T12:00:00Z,\n"), 0o600))

	out, err = run(t, "import", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 entries (1 rejected)")

	exportPath := filepath.Join(dir, "export.csv")
	_, err = run(t, "export", "csv", "--from", "2024-03-01", "--to", "2024-03-01", "-o", exportPath)
	require.NoError(t, err)
	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Reading")
	assert.Contains(t, string(data), "novel")

	out, err = run(t, "stats", "--days", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Last 7 days")

	_, err = run(t, "stats", "--days", "0")
	assert.ErrorIs(t, err, common.ErrValidation)

	out, err = run(t, "backup", "create", "snap")
	require.NoError(t, err)
	assert.Contains(t, out, "snap")

	out, err = run(t, "backup", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "snap")

	out, err = run(t, "backup", "verify", "snap")
	require.NoError(t, err)
	assert.Contains(t, out, "intact")

	_, err = run(t, "backup", "delete", "snap")
	require.NoError(t, err)

	_, err = run(t, "backup", "verify", "snap")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
