package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/hourglass/internal/common"
)

// BackupManager writes and inspects snapshots of the database.
type BackupManager struct {
	db         *sql.DB
	dbPath     string
	backupsDir string
}

// BackupInfo describes a stored snapshot.
type BackupInfo struct {
	CreatedAt     time.Time      `json:"created_at"`
	RowCounts     map[string]int `json:"row_counts"`
	Name          string         `json:"name"`
	FileSize      int64          `json:"file_size"`
	SchemaVersion int            `json:"schema_version"`
}

// ErrBackupCorrupted is returned when a snapshot fails its integrity check.
var ErrBackupCorrupted = errors.New("backup integrity check failed")

// backupTables are counted into each snapshot's metadata.
var backupTables = []string{"users", "categories", "projects", "tasks", "time_entries", "entry_tasks"}

// NewBackupManager creates a backup manager storing snapshots next to dbPath.
func NewBackupManager(db *sql.DB, dbPath string) (*BackupManager, error) {
	if dbPath == ":memory:" {
		return nil, fmt.Errorf("%w: in-memory databases cannot be backed up", common.ErrInvalidConfig)
	}

	backupsDir := filepath.Join(filepath.Dir(dbPath), "backups")
	if err := os.MkdirAll(backupsDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create backups directory: %w", err)
	}

	absDir, err := filepath.Abs(backupsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve backups directory: %w", err)
	}

	return &BackupManager{
		db:         db,
		dbPath:     dbPath,
		backupsDir: absDir,
	}, nil
}

// Dir returns the directory holding snapshots.
func (bm *BackupManager) Dir() string {
	return bm.backupsDir
}

// Create snapshots the database under name, or a timestamp when name is empty.
func (bm *BackupManager) Create(ctx context.Context, name string) (*BackupInfo, error) {
	if name == "" {
		name = "backup-" + time.Now().UTC().Format("2006-01-02-150405")
	}
	if err := validateBackupName(name); err != nil {
		return nil, err
	}

	backupPath := bm.snapshotPath(name)
	if _, err := os.Stat(backupPath); err == nil {
		return nil, common.Conflict("backup " + name + " already exists")
	}

	var schemaVersion int
	if err := bm.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&schemaVersion); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}

	counts := bm.collectRowCounts(ctx)

	if _, err := bm.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return nil, fmt.Errorf("failed to checkpoint WAL: %w", err)
	}
	// VACUUM INTO takes a bound parameter for the target file.
	if _, err := bm.db.ExecContext(ctx, "VACUUM INTO ?", backupPath); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}

	stat, err := os.Stat(backupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup: %w", err)
	}

	info := &BackupInfo{
		Name:          name,
		CreatedAt:     time.Now().UTC(),
		FileSize:      stat.Size(),
		RowCounts:     counts,
		SchemaVersion: schemaVersion,
	}

	if err := bm.saveMetadata(name, info); err != nil {
		if rmErr := os.Remove(backupPath); rmErr != nil {
			slog.Error("failed to remove backup after metadata save failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save metadata: %w", err)
	}

	slog.Info("created backup", "name", name, "size", info.FileSize)
	return info, nil
}

// List returns all snapshots, newest first. Unreadable metadata files are skipped.
func (bm *BackupManager) List(_ context.Context) ([]BackupInfo, error) {
	files, err := os.ReadDir(bm.backupsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backups directory: %w", err)
	}

	backups := make([]BackupInfo, 0, len(files))
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		info, err := bm.loadMetadata(strings.TrimSuffix(f.Name(), ".json"))
		if err != nil {
			slog.Debug("skipping unreadable backup metadata", "file", f.Name(), "error", err)
			continue
		}
		backups = append(backups, *info)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Verify runs an integrity check on the named snapshot and returns its schema version.
func (bm *BackupManager) Verify(ctx context.Context, name string) (int, error) {
	if err := validateBackupName(name); err != nil {
		return 0, err
	}

	path := bm.snapshotPath(name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return 0, common.NotFound("backup")
		}
		return 0, fmt.Errorf("failed to access backup: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return 0, fmt.Errorf("failed to open backup: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close backup database", "error", err)
		}
	}()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBackupCorrupted, err)
	}
	if result != "ok" {
		return 0, fmt.Errorf("%w: %s", ErrBackupCorrupted, result)
	}

	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read backup schema version: %w", err)
	}
	return version, nil
}

// Delete removes a snapshot and its metadata.
func (bm *BackupManager) Delete(_ context.Context, name string) error {
	if err := validateBackupName(name); err != nil {
		return err
	}

	if err := os.Remove(bm.snapshotPath(name)); err != nil {
		if os.IsNotExist(err) {
			return common.NotFound("backup")
		}
		return fmt.Errorf("failed to remove backup: %w", err)
	}
	if err := os.Remove(bm.metadataPath(name)); err != nil && !os.IsNotExist(err) {
		slog.Debug("failed to remove backup metadata", "name", name, "error", err)
	}
	return nil
}

func (bm *BackupManager) snapshotPath(name string) string {
	return filepath.Join(bm.backupsDir, name+".db")
}

func (bm *BackupManager) metadataPath(name string) string {
	return filepath.Join(bm.backupsDir, name+".json")
}

func (bm *BackupManager) collectRowCounts(ctx context.Context) map[string]int {
	counts := make(map[string]int, len(backupTables))
	for _, table := range backupTables {
		var n int
		// #nosec G202 - table names come from a fixed list
		if err := bm.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			slog.Debug("failed to count rows", "table", table, "error", err)
		}
		counts[table] = n
	}
	return counts
}

func (bm *BackupManager) saveMetadata(name string, info *BackupInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}

	path := bm.metadataPath(name)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func (bm *BackupManager) loadMetadata(name string) (*BackupInfo, error) {
	// #nosec G304 - name is a file listed from the backups directory
	data, err := os.ReadFile(bm.metadataPath(name))
	if err != nil {
		return nil, err
	}

	var info BackupInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func validateBackupName(name string) error {
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") || strings.TrimSpace(name) == "" {
		return common.NewValidationError("name", "must be a plain file name")
	}
	return nil
}
