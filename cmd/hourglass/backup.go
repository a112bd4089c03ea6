package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Veraticus/hourglass/internal/cli"
	"github.com/Veraticus/hourglass/internal/storage"
)

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage database backups",
		Long: `Create, list and verify consistent snapshots of the database.

Snapshots are written next to the database under backups/ with a JSON
metadata file describing row counts and the schema version.`,
		Example: `  # Snapshot before a large import
  hourglass backup create pre-import

  # List all backups
  hourglass backup list

  # Check a snapshot is readable
  hourglass backup verify pre-import

  # Remove an old snapshot
  hourglass backup delete pre-import`,
	}

	cmd.AddCommand(createBackupCmd())
	cmd.AddCommand(listBackupsCmd())
	cmd.AddCommand(verifyBackupCmd())
	cmd.AddCommand(deleteBackupCmd())

	return cmd
}

// withBackups opens the database and hands its backup manager to fn.
func withBackups(cmd *cobra.Command, fn func(bm *storage.BackupManager) error) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	bm, err := a.store.NewBackupManager()
	if err != nil {
		return fmt.Errorf("failed to create backup manager: %w", err)
	}
	return fn(bm)
}

func createBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new backup",
		Long:  `Snapshot the current database. The name defaults to a UTC timestamp.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return withBackups(cmd, func(bm *storage.BackupManager) error {
				info, err := bm.Create(cmd.Context(), name)
				if err != nil {
					return fmt.Errorf("failed to create backup: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Created backup %s (%s)\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(info.Name),
					formatFileSize(info.FileSize))
				return nil
			})
		},
	}
}

func listBackupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all backups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackups(cmd, func(bm *storage.BackupManager) error {
				backups, err := bm.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list backups: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(backups) == 0 {
					fmt.Fprintln(out, cli.SubtleStyle.Render("No backups found in "+bm.Dir()))
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
				fmt.Fprintln(w, strings.Join([]string{
					headerStyle.Render("NAME"),
					headerStyle.Render("CREATED"),
					headerStyle.Render("SIZE"),
					headerStyle.Render("SCHEMA"),
					headerStyle.Render("ENTRIES"),
					headerStyle.Render("TASKS"),
				}, "\t"))

				now := time.Now()
				for _, b := range backups {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
						cli.InfoStyle.Render(b.Name),
						formatRelativeTime(b.CreatedAt, now),
						formatFileSize(b.FileSize),
						b.SchemaVersion,
						b.RowCounts["time_entries"],
						b.RowCounts["tasks"],
					)
				}
				return w.Flush()
			})
		},
	}
}

func verifyBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <name>",
		Short: "Check a backup's integrity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackups(cmd, func(bm *storage.BackupManager) error {
				version, err := bm.Verify(cmd.Context(), args[0])
				if errors.Is(err, storage.ErrBackupCorrupted) {
					fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
				}
				if err != nil {
					return err
				}

				msg := fmt.Sprintf("Backup %s is intact (schema version %d)", args[0], version)
				if version != storage.ExpectedSchemaVersion {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning(msg+fmt.Sprintf("; current schema is %d", storage.ExpectedSchemaVersion)))
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
				return nil
			})
		},
	}
}

func deleteBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a backup and its metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackups(cmd, func(bm *storage.BackupManager) error {
				if err := bm.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted backup "+args[0]))
				return nil
			})
		},
	}
}
