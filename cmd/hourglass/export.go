package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/hourglass/internal/cli"
	"github.com/Veraticus/hourglass/internal/config"
	"github.com/Veraticus/hourglass/internal/export"
	"github.com/Veraticus/hourglass/internal/model"
	"github.com/Veraticus/hourglass/internal/service"
	"github.com/Veraticus/hourglass/internal/sheets"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export completed time entries",
		Example: `  hourglass --user ada@example.com export csv --from 2024-03-01 --to 2024-03-31 -o march.csv
  hourglass --user ada@example.com export sheets --from 2024-03-01`,
	}

	cmd.PersistentFlags().String("from", "", "first day, YYYY-MM-DD (default 30 days ago)")
	cmd.PersistentFlags().String("to", "", "last day, YYYY-MM-DD (default today)")
	cmd.PersistentFlags().String("category", "", "only export this category")

	cmd.AddCommand(exportCSVCmd())
	cmd.AddCommand(exportSheetsCmd())
	return cmd
}

// completedEntries loads finished entries in the --from/--to range.
func completedEntries(ctx context.Context, cmd *cobra.Command, a *app, user *model.User) ([]model.TimeEntry, time.Time, time.Time, error) {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	categoryName, _ := cmd.Flags().GetString("category")

	start, end, err := parseRange(from, to, time.Now(), a.loc)
	if err != nil {
		return nil, start, end, err
	}

	filter := service.EntryFilter{StartDate: &start, EndDate: &end, CompletedOnly: true}
	if categoryName != "" {
		cat, err := a.store.GetCategoryByName(ctx, user.ID, categoryName)
		if err != nil {
			return nil, start, end, fmt.Errorf("category %q: %w", categoryName, err)
		}
		filter.CategoryID = cat.ID
	}

	entries, err := a.tracker.List(ctx, user.ID, filter)
	return entries, start, end, err
}

func exportCSVCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Write entries as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withUser(ctx, func(a *app, user *model.User) error {
				entries, _, _, err := completedEntries(ctx, cmd, a, user)
				if err != nil {
					return err
				}

				var w io.Writer = cmd.OutOrStdout()
				if output != "" && output != "-" {
					f, err := os.Create(output) // #nosec G304
					if err != nil {
						return fmt.Errorf("failed to create %s: %w", output, err)
					}
					defer func() { _ = f.Close() }()
					w = f
				}

				n, err := export.WriteEntries(w, entries, a.loc)
				if err != nil {
					return err
				}
				if w != cmd.OutOrStdout() {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Wrote %d entries to %s", n, output)))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func exportSheetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sheets",
		Short: "Write a timesheet to Google Sheets",
		Long: `Write a timesheet (summary block followed by one row per entry) to a
Google Sheet. Configure credentials under sheets.* or run "hourglass sheets auth".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.LoadSheetsConfig(viper.GetViper())
			if err != nil {
				return err
			}

			return withUser(ctx, func(a *app, user *model.User) error {
				entries, start, end, err := completedEntries(ctx, cmd, a, user)
				if err != nil {
					return err
				}

				writer, err := sheets.NewWriter(ctx, *cfg, nil)
				if err != nil {
					return err
				}
				res, err := writer.Write(ctx, sheets.BuildTimesheet(entries, sheets.DateRange{Start: start, End: end}, a.loc))
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
					"Wrote %d rows to https://docs.google.com/spreadsheets/d/%s", res.Rows, res.SpreadsheetID)))
				return nil
			})
		},
	}
}
