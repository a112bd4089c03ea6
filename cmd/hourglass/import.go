package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/hourglass/internal/cli"
	"github.com/Veraticus/hourglass/internal/export"
	"github.com/Veraticus/hourglass/internal/model"
)

func importCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import manual time entries from CSV",
		Long: `Import manual time entries. The file needs the header

  category,start,end,notes

with RFC3339 times. Categories are matched by name, ignoring case.
Rows that cannot be imported are reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			f, err := os.Open(args[0]) // #nosec G304
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer func() { _ = f.Close() }()

			rows, rejects, err := export.ReadRows(f)
			if err != nil {
				return err
			}
			for _, r := range rejects {
				fmt.Fprintln(out, cli.FormatWarning(r.Error()))
			}
			if dryRun {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d rows valid, %d rejected", len(rows), len(rejects))))
				return nil
			}

			handler := cli.NewInterruptHandler(out, "Import", "Rows already imported are kept.")
			ctx := handler.HandleInterrupts(cmd.Context())

			return withUser(ctx, func(a *app, user *model.User) error {
				bar := cli.NewProgressBar(out, len(rows), "Importing entries...")
				im := export.NewImporter(a.store, a.tracker)
				im.OnRow = func() { cli.Step(bar) }

				res, err := im.Import(ctx, user.ID, rows)
				if res != nil {
					for _, r := range res.Rejected {
						fmt.Fprintln(out, cli.FormatWarning(r.Error()))
					}
					fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d entries (%d rejected)",
						res.Imported, len(res.Rejected)+len(rejects))))
				}
				if handler.WasInterrupted() {
					return nil
				}
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the file without importing")
	return cmd
}
