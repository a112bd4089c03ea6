package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/hourglass/internal/analytics"
	"github.com/Veraticus/hourglass/internal/cli"
	"github.com/Veraticus/hourglass/internal/model"
)

func statsCmd() *cobra.Command {
	var days int
	var date string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show totals, streak, category distribution and the day rating",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := analytics.ValidateDays(days); err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			return withUser(ctx, func(a *app, user *model.User) error {
				stats, err := a.analytics.Stats(ctx, user.ID)
				if err != nil {
					return err
				}
				shares, err := a.analytics.Distribution(ctx, user.ID, days)
				if err != nil {
					return err
				}
				rating, err := a.analytics.DayRating(ctx, user.ID, date)
				if err != nil {
					return err
				}
				active, err := a.tracker.Active(ctx, user.ID)
				if err != nil {
					return err
				}

				label := date
				if label == "" {
					label = analytics.DayKey(time.Now(), a.loc)
				}

				fmt.Fprintln(out, cli.FormatTitle("hourglass · "+user.Name))
				fmt.Fprintln(out, cli.RenderStats(stats))
				fmt.Fprintln(out)
				fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("Last %d days", days)))
				fmt.Fprintln(out, cli.RenderDistribution(shares))
				fmt.Fprintln(out)
				fmt.Fprintln(out, cli.RenderRating(label, rating))
				if active != nil {
					fmt.Fprintln(out)
					printStatus(out, active, time.Now())
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", analytics.DefaultDays, "distribution window in days")
	cmd.Flags().StringVar(&date, "date", "", "day to rate, YYYY-MM-DD (default today)")
	return cmd
}
