package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/hourglass/internal/cli"
	"github.com/Veraticus/hourglass/internal/model"
	"github.com/Veraticus/hourglass/internal/tracker"
	"github.com/Veraticus/hourglass/internal/tui"
	"github.com/Veraticus/hourglass/internal/tui/themes"
)

// trackerSession adapts the tracker to the countdown's session controls.
type trackerSession struct {
	tracker *tracker.Tracker
	notes   *string
	userID  string
}

func (s trackerSession) Stop(ctx context.Context) (*model.TimeEntry, error) {
	return s.tracker.Stop(ctx, s.userID, s.notes)
}

func (s trackerSession) Abandon(ctx context.Context) error {
	return s.tracker.Abandon(ctx, s.userID)
}

func pomodoroCmd() *cobra.Command {
	var (
		minutes int
		notes   string
		theme   string
		taskIDs []string
	)

	cmd := &cobra.Command{
		Use:   "pomodoro <category>",
		Short: "Start a timer with an interactive countdown",
		Long: `Start a timer and show a countdown. When the countdown ends the entry
is saved. Press s to save early, x to abandon, or q to leave the timer
running in the background.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if minutes <= 0 {
				return fmt.Errorf("--minutes must be positive")
			}
			ctx := cmd.Context()
			return withUser(ctx, func(a *app, user *model.User) error {
				entry, err := startTimer(ctx, a, user, args[0], taskIDs)
				if err != nil {
					return err
				}

				var n *string
				if notes != "" {
					n = &notes
				}
				t := themes.ByName(theme)
				res, err := tui.Run(ctx, tui.Config{
					Session:  trackerSession{tracker: a.tracker, userID: user.ID, notes: n},
					Category: entry.Category.Name,
					Theme:    &t,
					Duration: time.Duration(minutes) * time.Minute,
				})
				if err != nil {
					return err
				}
				if res.Err != nil {
					return res.Err
				}

				out := cmd.OutOrStdout()
				switch res.Outcome {
				case tui.OutcomeCompleted, tui.OutcomeStopped:
					fmt.Fprintln(out, cli.RenderEntry(res.Entry, time.Now()))
				case tui.OutcomeAbandoned:
					fmt.Fprintln(out, cli.FormatSuccess("Timer abandoned"))
				default:
					fmt.Fprintln(out, cli.FormatInfo("Timer still running; stop it with: hourglass timer stop"))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&minutes, "minutes", "m", 25, "countdown length in minutes")
	cmd.Flags().StringVar(&notes, "notes", "", "notes to save when the countdown ends")
	cmd.Flags().StringVar(&theme, "theme", "dark", "color theme (dark, light)")
	cmd.Flags().StringSliceVar(&taskIDs, "task", nil, "task id to link (repeatable)")
	return cmd
}
