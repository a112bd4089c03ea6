package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/hourglass/internal/cli"
	"github.com/Veraticus/hourglass/internal/common"
	"github.com/Veraticus/hourglass/internal/model"
	"github.com/Veraticus/hourglass/internal/tracker"
)

func timerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Start, stop and inspect the running timer",
		Example: `  hourglass --user ada@example.com timer start Work
  hourglass --user ada@example.com timer status
  hourglass --user ada@example.com timer stop --notes "wrote the report"`,
	}

	cmd.AddCommand(timerStartCmd())
	cmd.AddCommand(timerStopCmd())
	cmd.AddCommand(timerAbandonCmd())
	cmd.AddCommand(timerStatusCmd())

	return cmd
}

// withUser opens the app and resolves the current user for fn.
func withUser(ctx context.Context, fn func(a *app, user *model.User) error) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	return fn(a, user)
}

// startTimer resolves category by name and starts a timer linked to taskIDs.
func startTimer(ctx context.Context, a *app, user *model.User, category string, taskIDs []string) (*model.TimeEntry, error) {
	cat, err := a.store.GetCategoryByName(ctx, user.ID, category)
	if err != nil {
		return nil, fmt.Errorf("category %q: %w", category, err)
	}
	return a.tracker.Start(ctx, user.ID, tracker.StartInput{CategoryID: cat.ID, TaskIDs: taskIDs})
}

func timerStartCmd() *cobra.Command {
	var taskIDs []string

	cmd := &cobra.Command{
		Use:   "start <category>",
		Short: "Start a timer in the named category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withUser(ctx, func(a *app, user *model.User) error {
				entry, err := startTimer(ctx, a, user, args[0], taskIDs)
				if errors.Is(err, common.ErrConflict) {
					return common.NewUserError("a timer is already running; stop it first with: hourglass timer stop", err)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderEntry(entry, time.Now()))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&taskIDs, "task", nil, "task id to link (repeatable)")
	return cmd
}

func timerStopCmd() *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running timer and save the entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withUser(ctx, func(a *app, user *model.User) error {
				var n *string
				if cmd.Flags().Changed("notes") {
					n = &notes
				}
				entry, err := a.tracker.Stop(ctx, user.ID, n)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderEntry(entry, time.Now()))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "notes to save on the entry")
	return cmd
}

func timerAbandonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "abandon",
		Short: "Discard the running timer without saving",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withUser(ctx, func(a *app, user *model.User) error {
				if err := a.tracker.Abandon(ctx, user.ID); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Timer abandoned"))
				return nil
			})
		},
	}
}

func timerStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withUser(ctx, func(a *app, user *model.User) error {
				entry, err := a.tracker.Active(ctx, user.ID)
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), entry, time.Now())
				return nil
			})
		},
	}
}

func printStatus(w io.Writer, entry *model.TimeEntry, now time.Time) {
	if entry == nil {
		fmt.Fprintln(w, cli.SubtleStyle.Render("No timer running."))
		return
	}
	fmt.Fprintln(w, cli.RenderEntry(entry, now))
}
