package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/hourglass/internal/auth"
	"github.com/Veraticus/hourglass/internal/cli"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts",
	}
	cmd.AddCommand(addUserCmd())
	return cmd
}

func addUserCmd() *cobra.Command {
	var name, password string
	var printToken bool

	cmd := &cobra.Command{
		Use:   "add <email>",
		Short: "Register an account",
		Long: `Register an account with the default categories. Missing name or
password are prompted for.`,
		Example: `  hourglass users add ada@example.com --name "Ada"
  HOURGLASS_AUTH_JWT_SECRET=dev hourglass users add ada@example.com --token`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			authSvc, err := a.authService()
			if err != nil {
				return err
			}

			reader := cli.NewLineReader(cmd.InOrStdin(), out)
			if name == "" {
				if name, err = reader.Prompt(ctx, "Name", ""); err != nil {
					return err
				}
			}
			if password == "" {
				password = os.Getenv("HOURGLASS_PASSWORD")
			}
			if password == "" {
				if password, err = reader.Prompt(ctx, "Password", ""); err != nil {
					return err
				}
			}

			session, err := authSvc.Register(ctx, auth.RegisterInput{
				Email:    args[0],
				Password: password,
				Name:     name,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Created %s (%s)", session.User.Email, session.User.ID)))
			if printToken {
				fmt.Fprintln(out, session.Token)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password (or $HOURGLASS_PASSWORD; prompted when empty)")
	cmd.Flags().BoolVar(&printToken, "token", false, "print a bearer token for the new account")

	return cmd
}
