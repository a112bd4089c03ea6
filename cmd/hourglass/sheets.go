package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/hourglass/internal/cli"
	"github.com/Veraticus/hourglass/internal/common"
	"github.com/Veraticus/hourglass/internal/config"
	"github.com/Veraticus/hourglass/internal/sheets"
)

func sheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Google Sheets integration",
	}
	cmd.AddCommand(sheetsAuthCmd())
	return cmd
}

func sheetsAuthCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize hourglass to write to Google Sheets",
		Long: `Run the OAuth2 consent flow in the browser and save the refresh token to
sheets.token_file. Requires sheets.client_id and sheets.client_secret.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := viper.GetViper()
			oauthCfg := sheets.OAuth2Config{
				ClientID:     v.GetString("sheets.client_id"),
				ClientSecret: v.GetString("sheets.client_secret"),
				TokenFile:    config.ExpandPath(sheets.DefaultConfig().TokenFile),
				CallbackAddr: addr,
			}
			if s := v.GetString("sheets.token_file"); s != "" {
				oauthCfg.TokenFile = config.ExpandPath(s)
			}
			if oauthCfg.ClientID == "" || oauthCfg.ClientSecret == "" {
				return fmt.Errorf("%w: sheets.client_id and sheets.client_secret", common.ErrMissingConfig)
			}

			if _, err := sheets.GetOrCreateToken(cmd.Context(), oauthCfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Google Sheets authorized; token saved to "+oauthCfg.TokenFile))
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "callback-addr", "localhost:8080", "address for the OAuth2 redirect listener")
	return cmd
}
