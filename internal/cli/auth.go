package cli

import (
	"context"

	"github.com/spf13/cobra"

	apperrors "tradeverse/internal/errors"
)

// addAuthCommands adds Zerodha session commands.
func addAuthCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Zerodha session management",
		Long:  "Log in to Zerodha Kite Connect for trade imports.",
	}

	cmd.AddCommand(newAuthLoginCmd(app))
	cmd.AddCommand(newAuthStatusCmd(app))
	cmd.AddCommand(newAuthLogoutCmd(app))

	rootCmd.AddCommand(cmd)
}

func newAuthLoginCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to Zerodha",
		Long: `Log in to Zerodha Kite Connect.

Without --request-token, prints the login URL to visit. After logging in,
Zerodha redirects to your app's redirect URL with a request_token parameter;
pass it back with --request-token to complete the session.

Sessions expire at 6 AM IST the next day.`,
		Example: `  tradeverse auth login
  tradeverse auth login --request-token abc123`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Importer == nil {
				output.Error("Zerodha credentials not configured. Add them to credentials.toml.")
				return apperrors.ErrConfigInvalid
			}
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			requestToken, _ := cmd.Flags().GetString("request-token")
			if requestToken == "" {
				output.Bold("Zerodha Login")
				output.Println()
				output.Println("1. Visit the login URL:")
				output.Info("   %s", app.Importer.LoginURL())
				output.Println("2. Log in and copy the request_token from the redirect URL.")
				output.Println("3. Complete the session:")
				output.Dim("   tradeverse auth login --request-token <token>")
				return nil
			}

			if err := app.Importer.CompleteLogin(ctx, requestToken); err != nil {
				return err
			}

			app.Logger.Info().Msg("Zerodha session established")
			output.Success("✓ Logged in to Zerodha")
			return nil
		},
	}

	cmd.Flags().String("request-token", "", "Request token from the login redirect")
	return cmd
}

func newAuthStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session status",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Importer == nil {
				if output.IsJSON() {
					return output.JSON(map[string]bool{"configured": false, "authenticated": false})
				}
				output.Warning("Zerodha credentials not configured.")
				return nil
			}

			authenticated := app.Importer.IsAuthenticated()
			if output.IsJSON() {
				return output.JSON(map[string]bool{"configured": true, "authenticated": authenticated})
			}
			if authenticated {
				output.Success("✓ Authenticated with Zerodha")
			} else {
				output.Warning("Not authenticated. Run 'tradeverse auth login'.")
			}
			return nil
		},
	}
}

func newAuthLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the Zerodha session",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Importer == nil {
				output.Warning("Zerodha credentials not configured.")
				return nil
			}
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := app.Importer.Logout(ctx); err != nil {
				return err
			}
			output.Success("✓ Logged out")
			return nil
		},
	}
}
