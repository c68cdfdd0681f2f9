package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tradeverse/internal/broker"
	apperrors "tradeverse/internal/errors"
	"tradeverse/internal/logging"
	"tradeverse/internal/store"
)

// addDataCommands adds CSV export/import and broker import commands.
func addDataCommands(rootCmd *cobra.Command, app *App) {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export journal data",
	}
	exportCmd.AddCommand(newExportCSVCmd(app))
	rootCmd.AddCommand(exportCmd)

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import trades into the journal",
	}
	importCmd.AddCommand(newImportCSVCmd(app))
	importCmd.AddCommand(newImportZerodhaCmd(app))
	rootCmd.AddCommand(importCmd)
}

func newExportCSVCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Export trades to CSV",
		Example: `  tradeverse export csv --out trades.csv
  tradeverse export csv --symbol RELIANCE --out reliance.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			filter, err := tradeFilterFromFlags(cmd)
			if err != nil {
				return err
			}

			trades, err := app.Store.ListTrades(ctx, filter)
			if err != nil {
				return err
			}

			outPath, _ := cmd.Flags().GetString("out")
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()

			if err := store.ExportCSV(f, trades); err != nil {
				return err
			}

			output.Success("✓ Exported %d trades to %s", len(trades), outPath)
			return nil
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().String("out", "trades.csv", "Output CSV file")
	return cmd
}

func newImportCSVCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "csv <file>",
		Short: "Import trades from CSV",
		Long: `Import trades from a CSV file.

Every row is validated before anything is saved; a malformed row aborts the
whole import so partial data never reaches the journal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			trades, err := store.ImportCSV(f)
			if err != nil {
				return err
			}

			for i := range trades {
				trades[i].ID = "" // Imported rows get fresh IDs.
				if err := app.Store.SaveTrade(ctx, &trades[i]); err != nil {
					return err
				}
			}

			app.Logger.Info().Int("trades", len(trades)).Str("file", args[0]).Msg("CSV import completed")
			output.Success("✓ Imported %d trades from %s", len(trades), args[0])
			return nil
		},
	}
}

func newImportZerodhaCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "zerodha",
		Short: "Import today's completed Zerodha orders",
		Long: `Pull the day's completed orders from Zerodha and record them as journal
trades tagged with the "zerodha-import" strategy.

Requires an active session; run 'tradeverse auth login' first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}
			if app.Importer == nil {
				output.Error("Zerodha credentials not configured. Add them to credentials.toml.")
				return apperrors.ErrConfigInvalid
			}
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			start := time.Now()
			trades, err := app.Importer.FetchTrades(ctx)
			logging.LogImport(app.Logger, app.Importer.Name(), len(trades), time.Since(start), err)
			if err != nil {
				if apperrors.Is(err, apperrors.ErrNotAuthenticated) {
					output.Error("Not authenticated. Run 'tradeverse auth login' first.")
				}
				return err
			}

			if len(trades) == 0 {
				output.Info("No completed orders to import today.")
				return nil
			}

			for i := range trades {
				if err := app.Store.SaveTrade(ctx, &trades[i]); err != nil {
					return err
				}
			}

			output.Success("✓ Imported %d trades from Zerodha", len(trades))
			output.Dim("Imported trades carry the '%s' strategy.", broker.StrategyZerodhaImport)
			return nil
		},
	}
}
