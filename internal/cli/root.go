// Package cli provides the command-line interface for the trade journal.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tradeverse/internal/broker"
	"tradeverse/internal/config"
	"tradeverse/internal/logging"
	"tradeverse/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-08-25"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Store    store.TradeStore
	Importer *broker.ZerodhaSource
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Credentials.Zerodha.APIKey != "" {
		app.Importer = broker.NewZerodhaSource(broker.ZerodhaConfig{
			APIKey:    cfg.Credentials.Zerodha.APIKey,
			APISecret: cfg.Credentials.Zerodha.APISecret,
		})
		logger.Debug().Msg("Zerodha import source initialized")
	}

	tradeStore, err := store.NewSQLiteStore(cfg.Journal.DBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to open journal database, some commands may be unavailable")
	} else {
		app.Store = tradeStore
		logger.Debug().Str("path", cfg.Journal.DBPath).Msg("Journal store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "tradeverse",
		Short: "Tradeverse - trade journal and performance analytics CLI",
		Long: `Tradeverse is a trade journaling CLI.

Record trades manually or import them from Zerodha, then review performance
metrics, rule-based recommendations, and HTML dashboards.

Use 'tradeverse help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/tradeverse)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)
	addStatsCommands(rootCmd, app)
	addDataCommands(rootCmd, app)
	addAuthCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Tradeverse v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Journal")
	output.Printf("  Database:     %s\n", cfg.Journal.DBPath)
	output.Printf("  Default Fees: %s\n", FormatIndianCurrency(cfg.Journal.DefaultFees))
	output.Println()

	th := cfg.Thresholds()
	output.Bold("Recommendation Thresholds")
	output.Printf("  Min Win Rate:          %.0f%%\n", th.MinWinRate*100)
	output.Printf("  Min Profit Factor:     %.2f\n", th.MinProfitFactor)
	output.Printf("  Max Loss/Win Ratio:    %.2f\n", th.MaxLossToWinRatio)
	output.Printf("  Max Drawdown Fraction: %.0f%%\n", th.MaxDrawdownFraction*100)
	output.Printf("  Min Strategy Win Rate: %.0f%%\n", th.MinStrategyWinRate*100)
	output.Printf("  Min Weekday Win Rate:  %.0f%%\n", th.MinWeekdayWinRate*100)
	output.Printf("  Min Bucket Trades:     %d\n", th.MinBucketTrades)

	return nil
}
