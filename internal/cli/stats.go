package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apperrors "tradeverse/internal/errors"
	"tradeverse/internal/metrics"
	"tradeverse/internal/report"
	"tradeverse/internal/store"
)

// addStatsCommands adds performance analysis commands.
func addStatsCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newStatsCmd(app))
	rootCmd.AddCommand(newChartCmd(app))
}

func newStatsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show performance statistics",
		Long: `Compute performance statistics over the journal.

Metrics cover closed trades; open positions are counted but excluded from
P&L aggregates. Recommendations flag weak spots against the configured
thresholds.`,
		Example: `  tradeverse stats
  tradeverse stats --symbol RELIANCE --from 2026-01-01
  tradeverse stats --strategy breakout --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			summary, recs, err := computeStats(cmd, app)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"summary":         summary,
					"recommendations": recs,
				})
			}

			renderSummary(output, summary)
			renderRecommendations(output, recs)
			return nil
		},
	}

	addFilterFlags(cmd)
	return cmd
}

func newChartCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render an HTML performance dashboard",
		Long:  "Render the equity curve, win/loss split, and per-bucket P&L as a standalone HTML page.",
		Example: `  tradeverse chart --out dashboard.html
  tradeverse chart --strategy breakout --out breakout.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			summary, recs, err := computeStats(cmd, app)
			if err != nil {
				return err
			}

			outPath, _ := cmd.Flags().GetString("out")
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()

			if err := report.WriteDashboard(f, summary, recs); err != nil {
				return err
			}

			output.Success("✓ Dashboard written to %s", outPath)
			return nil
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().String("out", "dashboard.html", "Output HTML file")
	return cmd
}

// computeStats loads trades per the filter flags and runs the engine.
func computeStats(cmd *cobra.Command, app *App) (*metrics.Summary, []metrics.Recommendation, error) {
	if app.Store == nil {
		return nil, nil, apperrors.ErrDatabaseError
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	filter, err := tradeFilterFromFlags(cmd)
	if err != nil {
		return nil, nil, err
	}

	trades, err := app.Store.ListTrades(ctx, store.TradeFilter{})
	if err != nil {
		return nil, nil, err
	}

	summary, err := metrics.ComputeSummary(trades, metrics.Filter{
		Symbol:    filter.Symbol,
		Direction: filter.Direction,
		Strategy:  filter.Strategy,
		From:      filter.From,
		To:        filter.To,
	})
	if err != nil {
		return nil, nil, err
	}

	recs := metrics.ComputeRecommendationsWith(summary, app.Config.Thresholds())
	return summary, recs, nil
}

func renderSummary(output *Output, s *metrics.Summary) {
	output.Bold("Performance Summary")
	output.Printf("  Trades:         %d total, %d closed, %d open\n", s.TotalTrades, s.ClosedTrades, s.OpenTrades)
	if s.ClosedTrades == 0 {
		output.Info("No closed trades to analyze.")
		return
	}

	output.Printf("  Wins/Losses:    %d/%d", s.WinCount, s.LossCount)
	if s.BreakEvenCount > 0 {
		output.Printf(" (%d break-even)", s.BreakEvenCount)
	}
	output.Printf("  win rate %.0f%%\n", s.WinRate*100)
	output.Printf("  Net P&L:        %s\n", output.FormatPnL(s.NetPnL))
	output.Printf("  Profit Factor:  %s\n", FormatRatio(s.ProfitFactor))
	output.Printf("  Expectancy:     %s\n", output.FormatPnL(s.Expectancy))
	output.Printf("  Avg Win/Loss:   %s / %s\n", output.FormatPnL(s.AvgWin), output.FormatPnL(s.AvgLoss))
	output.Printf("  Largest W/L:    %s / %s\n", output.FormatPnL(s.LargestWin), output.FormatPnL(s.LargestLoss))
	output.Printf("  Max Drawdown:   %s\n", output.FormatPnL(s.MaxDrawdown))
	output.Printf("  Avg Hold Time:  %s\n", FormatDuration(s.AvgHoldDuration))
	output.Println()

	if len(s.ByStrategy) > 0 {
		output.Bold("By Strategy")
		table := NewTable(output, "Strategy", "Trades", "Win Rate", "Net P&L")
		for _, b := range s.ByStrategy {
			table.AddRow(
				TruncateString(b.Key, 20),
				fmt.Sprintf("%d", b.Trades),
				FormatPercent(b.WinRate*100),
				output.FormatPnL(b.NetPnL),
			)
		}
		table.Render()
		output.Println()
	}

	if len(s.ByWeekday) > 0 {
		output.Bold("By Weekday")
		table := NewTable(output, "Day", "Trades", "Win Rate", "Net P&L")
		for _, b := range s.ByWeekday {
			table.AddRow(
				b.Key,
				fmt.Sprintf("%d", b.Trades),
				FormatPercent(b.WinRate*100),
				output.FormatPnL(b.NetPnL),
			)
		}
		table.Render()
		output.Println()
	}
}

func renderRecommendations(output *Output, recs []metrics.Recommendation) {
	if len(recs) == 0 {
		return
	}
	output.Bold("Recommendations")
	for _, r := range recs {
		output.Printf("  %s %s\n", output.Yellow("▲"), r.Message)
	}
}
