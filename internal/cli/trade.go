package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperrors "tradeverse/internal/errors"
	"tradeverse/internal/models"
	"tradeverse/internal/store"
)

const commandTimeout = 30 * time.Second

// addTradeCommands adds journal entry commands.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Trade journal management",
		Long:  "Record, review, and edit journal entries.",
	}

	cmd.AddCommand(newTradeAddCmd(app))
	cmd.AddCommand(newTradeListCmd(app))
	cmd.AddCommand(newTradeShowCmd(app))
	cmd.AddCommand(newTradeEditCmd(app))
	cmd.AddCommand(newTradeCloseCmd(app))
	cmd.AddCommand(newTradeDeleteCmd(app))

	rootCmd.AddCommand(cmd)
}

func newTradeAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new trade",
		Long: `Record a trade in the journal.

Omit --exit-price and --exit-time to record an open position; close it later
with 'tradeverse trade close'.`,
		Example: `  tradeverse trade add --symbol RELIANCE --direction LONG --entry 2440 --qty 10
  tradeverse trade add --symbol NIFTY --direction SHORT --entry 22100 --qty 50 --exit-price 22000 --strategy breakout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			symbol, _ := cmd.Flags().GetString("symbol")
			direction, _ := cmd.Flags().GetString("direction")
			entry, _ := cmd.Flags().GetFloat64("entry")
			qty, _ := cmd.Flags().GetFloat64("qty")
			fees, _ := cmd.Flags().GetFloat64("fees")
			strategy, _ := cmd.Flags().GetString("strategy")
			tags, _ := cmd.Flags().GetString("tags")
			notes, _ := cmd.Flags().GetString("notes")

			trade := &models.Trade{
				Symbol:     strings.ToUpper(symbol),
				Direction:  models.Direction(strings.ToUpper(direction)),
				EntryPrice: entry,
				Quantity:   qty,
				Fees:       fees,
				Strategy:   strategy,
				Notes:      notes,
			}
			if !cmd.Flags().Changed("fees") {
				trade.Fees = app.Config.Journal.DefaultFees
			}
			if tags != "" {
				trade.Tags = strings.Split(tags, ",")
			}

			entryTime := time.Now()
			if s, _ := cmd.Flags().GetString("entry-time"); s != "" {
				t, err := parseTimeFlag(s)
				if err != nil {
					return err
				}
				entryTime = t
			}
			trade.EntryTime = entryTime

			if cmd.Flags().Changed("exit-price") {
				exitPrice, _ := cmd.Flags().GetFloat64("exit-price")
				trade.ExitPrice = &exitPrice

				exitTime := entryTime
				if s, _ := cmd.Flags().GetString("exit-time"); s != "" {
					t, err := parseTimeFlag(s)
					if err != nil {
						return err
					}
					exitTime = t
				}
				trade.ExitTime = &exitTime
			}

			if err := app.Store.SaveTrade(ctx, trade); err != nil {
				return err
			}

			app.Logger.Info().Str("trade_id", trade.ID).Str("symbol", trade.Symbol).Msg("Trade recorded")

			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("✓ Trade recorded: %s", trade.ID)
			if trade.Closed() {
				output.Printf("  P&L: %s\n", output.FormatPnL(trade.RealizedPnL()))
			} else {
				output.Dim("Open position; close with 'tradeverse trade close %s --exit-price <price>'", trade.ID)
			}
			return nil
		},
	}

	cmd.Flags().String("symbol", "", "Trading symbol (required)")
	cmd.Flags().String("direction", "LONG", "Trade direction (LONG or SHORT)")
	cmd.Flags().Float64("entry", 0, "Entry price (required)")
	cmd.Flags().Float64("qty", 0, "Quantity (required)")
	cmd.Flags().Float64("exit-price", 0, "Exit price (omit for open position)")
	cmd.Flags().String("entry-time", "", "Entry time (RFC 3339 or YYYY-MM-DD, default now)")
	cmd.Flags().String("exit-time", "", "Exit time (RFC 3339 or YYYY-MM-DD, default entry time)")
	cmd.Flags().Float64("fees", 0, "Fees and charges (default from config)")
	cmd.Flags().String("strategy", "", "Strategy label")
	cmd.Flags().String("tags", "", "Comma-separated tags")
	cmd.Flags().String("notes", "", "Free-form notes")
	cmd.MarkFlagRequired("symbol")
	cmd.MarkFlagRequired("entry")
	cmd.MarkFlagRequired("qty")

	return cmd
}

func newTradeListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries",
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

			if output.IsJSON() {
				return output.JSON(trades)
			}

			if len(trades) == 0 {
				output.Info("No trades recorded.")
				return nil
			}

			table := NewTable(output, "ID", "Date", "Symbol", "Dir", "Qty", "Entry", "Exit", "P&L", "Strategy")
			for _, t := range trades {
				exit := "-"
				pnl := output.DimText("open")
				if t.Closed() {
					exit = FormatPrice(*t.ExitPrice)
					pnl = output.FormatPnL(t.RealizedPnL())
				}
				table.AddRow(
					TruncateString(t.ID, 10),
					FormatDate(t.EntryTime),
					t.Symbol,
					string(t.Direction),
					FormatPrice(t.Quantity),
					FormatPrice(t.EntryPrice),
					exit,
					pnl,
					TruncateString(t.Strategy, 15),
				)
			}
			table.Render()
			output.Println()
			output.Dim("%d trades", len(trades))
			return nil
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().Bool("open", false, "Only open positions")
	cmd.Flags().Bool("closed", false, "Only closed trades")
	cmd.Flags().Int("limit", 0, "Limit number of results")

	return cmd
}

func newTradeShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <trade-id>",
		Short: "Show a journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			trade, err := app.Store.GetTrade(ctx, args[0])
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trade)
			}

			output.Bold("Trade %s", trade.ID)
			output.Printf("  Symbol:    %s\n", trade.Symbol)
			output.Printf("  Direction: %s\n", trade.Direction)
			output.Printf("  Quantity:  %s\n", FormatPrice(trade.Quantity))
			output.Printf("  Entry:     %s @ %s\n", FormatDateTime(trade.EntryTime), FormatIndianCurrency(trade.EntryPrice))
			if trade.Closed() {
				output.Printf("  Exit:      %s @ %s\n", FormatDateTime(*trade.ExitTime), FormatIndianCurrency(*trade.ExitPrice))
				output.Printf("  Held:      %s\n", FormatDuration(trade.HoldDuration()))
				output.Printf("  Fees:      %s\n", FormatIndianCurrency(trade.Fees))
				output.Printf("  P&L:       %s\n", output.FormatPnL(trade.RealizedPnL()))
			} else {
				output.Printf("  Status:    %s\n", output.Yellow("OPEN"))
			}
			if trade.Strategy != "" {
				output.Printf("  Strategy:  %s\n", trade.Strategy)
			}
			if len(trade.Tags) > 0 {
				output.Printf("  Tags:      %s\n", strings.Join(trade.Tags, ", "))
			}
			if trade.Notes != "" {
				output.Printf("  Notes:     %s\n", trade.Notes)
			}
			return nil
		},
	}
}

func newTradeEditCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <trade-id>",
		Short: "Edit a journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			trade, err := app.Store.GetTrade(ctx, args[0])
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("strategy") {
				trade.Strategy, _ = cmd.Flags().GetString("strategy")
			}
			if cmd.Flags().Changed("tags") {
				tags, _ := cmd.Flags().GetString("tags")
				if tags == "" {
					trade.Tags = nil
				} else {
					trade.Tags = strings.Split(tags, ",")
				}
			}
			if cmd.Flags().Changed("notes") {
				trade.Notes, _ = cmd.Flags().GetString("notes")
			}
			if cmd.Flags().Changed("fees") {
				trade.Fees, _ = cmd.Flags().GetFloat64("fees")
			}

			if err := app.Store.UpdateTrade(ctx, trade); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("✓ Trade updated: %s", trade.ID)
			return nil
		},
	}

	cmd.Flags().String("strategy", "", "Strategy label")
	cmd.Flags().String("tags", "", "Comma-separated tags")
	cmd.Flags().String("notes", "", "Free-form notes")
	cmd.Flags().Float64("fees", 0, "Fees and charges")

	return cmd
}

func newTradeCloseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close <trade-id>",
		Short: "Close an open position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			trade, err := app.Store.GetTrade(ctx, args[0])
			if err != nil {
				return err
			}
			if trade.Closed() {
				output.Warning("Trade %s is already closed.", trade.ID)
				return nil
			}

			exitPrice, _ := cmd.Flags().GetFloat64("exit-price")
			trade.ExitPrice = &exitPrice

			exitTime := time.Now()
			if s, _ := cmd.Flags().GetString("exit-time"); s != "" {
				t, err := parseTimeFlag(s)
				if err != nil {
					return err
				}
				exitTime = t
			}
			trade.ExitTime = &exitTime

			if cmd.Flags().Changed("fees") {
				trade.Fees, _ = cmd.Flags().GetFloat64("fees")
			}

			if err := app.Store.UpdateTrade(ctx, trade); err != nil {
				return err
			}

			app.Logger.Info().Str("trade_id", trade.ID).Float64("pnl", trade.RealizedPnL()).Msg("Trade closed")

			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("✓ Trade closed: %s", trade.ID)
			output.Printf("  P&L: %s\n", output.FormatPnL(trade.RealizedPnL()))
			return nil
		},
	}

	cmd.Flags().Float64("exit-price", 0, "Exit price (required)")
	cmd.Flags().String("exit-time", "", "Exit time (RFC 3339 or YYYY-MM-DD, default now)")
	cmd.Flags().Float64("fees", 0, "Total fees and charges")
	cmd.MarkFlagRequired("exit-price")

	return cmd
}

func newTradeDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trade-id>",
		Short: "Delete a journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := app.Store.DeleteTrade(ctx, args[0]); err != nil {
				return err
			}
			output.Success("✓ Trade deleted: %s", args[0])
			return nil
		},
	}
}

// addFilterFlags adds the common trade filter flags.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("symbol", "", "Filter by symbol")
	cmd.Flags().String("direction", "", "Filter by direction (LONG or SHORT)")
	cmd.Flags().String("strategy", "", "Filter by strategy")
	cmd.Flags().String("from", "", "Filter from date (inclusive, YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Filter to date (inclusive, YYYY-MM-DD)")
}

// tradeFilterFromFlags builds a store filter from the common flags.
func tradeFilterFromFlags(cmd *cobra.Command) (store.TradeFilter, error) {
	filter := store.TradeFilter{}

	symbol, _ := cmd.Flags().GetString("symbol")
	filter.Symbol = strings.ToUpper(symbol)
	direction, _ := cmd.Flags().GetString("direction")
	filter.Direction = models.Direction(strings.ToUpper(direction))
	filter.Strategy, _ = cmd.Flags().GetString("strategy")

	if s, _ := cmd.Flags().GetString("from"); s != "" {
		t, err := parseTimeFlag(s)
		if err != nil {
			return filter, err
		}
		filter.From = t
	}
	if s, _ := cmd.Flags().GetString("to"); s != "" {
		t, err := parseTimeFlag(s)
		if err != nil {
			return filter, err
		}
		// Date-only bounds cover the whole day.
		if len(s) == len(time.DateOnly) {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		filter.To = t
	}

	if open, _ := cmd.Flags().GetBool("open"); open {
		filter.OnlyOpen = true
	}
	if closed, _ := cmd.Flags().GetBool("closed"); closed {
		filter.OnlyClosed = true
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		filter.Limit = limit
	}

	return filter, nil
}

// parseTimeFlag accepts RFC 3339 timestamps or bare dates.
func parseTimeFlag(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("time", s, "must be RFC 3339 or YYYY-MM-DD")
	}
	return t, nil
}
