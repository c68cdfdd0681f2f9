// Package report renders performance summaries as a standalone HTML dashboard.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"tradeverse/internal/metrics"
)

const (
	colorWin  = "#34d399"
	colorLoss = "#f87171"
	colorFlat = "#9ca3af"

	chartWidth  = "1200px"
	chartHeight = "420px"
)

// WriteDashboard renders the summary and recommendations as a self-contained
// HTML page.
func WriteDashboard(w io.Writer, summary *metrics.Summary, recs []metrics.Recommendation) error {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)

	page.AddCharts(
		equityChart(summary, recs),
		winLossChart(summary),
		strategyChart(summary),
		weekdayChart(summary),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering dashboard: %w", err)
	}
	return nil
}

func equityChart(summary *metrics.Summary, recs []metrics.Recommendation) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  chartWidth,
			Height: chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Equity Curve",
			Subtitle: subtitle(summary, recs),
			Left:     "left",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
	)
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorWin, Width: 2}),
	)

	xAxis := make([]string, len(summary.EquityCurve))
	data := make([]opts.LineData, len(summary.EquityCurve))
	for i, p := range summary.EquityCurve {
		xAxis[i] = p.Timestamp.Format(time.DateOnly)
		data[i] = opts.LineData{Value: p.Cumulative}
	}
	line.SetXAxis(xAxis)
	line.AddSeries("Cumulative P&L", data)
	return line
}

func subtitle(summary *metrics.Summary, recs []metrics.Recommendation) string {
	parts := []string{
		fmt.Sprintf("Net P&L %.2f | Win rate %.0f%% | %d closed trades",
			summary.NetPnL, summary.WinRate*100, summary.ClosedTrades),
	}
	for _, r := range recs {
		parts = append(parts, r.Message)
	}
	return strings.Join(parts, "\n")
}

func winLossChart(summary *metrics.Summary) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  chartWidth,
			Height: chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{Title: "Win / Loss", Left: "left"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	data := []opts.PieData{
		{Name: "Wins", Value: summary.WinCount, ItemStyle: &opts.ItemStyle{Color: colorWin}},
		{Name: "Losses", Value: summary.LossCount, ItemStyle: &opts.ItemStyle{Color: colorLoss}},
	}
	if summary.BreakEvenCount > 0 {
		data = append(data, opts.PieData{Name: "Break-even", Value: summary.BreakEvenCount, ItemStyle: &opts.ItemStyle{Color: colorFlat}})
	}
	pie.AddSeries("Trades", data).
		SetSeriesOptions(
			charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "70%"}}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}"}),
		)
	return pie
}

func strategyChart(summary *metrics.Summary) *charts.Bar {
	return bucketBar("P&L by Strategy", summary.ByStrategy)
}

func weekdayChart(summary *metrics.Summary) *charts.Bar {
	return bucketBar("P&L by Weekday", summary.ByWeekday)
}

func bucketBar(title string, buckets []metrics.BucketStats) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  chartWidth,
			Height: chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Left: "left"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	xAxis := make([]string, len(buckets))
	data := make([]opts.BarData, len(buckets))
	for i, b := range buckets {
		xAxis[i] = b.Key
		color := colorWin
		if b.NetPnL < 0 {
			color = colorLoss
		}
		data[i] = opts.BarData{
			Value:     b.NetPnL,
			ItemStyle: &opts.ItemStyle{Color: color, Opacity: opts.Float(0.8)},
		}
	}
	bar.SetXAxis(xAxis)
	bar.AddSeries("Net P&L", data)
	return bar
}
