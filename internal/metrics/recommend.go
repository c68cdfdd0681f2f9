package metrics

import (
	"fmt"
	"math"
)

// Recommendation is a single improvement suggestion derived from a Summary.
type Recommendation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Rule codes, in priority order.
const (
	RuleLowWinRate    = "low-win-rate"
	RuleProfitFactor  = "profit-factor"
	RuleLossSize      = "loss-size"
	RuleDrawdown      = "drawdown"
	RuleWeakStrategy  = "weak-strategy"
	RuleWeakWeekday   = "weak-weekday"
)

// Thresholds holds the rule cut-offs. The journal's source data never implied
// exact values, so these are configuration with documented defaults rather
// than fixed intent.
type Thresholds struct {
	// MinWinRate fires RuleLowWinRate when the win rate over closed trades
	// falls below it. Default 0.40.
	MinWinRate float64
	// MinProfitFactor fires RuleProfitFactor when losses exist and the profit
	// factor falls below it. Default 1.0.
	MinProfitFactor float64
	// MaxLossToWinRatio fires RuleLossSize when the average loss magnitude
	// exceeds this multiple of the average win. Default 2.0.
	MaxLossToWinRatio float64
	// MaxDrawdownFraction fires RuleDrawdown when the drawdown magnitude
	// exceeds this fraction of gross profit. Default 0.5.
	MaxDrawdownFraction float64
	// MinStrategyWinRate fires RuleWeakStrategy per strategy bucket below it.
	// Default 0.50.
	MinStrategyWinRate float64
	// MinWeekdayWinRate fires RuleWeakWeekday per weekday bucket below it.
	// Default 0.40.
	MinWeekdayWinRate float64
	// MinBucketTrades is the minimum closed trades a strategy or weekday
	// bucket needs before its rules apply. Default 5.
	MinBucketTrades int
}

// DefaultThresholds returns the documented default rule cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinWinRate:          0.40,
		MinProfitFactor:     1.0,
		MaxLossToWinRatio:   2.0,
		MaxDrawdownFraction: 0.5,
		MinStrategyWinRate:  0.50,
		MinWeekdayWinRate:   0.40,
		MinBucketTrades:     5,
	}
}

// ComputeRecommendations evaluates the fixed rule list against the summary
// using the default thresholds. It is a pure function: no side effects, no
// I/O, and a deterministic result order for a fixed summary.
func ComputeRecommendations(s *Summary) []Recommendation {
	return ComputeRecommendationsWith(s, DefaultThresholds())
}

// ComputeRecommendationsWith evaluates the fixed rule list with explicit
// thresholds. Rules fire in priority order; bucket rules iterate the
// summary's sorted bucket slices, so repeated calls yield identical output.
func ComputeRecommendationsWith(s *Summary, th Thresholds) []Recommendation {
	var recs []Recommendation

	if s.ClosedTrades > 0 && s.WinRate < th.MinWinRate {
		recs = append(recs, Recommendation{
			Code: RuleLowWinRate,
			Message: fmt.Sprintf("win rate %.0f%% is below %.0f%%: review entry criteria",
				s.WinRate*100, th.MinWinRate*100),
		})
	}

	if s.LossCount > 0 && !math.IsInf(s.ProfitFactor, 1) && s.ProfitFactor < th.MinProfitFactor {
		recs = append(recs, Recommendation{
			Code: RuleProfitFactor,
			Message: fmt.Sprintf("profit factor %.2f is below %.2f: losses outweigh gains",
				s.ProfitFactor, th.MinProfitFactor),
		})
	}

	if s.WinCount > 0 && s.LossCount > 0 && -s.AvgLoss > th.MaxLossToWinRatio*s.AvgWin {
		recs = append(recs, Recommendation{
			Code: RuleLossSize,
			Message: fmt.Sprintf("average loss %.2f is more than %.1fx the average win %.2f: cut losers earlier",
				-s.AvgLoss, th.MaxLossToWinRatio, s.AvgWin),
		})
	}

	if s.GrossProfit > 0 && -s.MaxDrawdown > th.MaxDrawdownFraction*s.GrossProfit {
		recs = append(recs, Recommendation{
			Code: RuleDrawdown,
			Message: fmt.Sprintf("max drawdown %.2f exceeds %.0f%% of gross profit: reduce position sizing",
				-s.MaxDrawdown, th.MaxDrawdownFraction*100),
		})
	}

	for _, b := range s.ByStrategy {
		if b.Trades >= th.MinBucketTrades && b.WinRate < th.MinStrategyWinRate {
			recs = append(recs, Recommendation{
				Code: RuleWeakStrategy,
				Message: fmt.Sprintf("strategy %q wins only %.0f%% of %d trades: refine this setup",
					b.Key, b.WinRate*100, b.Trades),
			})
		}
	}

	for _, b := range s.ByWeekday {
		if b.Trades >= th.MinBucketTrades && b.WinRate < th.MinWeekdayWinRate {
			recs = append(recs, Recommendation{
				Code: RuleWeakWeekday,
				Message: fmt.Sprintf("win rate on %ss is %.0f%% over %d trades: consider avoiding that day",
					b.Key, b.WinRate*100, b.Trades),
			})
		}
	}

	return recs
}
