package metrics

import (
	"math"
	"strings"
	"testing"
)

func TestRecommendationsEmptySummary(t *testing.T) {
	recs := ComputeRecommendations(&Summary{})
	if len(recs) != 0 {
		t.Errorf("zero summary must produce no recommendations, got %v", recs)
	}
}

func TestRecommendationLowWinRate(t *testing.T) {
	s := &Summary{ClosedTrades: 10, WinCount: 3, WinRate: 0.3}
	recs := ComputeRecommendations(s)
	if !hasCode(recs, RuleLowWinRate) {
		t.Errorf("win rate 30%% should fire %s, got %v", RuleLowWinRate, recs)
	}

	s.WinRate = 0.40
	if hasCode(ComputeRecommendations(s), RuleLowWinRate) {
		t.Error("win rate at the threshold must not fire")
	}
}

func TestRecommendationProfitFactor(t *testing.T) {
	s := &Summary{
		ClosedTrades: 10, WinCount: 5, LossCount: 5, WinRate: 0.5,
		GrossProfit: 50, GrossLoss: -100, ProfitFactor: 0.5,
	}
	if !hasCode(ComputeRecommendations(s), RuleProfitFactor) {
		t.Error("profit factor 0.5 should fire the rule")
	}

	// No losses means an infinite factor, which never fires.
	s2 := &Summary{ClosedTrades: 5, WinCount: 5, WinRate: 1.0, GrossProfit: 50, ProfitFactor: math.Inf(1)}
	if hasCode(ComputeRecommendations(s2), RuleProfitFactor) {
		t.Error("infinite profit factor must not fire")
	}
}

func TestRecommendationLossSize(t *testing.T) {
	s := &Summary{
		ClosedTrades: 10, WinCount: 5, LossCount: 5, WinRate: 0.5,
		AvgWin: 10, AvgLoss: -25, GrossProfit: 50, GrossLoss: -125, ProfitFactor: 0.4,
	}
	if !hasCode(ComputeRecommendations(s), RuleLossSize) {
		t.Error("avg loss 2.5x avg win should fire the rule")
	}

	s.AvgLoss = -20 // Exactly 2x does not fire.
	if hasCode(ComputeRecommendations(s), RuleLossSize) {
		t.Error("avg loss at the threshold must not fire")
	}
}

func TestRecommendationDrawdown(t *testing.T) {
	s := &Summary{
		ClosedTrades: 10, WinCount: 6, WinRate: 0.6,
		GrossProfit: 100, MaxDrawdown: -60, ProfitFactor: 2,
	}
	if !hasCode(ComputeRecommendations(s), RuleDrawdown) {
		t.Error("drawdown 60% of gross profit should fire the rule")
	}
}

func TestRecommendationBuckets(t *testing.T) {
	s := &Summary{
		ClosedTrades: 20, WinCount: 12, WinRate: 0.6, GrossProfit: 100, ProfitFactor: 2,
		ByStrategy: []BucketStats{
			{Key: "breakout", Trades: 6, Wins: 2, WinRate: 1.0 / 3.0},
			{Key: "thin", Trades: 3, Wins: 0, WinRate: 0}, // Below min sample.
		},
		ByWeekday: []BucketStats{
			{Key: "Monday", Trades: 8, Wins: 2, WinRate: 0.25},
		},
	}

	recs := ComputeRecommendations(s)
	if !hasCode(recs, RuleWeakStrategy) {
		t.Error("breakout strategy at 33% over 6 trades should fire")
	}
	if !hasCode(recs, RuleWeakWeekday) {
		t.Error("Monday at 25% over 8 trades should fire")
	}

	for _, r := range recs {
		if r.Code == RuleWeakStrategy && r.Message == "" {
			t.Error("recommendation messages must not be empty")
		}
		if r.Code == RuleWeakStrategy && strings.Contains(r.Message, "thin") {
			t.Errorf("bucket below the minimum sample fired: %s", r.Message)
		}
	}
}

func TestRecommendationOrderStable(t *testing.T) {
	s := &Summary{
		ClosedTrades: 20, WinCount: 4, LossCount: 16, WinRate: 0.2,
		AvgWin: 5, AvgLoss: -15, GrossProfit: 20, GrossLoss: -240,
		ProfitFactor: 20.0 / 240.0, MaxDrawdown: -200,
		ByStrategy: []BucketStats{
			{Key: "a", Trades: 10, WinRate: 0.1},
			{Key: "b", Trades: 10, WinRate: 0.2},
		},
	}

	first := ComputeRecommendations(s)
	for i := 0; i < 5; i++ {
		again := ComputeRecommendations(s)
		if len(again) != len(first) {
			t.Fatal("recommendation count differs between identical runs")
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatalf("recommendation %d differs between runs", j)
			}
		}
	}

	// Global rules precede bucket rules.
	if first[0].Code != RuleLowWinRate {
		t.Errorf("first recommendation = %s, want %s", first[0].Code, RuleLowWinRate)
	}
}

func TestRecommendationCustomThresholds(t *testing.T) {
	s := &Summary{ClosedTrades: 10, WinCount: 5, WinRate: 0.5}

	th := DefaultThresholds()
	th.MinWinRate = 0.60
	if !hasCode(ComputeRecommendationsWith(s, th), RuleLowWinRate) {
		t.Error("raised threshold should fire at 50% win rate")
	}
	if hasCode(ComputeRecommendations(s), RuleLowWinRate) {
		t.Error("default threshold must not fire at 50% win rate")
	}
}

func hasCode(recs []Recommendation, code string) bool {
	for _, r := range recs {
		if r.Code == code {
			return true
		}
	}
	return false
}
