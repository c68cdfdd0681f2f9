package cli

import (
	"math"
	"testing"
	"time"
)

func TestFormatIndianCurrency(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{0, "₹0.00"},
		{999, "₹999.00"},
		{1000, "₹1,000.00"},
		{100000, "₹1,00,000.00"},
		{10000000, "₹1,00,00,000.00"},
		{1234567.89, "₹12,34,567.89"},
		{-2500, "-₹2,500.00"},
	}

	for _, tc := range cases {
		if got := FormatIndianCurrency(tc.amount); got != tc.want {
			t.Errorf("FormatIndianCurrency(%v) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}

func TestFormatPnL(t *testing.T) {
	if got := FormatPnL(100); got != "+₹100.00" {
		t.Errorf("FormatPnL(100) = %q", got)
	}
	if got := FormatPnL(-100); got != "-₹100.00" {
		t.Errorf("FormatPnL(-100) = %q", got)
	}
	if got := FormatPnL(0); got != "₹0.00" {
		t.Errorf("FormatPnL(0) = %q", got)
	}
}

func TestFormatRatio(t *testing.T) {
	if got := FormatRatio(1.5); got != "1.50" {
		t.Errorf("FormatRatio(1.5) = %q", got)
	}
	if got := FormatRatio(math.Inf(1)); got != "∞" {
		t.Errorf("FormatRatio(+Inf) = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{90 * time.Second, "1m 30s"},
		{3*time.Hour + 15*time.Minute, "3h 15m"},
		{26 * time.Hour, "1d 2h"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("breakout-momentum", 10); got != "breakou..." {
		t.Errorf("TruncateString = %q", got)
	}
	if got := TruncateString("short", 10); got != "short" {
		t.Errorf("TruncateString = %q", got)
	}
}
