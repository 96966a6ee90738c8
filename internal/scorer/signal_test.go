package scorer

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brightdeck/citation-cli/internal/model"
)

// fixedNow pins the recency bonus for deterministic assertions.
var fixedNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func TestSignalStrength(t *testing.T) {
	cfg := DefaultScoringConfig()

	tests := []struct {
		name    string
		content string
		status  model.VerificationStatus
		want    int
	}{
		{
			"plain prose baseline",
			"The company makes software for dentists.",
			model.StatusUnverified,
			50,
		},
		{
			"metric keyword",
			"Annual revenue is strong.",
			model.StatusUnverified,
			60,
		},
		{
			"dollar amount",
			"They raised $5M.",
			model.StatusUnverified,
			70,
		},
		{
			"percentage",
			"Churn dropped 12% last quarter.",
			model.StatusUnverified,
			70,
		},
		{
			"multiple",
			"Trading at a 3.1x multiple.",
			model.StatusUnverified,
			70,
		},
		{
			"current year",
			"Opened a second office in 2026.",
			model.StatusUnverified,
			65,
		},
		{
			"previous year",
			"Opened a second office in 2025.",
			model.StatusUnverified,
			65,
		},
		{
			"older year no bonus",
			"Founded back in 2019.",
			model.StatusUnverified,
			50,
		},
		{
			"concrete financial claim",
			"Revenue grew to $50M in 2026",
			model.StatusUnverified,
			95, // 50 + 10 (revenue) + 20 ($50M) + 15 (year)
		},
		{
			"hedged claim suppressed",
			"Valuation might possibly be around $10M, sources say",
			model.StatusUnverified,
			50, // 50 + 10 + 20 - 30
		},
		{
			"verified bonus",
			"Gross margin expanded.",
			model.StatusVerified,
			70,
		},
		{
			"floor at zero",
			"It may or might or could possibly happen, reportedly rumored and unconfirmed, sources say.",
			model.StatusUnverified,
			0, // 50 - 80 hedges, clamped
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SignalStrength(tt.content, tt.status, cfg, fixedNow)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSignalStrength_SpecExample(t *testing.T) {
	cfg := DefaultScoringConfig()
	now := time.Now()

	// 50 base + 10 (revenue) + 20 ($50M) + 15 (current year) = 95.
	content := fmt.Sprintf("Revenue grew to $50M in %d", now.Year())
	got := SignalStrength(content, model.StatusUnverified, cfg, now)
	assert.Equal(t, 95, got)

	hedged := "Valuation might possibly be around $10M, sources say"
	assert.Less(t, SignalStrength(hedged, model.StatusUnverified, cfg, now), got,
		"hedged claim should score below the concrete SEC-style claim")
}

func TestSignalStrength_DistinctKeywordsStack(t *testing.T) {
	cfg := DefaultScoringConfig()

	// revenue + burn rate + runway = +30, $2M = +20 -> clamped math: 100.
	content := "Revenue covers burn rate; runway is 18 months at $2M/quarter."
	got := SignalStrength(content, model.StatusUnverified, cfg, fixedNow)
	assert.Equal(t, 100, got)
}

func TestSignalStrength_Bounds(t *testing.T) {
	cfg := DefaultScoringConfig()

	contents := []string{
		"",
		"Series B funding round at a $900M valuation, revenue up 40% with LTV/CAC of 5x and growing market share in 2026",
		"may might could possibly reportedly rumored unconfirmed sources say",
	}
	for _, content := range contents {
		for _, status := range []model.VerificationStatus{model.StatusUnverified, model.StatusVerified} {
			got := SignalStrength(content, status, cfg, fixedNow)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		}
	}
}

func TestNumericPattern(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"$5M round", true},
		{"$1.2B valuation", true},
		{"$300K MRR", true},
		{"up 42%", true},
		{"a 3.1x multiple", true},
		{"10x growth", true},
		{"no figures here", false},
		{"price is $ pending", false},
	}
	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			assert.Equal(t, tt.want, numericPattern.MatchString(tt.content))
		})
	}
}
