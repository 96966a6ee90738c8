// Package scorer implements the signal/noise heuristics for citations:
// source-reliability confidence, content signal strength, formatting,
// and verification-by-corroboration.
package scorer

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/brightdeck/citation-cli/internal/config"
)

// DefaultScoringConfig returns a config.ScoringConfig with the standard
// thresholds and heuristic tables.
func DefaultScoringConfig() config.ScoringConfig {
	return config.ScoringConfig{
		// Thresholds.
		SignalThreshold:     60,
		ConfidenceThreshold: 0.5,
		PruneMinSignal:      30,
		PruneMinConfidence:  0.3,

		// Freshness multipliers applied to confidence.
		FreshnessWeights: map[string]float64{
			"real-time":  1.0,
			"recent":     0.8,
			"historical": 0.5,
			"stale":      0.2,
		},

		// Base reliability by source-name fragment. Matched case-insensitively
		// as a substring of the source label; first match wins, so order
		// matters.
		//
		// The "Unknown" row is unreachable through substring matching (real
		// source labels do not contain the literal word), so unmatched sources
		// keep the 0.5 base instead of 0.3. Kept as-is for table completeness.
		SourceReliability: []config.ReliabilityEntry{
			{Fragment: "SEC EDGAR", Weight: 0.95},
			{Fragment: "SEC Filing", Weight: 0.95},
			{Fragment: "Bloomberg", Weight: 0.85},
			{Fragment: "PitchBook", Weight: 0.85},
			{Fragment: "Crunchbase", Weight: 0.8},
			{Fragment: "Reuters", Weight: 0.8},
			{Fragment: "Analyst Report", Weight: 0.75},
			{Fragment: "Company Website", Weight: 0.7},
			{Fragment: "Press Release", Weight: 0.6},
			{Fragment: "News", Weight: 0.55},
			{Fragment: "Blog", Weight: 0.45},
			{Fragment: "Social Media", Weight: 0.4},
			{Fragment: "Unknown", Weight: 0.3},
		},

		// Financial metric keywords, +10 signal each.
		MetricKeywords: []string{
			"valuation", "revenue", "growth rate", "burn rate", "runway",
			"cac", "ltv", "market share", "series", "funding round",
		},

		// Hedging language, -10 signal each.
		HedgeWords: []string{
			"may", "might", "could", "possibly", "reportedly",
			"sources say", "rumored", "unconfirmed",
		},
	}
}

// Resolve fills any empty heuristic tables and zero thresholds in c from the
// defaults. Lets a partial config file tune individual values.
//
// Zero means unset: a threshold explicitly set to 0 in a config file is
// indistinguishable from an omitted one and resolves to the default. To
// disable a floor in practice, set it to a negligible value such as 0.001
// or 1 rather than 0.
func Resolve(c config.ScoringConfig) config.ScoringConfig {
	def := DefaultScoringConfig()
	if len(c.FreshnessWeights) == 0 {
		c.FreshnessWeights = def.FreshnessWeights
	}
	if len(c.SourceReliability) == 0 {
		c.SourceReliability = def.SourceReliability
	}
	if len(c.MetricKeywords) == 0 {
		c.MetricKeywords = def.MetricKeywords
	}
	if len(c.HedgeWords) == 0 {
		c.HedgeWords = def.HedgeWords
	}
	if c.SignalThreshold == 0 {
		c.SignalThreshold = def.SignalThreshold
	}
	if c.ConfidenceThreshold == 0 {
		c.ConfidenceThreshold = def.ConfidenceThreshold
	}
	if c.PruneMinSignal == 0 {
		c.PruneMinSignal = def.PruneMinSignal
	}
	if c.PruneMinConfidence == 0 {
		c.PruneMinConfidence = def.PruneMinConfidence
	}
	return c
}

// ValidateConfig checks that a ScoringConfig is internally consistent.
func ValidateConfig(c config.ScoringConfig) error {
	var errs []string

	if c.SignalThreshold < 0 || c.SignalThreshold > 100 {
		errs = append(errs, "signal_threshold must be between 0 and 100")
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		errs = append(errs, "confidence_threshold must be between 0 and 1")
	}
	if c.PruneMinSignal < 0 || c.PruneMinSignal > 100 {
		errs = append(errs, "prune_min_signal must be between 0 and 100")
	}
	if c.PruneMinConfidence < 0 || c.PruneMinConfidence > 1 {
		errs = append(errs, "prune_min_confidence must be between 0 and 1")
	}

	for freshness, w := range c.FreshnessWeights {
		if w < 0 || w > 1 {
			errs = append(errs, fmt.Sprintf("freshness weight %q must be between 0 and 1", freshness))
		}
	}

	for _, entry := range c.SourceReliability {
		if entry.Fragment == "" {
			errs = append(errs, "source reliability fragment must not be empty")
		}
		if entry.Weight < 0 || entry.Weight > 1 {
			errs = append(errs, fmt.Sprintf("source reliability weight for %q must be between 0 and 1", entry.Fragment))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
