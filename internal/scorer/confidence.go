package scorer

import (
	"strings"

	"github.com/brightdeck/citation-cli/internal/config"
	"github.com/brightdeck/citation-cli/internal/model"
)

// baseConfidence is the starting confidence before any adjustment, and the
// value an unmatched source keeps.
const baseConfidence = 0.5

// SourceReliabilityOf returns the base reliability for a source label and
// whether any table entry matched. The first entry whose fragment appears
// case-insensitively in the label wins.
func SourceReliabilityOf(source string, table []config.ReliabilityEntry) (float64, bool) {
	lower := strings.ToLower(source)
	for _, entry := range table {
		if strings.Contains(lower, strings.ToLower(entry.Fragment)) {
			return entry.Weight, true
		}
	}
	return baseConfidence, false
}

// Confidence derives a citation's trust in its source: table reliability
// (replacing the 0.5 base when matched), scaled by freshness and data
// quality, clamped to [0,1].
func Confidence(source string, meta model.CitationMetadata, cfg config.ScoringConfig) float64 {
	conf, _ := SourceReliabilityOf(source, cfg.SourceReliability)

	if meta.Freshness != "" {
		if w, ok := cfg.FreshnessWeights[string(meta.Freshness)]; ok {
			conf *= w
		}
	}

	switch meta.DataQuality {
	case model.QualityPrimary:
		conf *= 1.2
	case model.QualityTertiary:
		conf *= 0.7
	}

	return clampFloat(conf, 0, 1)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
