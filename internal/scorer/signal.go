package scorer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/brightdeck/citation-cli/internal/config"
	"github.com/brightdeck/citation-cli/internal/model"
)

// numericPattern matches concrete financial figures: a dollar amount with an
// optional K/M/B suffix, a percentage, or an "Nx" multiple (e.g. $5M, 42%, 3.1x).
var numericPattern = regexp.MustCompile(`(?i)\$\d+(?:\.\d+)?\s?[kmb]?|\d+(?:\.\d+)?\s?%|\d+(?:\.\d+)?x`)

// SignalStrength scores how specific and valuable a claim's content is, on a
// 0-100 scale. Deterministic given the inputs; now pins the recency bonus.
func SignalStrength(content string, status model.VerificationStatus, cfg config.ScoringConfig, now time.Time) int {
	lower := strings.ToLower(content)
	score := 50

	// Financial metric mentions.
	for _, kw := range cfg.MetricKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			score += 10
		}
	}

	// Concrete figures beat prose.
	if numericPattern.MatchString(content) {
		score += 20
	}

	// Recency: current or immediately preceding year as a 4-digit numeral.
	year := now.Year()
	if strings.Contains(content, strconv.Itoa(year)) || strings.Contains(content, strconv.Itoa(year-1)) {
		score += 15
	}

	// Hedging language suppresses.
	for _, hedge := range cfg.HedgeWords {
		if strings.Contains(lower, hedge) {
			score -= 10
		}
	}

	if status == model.StatusVerified {
		score += 20
	}

	return clampInt(score, 0, 100)
}
