package scorer

import (
	"strings"

	"github.com/brightdeck/citation-cli/internal/model"
)

// confirmPrefixLen is how much of a citation's content an additional source
// must contain to count as confirmation.
const confirmPrefixLen = 50

// contentConfirms reports whether candidate corroborates original. It is a
// literal substring check on the first 50 characters of the original content,
// not semantic similarity. Near-identical restatements will not match; that
// is a known limitation of the heuristic, kept deliberately crude.
func contentConfirms(candidate, original model.Citation) bool {
	prefix := strings.ToLower(original.Content)
	// Rune slice so a multibyte rune at the boundary is never split.
	if runes := []rune(prefix); len(runes) > confirmPrefixLen {
		prefix = string(runes[:confirmPrefixLen])
	}
	return strings.Contains(strings.ToLower(candidate.Content), prefix)
}

// Verify corroborates a citation against additional sources and returns the
// adjusted citation. The input is not mutated.
//
// Two or more confirmations mark the citation verified and boost both scores.
// Zero confirmations out of more than two additional sources mark it disputed
// and cut both scores. Anything in between leaves it unchanged.
func Verify(c model.Citation, additional []model.Citation) model.Citation {
	confirmations := 0
	for _, other := range additional {
		if contentConfirms(other, c) {
			confirmations++
		}
	}

	switch {
	case confirmations >= 2:
		c.VerificationStatus = model.StatusVerified
		c.Confidence = clampFloat(c.Confidence*1.2, 0, 1)
		c.SignalStrength = clampInt(c.SignalStrength+10, 0, 100)
	case confirmations == 0 && len(additional) > 2:
		c.VerificationStatus = model.StatusDisputed
		c.Confidence = clampFloat(c.Confidence*0.7, 0, 1)
		c.SignalStrength = clampInt(c.SignalStrength-20, 0, 100)
	}

	return c
}
