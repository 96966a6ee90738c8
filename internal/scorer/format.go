package scorer

import (
	"fmt"
	"math"

	"github.com/brightdeck/citation-cli/internal/model"
)

// FormatCitation renders a citation as a one-line display string:
//
//	SEC EDGAR (Mar 4, 2026) | Trust: 95% | Signal: 100 ✓
//
// The source becomes a markdown link when a URL is present. Verified
// citations get a trailing check mark, disputed ones a warning sign.
func FormatCitation(c model.Citation) string {
	source := c.Source
	if c.URL != "" {
		source = fmt.Sprintf("[%s](%s)", c.Source, c.URL)
	}

	s := fmt.Sprintf("%s (%s) | Trust: %d%% | Signal: %d",
		source,
		c.Timestamp.Format("Jan 2, 2006"),
		int(math.Round(c.Confidence*100)),
		c.SignalStrength,
	)

	switch c.VerificationStatus {
	case model.StatusVerified:
		s += " ✓"
	case model.StatusDisputed:
		s += " ⚠️"
	}

	return s
}
