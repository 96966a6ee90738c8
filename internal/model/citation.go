package model

import "time"

// SourceType classifies where a citation's claim was obtained.
type SourceType string

const (
	SourceWeb         SourceType = "web"
	SourceDatabase    SourceType = "database"
	SourceAPI         SourceType = "api"
	SourceCalculation SourceType = "calculation"
	SourceModel       SourceType = "model"
	SourceScraper     SourceType = "scraper"
)

// ValidSourceType reports whether s is one of the known source types.
func ValidSourceType(s SourceType) bool {
	switch s {
	case SourceWeb, SourceDatabase, SourceAPI, SourceCalculation, SourceModel, SourceScraper:
		return true
	}
	return false
}

// VerificationStatus tracks whether a citation has been corroborated.
type VerificationStatus string

const (
	StatusVerified   VerificationStatus = "verified"
	StatusUnverified VerificationStatus = "unverified"
	StatusDisputed   VerificationStatus = "disputed"
)

// DataQuality tiers a source by how close it is to the primary record.
type DataQuality string

const (
	QualityPrimary   DataQuality = "primary"
	QualitySecondary DataQuality = "secondary"
	QualityTertiary  DataQuality = "tertiary"
)

// Freshness buckets how current a citation's underlying data is.
type Freshness string

const (
	FreshnessRealTime   Freshness = "real-time"
	FreshnessRecent     Freshness = "recent"
	FreshnessHistorical Freshness = "historical"
	FreshnessStale      Freshness = "stale"
)

// CitationMetadata carries optional context about the claim.
type CitationMetadata struct {
	Company     string      `json:"company,omitempty"`
	Metric      string      `json:"metric,omitempty"`
	Timeframe   string      `json:"timeframe,omitempty"`
	Methodology string      `json:"methodology,omitempty"`
	DataQuality DataQuality `json:"data_quality,omitempty"`
	Freshness   Freshness   `json:"freshness,omitempty"`
}

// Citation is a single sourced claim with derived trust scores.
// Confidence and SignalStrength are computed at creation and mutate only
// through verification.
type Citation struct {
	ID                 string             `json:"id"`
	Source             string             `json:"source"`
	SourceType         SourceType         `json:"source_type"`
	Content            string             `json:"content"`
	URL                string             `json:"url,omitempty"`
	Timestamp          time.Time          `json:"timestamp"`
	Confidence         float64            `json:"confidence"`
	SignalStrength     int                `json:"signal_strength"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	Metadata           CitationMetadata   `json:"metadata"`
	Lineage            []string           `json:"lineage"`
}

// CitationOptions overrides defaults at citation creation. Zero values mean
// "use the default". Confidence and signal strength are never supplied; they
// are always derived from the claim itself.
type CitationOptions struct {
	SourceType         SourceType
	URL                string
	Timestamp          time.Time
	VerificationStatus VerificationStatus
	Metadata           CitationMetadata
	Lineage            []string
}

// DataPoint is a logical fact aggregated from one or more citations that
// survived the signal/confidence filter.
type DataPoint struct {
	Key                  string     `json:"key"`
	Value                any        `json:"value"`
	Citations            []Citation `json:"citations"`
	AggregatedConfidence float64    `json:"aggregated_confidence"`
	SignalScore          float64    `json:"signal_score"`
	NoiseFiltered        bool       `json:"noise_filtered"`
}

// ExportFilter narrows an export. Zero-valued fields are ignored; set fields
// are AND-combined.
type ExportFilter struct {
	MinSignal     int
	MinConfidence float64
	SourceTypes   []SourceType
}

// Allows reports whether c passes every set filter field.
func (f ExportFilter) Allows(c Citation) bool {
	if c.SignalStrength < f.MinSignal {
		return false
	}
	if c.Confidence < f.MinConfidence {
		return false
	}
	if len(f.SourceTypes) > 0 {
		ok := false
		for _, st := range f.SourceTypes {
			if c.SourceType == st {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
