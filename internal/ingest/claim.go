// Package ingest reads claim files (JSON, CSV, XLSX) into the shapes the
// CLI feeds to the registry.
package ingest

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/brightdeck/citation-cli/internal/model"
)

// Claim is one row of a claim file: a sourced assertion plus optional
// metadata and a grouping key for aggregation.
type Claim struct {
	Key          string `json:"key,omitempty"`
	Source       string `json:"source"`
	Content      string `json:"content"`
	URL          string `json:"url,omitempty"`
	SourceType   string `json:"source_type,omitempty"`
	Timestamp    string `json:"timestamp,omitempty"`
	Verification string `json:"verification_status,omitempty"`
	Value        string `json:"value,omitempty"`

	Company     string `json:"company,omitempty"`
	Metric      string `json:"metric,omitempty"`
	Timeframe   string `json:"timeframe,omitempty"`
	Methodology string `json:"methodology,omitempty"`
	DataQuality string `json:"data_quality,omitempty"`
	Freshness   string `json:"freshness,omitempty"`
}

// Options converts the claim's optional fields into citation options.
func (c Claim) Options() (model.CitationOptions, error) {
	opts := model.CitationOptions{
		SourceType:         model.SourceType(c.SourceType),
		URL:                c.URL,
		VerificationStatus: model.VerificationStatus(c.Verification),
		Metadata: model.CitationMetadata{
			Company:     c.Company,
			Metric:      c.Metric,
			Timeframe:   c.Timeframe,
			Methodology: c.Methodology,
			DataQuality: model.DataQuality(c.DataQuality),
			Freshness:   model.Freshness(c.Freshness),
		},
	}

	if c.SourceType != "" && !model.ValidSourceType(opts.SourceType) {
		return opts, eris.Errorf("ingest: unknown source type %q", c.SourceType)
	}

	if c.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, c.Timestamp)
		if err != nil {
			return opts, eris.Wrapf(err, "ingest: parse timestamp %q", c.Timestamp)
		}
		opts.Timestamp = ts
	}

	return opts, nil
}
