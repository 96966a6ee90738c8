package registry

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brightdeck/citation-cli/internal/config"
	"github.com/brightdeck/citation-cli/internal/model"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(config.ScoringConfig{}, zap.NewNop())
	r.now = func() time.Time {
		return time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	}
	return r
}

func mustAdd(t *testing.T, r *Registry, source, content string, opts model.CitationOptions) model.Citation {
	t.Helper()
	c, err := r.AddCitation(source, content, opts)
	require.NoError(t, err)
	return c
}

func TestAddCitation_Defaults(t *testing.T) {
	r := newTestRegistry(t)

	c := mustAdd(t, r, "SEC EDGAR", "Revenue grew to $50M in 2026", model.CitationOptions{})

	assert.True(t, strings.HasPrefix(c.ID, "cite-"), "id should carry the cite- prefix")
	assert.Equal(t, model.SourceWeb, c.SourceType)
	assert.Equal(t, model.StatusUnverified, c.VerificationStatus)
	assert.Equal(t, r.now(), c.Timestamp)
	assert.Empty(t, c.Lineage)

	// Source match replaces the base confidence.
	assert.InDelta(t, 0.95, c.Confidence, 1e-9)
	// 50 + 10 (revenue) + 20 ($50M) + 15 (current year).
	assert.Equal(t, 95, c.SignalStrength)

	stored, ok := r.Citation(c.ID)
	require.True(t, ok)
	assert.Equal(t, c, stored)
}

func TestAddCitation_Options(t *testing.T) {
	r := newTestRegistry(t)
	ts := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	c := mustAdd(t, r, "Bloomberg", "Burn rate is $1M per month", model.CitationOptions{
		SourceType:         model.SourceAPI,
		URL:                "https://example.com",
		Timestamp:          ts,
		VerificationStatus: model.StatusVerified,
		Metadata: model.CitationMetadata{
			Freshness:   model.FreshnessRecent,
			DataQuality: model.QualityPrimary,
		},
		Lineage: []string{"seed → research"},
	})

	assert.Equal(t, model.SourceAPI, c.SourceType)
	assert.Equal(t, "https://example.com", c.URL)
	assert.Equal(t, ts, c.Timestamp)
	assert.Equal(t, model.StatusVerified, c.VerificationStatus)
	assert.Equal(t, []string{"seed → research"}, c.Lineage)
	// 0.85 * 0.8 (recent) * 1.2 (primary).
	assert.InDelta(t, 0.816, c.Confidence, 1e-9)
	// 50 + 10 (burn rate) + 20 ($1M) + 20 (verified).
	assert.Equal(t, 100, c.SignalStrength)
}

func TestAddCitation_RejectsEmptyInputs(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.AddCitation("", "some claim", model.CitationOptions{})
	assert.Error(t, err)

	_, err = r.AddCitation("   ", "some claim", model.CitationOptions{})
	assert.Error(t, err)

	_, err = r.AddCitation("SEC EDGAR", "", model.CitationOptions{})
	assert.Error(t, err)

	assert.Equal(t, 0, r.Len())
}

func TestAddCitation_UniqueIDs(t *testing.T) {
	r := newTestRegistry(t)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		c := mustAdd(t, r, "Reuters", fmt.Sprintf("claim %d", i), model.CitationOptions{})
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
}

func TestAddCitation_Invariants(t *testing.T) {
	r := newTestRegistry(t)

	sources := []string{"SEC EDGAR", "Social Media", "Some Forum"}
	contents := []string{
		"Revenue up 40% to $80M in 2026 after Series C funding round",
		"may might could possibly reportedly rumored unconfirmed sources say",
		"plain statement",
	}
	for _, src := range sources {
		for _, content := range contents {
			for _, meta := range []model.CitationMetadata{
				{},
				{Freshness: model.FreshnessStale, DataQuality: model.QualityTertiary},
				{Freshness: model.FreshnessRealTime, DataQuality: model.QualityPrimary},
			} {
				c := mustAdd(t, r, src, content, model.CitationOptions{Metadata: meta})
				assert.GreaterOrEqual(t, c.Confidence, 0.0)
				assert.LessOrEqual(t, c.Confidence, 1.0)
				assert.GreaterOrEqual(t, c.SignalStrength, 0)
				assert.LessOrEqual(t, c.SignalStrength, 100)
			}
		}
	}
}

func TestTrackAcrossSkillBoundary(t *testing.T) {
	r := newTestRegistry(t)
	c := mustAdd(t, r, "PitchBook", "Valuation reached $500M", model.CitationOptions{})

	r.TrackAcrossSkillBoundary(c.ID, "research", "analysis")
	r.TrackAcrossSkillBoundary(c.ID, "analysis", "deck")

	assert.Equal(t, []string{"research → analysis", "analysis → deck"}, r.GetCitationTrace(c.ID))
	assert.Equal(t, []string{c.ID}, r.BoundaryCrossings("research", "analysis"))
	assert.Equal(t, []string{c.ID}, r.BoundaryCrossings("analysis", "deck"))
	assert.Empty(t, r.BoundaryCrossings("deck", "export"))
}

func TestTrackAcrossSkillBoundary_UnknownIDIsNoop(t *testing.T) {
	r := newTestRegistry(t)

	r.TrackAcrossSkillBoundary("cite-0-zzzzzzz", "research", "analysis")

	assert.Empty(t, r.BoundaryCrossings("research", "analysis"))
	assert.Nil(t, r.GetCitationTrace("cite-0-zzzzzzz"))
}

func TestFilterHighSignal(t *testing.T) {
	r := newTestRegistry(t)

	keep1 := model.Citation{ID: "a", SignalStrength: 60, Confidence: 0.5}
	keep2 := model.Citation{ID: "b", SignalStrength: 90, Confidence: 0.9}
	lowSignal := model.Citation{ID: "c", SignalStrength: 59, Confidence: 0.9}
	lowConfidence := model.Citation{ID: "d", SignalStrength: 90, Confidence: 0.49}

	in := []model.Citation{keep1, lowSignal, keep2, lowConfidence}
	kept := r.FilterHighSignal(in)

	assert.Equal(t, []model.Citation{keep1, keep2}, kept, "thresholds are inclusive, order preserved")

	// Idempotent: filtering an already-filtered set returns the same set.
	assert.Equal(t, kept, r.FilterHighSignal(kept))
}

func TestAggregateDataPoint(t *testing.T) {
	r := newTestRegistry(t)

	strong1 := model.Citation{ID: "a", SignalStrength: 80, Confidence: 0.9}
	strong2 := model.Citation{ID: "b", SignalStrength: 60, Confidence: 0.7}
	noise := model.Citation{ID: "c", SignalStrength: 20, Confidence: 0.2}

	dp := r.AggregateDataPoint("acme/arr", "$50M", []model.Citation{strong1, noise, strong2})

	assert.Equal(t, "acme/arr", dp.Key)
	assert.Equal(t, "$50M", dp.Value)
	assert.Len(t, dp.Citations, 2)
	assert.InDelta(t, 0.8, dp.AggregatedConfidence, 1e-9)
	assert.InDelta(t, 70.0, dp.SignalScore, 1e-9)
	assert.True(t, dp.NoiseFiltered)

	stored, ok := r.DataPoint("acme/arr")
	require.True(t, ok)
	assert.Equal(t, dp, stored)
}

func TestAggregateDataPoint_EmptyInput(t *testing.T) {
	r := newTestRegistry(t)

	dp := r.AggregateDataPoint("empty", nil, nil)

	assert.Zero(t, dp.AggregatedConfidence)
	assert.Zero(t, dp.SignalScore)
	assert.False(t, dp.NoiseFiltered)
	assert.Empty(t, dp.Citations)
}

func TestAggregateDataPoint_OverwritesKey(t *testing.T) {
	r := newTestRegistry(t)

	first := model.Citation{ID: "a", SignalStrength: 80, Confidence: 0.9}
	r.AggregateDataPoint("k", 1, []model.Citation{first})

	second := model.Citation{ID: "b", SignalStrength: 70, Confidence: 0.6}
	dp := r.AggregateDataPoint("k", 2, []model.Citation{second})

	stored, ok := r.DataPoint("k")
	require.True(t, ok)
	assert.Equal(t, dp, stored)
	assert.Equal(t, 2, stored.Value)
	assert.Len(t, stored.Citations, 1)
	assert.Equal(t, "b", stored.Citations[0].ID)
}

func TestVerifyCitation_ReplacesStoredEntry(t *testing.T) {
	r := newTestRegistry(t)
	c := mustAdd(t, r, "Reuters", "Acme acquired Beta Corp for $120M in an all-cash deal", model.CitationOptions{})

	confirm := model.Citation{Content: "Confirmed: acme acquired beta corp for $120m in an all-cash deal, sources close to the deal said"}
	r.VerifyCitation(c.ID, []model.Citation{confirm, confirm})

	after, ok := r.Citation(c.ID)
	require.True(t, ok)
	assert.Equal(t, model.StatusVerified, after.VerificationStatus)
	assert.Greater(t, after.Confidence, c.Confidence)
	assert.Greater(t, after.SignalStrength, c.SignalStrength)
	assert.LessOrEqual(t, after.Confidence, 1.0)
	assert.LessOrEqual(t, after.SignalStrength, 100)
}

func TestVerifyCitation_Disputes(t *testing.T) {
	r := newTestRegistry(t)
	c := mustAdd(t, r, "Reuters", "Acme acquired Beta Corp for $120M in an all-cash deal", model.CitationOptions{})

	unrelated := []model.Citation{
		{Content: "Beta Corp announced a partnership"},
		{Content: "Acme hired a new CFO"},
		{Content: "Market conditions remain soft"},
	}
	r.VerifyCitation(c.ID, unrelated)

	after, ok := r.Citation(c.ID)
	require.True(t, ok)
	assert.Equal(t, model.StatusDisputed, after.VerificationStatus)
	assert.Less(t, after.Confidence, c.Confidence)
	assert.Less(t, after.SignalStrength, c.SignalStrength)
	assert.GreaterOrEqual(t, after.Confidence, 0.0)
	assert.GreaterOrEqual(t, after.SignalStrength, 0)
}

func TestVerifyCitation_UnknownIDIsNoop(t *testing.T) {
	r := newTestRegistry(t)
	r.VerifyCitation("cite-0-zzzzzzz", nil) // must not panic
}

func TestExportCitations_SortsBySignalTimesConfidence(t *testing.T) {
	r := newTestRegistry(t)

	// Distinct products: 0.95*95=90.25, 0.85*60=51, 0.5*50=25.
	top := mustAdd(t, r, "SEC EDGAR", "Revenue grew to $50M in 2026", model.CitationOptions{})
	low := mustAdd(t, r, "Quarterly Memo", "things are fine", model.CitationOptions{})
	mid := mustAdd(t, r, "Bloomberg", "Runway extended to 24 months", model.CitationOptions{})

	got := r.ExportCitations(model.ExportFilter{})
	require.Len(t, got, 3)
	assert.Equal(t, top.ID, got[0].ID)
	assert.Equal(t, mid.ID, got[1].ID)
	assert.Equal(t, low.ID, got[2].ID)

	for i := 1; i < len(got); i++ {
		prev := float64(got[i-1].SignalStrength) * got[i-1].Confidence
		cur := float64(got[i].SignalStrength) * got[i].Confidence
		assert.GreaterOrEqual(t, prev, cur)
	}
}

func TestExportCitations_TiesKeepInsertionOrder(t *testing.T) {
	r := newTestRegistry(t)

	a := mustAdd(t, r, "Quarterly Memo", "first plain claim", model.CitationOptions{})
	b := mustAdd(t, r, "Weekly Memo", "second plain claim", model.CitationOptions{})

	got := r.ExportCitations(model.ExportFilter{})
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)
}

func TestExportCitations_Filters(t *testing.T) {
	r := newTestRegistry(t)

	strong := mustAdd(t, r, "SEC EDGAR", "Revenue grew to $50M in 2026", model.CitationOptions{
		SourceType: model.SourceDatabase,
	})
	mustAdd(t, r, "Some Forum", "could possibly be true", model.CitationOptions{})

	got := r.ExportCitations(model.ExportFilter{
		MinSignal:     60,
		MinConfidence: 0.5,
		SourceTypes:   []model.SourceType{model.SourceDatabase},
	})
	require.Len(t, got, 1)
	assert.Equal(t, strong.ID, got[0].ID)

	// Source-type allow-list alone.
	got = r.ExportCitations(model.ExportFilter{SourceTypes: []model.SourceType{model.SourceScraper}})
	assert.Empty(t, got)
}

func TestTrustScore(t *testing.T) {
	r := newTestRegistry(t)

	assert.Equal(t, 0, r.TrustScore("missing"), "unknown key scores 0")

	citations := []model.Citation{
		{ID: "a", SignalStrength: 80, Confidence: 0.9},
		{ID: "b", SignalStrength: 70, Confidence: 0.7},
		{ID: "c", SignalStrength: 90, Confidence: 0.8},
	}
	r.AggregateDataPoint("k", nil, citations)

	// mean conf 0.8, mean signal 80, count bonus min(1, 3/3)=1:
	// round(100 * (0.4*0.8 + 0.4*0.8 + 0.2*1)) = 84.
	assert.Equal(t, 84, r.TrustScore("k"))

	// Fewer citations earn a partial count bonus.
	r.AggregateDataPoint("partial", nil, citations[:1])
	// round(100 * (0.4*0.9 + 0.4*0.8 + 0.2*(1/3))) = round(74.67) = 75.
	assert.Equal(t, 75, r.TrustScore("partial"))
}

func TestTrustScore_EmptyDataPoint(t *testing.T) {
	r := newTestRegistry(t)
	r.AggregateDataPoint("empty", nil, nil)
	assert.Equal(t, 0, r.TrustScore("empty"))
}

func TestPruneNoisy(t *testing.T) {
	r := newTestRegistry(t)

	kept := mustAdd(t, r, "SEC EDGAR", "Revenue grew to $50M in 2026", model.CitationOptions{})
	lowSignal := mustAdd(t, r, "Bloomberg", "may might could possibly reportedly rumored unconfirmed", model.CitationOptions{})
	lowConfidence := mustAdd(t, r, "Social Media", "Revenue grew to $50M in 2026", model.CitationOptions{
		Metadata: model.CitationMetadata{Freshness: model.FreshnessStale},
	})

	require.Less(t, lowSignal.SignalStrength, 30)
	require.Less(t, lowConfidence.Confidence, 0.3)

	removed := r.PruneNoisy()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, r.Len())

	_, ok := r.Citation(kept.ID)
	assert.True(t, ok, "high-signal citation survives untouched")
	_, ok = r.Citation(lowSignal.ID)
	assert.False(t, ok)
	_, ok = r.Citation(lowConfidence.ID)
	assert.False(t, ok)

	// Second prune removes nothing.
	assert.Equal(t, 0, r.PruneNoisy())

	// Export no longer sees pruned citations.
	got := r.ExportCitations(model.ExportFilter{})
	require.Len(t, got, 1)
	assert.Equal(t, kept.ID, got[0].ID)
}

func TestPruneNoisy_DataPointsKeepStaleCopies(t *testing.T) {
	r := newTestRegistry(t)

	c := mustAdd(t, r, "Social Media", "could possibly happen, reportedly", model.CitationOptions{
		Metadata: model.CitationMetadata{Freshness: model.FreshnessStale},
	})
	r.AggregateDataPoint("k", nil, []model.Citation{c})
	r.PruneNoisy()

	// Aggregations are not recomputed after a prune.
	_, ok := r.DataPoint("k")
	assert.True(t, ok)
}
