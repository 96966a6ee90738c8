// Package registry owns citation storage and orchestrates scoring,
// lineage tracking, aggregation, verification, export, and pruning.
package registry

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/brightdeck/citation-cli/internal/config"
	"github.com/brightdeck/citation-cli/internal/model"
	"github.com/brightdeck/citation-cli/internal/scorer"
)

// Registry is the citation store and scorer. Construct one per process (or
// per test) with NewRegistry; there is no package-level instance.
//
// All methods are safe for concurrent use. Missing ids and keys degrade to
// no-ops or zero values rather than errors; callers that need to distinguish
// "never existed" from "nothing qualified" should use the accessors.
type Registry struct {
	mu sync.RWMutex

	cfg config.ScoringConfig
	log *zap.Logger
	now func() time.Time

	citations  map[string]*model.Citation
	order      []string // insertion order of citation ids, export tiebreak
	dataPoints map[string]*model.DataPoint
	boundaries map[string][]string // "from->to" -> citation ids that crossed
}

// NewRegistry creates an empty registry. Empty tables in cfg are filled from
// the scorer defaults. A nil logger falls back to the global zap logger.
func NewRegistry(cfg config.ScoringConfig, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.L()
	}
	return &Registry{
		cfg:        scorer.Resolve(cfg),
		log:        logger,
		now:        time.Now,
		citations:  make(map[string]*model.Citation),
		dataPoints: make(map[string]*model.DataPoint),
		boundaries: make(map[string][]string),
	}
}

// Config returns the scoring configuration the registry was built with.
func (r *Registry) Config() config.ScoringConfig {
	return r.cfg
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// newID builds a citation id: epoch millis plus a 7-char random base36
// suffix. Uniqueness is probabilistic; collisions are not checked.
func (r *Registry) newID() string {
	var b strings.Builder
	for i := 0; i < 7; i++ {
		b.WriteByte(base36[rand.IntN(len(base36))])
	}
	return fmt.Sprintf("cite-%d-%s", r.now().UnixMilli(), b.String())
}

// AddCitation scores and stores a new citation for a sourced claim.
// Source and content are required; everything else defaults via opts.
func (r *Registry) AddCitation(source, content string, opts model.CitationOptions) (model.Citation, error) {
	if strings.TrimSpace(source) == "" {
		return model.Citation{}, eris.New("registry: citation source must not be empty")
	}
	if strings.TrimSpace(content) == "" {
		return model.Citation{}, eris.New("registry: citation content must not be empty")
	}

	sourceType := opts.SourceType
	if sourceType == "" {
		sourceType = model.SourceWeb
	}
	status := opts.VerificationStatus
	if status == "" {
		status = model.StatusUnverified
	}
	timestamp := opts.Timestamp
	if timestamp.IsZero() {
		timestamp = r.now()
	}
	lineage := make([]string, len(opts.Lineage))
	copy(lineage, opts.Lineage)

	c := model.Citation{
		ID:                 r.newID(),
		Source:             source,
		SourceType:         sourceType,
		Content:            content,
		URL:                opts.URL,
		Timestamp:          timestamp,
		Confidence:         scorer.Confidence(source, opts.Metadata, r.cfg),
		SignalStrength:     scorer.SignalStrength(content, status, r.cfg, r.now()),
		VerificationStatus: status,
		Metadata:           opts.Metadata,
		Lineage:            lineage,
	}

	r.mu.Lock()
	r.citations[c.ID] = &c
	r.order = append(r.order, c.ID)
	r.mu.Unlock()

	if c.SignalStrength > 80 {
		r.log.Debug("registry: high-signal citation",
			zap.String("id", c.ID),
			zap.String("source", c.Source),
			zap.Int("signal", c.SignalStrength),
			zap.Float64("confidence", c.Confidence),
		)
	}

	return c, nil
}

// TrackAcrossSkillBoundary records that a citation's value crossed from one
// processing stage to another. Unknown ids are silently ignored.
func (r *Registry) TrackAcrossSkillBoundary(citationID, fromStage, toStage string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.citations[citationID]
	if !ok {
		return
	}

	c.Lineage = append(c.Lineage, fmt.Sprintf("%s → %s", fromStage, toStage))

	key := boundaryKey(fromStage, toStage)
	r.boundaries[key] = append(r.boundaries[key], citationID)
}

func boundaryKey(fromStage, toStage string) string {
	return fromStage + "->" + toStage
}

// GetCitationTrace returns a copy of a citation's lineage. Unknown ids
// return an empty trace.
func (r *Registry) GetCitationTrace(citationID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.citations[citationID]
	if !ok {
		return nil
	}
	trace := make([]string, len(c.Lineage))
	copy(trace, c.Lineage)
	return trace
}

// BoundaryCrossings returns the ids of citations that crossed the given
// stage boundary, in crossing order. Inspection only; not used for scoring.
func (r *Registry) BoundaryCrossings(fromStage, toStage string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.boundaries[boundaryKey(fromStage, toStage)]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// FilterHighSignal keeps citations at or above both the signal and
// confidence thresholds, preserving order. Idempotent.
func (r *Registry) FilterHighSignal(citations []model.Citation) []model.Citation {
	kept := make([]model.Citation, 0, len(citations))
	for _, c := range citations {
		if c.SignalStrength >= r.cfg.SignalThreshold && c.Confidence >= r.cfg.ConfidenceThreshold {
			kept = append(kept, c)
		}
	}
	return kept
}

// AggregateDataPoint filters the given citations for signal, averages the
// survivors' scores, and stores the result under key, overwriting any
// previous aggregation for that key.
func (r *Registry) AggregateDataPoint(key string, value any, citations []model.Citation) model.DataPoint {
	kept := r.FilterHighSignal(citations)

	dp := model.DataPoint{
		Key:           key,
		Value:         value,
		Citations:     kept,
		NoiseFiltered: len(kept) < len(citations),
	}
	if len(kept) > 0 {
		var confSum, sigSum float64
		for _, c := range kept {
			confSum += c.Confidence
			sigSum += float64(c.SignalStrength)
		}
		dp.AggregatedConfidence = confSum / float64(len(kept))
		dp.SignalScore = sigSum / float64(len(kept))
	}

	r.mu.Lock()
	r.dataPoints[key] = &dp
	r.mu.Unlock()

	if dp.NoiseFiltered {
		r.log.Debug("registry: noise filtered during aggregation",
			zap.String("key", key),
			zap.Int("input", len(citations)),
			zap.Int("kept", len(kept)),
		)
	}

	return dp
}

// VerifyCitation corroborates a stored citation against additional sources
// and replaces the stored entry with the adjusted result. Unknown ids are
// silently ignored.
func (r *Registry) VerifyCitation(citationID string, additional []model.Citation) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.citations[citationID]
	if !ok {
		return
	}

	updated := scorer.Verify(*c, additional)
	r.citations[citationID] = &updated
}

// ExportCitations returns stored citations passing the filter, sorted by
// signalStrength x confidence descending with insertion order as tiebreak.
func (r *Registry) ExportCitations(filter model.ExportFilter) []model.Citation {
	r.mu.RLock()
	out := make([]model.Citation, 0, len(r.order))
	for _, id := range r.order {
		c, ok := r.citations[id]
		if !ok {
			continue // pruned
		}
		if filter.Allows(*c) {
			out = append(out, *c)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		si := float64(out[i].SignalStrength) * out[i].Confidence
		sj := float64(out[j].SignalStrength) * out[j].Confidence
		return si > sj
	})

	return out
}

// TrustScore composites a data point's mean confidence, mean signal, and a
// citation-count bonus into a 0-100 score. Unknown keys score 0.
func (r *Registry) TrustScore(key string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dp, ok := r.dataPoints[key]
	if !ok {
		return 0
	}

	countBonus := math.Min(1, float64(len(dp.Citations))/3)
	score := 0.4*dp.AggregatedConfidence + 0.4*(dp.SignalScore/100) + 0.2*countBonus
	return int(math.Round(score * 100))
}

// Citation returns a copy of the stored citation with the given id.
func (r *Registry) Citation(citationID string) (model.Citation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.citations[citationID]
	if !ok {
		return model.Citation{}, false
	}
	return *c, true
}

// DataPoint returns a copy of the stored data point under key.
func (r *Registry) DataPoint(key string) (model.DataPoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dp, ok := r.dataPoints[key]
	if !ok {
		return model.DataPoint{}, false
	}
	return *dp, true
}

// Len returns the number of stored citations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.citations)
}

// PruneNoisy deletes every citation below the prune floors and returns how
// many were removed. Data points aggregated before a prune are not
// recomputed and may still carry copies of removed citations.
func (r *Registry) PruneNoisy() int {
	r.mu.Lock()

	removed := 0
	for id, c := range r.citations {
		if c.SignalStrength < r.cfg.PruneMinSignal || c.Confidence < r.cfg.PruneMinConfidence {
			delete(r.citations, id)
			removed++
		}
	}
	if removed > 0 {
		kept := r.order[:0]
		for _, id := range r.order {
			if _, ok := r.citations[id]; ok {
				kept = append(kept, id)
			}
		}
		r.order = kept
	}
	r.mu.Unlock()

	if removed > 0 {
		r.log.Info("registry: pruned noisy citations", zap.Int("removed", removed))
	}

	return removed
}
