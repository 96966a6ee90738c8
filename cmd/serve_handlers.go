package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/brightdeck/citation-cli/internal/ingest"
	"github.com/brightdeck/citation-cli/internal/model"
	"github.com/brightdeck/citation-cli/internal/registry"
	"github.com/brightdeck/citation-cli/internal/scorer"
)

type apiHandler struct {
	reg *registry.Registry
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *apiHandler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"citations": h.reg.Len(),
	})
}

func (h *apiHandler) addCitation(w http.ResponseWriter, r *http.Request) {
	var req ingest.Claim
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts, err := req.Options()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.reg.AddCitation(req.Source, req.Content, opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

func (h *apiHandler) getCitation(w http.ResponseWriter, r *http.Request) {
	c, ok := h.reg.Citation(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "citation not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"citation":  c,
		"formatted": scorer.FormatCitation(c),
	})
}

func (h *apiHandler) exportCitations(w http.ResponseWriter, r *http.Request) {
	filter := model.ExportFilter{}
	q := r.URL.Query()

	if v := q.Get("min_signal"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "min_signal must be an integer")
			return
		}
		filter.MinSignal = n
	}
	if v := q.Get("min_confidence"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "min_confidence must be a number")
			return
		}
		filter.MinConfidence = f
	}
	if v := q.Get("source_types"); v != "" {
		for _, st := range strings.Split(v, ",") {
			filter.SourceTypes = append(filter.SourceTypes, model.SourceType(strings.TrimSpace(st)))
		}
	}

	writeJSON(w, http.StatusOK, h.reg.ExportCitations(filter))
}

func (h *apiHandler) getTrace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.reg.Citation(id); !ok {
		writeError(w, http.StatusNotFound, "citation not found")
		return
	}
	trace := h.reg.GetCitationTrace(id)
	if trace == nil {
		trace = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "lineage": trace})
}

func (h *apiHandler) verifyCitation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		AdditionalSources []ingest.Claim `json:"additional_sources"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	additional := make([]model.Citation, 0, len(req.AdditionalSources))
	for _, claim := range req.AdditionalSources {
		additional = append(additional, model.Citation{
			Source:  claim.Source,
			Content: claim.Content,
			URL:     claim.URL,
		})
	}

	h.reg.VerifyCitation(id, additional)

	c, ok := h.reg.Citation(id)
	if !ok {
		writeError(w, http.StatusNotFound, "citation not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *apiHandler) trackBoundary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		FromStage string `json:"from_stage"`
		ToStage   string `json:"to_stage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FromStage == "" || req.ToStage == "" {
		writeError(w, http.StatusBadRequest, "from_stage and to_stage are required")
		return
	}

	h.reg.TrackAcrossSkillBoundary(id, req.FromStage, req.ToStage)

	c, ok := h.reg.Citation(id)
	if !ok {
		writeError(w, http.StatusNotFound, "citation not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "lineage": c.Lineage})
}

func (h *apiHandler) aggregateDataPoint(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req struct {
		Value       any      `json:"value"`
		CitationIDs []string `json:"citation_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Unknown ids degrade silently, matching the registry's semantics.
	citations := make([]model.Citation, 0, len(req.CitationIDs))
	for _, id := range req.CitationIDs {
		if c, ok := h.reg.Citation(id); ok {
			citations = append(citations, c)
		}
	}

	dp := h.reg.AggregateDataPoint(key, req.Value, citations)
	writeJSON(w, http.StatusOK, dp)
}

func (h *apiHandler) getDataPoint(w http.ResponseWriter, r *http.Request) {
	dp, ok := h.reg.DataPoint(chi.URLParam(r, "key"))
	if !ok {
		writeError(w, http.StatusNotFound, "data point not found")
		return
	}
	writeJSON(w, http.StatusOK, dp)
}

func (h *apiHandler) getTrustScore(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	writeJSON(w, http.StatusOK, map[string]any{
		"key":         key,
		"trust_score": h.reg.TrustScore(key),
	})
}

func (h *apiHandler) prune(w http.ResponseWriter, _ *http.Request) {
	removed := h.reg.PruneNoisy()
	writeJSON(w, http.StatusOK, map[string]any{
		"removed":   removed,
		"remaining": h.reg.Len(),
	})
}
