package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rohmanhakim/cricket-api/internal/extractor"
	"github.com/rohmanhakim/cricket-api/internal/livescore"
	"github.com/rohmanhakim/cricket-api/pkg/failure"
)

// ScoreService is the lookup surface the handlers consume.
type ScoreService interface {
	LiveMatches(ctx context.Context) ([]livescore.EnrichedMatch, failure.ClassifiedError)
	MatchScore(ctx context.Context, matchID string) (livescore.ScoreRecord, failure.ClassifiedError)
}

// Handler carries the dependencies shared by all HTTP handlers.
type Handler struct {
	service ScoreService
	logger  *slog.Logger
	version string
}

func NewHandler(service ScoreService, logger *slog.Logger, version string) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		version: version,
	}
}

// Root describes the API surface.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]any{
		"name":    "Cricket Live Score API",
		"version": h.version,
		"endpoints": map[string]string{
			"GET /api/v1/live-matches":       "All matches visible on the homepage",
			"GET /api/v1/matches/{id}/score": "Full scorecard snapshot for a match",
			"GET /api/v1/matches/{id}/live":  "Condensed live view for a match",
			"GET /health":                    "Service health",
		},
	})
}

// Health reports liveness. The upstream site is deliberately not probed
// here; an unreachable upstream is a degraded lookup, not a dead service.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "cricket-api",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// LiveMatches serves the enriched match list.
func (h *Handler) LiveMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.service.LiveMatches(r.Context())
	if err != nil {
		h.respondError(w, err, "")
		return
	}
	data := make([]matchResponse, 0, len(matches))
	for _, m := range matches {
		data = append(data, toMatchResponse(m))
	}
	h.respondJSON(w, http.StatusOK, successEnvelope{
		Success: true,
		Code:    http.StatusOK,
		Data:    data,
		Message: fmt.Sprintf("%d matches found", len(data)),
	})
}

// MatchScore serves the flat scorecard for one match.
func (h *Handler) MatchScore(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	record, err := h.service.MatchScore(r.Context(), matchID)
	if err != nil {
		h.respondError(w, err, matchID)
		return
	}
	h.respondJSON(w, http.StatusOK, successEnvelope{
		Success: true,
		Code:    http.StatusOK,
		Data:    toScoreResponse(record.Detail),
	})
}

// MatchLive serves the condensed live view for one match.
func (h *Handler) MatchLive(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	record, err := h.service.MatchScore(r.Context(), matchID)
	if err != nil {
		h.respondError(w, err, matchID)
		return
	}
	h.respondJSON(w, http.StatusOK, toNestedResponse(&record))
}

// LegacyMatches serves the unversioned match list. Scrape failures
// degrade to an empty list; upstream outages stay visible.
func (h *Handler) LegacyMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.service.LiveMatches(r.Context())
	if err != nil {
		if isScrapeDegradable(err) {
			h.respondJSON(w, http.StatusOK, map[string]any{"matches": []matchResponse{}})
			return
		}
		h.respondError(w, err, "")
		return
	}
	data := make([]matchResponse, 0, len(matches))
	for _, m := range matches {
		entry := toMatchResponse(m)
		entry.StartTime = ""
		entry.StatusText = ""
		data = append(data, entry)
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"matches": data})
}

// LegacyScore serves the unversioned flat scorecard. Lookups that find
// nothing degrade to an all-sentinel record.
func (h *Handler) LegacyScore(w http.ResponseWriter, r *http.Request) {
	matchID := r.URL.Query().Get("id")
	if matchID == "" {
		h.respondMissingID(w)
		return
	}
	record, err := h.service.MatchScore(r.Context(), matchID)
	if err != nil {
		if isScrapeDegradable(err) {
			h.respondJSON(w, http.StatusOK, toScoreResponse(extractor.NewScoreDetail()))
			return
		}
		h.respondError(w, err, matchID)
		return
	}
	h.respondJSON(w, http.StatusOK, toScoreResponse(record.Detail))
}

// LegacyScoreLive serves the unversioned live view. Lookups that find
// nothing answer success false with an empty livescore object.
func (h *Handler) LegacyScoreLive(w http.ResponseWriter, r *http.Request) {
	matchID := r.URL.Query().Get("id")
	if matchID == "" {
		h.respondMissingID(w)
		return
	}
	record, err := h.service.MatchScore(r.Context(), matchID)
	if err != nil {
		if isScrapeDegradable(err) {
			h.respondJSON(w, http.StatusOK, toNestedResponse(nil))
			return
		}
		h.respondError(w, err, matchID)
		return
	}
	h.respondJSON(w, http.StatusOK, toNestedResponse(&record))
}

func (h *Handler) respondMissingID(w http.ResponseWriter) {
	h.respondJSON(w, http.StatusBadRequest, errorEnvelope{
		Success: false,
		Code:    http.StatusBadRequest,
		Error:   codeMissingParameter,
		Message: "id query parameter is required",
	})
}

func (h *Handler) respondError(w http.ResponseWriter, err failure.ClassifiedError, matchID string) {
	status, code, message := mapError(err, matchID)
	h.logger.Error("request failed",
		slog.String("error", err.Error()),
		slog.Int("status", status),
		slog.String("code", code),
	)
	h.respondJSON(w, status, errorEnvelope{
		Success: false,
		Code:    status,
		Error:   code,
		Message: message,
	})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
