package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/wonny/breakwatch/internal/contracts"
	"github.com/wonny/breakwatch/internal/pipeline"
	"github.com/wonny/breakwatch/internal/selection"
	"github.com/wonny/breakwatch/pkg/logger"
)

const (
	defaultMoverLimit = 10
	maxMoverLimit     = 500
)

// Runner performs one refresh
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*contracts.Snapshot, error)
}

// LatestSource returns the latest snapshot or nil
type LatestSource interface {
	Latest() *contracts.Snapshot
}

// SnapshotHandler serves the latest refresh results
// ⭐ SSOT: snapshot read endpoints live in this handler only
type SnapshotHandler struct {
	runner Runner
	store  LatestSource
	logger *logger.Logger
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(runner Runner, store LatestSource, log *logger.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		runner: runner,
		store:  store,
		logger: log.Component("api"),
	}
}

// SummaryResponse is the compact view of a snapshot
type SummaryResponse struct {
	Group      string    `json:"group"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	Requested  int       `json:"requested"`
	Fetched    int       `json:"fetched"`
	Failed     int       `json:"failed"`
	Filtered   int       `json:"filtered"`
	Breakouts  int       `json:"breakouts"`
	Plans      int       `json:"plans"`
	AlertsSent int       `json:"alerts_sent"`
}

func summarize(s *contracts.Snapshot) SummaryResponse {
	sent := 0
	for _, a := range s.Alerts {
		if a.Sent {
			sent++
		}
	}
	return SummaryResponse{
		Group:      s.Group,
		StartedAt:  s.StartedAt,
		DurationMs: s.Duration.Milliseconds(),
		Requested:  s.Requested,
		Fetched:    s.Fetched,
		Failed:     s.FailedCount(),
		Filtered:   len(s.Filtered),
		Breakouts:  len(s.Breakouts),
		Plans:      len(s.Plans),
		AlertsSent: sent,
	}
}

// latest writes 503 and returns nil when no refresh has completed yet
func (h *SnapshotHandler) latest(w http.ResponseWriter) *contracts.Snapshot {
	s := h.store.Latest()
	if s == nil {
		respondError(w, http.StatusServiceUnavailable, "no snapshot yet")
	}
	return s
}

// GetSnapshot returns the full latest snapshot
// GET /api/snapshot
func (h *SnapshotHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	if s := h.latest(w); s != nil {
		respondJSON(w, http.StatusOK, s)
	}
}

// GetGainers returns the top gainers
// GET /api/movers/gainers?limit=10
func (h *SnapshotHandler) GetGainers(w http.ResponseWriter, r *http.Request) {
	h.movers(w, r, func(s *contracts.Snapshot) []contracts.MoverRow { return s.Gainers })
}

// GetLosers returns the top losers
// GET /api/movers/losers?limit=10
func (h *SnapshotHandler) GetLosers(w http.ResponseWriter, r *http.Request) {
	h.movers(w, r, func(s *contracts.Snapshot) []contracts.MoverRow { return s.Losers })
}

func (h *SnapshotHandler) movers(w http.ResponseWriter, r *http.Request, pick func(*contracts.Snapshot) []contracts.MoverRow) {
	limit := defaultMoverLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 || l > maxMoverLimit {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = l
	}

	s := h.latest(w)
	if s == nil {
		return
	}

	rows := selection.Top(pick(s), limit)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"group": s.Group,
		"count": len(rows),
		"rows":  rows,
	})
}

// GetBreakouts returns the breakouts of the latest refresh
// GET /api/breakouts
func (h *SnapshotHandler) GetBreakouts(w http.ResponseWriter, r *http.Request) {
	s := h.latest(w)
	if s == nil {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"group":     s.Group,
		"count":     len(s.Breakouts),
		"breakouts": s.Breakouts,
	})
}

// GetPlans returns the trade plans rounded for display
// GET /api/plans
func (h *SnapshotHandler) GetPlans(w http.ResponseWriter, r *http.Request) {
	s := h.latest(w)
	if s == nil {
		return
	}

	plans := make([]contracts.TradePlan, len(s.Plans))
	for i, p := range s.Plans {
		plans[i] = p.Rounded()
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"group": s.Group,
		"count": len(plans),
		"plans": plans,
	})
}

// Refresh runs a refresh now and returns its summary.
// A refresh already in progress finishes first.
// POST /api/refresh?group=NIFTY50
func (h *SnapshotHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	group := r.URL.Query().Get("group")

	s, err := h.runner.Run(r.Context(), pipeline.Request{Group: group})
	if err != nil {
		if errors.Is(err, pipeline.ErrUnknownGroup) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.WithError(err).Error("Refresh failed")
		respondError(w, http.StatusInternalServerError, "refresh failed")
		return
	}

	respondJSON(w, http.StatusOK, summarize(s))
}
