package handlers

import (
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/wonny/analyst/internal/knowledge"
	"github.com/wonny/analyst/internal/scheduler"
	"github.com/wonny/analyst/pkg/logger"
)

// JobStatsProvider exposes scheduler statistics
type JobStatsProvider interface {
	SortedStats() []scheduler.JobStats
}

// StatusHandler serves scheduler and knowledge store status
type StatusHandler struct {
	jobs      JobStatsProvider
	knowledge *knowledge.Store
	logger    *logger.Logger
}

// NewStatusHandler creates a new status handler. jobs may be nil when the
// API runs without a scheduler.
func NewStatusHandler(jobs JobStatsProvider, kb *knowledge.Store, log *logger.Logger) *StatusHandler {
	return &StatusHandler{jobs: jobs, knowledge: kb, logger: log}
}

// GetJobs returns per-job stats
// GET /api/scheduler/jobs
func (h *StatusHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		respondJSON(w, http.StatusOK, []scheduler.JobStats{})
		return
	}
	respondJSON(w, http.StatusOK, h.jobs.SortedStats())
}

// GetKnowledgeStats returns knowledge store size statistics
// GET /api/knowledge/stats
func (h *StatusHandler) GetKnowledgeStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.knowledge.Stats()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get knowledge stats")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve knowledge stats")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stats": stats,
		"size":  humanize.Bytes(uint64(stats.Bytes)),
	})
}
