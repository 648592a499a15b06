package handlers

import (
	"net/http"
	"strconv"

	"github.com/wonny/analyst/internal/performance"
	"github.com/wonny/analyst/pkg/logger"
)

// PerformanceHandler serves the recommendation ledger read-only
// ⭐ SSOT: 성과 조회 API는 이 구조체에서만
type PerformanceHandler struct {
	ledger *performance.Store
	logger *logger.Logger
}

// NewPerformanceHandler creates a new performance handler
func NewPerformanceHandler(ledger *performance.Store, log *logger.Logger) *PerformanceHandler {
	return &PerformanceHandler{ledger: ledger, logger: log}
}

// PerformanceResponse is the ledger overview
type PerformanceResponse struct {
	Accuracy              performance.Accuracy         `json:"accuracy"`
	LatestWeek            *performance.WeeklyScore     `json:"latest_week,omitempty"`
	RecentCalls           []performance.Recommendation `json:"recent_calls"`
	StrategyNotes         []string                     `json:"strategy_notes"`
	TotalCalls            int                          `json:"total_calls"`
	LastNightlyReviewDate string                       `json:"last_nightly_review_date,omitempty"`
	LastWeeklyReviewDate  string                       `json:"last_weekly_review_date,omitempty"`
}

// GetPerformance returns accuracy, the latest weekly score and recent calls
// GET /api/performance?limit=20
func (h *PerformanceHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > performance.MaxRecommendations {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	st := h.ledger.Load(r.Context())
	resp := PerformanceResponse{
		Accuracy:              performance.OverallAccuracy(st.Recommendations),
		RecentCalls:           performance.Recent(st.Recommendations, limit),
		StrategyNotes:         st.StrategyNotes,
		TotalCalls:            len(st.Recommendations),
		LastNightlyReviewDate: st.LastNightlyReviewDate,
		LastWeeklyReviewDate:  st.LastWeeklyReviewDate,
	}
	if n := len(st.WeeklyScores); n > 0 {
		latest := st.WeeklyScores[n-1]
		resp.LatestWeek = &latest
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetPending returns calls eligible for the next review
// GET /api/recommendations/pending
func (h *PerformanceHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	pending := h.ledger.PendingReviews(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":           len(pending),
		"recommendations": pending,
	})
}
