package performance

import (
	"strings"
	"time"
)

// Capacity limits for the aggregate document
const (
	MaxRecommendations = 200
	MaxWeeklyScores    = 52
	MaxStrategyNotes   = 30
)

// Direction is the call's expected move
type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
	Neutral Direction = "neutral"
)

// ParseDirection normalizes free text into a Direction
func ParseDirection(s string) (Direction, bool) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Bullish:
		return Bullish, true
	case Bearish:
		return Bearish, true
	case Neutral:
		return Neutral, true
	}
	return "", false
}

// Outcome is the review verdict for a recommendation
type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomeCorrect Outcome = "correct"
	OutcomeWrong   Outcome = "wrong"
	OutcomePartial Outcome = "partial"
)

// IsTerminal reports whether the outcome is a final verdict
func (o Outcome) IsTerminal() bool {
	return o == OutcomeCorrect || o == OutcomeWrong || o == OutcomePartial
}

// Recommendation is a dated, ticker-scoped directional call.
// Only Outcome, ReviewedAt and ReviewNotes change after creation.
type Recommendation struct {
	ID         string    `json:"id"`
	Date       string    `json:"date"` // YYYY-MM-DD, local to the configured timezone
	Ticker     string    `json:"ticker"`
	Direction  Direction `json:"direction"`
	Confidence int       `json:"confidence"`
	Type       string    `json:"type"`
	Summary    string    `json:"summary"`

	Outcome     Outcome    `json:"outcome,omitempty"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
	ReviewNotes string     `json:"reviewNotes,omitempty"`
}

// IsPending reports whether the call still awaits a verdict
func (r Recommendation) IsPending() bool {
	return r.Outcome == "" || r.Outcome == OutcomePending
}

// OutcomeUpdate is one verdict applied by id
type OutcomeUpdate struct {
	ID      string  `json:"id"`
	Outcome Outcome `json:"outcome"`
	Notes   string  `json:"notes"`
}

// WeeklyScore is the immutable rollup for one week
type WeeklyScore struct {
	WeekOf     string  `json:"weekOf"` // Monday, YYYY-MM-DD
	TotalCalls int     `json:"totalCalls"`
	Correct    int     `json:"correct"`
	Wrong      int     `json:"wrong"`
	Partial    int     `json:"partial"`
	Accuracy   float64 `json:"accuracy"`
	BestCall   string  `json:"bestCall"`
	WorstCall  string  `json:"worstCall"`
	Lesson     string  `json:"lesson"`
}

// State is the aggregate root, persisted as one document
type State struct {
	Recommendations       []Recommendation `json:"recommendations"`
	WeeklyScores          []WeeklyScore    `json:"weeklyScores"`
	StrategyNotes         []string         `json:"strategyNotes"`
	LastNightlyReviewDate string           `json:"lastNightlyReviewDate,omitempty"`
	LastWeeklyReviewDate  string           `json:"lastWeeklyReviewDate,omitempty"`
}

// NewState returns the documented empty default
func NewState() *State {
	return &State{
		Recommendations: []Recommendation{},
		WeeklyScores:    []WeeklyScore{},
		StrategyNotes:   []string{},
	}
}

// normalize replaces nil slices so the document always serializes arrays
func (s *State) normalize() {
	if s.Recommendations == nil {
		s.Recommendations = []Recommendation{}
	}
	if s.WeeklyScores == nil {
		s.WeeklyScores = []WeeklyScore{}
	}
	if s.StrategyNotes == nil {
		s.StrategyNotes = []string{}
	}
}

// Accuracy summarizes every terminally reviewed recommendation
type Accuracy struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Wrong    int     `json:"wrong"`
	Partial  int     `json:"partial"`
	Accuracy float64 `json:"accuracy"` // percent, rounded
}

// trimOldest keeps the newest max entries
func trimOldest[T any](items []T, max int) []T {
	if len(items) <= max {
		return items
	}
	return append([]T(nil), items[len(items)-max:]...)
}
