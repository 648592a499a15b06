package performance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/analyst/internal/calendar"
	"github.com/wonny/analyst/internal/docstore"
	"github.com/wonny/analyst/pkg/logger"
)

// NewRecommendation carries the caller-supplied fields of a call
type NewRecommendation struct {
	Date       string // defaults to today in the store's timezone
	Ticker     string
	Direction  Direction
	Confidence int
	Type       string
	Summary    string
}

// Store owns the PerformanceState document.
// ⭐ SSOT: 추천 기록 변경은 이 Store를 통해서만
//
// Every mutation loads the whole document, changes it in memory and saves
// it back. The mutex serializes goroutines inside one process; concurrent
// writers in separate processes are not supported.
type Store struct {
	docs   docstore.Store
	name   string
	loc    *time.Location
	now    func() time.Time
	newID  func() string
	mu     sync.Mutex
	logger *logger.Logger
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithClock injects the clock
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithIDSuffix overrides the uniqueness suffix generator
func WithIDSuffix(fn func() string) StoreOption {
	return func(s *Store) { s.newID = fn }
}

// NewStore creates a store for the named document
func NewStore(docs docstore.Store, name string, loc *time.Location, log *logger.Logger, opts ...StoreOption) *Store {
	if loc == nil {
		loc = time.UTC
	}
	s := &Store{
		docs:   docs,
		name:   name,
		loc:    loc,
		now:    time.Now,
		newID:  func() string { return uuid.NewString()[:8] },
		logger: log.Component("performance"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the current state. Any read or decode failure yields the
// empty default; Load never fails.
func (s *Store) Load(ctx context.Context) *State {
	st, err := s.load(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Performance state unreadable, using empty default")
		return NewState()
	}
	return st
}

// load distinguishes a storage failure from a missing or corrupt document.
// Missing and corrupt documents become the empty default.
func (s *Store) load(ctx context.Context) (*State, error) {
	data, err := s.docs.Load(ctx, s.name)
	if errors.Is(err, docstore.ErrNotFound) {
		return NewState(), nil
	}
	if err != nil {
		return nil, err
	}

	st := NewState()
	if err := json.Unmarshal(data, st); err != nil {
		s.logger.WithError(err).Warn("Performance state corrupt, starting from empty default")
		return NewState(), nil
	}
	st.normalize()
	return st, nil
}

// mutate runs fn inside one load-modify-save cycle
func (s *Store) mutate(ctx context.Context, fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load(ctx)
	if err != nil {
		// Saving over a document we could not read would erase it.
		return fmt.Errorf("load performance state: %w", err)
	}

	if err := fn(st); err != nil {
		return err
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode performance state: %w", err)
	}
	if err := s.docs.Save(ctx, s.name, data); err != nil {
		return fmt.Errorf("save performance state: %w", err)
	}
	return nil
}

// Now returns the current instant in the store's timezone
func (s *Store) Now() time.Time {
	return s.now().In(s.loc)
}

// Today returns the current local calendar date
func (s *Store) Today() string {
	return calendar.Today(s.now(), s.loc)
}

// Record appends a new call and evicts the oldest entries past capacity
func (s *Store) Record(ctx context.Context, in NewRecommendation) (Recommendation, error) {
	ticker := strings.ToUpper(strings.TrimSpace(in.Ticker))
	if ticker == "" {
		return Recommendation{}, fmt.Errorf("ticker is required")
	}
	dir, ok := ParseDirection(string(in.Direction))
	if !ok {
		return Recommendation{}, fmt.Errorf("invalid direction %q", in.Direction)
	}

	date := in.Date
	if date == "" {
		date = s.Today()
	}

	rec := Recommendation{
		Date:       date,
		Ticker:     ticker,
		Direction:  dir,
		Confidence: clampConfidence(in.Confidence),
		Type:       strings.TrimSpace(in.Type),
		Summary:    strings.TrimSpace(in.Summary),
		Outcome:    OutcomePending,
	}

	err := s.mutate(ctx, func(st *State) error {
		rec.ID = s.uniqueID(st, date, ticker)
		st.Recommendations = append(st.Recommendations, rec)
		st.Recommendations = trimOldest(st.Recommendations, MaxRecommendations)
		return nil
	})
	if err != nil {
		return Recommendation{}, err
	}

	s.logger.WithFields(map[string]interface{}{
		"id":        rec.ID,
		"ticker":    rec.Ticker,
		"direction": rec.Direction,
	}).Debug("Recommendation recorded")

	return rec, nil
}

func (s *Store) uniqueID(st *State, date, ticker string) string {
	taken := make(map[string]struct{}, len(st.Recommendations))
	for _, r := range st.Recommendations {
		taken[r.ID] = struct{}{}
	}
	for {
		id := fmt.Sprintf("%s-%s-%s", date, ticker, s.newID())
		if _, dup := taken[id]; !dup {
			return id
		}
	}
}

func clampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// PendingReviews returns calls still awaiting a verdict that are dated
// yesterday or earlier. Same-day calls are never eligible.
func (s *Store) PendingReviews(ctx context.Context) []Recommendation {
	st := s.Load(ctx)
	yesterday := s.now().In(s.loc).AddDate(0, 0, -1).Format(calendar.DateLayout)

	pending := make([]Recommendation, 0)
	for _, r := range st.Recommendations {
		if r.IsPending() && r.Date <= yesterday {
			pending = append(pending, r)
		}
	}
	return pending
}

// UpdateOutcome sets the verdict for one call. Unknown ids are ignored.
func (s *Store) UpdateOutcome(ctx context.Context, id string, outcome Outcome, notes string) error {
	_, err := s.BatchUpdateOutcomes(ctx, []OutcomeUpdate{{ID: id, Outcome: outcome, Notes: notes}})
	return err
}

// BatchUpdateOutcomes applies verdicts by id in one save and returns how
// many entries changed. Unknown ids are ignored, and a terminal outcome is
// never reverted to pending.
func (s *Store) BatchUpdateOutcomes(ctx context.Context, updates []OutcomeUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	applied := 0
	err := s.mutate(ctx, func(st *State) error {
		index := make(map[string]int, len(st.Recommendations))
		for i, r := range st.Recommendations {
			index[r.ID] = i
		}

		reviewedAt := s.now()
		for _, u := range updates {
			i, ok := index[u.ID]
			if !ok {
				continue
			}
			rec := &st.Recommendations[i]
			if !u.Outcome.IsTerminal() {
				if u.Outcome != OutcomePending || rec.Outcome.IsTerminal() {
					continue
				}
			}
			rec.Outcome = u.Outcome
			rec.ReviewNotes = strings.TrimSpace(u.Notes)
			at := reviewedAt
			rec.ReviewedAt = &at
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

// AddStrategyNote appends a dated lesson, evicting the oldest past capacity
func (s *Store) AddStrategyNote(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	note := fmt.Sprintf("[%s] %s", s.Today(), text)
	return s.mutate(ctx, func(st *State) error {
		st.StrategyNotes = trimOldest(append(st.StrategyNotes, note), MaxStrategyNotes)
		return nil
	})
}

// AddWeeklyScore appends a rollup and optionally its lesson as a strategy note
func (s *Store) AddWeeklyScore(ctx context.Context, score WeeklyScore, lesson string) error {
	lesson = strings.TrimSpace(lesson)
	today := s.Today()
	return s.mutate(ctx, func(st *State) error {
		st.WeeklyScores = trimOldest(append(st.WeeklyScores, score), MaxWeeklyScores)
		if lesson != "" {
			note := fmt.Sprintf("[%s] %s", today, lesson)
			st.StrategyNotes = trimOldest(append(st.StrategyNotes, note), MaxStrategyNotes)
		}
		st.LastWeeklyReviewDate = today
		return nil
	})
}

// MarkNightlyReview records the date of the last nightly review that
// produced output
func (s *Store) MarkNightlyReview(ctx context.Context) error {
	today := s.Today()
	return s.mutate(ctx, func(st *State) error {
		st.LastNightlyReviewDate = today
		return nil
	})
}

// OverallAccuracy scores every terminally reviewed call
func OverallAccuracy(recs []Recommendation) Accuracy {
	var a Accuracy
	for _, r := range recs {
		switch r.Outcome {
		case OutcomeCorrect:
			a.Correct++
		case OutcomeWrong:
			a.Wrong++
		case OutcomePartial:
			a.Partial++
		default:
			continue
		}
		a.Total++
	}
	a.Accuracy = AccuracyPercent(a.Correct, a.Partial, a.Total)
	return a
}

// AccuracyPercent computes round((correct + 0.5*partial) / total * 100)
func AccuracyPercent(correct, partial, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round((float64(correct) + 0.5*float64(partial)) / float64(total) * 100)
}

// Recent returns the last n items, oldest first
func Recent[T any](items []T, n int) []T {
	if n >= len(items) {
		return items
	}
	return items[len(items)-n:]
}
