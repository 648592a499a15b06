package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/analyst/internal/aggregation"
	"github.com/wonny/analyst/internal/docstore"
	"github.com/wonny/analyst/internal/export"
	"github.com/wonny/analyst/internal/knowledge"
	"github.com/wonny/analyst/internal/llm"
	"github.com/wonny/analyst/internal/performance"
	"github.com/wonny/analyst/internal/profile"
	"github.com/wonny/analyst/internal/scheduler"
	"github.com/wonny/analyst/internal/timegate"
	"github.com/wonny/analyst/pkg/logger"
)

const snapshotPath = "/shared/analyst-snapshot.md"

type fixture struct {
	fs      afero.Fs
	now     time.Time
	deps    Deps
	replies []string
	err     error
	prompts []string
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	fx := &fixture{fs: afero.NewMemMapFs(), now: now}
	clock := func() time.Time { return fx.now }
	log := logger.Nop()

	ledger := performance.NewStore(docstore.NewFileStore(fx.fs, "/data"), "performance", time.UTC, log,
		performance.WithClock(clock))
	profiles := profile.NewStore(fx.fs, "/data/profile.yaml", log)
	kb := knowledge.NewStore(fx.fs, "/data/knowledge")

	fx.deps = Deps{
		Ledger:     ledger,
		Profiles:   profiles,
		Knowledge:  kb,
		Maintainer: knowledge.NewMaintainer(kb, clock, log),
		Exporter:   export.NewExporter(fx.fs, snapshotPath, ledger, profiles, kb, clock, log),
		Generator: llm.Func(func(_ context.Context, prompt string) (string, error) {
			fx.prompts = append(fx.prompts, prompt)
			if fx.err != nil {
				return "", fx.err
			}
			if len(fx.replies) == 0 {
				return "", errors.New("no scripted reply")
			}
			reply := fx.replies[0]
			fx.replies = fx.replies[1:]
			return reply, nil
		}),
		Logger: log,
	}
	return fx
}

func (fx *fixture) record(t *testing.T, date, ticker string) performance.Recommendation {
	t.Helper()
	rec, err := fx.deps.Ledger.Record(context.Background(), performance.NewRecommendation{
		Date: date, Ticker: ticker, Direction: performance.Bullish, Confidence: 60,
	})
	require.NoError(t, err)
	return rec
}

func (fx *fixture) snapshot(t *testing.T) string {
	t.Helper()
	data, err := afero.ReadFile(fx.fs, snapshotPath)
	require.NoError(t, err)
	return string(data)
}

func TestAll_NamesAndWindows(t *testing.T) {
	fx := newFixture(t, time.Now())
	got := map[string]string{}
	for _, j := range All(fx.deps) {
		got[j.Name()] = j.Window().String()
	}

	assert.Equal(t, map[string]string{
		"morning_scan":       "Mon,Tue,Wed,Thu,Fri 08:30+5m0s",
		"eod_scan":           "Mon,Tue,Wed,Thu,Fri 16:30+5m0s",
		"nightly_review":     "Mon,Tue,Wed,Thu,Fri 20:00+5m0s",
		"weekly_review":      "Fri 20:30+5m0s",
		"weekly_maintenance": "Sat 09:00+5m0s",
	}, got)
}

func TestRegister_DispatchesMorningScanOnce(t *testing.T) {
	fx := newFixture(t, time.Date(2024, 3, 4, 8, 31, 0, 0, time.UTC))
	fx.replies = []string{"CALL: NVDA | bullish | 70 | momentum | gap up"}

	gate := timegate.New(time.UTC, timegate.WithClock(func() time.Time { return fx.now }))
	s := scheduler.New(gate, time.Minute, logger.Nop())
	require.NoError(t, Register(s, fx.deps))

	assert.Equal(t, []string{"morning_scan"}, s.Tick())
	s.Wait()
	assert.Empty(t, s.Tick())

	st := fx.deps.Ledger.Load(context.Background())
	require.Len(t, st.Recommendations, 1)
	assert.True(t, fx.deps.Knowledge.Exists("morning-scan-2024-03-04.md"))
}

func TestNightlyReview_AppliesOutcomesAndLesson(t *testing.T) {
	fx := newFixture(t, time.Date(2024, 3, 5, 20, 1, 0, 0, time.UTC))
	a := fx.record(t, "2024-03-04", "NVDA")
	b := fx.record(t, "2024-03-04", "AMD")
	today := fx.record(t, "2024-03-05", "TSLA")

	fx.replies = []string{strings.Join([]string{
		"REVIEW: [" + a.ID + "] | correct | ran 4%",
		"REVIEW: [" + b.ID + "] | skip | too early",
		"REVIEW: [unknown-id] | wrong | not ours",
		"LESSON: trust the trend",
	}, "\n")}

	job := NewNightlyReviewJob(fx.deps.Ledger, fx.deps.Profiles, fx.deps.Generator, fx.deps.Exporter, logger.Nop())
	require.NoError(t, job.Run(context.Background()))

	require.Len(t, fx.prompts, 1)
	assert.Contains(t, fx.prompts[0], a.ID)
	assert.NotContains(t, fx.prompts[0], today.ID)

	st := fx.deps.Ledger.Load(context.Background())
	byID := map[string]performance.Recommendation{}
	for _, r := range st.Recommendations {
		byID[r.ID] = r
	}
	assert.Equal(t, performance.OutcomeCorrect, byID[a.ID].Outcome)
	assert.True(t, byID[b.ID].IsPending())
	assert.True(t, byID[today.ID].IsPending())
	assert.Equal(t, []string{"[2024-03-05] trust the trend"}, st.StrategyNotes)
	assert.Equal(t, "2024-03-05", st.LastNightlyReviewDate)

	assert.Contains(t, fx.snapshot(t), "trust the trend")
}

func TestNightlyReview_GeneratorFailureLeavesStateUntouched(t *testing.T) {
	fx := newFixture(t, time.Date(2024, 3, 5, 20, 1, 0, 0, time.UTC))
	a := fx.record(t, "2024-03-04", "NVDA")
	fx.err = errors.New("collaborator down")

	job := NewNightlyReviewJob(fx.deps.Ledger, fx.deps.Profiles, fx.deps.Generator, fx.deps.Exporter, logger.Nop())
	require.Error(t, job.Run(context.Background()))

	st := fx.deps.Ledger.Load(context.Background())
	require.Len(t, st.Recommendations, 1)
	assert.Equal(t, a.ID, st.Recommendations[0].ID)
	assert.True(t, st.Recommendations[0].IsPending())
	assert.Empty(t, st.LastNightlyReviewDate)
}

func TestNightlyReview_NothingPendingStillExports(t *testing.T) {
	fx := newFixture(t, time.Date(2024, 3, 5, 20, 1, 0, 0, time.UTC))

	job := NewNightlyReviewJob(fx.deps.Ledger, fx.deps.Profiles, fx.deps.Generator, fx.deps.Exporter, logger.Nop())
	require.NoError(t, job.Run(context.Background()))

	assert.Empty(t, fx.prompts)
	assert.Contains(t, fx.snapshot(t), "# Analyst Snapshot")
}

func TestWeeklyReview(t *testing.T) {
	ctx := context.Background()

	t.Run("single reviewed call yields no score", func(t *testing.T) {
		fx := newFixture(t, time.Date(2024, 3, 8, 20, 31, 0, 0, time.UTC))
		a := fx.record(t, "2024-03-05", "NVDA")
		_, err := fx.deps.Ledger.BatchUpdateOutcomes(ctx, []performance.OutcomeUpdate{{ID: a.ID, Outcome: performance.OutcomeCorrect}})
		require.NoError(t, err)

		job := NewWeeklyReviewJob(fx.deps.Ledger, fx.deps.Profiles, fx.deps.Generator, logger.Nop())
		require.NoError(t, job.Run(ctx))

		assert.Empty(t, fx.prompts)
		assert.Empty(t, fx.deps.Ledger.Load(ctx).WeeklyScores)
	})

	t.Run("two reviewed calls score fifty", func(t *testing.T) {
		fx := newFixture(t, time.Date(2024, 3, 8, 20, 31, 0, 0, time.UTC))
		a := fx.record(t, "2024-03-05", "NVDA")
		b := fx.record(t, "2024-03-06", "AMD")
		_, err := fx.deps.Ledger.BatchUpdateOutcomes(ctx, []performance.OutcomeUpdate{
			{ID: a.ID, Outcome: performance.OutcomeCorrect},
			{ID: b.ID, Outcome: performance.OutcomeWrong},
		})
		require.NoError(t, err)
		fx.replies = []string{"Mixed week.\nBEST CALL: NVDA breakout\nWORST CALL: AMD fade"}

		job := NewWeeklyReviewJob(fx.deps.Ledger, fx.deps.Profiles, fx.deps.Generator, logger.Nop())
		require.NoError(t, job.Run(ctx))

		st := fx.deps.Ledger.Load(ctx)
		require.Len(t, st.WeeklyScores, 1)
		score := st.WeeklyScores[0]
		assert.Equal(t, "2024-03-04", score.WeekOf)
		assert.Equal(t, float64(50), score.Accuracy)
		assert.Equal(t, "NVDA breakout", score.BestCall)
		assert.Equal(t, aggregation.FallbackLesson, score.Lesson)
		assert.Empty(t, st.StrategyNotes, "fallback lesson is not a strategy note")
		assert.Equal(t, "2024-03-08", st.LastWeeklyReviewDate)
	})
}

func TestKnowledgeMaintenance(t *testing.T) {
	fx := newFixture(t, time.Date(2024, 2, 3, 9, 1, 0, 0, time.UTC))
	kb := fx.deps.Knowledge
	old := fx.now.Add(-20 * 24 * time.Hour)
	for _, name := range []string{"morning-scan-2024-01-02.md", "eod-scan-2024-01-03.md", "analysis-2023-12-01.md"} {
		require.NoError(t, kb.Write(name, "body of "+name))
	}
	require.NoError(t, fx.fs.Chtimes("/data/knowledge/morning-scan-2024-01-02.md", old, old))
	require.NoError(t, fx.fs.Chtimes("/data/knowledge/eod-scan-2024-01-03.md", old, old))
	ancient := fx.now.Add(-40 * 24 * time.Hour)
	require.NoError(t, fx.fs.Chtimes("/data/knowledge/analysis-2023-12-01.md", ancient, ancient))

	job := NewKnowledgeMaintenanceJob(fx.deps.Maintainer, fx.deps.Exporter, logger.Nop())
	require.NoError(t, job.Run(context.Background()))

	assert.True(t, kb.Exists("weekly-summary-2024-01-01.md"))
	assert.False(t, kb.Exists("morning-scan-2024-01-02.md"))
	assert.False(t, kb.Exists("analysis-2023-12-01.md"))
	assert.Contains(t, fx.snapshot(t), "1 artifacts")
}
