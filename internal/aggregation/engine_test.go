package aggregation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/analyst/internal/performance"
)

func rec(date string, outcome performance.Outcome) performance.Recommendation {
	return performance.Recommendation{ID: date + "-X", Date: date, Ticker: "X", Outcome: outcome}
}

func TestSummarize(t *testing.T) {
	// Friday 2024-01-12 20:30 UTC
	now := time.Date(2024, 1, 12, 20, 30, 0, 0, time.UTC)

	t.Run("single reviewed call yields nothing", func(t *testing.T) {
		_, ok := Summarize([]performance.Recommendation{
			rec("2024-01-10", performance.OutcomeCorrect),
			rec("2024-01-11", performance.OutcomePending),
		}, now, time.UTC)
		assert.False(t, ok)
	})

	t.Run("one correct one wrong is fifty percent", func(t *testing.T) {
		r, ok := Summarize([]performance.Recommendation{
			rec("2024-01-10", performance.OutcomeCorrect),
			rec("2024-01-11", performance.OutcomeWrong),
		}, now, time.UTC)
		require.True(t, ok)
		assert.Equal(t, float64(50), r.Accuracy)
		assert.Equal(t, "2024-01-08", r.WeekOf)
		assert.Equal(t, 2, r.Total)
	})

	t.Run("partial counts half and old calls are excluded", func(t *testing.T) {
		r, ok := Summarize([]performance.Recommendation{
			rec("2024-01-01", performance.OutcomeWrong), // outside the window
			rec("2024-01-05", performance.OutcomeWrong), // eight dates back
			rec("2024-01-06", performance.OutcomeCorrect),
			rec("2024-01-09", performance.OutcomePartial),
			rec("2024-01-10", performance.OutcomeCorrect),
			rec("2024-01-13", performance.OutcomeWrong), // future-dated
		}, now, time.UTC)
		require.True(t, ok)
		assert.Equal(t, 3, r.Total)
		assert.Equal(t, 1, r.Partial)
		assert.Equal(t, float64(83), r.Accuracy)
	})
}

func TestSelectWeek_SevenCalendarDates(t *testing.T) {
	// 23:30 in New York on Friday 2024-01-12 is already Saturday in UTC
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	now := time.Date(2024, 1, 13, 4, 30, 0, 0, time.UTC)

	var recs []performance.Recommendation
	for d := 4; d <= 13; d++ {
		recs = append(recs, rec(time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), performance.OutcomeCorrect))
	}

	week := SelectWeek(recs, now, loc)
	require.Len(t, week, LookbackDays)
	assert.Equal(t, "2024-01-06", week[0].Date)
	assert.Equal(t, "2024-01-12", week[len(week)-1].Date)
}

func TestExtractNarrative(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		n := ExtractNarrative("Solid week overall.\n\n**BEST CALL:** NVDA breakout held\nWORST CALL: TSLA fade got squeezed\nLesson: wait for confirmation")
		assert.Equal(t, "NVDA breakout held", n.BestCall)
		assert.Equal(t, "TSLA fade got squeezed", n.WorstCall)
		assert.Equal(t, "wait for confirmation", n.Lesson)
		assert.True(t, n.LessonFound)
	})

	t.Run("fallbacks", func(t *testing.T) {
		n := ExtractNarrative("The model rambled without structure.")
		assert.Equal(t, FallbackCall, n.BestCall)
		assert.Equal(t, FallbackCall, n.WorstCall)
		assert.Equal(t, FallbackLesson, n.Lesson)
		assert.False(t, n.LessonFound)
	})
}

func TestRollupScore(t *testing.T) {
	r := &Rollup{WeekOf: "2024-01-08", Total: 2, Correct: 1, Wrong: 1, Accuracy: 50}
	score := r.Score(Narrative{BestCall: "A", WorstCall: "B", Lesson: "C"})

	assert.Equal(t, performance.WeeklyScore{
		WeekOf: "2024-01-08", TotalCalls: 2, Correct: 1, Wrong: 1,
		Accuracy: 50, BestCall: "A", WorstCall: "B", Lesson: "C",
	}, score)
}

func TestBuildPrompt(t *testing.T) {
	r := &Rollup{
		WeekOf: "2024-01-08", Total: 2, Correct: 1, Wrong: 1, Accuracy: 50,
		Calls: []performance.Recommendation{{
			Date: "2024-01-09", Ticker: "AAPL", Direction: performance.Bullish,
			Confidence: 60, Summary: "gap fill", Outcome: performance.OutcomeCorrect, ReviewNotes: "filled",
		}},
	}

	prompt := BuildPrompt(r, "")
	assert.Contains(t, prompt, "week of 2024-01-08")
	assert.Contains(t, prompt, "- 2024-01-09 AAPL bullish (60%): gap fill -> correct (filled)")
	assert.Contains(t, prompt, "BEST CALL:")
}
