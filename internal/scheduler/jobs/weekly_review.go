package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/analyst/internal/aggregation"
	"github.com/wonny/analyst/internal/llm"
	"github.com/wonny/analyst/internal/performance"
	"github.com/wonny/analyst/internal/profile"
	"github.com/wonny/analyst/internal/scheduler"
	"github.com/wonny/analyst/pkg/logger"
)

// WeeklyReviewJob appends the week's score
type WeeklyReviewJob struct {
	ledger    *performance.Store
	profiles  *profile.Store
	generator llm.Generator
	logger    *logger.Logger
}

// NewWeeklyReviewJob creates a new weekly review job
func NewWeeklyReviewJob(ledger *performance.Store, profiles *profile.Store, gen llm.Generator, log *logger.Logger) *WeeklyReviewJob {
	return &WeeklyReviewJob{
		ledger:    ledger,
		profiles:  profiles,
		generator: gen,
		logger:    log,
	}
}

// Name returns the job name
func (j *WeeklyReviewJob) Name() string {
	return "weekly_review"
}

// Window returns the trigger window (Friday 20:30 local)
func (j *WeeklyReviewJob) Window() scheduler.Window {
	return scheduler.Weekly(time.Friday, 20, 30)
}

// Run executes the weekly rollup. Fewer than two reviewed calls is a quiet no-op.
func (j *WeeklyReviewJob) Run(ctx context.Context) error {
	now := j.ledger.Now()
	st := j.ledger.Load(ctx)

	rollup, ok := aggregation.Summarize(st.Recommendations, now, now.Location())
	if !ok {
		j.logger.Debug("Not enough reviewed calls for a weekly score")
		return nil
	}

	text, err := j.generator.Generate(ctx, aggregation.BuildPrompt(rollup, j.profiles.Load().Summary()))
	if err != nil {
		return fmt.Errorf("weekly review generation: %w", err)
	}

	narrative := aggregation.ExtractNarrative(text)
	lesson := ""
	if narrative.LessonFound {
		lesson = narrative.Lesson
	}

	if err := j.ledger.AddWeeklyScore(ctx, rollup.Score(narrative), lesson); err != nil {
		return fmt.Errorf("record weekly score: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"week_of":  rollup.WeekOf,
		"calls":    rollup.Total,
		"accuracy": rollup.Accuracy,
	}).Info("Weekly score recorded")
	return nil
}
