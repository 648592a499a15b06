package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/analyst/internal/export"
	"github.com/wonny/analyst/internal/llm"
	"github.com/wonny/analyst/internal/performance"
	"github.com/wonny/analyst/internal/profile"
	"github.com/wonny/analyst/internal/review"
	"github.com/wonny/analyst/internal/scheduler"
	"github.com/wonny/analyst/pkg/logger"
)

// NightlyReviewJob judges pending calls from earlier days
// ⭐ SSOT: 추천 결과 판정 스케줄은 이 Job에서만
//
// A collaborator failure skips the cycle. The day guard is already marked,
// so the same calls wait for tomorrow's batch alongside newly eligible ones.
type NightlyReviewJob struct {
	ledger    *performance.Store
	profiles  *profile.Store
	generator llm.Generator
	exporter  *export.Exporter
	logger    *logger.Logger
}

// NewNightlyReviewJob creates a new nightly review job
func NewNightlyReviewJob(ledger *performance.Store, profiles *profile.Store, gen llm.Generator, exp *export.Exporter, log *logger.Logger) *NightlyReviewJob {
	return &NightlyReviewJob{
		ledger:    ledger,
		profiles:  profiles,
		generator: gen,
		exporter:  exp,
		logger:    log,
	}
}

// Name returns the job name
func (j *NightlyReviewJob) Name() string {
	return "nightly_review"
}

// Window returns the trigger window (weekdays 20:00 local)
func (j *NightlyReviewJob) Window() scheduler.Window {
	return scheduler.Weekdays(20, 0)
}

// Run executes one review cycle
func (j *NightlyReviewJob) Run(ctx context.Context) error {
	pending := j.ledger.PendingReviews(ctx)
	if len(pending) == 0 {
		j.logger.Debug("No calls awaiting review")
		return j.exporter.Export(ctx)
	}

	batch := review.SelectBatch(pending)
	st := j.ledger.Load(ctx)
	prompt := review.BuildPrompt(j.profiles.Load().Summary(), batch, performance.Recent(st.StrategyNotes, 5))

	text, err := j.generator.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("nightly review generation: %w", err)
	}

	res := review.Parse(text)
	applied, err := j.ledger.BatchUpdateOutcomes(ctx, res.Updates)
	if err != nil {
		return fmt.Errorf("apply review outcomes: %w", err)
	}
	if res.Lesson != "" {
		if err := j.ledger.AddStrategyNote(ctx, res.Lesson); err != nil {
			return fmt.Errorf("record lesson: %w", err)
		}
	}
	if err := j.ledger.MarkNightlyReview(ctx); err != nil {
		return fmt.Errorf("mark nightly review: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"pending":  len(pending),
		"batch":    len(batch),
		"applied":  applied,
		"skipped":  len(res.Skipped),
		"unparsed": res.Unparsed,
		"lesson":   res.Lesson != "",
	}).Info("Nightly review completed")

	return j.exporter.Export(ctx)
}
