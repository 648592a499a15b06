package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/analyst/internal/export"
	"github.com/wonny/analyst/internal/knowledge"
	"github.com/wonny/analyst/internal/scheduler"
	"github.com/wonny/analyst/pkg/logger"
)

// KnowledgeMaintenanceJob consolidates and prunes the knowledge store
type KnowledgeMaintenanceJob struct {
	maintainer *knowledge.Maintainer
	exporter   *export.Exporter
	logger     *logger.Logger
}

// NewKnowledgeMaintenanceJob creates a new maintenance job
func NewKnowledgeMaintenanceJob(m *knowledge.Maintainer, exp *export.Exporter, log *logger.Logger) *KnowledgeMaintenanceJob {
	return &KnowledgeMaintenanceJob{
		maintainer: m,
		exporter:   exp,
		logger:     log,
	}
}

// Name returns the job name
func (j *KnowledgeMaintenanceJob) Name() string {
	return "weekly_maintenance"
}

// Window returns the trigger window (Saturday 09:00 local)
func (j *KnowledgeMaintenanceJob) Window() scheduler.Window {
	return scheduler.Weekly(time.Saturday, 9, 0)
}

// Run executes both sweeps, then refreshes the snapshot
func (j *KnowledgeMaintenanceJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled knowledge maintenance")

	var errs []error

	consolidated, err := j.maintainer.Consolidate()
	if err != nil {
		errs = append(errs, fmt.Errorf("consolidate: %w", err))
	}
	pruned, err := j.maintainer.Prune()
	if err != nil {
		errs = append(errs, fmt.Errorf("prune: %w", err))
	}

	if consolidated.Changed() || pruned.Changed() {
		j.logger.WithFields(map[string]interface{}{
			"summaries_written": consolidated.Processed,
			"daily_removed":     consolidated.Deleted,
			"analysis_aged":     pruned.Processed,
			"analysis_removed":  pruned.Deleted,
		}).Info("Knowledge maintenance completed")
	}

	if err := j.exporter.Export(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
