package jobs

import (
	"github.com/wonny/analyst/internal/export"
	"github.com/wonny/analyst/internal/knowledge"
	"github.com/wonny/analyst/internal/llm"
	"github.com/wonny/analyst/internal/performance"
	"github.com/wonny/analyst/internal/profile"
	"github.com/wonny/analyst/internal/scan"
	"github.com/wonny/analyst/internal/scheduler"
	"github.com/wonny/analyst/pkg/logger"
)

// Deps are the components the standard jobs need
type Deps struct {
	Ledger     *performance.Store
	Profiles   *profile.Store
	Knowledge  *knowledge.Store
	Maintainer *knowledge.Maintainer
	Exporter   *export.Exporter
	Generator  llm.Generator
	Logger     *logger.Logger
}

// All builds the standard job set in dispatch order
func All(d Deps) []scheduler.Job {
	log := d.Logger.Component("jobs")
	scanner := scan.NewScanner(d.Generator, d.Ledger, d.Profiles, d.Knowledge, d.Logger)

	return []scheduler.Job{
		NewMorningScanJob(scanner, log),
		NewEODScanJob(scanner, log),
		NewNightlyReviewJob(d.Ledger, d.Profiles, d.Generator, d.Exporter, log),
		NewWeeklyReviewJob(d.Ledger, d.Profiles, d.Generator, log),
		NewKnowledgeMaintenanceJob(d.Maintainer, d.Exporter, log),
	}
}

// Register adds the standard job set to s
func Register(s *scheduler.Scheduler, d Deps) error {
	for _, job := range All(d) {
		if err := s.AddJob(job); err != nil {
			return err
		}
	}
	return nil
}
