package jobs

import (
	"context"

	"github.com/wonny/analyst/internal/scan"
	"github.com/wonny/analyst/internal/scheduler"
	"github.com/wonny/analyst/pkg/logger"
)

// ScanJob issues calls from a morning or end-of-day scan
// ⭐ SSOT: 스캔 스케줄은 이 Job에서만
type ScanJob struct {
	kind    scan.Kind
	scanner *scan.Scanner
	window  scheduler.Window
	logger  *logger.Logger
}

// NewMorningScanJob runs weekdays at 08:30 local
func NewMorningScanJob(scanner *scan.Scanner, log *logger.Logger) *ScanJob {
	return &ScanJob{kind: scan.Morning, scanner: scanner, window: scheduler.Weekdays(8, 30), logger: log}
}

// NewEODScanJob runs weekdays at 16:30 local
func NewEODScanJob(scanner *scan.Scanner, log *logger.Logger) *ScanJob {
	return &ScanJob{kind: scan.EndOfDay, scanner: scanner, window: scheduler.Weekdays(16, 30), logger: log}
}

// Name returns the job name
func (j *ScanJob) Name() string {
	return string(j.kind) + "_scan"
}

// Window returns the trigger window
func (j *ScanJob) Window() scheduler.Window {
	return j.window
}

// Run executes the scan
func (j *ScanJob) Run(ctx context.Context) error {
	j.logger.WithField("kind", j.kind).Info("Starting scheduled scan")

	out, err := j.scanner.Run(ctx, j.kind)
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"artifact": out.Artifact,
		"calls":    len(out.Recorded),
	}).Info("Scheduled scan completed")
	return nil
}
