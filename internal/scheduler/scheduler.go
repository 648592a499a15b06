package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/analyst/internal/timegate"
	"github.com/wonny/analyst/pkg/logger"
)

// DefaultPollInterval is the tick period when none is configured
const DefaultPollInterval = time.Minute

// Scheduler polls the clock and dispatches each job at most once per local
// day, when its window is open.
// ⭐ SSOT: 스케줄 관리는 이 스케줄러에서만
//
// The check-and-mark on the gate happens synchronously inside Tick, before
// the job body starts on its own goroutine. The guard is marked whether or
// not the job later succeeds, so a failing job gets one attempt per day.
type Scheduler struct {
	cron    *cron.Cron
	gate    *timegate.Gate
	poll    time.Duration
	logger  *logger.Logger
	jobs    map[string]Job
	order   []string
	history map[string]*JobHistory
	mu      sync.RWMutex
	running sync.WaitGroup
	baseCtx context.Context
}

// New creates a new scheduler
func New(gate *timegate.Gate, poll time.Duration, log *logger.Logger) *Scheduler {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	log = log.Component("scheduler")
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(gate.Location()),
			cron.WithLogger(cronLogger{log}),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{log})),
		),
		gate:    gate,
		poll:    poll,
		logger:  log,
		jobs:    make(map[string]Job),
		history: make(map[string]*JobHistory),
		baseCtx: context.Background(),
	}
}

// AddJob registers a job. Jobs are evaluated in registration order.
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobName := job.Name()
	if _, exists := s.jobs[jobName]; exists {
		return fmt.Errorf("job %s already exists", jobName)
	}
	if err := job.Window().validate(); err != nil {
		return fmt.Errorf("invalid window for job %s: %w", jobName, err)
	}

	s.jobs[jobName] = job
	s.order = append(s.order, jobName)
	s.history[jobName] = &JobHistory{}

	s.logger.WithFields(map[string]interface{}{
		"job":    jobName,
		"window": job.Window().String(),
	}).Info("Job added to scheduler")

	return nil
}

// Start installs the poll entry and starts ticking. Job bodies inherit ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	spec := fmt.Sprintf("@every %s", s.poll)
	if _, err := s.cron.AddFunc(spec, func() { s.Tick() }); err != nil {
		return fmt.Errorf("failed to schedule poll loop: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"poll":     s.poll.String(),
		"timezone": s.gate.Location().String(),
	}).Info("Starting scheduler")
	s.cron.Start()
	return nil
}

// Stop stops polling and waits for dispatched jobs to finish
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
	s.running.Wait()
	s.logger.Info("Scheduler stopped")
}

// Tick evaluates every window against the current local time and returns
// the names of the jobs it dispatched
func (s *Scheduler) Tick() []string {
	now := s.gate.Now()

	s.mu.RLock()
	candidates := make([]Job, 0, len(s.order))
	for _, name := range s.order {
		candidates = append(candidates, s.jobs[name])
	}
	ctx := s.baseCtx
	s.mu.RUnlock()

	dispatched := make([]string, 0)
	for _, job := range candidates {
		if !job.Window().Contains(now) {
			continue
		}
		if !s.gate.TryMark(job.Name()) {
			continue
		}

		dispatched = append(dispatched, job.Name())
		s.running.Add(1)
		go func(j Job) {
			defer s.running.Done()
			s.runJob(ctx, j, false)
		}(job)
	}
	return dispatched
}

// Wait blocks until every dispatched job has returned
func (s *Scheduler) Wait() {
	s.running.Wait()
}

// RunJob runs a specific job immediately and synchronously, outside of its
// window and without consulting the day guard
func (s *Scheduler) RunJob(ctx context.Context, jobName string) (JobResult, error) {
	s.mu.RLock()
	job, exists := s.jobs[jobName]
	s.mu.RUnlock()

	if !exists {
		return JobResult{}, fmt.Errorf("job %s not found", jobName)
	}

	return s.runJob(ctx, job, true), nil
}

// runJob executes one job body; errors and panics stop here
func (s *Scheduler) runJob(ctx context.Context, job Job, manual bool) JobResult {
	jobName := job.Name()
	startTime := time.Now()

	s.logger.WithFields(map[string]interface{}{
		"job":    jobName,
		"manual": manual,
	}).Info("Job started")

	err := s.safeRun(ctx, job)

	endTime := time.Now()
	result := JobResult{
		JobName:   jobName,
		StartTime: startTime,
		EndTime:   endTime,
		Duration:  endTime.Sub(startTime),
		Success:   err == nil,
		Manual:    manual,
	}
	if err != nil {
		result.Error = err.Error()
	}

	s.mu.Lock()
	if history, exists := s.history[jobName]; exists {
		history.AddResult(result)
	}
	s.mu.Unlock()

	fields := map[string]interface{}{
		"job":      jobName,
		"duration": result.Duration.String(),
	}
	if err != nil {
		s.logger.WithFields(fields).WithError(err).Error("Job failed")
	} else {
		s.logger.WithFields(fields).Info("Job completed successfully")
	}

	return result
}

func (s *Scheduler) safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("job", job.Name()).
				WithField("stack", string(debug.Stack())).
				Error("Job panicked")
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return job.Run(ctx)
}

// GetJobHistory returns a copy of the history for a specific job
func (s *Scheduler) GetJobHistory(jobName string) (*JobHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, exists := s.history[jobName]
	if !exists {
		return nil, fmt.Errorf("job %s not found", jobName)
	}

	out := &JobHistory{Results: make([]JobResult, len(history.Results))}
	copy(out.Results, history.Results)
	return out, nil
}

// GetAllJobs returns all registered jobs in registration order
func (s *Scheduler) GetAllJobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]string, len(s.order))
	copy(jobs, s.order)
	return jobs
}

// GetJobStats returns statistics for all jobs
func (s *Scheduler) GetJobStats() map[string]JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]JobStats)

	for jobName, history := range s.history {
		failedResults := history.GetFailedResults()

		var lastRun, lastSuccess, lastFailure *time.Time
		for i := range history.Results {
			r := history.Results[i]
			lastRun = &r.StartTime
			if r.Success {
				lastSuccess = &r.StartTime
			} else {
				lastFailure = &r.StartTime
			}
		}

		stats[jobName] = JobStats{
			JobName:      jobName,
			Window:       s.jobs[jobName].Window().String(),
			RanToday:     s.gate.HasRun(jobName),
			TotalRuns:    len(history.Results),
			SuccessCount: len(history.Results) - len(failedResults),
			FailureCount: len(failedResults),
			SuccessRate:  history.GetSuccessRate(),
			LastRun:      lastRun,
			LastSuccess:  lastSuccess,
			LastFailure:  lastFailure,
		}
	}

	return stats
}

// SortedStats returns GetJobStats ordered by job name
func (s *Scheduler) SortedStats() []JobStats {
	stats := s.GetJobStats()
	out := make([]JobStats, 0, len(stats))
	for _, st := range stats {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JobName < out[j].JobName })
	return out
}

// JobStats represents statistics for a job
type JobStats struct {
	JobName      string     `json:"job_name"`
	Window       string     `json:"window"`
	RanToday     bool       `json:"ran_today"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
}

// cronLogger routes robfig/cron's internal logging through our logger
type cronLogger struct {
	log *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.WithFields(kvFields(keysAndValues)).Debug(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.WithFields(kvFields(keysAndValues)).WithError(err).Error(msg)
}

func kvFields(kv []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
