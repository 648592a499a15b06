package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// MinWindowWidth absorbs poll jitter; a window narrower than this is widened
const MinWindowWidth = 5 * time.Minute

// Job represents a scheduled job
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	// Name returns the job name, also used as the day-guard key
	Name() string

	// Run executes the job
	Run(ctx context.Context) error

	// Window returns the local-time trigger window
	Window() Window
}

// Window is a daily trigger interval on selected weekdays, in the
// scheduler's timezone
type Window struct {
	Days   []time.Weekday
	Hour   int
	Minute int
	Width  time.Duration
}

// Weekdays returns a Monday-Friday window starting at hour:minute
func Weekdays(hour, minute int) Window {
	return Window{
		Days:   []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		Hour:   hour,
		Minute: minute,
		Width:  MinWindowWidth,
	}
}

// Weekly returns a single-day window starting at hour:minute
func Weekly(day time.Weekday, hour, minute int) Window {
	return Window{
		Days:   []time.Weekday{day},
		Hour:   hour,
		Minute: minute,
		Width:  MinWindowWidth,
	}
}

func (w Window) width() time.Duration {
	if w.Width < MinWindowWidth {
		return MinWindowWidth
	}
	return w.Width
}

// Contains reports whether the local time t falls in [start, start+width)
func (w Window) Contains(t time.Time) bool {
	matched := false
	for _, d := range w.Days {
		if t.Weekday() == d {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	y, m, d := t.Date()
	start := time.Date(y, m, d, w.Hour, w.Minute, 0, 0, t.Location())
	return !t.Before(start) && t.Before(start.Add(w.width()))
}

func (w Window) validate() error {
	if len(w.Days) == 0 {
		return fmt.Errorf("window has no weekdays")
	}
	if w.Hour < 0 || w.Hour > 23 || w.Minute < 0 || w.Minute > 59 {
		return fmt.Errorf("window start %02d:%02d out of range", w.Hour, w.Minute)
	}
	return nil
}

// String renders e.g. "Mon,Tue,Wed,Thu,Fri 08:30+5m0s"
func (w Window) String() string {
	days := make([]string, len(w.Days))
	for i, d := range w.Days {
		days[i] = d.String()[:3]
	}
	return fmt.Sprintf("%s %02d:%02d+%s", strings.Join(days, ","), w.Hour, w.Minute, w.width())
}

// JobResult represents the result of a job execution
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Manual    bool          `json:"manual,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// maxHistory bounds the results kept per job
const maxHistory = 100

// JobHistory stores job execution history
type JobHistory struct {
	Results []JobResult
}

// AddResult adds a job result to history
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)

	if len(h.Results) > maxHistory {
		h.Results = h.Results[len(h.Results)-maxHistory:]
	}
}

// GetLatestResults returns the latest N results
func (h *JobHistory) GetLatestResults(n int) []JobResult {
	if n > len(h.Results) {
		n = len(h.Results)
	}
	if n <= 0 {
		return []JobResult{}
	}

	out := make([]JobResult, n)
	copy(out, h.Results[len(h.Results)-n:])
	return out
}

// GetFailedResults returns all failed results
func (h *JobHistory) GetFailedResults() []JobResult {
	failed := make([]JobResult, 0)
	for _, result := range h.Results {
		if !result.Success {
			failed = append(failed, result)
		}
	}
	return failed
}

// GetSuccessRate returns the success rate (0.0 - 1.0)
func (h *JobHistory) GetSuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0.0
	}

	successCount := 0
	for _, result := range h.Results {
		if result.Success {
			successCount++
		}
	}

	return float64(successCount) / float64(len(h.Results))
}
