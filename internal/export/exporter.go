// Package export writes the read-only snapshot consumed by a sibling
// system. This process is the only writer; the file is replaced wholesale.
package export

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/wonny/analyst/internal/knowledge"
	"github.com/wonny/analyst/internal/performance"
	"github.com/wonny/analyst/internal/profile"
	"github.com/wonny/analyst/pkg/logger"
)

// Snapshot section sizes
const (
	RecentNotes = 5
	RecentCalls = 10
)

// Exporter builds and writes the snapshot document
type Exporter struct {
	fs        afero.Fs
	path      string
	ledger    *performance.Store
	profiles  *profile.Store
	knowledge *knowledge.Store
	now       func() time.Time
	logger    *logger.Logger
}

// NewExporter creates an exporter writing to path
func NewExporter(fsys afero.Fs, path string, ledger *performance.Store, profiles *profile.Store, kb *knowledge.Store, now func() time.Time, log *logger.Logger) *Exporter {
	if now == nil {
		now = time.Now
	}
	return &Exporter{
		fs:        fsys,
		path:      path,
		ledger:    ledger,
		profiles:  profiles,
		knowledge: kb,
		now:       now,
		logger:    log.Component("export"),
	}
}

// Path returns the snapshot location
func (e *Exporter) Path() string {
	return e.path
}

// Export regenerates the snapshot and overwrites the target
func (e *Exporter) Export(ctx context.Context) error {
	doc := e.Build(ctx)

	if err := e.fs.MkdirAll(filepath.Dir(e.path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := afero.WriteFile(e.fs, e.path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write export snapshot: %w", err)
	}

	e.logger.WithFields(map[string]interface{}{
		"path":  e.path,
		"bytes": len(doc),
	}).Debug("Snapshot exported")
	return nil
}

// Build renders the snapshot markdown
func (e *Exporter) Build(ctx context.Context) string {
	st := e.ledger.Load(ctx)
	p := e.profiles.Load()

	var b strings.Builder
	b.WriteString("# Analyst Snapshot\n\n")
	fmt.Fprintf(&b, "_Generated %s_\n\n", e.now().Format(time.RFC3339))

	b.WriteString("## Investor Profile\n\n")
	b.WriteString(p.Summary())
	b.WriteString("\n\n")

	acc := performance.OverallAccuracy(st.Recommendations)
	b.WriteString("## Accuracy\n\n")
	if acc.Total == 0 {
		b.WriteString("No reviewed calls yet.\n\n")
	} else {
		fmt.Fprintf(&b, "%.0f%% across %d reviewed calls (%d correct, %d partial, %d wrong)\n\n",
			acc.Accuracy, acc.Total, acc.Correct, acc.Partial, acc.Wrong)
	}

	b.WriteString("## Latest Week\n\n")
	if n := len(st.WeeklyScores); n == 0 {
		b.WriteString("No weekly score yet.\n\n")
	} else {
		w := st.WeeklyScores[n-1]
		fmt.Fprintf(&b, "Week of %s: %.0f%% over %d calls\n\n", w.WeekOf, w.Accuracy, w.TotalCalls)
		fmt.Fprintf(&b, "- Best: %s\n- Worst: %s\n- Lesson: %s\n\n", w.BestCall, w.WorstCall, w.Lesson)
	}

	b.WriteString("## Knowledge Store\n\n")
	if stats, err := e.knowledge.Stats(); err != nil {
		e.logger.WithError(err).Warn("Knowledge stats unavailable")
		b.WriteString("Unavailable.\n\n")
	} else {
		fmt.Fprintf(&b, "%s artifacts, %s\n\n", humanize.Comma(int64(stats.Files)), humanize.Bytes(uint64(stats.Bytes)))
	}

	b.WriteString("## Strategy Notes\n\n")
	notes := performance.Recent(st.StrategyNotes, RecentNotes)
	if len(notes) == 0 {
		b.WriteString("None recorded.\n")
	}
	for _, n := range notes {
		b.WriteString("- " + n + "\n")
	}
	b.WriteString("\n")

	b.WriteString("## Recent Calls\n\n")
	calls := performance.Recent(st.Recommendations, RecentCalls)
	if len(calls) == 0 {
		b.WriteString("None recorded.\n")
	} else {
		b.WriteString("| Date | Ticker | Direction | Confidence | Outcome |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, r := range calls {
			fmt.Fprintf(&b, "| %s | %s | %s | %d | %s |\n", r.Date, r.Ticker, r.Direction, r.Confidence, r.Outcome)
		}
	}

	return b.String()
}
