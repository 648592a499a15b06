package knowledge

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wonny/analyst/internal/calendar"
	"github.com/wonny/analyst/pkg/logger"
)

// Retention windows and summary shape
const (
	ConsolidateAfter = 7 * 24 * time.Hour
	PruneAfter       = 30 * 24 * time.Hour
	ExcerptChars     = 500
	minGroupSize     = 2
)

// SweepResult counts what one sweep did
type SweepResult struct {
	Processed int `json:"processed"`
	Deleted   int `json:"deleted"`
}

// Changed reports whether the sweep touched anything
func (r SweepResult) Changed() bool {
	return r.Processed > 0 || r.Deleted > 0
}

// Maintainer consolidates and prunes artifacts.
// ⭐ SSOT: 지식 저장소 정리는 여기서만
type Maintainer struct {
	store  *Store
	now    func() time.Time
	logger *logger.Logger
}

// NewMaintainer creates a maintainer over store
func NewMaintainer(store *Store, now func() time.Time, log *logger.Logger) *Maintainer {
	if now == nil {
		now = time.Now
	}
	return &Maintainer{
		store:  store,
		now:    now,
		logger: log.Component("knowledge"),
	}
}

type member struct {
	info ArtifactInfo
	date time.Time
}

// SummaryName returns the consolidation artifact for a week key
func SummaryName(weekKey string) string {
	return SummaryPrefix + weekKey + ".md"
}

// Consolidate folds aged daily artifacts into one summary per ISO week.
//
// Week membership comes from the date embedded in the filename, not the
// modification time. Weeks with fewer than two aged members, or that
// already have a summary, are left alone, so repeated runs are no-ops.
// Processed counts summaries written; Deleted counts members removed.
func (m *Maintainer) Consolidate() (SweepResult, error) {
	var res SweepResult

	infos, err := m.store.List()
	if err != nil {
		return res, err
	}

	cutoff := m.now().Add(-ConsolidateAfter)
	groups := make(map[string][]member)
	for _, info := range infos {
		if Classify(info.Name) != CategoryDaily || !info.ModifiedAt.Before(cutoff) {
			continue
		}
		date, ok := calendar.EmbeddedDate(info.Name)
		if !ok {
			continue
		}
		key := calendar.WeekKey(date)
		groups[key] = append(groups[key], member{info: info, date: date})
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		members := groups[key]
		if len(members) < minGroupSize {
			continue
		}
		name := SummaryName(key)
		if m.store.Exists(name) {
			continue
		}

		written, deleted := m.consolidateWeek(key, name, members)
		if written {
			res.Processed++
		}
		res.Deleted += deleted
	}

	return res, nil
}

func (m *Maintainer) consolidateWeek(key, name string, members []member) (bool, int) {
	sort.Slice(members, func(i, j int) bool {
		if !members[i].date.Equal(members[j].date) {
			return members[i].date.Before(members[j].date)
		}
		return members[i].info.Name < members[j].info.Name
	})

	var b strings.Builder
	fmt.Fprintf(&b, "# Weekly Summary: week of %s\n\n", key)

	included := make([]member, 0, len(members))
	for _, mem := range members {
		content, err := m.store.Read(mem.info.Name)
		if err != nil {
			m.logger.WithError(err).WithField("artifact", mem.info.Name).Warn("Skipping unreadable artifact")
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", mem.info.Name, excerpt(content, ExcerptChars))
		included = append(included, mem)
	}
	if len(included) == 0 {
		return false, 0
	}

	if err := m.store.Write(name, b.String()); err != nil {
		// Members stay in place so nothing is lost.
		m.logger.WithError(err).WithField("summary", name).Error("Failed to write weekly summary")
		return false, 0
	}

	deleted := 0
	for _, mem := range included {
		if err := m.store.Delete(mem.info.Name); err != nil {
			m.logger.WithError(err).WithField("artifact", mem.info.Name).Warn("Failed to delete consolidated artifact")
			continue
		}
		deleted++
	}
	return true, deleted
}

// Prune deletes analysis artifacts older than PruneAfter. Processed counts
// aged candidates; Deleted counts successful removals.
func (m *Maintainer) Prune() (SweepResult, error) {
	var res SweepResult

	infos, err := m.store.List()
	if err != nil {
		return res, err
	}

	cutoff := m.now().Add(-PruneAfter)
	for _, info := range infos {
		if Classify(info.Name) != CategoryAnalysis || !info.ModifiedAt.Before(cutoff) {
			continue
		}
		res.Processed++
		if err := m.store.Delete(info.Name); err != nil {
			m.logger.WithError(err).WithField("artifact", info.Name).Warn("Failed to prune artifact")
			continue
		}
		res.Deleted++
	}
	return res, nil
}

// excerpt returns the first n characters of s
func excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
