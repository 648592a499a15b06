// Package review turns free-form evaluation text into outcome updates.
//
// Extraction is best-effort: every line is matched on its own, and a line
// that does not fit the grammar is counted and ignored.
//
//	REVIEW: [id] | outcome | notes
//	LESSON: text
package review

import (
	"regexp"
	"strings"

	"github.com/wonny/analyst/internal/performance"
)

var (
	reviewLine = regexp.MustCompile(`(?i)^\s*REVIEW:\s*\[([^\]]+)\]\s*\|\s*([A-Za-z]+)\s*\|\s*(.*?)\s*$`)
	lessonLine = regexp.MustCompile(`(?i)^\s*LESSON:\s*(.+?)\s*$`)
)

// skipOutcome leaves the recommendation pending for a later cycle
const skipOutcome = "skip"

// Result is what one response yielded
type Result struct {
	Updates  []performance.OutcomeUpdate
	Lesson   string
	Skipped  []string // ids the reviewer deferred
	Unparsed int      // non-blank lines that matched nothing
}

// Parse extracts review tuples and the trailing lesson from text.
// When several LESSON lines appear, the last one wins.
func Parse(text string) Result {
	res := Result{Updates: []performance.OutcomeUpdate{}}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if m := reviewLine.FindStringSubmatch(line); m != nil {
			id := strings.TrimSpace(m[1])
			verdict := strings.ToLower(m[2])

			switch performance.Outcome(verdict) {
			case performance.OutcomeCorrect, performance.OutcomeWrong, performance.OutcomePartial:
				res.Updates = append(res.Updates, performance.OutcomeUpdate{
					ID:      id,
					Outcome: performance.Outcome(verdict),
					Notes:   m[3],
				})
				continue
			}
			if verdict == skipOutcome {
				res.Skipped = append(res.Skipped, id)
				continue
			}
			res.Unparsed++
			continue
		}

		if m := lessonLine.FindStringSubmatch(line); m != nil {
			res.Lesson = m[1]
			continue
		}

		res.Unparsed++
	}

	return res
}
