// Package aggregation rolls reviewed recommendations up into weekly scores.
package aggregation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/wonny/analyst/internal/calendar"
	"github.com/wonny/analyst/internal/performance"
)

// MinCalls is the fewest reviewed calls that produce a weekly score
const MinCalls = 2

// LookbackDays is the trailing window for weekly selection
const LookbackDays = 7

// Fallbacks used when the narrative does not yield a field
const (
	FallbackCall   = "N/A"
	FallbackLesson = "Keep refining analysis approach"
)

// Rollup is the arithmetic half of a weekly score
type Rollup struct {
	WeekOf   string
	Calls    []performance.Recommendation
	Total    int
	Correct  int
	Wrong    int
	Partial  int
	Accuracy float64
}

// Narrative is what the weekly prose yielded
type Narrative struct {
	BestCall  string
	WorstCall string
	Lesson    string
	// LessonFound is false when Lesson holds the fallback
	LessonFound bool
}

// SelectWeek returns calls dated within the trailing LookbackDays calendar
// dates ending today
// (local to loc) that carry a terminal outcome
func SelectWeek(recs []performance.Recommendation, now time.Time, loc *time.Location) []performance.Recommendation {
	local := now.In(loc)
	from := local.AddDate(0, 0, -(LookbackDays - 1)).Format(calendar.DateLayout)
	to := local.Format(calendar.DateLayout)

	selected := make([]performance.Recommendation, 0)
	for _, r := range recs {
		if r.Outcome.IsTerminal() && r.Date >= from && r.Date <= to {
			selected = append(selected, r)
		}
	}
	return selected
}

// Summarize computes the weekly rollup. It reports false when fewer than
// MinCalls calls qualify.
func Summarize(recs []performance.Recommendation, now time.Time, loc *time.Location) (*Rollup, bool) {
	calls := SelectWeek(recs, now, loc)
	if len(calls) < MinCalls {
		return nil, false
	}

	r := &Rollup{
		WeekOf: calendar.WeekKey(now.In(loc)),
		Calls:  calls,
		Total:  len(calls),
	}
	for _, c := range calls {
		switch c.Outcome {
		case performance.OutcomeCorrect:
			r.Correct++
		case performance.OutcomeWrong:
			r.Wrong++
		case performance.OutcomePartial:
			r.Partial++
		}
	}
	r.Accuracy = performance.AccuracyPercent(r.Correct, r.Partial, r.Total)
	return r, true
}

// Score combines the rollup with the narrative
func (r *Rollup) Score(n Narrative) performance.WeeklyScore {
	return performance.WeeklyScore{
		WeekOf:     r.WeekOf,
		TotalCalls: r.Total,
		Correct:    r.Correct,
		Wrong:      r.Wrong,
		Partial:    r.Partial,
		Accuracy:   r.Accuracy,
		BestCall:   n.BestCall,
		WorstCall:  n.WorstCall,
		Lesson:     n.Lesson,
	}
}

var (
	bestPattern   = regexp.MustCompile(`(?im)^[\s*#-]*BEST(?:\s+CALL)?[\s*]*:[\s*]*(.+?)\s*$`)
	worstPattern  = regexp.MustCompile(`(?im)^[\s*#-]*WORST(?:\s+CALL)?[\s*]*:[\s*]*(.+?)\s*$`)
	lessonPattern = regexp.MustCompile(`(?im)^[\s*#-]*LESSON[\s*]*:[\s*]*(.+?)\s*$`)
)

// ExtractNarrative pulls best call, worst call and lesson out of the weekly
// prose. Missing fields fall back to fixed literals.
func ExtractNarrative(text string) Narrative {
	n := Narrative{
		BestCall:  capture(bestPattern, text),
		WorstCall: capture(worstPattern, text),
		Lesson:    capture(lessonPattern, text),
	}
	if n.BestCall == "" {
		n.BestCall = FallbackCall
	}
	if n.WorstCall == "" {
		n.WorstCall = FallbackCall
	}
	if n.Lesson == "" {
		n.Lesson = FallbackLesson
	} else {
		n.LessonFound = true
	}
	return n
}

func capture(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// BuildPrompt asks the collaborator for the weekly narrative
func BuildPrompt(r *Rollup, profile string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Weekly self-review for the week of %s.\n\n", r.WeekOf)
	if profile != "" {
		b.WriteString("Investor profile:\n" + profile + "\n\n")
	}
	fmt.Fprintf(&b, "Reviewed calls: %d (correct %d, wrong %d, partial %d), accuracy %.0f%%.\n\n",
		r.Total, r.Correct, r.Wrong, r.Partial, r.Accuracy)

	for _, c := range r.Calls {
		fmt.Fprintf(&b, "- %s %s %s (%d%%): %s -> %s", c.Date, c.Ticker, c.Direction, c.Confidence, c.Summary, c.Outcome)
		if c.ReviewNotes != "" {
			b.WriteString(" (" + c.ReviewNotes + ")")
		}
		b.WriteString("\n")
	}

	b.WriteString(`
Write a short reflection, then end with exactly these three lines:
BEST CALL: ticker and why it worked
WORST CALL: ticker and what was missed
LESSON: one concrete adjustment for next week
`)
	return b.String()
}
