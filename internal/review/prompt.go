package review

import (
	"fmt"
	"strings"

	"github.com/wonny/analyst/internal/performance"
)

// MaxBatch bounds how many pending calls go into one review prompt
const MaxBatch = 15

// SelectBatch keeps the most recent MaxBatch calls
func SelectBatch(pending []performance.Recommendation) []performance.Recommendation {
	return performance.Recent(pending, MaxBatch)
}

// RenderList enumerates calls one per line, ids in brackets
func RenderList(recs []performance.Recommendation) string {
	var b strings.Builder
	for i, r := range recs {
		fmt.Fprintf(&b, "%d. [%s] %s %s %s (confidence %d%%, %s): %s\n",
			i+1, r.ID, r.Date, r.Ticker, r.Direction, r.Confidence, r.Type, r.Summary)
	}
	return b.String()
}

// BuildPrompt assembles the nightly review request
func BuildPrompt(profile string, recs []performance.Recommendation, notes []string) string {
	var b strings.Builder

	b.WriteString("You are reviewing your own earlier market calls.\n\n")
	if profile != "" {
		b.WriteString("Investor profile:\n")
		b.WriteString(profile)
		b.WriteString("\n\n")
	}
	if len(notes) > 0 {
		b.WriteString("Lessons you recorded before:\n")
		for _, n := range notes {
			b.WriteString("- " + n + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Calls awaiting a verdict:\n")
	b.WriteString(RenderList(recs))
	b.WriteString(`
For each call, judge how the price actually moved since the call date.
Answer with one line per call, exactly:
REVIEW: [id] | <correct, wrong, partial or skip> | short notes
Use skip when it is too early to judge.
Finish with one line:
LESSON: the single most useful lesson from these outcomes
`)
	return b.String()
}
