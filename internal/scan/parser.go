// Package scan issues dated directional calls from the morning and
// end-of-day market scans.
package scan

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/wonny/analyst/internal/performance"
)

// CALL: TICKER | direction | confidence | type | summary
var callLine = regexp.MustCompile(`(?i)^[\s*#-]*CALL:\s*(.+)$`)

// ParseResult holds the calls found in one scan response
type ParseResult struct {
	Calls     []performance.NewRecommendation
	Malformed int
}

// Parse extracts CALL lines from text. Lines that start with CALL: but do
// not carry five usable fields are counted as malformed; other lines are prose.
func Parse(text string) ParseResult {
	res := ParseResult{Calls: []performance.NewRecommendation{}}

	for _, line := range strings.Split(text, "\n") {
		m := callLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		call, ok := parseFields(m[1])
		if !ok {
			res.Malformed++
			continue
		}
		res.Calls = append(res.Calls, call)
	}
	return res
}

func parseFields(body string) (performance.NewRecommendation, bool) {
	parts := strings.SplitN(body, "|", 5)
	if len(parts) != 5 {
		return performance.NewRecommendation{}, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	ticker := strings.ToUpper(strings.Trim(parts[0], "$*[] "))
	if ticker == "" || strings.ContainsAny(ticker, " \t") {
		return performance.NewRecommendation{}, false
	}

	dir, ok := performance.ParseDirection(parts[1])
	if !ok {
		return performance.NewRecommendation{}, false
	}

	conf, err := strconv.Atoi(strings.TrimSuffix(parts[2], "%"))
	if err != nil {
		return performance.NewRecommendation{}, false
	}

	return performance.NewRecommendation{
		Ticker:     ticker,
		Direction:  dir,
		Confidence: conf,
		Type:       parts[3],
		Summary:    parts[4],
	}, true
}
