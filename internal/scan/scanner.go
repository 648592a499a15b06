package scan

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/analyst/internal/knowledge"
	"github.com/wonny/analyst/internal/llm"
	"github.com/wonny/analyst/internal/performance"
	"github.com/wonny/analyst/internal/profile"
	"github.com/wonny/analyst/pkg/logger"
)

// Kind selects the scan flavor
type Kind string

const (
	Morning  Kind = "morning"
	EndOfDay Kind = "eod"
)

// ArtifactName returns the knowledge artifact written for a scan on date
func (k Kind) ArtifactName(date string) string {
	return fmt.Sprintf("%s-scan-%s.md", k, date)
}

func (k Kind) focus() string {
	if k == EndOfDay {
		return "Review today's session: what moved, what broke out or down, and what matters for tomorrow."
	}
	return "Prepare for today's open: overnight moves, pre-market movers and levels to watch."
}

// Outcome summarizes one scan run
type Outcome struct {
	Artifact  string
	Recorded  []performance.Recommendation
	Malformed int
	Rejected  int
}

// Scanner prompts the collaborator, records its calls and stores the response
type Scanner struct {
	generator   llm.Generator
	ledger      *performance.Store
	profiles    *profile.Store
	knowledge   *knowledge.Store
	recentCalls int
	logger      *logger.Logger
}

// NewScanner wires a scanner
func NewScanner(gen llm.Generator, ledger *performance.Store, profiles *profile.Store, kb *knowledge.Store, log *logger.Logger) *Scanner {
	return &Scanner{
		generator:   gen,
		ledger:      ledger,
		profiles:    profiles,
		knowledge:   kb,
		recentCalls: 10,
		logger:      log.Component("scan"),
	}
}

// Run performs one scan. A collaborator failure aborts the scan before
// anything is written.
func (s *Scanner) Run(ctx context.Context, kind Kind) (*Outcome, error) {
	st := s.ledger.Load(ctx)
	prompt := BuildPrompt(kind, s.profiles.Load(), performance.Recent(st.Recommendations, s.recentCalls), performance.Recent(st.StrategyNotes, 5))

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%s scan: %w", kind, err)
	}

	date := s.ledger.Today()
	parsed := Parse(text)
	out := &Outcome{
		Artifact:  kind.ArtifactName(date),
		Malformed: parsed.Malformed,
	}

	for _, call := range parsed.Calls {
		call.Date = date
		rec, err := s.ledger.Record(ctx, call)
		if err != nil {
			out.Rejected++
			s.logger.WithError(err).WithField("ticker", call.Ticker).Warn("Failed to record call")
			continue
		}
		out.Recorded = append(out.Recorded, rec)
	}

	if err := s.knowledge.Write(out.Artifact, text); err != nil {
		return out, fmt.Errorf("%s scan artifact: %w", kind, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"kind":      kind,
		"recorded":  len(out.Recorded),
		"malformed": out.Malformed,
		"rejected":  out.Rejected,
	}).Info("Scan completed")

	return out, nil
}

// BuildPrompt assembles a scan request
func BuildPrompt(kind Kind, p *profile.Profile, recent []performance.Recommendation, notes []string) string {
	var b strings.Builder

	b.WriteString("You are a market analyst writing for one investor.\n\n")
	b.WriteString(p.Summary())
	b.WriteString("\n\n")
	b.WriteString(kind.focus())
	b.WriteString("\n")
	if len(p.Watchlist) == 0 {
		b.WriteString("No watchlist is set; cover the broad market and the leading names.\n")
	}

	if len(recent) > 0 {
		b.WriteString("\nYour recent calls:\n")
		for _, r := range recent {
			fmt.Fprintf(&b, "- %s %s %s (%d%%) %s\n", r.Date, r.Ticker, r.Direction, r.Confidence, r.Outcome)
		}
	}
	if len(notes) > 0 {
		b.WriteString("\nLessons to apply:\n")
		for _, n := range notes {
			b.WriteString("- " + n + "\n")
		}
	}

	b.WriteString(`
Write your analysis, then list every directional call on its own line, exactly:
CALL: TICKER | bullish|bearish|neutral | confidence 0-100 | type | one-line thesis
`)
	return b.String()
}
