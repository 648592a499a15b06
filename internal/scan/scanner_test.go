package scan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/analyst/internal/docstore"
	"github.com/wonny/analyst/internal/knowledge"
	"github.com/wonny/analyst/internal/llm"
	"github.com/wonny/analyst/internal/performance"
	"github.com/wonny/analyst/internal/profile"
	"github.com/wonny/analyst/pkg/logger"
)

type scanFixture struct {
	ledger *performance.Store
	kb     *knowledge.Store
	prompt string
}

func newScanner(t *testing.T, fx *scanFixture, reply string, replyErr error) *Scanner {
	t.Helper()
	fsys := afero.NewMemMapFs()
	now := time.Date(2024, 3, 4, 13, 30, 0, 0, time.UTC)

	fx.ledger = performance.NewStore(docstore.NewFileStore(fsys, "/data"), "performance", time.UTC, logger.Nop(),
		performance.WithClock(func() time.Time { return now }))
	fx.kb = knowledge.NewStore(fsys, "/data/knowledge")
	profiles := profile.NewStore(fsys, "/data/profile.yaml", logger.Nop())

	gen := llm.Func(func(_ context.Context, prompt string) (string, error) {
		fx.prompt = prompt
		return reply, replyErr
	})
	return NewScanner(gen, fx.ledger, profiles, fx.kb, logger.Nop())
}

func TestScanner_RecordsCallsAndWritesArtifact(t *testing.T) {
	fx := &scanFixture{}
	s := newScanner(t, fx, "Open looks firm.\nCALL: NVDA | bullish | 80 | momentum | breakout\nCALL: bad", nil)

	out, err := s.Run(context.Background(), Morning)
	require.NoError(t, err)
	assert.Equal(t, "morning-scan-2024-03-04.md", out.Artifact)
	assert.Equal(t, 1, out.Malformed)
	require.Len(t, out.Recorded, 1)
	assert.Equal(t, "2024-03-04", out.Recorded[0].Date)

	st := fx.ledger.Load(context.Background())
	require.Len(t, st.Recommendations, 1)
	assert.Equal(t, performance.OutcomePending, st.Recommendations[0].Outcome)

	content, err := fx.kb.Read("morning-scan-2024-03-04.md")
	require.NoError(t, err)
	assert.Contains(t, content, "Open looks firm.")
	assert.Contains(t, fx.prompt, "Investor: default")
	assert.Contains(t, fx.prompt, "CALL: TICKER")
}

func TestScanner_GeneratorFailureWritesNothing(t *testing.T) {
	fx := &scanFixture{}
	s := newScanner(t, fx, "", errors.New("timeout"))

	_, err := s.Run(context.Background(), EndOfDay)
	require.Error(t, err)

	assert.False(t, fx.kb.Exists("eod-scan-2024-03-04.md"))
	assert.Empty(t, fx.ledger.Load(context.Background()).Recommendations)
}
