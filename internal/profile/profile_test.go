package profile

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/analyst/pkg/logger"
)

func TestStore_LoadMissingReturnsDefault(t *testing.T) {
	s := NewStore(afero.NewMemMapFs(), "/data/profile.yaml", logger.Nop())

	p := s.Load()
	assert.Equal(t, Default(), p)
}

func TestStore_LoadCorruptReturnsDefault(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/data/profile.yaml", []byte("name: [unclosed"), 0o644))

	p := NewStore(fsys, "/data/profile.yaml", logger.Nop()).Load()
	assert.Equal(t, "default", p.Name)
}

func TestStore_SaveLoad(t *testing.T) {
	s := NewStore(afero.NewMemMapFs(), "/data/profile.yaml", logger.Nop())

	in := &Profile{
		Name:          "growth",
		RiskTolerance: "high",
		Horizon:       "months",
		Style:         "momentum",
		Watchlist:     []string{"nvda", " amd ", ""},
		Sectors:       []string{"semiconductors"},
	}
	require.NoError(t, s.Save(in))

	out := s.Load()
	assert.Equal(t, "growth", out.Name)
	assert.Equal(t, []string{"NVDA", "AMD"}, out.Watchlist)
	assert.Equal(t, []string{"semiconductors"}, out.Sectors)
}

func TestStore_LoadFillsMissingFields(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/p.yaml", []byte("name: partial\n"), 0o644))

	p := NewStore(fsys, "/p.yaml", logger.Nop()).Load()
	assert.Equal(t, "partial", p.Name)
	assert.Equal(t, "moderate", p.RiskTolerance)
	assert.NotNil(t, p.Sectors)
	assert.Empty(t, p.Watchlist)
}

func TestProfile_Summary(t *testing.T) {
	p := Default()
	p.Watchlist = []string{"SPY", "QQQ"}
	p.Notes = "avoid leverage"

	s := p.Summary()
	assert.Contains(t, s, "Investor: default")
	assert.Contains(t, s, "Horizon: medium")
	assert.Contains(t, s, "Watchlist: SPY, QQQ")
	assert.NotContains(t, s, "Sectors:")
	assert.Contains(t, s, "Notes: avoid leverage")
}
