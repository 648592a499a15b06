// Package profile loads and saves the investor profile that frames every
// prompt and the exported snapshot.
package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/wonny/analyst/pkg/logger"
)

// Profile describes the investor the analysis is written for
type Profile struct {
	Name          string   `yaml:"name" json:"name"`
	RiskTolerance string   `yaml:"riskTolerance" json:"riskTolerance"`
	Horizon       string   `yaml:"horizon" json:"horizon"`
	Style         string   `yaml:"style" json:"style"`
	Watchlist     []string `yaml:"watchlist" json:"watchlist"`
	Sectors       []string `yaml:"sectors" json:"sectors"`
	Notes         string   `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// Default is used whenever no usable profile document exists
func Default() *Profile {
	return &Profile{
		Name:          "default",
		RiskTolerance: "moderate",
		Horizon:       "medium",
		Style:         "balanced",
		Watchlist:     []string{},
		Sectors:       []string{},
	}
}

// Summary renders the profile as a few prompt-ready lines
func (p *Profile) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Investor: %s\n", p.Name)
	fmt.Fprintf(&b, "Risk tolerance: %s\n", p.RiskTolerance)
	fmt.Fprintf(&b, "Horizon: %s\n", p.Horizon)
	fmt.Fprintf(&b, "Style: %s\n", p.Style)
	if len(p.Watchlist) > 0 {
		fmt.Fprintf(&b, "Watchlist: %s\n", strings.Join(p.Watchlist, ", "))
	}
	if len(p.Sectors) > 0 {
		fmt.Fprintf(&b, "Sectors: %s\n", strings.Join(p.Sectors, ", "))
	}
	if p.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", p.Notes)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (p *Profile) normalize() {
	def := Default()
	if strings.TrimSpace(p.Name) == "" {
		p.Name = def.Name
	}
	if p.RiskTolerance == "" {
		p.RiskTolerance = def.RiskTolerance
	}
	if p.Horizon == "" {
		p.Horizon = def.Horizon
	}
	if p.Style == "" {
		p.Style = def.Style
	}
	watch := make([]string, 0, len(p.Watchlist))
	for _, t := range p.Watchlist {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			watch = append(watch, t)
		}
	}
	p.Watchlist = watch
	if p.Sectors == nil {
		p.Sectors = []string{}
	}
}

// Store reads and writes the profile YAML document
type Store struct {
	fs     afero.Fs
	path   string
	logger *logger.Logger
}

// NewStore creates a profile store at path
func NewStore(fsys afero.Fs, path string, log *logger.Logger) *Store {
	return &Store{fs: fsys, path: path, logger: log.Component("profile")}
}

// Load returns the stored profile. Missing or corrupt documents yield the default.
func (s *Store) Load() *Profile {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.WithError(err).Warn("Failed to read profile, using default")
		}
		return Default()
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		s.logger.WithError(err).Warn("Corrupt profile document, using default")
		return Default()
	}
	p.normalize()
	return &p
}

// Save writes the whole profile document
func (s *Store) Save(p *Profile) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0o644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}
