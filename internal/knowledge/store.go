// Package knowledge manages the directory of dated text artifacts that
// make up the analyst's accumulated history.
package knowledge

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Category is derived from the artifact filename prefix
type Category string

const (
	CategoryDaily    Category = "daily"
	CategoryAnalysis Category = "analysis"
	CategorySummary  Category = "summary"
	CategoryOther    Category = "other"
)

// SummaryPrefix names weekly consolidation outputs: weekly-summary-<monday>.md
const SummaryPrefix = "weekly-summary-"

var (
	dailyPrefixes    = []string{"morning-scan-", "eod-scan-", "sentiment-", "market-news-"}
	analysisPrefixes = []string{"analysis-", "deep-dive-", "earnings-"}
)

// Classify returns the category encoded in name
func Classify(name string) Category {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, SummaryPrefix) {
		return CategorySummary
	}
	for _, p := range dailyPrefixes {
		if strings.HasPrefix(lower, p) {
			return CategoryDaily
		}
	}
	for _, p := range analysisPrefixes {
		if strings.HasPrefix(lower, p) {
			return CategoryAnalysis
		}
	}
	return CategoryOther
}

// ArtifactInfo describes one artifact without its content
type ArtifactInfo struct {
	Name       string
	Size       int64
	ModifiedAt time.Time
}

// Artifact is an artifact with content loaded
type Artifact struct {
	ArtifactInfo
	Content string
}

// Store lists, reads, writes and deletes artifacts by filename
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore creates a store rooted at dir
func NewStore(fsys afero.Fs, dir string) *Store {
	return &Store{fs: fsys, dir: dir}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// List returns every regular file in the store sorted by name.
// A missing directory is an empty store.
func (s *Store) List() ([]ArtifactInfo, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []ArtifactInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list knowledge dir: %w", err)
	}

	infos := make([]ArtifactInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".tmp") {
			continue
		}
		infos = append(infos, ArtifactInfo{
			Name:       e.Name(),
			Size:       e.Size(),
			ModifiedAt: e.ModTime(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Read loads an artifact's content
func (s *Store) Read(name string) (string, error) {
	data, err := afero.ReadFile(s.fs, s.path(name))
	if err != nil {
		return "", fmt.Errorf("read artifact %s: %w", name, err)
	}
	return string(data), nil
}

// Exists reports whether an artifact is present
func (s *Store) Exists(name string) bool {
	ok, err := afero.Exists(s.fs, s.path(name))
	return err == nil && ok
}

// Write creates or replaces an artifact
func (s *Store) Write(name, content string) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create knowledge dir: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path(name), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", name, err)
	}
	return nil
}

// Delete removes an artifact
func (s *Store) Delete(name string) error {
	if err := s.fs.Remove(s.path(name)); err != nil {
		return fmt.Errorf("delete artifact %s: %w", name, err)
	}
	return nil
}

// Stats summarizes the store's size
type Stats struct {
	Files      int              `json:"files"`
	Bytes      int64            `json:"bytes"`
	ByCategory map[Category]int `json:"by_category"`
	Oldest     *time.Time       `json:"oldest,omitempty"`
	Newest     *time.Time       `json:"newest,omitempty"`
}

// Stats walks the listing once
func (s *Store) Stats() (Stats, error) {
	infos, err := s.List()
	if err != nil {
		return Stats{}, err
	}

	st := Stats{ByCategory: make(map[Category]int)}
	for _, info := range infos {
		st.Files++
		st.Bytes += info.Size
		st.ByCategory[Classify(info.Name)]++

		mod := info.ModifiedAt
		if st.Oldest == nil || mod.Before(*st.Oldest) {
			st.Oldest = &mod
		}
		if st.Newest == nil || mod.After(*st.Newest) {
			st.Newest = &mod
		}
	}
	return st, nil
}
