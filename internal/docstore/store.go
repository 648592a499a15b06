// Package docstore persists whole structured documents by name. Every Save
// overwrites the previous body; there is no partial update.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no document exists under the name
var ErrNotFound = errors.New("document not found")

// Store loads and saves whole documents
type Store interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
}
