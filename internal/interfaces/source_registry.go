// Package interfaces provides service interfaces for dependency injection.
package interfaces

import (
	"context"

	"github.com/ternarybob/refero/internal/models"
)

// SourceRegistry is the authoritative store of known document sources.
// Entries are immutable once registered and live for the process lifetime.
type SourceRegistry interface {
	// Register validates the URL and stores a new source, returning the
	// assigned sequential ID. IDs are strings of a strictly increasing
	// integer sequence starting at "1" and are never reused.
	Register(ctx context.Context, url, description string) (string, error)

	// List returns a snapshot of all registered sources as a map of
	// source ID to URL. The returned map is a copy, not a live view.
	List(ctx context.Context) map[string]string

	// Resolve returns the sources whose IDs are present in ids, in
	// insertion order. Unknown IDs are silently skipped. Empty or nil ids
	// returns all registered sources.
	Resolve(ctx context.Context, ids []string) []*models.DocumentSource

	// LoadFromFile loads sources from a JSON file into the registry and
	// returns the number of sources added. File entries are either bare
	// URL strings or {url, description} objects keyed by integer ID.
	LoadFromFile(ctx context.Context, path string) (int, error)
}
