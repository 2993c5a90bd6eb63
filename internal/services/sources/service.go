package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/refero/internal/models"
)

// Service is the in-memory document source registry. IDs are strings of a
// strictly increasing integer sequence starting at "1"; entries are
// append-only for the process lifetime.
type Service struct {
	mu      sync.Mutex
	entries map[string]*models.DocumentSource
	order   []string
	nextID  int
	logger  arbor.ILogger
}

// NewService creates a new source registry
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		entries: make(map[string]*models.DocumentSource),
		nextID:  1,
		logger:  logger,
	}
}

// Register validates and stores a new document source, returning the
// assigned ID. A malformed URL fails with InvalidSourceError and leaves
// the registry unchanged.
func (s *Service) Register(ctx context.Context, url, description string) (string, error) {
	source := &models.DocumentSource{
		URL:         url,
		Description: description,
	}

	// Validate before taking the lock - no mutation on failure
	if err := source.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	source.ID = strconv.Itoa(s.nextID)
	s.nextID++

	s.entries[source.ID] = source
	s.order = append(s.order, source.ID)

	s.logger.Info().
		Str("id", source.ID).
		Str("url", source.URL).
		Msg("Document source registered")

	return source.ID, nil
}

// List returns a snapshot of all registered sources as ID -> URL
func (s *Service) List(ctx context.Context) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing := make(map[string]string, len(s.entries))
	for id, source := range s.entries {
		listing[id] = source.URL
	}
	return listing
}

// Resolve returns the sources matching ids in insertion order. Unknown IDs
// are silently skipped. Empty or nil ids returns all registered sources.
func (s *Service) Resolve(ctx context.Context, ids []string) []*models.DocumentSource {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) == 0 {
		resolved := make([]*models.DocumentSource, 0, len(s.order))
		for _, id := range s.order {
			resolved = append(resolved, s.copyEntry(id))
		}
		return resolved
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var resolved []*models.DocumentSource
	for _, id := range s.order {
		if wanted[id] {
			resolved = append(resolved, s.copyEntry(id))
		}
	}
	return resolved
}

// copyEntry returns a copy of the stored source. Callers must hold s.mu.
func (s *Service) copyEntry(id string) *models.DocumentSource {
	entry := *s.entries[id]
	return &entry
}

// sourceFileEntry is the object form of an on-disk preload entry. File
// values are either bare URL strings or {url, description} objects keyed
// by integer ID.
type sourceFileEntry struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// LoadFromFile loads document sources from a JSON file. The load is atomic:
// every entry is validated before any is added. Returns the number of
// sources added.
func (s *Service) LoadFromFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read sources file %s: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, fmt.Errorf("failed to parse sources file %s: %w", path, err)
	}

	staged := make(map[string]*models.DocumentSource, len(raw))
	ids := make([]int, 0, len(raw))

	for key, value := range raw {
		// Keys must be canonical so the duplicate check and map inserts
		// agree on a single spelling per ID ("01" aliasing "1" would
		// corrupt the registry)
		id, err := strconv.Atoi(key)
		if err != nil || id < 1 || key != strconv.Itoa(id) {
			return 0, fmt.Errorf("invalid source ID %q in %s: IDs must be positive integers without leading zeros or signs", key, path)
		}

		source := &models.DocumentSource{ID: key}

		// Accept either a bare URL string or a {url, description} object
		var url string
		if err := json.Unmarshal(value, &url); err == nil {
			source.URL = url
		} else {
			var entry sourceFileEntry
			if err := json.Unmarshal(value, &entry); err != nil {
				return 0, fmt.Errorf("invalid source entry for ID %s in %s: %w", key, path, err)
			}
			source.URL = entry.URL
			source.Description = entry.Description
		}

		if err := source.Validate(); err != nil {
			return 0, fmt.Errorf("source %s in %s: %w", key, path, err)
		}

		staged[key] = source
		ids = append(ids, id)
	}

	sort.Ints(ids)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		key := strconv.Itoa(id)
		if _, exists := s.entries[key]; exists {
			return 0, fmt.Errorf("source ID %s from %s is already registered", key, path)
		}
	}

	for _, id := range ids {
		key := strconv.Itoa(id)
		s.entries[key] = staged[key]
		s.order = append(s.order, key)
		if id >= s.nextID {
			s.nextID = id + 1
		}
	}

	s.logger.Info().
		Int("count", len(ids)).
		Str("path", path).
		Msg("Document sources loaded from file")

	return len(ids), nil
}
