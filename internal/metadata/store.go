package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"coverkeep/internal/fileutil"
	"coverkeep/internal/identity"
	"coverkeep/internal/logging"
	"coverkeep/internal/services"
	"coverkeep/internal/textutil"
)

// Store holds the book metadata document in memory. Callers mutate it and
// then call Save to persist the whole mapping.
type Store struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	records *orderedRecords
}

// Open loads the document at path. A missing or unreadable document yields
// an empty store and a warning.
func Open(path string, logger *slog.Logger) *Store {
	logger = logging.NewComponentLogger(logger, "metadata")
	s := &Store{
		path:    strings.TrimSpace(path),
		logger:  logger,
		records: newOrderedRecords(),
	}
	if s.path == "" {
		return s
	}
	if err := s.load(); err != nil {
		logging.WarnWithContext(logger, "failed to load book metadata",
			"metadata_load_failed",
			logging.String("path", s.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix or remove the metadata file; saving will overwrite it"),
			logging.String(logging.FieldImpact, "metadata starts empty for this run"))
	}
	return s
}

// NewMemory returns a store that is never persisted.
func NewMemory() *Store {
	return &Store{logger: logging.NewNop(), records: newOrderedRecords()}
}

// Path returns the backing document path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read metadata file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	records := newOrderedRecords()
	if err := json.Unmarshal(data, records); err != nil {
		return fmt.Errorf("parse metadata file: %w", err)
	}
	s.records = records
	s.logger.Debug("loaded book metadata",
		logging.Int("record_count", records.len()),
		logging.String("path", s.path))
	return nil
}

// Save writes the whole mapping atomically while holding the document lock.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}
	s.mu.RLock()
	data, err := json.MarshalIndent(s.records, "", "    ")
	count := s.records.len()
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create metadata directory: %w", err)
	}
	err = fileutil.WithLock(s.path+".lock", func() error {
		return fileutil.WriteFileAtomic(s.path, data, 0o644)
	})
	if err != nil {
		return fmt.Errorf("persist metadata: %w", err)
	}
	s.logger.Debug("saved book metadata", logging.Int("record_count", count))
	return nil
}

// Get returns the record stored at key.
func (s *Store) Get(key string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records.get(key)
}

// Put stores rec at key. The key must equal the record's composite key.
func (s *Store) Put(key string, rec Record) error {
	rec = rec.normalized()
	if rec.Title == "" {
		return services.Wrap(services.ErrValidation, "metadata", "put", "title is required", nil)
	}
	if want := rec.Key(); key != want {
		return services.Wrap(services.ErrValidation, "metadata", "put",
			fmt.Sprintf("key %q does not match composite key %q", key, want), nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records.set(key, rec)
	return nil
}

// Delete drops the record at key. Missing keys are ignored.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records.remove(key)
}

// Update replaces the record at an existing key with rec. When the edit
// changes the title or author the record moves to its new composite key,
// keeping its position. It returns the key the record now lives under.
func (s *Store) Update(key string, rec Record) (string, error) {
	rec = rec.normalized()
	if rec.Title == "" {
		return "", services.Wrap(services.ErrValidation, "metadata", "update", "title is required", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records.get(key); !ok {
		return "", services.Wrap(services.ErrNotFound, "metadata", "update", fmt.Sprintf("no record for %q", key), nil)
	}
	newKey := rec.Key()
	if newKey == key {
		s.records.set(key, rec)
		return key, nil
	}
	if _, taken := s.records.get(newKey); taken {
		return "", services.Wrap(services.ErrValidation, "metadata", "update",
			fmt.Sprintf("edited record would overwrite %q", newKey), nil)
	}
	s.records.rename(key, newKey, rec)
	return newKey, nil
}

// ImportRow is one row of a tabular import. Missing columns are empty.
type ImportRow struct {
	Title           string
	Author          string
	PublicationDate string
	PageCount       string
	Genres          []string
}

// ImportResult summarizes MergeFromImport.
type ImportResult struct {
	Imported int
	Skipped  int
	Keys     []string
}

// MergeFromImport overwrites the record at each row's composite key. Rows
// without a title are skipped; later rows replace earlier ones wholesale.
func (s *Store) MergeFromImport(rows []ImportRow) ImportResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result ImportResult
	for _, row := range rows {
		rec := Record{
			Title:           row.Title,
			Author:          row.Author,
			PublicationDate: row.PublicationDate,
			PageCount:       row.PageCount,
			Genres:          row.Genres,
		}.normalized()
		if rec.Title == "" {
			result.Skipped++
			continue
		}
		key := rec.Key()
		s.records.set(key, rec)
		result.Imported++
		result.Keys = append(result.Keys, key)
	}
	s.logger.Info("merged metadata import",
		logging.Int("imported", result.Imported),
		logging.Int("skipped", result.Skipped))
	return result
}

// FindIncomplete returns the keys of incomplete records in insertion order.
func (s *Store) FindIncomplete() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for _, key := range s.records.keys {
		if s.records.items[key].Incomplete() {
			keys = append(keys, key)
		}
	}
	return keys
}

// FindByTitle returns the sorted keys that start with the whitespace-free
// normalized title.
func (s *Store) FindByTitle(title string) []string {
	prefix := textutil.RemoveWhitespace(identity.NormalizeTitle(title))
	if prefix == "" {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for _, key := range s.records.keys {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Genres returns every genre in the store, sorted and deduplicated exactly.
func (s *Store) Genres() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, rec := range s.records.items {
		for _, g := range rec.Genres {
			seen[g] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// Keys returns every key in insertion order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records.orderedKeys()
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records.len()
}
