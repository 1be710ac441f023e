package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"coverkeep/internal/fileutil"
	"coverkeep/internal/identity"
	"coverkeep/internal/services"
)

// Session carries the state shared by the items of one gather or promote run.
type Session struct {
	ID string
	// SkipAllMetadata stops metadata prompts for the rest of the run once the
	// user chooses "skip all".
	SkipAllMetadata bool
	// Inputs maps a Books composite key to the spaced title and author the
	// user typed, used to prefill metadata prompts.
	Inputs map[string]identity.Identity
}

// NewSession starts a session with a fresh ID.
func NewSession() *Session {
	return &Session{ID: uuid.NewString(), Inputs: make(map[string]identity.Identity)}
}

// Context tags ctx with the session ID and stage for logging.
func (s *Session) Context(ctx context.Context, stage string) context.Context {
	ctx = services.WithSessionID(ctx, s.ID)
	if stage != "" {
		ctx = services.WithStage(ctx, stage)
	}
	return ctx
}

// Remember records the typed identity for key.
func (s *Session) Remember(key string, id identity.Identity) {
	if s.Inputs == nil {
		s.Inputs = make(map[string]identity.Identity)
	}
	s.Inputs[key] = id
}

// Forget drops the typed identity for key.
func (s *Session) Forget(key string) {
	delete(s.Inputs, key)
}

// Prefill returns the identity to show for key: the typed input when known,
// otherwise the key split at its first underscore.
func (s *Session) Prefill(key string) identity.Identity {
	if id, ok := s.Inputs[key]; ok {
		return id
	}
	title, author := identity.SplitKey(key)
	return identity.Identity{Title: title, Author: author}
}

type pendingInput struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// LoadInputs merges typed identities persisted by an earlier gather. A
// missing file is not an error.
func (s *Session) LoadInputs(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read pending inputs: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	var entries []pendingInput
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse pending inputs: %w", err)
	}
	for _, e := range entries {
		if _, exists := s.Inputs[e.Key]; !exists && e.Key != "" {
			s.Remember(e.Key, identity.Identity{Title: e.Title, Author: e.Author})
		}
	}
	return nil
}

// SaveInputs persists the typed identities so a later promote run can use
// them. An empty set removes the file.
func (s *Session) SaveInputs(path string) error {
	if len(s.Inputs) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove pending inputs: %w", err)
		}
		return nil
	}
	entries := make([]pendingInput, 0, len(s.Inputs))
	for key, id := range s.Inputs {
		entries = append(entries, pendingInput{Key: key, Title: id.Title, Author: id.Author})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal pending inputs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}
