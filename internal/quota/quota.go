package quota

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"coverkeep/internal/fileutil"
	"coverkeep/internal/logging"
)

const dateLayout = "2006-01-02"

// state is the persisted counter document.
type state struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Counter tracks outbound image searches per local calendar day.
type Counter struct {
	path   string
	now    func() time.Time
	logger *slog.Logger
	mu     sync.Mutex
	state  state
}

// Option customizes a Counter.
type Option func(*Counter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Counter) {
		if now != nil {
			c.now = now
		}
	}
}

// Open loads the counter stored at path. Read failures start the count at
// zero. An empty path gives an in-memory counter.
func Open(path string, logger *slog.Logger, opts ...Option) *Counter {
	c := &Counter{
		path:   strings.TrimSpace(path),
		now:    time.Now,
		logger: logging.NewComponentLogger(logger, "quota"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.path == "" {
		return c
	}
	if err := c.load(); err != nil {
		logging.WarnWithContext(c.logger, "failed to load daily query counter",
			"quota_load_failed",
			logging.String("path", c.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "counter file will be rewritten on the next search"),
			logging.String(logging.FieldImpact, "today's count restarts at zero"))
	}
	return c
}

func (c *Counter) today() string {
	return c.now().Format(dateLayout)
}

// Today returns the number of searches recorded today.
func (c *Counter) Today() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Date != c.today() {
		return 0
	}
	return c.state.Count
}

// Increment records one search, resetting the count first when the stored
// date is not today, and persists the result. The new count is returned even
// when persisting fails.
func (c *Counter) Increment() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	today := c.today()
	if c.state.Date != today {
		c.state = state{Date: today}
	}
	c.state.Count++
	if err := c.save(); err != nil {
		return c.state.Count, err
	}
	c.logger.Debug("daily query count incremented",
		logging.Int("count", c.state.Count),
		logging.String("date", today))
	return c.state.Count, nil
}

func (c *Counter) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read counter file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	var loaded state
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parse counter file: %w", err)
	}
	c.state = loaded
	return nil
}

func (c *Counter) save() error {
	if c.path == "" {
		return nil
	}
	data, err := json.Marshal(c.state)
	if err != nil {
		return fmt.Errorf("marshal counter: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create counter directory: %w", err)
	}
	if err := fileutil.WriteFileAtomic(c.path, data, 0o644); err != nil {
		return fmt.Errorf("persist counter: %w", err)
	}
	return nil
}
