package metadata

import (
	"strconv"
	"strings"

	"coverkeep/internal/textutil"
)

// Filter is a conjunctive metadata query. Bounds are raw user input: blank
// bounds are ignored and anything else is parsed with parseNumber.
type Filter struct {
	Author   string
	Genres   []string
	PageFrom string
	PageTo   string
	YearFrom string
	YearTo   string
}

// parseNumber parses a trimmed integer. Anything unparseable counts as 0,
// which lets malformed data slip past lower bounds of 0 and below upper
// bounds; MalformedBounds surfaces the input side of this.
func parseNumber(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

// MalformedBounds lists the non-blank bounds that do not parse as integers.
func (f Filter) MalformedBounds() []string {
	var out []string
	for _, b := range []struct{ name, value string }{
		{"page_from", f.PageFrom},
		{"page_to", f.PageTo},
		{"year_from", f.YearFrom},
		{"year_to", f.YearTo},
	} {
		v := strings.TrimSpace(b.value)
		if v == "" {
			continue
		}
		if _, err := strconv.Atoi(v); err != nil {
			out = append(out, b.name)
		}
	}
	return out
}

// Match reports whether rec satisfies every clause of the filter.
func (f Filter) Match(rec Record) bool {
	if author := strings.TrimSpace(f.Author); author != "" && !textutil.ContainsFold(rec.Author, author) {
		return false
	}
	for _, genre := range f.Genres {
		if strings.TrimSpace(genre) == "" {
			continue
		}
		if !rec.HasGenre(genre) {
			return false
		}
	}
	if !inRange(parseNumber(rec.PageCount), f.PageFrom, f.PageTo) {
		return false
	}
	return inRange(parseNumber(rec.PublicationDate), f.YearFrom, f.YearTo)
}

func inRange(value int, from, to string) bool {
	if strings.TrimSpace(from) != "" && value < parseNumber(from) {
		return false
	}
	if strings.TrimSpace(to) != "" && value > parseNumber(to) {
		return false
	}
	return true
}

// Search returns the keys of matching records in insertion order.
func (s *Store) Search(f Filter) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for _, key := range s.records.keys {
		if f.Match(s.records.items[key]) {
			keys = append(keys, key)
		}
	}
	return keys
}
