package resolver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"testing"

	"coverkeep/internal/catalogindex"
	"coverkeep/internal/category"
	"coverkeep/internal/services"
)

type stubLister struct {
	dirs  map[string][]string
	calls int
}

func (s *stubLister) List(dir string) ([]string, error) {
	s.calls++
	names, ok := s.dirs[dir]
	if !ok {
		return nil, fmt.Errorf("%s: %w", dir, fs.ErrNotExist)
	}
	return names, nil
}

func newBooksLister(names ...string) *stubLister {
	return &stubLister{dirs: map[string][]string{filepath.Join("/db", "Books"): names}}
}

func TestResolveUniqueSkipsChooser(t *testing.T) {
	chooser := ChooserFunc(func(context.Context, string, []string) (string, bool, error) {
		t.Fatal("chooser should not be called")
		return "", false, nil
	})
	r := New("/db", newBooksLister("Dune_FrankHerbert.jpg"), chooser, nil)
	res, err := r.Resolve(context.Background(), category.Books, "Dune", "Frank Herbert")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Found() || res.Outcome.Kind != catalogindex.Unique {
		t.Fatalf("expected unique hit, got %+v", res)
	}
}

func TestResolveAmbiguousUsesChooser(t *testing.T) {
	var seen []string
	chooser := ChooserFunc(func(_ context.Context, title string, candidates []string) (string, bool, error) {
		seen = candidates
		return candidates[1], true, nil
	})
	r := New("/db", newBooksLister("Hobbit_A.jpg", "Hobbit_B.jpg"), chooser, nil)
	res, err := r.Resolve(context.Background(), category.Books, "Hobbit", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("expected chooser to see 2 candidates, got %v", seen)
	}
	if filepath.Base(res.Path) != "Hobbit_B.jpg" {
		t.Fatalf("unexpected choice %q", res.Path)
	}
}

func TestResolveAmbiguousDeclined(t *testing.T) {
	chooser := ChooserFunc(func(context.Context, string, []string) (string, bool, error) {
		return "", false, nil
	})
	r := New("/db", newBooksLister("Hobbit_A.jpg", "Hobbit_B.jpg"), chooser, nil)
	res, err := r.Resolve(context.Background(), category.Books, "Hobbit", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Found() || !res.Declined {
		t.Fatalf("expected declined resolution, got %+v", res)
	}
}

func TestResolveRejectsUnknownChoice(t *testing.T) {
	chooser := ChooserFunc(func(context.Context, string, []string) (string, bool, error) {
		return "/elsewhere.jpg", true, nil
	})
	r := New("/db", newBooksLister("Hobbit_A.jpg", "Hobbit_B.jpg"), chooser, nil)
	_, err := r.Resolve(context.Background(), category.Books, "Hobbit", "")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveChooserError(t *testing.T) {
	boom := errors.New("picker closed")
	chooser := ChooserFunc(func(context.Context, string, []string) (string, bool, error) {
		return "", false, boom
	})
	r := New("/db", newBooksLister("Hobbit_A.jpg", "Hobbit_B.jpg"), chooser, nil)
	if _, err := r.Resolve(context.Background(), category.Books, "Hobbit", ""); !errors.Is(err, boom) {
		t.Fatalf("expected chooser error, got %v", err)
	}
}

func TestResolverBuildsIndexOnce(t *testing.T) {
	lister := newBooksLister("Dune_FrankHerbert.jpg")
	r := New("/db", lister, nil, nil)
	for i := 0; i < 3; i++ {
		if _, err := r.ResolveKey(context.Background(), "Dune_FrankHerbert"); err != nil {
			t.Fatalf("ResolveKey: %v", err)
		}
	}
	if lister.calls != 1 {
		t.Fatalf("expected one listing, got %d", lister.calls)
	}
}

func TestFirstChooser(t *testing.T) {
	path, ok, err := FirstChooser.Choose(context.Background(), "x", []string{"a", "b"})
	if err != nil || !ok || path != "a" {
		t.Fatalf("unexpected FirstChooser result %q %v %v", path, ok, err)
	}
	if _, ok, _ := FirstChooser.Choose(context.Background(), "x", nil); ok {
		t.Fatal("expected decline for empty candidates")
	}
}
