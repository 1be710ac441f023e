package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"coverkeep/internal/services"
)

func hobbit() Record {
	return Record{
		Title:           "The Hobbit",
		Author:          "J.R.R. Tolkien",
		PublicationDate: "1937",
		PageCount:       "310",
		Genres:          []string{"Fantasy", "Classic"},
	}
}

func TestOpenMissingFileIsEmpty(t *testing.T) {
	store := Open(filepath.Join(t.TempDir(), "book_metadata.json"), nil)
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}

func TestOpenCorruptFileIsSoftFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book_metadata.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := Open(path, nil)
	if store.Len() != 0 {
		t.Fatalf("expected empty store after corrupt load, got %d", store.Len())
	}
	if err := store.Put("Dune_FrankHerbert", Record{Title: "Dune", Author: "Frank Herbert"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if reopened := Open(path, nil); reopened.Len() != 1 {
		t.Fatalf("expected save to replace corrupt file, got %d records", reopened.Len())
	}
}

func TestSaveLoadPreservesOrderAndFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "book_metadata.json")
	store := Open(path, nil)
	keys := []string{"Zebra_A", "Apple_B", "Mango_C"}
	for _, key := range keys {
		title, author, _ := strings.Cut(key, "_")
		if err := store.Put(key, Record{Title: title, Author: author}); err != nil {
			t.Fatalf("Put %s: %v", key, err)
		}
	}
	if err := store.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `"genres": []`) {
		t.Fatalf("expected empty genre lists to persist as [], got %s", data)
	}
	if strings.Index(string(data), "Zebra_A") > strings.Index(string(data), "Apple_B") {
		t.Fatalf("document not in insertion order: %s", data)
	}

	reopened := Open(path, nil)
	if !reflect.DeepEqual(reopened.Keys(), keys) {
		t.Fatalf("keys = %v, want %v", reopened.Keys(), keys)
	}
	rec, ok := reopened.Get("Apple_B")
	if !ok || rec.Title != "Apple" || rec.Author != "B" || rec.Genres == nil {
		t.Fatalf("unexpected record %+v ok=%v", rec, ok)
	}
}

func TestLoadKeepsDocumentOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book_metadata.json")
	doc := `{
    "b_key": {"title": "b", "author": "key", "publication_date": "", "page_count": "", "genres": []},
    "a_key": {"title": "a", "author": "key"}
}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := Open(path, nil)
	if !reflect.DeepEqual(store.Keys(), []string{"b_key", "a_key"}) {
		t.Fatalf("unexpected order %v", store.Keys())
	}
	rec, _ := store.Get("a_key")
	if rec.Genres == nil || rec.PageCount != "" {
		t.Fatalf("missing fields should load as empty values: %+v", rec)
	}
}

func TestPutRejectsMismatchedKey(t *testing.T) {
	store := NewMemory()
	err := store.Put("Hobbit", hobbit())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := store.Put("Hobbit_J.R.R.Tolkien", hobbit()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put("", Record{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty title, got %v", err)
	}
}

func TestDeleteKeepsRemainingOrder(t *testing.T) {
	store := NewMemory()
	for _, rec := range []Record{{Title: "Alpha"}, {Title: "Beta"}, {Title: "Gamma"}} {
		if err := store.Put(rec.Key(), rec); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	store.Delete("Beta")
	store.Delete("Missing")
	keys := store.Keys()
	if len(keys) != 2 || keys[0] != "Alpha" || keys[1] != "Gamma" {
		t.Fatalf("unexpected keys after delete: %v", keys)
	}
}

func TestUpdate(t *testing.T) {
	store := NewMemory()
	if err := store.Put("Hobbit_J.R.R.Tolkien", hobbit()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put("Dune_FrankHerbert", Record{Title: "Dune", Author: "Frank Herbert"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	edited := hobbit()
	edited.Genres = []string{"Adventure"}
	key, err := store.Update("Hobbit_J.R.R.Tolkien", edited)
	if err != nil || key != "Hobbit_J.R.R.Tolkien" {
		t.Fatalf("Update = %q, %v", key, err)
	}
	rec, _ := store.Get(key)
	if !reflect.DeepEqual(rec.Genres, []string{"Adventure"}) {
		t.Fatalf("expected whole record replaced, got %+v", rec)
	}

	edited.Author = "Tolkien"
	key, err = store.Update("Hobbit_J.R.R.Tolkien", edited)
	if err != nil || key != "Hobbit_Tolkien" {
		t.Fatalf("rename Update = %q, %v", key, err)
	}
	if !reflect.DeepEqual(store.Keys(), []string{"Hobbit_Tolkien", "Dune_FrankHerbert"}) {
		t.Fatalf("rename should keep position, got %v", store.Keys())
	}

	if _, err := store.Update("Missing", hobbit()); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	clash := Record{Title: "Dune", Author: "Frank Herbert"}
	if _, err := store.Update("Hobbit_Tolkien", clash); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error on key clash, got %v", err)
	}
}

func TestMergeFromImportLastWriteWins(t *testing.T) {
	store := NewMemory()
	result := store.MergeFromImport([]ImportRow{
		{Title: "Dune", Author: "Frank Herbert", PublicationDate: "1965", PageCount: "412", Genres: []string{"SciFi"}},
		{Title: "   ", Author: "Nobody"},
		{Title: "Dune", Author: "Frank Herbert", PageCount: "500"},
	})
	if result.Imported != 2 || result.Skipped != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	rec, ok := store.Get("Dune_FrankHerbert")
	if !ok {
		t.Fatal("expected imported record")
	}
	want := Record{Title: "Dune", Author: "Frank Herbert", PageCount: "500", Genres: []string{}}
	if !reflect.DeepEqual(rec, want) {
		t.Fatalf("record = %+v, want %+v", rec, want)
	}
	if store.Len() != 1 {
		t.Fatalf("expected a single record, got %d", store.Len())
	}
}

func TestMergeFromImportWithoutAuthorUsesTitleKey(t *testing.T) {
	store := NewMemory()
	store.MergeFromImport([]ImportRow{{Title: "The Road"}})
	if _, ok := store.Get("Road"); !ok {
		t.Fatalf("expected title-only key, got %v", store.Keys())
	}
}

func TestFindIncomplete(t *testing.T) {
	store := NewMemory()
	complete := hobbit()
	noGenres := Record{Title: "Dune", Author: "Frank Herbert", PublicationDate: "1965", PageCount: "412"}
	noDate := Record{Title: "Emma", Author: "Jane Austen", PageCount: "474", Genres: []string{"Romance"}}
	for _, rec := range []Record{noGenres, complete, noDate} {
		if err := store.Put(rec.Key(), rec); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	got := store.FindIncomplete()
	want := []string{"Dune_FrankHerbert", "Emma_JaneAusten"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindIncomplete = %v, want %v", got, want)
	}
}

func TestFindByTitleAndGenres(t *testing.T) {
	store := NewMemory()
	recs := []Record{
		hobbit(),
		{Title: "Hobbit", Author: "Someone", Genres: []string{"Parody", "Fantasy"}},
		{Title: "Dune", Author: "Frank Herbert", Genres: []string{"SciFi"}},
	}
	for _, rec := range recs {
		if err := store.Put(rec.Key(), rec); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	got := store.FindByTitle("the hobbit")
	if len(got) != 0 {
		t.Fatalf("prefix match is case-sensitive, got %v", got)
	}
	got = store.FindByTitle("The Hobbit")
	want := []string{"Hobbit_J.R.R.Tolkien", "Hobbit_Someone"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindByTitle = %v, want %v", got, want)
	}
	if store.FindByTitle("  ") != nil {
		t.Fatal("expected nil for blank title")
	}

	genres := store.Genres()
	if !reflect.DeepEqual(genres, []string{"Classic", "Fantasy", "Parody", "SciFi"}) {
		t.Fatalf("Genres = %v", genres)
	}
}
