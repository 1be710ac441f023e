package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"coverkeep/internal/metadata"
)

type cliTestEnv struct {
	base       string
	catalog    string
	staging    string
	state      string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("COVERKEEP_SEARCH_API_KEY", "")
	t.Setenv("COVERKEEP_SEARCH_ENGINE_ID", "")
	t.Setenv("COVERKEEP_NTFY_TOPIC", "")
	env := &cliTestEnv{
		base:       base,
		catalog:    filepath.Join(base, "database"),
		staging:    filepath.Join(base, "gathered"),
		state:      filepath.Join(base, "state"),
		configPath: filepath.Join(base, "coverkeep.toml"),
	}
	content := fmt.Sprintf(
		"[paths]\ncatalog_dir = %q\nstaging_dir = %q\nstate_dir = %q\nlog_dir = %q\n\n[logging]\nlevel = \"error\"\n",
		env.catalog, env.staging, env.state, filepath.Join(base, "logs"),
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	flags := []string{"--no-interactive"}
	if env != nil {
		flags = append(flags, "--config", env.configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeImage(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("img"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, nil, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, nil, "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
	if _, _, err := runCLI(t, nil, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowMasksSecrets(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("COVERKEEP_SEARCH_API_KEY", "supersecretkey")

	out, _, err := runCLI(t, env, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "supersecretkey") {
		t.Fatalf("secret leaked: %s", out)
	}
	requireContains(t, out, "****tkey")
	requireContains(t, out, env.catalog)
}

func TestCatalogListJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	writeImage(t, filepath.Join(env.catalog, "Movies", "Alien.jpg"))
	writeImage(t, filepath.Join(env.catalog, "Movies", "Matrix.png"))
	writeImage(t, filepath.Join(env.catalog, "Movies", "notes.txt"))

	out, _, err := runCLI(t, env, "--json", "catalog", "list", "movies")
	if err != nil {
		t.Fatalf("catalog list: %v", err)
	}
	var payload struct {
		Category string   `json:"category"`
		Files    []string `json:"files"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if payload.Category != "Movies" || strings.Join(payload.Files, ",") != "Alien.jpg,Matrix.png" {
		t.Fatalf("unexpected payload %+v", payload)
	}

	if _, _, err := runCLI(t, env, "catalog", "list", "paintings"); err == nil {
		t.Fatal("expected unknown category to fail")
	}
}

func TestLookupFindsBookByTitleAndAuthor(t *testing.T) {
	env := setupCLITestEnv(t)
	path := filepath.Join(env.catalog, "Books", "Dune_FrankHerbert.jpg")
	writeImage(t, path)

	out, _, err := runCLI(t, env, "lookup", "books", "Dune", "--author", "Frank Herbert")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	requireContains(t, out, path)

	out, _, err = runCLI(t, env, "--json", "lookup", "books", "Emma")
	if err != nil {
		t.Fatalf("lookup miss: %v", err)
	}
	var payload lookupJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if payload.Result != "no_match" || payload.Path != "" {
		t.Fatalf("unexpected miss payload %+v", payload)
	}
}

func TestGatherCatalogHitStagesCopy(t *testing.T) {
	env := setupCLITestEnv(t)
	writeImage(t, filepath.Join(env.catalog, "Books", "Dune_FrankHerbert.jpg"))

	out, _, err := runCLI(t, env, "gather", "books", "Dune - Frank Herbert")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	requireContains(t, out, "catalog_hit")
	if _, err := os.Stat(filepath.Join(env.staging, "Dune_FrankHerbert_db.jpg")); err != nil {
		t.Fatalf("expected catalog copy in staging: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.state, pendingInputsFile)); err != nil {
		t.Fatalf("expected pending inputs saved: %v", err)
	}
}

func TestGatherWithoutCredentialsFailsMisses(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env, "gather", "movies", "Alien")
	if err == nil {
		t.Fatal("expected gather to fail without search credentials")
	}
}

func TestGatherReadsTitlesFromFile(t *testing.T) {
	env := setupCLITestEnv(t)
	writeImage(t, filepath.Join(env.catalog, "Movies", "Alien.jpg"))
	writeImage(t, filepath.Join(env.catalog, "Movies", "Matrix.jpg"))
	list := filepath.Join(env.base, "titles.txt")
	if err := os.WriteFile(list, []byte("Alien\n\n  The Matrix  \n"), 0o644); err != nil {
		t.Fatalf("write titles: %v", err)
	}

	out, _, err := runCLI(t, env, "--json", "gather", "movies", "--file", list)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var report reportJSON
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(report.Items) != 2 {
		t.Fatalf("expected 2 items, got %+v", report.Items)
	}
	for _, item := range report.Items {
		if item.Status != "catalog_hit" {
			t.Fatalf("unexpected item %+v", item)
		}
	}
}

func TestPromoteSkipMetadataCataloguesBooks(t *testing.T) {
	env := setupCLITestEnv(t)
	writeImage(t, filepath.Join(env.staging, "Hobbit_J.R.R.Tolkien_Books_1.jpg"))
	writeImage(t, filepath.Join(env.staging, "Alien_Movies_1.jpg"))
	writeImage(t, filepath.Join(env.staging, "Dune_FrankHerbert_db.jpg"))

	if _, _, err := runCLI(t, env, "promote", "--skip-metadata"); err != nil {
		t.Fatalf("promote: %v", err)
	}
	for _, path := range []string{
		filepath.Join(env.catalog, "Books", "Hobbit_J.R.R.Tolkien.jpg"),
		filepath.Join(env.catalog, "Movies", "Alien.jpg"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s: %v", path, err)
		}
	}
	entries, err := os.ReadDir(env.staging)
	if err != nil {
		t.Fatalf("read staging: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty staging, got %d entries", len(entries))
	}
	store := metadata.Open(filepath.Join(env.state, "book_metadata.json"), nil)
	if store.Len() != 1 {
		t.Fatalf("expected one metadata record, got %d", store.Len())
	}
}

func TestPromoteWithoutPromptFailsNewBooks(t *testing.T) {
	env := setupCLITestEnv(t)
	staged := filepath.Join(env.staging, "Emma_JaneAusten_Books_1.jpg")
	writeImage(t, staged)

	if _, _, err := runCLI(t, env, "promote"); err == nil {
		t.Fatal("expected promote to fail without a prompt")
	}
	if _, err := os.Stat(staged); err != nil {
		t.Fatalf("staged file should remain: %v", err)
	}
}

func writeCSV(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
}

func TestMetadataImportSearchAndExport(t *testing.T) {
	env := setupCLITestEnv(t)
	src := filepath.Join(env.base, "books.csv")
	writeCSV(t, src, "Title,Author,Publication Date,Page Count,Genres\n"+
		"The Hobbit,J.R.R. Tolkien,1937,310,\"Fantasy, Adventure\"\n"+
		"Dune,Frank Herbert,1965,412,Science Fiction\n"+
		"Emma,Jane Austen,,,\n"+
		",Nobody,,,\n")

	out, _, err := runCLI(t, env, "metadata", "import", src)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	requireContains(t, out, "Imported 3 records, skipped 1")

	out, _, err = runCLI(t, env, "--json", "metadata", "search", "--genre", "fantasy", "--pages-from", "300")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var found []recordJSON
	if err := json.Unmarshal([]byte(out), &found); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(found) != 1 || found[0].Key != "Hobbit_J.R.R.Tolkien" {
		t.Fatalf("unexpected search result %+v", found)
	}

	_, stderr, err := runCLI(t, env, "metadata", "search", "--year-from", "sixties")
	if err != nil {
		t.Fatalf("search with malformed bound: %v", err)
	}
	requireContains(t, stderr, "year_from")

	out, _, err = runCLI(t, env, "--json", "metadata", "incomplete")
	if err != nil {
		t.Fatalf("incomplete: %v", err)
	}
	if !strings.Contains(out, "Emma_JaneAusten") || strings.Contains(out, "Dune_FrankHerbert") {
		t.Fatalf("unexpected incomplete list %s", out)
	}

	dst := filepath.Join(env.base, "missing.xlsx")
	out, _, err = runCLI(t, env, "metadata", "export", dst)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	requireContains(t, out, "Exported 1 books")
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("expected export file: %v", err)
	}
}

func TestMetadataEditRenamesCatalogCover(t *testing.T) {
	env := setupCLITestEnv(t)
	src := filepath.Join(env.base, "books.csv")
	writeCSV(t, src, "title,author\nThe Hobbit,J.R.R. Tolkien\n")
	if _, _, err := runCLI(t, env, "metadata", "import", src); err != nil {
		t.Fatalf("import: %v", err)
	}
	writeImage(t, filepath.Join(env.catalog, "Books", "Hobbit_J.R.R.Tolkien.jpg"))
	writeImage(t, filepath.Join(env.catalog, "Books", "Hobbit_J.R.R.TolkienAnnotated.jpg"))

	out, _, err := runCLI(t, env, "metadata", "edit", "The Hobbit", "--author", "Tolkien", "--pages", "310")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	requireContains(t, out, "Updated Hobbit_Tolkien")

	if _, err := os.Stat(filepath.Join(env.catalog, "Books", "Hobbit_Tolkien.jpg")); err != nil {
		t.Fatalf("expected renamed cover: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.catalog, "Books", "Hobbit_J.R.R.TolkienAnnotated.jpg")); err != nil {
		t.Fatalf("unrelated cover must stay: %v", err)
	}
	store := metadata.Open(filepath.Join(env.state, "book_metadata.json"), nil)
	rec, ok := store.Get("Hobbit_Tolkien")
	if !ok || rec.PageCount != "310" || rec.Title != "The Hobbit" {
		t.Fatalf("unexpected record %+v ok=%v", rec, ok)
	}
	if _, ok := store.Get("Hobbit_J.R.R.Tolkien"); ok {
		t.Fatal("old key should be gone")
	}
}

func TestMetadataEditSaveFailureKeepsCoverName(t *testing.T) {
	env := setupCLITestEnv(t)
	src := filepath.Join(env.base, "books.csv")
	writeCSV(t, src, "title,author\nThe Hobbit,J.R.R. Tolkien\n")
	if _, _, err := runCLI(t, env, "metadata", "import", src); err != nil {
		t.Fatalf("import: %v", err)
	}
	cover := filepath.Join(env.catalog, "Books", "Hobbit_J.R.R.Tolkien.jpg")
	writeImage(t, cover)
	// A directory where the document lock file belongs makes Save fail.
	if err := os.MkdirAll(filepath.Join(env.state, "book_metadata.json.lock"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if _, _, err := runCLI(t, env, "metadata", "edit", "The Hobbit", "--author", "Tolkien"); err == nil {
		t.Fatal("expected edit to fail when metadata cannot be saved")
	}
	if _, err := os.Stat(cover); err != nil {
		t.Fatalf("cover must keep its old name: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.catalog, "Books", "Hobbit_Tolkien.jpg")); !os.IsNotExist(err) {
		t.Fatalf("cover must not be renamed, stat err=%v", err)
	}
	store := metadata.Open(filepath.Join(env.state, "book_metadata.json"), nil)
	if _, ok := store.Get("Hobbit_J.R.R.Tolkien"); !ok {
		t.Fatal("saved record must keep its old key")
	}
}

func TestMetadataEditWithoutFlagsNeedsTerminal(t *testing.T) {
	env := setupCLITestEnv(t)
	src := filepath.Join(env.base, "books.csv")
	writeCSV(t, src, "title,author\nDune,Frank Herbert\n")
	if _, _, err := runCLI(t, env, "metadata", "import", src); err != nil {
		t.Fatalf("import: %v", err)
	}
	if _, _, err := runCLI(t, env, "metadata", "edit", "Dune_FrankHerbert"); err == nil {
		t.Fatal("expected edit without flags to fail when prompts are disabled")
	}
}

func TestShelveCopiesFilteredBooks(t *testing.T) {
	env := setupCLITestEnv(t)
	src := filepath.Join(env.base, "books.csv")
	writeCSV(t, src, "title,author,genres\nDune,Frank Herbert,Science Fiction\nEmma,Jane Austen,Romance\n")
	if _, _, err := runCLI(t, env, "metadata", "import", src); err != nil {
		t.Fatalf("import: %v", err)
	}
	writeImage(t, filepath.Join(env.catalog, "Books", "Dune_FrankHerbert.jpg"))
	writeImage(t, filepath.Join(env.catalog, "Books", "Emma_JaneAusten.jpg"))

	if _, _, err := runCLI(t, env, "shelve"); err == nil {
		t.Fatal("expected shelve without keys or filters to fail")
	}
	out, _, err := runCLI(t, env, "shelve", "--genre", "science fiction")
	if err != nil {
		t.Fatalf("shelve: %v", err)
	}
	requireContains(t, out, "copied")
	entries, err := os.ReadDir(env.staging)
	if err != nil {
		t.Fatalf("read staging: %v", err)
	}
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), "Dune_FrankHerbert") {
		t.Fatalf("unexpected staging contents %v", entries)
	}
}

func TestStatusAndQuota(t *testing.T) {
	env := setupCLITestEnv(t)
	writeImage(t, filepath.Join(env.catalog, "Albums", "AbbeyRoad.png"))
	writeImage(t, filepath.Join(env.staging, "Alien_Movies_1.jpg"))
	writeImage(t, filepath.Join(env.staging, "holiday.jpg"))

	out, _, err := runCLI(t, env, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Catalog directory")
	requireContains(t, out, "1 pending, 0 catalog copies, 1 unrecognized")

	out, _, err = runCLI(t, env, "--json", "status")
	if err != nil {
		t.Fatalf("status json: %v", err)
	}
	var payload statusJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if payload.Catalog["Music Records"] != 1 || payload.Staging.Pending != 1 || payload.ConfigPath != env.configPath {
		t.Fatalf("unexpected status %+v", payload)
	}

	out, _, err = runCLI(t, env, "quota")
	if err != nil {
		t.Fatalf("quota: %v", err)
	}
	requireContains(t, out, "Image searches today: 0")
}

func TestGatherPublishesNotification(t *testing.T) {
	env := setupCLITestEnv(t)
	bodies := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		bodies <- string(data)
	}))
	defer server.Close()
	t.Setenv("COVERKEEP_NTFY_TOPIC", server.URL)
	writeImage(t, filepath.Join(env.catalog, "Movies", "Alien.jpg"))

	if _, _, err := runCLI(t, env, "gather", "movies", "Alien"); err != nil {
		t.Fatalf("gather: %v", err)
	}
	select {
	case body := <-bodies:
		requireContains(t, body, "Gathered 1 Movies covers")
	default:
		t.Fatal("expected a notification")
	}
}
