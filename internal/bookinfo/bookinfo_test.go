package bookinfo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"coverkeep/internal/services"
)

func TestVolumeQuery(t *testing.T) {
	if got := VolumeQuery("Dune", "Frank Herbert"); got != "intitle:Dune inauthor:Frank Herbert" {
		t.Fatalf("VolumeQuery = %q", got)
	}
	if got := VolumeQuery(" Dune ", ""); got != "intitle:Dune" {
		t.Fatalf("VolumeQuery without author = %q", got)
	}
}

func TestPublicationYear(t *testing.T) {
	cases := map[string]string{
		"1965-08-01": "1965",
		"1937":       "1937",
		"":           "",
		"c. 1900":    "c. 1900",
	}
	for in, want := range cases {
		if got := publicationYear(in); got != want {
			t.Errorf("publicationYear(%q) = %q, want %q", in, got, want)
		}
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(context.Background(), Config{Endpoint: srv.URL + "/", HTTPClient: srv.Client()}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestSuggest(t *testing.T) {
	var gotQ string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQ = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"totalItems": 1,
			"items": []map[string]any{{
				"volumeInfo": map[string]any{
					"title":         "Dune",
					"authors":       []string{"Frank Herbert"},
					"publishedDate": "1965-08-01",
					"pageCount":     412,
					"categories":    []string{"Fiction", " "},
				},
			}},
		})
	})

	rec, ok, err := client.Suggest(context.Background(), "Dune", "")
	if err != nil || !ok {
		t.Fatalf("Suggest = %v, %v", ok, err)
	}
	if gotQ != "intitle:Dune" {
		t.Fatalf("unexpected query %q", gotQ)
	}
	if rec.Title != "Dune" || rec.Author != "Frank Herbert" || rec.PublicationDate != "1965" || rec.PageCount != "412" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if !reflect.DeepEqual(rec.Genres, []string{"Fiction"}) {
		t.Fatalf("unexpected genres %v", rec.Genres)
	}
}

func TestSuggestKeepsCallerAuthor(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{{"volumeInfo": map[string]any{"authors": []string{"F. Herbert"}}}},
		})
	})
	rec, ok, err := client.Suggest(context.Background(), "Dune", "Frank Herbert")
	if err != nil || !ok || rec.Author != "Frank Herbert" {
		t.Fatalf("Suggest = %+v, %v, %v", rec, ok, err)
	}
}

func TestSuggestNoItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"totalItems": 0})
	})
	if _, ok, err := client.Suggest(context.Background(), "Nothing", ""); err != nil || ok {
		t.Fatalf("expected no suggestion, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := client.Suggest(context.Background(), "  ", ""); err != nil || ok {
		t.Fatalf("expected blank title to skip lookup, got ok=%v err=%v", ok, err)
	}
}

func TestSuggestServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	if _, _, err := client.Suggest(context.Background(), "Dune", ""); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
