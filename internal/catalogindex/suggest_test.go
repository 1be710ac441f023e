package catalogindex

import "testing"

func TestSuggestRanksSimilarTitles(t *testing.T) {
	idx := buildBooks(t, "Hobbit_Tolkien.jpg", "Hobit_Other.jpg", "Dune_FrankHerbert.jpg", "Hobbits_Someone.jpg")
	got := idx.Suggest("Hobbitt", 0)
	if len(got) == 0 {
		t.Fatal("expected suggestions")
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Fatalf("suggestions not sorted: %+v", got)
		}
	}
	for _, s := range got {
		if s.Entry.Name == "Dune_FrankHerbert.jpg" {
			t.Fatalf("unrelated title suggested: %+v", s)
		}
		if s.Score < minSuggestionScore {
			t.Fatalf("score below threshold: %+v", s)
		}
	}
}

func TestSuggestSkipsExactAndRespectsLimit(t *testing.T) {
	idx := buildBooks(t, "Dune_A.jpg", "Dunes_B.jpg", "Dunee_C.jpg", "Dunex_D.jpg")
	got := idx.Suggest("Dune", 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(got))
	}
	for _, s := range got {
		if s.Entry.Name == "Dune_A.jpg" {
			t.Fatal("exact title key should not be suggested")
		}
	}
	if got := idx.Suggest("", 2); got != nil {
		t.Fatalf("expected nil for empty query, got %+v", got)
	}
}
