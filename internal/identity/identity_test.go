package identity

import "testing"

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"The Hobbit", "Hobbit"},
		{"  the hobbit ", "hobbit"},
		{"THE  Road", "Road"},
		{"Theater Kids", "Theater Kids"},
		{"The", "The"},
		{"", ""},
		{"The The Band", "Band"},
		{"Dune: Part Two", "Dune: Part Two"},
	}
	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeTitleIsIdempotent(t *testing.T) {
	inputs := []string{"The Hobbit", "  the the the x", "the ", "The", "Théâtre", "  spaced   out  ", "the\tend"}
	for _, in := range inputs {
		once := NormalizeTitle(in)
		if twice := NormalizeTitle(once); twice != once {
			t.Errorf("NormalizeTitle not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestCompositeKey(t *testing.T) {
	tests := []struct {
		title, author, want string
	}{
		{"The Hobbit", "J.R.R. Tolkien", "Hobbit_J.R.R.Tolkien"},
		{"  the hobbit ", "", "hobbit"},
		{"The Hobbit", "   ", "Hobbit"},
		{"Dune", "Frank Herbert", "Dune_FrankHerbert"},
		{"A Tale of Two Cities", "Charles Dickens", "ATaleofTwoCities_CharlesDickens"},
		{"The The Hobbit", "J.R.R. Tolkien", "Hobbit_J.R.R.Tolkien"},
	}
	for _, tt := range tests {
		if got := CompositeKey(tt.title, tt.author); got != tt.want {
			t.Errorf("CompositeKey(%q, %q) = %q, want %q", tt.title, tt.author, got, tt.want)
		}
	}
}

func TestCompositeKeyOmitsSeparatorWithoutAuthor(t *testing.T) {
	if got := CompositeKey("  the hobbit ", ""); got != "hobbit" {
		t.Fatalf("expected title-only key without separator, got %q", got)
	}
	if got := CompositeKey("The Hobbit", ""); got != "Hobbit" {
		t.Fatalf("expected Hobbit, got %q", got)
	}
}

func TestParseTitleAuthor(t *testing.T) {
	tests := []struct {
		raw, title, author string
	}{
		{"Dune - Frank Herbert", "Dune", "Frank Herbert"},
		{"No Delimiter Title", "No Delimiter Title", ""},
		{"A/B-C", "A", "B-C"},
		{"Title -- Author - Jr", "Title", "Author - Jr"},
		{"Left|Right", "Left", "Right"},
		{`Back\Slash`, "Back", "Slash"},
		{"  padded  ", "padded", ""},
		{"", "", ""},
		{"Trailing -", "Trailing", ""},
	}
	for _, tt := range tests {
		title, author := ParseTitleAuthor(tt.raw)
		if title != tt.title || author != tt.author {
			t.Errorf("ParseTitleAuthor(%q) = (%q, %q), want (%q, %q)", tt.raw, title, author, tt.title, tt.author)
		}
	}
}

func TestParseTitleAuthorPrefersDoubleDashOnTie(t *testing.T) {
	title, author := ParseTitleAuthor("Emma--Jane Austen")
	if title != "Emma" || author != "Jane Austen" {
		t.Fatalf("got (%q, %q)", title, author)
	}
}

func TestSearchKeys(t *testing.T) {
	if got := SearchTitleKey("The Lord of the Rings"); got != "lordoftherings" {
		t.Fatalf("SearchTitleKey = %q", got)
	}
	if got := SearchAuthorKey("J.R.R. Tolkien"); got != "jrrtolkien" {
		t.Fatalf("SearchAuthorKey = %q", got)
	}
}

func TestSplitKey(t *testing.T) {
	title, author := SplitKey("Hobbit_J.R.R.Tolkien")
	if title != "Hobbit" || author != "J.R.R.Tolkien" {
		t.Fatalf("SplitKey = (%q, %q)", title, author)
	}
	title, author = SplitKey("Hobbit")
	if title != "Hobbit" || author != "" {
		t.Fatalf("SplitKey without author = (%q, %q)", title, author)
	}
}

func TestIdentityKey(t *testing.T) {
	id := Parse("The Hobbit - J.R.R. Tolkien")
	if id.Key() != "Hobbit_J.R.R.Tolkien" {
		t.Fatalf("unexpected key %q", id.Key())
	}
}
