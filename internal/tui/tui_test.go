package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"coverkeep/internal/metadata"
	"coverkeep/internal/reconcile"
)

func press(t *testing.T, m tea.Model, msgs ...tea.KeyMsg) tea.Model {
	t.Helper()
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyCtrlS = tea.KeyMsg{Type: tea.KeyCtrlS}
)

func typeText(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPickerSelectsHighlightedCandidate(t *testing.T) {
	m := press(t, newPickerModel("dune", []string{"/db/Books/Dune_A.jpg", "/db/Books/Dune_B.jpg"}), keyDown, keyEnter)
	pm := m.(pickerModel)
	if pm.selected != "/db/Books/Dune_B.jpg" || pm.canceled {
		t.Fatalf("unexpected picker state selected=%q canceled=%v", pm.selected, pm.canceled)
	}
}

func TestPickerCancel(t *testing.T) {
	pm := press(t, newPickerModel("dune", []string{"/a.jpg", "/b.jpg"}), keyEsc).(pickerModel)
	if !pm.canceled || pm.selected != "" {
		t.Fatalf("expected cancel, got %+v", pm)
	}
}

func TestCoverSelectionToggles(t *testing.T) {
	paths := []string{"/s/Hobbit_Books_1.jpg", "/s/Hobbit_Books_2.jpg", "/s/Hobbit_Books_3.jpg"}
	cm := press(t, newCoverModel(paths), keySpace, keyDown, keyDown, keySpace, keyEnter).(coverModel)
	got := cm.Selected()
	if len(got) != 2 || got[0] != paths[0] || got[1] != paths[2] {
		t.Fatalf("unexpected selection %v", got)
	}
	if !cm.done {
		t.Fatal("expected enter to finish selection")
	}
	if !strings.Contains(cm.list.Title, "2 selected") {
		t.Fatalf("expected count in title, got %q", cm.list.Title)
	}
}

func TestCoverSelectionToggleAll(t *testing.T) {
	paths := []string{"/s/a.jpg", "/s/b.jpg"}
	cm := press(t, newCoverModel(paths), typeText("a")).(coverModel)
	if len(cm.Selected()) != 2 {
		t.Fatalf("expected all selected, got %v", cm.Selected())
	}
	cm = press(t, cm, typeText("a")).(coverModel)
	if len(cm.Selected()) != 0 {
		t.Fatalf("expected none selected, got %v", cm.Selected())
	}
}

func TestFormAcceptsPrefill(t *testing.T) {
	prefill := metadata.Record{Title: "The Hobbit", Author: "J.R.R. Tolkien", Genres: []string{"Fantasy"}}
	fm := press(t, newFormModel(prefill, formOptions{AllowSkipAll: true}), keyEnter).(formModel)
	if !fm.done || fm.decision != reconcile.Accept {
		t.Fatalf("expected accept, got done=%v decision=%v", fm.done, fm.decision)
	}
	if fm.result.Title != "The Hobbit" || len(fm.result.Genres) != 1 {
		t.Fatalf("unexpected result %+v", fm.result)
	}
}

func TestFormFocusesAuthorAndRequiresIt(t *testing.T) {
	m := newFormModel(metadata.Record{Title: "Emma"}, formOptions{AllowSkipAll: true})
	if m.focused != fieldAuthor {
		t.Fatalf("expected author focused, got %d", m.focused)
	}
	fm := press(t, m, keyEnter).(formModel)
	if fm.done || fm.err == nil {
		t.Fatal("expected missing author to block submission")
	}
	fm = press(t, fm, typeText("Jane Austen"), keyTab, keyTab, typeText("474"), keyEnter).(formModel)
	if !fm.done || fm.result.Author != "Jane Austen" {
		t.Fatalf("expected submitted author, got %+v", fm.result)
	}
	if fm.result.PageCount != "474" {
		t.Fatalf("expected page count from third field, got %+v", fm.result)
	}
}

func TestFormSkipAllAndDecline(t *testing.T) {
	prefill := metadata.Record{Title: "Dune", Author: "Frank Herbert"}
	fm := press(t, newFormModel(prefill, formOptions{AllowSkipAll: true}), keyCtrlS).(formModel)
	if fm.decision != reconcile.SkipAll {
		t.Fatalf("expected skip all, got %v", fm.decision)
	}

	fm = press(t, newFormModel(prefill, formOptions{}), keyCtrlS).(formModel)
	if fm.done {
		t.Fatal("skip all must be ignored when not offered")
	}

	fm = press(t, newFormModel(prefill, formOptions{AllowSkipAll: true}), keyEsc).(formModel)
	if !fm.done || fm.decision != reconcile.Decline {
		t.Fatalf("expected decline, got %v", fm.decision)
	}
}

func TestFormViewListsKnownGenres(t *testing.T) {
	m := newFormModel(metadata.Record{}, formOptions{Heading: "New book: Dune_FrankHerbert", KnownGenres: []string{"Fantasy", "Sci-Fi"}})
	view := m.View()
	if !strings.Contains(view, "Dune_FrankHerbert") || !strings.Contains(view, "Fantasy, Sci-Fi") {
		t.Fatalf("unexpected view %q", view)
	}
}
