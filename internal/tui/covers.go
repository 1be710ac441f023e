package tui

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"coverkeep/internal/textutil"
)

type coverItem struct {
	path     string
	selected bool
}

func (c coverItem) FilterValue() string { return c.path }

type coverDelegate struct{}

func (coverDelegate) Height() int                         { return 1 }
func (coverDelegate) Spacing() int                        { return 0 }
func (coverDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (coverDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	c, ok := item.(coverItem)
	if !ok {
		return
	}
	box := textutil.Ternary(c.selected, StyleSelected.Render("[✓] "), "[ ] ")
	name := filepath.Base(c.path)
	if index == m.Index() {
		_, _ = fmt.Fprint(w, StyleHighlight.Render("› ")+box+StyleHighlight.Render(name))
		return
	}
	_, _ = fmt.Fprint(w, "  "+box+StyleNormal.Render(name))
}

// coverModel is a multi-select list of downloaded covers. Selection state is
// tracked by path and the list items are rebuilt after every toggle.
type coverModel struct {
	list     list.Model
	paths    []string
	selected map[string]bool
	done     bool
	canceled bool
}

func newCoverModel(paths []string) coverModel {
	m := coverModel{paths: paths, selected: make(map[string]bool)}
	l := list.New(nil, coverDelegate{}, 70, min(len(paths)+6, 24))
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = StyleHeader
	l.Styles.HelpStyle = StyleHelp
	m.list = l
	m.rebuild()
	return m
}

func (m *coverModel) rebuild() {
	items := make([]list.Item, len(m.paths))
	for i, path := range m.paths {
		items[i] = coverItem{path: path, selected: m.selected[path]}
	}
	m.list.SetItems(items)
	m.list.Title = fmt.Sprintf("Keep which covers? (%d selected)", len(m.Selected()))
}

// Selected returns the chosen paths in offer order.
func (m coverModel) Selected() []string {
	var out []string
	for _, path := range m.paths {
		if m.selected[path] {
			out = append(out, path)
		}
	}
	return out
}

func (m coverModel) Init() tea.Cmd { return nil }

func (m coverModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.canceled = true
			return m, tea.Quit
		case key.Matches(msg, keys.Select):
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, keys.Toggle):
			if item, ok := m.list.SelectedItem().(coverItem); ok {
				m.selected[item.path] = !m.selected[item.path]
				m.rebuild()
			}
			return m, nil
		case key.Matches(msg, keys.All):
			all := len(m.Selected()) < len(m.paths)
			for _, path := range m.paths {
				m.selected[path] = all
			}
			m.rebuild()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m coverModel) View() string {
	return frame(m.list.View() + "\n" + renderFooter(
		helpLabel(keys.Toggle), helpLabel(keys.All), helpLabel(keys.Select), helpLabel(keys.Quit)))
}
