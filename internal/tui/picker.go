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

// candidateItem is one catalog file offered by the picker.
type candidateItem struct {
	path string
}

func (c candidateItem) FilterValue() string { return filepath.Base(c.path) }

type candidateDelegate struct{}

func (candidateDelegate) Height() int                         { return 1 }
func (candidateDelegate) Spacing() int                        { return 0 }
func (candidateDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (candidateDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	c, ok := item.(candidateItem)
	if !ok {
		return
	}
	name := filepath.Base(c.path)
	if index == m.Index() {
		_, _ = fmt.Fprint(w, StyleHighlight.Render("› "+name))
		return
	}
	_, _ = fmt.Fprint(w, "  "+StyleNormal.Render(name))
}

type pickerModel struct {
	list     list.Model
	selected string
	canceled bool
}

func newPickerModel(title string, candidates []string) pickerModel {
	items := make([]list.Item, len(candidates))
	for i, path := range candidates {
		items[i] = candidateItem{path: path}
	}
	l := list.New(items, candidateDelegate{}, 60, min(len(candidates)+6, 20))
	l.Title = fmt.Sprintf("Several catalog images match %q", textutil.DisplayTitle(title))
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = StyleHeader
	l.Styles.HelpStyle = StyleHelp
	return pickerModel{list: l}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if item, ok := m.list.SelectedItem().(candidateItem); ok {
				m.selected = item.path
			}
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	return frame(m.list.View() + "\n" + renderFooter(helpLabel(keys.Select), helpLabel(keys.Quit)))
}
