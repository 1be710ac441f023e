package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"coverkeep/internal/metadata"
	"coverkeep/internal/reconcile"
	"coverkeep/internal/textutil"
)

const (
	fieldTitle = iota
	fieldAuthor
	fieldPublicationDate
	fieldPageCount
	fieldGenres
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Author", "Published", "Pages", "Genres"}

// formOptions configures the metadata form.
type formOptions struct {
	Heading string
	Detail  string
	// KnownGenres are shown as a hint under the genre field.
	KnownGenres  []string
	AllowSkipAll bool
}

type formModel struct {
	inputs   []textinput.Model
	focused  int
	opts     formOptions
	err      error
	result   metadata.Record
	decision reconcile.Decision
	done     bool
}

func newFormModel(prefill metadata.Record, opts formOptions) formModel {
	m := formModel{inputs: make([]textinput.Model, fieldCount), opts: opts, decision: reconcile.Decline}

	const fieldWidth = 42
	values := [fieldCount]string{
		prefill.Title,
		prefill.Author,
		prefill.PublicationDate,
		prefill.PageCount,
		strings.Join(prefill.Genres, ", "),
	}
	placeholders := [fieldCount]string{"Book title", "Author name", "1937", "310", "comma, separated, genres"}
	limits := [fieldCount]int{200, 100, 20, 10, 300}
	for i := range m.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.SetValue(values[i])
		in.CharLimit = limits[i]
		in.Width = fieldWidth
		in.Prompt = "│ "
		m.inputs[i] = in
	}
	m.focused = fieldTitle
	if strings.TrimSpace(prefill.Author) == "" {
		m.focused = fieldAuthor
	}
	m.inputs[m.focused].Focus()
	return m
}

func (m formModel) record() metadata.Record {
	return metadata.Record{
		Title:           strings.TrimSpace(m.inputs[fieldTitle].Value()),
		Author:          strings.TrimSpace(m.inputs[fieldAuthor].Value()),
		PublicationDate: strings.TrimSpace(m.inputs[fieldPublicationDate].Value()),
		PageCount:       strings.TrimSpace(m.inputs[fieldPageCount].Value()),
		Genres:          textutil.SplitList(m.inputs[fieldGenres].Value()),
	}
}

// submit finishes the form with decision unless required fields are blank.
func (m formModel) submit(decision reconcile.Decision) (tea.Model, tea.Cmd) {
	rec := m.record()
	switch {
	case rec.Title == "":
		m.err = errors.New("title is required")
		return m.focus(fieldTitle), nil
	case rec.Author == "":
		m.err = errors.New("author is required")
		return m.focus(fieldAuthor), nil
	}
	m.result = rec
	m.decision = decision
	m.done = true
	return m, tea.Quit
}

func (m formModel) focus(i int) formModel {
	if i < 0 {
		i = len(m.inputs) - 1
	} else if i >= len(m.inputs) {
		i = 0
	}
	m.focused = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return m
}

func (m formModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m formModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Quit):
			m.decision = reconcile.Decline
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, keys.Select):
			return m.submit(reconcile.Accept)
		case key.Matches(msg, keys.SkipAll) && m.opts.AllowSkipAll:
			return m.submit(reconcile.SkipAll)
		case key.Matches(msg, keys.Next):
			return m.focus(m.focused + 1), nil
		case key.Matches(msg, keys.Prev):
			return m.focus(m.focused - 1), nil
		}
	}
	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m formModel) View() string {
	label := lipgloss.NewStyle().Foreground(ColorGray).Width(11).Align(lipgloss.Right).PaddingRight(1)
	active := label.Foreground(ColorYellow).Bold(true)

	var b strings.Builder
	b.WriteString(StyleHeader.Render(m.opts.Heading))
	b.WriteString("\n")
	if m.opts.Detail != "" {
		b.WriteString(StyleHelp.Render(m.opts.Detail))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(StyleError.Render("Error: " + m.err.Error()))
		b.WriteString("\n\n")
	}
	for i, name := range fieldLabels {
		if i == m.focused {
			b.WriteString(active.Render("› " + name))
		} else {
			b.WriteString(label.Render(name))
		}
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
		if i == fieldGenres && len(m.opts.KnownGenres) > 0 {
			b.WriteString(label.Render(""))
			b.WriteString(StyleTag.Render(strings.Join(m.opts.KnownGenres, ", ")))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	hints := []string{helpLabel(keys.Next), helpLabel(keys.Select)}
	if m.opts.AllowSkipAll {
		hints = append(hints, helpLabel(keys.SkipAll))
	}
	hints = append(hints, textutil.Ternary(m.opts.AllowSkipAll, "esc skip this book", helpLabel(keys.Quit)))
	b.WriteString(renderFooter(hints...))
	return frame(b.String())
}
