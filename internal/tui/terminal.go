package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"coverkeep/internal/metadata"
	"coverkeep/internal/reconcile"
)

// ErrCanceled is returned when the user leaves a prompt without answering.
var ErrCanceled = errors.New("canceled")

// Terminal runs the interactive prompts on a terminal. Zero values use the
// process stdin and stdout.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

// Interactive reports whether stdin and stdout are both terminals.
func Interactive() bool {
	return isTTY(os.Stdin.Fd()) && isTTY(os.Stdout.Fd())
}

func isTTY(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (t Terminal) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if t.In != nil {
		opts = append(opts, tea.WithInput(t.In))
	}
	if t.Out != nil {
		opts = append(opts, tea.WithOutput(t.Out))
	} else {
		opts = append(opts, tea.WithAltScreen())
	}
	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("run prompt: %w", err)
	}
	return final, nil
}

// Choose asks the user which of several catalog images is meant. ok is false
// when the user cancels.
func (t Terminal) Choose(ctx context.Context, title string, candidates []string) (string, bool, error) {
	if len(candidates) == 0 {
		return "", false, nil
	}
	final, err := t.run(ctx, newPickerModel(title, candidates))
	if err != nil {
		return "", false, err
	}
	m, ok := final.(pickerModel)
	if !ok {
		return "", false, fmt.Errorf("unexpected model type %T", final)
	}
	if m.canceled || m.selected == "" {
		return "", false, nil
	}
	return m.selected, true, nil
}

// SelectCovers lets the user keep any subset of the downloaded covers.
// Canceling keeps none.
func (t Terminal) SelectCovers(ctx context.Context, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	final, err := t.run(ctx, newCoverModel(paths))
	if err != nil {
		return nil, err
	}
	m, ok := final.(coverModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}
	if m.canceled {
		return nil, nil
	}
	return m.Selected(), nil
}

// PromptMetadata collects metadata for a staged book before it is catalogued.
func (t Terminal) PromptMetadata(ctx context.Context, req reconcile.PromptRequest) (metadata.Record, reconcile.Decision, error) {
	final, err := t.run(ctx, newFormModel(req.Prefill, formOptions{
		Heading:      "New book: " + req.Key,
		Detail:       filepath.Base(req.StagedPath),
		KnownGenres:  req.Genres,
		AllowSkipAll: true,
	}))
	if err != nil {
		return metadata.Record{}, reconcile.Decline, err
	}
	m, ok := final.(formModel)
	if !ok {
		return metadata.Record{}, reconcile.Decline, fmt.Errorf("unexpected model type %T", final)
	}
	if m.decision == reconcile.Decline {
		return metadata.Record{}, reconcile.Decline, nil
	}
	return m.result, m.decision, nil
}

// EditMetadata opens the form on an existing record.
func (t Terminal) EditMetadata(ctx context.Context, key string, rec metadata.Record, genres []string) (metadata.Record, error) {
	final, err := t.run(ctx, newFormModel(rec, formOptions{
		Heading:     "Edit metadata",
		Detail:      key,
		KnownGenres: genres,
	}))
	if err != nil {
		return metadata.Record{}, err
	}
	m, ok := final.(formModel)
	if !ok {
		return metadata.Record{}, fmt.Errorf("unexpected model type %T", final)
	}
	if m.decision != reconcile.Accept || !m.done {
		return metadata.Record{}, ErrCanceled
	}
	return m.result, nil
}
