// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ollama-chat/internal/ollama"
	"github.com/jeranaias/ollama-chat/internal/ui/styles"
)

const (
	maxBarWidth = 60
	barPadding  = 4
)

// =============================================================================
// MESSAGES
// =============================================================================

// PullProgressMsg carries one parsed progress chunk.
type PullProgressMsg ollama.PullProgress

// PullDoneMsg ends the download. Err is nil on success.
type PullDoneMsg struct {
	Err error
}

// =============================================================================
// PULL MODEL
// =============================================================================

// PullModel is the bubbletea model for a model download: a spinner with
// the server's status text and, once sizes are known, a progress bar.
type PullModel struct {
	name    string
	theme   *styles.Theme
	spinner spinner.Model
	bar     progress.Model

	status      string
	fraction    float64
	determinate bool

	done     bool
	canceled bool
	err      error
}

// NewPullModel creates the view for downloading name.
func NewPullModel(name string, theme *styles.Theme) PullModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(theme.Info),
	)
	bar := progress.New(
		progress.WithGradient(theme.Color(styles.GradientStart), theme.Color(styles.GradientEnd)),
		progress.WithWidth(40),
		progress.WithColorProfile(theme.Profile),
	)
	return PullModel{
		name:    name,
		theme:   theme,
		spinner: s,
		bar:     bar,
		status:  "starting",
	}
}

// Init starts the spinner.
func (m PullModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles progress, completion, resize and Ctrl+C.
func (m PullModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.canceled = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		w := msg.Width - barPadding*2
		if w > maxBarWidth {
			w = maxBarWidth
		}
		if w > 0 {
			m.bar.Width = w
		}
		return m, nil

	case PullProgressMsg:
		if msg.Status != "" {
			m.status = msg.Status
		}
		if f, ok := ollama.PullProgress(msg).Fraction(); ok {
			m.fraction = f
			m.determinate = true
		}
		return m, nil

	case PullDoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the current state.
func (m PullModel) View() string {
	var b strings.Builder

	switch {
	case m.done && m.err != nil:
		b.WriteString(m.theme.Error.Render(fmt.Sprintf("Failed to pull %s: %v", m.name, m.err)))
		b.WriteByte('\n')
		return b.String()
	case m.done:
		b.WriteString(m.theme.Success.Render(fmt.Sprintf("Pulled %s", m.name)))
		b.WriteByte('\n')
		return b.String()
	case m.canceled:
		b.WriteString(m.theme.Warning.Render("Download canceled"))
		b.WriteByte('\n')
		return b.String()
	}

	b.WriteString(m.spinner.View())
	b.WriteString(" Pulling ")
	b.WriteString(m.theme.Title.Render(m.name))
	b.WriteString(": ")
	b.WriteString(m.theme.Muted.Render(m.status))
	b.WriteByte('\n')

	if m.determinate {
		b.WriteString("  ")
		b.WriteString(m.bar.ViewAs(m.fraction))
		b.WriteByte('\n')
	}
	b.WriteString(m.theme.Muted.Render("  ctrl+c to cancel"))
	b.WriteByte('\n')
	return b.String()
}

// Status returns the last status text.
func (m PullModel) Status() string { return m.status }

// Fraction returns the last known progress and whether it is known.
func (m PullModel) Fraction() (float64, bool) { return m.fraction, m.determinate }

// Err returns the download error after completion.
func (m PullModel) Err() error { return m.err }

// Canceled reports whether the user quit before completion.
func (m PullModel) Canceled() bool { return m.canceled }

// =============================================================================
// RUNNER
// =============================================================================

// PullFunc starts a download, reporting each raw progress line.
type PullFunc func(ctx context.Context, onProgress func([]byte)) error

// PullOptions configures RunPull.
type PullOptions struct {
	Name   string
	Theme  *styles.Theme
	Input  io.Reader // nil disables keyboard input
	Output io.Writer
}

// RunPull runs pull under a bubbletea progress view. Quitting the view
// cancels the download and returns context.Canceled.
func RunPull(ctx context.Context, opts PullOptions, pull PullFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progOpts := []tea.ProgramOption{tea.WithOutput(opts.Output)}
	if opts.Input == nil {
		progOpts = append(progOpts, tea.WithInput(nil))
	} else {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	p := tea.NewProgram(NewPullModel(opts.Name, opts.Theme), progOpts...)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		err := pull(ctx, func(raw []byte) {
			if pr, ok := ollama.ParseProgress(raw); ok {
				p.Send(PullProgressMsg(pr))
			}
		})
		p.Send(PullDoneMsg{Err: err})
	}()

	final, runErr := p.Run()
	cancel()
	<-finished

	if runErr != nil {
		return fmt.Errorf("progress display: %w", runErr)
	}
	m, ok := final.(PullModel)
	if !ok {
		return errors.New("progress display: unexpected model")
	}
	if m.Canceled() {
		return context.Canceled
	}
	return m.Err()
}
