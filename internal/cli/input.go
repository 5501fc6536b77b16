// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

// errAborted is returned by a prompter when the user presses Ctrl+C at
// the prompt.
var errAborted = liner.ErrPromptAborted

// prompter reads one line of user input.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(line string)
	Close() error
}

// newPrompter returns a line editor with persistent history when in and
// out are terminals, and a plain line reader otherwise.
func newPrompter(in io.Reader, out io.Writer, historyFile string) prompter {
	if isTerminal(in) && isTerminal(out) {
		return newLineEditor(historyFile)
	}
	return newScanPrompter(in)
}

// =============================================================================
// LINE EDITOR
// =============================================================================

// lineEditor wraps liner for arrow-key history and line editing.
type lineEditor struct {
	state       *liner.State
	historyFile string
}

func newLineEditor(historyFile string) *lineEditor {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetTabCompletionStyle(liner.TabPrints)
	state.SetCompleter(completeCommand)

	e := &lineEditor{state: state, historyFile: historyFile}
	if f, err := os.Open(historyFile); err == nil {
		_, _ = state.ReadHistory(f)
		f.Close()
	}
	return e
}

func (e *lineEditor) Prompt(prompt string) (string, error) {
	return e.state.Prompt(prompt)
}

func (e *lineEditor) AppendHistory(line string) {
	e.state.AppendHistory(line)
}

// Close saves history (0600) and restores the terminal.
func (e *lineEditor) Close() error {
	if e.historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(e.historyFile), 0o755); err == nil {
			if f, err := os.OpenFile(e.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
				_, _ = e.state.WriteHistory(f)
				f.Close()
			}
		}
	}
	return e.state.Close()
}

// completeCommand completes slash commands.
func completeCommand(line string) []string {
	if !strings.HasPrefix(line, "/") || strings.Contains(line, " ") {
		return nil
	}
	var out []string
	for _, c := range slashCommands {
		if strings.HasPrefix(c.name, line) {
			out = append(out, c.name)
		}
	}
	return out
}

// =============================================================================
// SCAN PROMPTER
// =============================================================================

// scanPrompter reads lines from a non-terminal reader. Prompts are not
// echoed.
type scanPrompter struct {
	sc *bufio.Scanner
}

func newScanPrompter(in io.Reader) *scanPrompter {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &scanPrompter{sc: sc}
}

func (p *scanPrompter) Prompt(string) (string, error) {
	if p.sc.Scan() {
		return strings.TrimSuffix(p.sc.Text(), "\r"), nil
	}
	if err := p.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (p *scanPrompter) AppendHistory(string) {}

func (p *scanPrompter) Close() error { return nil }

// isEndOfInput reports whether err means the user is done typing.
func isEndOfInput(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, errAborted)
}
