// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/ollama-chat/internal/ui/styles"
)

// DefaultWrapWidth is used when the terminal width is unknown.
const DefaultWrapWidth = 80

// Markdown renders model replies for the terminal.
type Markdown struct {
	renderer *glamour.TermRenderer
}

// NewMarkdown builds a renderer using the theme's glamour style.
// width <= 0 uses DefaultWrapWidth.
func NewMarkdown(theme *styles.Theme, width int) (*Markdown, error) {
	if width <= 0 {
		width = DefaultWrapWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Markdown{renderer: r}, nil
}

// Render returns the rendered text, or the input unchanged if rendering
// fails.
func (m *Markdown) Render(text string) string {
	if m == nil || m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return out
}
