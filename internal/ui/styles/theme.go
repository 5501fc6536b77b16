// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme names as stored in the config file.
const (
	Light = "Light"
	Dark  = "Dark"
)

// Theme holds the styles used by the terminal front end, bound to one
// output writer.
type Theme struct {
	Name    string
	Profile termenv.Profile

	renderer *lipgloss.Renderer

	Title          lipgloss.Style
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Prompt         lipgloss.Style
	Text           lipgloss.Style
	Muted          lipgloss.Style
	Info           lipgloss.Style
	Success        lipgloss.Style
	Warning        lipgloss.Style
	Error          lipgloss.Style
	Rule           lipgloss.Style
}

// NewTheme builds a theme for w, detecting the color profile from the
// terminal and environment (NO_COLOR, CLICOLOR). name is Light or Dark;
// anything else is treated as Light.
func NewTheme(name string, w io.Writer) *Theme {
	out := termenv.NewOutput(w)
	return build(name, w, out.EnvColorProfile())
}

// NewPlainTheme builds a theme that emits no escape sequences.
func NewPlainTheme(name string, w io.Writer) *Theme {
	return build(name, w, termenv.Ascii)
}

func build(name string, w io.Writer, profile termenv.Profile) *Theme {
	if w == nil {
		w = io.Discard
	}
	if !strings.EqualFold(name, Dark) {
		name = Light
	} else {
		name = Dark
	}

	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profile)
	r.SetHasDarkBackground(name == Dark)

	t := &Theme{Name: name, Profile: profile, renderer: r}

	t.Title = r.NewStyle().Bold(true).Foreground(Purple)
	t.UserLabel = r.NewStyle().Bold(true).Foreground(Cyan)
	t.AssistantLabel = r.NewStyle().Bold(true).Foreground(Purple)
	t.Prompt = r.NewStyle().Bold(true).Foreground(Cyan)
	t.Text = r.NewStyle().Foreground(TextPrimary)
	t.Muted = r.NewStyle().Foreground(TextMuted)
	t.Info = r.NewStyle().Foreground(Cyan)
	t.Success = r.NewStyle().Foreground(Emerald)
	t.Warning = r.NewStyle().Foreground(Amber)
	t.Error = r.NewStyle().Bold(true).Foreground(Rose)
	t.Rule = r.NewStyle().Foreground(Overlay)

	return t
}

// IsDark reports whether the theme targets a dark background.
func (t *Theme) IsDark() bool {
	return t.Name == Dark
}

// Plain reports whether the theme emits no color.
func (t *Theme) Plain() bool {
	return t.Profile == termenv.Ascii
}

// Renderer returns the lipgloss renderer bound to the theme's writer.
func (t *Theme) Renderer() *lipgloss.Renderer {
	return t.renderer
}

// GlamourStyle names the glamour standard style matching the theme.
func (t *Theme) GlamourStyle() string {
	switch {
	case t.Plain():
		return "notty"
	case t.IsDark():
		return "dark"
	default:
		return "light"
	}
}

// Color resolves an adaptive color for this theme as a hex string.
func (t *Theme) Color(c lipgloss.AdaptiveColor) string {
	return Resolve(c, t.IsDark())
}
