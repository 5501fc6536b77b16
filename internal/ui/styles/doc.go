// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles holds the color palette and the Light/Dark themes.
//
// A Theme owns a lipgloss renderer bound to one writer, so styles render
// with that writer's color profile. The configured theme name decides
// which half of each AdaptiveColor is used:
//
//	theme := styles.NewTheme(cfg.Theme, os.Stdout)
//	fmt.Println(theme.Error.Render("Error: Ollama is not running"))
//
// NewPlainTheme never emits escape sequences and is what non-TTY output
// and tests use.
package styles
