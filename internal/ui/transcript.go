// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jeranaias/ollama-chat/internal/chatfile"
	"github.com/jeranaias/ollama-chat/internal/ui/styles"
)

var titleCaser = cases.Title(language.English)

// RoleLabel is the display name for a role: "User", "Assistant".
func RoleLabel(r chatfile.Role) string {
	return titleCaser.String(string(r))
}

// Label renders the styled "Name:" prefix for a role.
func Label(theme *styles.Theme, r chatfile.Role) string {
	text := RoleLabel(r) + ":"
	if r == chatfile.RoleUser {
		return theme.UserLabel.Render(text)
	}
	return theme.AssistantLabel.Render(text)
}

// RenderMessage renders one message as a label line followed by content.
// Assistant content goes through md when it is non-nil.
func RenderMessage(theme *styles.Theme, md *Markdown, m chatfile.Message) string {
	var b strings.Builder
	b.WriteString(Label(theme, m.Role))
	b.WriteByte('\n')

	content := m.Content
	if m.Role == chatfile.RoleAssistant && md != nil {
		content = strings.TrimRight(md.Render(content), "\n")
	}
	b.WriteString(content)
	b.WriteByte('\n')
	return b.String()
}

// RenderTranscript renders a whole chat with a header line.
func RenderTranscript(theme *styles.Theme, md *Markdown, chat *chatfile.Chat) string {
	var b strings.Builder

	title := chat.Name
	if title == "" {
		title = "Untitled chat"
	}
	b.WriteString(theme.Title.Render(title))
	b.WriteByte('\n')

	meta := "Model: " + chat.Model
	if !chat.CreatedAt.IsZero() {
		meta += "  " + chat.CreatedAt.Format(chatfile.DateLayout)
	}
	b.WriteString(theme.Muted.Render(meta))
	b.WriteString("\n\n")

	for i, m := range chat.Messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(RenderMessage(theme, md, m))
	}
	return b.String()
}
