// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"strconv"
	"strings"

	"github.com/jeranaias/ollama-chat/internal/util"
)

// FormatChatList renders chats as a fixed-width table.
func FormatChatList(chats []ChatMeta) string {
	if len(chats) == 0 {
		return "No saved chats."
	}

	const rule = "------------------------------------------------------------------------------"

	var sb strings.Builder
	sb.WriteString(rule + "\n")
	sb.WriteString(row("Name", "Created", "Model", "Msgs", "Preview"))
	sb.WriteString(rule + "\n")

	for _, c := range chats {
		sb.WriteString(row(
			c.Name,
			c.CreatedAt.Format("2006-01-02 15:04"),
			c.Model,
			strconv.Itoa(c.MessageCount),
			c.Preview,
		))
	}
	return sb.String()
}

func row(name, created, model, count, preview string) string {
	return util.PadWidth(util.TruncateWidth(name, 24), 24) + " " +
		util.PadWidth(created, 16) + " " +
		util.PadWidth(util.TruncateWidth(model, 16), 16) + " " +
		util.PadWidth(count, 4) + " " +
		util.TruncateWidth(preview, 30) + "\n"
}
