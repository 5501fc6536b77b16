// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export converts chats to shareable formats.
//
// # Supported Formats
//
//   - Markdown: front matter plus one heading per message
//   - JSON: machine-readable, roles in lower case
//   - HTML: standalone page with embedded CSS and highlighted code blocks
//
// # Usage
//
//	exporter, err := export.New(export.FormatMarkdown, nil)
//	data, err := exporter.Export(chat)
//
// Write straight to a file:
//
//	err := export.ToFile(chat, exporter, "work.md")
package export
