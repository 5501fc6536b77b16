// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatfile reads and writes the plain-text chat transcript format.
//
// A file looks like:
//
//	=== Ollama Chat ===
//	Model: mistral
//	Date: 2024-05-01 14:03:22
//	==================================================
//
//	[USER]
//	hello
//
//	--------------------------------------------------
//
//	[ASSISTANT]
//	Hi! How can I help?
//
//	--------------------------------------------------
//
// Parsing is a single forward scan with three states (outside a message,
// in a user message, in an assistant message). Role markers and the
// separator must match a whole line. Lines starting with "===", "Date:"
// or "Model: " are metadata wherever they appear, so message content that
// contains such a line does not round-trip. Collisions reports those lines.
package chatfile
