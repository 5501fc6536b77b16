// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the storage, config and
// terminal layers.
//
// # Key Functions
//
// File Operations:
//   - AtomicWrite: crash-safe streaming write (temp file, fsync, rename)
//   - AtomicWriteFile: the same for an in-memory buffer
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth, PadWidth: column-aware truncation and padding
//   - SingleLine: flatten multi-line text for one-line previews
//
// # Usage
//
//	err := util.AtomicWrite(path, 0o644, 0o755, func(w io.Writer) error {
//		return chatfile.Write(w, chat)
//	})
//
//	preview := util.TruncateWidth(util.SingleLine(msg), 40)
package util
