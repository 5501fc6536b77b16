// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui renders chats and model downloads in the terminal.
//
// Pieces:
//
//	transcript.go   role labels and message blocks
//	markdown.go     glamour rendering for assistant replies
//	clipboard.go    copy the last reply
//	pull.go         bubbletea progress view for model downloads
//	progress.go     rate-limited plain text progress for non-TTY output
//
// Colors come from the styles subpackage.
package ui
