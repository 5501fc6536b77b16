// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

var (
	// ErrClipboardUnavailable is returned when no clipboard utility exists
	// (e.g. xclip/xsel missing on Linux).
	ErrClipboardUnavailable = errors.New("clipboard unavailable")

	// ErrNothingToCopy is returned for empty text.
	ErrNothingToCopy = errors.New("nothing to copy")
)

// Swapped in tests.
var (
	clipboardWrite       = clipboard.WriteAll
	clipboardUnsupported = func() bool { return clipboard.Unsupported }
)

// CopyText puts text on the system clipboard.
func CopyText(text string) error {
	if text == "" {
		return ErrNothingToCopy
	}
	if clipboardUnsupported() {
		return ErrClipboardUnavailable
	}
	if err := clipboardWrite(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
