// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/ollama-chat/internal/config"
	"github.com/jeranaias/ollama-chat/internal/ollama"
	"github.com/jeranaias/ollama-chat/internal/storage"
	"github.com/jeranaias/ollama-chat/internal/ui/styles"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates a configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates Ollama could not be reached
	ExitNetworkError = 5
	// ExitNotFoundError indicates a chat or model was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
	// ExitInterrupted follows the shell convention for SIGINT
	ExitInterrupted = 130
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "history", "config")
	Action  string // Action being performed (e.g., "show", "set")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError wraps argument and flag parsing failures.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	Resource string // "chat", "model"
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// Is lets NotFoundError for chats match storage.ErrChatNotFound.
func (e *NotFoundError) Is(target error) bool {
	return e.Resource == "chat" && target == storage.ErrChatNotFound
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode determines the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	var notFoundErr *NotFoundError
	var verrs config.ValidateErrors
	var verr config.ValidationError

	switch {
	case errors.Is(err, context.Canceled) || ollama.IsCanceled(err):
		return ExitInterrupted
	case errors.As(err, &usageErr):
		return ExitUsageError
	case errors.As(err, &verrs) || errors.As(err, &verr):
		return ExitConfigError
	case errors.As(err, &notFoundErr),
		errors.Is(err, storage.ErrChatNotFound),
		ollama.IsModelNotFound(err):
		return ExitNotFoundError
	case ollama.IsTimeout(err):
		return ExitTimeoutError
	case isNetworkError(err):
		return ExitNetworkError
	}
	return ExitGeneralError
}

func isNetworkError(err error) bool {
	if ollama.IsNotRunning(err) {
		return true
	}
	var ce *ollama.ClientError
	if errors.As(err, &ce) {
		return ce.Type == ollama.ErrTypeConnection
	}
	return false
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err to w with a hint for common failures.
func DisplayError(w io.Writer, theme *styles.Theme, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(w, theme.Warning.Render("Canceled"))
		return
	}

	fmt.Fprintf(w, "%s %s\n", theme.Error.Render("Error:"), err)

	if hint := errorHint(err); hint != "" {
		fmt.Fprintln(w, theme.Muted.Render(hint))
	}
}

func errorHint(err error) string {
	switch {
	case ollama.IsNotRunning(err), isNetworkError(err):
		return "Is Ollama running? Start it with: ollama serve"
	case ollama.IsModelNotFound(err):
		return "Download the model first: ollama-chat pull <name>"
	case errors.Is(err, storage.ErrChatNotFound):
		return "List saved chats with: ollama-chat history list"
	}
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return "Run with --help for usage."
	}
	return ""
}

// isUnknownCommand matches cobra's unknown command/flag errors, which are
// not typed.
func isUnknownCommand(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}
