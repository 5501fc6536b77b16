// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/ollama-chat/internal/chatfile"
	"github.com/jeranaias/ollama-chat/internal/util"
)

// ErrEmptyChat is returned when there is nothing to export.
var ErrEmptyChat = errors.New("chat has no messages")

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for chat exporters.
type Exporter interface {
	// Export converts a chat to the target format and returns the content.
	Export(chat *chatfile.Chat) ([]byte, error)

	// FileExtension returns the file extension, including the dot.
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// Format names an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatMarkdown, FormatJSON, FormatHTML}
}

// ParseFormat accepts a format name or common alias ("md", "htm").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unsupported export format: %q (use markdown, json or html)", s)
}

// FormatForPath picks a format from a file extension. ok is false when the
// extension is not recognized.
func FormatForPath(path string) (Format, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", false
	}
	f, err := ParseFormat(ext)
	return f, err == nil
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// IncludeMetadata adds model, date and message count.
	IncludeMetadata bool

	// Theme for HTML export ("light" or "dark").
	// Default: "light"
	Theme string

	// Now stamps the export footer. Default: time.Now.
	Now func() time.Time
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		IncludeMetadata: true,
		Theme:           "light",
		Now:             time.Now,
	}
}

func (o *Options) withDefaults() *Options {
	if o == nil {
		return DefaultOptions()
	}
	out := *o
	if out.Theme == "" {
		out.Theme = "light"
	}
	out.Theme = strings.ToLower(out.Theme)
	if out.Now == nil {
		out.Now = time.Now
	}
	return &out
}

// New returns the exporter for format.
func New(format Format, opts *Options) (Exporter, error) {
	switch format {
	case FormatMarkdown:
		return NewMarkdownExporter(opts), nil
	case FormatJSON:
		return NewJSONExporter(opts), nil
	case FormatHTML:
		return NewHTMLExporter(opts), nil
	}
	return nil, fmt.Errorf("unsupported export format: %q", format)
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ToFile exports chat with exporter and writes the result atomically to path.
func ToFile(chat *chatfile.Chat, exporter Exporter, path string) error {
	content, err := exporter.Export(chat)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if err := util.AtomicWriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// DefaultFilename names an export of chat: its name, or "chat" when
// unnamed, plus the exporter's extension.
func DefaultFilename(chat *chatfile.Chat, exporter Exporter) string {
	return sanitizeFilename(chat.Name) + exporter.FileExtension()
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func validate(chat *chatfile.Chat) error {
	if chat == nil || len(chat.Messages) == 0 {
		return ErrEmptyChat
	}
	return nil
}

// title is the display title of chat.
func title(chat *chatfile.Chat) string {
	if chat.Name != "" {
		return chat.Name
	}
	if first := chat.FirstUserMessage(); first != "" {
		return util.TruncateRunes(util.SingleLine(first), 50)
	}
	return "Untitled chat"
}

// sanitizeFilename replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) > 50 {
		runes = runes[:50]
	}

	var b strings.Builder
	for _, r := range runes {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r), r < 32, r == 127:
			b.WriteRune('-')
		case r == ' ':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return "chat"
	}
	return b.String()
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format("2006-01-02 15:04:05")
}
