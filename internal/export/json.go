// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/ollama-chat/internal/chatfile"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// Document is the JSON form of a chat.
type Document struct {
	Name      string            `json:"name,omitempty"`
	Model     string            `json:"model"`
	CreatedAt time.Time         `json:"created_at,omitzero"`
	Messages  []DocumentMessage `json:"messages"`
}

// DocumentMessage is one message of a Document.
type DocumentMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// JSONExporter exports chats to JSON. Metadata is always included.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	return &JSONExporter{options: opts.withDefaults()}
}

// Export converts a chat to indented JSON.
func (e *JSONExporter) Export(chat *chatfile.Chat) ([]byte, error) {
	if err := validate(chat); err != nil {
		return nil, err
	}

	doc := Document{
		Name:      chat.Name,
		Model:     chat.Model,
		CreatedAt: chat.CreatedAt,
		Messages:  make([]DocumentMessage, 0, len(chat.Messages)),
	}
	for _, m := range chat.Messages {
		doc.Messages = append(doc.Messages, DocumentMessage{Role: string(m.Role), Content: m.Content})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
