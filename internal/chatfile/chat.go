// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatfile

import (
	"strings"
	"time"
)

// =============================================================================
// ROLES
// =============================================================================

// Role identifies who wrote a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Marker returns the line that opens a message of this role, e.g. "[USER]".
func (r Role) Marker() string {
	return "[" + strings.ToUpper(string(r)) + "]"
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// =============================================================================
// CHAT TYPES
// =============================================================================

// Message is one turn of a conversation.
type Message struct {
	Role    Role
	Content string
}

// Chat is a conversation as persisted on disk.
type Chat struct {
	// Name is the file's base name without extension. It is supplied by
	// the storage layer and never written into the file body.
	Name string

	Model     string
	Messages  []Message
	CreatedAt time.Time
}

// Clone returns a deep copy of the chat.
func (c *Chat) Clone() *Chat {
	if c == nil {
		return nil
	}
	out := *c
	out.Messages = append([]Message(nil), c.Messages...)
	return &out
}

// FirstUserMessage returns the content of the first user message, or "".
func (c *Chat) FirstUserMessage() string {
	for _, m := range c.Messages {
		if m.Role == RoleUser {
			return m.Content
		}
	}
	return ""
}

// LastAssistantMessage returns the content of the most recent assistant
// message, or "" if there is none.
func (c *Chat) LastAssistantMessage() string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant {
			return c.Messages[i].Content
		}
	}
	return ""
}
