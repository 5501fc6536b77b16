// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"
)

// =============================================================================
// FORMAT CONSTANTS
// =============================================================================

const (
	// Header is the first line of every chat file.
	Header = "=== Ollama Chat ==="

	// HeaderRule closes the metadata block.
	HeaderRule = "=================================================="

	// Separator follows every message.
	Separator = "--------------------------------------------------"

	// DateLayout is the layout of the Date: line, in local time.
	DateLayout = "2006-01-02 15:04:05"

	// UnknownModel is used when a file carries no Model: line.
	UnknownModel = "Unknown"

	// Extension is the file extension of persisted chats.
	Extension = ".txt"

	modelPrefix = "Model: "
	datePrefix  = "Date:"
	metaPrefix  = "==="
)

var (
	// ErrMalformed is returned when a chat file cannot be decoded.
	ErrMalformed = errors.New("malformed chat file")

	// ErrInvalidRole is returned when writing a message with an unknown role.
	ErrInvalidRole = errors.New("invalid message role")
)

// =============================================================================
// SERIALIZATION
// =============================================================================

// Write encodes chat in the persisted text format. The Date line holds
// chat.CreatedAt in local time, or the current time when it is zero.
//
// Message content is written verbatim. Content containing reserved lines
// (see IsReserved) or lines ending in a carriage return will not read
// back identically; use Collisions to detect that before saving.
func Write(w io.Writer, chat *Chat) error {
	for i, m := range chat.Messages {
		if !m.Role.Valid() {
			return fmt.Errorf("message %d: %w: %q", i, ErrInvalidRole, m.Role)
		}
	}

	created := chat.CreatedAt.Local()
	if chat.CreatedAt.IsZero() {
		created = time.Now()
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(Header + "\n")
	bw.WriteString(modelPrefix + chat.Model + "\n")
	bw.WriteString(datePrefix + " " + created.Format(DateLayout) + "\n")
	bw.WriteString(HeaderRule + "\n\n")

	for _, m := range chat.Messages {
		bw.WriteString(m.Role.Marker() + "\n")
		bw.WriteString(m.Content + "\n\n")
		bw.WriteString(Separator + "\n\n")
	}

	return bw.Flush()
}

// Serialize returns the persisted text form of chat.
func Serialize(chat *Chat) (string, error) {
	var sb strings.Builder
	if err := Write(&sb, chat); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// =============================================================================
// PARSER
// =============================================================================

// parseState is the position of the scanner relative to message blocks.
type parseState int

const (
	stateOutside parseState = iota
	stateInUser
	stateInAssistant
)

func (s parseState) String() string {
	switch s {
	case stateOutside:
		return "outside"
	case stateInUser:
		return "in-user"
	case stateInAssistant:
		return "in-assistant"
	default:
		return "unknown"
	}
}

func (s parseState) role() Role {
	switch s {
	case stateInUser:
		return RoleUser
	case stateInAssistant:
		return RoleAssistant
	default:
		return ""
	}
}

// parser consumes a chat file one line at a time.
type parser struct {
	state parseState
	buf   []string
	chat  *Chat
}

func (p *parser) feed(line string) {
	switch {
	case strings.HasPrefix(line, modelPrefix):
		// Honored in every state; the last one wins.
		p.chat.Model = strings.TrimSpace(strings.TrimPrefix(line, modelPrefix))

	case line == RoleUser.Marker():
		p.flush()
		p.state = stateInUser

	case line == RoleAssistant.Marker():
		p.flush()
		p.state = stateInAssistant

	case line == Separator:
		p.flush()
		p.state = stateOutside

	case strings.HasPrefix(line, metaPrefix):
		// header or rule

	case strings.HasPrefix(line, datePrefix):
		if p.chat.CreatedAt.IsZero() {
			value := strings.TrimSpace(strings.TrimPrefix(line, datePrefix))
			if t, err := time.ParseInLocation(DateLayout, value, time.Local); err == nil {
				p.chat.CreatedAt = t
			}
		}

	default:
		if p.state != stateOutside {
			p.buf = append(p.buf, line)
		}
	}
}

// flush emits the open message, if it buffered at least one line.
func (p *parser) flush() {
	if p.state != stateOutside && len(p.buf) > 0 {
		p.chat.Messages = append(p.chat.Messages, Message{
			Role:    p.state.role(),
			Content: trimBlankLines(p.buf),
		})
	}
	p.buf = p.buf[:0]
}

// Parse decodes a chat file. name becomes Chat.Name. A file without a
// Model: line gets UnknownModel. Invalid UTF-8 or a read failure yields
// an error wrapping ErrMalformed.
func Parse(r io.Reader, name string) (*Chat, error) {
	p := &parser{chat: &Chat{Name: name}}
	br := bufio.NewReader(r)

	for lineNo := 1; ; lineNo++ {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("%w: read line %d: %v", ErrMalformed, lineNo, err)
		}
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			if !utf8.ValidString(line) {
				return nil, fmt.Errorf("%w: line %d is not valid UTF-8", ErrMalformed, lineNo)
			}
			p.feed(line)
		}
		if err == io.EOF {
			break
		}
	}
	p.flush()

	if p.chat.Model == "" {
		p.chat.Model = UnknownModel
	}
	return p.chat, nil
}

// Deserialize parses text produced by Serialize.
func Deserialize(text, name string) (*Chat, error) {
	return Parse(strings.NewReader(text), name)
}

// trimBlankLines joins lines after dropping blank lines at both ends.
// Interior blank lines are kept.
func trimBlankLines(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

// =============================================================================
// RESERVED LINES
// =============================================================================

// IsReserved reports whether line would be taken as structure rather
// than content when it appears inside a message.
func IsReserved(line string) bool {
	return line == RoleUser.Marker() ||
		line == RoleAssistant.Marker() ||
		line == Separator ||
		strings.HasPrefix(line, metaPrefix) ||
		strings.HasPrefix(line, datePrefix) ||
		strings.HasPrefix(line, modelPrefix)
}

// Collision is a message line that will not survive a save/load cycle:
// a reserved line, or one ending in "\r", which Parse strips so that
// CRLF files load.
type Collision struct {
	Message int    // index into Chat.Messages
	Line    int    // 1-based line within the message
	Text    string // the offending line
}

func (c Collision) String() string {
	return fmt.Sprintf("message %d line %d: %q", c.Message, c.Line, c.Text)
}

// Collisions lists every line of chat's messages that the parser would
// read as a marker, separator or metadata, or whose trailing "\r" it
// would drop.
func Collisions(chat *Chat) []Collision {
	var out []Collision
	for i, m := range chat.Messages {
		for j, line := range strings.Split(m.Content, "\n") {
			if strings.HasSuffix(line, "\r") || IsReserved(line) {
				out = append(out, Collision{Message: i, Line: j + 1, Text: line})
			}
		}
	}
	return out
}
