// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatfile

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// SERIALIZE TESTS
// =============================================================================

func TestSerialize_Layout(t *testing.T) {
	chat := &Chat{
		Model:     "mistral",
		CreatedAt: time.Date(2024, 5, 1, 14, 3, 22, 0, time.Local),
		Messages: []Message{
			{Role: RoleUser, Content: "hello"},
			{Role: RoleAssistant, Content: "Hi!\n\nHow can I help?"},
		},
	}

	got, err := Serialize(chat)
	require.NoError(t, err)

	want := "=== Ollama Chat ===\n" +
		"Model: mistral\n" +
		"Date: 2024-05-01 14:03:22\n" +
		strings.Repeat("=", 50) + "\n\n" +
		"[USER]\nhello\n\n" +
		strings.Repeat("-", 50) + "\n\n" +
		"[ASSISTANT]\nHi!\n\nHow can I help?\n\n" +
		strings.Repeat("-", 50) + "\n\n"
	assert.Equal(t, want, got)
}

func TestSerialize_ZeroCreatedAtUsesNow(t *testing.T) {
	before := time.Now().Truncate(time.Second)
	text, err := Serialize(&Chat{Model: "m"})
	require.NoError(t, err)

	chat, err := Deserialize(text, "x")
	require.NoError(t, err)
	assert.False(t, chat.CreatedAt.Before(before), "CreatedAt %v before %v", chat.CreatedAt, before)
}

func TestSerialize_RejectsUnknownRole(t *testing.T) {
	_, err := Serialize(&Chat{Messages: []Message{{Role: "system", Content: "x"}}})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestSeparatorWidths(t *testing.T) {
	assert.Len(t, Separator, 50)
	assert.Len(t, HeaderRule, 50)
	assert.Equal(t, strings.Repeat("-", 50), Separator)
	assert.Equal(t, strings.Repeat("=", 50), HeaderRule)
}

// =============================================================================
// ROUND-TRIP TESTS
// =============================================================================

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		messages []Message
	}{
		{"empty chat", nil},
		{"single line", []Message{{RoleUser, "hi"}, {RoleAssistant, "hello"}}},
		{"embedded blank lines", []Message{{RoleAssistant, "para one\n\npara two\n\n\npara three"}}},
		{"indentation kept", []Message{{RoleUser, "  indented\n\tcode()"}}},
		{"unicode", []Message{{RoleUser, "héllo 世界 🚀"}}},
		{"empty content", []Message{{RoleUser, ""}, {RoleAssistant, "ok"}}},
		{"near-markers", []Message{{RoleUser, "[USER] said\n -----\n== two equals\nDate of birth"}}},
		{"many turns", []Message{
			{RoleUser, "a"}, {RoleAssistant, "b"},
			{RoleUser, "c"}, {RoleAssistant, "d"},
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := &Chat{Model: "llama2:7b", Messages: tc.messages}
			require.Empty(t, Collisions(in))

			text, err := Serialize(in)
			require.NoError(t, err)

			out, err := Deserialize(text, "saved")
			require.NoError(t, err)
			assert.Equal(t, "llama2:7b", out.Model)
			assert.Equal(t, "saved", out.Name)
			if len(tc.messages) == 0 {
				assert.Empty(t, out.Messages)
			} else {
				assert.Equal(t, tc.messages, out.Messages)
			}
		})
	}
}

func TestRoundTrip_PreservesCreatedAt(t *testing.T) {
	created := time.Date(2023, 12, 31, 23, 59, 58, 0, time.Local)
	text, err := Serialize(&Chat{Model: "m", CreatedAt: created})
	require.NoError(t, err)

	out, err := Deserialize(text, "")
	require.NoError(t, err)
	assert.True(t, created.Equal(out.CreatedAt), "got %v", out.CreatedAt)
}

func TestRoundTrip_CreatedAtInOtherZone(t *testing.T) {
	created := time.Date(2024, 7, 4, 9, 30, 0, 0, time.FixedZone("UTC+5", 5*60*60))
	text, err := Serialize(&Chat{Model: "m", CreatedAt: created})
	require.NoError(t, err)
	assert.Contains(t, text, "Date: "+created.Local().Format(DateLayout)+"\n")

	out, err := Deserialize(text, "")
	require.NoError(t, err)
	assert.True(t, created.Equal(out.CreatedAt), "got %v, want %v", out.CreatedAt, created)
}

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestParse_BoundaryHandling(t *testing.T) {
	text := strings.Join([]string{
		"=== Ollama Chat ===",
		"Model: mistral",
		"Date: 2024-01-02 03:04:05",
		strings.Repeat("=", 50),
		"",
		"[USER]",
		"What is Go?",
		"",
		strings.Repeat("-", 50),
		"",
		"[ASSISTANT]",
		"A programming language.",
		"",
		strings.Repeat("-", 50),
		"",
	}, "\n")

	chat, err := Deserialize(text, "chat_20240102_030405")
	require.NoError(t, err)

	assert.Equal(t, "mistral", chat.Model)
	assert.Equal(t, "chat_20240102_030405", chat.Name)
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, Message{RoleUser, "What is Go?"}, chat.Messages[0])
	assert.Equal(t, Message{RoleAssistant, "A programming language."}, chat.Messages[1])
	assert.True(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local).Equal(chat.CreatedAt), "got %v", chat.CreatedAt)
}

func TestParse_MissingModelIsUnknown(t *testing.T) {
	chat, err := Deserialize("[USER]\nhi\n", "")
	require.NoError(t, err)
	assert.Equal(t, UnknownModel, chat.Model)
	assert.Equal(t, []Message{{RoleUser, "hi"}}, chat.Messages)
}

func TestParse_LastModelWins(t *testing.T) {
	chat, err := Deserialize("Model: a\nModel:  b  \n[USER]\nx\n", "")
	require.NoError(t, err)
	assert.Equal(t, "b", chat.Model)
}

func TestParse_OpenMessageFlushedAtEOF(t *testing.T) {
	chat, err := Deserialize("[USER]\nq\n[ASSISTANT]\nline 1\n\nline 2", "")
	require.NoError(t, err)
	assert.Equal(t, []Message{
		{RoleUser, "q"},
		{RoleAssistant, "line 1\n\nline 2"},
	}, chat.Messages)
}

func TestParse_MarkerWithoutLinesIsDropped(t *testing.T) {
	chat, err := Deserialize("[USER]\n[ASSISTANT]\nanswer\n", "")
	require.NoError(t, err)
	assert.Equal(t, []Message{{RoleAssistant, "answer"}}, chat.Messages)
}

func TestParse_TextOutsideMessagesIgnored(t *testing.T) {
	text := "stray\n[USER]\nin\n" + Separator + "\nalso stray\n"
	chat, err := Deserialize(text, "")
	require.NoError(t, err)
	assert.Equal(t, []Message{{RoleUser, "in"}}, chat.Messages)
}

func TestParse_MetadataLinesNeverContent(t *testing.T) {
	text := "[USER]\nbefore\n=== not content\nDate: whenever\nafter\n"
	chat, err := Deserialize(text, "")
	require.NoError(t, err)
	assert.Equal(t, []Message{{RoleUser, "before\nafter"}}, chat.Messages)
	assert.True(t, chat.CreatedAt.IsZero())
}

func TestParse_CRLF(t *testing.T) {
	text := "Model: m\r\n[USER]\r\nhi\r\n\r\n" + Separator + "\r\n"
	chat, err := Deserialize(text, "")
	require.NoError(t, err)
	assert.Equal(t, "m", chat.Model)
	assert.Equal(t, []Message{{RoleUser, "hi"}}, chat.Messages)
}

func TestParse_MarkersMustMatchWholeLine(t *testing.T) {
	chat, err := Deserialize("[USER]\n[USER] again\n [ASSISTANT]\n", "")
	require.NoError(t, err)
	assert.Equal(t, []Message{{RoleUser, "[USER] again\n [ASSISTANT]"}}, chat.Messages)
}

func TestParse_InvalidUTF8(t *testing.T) {
	_, err := Deserialize("[USER]\n\xff\xfe\n", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestParse_ReadError(t *testing.T) {
	_, err := Parse(failingReader{}, "")
	assert.ErrorIs(t, err, ErrMalformed)
}

// =============================================================================
// RESERVED LINE TESTS
// =============================================================================

func TestIsReserved(t *testing.T) {
	reserved := []string{
		"[USER]", "[ASSISTANT]", Separator, "===", "=== Ollama Chat ===",
		HeaderRule, "Date: today", "Date:", "Model: x",
	}
	for _, line := range reserved {
		assert.True(t, IsReserved(line), "%q should be reserved", line)
	}

	plain := []string{
		"", "[user]", "[USER] ", "--", Separator + "-", "==", "Model:x", "date: x", "hello",
	}
	for _, line := range plain {
		assert.False(t, IsReserved(line), "%q should not be reserved", line)
	}
}

func TestCollisions(t *testing.T) {
	chat := &Chat{Messages: []Message{
		{RoleUser, "fine"},
		{RoleAssistant, "see below\n[USER]\nand\n" + Separator},
		{RoleUser, "Model: gpt"},
	}}

	got := Collisions(chat)
	require.Len(t, got, 3)
	assert.Equal(t, Collision{Message: 1, Line: 2, Text: "[USER]"}, got[0])
	assert.Equal(t, Collision{Message: 1, Line: 4, Text: Separator}, got[1])
	assert.Equal(t, Collision{Message: 2, Line: 1, Text: "Model: gpt"}, got[2])
	assert.Contains(t, got[0].String(), "message 1 line 2")
}

func TestCollisions_ExplainRoundTripLoss(t *testing.T) {
	in := &Chat{Model: "m", Messages: []Message{
		{RoleAssistant, "before\n[USER]\nafter"},
	}}
	require.NotEmpty(t, Collisions(in))

	text, err := Serialize(in)
	require.NoError(t, err)
	out, err := Deserialize(text, "")
	require.NoError(t, err)

	// The embedded marker splits the message in two.
	assert.Equal(t, []Message{
		{RoleAssistant, "before"},
		{RoleUser, "after"},
	}, out.Messages)
}

func TestCollisions_CarriageReturn(t *testing.T) {
	in := &Chat{Model: "m", Messages: []Message{
		{RoleUser, "a\r\nb"},
	}}
	assert.Equal(t, []Collision{{Message: 0, Line: 1, Text: "a\r"}}, Collisions(in))

	text, err := Serialize(in)
	require.NoError(t, err)
	out, err := Deserialize(text, "")
	require.NoError(t, err)
	assert.Equal(t, "a\nb", out.Messages[0].Content)
}

// =============================================================================
// CHAT HELPERS
// =============================================================================

func TestChatHelpers(t *testing.T) {
	chat := &Chat{Messages: []Message{
		{RoleUser, "first"}, {RoleAssistant, "a1"}, {RoleUser, "second"}, {RoleAssistant, "a2"},
	}}
	assert.Equal(t, "first", chat.FirstUserMessage())
	assert.Equal(t, "a2", chat.LastAssistantMessage())

	clone := chat.Clone()
	clone.Messages[0].Content = "changed"
	assert.Equal(t, "first", chat.Messages[0].Content)

	assert.Equal(t, "[ASSISTANT]", RoleAssistant.Marker())
	assert.False(t, Role("tool").Valid())
}
