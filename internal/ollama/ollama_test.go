// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
package ollama

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// REQUEST ENCODING TESTS
// =============================================================================

func TestEncodeListModelsRequest(t *testing.T) {
	method, path := EncodeListModelsRequest()
	assert.Equal(t, "GET", method)
	assert.Equal(t, "/api/tags", path)
}

func TestEncodePullRequest(t *testing.T) {
	body, err := EncodePullRequest("mistral")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"mistral"}`, string(body))
}

func TestEncodeGenerateRequest(t *testing.T) {
	body, err := EncodeGenerateRequest("llama2", "why is the sky blue?\n")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "llama2", got["model"])
	assert.Equal(t, "why is the sky blue?\n", got["prompt"])
	assert.Equal(t, true, got["stream"])
	assert.Len(t, got, 3)
}

// =============================================================================
// CHUNK DECODING TESTS
// =============================================================================

func TestDecodeChunk_EmptyLines(t *testing.T) {
	for _, line := range []string{"", "\n", "   \r\n"} {
		_, err := DecodeChunk(ChunkGeneration, []byte(line))
		assert.ErrorIs(t, err, ErrEmptyLine, "line %q", line)
	}
}

func TestDecodeChunk_Malformed(t *testing.T) {
	_, err := DecodeChunk(ChunkGeneration, []byte(`{"response": "unterminated`))
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, ChunkGeneration, parseErr.Kind)
	assert.Contains(t, parseErr.Error(), "malformed generation chunk")
}

func TestDecodeChunk_Generation(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		response    string
		hasResponse bool
		done        bool
	}{
		{"text", `{"model":"m","response":"Hel","done":false}`, "Hel", true, false},
		{"empty string", `{"response":"","done":true}`, "", true, true},
		{"absent", `{"done":true}`, "", false, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			chunk, err := DecodeChunk(ChunkGeneration, []byte(tc.line+"\n"))
			require.NoError(t, err)
			assert.Equal(t, tc.response, chunk.Response)
			assert.Equal(t, tc.hasResponse, chunk.HasResponse)
			assert.Equal(t, tc.done, chunk.Done)
			assert.Equal(t, tc.line, string(chunk.Raw))
		})
	}
}

func TestDecodeChunk_PullProgress(t *testing.T) {
	chunk, err := DecodeChunk(ChunkPullProgress, []byte(`{"status":"downloading","digest":"sha256:abc","completed":50,"total":200}`))
	require.NoError(t, err)

	pct, ok := chunk.Progress.Percent()
	require.True(t, ok)
	assert.Equal(t, 25, pct)
	assert.Equal(t, "downloading", chunk.Progress.Status)
	assert.Equal(t, "sha256:abc", chunk.Progress.Digest)

	chunk, err = DecodeChunk(ChunkPullProgress, []byte(`{"status":"pulling manifest"}`))
	require.NoError(t, err)
	_, ok = chunk.Progress.Percent()
	assert.False(t, ok)

	chunk, err = DecodeChunk(ChunkPullProgress, []byte(`{"error":"pull model manifest: file does not exist"}`))
	require.NoError(t, err)
	assert.Equal(t, "pull model manifest: file does not exist", chunk.ServerError)
}

func TestDecodeChunk_ModelList(t *testing.T) {
	chunk, err := DecodeChunk(ChunkModelList, []byte(`{"models":[{"name":"mistral:latest","size":4109865159},{"name":"llama2"}]}`))
	require.NoError(t, err)
	require.Len(t, chunk.Models, 2)
	assert.Equal(t, "mistral:latest", chunk.Models[0].Name)
	assert.Equal(t, "llama2", chunk.Models[1].Name)

	chunk, err = DecodeChunk(ChunkModelList, []byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, chunk.Models)
	assert.Empty(t, chunk.Models)
}

// =============================================================================
// PROGRESS TESTS
// =============================================================================

func int64p(v int64) *int64 { return &v }

func TestPullProgress_Percent(t *testing.T) {
	tests := []struct {
		name   string
		p      PullProgress
		want   int
		wantOK bool
	}{
		{"both present", PullProgress{Completed: int64p(1), Total: int64p(4)}, 25, true},
		{"complete", PullProgress{Completed: int64p(4), Total: int64p(4)}, 100, true},
		{"zero total", PullProgress{Completed: int64p(0), Total: int64p(0)}, 0, false},
		{"missing completed", PullProgress{Total: int64p(10)}, 0, false},
		{"missing total", PullProgress{Completed: int64p(10)}, 0, false},
		{"nothing", PullProgress{}, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.p.Percent()
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPullProgress_Fraction(t *testing.T) {
	f, ok := PullProgress{Completed: int64p(5), Total: int64p(4)}.Fraction()
	require.True(t, ok)
	assert.Equal(t, 1.0, f)

	_, ok = PullProgress{}.Fraction()
	assert.False(t, ok)
}

func TestParseProgress(t *testing.T) {
	p, ok := ParseProgress([]byte(`{"status":"downloading","completed":0,"total":100}`))
	require.True(t, ok)
	require.NotNil(t, p.Completed)
	assert.Equal(t, int64(0), *p.Completed)
	pct, ok := p.Percent()
	assert.True(t, ok)
	assert.Equal(t, 0, pct)

	p, ok = ParseProgress([]byte(`{"status":"success"}`))
	require.True(t, ok)
	assert.Nil(t, p.Completed)
	assert.Nil(t, p.Total)
	assert.Equal(t, "success", p.Status)

	_, ok = ParseProgress([]byte(`not json`))
	assert.False(t, ok)

	_, ok = ParseProgress([]byte(`[1,2]`))
	assert.False(t, ok)
}

// =============================================================================
// FORMATTING TESTS
// =============================================================================

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{4109865159, "3.8 GB"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatBytes(tc.n), "FormatBytes(%d)", tc.n)
	}
}

func TestModelNames(t *testing.T) {
	names := ModelNames([]ModelDescriptor{{Name: "a"}, {Name: "b"}})
	assert.Equal(t, []string{"a", "b"}, names)
	assert.NotNil(t, ModelNames(nil))
}
