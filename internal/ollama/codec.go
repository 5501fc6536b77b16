// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
package ollama

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tidwall/gjson"
)

// API paths relative to the base URL.
const (
	PathTags     = "/api/tags"
	PathPull     = "/api/pull"
	PathGenerate = "/api/generate"
)

// =============================================================================
// REQUEST ENCODING
// =============================================================================

// EncodeListModelsRequest returns the method and path for listing models.
// The request has no body.
func EncodeListModelsRequest() (method, path string) {
	return http.MethodGet, PathTags
}

// EncodePullRequest encodes the body for a model download.
func EncodePullRequest(model string) ([]byte, error) {
	return json.Marshal(PullRequest{Name: model})
}

// EncodeGenerateRequest encodes the body for a streamed generation.
func EncodeGenerateRequest(model, prompt string) ([]byte, error) {
	return json.Marshal(GenerateRequest{Model: model, Prompt: prompt, Stream: true})
}

// =============================================================================
// CHUNK DECODING
// =============================================================================

// ChunkKind selects how a response line is interpreted.
type ChunkKind int

const (
	ChunkModelList ChunkKind = iota
	ChunkPullProgress
	ChunkGeneration
)

func (k ChunkKind) String() string {
	switch k {
	case ChunkModelList:
		return "model-list"
	case ChunkPullProgress:
		return "pull-progress"
	case ChunkGeneration:
		return "generation"
	default:
		return "unknown"
	}
}

// Chunk is one decoded line of a response.
type Chunk struct {
	Kind ChunkKind

	// ChunkModelList
	Models []ModelDescriptor

	// ChunkPullProgress
	Progress PullProgress

	// ChunkGeneration. HasResponse is false when the "response" field was absent.
	Response    string
	HasResponse bool

	// Done mirrors the server's "done" flag. Informational only: the
	// stream ends at end-of-input.
	Done bool

	// ServerError carries an "error" field sent inside the stream.
	ServerError string

	// Raw is the trimmed line this chunk was decoded from.
	Raw []byte
}

// ErrEmptyLine is returned by DecodeChunk for blank keep-alive lines.
var ErrEmptyLine = errors.New("empty line")

// ParseError reports a line that is not valid JSON for its kind.
type ParseError struct {
	Kind ChunkKind
	Line []byte
	Err  error
}

func (e *ParseError) Error() string {
	return "malformed " + e.Kind.String() + " chunk: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DecodeChunk decodes one line of a response body.
// Blank lines yield ErrEmptyLine; invalid JSON yields a *ParseError.
// Neither should abort a stream.
func DecodeChunk(kind ChunkKind, line []byte) (Chunk, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Chunk{}, ErrEmptyLine
	}

	chunk := Chunk{Kind: kind, Raw: line}

	switch kind {
	case ChunkModelList:
		var resp ListModelsResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			return Chunk{}, &ParseError{Kind: kind, Line: line, Err: err}
		}
		chunk.Models = resp.Models
		if chunk.Models == nil {
			chunk.Models = []ModelDescriptor{}
		}

	case ChunkPullProgress:
		var pl pullLine
		if err := json.Unmarshal(line, &pl); err != nil {
			return Chunk{}, &ParseError{Kind: kind, Line: line, Err: err}
		}
		chunk.Progress = PullProgress{
			Status:    pl.Status,
			Digest:    pl.Digest,
			Completed: pl.Completed,
			Total:     pl.Total,
		}
		chunk.ServerError = pl.Error

	case ChunkGeneration:
		var gl generateLine
		if err := json.Unmarshal(line, &gl); err != nil {
			return Chunk{}, &ParseError{Kind: kind, Line: line, Err: err}
		}
		if gl.Response != nil {
			chunk.Response = *gl.Response
			chunk.HasResponse = true
		}
		chunk.Done = gl.Done
		chunk.ServerError = gl.Error

	default:
		return Chunk{}, &ParseError{Kind: kind, Line: line, Err: errors.New("unknown chunk kind")}
	}

	return chunk, nil
}

// ParseProgress extracts pull progress from a raw streamed line, the form
// Pull hands to its progress callback. Returns false if the line is not a
// JSON object.
func ParseProgress(raw []byte) (PullProgress, bool) {
	if !gjson.ValidBytes(raw) {
		return PullProgress{}, false
	}
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsObject() {
		return PullProgress{}, false
	}

	p := PullProgress{
		Status: parsed.Get("status").String(),
		Digest: parsed.Get("digest").String(),
	}
	if c := parsed.Get("completed"); c.Exists() && c.Type == gjson.Number {
		v := c.Int()
		p.Completed = &v
	}
	if t := parsed.Get("total"); t.Exists() && t.Type == gjson.Number {
		v := t.Int()
		p.Total = &v
	}
	return p, true
}
