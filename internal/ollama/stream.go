// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
package ollama

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"strings"

	"go.uber.org/zap"
)

// =============================================================================
// LINE READER
// =============================================================================

// lineReader turns a newline-delimited JSON body into decoded chunks.
// Blank lines and malformed lines are skipped; only transport errors end
// the sequence early.
type lineReader struct {
	body    io.ReadCloser
	reader  *bufio.Reader
	kind    ChunkKind
	logger  *zap.Logger
	pending error // error seen together with the last decoded line
	done    bool
	skipped int
}

func newLineReader(body io.ReadCloser, kind ChunkKind, logger *zap.Logger) *lineReader {
	return &lineReader{
		body:   body,
		reader: bufio.NewReader(body),
		kind:   kind,
		logger: logger,
	}
}

// next returns the next decodable chunk, io.EOF at end of input, or a
// *ClientError on a transport failure.
func (l *lineReader) next() (Chunk, error) {
	for {
		if l.pending != nil {
			err := l.pending
			l.pending = nil
			l.done = true
			return Chunk{}, err
		}
		if l.done {
			return Chunk{}, io.EOF
		}

		line, err := l.reader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			err = wrapTransportError("stream interrupted", err)
		}

		if len(line) > 0 {
			chunk, derr := DecodeChunk(l.kind, line)
			switch {
			case derr == nil:
				if err != nil {
					l.pending = err
				}
				return chunk, nil
			case errors.Is(derr, ErrEmptyLine):
				// keep-alive
			default:
				l.skipped++
				l.logger.Debug("skipping malformed stream line",
					zap.Stringer("kind", l.kind),
					zap.Error(derr))
			}
		}

		if err != nil {
			l.done = true
			return Chunk{}, err
		}
	}
}

func (l *lineReader) close() error {
	l.done = true
	return l.body.Close()
}

// =============================================================================
// STREAM STATE
// =============================================================================

// StreamState tracks the lifecycle of a streamed call.
type StreamState int

const (
	StateIdle StreamState = iota
	StateRequestSent
	StateStreaming
	StateCompleted
	StateFailed
)

func (s StreamState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequestSent:
		return "request-sent"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// =============================================================================
// TOKEN STREAM
// =============================================================================

// TokenStream is a one-shot, finite sequence of generated text pieces.
// It is not safe for concurrent use and cannot be restarted.
type TokenStream struct {
	lines  *lineReader
	text   strings.Builder
	tokens int
	model  string
	state  StreamState
	err    error
}

// Next returns the next piece of response text in arrival order, or
// io.EOF once the server closes the stream. Lines without a "response"
// field are skipped. Any other error is a transport failure.
func (s *TokenStream) Next() (string, error) {
	if s.state == StateCompleted {
		return "", io.EOF
	}
	if s.state == StateFailed {
		return "", s.err
	}

	for {
		chunk, err := s.lines.next()
		if err != nil {
			s.lines.close()
			if err == io.EOF {
				s.state = StateCompleted
				return "", io.EOF
			}
			s.state = StateFailed
			s.err = err
			return "", err
		}

		s.state = StateStreaming
		if chunk.ServerError != "" {
			s.lines.logger.Warn("server reported error in generation stream",
				zap.String("error", chunk.ServerError))
		}
		if !chunk.HasResponse {
			continue
		}

		s.text.WriteString(chunk.Response)
		s.tokens++
		return chunk.Response, nil
	}
}

// All returns the remaining pieces as an iterator. Iteration stops after
// the first error; io.EOF is not yielded.
func (s *TokenStream) All() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for {
			tok, err := s.Next()
			if err == io.EOF {
				return
			}
			if !yield(tok, err) || err != nil {
				return
			}
		}
	}
}

// Text returns everything received so far.
func (s *TokenStream) Text() string {
	return s.text.String()
}

// TokenCount returns the number of pieces delivered.
func (s *TokenStream) TokenCount() int {
	return s.tokens
}

// Skipped returns how many malformed lines were dropped.
func (s *TokenStream) Skipped() int {
	return s.lines.skipped
}

// State returns the current lifecycle state.
func (s *TokenStream) State() StreamState {
	return s.state
}

// Close releases the underlying connection. Safe to call more than once.
func (s *TokenStream) Close() error {
	if s.state == StateRequestSent || s.state == StateStreaming {
		s.state = StateFailed
		s.err = &ClientError{Type: ErrTypeCanceled, Message: "stream closed before completion"}
	}
	return s.lines.close()
}

// =============================================================================
// PROGRESS STREAM
// =============================================================================

// ProgressStream is a one-shot sequence of pull progress chunks.
type ProgressStream struct {
	lines *lineReader
	state StreamState
	err   error
}

// Next returns the next progress chunk (with its raw line), or io.EOF
// when the download stream ends.
func (s *ProgressStream) Next() (Chunk, error) {
	if s.state == StateCompleted {
		return Chunk{}, io.EOF
	}
	if s.state == StateFailed {
		return Chunk{}, s.err
	}

	chunk, err := s.lines.next()
	if err != nil {
		s.lines.close()
		if err == io.EOF {
			s.state = StateCompleted
			return Chunk{}, io.EOF
		}
		s.state = StateFailed
		s.err = err
		return Chunk{}, err
	}

	s.state = StateStreaming
	if chunk.ServerError != "" {
		s.lines.logger.Warn("server reported error in pull stream",
			zap.String("error", chunk.ServerError))
	}
	return chunk, nil
}

// State returns the current lifecycle state.
func (s *ProgressStream) State() StreamState {
	return s.state
}

// Close releases the underlying connection.
func (s *ProgressStream) Close() error {
	if s.state == StateRequestSent || s.state == StateStreaming {
		s.state = StateFailed
		s.err = &ClientError{Type: ErrTypeCanceled, Message: "stream closed before completion"}
	}
	return s.lines.close()
}
