// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
package ollama

import (
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// PullRequest is the request body for /api/pull endpoint.
type PullRequest struct {
	Name string `json:"name"` // Model name (e.g., "mistral", "llama2:13b")
}

// GenerateRequest is the request body for /api/generate endpoint.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ModelDescriptor describes one installed model as reported by /api/tags.
// Only Name is guaranteed; the remaining fields are informational.
type ModelDescriptor struct {
	Name       string    `json:"name"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
	Size       int64     `json:"size,omitempty"`
	Digest     string    `json:"digest,omitempty"`
}

// ListModelsResponse is the response from /api/tags endpoint.
type ListModelsResponse struct {
	Models []ModelDescriptor `json:"models"`
}

// pullLine is one streamed line from /api/pull.
// Pointers distinguish absent counters from zero.
type pullLine struct {
	Status    string `json:"status"`
	Digest    string `json:"digest,omitempty"`
	Completed *int64 `json:"completed,omitempty"`
	Total     *int64 `json:"total,omitempty"`
	Error     string `json:"error,omitempty"`
}

// generateLine is one streamed line from /api/generate.
type generateLine struct {
	Model    string  `json:"model"`
	Response *string `json:"response"`
	Done     bool    `json:"done"`
	Error    string  `json:"error,omitempty"`
}

// OllamaError represents an error body from the Ollama API.
type OllamaError struct {
	Error string `json:"error"`
}

// =============================================================================
// PROGRESS
// =============================================================================

// PullProgress is the download state carried by a single pull chunk.
// Either counter may be absent in any given chunk.
type PullProgress struct {
	Status    string
	Digest    string
	Completed *int64
	Total     *int64
}

// Percent returns completed*100/total, or false when progress is
// indeterminate (a counter is missing or total is not positive).
func (p PullProgress) Percent() (int, bool) {
	if p.Completed == nil || p.Total == nil || *p.Total <= 0 {
		return 0, false
	}
	return int(*p.Completed * 100 / *p.Total), true
}

// Fraction returns progress in [0,1] for progress bars.
func (p PullProgress) Fraction() (float64, bool) {
	if p.Completed == nil || p.Total == nil || *p.Total <= 0 {
		return 0, false
	}
	f := float64(*p.Completed) / float64(*p.Total)
	if f > 1 {
		f = 1
	}
	return f, true
}

// FormatSize formats the model size in human-readable form.
func (m *ModelDescriptor) FormatSize() string {
	return FormatBytes(m.Size)
}

// FormatBytes formats a byte count using binary units.
func FormatBytes(n int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case n >= GB:
		return formatFloat(float64(n)/GB) + " GB"
	case n >= MB:
		return formatFloat(float64(n)/MB) + " MB"
	case n >= KB:
		return formatFloat(float64(n)/KB) + " KB"
	default:
		return formatFloat(float64(n)) + " B"
	}
}

// formatFloat formats a float with one decimal place, dropping ".0".
func formatFloat(f float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(f, 'f', 1, 64), ".0")
}
