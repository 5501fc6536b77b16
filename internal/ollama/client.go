// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the Ollama client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a ClientError of the same Type, so the
// sentinels below match any error of their kind.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok || t == nil {
		return false
	}
	return e.Type == t.Type
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeCanceled
	ErrTypeModelNotFound
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// Sentinel errors for use with errors.Is.
var (
	ErrNotRunning    = &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not running"}
	ErrTimeout       = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrModelNotFound = &ClientError{Type: ErrTypeModelNotFound, Message: "model not found"}
)

// GenerateErrorPrefix starts the text Generate returns in place of a
// response when the call fails.
const GenerateErrorPrefix = "Error generating response: "

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// DefaultBaseURL is the address of a locally running Ollama server.
const DefaultBaseURL = "http://localhost:11434"

// DefaultListTimeout bounds the model listing call.
const DefaultListTimeout = 5 * time.Second

// ClientConfig holds configuration options for the Ollama client.
type ClientConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434)
	BaseURL string

	// ListTimeout bounds ListModels (default: 5s). Pull and Generate are
	// never timed out by the client.
	ListTimeout time.Duration

	// HTTPClient is used for every request. It must not set a Timeout,
	// since downloads and generations may run arbitrarily long.
	HTTPClient *http.Client

	// Logger receives operational diagnostics (default: no-op)
	Logger *zap.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:     DefaultBaseURL,
		ListTimeout: DefaultListTimeout,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Ollama API.
//
// The Client holds no per-request state and is safe for concurrent use;
// each call owns its own connection.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Ollama client. A nil config uses DefaultConfig.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config

	// Fill in defaults for any zero values
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ListTimeout <= 0 {
		cfg.ListTimeout = DefaultListTimeout
	}
	if cfg.HTTPClient == nil {
		// Ollama serves plain HTTP.
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Client{
		config:     cfg,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger.Named("ollama"),
	}
}

// BaseURL returns the configured server address.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that Ollama is reachable and running.
func (c *Client) CheckRunning(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ListTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapTransportError("Ollama is not reachable", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status from Ollama: " + resp.Status,
		}
	}

	return nil
}

// StartOllama attempts to start the Ollama server if it's not running.
// Returns nil if Ollama is already running or was successfully started.
// The actual start logic is platform-specific (see start_windows.go and start_unix.go).
func (c *Client) StartOllama(ctx context.Context) error {
	if err := c.CheckRunning(ctx); err == nil {
		return nil
	}
	return c.startOllamaProcess(ctx)
}

// EnsureRunning checks if Ollama is running, and starts it if not.
func (c *Client) EnsureRunning(ctx context.Context) error {
	if err := c.CheckRunning(ctx); err == nil {
		return nil
	}
	c.logger.Info("ollama not reachable, attempting to start it", zap.String("base_url", c.config.BaseURL))
	return c.StartOllama(ctx)
}

// =============================================================================
// MODEL OPERATIONS
// =============================================================================

// ListModels retrieves the installed models.
//
// The returned slice is never nil. On a transport error, timeout, non-200
// status or malformed body it is empty and the error says why, so callers
// can tell "no models installed" (empty, nil error) from "server
// unreachable" (empty, non-nil error). The call is bounded by ListTimeout
// and never retried.
func (c *Client) ListModels(ctx context.Context) ([]ModelDescriptor, error) {
	models, err := c.listModels(ctx)
	if err != nil {
		c.logger.Warn("error fetching models", zap.Error(err))
		return []ModelDescriptor{}, err
	}
	return models, nil
}

func (c *Client) listModels(ctx context.Context) ([]ModelDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.ListTimeout)
	defer cancel()

	method, path := EncodeListModelsRequest()
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapTransportError("failed to list models", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("failed to list models", resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapTransportError("failed to read model list", err)
	}

	chunk, err := DecodeChunk(ChunkModelList, body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	return chunk.Models, nil
}

// ModelNames returns just the names, in server order.
func ModelNames(models []ModelDescriptor) []string {
	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, m.Name)
	}
	return names
}

// PullStream starts a model download and returns its progress stream.
// The caller must Close the stream.
func (c *Client) PullStream(ctx context.Context, model string) (*ProgressStream, error) {
	body, err := EncodePullRequest(model)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	resp, err := c.openStream(ctx, PathPull, body)
	if err != nil {
		return nil, err
	}

	return &ProgressStream{
		lines: newLineReader(resp.Body, ChunkPullProgress, c.logger),
		state: StateRequestSent,
	}, nil
}

// Pull downloads a model, calling onProgress with the raw bytes of each
// progress line, in order. Blank lines and lines that are not a JSON
// object are dropped before the callback, like every other stream.
// onProgress may be nil.
//
// It returns nil only if the server answered 200 and the stream was read
// to the end. A failed pull may leave a partial download on the server.
func (c *Client) Pull(ctx context.Context, model string, onProgress func(raw []byte)) error {
	stream, err := c.PullStream(ctx, model)
	if err != nil {
		c.logger.Error("error pulling model", zap.String("model", model), zap.Error(err))
		return err
	}
	defer stream.Close()

	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			c.logger.Info("model pulled", zap.String("model", model))
			return nil
		}
		if err != nil {
			c.logger.Error("error pulling model", zap.String("model", model), zap.Error(err))
			return err
		}
		if onProgress != nil {
			onProgress(chunk.Raw)
		}
	}
}

// =============================================================================
// GENERATION
// =============================================================================

// GenerateStream sends a streaming generation request and returns the
// token stream. The caller must Close the stream.
func (c *Client) GenerateStream(ctx context.Context, model, prompt string) (*TokenStream, error) {
	body, err := EncodeGenerateRequest(model, prompt)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	resp, err := c.openStream(ctx, PathGenerate, body)
	if err != nil {
		return nil, err
	}

	return &TokenStream{
		lines: newLineReader(resp.Body, ChunkGeneration, c.logger),
		model: model,
		state: StateRequestSent,
	}, nil
}

// Generate streams a completion for prompt. onToken (may be nil) is called
// synchronously for every piece of text in arrival order; the returned
// text is exactly their concatenation.
//
// On failure the partial text is discarded and the returned string is
// GenerateErrorPrefix followed by the cause, which is also returned as the
// error.
func (c *Client) Generate(ctx context.Context, model, prompt string, onToken func(string)) (string, error) {
	stream, err := c.GenerateStream(ctx, model, prompt)
	if err != nil {
		return c.generateFailed(model, err)
	}
	defer stream.Close()

	for tok, err := range stream.All() {
		if err != nil {
			return c.generateFailed(model, err)
		}
		if onToken != nil {
			onToken(tok)
		}
	}

	c.logger.Debug("generation complete",
		zap.String("model", model),
		zap.Int("tokens", stream.TokenCount()),
		zap.Int("skipped_lines", stream.Skipped()))
	return stream.Text(), nil
}

func (c *Client) generateFailed(model string, err error) (string, error) {
	msg := GenerateErrorPrefix + err.Error()
	c.logger.Error("error generating response", zap.String("model", model), zap.Error(err))
	return msg, err
}

// =============================================================================
// TRANSPORT HELPERS
// =============================================================================

// openStream POSTs body to path and returns the response once a 200 has
// been received. No timeout is applied beyond ctx.
func (c *Client) openStream(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapTransportError("stream request failed", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer drainAndClose(resp.Body)
		return nil, statusError("stream request failed", resp)
	}

	return resp, nil
}

// statusError builds an error for a non-200 response, preferring the
// server's own error message when it sent one.
func statusError(prefix string, resp *http.Response) error {
	errType := ErrTypeInvalidResponse
	if resp.StatusCode == http.StatusNotFound {
		errType = ErrTypeModelNotFound
	}

	var ollamaErr OllamaError
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &ollamaErr); err == nil && ollamaErr.Error != "" {
		return &ClientError{Type: errType, Message: prefix + ": " + resp.Status + ": " + ollamaErr.Error}
	}
	return &ClientError{Type: errType, Message: prefix + ": " + resp.Status}
}

// wrapTransportError classifies a connection-level failure.
func wrapTransportError(msg string, err error) error {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return err
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &ClientError{Type: ErrTypeTimeout, Message: msg, Cause: err}
	case errors.Is(err, context.Canceled):
		return &ClientError{Type: ErrTypeCanceled, Message: msg, Cause: err}
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ClientError{Type: ErrTypeTimeout, Message: msg, Cause: err}
	}
	return &ClientError{Type: ErrTypeNotRunning, Message: msg, Cause: err}
}

// IsModelNotFound checks if an error is a model not found error.
func IsModelNotFound(err error) bool {
	return hasType(err, ErrTypeModelNotFound)
}

// IsNotRunning checks if an error indicates Ollama is not running.
func IsNotRunning(err error) bool {
	return hasType(err, ErrTypeNotRunning)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	return hasType(err, ErrTypeTimeout)
}

// IsCanceled checks if the caller abandoned the request.
func IsCanceled(err error) bool {
	return hasType(err, ErrTypeCanceled)
}

func hasType(err error, t ErrorType) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == t
	}
	return false
}

// drainAndClose empties and closes a response body so the connection
// can be reused.
func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, io.LimitReader(r, 64<<10))
	r.Close()
}
