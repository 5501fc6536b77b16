// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
//
// It covers the three calls a chat front end needs: listing installed
// models, pulling (downloading) a model with progress, and streaming a
// generation token by token. Responses are newline-delimited JSON; each
// line is decoded on its own, blank keep-alive lines are ignored and
// malformed lines are skipped without ending the stream.
//
// # Key Types
//
//   - Client: HTTP client for the Ollama API
//   - TokenStream: one-shot sequence of generated text pieces
//   - ProgressStream: one-shot sequence of pull progress chunks
//   - Chunk: a decoded response line (see DecodeChunk)
//   - PullProgress: completed/total counters, either may be absent
//
// # Usage
//
//	client := ollama.NewClient(&ollama.ClientConfig{BaseURL: "http://localhost:11434"})
//	text, err := client.Generate(ctx, "mistral", "Hello", func(tok string) {
//	    fmt.Print(tok)
//	})
//
// Pulling the stream yourself:
//
//	stream, err := client.GenerateStream(ctx, "mistral", "Hello")
//	defer stream.Close()
//	for tok, err := range stream.All() {
//	    ...
//	}
//
// # Failure Handling
//
// Every failure is logged and returned as a *ClientError. ListModels
// always returns a non-nil slice; Generate returns GenerateErrorPrefix
// plus the cause in place of the response text.
package ollama
