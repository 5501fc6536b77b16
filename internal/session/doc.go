// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the in-memory state of the chat being edited.
//
// A Session owns the ordered message list, the active model, the dirty
// flag and the backing file path. Every read and write is handed to a
// single owner goroutine, so token callbacks arriving from a generation
// worker and commands from the prompt loop are applied one at a time in
// arrival order.
//
// # Key Types
//
//   - Session: the single-owner state container
//   - Snapshot: an immutable copy of the state
//   - Config: model, autosave interval and callback
//
// # Usage
//
//	sess := session.New(session.Config{Model: "mistral", Logger: logger})
//	defer sess.Close()
//
//	sess.AppendUser(prompt)
//	text, _ := client.Generate(ctx, model, prompt, func(tok string) {
//		sess.AppendToken(tok)
//	})
//	sess.AppendAssistantFinal(text) // on failure text is the error message
//
// # Autosave
//
// With AutoSave set and an OnAutoSave callback, a chat that has a backing
// file and unsaved changes is written every AutoSaveInterval (default 5
// minutes). Unsaved new chats are never autosaved.
package session
