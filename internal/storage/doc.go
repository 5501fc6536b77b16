// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage keeps saved chats as text files in a single directory.
//
// # Key Types
//
//   - ChatStore: list, load, save, delete and watch chat files
//   - ChatMeta: lightweight metadata for listings
//   - Event: a change in the chat directory, from Watch
//
// # Usage
//
//	store, err := storage.NewChatStore(paths.ChatsDir, logger)
//	path, err := store.Save(storage.DefaultFilename(time.Now()), chat)
//
//	metas, err := store.List() // newest first
//	chat, err := store.Load(metas[0].Path)
//
// # Storage Location
//
// Chats live in ~/.ollama_chat/chats/ as .txt files in the chatfile
// format. Nothing is cached; concurrent writers to one file race and the
// last one wins.
package storage
