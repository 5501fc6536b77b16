// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and saves the user settings.
//
// # Key Types
//
//   - Config: api_url, theme, autosave, default model and log settings
//   - Paths: where the config file, chats and logs live
//
// # Configuration Precedence
//
// Values come from (highest first):
//   - Environment variables (OLLAMA_CHAT_*)
//   - ~/.ollama_chat/config.json
//   - ~/.ollama_chat/config.toml, only when there is no JSON file
//   - ~/.ollama_chat/config.yaml, only when there is neither
//   - Built-in defaults
//
// # Usage
//
//	paths, err := config.DefaultPaths()
//	cfg, err := config.Load(paths)
//	if cfg == nil {
//	    return err
//	}
//
//	if err := cfg.Set("theme", "dark"); err != nil {
//	    return err
//	}
//	err = config.Save(cfg, paths)
package config
