// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the ollama-chat command line.
//
// Commands:
//
//	ollama-chat [chat]         interactive chat (default)
//	ollama-chat ask PROMPT     one-shot streamed reply
//	ollama-chat models         installed models
//	ollama-chat pull NAME      download a model
//	ollama-chat history ...    list|show|search|delete|watch saved chats
//	ollama-chat config ...     show|get|set|path
//
// The root command loads configuration and builds the shared App (logger,
// Ollama client, chat store, theme) before any subcommand runs. Errors
// are returned from RunE and mapped to exit codes by GetExitCode.
//
// Inside the chat, plain lines are prompts and lines starting with "/"
// are commands; see /help. Replies stream as tokens arrive and are
// recorded in a session.Session, which also drives autosave.
package cli
