// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/ollama-chat/internal/chatfile"
	"github.com/jeranaias/ollama-chat/internal/util"
)

// =============================================================================
// CHAT METADATA
// =============================================================================

// ChatMeta describes a saved chat for listings.
type ChatMeta struct {
	Name         string
	Path         string
	Model        string
	CreatedAt    time.Time
	MessageCount int
	Preview      string // first user message, flattened and truncated
}

// previewWidth bounds ChatMeta.Preview in terminal columns.
const previewWidth = 80

// =============================================================================
// CHAT STORE
// =============================================================================

// ChatStore keeps chats as text files in one directory. It caches
// nothing: every List and Load re-reads the files.
type ChatStore struct {
	dir    string
	logger *zap.Logger
}

// NewChatStore creates a store rooted at dir, creating it if needed.
// A nil logger discards diagnostics.
func NewChatStore(dir string, logger *zap.Logger) (*ChatStore, error) {
	if dir == "" {
		return nil, errors.New("chat directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chat directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatStore{dir: dir, logger: logger.Named("storage")}, nil
}

// Dir returns the store directory.
func (s *ChatStore) Dir() string {
	return s.dir
}

// Resolve maps a bare chat name to a file in the store directory. Paths
// containing a separator are used as given. A missing extension becomes
// ".txt".
func (s *ChatStore) Resolve(nameOrPath string) string {
	p := strings.TrimSpace(nameOrPath)
	if filepath.Ext(p) == "" {
		p += chatfile.Extension
	}
	if filepath.IsAbs(p) || strings.ContainsAny(p, `/\`) {
		return filepath.Clean(p)
	}
	return filepath.Join(s.dir, p)
}

// DefaultFilename returns the suggested file name for a chat saved at t.
func DefaultFilename(t time.Time) string {
	return "chat_" + t.Format("20060102_150405") + chatfile.Extension
}

// NameFromPath returns the chat name for a file: its base name without
// extension.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// =============================================================================
// LOAD / SAVE / DELETE
// =============================================================================

// Load parses one chat file. A missing file yields ErrChatNotFound.
func (s *ChatStore) Load(nameOrPath string) (*chatfile.Chat, error) {
	path := s.Resolve(nameOrPath)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, ErrChatNotFound)
		}
		s.logger.Error("error loading chat", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	defer f.Close()

	chat, err := chatfile.Parse(f, NameFromPath(path))
	if err != nil {
		s.logger.Error("error loading chat", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return chat, nil
}

// Save writes chat to nameOrPath, replacing any existing file, and
// returns the path written. The write is atomic.
func (s *ChatStore) Save(nameOrPath string, chat *chatfile.Chat) (string, error) {
	path := s.Resolve(nameOrPath)

	for _, c := range chatfile.Collisions(chat) {
		s.logger.Warn("message line will be read back as file structure",
			zap.String("path", path), zap.Stringer("collision", c))
	}

	err := util.AtomicWrite(path, 0o644, 0o755, func(w io.Writer) error {
		return chatfile.Write(w, chat)
	})
	if err != nil {
		s.logger.Error("error saving chat", zap.String("path", path), zap.Error(err))
		return "", fmt.Errorf("save %s: %w", path, err)
	}

	s.logger.Debug("chat saved", zap.String("path", path), zap.Int("messages", len(chat.Messages)))
	return path, nil
}

// Delete removes a chat file. Deleting a file that does not exist is an
// error (ErrChatNotFound), not a silent success.
func (s *ChatStore) Delete(nameOrPath string) error {
	path := s.Resolve(nameOrPath)

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", path, ErrChatNotFound)
		}
		s.logger.Error("error deleting chat", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns every chat in the store, newest first. Creation time comes
// from the file's Date: line, falling back to its modification time.
// Files that cannot be read or parsed are logged and skipped.
func (s *ChatStore) List() ([]ChatMeta, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []ChatMeta{}, nil
		}
		return nil, fmt.Errorf("list chats: %w", err)
	}

	metas := make([]ChatMeta, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), chatfile.Extension) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())

		chat, err := s.Load(path)
		if err != nil {
			s.logger.Warn("skipping unreadable chat", zap.String("path", path), zap.Error(err))
			continue
		}

		created := chat.CreatedAt
		if created.IsZero() {
			if info, err := entry.Info(); err == nil {
				created = info.ModTime()
			}
		}

		metas = append(metas, ChatMeta{
			Name:         chat.Name,
			Path:         path,
			Model:        chat.Model,
			CreatedAt:    created,
			MessageCount: len(chat.Messages),
			Preview:      util.TruncateWidth(util.SingleLine(chat.FirstUserMessage()), previewWidth),
		})
	}

	sort.SliceStable(metas, func(i, j int) bool {
		if !metas[i].CreatedAt.Equal(metas[j].CreatedAt) {
			return metas[i].CreatedAt.After(metas[j].CreatedAt)
		}
		return metas[i].Name < metas[j].Name
	})

	return metas, nil
}

// Search returns the chats, newest first, whose model name or any message
// contains query (case-insensitive). An empty query matches everything.
func (s *ChatStore) Search(query string) ([]ChatMeta, error) {
	all, err := s.List()
	if err != nil || query == "" {
		return all, err
	}

	query = strings.ToLower(query)
	results := []ChatMeta{}
	for _, meta := range all {
		if strings.Contains(strings.ToLower(meta.Model), query) {
			results = append(results, meta)
			continue
		}
		chat, err := s.Load(meta.Path)
		if err != nil {
			continue
		}
		for _, msg := range chat.Messages {
			if strings.Contains(strings.ToLower(msg.Content), query) {
				results = append(results, meta)
				break
			}
		}
	}
	return results, nil
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrChatNotFound is returned when a chat file doesn't exist.
// Use errors.Is(err, ErrChatNotFound) to check for this error.
var ErrChatNotFound = &ChatError{Message: "chat not found"}

// ChatError is a storage-level error comparable with errors.Is.
type ChatError struct {
	Message string
}

func (e *ChatError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing chat errors.
func (e *ChatError) Is(target error) bool {
	t, ok := target.(*ChatError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}
