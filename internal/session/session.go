// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/ollama-chat/internal/chatfile"
)

// ErrClosed is returned by every method once Close has been called.
var ErrClosed = errors.New("session closed")

// =============================================================================
// CONFIGURATION
// =============================================================================

// DefaultAutoSaveInterval is how often a dirty, saved-before chat is
// written back when autosave is on.
const DefaultAutoSaveInterval = 5 * time.Minute

// Config holds configuration for a session.
type Config struct {
	// Model is the initially active model.
	Model string

	// AutoSave enables periodic saving. It can be toggled later with
	// SetAutoSave.
	AutoSave bool

	// AutoSaveInterval is how often to auto-save (default: 5 minutes)
	AutoSaveInterval time.Duration

	// OnAutoSave persists a snapshot. It runs on the session's owner
	// goroutine, so it must not call back into the Session. Returning nil
	// marks the session clean.
	OnAutoSave func(Snapshot) error

	// Logger receives diagnostics (default: no-op)
	Logger *zap.Logger
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		AutoSaveInterval: DefaultAutoSaveInterval,
	}
}

// =============================================================================
// STATE
// =============================================================================

// Snapshot is a copy of the session state at one instant.
type Snapshot struct {
	ID          string
	Messages    []chatfile.Message
	Pending     string // assistant text streamed so far, not yet final
	Streaming   bool
	ActiveModel string
	Dirty       bool
	BackingPath string // empty until the chat is saved or opened
	CreatedAt   time.Time
	LastSaved   time.Time
}

// Chat converts the snapshot into a chat ready to be written. Pending
// text is not included.
func (s Snapshot) Chat() *chatfile.Chat {
	name := ""
	if s.BackingPath != "" {
		base := filepath.Base(s.BackingPath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return &chatfile.Chat{
		Name:      name,
		Model:     s.ActiveModel,
		Messages:  append([]chatfile.Message(nil), s.Messages...),
		CreatedAt: s.CreatedAt,
	}
}

// state is owned by the run goroutine and never touched elsewhere.
type state struct {
	id        string
	messages  []chatfile.Message
	pending   strings.Builder
	streaming bool
	model     string
	dirty     bool
	path      string
	created   time.Time
	lastSave  time.Time
	autoSave  bool
}

func (st *state) snapshot() Snapshot {
	return Snapshot{
		ID:          st.id,
		Messages:    append([]chatfile.Message(nil), st.messages...),
		Pending:     st.pending.String(),
		Streaming:   st.streaming,
		ActiveModel: st.model,
		Dirty:       st.dirty,
		BackingPath: st.path,
		CreatedAt:   st.created,
		LastSaved:   st.lastSave,
	}
}

func (st *state) reset() {
	st.id = uuid.NewString()
	st.messages = nil
	st.pending.Reset()
	st.streaming = false
	st.dirty = false
	st.path = ""
	st.created = time.Now()
	st.lastSave = time.Time{}
}

// =============================================================================
// SESSION
// =============================================================================

// Session holds the live chat. One owner goroutine applies every
// mutation in the order it is received, so callbacks from concurrent
// workers cannot interleave partial writes. All methods are safe for
// concurrent use and block until the owner has applied them.
type Session struct {
	ops       chan func(*state)
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	logger    *zap.Logger
}

// New starts a session. Call Close to stop its owner goroutine.
func New(cfg Config) *Session {
	if cfg.AutoSaveInterval <= 0 {
		cfg.AutoSaveInterval = DefaultAutoSaveInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	s := &Session{
		ops:    make(chan func(*state)),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		logger: cfg.Logger.Named("session"),
	}

	st := &state{model: cfg.Model, autoSave: cfg.AutoSave}
	st.reset()

	go s.run(st, cfg)
	return s
}

func (s *Session) run(st *state, cfg Config) {
	defer close(s.done)

	var tick <-chan time.Time
	if cfg.OnAutoSave != nil {
		ticker := time.NewTicker(cfg.AutoSaveInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case op := <-s.ops:
			op(st)
		case <-tick:
			s.autoSave(st, cfg.OnAutoSave)
		case <-s.stop:
			return
		}
	}
}

// autoSave writes the chat back to its file when it has one, has
// unsaved changes and no reply is streaming.
func (s *Session) autoSave(st *state, save func(Snapshot) error) {
	if !st.autoSave || !st.dirty || st.path == "" || st.streaming {
		return
	}
	if err := save(st.snapshot()); err != nil {
		s.logger.Warn("autosave failed", zap.String("path", st.path), zap.Error(err))
		return
	}
	st.dirty = false
	st.lastSave = time.Now()
	s.logger.Debug("autosaved", zap.String("path", st.path))
}

// call runs fn on the owner goroutine and waits for it to finish.
func (s *Session) call(fn func(*state)) error {
	reply := make(chan struct{})
	op := func(st *state) {
		fn(st)
		close(reply)
	}

	select {
	case s.ops <- op:
	case <-s.done:
		return ErrClosed
	}

	select {
	case <-reply:
		return nil
	case <-s.done:
		return ErrClosed
	}
}

// Close stops the owner goroutine. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.stop) })
	<-s.done
}

// =============================================================================
// MUTATORS
// =============================================================================

// AppendUser adds a user message.
func (s *Session) AppendUser(text string) error {
	return s.call(func(st *state) {
		st.messages = append(st.messages, chatfile.Message{Role: chatfile.RoleUser, Content: text})
		st.dirty = true
	})
}

// AppendToken adds a piece of a streaming assistant reply. Pieces are
// buffered as pending text until AppendAssistantFinal or DiscardPending.
func (s *Session) AppendToken(text string) error {
	return s.call(func(st *state) {
		st.pending.WriteString(text)
		st.streaming = true
	})
}

// AppendAssistantFinal ends a reply: pending text is dropped and text is
// appended as one assistant message.
func (s *Session) AppendAssistantFinal(text string) error {
	return s.call(func(st *state) {
		st.pending.Reset()
		st.streaming = false
		st.messages = append(st.messages, chatfile.Message{Role: chatfile.RoleAssistant, Content: text})
		st.dirty = true
	})
}

// DiscardPending drops a partially streamed reply.
func (s *Session) DiscardPending() error {
	return s.call(func(st *state) {
		st.pending.Reset()
		st.streaming = false
	})
}

// ReplaceAll swaps in a loaded chat bound to path. The session keeps its
// own copy of the messages and starts clean. The chat's model becomes the
// active model unless it is empty or chatfile.UnknownModel, in which case
// the current selection is kept.
func (s *Session) ReplaceAll(chat *chatfile.Chat, path string) error {
	messages := append([]chatfile.Message(nil), chat.Messages...)
	return s.call(func(st *state) {
		st.reset()
		st.messages = messages
		if chat.Model != "" && chat.Model != chatfile.UnknownModel {
			st.model = chat.Model
		}
		st.path = path
		if !chat.CreatedAt.IsZero() {
			st.created = chat.CreatedAt
		}
	})
}

// Clear starts a new, empty chat with a fresh ID. The active model is kept.
func (s *Session) Clear() error {
	return s.call(func(st *state) {
		st.reset()
	})
}

// SetActiveModel selects the model for subsequent prompts.
func (s *Session) SetActiveModel(model string) error {
	return s.call(func(st *state) {
		st.model = model
	})
}

// SetAutoSave toggles periodic saving.
func (s *Session) SetAutoSave(enabled bool) error {
	return s.call(func(st *state) {
		st.autoSave = enabled
	})
}

// MarkSaved records that the chat was written to path.
func (s *Session) MarkSaved(path string) error {
	return s.call(func(st *state) {
		st.path = path
		st.dirty = false
		st.lastSave = time.Now()
	})
}

// Detach forgets the backing file, e.g. after it was deleted. A non-empty
// chat becomes dirty again.
func (s *Session) Detach() error {
	return s.call(func(st *state) {
		st.path = ""
		st.dirty = len(st.messages) > 0
	})
}

// =============================================================================
// READERS
// =============================================================================

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := s.call(func(st *state) {
		snap = st.snapshot()
	})
	return snap, err
}

// Dirty reports whether there are unsaved changes.
func (s *Session) Dirty() bool {
	var dirty bool
	s.call(func(st *state) {
		dirty = st.dirty
	})
	return dirty
}

// ID returns the current chat's identifier. It changes on Clear and
// ReplaceAll.
func (s *Session) ID() string {
	var id string
	s.call(func(st *state) {
		id = st.id
	})
	return id
}
