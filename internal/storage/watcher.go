// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jeranaias/ollama-chat/internal/chatfile"
)

// =============================================================================
// DIRECTORY EVENTS
// =============================================================================

// EventKind classifies a change in the chat directory.
type EventKind int

const (
	EventCreated EventKind = iota
	EventChanged
	EventRemoved
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventChanged:
		return "changed"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event reports a chat file that appeared, changed or went away.
// Renames are reported as removal of the old name.
type Event struct {
	Kind EventKind
	Name string
	Path string
}

// Watch reports changes to chat files until ctx is cancelled, then
// closes the returned channel. Events for other files (including the
// temporary files used by Save) are dropped.
func (s *ChatStore) Watch(ctx context.Context) (<-chan Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return nil, err
	}

	events := make(chan Event, 16)
	go s.processEvents(ctx, watcher, events)
	return events, nil
}

func (s *ChatStore) processEvents(ctx context.Context, watcher *fsnotify.Watcher, out chan<- Event) {
	defer close(out)
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			e, ok := translateEvent(ev)
			if !ok {
				continue
			}
			select {
			case out <- e:
			case <-ctx.Done():
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("chat directory watch error", zap.Error(err))
		}
	}
}

func translateEvent(ev fsnotify.Event) (Event, bool) {
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") || !strings.EqualFold(filepath.Ext(base), chatfile.Extension) {
		return Event{}, false
	}

	e := Event{Name: NameFromPath(ev.Name), Path: ev.Name}
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		e.Kind = EventRemoved
	case ev.Has(fsnotify.Create):
		e.Kind = EventCreated
	case ev.Has(fsnotify.Write):
		e.Kind = EventChanged
	default:
		return Event{}, false
	}
	return e, true
}
