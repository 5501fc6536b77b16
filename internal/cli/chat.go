// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/ollama-chat/internal/chatfile"
	"github.com/jeranaias/ollama-chat/internal/logging"
	"github.com/jeranaias/ollama-chat/internal/session"
	"github.com/jeranaias/ollama-chat/internal/storage"
	"github.com/jeranaias/ollama-chat/internal/ui"
)

// historyFileName keeps typed input across runs, next to the config.
const historyFileName = "input_history"

// chatOptions are the flags of the chat command.
type chatOptions struct {
	model   string
	open    string
	noStart bool
}

func (o *chatOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.model, "model", "m", "", "Model to chat with (default: config default_model, else first installed)")
	f.StringVarP(&o.open, "open", "o", "", "Open a saved chat by name or path")
	f.BoolVar(&o.noStart, "no-start", false, "Do not try to start a local Ollama server")
}

func newChatCommand(app *App) *cobra.Command {
	opts := &chatOptions{}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat",
		Long: `Start an interactive chat. Plain lines are sent to the model and the
reply streams as it is generated. Ctrl+C stops a reply in progress.
Type /help for commands.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), app, *opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

// =============================================================================
// CHAT LOOP
// =============================================================================

// repl is the interactive control layer: it reads lines, drives the
// client and store, and records everything in the session.
type repl struct {
	app  *App
	sess *session.Session
	in   prompter
	out  io.Writer
	md   *ui.Markdown
}

func runChat(ctx context.Context, app *App, opts chatOptions) error {
	if !opts.noStart && isLocalURL(app.Config.APIURL) {
		if err := app.Client.EnsureRunning(ctx); err != nil {
			app.warnf("Ollama is not available: %v", err)
		}
	}

	model, err := app.resolveModel(ctx, opts.model)
	if err != nil {
		app.Logger.Warn("no model selected", zap.Error(err))
		app.warnf("No model selected (%v). Use /models, /pull NAME or /model NAME.", err)
	}

	sess := session.New(session.Config{
		Model:            model,
		AutoSave:         app.Config.Autosave,
		AutoSaveInterval: session.DefaultAutoSaveInterval,
		OnAutoSave: func(snap session.Snapshot) error {
			_, err := app.Store.Save(snap.BackingPath, snap.Chat())
			return err
		},
		Logger: app.Logger,
	})
	defer sess.Close()

	in := newPrompter(app.In, app.Out, filepath.Join(app.Paths.ConfigDir, historyFileName))
	defer in.Close()

	r := &repl{app: app, sess: sess, in: in, out: app.Out}
	r.refreshMarkdown()

	if opts.open != "" {
		if err := r.open(ctx, opts.open); err != nil {
			return err
		}
	}

	r.printWelcome()
	return r.loop(ctx)
}

func (r *repl) loop(ctx context.Context) error {
	for {
		line, err := r.in.Prompt(r.prompt())
		if err != nil {
			if !isEndOfInput(err) {
				return err
			}
			fmt.Fprintln(r.out)
			if r.confirmDiscard("quitting") {
				return nil
			}
			if errors.Is(err, io.EOF) {
				// Input is gone; nothing more can be asked.
				return nil
			}
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.in.AppendHistory(line)

		if strings.HasPrefix(line, "/") {
			quit, err := r.command(ctx, line)
			if err != nil {
				DisplayError(r.app.Err, r.app.ErrTheme, err)
			}
			if quit {
				return nil
			}
			continue
		}

		if err := r.send(ctx, line); err != nil {
			DisplayError(r.app.Err, r.app.ErrTheme, err)
		}
	}
}

// send streams a reply to text. On failure the error text becomes the
// assistant message, so the transcript shows what happened. A reply
// stopped with Ctrl+C is dropped.
func (r *repl) send(ctx context.Context, text string) error {
	snap, err := r.sess.Snapshot()
	if err != nil {
		return err
	}
	model := snap.ActiveModel
	if model == "" {
		return &UsageError{Err: errors.New("no model selected; use /model NAME or /pull NAME")}
	}

	if err := r.sess.AppendUser(text); err != nil {
		return err
	}

	theme := r.app.Theme
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, ui.Label(theme, chatfile.RoleAssistant))

	genCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	start := time.Now()
	reply, err := r.app.Client.Generate(genCtx, model, text, func(tok string) {
		_ = r.sess.AppendToken(tok)
		fmt.Fprint(r.out, tok)
	})
	canceled := genCtx.Err() != nil && ctx.Err() == nil
	stop()
	fmt.Fprintln(r.out)

	switch {
	case err == nil:
		r.app.Logger.Debug("reply complete", zap.String("model", model), logging.Since(start))
		fmt.Fprintln(r.out)
		return r.sess.AppendAssistantFinal(reply)
	case canceled:
		fmt.Fprintln(r.out, theme.Warning.Render("[Cancelled]"))
		return r.sess.DiscardPending()
	default:
		if ferr := r.sess.AppendAssistantFinal(reply); ferr != nil {
			return errors.Join(err, ferr)
		}
		return err
	}
}

// =============================================================================
// SHARED ACTIONS
// =============================================================================

// save writes the current chat. An empty name reuses the backing file, or
// picks a timestamped name for a chat never saved.
func (r *repl) save(name string) (string, error) {
	snap, err := r.sess.Snapshot()
	if err != nil {
		return "", err
	}
	if len(snap.Messages) == 0 {
		return "", errors.New("nothing to save")
	}

	target := name
	if target == "" {
		target = snap.BackingPath
	}
	if target == "" {
		target = storage.DefaultFilename(time.Now())
	}

	chat := snap.Chat()
	path, err := r.app.Store.Save(target, chat)
	if err != nil {
		return "", err
	}
	if err := r.sess.MarkSaved(path); err != nil {
		return "", err
	}
	return path, nil
}

// open loads a saved chat into the session and prints it. The chat's
// model is adopted only if the server lists it as installed.
func (r *repl) open(ctx context.Context, name string) error {
	chat, err := r.app.Store.Load(name)
	if err != nil {
		if errors.Is(err, storage.ErrChatNotFound) {
			return &NotFoundError{Resource: "chat", ID: name}
		}
		return err
	}

	loaded := *chat
	if loaded.Model != chatfile.UnknownModel {
		models, err := r.app.Client.ListModels(ctx)
		if err != nil || !containsModel(models, loaded.Model) {
			r.app.Logger.Info("keeping active model",
				zap.String("chat_model", loaded.Model), zap.Error(err))
			r.app.warnf("Model %q from this chat is not available; keeping the current model.", loaded.Model)
			loaded.Model = ""
		}
	}

	if err := r.sess.ReplaceAll(&loaded, r.app.Store.Resolve(name)); err != nil {
		return err
	}
	fmt.Fprintln(r.out, ui.RenderTranscript(r.app.Theme, r.md, chat))
	return nil
}

// confirmDiscard resolves unsaved changes before action. It returns false
// when the user cancels or the save fails.
func (r *repl) confirmDiscard(action string) bool {
	snap, err := r.sess.Snapshot()
	if err != nil || !snap.Dirty || len(snap.Messages) == 0 {
		return true
	}

	choice, err := askUnsaved(r.in, action)
	if err != nil {
		r.app.warnf("Unsaved changes were not saved.")
		return true
	}

	switch choice {
	case unsavedSave:
		path, err := r.save("")
		if err != nil {
			DisplayError(r.app.Err, r.app.ErrTheme, err)
			return false
		}
		fmt.Fprintln(r.out, r.app.Theme.Success.Render("Saved to "+path))
		return true
	case unsavedDiscard:
		return true
	}
	return false
}

func (r *repl) refreshMarkdown() {
	if r.app.Theme.Plain() {
		r.md = nil
		return
	}
	md, err := ui.NewMarkdown(r.app.Theme, terminalWidth(r.out))
	if err != nil {
		r.app.Logger.Warn("markdown renderer unavailable", zap.Error(err))
		r.md = nil
		return
	}
	r.md = md
}

// =============================================================================
// DISPLAY
// =============================================================================

func (r *repl) prompt() string {
	dirty := ""
	if r.sess.Dirty() {
		dirty = "*"
	}
	return "you" + dirty + "> "
}

func (r *repl) printWelcome() {
	theme := r.app.Theme
	fmt.Fprintln(r.out, theme.Title.Render("Ollama Chat"))
	model := ""
	if snap, err := r.sess.Snapshot(); err == nil {
		model = snap.ActiveModel
	}
	if model == "" {
		model = "(none)"
	}
	fmt.Fprintf(r.out, "%s %s\n", theme.Muted.Render("Model:"), theme.Info.Render(model))
	fmt.Fprintf(r.out, "%s %s\n", theme.Muted.Render("Server:"), r.app.Client.BaseURL())
	fmt.Fprintln(r.out, theme.Muted.Render("Type a message and press Enter. /help lists commands, /quit exits."))
	fmt.Fprintln(r.out)
}

// isLocalURL reports whether raw points at this machine, where starting
// the server ourselves makes sense.
func isLocalURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
