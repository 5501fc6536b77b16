// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/jeranaias/ollama-chat/internal/config"
	"github.com/jeranaias/ollama-chat/internal/export"
	"github.com/jeranaias/ollama-chat/internal/ollama"
	"github.com/jeranaias/ollama-chat/internal/storage"
	"github.com/jeranaias/ollama-chat/internal/ui"
)

// =============================================================================
// SLASH COMMANDS
// =============================================================================

type slashCommand struct {
	name    string
	aliases []string
	usage   string
	desc    string
	run     func(r *repl, ctx context.Context, args []string) (quit bool, err error)
}

var slashCommands []slashCommand

func init() {
	// Assigned in init: cmdHelp reads slashCommands.
	slashCommands = []slashCommand{
		{"/help", []string{"/h", "/?"}, "/help", "Show this help", cmdHelp},
		{"/new", []string{"/clear"}, "/new", "Start a new chat", cmdNew},
		{"/save", nil, "/save [name]", "Save the chat (default: chat_YYYYMMDD_HHMMSS)", cmdSave},
		{"/open", nil, "/open <name>", "Open a saved chat", cmdOpen},
		{"/history", nil, "/history [query]", "List saved chats, newest first", cmdHistory},
		{"/delete", nil, "/delete [name]", "Delete a saved chat (default: the current one)", cmdDelete},
		{"/model", nil, "/model [name]", "Show or switch the model", cmdModel},
		{"/models", nil, "/models", "List installed models", cmdModels},
		{"/pull", nil, "/pull <name>", "Download a model", cmdPull},
		{"/copy", nil, "/copy", "Copy the last reply to the clipboard", cmdCopy},
		{"/export", nil, "/export [file]", "Export the chat (.md, .json or .html)", cmdExport},
		{"/settings", nil, "/settings [key value]", "Show or change settings", cmdSettings},
		{"/quit", []string{"/q", "/exit"}, "/quit", "Exit", cmdQuit},
	}
}

func lookupCommand(name string) (slashCommand, bool) {
	name = strings.ToLower(name)
	for _, c := range slashCommands {
		if c.name == name {
			return c, true
		}
		for _, a := range c.aliases {
			if a == name {
				return c, true
			}
		}
	}
	return slashCommand{}, false
}

// command runs one slash command line.
func (r *repl) command(ctx context.Context, line string) (bool, error) {
	parts := strings.Fields(line)
	c, ok := lookupCommand(parts[0])
	if !ok {
		return false, &UsageError{Err: fmt.Errorf("unknown command: %s (type /help for commands)", parts[0])}
	}
	return c.run(r, ctx, parts[1:])
}

func cmdHelp(r *repl, _ context.Context, _ []string) (bool, error) {
	theme := r.app.Theme
	fmt.Fprintln(r.out, theme.Title.Render("Commands"))
	for _, c := range slashCommands {
		fmt.Fprintf(r.out, "  %s  %s\n", theme.Info.Render(fmt.Sprintf("%-22s", c.usage)), theme.Muted.Render(c.desc))
	}
	fmt.Fprintln(r.out, theme.Muted.Render("  Ctrl+C stops a reply in progress."))
	return false, nil
}

func cmdNew(r *repl, _ context.Context, _ []string) (bool, error) {
	if !r.confirmDiscard("starting a new chat") {
		return false, nil
	}
	if err := r.sess.Clear(); err != nil {
		return false, err
	}
	fmt.Fprintln(r.out, r.app.Theme.Success.Render("Started a new chat."))
	return false, nil
}

func cmdSave(r *repl, _ context.Context, args []string) (bool, error) {
	path, err := r.save(strings.Join(args, " "))
	if err != nil {
		return false, err
	}
	fmt.Fprintln(r.out, r.app.Theme.Success.Render("Saved to "+path))
	return false, nil
}

func cmdOpen(r *repl, ctx context.Context, args []string) (bool, error) {
	if len(args) == 0 {
		return false, &UsageError{Err: errors.New("usage: /open <name>")}
	}
	if !r.confirmDiscard("opening another chat") {
		return false, nil
	}
	return false, r.open(ctx, strings.Join(args, " "))
}

func cmdHistory(r *repl, _ context.Context, args []string) (bool, error) {
	var metas []storage.ChatMeta
	var err error
	if len(args) > 0 {
		metas, err = r.app.Store.Search(strings.Join(args, " "))
	} else {
		metas, err = r.app.Store.List()
	}
	if err != nil {
		return false, err
	}
	fmt.Fprintln(r.out, storage.FormatChatList(metas))
	return false, nil
}

// cmdDelete deletes a named chat, or the current chat if it was saved.
func cmdDelete(r *repl, _ context.Context, args []string) (bool, error) {
	snap, err := r.sess.Snapshot()
	if err != nil {
		return false, err
	}

	target := strings.Join(args, " ")
	current := target == ""
	if current {
		if snap.BackingPath == "" {
			return false, errors.New("the current chat has not been saved")
		}
		target = snap.BackingPath
	}
	path := r.app.Store.Resolve(target)
	current = current || path == snap.BackingPath

	ok, err := confirm(r.in, fmt.Sprintf("Delete %s?", storage.NameFromPath(path)))
	if err != nil || !ok {
		return false, err
	}
	if err := r.app.Store.Delete(path); err != nil {
		return false, err
	}

	if current {
		if err := r.sess.Clear(); err != nil {
			return false, err
		}
	}
	fmt.Fprintln(r.out, r.app.Theme.Success.Render("Deleted "+storage.NameFromPath(path)))
	return false, nil
}

func cmdModel(r *repl, ctx context.Context, args []string) (bool, error) {
	theme := r.app.Theme
	if len(args) == 0 {
		snap, err := r.sess.Snapshot()
		if err != nil {
			return false, err
		}
		name := snap.ActiveModel
		if name == "" {
			name = "(none)"
		}
		fmt.Fprintf(r.out, "%s %s\n", theme.Muted.Render("Current model:"), theme.Info.Render(name))
		return false, nil
	}

	name := args[0]
	models, err := r.app.Client.ListModels(ctx)
	if err == nil && !containsModel(models, name) {
		r.app.warnf("Model %q is not installed; replies will fail until it is pulled.", name)
	}
	if err := r.sess.SetActiveModel(name); err != nil {
		return false, err
	}
	fmt.Fprintln(r.out, theme.Success.Render("Switched to model: "+name))
	return false, nil
}

func cmdModels(r *repl, ctx context.Context, _ []string) (bool, error) {
	models, err := r.app.Client.ListModels(ctx)
	if err != nil {
		return false, err
	}
	snap, err := r.sess.Snapshot()
	if err != nil {
		return false, err
	}
	printModels(r.out, models, snap.ActiveModel)
	return false, nil
}

func cmdPull(r *repl, ctx context.Context, args []string) (bool, error) {
	if len(args) != 1 {
		return false, &UsageError{Err: errors.New("usage: /pull <name>")}
	}
	pullCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if err := r.app.pullModel(pullCtx, args[0]); err != nil {
		return false, err
	}

	snap, err := r.sess.Snapshot()
	if err == nil && snap.ActiveModel == "" {
		_ = r.sess.SetActiveModel(args[0])
		fmt.Fprintln(r.out, r.app.Theme.Success.Render("Switched to model: "+args[0]))
	}
	return false, nil
}

func cmdCopy(r *repl, _ context.Context, _ []string) (bool, error) {
	snap, err := r.sess.Snapshot()
	if err != nil {
		return false, err
	}
	reply := snap.Chat().LastAssistantMessage()
	if err := ui.CopyText(reply); err != nil {
		if errors.Is(err, ui.ErrNothingToCopy) {
			return false, errors.New("no reply to copy yet")
		}
		return false, err
	}
	fmt.Fprintln(r.out, r.app.Theme.Success.Render("Copied the last reply to the clipboard."))
	return false, nil
}

// cmdExport writes the current chat to file, in the format its extension
// names. The default is <chat name>.md in the working directory.
func cmdExport(r *repl, _ context.Context, args []string) (bool, error) {
	snap, err := r.sess.Snapshot()
	if err != nil {
		return false, err
	}
	chat := snap.Chat()

	path := strings.Join(args, " ")
	f := export.FormatMarkdown
	if path != "" {
		if pf, ok := export.FormatForPath(path); ok {
			f = pf
		}
	}
	exporter, err := export.New(f, r.app.exportOptions())
	if err != nil {
		return false, err
	}
	if path == "" {
		path = export.DefaultFilename(chat, exporter)
	}

	if err := export.ToFile(chat, exporter, path); err != nil {
		if errors.Is(err, export.ErrEmptyChat) {
			return false, errors.New("nothing to export")
		}
		return false, err
	}
	fmt.Fprintln(r.out, r.app.Theme.Success.Render("Exported to "+path))
	return false, nil
}

// cmdSettings shows settings, or changes one and applies it immediately.
func cmdSettings(r *repl, _ context.Context, args []string) (bool, error) {
	app := r.app
	if len(args) == 0 {
		fmt.Fprint(r.out, app.Config.String())
		fmt.Fprintln(r.out, app.Theme.Muted.Render("Change with: /settings <key> <value>  (keys: "+strings.Join(config.Keys(), ", ")+")"))
		return false, nil
	}
	if len(args) < 2 {
		return false, &UsageError{Err: errors.New("usage: /settings <key> <value>")}
	}

	key, value := args[0], strings.Join(args[1:], " ")
	if err := setConfigValue(app, key, value); err != nil {
		return false, err
	}

	app.applyConfig()
	r.refreshMarkdown()
	if err := r.sess.SetAutoSave(app.Config.Autosave); err != nil {
		return false, err
	}

	v, _ := app.Config.Get(key)
	fmt.Fprintln(r.out, app.Theme.Success.Render(fmt.Sprintf("%s = %v", key, v)))
	return false, nil
}

func cmdQuit(r *repl, _ context.Context, _ []string) (bool, error) {
	return r.confirmDiscard("quitting"), nil
}

func containsModel(models []ollama.ModelDescriptor, name string) bool {
	for _, m := range models {
		if m.Name == name || strings.TrimSuffix(m.Name, ":latest") == name {
			return true
		}
	}
	return false
}
