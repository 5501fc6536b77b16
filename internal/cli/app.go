// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/jeranaias/ollama-chat/internal/config"
	"github.com/jeranaias/ollama-chat/internal/export"
	"github.com/jeranaias/ollama-chat/internal/logging"
	"github.com/jeranaias/ollama-chat/internal/ollama"
	"github.com/jeranaias/ollama-chat/internal/storage"
	"github.com/jeranaias/ollama-chat/internal/ui/styles"
)

// Streams bundles the standard streams a command reads and writes.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns the process streams.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Options holds the global flags.
type Options struct {
	APIURL    string
	ConfigDir string
	Verbose   bool
}

// App is the shared state of one invocation. The root command fills it in
// before any subcommand runs.
type App struct {
	Streams
	Options Options

	Paths    config.Paths
	Config   *config.Config
	Logger   *zap.Logger
	Client   *ollama.Client
	Store    *storage.ChatStore
	Theme    *styles.Theme // for Out
	ErrTheme *styles.Theme // for Err

	logs *logging.Logger
}

// setup loads configuration and builds the logger, client and store.
func (a *App) setup() error {
	// Errors before the theme exists still need one.
	a.ErrTheme = themeFor(config.ThemeLight, a.Err)

	paths, err := a.resolvePaths()
	if err != nil {
		return err
	}
	if err := paths.EnsureDirs(); err != nil {
		return &CommandError{Command: "ollama-chat", Action: "init", Reason: "cannot create data directory", Err: err}
	}
	a.Paths = paths

	cfg, loadErr := config.Load(paths)
	if cfg == nil {
		return loadErr
	}
	if a.Options.APIURL != "" {
		if err := cfg.Set("api_url", a.Options.APIURL); err != nil {
			return &UsageError{Err: fmt.Errorf("--api-url: %w", err)}
		}
	}
	a.Config = cfg

	logOpts := logging.Options{
		Level:      cfg.Log.Level,
		File:       paths.LogFile(),
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}
	if a.Options.Verbose {
		logOpts.Console = a.Err
		logOpts.ConsoleLevel = "debug"
	}
	logs, err := logging.New(logOpts)
	if err != nil {
		return &CommandError{Command: "ollama-chat", Action: "init", Reason: "cannot open log file", Err: err}
	}
	a.logs = logs
	a.Logger = logs.Logger

	if loadErr != nil {
		a.Logger.Warn("config file ignored", zap.Error(loadErr))
		fmt.Fprintln(a.Err, a.ErrTheme.Warning.Render("Warning: "+loadErr.Error()))
	}
	a.Logger.Debug("configuration loaded",
		zap.String("source", cfg.Source()),
		zap.String("api_url", cfg.APIURL))

	a.applyConfig()

	store, err := storage.NewChatStore(paths.ChatsDir, a.Logger)
	if err != nil {
		return &CommandError{Command: "ollama-chat", Action: "init", Reason: "cannot open chat directory", Err: err}
	}
	a.Store = store
	return nil
}

// applyConfig rebuilds everything derived from Config. Called again after
// settings change inside the chat loop.
func (a *App) applyConfig() {
	a.Client = ollama.NewClient(&ollama.ClientConfig{
		BaseURL: a.Config.APIURL,
		Logger:  a.Logger,
	})
	a.Theme = themeFor(a.Config.Theme, a.Out)
	a.ErrTheme = themeFor(a.Config.Theme, a.Err)
}

func (a *App) resolvePaths() (config.Paths, error) {
	if a.Options.ConfigDir != "" {
		return config.PathsIn(a.Options.ConfigDir), nil
	}
	paths, err := config.DefaultPaths()
	if err != nil {
		return config.Paths{}, &CommandError{Command: "ollama-chat", Action: "init", Reason: "cannot locate home directory", Err: err}
	}
	return paths, nil
}

// Close flushes the log file.
func (a *App) Close() error {
	if a.logs == nil {
		return nil
	}
	return a.logs.Close()
}

// resolveModel picks the model for a generation: the flag, then the
// configured default, then the first installed model.
func (a *App) resolveModel(ctx context.Context, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if a.Config.DefaultModel != "" {
		return a.Config.DefaultModel, nil
	}
	models, err := a.Client.ListModels(ctx)
	if err != nil {
		return "", err
	}
	if len(models) == 0 {
		return "", &NotFoundError{Resource: "model", ID: "no models installed"}
	}
	return models[0].Name, nil
}

// exportOptions matches exports to the configured theme.
func (a *App) exportOptions() *export.Options {
	opts := export.DefaultOptions()
	opts.Theme = a.Config.Theme
	return opts
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.Out, format, args...)
}

func (a *App) warnf(format string, args ...any) {
	fmt.Fprintln(a.Err, a.ErrTheme.Warning.Render(fmt.Sprintf(format, args...)))
}
