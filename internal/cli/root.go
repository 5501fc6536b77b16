// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// Version info (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// NewRootCommand builds the command tree bound to streams. Running it with
// no subcommand starts the interactive chat.
func NewRootCommand(streams Streams) *cobra.Command {
	root, _ := newRoot(streams)
	return root
}

func newRoot(streams Streams) (*cobra.Command, *App) {
	app := &App{Streams: streams}
	chatOpts := &chatOptions{}

	root := &cobra.Command{
		Use:   "ollama-chat",
		Short: "Chat with local Ollama models from the terminal",
		Long: `ollama-chat talks to a local Ollama server, streams replies as they are
generated, and keeps conversations as plain text files.

Examples:
  ollama-chat                          Start interactive chat
  ollama-chat chat --open work         Continue a saved chat
  ollama-chat ask "What is a goroutine?"
  ollama-chat models                   List installed models
  ollama-chat pull mistral             Download a model
  ollama-chat history list             List saved chats
  ollama-chat config set theme Dark    Change a setting`,
		Version:       fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), app, *chatOpts)
		},
	}

	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)
	root.SetVersionTemplate("ollama-chat {{.Version}}\n")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&app.Options.APIURL, "api-url", "", "Ollama server URL (overrides config)")
	pf.StringVar(&app.Options.ConfigDir, "config-dir", "", "Directory for config, chats and logs (default: ~/.ollama_chat)")
	pf.BoolVarP(&app.Options.Verbose, "verbose", "v", false, "Log diagnostics to stderr")
	chatOpts.bind(root)

	root.AddCommand(
		newChatCommand(app),
		newAskCommand(app),
		newModelsCommand(app),
		newPullCommand(app),
		newHistoryCommand(app),
		newConfigCommand(app),
	)
	return root, app
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	return run(context.Background(), StdStreams(), nil)
}

// run executes the root command with args (nil means os.Args) and reports
// any error on streams.Err.
func run(ctx context.Context, streams Streams, args []string) int {
	root, app := newRoot(streams)
	defer app.Close()
	if args != nil {
		root.SetArgs(args)
	}

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	if isUnknownCommand(err) {
		err = &UsageError{Err: err}
	}

	theme := app.ErrTheme
	if theme == nil {
		theme = themeFor("", streams.Err)
	}
	DisplayError(streams.Err, theme, err)
	return GetExitCode(err)
}

// =============================================================================
// ARGUMENT VALIDATORS
// =============================================================================

// Cobra's validators return untyped errors; these mark them as usage
// errors for the exit code.

func noArgs(cmd *cobra.Command, args []string) error {
	return asUsage(cobra.NoArgs(cmd, args))
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return asUsage(cobra.ExactArgs(n)(cmd, args))
	}
}

func minArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return asUsage(cobra.MinimumNArgs(n)(cmd, args))
	}
}

func asUsage(err error) error {
	if err == nil {
		return nil
	}
	return &UsageError{Err: err}
}
