// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/ollama-chat/internal/config"
)

func newConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Long: `Show or change settings. Settings are read from config.json, config.toml
or config.yaml in the config directory (first found wins) and written back
as config.json. OLLAMA_CHAT_* environment variables override the file.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return configShow(app)
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective settings",
			Args:  noArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return configShow(app)
			},
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one setting",
			Args:  exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := app.Config.Get(args[0])
				if err != nil {
					return &UsageError{Err: err}
				}
				fmt.Fprintln(app.Out, v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change a setting and save it",
			Long:  "Change a setting and save it. Keys: api_url, theme, autosave, default_model, log.level, log.max_size_mb, log.max_backups, log.max_age_days.",
			Args:  exactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := setConfigValue(app, args[0], args[1]); err != nil {
					return err
				}
				v, _ := app.Config.Get(args[0])
				fmt.Fprintf(app.Out, "%s = %v\n", args[0], v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config, chats and log locations",
			Args:  noArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				p := app.Paths
				fmt.Fprintf(app.Out, "config: %s\n", p.JSONFile())
				fmt.Fprintf(app.Out, "chats:  %s\n", p.ChatsDir)
				fmt.Fprintf(app.Out, "log:    %s\n", p.LogFile())
				return nil
			},
		},
	)
	return cmd
}

func configShow(app *App) error {
	fmt.Fprint(app.Out, app.Config.String())
	if src := app.Config.Source(); src != "" {
		fmt.Fprintln(app.Out, app.Theme.Muted.Render("# loaded from "+src))
	} else {
		fmt.Fprintln(app.Out, app.Theme.Muted.Render("# defaults (no config file)"))
	}
	return nil
}

// setConfigValue validates and applies one setting, then saves the file.
// The file gets what the user set, not environment overrides.
func setConfigValue(app *App, key, value string) error {
	// An unreadable file is replaced by the saved one.
	fileCfg, _ := config.LoadFile(app.Paths)
	if err := fileCfg.Set(key, value); err != nil {
		return &UsageError{Err: err}
	}
	if err := app.Config.Set(key, value); err != nil {
		return &UsageError{Err: err}
	}
	if err := config.Save(fileCfg, app.Paths); err != nil {
		return &CommandError{Command: "config", Action: "set", Reason: "cannot save settings", Err: err}
	}
	app.Logger.Info("setting changed", zap.String("key", key))
	return nil
}
