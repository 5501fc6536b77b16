// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/ollama-chat/internal/export"
	"github.com/jeranaias/ollama-chat/internal/storage"
	"github.com/jeranaias/ollama-chat/internal/ui"
)

func newHistoryCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage saved chats",
		Long:  `List, show, search, delete and watch the chats saved in the chats directory.`,
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return historyList(app)
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved chats, newest first",
			Args:  noArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return historyList(app)
			},
		},
		newHistoryShowCommand(app),
		&cobra.Command{
			Use:   "search <query>",
			Short: "Find chats whose model or messages contain query",
			Args:  minArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				metas, err := app.Store.Search(strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintln(app.Out, storage.FormatChatList(metas))
				return nil
			},
		},
		newHistoryDeleteCommand(app),
		newHistoryExportCommand(app),
		newHistoryWatchCommand(app),
	)
	return cmd
}

func historyList(app *App) error {
	metas, err := app.Store.List()
	if err != nil {
		return err
	}
	fmt.Fprintln(app.Out, storage.FormatChatList(metas))
	return nil
}

func newHistoryShowCommand(app *App) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a saved chat",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if raw {
				data, err := os.ReadFile(app.Store.Resolve(name))
				if err != nil {
					if errors.Is(err, os.ErrNotExist) {
						return &NotFoundError{Resource: "chat", ID: name}
					}
					return err
				}
				_, err = app.Out.Write(data)
				return err
			}

			chat, err := app.Store.Load(name)
			if err != nil {
				if errors.Is(err, storage.ErrChatNotFound) {
					return &NotFoundError{Resource: "chat", ID: name}
				}
				return err
			}

			var md *ui.Markdown
			if !app.Theme.Plain() {
				md, _ = ui.NewMarkdown(app.Theme, terminalWidth(app.Out))
			}
			fmt.Fprint(app.Out, ui.RenderTranscript(app.Theme, md, chat))
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the file exactly as stored")
	return cmd
}

func newHistoryDeleteCommand(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved chat",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !yes {
				if !isTerminal(app.In) {
					return &UsageError{Err: errConfirmationRequired}
				}
				ok, err := confirm(newScanPrompter(app.In), fmt.Sprintf("Delete %s?", name))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(app.Out, "Not deleted.")
					return nil
				}
			}
			if err := app.Store.Delete(name); err != nil {
				if errors.Is(err, storage.ErrChatNotFound) {
					return &NotFoundError{Resource: "chat", ID: name}
				}
				return err
			}
			fmt.Fprintf(app.Out, "Deleted %s\n", storage.NameFromPath(app.Store.Resolve(name)))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newHistoryExportCommand(app *App) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Export a saved chat as markdown, json or html",
		Long: `Export a saved chat. Without --output the result is written to stdout.
The format defaults to the output file's extension, else markdown.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chat, err := app.Store.Load(args[0])
			if err != nil {
				if errors.Is(err, storage.ErrChatNotFound) {
					return &NotFoundError{Resource: "chat", ID: args[0]}
				}
				return err
			}

			f, err := exportFormat(format, cmd.Flags().Changed("format"), output)
			if err != nil {
				return err
			}
			exporter, err := export.New(f, app.exportOptions())
			if err != nil {
				return &UsageError{Err: err}
			}

			if output == "" {
				data, err := exporter.Export(chat)
				if err != nil {
					return err
				}
				_, err = app.Out.Write(data)
				return err
			}
			if err := export.ToFile(chat, exporter, output); err != nil {
				return err
			}
			fmt.Fprintf(app.Err, "Exported to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatMarkdown), "Output format: markdown, json or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

// exportFormat resolves the format flag, letting the output extension
// decide when the flag was not given.
func exportFormat(flag string, changed bool, output string) (export.Format, error) {
	if !changed && output != "" {
		if f, ok := export.FormatForPath(output); ok {
			return f, nil
		}
	}
	f, err := export.ParseFormat(flag)
	if err != nil {
		return "", &UsageError{Err: err}
	}
	return f, nil
}

func newHistoryWatchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print chats as they are created, changed or removed",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			events, err := app.Store.Watch(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(app.Err, app.ErrTheme.Muted.Render("Watching "+app.Store.Dir()+" (Ctrl+C to stop)"))
			for ev := range events {
				fmt.Fprintf(app.Out, "%-8s %s\n", ev.Kind, ev.Name)
			}
			return nil
		},
	}
}
