// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/ollama-chat/internal/logging"
	"github.com/jeranaias/ollama-chat/internal/ollama"
	"github.com/jeranaias/ollama-chat/internal/ui"
)

func newModelsCommand(app *App) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:     "models",
		Aliases: []string{"list"},
		Short:   "List installed models",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := app.Client.ListModels(cmd.Context())
			if err != nil {
				return err
			}
			if quiet {
				for _, name := range ollama.ModelNames(models) {
					fmt.Fprintln(app.Out, name)
				}
				return nil
			}
			printModels(app.Out, models, app.Config.DefaultModel)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print names only")
	return cmd
}

func newPullCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pull <name>",
		Short: "Download a model",
		Long: `Download a model from the Ollama library. A progress bar is shown on a
terminal; otherwise progress is printed as lines. Ctrl+C cancels.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return app.pullModel(ctx, args[0])
		},
	}
}

// pullModel downloads name with a progress bar on a terminal and plain
// rate-limited lines otherwise.
func (a *App) pullModel(ctx context.Context, name string) error {
	start := time.Now()
	a.Logger.Info("pulling model", zap.String("model", name))

	pull := func(ctx context.Context, onProgress func([]byte)) error {
		return a.Client.Pull(ctx, name, onProgress)
	}

	var err error
	if isTerminal(a.Out) && isTerminal(a.In) {
		err = ui.RunPull(ctx, ui.PullOptions{
			Name:   name,
			Theme:  a.Theme,
			Input:  a.In,
			Output: a.Out,
		}, pull)
	} else {
		fmt.Fprintf(a.Out, "Pulling %s\n", name)
		printer := ui.NewProgressPrinter(a.Out, ui.DefaultProgressInterval)
		if err = pull(ctx, printer.Handle); err == nil {
			fmt.Fprintln(a.Out, a.Theme.Success.Render("Pulled "+name))
		}
	}

	if err != nil {
		a.Logger.Warn("pull failed", zap.String("model", name), zap.Error(err))
		return err
	}
	a.Logger.Info("model pulled", zap.String("model", name), logging.Since(start))
	return nil
}

// printModels writes a model table, marking active.
func printModels(w io.Writer, models []ollama.ModelDescriptor, active string) {
	if len(models) == 0 {
		fmt.Fprintln(w, "No models installed. Download one with: ollama-chat pull <name>")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "  NAME\tSIZE\tMODIFIED")
	for _, m := range models {
		marker := " "
		if active != "" && (m.Name == active || m.Name == active+":latest") {
			marker = "*"
		}
		modified := ""
		if !m.ModifiedAt.IsZero() {
			modified = m.ModifiedAt.Local().Format("2006-01-02 15:04")
		}
		size := ""
		if m.Size > 0 {
			size = m.FormatSize()
		}
		_, _ = fmt.Fprintf(tw, "%s %s\t%s\t%s\n", marker, m.Name, size, modified)
	}
	_ = tw.Flush()
}
