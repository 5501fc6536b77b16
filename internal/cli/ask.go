// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/ollama-chat/internal/chatfile"
	"github.com/jeranaias/ollama-chat/internal/ui"
)

type askOptions struct {
	model    string
	save     string
	markdown bool
}

func newAskCommand(app *App) *cobra.Command {
	opts := &askOptions{}
	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Send a single prompt and stream the reply",
		Long: `Send a single prompt and stream the reply to stdout. With no argument the
prompt is read from stdin.

Examples:
  ollama-chat ask "Explain channels in one paragraph"
  cat notes.md | ollama-chat ask -m mistral
  ollama-chat ask --save golang "What is a goroutine?"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(app.In, args)
			if err != nil {
				return err
			}
			return runAsk(cmd, app, *opts, prompt)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.model, "model", "m", "", "Model to use")
	f.StringVarP(&opts.save, "save", "s", "", "Save the exchange as a chat with this name")
	f.BoolVar(&opts.markdown, "markdown", false, "Render the reply as markdown after it completes")
	return cmd
}

// readPrompt joins args, or reads stdin when there are none.
func readPrompt(in io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if in == nil || isTerminal(in) {
		return "", &UsageError{Err: errors.New("a prompt is required")}
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", &UsageError{Err: errors.New("a prompt is required")}
	}
	return prompt, nil
}

func runAsk(cmd *cobra.Command, app *App, opts askOptions, prompt string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	model, err := app.resolveModel(ctx, opts.model)
	if err != nil {
		return err
	}

	render := opts.markdown && !app.Theme.Plain()
	created := time.Now()
	reply, err := app.Client.Generate(ctx, model, prompt, func(tok string) {
		if !render {
			fmt.Fprint(app.Out, tok)
		}
	})
	if err != nil {
		if !render {
			fmt.Fprintln(app.Out)
		}
		return err
	}

	if render {
		md, mdErr := ui.NewMarkdown(app.Theme, terminalWidth(app.Out))
		if mdErr == nil {
			fmt.Fprint(app.Out, md.Render(reply))
		} else {
			fmt.Fprintln(app.Out, reply)
		}
	} else {
		fmt.Fprintln(app.Out)
	}

	if opts.save == "" {
		return nil
	}
	path, err := app.Store.Save(opts.save, &chatfile.Chat{
		Model:     model,
		CreatedAt: created,
		Messages: []chatfile.Message{
			{Role: chatfile.RoleUser, Content: prompt},
			{Role: chatfile.RoleAssistant, Content: reply},
		},
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(app.Err, app.ErrTheme.Muted.Render("Saved to "+path))
	return nil
}
