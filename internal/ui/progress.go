// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"io"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/ollama-chat/internal/ollama"
)

// DefaultProgressInterval spaces plain progress lines.
const DefaultProgressInterval = time.Second

// ProgressPrinter writes pull progress as plain lines. Status changes are
// always printed; percentage updates within one status are rate limited.
type ProgressPrinter struct {
	w       io.Writer
	limiter *rate.Limiter

	status  string
	percent int
}

// NewProgressPrinter creates a printer allowing one percentage line per
// interval. interval <= 0 uses DefaultProgressInterval.
func NewProgressPrinter(w io.Writer, interval time.Duration) *ProgressPrinter {
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	return &ProgressPrinter{
		w:       w,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		percent: -1,
	}
}

// Handle consumes one raw progress line. Suitable as a Pull callback.
func (p *ProgressPrinter) Handle(raw []byte) {
	pr, ok := ollama.ParseProgress(raw)
	if !ok {
		return
	}
	percent, known := pr.Percent()

	if pr.Status != "" && pr.Status != p.status {
		p.status = pr.Status
		p.percent = -1
		p.print(pr, percent, known)
		// The status line counts against the budget.
		p.limiter.Allow()
		return
	}

	if !known || percent == p.percent {
		return
	}
	if percent == 100 || p.limiter.Allow() {
		p.print(pr, percent, known)
	}
}

func (p *ProgressPrinter) print(pr ollama.PullProgress, percent int, known bool) {
	if known {
		p.percent = percent
		if pr.Total != nil {
			fmt.Fprintf(p.w, "%s: %d%% of %s\n", p.status, percent, ollama.FormatBytes(*pr.Total))
			return
		}
		fmt.Fprintf(p.w, "%s: %d%%\n", p.status, percent)
		return
	}
	fmt.Fprintf(p.w, "%s\n", p.status)
}
