// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/jeranaias/ollama-chat/internal/chatfile"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

var inlineCodeRegex = regexp.MustCompile("`([^`\n]+)`")

// HTMLExporter exports chats to a standalone HTML page with embedded CSS.
// Fenced code blocks are highlighted with inline styles.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	return &HTMLExporter{options: opts.withDefaults()}
}

// Export converts a chat to HTML.
func (e *HTMLExporter) Export(chat *chatfile.Chat) ([]byte, error) {
	if err := validate(chat); err != nil {
		return nil, err
	}

	var sb strings.Builder
	t := html.EscapeString(title(chat))

	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", t)
	sb.WriteString("    <meta name=\"generator\" content=\"ollama-chat\">\n")
	if !chat.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "    <meta name=\"date\" content=\"%s\">\n", chat.CreatedAt.Format(time.RFC3339))
	}
	sb.WriteString(pageCSS)
	sb.WriteString("</head>\n")
	fmt.Fprintf(&sb, "<body class=\"%s-theme\">\n<div class=\"container\">\n", e.theme())

	sb.WriteString("<header class=\"header\">\n")
	fmt.Fprintf(&sb, "    <h1>%s</h1>\n", t)
	if e.options.IncludeMetadata {
		sb.WriteString("    <div class=\"metadata\">\n")
		fmt.Fprintf(&sb, "        <span><strong>Model:</strong> %s</span>\n", html.EscapeString(chat.Model))
		fmt.Fprintf(&sb, "        <span><strong>Created:</strong> %s</span>\n", formatTimestamp(chat.CreatedAt))
		fmt.Fprintf(&sb, "        <span><strong>Messages:</strong> %d</span>\n", len(chat.Messages))
		sb.WriteString("    </div>\n")
	}
	sb.WriteString("</header>\n")

	sb.WriteString("<main class=\"conversation\">\n")
	for _, msg := range chat.Messages {
		e.renderMessage(&sb, msg)
	}
	sb.WriteString("</main>\n")

	fmt.Fprintf(&sb, "<footer class=\"footer\">Exported from <strong>ollama-chat</strong> on %s</footer>\n",
		e.options.Now().Format("January 2, 2006 at 3:04 PM"))
	sb.WriteString("</div>\n</body>\n</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

func (e *HTMLExporter) theme() string {
	if e.options.Theme == "dark" {
		return "dark"
	}
	return "light"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

func (e *HTMLExporter) renderMessage(sb *strings.Builder, msg chatfile.Message) {
	fmt.Fprintf(sb, "<section class=\"message %s\">\n", html.EscapeString(string(msg.Role)))
	fmt.Fprintf(sb, "    <div class=\"role\">%s</div>\n", roleLabel(msg.Role))
	sb.WriteString("    <div class=\"content\">\n")
	sb.WriteString(e.formatContent(msg.Content))
	sb.WriteString("    </div>\n</section>\n")
}

// formatContent turns message text into paragraphs and highlighted code
// blocks. An unterminated fence runs to the end of the message.
func (e *HTMLExporter) formatContent(content string) string {
	var out, para, code strings.Builder
	inCode := false
	lang := ""

	flushPara := func() {
		if para.Len() == 0 {
			return
		}
		text := inlineCodeRegex.ReplaceAllString(html.EscapeString(para.String()), "<code>$1</code>")
		fmt.Fprintf(&out, "<p>%s</p>\n", strings.ReplaceAll(text, "\n", "<br>\n"))
		para.Reset()
	}
	flushCode := func() {
		out.WriteString(e.highlight(strings.TrimSuffix(code.String(), "\n"), lang))
		code.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case inCode && trimmed == "```":
			flushCode()
			inCode = false
		case inCode:
			code.WriteString(line + "\n")
		case strings.HasPrefix(trimmed, "```"):
			flushPara()
			inCode = true
			lang = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
		case trimmed == "":
			flushPara()
		default:
			if para.Len() > 0 {
				para.WriteString("\n")
			}
			para.WriteString(line)
		}
	}
	if inCode {
		flushCode()
	}
	flushPara()
	return out.String()
}

// highlight renders code as a styled block, falling back to escaped plain
// text when the lexer fails.
func (e *HTMLExporter) highlight(code, lang string) string {
	var sb strings.Builder
	sb.WriteString("<div class=\"code-block\">")
	if lang != "" {
		fmt.Fprintf(&sb, "<div class=\"code-lang\">%s</div>", html.EscapeString(lang))
	}

	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	styleName := "github"
	if e.theme() == "dark" {
		styleName = "monokai"
	}
	style := chromastyles.Get(styleName)
	if style == nil {
		style = chromastyles.Fallback
	}

	formatter := chromahtml.New(chromahtml.WithClasses(false), chromahtml.TabWidth(4))
	var highlighted strings.Builder
	iterator, err := lexer.Tokenise(nil, code)
	if err == nil {
		err = formatter.Format(&highlighted, style, iterator)
	}
	if err != nil {
		fmt.Fprintf(&sb, "<pre><code>%s</code></pre>", html.EscapeString(code))
	} else {
		sb.WriteString(highlighted.String())
	}
	sb.WriteString("</div>\n")
	return sb.String()
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

const pageCSS = `    <style>
        * { box-sizing: border-box; }
        body { margin: 0; font-family: -apple-system, "Segoe UI", Roboto, sans-serif; line-height: 1.6; }
        .light-theme { background: #f8fafc; color: #1e293b; }
        .dark-theme { background: #0f172a; color: #e2e8f0; }
        .container { max-width: 860px; margin: 0 auto; padding: 2rem 1rem; }
        .header h1 { margin: 0 0 0.5rem; color: #7c3aed; }
        .metadata { display: flex; flex-wrap: wrap; gap: 1rem; font-size: 0.9rem; opacity: 0.8; }
        .message { margin: 1.5rem 0; padding: 1rem 1.25rem; border-radius: 8px; border-left: 4px solid; }
        .message.user { border-color: #06b6d4; background: rgba(6, 182, 212, 0.08); }
        .message.assistant { border-color: #7c3aed; background: rgba(124, 58, 237, 0.08); }
        .role { font-weight: 600; margin-bottom: 0.5rem; }
        .content p { margin: 0.5rem 0; }
        .content code { font-family: "JetBrains Mono", Consolas, monospace; font-size: 0.9em; }
        .code-block { margin: 0.75rem 0; border-radius: 6px; overflow: hidden; }
        .code-block pre { margin: 0; padding: 0.75rem 1rem; overflow-x: auto; }
        .code-lang { font-size: 0.75rem; padding: 0.25rem 1rem; background: rgba(100, 116, 139, 0.2); }
        .footer { margin-top: 2rem; font-size: 0.85rem; opacity: 0.7; text-align: center; }
    </style>
`
