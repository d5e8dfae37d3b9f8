package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"assistui/config"
	appmodel "assistui/model"
)

const (
	streamCursor  = "▋"
	codeBlockBar  = "┃"
	typingCaption = "Thinking..."
)

var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
)

// updateViewportContent redraws the transcript from the conversation.
func (a *AppView) updateViewportContent(gotoBottom bool) {
	messages := a.conv.Messages()
	loading := a.conv.Loading()

	var content strings.Builder
	for i, msg := range messages {
		timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

		if msg.Role == appmodel.RoleUser {
			content.WriteString(formatUserMessage(timestamp, UserStyle.Render("You"), msg.Content))
			continue
		}

		body := a.assistantBody(i, msg, i == len(messages)-1)
		content.WriteString(fmt.Sprintf("%s %s\n%s\n\n", timestamp, AssistantStyle.Render("Assistant"), body))
	}

	if loading {
		timestamp := DimStyle.Render(time.Now().Format("[15:04]"))
		content.WriteString(fmt.Sprintf("%s %s\n%s %s\n\n",
			timestamp, AssistantStyle.Render("Assistant"), a.loadingSpinner.View(), DimStyle.Render(typingCaption)))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

// assistantBody returns the cached markdown rendering when it is current and
// the wrapped plain text otherwise. A reply that is still streaming gets a
// cursor.
func (a AppView) assistantBody(index int, msg appmodel.Message, last bool) string {
	if r, ok := a.rendered[index]; ok && r.source == msg.Content && r.width == a.width {
		return r.text
	}

	body := wrapText(msg.Content, a.width-4)
	if last && a.inFlight && !a.conv.Loading() {
		body += streamCursor
	}
	return body
}

// wrapText wraps plain text to width without the trailing padding lipgloss
// adds to short lines.
func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(lipgloss.NewStyle().Width(width).Render(s), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}

func formatUserMessage(timestamp, role, content string) string {
	bar := UserStyle.Render(codeBlockBar)

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s %s %s\n", bar, timestamp, role))
	for _, line := range strings.Split(content, "\n") {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}
	result.WriteString("\n")

	return result.String()
}

// renderPendingMarkdown starts a render for every finished assistant message
// whose cached rendering is missing or stale.
func (a AppView) renderPendingMarkdown() tea.Cmd {
	if a.width <= 4 {
		return nil
	}

	messages := a.conv.Messages()
	var cmds []tea.Cmd
	for i, msg := range messages {
		if msg.Role != appmodel.RoleAssistant || msg.Content == "" {
			continue
		}
		if a.inFlight && i == len(messages)-1 {
			continue
		}
		if r, ok := a.rendered[i]; ok && r.source == msg.Content && r.width == a.width {
			continue
		}
		cmds = append(cmds, renderMarkdownAsync(i, msg.Content, a.width))
	}
	return tea.Batch(cmds...)
}

func renderMarkdownAsync(index int, content string, width int) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		rendered := renderMarkdown(content, width)
		config.DebugLog.Debug().
			Int("message", index).
			Int("chars", len(content)).
			Dur("elapsed", time.Since(start)).
			Msg("markdown rendered")

		return markdownRenderedMsg{
			Index:    index,
			Source:   content,
			Width:    width,
			Rendered: rendered,
		}
	}
}

// renderMarkdown renders content for a terminal of the given width. Links are
// flattened to bare URLs and autolinking is off so the terminal can detect
// them itself.
func renderMarkdown(content string, width int) string {
	content = mdLinkRegex.ReplaceAllString(content, "$2")

	p := parser.NewWithExtensions(markdown.Extensions() &^ parser.Autolink)
	r := markdown.NewRenderer(width-4, 0)
	out := string(gomarkdown.Render(p.Parse([]byte(content)), r))

	out = inlineCodeRegex.ReplaceAllString(out, "\x1b[31m$1\x1b[0m")
	out = frameCodeBlocks(out, width)
	return strings.TrimRight(out, "\n")
}

// frameCodeBlocks replaces the bar go-term-markdown puts in front of code
// lines with a rule above and below the block.
func frameCodeBlocks(s string, width int) string {
	const darkGray, reset = "\x1b[90m", "\x1b[0m"

	ruleWidth := max(width-4, 8)
	label := "[code]"
	left := (ruleWidth - len(label)) / 2
	top := darkGray + strings.Repeat("━", left) + reset + label +
		darkGray + strings.Repeat("━", ruleWidth-len(label)-left) + reset
	bottom := darkGray + strings.Repeat("━", ruleWidth) + reset

	var result []string
	inBlock := false
	for _, line := range strings.Split(s, "\n") {
		idx := strings.Index(line, codeBlockBar)
		if idx < 0 {
			if inBlock {
				result = append(result, bottom)
				inBlock = false
			}
			result = append(result, line)
			continue
		}

		if !inBlock {
			result = append(result, top)
			inBlock = true
		}
		rest := line[idx+len(codeBlockBar):]
		result = append(result, strings.TrimPrefix(rest, " "))
	}
	if inBlock {
		result = append(result, bottom)
	}

	return strings.Join(result, "\n")
}

// transcriptText formats the conversation for the clipboard.
func transcriptText(messages []appmodel.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		role := "Assistant"
		if msg.Role == appmodel.RoleUser {
			role = "You"
		}
		b.WriteString(fmt.Sprintf("[%s] %s:\n%s\n\n", msg.Timestamp.Format("15:04"), role, msg.Content))
	}
	return b.String()
}
