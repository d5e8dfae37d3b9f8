package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"assistui/config"
)

// Title, blank separator, textarea (3 lines), hint and status bar.
const chromeHeight = 7

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		a.viewport.Width = a.width
		a.viewport.Height = max(a.height-chromeHeight, 1)
		a.textarea.SetWidth(a.width)

		a.ready = true
		a.updateViewportContent(true)

		// Renderings depend on width; stale ones are redone
		return a, a.renderPendingMarkdown()

	case spinner.TickMsg:
		// Let the tick chain die once nothing is pending
		if !a.busy() {
			return a, nil
		}
		a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
		if a.conv.Loading() {
			a.updateViewportContent(true)
		}
		return a, cmd

	case transcriptChangedMsg:
		a.updateViewportContent(true)
		return a, a.listenForChanges()

	case exchangeDoneMsg:
		a.inFlight = false
		config.DebugLog.Debug().
			Str("exchange_id", msg.Outcome.ExchangeID).
			Str("state", msg.Outcome.State.String()).
			Msg("exchange done")

		a.updateViewportContent(true)
		return a, a.renderPendingMarkdown()

	case markdownRenderedMsg:
		messages := a.conv.Messages()
		if msg.Index < 0 || msg.Index >= len(messages) || messages[msg.Index].Content != msg.Source || msg.Width != a.width {
			return a, nil
		}
		a.rendered[msg.Index] = renderedMessage{source: msg.Source, width: msg.Width, text: msg.Rendered}
		a.updateViewportContent(true)
		return a, nil

	case healthMsg:
		a.health = &msg
		if msg.Err != nil {
			config.DebugLog.Warn().Err(msg.Err).Msg("backend health check failed")
		}
		return a, nil

	case clearNoticeMsg:
		if msg.id == a.noticeID {
			a.notice = ""
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	a.textarea, cmd = a.textarea.Update(msg)
	return a, cmd
}

// busy reports whether an exchange is pending or running. New messages are
// refused while busy.
func (a AppView) busy() bool {
	return a.inFlight || a.conv.Loading()
}
