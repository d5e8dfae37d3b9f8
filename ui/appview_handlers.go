package ui

import (
	"context"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"assistui/config"
	appmodel "assistui/model"
)

const noticeDuration = 2 * time.Second

func (a AppView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.showHelp {
		switch {
		case key.Matches(msg, a.keys.quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.help), msg.Type == tea.KeyEsc:
			a.showHelp = false
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.help):
		a.showHelp = true
		return a, nil

	case key.Matches(msg, a.keys.toggleStreaming):
		a.mode = a.mode.Toggle()
		config.DebugLog.Debug().Str("mode", a.mode.String()).Msg("mode toggled")
		return a, nil

	case key.Matches(msg, a.keys.yankLast):
		cmd := a.yankLastResponse()
		return a, cmd

	case key.Matches(msg, a.keys.yankAll):
		cmd := a.yankConversation()
		return a, cmd

	case key.Matches(msg, a.keys.scrollDown):
		a.viewport.LineDown(1)
		return a, nil
	case key.Matches(msg, a.keys.scrollUp):
		a.viewport.LineUp(1)
		return a, nil
	case key.Matches(msg, a.keys.halfPageDown):
		a.viewport.HalfViewDown()
		return a, nil
	case key.Matches(msg, a.keys.halfPageUp):
		a.viewport.HalfViewUp()
		return a, nil
	case key.Matches(msg, a.keys.pageDown):
		a.viewport.ViewDown()
		return a, nil
	case key.Matches(msg, a.keys.pageUp):
		a.viewport.ViewUp()
		return a, nil
	case key.Matches(msg, a.keys.scrollToTop):
		a.viewport.GotoTop()
		return a, nil
	case key.Matches(msg, a.keys.scrollToBottom):
		a.viewport.GotoBottom()
		return a, nil

	case key.Matches(msg, a.keys.send):
		return a.submit()
	}

	// Input is disabled while waiting for the backend
	if a.conv.Loading() {
		return a, nil
	}

	if key.Matches(msg, a.keys.clearInput) {
		a.textarea.Reset()
		return a, nil
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	return a, cmd
}

// submit sends the textarea content with the current mode. Blank input and
// input entered while an exchange is pending are ignored.
func (a AppView) submit() (tea.Model, tea.Cmd) {
	if a.busy() {
		return a, nil
	}

	text := a.textarea.Value()
	if strings.TrimSpace(text) == "" {
		return a, nil
	}

	a.textarea.Reset()
	a.inFlight = true

	return a, tea.Batch(
		a.sendMessage(text, a.mode),
		a.loadingSpinner.Tick,
	)
}

// sendMessage runs the exchange off the UI goroutine. Transcript changes
// arrive through the conversation observer while it runs.
func (a AppView) sendMessage(text string, mode appmodel.Mode) tea.Cmd {
	sender := a.sender
	return func() tea.Msg {
		return exchangeDoneMsg{Outcome: sender.Send(context.Background(), text, mode)}
	}
}

func (a AppView) listenForChanges() tea.Cmd {
	changes := a.changes
	return func() tea.Msg {
		<-changes
		return transcriptChangedMsg{}
	}
}

func (a AppView) checkHealth() tea.Cmd {
	pinger := a.pinger
	return func() tea.Msg {
		status, err := pinger.Ping(context.Background())
		return healthMsg{Status: status, Err: err}
	}
}

func (a *AppView) yankLastResponse() tea.Cmd {
	msg, ok := a.conv.LastAssistant()
	if !ok {
		return a.setNotice("Nothing to copy")
	}
	if err := clipboard.WriteAll(msg.Content); err != nil {
		return a.setNotice("Copy failed: " + err.Error())
	}
	return a.setNotice("Copied last response")
}

func (a *AppView) yankConversation() tea.Cmd {
	if err := clipboard.WriteAll(transcriptText(a.conv.Messages())); err != nil {
		return a.setNotice("Copy failed: " + err.Error())
	}
	return a.setNotice("Copied conversation")
}

func (a *AppView) setNotice(text string) tea.Cmd {
	a.noticeID++
	a.notice = text
	id := a.noticeID
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return clearNoticeMsg{id: id}
	})
}
