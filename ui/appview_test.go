package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistui/backend/testutil"
	"assistui/config"
	"assistui/exchange"
	appmodel "assistui/model"
)

type sentMessage struct {
	text string
	mode appmodel.Mode
}

type recordingSender struct {
	client *exchange.Client
	sent   []sentMessage
}

func (s *recordingSender) Send(ctx context.Context, text string, mode appmodel.Mode) exchange.Outcome {
	s.sent = append(s.sent, sentMessage{text, mode})
	return s.client.Send(ctx, text, mode)
}

func newTestView(t *testing.T) (AppView, *appmodel.Conversation, *testutil.MockBackend, *recordingSender) {
	t.Helper()
	conv := appmodel.NewConversation("Hi! What are you shopping for?")
	mock := testutil.NewMockBackend()
	sender := &recordingSender{client: exchange.NewClient(mock, conv)}
	cfg := &config.Config{KeyBindings: config.DefaultKeybindings()}

	a := NewAppView(cfg, conv, sender, nil)
	a = update(t, a, tea.WindowSizeMsg{Width: 100, Height: 30})
	return a, conv, mock, sender
}

func update(t *testing.T, a AppView, msg tea.Msg) AppView {
	t.Helper()
	next, _ := a.Update(msg)
	view, ok := next.(AppView)
	require.True(t, ok)
	return view
}

func updateCmd(t *testing.T, a AppView, msg tea.Msg) (AppView, tea.Cmd) {
	t.Helper()
	next, cmd := a.Update(msg)
	view, ok := next.(AppView)
	require.True(t, ok)
	return view, cmd
}

// runCmd executes cmd and any batch it expands to. Only use it on commands
// known not to block.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func typeText(t *testing.T, a AppView, text string) AppView {
	t.Helper()
	return update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

var (
	enterKey  = tea.KeyMsg{Type: tea.KeyEnter}
	toggleKey = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s"), Alt: true}
	helpKey   = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h"), Alt: true}
)

func TestViewBeforeResize(t *testing.T) {
	conv := appmodel.NewConversation("hello")
	a := NewAppView(&config.Config{}, conv, nil, nil)

	assert.Equal(t, "Loading...", a.View())
}

func TestInitialViewShowsGreetingAndMode(t *testing.T) {
	a, _, _, _ := newTestView(t)

	view := a.View()
	assert.Contains(t, view, "Hi! What are you shopping for?")
	assert.Contains(t, view, appTitle)
	assert.Contains(t, view, "Streaming: ")
	assert.Contains(t, view, "OFF")
	assert.Equal(t, appmodel.ModeAtomic, a.Mode())
}

func TestStreamingSettingSelectsInitialMode(t *testing.T) {
	conv := appmodel.NewConversation("hello")
	a := NewAppView(&config.Config{Streaming: true}, conv, nil, nil)

	assert.Equal(t, appmodel.ModeIncremental, a.Mode())
}

func TestSubmitRunsExchange(t *testing.T) {
	a, conv, mock, sender := newTestView(t)
	mock.ChatFunc = func(context.Context, []appmodel.Message) (string, error) {
		return "Here are three laptops", nil
	}

	a = typeText(t, a, "laptops")
	a, cmd := updateCmd(t, a, enterKey)

	require.NotNil(t, cmd)
	assert.True(t, a.inFlight)
	assert.Empty(t, a.textarea.Value())

	for _, msg := range runCmd(cmd) {
		a = update(t, a, msg)
	}

	assert.False(t, a.inFlight)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, sentMessage{"laptops", appmodel.ModeAtomic}, sender.sent[0])
	assert.Equal(t, 3, conv.Len())

	view := a.View()
	assert.Contains(t, view, "laptops")
	assert.Contains(t, view, "Here are three laptops")
}

func TestSubmitIgnoresBlankInput(t *testing.T) {
	a, _, mock, _ := newTestView(t)

	a = typeText(t, a, "   ")
	a, cmd := updateCmd(t, a, enterKey)

	assert.Nil(t, cmd)
	assert.False(t, a.inFlight)
	assert.Equal(t, 0, mock.Calls())
}

func TestSubmitRefusedWhileBusy(t *testing.T) {
	a, _, _, sender := newTestView(t)

	a = typeText(t, a, "first")
	a, cmd := updateCmd(t, a, enterKey)
	require.NotNil(t, cmd)

	a = typeText(t, a, "second")
	_, cmd = updateCmd(t, a, enterKey)

	assert.Nil(t, cmd)
	assert.Empty(t, sender.sent)
}

func TestInputDisabledWhileLoading(t *testing.T) {
	a, conv, _, _ := newTestView(t)
	conv.SetLoading(true)

	a = typeText(t, a, "x")

	assert.Empty(t, a.textarea.Value())
}

func TestToggleModeAppliesToNextSubmit(t *testing.T) {
	a, conv, _, sender := newTestView(t)

	a = update(t, a, toggleKey)
	assert.Equal(t, appmodel.ModeIncremental, a.Mode())
	assert.Contains(t, a.View(), "ON")

	a = typeText(t, a, "headphones")
	a, cmd := updateCmd(t, a, enterKey)

	// Toggling after submit does not change the exchange already queued.
	a = update(t, a, toggleKey)
	for _, msg := range runCmd(cmd) {
		a = update(t, a, msg)
	}

	require.Len(t, sender.sent, 1)
	assert.Equal(t, appmodel.ModeIncremental, sender.sent[0].mode)
	last, _ := conv.Last()
	assert.Equal(t, "Mock response", last.Content)
	assert.Equal(t, appmodel.ModeAtomic, a.Mode())
}

func TestObserverCoalescesChanges(t *testing.T) {
	a, conv, _, _ := newTestView(t)

	for i := 0; i < 5; i++ {
		conv.Append(appmodel.Message{Role: appmodel.RoleUser, Content: "m"})
	}
	assert.Len(t, a.changes, 1)

	msg := a.listenForChanges()()
	assert.IsType(t, transcriptChangedMsg{}, msg)
	assert.Empty(t, a.changes)

	a = update(t, a, msg)
	assert.Contains(t, a.View(), "m")
}

func TestStreamingReplyShowsCursor(t *testing.T) {
	a, conv, _, _ := newTestView(t)
	a.inFlight = true

	conv.Append(appmodel.Message{Role: appmodel.RoleUser, Content: "q"})
	conv.AppendEmptyAssistantPlaceholder()
	require.NoError(t, conv.AppendToLast("Hel"))
	a = update(t, a, transcriptChangedMsg{})

	assert.Contains(t, a.View(), "Hel"+streamCursor)
}

func TestTypingIndicatorWhileLoading(t *testing.T) {
	a, conv, _, _ := newTestView(t)

	conv.SetLoading(true)
	a = update(t, a, transcriptChangedMsg{})
	assert.Contains(t, a.View(), typingCaption)

	conv.SetLoading(false)
	a = update(t, a, transcriptChangedMsg{})
	assert.NotContains(t, a.View(), typingCaption)
}

func TestMarkdownRenderedMsg(t *testing.T) {
	a, conv, _, _ := newTestView(t)
	greeting := conv.Messages()[0].Content

	a = update(t, a, markdownRenderedMsg{Index: 0, Source: "something else", Width: a.width, Rendered: "STALE"})
	assert.NotContains(t, a.View(), "STALE")

	a = update(t, a, markdownRenderedMsg{Index: 0, Source: greeting, Width: a.width + 1, Rendered: "WRONG WIDTH"})
	assert.NotContains(t, a.View(), "WRONG WIDTH")

	a = update(t, a, markdownRenderedMsg{Index: 9, Source: greeting, Width: a.width, Rendered: "OUT OF RANGE"})
	assert.NotContains(t, a.View(), "OUT OF RANGE")

	a = update(t, a, markdownRenderedMsg{Index: 0, Source: greeting, Width: a.width, Rendered: "FRESH"})
	assert.Contains(t, a.View(), "FRESH")
}

func TestResizeRendersMarkdown(t *testing.T) {
	a, _, _, _ := newTestView(t)

	_, cmd := updateCmd(t, a, tea.WindowSizeMsg{Width: 80, Height: 24})
	msgs := runCmd(cmd)

	require.Len(t, msgs, 1)
	rendered, ok := msgs[0].(markdownRenderedMsg)
	require.True(t, ok)
	assert.Equal(t, 0, rendered.Index)
	assert.Equal(t, 80, rendered.Width)
	assert.Contains(t, rendered.Rendered, "shopping")
}

func TestHelpToggle(t *testing.T) {
	a, _, _, _ := newTestView(t)

	a = update(t, a, helpKey)
	assert.Contains(t, a.View(), "Keyboard Shortcuts")
	assert.Contains(t, a.View(), "Toggle streaming replies")

	a = update(t, a, tea.KeyMsg{Type: tea.KeyEsc})
	assert.NotContains(t, a.View(), "Keyboard Shortcuts")
}

func TestQuit(t *testing.T) {
	a, _, _, _ := newTestView(t)

	_, cmd := updateCmd(t, a, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestHealthShownInStatusBar(t *testing.T) {
	a, _, _, _ := newTestView(t)

	a = update(t, a, healthMsg{Err: assert.AnError})
	assert.Contains(t, a.View(), "offline")

	a = update(t, a, healthMsg{})
	assert.Contains(t, a.View(), "online")
}

func TestNoticeClears(t *testing.T) {
	a, _, _, _ := newTestView(t)

	cmd := a.setNotice("Copied")
	require.NotNil(t, cmd)
	assert.Contains(t, a.View(), "Copied")

	a = update(t, a, clearNoticeMsg{id: a.noticeID - 1})
	assert.Contains(t, a.View(), "Copied")

	a = update(t, a, clearNoticeMsg{id: a.noticeID})
	assert.NotContains(t, a.View(), "Copied")
}

func TestCustomSendBinding(t *testing.T) {
	conv := appmodel.NewConversation("hello")
	kb := config.DefaultKeybindings()
	kb.Actions = map[string]string{"send": "ctrl+s"}
	sender := &recordingSender{client: exchange.NewClient(testutil.NewMockBackend(), conv)}

	a := NewAppView(&config.Config{KeyBindings: kb}, conv, sender, nil)
	a = update(t, a, tea.WindowSizeMsg{Width: 80, Height: 24})
	a = typeText(t, a, "hi")

	a = update(t, a, enterKey)
	assert.False(t, a.inFlight)

	a, cmd := updateCmd(t, a, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.NotNil(t, cmd)
	assert.True(t, a.inFlight)
	assert.Empty(t, sender.sent, "the exchange runs when the command does")
}

func TestTranscriptText(t *testing.T) {
	text := transcriptText(testutil.History("assistant", "Hello", "user", "laptops?"))

	assert.Contains(t, text, "Assistant:\nHello\n\n")
	assert.Contains(t, text, "You:\nlaptops?\n\n")
	assert.Less(t, strings.Index(text, "Hello"), strings.Index(text, "laptops?"))
}
