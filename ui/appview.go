package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"assistui/backend"
	"assistui/config"
	"assistui/exchange"
	appmodel "assistui/model"
)

const (
	appTitle    = "Electronics Product Assistant"
	appSubtitle = "Ask me about any electronics product"
	inputHint   = `Try: "Compare AirPods Pro vs Sony WH-1000XM5" or "Best laptop for video editing under $2000"`
)

// Sender runs one exchange. *exchange.Client implements it.
type Sender interface {
	Send(ctx context.Context, userText string, mode appmodel.Mode) exchange.Outcome
}

// Pinger checks backend health. *backend.Client implements it.
type Pinger interface {
	Ping(ctx context.Context) (*backend.HealthStatus, error)
}

type renderedMessage struct {
	source string
	width  int
	text   string
}

type AppView struct {
	conv   *appmodel.Conversation
	sender Sender
	pinger Pinger
	kb     *config.KeyBindingsConfig
	keys   keyMap

	// UI Components
	viewport       viewport.Model
	textarea       textarea.Model
	loadingSpinner spinner.Model

	// Window state
	width  int
	height int
	ready  bool

	// mode is read when a message is submitted; toggling it never affects
	// an exchange that is already running.
	mode appmodel.Mode

	// inFlight is set on submit, before the exchange goroutine has had a
	// chance to raise the loading flag, and cleared when Send returns.
	inFlight bool

	// changes receives a tick from the conversation observer.
	changes chan struct{}

	// Markdown cache keyed by message index
	rendered map[int]renderedMessage

	showHelp bool
	health   *healthMsg

	notice   string
	noticeID int
}

// NewAppView wires the view to a conversation. The sender must mutate the
// same conversation; the view only reads it.
func NewAppView(cfg *config.Config, conv *appmodel.Conversation, sender Sender, pinger Pinger) AppView {
	kb := cfg.KeyBindings
	if kb == nil {
		kb = config.DefaultKeybindings()
	}
	keys := newKeyMap(kb)

	ta := textarea.New()
	ta.Placeholder = "Ask about products... (e.g., 'wireless headphones under $200')"
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Enter is handled by the view; only the newline binding reaches the textarea
	ta.KeyMap.InsertNewline = keys.newline

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))

	changes := make(chan struct{}, 1)
	conv.Subscribe(func(appmodel.Change) {
		select {
		case changes <- struct{}{}:
		default:
			// a redraw is already pending
		}
	})

	return AppView{
		conv:           conv,
		sender:         sender,
		pinger:         pinger,
		kb:             kb,
		keys:           keys,
		viewport:       viewport.New(0, 0),
		textarea:       ta,
		loadingSpinner: sp,
		mode:           appmodel.ModeFromStreaming(cfg.Streaming),
		changes:        changes,
		rendered:       make(map[int]renderedMessage),
	}
}

func (a AppView) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textarea.Blink,
		a.listenForChanges(),
	}
	if a.pinger != nil {
		cmds = append(cmds, a.checkHealth())
	}
	return tea.Batch(cmds...)
}

// Mode is the mode the next submitted message will use.
func (a AppView) Mode() appmodel.Mode {
	return a.mode
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.showHelp {
		return a.renderHelpModal(a.width, a.height)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		a.renderTitle(),
		"",
		a.viewport.View(),
		a.textarea.View(),
		DimStyle.Render(truncate(inputHint, a.width)),
		a.renderStatusBar(),
	)
}

func (a AppView) renderTitle() string {
	title := AssistantStyle.Bold(true).Render(appTitle) + DimStyle.Render(" - "+appSubtitle)

	badge := "Streaming: " + StreamingOffStyle.Render("OFF")
	if a.mode == appmodel.ModeIncremental {
		badge = "Streaming: " + StreamingOnStyle.Render("ON")
	}

	gap := a.width - lipgloss.Width(title) - lipgloss.Width(badge)
	if gap < 1 {
		return clip(title, a.width)
	}
	return title + strings.Repeat(" ", gap) + badge
}

func (a AppView) renderStatusBar() string {
	if a.notice != "" {
		return StatusStyle.Render(truncate(a.notice, a.width))
	}

	kb := a.kb
	descStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)
	bar := FormatFooter(descStyle,
		kb.DisplayActionKey("send"), "Send",
		kb.DisplayActionKey("newline"), "New Line",
		kb.DisplayActionKey("toggle_streaming"), "Streaming",
		kb.DisplayActionKey("yank_last_response"), "Copy",
		kb.DisplayActionKey("help"), "Help",
		kb.DisplayActionKey("quit"), "Quit",
	)

	if a.health != nil {
		status := UserStyle.Render("● online")
		if a.health.Err != nil {
			status = OfflineStyle.Render("○ offline")
		}
		bar = status + "  " + bar
	}

	return clip(StatusStyle.Render(bar), a.width)
}

// truncate cuts plain text to width terminal cells.
func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// clip cuts styled text to width cells without breaking escape sequences.
func clip(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

type keyMap struct {
	send            key.Binding
	newline         key.Binding
	clearInput      key.Binding
	toggleStreaming key.Binding
	help            key.Binding
	quit            key.Binding
	yankLast        key.Binding
	yankAll         key.Binding
	scrollDown      key.Binding
	scrollUp        key.Binding
	halfPageDown    key.Binding
	halfPageUp      key.Binding
	pageDown        key.Binding
	pageUp          key.Binding
	scrollToTop     key.Binding
	scrollToBottom  key.Binding
}

func newKeyMap(kb *config.KeyBindingsConfig) keyMap {
	bind := func(actions ...string) key.Binding {
		var keys []string
		for _, action := range actions {
			if k := kb.GetActionKey(action); k != "" {
				keys = append(keys, k)
			}
		}
		return key.NewBinding(key.WithKeys(keys...))
	}

	return keyMap{
		send:            bind("send"),
		newline:         bind("newline"),
		clearInput:      bind("clear_input"),
		toggleStreaming: bind("toggle_streaming"),
		help:            bind("help"),
		quit:            key.NewBinding(key.WithKeys(append([]string{"ctrl+c"}, kb.GetActionKey("quit"))...)),
		yankLast:        bind("yank_last_response"),
		yankAll:         bind("yank_conversation"),
		scrollDown:      bind("scroll_down", "scroll_down_arrow"),
		scrollUp:        bind("scroll_up", "scroll_up_arrow"),
		halfPageDown:    bind("half_page_down"),
		halfPageUp:      bind("half_page_up"),
		pageDown:        bind("page_down"),
		pageUp:          bind("page_up"),
		scrollToTop:     bind("scroll_to_top"),
		scrollToBottom:  bind("scroll_to_bottom"),
	}
}
