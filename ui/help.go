package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"assistui/config"
	appmodel "assistui/model"
)

type shortcut struct {
	action string
	label  string
}

var (
	chatShortcuts = []shortcut{
		{"send", "Send message"},
		{"newline", "New line"},
		{"clear_input", "Clear input"},
		{"toggle_streaming", "Toggle streaming replies"},
		{"yank_last_response", "Copy last response"},
		{"yank_conversation", "Copy conversation"},
		{"help", "Toggle this help"},
		{"quit", "Quit"},
	}

	navigationShortcuts = []shortcut{
		{"scroll_down", "Scroll down 1 line"},
		{"scroll_up", "Scroll up 1 line"},
		{"half_page_down", "Half page down"},
		{"half_page_up", "Half page up"},
		{"page_down", "Full page down"},
		{"page_up", "Full page up"},
		{"scroll_to_top", "Jump to top"},
		{"scroll_to_bottom", "Jump to bottom"},
	}

	helpHeadingStyle = lipgloss.NewStyle().Foreground(accentColor)
	helpColumnStyle  = lipgloss.NewStyle().Width(46).PaddingLeft(4)
	helpBoxStyle     = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(dimColor).
				Padding(1, 2)
)

func helpSection(kb *config.KeyBindingsConfig, heading string, items []shortcut) string {
	lines := []string{helpHeadingStyle.Render("## " + heading)}
	for _, s := range items {
		lines = append(lines, fmt.Sprintf("• %-13s %s", kb.DisplayActionKey(s.action), s.label))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (a AppView) renderHelpModal(width, height int) string {
	modeLine := "Replies arrive all at once"
	if a.mode == appmodel.ModeIncremental {
		modeLine = "Replies stream in word by word"
	}
	mode := lipgloss.JoinVertical(lipgloss.Left,
		helpHeadingStyle.Render("## Mode"),
		"• "+modeLine,
		"• The toggle applies to the next message",
	)

	columns := lipgloss.JoinHorizontal(lipgloss.Top,
		helpColumnStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			helpSection(a.kb, "Chat", chatShortcuts), "", mode)),
		helpColumnStyle.Render(helpSection(a.kb, "Navigation", navigationShortcuts)),
	)

	content := lipgloss.JoinVertical(lipgloss.Center,
		TitleStyle.Render(appTitle+" - Keyboard Shortcuts"),
		"",
		columns,
		"",
		DimStyle.Render(fmt.Sprintf("Press %s or Esc to close this help", a.kb.DisplayActionKey("help"))),
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, helpBoxStyle.Render(content))
}
