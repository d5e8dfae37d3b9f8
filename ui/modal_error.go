package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	errorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dangerColor).
			Padding(1, 2)

	errorTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(dangerColor)
)

// ErrorModal is shown as its own program instead of the chat when startup
// fails. Any of Enter, Esc, q or Ctrl+C quits.
type ErrorModal struct {
	title   string
	message string
	width   int
	height  int
}

func NewErrorModal(title, message string) ErrorModal {
	return ErrorModal{title: title, message: message}
}

func (m ErrorModal) Init() tea.Cmd {
	return nil
}

func (m ErrorModal) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc", "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ErrorModal) View() string {
	if m.width < 20 || m.height < 10 {
		return m.title + "\n\n" + m.message + "\n"
	}

	boxWidth := min(60, m.width-10)
	body := lipgloss.JoinVertical(lipgloss.Center,
		errorTitleStyle.Render(m.title),
		"",
		lipgloss.NewStyle().Width(boxWidth-4).Align(lipgloss.Center).Render(m.message),
		"",
		DimStyle.Render("Press Enter to quit"),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, errorBoxStyle.Render(body))
}
