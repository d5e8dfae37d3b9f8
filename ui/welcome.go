package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"assistui/backend"
	"assistui/config"
)

type wizardStep int

const (
	stepWelcome wizardStep = iota
	stepBackendURL
	stepMode
	stepComplete
)

// WelcomeModel is the first-run wizard. It writes settings.toml and quits.
type WelcomeModel struct {
	step           wizardStep
	selectedButton int

	settings *config.Settings
	urlInput textinput.Model

	width  int
	height int

	err     string
	loading bool
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	featureStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	buttonStyle = lipgloss.NewStyle().
			Width(24).
			Align(lipgloss.Center).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8"))

	selectedButtonStyle = buttonStyle.
				BorderForeground(successColor).
				Foreground(successColor).
				Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(dangerColor).
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 1)
)

func NewWelcomeModel() WelcomeModel {
	urlInput := textinput.New()
	urlInput.Placeholder = config.DefaultAPIURL
	urlInput.Width = 50
	urlInput.CharLimit = 200

	return WelcomeModel{
		step:     stepWelcome,
		settings: config.DefaultSettings(),
		urlInput: urlInput,
	}
}

func (m WelcomeModel) Init() tea.Cmd {
	return nil
}

type urlValidatedMsg struct {
	url    string
	status *backend.HealthStatus
	err    error
}

func validateBackendURL(url string) tea.Cmd {
	return func() tea.Msg {
		client, err := backend.NewClient(url)
		if err != nil {
			return urlValidatedMsg{url: url, err: err}
		}
		status, err := client.Ping(context.Background())
		return urlValidatedMsg{url: client.BaseURL(), status: status, err: err}
	}
}

func (m WelcomeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.step {
		case stepWelcome:
			return m.updateWelcomeScreen(msg)
		case stepBackendURL:
			return m.updateBackendURLScreen(msg)
		case stepMode:
			return m.updateModeScreen(msg)
		}

	case urlValidatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = fmt.Sprintf("Failed to connect: %v", msg.err)
			return m, nil
		}
		m.settings.APIURL = msg.url
		m.err = ""
		m.step = stepMode
		m.selectedButton = 0
		return m, nil
	}

	return m, nil
}

func (m WelcomeModel) updateWelcomeScreen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "up", "k":
		m.selectedButton = 0
	case "down", "j":
		m.selectedButton = 1

	case "enter":
		if m.selectedButton == 0 {
			return m.finish()
		}
		m.step = stepBackendURL
		m.urlInput.SetValue(m.settings.APIURL)
		m.urlInput.Focus()
		return m, textinput.Blink
	}

	return m, nil
}

func (m WelcomeModel) updateBackendURLScreen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "esc":
		m.step = stepWelcome
		m.err = ""
		return m, nil

	case "enter":
		url := strings.TrimSpace(m.urlInput.Value())
		if url == "" {
			m.err = "URL cannot be empty"
			return m, nil
		}
		m.loading = true
		m.err = ""
		return m, validateBackendURL(url)

	case "alt+u":
		m.urlInput.SetValue("")
		return m, nil

	case "alt+s":
		// Skip the connection check, for backends that are not up yet
		url := strings.TrimSpace(m.urlInput.Value())
		if _, err := backend.NewClient(url); err != nil || url == "" {
			m.err = "Enter a valid http(s) URL first"
			return m, nil
		}
		m.settings.APIURL = url
		m.err = ""
		m.step = stepMode
		return m, nil
	}

	m.urlInput, cmd = m.urlInput.Update(msg)
	return m, cmd
}

func (m WelcomeModel) updateModeScreen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "esc":
		m.step = stepBackendURL
		m.err = ""
		return m, nil

	case "up", "k":
		m.selectedButton = 0
	case "down", "j":
		m.selectedButton = 1

	case "enter":
		m.settings.Streaming = m.selectedButton == 1
		return m.finish()
	}

	return m, nil
}

func (m WelcomeModel) finish() (tea.Model, tea.Cmd) {
	if err := config.SaveSettings(m.settings); err != nil {
		m.err = fmt.Sprintf("Failed to save settings: %v", err)
		return m, nil
	}
	m.step = stepComplete
	return m, tea.Quit
}

func (m WelcomeModel) View() string {
	switch m.step {
	case stepWelcome:
		return m.viewWelcomeScreen()
	case stepBackendURL:
		return m.viewBackendURLScreen()
	case stepMode:
		return m.viewModeScreen()
	}
	return ""
}

func buttons(selected int, labels ...string) string {
	rendered := make([]string, len(labels))
	for i, label := range labels {
		if i == selected {
			rendered[i] = selectedButtonStyle.Render(label)
		} else {
			rendered[i] = buttonStyle.Render(label)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}

func (m WelcomeModel) viewWelcomeScreen() string {
	intro := lipgloss.JoinVertical(lipgloss.Center,
		featureStyle.Render("A terminal chat client for the product assistant backend."),
		"",
		"",
		"It looks like this is your first time here.",
		fmt.Sprintf("The defaults expect a backend at %s.", config.DefaultAPIURL),
	)
	return m.page(appTitle, intro,
		buttons(m.selectedButton, "Use Defaults", "Custom Settings"),
		"Press ↑/↓ or j/k to switch • Enter to select • q to exit")
}

func (m WelcomeModel) viewBackendURLScreen() string {
	hint := "Enter Continue • Alt+S Skip check • Alt+U Clear • Esc Back"
	if m.loading {
		hint = "⏳ Checking " + backend.HealthPath + "..."
	}
	return m.page("Backend Configuration",
		featureStyle.Render("Enter the base URL of the assistant backend:"),
		inputStyle.Render(m.urlInput.View()),
		hint)
}

func (m WelcomeModel) viewModeScreen() string {
	return m.page("Reply Mode",
		featureStyle.Render("How should replies arrive? You can switch at any time."),
		buttons(m.selectedButton, "All at once", "Streaming"),
		"Enter Finish • Esc Back • q Exit")
}

// page lays out one wizard screen centred in the terminal.
func (m WelcomeModel) page(title, intro, body, hint string) string {
	blocks := []string{
		titleStyle.Render(title),
		"",
		intro,
		"",
		body,
		"",
		featureStyle.Render(hint),
	}
	if m.err != "" {
		blocks = append(blocks, "", errorStyle.Render(m.err))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, blocks...)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m WelcomeModel) IsComplete() bool {
	return m.step == stepComplete
}

// Settings returns what the wizard saved.
func (m WelcomeModel) Settings() config.Settings {
	return *m.settings
}
