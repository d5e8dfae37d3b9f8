package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimColor     = lipgloss.Color("7")
	accentColor  = lipgloss.Color("12")
	successColor = lipgloss.Color("10")
	warningColor = lipgloss.Color("11")
	dangerColor  = lipgloss.Color("9")

	// Transcript roles. No background, so the terminal theme shows through.
	UserStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	AssistantStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	TitleStyle = lipgloss.NewStyle().
			Bold(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	// Streaming mode badge
	StreamingOnStyle = lipgloss.NewStyle().
				Foreground(successColor).
				Bold(true)

	StreamingOffStyle = lipgloss.NewStyle().
				Foreground(warningColor)

	OfflineStyle = lipgloss.NewStyle().
			Foreground(dangerColor)
)

// FormatFooter formats alternating keys and descriptions.
// Usage: FormatFooter("Enter", "Send", "Alt+Q", "Quit")
// Result: "Enter Send  Alt+Q Quit" with the descriptions bold.
func FormatFooter(descStyle lipgloss.Style, parts ...string) string {
	var result []string
	for i := 0; i+1 < len(parts); i += 2 {
		result = append(result, parts[i]+" "+descStyle.Render(parts[i+1]))
	}
	return strings.Join(result, "  ")
}
