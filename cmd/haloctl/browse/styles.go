package browse

import "github.com/charmbracelet/lipgloss"

var (
	PrimaryColor = lipgloss.Color("#7D56F4")
	ErrorColor   = lipgloss.Color("#FF5F87")
	Gray         = lipgloss.Color("240")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(PrimaryColor).
			Padding(0, 1)

	StatusStyle = lipgloss.NewStyle().Foreground(Gray)

	ErrorStyle = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)

	AppStyle = lipgloss.NewStyle().Padding(1, 2)
)
