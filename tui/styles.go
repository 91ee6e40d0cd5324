package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	colorSelected = lipgloss.Color("39")  // blue
	colorRunning  = lipgloss.Color("76")  // green
	colorError    = lipgloss.Color("196") // bright red
	colorMuted    = lipgloss.Color("242") // gray
	colorWhite    = lipgloss.Color("15")
)

// Styles for the launcher TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("236")).
				Foreground(colorWhite).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	queueNumberStyle = lipgloss.NewStyle().
				Foreground(colorSelected).
				Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	runningStyle = lipgloss.NewStyle().
			Foreground(colorRunning).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)
)
