package tui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor = lipgloss.Color("#EC4899")
	userColor   = lipgloss.Color("#10B981")
	mutedColor  = lipgloss.Color("#9CA3AF")
	errorColor  = lipgloss.Color("#EF4444")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			Padding(0, 1)

	stateStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)

	partnerNameStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(accentColor)

	userNameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(userColor)

	narrationStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(mutedColor)

	typingStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(mutedColor).
			Padding(0, 1)

	sidebarTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Underline(true)

	sidebarPreviewStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	promptStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(1, 2)
)
