package cmd

import "github.com/charmbracelet/lipgloss"

// Terminal styles for command output.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Faint(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
)

// statusStyle maps a scaling event status to a render style.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case "completed":
		return okStyle
	case "failed":
		return errStyle
	case "pending", "in_progress":
		return warnStyle
	default:
		return mutedStyle
	}
}
