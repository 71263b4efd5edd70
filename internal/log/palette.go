package log

import "github.com/charmbracelet/lipgloss"

func severityStyles(r *lipgloss.Renderer) map[Level]lipgloss.Style {
	return map[Level]lipgloss.Style{
		LevelDebug: r.NewStyle().Foreground(lipgloss.Color("6")),
		LevelInfo:  r.NewStyle().Foreground(lipgloss.Color("2")),
		LevelWarn:  r.NewStyle().Foreground(lipgloss.Color("3")),
		LevelError: r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}
