package dashboard

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	colorRed    = lipgloss.Color("#FF5555")
	colorYellow = lipgloss.Color("#F1FA8C")
	colorGreen  = lipgloss.Color("#50FA7B")
	colorCyan   = lipgloss.Color("#8BE9FD")
	colorWhite  = lipgloss.Color("#F8F8F2")
	colorGray   = lipgloss.Color("#6272A4")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	labelStyle  = lipgloss.NewStyle().Foreground(colorGray)
	valueStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	headerStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(colorGray)
	alertStyle  = lipgloss.NewStyle().Foreground(colorRed).Bold(true)

	badgeHigh   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	badgeMedium = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	badgeLow    = lipgloss.NewStyle().Foreground(colorGreen)
)

// severityClass распределяет уровень по корзинам бейджей. Сопоставление
// намеренно двухвариантное: точное "High", точное "Medium", а все
// остальное (включая другой регистр) попадает в корзину low -
// безопасное значение по умолчанию, менять нельзя.
func severityClass(severity string) string {
	switch severity {
	case "High":
		return "high"
	case "Medium":
		return "medium"
	default:
		return "low"
	}
}

func severityStyle(severity string) lipgloss.Style {
	switch severityClass(severity) {
	case "high":
		return badgeHigh
	case "medium":
		return badgeMedium
	default:
		return badgeLow
	}
}
