package viz

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00cccc"))
	subtle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	selected   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff"))
	unselected = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	valueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff88ff"))
	keyStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00aaaa"))
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00"))

	panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)
)

// Legend swatches use the same ANSI colors as the plotted series.
var (
	legendS = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	legendI = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	legendR = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

func hint(key, action string) string {
	return keyStyle.Render(key) + subtle.Render(" "+action+"  ")
}
