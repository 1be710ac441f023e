package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorGreen  = lipgloss.AdaptiveColor{Light: "#00AF00", Dark: "#00D700"}
	ColorCyan   = lipgloss.AdaptiveColor{Light: "#00AFAF", Dark: "#00D7D7"}
	ColorWhite  = lipgloss.AdaptiveColor{Light: "#262626", Dark: "#FFFFFF"}
	ColorGray   = lipgloss.AdaptiveColor{Light: "#767676", Dark: "#808080"}
	ColorYellow = lipgloss.AdaptiveColor{Light: "#D7AF00", Dark: "#FFD700"}
	ColorRed    = lipgloss.Color("196")
)

var (
	StyleNormal    = lipgloss.NewStyle().Foreground(ColorWhite)
	StyleHighlight = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	StyleSelected  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleTag       = lipgloss.NewStyle().Foreground(ColorCyan)
	StyleHelp      = lipgloss.NewStyle().Foreground(ColorGray)
	StyleHeader    = lipgloss.NewStyle().Foreground(ColorWhite).Bold(true)
	StyleError     = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBorder    = lipgloss.NewStyle().
			Foreground(ColorGray).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray)
)

// renderFooter joins shortcut hints into a dim footer line.
func renderFooter(hints ...string) string {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	return lipgloss.NewStyle().Padding(0, 1).Render(dim.Render(strings.Join(hints, " • ")))
}

func frame(body string) string {
	inner := lipgloss.NewStyle().Padding(0, 2, 0, 1)
	return lipgloss.NewStyle().Padding(1, 2).Render(StyleBorder.Render(inner.Render(body)))
}
