package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha subset.
const (
	colorPeach    lipgloss.Color = "#fab387"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorRed      lipgloss.Color = "#f38ba8"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"
	colorText     lipgloss.Color = "#cdd6f4"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface1 lipgloss.Color = "#45475a"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorLavender)
	valueStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	overshootStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPeach)
	trackStyle     = lipgloss.NewStyle().Foreground(colorSurface1)
	markerStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	onStyle        = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	offStyle       = lipgloss.NewStyle().Foreground(colorOverlay0)
	errorStyle     = lipgloss.NewStyle().Foreground(colorRed)
	helpStyle      = lipgloss.NewStyle().Foreground(colorOverlay0)
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSurface1).Padding(0, 1)
)
