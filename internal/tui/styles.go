package tui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3F51B5")).MarginBottom(1)
	frameStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	accentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
	labelStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#CCCCCC"))
	problemStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#1A237E")).Background(lipgloss.Color("#E0E7FF")).Bold(true)
	legStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#DDDDDD"))
	detailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	logPanelStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true, false, false, false).BorderForeground(lipgloss.Color("#444444"))
)
