// Package style provides consistent terminal styling for repolock output
// using Lipgloss.
package style

import "github.com/charmbracelet/lipgloss"

// Base styles shared by commands and the watch TUI.
var (
	Bold   = lipgloss.NewStyle().Bold(true)
	Dim    = lipgloss.NewStyle().Faint(true)
	Header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))

	// Lock-state colors: free is green, shared amber, exclusive red.
	Free      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	Shared    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	Exclusive = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	Warn      = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// ForMode returns the color style for a roster mode name.
func ForMode(mode string) lipgloss.Style {
	switch mode {
	case "shared":
		return Shared
	case "exclusive":
		return Exclusive
	default:
		return Free
	}
}
