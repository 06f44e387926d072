package theme

import "github.com/charmbracelet/lipgloss"

// Catppuccin theme - Soothing pastel theme (Mocha)
// https://catppuccin.com/
var Catppuccin = Theme{
	Name: "catppuccin",

	Background: lipgloss.Color("#1E1E2E"),
	Foreground: lipgloss.Color("#CDD6F4"),
	Subtle:     lipgloss.Color("#6C7086"),
	Highlight:  lipgloss.Color("#313244"),
	Border:     lipgloss.Color("#45475A"),

	Primary:   lipgloss.Color("#89B4FA"),
	Secondary: lipgloss.Color("#CBA6F7"),
	Success:   lipgloss.Color("#A6E3A1"),
	Warning:   lipgloss.Color("#F9E2AF"),
	Error:     lipgloss.Color("#F38BA8"),
	Info:      lipgloss.Color("#74C7EC"),

	// Inbox, Today, Upcoming, Anytime, Someday, Logbook, Trash
	Categories: [7]lipgloss.Color{
		"#89B4FA", "#F9E2AF", "#F38BA8", "#94E2D5", "#FAB387", "#A6E3A1", "#6C7086",
	},
}
