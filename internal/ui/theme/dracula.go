package theme

import "github.com/charmbracelet/lipgloss"

// Dracula theme - Dark theme with vibrant colors
// https://draculatheme.com/
var Dracula = Theme{
	Name: "dracula",

	Background: lipgloss.Color("#282A36"),
	Foreground: lipgloss.Color("#F8F8F2"),
	Subtle:     lipgloss.Color("#6272A4"),
	Highlight:  lipgloss.Color("#44475A"),
	Border:     lipgloss.Color("#6272A4"),

	Primary:   lipgloss.Color("#BD93F9"),
	Secondary: lipgloss.Color("#8BE9FD"),
	Success:   lipgloss.Color("#50FA7B"),
	Warning:   lipgloss.Color("#F1FA8C"),
	Error:     lipgloss.Color("#FF5555"),
	Info:      lipgloss.Color("#8BE9FD"),

	// Inbox, Today, Upcoming, Anytime, Someday, Logbook, Trash
	Categories: [7]lipgloss.Color{
		"#8BE9FD", "#F1FA8C", "#FF5555", "#BD93F9", "#FFB86C", "#50FA7B", "#6272A4",
	},
}
