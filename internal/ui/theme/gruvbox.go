package theme

import "github.com/charmbracelet/lipgloss"

// Gruvbox theme - Retro groove color scheme
// https://github.com/morhetz/gruvbox
var Gruvbox = Theme{
	Name: "gruvbox",

	Background: lipgloss.Color("#282828"),
	Foreground: lipgloss.Color("#EBDBB2"),
	Subtle:     lipgloss.Color("#928374"),
	Highlight:  lipgloss.Color("#3C3836"),
	Border:     lipgloss.Color("#504945"),

	Primary:   lipgloss.Color("#83A598"),
	Secondary: lipgloss.Color("#8EC07C"),
	Success:   lipgloss.Color("#B8BB26"),
	Warning:   lipgloss.Color("#FABD2F"),
	Error:     lipgloss.Color("#FB4934"),
	Info:      lipgloss.Color("#83A598"),

	// Inbox, Today, Upcoming, Anytime, Someday, Logbook, Trash
	Categories: [7]lipgloss.Color{
		"#83A598", "#FABD2F", "#FB4934", "#8EC07C", "#FE8019", "#B8BB26", "#928374",
	},
}
