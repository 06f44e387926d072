package theme

import "github.com/charmbracelet/lipgloss"

// Nord theme - Arctic, north-bluish color palette
// https://www.nordtheme.com/
var Nord = Theme{
	Name: "nord",

	Background: lipgloss.Color("#2E3440"),
	Foreground: lipgloss.Color("#ECEFF4"),
	Subtle:     lipgloss.Color("#4C566A"),
	Highlight:  lipgloss.Color("#3B4252"),
	Border:     lipgloss.Color("#4C566A"),

	Primary:   lipgloss.Color("#88C0D0"),
	Secondary: lipgloss.Color("#81A1C1"),
	Success:   lipgloss.Color("#A3BE8C"),
	Warning:   lipgloss.Color("#EBCB8B"),
	Error:     lipgloss.Color("#BF616A"),
	Info:      lipgloss.Color("#5E81AC"),

	// Inbox, Today, Upcoming, Anytime, Someday, Logbook, Trash
	Categories: [7]lipgloss.Color{
		"#5E81AC", "#EBCB8B", "#BF616A", "#8FBCBB", "#D08770", "#A3BE8C", "#4C566A",
	},
}
