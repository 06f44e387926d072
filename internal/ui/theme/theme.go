package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/tasksrus/internal/model"
)

// Theme defines the color scheme for the UI
type Theme struct {
	Name string

	Background lipgloss.Color
	Foreground lipgloss.Color
	Subtle     lipgloss.Color
	Highlight  lipgloss.Color
	Border     lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Info      lipgloss.Color

	// Sidebar icon colors, indexed by model.Category
	Categories [7]lipgloss.Color
}

// CategoryColor returns the accent color for a category
func (t Theme) CategoryColor(c model.Category) lipgloss.Color {
	if !c.Valid() {
		return t.Foreground
	}
	return t.Categories[c]
}

// Styles holds pre-computed lipgloss styles based on theme
type Styles struct {
	Header lipgloss.Style
	Footer lipgloss.Style

	// Rows in the active list
	TaskNormal   lipgloss.Style
	TaskSelected lipgloss.Style
	TaskEditing  lipgloss.Style
	TaskDone     lipgloss.Style
	TaskDeleted  lipgloss.Style

	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Label       lipgloss.Style
	Placeholder lipgloss.Style

	// Sidebar
	Sidebar       lipgloss.Style
	SidebarItem   lipgloss.Style
	SidebarActive lipgloss.Style

	// Overlays (search, help)
	Panel        lipgloss.Style
	InputFocused lipgloss.Style

	HelpKey       lipgloss.Style
	HelpDesc      lipgloss.Style
	HelpSeparator lipgloss.Style

	StatusInfo  lipgloss.Style
	StatusError lipgloss.Style
}

// NewStyles creates styles from a theme
func NewStyles(t Theme) Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Padding(0, 1),

		TaskNormal: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 1),

		TaskSelected: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Background(t.Highlight).
			Padding(0, 1),

		TaskEditing: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Highlight).
			Padding(0, 1),

		TaskDone: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Strikethrough(true).
			Padding(0, 1),

		TaskDeleted: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Italic(true).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Italic(true),

		Label: lipgloss.NewStyle().
			Foreground(t.Subtle),

		Placeholder: lipgloss.NewStyle().
			Foreground(t.Subtle),

		Sidebar: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(t.Border),

		SidebarItem: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 1),

		SidebarActive: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Highlight).
			Bold(true).
			Padding(0, 1),

		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		InputFocused: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(t.Subtle),

		HelpSeparator: lipgloss.NewStyle().
			Foreground(t.Border),

		StatusInfo: lipgloss.NewStyle().
			Foreground(t.Info),

		StatusError: lipgloss.NewStyle().
			Foreground(t.Error),
	}
}

// Current holds the current active theme and styles
var Current = struct {
	Theme  Theme
	Styles Styles
}{
	Theme:  Nord,
	Styles: NewStyles(Nord),
}

// SetTheme changes the current theme
func SetTheme(t Theme) {
	Current.Theme = t
	Current.Styles = NewStyles(t)
}

// Available returns all available themes
func Available() []Theme {
	return []Theme{
		Nord,
		Dracula,
		Gruvbox,
		Catppuccin,
	}
}

// ByName returns a theme by its name
func ByName(name string) (Theme, bool) {
	for _, t := range Available() {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// Next returns the theme after the named one, wrapping around. Unknown
// names start over at the first theme.
func Next(name string) Theme {
	themes := Available()
	for i, t := range themes {
		if t.Name == name {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}
