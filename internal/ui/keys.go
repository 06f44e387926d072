package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/dori/tasksrus/internal/model"
)

// KeyMap defines all keybindings for the application
type KeyMap struct {
	// List navigation. Arrow and tab keys work while a row is being edited;
	// the vim keys would be typed into the editor, so they only apply outside it.
	Up      key.Binding
	Down    key.Binding
	UpVim   key.Binding
	DownVim key.Binding

	// Row actions
	Edit          key.Binding
	Escape        key.Binding
	Complete      key.Binding
	CompleteQuick key.Binding
	Delete        key.Binding
	Open          key.Binding
	Copy          key.Binding

	// Detail view
	EditTitle   key.Binding
	EditNotes   key.Binding
	NewSubtask  key.Binding
	Back        key.Binding
	SwitchField key.Binding

	// Global
	NewTask      key.Binding
	NewTaskQuick key.Binding
	Search       key.Binding
	Categories   []key.Binding // alt+1..alt+7, always active
	CategoryKeys []key.Binding // 1..7, only outside text inputs
	Help         key.Binding
	ThemeCycle   key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	km := KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "shift+tab"),
			key.WithHelp("↑/S-tab", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "tab"),
			key.WithHelp("↓/tab", "down"),
		),
		UpVim: key.NewBinding(
			key.WithKeys("k"),
			key.WithHelp("k", "up"),
		),
		DownVim: key.NewBinding(
			key.WithKeys("j"),
			key.WithHelp("j", "down"),
		),

		Edit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close/deselect"),
		),
		Complete: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "toggle done"),
		),
		CompleteQuick: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "toggle done"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Open: key.NewBinding(
			key.WithKeys("o", "right"),
			key.WithHelp("o/→", "open"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy title"),
		),

		EditTitle: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit title"),
		),
		EditNotes: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "edit notes"),
		),
		NewSubtask: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add subtask"),
		),
		Back: key.NewBinding(
			key.WithKeys("backspace", "left"),
			key.WithHelp("←", "back"),
		),
		SwitchField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch field"),
		),

		NewTask: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new task"),
		),
		NewTaskQuick: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task"),
		),
		Search: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("C-k", "search"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		ThemeCycle: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "theme"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}

	for i, c := range model.Categories() {
		km.Categories = append(km.Categories, key.NewBinding(
			key.WithKeys(fmt.Sprintf("alt+%d", i+1)),
			key.WithHelp(fmt.Sprintf("M-%d", i+1), c.String()),
		))
		km.CategoryKeys = append(km.CategoryKeys, key.NewBinding(
			key.WithKeys(fmt.Sprintf("%d", i+1)),
			key.WithHelp(fmt.Sprintf("%d", i+1), c.String()),
		))
	}

	return km
}

// ShortHelp returns short help bindings (for status bar)
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Edit, k.Complete, k.Delete, k.Open, k.NewTask, k.Search, k.Help, k.Quit}
}

// FullHelp returns full help bindings (for help view)
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.UpVim, k.DownVim},
		{k.Edit, k.Escape, k.Complete, k.CompleteQuick, k.Delete},
		{k.Open, k.Back, k.Copy, k.NewTask},
		{k.EditTitle, k.EditNotes, k.SwitchField, k.NewSubtask},
		k.CategoryKeys,
		{k.Search, k.ThemeCycle, k.Help, k.Quit},
	}
}
