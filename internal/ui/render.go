package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/tasksrus/internal/model"
	"github.com/dori/tasksrus/internal/ui/theme"
	"github.com/mattn/go-runewidth"
)

// Screen layout. Mouse handling relies on these matching what View draws.
const (
	headerHeight = 2 // title bar and a blank line
	footerHeight = 2 // status line and key hints
	sidebarWidth = 26
)

// sidebarEntry is one line of the sidebar; blank entries are spacers
type sidebarEntry struct {
	view  model.View
	label string
	blank bool
}

func (m RootModel) sidebarEntries() []sidebarEntry {
	cat := func(c model.Category) sidebarEntry {
		return sidebarEntry{view: model.CategoryView(c), label: c.String()}
	}
	spacer := sidebarEntry{blank: true}

	entries := []sidebarEntry{
		cat(model.Inbox),
		spacer,
		cat(model.Today),
		cat(model.Upcoming),
		cat(model.Anytime),
		cat(model.Someday),
		spacer,
		cat(model.Logbook),
		cat(model.Trash),
		spacer,
	}
	for _, t := range m.sidebar.Tasks() {
		entries = append(entries, sidebarEntry{view: model.TaskView(t.ID), label: model.DisplayTitle(t)})
	}
	return entries
}

// mainLayout records which prefix lines of the main pane hold the detail
// inputs, for mouse hit-testing
type mainLayout struct {
	lines     []string
	titleRow  int
	notesFrom int
	notesTo   int
}

// mainPrefix renders the lines of the main pane above the task rows
func (m RootModel) mainPrefix() mainLayout {
	styles := theme.Current.Styles
	layout := mainLayout{titleRow: -1, notesFrom: -1, notesTo: -1}

	loading := ""
	if m.pending != nil {
		loading = styles.Label.Render(" loading...")
	}

	if !m.view.IsTask() || m.detail == nil {
		c := m.view.Category
		heading := lipgloss.NewStyle().Foreground(theme.Current.Theme.CategoryColor(c)).Render("● ") +
			styles.Title.Render(c.String())
		layout.lines = []string{heading + loading, ""}
		return layout
	}

	crumb := m.lastCategory.String()
	if len(m.detail.Parents) > 0 {
		crumb = "↑ " + model.DisplayTitle(m.detail.Parents[0])
	}
	layout.lines = append(layout.lines, styles.Label.Render(crumb)+loading)

	layout.titleRow = len(layout.lines)
	title := m.editor.title.View()
	if !m.editor.title.Focused() {
		title = styles.Title.Render(m.truncate(model.DisplayTitle(m.detail.Task), m.mainWidth()-4))
	}
	layout.lines = append(layout.lines, title, "")

	layout.notesFrom = len(layout.lines)
	layout.lines = append(layout.lines, strings.Split(m.editor.notes.View(), "\n")...)
	layout.notesTo = len(layout.lines) - 1

	layout.lines = append(layout.lines, "", styles.Subtitle.Render("Subtasks"))
	return layout
}

func (m RootModel) mainWidth() int {
	w := m.width - sidebarWidth
	if w < 20 {
		w = 20
	}
	return w
}

func (m RootModel) bodyHeight() int {
	h := m.height - headerHeight - footerHeight
	if h < 1 {
		h = 1
	}
	return h
}

func (m RootModel) visibleRows() int {
	rows := m.bodyHeight() - len(m.mainPrefix().lines)
	if rows < 1 {
		rows = 1
	}
	return rows
}

// ensureCursorVisible scrolls the active list so the cursor is on screen
func (m *RootModel) ensureCursorVisible() {
	cursor, ok := m.sel.Cursor()
	if !ok || m.height == 0 {
		return
	}
	visible := m.visibleRows()
	if cursor < m.scroll {
		m.scroll = cursor
	}
	if cursor >= m.scroll+visible {
		m.scroll = cursor - visible + 1
	}
}

func (m RootModel) truncate(s string, w int) string {
	if w < 1 {
		return ""
	}
	return runewidth.Truncate(s, w, "…")
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	h := m.bodyHeight()
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(h), m.renderMain(h))

	return strings.Join([]string{m.renderHeader(), "", body, m.renderFooter()}, "\n")
}

// renderHeader renders the header bar
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("tasksrus")

	name := m.view.String()
	if m.view.IsTask() && m.detail != nil {
		name = model.DisplayTitle(m.detail.Task)
	}
	viewStyle := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1)
	viewIndicator := viewStyle.Render(fmt.Sprintf("[%s]", m.truncate(name, 30)))
	themeIndicator := viewStyle.Render(fmt.Sprintf("theme: %s", t.Name))

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, title, viewIndicator)
	gap := m.width - lipgloss.Width(leftSide) - lipgloss.Width(themeIndicator)
	if gap < 0 {
		gap = 0
	}
	return leftSide + strings.Repeat(" ", gap) + themeIndicator
}

func (m RootModel) renderSidebar(height int) string {
	styles := theme.Current.Styles
	t := theme.Current.Theme
	inner := sidebarWidth - 1 // right border

	var lines []string
	for _, e := range m.sidebarEntries() {
		if len(lines) == height {
			break
		}
		if e.blank {
			lines = append(lines, "")
			continue
		}

		label := m.truncate(e.label, inner-4)
		style := styles.SidebarItem
		if e.view.Equal(m.view) {
			style = styles.SidebarActive
		}

		icon := "  "
		if e.view.IsCategory() {
			icon = lipgloss.NewStyle().Foreground(t.CategoryColor(e.view.Category)).Render("●") + " "
		}
		lines = append(lines, style.Render(icon+label))
	}

	return styles.Sidebar.
		Width(inner).
		Height(height).
		Render(strings.Join(lines, "\n"))
}

func (m RootModel) renderMain(height int) string {
	styles := theme.Current.Styles
	width := m.mainWidth()
	box := lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).PaddingLeft(1)

	if m.search.visible {
		return box.Render(m.renderSearch(width - 2))
	}
	if m.helpVisible {
		return box.Render(styles.Title.Render("Keys") + "\n\n" + m.help.View(m.keys))
	}

	layout := m.mainPrefix()
	lines := layout.lines

	n := m.active.Len()
	if n == 0 {
		lines = append(lines, styles.Placeholder.Render("  No tasks"))
	}

	cursor, selected := m.sel.Cursor()
	visible := height - len(layout.lines)
	for i := m.scroll; i < n && i < m.scroll+visible; i++ {
		task, _ := m.active.At(i)
		lines = append(lines, m.renderRow(task, selected && i == cursor, width-4))
	}

	return box.Render(strings.Join(lines, "\n"))
}

func (m RootModel) renderRow(task model.Task, selected bool, width int) string {
	styles := theme.Current.Styles

	check := "[ ] "
	if task.IsCompleted() {
		check = "[x] "
	}

	if selected && m.sel.Editing() && task.ID == m.editingID {
		return styles.TaskEditing.Render(check + m.rowInput.View())
	}

	title := m.truncate(model.DisplayTitle(task), width-len(check)-2)
	style := styles.TaskNormal
	switch {
	case selected:
		style = styles.TaskSelected
	case task.IsDeleted():
		style = styles.TaskDeleted
	case task.IsCompleted():
		style = styles.TaskDone
	case task.Title == "":
		style = styles.Placeholder.Padding(0, 1)
	}
	return style.Render(check + title)
}

func (m RootModel) renderSearch(width int) string {
	styles := theme.Current.Styles

	var b strings.Builder
	b.WriteString(styles.InputFocused.Width(width - 4).Render(m.search.input.View()))
	b.WriteString("\n")

	if m.search.err != "" {
		b.WriteString(styles.StatusError.Render(m.search.err))
		return b.String()
	}
	if m.search.input.Value() != "" && len(m.search.results) == 0 {
		b.WriteString(styles.Placeholder.Render("No matches"))
		return b.String()
	}
	for i, t := range m.search.results {
		line := fmt.Sprintf("%s  %s", m.truncate(model.DisplayTitle(t), width-16), styles.Label.Render(t.Bucket(m.now()).String()))
		if i == m.search.cursor {
			b.WriteString(styles.TaskSelected.Render(line))
		} else {
			b.WriteString(styles.TaskNormal.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderFooter renders the status line and key hints
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles

	var status string
	switch {
	case m.errorMsg != "":
		status = styles.StatusError.Render(m.truncate(m.errorMsg, m.width-2))
	case m.statusMsg != "":
		status = styles.StatusInfo.Render(m.statusMsg)
	case len(m.writes.entries) > 0:
		status = styles.Label.Render("saving...")
	}

	var hints string
	switch {
	case m.search.visible:
		hints = m.hint("enter", "open") + m.sep() + m.hint("↑/↓", "choose") + m.sep() + m.hint("esc", "close")
	case m.editor.focused():
		hints = m.hint("tab", "switch field") + m.sep() + m.hint("esc", "done")
	case m.sel.Editing():
		hints = m.hint("enter/esc", "done") + m.sep() + m.hint("↑/↓", "move")
	case m.view.IsTask():
		hints = m.hint("e", "title") + m.sep() + m.hint("m", "notes") + m.sep() +
			m.hint("a", "subtask") + m.sep() + m.hint("←", "back") + m.sep() + m.hint("?", "help")
	default:
		short := m.help
		short.ShowAll = false
		hints = short.View(m.keys)
	}

	return styles.Footer.Render(status) + "\n" + styles.Footer.Render(hints)
}

func (m RootModel) hint(k, desc string) string {
	styles := theme.Current.Styles
	return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
}

func (m RootModel) sep() string {
	return theme.Current.Styles.HelpSeparator.Render(" │ ")
}

// handleMouse maps a left click to a sidebar entry or a task row
func (m *RootModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	if m.search.visible || m.helpVisible {
		return nil
	}

	y := msg.Y - headerHeight
	if y < 0 || y >= m.bodyHeight() {
		return nil
	}

	if msg.X < sidebarWidth {
		entries := m.sidebarEntries()
		if y < len(entries) && !entries[y].blank {
			return m.setView(entries[y].view)
		}
		return nil
	}

	layout := m.mainPrefix()
	if y < len(layout.lines) {
		switch {
		case y == layout.titleRow:
			m.closeEditors()
			m.sel.Reset()
			return m.editor.focusField(fieldTitle)
		case y >= layout.notesFrom && y <= layout.notesTo && layout.notesFrom >= 0:
			m.closeEditors()
			m.sel.Reset()
			return m.editor.focusField(fieldNotes)
		}
		m.editor.blur()
		m.sel.ClickOutside()
		return m.syncRowEditor()
	}

	m.editor.blur()
	row := m.scroll + y - len(layout.lines)
	if row < m.active.Len() {
		m.sel.Click(row, m.active.Len())
	} else {
		m.sel.ClickOutside()
	}
	return m.syncRowEditor()
}
