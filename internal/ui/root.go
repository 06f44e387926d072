package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/tasksrus/internal/model"
	"github.com/dori/tasksrus/internal/notify"
	"github.com/dori/tasksrus/internal/selection"
	"github.com/dori/tasksrus/internal/tasklist"
	"github.com/dori/tasksrus/internal/ui/theme"
)

// Options configures a RootModel
type Options struct {
	StartView model.View
	// Debounce is the idle gap before an edit is written
	Debounce time.Duration
	// Timeout bounds every store call
	Timeout time.Duration

	Logger   *slog.Logger
	Notifier *notify.Notifier

	// OnThemeChange persists the theme picked with ctrl+t
	OnThemeChange func(name string) error

	// Now and Clipboard are replaced in tests
	Now       func() time.Time
	Clipboard func(string) error
}

// RootModel coordinates what is on screen. It owns the current view, the
// sidebar and active task lists, the selection, and the write queue, and
// is the only thing that mutates them. Every store call runs as a tea.Cmd
// and comes back as a message tagged with the request it answers.
type RootModel struct {
	resolver Resolver
	writes   *writeQueue
	logger   *slog.Logger
	notifier *notify.Notifier
	keys     KeyMap
	help     help.Model
	width    int
	height   int

	now      func() time.Time
	copyText func(string) error
	themes   *themeSaver

	view         model.View
	lastCategory model.Category
	// pending is the view requested by the latest setView, until it resolves
	pending    *model.View
	viewSeq    uint64
	sidebarSeq uint64

	sidebar *tasklist.List
	active  *tasklist.List
	detail  *model.TaskContext

	sel       selection.Controller
	scroll    int
	rowInput  textinput.Model
	editingID int64

	editor detailEditor
	search searchOverlay

	helpVisible bool

	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model. Init fetches the start view.
func NewRootModel(store TaskStore, opts Options) RootModel {
	h := help.New()
	h.ShowAll = false

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	copyText := opts.Clipboard
	if copyText == nil {
		copyText = clipboard.WriteAll
	}

	start := opts.StartView
	if start.IsCategory() && !start.Category.Valid() {
		start = model.DefaultView()
	}

	ri := textinput.New()
	ri.Prompt = ""
	ri.Placeholder = model.PlaceholderTitle
	ri.CharLimit = 200

	m := RootModel{
		resolver:     NewResolver(store, opts.Timeout),
		writes:       newWriteQueue(store, opts.Debounce, opts.Timeout),
		logger:       logger,
		notifier:     opts.Notifier,
		keys:         DefaultKeyMap(),
		help:         h,
		now:          now,
		copyText:     copyText,
		themes:       newThemeSaver(opts.OnThemeChange),
		view:         model.DefaultView(),
		lastCategory: model.Inbox,
		sidebar:      tasklist.New(),
		active:       tasklist.New(),
		sel:          selection.New(),
		rowInput:     ri,
		editor:       newDetailEditor(),
		search:       newSearchOverlay(),
	}

	// Init cannot mutate the model, so the first request is registered here
	m.viewSeq = 1
	m.sidebarSeq = 1
	m.pending = &start
	return m
}

// Init initializes the model
func (m RootModel) Init() tea.Cmd {
	return tea.Batch(
		m.resolver.Cmd(*m.pending, m.viewSeq, false),
		m.resolver.SidebarCmd(m.sidebarSeq),
	)
}

// CurrentView returns the view on screen
func (m RootModel) CurrentView() model.View {
	return m.view
}

// PendingWrites reports how many tasks have edits that may not be stored yet
func (m RootModel) PendingWrites() int {
	return len(m.writes.entries)
}

// Drain writes every unsaved edit. Call it after the program exits.
func (m RootModel) Drain(ctx context.Context) error {
	return m.writes.drain(ctx)
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.editor.setWidth(m.mainWidth() - 4)
		m.rowInput.Width = m.mainWidth() - 6
		m.search.input.Width = m.mainWidth() - 8
		m.ensureCursorVisible()
		return m, nil

	case viewResolvedMsg:
		cmd := m.applyView(msg)
		return m, cmd

	case sidebarLoadedMsg:
		m.applySidebar(msg)
		return m, nil

	case taskCreatedMsg:
		cmd := m.applyCreated(msg)
		return m, cmd

	case persistDueMsg:
		cmd := m.writes.onDue(msg)
		return m, cmd

	case taskWrittenMsg:
		cmd := m.applyWritten(msg)
		return m, cmd

	case searchResultsMsg:
		if !m.search.setResults(msg) {
			m.logger.Debug("dropped search results", "seq", msg.seq, "err", ErrStaleResponse)
		}
		return m, nil

	case ErrorMsg:
		m.errorMsg = msg.Err.Error()
		return m, nil

	case StatusMsg:
		m.statusMsg = msg.Message
		return m, nil

	case tea.MouseMsg:
		cmd := m.handleMouse(msg)
		return m, cmd

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, cmd
	}

	// Cursor blinks and similar go to whichever input has focus
	var cmd tea.Cmd
	switch {
	case m.search.visible:
		m.search.input, cmd = m.search.input.Update(msg)
	case m.editor.focus == fieldTitle:
		m.editor.title, cmd = m.editor.title.Update(msg)
	case m.editor.focus == fieldNotes:
		m.editor.notes, cmd = m.editor.notes.Update(msg)
	case m.sel.Editing():
		m.rowInput, cmd = m.rowInput.Update(msg)
	}
	return m, cmd
}

// inputMode reports whether keystrokes are going into a text field
func (m RootModel) inputMode() bool {
	return m.search.visible || m.editor.focused() || m.sel.Editing()
}

func (m *RootModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	m.statusMsg = ""
	m.errorMsg = ""

	if key.Matches(msg, m.keys.Quit) && (msg.String() == "ctrl+c" || !m.inputMode()) {
		return tea.Quit
	}

	if m.search.visible {
		return m.handleSearchKey(msg)
	}

	// Global keys that work everywhere
	switch {
	case key.Matches(msg, m.keys.Search):
		m.closeEditors()
		return m.search.open()
	case key.Matches(msg, m.keys.NewTask):
		return m.newTask()
	case key.Matches(msg, m.keys.ThemeCycle):
		return m.cycleTheme()
	}
	for i, b := range m.keys.Categories {
		if key.Matches(msg, b) {
			return m.setView(model.CategoryView(model.Category(i)))
		}
	}

	if !m.inputMode() {
		switch {
		case key.Matches(msg, m.keys.Help):
			m.helpVisible = !m.helpVisible
			m.help.ShowAll = m.helpVisible
			return nil
		case key.Matches(msg, m.keys.NewTaskQuick):
			return m.newTask()
		}
		for i, b := range m.keys.CategoryKeys {
			if key.Matches(msg, b) {
				return m.setView(model.CategoryView(model.Category(i)))
			}
		}
	}

	if m.editor.focused() {
		return m.handleEditorKey(msg)
	}
	if m.view.IsTask() && m.detail != nil && !m.sel.Editing() {
		if cmd, handled := m.handleDetailKey(msg); handled {
			return cmd
		}
	}
	return m.handleListKey(msg)
}

func (m *RootModel) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.close()
		return nil
	case tea.KeyEnter:
		task, ok := m.search.chosen()
		m.search.close()
		if !ok {
			return nil
		}
		return m.setView(model.TaskView(task.ID))
	case tea.KeyUp, tea.KeyShiftTab:
		m.search.move(-1)
		return nil
	case tea.KeyDown, tea.KeyTab:
		m.search.move(1)
		return nil
	}

	before := m.search.input.Value()
	var cmd tea.Cmd
	m.search.input, cmd = m.search.input.Update(msg)
	query := m.search.input.Value()
	if query == before {
		return cmd
	}

	m.search.seq++
	if query == "" {
		m.search.results = nil
		m.search.cursor = 0
		return cmd
	}
	return tea.Batch(cmd, m.resolver.SearchCmd(query, m.search.seq))
}

func (m *RootModel) handleEditorKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.editor.blur()
		return nil
	case key.Matches(msg, m.keys.SwitchField):
		return m.editor.switchField()
	}

	task, changed, cmd := m.editor.update(msg, m.detail.Task)
	if !changed {
		return cmd
	}
	return tea.Batch(cmd, m.updateTask(task))
}

// handleDetailKey handles keys that only mean something in a task view
func (m *RootModel) handleDetailKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.EditTitle):
		m.sel.Reset()
		return m.editor.focusField(fieldTitle), true
	case key.Matches(msg, m.keys.EditNotes):
		m.sel.Reset()
		return m.editor.focusField(fieldNotes), true
	case key.Matches(msg, m.keys.NewSubtask):
		return m.newSubtask(), true
	case key.Matches(msg, m.keys.Back):
		return m.back(), true
	}
	return nil, false
}

func (m *RootModel) handleListKey(msg tea.KeyMsg) tea.Cmd {
	n := m.active.Len()
	editing := m.sel.Editing()

	switch {
	case key.Matches(msg, m.keys.Down), !editing && key.Matches(msg, m.keys.DownVim):
		m.sel.Down(n)
		return m.syncRowEditor()

	case key.Matches(msg, m.keys.Up), !editing && key.Matches(msg, m.keys.UpVim):
		m.sel.Up(n)
		return m.syncRowEditor()

	case key.Matches(msg, m.keys.Edit):
		m.sel.Enter()
		return m.syncRowEditor()

	case key.Matches(msg, m.keys.Escape):
		m.sel.Escape()
		return m.syncRowEditor()

	case key.Matches(msg, m.keys.Complete), !editing && key.Matches(msg, m.keys.CompleteQuick):
		task, ok := m.selectedTask()
		if !ok {
			return nil
		}
		return m.completeTask(task, !task.IsCompleted())
	}

	if editing {
		return m.updateRowInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Delete):
		if task, ok := m.selectedTask(); ok {
			return m.deleteTask(task)
		}
	case key.Matches(msg, m.keys.Open):
		if task, ok := m.selectedTask(); ok {
			return m.setView(model.TaskView(task.ID))
		}
	case key.Matches(msg, m.keys.Copy):
		if task, ok := m.selectedTask(); ok {
			return m.copyTitle(task)
		}
		if m.detail != nil {
			return m.copyTitle(m.detail.Task)
		}
	}
	return nil
}

// updateRowInput types into the inline title editor
func (m *RootModel) updateRowInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.rowInput, cmd = m.rowInput.Update(msg)

	i, ok := m.active.IndexOf(m.editingID)
	if !ok {
		return cmd
	}
	task, _ := m.active.At(i)
	if title := m.rowInput.Value(); title != task.Title {
		task.Title = title
		return tea.Batch(cmd, m.updateTask(task))
	}
	return cmd
}

// syncRowEditor binds the inline editor to the row the selection is
// editing, or releases it
func (m *RootModel) syncRowEditor() tea.Cmd {
	m.ensureCursorVisible()

	task, ok := m.selectedTask()
	if !ok || !m.sel.Editing() {
		m.rowInput.Blur()
		m.editingID = 0
		return nil
	}
	if m.editingID == task.ID && m.rowInput.Focused() {
		return nil
	}
	m.editor.blur()
	m.editingID = task.ID
	m.rowInput.SetValue(task.Title)
	m.rowInput.CursorEnd()
	return m.rowInput.Focus()
}

func (m RootModel) selectedTask() (model.Task, bool) {
	i, ok := m.sel.Cursor()
	if !ok {
		return model.Task{}, false
	}
	return m.active.At(i)
}

func (m *RootModel) closeEditors() {
	if m.sel.Editing() {
		m.sel.Escape()
	}
	m.rowInput.Blur()
	m.editingID = 0
	m.editor.blur()
}

// setView asks for view to be shown. The screen keeps the old view until
// the data arrives; a later setView supersedes this one.
func (m *RootModel) setView(view model.View) tea.Cmd {
	m.closeEditors()
	m.helpVisible = false
	m.help.ShowAll = false

	m.viewSeq++
	v := view
	m.pending = &v
	m.logger.Debug("set view", "view", view.String(), "seq", m.viewSeq)
	return m.resolver.Cmd(view, m.viewSeq, false)
}

// back leaves a task view for its first parent, or the last category
func (m *RootModel) back() tea.Cmd {
	if m.detail != nil && len(m.detail.Parents) > 0 {
		return m.setView(model.TaskView(m.detail.Parents[0].ID))
	}
	return m.setView(model.CategoryView(m.lastCategory))
}

func (m *RootModel) applyView(msg viewResolvedMsg) tea.Cmd {
	if msg.seq != m.viewSeq {
		m.logger.Debug("dropped view result", "view", msg.view.String(), "seq", msg.seq, "current", m.viewSeq, "err", ErrStaleResponse)
		return nil
	}
	m.pending = nil

	if msg.err != nil {
		if msg.view.IsTask() && errors.Is(msg.err, model.ErrNotFound) {
			m.logger.Warn("task view gone, falling back", "view", msg.view.String())
			cmd := m.setView(model.DefaultView())
			m.errorMsg = "That task no longer exists"
			return cmd
		}
		m.logger.Error("failed to resolve view", "view", msg.view.String(), "err", msg.err)
		m.errorMsg = msg.err.Error()
		return nil
	}

	m.view = msg.view
	if msg.view.IsCategory() {
		m.lastCategory = msg.view.Category
		m.detail = nil
	} else {
		m.detail = msg.res.Detail
		if !msg.reconcile {
			m.editor.load(m.detail.Task)
		}
	}
	m.active.Load(msg.res.Tasks)
	m.reapplyPending()

	if msg.reconcile {
		m.sel.Clamp(m.active.Len())
	} else {
		m.sel.Reset()
		m.scroll = 0
	}
	return m.syncRowEditor()
}

func (m *RootModel) applySidebar(msg sidebarLoadedMsg) {
	if msg.seq != m.sidebarSeq {
		m.logger.Debug("dropped sidebar result", "seq", msg.seq, "current", m.sidebarSeq, "err", ErrStaleResponse)
		return
	}
	if msg.err != nil {
		m.logger.Error("failed to load sidebar", "err", msg.err)
		m.errorMsg = msg.err.Error()
		return
	}
	m.sidebar.Load(msg.tasks)
	for _, t := range m.writes.pending() {
		m.sidebar.Patch(t)
	}
}

// reapplyPending lays unsaved local edits over freshly fetched data, so a
// refetch that raced a write does not roll an edit back on screen
func (m *RootModel) reapplyPending() {
	for _, t := range m.writes.pending() {
		m.active.Patch(t)
		m.patchDetail(t)
	}
}

// reconcile refetches the view and the sidebar after a write that can
// move tasks between lists. A pending setView may have read the store
// before the write landed, so it is fetched again in place of the
// current view.
func (m *RootModel) reconcile() tea.Cmd {
	m.viewSeq++
	view := m.resolver.Cmd(m.view, m.viewSeq, true)
	if m.pending != nil {
		view = m.resolver.Cmd(*m.pending, m.viewSeq, false)
	}
	m.sidebarSeq++
	return tea.Batch(view, m.resolver.SidebarCmd(m.sidebarSeq))
}

// updateTask patches task everywhere it is shown and schedules a
// debounced write
func (m *RootModel) updateTask(task model.Task) tea.Cmd {
	m.patch(task)
	return m.writes.schedule(task, false, false)
}

// commitTask is updateTask for changes that can move the task to another
// category: it writes right away and reconciles once stored
func (m *RootModel) commitTask(task model.Task) tea.Cmd {
	m.patch(task)
	return m.writes.schedule(task, true, true)
}

func (m *RootModel) completeTask(task model.Task, done bool) tea.Cmd {
	return m.commitTask(task.WithCompleted(done, m.now()))
}

func (m *RootModel) deleteTask(task model.Task) tea.Cmd {
	return m.commitTask(task.WithDeleted(true, m.now()))
}

func (m *RootModel) patch(task model.Task) {
	m.sidebar.Patch(task)
	m.active.Patch(task)
	m.patchDetail(task)
}

func (m *RootModel) patchDetail(task model.Task) {
	if m.detail == nil {
		return
	}
	if m.detail.Task.ID == task.ID {
		m.detail.Task = task
	}
	for i := range m.detail.Parents {
		if m.detail.Parents[i].ID == task.ID {
			m.detail.Parents[i] = task
		}
	}
	for i := range m.detail.Children {
		if m.detail.Children[i].ID == task.ID {
			m.detail.Children[i] = task
		}
	}
}

func (m *RootModel) applyWritten(msg taskWrittenMsg) tea.Cmd {
	next := m.writes.onWritten(msg)

	if msg.err != nil {
		m.logger.Error("failed to save task", "task", msg.task.ID, "err", msg.err)
		m.errorMsg = msg.err.Error()
		if err := m.notifier.SendWriteFailed(model.DisplayTitle(msg.task), msg.err); err != nil {
			m.logger.Warn("failed to send notification", "err", err)
		}
		return next
	}

	m.logger.Debug("saved task", "task", msg.task.ID)
	if msg.reconcile {
		return tea.Batch(next, m.reconcile())
	}
	return next
}

// newTask creates an unscheduled root task
func (m *RootModel) newTask() tea.Cmd {
	return m.resolver.CreateCmd(0)
}

// newSubtask creates a task under the one being viewed
func (m *RootModel) newSubtask() tea.Cmd {
	if m.detail == nil {
		return nil
	}
	return m.resolver.CreateCmd(m.detail.Task.ID)
}

func (m *RootModel) applyCreated(msg taskCreatedMsg) tea.Cmd {
	if msg.err != nil {
		m.logger.Error("failed to create task", "parent", msg.parentID, "err", msg.err)
		m.errorMsg = msg.err.Error()
		if err := m.notifier.SendWriteFailed(model.PlaceholderTitle, msg.err); err != nil {
			m.logger.Warn("failed to send notification", "err", err)
		}
		return nil
	}
	task := msg.task
	m.logger.Info("created task", "task", task.ID, "parent", msg.parentID)

	if msg.parentID == 0 {
		m.sidebar.Append(task)
	}

	switch {
	case msg.parentID != 0:
		if m.view.IsTask() && m.detail != nil && m.detail.Task.ID == msg.parentID {
			m.detail.Children = append(m.detail.Children, task)
			m.active.Append(task)
		} else {
			return nil
		}
	case m.view.IsCategory() && task.InCategory(m.view.Category, m.now()):
		m.active.Append(task)
	default:
		return nil
	}

	// The new row is selected with its title open for typing
	i, _ := m.active.IndexOf(task.ID)
	m.closeEditors()
	m.sel.Select(i, m.active.Len(), true)
	return m.syncRowEditor()
}

func (m *RootModel) copyTitle(task model.Task) tea.Cmd {
	copyText, title := m.copyText, task.Title
	return func() tea.Msg {
		if err := copyText(title); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to copy: %w", err)}
		}
		return StatusMsg{Message: "Copied title"}
	}
}

// cycleTheme switches to the next theme and saves the choice
func (m *RootModel) cycleTheme() tea.Cmd {
	next := theme.Next(theme.Current.Theme.Name)
	theme.SetTheme(next)
	m.statusMsg = fmt.Sprintf("Theme: %s", next.Name)

	return m.themes.choose(next.Name)
}

// themeSaver persists theme choices off the update loop. Saves are
// serialized and each one writes the newest choice, so quick presses
// never leave an older theme on disk.
type themeSaver struct {
	save func(name string) error

	mu    sync.Mutex
	want  string
	saved string
}

func newThemeSaver(save func(name string) error) *themeSaver {
	if save == nil {
		return nil
	}
	return &themeSaver{save: save}
}

// choose records name as the newest choice and returns the command that
// saves it. Call it from the update loop only.
func (s *themeSaver) choose(name string) tea.Cmd {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	s.want = name
	s.mu.Unlock()
	return func() tea.Msg {
		if err := s.flush(); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to save theme: %w", err)}
		}
		return nil
	}
}

func (s *themeSaver) flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.want == s.saved {
		return nil
	}
	if err := s.save(s.want); err != nil {
		return err
	}
	s.saved = s.want
	return nil
}
