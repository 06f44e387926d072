package ui

import (
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/tasksrus/internal/model"
	"github.com/dori/tasksrus/internal/selection"
	"github.com/stretchr/testify/require"
)

func TestCompletingTaskRemovesItFromAnytime(t *testing.T) {
	store := newFakeStore()
	a := store.add("A", model.ScheduledAnytime)
	b := store.add("B", model.ScheduledAnytime)

	m := newTestModel(t, store, model.CategoryView(model.Anytime))
	require.Equal(t, []int64{a.ID, b.ID}, activeIDs(m))

	m = press(m, "down", "down")
	require.Equal(t, "Selected(1)", m.sel.String())

	// the patch is visible before the write comes back
	m, cmd := send(m, keyMsg("ctrl+x"))
	patched, ok := m.active.At(1)
	require.True(t, ok)
	require.True(t, patched.IsCompleted())

	m = settle(m, cmd)
	require.True(t, store.get(b.ID).IsCompleted())
	require.Equal(t, []int64{a.ID}, activeIDs(m))
	require.Equal(t, "Selected(0)", m.sel.String())
}

func TestLateResponseForAbandonedViewIsDropped(t *testing.T) {
	store := newFakeStore()
	inbox := store.add("inbox task", model.ScheduledNone)
	today := store.add("today task", model.ScheduledOn(store.now))

	m := newTestModel(t, store, model.CategoryView(model.Anytime))

	inboxCmd := m.setView(model.CategoryView(model.Inbox))
	todayCmd := m.setView(model.CategoryView(model.Today))

	m = settle(m, todayCmd)
	m = settle(m, inboxCmd)

	require.True(t, m.view.Equal(model.CategoryView(model.Today)))
	require.Equal(t, []int64{today.ID}, activeIDs(m))
	require.NotContains(t, activeIDs(m), inbox.ID)
}

func TestScreenKeepsOldViewUntilNewOneResolves(t *testing.T) {
	store := newFakeStore()
	a := store.add("A", model.ScheduledAnytime)

	m := newTestModel(t, store, model.CategoryView(model.Anytime))
	cmd := m.setView(model.CategoryView(model.Someday))

	require.True(t, m.view.Equal(model.CategoryView(model.Anytime)))
	require.Equal(t, []int64{a.ID}, activeIDs(m))
	require.NotNil(t, m.pending)

	m = settle(m, cmd)
	require.True(t, m.view.Equal(model.CategoryView(model.Someday)))
	require.Empty(t, activeIDs(m))
}

func TestNewTaskInInboxAppendsEverywhere(t *testing.T) {
	store := newFakeStore()
	existing := store.add("existing", model.ScheduledNone)

	m := newTestModel(t, store, model.CategoryView(model.Inbox))
	m = press(m, "ctrl+n")

	require.Len(t, activeIDs(m), 2)
	created, ok := m.active.At(1)
	require.True(t, ok)
	require.Empty(t, created.Title)
	require.Equal(t, []int64{existing.ID, created.ID}, sidebarIDs(m))

	require.Equal(t, selection.Editing, m.sel.Phase())
	require.Equal(t, created.ID, m.editingID)
	require.Contains(t, m.View(), model.PlaceholderTitle)

	// typing names it; the name reaches the store after the debounce
	m = press(m, "M", "i", "l", "k")
	require.Equal(t, "Milk", store.get(created.ID).Title)
	sidebarTask, _ := m.sidebar.At(1)
	require.Equal(t, "Milk", sidebarTask.Title)
}

func TestNewTaskOutsideItsCategoryOnlyReachesSidebar(t *testing.T) {
	store := newFakeStore()
	m := newTestModel(t, store, model.CategoryView(model.Someday))

	m = press(m, "n")
	require.Empty(t, activeIDs(m))
	require.Len(t, sidebarIDs(m), 1)
	require.Equal(t, selection.Idle, m.sel.Phase())
}

func TestCreateFailureIsReported(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("read-only database")
	m := newTestModel(t, store, model.CategoryView(model.Inbox))

	m = press(m, "ctrl+n")
	require.Empty(t, sidebarIDs(m))
	require.Contains(t, m.errorMsg, "read-only database")
}

func TestSwitchingViewsResetsSelection(t *testing.T) {
	store := newFakeStore()
	store.add("A", model.ScheduledNone)

	m := newTestModel(t, store, model.CategoryView(model.Inbox))
	m = press(m, "down", "enter")
	require.Equal(t, "Editing(0)", m.sel.String())

	m = press(m, "alt+2")
	require.True(t, m.view.Equal(model.CategoryView(model.Today)))
	require.Equal(t, selection.Idle, m.sel.Phase())
	require.False(t, m.rowInput.Focused())
}

func TestDigitKeysSwitchViewsOnlyOutsideInputs(t *testing.T) {
	store := newFakeStore()
	a := store.add("A", model.ScheduledNone)
	m := newTestModel(t, store, model.CategoryView(model.Inbox))

	m = press(m, "4")
	require.True(t, m.view.Equal(model.CategoryView(model.Anytime)))

	m = press(m, "1", "down", "enter", "7")
	require.True(t, m.view.Equal(model.CategoryView(model.Inbox)))
	require.Equal(t, "A7", store.get(a.ID).Title)
}

func TestMissingTaskFallsBackToInbox(t *testing.T) {
	store := newFakeStore()
	inbox := store.add("in", model.ScheduledNone)
	m := newTestModel(t, store, model.CategoryView(model.Someday))

	m = settle(m, m.setView(model.TaskView(999)))
	require.True(t, m.view.Equal(model.DefaultView()))
	require.Equal(t, []int64{inbox.ID}, activeIDs(m))
	require.NotEmpty(t, m.errorMsg)
}

func TestWriteFailureKeepsLocalEdit(t *testing.T) {
	store := newFakeStore()
	a := store.add("draft", model.ScheduledNone)
	store.updateErr = errors.New("disk full")

	m := newTestModel(t, store, model.CategoryView(model.Inbox))
	m = press(m, "down", "enter", "!")

	require.Contains(t, m.errorMsg, "disk full")
	task, _ := m.active.At(0)
	require.Equal(t, "draft!", task.Title)
	sidebarTask, _ := m.sidebar.At(0)
	require.Equal(t, "draft!", sidebarTask.Title)
	require.Equal(t, "draft", store.get(a.ID).Title)
	require.Equal(t, 1, m.PendingWrites())
}

func TestRefetchAfterWriteFailureKeepsLocalEdit(t *testing.T) {
	store := newFakeStore()
	a := store.add("draft", model.ScheduledNone)
	b := store.add("other", model.ScheduledNone)
	store.updateErr = errors.New("disk full")

	m := newTestModel(t, store, model.CategoryView(model.Inbox))
	m = press(m, "down", "enter", "!", "esc")
	require.Equal(t, "draft", store.get(a.ID).Title)

	// completing another task refetches the view and the sidebar
	store.mu.Lock()
	store.updateErr = nil
	store.mu.Unlock()
	m = press(m, "down", "ctrl+x")
	require.True(t, store.get(b.ID).IsCompleted())
	require.Equal(t, []int64{a.ID}, activeIDs(m))

	task, _ := m.active.At(0)
	require.Equal(t, "draft!", task.Title)
	sidebarTask, _ := m.sidebar.At(0)
	require.Equal(t, "draft!", sidebarTask.Title)

	// the next edit to the task stores it and clears the failure
	m = press(m, "up", "enter", "z")
	require.Equal(t, "draft!z", store.get(a.ID).Title)
	require.Zero(t, m.PendingWrites())
}

func TestKeystrokesCoalesceIntoOneWrite(t *testing.T) {
	store := newFakeStore()
	a := store.add("", model.ScheduledNone)
	m := newTestModel(t, store, model.CategoryView(model.Inbox))
	m = press(m, "down", "enter")

	var cmds []tea.Cmd
	for _, k := range []string{"t", "e", "a"} {
		var cmd tea.Cmd
		m, cmd = send(m, keyMsg(k))
		cmds = append(cmds, cmd)
	}
	m = settle(m, tea.Batch(cmds...))

	require.Len(t, store.updates, 1)
	require.Equal(t, "tea", store.updates[0].Title)
	require.Equal(t, "tea", store.get(a.ID).Title)
}

func TestDeleteMovesTaskToTrash(t *testing.T) {
	store := newFakeStore()
	a := store.add("A", model.ScheduledNone)
	b := store.add("B", model.ScheduledNone)
	m := newTestModel(t, store, model.CategoryView(model.Inbox))

	m = press(m, "down", "d")
	require.True(t, store.get(a.ID).IsDeleted())
	require.Equal(t, []int64{b.ID}, activeIDs(m))
	require.Equal(t, []int64{b.ID}, sidebarIDs(m))

	m = press(m, "alt+7")
	require.Equal(t, []int64{a.ID}, activeIDs(m))
}

func TestDeleteIgnoredWhileEditing(t *testing.T) {
	store := newFakeStore()
	a := store.add("A", model.ScheduledNone)
	m := newTestModel(t, store, model.CategoryView(model.Inbox))

	m = press(m, "down", "enter", "d")
	require.False(t, store.get(a.ID).IsDeleted())
	require.Equal(t, "Ad", store.get(a.ID).Title)
}

func TestReconcileRefetchesPendingView(t *testing.T) {
	store := newFakeStore()
	a := store.add("A", model.ScheduledAnytime)
	m := newTestModel(t, store, model.CategoryView(model.Anytime))
	m = press(m, "down")

	m, writeCmd := send(m, keyMsg("ctrl+x"))
	viewCmd := m.setView(model.CategoryView(model.Logbook))

	// the Logbook query reads the store before the completion is stored
	early := exec(viewCmd)
	require.Len(t, early, 1)
	seq := m.viewSeq

	m = settle(m, writeCmd)
	require.True(t, store.get(a.ID).IsCompleted())
	require.Greater(t, m.viewSeq, seq)
	require.True(t, m.view.Equal(model.CategoryView(model.Logbook)))
	require.Equal(t, []int64{a.ID}, activeIDs(m))
	require.Equal(t, "Idle", m.sel.String())

	// the reply to the first query arrives last and is dropped
	m, _ = send(m, early[0])
	require.Nil(t, m.pending)
	require.Equal(t, []int64{a.ID}, activeIDs(m))
}

func TestDetailViewShowsChildrenAndAddsSubtasks(t *testing.T) {
	store := newFakeStore()
	parent := store.add("Trip", model.ScheduledAnytime)
	child := store.addChild(parent, "Book flights")

	m := newTestModel(t, store, model.CategoryView(model.Anytime))
	require.Equal(t, []int64{parent.ID}, sidebarIDs(m))

	m = press(m, "down", "o")
	require.True(t, m.view.Equal(model.TaskView(parent.ID)))
	require.Equal(t, []int64{child.ID}, activeIDs(m))
	require.Contains(t, m.View(), "Book flights")

	m = press(m, "a")
	require.Len(t, activeIDs(m), 2)
	require.Equal(t, selection.Editing, m.sel.Phase())
	require.Equal(t, []int64{parent.ID}, sidebarIDs(m))
	require.Len(t, m.detail.Children, 2)

	tc, err := store.GetTask(t.Context(), parent.ID)
	require.NoError(t, err)
	require.Len(t, tc.Children, 2)
}

func TestDetailEditorUpdatesTitleAndNotes(t *testing.T) {
	store := newFakeStore()
	task := store.add("Call", model.ScheduledNone)
	m := newTestModel(t, store, model.TaskView(task.ID))

	m = press(m, "e", "!", "tab", "h", "i", "esc")
	require.False(t, m.editor.focused())
	require.Equal(t, "Call!", m.detail.Task.Title)
	require.Equal(t, "Call!", store.get(task.ID).Title)
	require.Equal(t, "hi", store.get(task.ID).Description)

	sidebarTask, _ := m.sidebar.At(0)
	require.Equal(t, "Call!", sidebarTask.Title)
}

func TestBackGoesToParentThenCategory(t *testing.T) {
	store := newFakeStore()
	parent := store.add("Trip", model.ScheduledSomeday)
	child := store.addChild(parent, "Pack")

	m := newTestModel(t, store, model.CategoryView(model.Someday))
	m = settle(m, m.setView(model.TaskView(child.ID)))

	m = press(m, "left")
	require.True(t, m.view.Equal(model.TaskView(parent.ID)))

	m = press(m, "backspace")
	require.True(t, m.view.Equal(model.CategoryView(model.Someday)))
}

func TestMouseSelectsRowsAndSidebarEntries(t *testing.T) {
	store := newFakeStore()
	a := store.add("A", model.ScheduledNone)
	b := store.add("B", model.ScheduledNone)
	m := newTestModel(t, store, model.CategoryView(model.Inbox))

	click := func(m RootModel, x, y int) RootModel {
		m, cmd := send(m, tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
		return settle(m, cmd)
	}

	rowsTop := headerHeight + len(m.mainPrefix().lines)
	m = click(m, sidebarWidth+5, rowsTop+1)
	require.Equal(t, "Selected(1)", m.sel.String())

	m = click(m, sidebarWidth+5, rowsTop+10)
	require.Equal(t, selection.Idle, m.sel.Phase())

	// third sidebar line is Today; the first root task follows the spacers
	m = click(m, 2, headerHeight+2)
	require.True(t, m.view.Equal(model.CategoryView(model.Today)))

	m = click(m, 2, headerHeight+10)
	require.True(t, m.view.Equal(model.TaskView(a.ID)))
	m = click(m, 2, headerHeight+11)
	require.True(t, m.view.Equal(model.TaskView(b.ID)))
}

func TestSearchOpensChosenTask(t *testing.T) {
	store := newFakeStore()
	store.add("Buy milk", model.ScheduledNone)
	oat := store.add("Oat milk recipe", model.ScheduledSomeday)
	m := newTestModel(t, store, model.CategoryView(model.Inbox))

	m = press(m, "ctrl+k", "m", "i", "l", "k")
	require.True(t, m.search.visible)
	require.Len(t, m.search.results, 2)

	m = press(m, "down", "enter")
	require.False(t, m.search.visible)
	require.True(t, m.view.Equal(model.TaskView(oat.ID)))
}

func TestStaleSearchResultsAreDropped(t *testing.T) {
	store := newFakeStore()
	m := newTestModel(t, store, model.CategoryView(model.Inbox))
	m = press(m, "ctrl+k")

	stale := searchResultsMsg{seq: m.search.seq - 1, tasks: []model.Task{{ID: 42, Title: "old"}}}
	m, _ = send(m, stale)
	require.Empty(t, m.search.results)

	fresh := searchResultsMsg{seq: m.search.seq, tasks: []model.Task{{ID: 7, Title: "new"}}}
	m, _ = send(m, fresh)
	require.Len(t, m.search.results, 1)
}

func TestQuitKeys(t *testing.T) {
	store := newFakeStore()
	store.add("A", model.ScheduledNone)
	m := newTestModel(t, store, model.CategoryView(model.Inbox))

	_, cmd := send(m, keyMsg("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())

	// q is typed while editing; ctrl+c still quits
	m = press(m, "down", "enter")
	m, _ = send(m, keyMsg("q"))
	task, _ := m.active.At(0)
	require.True(t, strings.HasSuffix(task.Title, "q"))

	_, cmd = send(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestDrainWritesPendingEdits(t *testing.T) {
	store := newFakeStore()
	a := store.add("", model.ScheduledNone)
	m := newTestModel(t, store, model.CategoryView(model.Inbox))
	m = press(m, "down", "enter")

	// the debounce tick is never delivered, as when the program quits
	m, _ = send(m, keyMsg("z"))
	require.Equal(t, 1, m.PendingWrites())

	require.NoError(t, m.Drain(t.Context()))
	require.Equal(t, "z", store.get(a.ID).Title)
	require.Zero(t, m.PendingWrites())
}

func TestCopyTitle(t *testing.T) {
	store := newFakeStore()
	store.add("Pay rent", model.ScheduledNone)
	m := newTestModel(t, store, model.CategoryView(model.Inbox))

	var copied string
	m.copyText = func(s string) error {
		copied = s
		return nil
	}

	m = press(m, "y")
	require.Empty(t, copied)

	m = press(m, "down", "y")
	require.Equal(t, "Pay rent", copied)
	require.Equal(t, "Copied title", m.statusMsg)
}

func TestThemeSavesKeepNewestChoice(t *testing.T) {
	var mu sync.Mutex
	var saved []string
	s := newThemeSaver(func(name string) error {
		mu.Lock()
		defer mu.Unlock()
		saved = append(saved, name)
		return nil
	})

	first := s.choose("dracula")
	second := s.choose("gruvbox")

	// the commands may run in any order
	require.Nil(t, second())
	require.Nil(t, first())
	require.Equal(t, []string{"gruvbox"}, saved)

	require.Nil(t, newThemeSaver(nil).choose("nord"))
}
