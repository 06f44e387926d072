package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/tasksrus/internal/model"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory TaskStore
type fakeStore struct {
	mu        sync.Mutex
	now       time.Time
	tasks     map[int64]model.Task
	order     []int64
	children  map[int64][]int64
	nextID    int64
	updates   []model.Task
	updateErr error
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		now:      time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local),
		tasks:    make(map[int64]model.Task),
		children: make(map[int64][]int64),
	}
}

// add stores a task with the given title and schedule and returns it
func (s *fakeStore) add(title string, scheduled model.Scheduled) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t := model.Task{ID: s.nextID, UID: fmt.Sprintf("uid-%d", s.nextID), Title: title, Scheduled: scheduled}
	s.tasks[t.ID] = t
	s.order = append(s.order, t.ID)
	return t
}

func (s *fakeStore) addChild(parent model.Task, title string) model.Task {
	child := s.add(title, model.ScheduledNone)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children[parent.ID] = append(s.children[parent.ID], child.ID)
	return child
}

func (s *fakeStore) get(id int64) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[id]
}

func (s *fakeStore) isChild(id int64) bool {
	for _, kids := range s.children {
		for _, k := range kids {
			if k == id {
				return true
			}
		}
	}
	return false
}

func (s *fakeStore) RootTasks(ctx context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Task{}
	for _, id := range s.order {
		t := s.tasks[id]
		if !t.IsDeleted() && !s.isChild(id) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeStore) TasksForCategory(ctx context.Context, c model.Category) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Task{}
	for _, id := range s.order {
		t := s.tasks[id]
		if t.InCategory(c, s.now) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeStore) GetTask(ctx context.Context, id int64) (*model.TaskContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %d: %w", id, model.ErrNotFound)
	}
	tc := &model.TaskContext{Task: t, Parents: []model.Task{}, Children: []model.Task{}}
	for parent, kids := range s.children {
		for _, k := range kids {
			if k == id {
				tc.Parents = append(tc.Parents, s.tasks[parent])
			}
		}
	}
	for _, k := range s.children[id] {
		if !s.tasks[k].IsDeleted() {
			tc.Children = append(tc.Children, s.tasks[k])
		}
	}
	return tc, nil
}

func (s *fakeStore) CreateTask(ctx context.Context) (*model.Task, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	t := s.add("", model.ScheduledNone)
	return &t, nil
}

func (s *fakeStore) UpdateTask(ctx context.Context, task model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, task)
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.tasks[task.ID]; !ok {
		return model.ErrNotFound
	}
	s.tasks[task.ID] = task
	return nil
}

func (s *fakeStore) Search(ctx context.Context, query string) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Task{}
	for _, id := range s.order {
		t := s.tasks[id]
		if !t.IsDeleted() && strings.Contains(strings.ToLower(t.Title), strings.ToLower(query)) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateSubtask(ctx context.Context, parentID int64) (*model.Task, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.get(parentID).ID == 0 {
		return nil, model.ErrNotFound
	}
	t := s.add("", model.ScheduledNone)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children[parentID] = append(s.children[parentID], t.ID)
	return &t, nil
}

// exec runs cmd and returns the messages it produced. Commands that do not
// finish promptly (cursor blink timers) are abandoned.
func exec(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, exec(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// ours reports whether msg is one of the coordinator's result messages
func ours(msg tea.Msg) bool {
	switch msg.(type) {
	case viewResolvedMsg, sidebarLoadedMsg, taskCreatedMsg, persistDueMsg,
		taskWrittenMsg, searchResultsMsg, ErrorMsg, StatusMsg:
		return true
	}
	return false
}

func send(m RootModel, msg tea.Msg) (RootModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(RootModel), cmd
}

// settle runs cmd and feeds its results back until nothing is left
func settle(m RootModel, cmd tea.Cmd) RootModel {
	queue := exec(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		if !ours(msg) {
			continue
		}
		var next tea.Cmd
		m, next = send(m, msg)
		queue = append(queue, exec(next)...)
	}
	return m
}

// press sends a key and settles everything it started
func press(m RootModel, keys ...string) RootModel {
	for _, k := range keys {
		var cmd tea.Cmd
		m, cmd = send(m, keyMsg(k))
		m = settle(m, cmd)
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+k":
		return tea.KeyMsg{Type: tea.KeyCtrlK}
	}
	if strings.HasPrefix(k, "alt+") {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(strings.TrimPrefix(k, "alt+")), Alt: true}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// newTestModel builds a sized coordinator over store, started on view
func newTestModel(t *testing.T, store *fakeStore, view model.View) RootModel {
	t.Helper()
	m := NewRootModel(store, Options{
		StartView: view,
		Debounce:  time.Millisecond,
		Timeout:   time.Second,
		Now:       func() time.Time { return store.now },
		Clipboard: func(string) error { return nil },
	})
	m, _ = send(m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = settle(m, m.Init())
	require.True(t, m.view.Equal(view), "start view = %s", m.view)
	require.Nil(t, m.pending)
	return m
}

func activeIDs(m RootModel) []int64 {
	ids := []int64{}
	for _, t := range m.active.Tasks() {
		ids = append(ids, t.ID)
	}
	return ids
}

func sidebarIDs(m RootModel) []int64 {
	ids := []int64{}
	for _, t := range m.sidebar.Tasks() {
		ids = append(ids, t.ID)
	}
	return ids
}
