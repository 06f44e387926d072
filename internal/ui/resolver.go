package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/tasksrus/internal/model"
)

// Resolution is everything needed to render one view
type Resolution struct {
	View model.View
	// Tasks is the active list: a category's tasks, or a task's children
	Tasks []model.Task
	// Detail is set for task views only
	Detail *model.TaskContext
}

// Resolver fetches view data from the store. It holds no UI state, so its
// commands are safe to run off the update loop.
type Resolver struct {
	store   TaskStore
	timeout time.Duration
}

// NewResolver creates a resolver whose calls give up after timeout
func NewResolver(store TaskStore, timeout time.Duration) Resolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return Resolver{store: store, timeout: timeout}
}

// Resolve fetches the data for view
func (r Resolver) Resolve(ctx context.Context, view model.View) (Resolution, error) {
	switch view.Kind {
	case model.ViewCategory:
		tasks, err := r.store.TasksForCategory(ctx, view.Category)
		if err != nil {
			return Resolution{}, fmt.Errorf("failed to load %s: %w", view.Category, err)
		}
		return Resolution{View: view, Tasks: tasks}, nil

	case model.ViewTask:
		tc, err := r.store.GetTask(ctx, view.TaskID)
		if err != nil {
			return Resolution{}, fmt.Errorf("failed to load task %d: %w", view.TaskID, err)
		}
		return Resolution{View: view, Tasks: tc.Children, Detail: tc}, nil

	default:
		return Resolution{}, fmt.Errorf("unknown view kind %d", view.Kind)
	}
}

// Cmd resolves view in the background, tagging the result with seq
func (r Resolver) Cmd(view model.View, seq uint64, reconcile bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		res, err := r.Resolve(ctx, view)
		return viewResolvedMsg{seq: seq, view: view, res: res, reconcile: reconcile, err: err}
	}
}

// SidebarCmd fetches the root tasks in the background
func (r Resolver) SidebarCmd(seq uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		tasks, err := r.store.RootTasks(ctx)
		if err != nil {
			err = fmt.Errorf("failed to load tasks: %w", err)
		}
		return sidebarLoadedMsg{seq: seq, tasks: tasks, err: err}
	}
}

// SearchCmd runs a title search in the background
func (r Resolver) SearchCmd(query string, seq uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		tasks, err := r.store.Search(ctx, query)
		if err != nil {
			err = fmt.Errorf("search failed: %w", err)
		}
		return searchResultsMsg{seq: seq, tasks: tasks, err: err}
	}
}

// CreateCmd creates a task, as a subtask of parentID when that is non-zero
func (r Resolver) CreateCmd(parentID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		var (
			task *model.Task
			err  error
		)
		if parentID == 0 {
			task, err = r.store.CreateTask(ctx)
		} else {
			task, err = r.store.CreateSubtask(ctx, parentID)
		}
		if err != nil {
			return taskCreatedMsg{parentID: parentID, err: &WriteError{Op: "create", Err: err}}
		}
		return taskCreatedMsg{task: *task, parentID: parentID}
	}
}
