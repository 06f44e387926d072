package ui

import (
	"github.com/dori/tasksrus/internal/model"
)

// Messages for inter-component communication. Every backend result comes
// back as one of these; none of them are applied outside Update.

// viewResolvedMsg carries the data for a requested view
type viewResolvedMsg struct {
	seq       uint64
	view      model.View
	res       Resolution
	reconcile bool
	err       error
}

// sidebarLoadedMsg carries the root tasks
type sidebarLoadedMsg struct {
	seq   uint64
	tasks []model.Task
	err   error
}

// taskCreatedMsg indicates a task was created, possibly as a subtask
type taskCreatedMsg struct {
	task     model.Task
	parentID int64
	err      error
}

// persistDueMsg fires when a task's debounce gap has passed
type persistDueMsg struct {
	id  int64
	seq uint64
}

// taskWrittenMsg indicates a task snapshot write finished
type taskWrittenMsg struct {
	task      model.Task
	reconcile bool
	err       error
}

// searchResultsMsg carries search results for one query
type searchResultsMsg struct {
	seq   uint64
	tasks []model.Task
	err   error
}

// ErrorMsg contains an error to display
type ErrorMsg struct {
	Err error
}

// StatusMsg contains a status message to display
type StatusMsg struct {
	Message string
}
