package ui

import (
	"context"

	"github.com/dori/tasksrus/internal/model"
)

// TaskStore is the backend the coordinator reads from and writes to.
// Every call may be slow or fail; none of them touch UI state.
type TaskStore interface {
	RootTasks(ctx context.Context) ([]model.Task, error)
	TasksForCategory(ctx context.Context, c model.Category) ([]model.Task, error)
	GetTask(ctx context.Context, id int64) (*model.TaskContext, error)
	CreateTask(ctx context.Context) (*model.Task, error)
	UpdateTask(ctx context.Context, task model.Task) error
	Search(ctx context.Context, query string) ([]model.Task, error)
	// CreateSubtask creates a task linked under parentID in one step
	CreateSubtask(ctx context.Context, parentID int64) (*model.Task, error)
}
