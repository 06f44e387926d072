package model

import "fmt"

// ViewKind discriminates the View variants
type ViewKind int

const (
	ViewCategory ViewKind = iota
	ViewTask
)

// View is what the main pane shows: a category list or one task's detail.
// Build it with CategoryView or TaskView; only the field matching Kind is meaningful.
type View struct {
	Kind     ViewKind
	Category Category
	TaskID   int64
}

// CategoryView returns the view for a category list
func CategoryView(c Category) View {
	return View{Kind: ViewCategory, Category: c}
}

// TaskView returns the detail view for a task
func TaskView(id int64) View {
	return View{Kind: ViewTask, TaskID: id}
}

// DefaultView is where the app starts and where it falls back to
func DefaultView() View {
	return CategoryView(Inbox)
}

func (v View) IsCategory() bool { return v.Kind == ViewCategory }

func (v View) IsTask() bool { return v.Kind == ViewTask }

// Equal compares only the fields that matter for v's kind
func (v View) Equal(o View) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ViewCategory:
		return v.Category == o.Category
	case ViewTask:
		return v.TaskID == o.TaskID
	default:
		return false
	}
}

func (v View) String() string {
	switch v.Kind {
	case ViewCategory:
		return v.Category.String()
	case ViewTask:
		return fmt.Sprintf("task #%d", v.TaskID)
	default:
		return "unknown view"
	}
}
