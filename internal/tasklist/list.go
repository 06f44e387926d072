// Package tasklist holds an ordered list of tasks that can be patched in
// place without a refetch.
package tasklist

import "github.com/dori/tasksrus/internal/model"

// List is an ordered task sequence keyed by id. The store decides the
// order; the list never sorts.
type List struct {
	tasks []model.Task
	index map[int64]int
}

// New returns an empty list
func New() *List {
	return &List{index: make(map[int64]int)}
}

// Load replaces the contents wholesale, keeping the given order.
// If tasks repeats an id, the first occurrence wins.
func (l *List) Load(tasks []model.Task) {
	l.tasks = make([]model.Task, 0, len(tasks))
	l.index = make(map[int64]int, len(tasks))
	for _, t := range tasks {
		if _, dup := l.index[t.ID]; dup {
			continue
		}
		l.index[t.ID] = len(l.tasks)
		l.tasks = append(l.tasks, t)
	}
}

// Patch replaces the entry with task's id in place.
// It returns false, leaving the list untouched, when the id is not present.
func (l *List) Patch(task model.Task) bool {
	i, ok := l.index[task.ID]
	if !ok {
		return false
	}
	l.tasks[i] = task
	return true
}

// Append adds task to the end. An id already in the list is patched instead.
func (l *List) Append(task model.Task) {
	if l.Patch(task) {
		return
	}
	l.index[task.ID] = len(l.tasks)
	l.tasks = append(l.tasks, task)
}

// Len returns the number of tasks
func (l *List) Len() int {
	return len(l.tasks)
}

// At returns the task at position i
func (l *List) At(i int) (model.Task, bool) {
	if i < 0 || i >= len(l.tasks) {
		return model.Task{}, false
	}
	return l.tasks[i], true
}

// IndexOf returns the position of the task with the given id
func (l *List) IndexOf(id int64) (int, bool) {
	i, ok := l.index[id]
	return i, ok
}

// Contains reports whether a task with the given id is in the list
func (l *List) Contains(id int64) bool {
	_, ok := l.index[id]
	return ok
}

// Tasks returns a copy of the tasks in order
func (l *List) Tasks() []model.Task {
	out := make([]model.Task, len(l.tasks))
	copy(out, l.tasks)
	return out
}
