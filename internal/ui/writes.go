package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/tasksrus/internal/model"
)

// pendingWrite is the persistence state of one task id
type pendingWrite struct {
	latest    model.Task
	dirty     bool   // latest has not been handed to a write yet
	seq       uint64 // seq of the newest schedule; debounce ticks carry it
	inFlight  bool
	due       bool // the debounce fired while a write was in flight
	failed    bool // the last write of latest failed; kept until one succeeds
	reconcile bool
}

// writeQueue coalesces task edits into whole-snapshot writes. Edits to one
// id are debounced; at most one write per id is in flight, and a write
// always sends the newest snapshot, so the last edit always wins.
//
// Only the update loop touches the queue. The commands it returns do the
// I/O and report back with persistDueMsg and taskWrittenMsg.
type writeQueue struct {
	store   TaskStore
	delay   time.Duration
	timeout time.Duration
	entries map[int64]*pendingWrite
	seq     uint64 // never reused, so a tick for a dropped entry cannot match a new one
}

func newWriteQueue(store TaskStore, delay, timeout time.Duration) *writeQueue {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &writeQueue{
		store:   store,
		delay:   delay,
		timeout: timeout,
		entries: make(map[int64]*pendingWrite),
	}
}

// schedule records task as the snapshot to persist. Immediate writes skip
// the debounce; reconcile asks for the views to be refreshed once the
// write lands.
func (q *writeQueue) schedule(task model.Task, immediate, reconcile bool) tea.Cmd {
	e, ok := q.entries[task.ID]
	if !ok {
		e = &pendingWrite{}
		q.entries[task.ID] = e
	}
	e.latest = task
	e.dirty = true
	q.seq++
	e.seq = q.seq
	e.reconcile = e.reconcile || reconcile

	if immediate || q.delay <= 0 {
		return q.flush(task.ID)
	}

	id, seq := task.ID, e.seq
	return tea.Tick(q.delay, func(time.Time) tea.Msg {
		return persistDueMsg{id: id, seq: seq}
	})
}

// onDue handles a debounce tick. Ticks superseded by a newer edit are ignored.
func (q *writeQueue) onDue(msg persistDueMsg) tea.Cmd {
	e, ok := q.entries[msg.id]
	if !ok || e.seq != msg.seq {
		return nil
	}
	return q.flush(msg.id)
}

// flush starts a write of the latest snapshot, or defers it until the
// in-flight write for the same id returns.
func (q *writeQueue) flush(id int64) tea.Cmd {
	e, ok := q.entries[id]
	if !ok || !e.dirty {
		return nil
	}
	if e.inFlight {
		e.due = true
		return nil
	}

	snapshot, reconcile := e.latest, e.reconcile
	e.dirty = false
	e.due = false
	e.failed = false
	e.reconcile = false
	e.inFlight = true

	return q.writeCmd(snapshot, reconcile)
}

func (q *writeQueue) writeCmd(task model.Task, reconcile bool) tea.Cmd {
	store, timeout := q.store, q.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var werr error
		if err := store.UpdateTask(ctx, task); err != nil {
			werr = &WriteError{Op: "update", TaskID: task.ID, Err: err}
		}
		return taskWrittenMsg{task: task, reconcile: reconcile, err: werr}
	}
}

// onWritten handles a finished write and starts the next one if an edit
// arrived in the meantime. A failed snapshot stays queued so refetches keep
// showing it; it is dropped once a later write for the task succeeds.
func (q *writeQueue) onWritten(msg taskWrittenMsg) tea.Cmd {
	e, ok := q.entries[msg.task.ID]
	if !ok {
		return nil
	}
	e.inFlight = false

	if e.dirty && e.due {
		return q.flush(msg.task.ID)
	}
	if e.dirty {
		return nil
	}
	if msg.err != nil {
		e.failed = true
		return nil
	}
	delete(q.entries, msg.task.ID)
	return nil
}

// snapshot returns the newest local version of a task with unsaved or
// in-flight changes
func (q *writeQueue) snapshot(id int64) (model.Task, bool) {
	e, ok := q.entries[id]
	if !ok {
		return model.Task{}, false
	}
	return e.latest, true
}

// pending returns the tasks whose latest snapshot may not be stored yet,
// failed writes included
func (q *writeQueue) pending() []model.Task {
	out := make([]model.Task, 0, len(q.entries))
	for _, e := range q.entries {
		out = append(out, e.latest)
	}
	return out
}

// drain writes every outstanding snapshot synchronously. It is meant for
// shutdown, after the update loop has stopped.
func (q *writeQueue) drain(ctx context.Context) error {
	var errs []error
	for id, e := range q.entries {
		if err := q.store.UpdateTask(ctx, e.latest); err != nil {
			errs = append(errs, &WriteError{Op: "update", TaskID: id, Err: err})
			continue
		}
		delete(q.entries, id)
	}
	return errors.Join(errs...)
}
