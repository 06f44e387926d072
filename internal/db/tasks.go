package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dori/tasksrus/internal/model"
	"github.com/google/uuid"
)

const taskColumns = `t.id, t.uid, t.title, t.description, t.scheduled, t.completed, t.deleted`

// bucketExpr mirrors model.Task.Bucket. The single parameter is today's date.
const bucketExpr = `
	CASE
		WHEN t.deleted IS NOT NULL THEN 'trash'
		WHEN t.completed IS NOT NULL THEN 'logbook'
		WHEN t.scheduled = 'anytime' THEN 'anytime'
		WHEN t.scheduled = 'someday' THEN 'someday'
		WHEN t.scheduled GLOB '[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]' THEN
			CASE WHEN t.scheduled > ? THEN 'upcoming' ELSE 'today' END
		ELSE 'inbox'
	END`

// RootTasks returns tasks that are not a subtask of anything, for the sidebar
func (db *DB) RootTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t
		WHERE t.deleted IS NULL
		  AND NOT EXISTS (SELECT 1 FROM links l WHERE l.child_id = t.id)
		ORDER BY t.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query root tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// TasksForCategory returns the tasks whose derived bucket is c
func (db *DB) TasksForCategory(ctx context.Context, c model.Category) ([]model.Task, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown category %d", int(c))
	}
	rows, err := db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t
		WHERE (`+bucketExpr+`) = ?
		ORDER BY t.id
	`, time.Now().Format(model.DayLayout), strings.ToLower(c.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c, err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// GetTask returns a task with its parents and children
func (db *DB) GetTask(ctx context.Context, id int64) (*model.TaskContext, error) {
	row := db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = ?`, id)
	task, err := scanTaskRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task %d: %w", id, err)
	}

	parents, err := db.linked(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t JOIN links l ON l.parent_id = t.id
		WHERE l.child_id = ?
		ORDER BY t.id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get parents of %d: %w", id, err)
	}

	children, err := db.linked(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t JOIN links l ON l.child_id = t.id
		WHERE l.parent_id = ? AND t.deleted IS NULL
		ORDER BY t.id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get children of %d: %w", id, err)
	}

	return &model.TaskContext{Task: *task, Parents: parents, Children: children}, nil
}

func (db *DB) linked(ctx context.Context, query string, id int64) ([]model.Task, error) {
	rows, err := db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateTask inserts an empty, unscheduled task
func (db *DB) CreateTask(ctx context.Context) (*model.Task, error) {
	return insertTask(ctx, db.DB)
}

// CreateSubtask inserts an empty task linked under parentID. Both happen
// or neither does.
func (db *DB) CreateSubtask(ctx context.Context, parentID int64) (*model.Task, error) {
	var task *model.Task
	err := db.Transaction(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE id = ? AND deleted IS NULL`, parentID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("parent task %d: %w", parentID, model.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to look up parent %d: %w", parentID, err)
		}

		t, err := insertTask(ctx, tx)
		if err != nil {
			return err
		}
		if err := link(ctx, tx, parentID, t.ID); err != nil {
			return err
		}
		task = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func insertTask(ctx context.Context, ex execer) (*model.Task, error) {
	uid := uuid.NewString()
	res, err := ex.ExecContext(ctx, `INSERT INTO tasks (uid) VALUES (?)`, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new task id: %w", err)
	}
	return &model.Task{ID: id, UID: uid}, nil
}

// UpdateTask writes the full task snapshot
func (db *DB) UpdateTask(ctx context.Context, task model.Task) error {
	if _, err := model.ParseScheduled(string(task.Scheduled)); err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, scheduled = ?, completed = ?, deleted = ?
		WHERE id = ?
	`, task.Title, task.Description, string(task.Scheduled),
		formatDay(task.Completed), formatDay(task.Deleted), task.ID)
	if err != nil {
		return fmt.Errorf("failed to update task %d: %w", task.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update task %d: %w", task.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("task %d: %w", task.ID, model.ErrNotFound)
	}
	return nil
}

// Search returns live tasks whose title contains query.
// A blank query matches nothing.
func (db *DB) Search(ctx context.Context, query string) ([]model.Task, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Task{}, nil
	}

	pattern := "%" + likeEscaper.Replace(query) + "%"
	rows, err := db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t
		WHERE t.deleted IS NULL AND t.title LIKE ? ESCAPE '\'
		ORDER BY t.id
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Helper functions

func formatDay(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(model.DayLayout)
}

func parseDay(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	parsed, err := time.Parse(model.DayLayout, *s)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func scanTasks(rows *sql.Rows) ([]model.Task, error) {
	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTaskRow(s scanner) (*model.Task, error) {
	var t model.Task
	var scheduled string
	var completed, deleted *string

	err := s.Scan(&t.ID, &t.UID, &t.Title, &t.Description, &scheduled, &completed, &deleted)
	if err != nil {
		return nil, err
	}

	t.Scheduled = model.Scheduled(scheduled)
	if t.Completed, err = parseDay(completed); err != nil {
		return nil, fmt.Errorf("task %d: bad completed date: %w", t.ID, err)
	}
	if t.Deleted, err = parseDay(deleted); err != nil {
		return nil, fmt.Errorf("task %d: bad deleted date: %w", t.ID, err)
	}

	return &t, nil
}
