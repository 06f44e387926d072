package model

import (
	"errors"
	"fmt"
	"time"
)

// DayLayout is the storage and display format for calendar days
const DayLayout = "2006-01-02"

// PlaceholderTitle is shown wherever a task has no title yet
const PlaceholderTitle = "New Task"

// ErrNotFound is returned when a task id is unknown to the store
var ErrNotFound = errors.New("task not found")

// Scheduled says when a task is meant to be worked on.
// The zero value means unscheduled, which puts the task in the Inbox.
type Scheduled string

const (
	ScheduledNone    Scheduled = ""
	ScheduledAnytime Scheduled = "anytime"
	ScheduledSomeday Scheduled = "someday"
)

// ScheduledOn returns a Scheduled pinned to a calendar day
func ScheduledOn(day time.Time) Scheduled {
	return Scheduled(day.Format(DayLayout))
}

// ParseScheduled validates a stored or user supplied schedule
func ParseScheduled(s string) (Scheduled, error) {
	switch Scheduled(s) {
	case ScheduledNone, ScheduledAnytime, ScheduledSomeday:
		return Scheduled(s), nil
	}
	if _, err := time.Parse(DayLayout, s); err != nil {
		return ScheduledNone, fmt.Errorf("invalid schedule %q: want anytime, someday or YYYY-MM-DD", s)
	}
	return Scheduled(s), nil
}

// Day returns the calendar day for day schedules
func (s Scheduled) Day() (time.Time, bool) {
	switch s {
	case ScheduledNone, ScheduledAnytime, ScheduledSomeday:
		return time.Time{}, false
	}
	d, err := time.Parse(DayLayout, string(s))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Task represents a todo item
type Task struct {
	ID          int64      `json:"id"`
	UID         string     `json:"uid"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Scheduled   Scheduled  `json:"scheduled"`
	Completed   *time.Time `json:"completed,omitempty"`
	Deleted     *time.Time `json:"deleted,omitempty"`
}

// TaskContext is a task together with the tasks it is linked to
type TaskContext struct {
	Task     Task
	Parents  []Task
	Children []Task
}

// IsCompleted returns true if the task has been checked off
func (t Task) IsCompleted() bool {
	return t.Completed != nil
}

// IsDeleted returns true if the task is in the trash
func (t Task) IsDeleted() bool {
	return t.Deleted != nil
}

// Bucket derives the category a task belongs to. It is never stored.
func (t Task) Bucket(now time.Time) Category {
	if t.Deleted != nil {
		return Trash
	}
	if t.Completed != nil {
		return Logbook
	}
	switch t.Scheduled {
	case ScheduledNone:
		return Inbox
	case ScheduledAnytime:
		return Anytime
	case ScheduledSomeday:
		return Someday
	}
	day, ok := t.Scheduled.Day()
	if !ok {
		return Inbox
	}
	if day.After(today(now)) {
		return Upcoming
	}
	return Today
}

// InCategory reports whether the task shows up in category c
func (t Task) InCategory(c Category, now time.Time) bool {
	return t.Bucket(now) == c
}

// DisplayTitle returns the title, or the placeholder for untitled tasks
func DisplayTitle(t Task) string {
	if t.Title == "" {
		return PlaceholderTitle
	}
	return t.Title
}

// WithCompleted returns a copy of t checked off at now, or unchecked
func (t Task) WithCompleted(done bool, now time.Time) Task {
	if done {
		stamp := today(now)
		t.Completed = &stamp
	} else {
		t.Completed = nil
	}
	return t
}

// WithDeleted returns a copy of t moved to the trash at now, or restored
func (t Task) WithDeleted(deleted bool, now time.Time) Task {
	if deleted {
		stamp := today(now)
		t.Deleted = &stamp
	} else {
		t.Deleted = nil
	}
	return t
}

// today truncates now to midnight UTC of the local calendar day, matching
// how days are parsed from DayLayout.
func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
