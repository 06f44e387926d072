package ui

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/tasksrus/internal/model"
)

type detailField int

const (
	fieldNone detailField = iota
	fieldTitle
	fieldNotes
)

const notesHeight = 5

// detailEditor holds the title and notes inputs of the task detail view
type detailEditor struct {
	title textinput.Model
	notes textarea.Model
	focus detailField
}

func newDetailEditor() detailEditor {
	ti := textinput.New()
	ti.Placeholder = model.PlaceholderTitle
	ti.Prompt = ""
	ti.CharLimit = 200

	ta := textarea.New()
	ta.Placeholder = "Notes"
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.SetHeight(notesHeight)

	return detailEditor{title: ti, notes: ta}
}

// load shows task in the inputs and drops focus
func (e *detailEditor) load(task model.Task) {
	e.blur()
	e.title.SetValue(task.Title)
	e.notes.SetValue(task.Description)
}

func (e detailEditor) focused() bool {
	return e.focus != fieldNone
}

func (e *detailEditor) focusField(f detailField) tea.Cmd {
	e.blur()
	e.focus = f
	switch f {
	case fieldTitle:
		e.title.CursorEnd()
		return e.title.Focus()
	case fieldNotes:
		return e.notes.Focus()
	}
	return nil
}

// switchField moves focus between title and notes
func (e *detailEditor) switchField() tea.Cmd {
	if e.focus == fieldTitle {
		return e.focusField(fieldNotes)
	}
	return e.focusField(fieldTitle)
}

func (e *detailEditor) blur() {
	e.focus = fieldNone
	e.title.Blur()
	e.notes.Blur()
}

func (e *detailEditor) setWidth(w int) {
	if w < 10 {
		w = 10
	}
	e.title.Width = w
	e.notes.SetWidth(w)
}

// update feeds msg to the focused input and applies the result to task.
// changed is false when the text did not change.
func (e *detailEditor) update(msg tea.Msg, task model.Task) (model.Task, bool, tea.Cmd) {
	var cmd tea.Cmd
	switch e.focus {
	case fieldTitle:
		e.title, cmd = e.title.Update(msg)
		if v := e.title.Value(); v != task.Title {
			task.Title = v
			return task, true, cmd
		}
	case fieldNotes:
		e.notes, cmd = e.notes.Update(msg)
		if v := e.notes.Value(); v != task.Description {
			task.Description = v
			return task, true, cmd
		}
	}
	return task, false, cmd
}
