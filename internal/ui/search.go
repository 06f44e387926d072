package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/tasksrus/internal/model"
)

// searchOverlay is the ctrl+k title search. Each keystroke fires a query;
// results for anything but the newest query are dropped.
type searchOverlay struct {
	visible bool
	input   textinput.Model
	results []model.Task
	cursor  int
	seq     uint64
	err     string
}

func newSearchOverlay() searchOverlay {
	ti := textinput.New()
	ti.Placeholder = "Search tasks..."
	ti.Prompt = "> "
	ti.CharLimit = 100
	return searchOverlay{input: ti}
}

func (s *searchOverlay) open() tea.Cmd {
	s.visible = true
	s.input.SetValue("")
	s.results = nil
	s.cursor = 0
	s.err = ""
	s.seq++
	return s.input.Focus()
}

func (s *searchOverlay) close() {
	s.visible = false
	s.input.Blur()
	s.seq++
}

// setResults applies results if they answer the newest query
func (s *searchOverlay) setResults(msg searchResultsMsg) bool {
	if msg.seq != s.seq || !s.visible {
		return false
	}
	if msg.err != nil {
		s.err = msg.err.Error()
		s.results = nil
	} else {
		s.err = ""
		s.results = msg.tasks
	}
	s.cursor = 0
	return true
}

func (s *searchOverlay) move(delta int) {
	if len(s.results) == 0 {
		return
	}
	s.cursor += delta
	if s.cursor < 0 {
		s.cursor = 0
	}
	if s.cursor >= len(s.results) {
		s.cursor = len(s.results) - 1
	}
}

func (s searchOverlay) chosen() (model.Task, bool) {
	if s.cursor < 0 || s.cursor >= len(s.results) {
		return model.Task{}, false
	}
	return s.results[s.cursor], true
}
