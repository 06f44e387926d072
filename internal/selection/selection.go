// Package selection is the keyboard cursor over a rendered task list.
//
// A Controller is Idle (no cursor), Selected(i), or Editing(i). Only one row
// can be in text-edit mode at a time, and moving the cursor off a row always
// closes its editor first. The controller never owns task data; callers
// pass the current list length n to every transition that depends on it.
package selection

import "fmt"

// Phase is the coarse state of a Controller
type Phase int

const (
	Idle Phase = iota
	Selected
	Editing
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Selected:
		return "selected"
	case Editing:
		return "editing"
	default:
		return "unknown"
	}
}

const none = -1

// Controller tracks the cursor and edit sub-state.
// The zero value is not Idle; use New.
type Controller struct {
	cursor  int
	editing bool
}

// New returns an Idle controller
func New() Controller {
	return Controller{cursor: none}
}

// Phase returns the current state
func (c Controller) Phase() Phase {
	switch {
	case c.cursor == none:
		return Idle
	case c.editing:
		return Editing
	default:
		return Selected
	}
}

// Cursor returns the selected row, if any
func (c Controller) Cursor() (int, bool) {
	return c.cursor, c.cursor != none
}

// Editing reports whether the selected row is open for editing
func (c Controller) Editing() bool {
	return c.editing
}

func (c Controller) String() string {
	if c.cursor == none {
		return "Idle"
	}
	if c.editing {
		return fmt.Sprintf("Editing(%d)", c.cursor)
	}
	return fmt.Sprintf("Selected(%d)", c.cursor)
}

// Down moves the cursor one row down (Down or Tab). From Idle it selects
// the first row. It stops at the last row.
func (c *Controller) Down(n int) {
	if n <= 0 {
		return
	}
	c.editing = false
	switch {
	case c.cursor == none:
		c.cursor = 0
	case c.cursor < n-1:
		c.cursor++
	}
}

// Up moves the cursor one row up (Up or Shift+Tab). From Idle it selects
// the last row. It stops at the first row.
func (c *Controller) Up(n int) {
	if n <= 0 {
		return
	}
	c.editing = false
	switch {
	case c.cursor == none:
		c.cursor = n - 1
	case c.cursor > 0:
		c.cursor--
	}
}

// Enter toggles the editor on the selected row. It does nothing when Idle.
func (c *Controller) Enter() {
	if c.cursor == none {
		return
	}
	c.editing = !c.editing
}

// Escape closes the editor, or deselects when not editing
func (c *Controller) Escape() {
	if c.editing {
		c.editing = false
		return
	}
	c.cursor = none
}

// Click selects row j directly, closing any editor
func (c *Controller) Click(j, n int) {
	if j < 0 || j >= n {
		return
	}
	c.cursor = j
	c.editing = false
}

// ClickOutside deselects
func (c *Controller) ClickOutside() {
	c.Reset()
}

// Select puts the cursor on row j, opening the editor if edit is set
func (c *Controller) Select(j, n int, edit bool) {
	if j < 0 || j >= n {
		return
	}
	c.cursor = j
	c.editing = edit
}

// Reset returns to Idle. Call it whenever the list identity changes so a
// stale index is never applied to a different list.
func (c *Controller) Reset() {
	c.cursor = none
	c.editing = false
}

// Clamp keeps the cursor valid after the same list was reloaded with n rows
func (c *Controller) Clamp(n int) {
	if c.cursor == none {
		return
	}
	if n <= 0 {
		c.Reset()
		return
	}
	if c.cursor >= n {
		c.cursor = n - 1
		c.editing = false
	}
}
