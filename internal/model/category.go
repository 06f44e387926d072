package model

import (
	"fmt"
	"strings"
)

// Category is one of the fixed task buckets shown in the sidebar
type Category int

const (
	Inbox Category = iota
	Today
	Upcoming
	Anytime
	Someday
	Logbook
	Trash
)

// Categories returns every category in sidebar order
func Categories() []Category {
	return []Category{Inbox, Today, Upcoming, Anytime, Someday, Logbook, Trash}
}

// String returns the display name for a category
func (c Category) String() string {
	switch c {
	case Inbox:
		return "Inbox"
	case Today:
		return "Today"
	case Upcoming:
		return "Upcoming"
	case Anytime:
		return "Anytime"
	case Someday:
		return "Someday"
	case Logbook:
		return "Logbook"
	case Trash:
		return "Trash"
	default:
		return "Unknown"
	}
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	return c >= Inbox && c <= Trash
}

// ParseCategory parses a category name, case-insensitively
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if strings.EqualFold(c.String(), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return Inbox, fmt.Errorf("unknown category %q", s)
}
