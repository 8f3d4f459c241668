package models

import (
	"fmt"
	"strings"
)

// FilterField is one of the columns a task list may be filtered on.
type FilterField string

const (
	FilterCategory FilterField = "category"
	FilterDueDate  FilterField = "due_date"
	FilterStatus   FilterField = "status"
	FilterPriority FilterField = "priority"
)

var FilterFields = []FilterField{FilterCategory, FilterDueDate, FilterStatus, FilterPriority}

// ParseFilterField maps user input onto a FilterField. Surrounding whitespace
// and case are ignored; anything outside FilterFields is rejected.
func ParseFilterField(s string) (FilterField, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, f := range FilterFields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFilterField, s)
}

func FilterFieldNames() string {
	names := make([]string, len(FilterFields))
	for i, f := range FilterFields {
		names[i] = string(f)
	}
	return strings.Join(names, "/")
}
