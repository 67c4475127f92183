package todo

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyTitle is returned by SaveEdit when the edit buffer is blank.
var ErrEmptyTitle = errors.New("task cannot be empty")

// Task represents a single task in the collection.
type Task struct {
	ID        int64  `json:"id" yaml:"id" toml:"id"`
	Title     string `json:"title" yaml:"title" toml:"title"`
	Completed bool   `json:"completed" yaml:"completed" toml:"completed"`
}

// Filter selects tasks by completion status.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters lists the filters in display order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterActive, FilterCompleted}
}

// ParseFilter parses a filter name. An empty string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "active", "todo", "open":
		return FilterActive, nil
	case "completed", "done":
		return FilterCompleted, nil
	default:
		return "", fmt.Errorf("invalid filter %q, must be one of: all, active, completed", s)
	}
}

// Next returns the filter after f, wrapping around.
func (f Filter) Next() Filter {
	switch f {
	case FilterAll:
		return FilterActive
	case FilterActive:
		return FilterCompleted
	default:
		return FilterAll
	}
}

// Match reports whether a task with the given completion state passes f.
func (f Filter) Match(completed bool) bool {
	switch f {
	case FilterActive:
		return !completed
	case FilterCompleted:
		return completed
	default:
		return true
	}
}

// ViewState is the presentation's derived-view configuration.
// It is never persisted.
type ViewState struct {
	Filter Filter
	Query  string
}

// DefaultViewState returns the view state used at startup.
func DefaultViewState() ViewState {
	return ViewState{Filter: FilterAll}
}

// Statistics holds counts derived from the collection.
// Total always equals Active + Completed.
type Statistics struct {
	Total     int `json:"total" yaml:"total"`
	Active    int `json:"active" yaml:"active"`
	Completed int `json:"completed" yaml:"completed"`
}

// EditSession tracks the task being renamed and its in-progress text.
type EditSession struct {
	TaskID int64
	Text   string
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // path to the error location, e.g. "[2].title"
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
