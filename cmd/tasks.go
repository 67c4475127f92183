package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nibzard/tasktracker/internal/todo"
)

// ErrTitleRequired is returned by add when the title is blank.
var ErrTitleRequired = errors.New("title required")

// ErrTaskNotFound is returned when a command names an unknown task id.
var ErrTaskNotFound = errors.New("task not found")

// ErrNotSaved is returned when a change applied but could not be written.
var ErrNotSaved = errors.New("changes not saved")

// saved reports the store's last write failure as an error.
func saved(store *todo.Store) error {
	if err := store.PersistIssue(); err != nil {
		return fmt.Errorf("%w: %v", ErrNotSaved, err)
	}
	return nil
}

func notFound(id int64) error {
	return fmt.Errorf("task %d not found: %w", id, ErrTaskNotFound)
}

func (a *app) addCommand(args []string) error {
	fs := newFlagSet("add", a.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	title := strings.Join(fs.Args(), " ")

	store, err := a.openStore()
	if err != nil {
		return err
	}
	task, ok := store.Add(title)
	if !ok {
		return ErrTitleRequired
	}
	if err := saved(store); err != nil {
		return err
	}
	a.openLogger().Info("task added", "id", task.ID)
	fmt.Fprintf(a.stdout, "Added %d: %s\n", task.ID, task.Title)
	return nil
}

func (a *app) lsCommand(args []string) error {
	fs := newFlagSet("ls", a.stderr)
	filterArg := fs.String("filter", "all", "Filter tasks (all, active, completed)")
	search := fs.String("search", "", "Case-insensitive title search")
	formatArg := fs.String("format", "text", "Output format (text, json, yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// A bare positional argument is accepted as the filter, e.g. "ls done".
	if fs.NArg() > 1 {
		return fmt.Errorf("%w: unexpected arguments: %v", ErrUsage, fs.Args()[1:])
	}
	if fs.NArg() == 1 {
		*filterArg = fs.Arg(0)
	}
	filter, err := todo.ParseFilter(*filterArg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	format, err := parseOutputFormat(*formatArg)
	if err != nil {
		return err
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	tasks := store.FilteredView(filter, *search)
	if format != outputText {
		return writeStructured(a.stdout, format, tasks)
	}
	writeTaskList(a.stdout, tasks, *search)
	return nil
}

func (a *app) toggleCommand(args []string) error {
	id, _, err := parseIDArgs("toggle", args, false)
	if err != nil {
		return err
	}
	store, err := a.openStore()
	if err != nil {
		return err
	}
	if !store.Toggle(id) {
		return notFound(id)
	}
	if err := saved(store); err != nil {
		return err
	}
	task, _ := store.Get(id)
	a.openLogger().Info("task toggled", "id", id, "completed", task.Completed)
	state := "active"
	if task.Completed {
		state = "completed"
	}
	fmt.Fprintf(a.stdout, "Marked %d %s: %s\n", task.ID, state, task.Title)
	return nil
}

func (a *app) editCommand(args []string) error {
	id, title, err := parseIDArgs("edit", args, true)
	if err != nil {
		return err
	}
	store, err := a.openStore()
	if err != nil {
		return err
	}
	if !store.StartEdit(id) {
		return notFound(id)
	}
	store.SetEditText(title)
	if err := store.SaveEdit(); err != nil {
		store.CancelEdit()
		return fmt.Errorf("edit task %d: %w", id, err)
	}
	if err := saved(store); err != nil {
		return err
	}
	task, _ := store.Get(id)
	a.openLogger().Info("task renamed", "id", id)
	fmt.Fprintf(a.stdout, "Renamed %d: %s\n", task.ID, task.Title)
	return nil
}

func (a *app) rmCommand(args []string) error {
	id, _, err := parseIDArgs("rm", args, false)
	if err != nil {
		return err
	}
	store, err := a.openStore()
	if err != nil {
		return err
	}
	task, ok := store.Get(id)
	if !ok || !store.Delete(id) {
		return notFound(id)
	}
	if err := saved(store); err != nil {
		return err
	}
	a.openLogger().Info("task deleted", "id", id)
	fmt.Fprintf(a.stdout, "Deleted %d: %s\n", task.ID, task.Title)
	return nil
}

func (a *app) clearCommand(args []string) error {
	fs := newFlagSet("clear", a.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments: %v", ErrUsage, fs.Args())
	}
	store, err := a.openStore()
	if err != nil {
		return err
	}
	n := store.ClearCompleted()
	if err := saved(store); err != nil {
		return err
	}
	a.openLogger().Info("completed tasks cleared", "count", n)
	fmt.Fprintf(a.stdout, "Cleared %d completed %s\n", n, plural(n, "task", "tasks"))
	return nil
}

func (a *app) statsCommand(args []string) error {
	fs := newFlagSet("stats", a.stderr)
	formatArg := fs.String("format", "text", "Output format (text, json, yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	format, err := parseOutputFormat(*formatArg)
	if err != nil {
		return err
	}
	store, err := a.openStore()
	if err != nil {
		return err
	}
	st := store.Statistics()
	if format != outputText {
		return writeStructured(a.stdout, format, st)
	}
	fmt.Fprintf(a.stdout, "Total: %d  Active: %d  Done: %d\n", st.Total, st.Active, st.Completed)
	return nil
}

// parseIDArgs parses "<id>" or, with withTitle, "<id> <title...>".
func parseIDArgs(name string, args []string, withTitle bool) (int64, string, error) {
	if len(args) == 0 {
		return 0, "", fmt.Errorf("%w: %s requires a task id", ErrUsage, name)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, "", fmt.Errorf("%w: invalid task id %q", ErrUsage, args[0])
	}
	rest := args[1:]
	if !withTitle {
		if len(rest) > 0 {
			return 0, "", fmt.Errorf("%w: unexpected arguments: %v", ErrUsage, rest)
		}
		return id, "", nil
	}
	return id, strings.Join(rest, " "), nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
