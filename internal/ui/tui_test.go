package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/nibzard/tasktracker/internal/todo"
)

func newTestModel(t *testing.T, tasks ...todo.Task) (*Model, *todo.Store) {
	t.Helper()
	clock := time.UnixMilli(1_700_000_000_000)
	store := todo.NewStore(
		todo.WithTasks(tasks),
		todo.WithClock(func() time.Time { return clock }),
	)
	return NewModel(store, nil), store
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m *Model, keys ...string) {
	for _, k := range keys {
		m.Update(key(k))
	}
}

func typeText(m *Model, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func taskTitles(tasks []todo.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestAddTasks(t *testing.T) {
	m, store := newTestModel(t)

	send(m, "a")
	typeText(m, "Buy milk")
	send(m, "enter")
	typeText(m, "Walk dog")
	send(m, "enter")
	send(m, "enter") // blank input is ignored
	send(m, "esc")

	if diff := cmp.Diff([]string{"Walk dog", "Buy milk"}, taskTitles(store.Tasks())); diff != "" {
		t.Errorf("tasks (-want +got):\n%s", diff)
	}
	if m.mode != modeNormal {
		t.Errorf("esc should leave add mode, mode=%v", m.mode)
	}

	view := m.View()
	for _, want := range []string{"Task Tracker", "Walk dog", "Buy milk", "Total", "Active", "Done"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q:\n%s", want, view)
		}
	}
}

func TestToggleAndFilter(t *testing.T) {
	m, store := newTestModel(t,
		todo.Task{ID: 2, Title: "Walk dog"},
		todo.Task{ID: 1, Title: "Buy milk"},
	)

	send(m, "j", "space")
	got, _ := store.Get(1)
	if !got.Completed {
		t.Fatal("space should toggle the selected task")
	}
	if st := store.Statistics(); st != (todo.Statistics{Total: 2, Active: 1, Completed: 1}) {
		t.Errorf("stats: got %+v", st)
	}

	send(m, "3")
	if diff := cmp.Diff([]string{"Buy milk"}, taskTitles(m.visible())); diff != "" {
		t.Errorf("completed filter (-want +got):\n%s", diff)
	}
	if m.cursor != 0 {
		t.Errorf("cursor should clamp into the shorter list, got %d", m.cursor)
	}

	send(m, "tab")
	if m.ViewState().Filter != todo.FilterAll {
		t.Errorf("tab should cycle to all, got %s", m.ViewState().Filter)
	}
	send(m, "2")
	if diff := cmp.Diff([]string{"Walk dog"}, taskTitles(m.visible())); diff != "" {
		t.Errorf("active filter (-want +got):\n%s", diff)
	}

	send(m, "x")
	if len(m.visible()) != 0 {
		t.Errorf("toggled task should leave the active view")
	}
	if !strings.Contains(m.View(), "No tasks yet!") {
		t.Errorf("empty view should say so:\n%s", m.View())
	}
}

func TestSearch(t *testing.T) {
	m, _ := newTestModel(t,
		todo.Task{ID: 3, Title: "Buy FOOD"},
		todo.Task{ID: 2, Title: "walk dog"},
		todo.Task{ID: 1, Title: "food truck"},
	)

	send(m, "/")
	typeText(m, "foo")
	if diff := cmp.Diff([]string{"Buy FOOD", "food truck"}, taskTitles(m.visible())); diff != "" {
		t.Errorf("search (-want +got):\n%s", diff)
	}

	send(m, "enter")
	if m.mode != modeNormal || m.ViewState().Query != "foo" {
		t.Errorf("enter should keep the query, got mode=%v query=%q", m.mode, m.ViewState().Query)
	}

	send(m, "/")
	typeText(m, "zzz")
	if !strings.Contains(m.View(), `No tasks found for "foozzz"`) {
		t.Errorf("empty search view:\n%s", m.View())
	}

	send(m, "esc")
	if m.ViewState().Query != "" || len(m.visible()) != 3 {
		t.Errorf("esc should clear the query, got %q with %d tasks", m.ViewState().Query, len(m.visible()))
	}
}

func TestEditSaveAndCancel(t *testing.T) {
	m, store := newTestModel(t, todo.Task{ID: 1, Title: "old title"})

	send(m, "e")
	if session, ok := store.Editing(); !ok || session.Text != "old title" {
		t.Fatalf("edit session: %+v (open=%v)", session, ok)
	}
	if m.editInput.Value() != "old title" {
		t.Errorf("edit input should be pre-filled, got %q", m.editInput.Value())
	}
	typeText(m, " v2")
	send(m, "enter")

	got, _ := store.Get(1)
	if got.Title != "old title v2" {
		t.Errorf("title: got %q", got.Title)
	}
	if _, ok := store.Editing(); ok || m.mode != modeNormal {
		t.Error("save should end the edit")
	}

	send(m, "e")
	typeText(m, " discarded")
	send(m, "esc")
	got, _ = store.Get(1)
	if got.Title != "old title v2" {
		t.Errorf("cancel should keep the title, got %q", got.Title)
	}
}

func TestEditKeepsTitleWhenUnchanged(t *testing.T) {
	long := strings.Repeat("a", 300)
	tests := []struct {
		name  string
		title string
		keys  []string
	}{
		{"long title", long, []string{"e", "enter"}},
		{"tab in title", "a\tb", []string{"e", "enter"}},
		{"newline in title", "first\nsecond", []string{"e", "enter"}},
		{"typed then erased", "a\tb", []string{"e", "x", "backspace", "enter"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, store := newTestModel(t, todo.Task{ID: 1, Title: tt.title})
			send(m, tt.keys...)
			if _, ok := store.Editing(); ok {
				t.Fatal("save should end the edit")
			}
			got, _ := store.Get(1)
			if got.Title != tt.title {
				t.Errorf("title changed: %q -> %q", tt.title, got.Title)
			}
		})
	}
}

func TestEditLongTitle(t *testing.T) {
	long := strings.Repeat("a", 300)
	m, store := newTestModel(t, todo.Task{ID: 1, Title: long})

	send(m, "e")
	typeText(m, "b")
	send(m, "enter")

	got, _ := store.Get(1)
	if got.Title != long+"b" {
		t.Errorf("title: got %d runes, want %d", len(got.Title), len(long)+1)
	}
}

func TestAddLongTitle(t *testing.T) {
	m, store := newTestModel(t)
	long := strings.Repeat("x", 400)

	send(m, "a")
	typeText(m, long)
	send(m, "enter")

	tasks := store.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("added %d tasks, want 1", len(tasks))
	}
	if tasks[0].Title != long {
		t.Errorf("title length: got %d, want %d", len(tasks[0].Title), len(long))
	}
}

func TestEditBlankShowsNotice(t *testing.T) {
	m, store := newTestModel(t, todo.Task{ID: 1, Title: "abc"})

	send(m, "e", "backspace", "backspace", "backspace", "enter")
	if m.Notice() != EmptyTitleNotice {
		t.Fatalf("notice: got %q, want %q", m.Notice(), EmptyTitleNotice)
	}
	if !strings.Contains(m.View(), EmptyTitleNotice) {
		t.Errorf("view should show the notice:\n%s", m.View())
	}
	got, _ := store.Get(1)
	if got.Title != "abc" {
		t.Errorf("title changed to %q", got.Title)
	}

	// Any key dismisses the notice without acting on it.
	send(m, "d")
	if m.Notice() != "" {
		t.Error("notice should be dismissed")
	}
	if store.Len() != 1 {
		t.Error("dismissing key must not delete the task")
	}
	if _, ok := store.Editing(); !ok || m.mode != modeEdit {
		t.Error("edit session should stay open after the notice")
	}

	typeText(m, "fixed")
	send(m, "enter")
	got, _ = store.Get(1)
	if got.Title != "fixed" {
		t.Errorf("title: got %q, want fixed", got.Title)
	}
}

func TestDeleteAndClearCompleted(t *testing.T) {
	m, store := newTestModel(t,
		todo.Task{ID: 3, Title: "A", Completed: true},
		todo.Task{ID: 2, Title: "B"},
		todo.Task{ID: 1, Title: "C", Completed: true},
	)

	if !strings.Contains(m.View(), "clear 2 completed tasks") {
		t.Errorf("clear affordance missing:\n%s", m.View())
	}
	send(m, "C")
	if diff := cmp.Diff([]string{"B"}, taskTitles(store.Tasks())); diff != "" {
		t.Errorf("after clear (-want +got):\n%s", diff)
	}
	if strings.Contains(m.View(), "clear 0") || strings.Contains(m.View(), "completed task") {
		t.Errorf("clear affordance should hide when nothing is completed:\n%s", m.View())
	}

	send(m, "d")
	if store.Len() != 0 {
		t.Errorf("d should delete the selected task, %d left", store.Len())
	}
	send(m, "d")
}

func TestHelpAndQuit(t *testing.T) {
	m, _ := newTestModel(t)

	send(m, "?")
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Errorf("help not shown:\n%s", m.View())
	}
	send(m, "?")
	if strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("help should toggle off")
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}

	_, cmd = m.Update(key("ctrl+c"))
	if cmd == nil {
		t.Fatal("ctrl+c should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
}

func TestWindowResize(t *testing.T) {
	m, _ := newTestModel(t, todo.Task{ID: 1, Title: strings.Repeat("long ", 40)})
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	if m.width != 40 {
		t.Errorf("width: got %d", m.width)
	}
	if !strings.Contains(m.View(), "...") {
		t.Errorf("long titles should be truncated:\n%s", m.View())
	}
}

func TestIsTTY(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Error("a buffer is not a TTY")
	}
}
