// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nibzard/tasktracker/internal/logging"
	"github.com/nibzard/tasktracker/internal/todo"
)

// EmptyTitleNotice is shown when an edit is saved with a blank title.
const EmptyTitleNotice = "Task cannot be empty!"

// ErrNotTTY is returned by RunTUI when stdout is not a terminal.
var ErrNotTTY = errors.New("tui requires a TTY")

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

type tuiConfig struct {
	altScreen bool
	logger    *log.Logger
}

// WithAltScreen runs the program in the alternate screen buffer.
func WithAltScreen(enabled bool) TUIOption {
	return func(c *tuiConfig) {
		c.altScreen = enabled
	}
}

// WithLogger sets the logger for UI events.
func WithLogger(logger *log.Logger) TUIOption {
	return func(c *tuiConfig) {
		c.logger = logger
	}
}

// RunTUI runs the task list UI over store until the user quits or ctx is
// cancelled.
func RunTUI(ctx context.Context, store *todo.Store, opts ...TUIOption) error {
	c := &tuiConfig{altScreen: true}
	for _, opt := range opts {
		opt(c)
	}

	if !IsTTY(os.Stdout) {
		return ErrNotTTY
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if c.altScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	program := tea.NewProgram(NewModel(store, c.logger), programOpts...)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

type mode int

const (
	modeNormal mode = iota
	modeAdd
	modeSearch
	modeEdit
)

// Model is the bubbletea model for the task list.
type Model struct {
	store  *todo.Store
	logger *log.Logger

	view   todo.ViewState
	mode   mode
	cursor int

	addInput    textinput.Model
	searchInput textinput.Model
	editInput   textinput.Model
	// editSeed is the edit input's initial value; the store keeps the
	// stored title until the input differs from it.
	editSeed string

	// notice blocks all other input until dismissed.
	notice   string
	showHelp bool
	width    int
}

// NewModel creates a model over store.
func NewModel(store *todo.Store, logger *log.Logger) *Model {
	if logger == nil {
		logger = logging.Discard()
	}

	add := textinput.New()
	add.Placeholder = "What needs to be done?"
	add.Prompt = "+ "
	add.CharLimit = 0

	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.Prompt = "/ "
	search.CharLimit = 256

	edit := textinput.New()
	edit.Prompt = ""
	edit.CharLimit = 0

	return &Model{
		store:       store,
		logger:      logger,
		view:        todo.DefaultViewState(),
		addInput:    add,
		searchInput: search,
		editInput:   edit,
		width:       defaultWidth,
	}
}

// ViewState returns the current filter and query.
func (m *Model) ViewState() todo.ViewState {
	return m.view
}

// Notice returns the blocking notice, if one is shown.
func (m *Model) Notice() string {
	return m.notice
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
		inputWidth := m.width - 8
		if inputWidth < 10 {
			inputWidth = 10
		}
		m.addInput.Width = inputWidth
		m.searchInput.Width = inputWidth
		m.editInput.Width = inputWidth
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.notice != "" {
			m.notice = ""
			return m, nil
		}
		switch m.mode {
		case modeAdd:
			return m, m.updateAdd(msg)
		case modeSearch:
			return m, m.updateSearch(msg)
		case modeEdit:
			return m, m.updateEdit(msg)
		default:
			return m, m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m *Model) updateNormal(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "?":
		m.showHelp = !m.showHelp
	case "a", "i":
		m.mode = modeAdd
		return m.addInput.Focus()
	case "/":
		m.mode = modeSearch
		return m.searchInput.Focus()
	case "esc":
		if m.showHelp {
			m.showHelp = false
			return nil
		}
		m.setQuery("")
	case "1":
		m.setFilter(todo.FilterAll)
	case "2":
		m.setFilter(todo.FilterActive)
	case "3":
		m.setFilter(todo.FilterCompleted)
	case "tab":
		m.setFilter(m.view.Filter.Next())
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = len(m.visible()) - 1
		m.clampCursor()
	case " ", "x":
		if t, ok := m.selected(); ok {
			m.store.Toggle(t.ID)
			m.logger.Debug("task toggled", "id", t.ID, "completed", !t.Completed)
			m.clampCursor()
		}
	case "d", "delete":
		if t, ok := m.selected(); ok {
			m.store.Delete(t.ID)
			m.logger.Debug("task deleted", "id", t.ID)
			m.clampCursor()
		}
	case "e", "enter":
		if t, ok := m.selected(); ok && m.store.StartEdit(t.ID) {
			m.mode = modeEdit
			m.editInput.SetValue(t.Title)
			m.editInput.CursorEnd()
			m.editSeed = m.editInput.Value()
			return m.editInput.Focus()
		}
	case "C":
		if n := m.store.ClearCompleted(); n > 0 {
			m.logger.Debug("completed tasks cleared", "count", n)
			m.clampCursor()
		}
	}
	return nil
}

func (m *Model) updateAdd(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		if t, ok := m.store.Add(m.addInput.Value()); ok {
			m.logger.Debug("task added", "id", t.ID)
			m.addInput.Reset()
			m.cursor = 0
			m.clampCursor()
		}
		return nil
	case tea.KeyEsc:
		m.mode = modeNormal
		m.addInput.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return cmd
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = modeNormal
		m.searchInput.Blur()
		return nil
	case tea.KeyEsc:
		m.mode = modeNormal
		m.searchInput.Blur()
		m.setQuery("")
		return nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.view.Query = m.searchInput.Value()
	m.clampCursor()
	return cmd
}

func (m *Model) updateEdit(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		if err := m.store.SaveEdit(); err != nil {
			if errors.Is(err, todo.ErrEmptyTitle) {
				m.notice = EmptyTitleNotice
				return nil
			}
			m.logger.Error("save edit failed", "err", err)
			return nil
		}
		m.finishEdit()
		return nil
	case tea.KeyEsc:
		m.store.CancelEdit()
		m.finishEdit()
		return nil
	}
	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	m.syncEditText()
	return cmd
}

// syncEditText copies the edit input into the store's buffer once the user
// has changed it. An untouched input leaves the stored title as it is.
func (m *Model) syncEditText() {
	session, ok := m.store.Editing()
	if !ok {
		return
	}
	value := m.editInput.Value()
	if value == m.editSeed {
		if t, ok := m.store.Get(session.TaskID); ok {
			m.store.SetEditText(t.Title)
		}
		return
	}
	m.store.SetEditText(value)
}

func (m *Model) finishEdit() {
	m.mode = modeNormal
	m.editInput.Blur()
	m.editInput.Reset()
	m.editSeed = ""
	m.clampCursor()
}

func (m *Model) setFilter(f todo.Filter) {
	m.view.Filter = f
	m.clampCursor()
}

func (m *Model) setQuery(q string) {
	m.view.Query = q
	m.searchInput.SetValue(q)
	m.clampCursor()
}

func (m *Model) visible() []todo.Task {
	return m.store.View(m.view)
}

func (m *Model) selected() (todo.Task, bool) {
	tasks := m.visible()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return todo.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
