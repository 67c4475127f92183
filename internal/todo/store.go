package todo

import (
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Store owns the task collection and the edit session.
// It is not safe for concurrent use; callers drive it from one goroutine.
type Store struct {
	tasks     []Task
	edit      *EditSession
	persister Persister
	logger    *log.Logger
	now       func() time.Time
	lastID    int64
	loadIssue error
	// persistIssue is the error from the most recent write, nil once a
	// write succeeds.
	persistIssue error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence warnings.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used to generate task ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTasks seeds the collection without persisting it.
func WithTasks(tasks []Task) Option {
	return func(s *Store) {
		s.tasks = append([]Task(nil), tasks...)
	}
}

// NewStore returns a store with no persistence.
func NewStore(opts ...Option) *Store {
	s := &Store{
		logger: log.New(io.Discard),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastID = maxID(s.tasks)
	return s
}

// Open creates a store and loads the collection from p exactly once.
// Corrupt or invalid records are not returned as errors: the store starts
// empty and the problem is available from LoadIssue. Only storage I/O
// failures are returned.
func Open(p Persister, opts ...Option) (*Store, error) {
	s := NewStore(opts...)
	s.persister = p
	if p == nil {
		return s, nil
	}

	tasks, err := p.Load()
	if err != nil {
		if !IsCorrupt(err) {
			return nil, err
		}
		s.loadIssue = err
		s.logger.Warn("discarding unreadable task record", "err", err)
		if q, ok := p.(Quarantiner); ok {
			if qerr := q.Quarantine(); qerr != nil {
				s.logger.Warn("could not back up unreadable task record", "err", qerr)
			}
		}
		tasks = nil
	}
	s.tasks = tasks
	s.lastID = maxID(s.tasks)
	s.logger.Debug("tasks loaded", "count", len(s.tasks))
	return s, nil
}

// LoadIssue returns the reason the stored record was discarded, if any.
func (s *Store) LoadIssue() error {
	return s.loadIssue
}

// PersistIssue returns the error from the most recent write, if it failed.
// Mutations still apply in memory when a write fails.
func (s *Store) PersistIssue() error {
	return s.persistIssue
}

// Add prepends a new incomplete task. Blank input is ignored and reported
// by the false return.
func (s *Store) Add(rawText string) (Task, bool) {
	title := strings.TrimSpace(rawText)
	if title == "" {
		return Task{}, false
	}
	t := Task{ID: s.nextID(), Title: title}
	tasks := make([]Task, 0, len(s.tasks)+1)
	tasks = append(tasks, t)
	tasks = append(tasks, s.tasks...)
	s.tasks = tasks
	s.persist()
	return t, true
}

// Toggle flips the completion flag of task id. It reports whether the task
// existed.
func (s *Store) Toggle(id int64) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	s.persist()
	return true
}

// Delete removes task id. An edit session on that task is closed.
func (s *Store) Delete(id int64) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	tasks := make([]Task, 0, len(s.tasks)-1)
	tasks = append(tasks, s.tasks[:i]...)
	tasks = append(tasks, s.tasks[i+1:]...)
	s.tasks = tasks
	if s.edit != nil && s.edit.TaskID == id {
		s.edit = nil
	}
	s.persist()
	return true
}

// StartEdit opens an edit session on task id, replacing any open session.
// The buffer starts as the task's current title.
func (s *Store) StartEdit(id int64) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.edit = &EditSession{TaskID: id, Text: s.tasks[i].Title}
	return true
}

// SetEditText replaces the edit buffer. It does nothing without a session.
func (s *Store) SetEditText(text string) {
	if s.edit != nil {
		s.edit.Text = text
	}
}

// SaveEdit commits the edit buffer as the task's title and closes the
// session. A blank buffer returns ErrEmptyTitle and keeps the session open.
func (s *Store) SaveEdit() error {
	if s.edit == nil {
		return nil
	}
	title := strings.TrimSpace(s.edit.Text)
	if title == "" {
		return ErrEmptyTitle
	}
	if i := s.index(s.edit.TaskID); i >= 0 {
		s.tasks[i].Title = title
		s.edit = nil
		s.persist()
		return nil
	}
	s.edit = nil
	return nil
}

// CancelEdit discards the edit session.
func (s *Store) CancelEdit() {
	s.edit = nil
}

// Editing returns the open edit session, if any.
func (s *Store) Editing() (EditSession, bool) {
	if s.edit == nil {
		return EditSession{}, false
	}
	return *s.edit, true
}

// ClearCompleted removes every completed task and returns how many were
// removed.
func (s *Store) ClearCompleted() int {
	kept := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	removed := len(s.tasks) - len(kept)
	if removed == 0 {
		return 0
	}
	s.tasks = kept
	if s.edit != nil && s.index(s.edit.TaskID) < 0 {
		s.edit = nil
	}
	s.persist()
	return removed
}

// FilteredView returns the tasks matching both the status filter and the
// case-insensitive query, in collection order. The result is a fresh slice.
func (s *Store) FilteredView(filter Filter, query string) []Task {
	return FilterTasks(s.tasks, filter, query)
}

// View is FilteredView driven by a ViewState.
func (s *Store) View(v ViewState) []Task {
	return s.FilteredView(v.Filter, v.Query)
}

// Statistics counts the collection.
func (s *Store) Statistics() Statistics {
	return Count(s.tasks)
}

// Tasks returns a copy of the collection.
func (s *Store) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Get returns task id.
func (s *Store) Get(id int64) (Task, bool) {
	i := s.index(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// FilterTasks applies the status filter and the query to tasks.
func FilterTasks(tasks []Task, filter Filter, query string) []Task {
	needle := strings.ToLower(query)
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !filter.Match(t.Completed) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(t.Title), needle) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Count returns the statistics for tasks.
func Count(tasks []Task) Statistics {
	var st Statistics
	for _, t := range tasks {
		if t.Completed {
			st.Completed++
		} else {
			st.Active++
		}
	}
	st.Total = len(tasks)
	return st
}

func (s *Store) index(id int64) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// nextID issues millisecond timestamps, bumped past every id already seen.
// Once the largest id is math.MaxInt64 it falls back to the smallest free id.
func (s *Store) nextID() int64 {
	if s.lastID == math.MaxInt64 {
		return s.freeID()
	}
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *Store) freeID() int64 {
	used := make(map[int64]struct{}, len(s.tasks))
	for _, t := range s.tasks {
		used[t.ID] = struct{}{}
	}
	for id := int64(1); ; id++ {
		if _, ok := used[id]; !ok {
			return id
		}
	}
}

// persist runs the post-mutation hook. Write failures are logged only.
func (s *Store) persist() {
	if s.persister == nil {
		return
	}
	var err error
	if len(s.tasks) == 0 {
		err = s.persister.Clear()
	} else {
		err = s.persister.Save(s.Tasks())
	}
	s.persistIssue = err
	if err != nil {
		s.logger.Warn("failed to persist tasks", "count", len(s.tasks), "err", err)
		return
	}
	s.logger.Debug("tasks persisted", "count", len(s.tasks))
}

func maxID(tasks []Task) int64 {
	var max int64
	for _, t := range tasks {
		if t.ID > max {
			max = t.ID
		}
	}
	return max
}
