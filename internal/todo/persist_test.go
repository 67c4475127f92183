package todo

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/nibzard/tasktracker/internal/storage"
)

func TestKVPersisterLoadMissing(t *testing.T) {
	p := NewKVPersister(storage.NewMemoryBackend(), "")
	if p.Key != DefaultKey {
		t.Errorf("Key: got %q, want %q", p.Key, DefaultKey)
	}
	tasks, err := p.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tasks != nil {
		t.Errorf("Load on empty backend: got %v, want nil", tasks)
	}
	if err := p.Clear(); err != nil {
		t.Errorf("Clear with nothing stored: %v", err)
	}
}

func TestStorePersistsThroughBackend(t *testing.T) {
	backend := storage.NewMemoryBackend()
	s, err := Open(NewKVPersister(backend, DefaultKey))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	s.Add("Buy milk")
	s.Add("Walk dog")

	reopened, err := Open(NewKVPersister(backend, DefaultKey))
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if diff := cmp.Diff(s.Tasks(), reopened.Tasks()); diff != "" {
		t.Errorf("reloaded collection differs (-want +got):\n%s", diff)
	}

	for _, task := range reopened.Tasks() {
		reopened.Delete(task.ID)
	}
	if _, err := backend.Get(DefaultKey); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("empty collection should remove the record, Get returned %v", err)
	}
}

func TestStorePersistsOtherFormats(t *testing.T) {
	for _, format := range []Format{FormatYAML, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			backend := storage.NewMemoryBackend()
			p := &KVPersister{Backend: backend, Key: "list", Codec: NewCodec(format, true)}
			s, err := Open(p)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			task, _ := s.Add("Buy milk")
			s.Toggle(task.ID)

			again, err := Open(p)
			if err != nil {
				t.Fatalf("reopen failed: %v", err)
			}
			if again.LoadIssue() != nil {
				t.Fatalf("unexpected load issue: %v", again.LoadIssue())
			}
			if diff := cmp.Diff(s.Tasks(), again.Tasks()); diff != "" {
				t.Errorf("reloaded collection differs (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOpenQuarantinesCorruptRecord(t *testing.T) {
	backend := storage.NewMemoryBackend()
	raw := []byte(`[{"id": "not a number"}]`)
	if err := backend.Put(DefaultKey, raw); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	var logs strings.Builder
	logger := log.New(&logs)
	s, err := Open(NewKVPersister(backend, DefaultKey), WithLogger(logger))
	if err != nil {
		t.Fatalf("Open should not fail on corrupt data: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("store should start empty, got %d tasks", s.Len())
	}
	if !IsCorrupt(s.LoadIssue()) {
		t.Errorf("LoadIssue: got %v", s.LoadIssue())
	}

	backup, err := backend.Get(DefaultKey + CorruptSuffix)
	if err != nil {
		t.Fatalf("backup record missing: %v", err)
	}
	if string(backup) != string(raw) {
		t.Errorf("backup: got %q, want %q", backup, raw)
	}
	if !strings.Contains(logs.String(), "discarding unreadable task record") {
		t.Errorf("expected a warning, log was:\n%s", logs.String())
	}

	// The first write replaces the corrupt record.
	s.Add("fresh start")
	if _, err := NewKVPersister(backend, DefaultKey).Load(); err != nil {
		t.Errorf("record should be valid after a write: %v", err)
	}
}

type failingBackend struct {
	storage.Backend
}

func (failingBackend) Put(string, []byte) error { return errors.New("read-only file system") }

func TestStoreLogsWriteFailures(t *testing.T) {
	var logs strings.Builder
	s, err := Open(NewKVPersister(failingBackend{storage.NewMemoryBackend()}, DefaultKey), WithLogger(log.New(&logs)))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, ok := s.Add("keep going"); !ok {
		t.Fatal("Add should succeed in memory")
	}
	if !strings.Contains(logs.String(), "failed to persist tasks") {
		t.Errorf("expected a persistence warning, log was:\n%s", logs.String())
	}
	if !strings.Contains(logs.String(), "read-only file system") {
		t.Errorf("warning should carry the cause, log was:\n%s", logs.String())
	}
}
