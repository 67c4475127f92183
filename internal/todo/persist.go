package todo

import (
	"errors"
	"fmt"

	"github.com/nibzard/tasktracker/internal/storage"
)

// DefaultKey is the record name the collection is stored under.
const DefaultKey = "my-tasks"

// CorruptSuffix is appended to the key when an unreadable record is backed up.
const CorruptSuffix = ".corrupt"

// Persister is the durable storage contract consumed by Store.
type Persister interface {
	// Load returns the stored collection, or nil with no error when nothing
	// is stored.
	Load() ([]Task, error)
	// Save replaces the stored collection.
	Save(tasks []Task) error
	// Clear removes the stored record.
	Clear() error
}

// Quarantiner is implemented by persisters that can set aside a record
// that failed to load.
type Quarantiner interface {
	Quarantine() error
}

// CorruptRecordError reports a stored record that could not be decoded or
// failed validation.
type CorruptRecordError struct {
	Key string
	Err error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt task record %q: %v", e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *CorruptRecordError) Unwrap() error {
	return e.Err
}

// IsCorrupt reports whether err is a CorruptRecordError.
func IsCorrupt(err error) bool {
	var ce *CorruptRecordError
	return errors.As(err, &ce)
}

// KVPersister stores the collection as one record in a storage.Backend.
type KVPersister struct {
	Backend storage.Backend
	Key     string
	Codec   *Codec
}

// NewKVPersister returns a persister using the default JSON codec with
// schema validation.
func NewKVPersister(backend storage.Backend, key string) *KVPersister {
	if key == "" {
		key = DefaultKey
	}
	return &KVPersister{
		Backend: backend,
		Key:     key,
		Codec:   NewCodec(FormatJSON, true),
	}
}

// Load implements Persister.
func (p *KVPersister) Load() ([]Task, error) {
	data, err := p.Backend.Get(p.Key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read task record: %w", err)
	}
	tasks, err := p.codec().Decode(data)
	if err != nil {
		return nil, &CorruptRecordError{Key: p.Key, Err: err}
	}
	return tasks, nil
}

// Save implements Persister.
func (p *KVPersister) Save(tasks []Task) error {
	data, err := p.codec().Encode(tasks)
	if err != nil {
		return fmt.Errorf("encode task record: %w", err)
	}
	if err := p.Backend.Put(p.Key, data); err != nil {
		return fmt.Errorf("write task record: %w", err)
	}
	return nil
}

// Clear implements Persister.
func (p *KVPersister) Clear() error {
	if err := p.Backend.Delete(p.Key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("remove task record: %w", err)
	}
	return nil
}

// Quarantine copies the current raw record to Key+CorruptSuffix.
func (p *KVPersister) Quarantine() error {
	data, err := p.Backend.Get(p.Key)
	if err != nil {
		return fmt.Errorf("read task record: %w", err)
	}
	if err := p.Backend.Put(p.Key+CorruptSuffix, data); err != nil {
		return fmt.Errorf("write backup record: %w", err)
	}
	return nil
}

func (p *KVPersister) codec() *Codec {
	if p.Codec == nil {
		p.Codec = NewCodec(FormatJSON, true)
	}
	return p.Codec
}
