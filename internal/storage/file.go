package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/nibzard/tasktracker/internal/datadir"
)

// LockTimeout is the maximum time to wait for the write lock.
var LockTimeout = 5 * time.Second

const lockRetryDelay = 50 * time.Millisecond

// FileBackend stores each record as <dir>/<key><ext>.
// Writes go through a temp file and rename while holding an advisory lock,
// so readers never see a partial record.
type FileBackend struct {
	dir  string
	ext  string
	lock *flock.Flock
}

// NewFileBackend creates dir if needed and returns a backend rooted there.
func NewFileBackend(dir, ext string) (*FileBackend, error) {
	if dir == "" {
		return nil, errors.New("data dir is empty")
	}
	if ext == "" {
		ext = ".json"
	}
	if err := datadir.Ensure(dir); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileBackend{
		dir:  dir,
		ext:  ext,
		lock: flock.New(datadir.LockPath(dir)),
	}, nil
}

// Path returns the file path for key.
func (b *FileBackend) Path(key string) string {
	return datadir.RecordPath(b.dir, key, b.ext)
}

// Get implements Backend.
func (b *FileBackend) Get(key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read record: %w", err)
	}
	return data, nil
}

// Put implements Backend.
func (b *FileBackend) Put(key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return b.withLock(func() error {
		return writeAtomic(b.Path(key), data)
	})
}

// Delete implements Backend.
func (b *FileBackend) Delete(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return b.withLock(func() error {
		if err := os.Remove(b.Path(key)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove record: %w", err)
		}
		return nil
	})
}

// Keys implements Backend.
func (b *FileBackend) Keys() ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, b.ext) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, b.ext))
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements Backend.
func (b *FileBackend) Close() error {
	return b.lock.Close()
}

func (b *FileBackend) withLock(fn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), LockTimeout)
	defer cancel()

	locked, err := b.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", b.lock.Path(), err)
	}
	if !locked {
		return fmt.Errorf("acquire lock %s: timed out", b.lock.Path())
	}
	defer b.lock.Unlock()

	return fn()
}

// writeAtomic writes data to a temp file in the same directory and renames
// it over path.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
