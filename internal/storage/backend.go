// Package storage provides opaque key-value record stores on local disk.
package storage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no record exists for a key.
var ErrNotFound = errors.New("record not found")

// Kind names a backend implementation.
type Kind string

const (
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
	KindMemory Kind = "memory"
)

// ParseKind parses a backend name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "file", "fs":
		return KindFile, nil
	case "sqlite", "sqlite3", "db":
		return KindSQLite, nil
	case "memory", "mem":
		return KindMemory, nil
	default:
		return "", fmt.Errorf("invalid storage %q, must be one of: file, sqlite, memory", s)
	}
}

// Backend stores opaque byte records by name.
type Backend interface {
	// Get returns the record for key or ErrNotFound.
	Get(key string) ([]byte, error)
	// Put creates or replaces the record for key.
	Put(key string, data []byte) error
	// Delete removes the record for key. Deleting a missing key is not an
	// error.
	Delete(key string) error
	// Keys lists the stored keys in lexical order.
	Keys() ([]string, error)
	// Close releases any resources held by the backend.
	Close() error
}

// Options configures Open.
type Options struct {
	// Dir is the data directory for file and sqlite backends.
	Dir string
	// Ext is the file extension for the file backend, e.g. ".json".
	Ext string
}

// Open returns the backend of the given kind.
func Open(kind Kind, opts Options) (Backend, error) {
	switch kind {
	case KindFile:
		return NewFileBackend(opts.Dir, opts.Ext)
	case KindSQLite:
		return OpenSQLite(opts.Dir)
	case KindMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("record key is empty")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid record key %q", key)
	}
	return nil
}
