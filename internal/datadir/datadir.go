// Package datadir provides constants and path helpers for the data directory.
package datadir

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	// AppName is the application directory name.
	AppName = "tasktracker"

	// DBFile is the sqlite database file name.
	DBFile = "tasktracker.db"

	// LogFile is the default log file name.
	LogFile = "tasktracker.log"

	// LockFile guards writes made by the file backend.
	LockFile = ".tasktracker.lock"
)

// Default returns the platform data directory for the application.
//
//   - Linux/BSD: $XDG_DATA_HOME/tasktracker or ~/.local/share/tasktracker
//   - macOS: ~/Library/Application Support/tasktracker
//   - Windows: %LOCALAPPDATA%\tasktracker
func Default() string {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, AppName)
		}
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "Library", "Application Support", AppName)
		}
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName)
		}
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".local", "share", AppName)
		}
	}
	// Fallback to a directory relative to the working directory
	return "." + AppName
}

// RecordPath returns the file holding the record named key.
func RecordPath(dir, key, ext string) string {
	return filepath.Join(dir, key+ext)
}

// DBPath returns the sqlite database path within dir.
func DBPath(dir string) string {
	return filepath.Join(dir, DBFile)
}

// LogPath returns the default log file path within dir.
func LogPath(dir string) string {
	return filepath.Join(dir, LogFile)
}

// LockPath returns the write lock path within dir.
func LockPath(dir string) string {
	return filepath.Join(dir, LockFile)
}

// Ensure creates dir with mode 0700 if it does not exist.
func Ensure(dir string) error {
	return os.MkdirAll(dir, 0o700)
}
