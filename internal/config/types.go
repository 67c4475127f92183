package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasktracker/internal/storage"
	"github.com/nibzard/tasktracker/internal/todo"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, user file first.
	Files []string
}

// Default values.
const (
	DefaultStorage       = "file"
	DefaultRecordFormat  = "json"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultLogTimestamps = true
	DefaultAltScreen     = true
)

// LogFileStderr as log_file sends logs to stderr instead of a file.
const LogFileStderr = "-"

// Config holds the full configuration for tasktracker.
type Config struct {
	// Storage
	DataDir        string `toml:"data_dir"`
	Storage        string `toml:"storage"`
	StorageKey     string `toml:"storage_key"`
	RecordFormat   string `toml:"record_format"`
	ValidateSchema bool   `toml:"validate_schema"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogFile       string `toml:"log_file"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// TUI
	AltScreen bool `toml:"alt_screen"`
}

// StorageKind returns the parsed storage backend kind.
func (c *Config) StorageKind() storage.Kind {
	kind, err := storage.ParseKind(c.Storage)
	if err != nil {
		return storage.KindFile
	}
	return kind
}

// Format returns the parsed record format.
func (c *Config) Format() todo.Format {
	format, err := todo.ParseFormat(c.RecordFormat)
	if err != nil {
		return todo.FormatJSON
	}
	return format
}

// LogToStderr reports whether logs bypass the log file.
func (c *Config) LogToStderr() bool {
	return c.LogFile == LogFileStderr
}

// Validate rejects unknown enum values and empty required settings.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	if _, err := storage.ParseKind(c.Storage); err != nil {
		errs = append(errs, fmt.Errorf("storage: %w", err))
	}
	if strings.TrimSpace(c.StorageKey) == "" || strings.ContainsAny(c.StorageKey, `/\`) {
		errs = append(errs, fmt.Errorf("storage_key: invalid key %q", c.StorageKey))
	}
	if _, err := todo.ParseFormat(c.RecordFormat); err != nil {
		errs = append(errs, fmt.Errorf("record_format: %w", err))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: invalid level %q, must be one of: debug, info, warn, error, fatal", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json", "logfmt":
	default:
		errs = append(errs, fmt.Errorf("log_format: invalid format %q, must be one of: text, json, logfmt", c.LogFormat))
	}
	return errors.Join(errs...)
}
