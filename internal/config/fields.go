package config

// field binds one config key to its environment variable and flag.
type field struct {
	key   string
	env   string
	flag  string
	usage string
	str   func(*Config) *string
	boolp func(*Config) *bool
}

// fields lists every configurable value in display order.
var fields = []field{
	{
		key: "data_dir", env: "TASKTRACKER_DATA_DIR", flag: "data-dir",
		usage: "Directory holding task records and logs",
		str:   func(c *Config) *string { return &c.DataDir },
	},
	{
		key: "storage", env: "TASKTRACKER_STORAGE", flag: "storage",
		usage: "Storage backend (file, sqlite, memory)",
		str:   func(c *Config) *string { return &c.Storage },
	},
	{
		key: "storage_key", env: "TASKTRACKER_KEY", flag: "key",
		usage: "Record name the task list is stored under",
		str:   func(c *Config) *string { return &c.StorageKey },
	},
	{
		key: "record_format", env: "TASKTRACKER_FORMAT", flag: "format-record",
		usage: "Record encoding (json, yaml, toml)",
		str:   func(c *Config) *string { return &c.RecordFormat },
	},
	{
		key: "validate_schema", env: "TASKTRACKER_VALIDATE", flag: "validate",
		usage: "Validate records against the JSON Schema on load",
		boolp: func(c *Config) *bool { return &c.ValidateSchema },
	},
	{
		key: "log_level", env: "TASKTRACKER_LOG_LEVEL", flag: "log-level",
		usage: "Log level (debug, info, warn, error)",
		str:   func(c *Config) *string { return &c.LogLevel },
	},
	{
		key: "log_format", env: "TASKTRACKER_LOG_FORMAT", flag: "log-format",
		usage: "Log format (text, json, logfmt)",
		str:   func(c *Config) *string { return &c.LogFormat },
	},
	{
		key: "log_file", env: "TASKTRACKER_LOG_FILE", flag: "log-file",
		usage: `Log file path ("-" for stderr)`,
		str:   func(c *Config) *string { return &c.LogFile },
	},
	{
		key: "log_timestamps", env: "TASKTRACKER_LOG_TIMESTAMPS", flag: "log-timestamps",
		usage: "Show timestamps in logs",
		boolp: func(c *Config) *bool { return &c.LogTimestamps },
	},
	{
		key: "log_caller", env: "TASKTRACKER_LOG_CALLER", flag: "log-caller",
		usage: "Show caller location in logs",
		boolp: func(c *Config) *bool { return &c.LogCaller },
	},
	{
		key: "alt_screen", env: "TASKTRACKER_ALT_SCREEN", flag: "alt-screen",
		usage: "Run the TUI in the alternate screen buffer",
		boolp: func(c *Config) *bool { return &c.AltScreen },
	},
}

// Keys returns the config keys in display order.
func Keys() []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	return keys
}

// EnvVar returns the environment variable for key.
func EnvVar(key string) string {
	for _, f := range fields {
		if f.key == key {
			return f.env
		}
	}
	return ""
}

// Value returns the current value of key formatted for display.
func (c *Config) Value(key string) string {
	for _, f := range fields {
		if f.key != key {
			continue
		}
		if f.boolp != nil {
			if *f.boolp(c) {
				return "true"
			}
			return "false"
		}
		return *f.str(c)
	}
	return ""
}
