package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tasktracker configuration file
# Values can be overridden by TASKTRACKER_* environment variables or CLI flags

# Directory holding the task record, database and log file
# (supports ~ expansion and $VAR)
# data_dir = "~/.local/share/tasktracker"

# Storage backend: file, sqlite or memory
storage = "file"

# Record name the task list is stored under
storage_key = "my-tasks"

# Record encoding for the file backend: json, yaml or toml
record_format = "json"

# Validate the stored record against the JSON Schema when loading
validate_schema = true

# Logging
log_level = "info"       # debug, info, warn, error
log_format = "text"      # text, json, logfmt
# log_file = "-"         # "-" logs to stderr; default is tasktracker.log in data_dir
log_timestamps = true
log_caller = false

# Run the interactive UI in the alternate screen buffer
alt_screen = true
`
}
