// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.tasktracker/config.toml or OS-specific config directory)
// 3. Project config file (tasktracker.toml or .tasktracker.toml in the working directory)
// 4. Environment variables (TASKTRACKER_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.tasktracker/config.toml (preferred)
// - Windows: %APPDATA%\tasktracker\config.toml
// - macOS: ~/Library/Application Support/tasktracker/config.toml
// - Linux/BSD: $XDG_CONFIG_HOME/tasktracker/config.toml or ~/.config/tasktracker/config.toml
//
// Project-level config locations (overrides user config):
// - ./tasktracker.toml (preferred)
// - ./.tasktracker.toml
package config
