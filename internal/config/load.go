package config

import (
	"flag"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/tasktracker/internal/datadir"
	"github.com/nibzard/tasktracker/internal/todo"
)

// LoadWithSources loads configuration from multiple sources in priority order
// and tracks the source of each value:
// 1. Defaults
// 2. User config file (~/.tasktracker/config.toml or OS-specific config dir)
// 3. Project config file (tasktracker.toml or .tasktracker.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	sources := make(map[string]ConfigSource)
	cfg := &Config{}

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, f := range fields {
		sources[f.key] = SourceDefault
	}

	var files []string

	// 2. Try to load from user config file
	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := loadConfigFile(cfg, userConfigFile, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
		files = append(files, userConfigFile)
	}

	// 3. Try to load from project config file (overrides user config)
	if projectConfigFile := findProjectConfigFile(); projectConfigFile != "" {
		if err := loadConfigFile(cfg, projectConfigFile, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
		files = append(files, projectConfigFile)
	}

	// 4. Override from environment
	if err := loadFromEnv(cfg, sources); err != nil {
		return nil, err
	}

	// 5. Parse CLI flags (they override everything)
	if fs != nil {
		if err := parseFlags(cfg, fs, args, sources); err != nil {
			return nil, fmt.Errorf("parsing flags: %w", err)
		}
	}

	// 6. Compute derived values
	finalizeConfig(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &ConfigWithSources{
		Config:  cfg,
		Sources: sources,
		Files:   files,
	}, nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.DataDir = datadir.Default()
	cfg.Storage = DefaultStorage
	cfg.StorageKey = todo.DefaultKey
	cfg.RecordFormat = DefaultRecordFormat
	cfg.ValidateSchema = true
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogTimestamps = DefaultLogTimestamps
	cfg.AltScreen = DefaultAltScreen
}

// loadConfigFile decodes a TOML file over cfg and records which keys it set.
// Unknown keys are rejected so typos do not pass silently.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	for _, f := range fields {
		if md.IsDefined(f.key) {
			sources[f.key] = source
		}
	}
	return nil
}

// finalizeConfig computes derived values.
func finalizeConfig(cfg *Config) {
	cfg.DataDir = expandPath(strings.TrimSpace(cfg.DataDir))
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	cfg.StorageKey = strings.TrimSpace(cfg.StorageKey)
	cfg.RecordFormat = strings.ToLower(strings.TrimSpace(cfg.RecordFormat))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	switch cfg.LogFile {
	case LogFileStderr:
	case "":
		if cfg.DataDir != "" {
			cfg.LogFile = datadir.LogPath(cfg.DataDir)
		}
	default:
		cfg.LogFile = expandPath(cfg.LogFile)
		if !filepath.IsAbs(cfg.LogFile) && cfg.DataDir != "" {
			cfg.LogFile = filepath.Join(cfg.DataDir, cfg.LogFile)
		}
	}
}

// GetConfigFile returns the highest-priority config file that was read.
func (cws *ConfigWithSources) GetConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}
