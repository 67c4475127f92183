package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// loadFromEnv overrides config from TASKTRACKER_* environment variables.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	for _, f := range fields {
		v, ok := os.LookupEnv(f.env)
		if !ok || v == "" {
			continue
		}
		if f.boolp != nil {
			b, err := parseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", f.env, err)
			}
			*f.boolp(cfg) = b
		} else {
			*f.str(cfg) = v
		}
		sources[f.key] = SourceEnv
	}
	return nil
}

// parseBool accepts strconv spellings plus yes/no and on/off.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", s)
	}
	return b, nil
}
