package config

import (
	"flag"
)

// RegisterFlags defines the config flags on fs, bound to cfg's current
// values. Flags parsed later write straight into cfg.
func RegisterFlags(cfg *Config, fs *flag.FlagSet) {
	for _, f := range fields {
		if f.boolp != nil {
			p := f.boolp(cfg)
			fs.BoolVar(p, f.flag, *p, f.usage)
			continue
		}
		p := f.str(cfg)
		fs.StringVar(p, f.flag, *p, f.usage)
	}
}

// parseFlags defines, parses and tracks the config flags.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	RegisterFlags(cfg, fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	flagToSource := make(map[string]string, len(fields))
	for _, f := range fields {
		flagToSource[f.flag] = f.key
	}
	fs.Visit(func(fl *flag.Flag) {
		if key, ok := flagToSource[fl.Name]; ok {
			sources[key] = SourceFlag
		}
	})
	return nil
}
