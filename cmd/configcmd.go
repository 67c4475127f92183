package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/nibzard/tasktracker/internal/config"
	"github.com/nibzard/tasktracker/internal/todo"
)

func (a *app) configCommand(args []string) error {
	fs := newFlagSet("config", a.stderr)
	example := fs.Bool("example", false, "Print an example config file")
	schema := fs.Bool("schema", false, "Print the JSON Schema for the task record")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments: %v", ErrUsage, fs.Args())
	}

	switch {
	case *example:
		fmt.Fprint(a.stdout, config.ExampleConfig())
		return nil
	case *schema:
		_, err := a.stdout.Write(todo.SchemaJSON())
		return err
	}

	if files := a.cws.Files; len(files) > 0 {
		for _, f := range files {
			fmt.Fprintf(a.stdout, "# config file: %s\n", f)
		}
	} else {
		fmt.Fprintf(a.stdout, "# no config file (user config would be %s)\n", config.UserConfigPath())
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	for _, key := range config.Keys() {
		fmt.Fprintf(tw, "%s\t= %q\t(%s, %s)\n", key, a.cfg.Value(key), a.cws.Sources[key], config.EnvVar(key))
	}
	return tw.Flush()
}
