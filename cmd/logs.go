package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/nibzard/tasktracker/internal/logging"
)

func (a *app) logsCommand(args []string) error {
	fs := newFlagSet("logs", a.stderr)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 50, "Number of lines to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments: %v", ErrUsage, fs.Args())
	}

	if a.cfg.LogToStderr() {
		return fmt.Errorf("%w: logs go to stderr (log_file = \"-\"), there is no file to show", ErrUsage)
	}
	path := a.cfg.LogFile
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(a.stdout, "No log file at %s yet\n", path)
			return nil
		}
		return fmt.Errorf("stat log file: %w", err)
	}
	return logging.TailLog(a.ctx, a.stdout, path, *n, *follow)
}
