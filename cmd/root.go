// Package cmd implements the CLI command structure for tasktracker.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasktracker/internal/config"
	"github.com/nibzard/tasktracker/internal/logging"
	"github.com/nibzard/tasktracker/internal/storage"
	"github.com/nibzard/tasktracker/internal/todo"
	"github.com/nibzard/tasktracker/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// ErrUsage marks errors caused by bad command-line input.
var ErrUsage = errors.New("usage error")

// Run executes the tasktracker CLI on the process streams.
func Run(ctx context.Context, args []string) error {
	return Execute(ctx, args, os.Stdout, os.Stderr)
}

// Execute runs the CLI with the given output streams.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("tasktracker", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(stdout)
	}

	a := &app{
		ctx:    ctx,
		cfg:    cws.Config,
		cws:    cws,
		stdout: stdout,
		stderr: stderr,
	}
	defer a.close()

	// With no subcommand, open the TUI on a terminal and list tasks otherwise.
	remaining := fs.Args()
	subcommand := "ls"
	if ui.IsTTY(stdout) {
		subcommand = "tui"
	}
	if len(remaining) > 0 {
		subcommand = remaining[0]
		remaining = remaining[1:]
	}

	switch subcommand {
	case "tui":
		return a.tuiCommand(remaining)
	case "add":
		return a.addCommand(remaining)
	case "ls", "list":
		return a.lsCommand(remaining)
	case "toggle", "done":
		return a.toggleCommand(remaining)
	case "edit":
		return a.editCommand(remaining)
	case "rm", "delete":
		return a.rmCommand(remaining)
	case "clear":
		return a.clearCommand(remaining)
	case "stats":
		return a.statsCommand(remaining)
	case "doctor":
		return a.doctorCommand(remaining)
	case "config":
		return a.configCommand(remaining)
	case "logs", "tail":
		return a.logsCommand(remaining)
	case "version":
		return versionCommand(stdout)
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("%w: unknown command: %s", ErrUsage, subcommand)
	}
}

// app carries the per-invocation state shared by subcommands.
type app struct {
	ctx    context.Context
	cfg    *config.Config
	cws    *config.ConfigWithSources
	stdout io.Writer
	stderr io.Writer

	logger  *log.Logger
	logFile io.Closer
	backend storage.Backend
}

// openLogger returns the application logger, opening the log file on first use.
func (a *app) openLogger() *log.Logger {
	if a.logger != nil {
		return a.logger
	}
	opts, err := logging.ParseOptions(a.cfg.LogLevel, a.cfg.LogFormat, a.cfg.LogTimestamps, a.cfg.LogCaller)
	if err != nil {
		opts = logging.DefaultOptions()
	}

	var w io.Writer = a.stderr
	if !a.cfg.LogToStderr() {
		f, err := logging.OpenFile(a.cfg.LogFile)
		if err != nil {
			fmt.Fprintf(a.stderr, "warning: %v; logging to stderr\n", err)
		} else {
			w = f
			a.logFile = f
		}
	}
	a.logger = logging.New(w, opts)
	return a.logger
}

// openStore opens the configured backend and loads the task collection.
func (a *app) openStore() (*todo.Store, error) {
	logger := a.openLogger()
	backend, err := storage.Open(a.cfg.StorageKind(), storage.Options{
		Dir: a.cfg.DataDir,
		Ext: a.cfg.Format().Ext(),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", a.cfg.StorageKind(), err)
	}
	a.backend = backend

	persister := &todo.KVPersister{
		Backend: backend,
		Key:     a.cfg.StorageKey,
		Codec:   todo.NewCodec(a.cfg.Format(), a.cfg.ValidateSchema),
	}
	store, err := todo.Open(persister, todo.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	if issue := store.LoadIssue(); issue != nil {
		fmt.Fprintf(a.stderr, "warning: stored tasks could not be read and were moved to %q: %v\n",
			a.cfg.StorageKey+todo.CorruptSuffix, issue)
	}
	logger.Debug("store opened", "storage", a.cfg.StorageKind(), "key", a.cfg.StorageKey, "tasks", store.Len())
	return store, nil
}

func (a *app) close() {
	if a.backend != nil {
		if err := a.backend.Close(); err != nil && a.logger != nil {
			a.logger.Warn("closing storage failed", "err", err)
		}
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

func (a *app) tuiCommand(args []string) error {
	fs := newFlagSet("tui", a.stderr)
	altScreen := fs.Bool("alt-screen", a.cfg.AltScreen, "Use the alternate screen buffer")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments: %v", ErrUsage, fs.Args())
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	return ui.RunTUI(a.ctx, store, ui.WithAltScreen(*altScreen), ui.WithLogger(a.openLogger()))
}

func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "tasktracker version %s\n", Version)
	return nil
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("tasktracker "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "tasktracker - a small task list for the terminal")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasktracker [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                    Interactive task list (default on a terminal)")
	fmt.Fprintln(w, "  add <title...>         Add a task")
	fmt.Fprintln(w, "  ls                     List tasks (default when not on a terminal)")
	fmt.Fprintln(w, "  toggle <id>            Mark a task completed or active")
	fmt.Fprintln(w, "  edit <id> <title...>   Rename a task")
	fmt.Fprintln(w, "  rm <id>                Delete a task")
	fmt.Fprintln(w, "  clear                  Delete all completed tasks")
	fmt.Fprintln(w, "  stats                  Show task counts")
	fmt.Fprintln(w, "  doctor                 Check storage, record and config")
	fmt.Fprintln(w, "  config                 Show the effective configuration")
	fmt.Fprintln(w, "  logs                   Show the log file")
	fmt.Fprintln(w, "  version                Show version information")
	fmt.Fprintln(w, "  help                   Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options:")
	fmt.Fprintln(w, "  -filter string   all, active or completed (default all)")
	fmt.Fprintln(w, "  -search string   Case-insensitive title search")
	fmt.Fprintln(w, "  -format string   text, json or yaml (default text)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Logs Options:")
	fmt.Fprintln(w, "  -n int           Number of lines to show (0 = all)")
	fmt.Fprintln(w, "  -f, -follow      Follow the log (like tail -f)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Every global option can also be set with a TASKTRACKER_* environment")
	fmt.Fprintln(w, "variable or a config file; run 'tasktracker config' to see them.")
}
