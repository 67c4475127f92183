package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/nibzard/tasktracker/internal/config"
	"github.com/nibzard/tasktracker/internal/datadir"
	"github.com/nibzard/tasktracker/internal/storage"
	"github.com/nibzard/tasktracker/internal/todo"
)

// ErrDoctorFailed is returned when at least one doctor check fails.
var ErrDoctorFailed = errors.New("doctor found problems")

func (a *app) doctorCommand(args []string) error {
	fs := newFlagSet("doctor", a.stderr)
	verbose := fs.Bool("v", false, "List every stored record key")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments: %v", ErrUsage, fs.Args())
	}
	w := a.stdout

	fmt.Fprintln(w, "Tasktracker Doctor")
	fmt.Fprintln(w, "==================")
	fmt.Fprintln(w)

	allOK := true

	// Check data directory
	fmt.Fprintf(w, "Data dir: %s\n", a.cfg.DataDir)
	if a.cfg.StorageKind() == storage.KindMemory {
		fmt.Fprintln(w, "  ✅ Not used (memory storage)")
	} else if err := datadir.Ensure(a.cfg.DataDir); err != nil {
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		allOK = false
	} else {
		fmt.Fprintln(w, "  ✅ OK")
	}
	fmt.Fprintln(w)

	// Check storage and the stored record
	fmt.Fprintf(w, "Storage: %s (key %q, format %s)\n", a.cfg.StorageKind(), a.cfg.StorageKey, a.cfg.Format())
	backend, err := storage.Open(a.cfg.StorageKind(), storage.Options{
		Dir: a.cfg.DataDir,
		Ext: a.cfg.Format().Ext(),
	})
	if err != nil {
		fmt.Fprintf(w, "  ❌ Open: %v\n", err)
		allOK = false
	} else {
		a.backend = backend
		fmt.Fprintln(w, "  ✅ Open")
		if !a.checkRecord(backend) {
			allOK = false
		}
		if *verbose {
			keys, err := backend.Keys()
			if err != nil {
				fmt.Fprintf(w, "  ❌ Keys: %v\n", err)
				allOK = false
			} else {
				fmt.Fprintf(w, "  Keys (%d):\n", len(keys))
				for _, k := range keys {
					fmt.Fprintf(w, "    - %s\n", k)
				}
			}
		}
	}
	fmt.Fprintln(w)

	// Check log destination
	fmt.Fprintln(w, "Log:")
	if a.cfg.LogToStderr() {
		fmt.Fprintln(w, "  ✅ stderr")
	} else if info, err := os.Stat(a.cfg.LogFile); err == nil {
		fmt.Fprintf(w, "  ✅ %s (%d bytes)\n", a.cfg.LogFile, info.Size())
	} else if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(w, "  ✅ %s (not created yet)\n", a.cfg.LogFile)
	} else {
		fmt.Fprintf(w, "  ❌ %s: %v\n", a.cfg.LogFile, err)
		allOK = false
	}
	fmt.Fprintln(w)

	// Config files
	fmt.Fprintln(w, "Config files:")
	if len(a.cws.Files) == 0 {
		fmt.Fprintf(w, "  (none, user config would be %s)\n", config.UserConfigPath())
	}
	for _, f := range a.cws.Files {
		if f == a.cws.GetConfigFile() {
			fmt.Fprintf(w, "  ✅ %s (highest priority)\n", f)
			continue
		}
		fmt.Fprintf(w, "  ✅ %s\n", f)
	}
	fmt.Fprintln(w)

	if !allOK {
		fmt.Fprintln(w, "Some checks failed.")
		return ErrDoctorFailed
	}
	fmt.Fprintln(w, "All checks passed.")
	return nil
}

// checkRecord decodes the stored record without quarantining it.
func (a *app) checkRecord(backend storage.Backend) bool {
	w := a.stdout
	key := a.cfg.StorageKey
	ok := true

	data, err := backend.Get(key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		fmt.Fprintln(w, "  ✅ Record: none yet (empty task list)")
	case err != nil:
		fmt.Fprintf(w, "  ❌ Record: %v\n", err)
		ok = false
	default:
		codec := todo.NewCodec(a.cfg.Format(), a.cfg.ValidateSchema)
		tasks, err := codec.Decode(data)
		if err != nil {
			fmt.Fprintf(w, "  ❌ Record: %v\n", err)
			ok = false
		} else {
			st := todo.Count(tasks)
			fmt.Fprintf(w, "  ✅ Record: %d tasks (%d active, %d done)\n", st.Total, st.Active, st.Completed)
		}
	}

	if _, err := backend.Get(key + todo.CorruptSuffix); err == nil {
		fmt.Fprintf(w, "  ⚠️  Backup of an unreadable record exists: %s\n", key+todo.CorruptSuffix)
	}
	return ok
}
