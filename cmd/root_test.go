// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nibzard/tasktracker/internal/config"
)

// isolate points HOME, XDG dirs and the working directory at temp dirs and
// clears every TASKTRACKER_* variable. It returns the data dir to use.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, key := range config.Keys() {
		t.Setenv(config.EnvVar(key), "")
	}
	chdir(t, t.TempDir())
	return filepath.Join(home, "data")
}

// run executes the CLI and returns stdout, stderr and the error.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Execute(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRun(t *testing.T) {
	isolate(t)

	t.Run("shows help with -help flag", func(t *testing.T) {
		out, _, err := run(t, "-help")
		if err != nil {
			t.Fatalf("expected no error with -help, got %v", err)
		}
		if !strings.Contains(out, "Usage:") {
			t.Errorf("help output missing usage:\n%s", out)
		}
	})

	t.Run("shows help with -h flag", func(t *testing.T) {
		if _, _, err := run(t, "-h"); err != nil {
			t.Errorf("expected no error with -h, got %v", err)
		}
	})

	t.Run("shows version with -version flag", func(t *testing.T) {
		out, _, err := run(t, "-version")
		if err != nil {
			t.Fatalf("expected no error with -version, got %v", err)
		}
		if want := "tasktracker version " + Version; !strings.Contains(out, want) {
			t.Errorf("version output = %q, want %q", out, want)
		}
	})

	t.Run("shows version with version command", func(t *testing.T) {
		if _, _, err := run(t, "version"); err != nil {
			t.Errorf("expected no error with version command, got %v", err)
		}
	})

	t.Run("shows help with help command", func(t *testing.T) {
		out, _, err := run(t, "help")
		if err != nil {
			t.Fatalf("expected no error with help command, got %v", err)
		}
		for _, cmd := range []string{"add <title...>", "toggle <id>", "doctor"} {
			if !strings.Contains(out, cmd) {
				t.Errorf("help output missing %q", cmd)
			}
		}
	})

	t.Run("unknown command returns usage error", func(t *testing.T) {
		_, stderr, err := run(t, "unknown-command")
		if !errors.Is(err, ErrUsage) {
			t.Fatalf("expected ErrUsage, got %v", err)
		}
		if !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("expected 'unknown command' error, got %v", err)
		}
		if !strings.Contains(stderr, "Unknown command: unknown-command") {
			t.Errorf("stderr = %q", stderr)
		}
	})

	t.Run("invalid config is an error", func(t *testing.T) {
		_, _, err := run(t, "-storage", "postgres", "ls")
		if err == nil || !strings.Contains(err.Error(), "loading config") {
			t.Errorf("expected config error, got %v", err)
		}
	})
}

func TestConfigCommand(t *testing.T) {
	dir := isolate(t)
	t.Setenv("TASKTRACKER_LOG_LEVEL", "debug")

	out, _, err := run(t, "-data-dir", dir, "-storage", "sqlite", "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	for _, want := range []string{
		"# no config file",
		`storage`, `"sqlite"`, "(flag, TASKTRACKER_STORAGE)",
		`"debug"`, "(environment, TASKTRACKER_LOG_LEVEL)",
		`"json"`, "(default, TASKTRACKER_FORMAT)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q:\n%s", want, out)
		}
	}

	out, _, err = run(t, "config", "-example")
	if err != nil {
		t.Fatalf("config -example: %v", err)
	}
	if out != config.ExampleConfig() {
		t.Errorf("config -example did not print the example config")
	}

	out, _, err = run(t, "config", "-schema")
	if err != nil {
		t.Fatalf("config -schema: %v", err)
	}
	if !strings.Contains(out, `"$schema"`) {
		t.Errorf("config -schema output = %q", out)
	}
}

func TestConfigCommandListsFiles(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile("tasktracker.toml", []byte("storage_key = \"work\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := run(t, "-data-dir", dir, "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out, "# config file: tasktracker.toml") {
		t.Errorf("config output missing project file:\n%s", out)
	}
	if !strings.Contains(out, `"work"`) || !strings.Contains(out, "project file") {
		t.Errorf("config output missing project value:\n%s", out)
	}

	out, _, err = run(t, "-data-dir", dir, "-log-file", "-", "doctor")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	if !strings.Contains(out, "✅ tasktracker.toml (highest priority)") {
		t.Errorf("doctor output missing config file:\n%s", out)
	}
}

func TestDoctor(t *testing.T) {
	dir := isolate(t)

	out, _, err := run(t, "-data-dir", dir, "-log-file", "-", "doctor", "-v")
	if err != nil {
		t.Fatalf("doctor on empty data dir: %v\n%s", err, out)
	}
	for _, want := range []string{"Tasktracker Doctor", "✅ Record: none yet", "Keys (0)", "All checks passed."} {
		if !strings.Contains(out, want) {
			t.Errorf("doctor output missing %q:\n%s", want, out)
		}
	}

	if _, _, err := run(t, "-data-dir", dir, "-log-file", "-", "add", "Buy milk"); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, _, err = run(t, "-data-dir", dir, "-log-file", "-", "doctor", "-v")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	for _, want := range []string{"✅ Record: 1 tasks (1 active, 0 done)", "- my-tasks"} {
		if !strings.Contains(out, want) {
			t.Errorf("doctor output missing %q:\n%s", want, out)
		}
	}
}

func TestDoctorReportsCorruptRecord(t *testing.T) {
	dir := isolate(t)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	record := filepath.Join(dir, "my-tasks.json")
	if err := os.WriteFile(record, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, _, err := run(t, "-data-dir", dir, "-log-file", "-", "doctor")
	if !errors.Is(err, ErrDoctorFailed) {
		t.Fatalf("expected ErrDoctorFailed, got %v", err)
	}
	if !strings.Contains(out, "❌ Record") {
		t.Errorf("doctor output missing record failure:\n%s", out)
	}

	// Doctor only reports; the record is left in place.
	data, err := os.ReadFile(record)
	if err != nil || string(data) != "{not json" {
		t.Errorf("record changed by doctor: %q, %v", data, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "my-tasks.corrupt.json")); !os.IsNotExist(err) {
		t.Errorf("doctor should not quarantine, stat err = %v", err)
	}
}

func TestLogsCommand(t *testing.T) {
	dir := isolate(t)
	logFile := filepath.Join(dir, "app.log")

	out, _, err := run(t, "-data-dir", dir, "-log-file", logFile, "logs")
	if err != nil {
		t.Fatalf("logs without file: %v", err)
	}
	if !strings.Contains(out, "No log file at") {
		t.Errorf("logs output = %q", out)
	}

	if _, _, err := run(t, "-data-dir", dir, "-log-file", logFile, "add", "Walk dog"); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, _, err = run(t, "-data-dir", dir, "-log-file", logFile, "logs", "-n", "10")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if !strings.Contains(out, "task added") {
		t.Errorf("logs output missing entry:\n%s", out)
	}

	_, _, err = run(t, "-data-dir", dir, "-log-file", "-", "logs")
	if !errors.Is(err, ErrUsage) {
		t.Errorf("logs with stderr logging: expected ErrUsage, got %v", err)
	}
}

// chdir changes the working directory for the duration of the test,
// equivalent to testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
