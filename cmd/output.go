package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nibzard/tasktracker/internal/todo"
)

type outputFormat string

const (
	outputText outputFormat = "text"
	outputJSON outputFormat = "json"
	outputYAML outputFormat = "yaml"
)

func parseOutputFormat(s string) (outputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return outputText, nil
	case "json":
		return outputJSON, nil
	case "yaml", "yml":
		return outputYAML, nil
	default:
		return "", fmt.Errorf("%w: invalid format %q, must be one of: text, json, yaml", ErrUsage, s)
	}
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format outputFormat, v any) error {
	switch format {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}

// writeTaskList prints one task per line, or the empty-state message.
func writeTaskList(w io.Writer, tasks []todo.Task, query string) {
	if len(tasks) == 0 {
		if query != "" {
			fmt.Fprintf(w, "No tasks found for %q\n", query)
		} else {
			fmt.Fprintln(w, "No tasks yet!")
		}
		return
	}
	for _, t := range tasks {
		check := "[ ]"
		if t.Completed {
			check = "[x]"
		}
		fmt.Fprintf(w, "%s %d  %s\n", check, t.ID, t.Title)
	}
}
