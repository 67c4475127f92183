package todo

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/nibzard/tasktracker/internal/utils"
)

// Format is a record encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat parses a record format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("invalid record format %q, must be one of: json, yaml, toml", s)
	}
}

// Ext returns the file extension used for the format.
func (f Format) Ext() string {
	switch f {
	case FormatYAML:
		return ".yaml"
	case FormatTOML:
		return ".toml"
	default:
		return ".json"
	}
}

//go:embed tasks.schema.json
var schemaJSON []byte

const schemaURL = "https://tasktracker.local/tasks.schema.json"

// SchemaJSON returns the JSON Schema records are validated against.
func SchemaJSON() []byte {
	return append([]byte(nil), schemaJSON...)
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

// Codec encodes and decodes the task record.
type Codec struct {
	Format Format
	// Schema enables JSON Schema validation on Decode. Without it only the
	// collection invariants are checked.
	Schema bool
}

// NewCodec returns a codec for format.
func NewCodec(format Format, schema bool) *Codec {
	return &Codec{Format: format, Schema: schema}
}

// tomlRecord wraps the list because a TOML document must be a table.
type tomlRecord struct {
	Tasks []Task `toml:"tasks"`
}

// Encode serializes tasks.
func (c *Codec) Encode(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	switch c.Format {
	case FormatYAML:
		return yaml.Marshal(tasks)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(tomlRecord{Tasks: tasks}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

// Decode parses and validates a record.
func (c *Codec) Decode(data []byte) ([]Task, error) {
	raw, err := c.toJSON(data)
	if err != nil {
		return nil, err
	}

	if c.Schema {
		if err := validateSchema(raw); err != nil {
			return nil, err
		}
	}

	var tasks []Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("parse %s record: %w", c.Format, err)
	}
	if err := ValidateTasks(tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// toJSON normalizes any supported encoding to JSON so that one schema and
// one decoder cover every format.
func (c *Codec) toJSON(data []byte) ([]byte, error) {
	switch c.Format {
	case FormatYAML:
		var doc interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml record: %w", err)
		}
		return json.Marshal(doc)
	case FormatTOML:
		var doc map[string]interface{}
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, fmt.Errorf("parse toml record: %w", err)
		}
		list, ok := doc["tasks"]
		if !ok {
			return nil, &ValidationError{Path: "tasks", Err: errors.New("missing required table")}
		}
		return json.Marshal(list)
	default:
		if !json.Valid(data) {
			return nil, errors.New("parse json record: invalid JSON")
		}
		return data, nil
	}
}

func validateSchema(raw []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parse record for validation: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		return errors.Join(collectSchemaErrors(nil, ve)...)
	}
	return nil
}

func collectSchemaErrors(errs []error, err *jsonschema.ValidationError) []error {
	if err == nil {
		return errs
	}
	if len(err.Causes) == 0 {
		return append(errs, &ValidationError{
			Path: utils.JSONPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
	}
	for _, cause := range err.Causes {
		errs = collectSchemaErrors(errs, cause)
	}
	return errs
}

// ValidateTasks checks the collection invariants: positive unique ids and
// non-blank titles.
func ValidateTasks(tasks []Task) error {
	var errs []error
	seen := make(map[int64]int, len(tasks))
	for i, t := range tasks {
		path := fmt.Sprintf("[%d]", i)
		if t.ID <= 0 {
			errs = append(errs, &ValidationError{
				Path: path + ".id",
				Err:  fmt.Errorf("must be positive, got %d", t.ID),
			})
		}
		if prev, dup := seen[t.ID]; dup {
			errs = append(errs, &ValidationError{
				Path: path + ".id",
				Err:  fmt.Errorf("duplicate id %d (also at [%d])", t.ID, prev),
			})
		} else {
			seen[t.ID] = i
		}
		if blank(t.Title) {
			errs = append(errs, &ValidationError{
				Path: path + ".title",
				Err:  errors.New("must not be blank"),
			})
		}
	}
	return errors.Join(errs...)
}
