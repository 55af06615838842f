package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader errors.
var (
	// ErrNotMapping indicates a pipeline document whose top level is a list
	// or a scalar. Pipeline files are keyed by cycles, history and nodes.
	ErrNotMapping = errors.New("pipeline document must be a mapping")

	// ErrUnsupportedFormat indicates a file extension other than .yaml, .yml
	// or .json.
	ErrUnsupportedFormat = errors.New("unsupported pipeline file extension")
)

// LoadPipeline reads and decodes a pipeline file. Errors past the read step
// are prefixed with path.
func LoadPipeline(path string) (Pipeline, error) {
	c, err := FromFile(path)
	if err != nil {
		return Pipeline{}, err
	}
	p, err := DecodePipeline(c)
	if err != nil {
		return Pipeline{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// FromFile loads a pipeline document, picking the decoder by extension
// (.yaml, .yml or .json).
func FromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var c Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		c, err = FromYAML(data)
	case ".json":
		c, err = FromJSON(data)
	default:
		return Config{}, fmt.Errorf("%s: %w %q", path, ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// FromYAML decodes a YAML pipeline document. An empty document yields an
// empty Config.
func FromYAML(data []byte) (Config, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return fromDocument(doc)
}

// FromJSON decodes a JSON pipeline document. A null document yields an
// empty Config.
func FromJSON(data []byte) (Config, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("parse json: %w", err)
	}
	return fromDocument(doc)
}

func fromDocument(doc any) (Config, error) {
	switch v := doc.(type) {
	case nil:
		return New(nil), nil
	case map[string]any:
		return New(v), nil
	default:
		return Config{}, fmt.Errorf("%w, got %s", ErrNotMapping, documentKind(v))
	}
}

func documentKind(v any) string {
	switch v.(type) {
	case []any:
		return "list"
	case map[any]any:
		return "mapping with non-string keys"
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
