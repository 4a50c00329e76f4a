package io

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/graphscape/pkg/errors"
	"github.com/matzehuels/graphscape/pkg/graph"
)

// WriteJSON encodes v as indented JSON and writes it to w.
func WriteJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode JSON")
	}
	return nil
}

// ExportJSON writes v as indented JSON to the file at path.
func ExportJSON(v any, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := WriteJSON(v, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteYAML encodes a graph document as YAML. The output can be read back
// with [ReadYAML].
func WriteYAML(doc graph.Document, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode YAML")
	}
	return enc.Close()
}

// LayoutPath returns the default result path for the graph file at input:
// the input path with its extension replaced by ".layout.json".
func LayoutPath(input string) string {
	return OutputPath(input, ".layout.json")
}

// OutputPath replaces the extension of input with suffix.
func OutputPath(input, suffix string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}
