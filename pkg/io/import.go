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

// Input formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidFormats is the set of supported input formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatYAML: true,
}

// FormatOf returns the input format implied by path's extension.
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ReadJSON decodes a JSON graph document from r. Unknown fields are
// ignored. ReadJSON does not close r.
func ReadJSON(r io.Reader) (graph.Document, error) {
	var doc graph.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return graph.Document{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode JSON graph")
	}
	return doc, nil
}

// ReadYAML decodes a YAML graph document from r. An empty stream yields an
// empty document.
func ReadYAML(r io.Reader) (graph.Document, error) {
	var doc graph.Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return graph.Document{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode YAML graph")
	}
	return doc, nil
}

// ReadGraph decodes a graph document in the given format.
func ReadGraph(r io.Reader, format string) (graph.Document, error) {
	switch format {
	case FormatJSON, "":
		return ReadJSON(r)
	case FormatYAML:
		return ReadYAML(r)
	default:
		return graph.Document{}, errors.New(errors.ErrCodeInvalidFormat, "unknown input format %q", format)
	}
}

// ImportGraph reads the graph document at path, choosing the decoder by
// file extension.
func ImportGraph(path string) (graph.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return graph.Document{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return graph.Document{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	doc, err := ReadGraph(f, FormatOf(path))
	if err != nil {
		return graph.Document{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return doc, nil
}
