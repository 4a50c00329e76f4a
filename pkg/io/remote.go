package io

import (
	"bytes"
	"context"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/matzehuels/graphscape/pkg/errors"
	"github.com/matzehuels/graphscape/pkg/graph"
	"github.com/matzehuels/graphscape/pkg/httputil"
)

// IsRemote reports whether input names an http or https URL.
func IsRemote(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// FetchGraph downloads the graph document at rawURL. The decoder is chosen
// by the extension of the URL path; anything other than .yaml or .yml is
// read as JSON.
func FetchGraph(ctx context.Context, rawURL string) (graph.Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return graph.Document{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "parse %s", rawURL)
	}
	data, err := httputil.Fetch(ctx, nil, rawURL, 0)
	if err != nil {
		return graph.Document{}, err
	}
	doc, err := ReadGraph(bytes.NewReader(data), FormatOf(u.Path))
	if err != nil {
		return graph.Document{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", rawURL)
	}
	return doc, nil
}

// Open loads a graph from a local path or an http(s) URL.
func Open(ctx context.Context, input string) (graph.Document, error) {
	if IsRemote(input) {
		return FetchGraph(ctx, input)
	}
	return ImportGraph(input)
}

// LocalName returns the path outputs derived from input are written next
// to. Local paths are returned unchanged; URLs map to the base name of
// their path in the working directory, or "graph.json" when the path is
// empty.
func LocalName(input string) string {
	if !IsRemote(input) {
		return input
	}
	u, err := url.Parse(input)
	if err != nil {
		return "graph.json"
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return "graph.json"
	}
	return filepath.Clean(base)
}
