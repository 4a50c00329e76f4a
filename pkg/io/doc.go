// Package io reads graph documents and writes run results.
//
// # Input Format
//
// A graph document has two top-level lists. JSON and YAML carry the same
// fields:
//
//	{
//	  "nodes": [
//	    {"id": "api", "label": "API", "data": {"team": "core"}},
//	    {"id": "db", "size": 12}
//	  ],
//	  "edges": [
//	    {"id": "api-db", "source": "api", "target": "db", "label": "reads"}
//	  ]
//	}
//
// Node fields:
//   - id: Unique string identifier (required)
//   - label: Display text; the ID is used when empty
//   - size: Raw size consumed by the "none" and "default" sizing strategies
//   - fill, icon: Passed through to the result untouched
//   - data: Free-form attributes, used for clustering and attribute sizing
//
// Edge fields:
//   - source, target: Node IDs (required)
//   - id: Edge identifier; derived from the endpoints when empty
//   - label, size, data: Passed through to the result
//
// Decoding does not validate the graph. Empty or duplicate IDs and dangling
// edges are reported by the pipeline as data faults, not here.
//
// # Format Detection
//
// [ImportGraph] picks the decoder from the file extension: ".yaml" and
// ".yml" decode YAML, everything else decodes JSON. [ReadGraph] takes the
// format explicitly, for input from stdin or an HTTP body.
//
// # Remote Graphs
//
// [Open] accepts an http or https URL as well as a path. Remote documents
// are fetched with retries through the httputil package and decoded by the
// extension of the URL path. [LocalName] maps a URL to the local file name
// that derived outputs are written next to.
//
// # Export
//
// [WriteJSON] and [ExportJSON] write any value, typically a pipeline result,
// as indented JSON. [LayoutPath] derives the default output path for a
// layout of an input file.
package io
