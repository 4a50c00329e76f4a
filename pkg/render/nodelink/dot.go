package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/graphscape/pkg/errors"
	"github.com/matzehuels/graphscape/pkg/graph"
	"github.com/matzehuels/graphscape/pkg/render"
)

// Output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
	FormatDOT = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
	FormatDOT: true,
}

// pointsPerInch converts Graphviz node sizes, which are given in inches.
const pointsPerInch = 72.0

// Options configures diagram generation.
type Options struct {
	// Scale multiplies layout coordinates. Zero means 1.
	Scale float64

	// Detailed adds each node's data attributes to visible labels.
	Detailed bool
}

// ToDOT converts positioned nodes and edges to Graphviz DOT source with
// every node pinned.
func ToDOT(nodes []graph.Node, edges []graph.Edge, opts Options) string {
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [shape=circle, fixedsize=true, style=filled, fillcolor=\"#7ca0ab\", color=\"#7ca0ab\", fontsize=10, fontcolor=\"#2b2b2b\"];\n")
	buf.WriteString("  edge [color=\"#b0b0b0\", arrowsize=0.5, fontsize=8];\n")
	buf.WriteString("\n")

	for _, n := range nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, scale, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		attrs := []string{fmt.Sprintf("penwidth=%s", num(e.Size))}
		if e.LabelVisible && e.Label != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n graph.Node, scale float64, detailed bool) []string {
	diameter := 2 * n.Size * scale / pointsPerInch
	attrs := []string{
		fmt.Sprintf("pos=\"%s,%s!\"", num(n.Position.X*scale), num(n.Position.Y*scale)),
		"pin=true",
		fmt.Sprintf("width=%s", num(diameter)),
		fmt.Sprintf("label=%q", nodeLabel(n, detailed)),
	}
	if n.Fill != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", n.Fill), fmt.Sprintf("color=%q", n.Fill))
	}
	if n.Label != "" {
		attrs = append(attrs, fmt.Sprintf("tooltip=%q", n.Label))
	}
	return attrs
}

func nodeLabel(n graph.Node, detailed bool) string {
	if !n.LabelVisible {
		return ""
	}
	text := n.Label
	if text == "" {
		text = n.ID
	}
	if !detailed || len(n.Data) == 0 {
		return text
	}
	lines := []string{text}
	for _, k := range slices.Sorted(maps.Keys(n.Data)) {
		lines = append(lines, fmt.Sprintf("%s: %v", k, n.Data[k]))
	}
	return strings.Join(lines, "\n")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Render draws DOT source in the given format. Node positions are kept as
// pinned; Graphviz only routes edges.
func Render(ctx context.Context, dot string, format string) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return renderGraphviz(ctx, dot, graphviz.SVG)
	case FormatPNG:
		return renderGraphviz(ctx, dot, graphviz.PNG)
	case FormatPDF:
		svg, err := renderGraphviz(ctx, dot, graphviz.SVG)
		if err != nil {
			return nil, err
		}
		return render.ToPDF(ctx, svg)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown output format %q", format)
}

func renderGraphviz(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	if format == graphviz.SVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="(-?[0-9.]+)\s+(-?[0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
