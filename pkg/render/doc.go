// Package render draws positioned graphs.
//
// The [nodelink] subpackage turns a pipeline result into Graphviz DOT with
// pinned node positions and renders it to SVG or PNG. This package holds
// format conversion shared by renderers: [ToPDF] converts SVG with the
// external rsvg-convert tool (from librsvg).
//
//	svg, err := nodelink.Render(ctx, dot, nodelink.FormatSVG)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [nodelink]: github.com/matzehuels/graphscape/pkg/render/nodelink
package render
