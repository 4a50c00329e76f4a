// Package nodelink renders positioned graphs as node-link diagrams.
//
// # Overview
//
// The engine computes every node position itself, so Graphviz is used only
// to draw: [ToDOT] pins each node at its computed coordinates and
// [Render] runs the neato engine, which keeps pinned nodes in place and only
// routes edges. Node diameters follow node sizes and labels follow the
// label visibility the pipeline decided.
//
// # Usage
//
//	dot := nodelink.ToDOT(res.Nodes, res.Edges, nodelink.Options{})
//	svg, err := nodelink.Render(ctx, dot, nodelink.FormatSVG)
//
// # Formats
//
//   - svg: rendered by Graphviz, viewBox normalized to start at the origin
//   - png: rendered by Graphviz
//   - pdf: SVG converted with rsvg-convert, see [render.ToPDF]
//   - dot: the DOT source itself
//
// # Coordinates
//
// Layout space has y pointing up, like Graphviz. One layout unit maps to one
// point scaled by [Options.Scale]. The z coordinate of 3D layouts is
// dropped.
package nodelink
