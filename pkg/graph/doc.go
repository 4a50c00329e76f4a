// Package graph provides the data model and directed multigraph structure
// used by the layout engine.
//
// # Data Model
//
// Callers hand the engine flat lists of [RawNode] and [RawEdge] values. The
// engine produces render-ready [Node] and [Edge] values on every run; they are
// always freshly allocated and never mutated in place by later runs.
//
// # Structure
//
// [Build] turns raw lists into a [Structure]: a directed multigraph keyed by
// node ID, with edges keyed by (source, target, edge ID) so parallel edges are
// kept. The structure is backed by a gonum multi.DirectedGraph, which lets
// gonum algorithms (PageRank, Barnes-Hut) run directly on it through
// [Structure.Directed].
//
// Data faults never abort a build:
//
//   - empty or duplicate node IDs are logged and skipped
//   - edges with a missing endpoint are logged and skipped
//   - duplicate edge IDs are logged and skipped
//
// Every skipped record is reported in the returned [BuildReport].
//
// # Example
//
//	s, report := graph.Build(nodes, edges, logger)
//	for _, id := range s.NodeIDs() {
//	    fmt.Println(id, s.InboundNeighbors(id))
//	}
//	if report.HasFaults() {
//	    logger.Warn("skipped records", "nodes", report.SkippedNodes)
//	}
package graph
