// Package layout selects and drives node positioning algorithms.
//
// Every algorithm implements [Strategy]: Step advances it and reports
// stability, NodePosition reads a node's position. Callers pick an algorithm
// once by [Type] through [New] and never branch on it again.
//
// # Layout Types
//
//   - Force-directed ([ForceDirected2D], [ForceDirected3D]) and its DAG
//     variants ([TreeTd2D], [TreeLr2D], [TreeTd3D], [TreeLr3D],
//     [RadialOut2D], [RadialOut3D]), built on package force
//   - [Circular2D]: nodes evenly spaced on a circle
//   - [HierarchicalTd], [HierarchicalLr]: tidy tree over first-inbound parents
//   - [NoOverlap]: relaxes prior positions until nodes stop overlapping
//   - [ForceAtlas2]: the ForceAtlas2 attraction/repulsion model
//   - [Custom]: positions come only from a [PositionFunc]
//
// All of them finish their work in the first Step (or at construction), so
// [Converge] returns after one step.
//
// # Overrides
//
// Positions resolve with a fixed precedence: the [PositionFunc] if it
// answers, then the engine's [Drags], then the algorithm. Force layouts also
// pin dragged nodes inside the simulation so their neighbours settle around
// them.
//
// # Configuration Faults
//
// [New] fails before any layout work when the type is unknown
// (INVALID_LAYOUT_TYPE), when the options member does not match the type or
// a custom layout lacks a position function (INVALID_OPTIONS), or when a
// clustering attribute is given to a layout other than the plain
// force-directed ones (UNSUPPORTED_CLUSTERING).
package layout
