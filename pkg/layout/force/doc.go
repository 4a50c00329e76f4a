// Package force implements force-directed graph layout.
//
// A [Simulation] moves bodies under a set of [Force] values, cooling an
// alpha parameter exponentially from 1 toward zero; each tick scales every
// force by the current alpha, so the layout settles as alpha falls. The
// integrator, cooling schedule and force formulas follow d3-force.
//
// # Forces
//
//   - [Links]: springs along edges with degree-weighted stiffness and bias
//   - [ManyBody]: inverse-square repulsion, exact or Barnes-Hut (gonum)
//   - [Center], [Position]: keep the layout around the origin
//   - [Radial]: rings around the origin, used by radial DAG modes
//   - [Collide]: keeps bodies from overlapping
//   - [Clustering]: pulls bodies toward per-cluster foci
//
// # DAG Modes
//
// [ApplyDag] maps node depth onto space. Axis modes (td, bu, lr, rl, zin,
// zout) pin one coordinate per body exactly; radial modes add a [Radial]
// force. When the depth analysis is invalid because the graph has a cycle,
// no DAG positioning is applied and the rest of the layout proceeds.
//
// # Clustering
//
// [Clustering] groups bodies by a node data attribute. Each cluster gets a
// disc whose area is the padded sum of its members' areas; the disc centers
// come from a secondary [Simulation] (collision, charge and inter-cluster
// links) or from a squarified treemap ([Squarify]). Edges inside a cluster
// use a stronger spring than edges between clusters.
//
// # Usage
//
//	opts := force.Options{DagMode: force.DagTopDown}.WithDefaults(force.Options{})
//	l := force.New(opts, force.Params{Structure: s, Depth: depth.AnalyzeStructure(s)})
//	l.Step()
//	pos, _ := l.Position("a")
package force
