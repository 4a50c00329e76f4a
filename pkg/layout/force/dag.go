package force

import "github.com/matzehuels/graphscape/pkg/graph/depth"

// LevelDistance returns the spacing between depth levels.
//
// The spacing grows with graph size so wide levels stay readable. Radial
// modes space rings five times tighter than axis-pinned modes.
func LevelDistance(nodeCount, maxDepth int, ratio float64, mode DagMode) float64 {
	if maxDepth <= 0 {
		maxDepth = 1
	}
	modeDistance := 5.0
	if mode.IsRadial() {
		modeDistance = 1
	}
	return float64(nodeCount) / float64(maxDepth) * ratio * modeDistance
}

// ApplyDag adds depth-based positioning to s.
//
// Axis modes pin one coordinate per body at (depth - maxDepth/2) * distance,
// inverted for td, rl and zout. Radial modes add a radial force at
// depth * distance (counted from the deepest level for radialin). Nothing is
// added when mode is empty or d is invalid; the return value reports whether
// positioning was applied.
func ApplyDag(s *Simulation, d depth.Result, mode DagMode, ratio float64) bool {
	if mode == DagNone || d.Invalid {
		return false
	}
	dist := LevelDistance(len(s.bodies), d.MaxDepth, ratio, mode)

	if mode.IsRadial() {
		s.AddForce(Radial(s, func(b *Body) (float64, bool) {
			lvl := d.Depth(b.ID)
			if lvl == depth.Unvisited {
				return 0, false
			}
			if mode == DagRadialIn {
				lvl = d.MaxDepth - lvl
			}
			return float64(lvl) * dist, true
		}, 1))
		return true
	}

	ax, invert := 0, false
	switch mode {
	case DagLeftRight:
		ax = 0
	case DagRightLeft:
		ax, invert = 0, true
	case DagTopDown:
		ax, invert = 1, true
	case DagBottomUp:
		ax = 1
	case DagZIn:
		ax = 2
	case DagZOut:
		ax, invert = 2, true
	}
	if ax == 2 && s.dims < 3 {
		return false
	}

	half := float64(d.MaxDepth) / 2
	for _, b := range s.bodies {
		lvl := d.Depth(b.ID)
		if lvl == depth.Unvisited {
			continue
		}
		v := (float64(lvl) - half) * dist
		if invert {
			v = -v
		}
		b.Fix(ax, v)
	}
	s.SettleFixed()
	return true
}
