package layout

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/graphscape/pkg/graph"
	"github.com/matzehuels/graphscape/pkg/layout/force"
)

// =============================================================================
// No-overlap relaxation
// =============================================================================

// noOverlapSeed seeds the jitter applied to coincident start positions.
const noOverlapSeed = uint64(7)

// buildNoOverlap pushes overlapping nodes apart until none overlap or the
// iteration budget is spent. It starts from the seed positions of the last
// run; nodes without one start at the origin with a small deterministic
// jitter. All work happens here, so Step has nothing left to do.
func buildNoOverlap(o Options, p Params) Strategy {
	opts := o.noOverlapOptions()
	ids := p.Structure.NodeIDs()
	rng := rand.New(rand.NewPCG(noOverlapSeed, noOverlapSeed^0xdeadbeef))

	n := len(ids)
	xs, ys := make([]float64, n), make([]float64, n)
	sizes := make([]float64, n)
	for i, id := range ids {
		if pos, ok := p.Seed[id]; ok {
			xs[i], ys[i] = pos.X, pos.Y
		} else {
			xs[i], ys[i] = rng.Float64()-0.5, rng.Float64()-0.5
		}
		sizes[i] = force.DefaultNodeSize
		if raw, _ := p.Structure.Node(id); raw.Size > 0 {
			sizes[i] = raw.Size
		}
	}

	for it := 0; it < opts.MaxIterations; it++ {
		if relax(xs, ys, sizes, opts, rng) {
			break
		}
	}

	out := make(positions, n)
	for i, id := range ids {
		out[id] = graph.Position{X: xs[i], Y: ys[i]}
	}
	return out
}

// relax runs one no-overlap iteration and reports whether no pair overlapped.
// Nodes are bucketed into a GridSize×GridSize grid over their extents so only
// nodes sharing a cell are compared.
func relax(xs, ys, sizes []float64, opts NoOverlapOptions, rng *rand.Rand) bool {
	n := len(xs)
	if n < 2 {
		return true
	}
	extent := func(i int) float64 { return sizes[i]*opts.Ratio + opts.Margin }

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := range xs {
		e := extent(i)
		minX, maxX = math.Min(minX, xs[i]-e), math.Max(maxX, xs[i]+e)
		minY, maxY = math.Min(minY, ys[i]-e), math.Max(maxY, ys[i]+e)
	}
	g := opts.GridSize
	cellW := (maxX - minX) / float64(g)
	cellH := (maxY - minY) / float64(g)
	cell := func(v, lo, size float64) int {
		c := int((v - lo) / size)
		return min(max(c, 0), g-1)
	}

	grid := make([][]int, g*g)
	for i := range xs {
		e := extent(i)
		x0, x1 := cell(xs[i]-e, minX, cellW), cell(xs[i]+e, minX, cellW)
		y0, y1 := cell(ys[i]-e, minY, cellH), cell(ys[i]+e, minY, cellH)
		for cx := x0; cx <= x1; cx++ {
			for cy := y0; cy <= y1; cy++ {
				grid[cx*g+cy] = append(grid[cx*g+cy], i)
			}
		}
	}

	dx, dy := make([]float64, n), make([]float64, n)
	checked := make(map[[2]int]bool)
	converged := true
	for _, members := range grid {
		for a := 0; a < len(members); a++ {
			for b := a + 1; b < len(members); b++ {
				i, j := members[a], members[b]
				if checked[[2]int{i, j}] {
					continue
				}
				checked[[2]int{i, j}] = true

				xd, yd := xs[j]-xs[i], ys[j]-ys[i]
				dist := math.Hypot(xd, yd)
				if dist >= extent(i)+extent(j) {
					continue
				}
				converged = false
				if dist > 0 {
					dx[j] += xd / dist * (1 + sizes[i])
					dy[j] += yd / dist * (1 + sizes[i])
					dx[i] -= xd / dist * (1 + sizes[j])
					dy[i] -= yd / dist * (1 + sizes[j])
				} else {
					w := maxX - minX
					h := maxY - minY
					dx[j] += w * 0.01 * (0.5 - rng.Float64())
					dy[j] += h * 0.01 * (0.5 - rng.Float64())
					dx[i] -= w * 0.01 * (0.5 - rng.Float64())
					dy[i] -= h * 0.01 * (0.5 - rng.Float64())
				}
			}
		}
	}

	for i := range xs {
		xs[i] += dx[i] * 0.1 * opts.Speed
		ys[i] += dy[i] * 0.1 * opts.Speed
	}
	return converged
}
