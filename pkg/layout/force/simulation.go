package force

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Phyllotaxis seeding constants.
const (
	initialRadius = 10.0
)

var (
	initialAngleRoll = math.Pi * (3 - math.Sqrt(5))
	initialAngleYaw  = math.Pi * 20 / (9 + math.Sqrt(221))
)

// Body is one simulated particle.
//
// Body satisfies the gonum barneshut Particle2 and Particle3 interfaces so
// the many-body force can hand bodies straight to a quadtree or octree.
type Body struct {
	ID    string
	Index int
	Pos   r3.Vec
	Vel   r3.Vec

	// Radius is used by collision and cluster sizing.
	Radius float64

	fixed [3]bool
	fix   r3.Vec
}

// Fix pins one axis (0 = x, 1 = y, 2 = z) at v.
func (b *Body) Fix(axis int, v float64) {
	b.fixed[axis] = true
	b.fix = withAxis(b.fix, axis, v)
}

// FixAll pins every axis at p.
func (b *Body) FixAll(p r3.Vec) {
	b.fixed = [3]bool{true, true, true}
	b.fix = p
}

// Fixed reports whether an axis is pinned.
func (b *Body) Fixed(axis int) bool { return b.fixed[axis] }

// Coord2 implements barneshut.Particle2.
func (b *Body) Coord2() r2.Vec { return r2.Vec{X: b.Pos.X, Y: b.Pos.Y} }

// Coord3 implements barneshut.Particle3.
func (b *Body) Coord3() r3.Vec { return b.Pos }

// Mass implements the barneshut particle interfaces. All bodies weigh the
// same; strength is applied by the force function.
func (b *Body) Mass() float64 { return 1 }

func axis(v r3.Vec, i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func withAxis(v r3.Vec, i int, x float64) r3.Vec {
	switch i {
	case 0:
		v.X = x
	case 1:
		v.Y = x
	default:
		v.Z = x
	}
	return v
}

// Force is applied once per tick. Forces adjust body velocities (or, for
// centering, positions) in place.
type Force interface {
	Apply(alpha float64)
}

// ForceFunc adapts a function to [Force].
type ForceFunc func(alpha float64)

// Apply calls f.
func (f ForceFunc) Apply(alpha float64) { f(alpha) }

// Simulation is a velocity-Verlet particle simulation with an exponentially
// cooling alpha, in two or three dimensions.
type Simulation struct {
	bodies []*Body
	index  map[string]*Body
	dims   int

	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64

	forces []Force
	rng    *rand.Rand
	ticks  int
}

// NewSimulation creates bodies for ids and seeds them on a phyllotaxis
// spiral (2D) or sphere (3D).
func NewSimulation(ids []string, dims int, seed uint64) *Simulation {
	if dims != 3 {
		dims = 2
	}
	s := &Simulation{
		bodies:        make([]*Body, len(ids)),
		index:         make(map[string]*Body, len(ids)),
		dims:          dims,
		alpha:         1,
		alphaMin:      DefaultAlphaMin,
		alphaDecay:    DefaultAlphaDecay,
		velocityDecay: 1 - DefaultVelocityDecay,
		rng:           rand.New(rand.NewPCG(seed, seed^0xdeadbeef)),
	}
	for i, id := range ids {
		b := &Body{ID: id, Index: i, Pos: phyllotaxis(i, dims)}
		s.bodies[i] = b
		s.index[id] = b
	}
	return s
}

func phyllotaxis(i, dims int) r3.Vec {
	if dims == 3 {
		radius := initialRadius * math.Cbrt(0.5+float64(i))
		roll := float64(i) * initialAngleRoll
		yaw := float64(i) * initialAngleYaw
		return r3.Vec{
			X: radius * math.Sin(roll) * math.Cos(yaw),
			Y: radius * math.Cos(roll),
			Z: radius * math.Sin(roll) * math.Sin(yaw),
		}
	}
	radius := initialRadius * math.Sqrt(0.5+float64(i))
	angle := float64(i) * initialAngleRoll
	return r3.Vec{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}
}

// AddForce appends a force. Forces apply in insertion order.
func (s *Simulation) AddForce(f Force) { s.forces = append(s.forces, f) }

// Bodies returns the simulated bodies in input order.
func (s *Simulation) Bodies() []*Body { return s.bodies }

// Body returns the body for id.
func (s *Simulation) Body(id string) (*Body, bool) {
	b, ok := s.index[id]
	return b, ok
}

// Dims returns 2 or 3.
func (s *Simulation) Dims() int { return s.dims }

// Alpha returns the current cooling parameter.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Ticks returns the number of ticks run so far.
func (s *Simulation) Ticks() int { return s.ticks }

// SetAlphaDecay overrides the cooling rate.
func (s *Simulation) SetAlphaDecay(d float64) { s.alphaDecay = d }

// jiggle returns a tiny random offset used to separate coincident bodies.
func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}

// SettleFixed moves pinned axes to their pinned values without ticking.
func (s *Simulation) SettleFixed() {
	for _, b := range s.bodies {
		for a := 0; a < 3; a++ {
			if b.fixed[a] {
				b.Pos = withAxis(b.Pos, a, axis(b.fix, a))
				b.Vel = withAxis(b.Vel, a, 0)
			}
		}
	}
}

// Tick advances the simulation by one step at the current alpha.
func (s *Simulation) Tick() {
	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay

	for _, f := range s.forces {
		f.Apply(s.alpha)
	}

	for _, b := range s.bodies {
		for a := 0; a < s.dims; a++ {
			if b.fixed[a] {
				b.Pos = withAxis(b.Pos, a, axis(b.fix, a))
				b.Vel = withAxis(b.Vel, a, 0)
				continue
			}
			v := axis(b.Vel, a) * s.velocityDecay
			b.Vel = withAxis(b.Vel, a, v)
			b.Pos = withAxis(b.Pos, a, axis(b.Pos, a)+v)
		}
	}
	s.ticks++
}

// Run ticks while alpha exceeds stop, at most maxTicks times in total, and
// returns the number of ticks run by this call.
func (s *Simulation) Run(stop float64, maxTicks int) int {
	n := 0
	for s.alpha > stop && s.alpha > s.alphaMin && s.ticks < maxTicks {
		s.Tick()
		n++
	}
	return n
}
