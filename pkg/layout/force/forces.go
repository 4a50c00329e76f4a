package force

import (
	"math"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// =============================================================================
// Centering
// =============================================================================

// Center translates all bodies so their mean position sits at the origin.
func Center(s *Simulation) Force {
	return ForceFunc(func(float64) {
		n := len(s.bodies)
		if n == 0 {
			return
		}
		var mean r3.Vec
		for _, b := range s.bodies {
			mean = r3.Add(mean, b.Pos)
		}
		mean = r3.Scale(1/float64(n), mean)
		if s.dims == 2 {
			mean.Z = 0
		}
		for _, b := range s.bodies {
			b.Pos = r3.Sub(b.Pos, mean)
		}
	})
}

// =============================================================================
// Many-Body
// =============================================================================

// distanceMin2 bounds the force between very close bodies.
const distanceMin2 = 1.0

// ManyBody applies pairwise attraction (positive strength) or repulsion
// (negative strength) falling off with squared distance.
type ManyBody struct {
	sim       *Simulation
	strength  float64
	barnesHut bool
	theta     float64

	// exactFallbacks counts ticks where the tree could not be built.
	exactFallbacks int
}

// NewManyBody creates a many-body force. When barnesHut is set the force is
// approximated with gonum's Barnes-Hut tree at opening angle theta.
func NewManyBody(s *Simulation, strength float64, barnesHut bool, theta float64) *ManyBody {
	return &ManyBody{sim: s, strength: strength, barnesHut: barnesHut, theta: theta}
}

// Apply implements [Force].
func (m *ManyBody) Apply(alpha float64) {
	if m.strength == 0 || len(m.sim.bodies) < 2 {
		return
	}
	if m.barnesHut {
		var ok bool
		if m.sim.dims == 3 {
			ok = m.applyVolume(alpha)
		} else {
			ok = m.applyPlane(alpha)
		}
		if ok {
			return
		}
		m.exactFallbacks++
	}
	m.applyExact(alpha)
}

func (m *ManyBody) applyExact(alpha float64) {
	bodies := m.sim.bodies
	for _, bi := range bodies {
		var dv r3.Vec
		for _, bj := range bodies {
			if bi == bj {
				continue
			}
			d := r3.Sub(bj.Pos, bi.Pos)
			if m.sim.dims == 2 {
				d.Z = 0
			}
			l := r3.Norm2(d)
			if l == 0 {
				d = r3.Vec{X: m.sim.jiggle(), Y: m.sim.jiggle()}
				if m.sim.dims == 3 {
					d.Z = m.sim.jiggle()
				}
				l = r3.Norm2(d)
			}
			if l < distanceMin2 {
				l = math.Sqrt(distanceMin2 * l)
			}
			dv = r3.Add(dv, r3.Scale(m.strength*alpha/l, d))
		}
		bi.Vel = r3.Add(bi.Vel, dv)
	}
}

func (m *ManyBody) applyPlane(alpha float64) bool {
	particles := make([]barneshut.Particle2, len(m.sim.bodies))
	for i, b := range m.sim.bodies {
		particles[i] = b
	}
	plane, err := barneshut.NewPlane(particles)
	if err != nil {
		return false
	}
	f := func(_, _ barneshut.Particle2, _, m2 float64, v r2.Vec) r2.Vec {
		l := v.X*v.X + v.Y*v.Y
		if l == 0 {
			return r2.Vec{}
		}
		if l < distanceMin2 {
			l = math.Sqrt(distanceMin2 * l)
		}
		return r2.Scale(m.strength*alpha*m2/l, v)
	}
	for _, b := range m.sim.bodies {
		dv := plane.ForceOn(b, m.theta, f)
		b.Vel.X += dv.X
		b.Vel.Y += dv.Y
	}
	return true
}

func (m *ManyBody) applyVolume(alpha float64) bool {
	particles := make([]barneshut.Particle3, len(m.sim.bodies))
	for i, b := range m.sim.bodies {
		particles[i] = b
	}
	volume, err := barneshut.NewVolume(particles)
	if err != nil {
		return false
	}
	f := func(_, _ barneshut.Particle3, _, m2 float64, v r3.Vec) r3.Vec {
		l := r3.Norm2(v)
		if l == 0 {
			return r3.Vec{}
		}
		if l < distanceMin2 {
			l = math.Sqrt(distanceMin2 * l)
		}
		return r3.Scale(m.strength*alpha*m2/l, v)
	}
	for _, b := range m.sim.bodies {
		b.Vel = r3.Add(b.Vel, volume.ForceOn(b, m.theta, f))
	}
	return true
}

// =============================================================================
// Links
// =============================================================================

// Link is a spring between two bodies.
type Link struct {
	Source, Target *Body
	Distance       float64

	// Strength overrides the default 1/min(degree) stiffness when non-zero.
	Strength float64

	strength float64
	bias     float64
}

// Links pulls linked bodies toward their rest distance. Stiffness defaults
// to the inverse of the smaller endpoint degree, and the correction is split
// between endpoints in proportion to their degrees.
type Links struct {
	sim   *Simulation
	links []*Link
}

// NewLinks initializes per-link strength and bias. Self links are dropped.
func NewLinks(s *Simulation, links []*Link) *Links {
	count := make(map[*Body]int)
	kept := links[:0:0]
	for _, l := range links {
		if l.Source == l.Target {
			continue
		}
		count[l.Source]++
		count[l.Target]++
		kept = append(kept, l)
	}
	for _, l := range kept {
		cs, ct := float64(count[l.Source]), float64(count[l.Target])
		l.bias = cs / (cs + ct)
		l.strength = l.Strength
		if l.strength == 0 {
			l.strength = 1 / math.Min(cs, ct)
		}
	}
	return &Links{sim: s, links: kept}
}

// Apply implements [Force].
func (f *Links) Apply(alpha float64) {
	for _, l := range f.links {
		src, tgt := l.Source, l.Target
		d := r3.Sub(r3.Add(tgt.Pos, tgt.Vel), r3.Add(src.Pos, src.Vel))
		if f.sim.dims == 2 {
			d.Z = 0
		}
		if d.X == 0 {
			d.X = f.sim.jiggle()
		}
		if d.Y == 0 {
			d.Y = f.sim.jiggle()
		}
		if f.sim.dims == 3 && d.Z == 0 {
			d.Z = f.sim.jiggle()
		}
		dist := r3.Norm(d)
		k := (dist - l.Distance) / dist * alpha * l.strength
		d = r3.Scale(k, d)
		tgt.Vel = r3.Sub(tgt.Vel, r3.Scale(l.bias, d))
		src.Vel = r3.Add(src.Vel, r3.Scale(1-l.bias, d))
	}
}

// =============================================================================
// Positioning
// =============================================================================

// Position pulls every body toward target along one axis.
func Position(s *Simulation, ax int, target, strength float64) Force {
	return ForceFunc(func(alpha float64) {
		for _, b := range s.bodies {
			v := axis(b.Vel, ax) + (target-axis(b.Pos, ax))*strength*alpha
			b.Vel = withAxis(b.Vel, ax, v)
		}
	})
}

// =============================================================================
// Radial
// =============================================================================

// Radial pulls each body toward a sphere (circle in 2D) around the origin.
// Bodies for which radius reports false are left alone.
func Radial(s *Simulation, radius func(b *Body) (float64, bool), strength float64) Force {
	return ForceFunc(func(alpha float64) {
		for _, b := range s.bodies {
			r, ok := radius(b)
			if !ok {
				continue
			}
			d := b.Pos
			if d.X == 0 {
				d.X = 1e-6
			}
			if d.Y == 0 {
				d.Y = 1e-6
			}
			if s.dims == 2 {
				d.Z = 0
			} else if d.Z == 0 {
				d.Z = 1e-6
			}
			dist := r3.Norm(d)
			k := (r - dist) * strength * alpha / dist
			b.Vel = r3.Add(b.Vel, r3.Scale(k, d))
		}
	})
}

// =============================================================================
// Collision
// =============================================================================

// Collide pushes overlapping bodies apart, treating each as a circle (or
// sphere) of its Radius times scale. Larger bodies move less.
func Collide(s *Simulation, strength, scale float64) Force {
	return ForceFunc(func(float64) {
		bodies := s.bodies
		for i, bi := range bodies {
			for _, bj := range bodies[i+1:] {
				r := (bi.Radius + bj.Radius) * scale
				if r <= 0 {
					continue
				}
				d := r3.Sub(r3.Add(bi.Pos, bi.Vel), r3.Add(bj.Pos, bj.Vel))
				if s.dims == 2 {
					d.Z = 0
				}
				l := r3.Norm2(d)
				if l >= r*r {
					continue
				}
				if l == 0 {
					d = r3.Vec{X: s.jiggle(), Y: s.jiggle()}
					l = r3.Norm2(d)
				}
				dist := math.Sqrt(l)
				k := (r - dist) / dist * strength
				ri2, rj2 := bi.Radius*bi.Radius, bj.Radius*bj.Radius
				w := rj2 / (ri2 + rj2)
				d = r3.Scale(k, d)
				bi.Vel = r3.Add(bi.Vel, r3.Scale(w, d))
				bj.Vel = r3.Sub(bj.Vel, r3.Scale(1-w, d))
			}
		}
	})
}
