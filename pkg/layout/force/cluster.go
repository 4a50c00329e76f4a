package force

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// clusterAreaPadding inflates member area so cluster cells leave room
// between members.
const clusterAreaPadding = 1.3

// Cluster is one group of bodies sharing a clustering attribute value.
type Cluster struct {
	Key     string
	Members []*Body

	// Area is the summed, padded disc area of the members.
	Area float64
	// Radius is the radius of a disc with Area.
	Radius float64
	// Focus is the current centroid members are pulled toward.
	Focus r3.Vec
}

// Clustering pulls every clustered body toward its cluster's focus.
//
// With [ClusterForce] the foci come from a secondary simulation that holds
// one body per cluster and is ticked once for every tick of the main
// simulation. With [ClusterTreemap] the foci are the cell centers of a
// squarified treemap over the cluster areas, computed once. Foci lie in the
// z = 0 plane; in 3D simulations members are pulled toward that plane too.
type Clustering struct {
	sim      *Simulation
	clusters []*Cluster
	strength float64
	template *Simulation
}

// NewClustering groups the bodies of s by key. Bodies for which key reports
// false are not clustered. edges lists body pairs; pairs that cross clusters
// become links in the secondary simulation.
func NewClustering(s *Simulation, key func(*Body) (string, bool), edges [][2]*Body, typ ClusterType, strength float64, seed uint64) *Clustering {
	c := &Clustering{sim: s, strength: strength}

	byKey := make(map[string]*Cluster)
	groupOf := make(map[*Body]*Cluster)
	for _, b := range s.bodies {
		k, ok := key(b)
		if !ok {
			continue
		}
		cl, ok := byKey[k]
		if !ok {
			cl = &Cluster{Key: k}
			byKey[k] = cl
			c.clusters = append(c.clusters, cl)
		}
		cl.Members = append(cl.Members, b)
		cl.Area += math.Pi * b.Radius * b.Radius * clusterAreaPadding
		groupOf[b] = cl
	}
	for _, cl := range c.clusters {
		cl.Radius = math.Sqrt(cl.Area / math.Pi)
	}

	switch typ {
	case ClusterTreemap:
		c.layoutTreemap()
	default:
		c.buildTemplate(edges, groupOf, seed)
	}
	return c
}

// Clusters returns the clusters in first-seen order.
func (c *Clustering) Clusters() []*Cluster { return c.clusters }

func (c *Clustering) layoutTreemap() {
	areas := make([]float64, len(c.clusters))
	total := 0.0
	for i, cl := range c.clusters {
		areas[i] = cl.Area
		total += cl.Area
	}
	side := math.Sqrt(total) * 1.5
	cells := Squarify(areas, -side/2, -side/2, side, side)
	for i, cl := range c.clusters {
		x, y := cells[i].Center()
		cl.Focus = r3.Vec{X: x, Y: y}
	}
}

func (c *Clustering) buildTemplate(edges [][2]*Body, groupOf map[*Body]*Cluster, seed uint64) {
	keys := make([]string, len(c.clusters))
	index := make(map[*Cluster]int, len(c.clusters))
	for i, cl := range c.clusters {
		keys[i] = cl.Key
		index[cl] = i
	}

	t := NewSimulation(keys, 2, seed)
	for i, b := range t.bodies {
		b.Radius = c.clusters[i].Radius
	}

	type pair struct{ a, b int }
	seen := make(map[pair]bool)
	var links []*Link
	for _, e := range edges {
		ca, okA := groupOf[e[0]]
		cb, okB := groupOf[e[1]]
		if !okA || !okB || ca == cb {
			continue
		}
		p := pair{index[ca], index[cb]}
		if p.a > p.b {
			p.a, p.b = p.b, p.a
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		links = append(links, &Link{
			Source:   t.bodies[p.a],
			Target:   t.bodies[p.b],
			Distance: DefaultClusterLinkDist,
			Strength: DefaultClusterLinkForce,
		})
	}

	t.AddForce(Position(t, 0, 0, DefaultPositionStrength))
	t.AddForce(Position(t, 1, 0, DefaultPositionStrength))
	t.AddForce(Collide(t, 1, 1))
	t.AddForce(NewManyBody(t, DefaultClusterCharge, false, 0))
	t.AddForce(NewLinks(t, links))
	c.template = t
	c.syncFoci()
}

func (c *Clustering) syncFoci() {
	for i, b := range c.template.bodies {
		c.clusters[i].Focus = r3.Vec{X: b.Pos.X, Y: b.Pos.Y}
	}
}

// Apply implements [Force].
func (c *Clustering) Apply(alpha float64) {
	if c.template != nil {
		c.template.Tick()
		c.syncFoci()
	}
	k := alpha * c.strength
	depth := c.sim.Dims() == 3
	for _, cl := range c.clusters {
		for _, b := range cl.Members {
			b.Vel.X += (cl.Focus.X - b.Pos.X) * k
			b.Vel.Y += (cl.Focus.Y - b.Pos.Y) * k
			if depth {
				b.Vel.Z += (cl.Focus.Z - b.Pos.Z) * k
			}
		}
	}
}
