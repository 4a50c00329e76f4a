package layout

import (
	"github.com/matzehuels/graphscape/pkg/graph"
)

// =============================================================================
// Hierarchical (tidy tree)
// =============================================================================

// buildHierarchical lays the graph out as a forest.
//
// Each node's parent is its first inbound neighbour. A parent link that
// would close a loop is dropped and the node becomes a root. All roots hang
// under one virtual root, the forest is placed with the Buchheim-Walker tidy
// tree algorithm, and coordinates are mapped to (x, -y) for top-down or
// (y, -x) for left-right. The virtual root itself is not reported.
func buildHierarchical(o Options, p Params) Strategy {
	h := o.hierarchicalOptions()
	s := p.Structure
	ids := s.NodeIDs()

	parent := make(map[string]string, len(ids))
	for _, id := range ids {
		in := s.InboundNeighbors(id)
		if len(in) == 0 {
			continue
		}
		if closesLoop(parent, in[0], id) {
			continue
		}
		parent[id] = in[0]
	}

	root := &treeNode{}
	nodes := make(map[string]*treeNode, len(ids))
	for _, id := range ids {
		nodes[id] = &treeNode{id: id}
	}
	for _, id := range ids {
		n := nodes[id]
		par := root
		if pid, ok := parent[id]; ok {
			par = nodes[pid]
		}
		n.parent = par
		n.i = len(par.children)
		par.children = append(par.children, n)
	}

	tidy(root, h.NodeSeparation)

	out := make(positions, len(ids))
	for _, id := range ids {
		n := nodes[id]
		x := n.x * h.NodeSize[0]
		y := float64(n.depth) * h.NodeSize[1]
		if o.ResolvedType() == HierarchicalLr {
			out[id] = graph.Position{X: y, Y: -x}
		} else {
			out[id] = graph.Position{X: x, Y: -y}
		}
	}
	return out
}

// closesLoop reports whether making par the parent of id would create a
// cycle in the parent map.
func closesLoop(parent map[string]string, par, id string) bool {
	for cur, ok := par, true; ok; cur, ok = parent[cur] {
		if cur == id {
			return true
		}
	}
	return false
}

type treeNode struct {
	id       string
	parent   *treeNode
	children []*treeNode
	i        int
	depth    int
	x        float64

	// Buchheim-Walker state.
	prelim   float64
	mod      float64
	change   float64
	shift    float64
	thread   *treeNode
	ancestor *treeNode
	defAnc   *treeNode
}

// tidy assigns x (in units of node width) and depth to every node under
// root. Siblings are sep apart.
func tidy(root *treeNode, sep float64) {
	// Wrap the root once more so the algorithm can treat it as a child.
	top := &treeNode{children: []*treeNode{root}}
	root.parent = top

	pre := preorder(root)
	for _, n := range pre {
		n.ancestor = n
		if n.parent != top {
			n.depth = n.parent.depth + 1
		}
	}
	for i := len(pre) - 1; i >= 0; i-- {
		firstWalk(pre[i], sep)
	}
	top.mod = -root.prelim
	for _, n := range preorderLR(root) {
		n.x = n.prelim + n.parent.mod
		n.mod += n.parent.mod
	}
	root.parent = nil
}

// preorder visits children right to left, so its reverse is a left-to-right
// post-order.
func preorder(root *treeNode) []*treeNode {
	var out []*treeNode
	stack := []*treeNode{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		stack = append(stack, n.children...)
	}
	return out
}

func preorderLR(root *treeNode) []*treeNode {
	var out []*treeNode
	stack := []*treeNode{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
	return out
}

func firstWalk(v *treeNode, sep float64) {
	siblings := v.parent.children
	var w *treeNode
	if v.i > 0 {
		w = siblings[v.i-1]
	}
	if len(v.children) > 0 {
		executeShifts(v)
		mid := (v.children[0].prelim + v.children[len(v.children)-1].prelim) / 2
		if w != nil {
			v.prelim = w.prelim + sep
			v.mod = v.prelim - mid
		} else {
			v.prelim = mid
		}
	} else if w != nil {
		v.prelim = w.prelim + sep
	}
	anc := v.parent.defAnc
	if anc == nil {
		anc = siblings[0]
	}
	v.parent.defAnc = apportion(v, w, anc, sep)
}

func apportion(v, w, anc *treeNode, sep float64) *treeNode {
	if w == nil {
		return anc
	}
	vip, vop := v, v
	vim, vom := w, v.parent.children[0]
	sip, sop := vip.mod, vop.mod
	sim, som := vim.mod, vom.mod
	for {
		vim = nextRight(vim)
		vip = nextLeft(vip)
		if vim == nil || vip == nil {
			break
		}
		vom = nextLeft(vom)
		vop = nextRight(vop)
		vop.ancestor = v
		shift := vim.prelim + sim - vip.prelim - sip + sep
		if shift > 0 {
			moveSubtree(nextAncestor(vim, v, anc), v, shift)
			sip += shift
			sop += shift
		}
		sim += vim.mod
		sip += vip.mod
		som += vom.mod
		sop += vop.mod
	}
	if vim != nil && nextRight(vop) == nil {
		vop.thread = vim
		vop.mod += sim - sop
	}
	if vip != nil && nextLeft(vom) == nil {
		vom.thread = vip
		vom.mod += sip - som
		anc = v
	}
	return anc
}

func nextLeft(v *treeNode) *treeNode {
	if len(v.children) > 0 {
		return v.children[0]
	}
	return v.thread
}

func nextRight(v *treeNode) *treeNode {
	if len(v.children) > 0 {
		return v.children[len(v.children)-1]
	}
	return v.thread
}

func moveSubtree(wm, wp *treeNode, shift float64) {
	change := shift / float64(wp.i-wm.i)
	wp.change -= change
	wp.shift += shift
	wm.change += change
	wp.prelim += shift
	wp.mod += shift
}

func executeShifts(v *treeNode) {
	shift, change := 0.0, 0.0
	for i := len(v.children) - 1; i >= 0; i-- {
		w := v.children[i]
		w.prelim += shift
		w.mod += shift
		change += w.change
		shift += w.shift + change
	}
}

func nextAncestor(vim, v, anc *treeNode) *treeNode {
	if vim.ancestor.parent == v.parent {
		return vim.ancestor
	}
	return anc
}
