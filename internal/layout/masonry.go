package layout

import (
	"github.com/roach88/storymap/internal/graph"
)

// Masonry packs capability subtrees into fixed-width columns. Each
// subtree drops into the currently shortest column; within a subtree,
// children stack directly beneath their parent's X with fixed gaps, test
// scenarios slightly indented. Orphaned enablers and test scenarios pack
// after every parented subtree by the same shortest-column rule.
func Masonry(g *graph.Graph) Result {
	res := newResult()
	// Storyboards are not part of the masonry view.
	for _, n := range g.Nodes() {
		if n.Type != graph.Storyboard {
			res.Sizes[n.ID] = MasonrySize(n.Type)
		}
	}

	var cols [numColumns]float64
	for i := range cols {
		cols[i] = masonryOrigin
	}

	for _, cap := range g.NodesOfType(graph.Capability) {
		packSubtree(g, &res, &cols, cap)
	}
	for _, enb := range g.NodesOfType(graph.Enabler) {
		if _, placed := res.Positions[enb.ID]; !placed {
			packSubtree(g, &res, &cols, enb)
		}
	}
	for _, ts := range g.NodesOfType(graph.TestScenario) {
		if _, placed := res.Positions[ts.ID]; !placed {
			packSubtree(g, &res, &cols, ts)
		}
	}

	res.finish()
	return res
}

// packSubtree drops one subtree root into the shortest column and stacks
// its descendants beneath it.
func packSubtree(g *graph.Graph, res *Result, cols *[numColumns]float64, root graph.Node) {
	col := 0
	for i := 1; i < numColumns; i++ {
		if cols[i] < cols[col] {
			col = i
		}
	}
	x := float64(masonryOrigin + col*columnWidth)
	y := cols[col]

	res.Positions[root.ID] = graph.Point{X: x, Y: y}
	stackChildren(g, res, root.ID, x, y+MasonrySize(root.Type).Height+elementSpacing)

	cols[col] += stackHeight(g, root) + groupSpacing
}

// stackChildren places a node's descendants in a single vertical run
// beneath x, returning the Y past the last placed card.
func stackChildren(g *graph.Graph, res *Result, parentID string, x, y float64) float64 {
	for _, kid := range childrenOf(g, parentID) {
		kx := x
		if kid.Type == graph.TestScenario {
			kx += 10 // indent marks the extra hierarchy level
		}
		res.Positions[kid.ID] = graph.Point{X: kx, Y: y}
		y += MasonrySize(kid.Type).Height + elementSpacing
		y = stackChildren(g, res, kid.ID, kx, y)
	}
	return y
}

// stackHeight is the vertical extent of a subtree's stacked run.
func stackHeight(g *graph.Graph, n graph.Node) float64 {
	h := MasonrySize(n.Type).Height + elementSpacing
	for _, kid := range childrenOf(g, n.ID) {
		h += stackHeight(g, kid)
	}
	return h
}
