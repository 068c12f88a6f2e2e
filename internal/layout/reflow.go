package layout

import (
	"fmt"

	"github.com/roach88/storymap/internal/graph"
)

// ReflowSubtree repositions one node and its descendants after the node
// gains a parent, leaving every other position alone. The returned result
// holds entries only for the moved nodes.
func ReflowSubtree(g *graph.Graph, p Policy, nodeID string) (Result, error) {
	node, ok := g.Node(nodeID)
	if !ok {
		return Result{}, fmt.Errorf("reflow: node %q not found", nodeID)
	}
	parent, ok := g.ParentOf(nodeID)
	if !ok {
		return Result{}, fmt.Errorf("reflow: node %q has no parent", nodeID)
	}

	res := newResult()
	size := LayeredSize
	if p == PolicyMasonry {
		size = MasonrySize
	}
	res.Sizes[node.ID] = size(node.Type)
	for _, d := range descendants(g, nodeID) {
		res.Sizes[d.ID] = size(d.Type)
	}

	switch p {
	case PolicyLayered:
		reflowLayered(g, &res, node, parent)
	case PolicyMasonry:
		reflowMasonry(g, &res, node, parent)
	default:
		return Result{}, fmt.Errorf("unknown layout policy %q", p)
	}
	res.finish()
	return res, nil
}

// reflowLayered slots the node into its parent's group: after the
// rightmost existing sibling, or centered under the parent when it is the
// first child. Descendants restack beneath it on their own layers.
func reflowLayered(g *graph.Graph, res *Result, node, parent graph.Node) {
	y := layerY(node.Type)

	// Same card width on every layer, so centering one card under the
	// parent is the parent's own X.
	x := parent.Position.X
	for _, sib := range childrenOf(g, parent.ID) {
		if sib.ID == node.ID {
			continue
		}
		if right := sib.Position.X + cardWidth + horizontalGap/2; right > x {
			x = right
		}
	}
	res.Positions[node.ID] = graph.Point{X: x, Y: y}

	restackLayered(g, res, node.ID, x)
}

func restackLayered(g *graph.Graph, res *Result, parentID string, x float64) {
	for i, kid := range childrenOf(g, parentID) {
		kx := x + float64(i)*(cardWidth+horizontalGap/2)
		res.Positions[kid.ID] = graph.Point{X: kx, Y: layerY(kid.Type)}
		restackLayered(g, res, kid.ID, kx)
	}
}

// layerY is the fixed band for a node type under the layered policy.
func layerY(t graph.NodeType) float64 {
	switch t {
	case graph.Storyboard:
		return layerPadding
	case graph.Capability:
		return layerPadding + cardHeight + layerGap
	case graph.Enabler:
		return layerPadding + 2*(cardHeight+layerGap)
	default:
		return layerPadding + 3*(cardHeight+layerGap)
	}
}

// reflowMasonry hangs the node beneath the parent's existing stack:
// directly under the parent's X, after the last already-placed sibling
// subtree.
func reflowMasonry(g *graph.Graph, res *Result, node, parent graph.Node) {
	x := parent.Position.X
	y := parent.Position.Y + MasonrySize(parent.Type).Height + elementSpacing
	for _, sib := range childrenOf(g, parent.ID) {
		if sib.ID == node.ID {
			continue
		}
		if bottom := sib.Position.Y + stackHeight(g, sib); bottom > y {
			y = bottom
		}
	}
	if node.Type == graph.TestScenario {
		x += 10
	}
	res.Positions[node.ID] = graph.Point{X: x, Y: y}
	stackChildren(g, res, node.ID, x, y+MasonrySize(node.Type).Height+elementSpacing)
}

// descendants collects the subtree below a node, breadth-first.
func descendants(g *graph.Graph, nodeID string) []graph.Node {
	var out []graph.Node
	queue := []string{nodeID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, kid := range childrenOf(g, id) {
			out = append(out, kid)
			queue = append(queue, kid.ID)
		}
	}
	return out
}
