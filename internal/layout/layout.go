package layout

import (
	"fmt"

	"github.com/roach88/storymap/internal/graph"
)

// Policy selects a layout algorithm.
type Policy string

const (
	PolicyLayered Policy = "layered"
	PolicyMasonry Policy = "masonry"
)

// Result is one layout pass: a position and size per node id, plus the
// canvas extent that contains them all.
type Result struct {
	Positions map[string]graph.Point `json:"positions"`
	Sizes     map[string]graph.Size  `json:"sizes"`
	Extent    graph.Size             `json:"extent"`
}

// Compute runs the named policy over the graph.
func Compute(g *graph.Graph, p Policy) (Result, error) {
	switch p {
	case PolicyLayered:
		return Layered(g), nil
	case PolicyMasonry:
		return Masonry(g), nil
	default:
		return Result{}, fmt.Errorf("unknown layout policy %q", p)
	}
}

func newResult() Result {
	return Result{
		Positions: map[string]graph.Point{},
		Sizes:     map[string]graph.Size{},
	}
}

// finish computes the canvas extent from the placed nodes.
func (r *Result) finish() {
	maxX := float64(minCanvasWidth)
	maxY := float64(minCanvasHeight)
	for id, p := range r.Positions {
		s := r.Sizes[id]
		if x := p.X + s.Width; x > maxX {
			maxX = x
		}
		if y := p.Y + s.Height; y > maxY {
			maxY = y
		}
	}
	r.Extent = graph.Size{Width: maxX + canvasMargin, Height: maxY + canvasMargin}
}

// childrenOf lists the nodes whose hierarchy parent is parentID, in graph
// order.
func childrenOf(g *graph.Graph, parentID string) []graph.Node {
	var out []graph.Node
	for _, n := range g.Nodes() {
		if p, ok := g.ParentOf(n.ID); ok && p.ID == parentID {
			out = append(out, n)
		}
	}
	return out
}
