package layout

import (
	"sort"

	"github.com/roach88/storymap/internal/graph"
)

// Layered places nodes in fixed horizontal bands: storyboards on top in
// narrative order, each lower layer grouped and centered under its
// parents. Group starts are clamped by a rightward-only cursor so groups
// laid out left to right never overlap.
func Layered(g *graph.Graph) Result {
	res := newResult()
	for _, n := range g.Nodes() {
		res.Sizes[n.ID] = LayeredSize(n.Type)
	}

	storyY := float64(layerPadding)
	x := float64(layerPadding)
	stories := g.NodesOfType(graph.Storyboard)
	for _, s := range stories {
		res.Positions[s.ID] = graph.Point{X: x, Y: storyY}
		x += cardWidth + horizontalGap
	}

	capY := storyY + cardHeight + layerGap
	placeLayer(g, &res, stories, graph.Capability, capY)

	enbY := capY + cardHeight + layerGap
	placeLayer(g, &res, byAscendingX(&res, g.NodesOfType(graph.Capability)), graph.Enabler, enbY)

	testY := enbY + cardHeight + layerGap
	placeLayer(g, &res, byAscendingX(&res, g.NodesOfType(graph.Enabler)), graph.TestScenario, testY)

	res.finish()
	return res
}

// placeLayer positions every node of childType: grouped children first,
// parent by parent, then orphans continuing the same cursor.
func placeLayer(g *graph.Graph, res *Result, parents []graph.Node, childType graph.NodeType, y float64) {
	cursor := float64(layerPadding)

	for _, parent := range parents {
		var kids []graph.Node
		for _, kid := range childrenOf(g, parent.ID) {
			if kid.Type == childType {
				kids = append(kids, kid)
			}
		}
		if len(kids) == 0 {
			continue
		}

		groupWidth := float64(len(kids))*cardWidth + float64(len(kids)-1)*(horizontalGap/2)
		start := res.Positions[parent.ID].X + cardWidth/2 - groupWidth/2
		if start < cursor {
			start = cursor
		}
		for i, kid := range kids {
			kx := start + float64(i)*(cardWidth+horizontalGap/2)
			res.Positions[kid.ID] = graph.Point{X: kx, Y: y}
			if right := kx + cardWidth + horizontalGap; right > cursor {
				cursor = right
			}
		}
	}

	for _, n := range g.NodesOfType(childType) {
		if _, placed := res.Positions[n.ID]; placed {
			continue
		}
		res.Positions[n.ID] = graph.Point{X: cursor, Y: y}
		cursor += cardWidth + horizontalGap
	}
}

// byAscendingX orders the already-placed parent layer left to right so
// the next layer's cursor stays monotonic. Ties keep graph order.
func byAscendingX(res *Result, nodes []graph.Node) []graph.Node {
	out := make([]graph.Node, len(nodes))
	copy(out, nodes)
	sort.SliceStable(out, func(i, j int) bool {
		return res.Positions[out[i].ID].X < res.Positions[out[j].ID].X
	})
	return out
}
