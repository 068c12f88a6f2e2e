package layout

import "github.com/roach88/storymap/internal/graph"

// Layered flow metrics. Every card in the chain view is the same size.
const (
	cardWidth     = 180
	cardHeight    = 80
	horizontalGap = 100
	layerGap      = 120
	layerPadding  = 60

	// Canvas extent floor and margin.
	minCanvasWidth  = 800
	minCanvasHeight = 600
	canvasMargin    = 100
)

// Masonry metrics. Cards shrink with depth so a packed column stays
// readable.
const (
	masonryCapWidth   = 160
	masonryCapHeight  = 60
	masonryEnbWidth   = 140
	masonryEnbHeight  = 50
	masonryTestWidth  = 120
	masonryTestHeight = 40

	elementSpacing = 20
	groupSpacing   = 40
	numColumns     = 4
	columnWidth    = masonryCapWidth + 60
	masonryOrigin  = 100
)

// LayeredSize returns the card extent used by the layered policy.
func LayeredSize(graph.NodeType) graph.Size {
	return graph.Size{Width: cardWidth, Height: cardHeight}
}

// MasonrySize returns the per-type card extent used by the masonry policy.
func MasonrySize(t graph.NodeType) graph.Size {
	switch t {
	case graph.Enabler:
		return graph.Size{Width: masonryEnbWidth, Height: masonryEnbHeight}
	case graph.TestScenario:
		return graph.Size{Width: masonryTestWidth, Height: masonryTestHeight}
	default:
		return graph.Size{Width: masonryCapWidth, Height: masonryCapHeight}
	}
}
