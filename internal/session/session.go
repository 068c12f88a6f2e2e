package session

import (
	"fmt"

	"github.com/roach88/storymap/internal/graph"
)

// State is the controller's current gesture phase.
type State string

const (
	Idle             State = "idle"
	Selecting        State = "selecting"
	DraggingNode     State = "dragging-node"
	DraggingEndpoint State = "dragging-endpoint"
	DrawingEdge      State = "drawing-edge"
)

// Notice is a transient, non-blocking message raised by a rejected
// gesture. Err carries the underlying mutation error when there is one.
type Notice struct {
	Message string
	Err     error
}

// Sink receives committed gesture outcomes. The persistence layer
// implements it; tests use a recording fake.
type Sink interface {
	// NodeMoved fires on pointer-up after a node drag, once per gesture.
	NodeMoved(nodeID string, p graph.Point)
	// EdgeRewired fires after a successful endpoint rebind.
	EdgeRewired(old, rebound graph.Edge)
	// EdgeCreated fires after a successful draw-edge completion.
	EdgeCreated(e graph.Edge)
}

// Controller runs gestures for one graph. Not safe for concurrent use;
// it models a single interactive surface.
type Controller struct {
	g    *graph.Graph
	sink Sink

	state        State
	selectedNode string
	selectedEdge string

	dragNode   string
	dragOffset graph.Point

	dragEdge     string
	dragEndpoint graph.Endpoint
	preview      graph.Point
	hasPreview   bool

	drawOrigin string

	notices []Notice
}

// New creates a controller in the Idle state.
func New(g *graph.Graph, sink Sink) *Controller {
	return &Controller{g: g, sink: sink, state: Idle}
}

// State returns the current gesture phase.
func (c *Controller) State() State { return c.state }

// SelectedNode returns the selected node id, empty when none.
func (c *Controller) SelectedNode() string { return c.selectedNode }

// SelectedEdge returns the selected edge id, empty when none.
func (c *Controller) SelectedEdge() string { return c.selectedEdge }

// Preview returns the floating point of an in-flight endpoint drag or
// edge draw.
func (c *Controller) Preview() (graph.Point, bool) { return c.preview, c.hasPreview }

// TakeNotices drains and returns accumulated notices.
func (c *Controller) TakeNotices() []Notice {
	out := c.notices
	c.notices = nil
	return out
}

func (c *Controller) notify(msg string, err error) {
	c.notices = append(c.notices, Notice{Message: msg, Err: err})
}

// PointerDownNode starts a node drag. The offset between the pointer and
// the node origin is captured so the card does not jump under the cursor.
func (c *Controller) PointerDownNode(nodeID string, x, y float64) {
	if c.state != Idle && c.state != Selecting {
		return
	}
	n, ok := c.g.Node(nodeID)
	if !ok {
		c.notify(fmt.Sprintf("unknown node %s", nodeID), nil)
		return
	}
	c.selectedNode = nodeID
	c.selectedEdge = ""
	c.dragNode = nodeID
	c.dragOffset = graph.Point{X: x - n.Position.X, Y: y - n.Position.Y}
	c.state = DraggingNode
}

// SelectEdge toggles edge selection, clearing any node selection.
func (c *Controller) SelectEdge(edgeID string) {
	if c.state != Idle && c.state != Selecting {
		return
	}
	if _, ok := c.g.Edge(edgeID); !ok {
		c.notify(fmt.Sprintf("unknown edge %s", edgeID), nil)
		return
	}
	if c.selectedEdge == edgeID {
		c.selectedEdge = ""
		c.state = Idle
		return
	}
	c.selectedEdge = edgeID
	c.selectedNode = ""
	c.state = Selecting
}

// ClickBackground clears all selection.
func (c *Controller) ClickBackground() {
	if c.state != Idle && c.state != Selecting {
		return
	}
	c.selectedNode = ""
	c.selectedEdge = ""
	c.state = Idle
}

// PointerDownEndpoint starts an endpoint drag. Only the selected edge's
// handles are live.
func (c *Controller) PointerDownEndpoint(edgeID string, ep graph.Endpoint, x, y float64) {
	if c.state != Selecting || c.selectedEdge != edgeID {
		return
	}
	if _, ok := c.g.Edge(edgeID); !ok {
		c.notify(fmt.Sprintf("unknown edge %s", edgeID), nil)
		return
	}
	c.dragEdge = edgeID
	c.dragEndpoint = ep
	c.preview = graph.Point{X: x, Y: y}
	c.hasPreview = true
	c.state = DraggingEndpoint
}

// BeginDrawEdge enters edge drawing from a node's connect affordance.
func (c *Controller) BeginDrawEdge(originID string) {
	if c.state != Idle && c.state != Selecting {
		return
	}
	if _, ok := c.g.Node(originID); !ok {
		c.notify(fmt.Sprintf("unknown node %s", originID), nil)
		return
	}
	c.drawOrigin = originID
	c.selectedEdge = ""
	c.selectedNode = originID
	c.state = DrawingEdge
}

// PointerMove advances the active gesture. Node drags mutate the model
// live; endpoint drags and edge draws only move the preview point.
func (c *Controller) PointerMove(x, y float64) {
	switch c.state {
	case DraggingNode:
		p := graph.Point{X: x - c.dragOffset.X, Y: y - c.dragOffset.Y}
		if err := c.g.MoveNode(c.dragNode, p); err != nil {
			c.notify("move failed", err)
		}
	case DraggingEndpoint, DrawingEdge:
		c.preview = graph.Point{X: x, Y: y}
		c.hasPreview = true
	}
}

// PointerUpOnNode ends the active gesture over a node.
func (c *Controller) PointerUpOnNode(targetID string) {
	switch c.state {
	case DraggingNode:
		c.endNodeDrag()
	case DraggingEndpoint:
		c.endEndpointDrag(targetID)
	case DrawingEdge:
		c.completeDraw(targetID)
	}
}

// PointerUp ends the active gesture over empty space. Endpoint drags and
// edge draws cancel without mutation.
func (c *Controller) PointerUp() {
	switch c.state {
	case DraggingNode:
		c.endNodeDrag()
	case DraggingEndpoint:
		c.cancelEndpointDrag()
	case DrawingEdge:
		// Drawing stays active until a second node or the origin is
		// clicked.
	}
}

func (c *Controller) endNodeDrag() {
	n, ok := c.g.Node(c.dragNode)
	if ok && c.sink != nil {
		c.sink.NodeMoved(c.dragNode, n.Position)
	}
	c.dragNode = ""
	// The node stays selected, but the gesture is over.
	c.state = Idle
}

func (c *Controller) endEndpointDrag(targetID string) {
	edgeID := c.dragEdge
	ep := c.dragEndpoint
	c.cancelEndpointDrag()

	if targetID == "" {
		return
	}
	old, ok := c.g.Edge(edgeID)
	if !ok {
		c.notify(fmt.Sprintf("edge %s vanished during drag", edgeID), nil)
		return
	}
	rebound, err := c.g.RebindEdgeEndpoint(edgeID, ep, targetID)
	if err != nil {
		c.notify("rebind rejected", err)
		return
	}
	c.selectedEdge = rebound.ID
	c.selectedNode = ""
	c.state = Selecting
	if rebound.ID == old.ID {
		// Dropping back onto the current endpoint cancels; nothing to
		// persist.
		return
	}
	if c.sink != nil {
		c.sink.EdgeRewired(old, rebound)
	}
}

func (c *Controller) cancelEndpointDrag() {
	c.dragEdge = ""
	c.hasPreview = false
	c.state = Selecting
}

func (c *Controller) completeDraw(targetID string) {
	if targetID == c.drawOrigin {
		// Clicking the origin cancels.
		c.drawOrigin = ""
		c.hasPreview = false
		c.state = Selecting
		return
	}
	e, err := c.g.AddEdge(graph.Edge{From: c.drawOrigin, To: targetID})
	origin := c.drawOrigin
	c.drawOrigin = ""
	c.hasPreview = false
	c.state = Idle
	if err != nil {
		c.notify(fmt.Sprintf("cannot connect %s to %s", origin, targetID), err)
		return
	}
	if c.sink != nil {
		c.sink.EdgeCreated(e)
	}
}
