package graph

// Graph is the aggregate node/edge set for one workspace snapshot.
//
// Iteration order is insertion order for both nodes and edges, so repeated
// walks over the same graph are deterministic without sorting at call sites.
//
// Graph is not safe for concurrent use. It is owned by a single workspace
// session and mutated from one goroutine.
type Graph struct {
	nodes     map[string]*Node
	edges     map[string]*Edge
	nodeOrder []string
	edgeOrder []string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		edges: make(map[string]*Edge),
	}
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Edge returns a copy of the edge with the given id.
func (g *Graph) Edge(id string) (Edge, bool) {
	e, ok := g.edges[id]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, *g.nodes[id])
	}
	return out
}

// Edges returns copies of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		out = append(out, *g.edges[id])
	}
	return out
}

// NodesOfType returns copies of all nodes of the given type, in insertion order.
func (g *Graph) NodesOfType(t NodeType) []Node {
	var out []Node
	for _, id := range g.nodeOrder {
		if n := g.nodes[id]; n.Type == t {
			out = append(out, *n)
		}
	}
	return out
}

// IncidentEdges returns copies of all edges touching the given node, in
// insertion order.
func (g *Graph) IncidentEdges(nodeID string) []Edge {
	var out []Edge
	for _, id := range g.edgeOrder {
		if e := g.edges[id]; e.From == nodeID || e.To == nodeID {
			out = append(out, *e)
		}
	}
	return out
}

// ParentOf returns the parent node of a child-layer node, following the
// single upward edge of the child's kind. Returns false for orphans and
// storyboards.
func (g *Graph) ParentOf(nodeID string) (Node, bool) {
	for _, id := range g.edgeOrder {
		e := g.edges[id]
		if e.From != nodeID || e.Kind == StoryboardFlow {
			continue
		}
		if p, ok := g.nodes[e.To]; ok {
			return *p, true
		}
	}
	return Node{}, false
}

// AddNode inserts a node. Fails with DUPLICATE_ID if the id exists.
func (g *Graph) AddNode(n Node) error {
	if _, exists := g.nodes[n.ID]; exists {
		return newDuplicateID(n.ID)
	}
	cp := n
	g.nodes[n.ID] = &cp
	g.nodeOrder = append(g.nodeOrder, n.ID)
	return nil
}

// MoveNode updates a node's position. Ownership never changes on move.
func (g *Graph) MoveNode(id string, p Point) error {
	n, ok := g.nodes[id]
	if !ok {
		return newNodeNotFound(id)
	}
	n.Position = p
	return nil
}

// RemoveNode deletes a node. Without cascade the call fails with HAS_EDGES
// while any edge references the node; with cascade all incident edges are
// removed with it, and nothing else.
func (g *Graph) RemoveNode(id string, cascade bool) error {
	if _, ok := g.nodes[id]; !ok {
		return newNodeNotFound(id)
	}
	incident := g.IncidentEdges(id)
	if len(incident) > 0 && !cascade {
		return newHasEdges(id, len(incident))
	}
	for _, e := range incident {
		g.dropEdge(e.ID)
	}
	delete(g.nodes, id)
	g.nodeOrder = removeString(g.nodeOrder, id)
	return nil
}

// AddEdge inserts an edge after validating endpoints, uniqueness, and kind.
// The edge's ID and Kind fields are derived here; caller-supplied values for
// either are ignored.
func (g *Graph) AddEdge(e Edge) (Edge, error) {
	validated, err := g.validateEdge(e.From, e.To)
	if err != nil {
		return Edge{}, err
	}
	validated.LowConfidence = e.LowConfidence
	cp := validated
	g.edges[validated.ID] = &cp
	g.edgeOrder = append(g.edgeOrder, validated.ID)
	return validated, nil
}

// RemoveEdge deletes an edge. Removing an edge never removes nodes.
func (g *Graph) RemoveEdge(id string) error {
	if _, ok := g.edges[id]; !ok {
		return newEdgeNotFound(id)
	}
	g.dropEdge(id)
	return nil
}

// Endpoint selects which end of an edge a rebind moves.
type Endpoint string

const (
	EndpointFrom Endpoint = "from"
	EndpointTo   Endpoint = "to"
)

// RebindEdgeEndpoint computes the would-be edge with one endpoint replaced,
// validates it under the same rules as AddEdge, then atomically removes the
// old edge and inserts the new one under a freshly derived id.
//
// Validation happens before any removal, so a rejected rebind leaves the
// graph untouched.
func (g *Graph) RebindEdgeEndpoint(edgeID string, ep Endpoint, newNodeID string) (Edge, error) {
	old, ok := g.edges[edgeID]
	if !ok {
		return Edge{}, newEdgeNotFound(edgeID)
	}
	from, to := old.From, old.To
	if ep == EndpointFrom {
		from = newNodeID
	} else {
		to = newNodeID
	}
	if from == old.From && to == old.To {
		// Rebinding onto the current endpoint is a no-op, not an error.
		return *old, nil
	}
	validated, err := g.validateEdge(from, to)
	if err != nil {
		return Edge{}, err
	}
	g.dropEdge(edgeID)
	cp := validated
	g.edges[validated.ID] = &cp
	g.edgeOrder = append(g.edgeOrder, validated.ID)
	return validated, nil
}

// MarkUnsynced flags or clears the unsynced marker on a node or edge.
// Unknown ids are ignored: the element may have been removed by a reload
// while its write was in flight.
func (g *Graph) MarkUnsynced(id string, unsynced bool) {
	if n, ok := g.nodes[id]; ok {
		n.Unsynced = unsynced
	}
	if e, ok := g.edges[id]; ok {
		e.Unsynced = unsynced
	}
}

// validateEdge checks a prospective (from, to) pair and returns the fully
// derived edge without inserting it.
func (g *Graph) validateEdge(from, to string) (Edge, error) {
	if from == to {
		return Edge{}, newSelfLoop(from)
	}
	fromNode, ok := g.nodes[from]
	if !ok {
		return Edge{}, newDanglingReference(EdgeID(from, to), from)
	}
	toNode, ok := g.nodes[to]
	if !ok {
		return Edge{}, newDanglingReference(EdgeID(from, to), to)
	}
	id := EdgeID(from, to)
	if _, exists := g.edges[id]; exists {
		return Edge{}, newDuplicateEdge(id)
	}
	kind, err := DeriveKind(fromNode.Type, toNode.Type)
	if err != nil {
		return Edge{}, err
	}
	return Edge{ID: id, From: from, To: to, Kind: kind}, nil
}

func (g *Graph) dropEdge(id string) {
	delete(g.edges, id)
	g.edgeOrder = removeString(g.edgeOrder, id)
}

func removeString(s []string, v string) []string {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
