// Package layout assigns canvas coordinates to graph nodes.
//
// # ARCHITECTURE
//
// Two policies, both pure functions of the graph: the same graph always
// yields the same positions, and laying out an already laid-out graph
// changes nothing.
//
// Layered flow renders the storyboard chain view. Layers are fixed
// horizontal bands, top to bottom: storyboards in narrative order, then
// capabilities, enablers, and test scenarios. Each child group is
// centered under its parent and clamped rightward by a monotonic cursor
// so groups never overlap. Orphans are appended after every grouped node
// in their layer.
//
// Masonry renders the denser capability detail view. Capabilities pack
// into fixed-width columns, each subtree dropping into the currently
// shortest column; enablers and test scenarios stack directly beneath
// their parent's X. Orphans land below the columns.
//
// ReflowSubtree handles orphan promotion: only the promoted node and its
// descendants move, everything else keeps its position.
package layout
