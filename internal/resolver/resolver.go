package resolver

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/storymap/internal/graph"
	"github.com/roach88/storymap/internal/record"
)

// NoticeCode classifies a resolution event worth surfacing.
type NoticeCode string

const (
	// AmbiguousMatch: more than one parent satisfied the same rule tier.
	// The first in parent order was taken.
	AmbiguousMatch NoticeCode = "AMBIGUOUS_MATCH"

	// LowConfidenceAssignment: an orphaned enabler was distributed to a
	// capability by round-robin rather than by any identifier match.
	LowConfidenceAssignment NoticeCode = "LOW_CONFIDENCE_ASSIGNMENT"
)

// Notice is a non-fatal resolution event.
type Notice struct {
	Code    NoticeCode
	ChildID string
	Message string
}

// Options tune resolution behavior.
type Options struct {
	// RoundRobin distributes orphaned enablers across capabilities
	// instead of leaving them orphaned. Off unless asked for; every edge
	// it produces is marked low confidence.
	RoundRobin bool
}

// Result is one resolution pass over a record set.
type Result struct {
	Edges   []graph.Edge
	Orphans map[graph.NodeType][]string
	Notices []Notice
}

// Resolve derives all edges for a loaded record set. The pass is pure and
// deterministic: the same set and options always produce the same result.
func Resolve(set *record.Set, opts Options) Result {
	res := Result{Orphans: map[graph.NodeType][]string{}}

	// Consecutive storyboards in narrative order form the flow spine.
	for i := 1; i < len(set.Storyboards); i++ {
		res.addEdge(set.Storyboards[i-1].NodeID, set.Storyboards[i].NodeID,
			graph.StoryboardFlow, false)
	}

	resolveLayer(&res, layerSpec{
		children:   set.Capabilities,
		parents:    set.Storyboards,
		childType:  graph.Capability,
		kind:       graph.StoryboardToCapability,
		refFields:  []string{"Storyboard Reference"},
		patterns:   nil, // storyboards carry no identifier token convention
		roundRobin: false,
	})

	resolveLayer(&res, layerSpec{
		children:   set.Enablers,
		parents:    set.Capabilities,
		childType:  graph.Enabler,
		kind:       graph.CapabilityToEnabler,
		refFields:  []string{"Capability ID", "Capability Reference"},
		patterns:   capPatterns,
		roundRobin: opts.RoundRobin,
	})

	resolveLayer(&res, layerSpec{
		children:   set.TestScenarios,
		parents:    set.Enablers,
		childType:  graph.TestScenario,
		kind:       graph.EnablerToTestScenario,
		refFields:  []string{"Enabler ID", "Enabler Reference"},
		patterns:   enbPatterns,
		roundRobin: false,
	})

	return res
}

type layerSpec struct {
	children   []record.Record
	parents    []record.Record
	childType  graph.NodeType
	kind       graph.EdgeKind
	refFields  []string
	patterns   *patternSet
	roundRobin bool
}

func resolveLayer(res *Result, spec layerSpec) {
	var orphanIdx []int

	for i, child := range spec.children {
		ref := referenceOf(child, spec.refFields, spec.patterns)
		parentID, ambiguous := matchParent(ref, child.DisplayName, spec.parents)
		if parentID == "" {
			orphanIdx = append(orphanIdx, i)
			continue
		}
		if ambiguous {
			res.Notices = append(res.Notices, Notice{
				Code:    AmbiguousMatch,
				ChildID: child.NodeID,
				Message: fmt.Sprintf("reference %q matched more than one parent; kept %s", ref, parentID),
			})
		}
		res.addEdge(child.NodeID, parentID, spec.kind, false)
	}

	if spec.roundRobin && len(spec.parents) > 0 {
		for _, i := range orphanIdx {
			child := spec.children[i]
			parent := spec.parents[i%len(spec.parents)]
			res.addEdge(child.NodeID, parent.NodeID, spec.kind, true)
			res.Notices = append(res.Notices, Notice{
				Code:    LowConfidenceAssignment,
				ChildID: child.NodeID,
				Message: fmt.Sprintf("no reference found; distributed to %s", parent.NodeID),
			})
		}
		return
	}

	for _, i := range orphanIdx {
		res.Orphans[spec.childType] = append(res.Orphans[spec.childType], spec.children[i].NodeID)
	}
}

func (r *Result) addEdge(from, to string, kind graph.EdgeKind, lowConfidence bool) {
	id := graph.EdgeID(from, to)
	for _, e := range r.Edges {
		if e.ID == id {
			return
		}
	}
	r.Edges = append(r.Edges, graph.Edge{
		ID:            id,
		From:          from,
		To:            to,
		Kind:          kind,
		LowConfidence: lowConfidence,
	})
}

// referenceOf returns the child's explicit reference, falling back to
// pattern extraction when every reference field is empty.
func referenceOf(child record.Record, refFields []string, patterns *patternSet) string {
	for _, f := range refFields {
		if v := strings.TrimSpace(child.Fields[f]); v != "" {
			return v
		}
	}
	if patterns != nil {
		return patterns.extract(child)
	}
	return ""
}

// matchParent finds the child's parent. A child with no reference text
// never matches; the name heuristics only refine an existing reference.
// Tiers run most to least exact and the first non-empty tier decides;
// within a tier the first parent in order wins, and any further hit in
// that tier flags ambiguity.
func matchParent(ref, childName string, parents []record.Record) (string, bool) {
	foldedRef := fold(ref)
	if foldedRef == "" || len(parents) == 0 {
		return "", false
	}
	foldedName := fold(childName)

	type tierFn func(p record.Record) bool
	tiers := []tierFn{
		func(p record.Record) bool {
			return foldedRef == fold(p.NodeID)
		},
		func(p record.Record) bool {
			return foldedRef == fold(p.DisplayName)
		},
		func(p record.Record) bool {
			for _, key := range []string{fold(p.NodeID), fold(p.DisplayName)} {
				if key == "" {
					continue
				}
				if strings.Contains(foldedRef, key) || strings.Contains(key, foldedRef) {
					return true
				}
			}
			pname := fold(p.DisplayName)
			if foldedName != "" && pname != "" &&
				(strings.Contains(foldedName, pname) || strings.Contains(pname, foldedName)) {
				return true
			}
			return false
		},
	}

	for _, tier := range tiers {
		first := ""
		hits := 0
		for _, p := range parents {
			if tier(p) {
				hits++
				if first == "" {
					first = p.NodeID
				}
			}
		}
		if first != "" {
			return first, hits > 1
		}
	}
	return "", false
}

// fold prepares a string for comparison: NFC normalization then lower
// casing, trimmed.
func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}
