package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storymap/internal/graph"
	"github.com/roach88/storymap/internal/record"
	"github.com/roach88/storymap/internal/specstore"
)

func rec(rt specstore.RecordType, id, name string, fields map[string]string) record.Record {
	if fields == nil {
		fields = map[string]string{}
	}
	return record.Record{
		NodeID: id,
		Record: specstore.Record{
			Type:        rt,
			Identifier:  id,
			DisplayName: name,
			Fields:      fields,
			Source:      specstore.Handle{Path: "/ws/" + id + ".md", Filename: id + ".md"},
		},
	}
}

func basicSet() *record.Set {
	return &record.Set{
		Storyboards: []record.Record{
			rec(specstore.Storyboards, "STORY-001", "Login", nil),
			rec(specstore.Storyboards, "STORY-002", "Checkout", nil),
		},
		Capabilities: []record.Record{
			rec(specstore.Capabilities, "CAP-001", "Cart Pricing",
				map[string]string{"Storyboard Reference": "Checkout"}),
		},
		Enablers: []record.Record{
			rec(specstore.Enablers, "ENB-001", "Tax Calc",
				map[string]string{"Capability ID": "CAP-001"}),
		},
	}
}

func edgeIDs(edges []graph.Edge) []string {
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.ID
	}
	return ids
}

func TestResolveBasicScenario(t *testing.T) {
	res := Resolve(basicSet(), Options{})

	assert.Equal(t, []string{
		"STORY-001->STORY-002",
		"CAP-001->STORY-002",
		"ENB-001->CAP-001",
	}, edgeIDs(res.Edges))
	assert.Empty(t, res.Orphans[graph.Capability])
	assert.Empty(t, res.Orphans[graph.Enabler])
	assert.Empty(t, res.Notices)
}

func TestResolveDeterministic(t *testing.T) {
	first := Resolve(basicSet(), Options{})
	for i := 0; i < 10; i++ {
		again := Resolve(basicSet(), Options{})
		assert.Equal(t, first, again)
	}
}

func TestResolveIdentifierBeatsName(t *testing.T) {
	set := &record.Set{
		Storyboards: []record.Record{
			rec(specstore.Storyboards, "STORY-001", "STORY-002", nil),
			rec(specstore.Storyboards, "STORY-002", "Other", nil),
		},
		Capabilities: []record.Record{
			rec(specstore.Capabilities, "CAP-001", "X",
				map[string]string{"Storyboard Reference": "STORY-002"}),
		},
	}

	res := Resolve(set, Options{})
	// Identifier equality is the top tier, so the reference resolves to
	// the storyboard whose id is STORY-002, not the one named STORY-002.
	assert.Contains(t, edgeIDs(res.Edges), "CAP-001->STORY-002")
}

func TestResolveFirstMatchWinsAndFlagsAmbiguity(t *testing.T) {
	set := &record.Set{
		Storyboards: []record.Record{
			rec(specstore.Storyboards, "STORY-001", "Checkout Flow", nil),
			rec(specstore.Storyboards, "STORY-002", "Checkout Express", nil),
		},
		Capabilities: []record.Record{
			rec(specstore.Capabilities, "CAP-001", "Payments",
				map[string]string{"Storyboard Reference": "Checkout"}),
		},
	}

	res := Resolve(set, Options{})
	assert.Contains(t, edgeIDs(res.Edges), "CAP-001->STORY-001")

	require.Len(t, res.Notices, 1)
	assert.Equal(t, AmbiguousMatch, res.Notices[0].Code)
	assert.Equal(t, "CAP-001", res.Notices[0].ChildID)
}

func TestResolveCaseAndNormalizationInsensitive(t *testing.T) {
	// "Café" written as 'e' + combining accent must still match the
	// precomposed form.
	set := &record.Set{
		Storyboards: []record.Record{
			rec(specstore.Storyboards, "STORY-001", "Café Orders", nil),
		},
		Capabilities: []record.Record{
			rec(specstore.Capabilities, "CAP-001", "Menu",
				map[string]string{"Storyboard Reference": "café orders"}),
		},
	}

	res := Resolve(set, Options{})
	assert.Contains(t, edgeIDs(res.Edges), "CAP-001->STORY-001")
}

func TestResolvePatternFallback(t *testing.T) {
	enb := rec(specstore.Enablers, "ENB-010", "Rate Limits", nil)
	enb.RawContent = "# Rate Limits\n\n**Capability**: Gateway (CAP-API-GATEWAY-7)\n"

	set := &record.Set{
		Capabilities: []record.Record{
			rec(specstore.Capabilities, "CAP-API-GATEWAY-7", "Gateway", nil),
		},
		Enablers: []record.Record{enb},
	}

	res := Resolve(set, Options{})
	assert.Contains(t, edgeIDs(res.Edges), "ENB-010->CAP-API-GATEWAY-7")
	assert.Empty(t, res.Orphans[graph.Enabler])
}

func TestResolveFilenameFallback(t *testing.T) {
	enb := rec(specstore.Enablers, "ENB-020", "Caching", nil)
	enb.Source = specstore.Handle{Path: "/ws/definition/CAP-002/ENB-020.md", Filename: "ENB-020.md"}
	enb.RawContent = "# Caching\n\nNo explicit reference here.\n"

	set := &record.Set{
		Capabilities: []record.Record{
			rec(specstore.Capabilities, "CAP-002", "Storage", nil),
		},
		Enablers: []record.Record{enb},
	}

	res := Resolve(set, Options{})
	assert.Contains(t, edgeIDs(res.Edges), "ENB-020->CAP-002")
}

func TestResolveOrphans(t *testing.T) {
	set := basicSet()
	set.Capabilities = append(set.Capabilities,
		rec(specstore.Capabilities, "CAP-999", "Unlinked", nil))
	set.Enablers = append(set.Enablers,
		rec(specstore.Enablers, "ENB-999", "Unlinked Enabler",
			map[string]string{"Capability ID": "CAP-404"}))

	res := Resolve(set, Options{})
	assert.Equal(t, []string{"CAP-999"}, res.Orphans[graph.Capability])
	assert.Equal(t, []string{"ENB-999"}, res.Orphans[graph.Enabler])
}

func TestResolveEmptyReferenceNeverNameMatches(t *testing.T) {
	set := basicSet()
	// Name overlaps a storyboard, but the record carries no reference.
	set.Capabilities = append(set.Capabilities,
		rec(specstore.Capabilities, "CAP-002", "Checkout Cart", nil))

	res := Resolve(set, Options{})
	assert.NotContains(t, edgeIDs(res.Edges), "CAP-002->STORY-002")
	assert.Equal(t, []string{"CAP-002"}, res.Orphans[graph.Capability])
	assert.Empty(t, res.Notices)
}

func TestResolveRoundRobinOptIn(t *testing.T) {
	set := &record.Set{
		Capabilities: []record.Record{
			rec(specstore.Capabilities, "CAP-001", "One", nil),
			rec(specstore.Capabilities, "CAP-002", "Two", nil),
		},
		Enablers: []record.Record{
			rec(specstore.Enablers, "ENB-001", "A", nil),
			rec(specstore.Enablers, "ENB-002", "B", nil),
			rec(specstore.Enablers, "ENB-003", "C", nil),
		},
	}
	// Strip content so nothing matches.
	for i := range set.Enablers {
		set.Enablers[i].RawContent = "nothing"
		set.Enablers[i].Source = specstore.Handle{Path: "/ws/x.md", Filename: "x.md"}
	}

	off := Resolve(set, Options{})
	assert.Len(t, off.Orphans[graph.Enabler], 3)
	assert.Empty(t, off.Edges)

	on := Resolve(set, Options{RoundRobin: true})
	assert.Empty(t, on.Orphans[graph.Enabler])
	require.Len(t, on.Edges, 3)
	assert.Equal(t, "CAP-001", on.Edges[0].To)
	assert.Equal(t, "CAP-002", on.Edges[1].To)
	assert.Equal(t, "CAP-001", on.Edges[2].To)
	for _, e := range on.Edges {
		assert.True(t, e.LowConfidence)
	}
	require.Len(t, on.Notices, 3)
	assert.Equal(t, LowConfidenceAssignment, on.Notices[0].Code)
}

func TestResolveNoDuplicateEdges(t *testing.T) {
	set := basicSet()
	set.Enablers = append(set.Enablers, set.Enablers[0])

	res := Resolve(set, Options{})
	seen := map[string]bool{}
	for _, e := range res.Edges {
		assert.False(t, seen[e.ID], "duplicate edge %s", e.ID)
		seen[e.ID] = true
	}
}
