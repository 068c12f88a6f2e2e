// Package resolver derives relationship edges between loaded records.
//
// # ARCHITECTURE
//
// Each child layer resolves against the layer above it: capabilities
// against storyboards, enablers against capabilities, test scenarios
// against enablers. Resolution runs in fixed tiers, most to least exact:
// identifier equality, display-name equality, substring containment.
// Within a tier the FIRST parent in load order wins; matching is never
// best-match, so repeated runs over the same workspace produce the same
// edges. When a reference field is absent, an ordered pattern set pulls
// identifier tokens out of the document body, metadata, filename, and
// path.
//
// Children that match nothing become orphans. The optional round-robin
// strategy assigns orphaned enablers across capabilities instead; edges
// produced that way are marked low confidence and reported in a notice,
// never silently.
//
// Consecutive storyboards in narrative order are linked by flow edges.
package resolver
