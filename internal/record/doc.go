// Package record turns raw specification documents into typed, validated
// records ready for graph construction.
//
// # ARCHITECTURE
//
// The package sits between the specification store and the graph. The
// store hands back loosely parsed documents; this package is the boundary
// where their metadata is checked against an embedded CUE schema. The
// record union is closed: every document is a storyboard, capability,
// enabler, or test scenario, and each variant has its own identifier
// pattern and reference fields.
//
// Invalid records never cross the boundary. A document that fails schema
// validation is logged and skipped so one malformed file cannot poison a
// workspace load.
//
// Node ids are stable across reloads: the ID metadata field when present,
// else the filename stem. Storyboard narrative order defaults to filename
// order and can be overridden by the caller.
package record
