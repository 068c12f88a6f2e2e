// Package specstore reads and writes the authoritative specification files
// of a workspace.
//
// A workspace is a directory tree of markdown documents, one per record:
//
//	conception/STORY-*.md     storyboards
//	definition/CAP-*.md       capabilities
//	definition/ENB-*.md       enablers
//	definition/TEST-*.md      test scenarios
//
// Each document carries structured metadata either as YAML front matter or
// as "- **Field**: value" lines under a "## Metadata" heading. The store
// extracts that metadata into flat string fields; interpreting the fields
// is the loader's job, not the store's.
//
// Writes are minimal and targeted: UpdateField rewrites exactly one
// metadata line and leaves every other byte of the document alone. The
// reference that ties a child record to its parent lives in the child
// document, so rewiring a relationship only ever touches the child file.
package specstore
