package specstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RecordType identifies which specification document family a record
// belongs to.
type RecordType string

const (
	Storyboards   RecordType = "storyboard"
	Capabilities  RecordType = "capability"
	Enablers      RecordType = "enabler"
	TestScenarios RecordType = "test-scenario"
)

// AllRecordTypes lists every record type in layer order, top to bottom.
var AllRecordTypes = []RecordType{Storyboards, Capabilities, Enablers, TestScenarios}

// location describes where documents of a record type live and how their
// filenames start.
type location struct {
	Subfolder string
	Prefix    string
}

var locations = map[RecordType]location{
	Storyboards:   {Subfolder: "conception", Prefix: "STORY"},
	Capabilities:  {Subfolder: "definition", Prefix: "CAP"},
	Enablers:      {Subfolder: "definition", Prefix: "ENB"},
	TestScenarios: {Subfolder: "definition", Prefix: "TEST"},
}

// Handle is the opaque reference from a graph node back to its backing file.
type Handle struct {
	Path     string `json:"path"`     // absolute path to the document
	Filename string `json:"filename"` // base name, kept for display
}

// IsZero reports whether the handle points at nothing.
func (h Handle) IsZero() bool { return h.Path == "" }

// Record is one parsed specification document. Fields hold the flat
// metadata extracted from front matter or the Metadata section; RawContent
// is the full document for pattern-based identifier extraction downstream.
type Record struct {
	Type        RecordType
	Identifier  string // the ID metadata field, may be empty
	DisplayName string // first heading, falling back to the filename stem
	Status      string
	Fields      map[string]string
	RawContent  string
	Source      Handle
}

// Store is the specification store interface the core consumes. FileStore
// is the only production implementation; tests substitute fakes.
type Store interface {
	ListRecords(ctx context.Context, workspace string, rt RecordType) ([]Record, error)
	UpdateField(ctx context.Context, h Handle, field, value string) error
	DeleteRecord(ctx context.Context, h Handle) error
	CreateRecord(ctx context.Context, workspace string, rt RecordType, content string) (Handle, error)
}

// FileStore reads and writes markdown documents on the local filesystem.
type FileStore struct{}

// NewFileStore creates a file-backed store.
func NewFileStore() *FileStore { return &FileStore{} }

// ListRecords parses every document of the given type under the workspace.
// Results are sorted by filename so repeated loads see the same order.
// A missing subfolder yields an empty list, not an error.
func (s *FileStore) ListRecords(ctx context.Context, workspace string, rt RecordType) ([]Record, error) {
	loc, ok := locations[rt]
	if !ok {
		return nil, fmt.Errorf("unknown record type %q", rt)
	}
	dir := filepath.Join(workspace, loc.Subfolder)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, ioErr("list", dir, err)
	}

	var records []Record
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		if !strings.HasPrefix(strings.ToUpper(name), loc.Prefix+"-") {
			continue
		}
		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, ioErr("read", path, err)
		}
		rec := parseDocument(string(raw))
		rec.Type = rt
		rec.Source = Handle{Path: path, Filename: name}
		if rec.DisplayName == "" {
			rec.DisplayName = strings.TrimSuffix(name, ".md")
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Source.Filename < records[j].Source.Filename
	})
	return records, nil
}

// UpdateField rewrites a single metadata field in the document, preserving
// the rest of the file byte-for-byte. An empty value removes the field
// line. A field not yet present is inserted into the metadata block.
func (s *FileStore) UpdateField(ctx context.Context, h Handle, field, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := os.ReadFile(h.Path)
	if err != nil {
		return ioErr("update", h.Path, err)
	}
	updated, err := rewriteField(string(raw), field, value)
	if err != nil {
		return ioErr("update", h.Path, err)
	}
	if err := os.WriteFile(h.Path, []byte(updated), 0o644); err != nil {
		return ioErr("update", h.Path, err)
	}
	return nil
}

// DeleteRecord removes the backing file.
func (s *FileStore) DeleteRecord(ctx context.Context, h Handle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(h.Path); err != nil {
		return ioErr("delete", h.Path, err)
	}
	return nil
}

// CreateRecord writes a new document into the record type's subfolder. The
// filename is derived from the document's first heading; a numeric suffix
// avoids collisions with existing files.
func (s *FileStore) CreateRecord(ctx context.Context, workspace string, rt RecordType, content string) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return Handle{}, err
	}
	loc, ok := locations[rt]
	if !ok {
		return Handle{}, fmt.Errorf("unknown record type %q", rt)
	}
	dir := filepath.Join(workspace, loc.Subfolder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Handle{}, ioErr("create", dir, err)
	}

	rec := parseDocument(content)
	base := safeFileName(rec.DisplayName)
	if base == "" {
		base = "UNTITLED"
	}
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s-%s-%d.md", loc.Prefix, base, n)
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return Handle{}, ioErr("create", path, err)
		}
		return Handle{Path: path, Filename: name}, nil
	}
}

// safeFileName uppercases a display name and collapses everything that is
// not alphanumeric into single dashes, matching the naming of generated
// specification files.
func safeFileName(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToUpper(name) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
