package record

import (
	"context"
	"log/slog"
	"strings"

	"github.com/roach88/storymap/internal/graph"
	"github.com/roach88/storymap/internal/specstore"
)

// Record is a validated specification document with its stable node id.
type Record struct {
	specstore.Record
	NodeID string
}

// NodeType maps the record's document family to its graph layer.
func (r Record) NodeType() graph.NodeType {
	switch r.Type {
	case specstore.Storyboards:
		return graph.Storyboard
	case specstore.Capabilities:
		return graph.Capability
	case specstore.Enablers:
		return graph.Enabler
	default:
		return graph.TestScenario
	}
}

// Set holds one workspace load, each layer in filename order. Storyboard
// slice order is the default narrative order.
type Set struct {
	Storyboards   []Record
	Capabilities  []Record
	Enablers      []Record
	TestScenarios []Record
}

// All returns every record, top layer first.
func (s *Set) All() []Record {
	out := make([]Record, 0, len(s.Storyboards)+len(s.Capabilities)+len(s.Enablers)+len(s.TestScenarios))
	out = append(out, s.Storyboards...)
	out = append(out, s.Capabilities...)
	out = append(out, s.Enablers...)
	out = append(out, s.TestScenarios...)
	return out
}

// Loader fetches and validates all record types for a workspace.
type Loader struct {
	store  specstore.Store
	logger *slog.Logger
}

// NewLoader wires a loader to a store. A nil logger falls back to the
// default slog logger.
func NewLoader(store specstore.Store, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{store: store, logger: logger}
}

// Load reads every record type from the workspace. Records that fail
// schema validation, and records whose node id collides with an earlier
// one, are logged and skipped; the rest of the workspace still loads.
func (l *Loader) Load(ctx context.Context, workspace string) (*Set, error) {
	set := &Set{}
	seen := map[string]string{} // node id -> filename that claimed it

	for _, rt := range specstore.AllRecordTypes {
		raws, err := l.store.ListRecords(ctx, workspace, rt)
		if err != nil {
			return nil, err
		}
		for _, raw := range raws {
			if err := validateMetadata(raw); err != nil {
				l.logger.Warn("skipping invalid record",
					"file", raw.Source.Filename, "error", err)
				continue
			}
			rec := Record{Record: raw, NodeID: nodeID(raw)}
			if prev, dup := seen[rec.NodeID]; dup {
				l.logger.Warn("skipping record with duplicate id",
					"file", raw.Source.Filename, "id", rec.NodeID, "first", prev)
				continue
			}
			seen[rec.NodeID] = raw.Source.Filename

			switch rt {
			case specstore.Storyboards:
				set.Storyboards = append(set.Storyboards, rec)
			case specstore.Capabilities:
				set.Capabilities = append(set.Capabilities, rec)
			case specstore.Enablers:
				set.Enablers = append(set.Enablers, rec)
			case specstore.TestScenarios:
				set.TestScenarios = append(set.TestScenarios, rec)
			}
		}
	}
	return set, nil
}

// nodeID derives the stable graph id: the ID metadata field when present,
// else the filename stem.
func nodeID(rec specstore.Record) string {
	if rec.Identifier != "" {
		return rec.Identifier
	}
	return strings.TrimSuffix(rec.Source.Filename, ".md")
}
