package record

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/storymap/internal/specstore"
)

//go:embed schema.cue
var schemaSource string

// ValidationError reports a schema violation in one document's metadata.
type ValidationError struct {
	Document string
	Message  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("VALIDATION: %s: %s", e.Document, e.Message)
}

var schemaPaths = map[specstore.RecordType]string{
	specstore.Storyboards:   "#Storyboard",
	specstore.Capabilities:  "#Capability",
	specstore.Enablers:      "#Enabler",
	specstore.TestScenarios: "#TestScenario",
}

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaVal  cue.Value
)

// cue.Context is not cheap; the schema compiles once per process.
func compiledSchema() (*cue.Context, cue.Value) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		schemaVal = schemaCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
	})
	return schemaCtx, schemaVal
}

// validateMetadata unifies a record's metadata fields with the schema
// definition for its type. A nil return means the record may cross into
// the graph.
func validateMetadata(rec specstore.Record) error {
	ctx, schema := compiledSchema()
	if err := schema.Err(); err != nil {
		return &ValidationError{Document: rec.Source.Filename, Message: cueMessage(err)}
	}
	path, ok := schemaPaths[rec.Type]
	if !ok {
		return &ValidationError{
			Document: rec.Source.Filename,
			Message:  fmt.Sprintf("no schema for record type %q", rec.Type),
		}
	}
	def := schema.LookupPath(cue.ParsePath(path))
	if err := def.Err(); err != nil {
		return &ValidationError{Document: rec.Source.Filename, Message: cueMessage(err)}
	}

	fields := ctx.Encode(rec.Fields)
	if err := fields.Err(); err != nil {
		return &ValidationError{Document: rec.Source.Filename, Message: cueMessage(err)}
	}

	unified := def.Unify(fields)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Document: rec.Source.Filename, Message: cueMessage(err)}
	}
	return nil
}

// cueMessage flattens a CUE error list into one line.
func cueMessage(err error) string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	return errs[0].Error()
}
