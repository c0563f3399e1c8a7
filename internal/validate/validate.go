// Package validate checks event records against an embedded CUE schema.
//
// Validation is structural only: every envelope field must be present and
// non-empty, ts must be a number and payload must not be null. Whether a
// payload makes sense for its type is left to the projections, which
// treat malformed payloads as no-ops.
package validate

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/revelation/internal/event"
)

//go:embed schema.cue
var schemaSource string

// Issue is one validation failure.
type Issue struct {
	// Index is the record's position in the log, or -1 for a lone record.
	Index int `json:"index"`
	// Field is the dotted path of the offending field; empty when the
	// record as a whole is unusable.
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Field == "" {
		return fmt.Sprintf("record %d: %s", i.Index, i.Message)
	}
	return fmt.Sprintf("record %d: %s: %s", i.Index, i.Field, i.Message)
}

// Validator holds the compiled schema. It is not safe for concurrent
// use because CUE contexts are not.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile event schema: %w", err)
	}
	schema := v.LookupPath(cue.ParsePath("#Event"))
	if !schema.Exists() {
		return nil, fmt.Errorf("compile event schema: #Event not defined")
	}
	return &Validator{ctx: ctx, schema: schema}, nil
}

// Record validates one raw JSON record.
func (v *Validator) Record(index int, raw []byte) []Issue {
	expr, err := cuejson.Extract("event.json", raw)
	if err != nil {
		return []Issue{{Index: index, Message: fmt.Sprintf("invalid JSON: %v", err)}}
	}
	value := v.ctx.BuildExpr(expr)
	if err := value.Err(); err != nil {
		return []Issue{{Index: index, Message: err.Error()}}
	}
	if value.Kind() != cue.StructKind {
		return []Issue{{Index: index, Message: "record is not an object"}}
	}

	err = v.schema.Unify(value).Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}
	return issues(index, err)
}

// Event validates a decoded event. A timestamp that was not numeric on
// the wire decodes as absent and is reported as missing here.
func (v *Validator) Event(index int, evt event.Event) []Issue {
	raw, err := json.Marshal(evt)
	if err != nil {
		return []Issue{{Index: index, Message: fmt.Sprintf("encode event: %v", err)}}
	}
	return v.Record(index, raw)
}

// Events validates a whole log. Issues come back in log order.
func (v *Validator) Events(events []event.Event) []Issue {
	var all []Issue
	for i, evt := range events {
		all = append(all, v.Event(i, evt)...)
	}
	return all
}

// issues flattens a CUE error list, keeping the first message per field.
// A failed disjunction reports once per branch; one line is enough.
func issues(index int, err error) []Issue {
	var out []Issue
	seen := make(map[string]bool)
	for _, e := range cueerrors.Errors(err) {
		field := strings.Join(trimDefinition(e.Path()), ".")
		if seen[field] {
			continue
		}
		seen[field] = true

		format, args := e.Msg()
		out = append(out, Issue{
			Index:   index,
			Field:   field,
			Message: fmt.Sprintf(format, args...),
		})
	}
	return out
}

// trimDefinition drops a leading "#Event" selector from an error path.
func trimDefinition(path []string) []string {
	if len(path) > 0 && path[0] == "#Event" {
		return path[1:]
	}
	return path
}
