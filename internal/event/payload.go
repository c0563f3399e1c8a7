package event

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Payload is a sealed interface over the decoded payload variants.
// Only the types in this file implement it; consumers switch on the
// concrete type instead of probing loosely-typed fields.
type Payload interface {
	payload() // Sealed
}

// Num is a coerced numeric payload field.
// Valid is false when the field was missing or did not coerce to a finite number,
// letting each consumer choose its own fallback via Or.
type Num struct {
	Value float64
	Valid bool
}

// Or returns the value when valid, otherwise def.
func (n Num) Or(def float64) float64 {
	if n.Valid {
		return n.Value
	}
	return def
}

// NodeAdd creates a node. ID falls back to the event id.
type NodeAdd struct {
	ID    string
	X     Num
	Y     Num
	Mass  Num
	Fixed bool
}

// NodeMove repositions a node. ID may be empty, in which case the move is skipped.
type NodeMove struct {
	ID string
	X  Num
	Y  Num
}

// NodeSelect selects a node. Fixed is non-nil only when the payload
// carried an explicit boolean.
type NodeSelect struct {
	ID    string
	Fixed *bool
}

// EdgeAdd connects From and To, with literal endpoint coordinates for
// renderers that cannot resolve the referenced nodes.
type EdgeAdd struct {
	ID      string
	From    string
	To      string
	X1      Num
	Y1      Num
	X2      Num
	Y2      Num
	Length  Num
	K       Num
	Damping Num
}

// EdgeRemove soft-deletes an edge.
type EdgeRemove struct {
	ID string
}

// CursorMove is ephemeral pointer activity.
type CursorMove struct {
	X Num
	Y Num
}

// SceneTransform carries no structural fields the pipeline reads.
type SceneTransform struct{}

// Unrecognized is the catch-all for unknown types and for recognized
// types whose payload is absent.
type Unrecognized struct {
	Type Type
}

func (NodeAdd) payload()        {}
func (NodeMove) payload()       {}
func (NodeSelect) payload()     {}
func (EdgeAdd) payload()        {}
func (EdgeRemove) payload()     {}
func (CursorMove) payload()     {}
func (SceneTransform) payload() {}
func (Unrecognized) payload()   {}

// fields is a decoded payload object.
type fields map[string]any

// Decode turns the raw payload into its typed variant.
//
// Decoding never fails: a falsy payload (missing, null, false, 0, "")
// yields Unrecognized so the event has no structural effect, and a
// non-object payload behaves like an empty object.
func (e Event) Decode() Payload {
	if !e.Type.IsKnown() {
		return Unrecognized{Type: e.Type}
	}

	f, present := decodeFields(e.Payload)
	if !present {
		return Unrecognized{Type: e.Type}
	}

	switch e.Type {
	case TypeNodeAdd:
		return NodeAdd{
			ID:    f.idOr(e.ID),
			X:     f.num("x"),
			Y:     f.num("y"),
			Mass:  f.num("mass"),
			Fixed: truthy(f["fixed"]),
		}
	case TypeNodeMove:
		return NodeMove{
			ID: f.str("id"),
			X:  f.num("x"),
			Y:  f.num("y"),
		}
	case TypeNodeSelect:
		sel := NodeSelect{ID: f.str("id")}
		if b, ok := f["fixed"].(bool); ok {
			sel.Fixed = &b
		}
		return sel
	case TypeEdgeAdd:
		return EdgeAdd{
			ID:      f.idOr(e.ID),
			From:    f.str("from"),
			To:      f.str("to"),
			X1:      f.num("x1"),
			Y1:      f.num("y1"),
			X2:      f.num("x2"),
			Y2:      f.num("y2"),
			Length:  f.num("length"),
			K:       f.num("k"),
			Damping: f.num("damping"),
		}
	case TypeEdgeRemove:
		return EdgeRemove{ID: f.str("id")}
	case TypeCursorMove:
		return CursorMove{X: f.num("x"), Y: f.num("y")}
	case TypeSceneTransform:
		return SceneTransform{}
	default:
		return Unrecognized{Type: e.Type}
	}
}

// decodeFields parses raw into an object map. present is false for falsy payloads.
func decodeFields(raw json.RawMessage) (fields, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if !truthy(v) {
		return nil, false
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return fields{}, true
	}
	return fields(obj), true
}

// str reads a string-ish identifier. Numbers are kept in their literal form.
func (f fields) str(key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// idOr returns the payload id, or fallback when the payload id is empty.
func (f fields) idOr(fallback string) string {
	if id := f.str("id"); id != "" {
		return id
	}
	return fallback
}

// num coerces a field the way a lenient numeric conversion would:
// null and "" are 0, booleans are 0/1, numeric strings parse, and
// anything else (missing, objects, NaN, Inf) is invalid.
func (f fields) num(key string) Num {
	v, ok := f[key]
	if !ok {
		return Num{}
	}
	return coerce(v)
}

func coerce(v any) Num {
	var x float64
	switch val := v.(type) {
	case nil:
		x = 0
	case bool:
		if val {
			x = 1
		}
	case json.Number:
		parsed, err := strconv.ParseFloat(val.String(), 64)
		if err != nil {
			return Num{}
		}
		x = parsed
	case float64:
		x = val
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			x = 0
			break
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Num{}
		}
		x = parsed
	default:
		return Num{}
	}

	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Num{}
	}
	return Num{Value: x, Valid: true}
}

// truthy mirrors loose boolean conversion of a decoded JSON value.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case json.Number:
		f, err := strconv.ParseFloat(val.String(), 64)
		return err == nil && f != 0
	case float64:
		return val != 0 && !math.IsNaN(val)
	default:
		return true
	}
}
