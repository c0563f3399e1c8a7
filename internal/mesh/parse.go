// Package mesh converts renderer SVG markup into 3-D mesh scenes.
//
// Two outputs are supported: a self-contained glTF 2.0 JSON document with
// the geometry embedded as a base64 data URI, and a Wavefront OBJ/MTL
// pair. Both read the same shape vocabulary: every <rect> becomes a quad
// and every <line> a two-vertex line, coloured by a fixed material table
// keyed on the shape's class list.
package mesh

import (
	"fmt"
	"html"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ShapeKind is the tag a shape was parsed from.
type ShapeKind string

const (
	ShapeRect ShapeKind = "rect"
	ShapeLine ShapeKind = "line"
)

// Shape is one <rect> or <line> extracted from markup.
type Shape struct {
	Kind    ShapeKind
	ID      string
	Classes []string
	Attrs   map[string]string
}

// HasClass reports whether the shape carries class c.
func (s Shape) HasClass(c string) bool {
	return slices.Contains(s.Classes, c)
}

// Num returns attribute name as a number, or fallback when the attribute
// is missing or not a finite number. An empty value reads as 0.
func (s Shape) Num(name string, fallback float64) float64 {
	raw, ok := s.Attrs[name]
	if !ok {
		return fallback
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return f
}

var (
	rootPattern = regexp.MustCompile(`<svg[\s/>]`)
	rectStart   = regexp.MustCompile(`<rect[\s/>]`)
	lineStart   = regexp.MustCompile(`<line[\s/>]`)
	attrPattern = regexp.MustCompile(`([a-zA-Z_:][-a-zA-Z0-9_:.]*)="([^"]*)"`)
)

// ParseShapes extracts every <rect> then every <line> from markup.
//
// A shape's id is its data-node-id, else its data-edge-id, else
// "shape_<n>" where n is its position in the result.
func ParseShapes(markup string) ([]Shape, error) {
	if !rootPattern.MatchString(markup) {
		return nil, newMissingRoot()
	}

	var shapes []Shape
	for _, kind := range []struct {
		kind  ShapeKind
		start *regexp.Regexp
	}{
		{ShapeRect, rectStart},
		{ShapeLine, lineStart},
	} {
		for _, loc := range kind.start.FindAllStringIndex(markup, -1) {
			raw, err := tagAt(markup, loc[0], kind.kind)
			if err != nil {
				return nil, err
			}
			shapes = append(shapes, newShape(kind.kind, raw, len(shapes)))
		}
	}
	return shapes, nil
}

// tagAt returns the tag text starting at offset through its closing '>'.
func tagAt(markup string, offset int, kind ShapeKind) (string, error) {
	end := strings.IndexByte(markup[offset:], '>')
	if end < 0 {
		return "", newMalformedTag(kind, offset, "is never closed")
	}
	raw := markup[offset : offset+end+1]
	if strings.Count(raw, `"`)%2 != 0 {
		return "", newMalformedTag(kind, offset, "has an unterminated attribute value")
	}
	return raw, nil
}

func newShape(kind ShapeKind, raw string, index int) Shape {
	attrs := make(map[string]string)
	for _, m := range attrPattern.FindAllStringSubmatch(raw, -1) {
		attrs[m[1]] = html.UnescapeString(m[2])
	}

	id := attrs["data-node-id"]
	if id == "" {
		id = attrs["data-edge-id"]
	}
	if id == "" {
		id = fmt.Sprintf("shape_%d", index)
	}

	return Shape{
		Kind:    kind,
		ID:      id,
		Classes: strings.Fields(attrs["class"]),
		Attrs:   attrs,
	}
}
