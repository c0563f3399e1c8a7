// Package svg renders the cumulative node/edge state of an event log as
// SVG markup.
//
// The markup is also a data contract: the mesh converters read it back,
// so the shape vocabulary below must change on both sides together.
//
//	<line data-edge-id="ID" class="edge[ removed]" [data-removed="true"] x1 y1 x2 y2 ...>
//	<rect data-node-id="ID" class="node[ selected]" x y width="8" height="8" ...>
//
// Edges are emitted first, then nodes, both in creation order, then one
// cursor marker (<circle>) per cursor.move in log order. The background
// colour lives on the root element's style attribute, so every <rect> in
// the document is a node.
package svg

import (
	"strings"

	"github.com/roach88/revelation/internal/canonical"
	"github.com/roach88/revelation/internal/event"
)

// Palette and geometry shared with the mesh converters.
const (
	BaseColor   = "#2c1f16"
	AccentColor = "#a24b2d"

	// NodeSize is the side of the square drawn for a node, centred on it.
	NodeSize = 8
)

// Render defaults.
const (
	DefaultWidth      = 900.0
	DefaultHeight     = 480.0
	DefaultBackground = "#fffdf7"
	DefaultStepMs     = 200.0
)

const styleSheet = `.node { cursor: pointer; } ` +
	`.node.selected { stroke: #a24b2d; stroke-width: 2; } ` +
	`.edge { cursor: pointer; } ` +
	`.edge.removed { opacity: 0.2; stroke-dasharray: 4 4; }`

// Options control rendering. Zero fields take the defaults.
type Options struct {
	Width      float64 `yaml:"width" json:"width"`
	Height     float64 `yaml:"height" json:"height"`
	Background string  `yaml:"background" json:"background"`
	// Animate emits <animate> keyframes for move history, selection
	// and removal, spaced StepMs apart per fold index.
	Animate bool    `yaml:"animate" json:"animate"`
	StepMs  float64 `yaml:"step_ms" json:"step_ms"`
}

// DefaultOptions returns the render defaults.
func DefaultOptions() Options {
	return Options{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Background: DefaultBackground,
		StepMs:     DefaultStepMs,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width > 0 {
		d.Width = o.Width
	}
	if o.Height > 0 {
		d.Height = o.Height
	}
	if o.Background != "" {
		d.Background = o.Background
	}
	if o.StepMs > 0 {
		d.StepMs = o.StepMs
	}
	d.Animate = o.Animate
	return d
}

// Render folds events and serializes the resulting scene.
func Render(events []event.Event, opts Options) string {
	o := opts.withDefaults()
	sc := BuildScene(events)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg"`)
	attr(&b, "width", num(o.Width))
	attr(&b, "height", num(o.Height))
	attr(&b, "viewBox", "0 0 "+num(o.Width)+" "+num(o.Height))
	attr(&b, "style", "background:"+o.Background)
	b.WriteString(`>`)
	b.WriteString(`<style>` + styleSheet + `</style>`)

	for _, e := range sc.Edges() {
		writeEdge(&b, sc, e, o)
	}
	for _, n := range sc.Nodes() {
		writeNode(&b, n, o)
	}
	for _, evt := range events {
		if c, ok := evt.Decode().(event.CursorMove); ok {
			writeCursor(&b, c)
		}
	}

	b.WriteString(`</svg>`)
	return b.String()
}

func writeEdge(b *strings.Builder, sc *Scene, e *Edge, o Options) {
	x1, y1, x2, y2 := sc.Endpoints(e)

	class := "edge"
	if e.Removed {
		class = "edge removed"
	}

	b.WriteString(`<line`)
	attr(b, "data-edge-id", e.ID)
	attr(b, "class", class)
	if e.Removed {
		attr(b, "data-removed", "true")
	}
	attr(b, "x1", num(x1))
	attr(b, "y1", num(y1))
	attr(b, "x2", num(x2))
	attr(b, "y2", num(y2))
	attr(b, "stroke", BaseColor)
	attr(b, "stroke-width", "1")

	if !o.Animate || !e.Removed {
		b.WriteString(` />`)
		return
	}

	b.WriteString(`>`)
	b.WriteString(`<animate`)
	attr(b, "attributeName", "opacity")
	attr(b, "begin", ms(float64(e.RemovedAt)*o.StepMs))
	attr(b, "dur", ms(o.StepMs))
	attr(b, "values", "1;0.2")
	attr(b, "fill", "freeze")
	b.WriteString(` />`)
	b.WriteString(`</line>`)
}

func writeNode(b *strings.Builder, n *Node, o Options) {
	const half = NodeSize / 2

	class := "node"
	if n.Selected {
		class = "node selected"
	}

	b.WriteString(`<rect`)
	attr(b, "data-node-id", n.ID)
	attr(b, "class", class)
	attr(b, "x", num(n.X-half))
	attr(b, "y", num(n.Y-half))
	attr(b, "width", num(NodeSize))
	attr(b, "height", num(NodeSize))
	attr(b, "fill", BaseColor)

	moved := len(n.History) > 1
	if !o.Animate || (!moved && !n.Selected) {
		b.WriteString(` />`)
		return
	}

	b.WriteString(`>`)
	if moved {
		xs := make([]string, len(n.History))
		ys := make([]string, len(n.History))
		for i, p := range n.History {
			xs[i] = num(p.X - half)
			ys[i] = num(p.Y - half)
		}
		dur := ms(float64(len(n.History)-1) * o.StepMs)

		b.WriteString(`<animate`)
		attr(b, "attributeName", "x")
		attr(b, "dur", dur)
		attr(b, "values", strings.Join(xs, ";"))
		attr(b, "fill", "freeze")
		b.WriteString(` />`)

		b.WriteString(`<animate`)
		attr(b, "attributeName", "y")
		attr(b, "dur", dur)
		attr(b, "values", strings.Join(ys, ";"))
		attr(b, "fill", "freeze")
		b.WriteString(` />`)
	}
	if n.Selected {
		b.WriteString(`<animate`)
		attr(b, "attributeName", "stroke")
		attr(b, "begin", ms(float64(n.SelectedAt)*o.StepMs))
		attr(b, "dur", ms(o.StepMs))
		attr(b, "values", BaseColor+";"+AccentColor)
		attr(b, "fill", "freeze")
		b.WriteString(` />`)
	}
	b.WriteString(`</rect>`)
}

func writeCursor(b *strings.Builder, c event.CursorMove) {
	b.WriteString(`<circle`)
	attr(b, "cx", num(c.X.Or(0)))
	attr(b, "cy", num(c.Y.Or(0)))
	attr(b, "r", "3")
	attr(b, "fill", AccentColor)
	attr(b, "opacity", "0.6")
	b.WriteString(` />`)
}

// attrEscaper escapes attribute values for double-quoted XML attributes.
var attrEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

func attr(b *strings.Builder, name, value string) {
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString(`="`)
	attrEscaper.WriteString(b, value)
	b.WriteByte('"')
}

func num(f float64) string {
	return canonical.FormatNumber(f)
}

func ms(f float64) string {
	return num(f) + "ms"
}
