package mesh

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

const (
	roughness = 0.9

	bufferURIPrefix = "data:application/octet-stream;base64,"
	generator       = "revelation svg-to-gltf"
)

// Options configure mesh conversion.
type Options struct {
	// Texture, when set, is referenced by node materials
	// (glTF baseColorTexture, MTL map_Kd).
	Texture string `yaml:"texture" json:"texture"`
}

// Document is a glTF 2.0 scene whose single buffer is embedded as a
// base64 data URI.
type Document struct {
	*gltf.Document
}

// Encode returns the document as indented JSON without HTML escaping.
func (d *Document) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d.Document); err != nil {
		return nil, fmt.Errorf("encode gltf: %w", err)
	}
	return buf.Bytes(), nil
}

// BufferBytes decodes the embedded data URI of buffer 0.
func (d *Document) BufferBytes() ([]byte, error) {
	if len(d.Buffers) == 0 {
		return nil, fmt.Errorf("gltf: document has no buffers")
	}
	uri := d.Buffers[0].URI
	if !strings.HasPrefix(uri, bufferURIPrefix) {
		return nil, fmt.Errorf("gltf: buffer is not an embedded data URI")
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, bufferURIPrefix))
	if err != nil {
		return nil, fmt.Errorf("gltf: decode buffer: %w", err)
	}
	return data, nil
}

// geometry is the vertex and index data of one shape.
type geometry struct {
	positions [][3]float32
	indices   []uint16
	mode      gltf.PrimitiveMode
}

func shapeGeometry(s Shape) geometry {
	if s.Kind == ShapeRect {
		x := float32(s.Num("x", 0))
		y := float32(s.Num("y", 0))
		w := float32(s.Num("width", 8))
		h := float32(s.Num("height", 8))
		return geometry{
			positions: [][3]float32{
				{x, y, 0},
				{x + w, y, 0},
				{x + w, y + h, 0},
				{x, y + h, 0},
			},
			indices: []uint16{0, 1, 2, 0, 2, 3},
			mode:    gltf.PrimitiveTriangles,
		}
	}
	return geometry{
		positions: [][3]float32{
			{float32(s.Num("x1", 0)), float32(s.Num("y1", 0)), 0},
			{float32(s.Num("x2", 0)), float32(s.Num("y2", 0)), 0},
		},
		indices: []uint16{0, 1},
		mode:    gltf.PrimitiveLines,
	}
}

// gltfBuilder accumulates meshes and de-duplicated materials.
type gltfBuilder struct {
	doc       *gltf.Document
	materials map[string]int
	texture   string
}

func float64Ptr(v float64) *float64 { return &v }

func (b *gltfBuilder) ensureMaterial(m Material) int {
	if idx, ok := b.materials[m.Name]; ok {
		return idx
	}
	alphaMode := gltf.AlphaOpaque
	if m.RGBA[3] < 1 {
		alphaMode = gltf.AlphaBlend
	}
	color := m.RGBA
	gm := &gltf.Material{
		Name: m.Name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &color,
			MetallicFactor:  float64Ptr(0),
			RoughnessFactor: float64Ptr(roughness),
		},
		AlphaMode:   alphaMode,
		DoubleSided: true,
	}
	if b.texture != "" && m.IsNode() {
		gm.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: 0}
	}
	idx := len(b.doc.Materials)
	b.doc.Materials = append(b.doc.Materials, gm)
	b.materials[m.Name] = idx
	return idx
}

// addShape writes the shape's positions and indices as two fresh buffer
// views. modeler pads each view to a 4-byte boundary.
func (b *gltfBuilder) addShape(s Shape) {
	mat := b.ensureMaterial(MaterialFor(s.Classes))
	g := shapeGeometry(s)

	pos := modeler.WritePosition(b.doc, g.positions)
	idx := modeler.WriteIndices(b.doc, g.indices)

	name := string(s.Kind) + "_" + s.ID
	meshIdx := len(b.doc.Meshes)
	b.doc.Meshes = append(b.doc.Meshes, &gltf.Mesh{
		Name: name,
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]int{gltf.POSITION: pos},
			Indices:    gltf.Index(idx),
			Material:   gltf.Index(mat),
			Mode:       g.mode,
		}},
	})
	b.doc.Nodes = append(b.doc.Nodes, &gltf.Node{Name: name, Mesh: gltf.Index(meshIdx)})
}

// ToGLTF converts markup into a glTF document.
//
// Each shape gets its own position and index buffer views, so vertices
// are never shared between shapes. Materials are de-duplicated by name.
func ToGLTF(markup string, opts Options) (*Document, error) {
	shapes, err := ParseShapes(markup)
	if err != nil {
		return nil, err
	}

	b := &gltfBuilder{
		doc: &gltf.Document{
			Asset:   gltf.Asset{Version: "2.0", Generator: generator},
			Buffers: []*gltf.Buffer{{}},
			Scene:   gltf.Index(0),
		},
		materials: make(map[string]int),
		texture:   opts.Texture,
	}
	for _, s := range shapes {
		b.addShape(s)
	}
	b.doc.Buffers[0].EmbeddedResource()

	sceneNodes := make([]int, len(b.doc.Nodes))
	for i := range sceneNodes {
		sceneNodes[i] = i
	}
	b.doc.Scenes = []*gltf.Scene{{Nodes: sceneNodes}}

	if opts.Texture != "" {
		b.doc.Images = []*gltf.Image{{URI: opts.Texture}}
		b.doc.Textures = []*gltf.Texture{{Source: gltf.Index(0)}}
	}
	return &Document{Document: b.doc}, nil
}
