package mesh

import (
	"strconv"
	"strings"

	"github.com/roach88/revelation/internal/canonical"
	"github.com/roach88/revelation/internal/ordered"
)

// OBJ is a Wavefront OBJ document and its companion MTL library.
type OBJ struct {
	Obj string `json:"obj"`
	Mtl string `json:"mtl"`
}

// ToOBJ converts markup into OBJ and MTL text.
//
// Rects become a four-vertex face and lines a two-vertex polyline. Vertex
// indices are 1-based and run across the whole document. Each material
// block in the MTL is followed by a blank line.
func ToOBJ(markup string, opts Options) (OBJ, error) {
	shapes, err := ParseShapes(markup)
	if err != nil {
		return OBJ{}, err
	}

	var obj []string
	var materials ordered.Map[string, Material]
	vertex := 1

	for _, s := range shapes {
		m := MaterialFor(s.Classes)
		if !materials.Has(m.Name) {
			materials.Set(m.Name, m)
		}

		obj = append(obj,
			"o "+string(s.Kind)+"_"+s.ID,
			"usemtl "+m.Name,
		)

		g := shapeGeometry(s)
		for i := 0; i < len(g.positions); i += 3 {
			obj = append(obj, "v "+canonical.FormatNumber(g.positions[i])+" "+
				canonical.FormatNumber(g.positions[i+1])+" 0")
		}

		count := len(g.positions) / 3
		refs := make([]string, count)
		for i := range refs {
			refs[i] = strconv.Itoa(vertex + i)
		}
		if s.Kind == ShapeRect {
			obj = append(obj, "f "+strings.Join(refs, " "))
		} else {
			obj = append(obj, "l "+strings.Join(refs, " "))
		}
		vertex += count
	}

	var mtl []string
	materials.Each(func(name string, m Material) {
		mtl = append(mtl,
			"newmtl "+name,
			"Kd "+fixed4(m.RGBA[0])+" "+fixed4(m.RGBA[1])+" "+fixed4(m.RGBA[2]),
		)
		if m.RGBA[3] < 1 {
			mtl = append(mtl, "d "+fixed4(m.RGBA[3]))
		}
		if opts.Texture != "" && m.IsNode() {
			mtl = append(mtl, "map_Kd "+opts.Texture)
		}
		mtl = append(mtl, "")
	})

	return OBJ{
		Obj: strings.Join(obj, "\n"),
		Mtl: strings.Join(mtl, "\n"),
	}, nil
}

func fixed4(f float64) string {
	return canonical.FormatFixed(f, 4)
}
