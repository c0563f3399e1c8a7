package mesh

import (
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/revelation/internal/svg"
)

// Material names, in priority order.
const (
	MaterialNodeSelected = "node_selected"
	MaterialEdgeRemoved  = "edge_removed"
	MaterialEdgeDefault  = "edge_default"
	MaterialNodeDefault  = "node_default"
)

// removedAlpha is the opacity of soft-deleted edges.
const removedAlpha = 0.2

// fallbackRGB is used when a colour is not a 6-digit hex triplet.
var fallbackRGB = [3]float64{0.17, 0.12, 0.09}

// Material is a flat colour with alpha, components in [0, 1].
type Material struct {
	Name string
	RGBA [4]float64
}

// IsNode reports whether the material colours node shapes.
// Textures only ever attach to node materials.
func (m Material) IsNode() bool {
	return strings.HasPrefix(m.Name, "node")
}

// MaterialFor classifies a class list. Priority: selected node, removed
// edge, edge, then the node default for everything else.
func MaterialFor(classes []string) Material {
	has := func(c string) bool { return slices.Contains(classes, c) }

	switch {
	case has("node") && has("selected"):
		return material(MaterialNodeSelected, svg.AccentColor, 1)
	case has("edge") && has("removed"):
		return material(MaterialEdgeRemoved, svg.BaseColor, removedAlpha)
	case has("edge"):
		return material(MaterialEdgeDefault, svg.BaseColor, 1)
	default:
		return material(MaterialNodeDefault, svg.BaseColor, 1)
	}
}

func material(name, hex string, alpha float64) Material {
	rgb := hexToRGB(hex)
	return Material{Name: name, RGBA: [4]float64{rgb[0], rgb[1], rgb[2], alpha}}
}

// hexToRGB parses "#rrggbb" into components divided by 255.
func hexToRGB(hex string) [3]float64 {
	clean := strings.Replace(hex, "#", "", 1)
	if len(clean) != 6 {
		return fallbackRGB
	}
	var rgb [3]float64
	for i := range rgb {
		v, err := strconv.ParseUint(clean[i*2:i*2+2], 16, 8)
		if err != nil {
			return fallbackRGB
		}
		rgb[i] = float64(v) / 255
	}
	return rgb
}
