package mesh

import (
	"fmt"

	"github.com/roach88/revelation/internal/contract"
	"github.com/roach88/revelation/internal/svg"
)

// Registry names of the mesh contracts.
const (
	GLTFContractName = "gltf"
	OBJContractName  = "obj"
)

// NewGLTFContract renders the log as SVG at finalize and converts the
// markup into a glTF document.
func NewGLTFContract(render svg.Options, opts Options) contract.Contract[*svg.State, *Document] {
	base := svg.NewContract(render)
	return contract.Contract[*svg.State, *Document]{
		Name:    GLTFContractName,
		Init:    base.Init,
		OnEvent: base.OnEvent,
		Finalize: func(s *svg.State) (*Document, error) {
			doc, err := ToGLTF(svg.Render(s.Events, render), opts)
			if err != nil {
				return nil, fmt.Errorf("svg to gltf: %w", err)
			}
			return doc, nil
		},
	}
}

// NewOBJContract renders the log as SVG at finalize and converts the
// markup into OBJ and MTL text.
func NewOBJContract(render svg.Options, opts Options) contract.Contract[*svg.State, OBJ] {
	base := svg.NewContract(render)
	return contract.Contract[*svg.State, OBJ]{
		Name:    OBJContractName,
		Init:    base.Init,
		OnEvent: base.OnEvent,
		Finalize: func(s *svg.State) (OBJ, error) {
			out, err := ToOBJ(svg.Render(s.Events, render), opts)
			if err != nil {
				return OBJ{}, fmt.Errorf("svg to obj: %w", err)
			}
			return out, nil
		},
	}
}
