package resolve

import (
	"github.com/husky-tmr/BIM-Composer-sub001/api"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/scene"
)

// BuildDocument exports a composed tree in the schema viewers consume.
func BuildDocument(roots []*scene.Node) api.Document {
	doc := api.Document{Version: api.Version}
	for _, n := range roots {
		doc.Prims = append(doc.Prims, exportPrim(n))
	}
	return doc
}

func exportPrim(n *scene.Node) api.Prim {
	p := api.Prim{
		Path:      n.Path,
		Name:      n.Name,
		Specifier: n.Specifier.String(),
		Type:      n.Type,
	}
	if len(n.Properties) > 0 {
		p.Properties = make(map[string]any, len(n.Properties))
		for _, prop := range n.Properties {
			p.Properties[prop.Name] = exportValue(prop.Value)
		}
	}
	if n.Ref != nil {
		p.Reference = n.Ref.String()
	}
	if n.Provenance != nil {
		p.Source = &api.Source{
			File:        n.Provenance.SourceFile,
			Path:        n.Provenance.SourcePath,
			LayerStatus: n.Provenance.SourceLayerStatus.String(),
		}
	}
	for _, ch := range n.Children {
		p.Children = append(p.Children, exportPrim(ch))
	}
	return p
}

func exportValue(v scene.Value) any {
	switch v.Kind {
	case scene.KindNumber:
		return v.Num
	case scene.KindBool:
		return v.Bool
	case scene.KindColor:
		return []float64{v.Color[0], v.Color[1], v.Color[2]}
	case scene.KindStringList:
		return v.List
	default:
		return v.Str
	}
}
