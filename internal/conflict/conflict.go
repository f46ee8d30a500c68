// Package conflict inspects a prospective property change against ownership
// and multi-layer definition rules. Detection is read-only: it parses the
// loaded layers and reports, it never mutates anything.
package conflict

import (
	"github.com/husky-tmr/BIM-Composer-sub001/internal/changelog"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/editor"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/parse"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/resolve"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/scene"
)

// Kind classifies a conflict record.
type Kind int

const (
	// Ownership: the node's provenance layer is owned by someone else.
	Ownership Kind = iota
	// SourceDefinition: the property is already explicitly declared in the
	// node's own originating file.
	SourceDefinition
	// StagedOverride: the property is already staged for this path in the
	// reserved changelog layer.
	StagedOverride
	// MultiLayerDefinition: more than one loaded layer independently
	// declares this property for this path.
	MultiLayerDefinition
)

func (k Kind) String() string {
	switch k {
	case SourceDefinition:
		return "source-definition"
	case StagedOverride:
		return "staged-override"
	case MultiLayerDefinition:
		return "multi-layer-definition"
	default:
		return "ownership"
	}
}

// Sentinel owners used when no concrete identity applies.
const (
	OwnerUnknown = "unknown"
	OwnerStaged  = "staged changes"
)

// Record is one detected conflict.
type Record struct {
	Kind  Kind
	File  string
	Owner string
	Value string
}

// Detect evaluates a candidate value for one property of a resolved node.
// The rules run independently and every hit is reported; only an exact match
// between candidate and current value short-circuits to "no conflict".
func Detect(n *scene.Node, property string, candidate scene.Value, ctx resolve.Context) []Record {
	if cur, ok := lookupProperty(n, property); ok && cur.Equal(candidate) {
		return nil
	}

	var records []Record
	records = append(records, detectOwnership(n, property, ctx)...)
	records = append(records, detectSourceDefinition(n, property, ctx)...)
	records = append(records, detectStagedOverride(n, property, ctx)...)
	records = append(records, detectMultiLayer(n, property, ctx)...)
	return records
}

func detectOwnership(n *scene.Node, property string, ctx resolve.Context) []Record {
	if n.Provenance == nil {
		return nil
	}
	file := n.Provenance.SourceFile
	owner := OwnerUnknown
	if layer, ok := ctx.Stage.Layer(file); ok {
		if layer.Owner == "" || layer.Owner == ctx.Identity {
			return nil
		}
		owner = layer.Owner
	}
	value := ""
	if cur, ok := lookupProperty(n, property); ok {
		value = cur.Display()
	}
	return []Record{{Kind: Ownership, File: file, Owner: owner, Value: value}}
}

func detectSourceDefinition(n *scene.Node, property string, ctx resolve.Context) []Record {
	if n.Provenance == nil {
		return nil
	}
	file := n.Provenance.SourceFile
	text, ok := ctx.Stage.Texts[file]
	if !ok {
		return nil
	}
	roots, _ := parse.Parse(text)
	src := scene.FindByPath(roots, n.Provenance.SourcePath)
	if src == nil {
		src = scene.FindByPath(roots, n.Path)
	}
	if src == nil {
		return nil
	}
	declared, ok := lookupProperty(src, property)
	if !ok {
		return nil
	}
	return []Record{{Kind: SourceDefinition, File: file, Owner: layerOwner(ctx, file), Value: declared.Display()}}
}

func detectStagedOverride(n *scene.Node, property string, ctx resolve.Context) []Record {
	if ctx.Changelog == "" {
		return nil
	}
	text, ok := ctx.Stage.Texts[ctx.Changelog]
	if !ok {
		return nil
	}
	staged, ok := changelog.StagedValue(text, n.Path, property)
	if !ok {
		return nil
	}
	return []Record{{Kind: StagedOverride, File: ctx.Changelog, Owner: OwnerStaged, Value: staged.Display()}}
}

// detectMultiLayer scans every loaded layer text, not just the layers in the
// node's own file set: a stale layer that still declares the property is
// exactly the situation worth surfacing.
func detectMultiLayer(n *scene.Node, property string, ctx resolve.Context) []Record {
	type decl struct {
		file  string
		value scene.Value
	}
	var decls []decl
	for file, text := range ctx.Stage.Texts {
		if file == ctx.Changelog {
			continue // rule 4 territory
		}
		roots, _ := parse.Parse(text)
		target := scene.FindByPath(roots, n.Path)
		if target == nil && n.Provenance != nil && n.Provenance.SourceFile == file {
			target = scene.FindByPath(roots, n.Provenance.SourcePath)
		}
		if target == nil {
			continue
		}
		if v, ok := lookupProperty(target, property); ok {
			decls = append(decls, decl{file: file, value: v})
		}
	}
	if len(decls) < 2 {
		return nil
	}
	records := make([]Record, 0, len(decls))
	for _, d := range decls {
		records = append(records, Record{
			Kind:  MultiLayerDefinition,
			File:  d.file,
			Owner: layerOwner(ctx, d.file),
			Value: d.value.Display(),
		})
	}
	return records
}

// lookupProperty checks both the raw name and the editor's namespaced form.
func lookupProperty(n *scene.Node, property string) (scene.Value, bool) {
	if p, ok := n.Property(property); ok {
		return p.Value, true
	}
	if p, ok := n.Property(editor.Namespace + ":" + property); ok {
		return p.Value, true
	}
	return scene.Value{}, false
}

func layerOwner(ctx resolve.Context, file string) string {
	if layer, ok := ctx.Stage.Layer(file); ok && layer.Owner != "" {
		return layer.Owner
	}
	return OwnerUnknown
}
