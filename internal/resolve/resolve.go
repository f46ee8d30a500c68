// Package resolve builds one fully composed, provenance-stamped tree from an
// ordered stack of layers and their cross-references.
package resolve

import (
	"log"

	"github.com/husky-tmr/BIM-Composer-sub001/internal/merge"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/parse"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/scene"
)

// Context carries the ambient state a resolution needs: who is acting, the
// layer stack with its loaded texts, and the reserved changelog layer name.
// All of it is explicit input; the resolver holds no process-wide state.
type Context struct {
	Identity   string
	Privileged bool
	Stage      *scene.Stage
	Changelog  string
}

// Resolver composes the stage. It caches per-file parses for the duration of
// one resolution pass and keeps the last composed tree for incremental
// refresh.
type Resolver struct {
	ctx      Context
	parsed   map[string][]*scene.Node
	composed []*scene.Node
}

func New(ctx Context) *Resolver {
	return &Resolver{ctx: ctx, parsed: make(map[string][]*scene.Node)}
}

// Resolve parses every visible layer, stages them under override semantics,
// filters by ownership visibility, resolves references, and caches the
// result on the stage. Unresolved references degrade to warnings; the rest
// of the tree still resolves.
func (r *Resolver) Resolve() ([]*scene.Node, []scene.Warning) {
	r.parsed = make(map[string][]*scene.Node)
	var warns []scene.Warning

	var staged []*scene.Node
	for _, layer := range r.ctx.Stage.Visible() {
		if layer.FilePath == r.ctx.Changelog {
			continue // bookkeeping layer, not scene content
		}
		text, ok := r.ctx.Stage.Texts[layer.FilePath]
		if !ok {
			warns = append(warns, scene.Warnf(scene.NotFound, "layer %s has no loaded text", layer.FilePath))
			continue
		}
		roots, parseWarns := parse.Parse(text)
		warns = append(warns, parseWarns...)
		stampLayer(roots, layer)
		staged = merge.Merge(staged, roots)
	}

	staged = r.filterVisible(staged)

	for _, root := range staged {
		warns = append(warns, r.resolveNode(root, nil)...)
	}

	r.composed = staged
	r.ctx.Stage.SetComposed(staged)
	return staged, warns
}

// Composed returns the last composed tree, resolving first if none exists.
func (r *Resolver) Composed() ([]*scene.Node, []scene.Warning) {
	if r.composed != nil {
		return r.composed, nil
	}
	return r.Resolve()
}

// filterVisible drops staged roots whose provenance layer is owned by a
// different identity, unless the acting identity is privileged.
func (r *Resolver) filterVisible(roots []*scene.Node) []*scene.Node {
	if r.ctx.Privileged {
		return roots
	}
	var out []*scene.Node
	for _, n := range roots {
		if n.Provenance != nil {
			if layer, ok := r.ctx.Stage.Layer(n.Provenance.SourceFile); ok {
				if layer.Owner != "" && layer.Owner != r.ctx.Identity {
					continue
				}
			}
		}
		out = append(out, n)
	}
	return out
}

// resolveNode splices referenced content into n and recurses into local
// children. Children lacking their own provenance stamp inherit the parent's.
func (r *Resolver) resolveNode(n *scene.Node, parentProv *scene.Provenance) []scene.Warning {
	var warns []scene.Warning

	localChildren := n.Children

	spliced := false
	if n.Ref != nil {
		if w := r.spliceReference(n); w != nil {
			warns = append(warns, *w)
			log.Printf("resolve: %s", w.Detail)
		} else {
			spliced = true
		}
	}

	for _, ch := range localChildren {
		warns = append(warns, r.resolveNode(ch, n.Provenance)...)
		if spliced {
			// Local children go after the inherited ones.
			n.Children = append(n.Children, ch)
		}
	}

	if n.Provenance == nil && parentProv != nil {
		n.Provenance = parentProv.Clone()
	}
	for _, ch := range n.Children {
		if ch.Provenance == nil && n.Provenance != nil {
			ch.Provenance = n.Provenance.Clone()
		}
	}
	return warns
}

// spliceReference resolves n's reference/payload descriptor: the target's
// type, properties (local declarations layered on top so local overrides
// win) and a deep copy of its children are folded into n, and provenance is
// stamped on n and every spliced-in descendant. Returns a warning instead of
// mutating n when the target cannot be found.
func (r *Resolver) spliceReference(n *scene.Node) *scene.Warning {
	ref := *n.Ref
	if _, ok := r.ctx.Stage.Texts[ref.File]; !ok {
		w := scene.Warnf(scene.UnresolvedReference, "node %s: target file %s is not loaded", n.Path, ref.File)
		return &w
	}
	targets := r.parseFile(ref.File)

	var target *scene.Node
	if ref.Path != "" {
		target = scene.FindByPath(targets, ref.Path)
	} else if len(targets) > 0 {
		target = targets[0] // implicit default: first root of the target file
	}
	if target == nil {
		w := scene.Warnf(scene.UnresolvedReference, "node %s: target %s in %s not found", n.Path, ref.Path, ref.File)
		return &w
	}

	status := r.layerStatus(ref.File)

	if target.Type != "" {
		n.Type = target.Type
	}
	local := n.Properties
	n.Properties = append([]scene.Property(nil), target.Properties...)
	for _, p := range local {
		n.SetProperty(p)
	}

	n.Children = nil
	for _, tc := range target.Children {
		cc := tc.Clone()
		rebase(cc, n.Path, ref.File, status)
		n.Children = append(n.Children, cc)
	}

	n.Provenance = &scene.Provenance{
		SourceFile:        ref.File,
		SourcePath:        target.Path,
		SourceLayerStatus: status,
	}
	return nil
}

// rebase moves a spliced-in subtree under newParentPath, stamping each node
// with its own origin path within the target file.
func rebase(n *scene.Node, newParentPath, file string, status scene.LayerStatus) {
	n.Provenance = &scene.Provenance{
		SourceFile:        file,
		SourcePath:        n.Path, // the descendant's own path in the target file
		SourceLayerStatus: status,
	}
	n.Path = newParentPath + "/" + n.Name
	for _, ch := range n.Children {
		rebase(ch, n.Path, file, status)
	}
}

func (r *Resolver) parseFile(filePath string) []*scene.Node {
	if roots, ok := r.parsed[filePath]; ok {
		return roots
	}
	roots, _ := parse.Parse(r.ctx.Stage.Texts[filePath])
	r.parsed[filePath] = roots
	return roots
}

func (r *Resolver) layerStatus(filePath string) scene.LayerStatus {
	if layer, ok := r.ctx.Stage.Layer(filePath); ok {
		return layer.Status
	}
	return scene.Draft
}

func stampLayer(roots []*scene.Node, layer scene.Layer) {
	for _, root := range roots {
		root.Walk(func(n *scene.Node) {
			n.Provenance = &scene.Provenance{
				SourceFile:        layer.FilePath,
				SourcePath:        n.Path,
				SourceLayerStatus: layer.Status,
			}
		})
	}
}
