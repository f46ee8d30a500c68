package resolve

import (
	"github.com/husky-tmr/BIM-Composer-sub001/internal/parse"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/scene"
)

// Refresh re-parses one modified layer and merges its fresh nodes into the
// existing composed tree without recomposing the whole stack. When
// onlyNodePath is non-empty the pass is confined to that single node; a
// whole-file pass additionally prunes composed entries that this file
// previously contributed but no longer defines. Entries from other files are
// never touched.
func (r *Resolver) Refresh(filePath, onlyNodePath string) []scene.Warning {
	var warns []scene.Warning
	if r.composed == nil {
		_, warns = r.Resolve()
		return warns
	}

	text, ok := r.ctx.Stage.Texts[filePath]
	if !ok {
		return append(warns, scene.Warnf(scene.NotFound, "layer %s has no loaded text", filePath))
	}
	delete(r.parsed, filePath)
	fresh, parseWarns := parse.Parse(text)
	warns = append(warns, parseWarns...)

	layer, _ := r.ctx.Stage.Layer(filePath)
	layer.FilePath = filePath

	if onlyNodePath != "" {
		fn := scene.FindByPath(fresh, onlyNodePath)
		if fn == nil {
			return append(warns, scene.Warnf(scene.NotFound, "node %s not found in %s", onlyNodePath, filePath))
		}
		if existing := scene.FindByPath(r.composed, onlyNodePath); existing != nil {
			warns = append(warns, r.mergeFreshInto(existing, fn, layer)...)
			r.ctx.Stage.SetComposed(r.composed)
			return warns
		}
		warns = append(warns, r.appendFresh(&r.composed, fn, layer)...)
		r.ctx.Stage.SetComposed(r.composed)
		return warns
	}

	for _, f := range fresh {
		warns = append(warns, r.mergeFreshLevel(&r.composed, f, layer)...)
	}

	freshNames := make(map[string]bool)
	for _, f := range fresh {
		f.Walk(func(n *scene.Node) { freshNames[n.Name] = true })
	}
	r.composed = pruneStale(r.composed, filePath, freshNames)

	r.ctx.Stage.SetComposed(r.composed)
	return warns
}

// mergeFreshLevel folds one fresh node into a sibling level of the composed
// tree by name match. Unmatched nodes are appended as new entries unless
// their path already exists elsewhere in the tree (a node defined by another
// file must not be duplicated).
func (r *Resolver) mergeFreshLevel(level *[]*scene.Node, fresh *scene.Node, layer scene.Layer) []scene.Warning {
	for _, e := range *level {
		if e.Name == fresh.Name {
			return r.mergeFreshInto(e, fresh, layer)
		}
	}
	if scene.FindByPath(r.composed, fresh.Path) != nil {
		return nil // duplicate path contributed by another file
	}
	return r.appendFresh(level, fresh, layer)
}

// mergeFreshInto updates an existing composed entry from its fresh parse.
// Reference nodes intentionally keep their inherited children untouched:
// the reference target, not the local file, owns that subtree.
func (r *Resolver) mergeFreshInto(existing, fresh *scene.Node, layer scene.Layer) []scene.Warning {
	var warns []scene.Warning
	if fresh.Type != "" {
		existing.Type = fresh.Type
	}
	for _, p := range fresh.Properties {
		existing.SetProperty(p)
	}
	if existing.Ref == nil {
		for _, fc := range fresh.Children {
			warns = append(warns, r.mergeFreshLevel(&existing.Children, fc, layer)...)
		}
	}
	return warns
}

func (r *Resolver) appendFresh(level *[]*scene.Node, fresh *scene.Node, layer scene.Layer) []scene.Warning {
	c := fresh.Clone()
	stampLayer([]*scene.Node{c}, layer)
	warns := r.resolveNode(c, nil)
	*level = append(*level, c)
	return warns
}

// pruneStale removes entries whose provenance names filePath but whose name
// no longer appears in the fresh parse of that file.
func pruneStale(nodes []*scene.Node, filePath string, freshNames map[string]bool) []*scene.Node {
	var out []*scene.Node
	for _, n := range nodes {
		if n.Provenance != nil && n.Provenance.SourceFile == filePath && !freshNames[n.Name] {
			continue
		}
		n.Children = pruneStale(n.Children, filePath, freshNames)
		out = append(out, n)
	}
	return out
}
