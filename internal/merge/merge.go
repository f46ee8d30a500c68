// Package merge composes two parsed trees under override semantics: the
// override tree is the stronger layer and wins property-by-property.
package merge

import (
	"github.com/husky-tmr/BIM-Composer-sub001/internal/scene"
)

// Merge flattens base into a path-keyed map, folds override onto it
// depth-first, then relinks parent/child edges from path structure. Working
// through the map means no node object has to survive the merge by identity.
func Merge(base, override []*scene.Node) []*scene.Node {
	entries := make(map[string]*scene.Node)
	var order []string

	flatten := func(n *scene.Node) {
		c := n.CloneShallow() // children rebuilt from the map at the end
		entries[c.Path] = c
		order = append(order, c.Path)
	}
	for _, r := range base {
		r.Walk(flatten)
	}

	var fold func(n *scene.Node)
	fold = func(n *scene.Node) {
		if e, ok := entries[n.Path]; ok {
			for _, p := range n.Properties {
				e.SetProperty(p)
			}
			if n.Type != "" {
				e.Type = n.Type
			}
			if n.Ref != nil {
				r := *n.Ref
				e.Ref = &r
			}
			if n.Provenance != nil {
				e.Provenance = n.Provenance.Clone()
			}
		} else {
			c := n.CloneShallow()
			c.Specifier = scene.Define // a new path is a definition, whatever the block said
			entries[c.Path] = c
			order = append(order, c.Path)
		}
		for _, ch := range n.Children {
			fold(ch)
		}
	}
	for _, r := range override {
		fold(r)
	}

	var roots []*scene.Node
	for _, path := range order {
		e := entries[path]
		if parent, ok := entries[scene.ParentPath(path)]; ok {
			parent.Children = append(parent.Children, e)
		} else {
			roots = append(roots, e)
		}
	}
	return roots
}
