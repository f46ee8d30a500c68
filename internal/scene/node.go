package scene

import (
	"errors"
	"hash/fnv"
	"strings"
)

var ErrStaleSpan = errors.New("span does not match this text generation")

// Specifier is the kind of a node definition.
type Specifier int

const (
	Define Specifier = iota
	Override
	Class
)

func (s Specifier) String() string {
	switch s {
	case Override:
		return "override"
	case Class:
		return "class"
	default:
		return "define"
	}
}

// ParseSpecifier maps a definition token to its Specifier. Returns false for
// anything that is not a node-opening token.
func ParseSpecifier(tok string) (Specifier, bool) {
	switch tok {
	case "define":
		return Define, true
	case "override":
		return Override, true
	case "class":
		return Class, true
	}
	return Define, false
}

// Span is the byte range of a construct in its source text, inclusive of the
// closing brace. Generation ties the offsets to one specific text string:
// a span must never be dereferenced against text it was not derived from.
type Span struct {
	Generation uint64
	Start      int
	End        int
}

// GenerationOf derives the generation id for a source string. Any edit to the
// string yields a different generation, poisoning spans taken from the old one.
func GenerationOf(text string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	g := h.Sum64()
	if g == 0 {
		g = 1 // reserve 0 for "no span"
	}
	return g
}

// Valid reports whether the span carries usable offsets.
func (s Span) Valid() bool {
	return s.Generation != 0 && s.Start >= 0 && s.End >= s.Start
}

// In checks the span against a concrete text string before dereference.
func (s Span) In(text string) error {
	if !s.Valid() || s.End >= len(text) {
		return ErrStaleSpan
	}
	if s.Generation != GenerationOf(text) {
		return ErrStaleSpan
	}
	return nil
}

// Provenance records which layer a resolved node's content actually came from.
// Only the resolver ever sets these fields.
type Provenance struct {
	SourceFile        string
	SourcePath        string
	SourceLayerStatus LayerStatus
}

func (p *Provenance) Clone() *Provenance {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// RefDescriptor is the normalized form of a reference or payload directive:
// one target file and at most one target path within it. An empty Path means
// the target file's first root node is the implicit target.
type RefDescriptor struct {
	File      string
	Path      string
	IsPayload bool
}

// ParseRefTarget normalizes the four accepted textual shapes of a
// reference/payload target into one descriptor:
//
//	@file@</path>   full form
//	file@</path>    missing leading sigil
//	@file@          default target
//	file.ext        bare filename
func ParseRefTarget(raw string, payload bool) (RefDescriptor, bool) {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, `"`)
	s = strings.TrimPrefix(s, "@")
	if s == "" {
		return RefDescriptor{}, false
	}
	d := RefDescriptor{IsPayload: payload}
	if i := strings.Index(s, "@"); i >= 0 {
		d.File = s[:i]
		p := strings.TrimSpace(s[i+1:])
		p = strings.TrimPrefix(p, "<")
		p = strings.TrimSuffix(p, ">")
		d.Path = p
	} else {
		d.File = s
	}
	if d.File == "" {
		return RefDescriptor{}, false
	}
	return d, true
}

// Directive returns the directive keyword for this descriptor.
func (d RefDescriptor) Directive() string {
	if d.IsPayload {
		return "payload"
	}
	return "reference"
}

// String renders the canonical target form, duplicate sigils normalized away.
func (d RefDescriptor) String() string {
	if d.Path == "" {
		return "@" + d.File + "@"
	}
	return "@" + d.File + "@<" + d.Path + ">"
}

// Node is one named, typed entry in the hierarchical scene description.
type Node struct {
	Path       string
	Name       string
	Specifier  Specifier
	Type       string
	Properties []Property
	Children   []*Node
	Ref        *RefDescriptor
	Span       Span
	Provenance *Provenance
}

// Property looks up a declared property by name.
func (n *Node) Property(name string) (Property, bool) {
	for _, p := range n.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// SetProperty replaces an existing property of the same name in place, or
// appends it, preserving declaration order.
func (n *Node) SetProperty(p Property) {
	for i := range n.Properties {
		if n.Properties[i].Name == p.Name {
			n.Properties[i] = p
			return
		}
	}
	n.Properties = append(n.Properties, p)
}

// CloneShallow copies the node with cloned properties but no children.
// Span is dropped: a clone is not backed by any source text.
func (n *Node) CloneShallow() *Node {
	c := &Node{
		Path:      n.Path,
		Name:      n.Name,
		Specifier: n.Specifier,
		Type:      n.Type,
	}
	c.Properties = append([]Property(nil), n.Properties...)
	if n.Ref != nil {
		r := *n.Ref
		c.Ref = &r
	}
	c.Provenance = n.Provenance.Clone()
	return c
}

// Clone deep-copies the node and its subtree.
func (n *Node) Clone() *Node {
	c := n.CloneShallow()
	for _, ch := range n.Children {
		c.Children = append(c.Children, ch.Clone())
	}
	return c
}

// Walk visits the node and every descendant depth-first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, ch := range n.Children {
		ch.Walk(fn)
	}
}

// FindByPath searches a forest for the node with the given absolute path.
func FindByPath(roots []*Node, path string) *Node {
	var found *Node
	for _, r := range roots {
		r.Walk(func(n *Node) {
			if found == nil && n.Path == path {
				found = n
			}
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// FindByName searches a forest for the first node whose name matches.
func FindByName(roots []*Node, name string) *Node {
	var found *Node
	for _, r := range roots {
		r.Walk(func(n *Node) {
			if found == nil && n.Name == name {
				found = n
			}
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// ParentPath returns all-but-last of a slash-delimited path, or "" for roots.
func ParentPath(path string) string {
	i := strings.LastIndex(path, "/")
	if i <= 0 {
		return ""
	}
	return path[:i]
}

// LastSegment returns the final segment of a slash-delimited path.
func LastSegment(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return path
	}
	return path[i+1:]
}
