package api

// Version of the composed-document schema.
const Version = "v1"

// Document is the composed stage as consumed by viewers and property panels.
type Document struct {
	// Version of the document schema.
	Version string `json:"version"`
	// Prims are the resolved root nodes in stack order.
	Prims []Prim `json:"prims,omitempty"`
}

// Prim is one resolved node of the composed tree.
type Prim struct {
	// Path is the absolute, slash-delimited path, unique within the document.
	Path string `json:"path"`
	// Name is the last path segment.
	Name string `json:"name"`
	// Specifier is "define", "override" or "class".
	Specifier string `json:"specifier"`
	// Type is the node's type token, empty for pure overrides.
	Type string `json:"type,omitempty"`
	// Properties maps property names to plain JSON values.
	Properties map[string]any `json:"properties,omitempty"`
	// Reference is the canonical target form of a reference/payload, if any.
	Reference string `json:"reference,omitempty"`
	// Source records where the resolved content actually came from.
	Source *Source `json:"source,omitempty"`
	// Children prims, inherited entries first.
	Children []Prim `json:"children,omitempty"`
}

// Source is the provenance stamp of a resolved prim.
type Source struct {
	File        string `json:"file"`
	Path        string `json:"path"`
	LayerStatus string `json:"layer_status"`
}
