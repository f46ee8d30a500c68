// Package compose serializes a node tree back into canonical scene text.
package compose

import (
	"strconv"
	"strings"

	"github.com/husky-tmr/BIM-Composer-sub001/internal/scene"
)

const indentUnit = "    "

// DefaultStatus is the hard fallback when neither the node nor the caller
// supplies a status token.
const DefaultStatus = "Published"

// Canonical property names recognized by the composer. Everything else is
// serialized generically with a custom prefix.
const (
	PropStatus       = "status"
	PropDisplayName  = "displayName"
	PropDisplayColor = "displayColor"
	PropOpacity      = "opacity"
	PropEntityType   = "entityType"
)

// Compose renders a forest of nodes as canonical text, one level of
// indentation per depth. fallbackStatus applies only to nodes carrying no
// status of their own; children inherit their parent's effective status.
func Compose(nodes []*scene.Node, fallbackStatus string) string {
	var b strings.Builder
	for _, n := range nodes {
		writeNode(&b, n, 0, fallbackStatus)
	}
	return b.String()
}

// ComposeNode renders a single node subtree.
func ComposeNode(n *scene.Node, fallbackStatus string) string {
	var b strings.Builder
	writeNode(&b, n, 0, fallbackStatus)
	return b.String()
}

func writeNode(b *strings.Builder, n *scene.Node, depth int, fallbackStatus string) {
	ind := strings.Repeat(indentUnit, depth)

	b.WriteString(ind)
	b.WriteString(n.Specifier.String())
	if typ := effectiveType(n); typ != "" {
		b.WriteByte(' ')
		b.WriteString(typ)
	}
	b.WriteString(" " + strconv.Quote(n.Name))
	if n.Ref != nil {
		b.WriteString(" (" + n.Ref.Directive() + " = " + n.Ref.String() + ")")
	}
	b.WriteString(" {\n")

	status := effectiveStatus(n, fallbackStatus)
	inner := ind + indentUnit
	b.WriteString(inner + `string ` + PropStatus + ` = ` + strconv.Quote(status) + "\n")

	for _, p := range n.Properties {
		if p.Name == PropStatus {
			continue
		}
		b.WriteString(inner + PropertyLine(p) + "\n")
	}

	for _, ch := range n.Children {
		writeNode(b, ch, depth+1, status)
	}

	b.WriteString(ind + "}\n")
}

// PropertyLine renders one property in canonical form. The known display
// kinds get fixed names and syntax; everything else is generic with a custom
// prefix, typed by the value's runtime variant.
func PropertyLine(p scene.Property) string {
	switch p.Name {
	case PropStatus:
		return `string status = ` + strconv.Quote(p.Value.Display())
	case PropDisplayName:
		return `string displayName = ` + strconv.Quote(p.Value.Display())
	case PropDisplayColor:
		return `color3f displayColor = ` + colorText(p.Value)
	case PropOpacity:
		return `float opacity = ` + numberText(p.Value)
	case PropEntityType:
		return `string entityType = ` + strconv.Quote(p.Value.Display())
	}
	return "custom " + p.Value.TypeToken() + " " + p.Name + " = " + p.Value.SourceText()
}

func colorText(v scene.Value) string {
	if v.Kind == scene.KindColor {
		return v.SourceText()
	}
	return "(0, 0, 0)"
}

func numberText(v scene.Value) string {
	if v.Kind == scene.KindNumber {
		return v.SourceText()
	}
	if f, err := strconv.ParseFloat(v.Str, 64); err == nil {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return "1"
}

func effectiveStatus(n *scene.Node, fallback string) string {
	if p, ok := n.Property(PropStatus); ok && p.Value.Kind == scene.KindString && p.Value.Str != "" {
		return p.Value.Str
	}
	if fallback != "" {
		return fallback
	}
	return DefaultStatus
}

// effectiveType applies the one unconditional type-coercion rule: a generic
// Transform container directly holding a referenced or payload-bearing
// geometry child is written as a Scope, which is what the consuming renderer
// expects for pure grouping nodes.
func effectiveType(n *scene.Node) string {
	if n.Type != "Transform" {
		return n.Type
	}
	for _, ch := range n.Children {
		if ch.Ref != nil && isGeometryType(ch.Type) {
			return "Scope"
		}
	}
	return n.Type
}

func isGeometryType(typ string) bool {
	switch typ {
	case "Mesh", "Cube", "Sphere", "Cylinder", "Cone":
		return true
	}
	return false
}
