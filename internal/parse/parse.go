// Package parse turns raw scene-description text into a span-annotated node
// tree. Every node records the exact byte range of its definition, from the
// specifier token through the matching closing brace, so the surgical editor
// can splice text without a compose round trip.
package parse

import (
	"regexp"
	"strings"

	"github.com/husky-tmr/BIM-Composer-sub001/internal/scene"
)

// headerRe matches a node-opening header: specifier, optional type token,
// quoted name, optional parenthesized metadata block, opening brace.
var headerRe = regexp.MustCompile(
	`(define|override|class)(?:[ \t]+([A-Za-z_][A-Za-z0-9_]*))?[ \t]+"([^"]+)"[\s]*(?:\(([^)]*)\)[\s]*)?\{`)

var propRe = regexp.MustCompile(
	`^[ \t]*(custom[ \t]+)?(string\[\]|string|float|double|int|bool|color3f)[ \t]+([A-Za-z_][A-Za-z0-9_:.]*)[ \t]*=[ \t]*(.+?)[ \t\r]*$`)

var refLineRe = regexp.MustCompile(
	`^[ \t]*(reference|payload)[ \t]*=[ \t]*(.+?)[ \t\r]*$`)

// Parse scans text into an ordered forest of root nodes. Unknown top-level
// text is ignored; a node whose body never closes is dropped with a
// malformed-source warning and scanning resumes inside its body. The parser
// never fails outright.
func Parse(text string) ([]*scene.Node, []scene.Warning) {
	gen := scene.GenerationOf(text)
	return scanNodes(text, 0, len(text), "", gen, nil)
}

// scanNodes parses the region [start,end) for node definitions. When collect
// is non-nil the region is a node body: text between child definitions is
// parsed for properties and reference/payload directives on collect.
func scanNodes(text string, start, end int, parentPath string, gen uint64, collect *scene.Node) ([]*scene.Node, []scene.Warning) {
	var nodes []*scene.Node
	var warns []scene.Warning

	gapStart := start
	search := start
	for search < end {
		rel := headerRe.FindStringSubmatchIndex(text[search:end])
		if rel == nil {
			collectBody(collect, text[gapStart:end])
			break
		}
		m := make([]int, len(rel))
		for i, v := range rel {
			if v >= 0 {
				v += search
			}
			m[i] = v
		}
		// A header token inside a quoted string is not a definition.
		if quotesOpen(text[gapStart:m[0]]) {
			search = m[0] + 1
			continue
		}
		collectBody(collect, text[gapStart:m[0]])

		name := text[m[6]:m[7]]
		node := &scene.Node{Name: name}
		node.Specifier, _ = scene.ParseSpecifier(text[m[2]:m[3]])
		if m[4] >= 0 {
			node.Type = text[m[4]:m[5]]
		}
		if parentPath == "" {
			node.Path = "/" + name
		} else {
			node.Path = parentPath + "/" + name
		}

		openBrace := m[1] - 1 // regex ends exactly at '{'
		closeBrace := matchBrace(text, openBrace, end)
		if closeBrace < 0 {
			warns = append(warns, scene.Warnf(scene.MalformedSource,
				"node %s: no closing brace for body opened at offset %d", node.Path, openBrace))
			search = openBrace + 1
			gapStart = search
			continue
		}

		if m[8] >= 0 {
			collectDirectives(node, text[m[8]:m[9]])
		}
		node.Span = scene.Span{Generation: gen, Start: m[0], End: closeBrace}

		children, childWarns := scanNodes(text, openBrace+1, closeBrace, node.Path, gen, node)
		node.Children = children
		warns = append(warns, childWarns...)
		nodes = append(nodes, node)

		search = closeBrace + 1
		gapStart = search
	}
	return nodes, warns
}

// matchBrace finds the closing brace balancing the one at open, scanning no
// further than limit. Braces inside quoted strings do not affect depth.
// Returns -1 when the body never closes.
func matchBrace(text string, open, limit int) int {
	depth := 1
	inStr := false
	for i := open + 1; i < limit; i++ {
		c := text[i]
		if inStr {
			if c == '\\' {
				i++
			} else if c == '"' {
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// quotesOpen reports whether s ends inside an unterminated quoted string.
func quotesOpen(s string) bool {
	open := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if open {
				i++
			}
		case '"':
			open = !open
		}
	}
	return open
}

// collectBody parses gap text inside a node body: property declarations and
// body-form reference/payload directives. Stray properties outside any node
// (collect == nil) are skipped.
func collectBody(collect *scene.Node, gap string) {
	if collect == nil {
		return
	}
	for _, line := range strings.Split(gap, "\n") {
		if pm := propRe.FindStringSubmatch(line); pm != nil {
			collect.SetProperty(scene.Property{
				Name:     pm[3],
				Value:    scene.ParseLiteral(pm[2], pm[4]),
				Custom:   pm[1] != "",
				TypeDecl: pm[2],
			})
			continue
		}
		if rm := refLineRe.FindStringSubmatch(line); rm != nil && collect.Ref == nil {
			if d, ok := scene.ParseRefTarget(rm[2], rm[1] == "payload"); ok {
				collect.Ref = &d
			}
		}
	}
}

// collectDirectives parses the parenthesized metadata block of a header.
// Only the first reference/payload directive takes effect: a descriptor names
// exactly one target file.
func collectDirectives(node *scene.Node, meta string) {
	for _, line := range strings.Split(meta, "\n") {
		if rm := refLineRe.FindStringSubmatch(line); rm != nil && node.Ref == nil {
			if d, ok := scene.ParseRefTarget(rm[2], rm[1] == "payload"); ok {
				node.Ref = &d
			}
		}
	}
}
