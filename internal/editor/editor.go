// Package editor mutates one layer's raw text by direct span manipulation,
// so unrelated formatting and comments elsewhere in the file survive
// untouched. Every operation is pure text-in/text-out: it re-parses the text
// it is given to locate targets, never trusting spans from a stale tree, and
// callers serialize edits by feeding each result into the next call.
package editor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/husky-tmr/BIM-Composer-sub001/internal/compose"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/parse"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/scene"
)

// Namespace is the shared prefix applied to unnamespaced custom property
// names written by the editor.
const Namespace = "bim"

const indentUnit = "    "

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Insert splices nodeText into text as a child of parentPath. Missing
// trailing path segments are synthesized as override scaffold blocks,
// innermost first. A root parent (or a path matching no existing root)
// appends at end of file.
func Insert(text, parentPath, nodeText string) (string, []scene.Warning) {
	nodeText = strings.TrimRight(nodeText, "\n")
	if parentPath == "" || parentPath == "/" {
		return appendBlock(text, nodeText), nil
	}

	segments := strings.Split(strings.TrimPrefix(parentPath, "/"), "/")
	roots, warns := parse.Parse(text)

	var deepest *scene.Node
	matched := 0
	level := roots
	for _, seg := range segments {
		var next *scene.Node
		for _, c := range level {
			if c.Name == seg {
				next = c
				break
			}
		}
		if next == nil {
			break
		}
		deepest = next
		matched++
		level = next.Children
	}

	block := nodeText
	for i := len(segments) - 1; i >= matched; i-- {
		block = "override " + strconv.Quote(segments[i]) + " {\n" +
			indentBlock(block, 1) + "\n}"
	}

	if deepest == nil {
		return appendBlock(text, block), warns
	}
	return spliceBeforeClose(text, deepest.Span, indentBlock(block, matched)), warns
}

// Remove deletes the node at nodePath, exactly its span [start,end]
// inclusive. A missing node or invalid span returns the text unchanged with
// a not-found warning; Remove never fails harder than that.
func Remove(text, nodePath string) (string, []scene.Warning) {
	roots, warns := parse.Parse(text)
	n := scene.FindByPath(roots, nodePath)
	if n == nil {
		return text, append(warns, scene.Warnf(scene.NotFound, "node %s not found", nodePath))
	}
	if err := n.Span.In(text); err != nil {
		return text, append(warns, scene.Warnf(scene.NotFound, "node %s has no usable span: %v", nodePath, err))
	}
	return text[:n.Span.Start] + text[n.Span.End+1:], warns
}

// UpdateProperty sets one property on the node at nodePath. An existing
// declaration has only its value replaced in place, located by a regex
// anchored to the property's declared type and name and confined to the
// node's own body (descendants declaring the same name are never touched);
// a new property is inserted as a
// canonical line just before the node's closing brace, matching the body's
// existing indentation. Path lookup falls back to bare-name lookup, which
// covers nodes whose composed path differs from their storage location.
func UpdateProperty(text, nodePath, name, value, typeToken string) (string, []scene.Warning) {
	if typeToken == "" {
		typeToken = "string"
	}
	fullName := qualifyName(name)

	roots, warns := parse.Parse(text)
	n := scene.FindByPath(roots, nodePath)
	if n == nil {
		n = scene.FindByName(roots, scene.LastSegment(nodePath))
	}
	if n == nil {
		return text, append(warns, scene.Warnf(scene.NotFound, "node %s not found", nodePath))
	}

	val := literalValue(typeToken, value)

	if p, ok := n.Property(fullName); ok {
		anchor := `((?:custom[ \t]+)?` + regexp.QuoteMeta(p.TypeToken()) + `[ \t]+` +
			regexp.QuoteMeta(fullName) + `[ \t]*=[ \t]*)`
		var re *regexp.Regexp
		if p.TypeToken() == "string" {
			re = regexp.MustCompile(anchor + `"[^"]*"`)
		} else {
			re = regexp.MustCompile(anchor + `[^\n]*`)
		}
		if out, ok := replaceOwnDeclaration(text, n, re, val.SourceText()); ok {
			return out, warns
		}
	}

	line := bodyIndent(text, n.Span) + compose.PropertyLine(scene.Property{Name: fullName, Value: val})
	return spliceBeforeClose(text, n.Span, line), warns
}

// RenameResult carries the outcome of a Rename: the updated text and the
// node's new path (unchanged when the node could not be located).
type RenameResult struct {
	Text    string
	NewPath string
}

// Rename changes the node's quoted name on its definition line and rewrites
// every reference target path that equals the old path exactly. The new name
// must be a valid identifier; anything else is a fatal validation error with
// no mutation applied.
func Rename(text, nodePath, newName string) (RenameResult, []scene.Warning, error) {
	if !identRe.MatchString(newName) {
		return RenameResult{Text: text, NewPath: nodePath}, nil,
			fmt.Errorf("invalid node name %q: must start with a letter or underscore and contain only letters, digits and underscores", newName)
	}

	roots, warns := parse.Parse(text)
	n := scene.FindByPath(roots, nodePath)
	oldName := scene.LastSegment(nodePath)
	if n == nil || n.Name != oldName {
		return RenameResult{Text: text, NewPath: nodePath},
			append(warns, scene.Warnf(scene.NotFound, "node %s not found", nodePath)), nil
	}
	if err := n.Span.In(text); err != nil {
		return RenameResult{Text: text, NewPath: nodePath},
			append(warns, scene.Warnf(scene.NotFound, "node %s has no usable span: %v", nodePath, err)), nil
	}

	// Replace the quoted name only on this node's definition line. Matching
	// is restricted to the current last path segment so a same-named sibling
	// elsewhere in the file is never touched.
	headerEnd := n.Span.Start + strings.IndexByte(text[n.Span.Start:n.Span.End+1], '{')
	header := text[n.Span.Start:headerEnd]
	newHeader := strings.Replace(header, strconv.Quote(oldName), strconv.Quote(newName), 1)
	out := text[:n.Span.Start] + newHeader + text[headerEnd:]

	newPath := scene.ParentPath(nodePath) + "/" + newName

	// Rewrite cross-references whose target path equals the old path exactly.
	refRe := regexp.MustCompile(`(@?[^@\s"<>]+@)[ \t]*<` + regexp.QuoteMeta(nodePath) + `>`)
	out = refRe.ReplaceAllString(out, "${1}<"+newPath+">")

	return RenameResult{Text: out, NewPath: newPath}, warns, nil
}

// replaceOwnDeclaration splices the new value over the first declaration of
// the property in the node's own body, skipping descendant bodies so a child
// declaring the same name is never touched. The value bytes go in verbatim:
// no replacement-template expansion.
func replaceOwnDeclaration(text string, n *scene.Node, re *regexp.Regexp, value string) (string, bool) {
	cur := n.Span.Start
	for i := 0; i <= len(n.Children); i++ {
		gapEnd := n.Span.End
		if i < len(n.Children) {
			gapEnd = n.Children[i].Span.Start
		}
		if gapEnd > cur {
			if m := re.FindStringSubmatchIndex(text[cur:gapEnd]); m != nil {
				// m[3] ends the anchor group, m[1] ends the old value.
				return text[:cur+m[3]] + value + text[cur+m[1]:], true
			}
		}
		if i < len(n.Children) {
			cur = n.Children[i].Span.End + 1
		}
	}
	return text, false
}

// qualifyName places unnamespaced custom names under the shared namespace.
// Canonical property names and names already carrying a namespace pass
// through verbatim.
func qualifyName(name string) string {
	if strings.Contains(name, ":") {
		return name
	}
	switch name {
	case compose.PropStatus, compose.PropDisplayName, compose.PropDisplayColor,
		compose.PropOpacity, compose.PropEntityType:
		return name
	}
	return Namespace + ":" + name
}

func literalValue(typeToken, value string) scene.Value {
	if typeToken == "string" && !strings.HasPrefix(value, `"`) {
		return scene.String(value)
	}
	return scene.ParseLiteral(typeToken, value)
}

// bodyIndent detects the indentation of a node body by inspecting its
// existing property and definition lines, defaulting to 4 spaces.
func bodyIndent(text string, span scene.Span) string {
	open := strings.IndexByte(text[span.Start:span.End+1], '{')
	if open < 0 {
		return indentUnit
	}
	body := text[span.Start+open+1 : span.End]
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	}
	return indentUnit
}

// spliceBeforeClose inserts block (already indented) on its own line just
// before the closing brace of span.
func spliceBeforeClose(text string, span scene.Span, block string) string {
	brace := span.End
	lineStart := strings.LastIndexByte(text[:brace], '\n') + 1
	if strings.TrimSpace(text[lineStart:brace]) == "" {
		// Closing brace sits alone on its line; insert above it.
		return text[:lineStart] + block + "\n" + text[lineStart:]
	}
	return text[:brace] + "\n" + block + "\n" + text[brace:]
}

func appendBlock(text, block string) string {
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text + block + "\n"
}

func indentBlock(s string, levels int) string {
	if levels <= 0 {
		return s
	}
	prefix := strings.Repeat(indentUnit, levels)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
