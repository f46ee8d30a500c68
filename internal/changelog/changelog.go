// Package changelog reads and writes the reserved layer that serves as an
// append-only log of commit-like change records. Commit entries are ordinary
// node blocks with a reserved name prefix, so the layer stays a valid scene
// document; staged property overrides live in the same layer as override
// blocks mirroring the composed path.
package changelog

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/husky-tmr/BIM-Composer-sub001/internal/compose"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/editor"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/parse"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/scene"
)

// DefaultLayer is the reserved layer name used when the application does not
// supply one.
const DefaultLayer = "changelog.scene"

const entryPrefix = "commit_"

// Entry is one record of the linear, parent-linked commit log.
type Entry struct {
	ID            string
	Sequence      int
	Timestamp     time.Time
	Author        string
	Message       string
	Kind          string
	Parent        string
	AffectedPaths []string
	Root          bool // no resolvable parent among the loaded entries
}

// Read reconstructs the log by scanning reserved-name node blocks. The log
// is linear and parent-linked but may be multi-rooted: any entry whose
// parent id resolves to no loaded entry is classified as a root. Entries are
// returned in sequence order.
func Read(text string) ([]Entry, []scene.Warning) {
	roots, warns := parse.Parse(text)

	var entries []Entry
	ids := make(map[string]bool)
	for _, n := range roots {
		if !strings.HasPrefix(n.Name, entryPrefix) {
			continue
		}
		e := Entry{
			ID:      propString(n, "id"),
			Author:  propString(n, "author"),
			Message: propString(n, "message"),
			Kind:    propString(n, "kind"),
			Parent:  propString(n, "parent"),
		}
		if p, ok := n.Property("sequence"); ok && p.Value.Kind == scene.KindNumber {
			e.Sequence = int(p.Value.Num)
		}
		if ts := propString(n, "timestamp"); ts != "" {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				e.Timestamp = t
			}
		}
		if p, ok := n.Property("affectedPaths"); ok && p.Value.Kind == scene.KindStringList {
			e.AffectedPaths = p.Value.List
		}
		ids[e.ID] = true
		entries = append(entries, e)
	}

	for i := range entries {
		entries[i].Root = entries[i].Parent == "" || !ids[entries[i].Parent]
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Sequence < entries[j].Sequence })
	return entries, warns
}

// Append writes a new commit block to the changelog text. A missing id gets
// a fresh uuid, the sequence continues from the highest loaded entry, and a
// zero timestamp is stamped with the current time. Returns the updated text
// and the entry as written.
func Append(text string, e Entry) (string, Entry, []scene.Warning) {
	existing, warns := Read(text)

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	maxSeq := 0
	for _, x := range existing {
		if x.Sequence > maxSeq {
			maxSeq = x.Sequence
		}
	}
	e.Sequence = maxSeq + 1
	e.Root = e.Parent == ""

	n := &scene.Node{
		Name:      entryPrefix + strconv.Itoa(e.Sequence),
		Specifier: scene.Define,
		Type:      "Commit",
	}
	n.SetProperty(scene.Property{Name: "id", Value: scene.String(e.ID)})
	n.SetProperty(scene.Property{Name: "sequence", Value: scene.Number(float64(e.Sequence))})
	n.SetProperty(scene.Property{Name: "timestamp", Value: scene.String(e.Timestamp.Format(time.RFC3339))})
	n.SetProperty(scene.Property{Name: "author", Value: scene.String(e.Author)})
	n.SetProperty(scene.Property{Name: "message", Value: scene.String(e.Message)})
	n.SetProperty(scene.Property{Name: "kind", Value: scene.String(e.Kind)})
	n.SetProperty(scene.Property{Name: "parent", Value: scene.String(e.Parent)})
	n.SetProperty(scene.Property{Name: "affectedPaths", Value: scene.StringList(e.AffectedPaths...)})

	out, insertWarns := editor.Insert(text, "/", compose.ComposeNode(n, ""))
	return out, e, append(warns, insertWarns...)
}

// StagedValue looks up a property staged for nodePath in the changelog
// text's override blocks. Both the raw name and its namespaced form are
// checked, since the surgical editor qualifies bare custom names.
func StagedValue(text, nodePath, property string) (scene.Value, bool) {
	roots, _ := parse.Parse(text)
	n := scene.FindByPath(roots, nodePath)
	if n == nil {
		return scene.Value{}, false
	}
	if p, ok := n.Property(property); ok {
		return p.Value, true
	}
	if p, ok := n.Property(editor.Namespace + ":" + property); ok {
		return p.Value, true
	}
	return scene.Value{}, false
}

func propString(n *scene.Node, name string) string {
	if p, ok := n.Property(name); ok && p.Value.Kind == scene.KindString {
		return p.Value.Str
	}
	return ""
}
