package scene

import (
	"errors"
	"fmt"
	"sort"
)

// LayerStatus is the lifecycle stage of a layer. The order is strict and a
// status only ever moves one step at a time.
type LayerStatus int

const (
	Draft LayerStatus = iota
	Shared
	Published
	Archived
)

var statusNames = [...]string{"Draft", "Shared", "Published", "Archived"}

func (s LayerStatus) String() string {
	if s < Draft || s > Archived {
		return "Draft"
	}
	return statusNames[s]
}

// ParseLayerStatus maps a status token to its LayerStatus.
func ParseLayerStatus(tok string) (LayerStatus, error) {
	for i, n := range statusNames {
		if n == tok {
			return LayerStatus(i), nil
		}
	}
	return Draft, fmt.Errorf("unknown layer status %q", tok)
}

// Advance moves the status one step forward.
func (s LayerStatus) Advance() (LayerStatus, error) {
	if s >= Archived {
		return s, errors.New("status already at Archived")
	}
	return s + 1, nil
}

// Retreat moves the status one step back.
func (s LayerStatus) Retreat() (LayerStatus, error) {
	if s <= Draft {
		return s, errors.New("status already at Draft")
	}
	return s - 1, nil
}

// Layer is one loaded document contributing nodes/overrides to the stage.
type Layer struct {
	FilePath string
	Status   LayerStatus
	Owner    string // "" = unowned
	Visible  bool
	Order    int // position in the stack; later = stronger
}

// Stage is the ordered layer stack plus the raw text of every loaded layer
// and a cache of the last composed tree. The stage is owned by one logical
// actor at a time; there is no locking because there is no concurrent writer.
type Stage struct {
	Layers []Layer
	Texts  map[string]string

	composed []*Node
	valid    bool
}

func NewStage() *Stage {
	return &Stage{Texts: make(map[string]string)}
}

// Layer returns the layer with the given file path.
func (st *Stage) Layer(filePath string) (Layer, bool) {
	for _, l := range st.Layers {
		if l.FilePath == filePath {
			return l, true
		}
	}
	return Layer{}, false
}

// AddLayer appends a layer and its text to the stack.
func (st *Stage) AddLayer(l Layer, text string) {
	l.Order = len(st.Layers)
	st.Layers = append(st.Layers, l)
	st.Texts[l.FilePath] = text
	st.Invalidate()
}

// SetText replaces a loaded layer's text, poisoning spans and the cache.
func (st *Stage) SetText(filePath, text string) error {
	if _, ok := st.Texts[filePath]; !ok {
		return fmt.Errorf("layer %s not loaded", filePath)
	}
	st.Texts[filePath] = text
	st.Invalidate()
	return nil
}

// Evict removes a layer from the stack and drops its text.
func (st *Stage) Evict(filePath string) {
	for i, l := range st.Layers {
		if l.FilePath == filePath {
			st.Layers = append(st.Layers[:i], st.Layers[i+1:]...)
			break
		}
	}
	delete(st.Texts, filePath)
	st.renumber()
	st.Invalidate()
}

// Move reorders a layer within the stack. Bad indices are validation errors.
func (st *Stage) Move(from, to int) error {
	if from < 0 || from >= len(st.Layers) || to < 0 || to >= len(st.Layers) {
		return fmt.Errorf("stack index out of range: %d -> %d (stack size %d)", from, to, len(st.Layers))
	}
	l := st.Layers[from]
	st.Layers = append(st.Layers[:from], st.Layers[from+1:]...)
	st.Layers = append(st.Layers[:to], append([]Layer{l}, st.Layers[to:]...)...)
	st.renumber()
	st.Invalidate()
	return nil
}

// UpdateLayer applies fn to the named layer in place.
func (st *Stage) UpdateLayer(filePath string, fn func(*Layer)) error {
	for i := range st.Layers {
		if st.Layers[i].FilePath == filePath {
			fn(&st.Layers[i])
			st.Invalidate()
			return nil
		}
	}
	return fmt.Errorf("layer %s not loaded", filePath)
}

// Visible returns the visible layers in stack order (weakest first).
func (st *Stage) Visible() []Layer {
	var out []Layer
	for _, l := range st.Layers {
		if l.Visible {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Composed returns the cached composed tree, if still valid.
func (st *Stage) Composed() ([]*Node, bool) {
	return st.composed, st.valid
}

// SetComposed caches a freshly resolved tree.
func (st *Stage) SetComposed(roots []*Node) {
	st.composed = roots
	st.valid = true
}

// Invalidate drops the composed-tree cache. Called on any text or stack change.
func (st *Stage) Invalidate() {
	st.composed = nil
	st.valid = false
}

func (st *Stage) renumber() {
	for i := range st.Layers {
		st.Layers[i].Order = i
	}
}
