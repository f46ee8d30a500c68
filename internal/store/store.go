// Package store owns the in-memory layer stack and text map for one logical
// actor, loads layer documents from a filesystem, and can snapshot the whole
// stage into a SQLite database.
package store

import (
	"fmt"
	"io"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/husky-tmr/BIM-Composer-sub001/internal/changelog"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/scene"
)

// Store wraps a Stage with filesystem loading and persistence. The model is
// single-actor and synchronous: no locking, callers serialize access.
type Store struct {
	fs        billy.Filesystem
	Stage     *scene.Stage
	Changelog string
}

func New(fs billy.Filesystem) *Store {
	return &Store{
		fs:        fs,
		Stage:     scene.NewStage(),
		Changelog: changelog.DefaultLayer,
	}
}

// LoadLayer reads the layer's document from the filesystem and appends it to
// the stack. The layer's Order is assigned by the stage.
func (s *Store) LoadLayer(l scene.Layer) error {
	f, err := s.fs.Open(l.FilePath)
	if err != nil {
		return fmt.Errorf("open layer %s: %w", l.FilePath, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read layer %s: %w", l.FilePath, err)
	}
	s.Stage.AddLayer(l, string(b))
	return nil
}

// EnsureChangelog loads the reserved changelog layer, creating an empty
// invisible one when the file does not exist yet.
func (s *Store) EnsureChangelog() error {
	if _, ok := s.Stage.Layer(s.Changelog); ok {
		return nil
	}
	l := scene.Layer{FilePath: s.Changelog, Status: scene.Draft, Visible: false}
	if err := s.LoadLayer(l); err == nil {
		return nil
	}
	s.Stage.AddLayer(l, "")
	return nil
}

// WriteBack commits an editor result: the text map is updated (poisoning all
// spans derived from the old text) and the document is rewritten on disk.
func (s *Store) WriteBack(filePath, text string) error {
	if err := s.Stage.SetText(filePath, text); err != nil {
		return err
	}
	if err := util.WriteFile(s.fs, filePath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write layer %s: %w", filePath, err)
	}
	return nil
}

// Text returns the loaded text of a layer.
func (s *Store) Text(filePath string) (string, bool) {
	t, ok := s.Stage.Texts[filePath]
	return t, ok
}
