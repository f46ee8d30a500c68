package store

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/husky-tmr/BIM-Composer-sub001/internal/scene"
)

const wallDoc = `define Mesh "Wall" {
    float opacity = 0.5
}
`

func TestLoadLayerReadsDocument(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "a.scene", []byte(wallDoc), 0o644))

	s := New(fs)
	require.NoError(t, s.LoadLayer(scene.Layer{FilePath: "a.scene", Status: scene.Published, Visible: true}))

	text, ok := s.Text("a.scene")
	require.True(t, ok)
	assert.Equal(t, wallDoc, text)

	l, ok := s.Stage.Layer("a.scene")
	require.True(t, ok)
	assert.Equal(t, scene.Published, l.Status)
}

func TestLoadLayerMissingFile(t *testing.T) {
	s := New(memfs.New())
	err := s.LoadLayer(scene.Layer{FilePath: "nope.scene"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.scene")
}

func TestWriteBackPersistsAndInvalidates(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "a.scene", []byte(wallDoc), 0o644))

	s := New(fs)
	require.NoError(t, s.LoadLayer(scene.Layer{FilePath: "a.scene", Status: scene.Draft, Visible: true}))
	s.Stage.SetComposed(nil)

	next := "define Mesh \"Wall\" {\n    float opacity = 0.9\n}\n"
	require.NoError(t, s.WriteBack("a.scene", next))

	_, ok := s.Stage.Composed()
	assert.False(t, ok, "rewriting a layer drops the composed cache")

	text, _ := s.Text("a.scene")
	assert.Equal(t, next, text)

	b, err := util.ReadFile(fs, "a.scene")
	require.NoError(t, err)
	assert.Equal(t, next, string(b))
}

func TestEnsureChangelogCreatesEmptyLayer(t *testing.T) {
	s := New(memfs.New())
	require.NoError(t, s.EnsureChangelog())

	l, ok := s.Stage.Layer(s.Changelog)
	require.True(t, ok)
	assert.False(t, l.Visible, "the reserved layer never joins composition")
	assert.Equal(t, scene.Draft, l.Status)
	text, ok := s.Text(s.Changelog)
	require.True(t, ok)
	assert.Empty(t, text)

	// Idempotent.
	require.NoError(t, s.EnsureChangelog())
	assert.Len(t, s.Stage.Layers, 1)
}

func TestEnsureChangelogLoadsExistingFile(t *testing.T) {
	fs := memfs.New()
	body := "define Commit \"commit_1\" {\n}\n"
	require.NoError(t, util.WriteFile(fs, "changelog.scene", []byte(body), 0o644))

	s := New(fs)
	require.NoError(t, s.EnsureChangelog())
	text, _ := s.Text("changelog.scene")
	assert.Equal(t, body, text)
}
