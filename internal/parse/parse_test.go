package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/husky-tmr/BIM-Composer-sub001/internal/scene"
)

const sampleDoc = `define Transform "World" {
    string status = "Published"
    string displayName = "World Root"
    define Mesh "Wall" {
        float opacity = 0.5
        color3f displayColor = (0.8, 0.2, 0.2)
        custom string bim:phase = "construction"
    }
    class Scope "Proto" {
    }
}
override "Extra" {
    bool flagged = true
}
`

func TestParseHierarchy(t *testing.T) {
	roots, warns := Parse(sampleDoc)
	require.Empty(t, warns)
	require.Len(t, roots, 2)

	world := roots[0]
	assert.Equal(t, "/World", world.Path)
	assert.Equal(t, "World", world.Name)
	assert.Equal(t, scene.Define, world.Specifier)
	assert.Equal(t, "Transform", world.Type)
	require.Len(t, world.Children, 2)

	wall := world.Children[0]
	assert.Equal(t, "/World/Wall", wall.Path)
	assert.Equal(t, "Mesh", wall.Type)

	proto := world.Children[1]
	assert.Equal(t, scene.Class, proto.Specifier)
	assert.Equal(t, "/World/Proto", proto.Path)

	extra := roots[1]
	assert.Equal(t, scene.Override, extra.Specifier)
	assert.Empty(t, extra.Type, "pure overrides carry no type")
}

func TestParseSpansAreExact(t *testing.T) {
	roots, _ := Parse(sampleDoc)
	world := roots[0]

	require.NoError(t, world.Span.In(sampleDoc))
	body := sampleDoc[world.Span.Start : world.Span.End+1]
	assert.True(t, strings.HasPrefix(body, `define Transform "World" {`))
	assert.True(t, strings.HasSuffix(body, "}"))

	wall := world.Children[0]
	wallText := sampleDoc[wall.Span.Start : wall.Span.End+1]
	assert.True(t, strings.HasPrefix(wallText, `define Mesh "Wall" {`))
	assert.True(t, strings.HasSuffix(wallText, "}"))
	assert.NotContains(t, wallText, "Proto")
}

func TestParseProperties(t *testing.T) {
	roots, _ := Parse(sampleDoc)
	wall := roots[0].Children[0]

	op, ok := wall.Property("opacity")
	require.True(t, ok)
	assert.True(t, scene.Number(0.5).Equal(op.Value))
	assert.False(t, op.Custom)

	col, ok := wall.Property("displayColor")
	require.True(t, ok)
	assert.True(t, scene.Color(0.8, 0.2, 0.2).Equal(col.Value))

	phase, ok := wall.Property("bim:phase")
	require.True(t, ok)
	assert.True(t, phase.Custom)
	assert.True(t, scene.String("construction").Equal(phase.Value))

	flag, ok := roots[1].Property("flagged")
	require.True(t, ok)
	assert.True(t, scene.Bool(true).Equal(flag.Value))
}

func TestParseBracesInsideStringsDoNotNest(t *testing.T) {
	text := `define Mesh "A" {
    string note = "open { and close } inside"
}
define Mesh "B" {
}
`
	roots, warns := Parse(text)
	require.Empty(t, warns)
	require.Len(t, roots, 2)
	assert.Equal(t, "/A", roots[0].Path)
	assert.Equal(t, "/B", roots[1].Path)

	note, ok := roots[0].Property("note")
	require.True(t, ok)
	assert.Equal(t, "open { and close } inside", note.Value.Str)
}

func TestParseReferenceShapes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want scene.RefDescriptor
	}{
		{
			"full form in metadata block",
			`override "A" (reference = @site.scene@</Site/Walls>) { }`,
			scene.RefDescriptor{File: "site.scene", Path: "/Site/Walls"},
		},
		{
			"missing leading sigil",
			`override "A" (reference = site.scene@</Site/Walls>) { }`,
			scene.RefDescriptor{File: "site.scene", Path: "/Site/Walls"},
		},
		{
			"default target",
			`override "A" (reference = @site.scene@) { }`,
			scene.RefDescriptor{File: "site.scene"},
		},
		{
			"bare filename",
			`override "A" (reference = site.scene) { }`,
			scene.RefDescriptor{File: "site.scene"},
		},
		{
			"payload in body",
			"define Mesh \"A\" {\n    payload = @lib.scene@</Proto>\n}",
			scene.RefDescriptor{File: "lib.scene", Path: "/Proto", IsPayload: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roots, warns := Parse(tt.text)
			require.Empty(t, warns)
			require.Len(t, roots, 1)
			require.NotNil(t, roots[0].Ref)
			assert.Equal(t, tt.want, *roots[0].Ref)
		})
	}
}

func TestParseUnbalancedBodyWarns(t *testing.T) {
	text := `define Mesh "Broken" {
    string status = "Draft"
`
	roots, warns := Parse(text)
	assert.Empty(t, roots, "a node that never closes must not be silently truncated")
	require.Len(t, warns, 1)
	assert.Equal(t, scene.MalformedSource, warns[0].Kind)
	assert.Contains(t, warns[0].Detail, "/Broken")
}

func TestParseIgnoresStrayText(t *testing.T) {
	text := `# leading comment
string orphan = "not inside any node"

define Mesh "A" {
}
trailing garbage
`
	roots, warns := Parse(text)
	require.Empty(t, warns)
	require.Len(t, roots, 1)
	assert.Equal(t, "/A", roots[0].Path)
	assert.Empty(t, roots[0].Properties)
}

func TestParseEmptyInput(t *testing.T) {
	roots, warns := Parse("")
	assert.Empty(t, roots)
	assert.Empty(t, warns)
}
