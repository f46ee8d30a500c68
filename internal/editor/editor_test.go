package editor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/husky-tmr/BIM-Composer-sub001/internal/parse"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/scene"
)

const wallDoc = `define Transform "World" {
    string status = "Published"
    define Mesh "Wall" {
        float opacity = 0.5
    }
    define Mesh "Wallpaper" {
    }
}
`

func TestInsertUnderExistingParent(t *testing.T) {
	out, warns := Insert(wallDoc, "/World", `define Mesh "Door" {
}`)
	require.Empty(t, warns)

	roots, _ := parse.Parse(out)
	door := scene.FindByPath(roots, "/World/Door")
	require.NotNil(t, door)
	assert.Equal(t, "Mesh", door.Type)

	// Unrelated siblings survive untouched.
	assert.Contains(t, out, `define Mesh "Wallpaper" {`)
}

func TestInsertScaffoldsMissingSegments(t *testing.T) {
	out, warns := Insert("", "/Level1/Level2", `define Thing "Leaf" { }`)
	require.Empty(t, warns)

	assert.Equal(t, 2, strings.Count(out, "override "), "exactly two scaffold wrappers")

	roots, _ := parse.Parse(out)
	require.Len(t, roots, 1)
	l1 := roots[0]
	assert.Equal(t, "Level1", l1.Name)
	assert.Equal(t, scene.Override, l1.Specifier)
	require.Len(t, l1.Children, 1)
	l2 := l1.Children[0]
	assert.Equal(t, "Level2", l2.Name)
	assert.Equal(t, scene.Override, l2.Specifier)
	require.Len(t, l2.Children, 1)
	leaf := l2.Children[0]
	assert.Equal(t, "Leaf", leaf.Name)
	assert.Equal(t, "Thing", leaf.Type)
	assert.Equal(t, scene.Define, leaf.Specifier)
}

func TestInsertPartialScaffold(t *testing.T) {
	out, warns := Insert(wallDoc, "/World/Annex", `define Mesh "Shelf" { }`)
	require.Empty(t, warns)

	roots, _ := parse.Parse(out)
	shelf := scene.FindByPath(roots, "/World/Annex/Shelf")
	require.NotNil(t, shelf)

	annex := scene.FindByPath(roots, "/World/Annex")
	require.NotNil(t, annex)
	assert.Equal(t, scene.Override, annex.Specifier, "only the missing segment is scaffolded")
	assert.Equal(t, 1, strings.Count(out, `override "Annex"`))
}

func TestInsertAtRootAppends(t *testing.T) {
	out, warns := Insert(wallDoc, "/", `define Mesh "Free" { }`)
	require.Empty(t, warns)
	assert.True(t, strings.HasSuffix(strings.TrimRight(out, "\n"), `define Mesh "Free" { }`))
}

func TestRemoveNode(t *testing.T) {
	out, warns := Remove(wallDoc, "/World/Wall")
	require.Empty(t, warns)

	roots, _ := parse.Parse(out)
	assert.Nil(t, scene.FindByPath(roots, "/World/Wall"))
	assert.NotNil(t, scene.FindByPath(roots, "/World/Wallpaper"))
	assert.NotNil(t, scene.FindByPath(roots, "/World"))
}

func TestRemoveMissingNodeIsNoOp(t *testing.T) {
	out, warns := Remove(wallDoc, "/World/Ghost")
	assert.Equal(t, wallDoc, out, "text must come back unchanged")
	require.Len(t, warns, 1)
	assert.Equal(t, scene.NotFound, warns[0].Kind)
}

func TestUpdatePropertyReplaceInPlace(t *testing.T) {
	out, warns := UpdateProperty(wallDoc, "/World/Wall", "opacity", "0.9", "float")
	require.Empty(t, warns)
	assert.Contains(t, out, "float opacity = 0.9")
	assert.NotContains(t, out, "0.5")
	assert.Equal(t, 1, strings.Count(out, "opacity"))
}

func TestUpdatePropertyInsertsNamespaced(t *testing.T) {
	out, warns := UpdateProperty(wallDoc, "/World/Wall", "contractor", "ACME", "")
	require.Empty(t, warns)
	assert.Contains(t, out, `custom string bim:contractor = "ACME"`)

	// Namespaced names pass through verbatim.
	out, warns = UpdateProperty(wallDoc, "/World/Wall", "vendor:code", "X1", "")
	require.Empty(t, warns)
	assert.Contains(t, out, `custom string vendor:code = "X1"`)
	assert.NotContains(t, out, "bim:vendor")
}

func TestUpdatePropertyScopedToOwnBody(t *testing.T) {
	doc := `define Transform "World" {
    string status = "Published"
    define Mesh "Wall" {
        string status = "Shared"
    }
}
`
	out, warns := UpdateProperty(doc, "/World", "status", "Draft", "string")
	require.Empty(t, warns)
	assert.Contains(t, out, `string status = "Draft"`)
	assert.Contains(t, out, `string status = "Shared"`, "a child declaring the same property keeps its value")
	assert.Equal(t, 1, strings.Count(out, `"Draft"`))
}

func TestUpdatePropertyDeclaredAfterChildBlock(t *testing.T) {
	doc := `define Transform "World" {
    define Mesh "Wall" {
        string status = "Shared"
    }
    string status = "Published"
}
`
	out, warns := UpdateProperty(doc, "/World", "status", "Draft", "string")
	require.Empty(t, warns)
	assert.Contains(t, out, `string status = "Shared"`)
	assert.Contains(t, out, `string status = "Draft"`)
	assert.NotContains(t, out, `"Published"`)
}

func TestUpdatePropertyValueWithDollarSign(t *testing.T) {
	out, warns := UpdateProperty(wallDoc, "/World", "status", "tier $1 approved", "string")
	require.Empty(t, warns)
	assert.Contains(t, out, `string status = "tier $1 approved"`, "value bytes must land verbatim")
	assert.NotContains(t, out, "Published")
}

func TestUpdatePropertyIdempotent(t *testing.T) {
	once, warns := UpdateProperty(wallDoc, "/World/Wall", "contractor", "ACME", "string")
	require.Empty(t, warns)
	twice, warns := UpdateProperty(once, "/World/Wall", "contractor", "ACME", "string")
	require.Empty(t, warns)
	assert.Equal(t, once, twice, "second identical update must not duplicate the line")
}

func TestUpdatePropertyFallsBackToBareName(t *testing.T) {
	// The composed path differs from the storage location: look up by name.
	out, warns := UpdateProperty(wallDoc, "/Staged/Changes/Wall", "opacity", "0.1", "float")
	require.Empty(t, warns)
	assert.Contains(t, out, "float opacity = 0.1")
}

func TestUpdatePropertyMissingNode(t *testing.T) {
	out, warns := UpdateProperty(wallDoc, "/Nowhere", "a", "b", "string")
	assert.Equal(t, wallDoc, out)
	require.Len(t, warns, 1)
	assert.Equal(t, scene.NotFound, warns[0].Kind)
}

func TestUpdatePropertyDetectsIndentation(t *testing.T) {
	twoSpace := "define Mesh \"A\" {\n  string status = \"Draft\"\n}\n"
	out, warns := UpdateProperty(twoSpace, "/A", "note", "hi", "string")
	require.Empty(t, warns)
	assert.Contains(t, out, "\n  custom string bim:note = \"hi\"\n")
}

const renameDoc = `define Mesh "Wall" {
    string status = "Published"
}
define Mesh "Wall2" {
}
override "Облицовка" (reference = @walls.scene@</Wall>) {
}
override "Trim" (reference = @walls.scene@</Wall2>) {
}
`

func TestRenameRewritesExactReferences(t *testing.T) {
	res, warns, err := Rename(renameDoc, "/Wall", "Siding")
	require.NoError(t, err)
	require.Empty(t, warns)
	assert.Equal(t, "/Siding", res.NewPath)

	assert.Contains(t, res.Text, `define Mesh "Siding" {`)
	assert.Contains(t, res.Text, `@walls.scene@</Siding>`)
	// The sibling sharing the old name as a prefix is untouched.
	assert.Contains(t, res.Text, `define Mesh "Wall2" {`)
	assert.Contains(t, res.Text, `@walls.scene@</Wall2>`)
	assert.NotContains(t, res.Text, `"Wall" {`)
}

func TestRenameInvalidIdentifierFails(t *testing.T) {
	for _, bad := range []string{"9start", "has space", "has-dash", ""} {
		_, _, err := Rename(renameDoc, "/Wall", bad)
		assert.Error(t, err, "name %q must be rejected", bad)
	}
}

func TestRenameMissingNodeWarns(t *testing.T) {
	res, warns, err := Rename(renameDoc, "/Ghost", "Fine")
	require.NoError(t, err)
	assert.Equal(t, renameDoc, res.Text)
	assert.Equal(t, "/Ghost", res.NewPath)
	require.Len(t, warns, 1)
	assert.Equal(t, scene.NotFound, warns[0].Kind)
}

func TestEditsAreSerializable(t *testing.T) {
	// Each call re-derives spans from the text it is given.
	step1, _ := UpdateProperty(wallDoc, "/World/Wall", "opacity", "0.7", "float")
	step2, _ := Remove(step1, "/World/Wallpaper")
	step3, _ := Insert(step2, "/World", `define Mesh "Roof" { }`)

	roots, warns := parse.Parse(step3)
	require.Empty(t, warns)
	assert.NotNil(t, scene.FindByPath(roots, "/World/Roof"))
	assert.Nil(t, scene.FindByPath(roots, "/World/Wallpaper"))
	wall := scene.FindByPath(roots, "/World/Wall")
	require.NotNil(t, wall)
	p, _ := wall.Property("opacity")
	assert.True(t, scene.Number(0.7).Equal(p.Value))
}
