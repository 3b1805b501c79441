package blueprint

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/orgvault/orgvault/pkg/vault"
)

func standardTree() []Node {
	return []Node{
		{Name: "Docs", Folder: true, RenameWithSlug: Rename(false)},
		{Name: "Initiatives", Folder: true, Children: []Node{
			{Name: "Initiatives.md", Content: "# Initiatives sample"},
			{Name: "Priorities.md"},
			{Name: "Completed.md"},
		}},
	}
}

func TestMaterializeStandardTree(t *testing.T) {
	ctx := context.Background()
	v := vault.NewMemVault()

	err := Materialize(ctx, v, standardTree(), "Widgets (widgets-4f8a1b)", "4f8a1b", "", false)
	assert.NoError(t, err)

	for _, p := range []string{
		"Widgets (widgets-4f8a1b)/Docs",
		"Widgets (widgets-4f8a1b)/Initiatives (initiatives-4f8a1b)",
	} {
		ok, err := v.Exists(ctx, p)
		assert.NoError(t, err)
		assert.True(t, ok, "missing folder %q", p)
	}

	for _, p := range []string{
		"Widgets (widgets-4f8a1b)/Initiatives (initiatives-4f8a1b)/Initiatives (initiatives-4f8a1b).md",
		"Widgets (widgets-4f8a1b)/Initiatives (initiatives-4f8a1b)/Priorities (priorities-4f8a1b).md",
		"Widgets (widgets-4f8a1b)/Initiatives (initiatives-4f8a1b)/Completed (completed-4f8a1b).md",
	} {
		content, err := v.ReadFile(ctx, p)
		assert.NoError(t, err, "missing file %q", p)
		assert.Equal(t, "", content)
	}
}

func TestMaterializeWithPathID(t *testing.T) {
	ctx := context.Background()
	v := vault.NewMemVault()

	err := Materialize(ctx, v, standardTree(), "Acme Eng (acme-eng-4f8a1b)", "4f8a1b", "eng", false)
	assert.NoError(t, err)

	ok, _ := v.Exists(ctx, "Acme Eng (acme-eng-4f8a1b)/Initiatives (initiatives-eng-4f8a1b)/Priorities (priorities-eng-4f8a1b).md")
	assert.True(t, ok)
}

func TestMaterializeSeedContent(t *testing.T) {
	ctx := context.Background()
	v := vault.NewMemVault()

	err := Materialize(ctx, v, standardTree(), "Widgets (widgets-4f8a1b)", "4f8a1b", "", true)
	assert.NoError(t, err)

	content, err := v.ReadFile(ctx, "Widgets (widgets-4f8a1b)/Initiatives (initiatives-4f8a1b)/Initiatives (initiatives-4f8a1b).md")
	assert.NoError(t, err)
	assert.Equal(t, "# Initiatives sample", content)

	// Nodes without content stay empty even when seeding.
	content, err = v.ReadFile(ctx, "Widgets (widgets-4f8a1b)/Initiatives (initiatives-4f8a1b)/Priorities (priorities-4f8a1b).md")
	assert.NoError(t, err)
	assert.Equal(t, "", content)
}

func TestMaterializeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	v := vault.NewMemVault()

	assert.NoError(t, Materialize(ctx, v, standardTree(), "Widgets (widgets-4f8a1b)", "4f8a1b", "", false))

	// Simulate a user edit, then re-run: nothing is overwritten.
	edited := "Widgets (widgets-4f8a1b)/Initiatives (initiatives-4f8a1b)/Priorities (priorities-4f8a1b).md"
	assert.NoError(t, v.WriteFile(ctx, edited, "my priorities"))
	assert.NoError(t, Materialize(ctx, v, standardTree(), "Widgets (widgets-4f8a1b)", "4f8a1b", "", true))

	content, err := v.ReadFile(ctx, edited)
	assert.NoError(t, err)
	assert.Equal(t, "my priorities", content)

	files, err := v.Files(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(files))
}

func TestMaterializeRenameDisabledSubtree(t *testing.T) {
	ctx := context.Background()
	v := vault.NewMemVault()
	tree := []Node{
		{Name: "Docs", Folder: true, RenameWithSlug: Rename(false), Children: []Node{
			// A child cannot re-enable renaming below a disabled ancestor.
			{Name: "Guide.md", RenameWithSlug: Rename(true)},
		}},
	}

	assert.NoError(t, Materialize(ctx, v, tree, "Widgets (widgets-4f8a1b)", "4f8a1b", "", false))

	ok, _ := v.Exists(ctx, "Widgets (widgets-4f8a1b)/Docs/Guide.md")
	assert.True(t, ok)
}

func TestMaterializeResourceFileOutsideInitiatives(t *testing.T) {
	ctx := context.Background()
	v := vault.NewMemVault()
	// A file named like a resource kind gets the generic pattern unless
	// an ancestor folder was literally "initiatives".
	tree := []Node{{Name: "Priorities.md"}}

	assert.NoError(t, Materialize(ctx, v, tree, "Widgets (widgets-4f8a1b)", "4f8a1b", "", false))

	ok, _ := v.Exists(ctx, "Widgets (widgets-4f8a1b)/Priorities (priorities-4f8a1b).md")
	assert.True(t, ok)
}
