package structure

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/orgvault/orgvault/pkg/model"
)

func team(displayName, rootPath, slug string) model.TeamRecord {
	return model.TeamRecord{DisplayName: displayName, RootPath: rootPath, Slug: slug}
}

func acmeFixture() []model.TeamRecord {
	return []model.TeamRecord{
		team("Acme", "Acme (acme-4f8a1b)", "acme-4f8a1b"),
		team("Acme Eng", "Acme (acme-4f8a1b)/Teams/Acme Eng (acme-eng-4f8a1b)", "acme-eng-4f8a1b"),
		team("Acme Ops", "Acme (acme-4f8a1b)/Teams/Acme Ops (acme-ops-4f8a1b)", "acme-ops-4f8a1b"),
		team("Widgets", "Widgets (widgets-9zz00a)", "widgets-9zz00a"),
	}
}

func TestDirectChildren(t *testing.T) {
	children := DirectChildren(acmeFixture())

	acme := children["Acme (acme-4f8a1b)"]
	assert.Equal(t, 2, len(acme))
	// Sorted by display name.
	assert.Equal(t, "Acme Eng", acme[0].DisplayName)
	assert.Equal(t, "Acme Ops", acme[1].DisplayName)

	_, ok := children["Widgets (widgets-9zz00a)"]
	assert.False(t, ok)
}

func TestDirectChildrenRequiresBothSignals(t *testing.T) {
	t.Run("lineage without nesting is not direct", func(t *testing.T) {
		teams := []model.TeamRecord{
			team("Acme", "Acme (acme-4f8a1b)", "acme-4f8a1b"),
			team("Acme Eng", "Elsewhere/Acme Eng (acme-eng-4f8a1b)", "acme-eng-4f8a1b"),
		}
		assert.Equal(t, 0, len(DirectChildren(teams)))
	})

	t.Run("nesting without lineage is not direct", func(t *testing.T) {
		teams := []model.TeamRecord{
			team("Acme", "Acme (acme-4f8a1b)", "acme-4f8a1b"),
			team("Rogue", "Acme (acme-4f8a1b)/Teams/Rogue (rogue-9zz00a)", "rogue-9zz00a"),
		}
		assert.Equal(t, 0, len(DirectChildren(teams)))
	})

	t.Run("deeper nesting is not direct", func(t *testing.T) {
		teams := []model.TeamRecord{
			team("Acme", "Acme (acme-4f8a1b)", "acme-4f8a1b"),
			team("Acme Deep", "Acme (acme-4f8a1b)/Teams/Sub/Acme Deep (acme-deep-4f8a1b)", "acme-deep-4f8a1b"),
		}
		assert.Equal(t, 0, len(DirectChildren(teams)))
	})
}

func TestCompose(t *testing.T) {
	result := Compose(acmeFixture())

	assert.Equal(t, 1, len(result.Organizations))
	org := result.Organizations[0]
	assert.Equal(t, "Acme", org.DisplayName)
	assert.Equal(t, 2, len(org.Teams))
	assert.Equal(t, "Acme Eng", org.Teams[0].DisplayName)

	assert.Equal(t, 1, len(result.Teams))
	assert.Equal(t, "Widgets", result.Teams[0].DisplayName)
}

func TestComposeChildNeverAppearsTopLevel(t *testing.T) {
	result := Compose(acmeFixture())
	for _, node := range append(result.Organizations, result.Teams...) {
		assert.NotEqual(t, "acme-eng-4f8a1b", node.Slug)
		assert.NotEqual(t, "acme-ops-4f8a1b", node.Slug)
	}
}

func TestComposeNestedHierarchy(t *testing.T) {
	teams := append(acmeFixture(),
		team("Acme Eng Platform",
			"Acme (acme-4f8a1b)/Teams/Acme Eng (acme-eng-4f8a1b)/Teams/Acme Eng Platform (acme-eng-platform-4f8a1b)",
			"acme-eng-platform-4f8a1b"),
	)
	result := Compose(teams)
	assert.Equal(t, 1, len(result.Organizations))
	eng := result.Organizations[0].Teams[0]
	assert.Equal(t, "Acme Eng", eng.DisplayName)
	assert.Equal(t, 1, len(eng.Teams))
	assert.Equal(t, "Acme Eng Platform", eng.Teams[0].DisplayName)
}

func TestBuildTeamNodeSlugFallback(t *testing.T) {
	node := BuildTeamNode(team("Acme", "Folder/Acme (acme-4f8a1b)", ""), nil)
	assert.Equal(t, "acme-4f8a1b", node.Slug)
}

func TestBucketizeMembers(t *testing.T) {
	members := []model.MemberRecord{
		{Alias: "zed", DisplayName: "Zed", Type: model.MemberTypeMember},
		{Alias: "amy", DisplayName: "Amy", Type: model.MemberTypeMember},
		{Alias: "ops-team", DisplayName: "Ops", Type: model.MemberTypeTeam},
		{Alias: "ida-int", DisplayName: "Ida", Type: model.MemberTypeInternalTeamMember},
		{Alias: "bob-ext", DisplayName: "Bob", Type: model.MemberTypeExternal},
	}
	buckets := BucketizeMembers(members)

	assert.Equal(t, 2, len(buckets.TeamMembers))
	assert.Equal(t, "Amy", buckets.TeamMembers[0].DisplayName)
	assert.Equal(t, "Zed", buckets.TeamMembers[1].DisplayName)
	assert.Equal(t, 1, len(buckets.InternalMemberDelegates))
	assert.Equal(t, 1, len(buckets.InternalTeamDelegates))
	assert.Equal(t, 1, len(buckets.ExternalDelegates))
}
