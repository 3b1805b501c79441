package orgvault

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/orgvault/orgvault/pkg/model"
	"github.com/orgvault/orgvault/pkg/ops"
	"github.com/orgvault/orgvault/pkg/settings"
	"github.com/orgvault/orgvault/pkg/vault"
)

func newService(t *testing.T) (*Service, *vault.MemVault) {
	t.Helper()
	v := vault.NewMemVault()
	return New(v, settings.NewMemoryStore()), v
}

func seedAcme(t *testing.T, v *vault.MemVault) {
	t.Helper()
	ctx := context.Background()
	files := map[string]string{
		"Acme (acme-4f8a1b)/readme.md": `Roster:
<span data-template-key="members.assignee" data-member-slug="jane-doe" data-member-type="teamMember">🧑 Jane Doe</span>`,
		"Acme (acme-4f8a1b)/Teams/Acme Eng (acme-eng-4f8a1b)/notes.md": "hello",
	}
	for p, content := range files {
		assert.NoError(t, v.WriteFile(ctx, p, content))
	}
}

func TestRefreshBuildsStructure(t *testing.T) {
	ctx := context.Background()
	svc, v := newService(t)
	seedAcme(t, v)

	assert.NoError(t, svc.Load(ctx))
	assert.NoError(t, svc.Refresh(ctx))

	st := svc.OrgStructure()
	assert.Equal(t, 1, len(st.Organizations))
	org := st.Organizations[0]
	assert.Equal(t, "Acme", org.DisplayName)
	assert.Equal(t, 1, len(org.Teams))
	assert.Equal(t, "Acme Eng", org.Teams[0].DisplayName)
	assert.Equal(t, 0, len(st.Teams))

	records := svc.Records()
	assert.Equal(t, 2, len(records))
	assert.Equal(t, 1, len(records[0].Members))
	assert.Equal(t, "jane-doe", records[0].Members[0].Alias)
	assert.Equal(t, model.MemberTypeMember, records[0].Members[0].Type)
}

func TestRefreshIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, v := newService(t)
	seedAcme(t, v)

	assert.NoError(t, svc.Refresh(ctx))
	first := svc.Records()
	assert.NoError(t, svc.Refresh(ctx))
	assert.Equal(t, first, svc.Records())
}

func TestRenamedChildBecomesOrphan(t *testing.T) {
	ctx := context.Background()
	svc, v := newService(t)
	seedAcme(t, v)
	assert.NoError(t, svc.Refresh(ctx))

	// A different code severs the lineage, so the folder is no longer a
	// child of Acme on the next pass.
	assert.NoError(t, v.Rename(ctx,
		"Acme (acme-4f8a1b)/Teams/Acme Eng (acme-eng-4f8a1b)",
		"Acme (acme-4f8a1b)/Teams/Acme Eng (acme-eng-9zz9zz)"))
	assert.NoError(t, svc.Refresh(ctx))

	// With its only child gone Acme is no longer an organization either;
	// both folders come back as standalone teams.
	st := svc.OrgStructure()
	assert.Equal(t, 0, len(st.Organizations))
	assert.Equal(t, 2, len(st.Teams))
	assert.Equal(t, "Acme", st.Teams[0].DisplayName)
	assert.Equal(t, "Acme Eng", st.Teams[1].DisplayName)
}

func TestCreateTeamThenRefresh(t *testing.T) {
	ctx := context.Background()
	svc, v := newService(t)

	o := ops.New(v, nil)
	root, err := o.CreateTeam(ctx, ops.CreateTeamRequest{
		Name: "Widgets",
		Code: "4f8a1b",
		Seed: true,
	})
	assert.NoError(t, err)
	assert.Equal(t, "Widgets (widgets-4f8a1b)", root)

	assert.NoError(t, svc.Refresh(ctx))
	st := svc.OrgStructure()
	assert.Equal(t, 0, len(st.Organizations))
	assert.Equal(t, 1, len(st.Teams))
	assert.Equal(t, "Widgets", st.Teams[0].DisplayName)
}

func TestTeamMembersForPath(t *testing.T) {
	ctx := context.Background()
	svc, v := newService(t)
	seedAcme(t, v)
	assert.NoError(t, svc.Refresh(ctx))

	members, buckets, ok := svc.TeamMembersForPath("Acme (acme-4f8a1b)/readme.md")
	assert.True(t, ok)
	assert.Equal(t, 1, len(members))
	assert.Equal(t, 1, len(buckets.TeamMembers))

	// Deepest containing team wins for nested paths.
	rec, ok := svc.TeamForPath("Acme (acme-4f8a1b)/Teams/Acme Eng (acme-eng-4f8a1b)/notes.md")
	assert.True(t, ok)
	assert.Equal(t, "Acme Eng", rec.DisplayName)

	// Tolerant fallback: a segment starting with a known display name.
	rec, ok = svc.TeamForPath("Archive/Acme Eng old notes/x.md")
	assert.True(t, ok)
	assert.Equal(t, "Acme Eng", rec.DisplayName)

	_, _, ok = svc.TeamMembersForPath("Unrelated/file.md")
	assert.False(t, ok)
}

func TestLoadRestoresStoredRecords(t *testing.T) {
	ctx := context.Background()
	store := settings.NewMemoryStore()
	assert.NoError(t, store.SaveRecords(ctx, []model.TeamRecord{{
		DisplayName: "Widgets",
		RootPath:    "Widgets (widgets-4f8a1b)",
		Slug:        "widgets-4f8a1b",
	}}))

	svc := New(vault.NewMemVault(), store)
	assert.NoError(t, svc.Load(ctx))
	assert.Equal(t, 1, len(svc.Records()))
	assert.Equal(t, 1, len(svc.OrgStructure().Teams))
}

func TestDisplayPath(t *testing.T) {
	assert.Equal(t, "Acme/Teams/Acme Eng",
		DisplayPath("Acme (acme-4f8a1b)/Teams/Acme Eng (acme-eng-4f8a1b)"))
	assert.Equal(t, "plain/folder", DisplayPath("plain/folder"))
}
