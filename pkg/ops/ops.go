// Package ops implements the higher-level create/rename/extend
// operations on the vault: creating teams, promoting a team to an
// organization, and adding child teams. Operations validate their
// preconditions before touching the store; mutations run sequentially
// with no rollback, relying on the materializer's idempotence for safe
// retries.
package ops

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strconv"
	"strings"

	"github.com/orgvault/orgvault/pkg/blueprint"
	"github.com/orgvault/orgvault/pkg/discovery"
	"github.com/orgvault/orgvault/pkg/slug"
	"github.com/orgvault/orgvault/pkg/vault"
)

// Ops bundles the vault handle and logger the operations share.
type Ops struct {
	vault  vault.Vault
	logger *slog.Logger
}

// New returns an Ops over v. A nil logger discards output.
func New(v vault.Vault, logger *slog.Logger) *Ops {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Ops{vault: v, logger: logger}
}

// StandardTeamBlueprint is the default resource tree created for a new
// team: an untouched Docs folder plus the renamed initiatives container
// with its three resource files.
func StandardTeamBlueprint() []blueprint.Node {
	return []blueprint.Node{
		{Name: "Docs", Folder: true, RenameWithSlug: blueprint.Rename(false)},
		{Name: "Initiatives", Folder: true, Children: []blueprint.Node{
			{Name: "Initiatives.md", Content: "# Initiatives\n\n- [ ] First initiative\n"},
			{Name: "Priorities.md", Content: "# Priorities\n\n1. Top priority\n"},
			{Name: "Completed.md", Content: "# Completed\n"},
		}},
	}
}

// CreateTeamRequest describes a team to create. Code is validated when
// given and generated otherwise. ParentPath is vault-relative; empty
// means the vault root. A PathID already encoded at the end of the
// name's own slug is dropped as redundant.
type CreateTeamRequest struct {
	Name       string
	Code       string
	PathID     string
	ParentPath string
	Seed       bool
}

// CreateTeam materializes a new team folder with the standard blueprint
// and returns its root path.
func (o *Ops) CreateTeam(ctx context.Context, req CreateTeamRequest) (string, error) {
	if strings.TrimSpace(req.Name) == "" {
		return "", fmt.Errorf("team name is required")
	}
	code := req.Code
	if code == "" {
		code = slug.NewCode()
	} else if !slug.IsValidCode(code) {
		return "", fmt.Errorf("invalid team code %q: want a digit followed by five base-36 characters", req.Code)
	}
	code = strings.ToLower(code)

	base := slug.Slugify(req.Name)
	pathID := req.PathID
	if pathID != "" && (base == pathID || strings.HasSuffix(base, "-"+pathID)) {
		pathID = ""
	}
	teamSlug := slug.BuildTeamSlug(req.Name, code, pathID)
	rootPath := path.Join(req.ParentPath, slug.BuildFolderName(req.Name, teamSlug))

	if err := o.ensureFolder(ctx, rootPath); err != nil {
		return "", err
	}
	if err := blueprint.Materialize(ctx, o.vault, StandardTeamBlueprint(), rootPath, code, pathID, req.Seed); err != nil {
		return "", err
	}
	o.logger.Info("created team", "name", req.Name, "slug", teamSlug, "path", rootPath)
	return rootPath, nil
}

// PromoteToOrganization renames an existing team folder in place (same
// parent directory, new display name, slug rebuilt from the existing code
// so identity and lineage are preserved), ensures the Teams subfolder,
// and optionally creates initialTeams child teams inside it. It returns
// the organization's new root path.
func (o *Ops) PromoteToOrganization(ctx context.Context, teamRootPath, newName string, initialTeams int) (string, error) {
	displayName, teamSlug, ok := slug.ParseTeamFolderName(path.Base(teamRootPath))
	if !ok {
		return "", fmt.Errorf("folder %q carries no team slug", teamRootPath)
	}
	code, ok := slug.BaseCodeFromSlug(teamSlug)
	if !ok {
		return "", fmt.Errorf("slug %q carries no code", teamSlug)
	}
	if newName == "" {
		newName = displayName
	}
	pathID := slug.PathIDFromSlug(teamSlug, slug.Slugify(displayName))
	newSlug := slug.BuildTeamSlug(newName, code, pathID)
	newRoot := path.Join(path.Dir(teamRootPath), slug.BuildFolderName(newName, newSlug))

	if newRoot != teamRootPath {
		if err := o.vault.Rename(ctx, teamRootPath, newRoot); err != nil {
			return "", fmt.Errorf("renaming %q: %w", teamRootPath, err)
		}
	}
	if err := o.ensureFolder(ctx, newRoot+"/"+discovery.TeamsFolderName); err != nil {
		return "", err
	}
	if initialTeams > 0 {
		names := make([]string, initialTeams)
		for i := range names {
			names[i] = fmt.Sprintf("%s Team %d", newName, i+1)
		}
		if _, err := o.AddTeams(ctx, newRoot, names); err != nil {
			return "", err
		}
	}
	o.logger.Info("promoted team to organization", "path", newRoot, "slug", newSlug)
	return newRoot, nil
}

// AddTeams creates child teams under an existing organization's Teams
// folder and returns their root paths. Path-id segments are derived from
// the child names and disambiguated against the segments already used by
// sibling folders.
func (o *Ops) AddTeams(ctx context.Context, orgRootPath string, names []string) ([]string, error) {
	return o.addChildren(ctx, orgRootPath, names)
}

// AddSubteams creates child teams under an existing team, turning it
// into an organization on the next discovery pass.
func (o *Ops) AddSubteams(ctx context.Context, teamRootPath string, names []string) ([]string, error) {
	return o.addChildren(ctx, teamRootPath, names)
}

func (o *Ops) addChildren(ctx context.Context, rootPath string, names []string) ([]string, error) {
	displayName, parentSlug, ok := slug.ParseTeamFolderName(path.Base(rootPath))
	if !ok {
		return nil, fmt.Errorf("folder %q carries no team slug", rootPath)
	}
	code, ok := slug.BaseCodeFromSlug(parentSlug)
	if !ok {
		return nil, fmt.Errorf("slug %q carries no code", parentSlug)
	}
	parentBase := slug.Base(parentSlug)
	parentPathID := slug.PathIDFromSlug(parentSlug, slug.Slugify(displayName))

	teamsPath := rootPath + "/" + discovery.TeamsFolderName
	if err := o.ensureFolder(ctx, teamsPath); err != nil {
		return nil, err
	}
	used, err := o.usedPathSegments(ctx, teamsPath, parentBase)
	if err != nil {
		return nil, err
	}

	var roots []string
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return roots, fmt.Errorf("child team name is required")
		}
		// The candidate segment is the slugified display suffix: a child
		// named "Acme Eng" under "Acme" claims the segment "eng".
		candidate := slug.Slugify(name)
		if rest, ok := strings.CutPrefix(candidate, slug.Slugify(displayName)+"-"); ok && rest != "" {
			candidate = rest
		}
		if candidate == "" {
			candidate = strconv.Itoa(i + 1)
		}
		segment := uniqueSegment(candidate, used)
		used[segment] = true

		childSlug := slug.BuildOrgChildSlug(displayName, code, parentPathID, segment)
		childPathID := slug.PathIDFromSlug(childSlug, slug.Slugify(displayName))
		childRoot := teamsPath + "/" + slug.BuildFolderName(name, childSlug)

		if err := o.ensureFolder(ctx, childRoot); err != nil {
			return roots, err
		}
		if err := blueprint.Materialize(ctx, o.vault, StandardTeamBlueprint(), childRoot, code, childPathID, false); err != nil {
			return roots, err
		}
		o.logger.Info("added child team", "name", name, "slug", childSlug, "path", childRoot)
		roots = append(roots, childRoot)
	}
	return roots, nil
}

// usedPathSegments collects the path-id segments already claimed by
// sibling folders under teamsPath, relative to the parent's base.
func (o *Ops) usedPathSegments(ctx context.Context, teamsPath, parentBase string) (map[string]bool, error) {
	used := make(map[string]bool)
	children, err := o.vault.List(ctx, teamsPath)
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", teamsPath, err)
	}
	for _, folder := range children.Folders {
		_, siblingSlug, ok := slug.ParseTeamFolderName(path.Base(folder))
		if !ok {
			continue
		}
		if pathID := slug.PathIDFromSlug(siblingSlug, parentBase); pathID != "" {
			used[pathID] = true
		}
	}
	return used, nil
}

func uniqueSegment(candidate string, used map[string]bool) string {
	if !used[candidate] {
		return candidate
	}
	for n := 2; ; n++ {
		alt := fmt.Sprintf("%s-%d", candidate, n)
		if !used[alt] {
			return alt
		}
	}
}

func (o *Ops) ensureFolder(ctx context.Context, p string) error {
	exists, err := o.vault.Exists(ctx, p)
	if err != nil {
		return fmt.Errorf("checking %q: %w", p, err)
	}
	if exists {
		return nil
	}
	if err := o.vault.CreateFolder(ctx, p); err != nil {
		return fmt.Errorf("creating %q: %w", p, err)
	}
	return nil
}
