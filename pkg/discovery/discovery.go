// Package discovery recovers the detected team snapshot from the vault's
// folder and file naming alone. A pass is all-or-nothing: any unexpected
// failure leaves the caller's previous state untouched rather than
// producing a partially scanned snapshot.
package discovery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/orgvault/orgvault/pkg/model"
	"github.com/orgvault/orgvault/pkg/slug"
	"github.com/orgvault/orgvault/pkg/vault"
)

// TeamsFolderName is the reserved subfolder that holds a team's direct
// children.
const TeamsFolderName = "Teams"

// DetectedTeam is one team recovered from the vault scan.
type DetectedTeam struct {
	DisplayName string
	Slug        string
	RootPath    string
	Members     []model.MemberRecord
	// ChildSlugs are the slugs of folders under "<root>/Teams/" that
	// also pass the lineage check. They serve as a consistency signal
	// against accidental folder moves; the composition layer derives
	// the authoritative children map independently.
	ChildSlugs []string
}

// Snapshot is the result of one discovery pass.
type Snapshot struct {
	Teams []DetectedTeam
}

// Scanner runs discovery passes over a vault.
type Scanner struct {
	vault  vault.Vault
	logger *slog.Logger
}

// NewScanner returns a scanner over v. A nil logger discards output.
func NewScanner(v vault.Vault, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scanner{vault: v, logger: logger}
}

// Scan performs one full discovery pass and returns the detected
// snapshot. Malformed folder names and unrecognized markers are skipped
// silently; only I/O failures surface as errors.
func (s *Scanner) Scan(ctx context.Context) (*Snapshot, error) {
	files, err := s.vault.Files(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing vault files: %w", err)
	}

	teams := s.detectTeams(files)

	for i := range teams {
		members, err := s.extractMembers(ctx, teams[i].RootPath, files)
		if err != nil {
			return nil, err
		}
		teams[i].Members = members
		children, err := s.structuralChildren(ctx, teams[i])
		if err != nil {
			return nil, err
		}
		teams[i].ChildSlugs = children
	}
	return &Snapshot{Teams: teams}, nil
}

// detectTeams classifies every folder reachable from the file list. The
// store may expose only a flat file list, so folders are collected by
// walking parent links upward from every file.
func (s *Scanner) detectTeams(files []string) []DetectedTeam {
	var folders []string
	seen := make(map[string]bool)
	for _, file := range files {
		for dir := path.Dir(file); dir != "." && dir != "/"; dir = path.Dir(dir) {
			if seen[dir] {
				break
			}
			seen[dir] = true
			folders = append(folders, dir)
		}
	}

	var teams []DetectedTeam
	bySlug := make(map[string]bool)
	for _, folder := range folders {
		name := path.Base(folder)
		if !slug.IsTeamFolderName(name) {
			continue
		}
		displayName, sg, ok := slug.ParseTeamFolderName(name)
		if !ok {
			continue
		}
		// A resource container must never be mistaken for a team.
		if slug.IsReservedBase(slug.Base(sg)) {
			continue
		}
		// First occurrence in scan order wins; later duplicates are a
		// defined tie-break, not an error.
		key := strings.ToLower(sg)
		if bySlug[key] {
			s.logger.Debug("dropping duplicate team slug", "slug", sg, "path", folder)
			continue
		}
		bySlug[key] = true
		teams = append(teams, DetectedTeam{
			DisplayName: displayName,
			Slug:        sg,
			RootPath:    folder,
		})
	}

	sort.SliceStable(teams, func(i, j int) bool {
		return strings.ToLower(slug.Base(teams[i].Slug)) < strings.ToLower(slug.Base(teams[j].Slug))
	})
	return teams
}

// extractMembers reads every file at or under rootPath and collects the
// member markers. Explicit markers always beat the legacy alias-suffix
// heuristic; within each form, the first occurrence of an alias wins.
func (s *Scanner) extractMembers(ctx context.Context, rootPath string, files []string) ([]model.MemberRecord, error) {
	var explicit, legacy []marker
	for _, file := range files {
		if file != rootPath && !strings.HasPrefix(file, rootPath+"/") {
			continue
		}
		content, err := s.vault.ReadFile(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", file, err)
		}
		explicit = append(explicit, extractMarkers(content)...)
		legacy = append(legacy, extractLegacyMarkers(content)...)
	}

	var members []model.MemberRecord
	seen := make(map[string]bool)
	for _, m := range append(explicit, legacy...) {
		if seen[m.alias] {
			continue
		}
		seen[m.alias] = true
		members = append(members, model.MemberRecord{
			Alias:       m.alias,
			DisplayName: m.displayName,
			Type:        m.memberType,
		})
	}
	return members, nil
}

// structuralChildren inspects "<root>/Teams/" and returns the slugs of
// subfolders that are also lineage descendants. A folder that sits there
// without satisfying the slug relation was moved by hand and is ignored.
func (s *Scanner) structuralChildren(ctx context.Context, team DetectedTeam) ([]string, error) {
	teamsPath := team.RootPath + "/" + TeamsFolderName
	ok, err := s.vault.Exists(ctx, teamsPath)
	if err != nil {
		return nil, fmt.Errorf("checking %q: %w", teamsPath, err)
	}
	if !ok {
		return nil, nil
	}
	children, err := s.vault.List(ctx, teamsPath)
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", teamsPath, err)
	}
	var slugs []string
	for _, folder := range children.Folders {
		_, childSlug, ok := slug.ParseTeamFolderName(path.Base(folder))
		if !ok {
			continue
		}
		if !slug.IsChildSlugOf(team.Slug, childSlug) {
			s.logger.Warn("folder under Teams is not a lineage child",
				"parent", team.Slug, "child", childSlug, "path", folder)
			continue
		}
		slugs = append(slugs, childSlug)
	}
	return slugs, nil
}

// SafeScan runs Scan and, on any failure, returns prev unchanged. This is
// the documented all-or-nothing contract: a failed pass never replaces
// the caller's state with a partial snapshot.
func (s *Scanner) SafeScan(ctx context.Context, prev *Snapshot) *Snapshot {
	snap, err := s.Scan(ctx)
	if err != nil {
		s.logger.Warn("discovery pass failed, keeping previous state", "error", err)
		return prev
	}
	return snap
}
