// Package reconcile merges a freshly detected snapshot with the
// previously persisted canonical records. The merge guarantees the
// canonical set never contains a team whose current folder does not match
// its own slug, while still letting a relocated folder keep its identity
// when the relocation preserved the slug.
package reconcile

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/orgvault/orgvault/pkg/discovery"
	"github.com/orgvault/orgvault/pkg/model"
	"github.com/orgvault/orgvault/pkg/slug"
	"github.com/orgvault/orgvault/pkg/vault"
)

// Merge combines detected teams with the previous canonical records and
// returns the new canonical set. Detected data is authoritative for
// membership and, by default, for root paths; a previous record's
// differing root path survives only while a folder at that path still
// parses to the expected slug. Slugs that are no longer detected are
// dropped silently.
func Merge(ctx context.Context, v vault.Vault, detected []discovery.DetectedTeam, previous []model.TeamRecord) []model.TeamRecord {
	records := make([]model.TeamRecord, 0, len(detected))
	bySlug := make(map[string]*model.TeamRecord, len(detected))
	for _, d := range detected {
		records = append(records, model.TeamRecord{
			DisplayName: d.DisplayName,
			RootPath:    d.RootPath,
			Slug:        d.Slug,
			Members:     append([]model.MemberRecord(nil), d.Members...),
		})
		bySlug[strings.ToLower(d.Slug)] = &records[len(records)-1]
	}

	for _, prev := range previous {
		current, ok := bySlug[strings.ToLower(prev.Slug)]
		if !ok {
			// Not detected anymore: implicit deletion.
			continue
		}
		if prev.RootPath == current.RootPath {
			continue
		}
		if overrideStillValid(ctx, v, prev.RootPath, prev.Slug) {
			current.RootPath = prev.RootPath
		}
	}

	canonicalize(records)
	return records
}

// overrideStillValid re-validates a stored root path override: a folder
// must still exist at the path and its own name must parse to the
// expected slug. Listing the path proves it is a folder; a stray file
// with a parsable name does not qualify. Anything else means the
// override is stale and the freshly detected path wins.
func overrideStillValid(ctx context.Context, v vault.Vault, rootPath, wantSlug string) bool {
	if _, err := v.List(ctx, rootPath); err != nil {
		return false
	}
	_, parsed, ok := slug.ParseTeamFolderName(path.Base(rootPath))
	return ok && strings.EqualFold(parsed, wantSlug)
}

// canonicalize applies the deterministic ordering the rest of the system
// relies on: members by classification rank then display name, teams by
// display name.
func canonicalize(records []model.TeamRecord) {
	for i := range records {
		members := records[i].Members
		sort.SliceStable(members, func(a, b int) bool {
			if members[a].Type.Rank() != members[b].Type.Rank() {
				return members[a].Type.Rank() < members[b].Type.Rank()
			}
			return strings.ToLower(members[a].DisplayName) < strings.ToLower(members[b].DisplayName)
		})
	}
	sort.SliceStable(records, func(a, b int) bool {
		return strings.ToLower(records[a].DisplayName) < strings.ToLower(records[b].DisplayName)
	})
}
