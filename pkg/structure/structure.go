// Package structure composes the canonical team records into the nested
// organization/team view and owns the debounced rebuild trigger for live
// maintenance.
package structure

import (
	"path"
	"sort"
	"strings"

	"github.com/orgvault/orgvault/pkg/discovery"
	"github.com/orgvault/orgvault/pkg/model"
	"github.com/orgvault/orgvault/pkg/slug"
)

// DirectChildren maps each parent root path to its direct children. A
// candidate is a direct child only when both independent signals agree:
// its slug is a lineage descendant of the parent's, and its folder sits
// exactly one path segment below "<parent>/Teams/". Deeper nesting is
// never "direct".
func DirectChildren(teams []model.TeamRecord) map[string][]model.TeamRecord {
	children := make(map[string][]model.TeamRecord)
	for _, parent := range teams {
		prefix := parent.RootPath + "/" + discovery.TeamsFolderName + "/"
		var direct []model.TeamRecord
		for _, candidate := range teams {
			if candidate.RootPath == parent.RootPath {
				continue
			}
			if !slug.IsChildSlugOf(parent.Slug, candidate.Slug) {
				continue
			}
			rest, ok := strings.CutPrefix(candidate.RootPath, prefix)
			if !ok || rest == "" || strings.Contains(rest, "/") {
				continue
			}
			direct = append(direct, candidate)
		}
		if len(direct) == 0 {
			continue
		}
		sort.SliceStable(direct, func(a, b int) bool {
			return strings.ToLower(direct[a].DisplayName) < strings.ToLower(direct[b].DisplayName)
		})
		children[parent.RootPath] = direct
	}
	return children
}

// BuildTeamNode builds the nested node for root, recursively attaching
// its children. A record without a slug falls back to re-parsing the last
// segment of its root path.
func BuildTeamNode(root model.TeamRecord, children map[string][]model.TeamRecord) model.TeamNode {
	teamSlug := root.Slug
	if teamSlug == "" {
		if _, parsed, ok := slug.ParseTeamFolderName(path.Base(root.RootPath)); ok {
			teamSlug = parsed
		}
	}
	node := model.TeamNode{
		DisplayName: root.DisplayName,
		RootPath:    root.RootPath,
		Slug:        teamSlug,
		Members:     BucketizeMembers(root.Members),
	}
	for _, child := range children[root.RootPath] {
		node.Teams = append(node.Teams, BuildTeamNode(child, children))
	}
	return node
}

// BucketizeMembers partitions members into the four presentation groups,
// each sorted by display name.
func BucketizeMembers(members []model.MemberRecord) model.MemberBuckets {
	var buckets model.MemberBuckets
	for _, m := range members {
		switch m.Type {
		case model.MemberTypeMember:
			buckets.TeamMembers = append(buckets.TeamMembers, m)
		case model.MemberTypeInternalTeamMember:
			buckets.InternalMemberDelegates = append(buckets.InternalMemberDelegates, m)
		case model.MemberTypeTeam:
			buckets.InternalTeamDelegates = append(buckets.InternalTeamDelegates, m)
		case model.MemberTypeExternal:
			buckets.ExternalDelegates = append(buckets.ExternalDelegates, m)
		}
	}
	for _, bucket := range [][]model.MemberRecord{
		buckets.TeamMembers,
		buckets.InternalMemberDelegates,
		buckets.InternalTeamDelegates,
		buckets.ExternalDelegates,
	} {
		sort.SliceStable(bucket, func(a, b int) bool {
			return strings.ToLower(bucket[a].DisplayName) < strings.ToLower(bucket[b].DisplayName)
		})
	}
	return buckets
}

// Compose classifies the canonical records and assembles the public view.
// An organization is a root team with at least one direct child; an
// orphan has neither parent nor children. A team that is someone's child
// only ever appears nested under its parent.
func Compose(teams []model.TeamRecord) model.OrgStructure {
	children := DirectChildren(teams)
	isChild := make(map[string]bool)
	for _, kids := range children {
		for _, kid := range kids {
			isChild[kid.RootPath] = true
		}
	}

	result := model.OrgStructure{
		Organizations: []model.OrganizationNode{},
		Teams:         []model.TeamNode{},
	}
	for _, team := range teams {
		if isChild[team.RootPath] {
			continue
		}
		node := BuildTeamNode(team, children)
		if len(children[team.RootPath]) > 0 {
			result.Organizations = append(result.Organizations, node)
		} else {
			result.Teams = append(result.Teams, node)
		}
	}
	return result
}
