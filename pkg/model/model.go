// Package model defines the record types shared by the discovery,
// reconciliation and composition layers.
package model

import "strings"

// MemberType classifies how a person or team participates in a team.
type MemberType string

const (
	// MemberTypeMember is a regular team member.
	MemberTypeMember MemberType = "member"
	// MemberTypeInternalTeamMember is a delegate who is a member of an internal team.
	MemberTypeInternalTeamMember MemberType = "internalTeamMember"
	// MemberTypeTeam is an internal team acting as a delegate.
	MemberTypeTeam MemberType = "team"
	// MemberTypeExternal is a delegate from outside the organization.
	MemberTypeExternal MemberType = "external"
)

// Rank returns the canonical sort rank of the member type. Members come
// first, followed by the three delegate classes.
func (t MemberType) Rank() int {
	switch t {
	case MemberTypeMember:
		return 0
	case MemberTypeInternalTeamMember:
		return 1
	case MemberTypeTeam:
		return 2
	case MemberTypeExternal:
		return 3
	default:
		return 4
	}
}

// InferMemberType derives a member type from the alias suffix convention
// used by the legacy marker format.
func InferMemberType(alias string) MemberType {
	switch {
	case strings.HasSuffix(alias, "-ext"):
		return MemberTypeExternal
	case strings.HasSuffix(alias, "-team"):
		return MemberTypeTeam
	case strings.HasSuffix(alias, "-int"):
		return MemberTypeInternalTeamMember
	default:
		return MemberTypeMember
	}
}

// MemberRecord is a single member of a team. Alias is the unique key
// within the team.
type MemberRecord struct {
	Alias       string     `json:"alias"`
	DisplayName string     `json:"display_name"`
	Type        MemberType `json:"type"`
}

// TeamRecord is the canonical representation of a team or organization.
// Slug is immutable once assigned: the trailing code persists across
// renames, while RootPath may change when the folder is moved.
type TeamRecord struct {
	DisplayName string         `json:"display_name"`
	RootPath    string         `json:"root_path"`
	Slug        string         `json:"slug"`
	Members     []MemberRecord `json:"members"`
}

// MemberBuckets partitions a team's members into the four presentation
// groups, each sorted by display name.
type MemberBuckets struct {
	TeamMembers             []MemberRecord `json:"team_members"`
	InternalMemberDelegates []MemberRecord `json:"internal_member_delegates"`
	InternalTeamDelegates   []MemberRecord `json:"internal_team_delegates"`
	ExternalDelegates       []MemberRecord `json:"external_delegates"`
}

// TeamNode is a team with its members bucketized and its direct children
// nested beneath it.
type TeamNode struct {
	DisplayName string        `json:"display_name"`
	RootPath    string        `json:"root_path"`
	Slug        string        `json:"slug"`
	Members     MemberBuckets `json:"members"`
	Teams       []TeamNode    `json:"teams,omitempty"`
}

// OrganizationNode is a root-level team that has at least one nested team.
// It carries the same shape as a TeamNode.
type OrganizationNode = TeamNode

// OrgStructure is the composed public view: root organizations with their
// nested teams, plus orphaned teams that have neither parent nor children.
type OrgStructure struct {
	Organizations []OrganizationNode `json:"organizations"`
	Teams         []TeamNode         `json:"teams"`
}
