// Package slug implements the naming grammar shared by every layer of the
// engine: team slugs, folder names, resource file names and the code that
// keeps a team's identity stable across renames. It is the single source
// of truth for the grammar; nothing outside this package re-derives these
// patterns. All functions are pure and none of them touch the store.
package slug

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
)

// A code is exactly six characters: one digit followed by five base-36
// characters. It is matched case-insensitively and canonicalized to
// lowercase.
const codeLength = 6

var (
	codeRe         = regexp.MustCompile(`^[0-9][a-z0-9]{5}$`)
	trailingCodeRe = regexp.MustCompile(`(?i)-([0-9][a-z0-9]{5})$`)
	folderNameRe   = regexp.MustCompile(`^(.*)\(([^()]+)\)\s*$`)
	nonAlnumRe     = regexp.MustCompile(`[^a-z0-9]+`)
)

const (
	codeDigits   = "0123456789"
	codeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// ResourceKind is one of the three reserved resource names. These words
// are forbidden as a bare slug base so a resource container can never be
// mistaken for a team.
type ResourceKind string

const (
	ResourceInitiatives ResourceKind = "initiatives"
	ResourcePriorities  ResourceKind = "priorities"
	ResourceCompleted   ResourceKind = "completed"
)

// ResourceKinds returns all reserved resource kinds.
func ResourceKinds() []ResourceKind {
	return []ResourceKind{ResourceInitiatives, ResourcePriorities, ResourceCompleted}
}

// ParseResourceKind matches a name against the reserved resource kinds,
// case-insensitively.
func ParseResourceKind(name string) (ResourceKind, bool) {
	for _, kind := range ResourceKinds() {
		if strings.EqualFold(name, string(kind)) {
			return kind, true
		}
	}
	return "", false
}

// Title returns the capitalized display title of the resource kind.
func (k ResourceKind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// IsReservedBase reports whether the base's leading hyphen segment is
// one of the reserved resource words. Resource folders put the reserved
// word first and may carry a path id after it, so "initiatives" and
// "initiatives-eng" are both reserved while "eng-initiatives" is not.
func IsReservedBase(base string) bool {
	first, _, _ := strings.Cut(base, "-")
	_, ok := ParseResourceKind(first)
	return ok
}

// Slugify normalizes a display name: lowercased, non-alphanumeric runs
// collapsed to single hyphens, leading and trailing hyphens trimmed.
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = nonAlnumRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// NewCode generates a fresh team code: a digit followed by five base-36
// lowercase characters.
func NewCode() string {
	b := make([]byte, codeLength)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(fmt.Sprintf("slug: reading random bytes: %v", err))
	}
	out := make([]byte, codeLength)
	out[0] = codeDigits[int(b[0])%len(codeDigits)]
	for i := 1; i < codeLength; i++ {
		out[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(out)
}

// IsValidCode reports whether s is a well-formed code in any casing.
func IsValidCode(s string) bool {
	return codeRe.MatchString(strings.ToLower(s))
}

// BuildTeamSlug produces "<base>[-<pathID>]-<code>" from a display name.
// A missing code is synthesized.
func BuildTeamSlug(name, code, pathID string) string {
	if code == "" {
		code = NewCode()
	}
	parts := []string{Slugify(name)}
	if pathID != "" {
		parts = append(parts, pathID)
	}
	parts = append(parts, strings.ToLower(code))
	return strings.Join(parts, "-")
}

// BuildOrgChildSlug builds the slug of a child positioned beneath an
// organization. The path segments are joined with hyphens before the code
// is appended; empty segments are filtered out.
func BuildOrgChildSlug(orgName, code string, segments ...string) string {
	var kept []string
	for _, seg := range segments {
		if seg != "" {
			kept = append(kept, seg)
		}
	}
	return BuildTeamSlug(orgName, code, strings.Join(kept, "-"))
}

// BuildFolderName renders the on-disk folder name for a display name and
// its slug.
func BuildFolderName(displayName, slug string) string {
	return fmt.Sprintf("%s (%s)", displayName, slug)
}

// ParseTeamFolderName decomposes "<Display Name> (<slug>)". Both parts
// must be non-empty after trimming and the slug must carry a valid
// trailing code; anything else reports ok=false. Malformed names are a
// recoverable condition, not an error.
func ParseTeamFolderName(name string) (displayName, slug string, ok bool) {
	m := folderNameRe.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	displayName = strings.TrimSpace(m[1])
	slug = strings.TrimSpace(m[2])
	if displayName == "" || slug == "" {
		return "", "", false
	}
	if _, ok := BaseCodeFromSlug(slug); !ok {
		return "", "", false
	}
	return displayName, slug, true
}

// IsTeamFolderName is a cheap grammar prefilter: the "(slug)" shape plus
// the trailing code pattern.
func IsTeamFolderName(name string) bool {
	m := folderNameRe.FindStringSubmatch(name)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return false
	}
	_, ok := BaseCodeFromSlug(strings.TrimSpace(m[2]))
	return ok
}

// BaseCodeFromSlug extracts the trailing six-character code, canonicalized
// to lowercase.
func BaseCodeFromSlug(slug string) (string, bool) {
	m := trailingCodeRe.FindStringSubmatch(slug)
	if m == nil {
		return "", false
	}
	return strings.ToLower(m[1]), true
}

// Base returns the slug with its trailing "-<code>" stripped, i.e. the
// base plus any path id. Slugs without a code are returned unchanged.
func Base(slug string) string {
	if loc := trailingCodeRe.FindStringIndex(slug); loc != nil {
		return slug[:loc[0]]
	}
	return slug
}

// PathIDFromSlug strips the trailing code and extracts the path id. When
// expectedBase is given, the remainder after "expectedBase-" is returned
// only on a strict prefix match; a remainder equal to expectedBase means
// the slug has no path id. Otherwise everything after the first
// hyphen-separated token is treated as the path id. An empty return means
// no path id.
func PathIDFromSlug(slug, expectedBase string) string {
	rest := Base(slug)
	if expectedBase != "" {
		if rest == expectedBase {
			return ""
		}
		if strings.HasPrefix(rest, expectedBase+"-") {
			return rest[len(expectedBase)+1:]
		}
	}
	if i := strings.Index(rest, "-"); i >= 0 {
		return rest[i+1:]
	}
	return ""
}

// BuildResourceFileName renders a reserved resource file name, e.g.
// "Priorities (priorities-a-1-4f8a1b).md".
func BuildResourceFileName(kind ResourceKind, code, pathID string) string {
	return fmt.Sprintf("%s (%s).md", kind.Title(), resourceSlug(kind, code, pathID))
}

// BuildResourceFolderName renders the reserved initiatives folder name.
func BuildResourceFolderName(code, pathID string) string {
	kind := ResourceInitiatives
	return fmt.Sprintf("%s (%s)", kind.Title(), resourceSlug(kind, code, pathID))
}

func resourceSlug(kind ResourceKind, code, pathID string) string {
	parts := []string{string(kind)}
	if pathID != "" {
		parts = append(parts, pathID)
	}
	parts = append(parts, strings.ToLower(code))
	return strings.Join(parts, "-")
}
