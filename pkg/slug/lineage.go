package slug

import "strings"

// IsChildSlugOf reports whether childSlug is a structural descendant of
// parentSlug: both carry the same code and the child's base extends the
// parent's base by one or more hyphen-joined segments. The relation is a
// pure string predicate, so folder nesting can be audited against it as an
// independent signal.
func IsChildSlugOf(parentSlug, childSlug string) bool {
	parentCode, ok := BaseCodeFromSlug(parentSlug)
	if !ok {
		return false
	}
	childCode, ok := BaseCodeFromSlug(childSlug)
	if !ok {
		return false
	}
	if parentCode != childCode {
		return false
	}
	parentBase := strings.ToLower(Base(parentSlug))
	childBase := strings.ToLower(Base(childSlug))
	return childBase != parentBase && strings.HasPrefix(childBase, parentBase+"-")
}
