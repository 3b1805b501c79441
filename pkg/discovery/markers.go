package discovery

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/orgvault/orgvault/pkg/model"
)

// Member markers are inline HTML elements embedded in note content:
//
//	<span data-template-key="members.assignee"
//	      data-member-slug="jane-doe"
//	      data-member-type="teamMember">🧑 Jane Doe</span>
//
// Only the closed allow-list of marker types below is accepted; anything
// else is ignored rather than defaulted, since notes are user-authored.
const markerTemplateKey = "members.assignee"

var markerTypes = map[string]model.MemberType{
	"teamMember":         model.MemberTypeMember,
	"delegateTeamMember": model.MemberTypeInternalTeamMember,
	"delegateTeam":       model.MemberTypeTeam,
	"delegateExternal":   model.MemberTypeExternal,
}

// legacyMemberRe is the older textual marker form, "active-<alias>" or
// "inactive-<alias>", still present in long-lived vaults. The literal
// alias "team" is excluded.
var legacyMemberRe = regexp.MustCompile(`\b(?:active|inactive)-([a-z0-9][a-z0-9-]*)`)

type marker struct {
	alias       string
	displayName string
	memberType  model.MemberType
}

// extractMarkers parses the explicit HTML member markers from content, in
// document order. Markers with an unknown type or an empty alias are
// dropped.
func extractMarkers(content string) []marker {
	if !strings.Contains(content, markerTemplateKey) {
		return nil
	}
	z := html.NewTokenizer(strings.NewReader(content))
	var markers []marker
	for {
		switch z.Next() {
		case html.ErrorToken:
			return markers
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			m, ok := markerFromToken(tok)
			if !ok {
				continue
			}
			if tok.Type == html.StartTagToken {
				m.displayName = stripDecoration(innerText(z, tok.Data))
			}
			if m.displayName == "" {
				m.displayName = m.alias
			}
			markers = append(markers, m)
		}
	}
}

func markerFromToken(tok html.Token) (marker, bool) {
	var m marker
	var isMarker bool
	var rawType string
	for _, attr := range tok.Attr {
		switch attr.Key {
		case "data-template-key":
			isMarker = attr.Val == markerTemplateKey
		case "data-member-slug":
			m.alias = strings.TrimSpace(attr.Val)
		case "data-member-type":
			rawType = attr.Val
		}
	}
	if !isMarker || m.alias == "" {
		return marker{}, false
	}
	memberType, ok := markerTypes[rawType]
	if !ok {
		return marker{}, false
	}
	m.memberType = memberType
	return m, true
}

// innerText consumes tokens until the matching end tag and returns the
// concatenated text content.
func innerText(z *html.Tokenizer, tag string) string {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) == tag {
				depth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == tag {
				depth--
			}
		}
	}
	return sb.String()
}

// stripDecoration trims the leading symbol/emoji decoration off a display
// name.
func stripDecoration(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.TrimSpace(s)
}

// extractLegacyMarkers finds the legacy textual markers in content. The
// member type is inferred from the alias suffix.
func extractLegacyMarkers(content string) []marker {
	var markers []marker
	for _, m := range legacyMemberRe.FindAllStringSubmatch(content, -1) {
		alias := m[1]
		if alias == "team" {
			continue
		}
		markers = append(markers, marker{
			alias:       alias,
			displayName: alias,
			memberType:  model.InferMemberType(alias),
		})
	}
	return markers
}
