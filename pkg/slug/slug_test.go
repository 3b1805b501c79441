package slug

import (
	"fmt"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Acme", "acme"},
		{"Acme Engineering", "acme-engineering"},
		{"  Acme -- Eng  ", "acme-eng"},
		{"Ops & Infra (EU)", "ops-infra-eu"},
		{"Widgets123", "widgets123"},
		{"---", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.name))
		})
	}
}

func TestNewCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := NewCode()
		assert.True(t, IsValidCode(code), "generated code %q is not valid", code)
	}
}

func TestIsValidCode(t *testing.T) {
	tests := []struct {
		code  string
		valid bool
	}{
		{"4f8a1b", true},
		{"0aaaaa", true},
		{"9ZZZZZ", true}, // case-insensitive on read
		{"f48a1b", false}, // first char must be a digit
		{"4f8a1", false},
		{"4f8a1bb", false},
		{"4f8a-b", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidCode(tt.code))
		})
	}
}

func TestBuildTeamSlug(t *testing.T) {
	assert.Equal(t, "acme-4f8a1b", BuildTeamSlug("Acme", "4f8a1b", ""))
	assert.Equal(t, "acme-a-1-4f8a1b", BuildTeamSlug("Acme", "4f8a1b", "a-1"))
	assert.Equal(t, "acme-eng-4f8a1b", BuildTeamSlug("Acme Eng", "4F8A1B", ""))

	// A missing code is synthesized.
	generated := BuildTeamSlug("Acme", "", "")
	code, ok := BaseCodeFromSlug(generated)
	assert.True(t, ok)
	assert.True(t, IsValidCode(code))
}

func TestBuildOrgChildSlug(t *testing.T) {
	tests := []struct {
		segments []string
		expected string
	}{
		{nil, "acme-4f8a1b"},
		{[]string{"a"}, "acme-a-4f8a1b"},
		{[]string{"a", "1"}, "acme-a-1-4f8a1b"},
		{[]string{"", "b", ""}, "acme-b-4f8a1b"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.segments), func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildOrgChildSlug("Acme", "4f8a1b", tt.segments...))
		})
	}
}

func TestParseTeamFolderName(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
		slug        string
		ok          bool
	}{
		{"Acme (acme-4f8a1b)", "Acme", "acme-4f8a1b", true},
		{"Acme Eng (acme-eng-4f8a1b)", "Acme Eng", "acme-eng-4f8a1b", true},
		{"Acme (acme-a-1-4f8a1b)", "Acme", "acme-a-1-4f8a1b", true},
		{"Acme", "", "", false},
		{"(acme-4f8a1b)", "", "", false},
		{"Acme ()", "", "", false},
		{"Acme (acme)", "", "", false},        // no trailing code
		{"Acme (acme-zf8a1b)", "", "", false}, // code must start with a digit
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			displayName, slug, ok := ParseTeamFolderName(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.displayName, displayName)
			assert.Equal(t, tt.slug, slug)
		})
	}
}

func TestParseTeamFolderNameRoundTrip(t *testing.T) {
	names := []string{"Acme", "Acme Eng", "Ops & Infra"}
	for _, name := range names {
		slug := BuildTeamSlug(name, "4f8a1b", "a-2")
		display, parsed, ok := ParseTeamFolderName(BuildFolderName(name, slug))
		assert.True(t, ok)
		assert.Equal(t, name, display)
		assert.Equal(t, slug, parsed)
	}
}

func TestIsTeamFolderName(t *testing.T) {
	assert.True(t, IsTeamFolderName("Acme (acme-4f8a1b)"))
	assert.True(t, IsTeamFolderName("Initiatives (initiatives-4f8a1b)"))
	assert.False(t, IsTeamFolderName("Docs"))
	assert.False(t, IsTeamFolderName("Acme (acme)"))
	assert.False(t, IsTeamFolderName("(acme-4f8a1b)"))
}

func TestBaseCodeFromSlug(t *testing.T) {
	tests := []struct {
		slug string
		code string
		ok   bool
	}{
		{"acme-4f8a1b", "4f8a1b", true},
		{"acme-eng-a-1-4f8a1b", "4f8a1b", true},
		{"acme-4F8A1B", "4f8a1b", true},
		{"acme", "", false},
		{"acme-zzzzzz", "", false},
		{"4f8a1b", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			code, ok := BaseCodeFromSlug(tt.slug)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestPathIDFromSlug(t *testing.T) {
	tests := []struct {
		slug         string
		expectedBase string
		pathID       string
	}{
		{"acme-4f8a1b", "acme", ""},
		{"acme-a-4f8a1b", "acme", "a"},
		{"acme-a-1-4f8a1b", "acme", "a-1"},
		{"acme-eng-4f8a1b", "acme-eng", ""},
		{"acme-eng-b-2-4f8a1b", "acme-eng", "b-2"},
		// Without an expected base everything after the first token is the path id.
		{"acme-a-1-4f8a1b", "", "a-1"},
		{"acme-4f8a1b", "", ""},
		// A non-matching expected base falls back to the first-token rule.
		{"acme-eng-4f8a1b", "widgets", "eng"},
	}

	for _, tt := range tests {
		t.Run(tt.slug+"/"+tt.expectedBase, func(t *testing.T) {
			assert.Equal(t, tt.pathID, PathIDFromSlug(tt.slug, tt.expectedBase))
		})
	}
}

func TestBuildTeamSlugRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		pathID string
	}{
		{"Acme", "4f8a1b", ""},
		{"Acme", "4f8a1b", "a"},
		{"Acme Eng", "9zz00a", "b-2-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.pathID, func(t *testing.T) {
			slug := BuildTeamSlug(tt.name, tt.code, tt.pathID)
			code, ok := BaseCodeFromSlug(slug)
			assert.True(t, ok)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.pathID, PathIDFromSlug(slug, Slugify(tt.name)))
		})
	}
}

func TestResourceNaming(t *testing.T) {
	assert.Equal(t, "Initiatives (initiatives-4f8a1b).md", BuildResourceFileName(ResourceInitiatives, "4f8a1b", ""))
	assert.Equal(t, "Priorities (priorities-a-1-4f8a1b).md", BuildResourceFileName(ResourcePriorities, "4f8a1b", "a-1"))
	assert.Equal(t, "Completed (completed-4f8a1b).md", BuildResourceFileName(ResourceCompleted, "4F8A1B", ""))
	assert.Equal(t, "Initiatives (initiatives-4f8a1b)", BuildResourceFolderName("4f8a1b", ""))
	assert.Equal(t, "Initiatives (initiatives-b-4f8a1b)", BuildResourceFolderName("4f8a1b", "b"))
}

func TestParseResourceKind(t *testing.T) {
	for _, kind := range ResourceKinds() {
		parsed, ok := ParseResourceKind(string(kind))
		assert.True(t, ok)
		assert.Equal(t, kind, parsed)
	}
	_, ok := ParseResourceKind("docs")
	assert.False(t, ok)
	assert.True(t, IsReservedBase("Initiatives"))
	assert.True(t, IsReservedBase("initiatives-eng"), "resource bases keep their path id")
	assert.False(t, IsReservedBase("eng-initiatives"))
	assert.False(t, IsReservedBase("acme"))
}
