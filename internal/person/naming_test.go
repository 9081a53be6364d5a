package person

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"admin", RoleAdmin},
		{"  ADMIN ", RoleAdmin},
		{"Admin", RoleAdmin},
		{"librarian", RoleLibrarian},
		{"\tLibRarian\n", RoleLibrarian},
		{"client", RoleClient},
		{"", RoleClient},
		{"guest", RoleClient},
		{"admins", RoleClient},
		{"lib rarian", RoleClient},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeRole(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeRole_AlwaysValid(t *testing.T) {
	for _, in := range []string{"", "x", "ADMIN", "Librarian", "ädmin", "root"} {
		assert.True(t, NormalizeRole(in).Valid(), "input %q", in)
	}
}

func TestCleanNamePart(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"João!", "João"},
		{"Ana-Maria", "AnaMaria"},
		{"  o'Neil 2nd ", "oNeil2nd"},
		{"Zoë", "Zoë"},
		{"Çağla", "Çala"},
		{"a×b÷c", "abc"},
		{"", ""},
		{"!!!", ""},
		{"李雷", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanNamePart(tt.in), "input %q", tt.in)
	}
}

func TestCleanNamePart_ComposesDecomposedAccents(t *testing.T) {
	// "Joa" + U+0303 combining tilde + "o"
	assert.Equal(t, "Jo\u00e3o", CleanNamePart("Joa\u0303o"))
}

func TestCleanNamePart_OnlyAllowedRunes(t *testing.T) {
	out := CleanNamePart("Hé\x00llo, wörld_42 ~ ØÞß")
	for _, r := range out {
		assert.True(t, isNameRune(r), "unexpected rune %q", r)
	}
	assert.Equal(t, "Héllowörld42ØÞß", out)
}

func TestBuildPrefix(t *testing.T) {
	assert.Equal(t, "UserLibrarianJoão", BuildPrefix(RoleLibrarian, "João!"))
	assert.Equal(t, "UserClient", BuildPrefix(RoleClient, ""))
	assert.Equal(t, BuildPrefix(RoleAdmin, "Ana"), BuildPrefix(RoleAdmin, "Ana"))
}

func TestSuffixOf(t *testing.T) {
	n, ok := SuffixOf("UserClientAna", "UserClientAna12")
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = SuffixOf("UserClientAna", "UserClientAnabela1")
	assert.False(t, ok)

	_, ok = SuffixOf("UserClientAna", "UserClientAna")
	assert.False(t, ok)

	_, ok = SuffixOf("UserClientAna", "UserAdminAna1")
	assert.False(t, ok)

	_, ok = SuffixOf("UserClientAna", "UserClientAna1x")
	assert.False(t, ok)
}

func TestNextSuffix(t *testing.T) {
	prefix := "UserClientAna"

	assert.Equal(t, 1, NextSuffix(prefix, nil))
	assert.Equal(t, 5, NextSuffix(prefix, []string{"UserClientAna1", "UserClientAna2", "UserClientAna4"}))
	assert.Equal(t, 2, NextSuffix(prefix, []string{"UserClientAna1", "UserClientAnabela7"}))
	assert.Equal(t, 1, NextSuffix(prefix, []string{"UserClientAnabela7"}))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("Librarian")
	assert.NoError(t, err)
	assert.Equal(t, RoleLibrarian, r)

	_, err = ParseRole("librarian")
	assert.ErrorIs(t, err, ErrInvalidRole)
}
