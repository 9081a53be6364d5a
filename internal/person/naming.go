package person

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const usernamePrefix = "User"

// NormalizeRole maps free-form role input onto the closed role set.
// Unrecognised or empty input falls back to RoleClient.
func NormalizeRole(input string) Role {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "admin":
		return RoleAdmin
	case "librarian":
		return RoleLibrarian
	default:
		return RoleClient
	}
}

// CleanNamePart keeps ASCII letters, digits and Latin-1 accented letters.
// Input is NFC-normalised first so that decomposed accents survive as a
// single letter instead of being dropped as a combining mark.
func CleanNamePart(input string) string {
	if input == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range norm.NFC.String(input) {
		if isNameRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == 0xD7 || r == 0xF7: // × and ÷
		return false
	case r >= 0xC0 && r <= 0xFF:
		return true
	}
	return false
}

// BuildPrefix returns the non-numeric part of a generated username.
func BuildPrefix(role Role, firstName string) string {
	return usernamePrefix + string(role) + CleanNamePart(firstName)
}

// SuffixOf extracts the numeric suffix of username relative to prefix. Only a
// non-empty run of ASCII digits counts.
func SuffixOf(prefix, username string) (int, bool) {
	rest, ok := strings.CutPrefix(username, prefix)
	if !ok || rest == "" {
		return 0, false
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextSuffix returns max(suffix)+1 over usernames sharing prefix, or 1.
// Gaps are never reused.
func NextSuffix(prefix string, usernames []string) int {
	highest := 0
	for _, u := range usernames {
		if n, ok := SuffixOf(prefix, u); ok && n > highest {
			highest = n
		}
	}
	return highest + 1
}

func FormatUsername(prefix string, suffix int) string {
	return prefix + strconv.Itoa(suffix)
}
