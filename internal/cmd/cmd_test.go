package cmd

import (
	"testing"

	"github.com/mehmetcc/libdesk/internal/desk"
	"github.com/mehmetcc/libdesk/internal/person"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestISBNCheck(t *testing.T) {
	require.NoError(t, runISBNCheck(isbnCheckCmd, []string{"978-0-306-40615-7"}))
	assert.Error(t, runISBNCheck(isbnCheckCmd, []string{"9780306406157", "9780306406158"}))
}

func TestBorrower(t *testing.T) {
	t.Cleanup(func() {
		loanUsername, loanCitizenID, loanCreate = "", "", false
	})

	loanUsername = "UserClientAna1"
	assert.Equal(t, desk.ModeUsername, borrower().Mode)

	loanUsername, loanCitizenID = "", "555"
	assert.Equal(t, desk.ModeCitizenID, borrower().Mode)

	loanCreate, loanFirstName, loanPhone = true, "Ana", "912"
	req := borrower()
	assert.Equal(t, desk.ModeCreate, req.Mode)
	assert.Equal(t, "555", req.CitizenID)
	assert.Equal(t, "Ana", req.FirstName)
}

func TestIsStaff(t *testing.T) {
	assert.True(t, isStaff(person.RoleAdmin))
	assert.True(t, isStaff(person.RoleLibrarian))
	assert.False(t, isStaff(person.RoleClient))
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"serve"},
		{"migrate", "status"},
		{"users", "list"},
		{"users", "find"},
		{"users", "add"},
		{"users", "export"},
		{"checkout"},
		{"checkin"},
		{"loans"},
		{"libraries"},
		{"book"},
		{"token", "issue"},
		{"isbn", "check"},
	} {
		c, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], c.Name())
	}
}
