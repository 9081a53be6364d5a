package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_MigrationsAreIdempotentDDL(t *testing.T) {
	files, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	require.Len(t, files, 2)

	for _, name := range files {
		b, err := FS.ReadFile(name)
		require.NoError(t, err)
		body := string(b)
		assert.Contains(t, body, "-- +goose Up", name)
		assert.Contains(t, body, "-- +goose Down", name)
		for _, line := range strings.Split(body, "\n") {
			if strings.HasPrefix(line, "CREATE ") {
				assert.Contains(t, line, "IF NOT EXISTS", "%s: %s", name, line)
			}
		}
	}
}

func TestFS_UsersConstraints(t *testing.T) {
	b, err := FS.ReadFile("00001_create_users.sql")
	require.NoError(t, err)
	body := string(b)

	assert.Contains(t, body, "CONSTRAINT users_citizen_id_key UNIQUE (citizen_id)")
	assert.Contains(t, body, "CONSTRAINT users_username_key UNIQUE (username)")
	assert.Contains(t, body, "CHECK (role IN ('Admin', 'Librarian', 'Client'))")
	assert.Contains(t, body, "ON users (role, first_name)")
}
