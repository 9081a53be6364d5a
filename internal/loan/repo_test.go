package loan

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, Repo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return db, mock, NewRepo(db, zap.NewNop())
}

func TestRecord_WithDueDate(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	due := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO loans`).
		WithArgs("checkout", "lib-1", "9780306406157", "UserClientAna1", "42", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	id, err := repo.Record(context.Background(), Entry{
		Kind:      KindCheckout,
		LibraryID: "lib-1",
		ISBN:      "9780306406157",
		Username:  "UserClientAna1",
		RemoteID:  "42",
		DueDate:   &due,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_Error(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	boom := errors.New("disk full")
	mock.ExpectQuery(`INSERT INTO loans`).WillReturnError(boom)

	_, err := repo.Record(context.Background(), Entry{Kind: KindCheckin})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUsername(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "kind", "library_id", "isbn", "username", "remote_id", "due_date", "created_at"}).
		AddRow(int64(2), "checkin", "lib-1", "9780306406157", "UserClientAna1", "42", nil, now).
		AddRow(int64(1), "checkout", "lib-1", "9780306406157", "UserClientAna1", "42", now.Add(14*24*time.Hour), now)
	mock.ExpectQuery(`FROM loans`).
		WithArgs("UserClientAna1").
		WillReturnRows(rows)

	entries, err := repo.ListByUsername(context.Background(), "UserClientAna1")

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, KindCheckin, entries[0].Kind)
	assert.Nil(t, entries[0].DueDate)
	assert.Equal(t, KindCheckout, entries[1].Kind)
	require.NotNil(t, entries[1].DueDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
