package person

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var personColumns = []string{"id", "citizen_id", "first_name", "phone", "role", "username", "created_at"}

func setupMockRegistry(t *testing.T) (*sql.DB, sqlmock.Sqlmock, Registry) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return db, mock, NewRegistry(db, zap.NewNop())
}

func expectLockAndCitizenMiss(mock sqlmock.Sqlmock, citizenID string) {
	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).
		WithArgs(usernameLockKey).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`WHERE citizen_id`).
		WithArgs(citizenID).
		WillReturnRows(sqlmock.NewRows(personColumns))
}

func TestCreate_Success(t *testing.T) {
	db, mock, reg := setupMockRegistry(t)
	defer db.Close()

	now := time.Now().UTC()
	expectLockAndCitizenMiss(mock, "123")
	mock.ExpectQuery(`SELECT username FROM users WHERE username LIKE`).
		WithArgs("UserLibrarianJoão%").
		WillReturnRows(sqlmock.NewRows([]string{"username"}))
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("123", "João!", "911", "Librarian", "UserLibrarianJoão1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now))
	mock.ExpectCommit()

	p, err := reg.Create(context.Background(), &CreatePersonDTO{
		CitizenID: " 123 ",
		FirstName: "João!",
		Phone:     "911",
		Role:      "librarian",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, "123", p.CitizenID)
	assert.Equal(t, "João!", p.FirstName)
	assert.Equal(t, "911", p.Phone)
	assert.Equal(t, RoleLibrarian, p.Role)
	assert.Equal(t, "UserLibrarianJoão1", p.Username)
	assert.Equal(t, now, p.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_SkipsGapsInSuffixes(t *testing.T) {
	db, mock, reg := setupMockRegistry(t)
	defer db.Close()

	expectLockAndCitizenMiss(mock, "555")
	mock.ExpectQuery(`SELECT username FROM users WHERE username LIKE`).
		WithArgs("UserClientAna%").
		WillReturnRows(sqlmock.NewRows([]string{"username"}).
			AddRow("UserClientAna1").
			AddRow("UserClientAna2").
			AddRow("UserClientAna4").
			AddRow("UserClientAnabela9"))
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("555", "Ana", "912", "Client", "UserClientAna5").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), time.Now()))
	mock.ExpectCommit()

	p, err := reg.Create(context.Background(), &CreatePersonDTO{
		CitizenID: "555",
		FirstName: "Ana",
		Phone:     "912",
		Role:      "guest",
	})

	require.NoError(t, err)
	assert.Equal(t, "UserClientAna5", p.Username)
	assert.Equal(t, RoleClient, p.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateCitizenIDRejected(t *testing.T) {
	db, mock, reg := setupMockRegistry(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).
		WithArgs(usernameLockKey).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`WHERE citizen_id`).
		WithArgs("123").
		WillReturnRows(sqlmock.NewRows(personColumns).
			AddRow(int64(1), "123", "João", "911", "Librarian", "UserLibrarianJoão1", time.Now()))
	mock.ExpectRollback()

	p, err := reg.Create(context.Background(), &CreatePersonDTO{
		CitizenID: "123",
		FirstName: "Other",
		Phone:     "000",
	})

	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrDuplicateCitizenID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UniqueViolationMapped(t *testing.T) {
	tests := []struct {
		name    string
		pgErr   *pgconn.PgError
		wantErr error
	}{
		{
			name:    "username constraint",
			pgErr:   &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: usernameConstraint},
			wantErr: ErrDuplicateUsername,
		},
		{
			name:    "citizen id constraint",
			pgErr:   &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: citizenIDConstraint},
			wantErr: ErrDuplicateCitizenID,
		},
		{
			name:    "citizen id detail",
			pgErr:   &pgconn.PgError{Code: pgerrcode.UniqueViolation, Detail: "Key (citizen_id)=(9) already exists."},
			wantErr: ErrDuplicateCitizenID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, reg := setupMockRegistry(t)
			defer db.Close()

			expectLockAndCitizenMiss(mock, "9")
			mock.ExpectQuery(`SELECT username FROM users WHERE username LIKE`).
				WithArgs("UserAdminBo%").
				WillReturnRows(sqlmock.NewRows([]string{"username"}))
			mock.ExpectQuery(`INSERT INTO users`).
				WillReturnError(tt.pgErr)
			mock.ExpectRollback()

			_, err := reg.Create(context.Background(), &CreatePersonDTO{
				CitizenID: "9",
				FirstName: "Bo",
				Phone:     "1",
				Role:      "ADMIN",
			})

			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreate_OtherStorageErrorPassesThrough(t *testing.T) {
	db, mock, reg := setupMockRegistry(t)
	defer db.Close()

	boom := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).WillReturnError(boom)
	mock.ExpectRollback()

	_, err := reg.Create(context.Background(), &CreatePersonDTO{CitizenID: "1", FirstName: "A", Phone: "2"})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_MissingFields(t *testing.T) {
	db, mock, reg := setupMockRegistry(t)
	defer db.Close()

	for _, dto := range []*CreatePersonDTO{
		{FirstName: "A", Phone: "1"},
		{CitizenID: "1", Phone: "1"},
		{CitizenID: "1", FirstName: "  "},
	} {
		_, err := reg.Create(context.Background(), dto)
		assert.ErrorIs(t, err, ErrMissingField)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByUsername_NotFound(t *testing.T) {
	db, mock, reg := setupMockRegistry(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE username`).
		WithArgs("UserClientAna3").
		WillReturnRows(sqlmock.NewRows(personColumns))

	p, err := reg.FindByUsername(context.Background(), "UserClientAna3")

	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByCitizenID_Found(t *testing.T) {
	db, mock, reg := setupMockRegistry(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE citizen_id`).
		WithArgs("123").
		WillReturnRows(sqlmock.NewRows(personColumns).
			AddRow(int64(4), "123", "João!", "911", "Librarian", "UserLibrarianJoão1", time.Now()))

	p, err := reg.FindByCitizenID(context.Background(), "123")

	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "123", p.CitizenID)
	assert.Equal(t, RoleLibrarian, p.Role)
	assert.Equal(t, "UserLibrarianJoão1", p.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByCitizenID_CorruptRole(t *testing.T) {
	db, mock, reg := setupMockRegistry(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE citizen_id`).
		WithArgs("123").
		WillReturnRows(sqlmock.NewRows(personColumns).
			AddRow(int64(4), "123", "X", "911", "root", "UserrootX1", time.Now()))

	_, err := reg.FindByCitizenID(context.Background(), "123")

	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestListAll(t *testing.T) {
	db, mock, reg := setupMockRegistry(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(personColumns).
			AddRow(int64(1), "1", "Ana", "9", "Client", "UserClientAna1", now).
			AddRow(int64(2), "2", "Rui", "8", "Admin", "UserAdminRui1", now))

	all, err := reg.ListAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "UserAdminRui1", all[1].Username)
	assert.Equal(t, RoleAdmin, all[1].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateUsername(t *testing.T) {
	db, mock, reg := setupMockRegistry(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT username FROM users WHERE username LIKE`).
		WithArgs("UserClientAna%").
		WillReturnRows(sqlmock.NewRows([]string{"username"}))
	mock.ExpectQuery(`SELECT username FROM users WHERE username LIKE`).
		WithArgs("UserClientAna%").
		WillReturnRows(sqlmock.NewRows([]string{"username"}).
			AddRow("UserClientAna1").
			AddRow("UserClientAna2").
			AddRow("UserClientAna4"))

	first, err := reg.GenerateUsername(context.Background(), RoleClient, "Ana")
	require.NoError(t, err)
	assert.Equal(t, "UserClientAna1", first)

	next, err := reg.GenerateUsername(context.Background(), RoleClient, "Ana")
	require.NoError(t, err)
	assert.Equal(t, "UserClientAna5", next)
	assert.NoError(t, mock.ExpectationsWereMet())
}
