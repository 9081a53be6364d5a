package loan

import (
	"context"
	"database/sql"

	"go.uber.org/zap"
)

type Repo interface {
	Record(ctx context.Context, e Entry) (int64, error)
	ListByUsername(ctx context.Context, username string) ([]Entry, error)
}

const (
	recordLoanQuery = `
						INSERT INTO loans (kind, library_id, isbn, username, remote_id, due_date)
						VALUES ($1, $2, $3, $4, $5, $6)
						RETURNING id
						`
	listByUsernameQuery = `
						SELECT id, kind, library_id, isbn, username, remote_id, due_date, created_at
						FROM loans
						WHERE username = $1
						ORDER BY created_at DESC, id DESC
						`
)

type loanRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRepo(db *sql.DB, logger *zap.Logger) Repo {
	return &loanRepo{db: db, logger: logger}
}

func (r *loanRepo) Record(ctx context.Context, e Entry) (int64, error) {
	var due sql.NullTime
	if e.DueDate != nil {
		due = sql.NullTime{Time: *e.DueDate, Valid: true}
	}

	var id int64
	err := r.db.QueryRowContext(ctx, recordLoanQuery,
		string(e.Kind),
		e.LibraryID,
		e.ISBN,
		e.Username,
		e.RemoteID,
		due,
	).Scan(&id)
	if err != nil {
		r.logger.Error("failed to record loan", zap.String("kind", string(e.Kind)), zap.Error(err))
		return 0, err
	}
	return id, nil
}

func (r *loanRepo) ListByUsername(ctx context.Context, username string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, listByUsernameQuery, username)
	if err != nil {
		r.logger.Error("failed to list loans", zap.String("username", username), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e    Entry
			kind string
			due  sql.NullTime
		)
		if err := rows.Scan(&e.ID, &kind, &e.LibraryID, &e.ISBN, &e.Username, &e.RemoteID, &due, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = Kind(kind)
		if due.Valid {
			t := due.Time
			e.DueDate = &t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
