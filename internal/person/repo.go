package person

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// usernameLockKey is the advisory lock taken while a username is allocated.
// Prefixes can overlap ("UserClientAna" vs "UserClientAna1"), so a single key
// serialises all allocations instead of one key per prefix.
const usernameLockKey int64 = 0x6c696264657301

const (
	lockUsernamesQuery = `
						SELECT pg_advisory_xact_lock($1)
						`
	insertUserQuery = `
						INSERT INTO users (citizen_id, first_name, phone, role, username)
						VALUES ($1, $2, $3, $4, $5)
						RETURNING id, created_at
						`
	selectUserColumns = `
						SELECT id, citizen_id, first_name, phone, role, username, created_at
						FROM users
						`
	findByCitizenIDQuery = selectUserColumns + `WHERE citizen_id = $1`
	findByUsernameQuery  = selectUserColumns + `WHERE username = $1`
	listAllQuery         = selectUserColumns + `ORDER BY id`
	usernamesByPrefix    = `
						SELECT username FROM users WHERE username LIKE $1
						`
)

const (
	citizenIDConstraint = "users_citizen_id_key"
	usernameConstraint  = "users_username_key"
)

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type registry struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRegistry wires the registry to an already opened database handle. The
// caller owns the handle and closes it on shutdown.
func NewRegistry(db *sql.DB, logger *zap.Logger) Registry {
	return &registry{
		db:     db,
		logger: logger,
	}
}

// Create registers a new person. Citizen id uniqueness is checked here and the
// username is allocated in the same transaction under an advisory lock, so two
// concurrent registrations cannot compute the same suffix.
func (r *registry) Create(ctx context.Context, dto *CreatePersonDTO) (*Person, error) {
	p := &Person{
		CitizenID: strings.TrimSpace(dto.CitizenID),
		FirstName: strings.TrimSpace(dto.FirstName),
		Phone:     strings.TrimSpace(dto.Phone),
		Role:      NormalizeRole(dto.Role),
	}
	switch {
	case p.CitizenID == "":
		return nil, fmt.Errorf("%w: citizen_id", ErrMissingField)
	case p.FirstName == "":
		return nil, fmt.Errorf("%w: first_name", ErrMissingField)
	case p.Phone == "":
		return nil, fmt.Errorf("%w: phone", ErrMissingField)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("failed to begin registration", zap.Error(err))
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, lockUsernamesQuery, usernameLockKey); err != nil {
		r.logger.Error("failed to lock username allocation", zap.Error(err))
		return nil, err
	}

	existing, err := r.findOne(ctx, tx, findByCitizenIDQuery, p.CitizenID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		r.logger.Debug("duplicate citizen id", zap.String("username", existing.Username))
		return nil, ErrDuplicateCitizenID
	}

	prefix := BuildPrefix(p.Role, p.FirstName)
	suffix, err := r.nextSuffix(ctx, tx, prefix)
	if err != nil {
		return nil, err
	}
	p.Username = FormatUsername(prefix, suffix)

	row := tx.QueryRowContext(ctx, insertUserQuery,
		p.CitizenID,
		p.FirstName,
		p.Phone,
		p.Role,
		p.Username,
	)
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return nil, r.mapInsertError(err, p)
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("failed to commit registration", zap.Error(err))
		return nil, r.mapInsertError(err, p)
	}

	r.logger.Debug("person created",
		zap.Int64("id", p.ID),
		zap.String("username", p.Username),
		zap.String("role", p.Role.String()),
	)
	return p, nil
}

func (r *registry) mapInsertError(err error, p *Person) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		r.logger.Warn("create person canceled/timed out", zap.Error(err))
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgerrcode.UniqueViolation {
			switch pgErr.ConstraintName {
			case citizenIDConstraint:
				r.logger.Debug("duplicate citizen id (constraint)")
				return ErrDuplicateCitizenID
			case usernameConstraint:
				r.logger.Debug("duplicate username (constraint)", zap.String("username", p.Username))
				return ErrDuplicateUsername
			}
			det := strings.ToLower(pgErr.Detail)
			if strings.Contains(det, "(citizen_id)") {
				return ErrDuplicateCitizenID
			}
			if strings.Contains(det, "(username)") {
				return ErrDuplicateUsername
			}
		}
		r.logger.Error("postgres error",
			zap.String("code", pgErr.Code),
			zap.String("msg", pgErr.Message),
			zap.String("detail", pgErr.Detail),
		)
		return err
	}

	r.logger.Error("driver/scan error", zap.Error(err))
	return err
}

func (r *registry) FindByCitizenID(ctx context.Context, citizenID string) (*Person, error) {
	return r.findOne(ctx, r.db, findByCitizenIDQuery, citizenID)
}

func (r *registry) FindByUsername(ctx context.Context, username string) (*Person, error) {
	return r.findOne(ctx, r.db, findByUsernameQuery, username)
}

func (r *registry) findOne(ctx context.Context, q queryer, query string, arg string) (*Person, error) {
	p, err := scanPerson(q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to lookup person", zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *registry) ListAll(ctx context.Context) ([]Person, error) {
	rows, err := r.db.QueryContext(ctx, listAllQuery)
	if err != nil {
		r.logger.Error("failed to list persons", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			r.logger.Error("failed to scan person", zap.Error(err))
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// NextSuffix reads outside any transaction; Create does its own locked read.
func (r *registry) NextSuffix(ctx context.Context, prefix string) (int, error) {
	return r.nextSuffix(ctx, r.db, prefix)
}

func (r *registry) GenerateUsername(ctx context.Context, role Role, firstName string) (string, error) {
	prefix := BuildPrefix(role, firstName)
	n, err := r.NextSuffix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return FormatUsername(prefix, n), nil
}

// prefix is built from letters and digits only, so it never carries LIKE
// metacharacters.
func (r *registry) nextSuffix(ctx context.Context, q queryer, prefix string) (int, error) {
	rows, err := q.QueryContext(ctx, usernamesByPrefix, prefix+"%")
	if err != nil {
		r.logger.Error("failed to scan usernames", zap.String("prefix", prefix), zap.Error(err))
		return 0, err
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return 0, err
		}
		usernames = append(usernames, u)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	return NextSuffix(prefix, usernames), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (*Person, error) {
	var (
		p    Person
		role string
	)
	if err := row.Scan(&p.ID, &p.CitizenID, &p.FirstName, &p.Phone, &role, &p.Username, &p.CreatedAt); err != nil {
		return nil, err
	}
	parsed, err := ParseRole(role)
	if err != nil {
		return nil, err
	}
	p.Role = parsed
	return &p, nil
}
