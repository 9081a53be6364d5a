package desk

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/mehmetcc/libdesk/internal/library"
	"github.com/mehmetcc/libdesk/internal/loan"
	"github.com/mehmetcc/libdesk/internal/person"
)

// memRegistry is an in-memory person.Registry following the same naming
// rules as the SQL one.
type memRegistry struct {
	mu     sync.Mutex
	people []person.Person
	calls  int

	// createErr, when set, is returned once by Create after inserting the
	// optional raced record.
	createErr error
	raced     *person.Person
}

func (m *memRegistry) Create(ctx context.Context, dto *person.CreatePersonDTO) (*person.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.createErr != nil {
		err := m.createErr
		m.createErr = nil
		if m.raced != nil {
			m.people = append(m.people, *m.raced)
		}
		return nil, err
	}
	for _, p := range m.people {
		if p.CitizenID == dto.CitizenID {
			return nil, person.ErrDuplicateCitizenID
		}
	}
	role := person.NormalizeRole(dto.Role)
	prefix := person.BuildPrefix(role, dto.FirstName)
	p := person.Person{
		ID:        int64(len(m.people) + 1),
		CitizenID: dto.CitizenID,
		FirstName: dto.FirstName,
		Phone:     dto.Phone,
		Role:      role,
		Username:  person.FormatUsername(prefix, person.NextSuffix(prefix, m.usernames())),
	}
	m.people = append(m.people, p)
	return &p, nil
}

func (m *memRegistry) usernames() []string {
	out := make([]string, 0, len(m.people))
	for _, p := range m.people {
		out = append(out, p.Username)
	}
	return out
}

func (m *memRegistry) FindByCitizenID(ctx context.Context, citizenID string) (*person.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.people {
		if p.CitizenID == citizenID {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memRegistry) FindByUsername(ctx context.Context, username string) (*person.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.people {
		if p.Username == username {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memRegistry) ListAll(ctx context.Context) ([]person.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]person.Person(nil), m.people...), nil
}

func (m *memRegistry) NextSuffix(ctx context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return person.NextSuffix(prefix, m.usernames()), nil
}

func (m *memRegistry) GenerateUsername(ctx context.Context, role person.Role, firstName string) (string, error) {
	prefix := person.BuildPrefix(role, firstName)
	n, err := m.NextSuffix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return person.FormatUsername(prefix, n), nil
}

type loanCall struct {
	kind      string
	libraryID string
	isbn      string
	username  string
}

// fakeAPI implements library.API; only the loan calls do anything.
type fakeAPI struct {
	library.API
	calls []loanCall
	err   error
}

func (f *fakeAPI) CheckOut(ctx context.Context, libraryID, isbn, username string) (*library.Checkout, error) {
	return f.record("checkout", libraryID, isbn, username)
}

func (f *fakeAPI) CheckIn(ctx context.Context, libraryID, isbn, username string) (*library.Checkout, error) {
	return f.record("checkin", libraryID, isbn, username)
}

func (f *fakeAPI) record(kind, libraryID, isbn, username string) (*library.Checkout, error) {
	f.calls = append(f.calls, loanCall{kind, libraryID, isbn, username})
	if f.err != nil {
		return nil, f.err
	}
	return &library.Checkout{
		ID:      library.ID(strings.ToUpper(kind[:1]) + "1"),
		DueDate: "2026-11-02",
		Book:    library.Book{ISBN: isbn},
	}, nil
}

type fakeLoans struct {
	entries []loan.Entry
	err     error
}

func (f *fakeLoans) Record(ctx context.Context, e loan.Entry) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.entries = append(f.entries, e)
	return int64(len(f.entries)), nil
}

func (f *fakeLoans) ListByUsername(ctx context.Context, username string) ([]loan.Entry, error) {
	var out []loan.Entry
	for _, e := range f.entries {
		if e.Username == username {
			out = append(out, e)
		}
	}
	return out, nil
}

var errBoom = errors.New("boom")
