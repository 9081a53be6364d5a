package person

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleLibrarian Role = "Librarian"
	RoleClient    Role = "Client"
)

var Roles = []Role{RoleClient, RoleLibrarian, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleLibrarian, RoleClient:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole is the strict counterpart of NormalizeRole, used when reading
// stored rows back: anything outside the closed set is corruption.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Person is one registered library user. Records are created once and never
// updated or deleted by the registry.
type Person struct {
	ID        int64     `json:"id" db:"id"`
	CitizenID string    `json:"citizen_id" db:"citizen_id"`
	FirstName string    `json:"first_name" db:"first_name"`
	Phone     string    `json:"phone" db:"phone"`
	Role      Role      `json:"role" db:"role"`
	Username  string    `json:"username" db:"username"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreatePersonDTO is the raw registration input. Role is untrusted and goes
// through NormalizeRole before it reaches storage.
type CreatePersonDTO struct {
	CitizenID string
	FirstName string
	Phone     string
	Role      string
}
