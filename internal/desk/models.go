package desk

import (
	"github.com/mehmetcc/libdesk/internal/library"
	"github.com/mehmetcc/libdesk/internal/person"
)

// Mode selects how the borrower's username is obtained.
type Mode string

const (
	ModeUsername  Mode = "username"
	ModeCitizenID Mode = "citizen_id"
	ModeCreate    Mode = "create"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeUsername, ModeCitizenID, ModeCreate:
		return true
	}
	return false
}

type ResolveRequest struct {
	Mode      Mode
	Username  string
	CitizenID string
	FirstName string
	Phone     string
	Role      string
}

type CheckRequest struct {
	LibraryID string
	ISBN      string
	ResolveRequest
}

// Resolution is the registry record behind a resolved username. Created is
// true only when this call registered the person.
type Resolution struct {
	Person  *person.Person
	Created bool
}

type Result struct {
	Resolution
	Checkout *library.Checkout
}
