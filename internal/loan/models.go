package loan

import "time"

type Kind string

const (
	KindCheckout Kind = "checkout"
	KindCheckin  Kind = "checkin"
)

// Entry is one successful remote checkout or check-in as seen by this desk.
type Entry struct {
	ID        int64      `json:"id"`
	Kind      Kind       `json:"kind"`
	LibraryID string     `json:"library_id"`
	ISBN      string     `json:"isbn"`
	Username  string     `json:"username"`
	RemoteID  string     `json:"remote_id,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
