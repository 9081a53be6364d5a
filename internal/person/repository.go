package person

import (
	"context"
)

// Registry is the persistent table of library users.
//
// Lookups return (nil, nil) when no record matches; only storage failures
// produce an error.
type Registry interface {
	Create(ctx context.Context, dto *CreatePersonDTO) (*Person, error)
	FindByCitizenID(ctx context.Context, citizenID string) (*Person, error)
	FindByUsername(ctx context.Context, username string) (*Person, error)
	ListAll(ctx context.Context) ([]Person, error)
	NextSuffix(ctx context.Context, prefix string) (int, error)
	GenerateUsername(ctx context.Context, role Role, firstName string) (string, error)
}
