package ports

import (
	"context"

	"github.com/aretw0/twentyfive/pkg/domain"
)

// StateStore defines the interface for persisting instance state.
// Implementations must not retain the pointer passed to Save nor hand out
// pointers to their internal copies from Load.
type StateStore interface {
	// Save persists the state for a given instance ID, replacing any prior value.
	Save(ctx context.Context, instanceID string, inst *domain.Instance) error

	// Load retrieves the state for a given instance ID.
	// Returns domain.ErrInstanceNotFound if the instance does not exist.
	Load(ctx context.Context, instanceID string) (*domain.Instance, error)

	// Delete removes the state for a given instance ID.
	// Deleting a missing instance is not an error.
	Delete(ctx context.Context, instanceID string) error

	// List returns the IDs of all stored instances.
	List(ctx context.Context) ([]string, error)
}
