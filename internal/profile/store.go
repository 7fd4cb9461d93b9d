package profile

import (
	"context"
)

// Store persists profiles, routed by role into two collections.
//
// Implementations must normalize the base email (lowercase, trimmed), set
// UpdatedAt on every write, and set CreatedAt only on the first write for an
// id, preserving the stored value on rewrites. Failures are reported as
// *StoreError except for the ErrNotFound sentinel on reads.
type Store interface {
	// Upsert writes the profile into the partition matching its role.
	Upsert(ctx context.Context, p Profile) error

	// Get retrieves a profile by id from the partition for the known role.
	Get(ctx context.Context, id string, role Role) (Profile, error)
}
