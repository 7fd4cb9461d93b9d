package profile

import (
	"context"
	"errors"
)

// Resolution is the outcome of an identity-to-profile lookup.
type Resolution struct {
	Exists bool
	Role   Role // meaningful only when Exists is true
}

// Resolver determines whether a profile already exists for an identity id
// and, if so, which role it belongs to. Read-only.
type Resolver interface {
	Lookup(ctx context.Context, id string) (Resolution, error)
}

// StoreResolver resolves by probing both role partitions of a Store.
type StoreResolver struct {
	store Store
}

// NewStoreResolver creates a resolver backed by the given store.
func NewStoreResolver(store Store) *StoreResolver {
	return &StoreResolver{store: store}
}

// Lookup checks both partitions for the id. An id present in both is a
// data-corruption scenario and surfaces as ErrProfileConflict.
func (r *StoreResolver) Lookup(ctx context.Context, id string) (Resolution, error) {
	var found []Role
	for _, role := range []Role{RoleDeveloper, RoleRecruiter} {
		_, err := r.store.Get(ctx, id, role)
		switch {
		case err == nil:
			found = append(found, role)
		case errors.Is(err, ErrNotFound):
			continue
		default:
			return Resolution{}, err
		}
	}

	switch len(found) {
	case 0:
		return Resolution{Exists: false}, nil
	case 1:
		return Resolution{Exists: true, Role: found[0]}, nil
	default:
		return Resolution{}, ErrProfileConflict
	}
}

// Compile-time interface check
var _ Resolver = (*StoreResolver)(nil)
