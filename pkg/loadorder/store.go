package loadorder

import (
	"context"

	"github.com/google/uuid"
)

// Profile identifies one persisted load-order namespace. Refreshes are
// guarded by profile: a refresh for a profile other than the active one is
// discarded.
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewProfile mints a profile with a fresh unique id.
func NewProfile(name string) Profile {
	return Profile{ID: uuid.NewString(), Name: name}
}

// Store persists per-profile load orders on behalf of the host.
type Store interface {
	// Get retrieves the load order for a profile.
	// Returns nil, nil when no order has been persisted yet.
	Get(ctx context.Context, profileID string) (LoadOrder, error)

	// Set stores the load order for a profile, replacing any previous one.
	Set(ctx context.Context, profileID string, order LoadOrder) error

	// Delete removes a profile's load order.
	Delete(ctx context.Context, profileID string) error
}
