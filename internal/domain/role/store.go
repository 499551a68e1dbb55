package role

import "context"

// Store is the persistence port for the role collection. The collection is
// read once at startup and rewritten wholesale after every successful
// mutation; there is no incremental write.
type Store interface {
	// Load returns the persisted collection keyed by role id. An absent
	// store yields an empty map and no error; a corrupt store returns an
	// error and the caller fails open to the seeded default.
	Load(ctx context.Context) (map[string]*Role, error)

	// Save replaces the persisted collection with the given one.
	Save(ctx context.Context, roles map[string]*Role) error
}
