package domain

import "context"

// RecordStore is the opaque keyed document store holding saved movies.
// Every operation is scoped to a per-user partition key.
type RecordStore interface {
	// ListAll returns the scope's records in insertion order.
	ListAll(ctx context.Context, scope string) ([]MovieRecord, error)

	// Create persists a new record and returns its store-assigned id.
	Create(ctx context.Context, scope string, record MovieRecord) (string, error)

	// Update replaces the stored flags and UpdatedAt of an existing record.
	Update(ctx context.Context, scope, id string, change StatusChange) error

	// DeleteByID removes a record, reporting whether it existed.
	DeleteByID(ctx context.Context, scope, id string) (bool, error)

	// FindByTitle returns the record with an exactly matching title, or
	// ErrRecordNotFound.
	FindByTitle(ctx context.Context, scope, title string) (MovieRecord, error)

	Close() error
}

// StatusChange is the partial update applied by a status transition.
type StatusChange struct {
	Watched     bool
	WantToWatch bool
}

// CatalogClient looks up movies in the external catalog provider.
type CatalogClient interface {
	// Search maps a free-text query to candidate summaries. found is false
	// for a valid zero-match response; transport or decode problems return
	// an error wrapping ErrSearchFailed.
	Search(ctx context.Context, query string) (results []CatalogSummary, found bool, err error)

	// Lookup fetches full details for one catalog id.
	Lookup(ctx context.Context, imdbID string) (CatalogSummary, error)
}

// IdentityProvider supplies the stable anonymous per-device user id that
// scopes the record store.
type IdentityProvider interface {
	GetOrCreateUserID() (string, error)
	Clear() error
}
