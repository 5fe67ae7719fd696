package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrRecordNotFound indicates a store lookup or delete matched no record
	ErrRecordNotFound = errors.New("movie record not found")

	// ErrStoreWriteFailed indicates the record store rejected a write
	ErrStoreWriteFailed = errors.New("record store write failed")

	// ErrSearchFailed indicates the catalog API was unreachable or returned
	// malformed data (distinct from a valid zero-match response)
	ErrSearchFailed = errors.New("catalog search failed")

	// ErrTimedOut indicates a catalog or store call exceeded its deadline,
	// distinct from the dependency rejecting or failing the request
	ErrTimedOut = errors.New("operation timed out")

	// ErrIdentityUnavailable indicates no local user id could be obtained;
	// store operations must not be attempted without one
	ErrIdentityUnavailable = errors.New("local identity unavailable")

	// ErrOperationInFlight indicates another status change or delete is
	// already running for the same record
	ErrOperationInFlight = errors.New("operation already in flight for record")
)
