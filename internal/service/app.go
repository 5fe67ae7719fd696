// Package service wires the identity provider, record store, catalog client
// and reconciler into the operations the UI drives.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/reelkeep/reelkeep/internal/domain"
	"github.com/reelkeep/reelkeep/internal/transition"
	"github.com/reelkeep/reelkeep/internal/watchlist"
)

const defaultTimeout = 10 * time.Second

// App orchestrates all movie tracking operations.
type App struct {
	store       domain.RecordStore
	catalog     domain.CatalogClient
	identity    domain.IdentityProvider
	list        *watchlist.Reconciler
	transitions *transition.Service
	logger      *slog.Logger
	timeout     time.Duration

	mu           sync.Mutex
	scope        string             // Resolved identity, cached
	cancelSearch context.CancelFunc // Cancels the in-flight search request
}

// NewApp creates the application service. timeout bounds every store and
// catalog call; zero selects the default.
func NewApp(store domain.RecordStore, catalog domain.CatalogClient, identity domain.IdentityProvider, logger *slog.Logger, timeout time.Duration) *App {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &App{
		store:       store,
		catalog:     catalog,
		identity:    identity,
		list:        watchlist.NewReconciler(),
		transitions: transition.NewService(store, logger),
		logger:      logger,
		timeout:     timeout,
	}
}

// List exposes the reconciler the UI renders from.
func (a *App) List() *watchlist.Reconciler {
	return a.list
}

// Close releases the underlying store.
func (a *App) Close() error {
	return a.store.Close()
}

// scopeID resolves and caches the per-user partition key. Store calls are
// never attempted without it.
func (a *App) scopeID() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.scope != "" {
		return a.scope, nil
	}
	id, err := a.identity.GetOrCreateUserID()
	if err != nil {
		a.logger.Error("failed to resolve identity", "error", err)
		return "", err
	}
	a.scope = id
	a.logger.Debug("resolved identity", "scope", id)
	return id, nil
}

// ResetIdentity clears the stored user id and the cached scope. The next
// Refresh fetches (an empty) list under a fresh identity.
func (a *App) ResetIdentity() error {
	if err := a.identity.Clear(); err != nil {
		return err
	}
	a.mu.Lock()
	a.scope = ""
	a.mu.Unlock()
	a.list.ReplacePersisted(nil)
	a.logger.Info("identity reset")
	return nil
}

// Refresh refetches the full persisted list and swaps it into the
// reconciler. Used on startup, after identity changes and on returning from
// the detail view.
func (a *App) Refresh(ctx context.Context) error {
	scope, err := a.scopeID()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	records, err := a.store.ListAll(ctx, scope)
	if err != nil {
		a.logger.Error("failed to list records", "error", err)
		return asTimeout(err)
	}
	a.list.ReplacePersisted(records)
	a.logger.Debug("refreshed records", "count", len(records))
	return nil
}

// asTimeout converts a deadline hit into the timeout sentinel so callers can
// tell a slow dependency from a failing one.
func asTimeout(err error) error {
	if errors.Is(err, domain.ErrTimedOut) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrTimedOut, err)
	}
	return err
}

// SearchStatus classifies the outcome of a Search call.
type SearchStatus int

const (
	// SearchApplied means results were installed into the reconciler
	SearchApplied SearchStatus = iota
	// SearchCleared means the empty query cleared search state synchronously
	SearchCleared
	// SearchNoMatch means the catalog answered with zero matches
	SearchNoMatch
	// SearchStale means a newer query superseded this one; its response was
	// suppressed
	SearchStale
	// SearchFailed means the catalog was unreachable or answered with
	// malformed data; no state was mutated
	SearchFailed
)

// Search runs a catalog query and reconciles its results. A newer call
// cancels the previous request outright and invalidates its token, so a
// stale response can neither apply results nor surface errors. The empty
// query clears search state without any network call.
func (a *App) Search(ctx context.Context, query string) (SearchStatus, error) {
	query = strings.TrimSpace(query)

	a.mu.Lock()
	if a.cancelSearch != nil {
		a.cancelSearch()
		a.cancelSearch = nil
	}
	a.mu.Unlock()

	if query == "" {
		a.list.ClearSearch()
		return SearchCleared, nil
	}

	gen := a.list.BeginSearch()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	a.mu.Lock()
	a.cancelSearch = cancel
	a.mu.Unlock()
	defer cancel()

	results, found, err := a.catalog.Search(ctx, query)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			a.logger.Debug("search superseded", "query", query)
			return SearchStale, nil
		}
		a.logger.Error("search failed", "error", err, "query", query)
		if err := asTimeout(err); errors.Is(err, domain.ErrTimedOut) {
			return SearchFailed, err
		}
		if errors.Is(err, domain.ErrSearchFailed) {
			return SearchFailed, err
		}
		return SearchFailed, fmt.Errorf("%w: %v", domain.ErrSearchFailed, err)
	}

	if !found {
		// Valid zero-match response: clears the visible results for this
		// query unless a newer one took over
		a.list.ApplySearchResults(gen, nil)
		a.logger.Debug("search no match", "query", query)
		return SearchNoMatch, nil
	}

	if !a.list.ApplySearchResults(gen, results) {
		a.logger.Debug("search results stale", "query", query)
		return SearchStale, nil
	}
	a.logger.Debug("search complete", "query", query, "results", len(results))
	return SearchApplied, nil
}

// Lookup fetches full details for one catalog id.
func (a *App) Lookup(ctx context.Context, imdbID string) (domain.CatalogSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	summary, err := a.catalog.Lookup(ctx, imdbID)
	if err != nil {
		return domain.CatalogSummary{}, asTimeout(err)
	}
	return summary, nil
}

// Save moves the movie described by summary toward target, creating its
// record on first save. The reconciler is updated in place on success.
// Concurrent saves of the same title are rejected with
// domain.ErrOperationInFlight.
func (a *App) Save(ctx context.Context, summary domain.CatalogSummary, target domain.TransitionTarget) (transition.Decision, error) {
	scope, err := a.scopeID()
	if err != nil {
		return transition.Decision{}, err
	}

	// No record id exists before the first save; guard on the title, which
	// is the de-duplication key anyway
	opKey := "title:" + summary.Title
	if !a.list.BeginOp(opKey) {
		return transition.Decision{}, domain.ErrOperationInFlight
	}
	defer a.list.EndOp(opKey)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	record, decision, err := a.transitions.Save(ctx, scope, summary, target)
	if err != nil {
		return decision, asTimeout(err)
	}
	if !decision.Outcome.NoOp() {
		a.list.UpsertRecord(record)
	}
	return decision, nil
}

// SetStatus moves a persisted record toward target, reconciling the flag
// flip in place without reordering. Rapid repeat calls for the same record
// are rejected while one is in flight; other records proceed concurrently.
func (a *App) SetStatus(ctx context.Context, record domain.MovieRecord, target domain.TransitionTarget) (transition.Decision, error) {
	scope, err := a.scopeID()
	if err != nil {
		return transition.Decision{}, err
	}

	if !a.list.BeginOp(record.ID) {
		return transition.Decision{}, domain.ErrOperationInFlight
	}
	defer a.list.EndOp(record.ID)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	_, decision, err := a.transitions.SetStatus(ctx, scope, record, target)
	if err != nil {
		return decision, asTimeout(err)
	}
	if decision.Outcome == transition.OutcomeUpdated {
		a.list.ApplyTransition(record.ID, target)
	}
	return decision, nil
}

// Delete removes a persisted record. The reconciler entry is dropped only
// after the store confirms; a missing record surfaces as
// domain.ErrRecordNotFound with the list unchanged.
func (a *App) Delete(ctx context.Context, id string) error {
	scope, err := a.scopeID()
	if err != nil {
		return err
	}

	if !a.list.BeginOp(id) {
		return domain.ErrOperationInFlight
	}
	defer a.list.EndOp(id)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.transitions.Delete(ctx, scope, id); err != nil {
		return asTimeout(err)
	}
	a.list.RemoveRecord(id)
	return nil
}
