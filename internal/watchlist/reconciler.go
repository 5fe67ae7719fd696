// Package watchlist holds the single source of truth for the list the UI
// renders: the user's persisted records, the live search results, and the
// active category filter.
package watchlist

import (
	"sync"

	"github.com/reelkeep/reelkeep/internal/domain"
)

// Row is one visible list entry: either a persisted record or a transient
// search summary, never both.
type Row struct {
	Record  *domain.MovieRecord
	Summary *domain.CatalogSummary
}

// Title returns the row's display title.
func (r Row) Title() string {
	if r.Record != nil {
		return r.Record.Title
	}
	if r.Summary != nil {
		return r.Summary.Title
	}
	return ""
}

// Year returns the row's display year.
func (r Row) Year() string {
	if r.Record != nil {
		return r.Record.Year
	}
	if r.Summary != nil {
		return r.Summary.Year
	}
	return ""
}

// Reconciler merges persisted records, search results and the category
// filter into the rendered list, and keeps that list correct across
// mutations without full refetches.
//
// All state is swapped whole-value under one mutex; the mutex is never held
// across store or network calls.
type Reconciler struct {
	mu sync.Mutex

	persisted []domain.MovieRecord
	loaded    bool // First full fetch completed

	search    []domain.CatalogSummary
	searchGen uint64 // Cancellation token: stale generations are dropped

	category domain.Category

	inFlight map[string]bool // Record id -> operation running
}

func NewReconciler() *Reconciler {
	return &Reconciler{inFlight: make(map[string]bool)}
}

// ReplacePersisted swaps in a freshly fetched record list wholesale. Used
// after identity changes and on returning from a detail view.
func (r *Reconciler) ReplacePersisted(records []domain.MovieRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.persisted = append([]domain.MovieRecord(nil), records...)
	r.loaded = true
}

// Loaded reports whether the first full fetch has completed, so the UI can
// tell "no movies saved" from "still loading".
func (r *Reconciler) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}

// Records returns a copy of the persisted records in insertion order.
func (r *Reconciler) Records() []domain.MovieRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.MovieRecord(nil), r.persisted...)
}

// SetCategory switches the active filter.
func (r *Reconciler) SetCategory(c domain.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.category = c
}

// Category returns the active filter.
func (r *Reconciler) Category() domain.Category {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.category
}

// CycleCategory advances all -> wantToWatch -> watched -> all.
func (r *Reconciler) CycleCategory() domain.Category {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.category {
	case domain.CategoryAll:
		r.category = domain.CategoryWantToWatch
	case domain.CategoryWantToWatch:
		r.category = domain.CategoryWatched
	default:
		r.category = domain.CategoryAll
	}
	return r.category
}

// BeginSearch invalidates any in-flight search and returns the token the
// new request must present when delivering results.
func (r *Reconciler) BeginSearch() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searchGen++
	return r.searchGen
}

// ApplySearchResults installs results for the given request token. A stale
// token (superseded or cleared since the request started) is dropped and
// reported as false.
func (r *Reconciler) ApplySearchResults(gen uint64, results []domain.CatalogSummary) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.searchGen {
		return false
	}
	r.search = append([]domain.CatalogSummary(nil), results...)
	return true
}

// ClearSearch drops the current results and invalidates every in-flight
// request, so a late response can never repopulate the list.
func (r *Reconciler) ClearSearch() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searchGen++
	r.search = nil
}

// SearchActive reports whether search results currently override the
// persisted view.
func (r *Reconciler) SearchActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.search) > 0
}

// Visible computes the rendered list. Precedence: non-empty search results
// win; otherwise the persisted records filtered by category. The result is
// always non-nil and in source order; no client-side re-sort.
func (r *Reconciler) Visible() []Row {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]Row, 0)

	if len(r.search) > 0 {
		for i := range r.search {
			rows = append(rows, Row{Summary: &r.search[i]})
		}
		return rows
	}

	for i := range r.persisted {
		if r.category.Matches(r.persisted[i]) {
			rec := r.persisted[i]
			rows = append(rows, Row{Record: &rec})
		}
	}
	return rows
}

// StatusForTitle reports which list a title is saved in, for annotating
// search rows against the persisted set.
func (r *Reconciler) StatusForTitle(title string) domain.ListStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.persisted {
		if r.persisted[i].Title == title {
			return r.persisted[i].Status()
		}
	}
	return domain.StatusNone
}

// UpsertRecord reconciles a successful create or update in place: the
// matching entry (by id, falling back to title for fresh creates) is
// replaced without reordering; an unknown record is appended.
func (r *Reconciler) UpsertRecord(record domain.MovieRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.persisted {
		if r.persisted[i].ID == record.ID || r.persisted[i].Title == record.Title {
			r.persisted[i] = record
			return
		}
	}
	r.persisted = append(r.persisted, record)
}

// ApplyTransition flips the flags of record id in place after a confirmed
// status update. All other fields and the list order are untouched.
func (r *Reconciler) ApplyTransition(id string, target domain.TransitionTarget) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.persisted {
		if r.persisted[i].ID == id {
			r.persisted[i].Watched = target == domain.ToWatched
			r.persisted[i].WantToWatch = target == domain.ToWatchlist
			return true
		}
	}
	return false
}

// RemoveRecord drops record id after a confirmed delete. Search rows are
// untouched: summaries are never persisted records.
func (r *Reconciler) RemoveRecord(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.persisted {
		if r.persisted[i].ID == id {
			r.persisted = append(r.persisted[:i], r.persisted[i+1:]...)
			return true
		}
	}
	return false
}

// BeginOp marks record id as having an operation in flight. It returns
// false when one is already running, so rapid repeat clicks on the same
// record cannot issue duplicate writes. Distinct records never block each
// other.
func (r *Reconciler) BeginOp(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inFlight[id] {
		return false
	}
	r.inFlight[id] = true
	return true
}

// EndOp clears the in-flight mark for record id.
func (r *Reconciler) EndOp(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, id)
}

// OpInFlight reports whether record id has an operation running.
func (r *Reconciler) OpInFlight(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inFlight[id]
}
