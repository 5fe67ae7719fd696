package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelkeep/reelkeep/internal/domain"
	"github.com/reelkeep/reelkeep/internal/log"
	"github.com/reelkeep/reelkeep/internal/store"
	"github.com/reelkeep/reelkeep/internal/transition"
)

// --- Fakes ---

type fakeIdentity struct {
	id  string
	err error
}

func (f *fakeIdentity) GetOrCreateUserID() (string, error) { return f.id, f.err }
func (f *fakeIdentity) Clear() error                       { return nil }

// fakeCatalog serves canned results and can hold a request open until
// released, to exercise overlapping in-flight searches.
type fakeCatalog struct {
	mu      sync.Mutex
	results map[string][]domain.CatalogSummary
	err     error

	block   bool
	started chan struct{}
	release chan struct{}
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		results: make(map[string][]domain.CatalogSummary),
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
}

func (f *fakeCatalog) Search(ctx context.Context, query string) ([]domain.CatalogSummary, bool, error) {
	f.mu.Lock()
	block := f.block
	err := f.err
	results, found := f.results[query]
	f.mu.Unlock()

	if block {
		f.started <- struct{}{}
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
	if err != nil {
		return nil, false, err
	}
	return results, found, nil
}

func (f *fakeCatalog) Lookup(ctx context.Context, imdbID string) (domain.CatalogSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, summaries := range f.results {
		for _, s := range summaries {
			if s.ImdbID == imdbID {
				return s, nil
			}
		}
	}
	return domain.CatalogSummary{}, domain.ErrRecordNotFound
}

// countingStore wraps a real store and counts writes.
type countingStore struct {
	domain.RecordStore
	mu      sync.Mutex
	creates int
	updates int
}

func (c *countingStore) Create(ctx context.Context, scope string, record domain.MovieRecord) (string, error) {
	c.mu.Lock()
	c.creates++
	c.mu.Unlock()
	return c.RecordStore.Create(ctx, scope, record)
}

func (c *countingStore) Update(ctx context.Context, scope, id string, change domain.StatusChange) error {
	c.mu.Lock()
	c.updates++
	c.mu.Unlock()
	return c.RecordStore.Update(ctx, scope, id, change)
}

func (c *countingStore) writes() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creates, c.updates
}

var dune = domain.CatalogSummary{
	ImdbID: "tt1160419", Title: "Dune", Year: "2021", Type: "movie",
	Genre: "Action, Adventure, Drama", Runtime: "155 min", Poster: "N/A",
	ImdbRating: "8.0", ImdbVotes: "700,000",
}

func newTestApp(t *testing.T) (*App, *fakeCatalog, *countingStore) {
	t.Helper()
	st, err := store.NewRecordStore("")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	counting := &countingStore{RecordStore: st}
	cat := newFakeCatalog()
	app := NewApp(counting, cat, &fakeIdentity{id: "user-1"}, log.NullLogger(), time.Second)
	return app, cat, counting
}

// --- Tests ---

func TestSaveFromEmptyStore(t *testing.T) {
	app, _, counting := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, app.Refresh(ctx))

	decision, err := app.Save(ctx, dune, domain.ToWatchlist)
	require.NoError(t, err)
	assert.Equal(t, transition.OutcomeCreated, decision.Outcome)

	creates, updates := counting.writes()
	assert.Equal(t, 1, creates)
	assert.Equal(t, 0, updates)

	t.Run("watchlist category includes it", func(t *testing.T) {
		app.List().SetCategory(domain.CategoryWantToWatch)
		rows := app.List().Visible()
		require.Len(t, rows, 1)
		assert.Equal(t, "Dune", rows[0].Title())
		assert.True(t, rows[0].Record.WantToWatch)
		assert.False(t, rows[0].Record.Watched)
	})

	t.Run("watched category excludes it", func(t *testing.T) {
		app.List().SetCategory(domain.CategoryWatched)
		assert.Empty(t, app.List().Visible())
	})
}

func TestTransitionToWatchedIsIdempotent(t *testing.T) {
	app, _, counting := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, app.Refresh(ctx))

	_, err := app.Save(ctx, dune, domain.ToWatchlist)
	require.NoError(t, err)

	app.List().SetCategory(domain.CategoryAll)
	rows := app.List().Visible()
	require.Len(t, rows, 1)
	record := *rows[0].Record

	decision, err := app.SetStatus(ctx, record, domain.ToWatched)
	require.NoError(t, err)
	assert.Equal(t, transition.OutcomeUpdated, decision.Outcome)

	rows = app.List().Visible()
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Record.Watched)
	assert.False(t, rows[0].Record.WantToWatch)

	_, updatesBefore := counting.writes()

	decision, err = app.SetStatus(ctx, *rows[0].Record, domain.ToWatched)
	require.NoError(t, err)
	assert.Equal(t, transition.OutcomeAlreadyWatched, decision.Outcome)

	_, updatesAfter := counting.writes()
	assert.Equal(t, updatesBefore, updatesAfter, "no-op must not write")
}

func TestSearchLifecycle(t *testing.T) {
	app, cat, _ := newTestApp(t)
	ctx := context.Background()

	cat.results["dune"] = []domain.CatalogSummary{dune}

	t.Run("results override the persisted view", func(t *testing.T) {
		status, err := app.Search(ctx, "dune")
		require.NoError(t, err)
		assert.Equal(t, SearchApplied, status)
		rows := app.List().Visible()
		require.Len(t, rows, 1)
		assert.Equal(t, "Dune", rows[0].Title())
		assert.Nil(t, rows[0].Record)
	})

	t.Run("zero matches clear the results", func(t *testing.T) {
		status, err := app.Search(ctx, "zzzz")
		require.NoError(t, err)
		assert.Equal(t, SearchNoMatch, status)
		assert.False(t, app.List().SearchActive())
	})

	t.Run("failure mutates nothing", func(t *testing.T) {
		_, err := app.Search(ctx, "dune")
		require.NoError(t, err)

		cat.mu.Lock()
		cat.err = domain.ErrSearchFailed
		cat.mu.Unlock()

		status, err := app.Search(ctx, "other")
		assert.ErrorIs(t, err, domain.ErrSearchFailed)
		assert.Equal(t, SearchFailed, status)

		cat.mu.Lock()
		cat.err = nil
		cat.mu.Unlock()
	})

	t.Run("empty query clears synchronously", func(t *testing.T) {
		_, err := app.Search(ctx, "dune")
		require.NoError(t, err)
		require.True(t, app.List().SearchActive())

		status, err := app.Search(ctx, "   ")
		require.NoError(t, err)
		assert.Equal(t, SearchCleared, status)
		assert.False(t, app.List().SearchActive())
	})
}

// A query canceled by a newer empty query must never repopulate the list,
// even when its response arrives afterwards.
func TestStaleSearchResponseSuppressed(t *testing.T) {
	app, cat, _ := newTestApp(t)
	ctx := context.Background()

	cat.results["inception"] = []domain.CatalogSummary{{ImdbID: "tt1375666", Title: "Inception", Year: "2010"}}
	cat.mu.Lock()
	cat.block = true
	cat.mu.Unlock()

	var status SearchStatus
	var searchErr error
	done := make(chan struct{})
	go func() {
		status, searchErr = app.Search(ctx, "inception")
		close(done)
	}()

	// Wait for the request to be in flight, then clear the query
	<-cat.started
	cleared, err := app.Search(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, SearchCleared, cleared)

	close(cat.release)
	<-done

	require.NoError(t, searchErr)
	assert.Equal(t, SearchStale, status)
	assert.False(t, app.List().SearchActive())
	assert.Empty(t, app.List().Visible())
}

// A search that exceeds its deadline surfaces the timeout sentinel, distinct
// from a catalog failure, and leaves the list untouched.
func TestSearchTimeoutSurfaced(t *testing.T) {
	st, err := store.NewRecordStore("")
	require.NoError(t, err)
	defer st.Close()

	cat := newFakeCatalog()
	cat.block = true // Never released, so only the deadline ends the request

	app := NewApp(st, cat, &fakeIdentity{id: "user-1"}, log.NullLogger(), 50*time.Millisecond)

	status, err := app.Search(context.Background(), "dune")
	assert.Equal(t, SearchFailed, status)
	assert.ErrorIs(t, err, domain.ErrTimedOut)
	assert.NotErrorIs(t, err, domain.ErrSearchFailed)
	assert.False(t, app.List().SearchActive())
}

func TestDeleteReconciliation(t *testing.T) {
	app, _, _ := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, app.Refresh(ctx))

	_, err := app.Save(ctx, dune, domain.ToWatchlist)
	require.NoError(t, err)
	rows := app.List().Visible()
	require.Len(t, rows, 1)
	id := rows[0].Record.ID

	t.Run("unknown id leaves the list unchanged", func(t *testing.T) {
		err := app.Delete(ctx, "m000000000099")
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
		assert.Len(t, app.List().Visible(), 1)
	})

	t.Run("confirmed delete removes the entry", func(t *testing.T) {
		require.NoError(t, app.Delete(ctx, id))
		assert.Empty(t, app.List().Visible())
	})
}

func TestIdentityUnavailableBlocksStoreOps(t *testing.T) {
	st, err := store.NewRecordStore("")
	require.NoError(t, err)
	defer st.Close()

	counting := &countingStore{RecordStore: st}
	app := NewApp(counting, newFakeCatalog(), &fakeIdentity{err: domain.ErrIdentityUnavailable}, log.NullLogger(), time.Second)

	ctx := context.Background()
	assert.ErrorIs(t, app.Refresh(ctx), domain.ErrIdentityUnavailable)

	_, err = app.Save(ctx, dune, domain.ToWatchlist)
	assert.ErrorIs(t, err, domain.ErrIdentityUnavailable)

	err = app.Delete(ctx, "m1")
	assert.ErrorIs(t, err, domain.ErrIdentityUnavailable)

	creates, updates := counting.writes()
	assert.Zero(t, creates, "store must not be touched without a scope")
	assert.Zero(t, updates)
}

func TestSaveGuardsConcurrentSameTitle(t *testing.T) {
	app, _, _ := newTestApp(t)
	require.True(t, app.List().BeginOp("title:Dune"))

	_, err := app.Save(context.Background(), dune, domain.ToWatchlist)
	assert.ErrorIs(t, err, domain.ErrOperationInFlight)

	app.List().EndOp("title:Dune")
	_, err = app.Save(context.Background(), dune, domain.ToWatchlist)
	assert.NoError(t, err)
}

func TestLookup(t *testing.T) {
	app, cat, _ := newTestApp(t)
	cat.results["dune"] = []domain.CatalogSummary{dune}

	summary, err := app.Lookup(context.Background(), "tt1160419")
	require.NoError(t, err)
	assert.Equal(t, "Dune", summary.Title)

	_, err = app.Lookup(context.Background(), "bogus")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestFilterSaved(t *testing.T) {
	app, _, _ := newTestApp(t)
	ctx := context.Background()

	for _, s := range []domain.CatalogSummary{
		{Title: "Dune", Year: "2021"},
		{Title: "Dune: Part Two", Year: "2024"},
		{Title: "Heat", Year: "1995"},
	} {
		_, err := app.Save(ctx, s, domain.ToWatchlist)
		require.NoError(t, err)
	}

	t.Run("matches are ranked, non-matches dropped", func(t *testing.T) {
		results := app.FilterSaved("dune")
		require.Len(t, results, 2)
		assert.Equal(t, "Dune", results[0].Title)
	})

	t.Run("blank query yields nothing", func(t *testing.T) {
		assert.Nil(t, app.FilterSaved("  "))
	})
}

func TestResetIdentity(t *testing.T) {
	app, _, _ := newTestApp(t)
	ctx := context.Background()

	_, err := app.Save(ctx, dune, domain.ToWatchlist)
	require.NoError(t, err)
	require.Len(t, app.List().Visible(), 1)

	require.NoError(t, app.ResetIdentity())
	assert.Empty(t, app.List().Visible())
	assert.True(t, app.List().Loaded(), "reset leaves an empty loaded list, not a loading state")
}

func TestSearchFailedWrapsUnknownErrors(t *testing.T) {
	app, cat, _ := newTestApp(t)
	cat.mu.Lock()
	cat.err = errors.New("connection reset")
	cat.mu.Unlock()

	status, err := app.Search(context.Background(), "dune")
	assert.Equal(t, SearchFailed, status)
	assert.ErrorIs(t, err, domain.ErrSearchFailed)
}
