package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelkeep/reelkeep/internal/domain"
)

const testScope = "user-1"

// Both modes must behave identically; run every test against each.
func withStores(t *testing.T, fn func(t *testing.T, s *RecordStore)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		s, err := NewRecordStore("")
		require.NoError(t, err)
		defer s.Close()
		fn(t, s)
	})

	t.Run("bolt", func(t *testing.T) {
		s, err := NewRecordStore(t.TempDir())
		require.NoError(t, err)
		defer s.Close()
		fn(t, s)
	})
}

func TestCreateAndFindByTitle(t *testing.T) {
	withStores(t, func(t *testing.T, s *RecordStore) {
		ctx := context.Background()
		in := domain.MovieRecord{
			Title:       "Dune",
			Year:        "2021",
			Type:        "movie",
			Genre:       "Action, Adventure, Drama",
			Runtime:     "155 min",
			Poster:      "https://example.com/dune.jpg",
			ImdbID:      "tt1160419",
			ImdbRating:  "8.0",
			ImdbVotes:   "700,000",
			WantToWatch: true,
		}

		id, err := s.Create(ctx, testScope, in)
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		got, err := s.FindByTitle(ctx, testScope, "Dune")
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, in.Title, got.Title)
		assert.Equal(t, in.Year, got.Year)
		assert.Equal(t, in.Genre, got.Genre)
		assert.Equal(t, in.Poster, got.Poster)
		assert.Equal(t, in.ImdbID, got.ImdbID)
		assert.True(t, got.WantToWatch)
		assert.False(t, got.Watched)
		assert.False(t, got.CreatedAt.IsZero())
		assert.False(t, got.UpdatedAt.IsZero())

		t.Run("title match is case-sensitive", func(t *testing.T) {
			_, err := s.FindByTitle(ctx, testScope, "dune")
			assert.ErrorIs(t, err, domain.ErrRecordNotFound)
		})
	})
}

func TestListAllInsertionOrder(t *testing.T) {
	withStores(t, func(t *testing.T, s *RecordStore) {
		ctx := context.Background()
		titles := []string{"Dune", "Heat", "Arrival", "Tenet"}
		for _, title := range titles {
			_, err := s.Create(ctx, testScope, domain.MovieRecord{Title: title, WantToWatch: true})
			require.NoError(t, err)
		}

		records, err := s.ListAll(ctx, testScope)
		require.NoError(t, err)
		require.Len(t, records, len(titles))
		for i, title := range titles {
			assert.Equal(t, title, records[i].Title)
		}
	})
}

func TestListAllEmptyScope(t *testing.T) {
	withStores(t, func(t *testing.T, s *RecordStore) {
		records, err := s.ListAll(context.Background(), "nobody")
		require.NoError(t, err)
		assert.NotNil(t, records, "empty scope must yield an empty slice, not nil")
		assert.Empty(t, records)
	})
}

func TestUpdate(t *testing.T) {
	withStores(t, func(t *testing.T, s *RecordStore) {
		ctx := context.Background()
		id, err := s.Create(ctx, testScope, domain.MovieRecord{Title: "Dune", Year: "2021", WantToWatch: true})
		require.NoError(t, err)

		err = s.Update(ctx, testScope, id, domain.StatusChange{Watched: true, WantToWatch: false})
		require.NoError(t, err)

		got, err := s.FindByTitle(ctx, testScope, "Dune")
		require.NoError(t, err)
		assert.True(t, got.Watched)
		assert.False(t, got.WantToWatch)
		assert.Equal(t, "2021", got.Year, "non-status fields must survive updates")

		t.Run("unknown id reports not found", func(t *testing.T) {
			err := s.Update(ctx, testScope, "m000000000099", domain.StatusChange{Watched: true})
			assert.ErrorIs(t, err, domain.ErrRecordNotFound)
		})
	})
}

func TestDeleteByID(t *testing.T) {
	withStores(t, func(t *testing.T, s *RecordStore) {
		ctx := context.Background()
		id, err := s.Create(ctx, testScope, domain.MovieRecord{Title: "Dune"})
		require.NoError(t, err)

		found, err := s.DeleteByID(ctx, testScope, id)
		require.NoError(t, err)
		assert.True(t, found)

		found, err = s.DeleteByID(ctx, testScope, id)
		require.NoError(t, err)
		assert.False(t, found, "second delete must report not found, not fail")

		records, err := s.ListAll(ctx, testScope)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestScopesAreIsolated(t *testing.T) {
	withStores(t, func(t *testing.T, s *RecordStore) {
		ctx := context.Background()
		_, err := s.Create(ctx, "alice", domain.MovieRecord{Title: "Dune"})
		require.NoError(t, err)

		records, err := s.ListAll(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, records)

		_, err = s.FindByTitle(ctx, "bob", "Dune")
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})
}

func TestCanceledContext(t *testing.T) {
	withStores(t, func(t *testing.T, s *RecordStore) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.ListAll(ctx, testScope)
		assert.ErrorIs(t, err, context.Canceled)

		_, err = s.Create(ctx, testScope, domain.MovieRecord{Title: "Dune"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestConcurrentWritesDistinctRecords(t *testing.T) {
	withStores(t, func(t *testing.T, s *RecordStore) {
		ctx := context.Background()

		ids := make([]string, 10)
		for i := range ids {
			id, err := s.Create(ctx, testScope, domain.MovieRecord{Title: fmt.Sprintf("Movie %d", i), WantToWatch: true})
			require.NoError(t, err)
			ids[i] = id
		}

		done := make(chan error, len(ids))
		for _, id := range ids {
			go func(id string) {
				done <- s.Update(ctx, testScope, id, domain.StatusChange{Watched: true})
			}(id)
		}
		for range ids {
			require.NoError(t, <-done)
		}

		records, err := s.ListAll(ctx, testScope)
		require.NoError(t, err)
		for _, rec := range records {
			assert.True(t, rec.Watched)
			assert.False(t, rec.WantToWatch)
		}
	})
}
