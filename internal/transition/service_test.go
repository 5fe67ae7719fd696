package transition

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelkeep/reelkeep/internal/domain"
	"github.com/reelkeep/reelkeep/internal/log"
	"github.com/reelkeep/reelkeep/internal/store"
)

const testScope = "user-1"

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.NewRecordStore("")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewService(st, log.NullLogger())
}

func TestSaveCreatesThenUpdates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec, decision, err := svc.Save(ctx, testScope, duneSummary, domain.ToWatchlist)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, decision.Outcome)
	assert.NotEmpty(t, rec.ID)
	assert.True(t, rec.WantToWatch)
	assert.False(t, rec.Watched)

	t.Run("second save to watchlist is a no-op", func(t *testing.T) {
		again, decision, err := svc.Save(ctx, testScope, duneSummary, domain.ToWatchlist)
		require.NoError(t, err)
		assert.Equal(t, OutcomeAlreadyInList, decision.Outcome)
		assert.Equal(t, rec.ID, again.ID)
	})

	t.Run("moving to watched updates in place", func(t *testing.T) {
		moved, decision, err := svc.Save(ctx, testScope, duneSummary, domain.ToWatched)
		require.NoError(t, err)
		assert.Equal(t, OutcomeUpdated, decision.Outcome)
		assert.Equal(t, rec.ID, moved.ID)
		assert.True(t, moved.Watched)
		assert.False(t, moved.WantToWatch)
	})

	t.Run("repeating watched is a no-op with no extra write", func(t *testing.T) {
		_, decision, err := svc.Save(ctx, testScope, duneSummary, domain.ToWatched)
		require.NoError(t, err)
		assert.Equal(t, OutcomeAlreadyWatched, decision.Outcome)
	})
}

func TestSetStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec, _, err := svc.Save(ctx, testScope, duneSummary, domain.ToWatchlist)
	require.NoError(t, err)

	updated, decision, err := svc.SetStatus(ctx, testScope, rec, domain.ToWatched)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, decision.Outcome)
	assert.True(t, updated.Watched)
	assert.False(t, updated.WantToWatch)
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("missing record reports not found", func(t *testing.T) {
		err := svc.Delete(ctx, testScope, "m000000000099")
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("existing record is removed", func(t *testing.T) {
		rec, _, err := svc.Save(ctx, testScope, duneSummary, domain.ToWatched)
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, testScope, rec.ID))
		err = svc.Delete(ctx, testScope, rec.ID)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})
}
