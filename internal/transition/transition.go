package transition

import (
	"time"

	"github.com/reelkeep/reelkeep/internal/domain"
)

// Op is the single store write a transition decision calls for.
type Op int

const (
	OpNone Op = iota
	OpCreate
	OpUpdate
)

// Outcome classifies the user-facing result of a transition.
type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeUpdated
	OutcomeAlreadyWatched
	OutcomeAlreadyInList
)

// NoOp reports whether the outcome required no store write.
func (o Outcome) NoOp() bool {
	return o == OutcomeAlreadyWatched || o == OutcomeAlreadyInList
}

// Decision is the computed next persisted state for a movie. Exactly one of
// Record (create) or Change (update) is meaningful, selected by Op.
type Decision struct {
	Op      Op
	Outcome Outcome
	Record  domain.MovieRecord // Payload for OpCreate
	Change  domain.StatusChange
	Message string // User-facing outcome message
}

// Decide computes the write to perform when a movie is moved toward target.
// existing is nil when no record with the summary's title is saved yet;
// titles are the de-duplication key, so at most one write ever results.
func Decide(existing *domain.MovieRecord, target domain.TransitionTarget, summary domain.CatalogSummary, now time.Time) Decision {
	if existing == nil {
		rec := domain.MovieRecord{
			Title:       summary.Title,
			Year:        summary.Year,
			Type:        summary.Type,
			Genre:       summary.Genre,
			Runtime:     summary.Runtime,
			Poster:      summary.Poster,
			ImdbID:      summary.ImdbID,
			ImdbRating:  summary.ImdbRating,
			ImdbVotes:   summary.ImdbVotes,
			Watched:     target == domain.ToWatched,
			WantToWatch: target == domain.ToWatchlist,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return Decision{
			Op:      OpCreate,
			Outcome: OutcomeCreated,
			Record:  rec,
			Message: "Movie added to " + target.String(),
		}
	}

	if target == domain.ToWatched {
		if existing.Watched {
			return Decision{
				Op:      OpNone,
				Outcome: OutcomeAlreadyWatched,
				Message: "Movie already exists in watched list",
			}
		}
		return Decision{
			Op:      OpUpdate,
			Outcome: OutcomeUpdated,
			Change:  domain.StatusChange{Watched: true, WantToWatch: false},
			Message: "Movie added to watched list",
		}
	}

	// target == ToWatchlist: any existing membership blocks the move
	if existing.InList() {
		return Decision{
			Op:      OpNone,
			Outcome: OutcomeAlreadyInList,
			Message: "Movie already exists in " + existing.Status().String(),
		}
	}
	return Decision{
		Op:      OpUpdate,
		Outcome: OutcomeUpdated,
		Change:  domain.StatusChange{Watched: false, WantToWatch: true},
		Message: "Movie added to watchlist",
	}
}
