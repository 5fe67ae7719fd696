package domain

import "time"

// PosterUnavailable is OMDb's sentinel for a missing poster URL.
const PosterUnavailable = "N/A"

// MovieRecord is a saved movie in the user's collections.
// Exactly one of Watched/WantToWatch may be true; both false means the
// record was removed from both lists but kept around.
type MovieRecord struct {
	ID          string    `json:"id"`         // Store-assigned key, immutable
	Title       string    `json:"Title"`      // De-duplication key (exact, case-sensitive)
	Year        string    `json:"Year"`       // Display string, e.g. "2021" or "2019–2022"
	Type        string    `json:"Type"`       // "movie", "series", "episode"
	Genre       string    `json:"Genre"`
	Runtime     string    `json:"Runtime"`
	Poster      string    `json:"Poster"`     // URL or PosterUnavailable
	ImdbID      string    `json:"imdbID"`     // Catalog id, kept for future keying
	ImdbRating  string    `json:"imdbRating"`
	ImdbVotes   string    `json:"imdbVotes"`
	Watched     bool      `json:"watched"`
	WantToWatch bool      `json:"wantToWatch"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ListStatus is the three-valued list membership of a record.
type ListStatus int

const (
	StatusNone ListStatus = iota
	StatusWantToWatch
	StatusWatched
)

// String returns a human-readable representation of the list status
func (s ListStatus) String() string {
	switch s {
	case StatusWantToWatch:
		return "watchlist"
	case StatusWatched:
		return "watched list"
	default:
		return "no list"
	}
}

// Status returns which list the record currently belongs to.
func (m MovieRecord) Status() ListStatus {
	if m.Watched {
		return StatusWatched
	}
	if m.WantToWatch {
		return StatusWantToWatch
	}
	return StatusNone
}

// InList reports whether the record is on either list.
func (m MovieRecord) InList() bool {
	return m.Watched || m.WantToWatch
}

// HasPoster reports whether the record carries a usable poster URL.
func (m MovieRecord) HasPoster() bool {
	return m.Poster != "" && m.Poster != PosterUnavailable
}

// CatalogSummary is a transient search/lookup result from the catalog
// provider. It is never written to the store directly; saving converts it
// into a MovieRecord.
type CatalogSummary struct {
	ImdbID     string `json:"imdbID"` // Provider-assigned id, distinct from record keys
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Type       string `json:"Type"`
	Genre      string `json:"Genre"`
	Runtime    string `json:"Runtime"`
	Poster     string `json:"Poster"`
	ImdbRating string `json:"imdbRating"`
	ImdbVotes  string `json:"imdbVotes"`
}

// HasPoster reports whether the summary carries a usable poster URL.
func (c CatalogSummary) HasPoster() bool {
	return c.Poster != "" && c.Poster != PosterUnavailable
}

// Category filters the rendered list of saved records.
type Category int

const (
	CategoryAll Category = iota
	CategoryWantToWatch
	CategoryWatched
)

// String returns a human-readable representation of the category
func (c Category) String() string {
	switch c {
	case CategoryWantToWatch:
		return "Watchlist"
	case CategoryWatched:
		return "Watched"
	default:
		return "All"
	}
}

// Matches reports whether a record belongs in this category's view.
func (c Category) Matches(m MovieRecord) bool {
	switch c {
	case CategoryWantToWatch:
		return !m.Watched
	case CategoryWatched:
		return m.Watched
	default:
		return true
	}
}

// TransitionTarget is the list a status change moves a record toward.
type TransitionTarget int

const (
	ToWatchlist TransitionTarget = iota
	ToWatched
)

// String returns a human-readable representation of the target
func (t TransitionTarget) String() string {
	if t == ToWatched {
		return "watched list"
	}
	return "watchlist"
}
