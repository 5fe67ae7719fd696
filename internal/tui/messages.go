package tui

import (
	"github.com/reelkeep/reelkeep/internal/domain"
	"github.com/reelkeep/reelkeep/internal/service"
	"github.com/reelkeep/reelkeep/internal/transition"
)

// Message types for the TUI

// RecordsRefreshedMsg signals that the persisted list was refetched
type RecordsRefreshedMsg struct {
	Err error
}

// SearchDoneMsg signals that a catalog search finished
type SearchDoneMsg struct {
	Query  string
	Status service.SearchStatus
	Err    error
}

// TransitionDoneMsg signals that a save or status change finished
type TransitionDoneMsg struct {
	Title    string
	Decision transition.Decision
	Err      error
}

// DeleteDoneMsg signals that a delete finished
type DeleteDoneMsg struct {
	Title string
	Err   error
}

// DetailLoadedMsg signals that a catalog detail lookup finished
type DetailLoadedMsg struct {
	Summary domain.CatalogSummary
	Err     error
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct {
	Seq int
}

// searchTickMsg fires after the debounce interval for a pending query
type searchTickMsg struct {
	Seq int
}
