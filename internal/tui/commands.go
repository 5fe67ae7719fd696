package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reelkeep/reelkeep/internal/domain"
	"github.com/reelkeep/reelkeep/internal/service"
)

const (
	searchDebounce = 300 * time.Millisecond
	statusLinger   = 3 * time.Second
)

func refreshCmd(app *service.App) tea.Cmd {
	return func() tea.Msg {
		return RecordsRefreshedMsg{Err: app.Refresh(context.Background())}
	}
}

func searchCmd(app *service.App, query string) tea.Cmd {
	return func() tea.Msg {
		status, err := app.Search(context.Background(), query)
		return SearchDoneMsg{Query: query, Status: status, Err: err}
	}
}

func saveCmd(app *service.App, summary domain.CatalogSummary, target domain.TransitionTarget) tea.Cmd {
	return func() tea.Msg {
		decision, err := app.Save(context.Background(), summary, target)
		return TransitionDoneMsg{Title: summary.Title, Decision: decision, Err: err}
	}
}

func setStatusCmd(app *service.App, record domain.MovieRecord, target domain.TransitionTarget) tea.Cmd {
	return func() tea.Msg {
		decision, err := app.SetStatus(context.Background(), record, target)
		return TransitionDoneMsg{Title: record.Title, Decision: decision, Err: err}
	}
}

func deleteCmd(app *service.App, record domain.MovieRecord) tea.Cmd {
	return func() tea.Msg {
		return DeleteDoneMsg{Title: record.Title, Err: app.Delete(context.Background(), record.ID)}
	}
}

func lookupCmd(app *service.App, imdbID string) tea.Cmd {
	return func() tea.Msg {
		summary, err := app.Lookup(context.Background(), imdbID)
		return DetailLoadedMsg{Summary: summary, Err: err}
	}
}

func searchTickCmd(seq int) tea.Cmd {
	return tea.Tick(searchDebounce, func(time.Time) tea.Msg {
		return searchTickMsg{Seq: seq}
	})
}

func clearStatusCmd(seq int) tea.Cmd {
	return tea.Tick(statusLinger, func(time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}
