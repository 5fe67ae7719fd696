package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/reelkeep/reelkeep/internal/domain"
	"github.com/reelkeep/reelkeep/internal/service"
	"github.com/reelkeep/reelkeep/internal/tui/styles"
	"github.com/reelkeep/reelkeep/internal/watchlist"
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch // Input focused, querying the catalog
	modeFilter // Input focused, fuzzy-filtering saved records
	modeDetail
)

// Model is the root bubbletea model.
type Model struct {
	app  *service.App
	keys KeyMap

	input  textinput.Model
	mode   mode
	cursor int

	rows        []watchlist.Row
	filteredIdx []int // Indexes into rows while filtering, nil otherwise

	detail domain.CatalogSummary

	width, height int
	loading       bool
	searching     bool

	status    string
	statusErr bool
	statusSeq int
	searchSeq int
}

// NewModel creates the root model.
func NewModel(app *service.App) Model {
	ti := textinput.New()
	ti.Placeholder = "Search for movies..."
	ti.CharLimit = 100
	ti.Prompt = "🔍 "

	return Model{
		app:     app,
		keys:    DefaultKeyMap(),
		input:   ti,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, refreshCmd(m.app))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 8
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case RecordsRefreshedMsg:
		m.loading = false
		if msg.Err != nil {
			return m.setStatus(statusText(msg.Err), true)
		}
		m.syncRows()
		return m, nil

	case SearchDoneMsg:
		m.searching = false
		m.syncRows()
		switch {
		case msg.Err != nil:
			return m.setStatus(statusText(msg.Err), true)
		case msg.Status == service.SearchNoMatch:
			return m.setStatus("Movie not found", true)
		}
		return m, nil

	case TransitionDoneMsg:
		m.syncRows()
		if msg.Err != nil {
			return m.setStatus(statusText(msg.Err), true)
		}
		return m.setStatus(msg.Decision.Message, msg.Decision.Outcome.NoOp())

	case DeleteDoneMsg:
		m.syncRows()
		if msg.Err != nil {
			return m.setStatus(statusText(msg.Err), true)
		}
		return m.setStatus("Movie deleted", false)

	case DetailLoadedMsg:
		if msg.Err != nil {
			return m.setStatus(statusText(msg.Err), true)
		}
		m.detail = msg.Summary
		m.mode = modeDetail
		return m, nil

	case searchTickMsg:
		if msg.Seq == m.searchSeq && m.mode == modeSearch {
			query := m.input.Value()
			if strings.TrimSpace(query) != "" {
				m.searching = true
				return m, searchCmd(m.app, query)
			}
		}
		return m, nil

	case ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.status = ""
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Typing modes forward everything except control keys to the input
	if m.mode == modeSearch || m.mode == modeFilter {
		return m.handleInputKey(msg)
	}
	if m.mode == modeDetail {
		return m.handleDetailKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visibleRows())-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.input.Placeholder = "Search for movies..."
		m.input.Prompt = "🔍 "
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Filter):
		m.mode = modeFilter
		m.input.Placeholder = "Filter saved movies..."
		m.input.Prompt = "/ "
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.CycleCategory):
		m.app.List().CycleCategory()
		m.cursor = 0
		m.syncRows()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		// Drop search results and fall back to the saved list
		m.app.List().ClearSearch()
		m.input.SetValue("")
		m.filteredIdx = nil
		m.cursor = 0
		m.syncRows()
		return m, nil

	case key.Matches(msg, m.keys.AddWatchlist):
		return m.transitionSelected(domain.ToWatchlist)

	case key.Matches(msg, m.keys.MarkWatched):
		return m.transitionSelected(domain.ToWatched)

	case key.Matches(msg, m.keys.Delete):
		row, ok := m.selectedRow()
		if !ok || row.Record == nil {
			return m.setStatus("Only saved movies can be deleted", true)
		}
		return m, deleteCmd(m.app, *row.Record)

	case key.Matches(msg, m.keys.Enter):
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		imdbID := ""
		if row.Summary != nil {
			imdbID = row.Summary.ImdbID
		} else if row.Record != nil {
			imdbID = row.Record.ImdbID
		}
		if imdbID == "" {
			return m.setStatus("No catalog details for this entry", true)
		}
		return m, lookupCmd(m.app, imdbID)

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, refreshCmd(m.app)

	case key.Matches(msg, m.keys.ResetIdentity):
		if err := m.app.ResetIdentity(); err != nil {
			return m.setStatus(statusText(err), true)
		}
		m.loading = true
		m.cursor = 0
		return m, refreshCmd(m.app)
	}

	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		wasFilter := m.mode == modeFilter
		m.mode = modeBrowse
		m.input.Blur()
		m.input.SetValue("")
		m.filteredIdx = nil
		if !wasFilter {
			// Abandoning search clears its results synchronously
			m.app.List().ClearSearch()
		}
		m.cursor = 0
		m.syncRows()
		return m, nil

	case "enter":
		// Keep the current results and return to list navigation
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil

	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	after := m.input.Value()
	if before == after {
		return m, cmd
	}

	if m.mode == modeFilter {
		m.applyFilter(after)
		m.cursor = 0
		return m, cmd
	}

	// Catalog search: the empty query clears state immediately with no
	// network call; anything else waits out the debounce interval
	if strings.TrimSpace(after) == "" {
		m.app.List().ClearSearch()
		m.searching = false
		m.searchSeq++
		m.cursor = 0
		m.syncRows()
		return m, cmd
	}
	m.searchSeq++
	m.cursor = 0
	return m, tea.Batch(cmd, searchTickCmd(m.searchSeq))
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Enter):
		// Returning from the detail view refetches the saved list in full
		m.mode = modeBrowse
		m.loading = true
		return m, refreshCmd(m.app)

	case key.Matches(msg, m.keys.AddWatchlist):
		return m, saveCmd(m.app, m.detail, domain.ToWatchlist)

	case key.Matches(msg, m.keys.MarkWatched):
		return m, saveCmd(m.app, m.detail, domain.ToWatched)
	}
	return m, nil
}

// transitionSelected routes a status key to the right operation for the
// selected row: summaries go through Save, records through SetStatus.
func (m Model) transitionSelected(target domain.TransitionTarget) (tea.Model, tea.Cmd) {
	row, ok := m.selectedRow()
	if !ok {
		return m, nil
	}
	if row.Summary != nil {
		return m, saveCmd(m.app, *row.Summary, target)
	}
	if row.Record != nil {
		return m, setStatusCmd(m.app, *row.Record, target)
	}
	return m, nil
}

func (m *Model) syncRows() {
	m.rows = m.app.List().Visible()
	if m.filteredIdx != nil {
		m.applyFilter(m.input.Value())
	}
	if max := len(m.visibleRows()) - 1; m.cursor > max {
		if max < 0 {
			m.cursor = 0
		} else {
			m.cursor = max
		}
	}
}

// applyFilter narrows the visible rows with fuzzy title matching.
func (m *Model) applyFilter(query string) {
	if strings.TrimSpace(query) == "" {
		m.filteredIdx = nil
		return
	}
	titles := make([]string, len(m.rows))
	for i, row := range m.rows {
		titles[i] = strings.ToLower(row.Title())
	}
	matches := fuzzy.Find(strings.ToLower(query), titles)
	m.filteredIdx = make([]int, len(matches))
	for i, match := range matches {
		m.filteredIdx[i] = match.Index
	}
}

func (m Model) visibleRows() []watchlist.Row {
	if m.filteredIdx == nil {
		return m.rows
	}
	rows := make([]watchlist.Row, 0, len(m.filteredIdx))
	for _, idx := range m.filteredIdx {
		if idx < len(m.rows) {
			rows = append(rows, m.rows[idx])
		}
	}
	return rows
}

func (m Model) selectedRow() (watchlist.Row, bool) {
	rows := m.visibleRows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return watchlist.Row{}, false
	}
	return rows[m.cursor], true
}

func (m Model) setStatus(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.status = text
	m.statusErr = isErr
	m.statusSeq++
	return m, clearStatusCmd(m.statusSeq)
}

// statusText maps domain errors to the transient notices the user sees.
func statusText(err error) string {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		return "Movie not found"
	case errors.Is(err, domain.ErrOperationInFlight):
		return "Still working on that movie, one moment"
	case errors.Is(err, domain.ErrTimedOut):
		return "Request timed out. Please try again"
	case errors.Is(err, domain.ErrIdentityUnavailable):
		return "Could not set up your local profile"
	case errors.Is(err, domain.ErrStoreWriteFailed):
		return "Could not save changes. Please try again"
	case errors.Is(err, domain.ErrSearchFailed):
		return "Search failed. Check your connection and try again"
	default:
		return "Something went wrong. Please try again"
	}
}

func (m Model) View() string {
	if m.mode == modeDetail {
		return m.viewDetail()
	}

	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("reelkeep"))
	b.WriteString("  ")
	b.WriteString(m.viewTabs())
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.viewList())
	b.WriteString("\n")
	b.WriteString(m.viewStatus())
	return b.String()
}

func (m Model) viewTabs() string {
	active := m.app.List().Category()
	var tabs []string
	for _, c := range []domain.Category{domain.CategoryAll, domain.CategoryWantToWatch, domain.CategoryWatched} {
		if c == active {
			tabs = append(tabs, styles.ActiveTabStyle.Render(c.String()))
		} else {
			tabs = append(tabs, styles.TabStyle.Render(c.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewList() string {
	rows := m.visibleRows()

	if m.loading && !m.app.List().Loaded() {
		return styles.DimStyle.Render("Loading...")
	}
	if m.searching {
		return styles.DimStyle.Render("Searching...")
	}
	if len(rows) == 0 {
		if m.app.List().SearchActive() || m.filteredIdx != nil {
			return styles.DimStyle.Render("No matches")
		}
		return styles.DimStyle.Render("No movies saved yet. Press / to search the catalog")
	}

	// The scroll window derives from the cursor alone
	visible := m.listHeight()
	offset := 0
	if m.cursor >= visible {
		offset = m.cursor - visible + 1
	}

	var b strings.Builder
	for i := offset; i < len(rows) && i < offset+visible; i++ {
		b.WriteString(m.renderRow(rows[i], i == m.cursor))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderRow(row watchlist.Row, selected bool) string {
	indicator := " "
	switch {
	case row.Record != nil && row.Record.Watched:
		indicator = styles.WatchedCheck
	case row.Record != nil && row.Record.WantToWatch:
		indicator = styles.WantToWatchDot
	case row.Summary != nil:
		// Annotate search rows already saved under the same title
		switch m.app.List().StatusForTitle(row.Summary.Title) {
		case domain.StatusWatched:
			indicator = styles.WatchedCheck
		case domain.StatusWantToWatch:
			indicator = styles.WantToWatchDot
		}
	}

	line := fmt.Sprintf("%s %s (%s)", indicator, row.Title(), row.Year())
	if selected {
		return styles.SelectedStyle.Render(line)
	}
	return "  " + line
}

func (m Model) viewDetail() string {
	d := m.detail
	saved := m.app.List().StatusForTitle(d.Title)

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(d.Title))
	if d.Year != "" {
		b.WriteString(styles.SubtitleStyle.Render(" (" + d.Year + ")"))
	}
	b.WriteString("\n\n")

	field := func(label, value string) {
		if value != "" && value != domain.PosterUnavailable {
			b.WriteString(styles.DimStyle.Render(label + ": "))
			b.WriteString(value)
			b.WriteString("\n")
		}
	}
	field("Type", d.Type)
	field("Genre", d.Genre)
	field("Runtime", d.Runtime)
	field("IMDb rating", d.ImdbRating)
	field("IMDb votes", d.ImdbVotes)

	b.WriteString("\n")
	if saved != domain.StatusNone {
		b.WriteString(styles.SuccessStyle.Render("Saved in " + saved.String()))
		b.WriteString("\n\n")
	}

	b.WriteString(styles.DimStyle.Render("a: add to watchlist • w: mark watched • esc: back"))
	b.WriteString("\n")
	b.WriteString(m.viewStatus())
	return b.String()
}

func (m Model) viewStatus() string {
	if m.status == "" {
		help := "/ search • f filter • tab lists • a watchlist • w watched • x delete • enter details • q quit"
		return styles.DimStyle.Render(help)
	}
	if m.statusErr {
		return styles.ErrorStyle.Render(m.status)
	}
	return styles.SuccessStyle.Render(m.status)
}

func (m Model) listHeight() int {
	// Header, input, status and padding take 7 lines
	h := m.height - 7
	if h < 3 {
		return 3
	}
	return h
}
