package service

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/reelkeep/reelkeep/internal/domain"
)

// FilterSaved fuzzily matches query against the persisted records' titles
// and returns the matches ranked best-first. The persisted list itself is
// untouched; this is a view for quick in-collection lookup, not a catalog
// search.
func (a *App) FilterSaved(query string) []domain.MovieRecord {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	records := a.list.Records()
	if len(records) == 0 {
		return nil
	}

	titles := make([]string, len(records))
	byTitle := make(map[string]domain.MovieRecord, len(records))
	for i, rec := range records {
		titles[i] = rec.Title
		byTitle[rec.Title] = rec
	}

	matches := fuzzy.RankFindFold(query, titles)
	sort.Sort(matches)

	results := make([]domain.MovieRecord, 0, len(matches))
	for _, match := range matches {
		if rec, ok := byTitle[match.Target]; ok {
			results = append(results, rec)
		}
	}
	return results
}
