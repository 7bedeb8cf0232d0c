package session

import (
	"context"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
)

// ApplyFilter applies a partial filter change and starts a new fetch cycle.
// When BaseThemes changes, sub-theme selections no longer reachable through
// the theme mapping are pruned synchronously. Every mutation invalidates the
// expansion and insight caches: cached aggregates are filter-scoped and would
// otherwise be stale. Last write wins; there is no undo history.
func (s *Session) ApplyFilter(ctx context.Context, change domain.FilterChange) {
	s.mu.Lock()

	if change.BaseThemes != nil {
		s.filters.BaseThemes = *change.BaseThemes
		s.filters.SubThemes = s.reachableSubThemes(s.filters.SubThemes, s.filters.BaseThemes)
	}

	if change.SubThemes != nil {
		s.filters.SubThemes = s.reachableSubThemes(*change.SubThemes, s.filters.BaseThemes)
	}

	if change.Languages != nil {
		s.filters.Languages = *change.Languages
	}

	if change.Sources != nil {
		s.filters.Sources = *change.Sources
	}

	if change.StartDate != nil {
		s.filters.StartDate = *change.StartDate
	}

	if change.EndDate != nil {
		s.filters.EndDate = *change.EndDate
	}

	s.invalidateCachesLocked()
	s.startCycleLocked(ctx)
	s.mu.Unlock()
}

// ClearFilters replaces the filter selection wholesale with the empty set and
// starts a new fetch cycle.
func (s *Session) ClearFilters(ctx context.Context) {
	s.mu.Lock()
	s.filters = domain.FilterSet{}
	s.invalidateCachesLocked()
	s.startCycleLocked(ctx)
	s.mu.Unlock()
}

// Refresh re-runs the fetch cycle for the current filters, e.g. for the
// initial page load.
func (s *Session) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.startCycleLocked(ctx)
	s.mu.Unlock()
}

// reachableSubThemes keeps only sub-themes that belong to at least one
// selected base theme. An empty base-theme selection means every base theme
// is in scope, so all sub-themes stay eligible: clearing BaseThemes never
// retroactively drops a sub-theme selection.
func (s *Session) reachableSubThemes(subThemes, baseThemes []string) []string {
	if len(subThemes) == 0 || len(baseThemes) == 0 {
		return subThemes
	}

	eligible := make(map[string]struct{})

	for _, base := range baseThemes {
		for _, sub := range s.mapping[base] {
			eligible[sub] = struct{}{}
		}
	}

	kept := make([]string, 0, len(subThemes))

	for _, sub := range subThemes {
		if _, ok := eligible[sub]; ok {
			kept = append(kept, sub)
		}
	}

	return kept
}

// invalidateCachesLocked drops every filter-scoped cache: sub-theme expansion
// rows and theme insights. In-flight fetches for the old epoch discard their
// results on arrival.
func (s *Session) invalidateCachesLocked() {
	s.expanded = map[string]bool{}
	s.subRows = map[string][]domain.ThemeHotnessRow{}
	s.subLoading = map[string]bool{}
	s.insightEntries = map[string]domain.ThemeInsight{}
	s.insightInflight = map[string]struct{}{}
}
