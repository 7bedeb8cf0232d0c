package session

import (
	"context"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
	"github.com/culturepulse/culture-pulse/internal/platform/observability"
)

// ExpansionState describes what the session knows about one base theme's
// sub-theme breakdown.
type ExpansionState int

const (
	// ExpansionAbsent means no fetch has been issued for the theme in the
	// current filter epoch.
	ExpansionAbsent ExpansionState = iota
	// ExpansionLoading means a fetch is in flight.
	ExpansionLoading
	// ExpansionLoaded means rows are cached, possibly an empty breakdown.
	ExpansionLoaded
)

// ToggleTheme flips the expanded flag for a base theme and returns the new
// state. The first expansion of a theme issues a fetch scoped to the current
// filters; later toggles within the same filter epoch reuse the cached rows
// with no network call. Expansions of different themes may be in flight
// simultaneously. Collapsing never evicts the cache entry.
func (s *Session) ToggleTheme(ctx context.Context, baseTheme string) bool {
	s.mu.Lock()

	expanded := !s.expanded[baseTheme]
	s.expanded[baseTheme] = expanded

	if !expanded {
		s.mu.Unlock()

		return false
	}

	if _, ok := s.subRows[baseTheme]; ok {
		s.mu.Unlock()
		observability.ExpansionCacheHits.Inc()

		return true
	}

	if s.subLoading[baseTheme] {
		s.mu.Unlock()

		return true
	}

	s.subLoading[baseTheme] = true
	epoch := s.epoch
	filters := s.filters
	s.mu.Unlock()

	go s.fetchSubThemes(ctx, epoch, baseTheme, filters)

	return true
}

// SubThemeRows returns the cached sub-theme breakdown for a base theme along
// with its expansion state.
func (s *Session) SubThemeRows(baseTheme string) ([]domain.ThemeHotnessRow, ExpansionState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rows, ok := s.subRows[baseTheme]; ok {
		return rows, ExpansionLoaded
	}

	if s.subLoading[baseTheme] {
		return nil, ExpansionLoading
	}

	return nil, ExpansionAbsent
}

// IsExpanded reports the expanded/collapsed flag for a base theme.
func (s *Session) IsExpanded(baseTheme string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.expanded[baseTheme]
}

func (s *Session) fetchSubThemes(ctx context.Context, epoch uint64, baseTheme string, filters domain.FilterSet) {
	rows, err := s.queries.SubThemeHotness(ctx, baseTheme, filters)
	if err != nil {
		s.recordSliceFailure(SliceSubThemes, err)

		rows = []domain.ThemeHotnessRow{}
	}

	s.mu.Lock()

	// Clear the flag on every exit path: a stranded flag would report the
	// theme as loading forever and block any refetch.
	delete(s.subLoading, baseTheme)

	if epoch != s.epoch {
		// A newer cycle owns the caches now; drop the result.
		s.mu.Unlock()
		observability.StaleResultsDiscarded.WithLabelValues(string(SliceSubThemes)).Inc()

		return
	}

	if rows == nil {
		rows = []domain.ThemeHotnessRow{}
	}

	s.subRows[baseTheme] = rows
	s.mu.Unlock()

	s.publish(Update{
		Slice:      SliceSubThemes,
		Epoch:      epoch,
		Payload:    rows,
		ViewConfig: ViewConfig{View: "drilldown", Theme: baseTheme},
	})
}
