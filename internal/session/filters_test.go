package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
)

var workloadMapping = map[string][]string{
	"Workload":   {"Task Volume", "Overtime"},
	"Leadership": {"Communication", "Trust"},
}

func TestApplyFilter_PrunesUnreachableSubThemes(t *testing.T) {
	s := newTestSession(t, &stubQueries{}, &stubInsights{}, workloadMapping)
	ctx := context.Background()

	s.ApplyFilter(ctx, domain.FilterChange{
		BaseThemes: strs("Workload", "Leadership"),
		SubThemes:  strs("Task Volume", "Trust"),
	})

	s.ApplyFilter(ctx, domain.FilterChange{BaseThemes: strs("Workload")})

	got := s.Filters()
	assert.Equal(t, []string{"Task Volume"}, got.SubThemes)
}

func TestApplyFilter_EmptyBaseThemesKeepsSubThemes(t *testing.T) {
	// Empty BaseThemes means all sub-themes stay eligible: clearing the base
	// selection must not retroactively drop sub-theme selections.
	s := newTestSession(t, &stubQueries{}, &stubInsights{}, workloadMapping)
	ctx := context.Background()

	s.ApplyFilter(ctx, domain.FilterChange{
		BaseThemes: strs("Workload"),
		SubThemes:  strs("Task Volume"),
	})

	s.ApplyFilter(ctx, domain.FilterChange{BaseThemes: strs()})

	got := s.Filters()
	assert.Equal(t, []string{"Task Volume"}, got.SubThemes)
}

func TestApplyFilter_DropsSubThemesOutsideNewSelection(t *testing.T) {
	s := newTestSession(t, &stubQueries{}, &stubInsights{}, workloadMapping)
	ctx := context.Background()

	s.ApplyFilter(ctx, domain.FilterChange{
		BaseThemes: strs("Workload"),
		SubThemes:  strs("Task Volume", "Overtime"),
	})

	s.ApplyFilter(ctx, domain.FilterChange{BaseThemes: strs("Leadership")})

	got := s.Filters()
	assert.Empty(t, got.SubThemes)
	assert.Equal(t, []string{"Leadership"}, got.BaseThemes)
}

func TestApplyFilter_RejectsSubThemesNeverReachable(t *testing.T) {
	s := newTestSession(t, &stubQueries{}, &stubInsights{}, workloadMapping)
	ctx := context.Background()

	s.ApplyFilter(ctx, domain.FilterChange{
		BaseThemes: strs("Workload"),
		SubThemes:  strs("Task Volume", "Communication"),
	})

	got := s.Filters()
	assert.Equal(t, []string{"Task Volume"}, got.SubThemes)
}

func TestApplyFilter_ClearsFilterScopedCaches(t *testing.T) {
	s := newTestSession(t, &stubQueries{
		sub: func(_ context.Context, _ string, _ domain.FilterSet) ([]domain.ThemeHotnessRow, error) {
			return []domain.ThemeHotnessRow{{Theme: "Task Volume", TotalComments: 3}}, nil
		},
	}, &stubInsights{}, workloadMapping)
	ctx := context.Background()

	s.ToggleTheme(ctx, "Workload")
	waitUpdate(t, s, func(u Update) bool { return u.Slice == SliceSubThemes })

	s.RequestInsight(ctx, domain.ThemeTypeBase, "Workload")
	waitUpdate(t, s, func(u Update) bool { return u.Slice == SliceInsight })

	s.ApplyFilter(ctx, domain.FilterChange{Languages: strs("en")})

	_, state := s.SubThemeRows("Workload")
	assert.Equal(t, ExpansionAbsent, state)

	_, ok := s.Insight(domain.ThemeTypeBase, "Workload")
	assert.False(t, ok)
}

func TestClearFilters_ReplacesWholesale(t *testing.T) {
	s := newTestSession(t, &stubQueries{}, &stubInsights{}, workloadMapping)
	ctx := context.Background()

	s.ApplyFilter(ctx, domain.FilterChange{
		BaseThemes: strs("Workload"),
		Languages:  strs("en", "fr"),
		StartDate:  ptr("2024-01-01"),
	})

	s.ClearFilters(ctx)

	assert.Equal(t, domain.FilterSet{}, s.Filters())
}

func ptr(s string) *string { return &s }
