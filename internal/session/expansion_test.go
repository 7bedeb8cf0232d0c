package session

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
)

func TestToggleTheme_FetchesOnceAndMemoizes(t *testing.T) {
	var calls atomic.Int32

	queries := &stubQueries{
		sub: func(_ context.Context, base string, _ domain.FilterSet) ([]domain.ThemeHotnessRow, error) {
			calls.Add(1)

			return []domain.ThemeHotnessRow{{Theme: base + "/Task Volume", TotalComments: 5}}, nil
		},
	}
	s := newTestSession(t, queries, &stubInsights{}, nil)
	ctx := context.Background()

	assert.True(t, s.ToggleTheme(ctx, "Workload"))
	waitUpdate(t, s, func(u Update) bool { return u.Slice == SliceSubThemes })

	// Collapse, then re-expand: no further network call.
	assert.False(t, s.ToggleTheme(ctx, "Workload"))
	assert.True(t, s.ToggleTheme(ctx, "Workload"))

	rows, state := s.SubThemeRows("Workload")
	assert.Equal(t, ExpansionLoaded, state)
	assert.Len(t, rows, 1)
	assert.Equal(t, int32(1), calls.Load())
}

func TestToggleTheme_ConcurrentThemesIndependent(t *testing.T) {
	releaseA := make(chan struct{})
	queries := &stubQueries{
		sub: func(_ context.Context, base string, _ domain.FilterSet) ([]domain.ThemeHotnessRow, error) {
			if base == "A" {
				<-releaseA
			}

			return []domain.ThemeHotnessRow{{Theme: base}}, nil
		},
	}
	s := newTestSession(t, queries, &stubInsights{}, nil)
	ctx := context.Background()

	s.ToggleTheme(ctx, "A")
	s.ToggleTheme(ctx, "B")

	waitUpdate(t, s, func(u Update) bool {
		return u.Slice == SliceSubThemes && u.ViewConfig.Theme == "B"
	})

	_, stateA := s.SubThemeRows("A")
	assert.Equal(t, ExpansionLoading, stateA, "A still in flight while B loaded")

	close(releaseA)
	waitUpdate(t, s, func(u Update) bool {
		return u.Slice == SliceSubThemes && u.ViewConfig.Theme == "A"
	})

	_, stateA = s.SubThemeRows("A")
	assert.Equal(t, ExpansionLoaded, stateA)
}

func TestToggleTheme_LoadedEmptyIsNotAbsent(t *testing.T) {
	queries := &stubQueries{
		sub: func(_ context.Context, _ string, _ domain.FilterSet) ([]domain.ThemeHotnessRow, error) {
			return nil, nil
		},
	}
	s := newTestSession(t, queries, &stubInsights{}, nil)

	s.ToggleTheme(context.Background(), "Workload")
	waitUpdate(t, s, func(u Update) bool { return u.Slice == SliceSubThemes })

	rows, state := s.SubThemeRows("Workload")
	assert.Equal(t, ExpansionLoaded, state)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestToggleTheme_FailureCachesEmptyDefault(t *testing.T) {
	queries := &stubQueries{
		sub: func(_ context.Context, _ string, _ domain.FilterSet) ([]domain.ThemeHotnessRow, error) {
			return nil, errUpstream
		},
	}
	s := newTestSession(t, queries, &stubInsights{}, nil)

	s.ToggleTheme(context.Background(), "Workload")
	waitUpdate(t, s, func(u Update) bool { return u.Slice == SliceSubThemes })

	rows, state := s.SubThemeRows("Workload")
	assert.Equal(t, ExpansionLoaded, state)
	assert.Empty(t, rows)
	assert.True(t, s.IsExpanded("Workload"), "expansion flag survives a failed fetch")
}

func TestToggleTheme_RefreshMidFlightDoesNotStrandLoading(t *testing.T) {
	release := make(chan struct{})
	queries := &stubQueries{
		sub: func(_ context.Context, base string, _ domain.FilterSet) ([]domain.ThemeHotnessRow, error) {
			<-release

			return []domain.ThemeHotnessRow{{Theme: base + "/Deadlines"}}, nil
		},
	}
	s := newTestSession(t, queries, &stubInsights{}, nil)
	ctx := context.Background()

	s.ToggleTheme(ctx, "Workload") // fetch blocks on release
	s.Refresh(ctx)                 // bumps the epoch, stales the fetch
	waitSettled(t, s, 1)

	close(release)
	waitUntil(t, func() bool {
		_, state := s.SubThemeRows("Workload")

		return state == ExpansionAbsent
	}, "stale sub-theme fetch must clear the per-key loading flag")

	// Re-expanding after the discard must issue a fresh fetch.
	s.ToggleTheme(ctx, "Workload") // collapse
	s.ToggleTheme(ctx, "Workload") // expand again
	waitUpdate(t, s, func(u Update) bool { return u.Slice == SliceSubThemes })

	_, state := s.SubThemeRows("Workload")
	assert.Equal(t, ExpansionLoaded, state)
}

func TestToggleTheme_DoubleToggleWhileLoading(t *testing.T) {
	var calls atomic.Int32

	release := make(chan struct{})
	queries := &stubQueries{
		sub: func(_ context.Context, _ string, _ domain.FilterSet) ([]domain.ThemeHotnessRow, error) {
			calls.Add(1)
			<-release

			return []domain.ThemeHotnessRow{{Theme: "x"}}, nil
		},
	}
	s := newTestSession(t, queries, &stubInsights{}, nil)
	ctx := context.Background()

	s.ToggleTheme(ctx, "Workload") // expand, starts fetch
	s.ToggleTheme(ctx, "Workload") // collapse while loading
	s.ToggleTheme(ctx, "Workload") // expand again: fetch already in flight

	close(release)
	waitUpdate(t, s, func(u Update) bool { return u.Slice == SliceSubThemes })

	assert.Equal(t, int32(1), calls.Load(), "per-key loading flag must prevent duplicate fetches")
}
