package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
)

func TestFetchCycle_LoadingUntilAllSettle(t *testing.T) {
	release := make(chan struct{})
	queries := &stubQueries{
		hotness: func(_ context.Context, _ domain.FilterSet) ([]domain.ThemeHotnessRow, error) {
			<-release

			return []domain.ThemeHotnessRow{{Theme: "Workload", HotnessScore: 12}}, nil
		},
	}
	s := newTestSession(t, queries, &stubInsights{}, nil)

	s.Refresh(context.Background())

	// Three fast slices commit; the cycle must still be loading while the
	// fourth is in flight.
	for range 3 {
		waitUpdate(t, s, func(u Update) bool { return u.Slice != SliceLoading })
	}

	assert.True(t, s.Loading())

	close(release)
	waitSettled(t, s, 1)
	assert.False(t, s.Loading())
}

func TestFetchCycle_PartialFailureKeepsOthers(t *testing.T) {
	queries := &stubQueries{
		kpis: func(_ context.Context, _ domain.FilterSet) (domain.KPISummary, error) {
			return domain.KPISummary{}, errUpstream
		},
		hotness: func(_ context.Context, _ domain.FilterSet) ([]domain.ThemeHotnessRow, error) {
			return []domain.ThemeHotnessRow{{Theme: "Workload", TotalComments: 7}}, nil
		},
	}
	s := newTestSession(t, queries, &stubInsights{}, nil)

	s.Refresh(context.Background())
	waitSettled(t, s, 1)

	assert.Equal(t, domain.KPISummary{}, s.KPIs(), "failed slice resets to zero default")
	assert.Len(t, s.TopicHotness(), 1, "other slices still apply")
	assert.False(t, s.Loading(), "failures still settle the cycle")
}

func TestFetchCycle_StaleResultsDiscarded(t *testing.T) {
	release := make(chan struct{})
	queries := &stubQueries{
		kpis: func(_ context.Context, f domain.FilterSet) (domain.KPISummary, error) {
			if len(f.Languages) > 0 && f.Languages[0] == "slow" {
				<-release

				return domain.KPISummary{TotalComments: 1}, nil
			}

			return domain.KPISummary{TotalComments: 2}, nil
		},
	}
	s := newTestSession(t, queries, &stubInsights{}, nil)
	ctx := context.Background()

	// Cycle 1 blocks on KPIs; cycle 2 is dispatched before cycle 1 resolves.
	s.ApplyFilter(ctx, domain.FilterChange{Languages: strs("slow")})
	s.ApplyFilter(ctx, domain.FilterChange{Languages: strs("fast")})
	waitSettled(t, s, 2)

	assert.Equal(t, 2, s.KPIs().TotalComments)

	// Let cycle 1's late response arrive; it must not overwrite cycle 2.
	close(release)
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 2, s.KPIs().TotalComments, "stale response must be discarded")
	assert.False(t, s.Loading())
}

func TestFetchCycle_ResultsAppliedPerSlice(t *testing.T) {
	queries := &stubQueries{
		monthly: func(_ context.Context, _ domain.FilterSet) ([]domain.MonthlyCount, error) {
			return []domain.MonthlyCount{{Month: "2025-01", Count: 40}}, nil
		},
		enps: func(_ context.Context, _ domain.FilterSet) ([]domain.MonthlyENPS, error) {
			return []domain.MonthlyENPS{{Month: "2025-01", ENPS: 55.5, Total: 40, Positive: 22}}, nil
		},
	}
	s := newTestSession(t, queries, &stubInsights{}, nil)

	s.Refresh(context.Background())
	waitSettled(t, s, 1)

	assert.Equal(t, 40, s.MonthlyComments()[0].Count)
	assert.InDelta(t, 55.5, s.MonthlyENPS()[0].ENPS, 0.001)
}
