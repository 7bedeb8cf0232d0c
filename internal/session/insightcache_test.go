package session

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
)

func TestRequestInsight_IdempotentWhileInFlight(t *testing.T) {
	var calls atomic.Int32

	release := make(chan struct{})
	insights := &stubInsights{
		fn: func(_ context.Context, _, _ string) (domain.ThemeInsight, error) {
			calls.Add(1)
			<-release

			return domain.ThemeInsight{PositiveSummary: "ok"}, nil
		},
	}
	s := newTestSession(t, &stubQueries{}, insights, nil)
	ctx := context.Background()

	// Rapid repeated interaction before the first fetch resolves.
	s.RequestInsight(ctx, domain.ThemeTypeSub, "Workload")
	s.RequestInsight(ctx, domain.ThemeTypeSub, "Workload")
	s.RequestInsight(ctx, domain.ThemeTypeSub, "Workload")

	close(release)
	waitUpdate(t, s, func(u Update) bool { return u.Slice == SliceInsight })

	assert.Equal(t, int32(1), calls.Load(), "exactly one network call per key")
}

func TestRequestInsight_CachedEntryIsNoOp(t *testing.T) {
	var calls atomic.Int32

	insights := &stubInsights{
		fn: func(_ context.Context, _, _ string) (domain.ThemeInsight, error) {
			calls.Add(1)

			return domain.ThemeInsight{PositiveSummary: "cached"}, nil
		},
	}
	s := newTestSession(t, &stubQueries{}, insights, nil)
	ctx := context.Background()

	s.RequestInsight(ctx, domain.ThemeTypeBase, "Culture")
	waitUpdate(t, s, func(u Update) bool { return u.Slice == SliceInsight })

	s.RequestInsight(ctx, domain.ThemeTypeBase, "Culture")

	entry, ok := s.Insight(domain.ThemeTypeBase, "Culture")
	assert.True(t, ok)
	assert.Equal(t, "cached", entry.PositiveSummary)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRequestInsight_DifferentKeysFetchIndependently(t *testing.T) {
	var calls atomic.Int32

	insights := &stubInsights{
		fn: func(_ context.Context, _, name string) (domain.ThemeInsight, error) {
			calls.Add(1)

			return domain.ThemeInsight{PositiveSummary: name}, nil
		},
	}
	s := newTestSession(t, &stubQueries{}, insights, nil)
	ctx := context.Background()

	s.RequestInsight(ctx, domain.ThemeTypeSub, "Workload")
	s.RequestInsight(ctx, domain.ThemeTypeBase, "Workload")

	for range 2 {
		waitUpdate(t, s, func(u Update) bool { return u.Slice == SliceInsight })
	}

	assert.Equal(t, int32(2), calls.Load(), "base and sub theme of the same name are distinct keys")
}

func TestRequestInsight_FailureStoresFallbackAndClearsInFlight(t *testing.T) {
	insights := &stubInsights{
		fn: func(_ context.Context, _, _ string) (domain.ThemeInsight, error) {
			return domain.ThemeInsight{}, errUpstream
		},
	}
	s := newTestSession(t, &stubQueries{}, insights, nil)
	ctx := context.Background()

	s.RequestInsight(ctx, domain.ThemeTypeSub, "Workload")
	waitUpdate(t, s, func(u Update) bool { return u.Slice == SliceInsight })

	entry, ok := s.Insight(domain.ThemeTypeSub, "Workload")
	assert.True(t, ok, "a failed fetch still yields a displayable entry")
	assert.Equal(t, domain.ThemeInsight{
		PositiveSummary:         "Unable to load insights.",
		NegativeSummary:         "Unable to load insights.",
		PositiveRecommendations: []string{},
		NegativeRecommendations: []string{},
	}, entry)
	assert.False(t, s.InsightLoading(domain.ThemeTypeSub, "Workload"), "in-flight marker must be cleared")
}
