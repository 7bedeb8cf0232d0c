package session

import (
	"context"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
	"github.com/culturepulse/culture-pulse/internal/platform/observability"
)

const insightUnavailable = "Unable to load insights."

// FallbackInsight is stored when an insight fetch fails, so a failed fetch
// still yields a displayable entry instead of a blank panel.
func FallbackInsight() domain.ThemeInsight {
	return domain.ThemeInsight{
		PositiveSummary:         insightUnavailable,
		NegativeSummary:         insightUnavailable,
		PositiveRecommendations: []string{},
		NegativeRecommendations: []string{},
	}
}

// RequestInsight asks for the AI insight of one theme. The call is
// idempotent: if the entry is already cached, or a fetch for the same key is
// already in flight, it is a no-op. Rapid repeated UI interaction therefore
// triggers at most one network call per key, and the in-flight marker is
// cleared on every exit path so the UI can never get stuck loading.
func (s *Session) RequestInsight(ctx context.Context, themeType, themeName string) {
	key := domain.InsightKey(themeType, themeName)

	s.mu.Lock()

	if _, ok := s.insightEntries[key]; ok {
		s.mu.Unlock()
		observability.InsightCacheHits.Inc()

		return
	}

	if _, ok := s.insightInflight[key]; ok {
		s.mu.Unlock()

		return
	}

	s.insightInflight[key] = struct{}{}
	epoch := s.epoch
	s.mu.Unlock()

	observability.InsightCacheMisses.Inc()

	go s.fetchInsight(ctx, epoch, themeType, themeName, key)
}

// Insight returns the cached insight for a theme, if present.
func (s *Session) Insight(themeType, themeName string) (domain.ThemeInsight, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.insightEntries[domain.InsightKey(themeType, themeName)]

	return entry, ok
}

// InsightLoading reports whether a fetch for the theme's insight is in flight.
func (s *Session) InsightLoading(themeType, themeName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.insightInflight[domain.InsightKey(themeType, themeName)]

	return ok
}

func (s *Session) fetchInsight(ctx context.Context, epoch uint64, themeType, themeName, key string) {
	defer func() {
		s.mu.Lock()
		delete(s.insightInflight, key)
		s.mu.Unlock()
	}()

	entry, err := s.insights.ThemeInsight(ctx, themeType, themeName)
	if err != nil {
		s.logger.Warn().Err(err).Str("theme", themeName).Msg("insight fetch failed, caching fallback")

		entry = FallbackInsight()
	}

	s.mu.Lock()

	if epoch != s.epoch {
		s.mu.Unlock()
		observability.StaleResultsDiscarded.WithLabelValues(string(SliceInsight)).Inc()

		return
	}

	delete(s.insightInflight, key)
	s.insightEntries[key] = entry
	s.mu.Unlock()

	s.publish(Update{
		Slice:      SliceInsight,
		Epoch:      epoch,
		Payload:    entry,
		ViewConfig: ViewConfig{View: themeType, Theme: themeName},
	})
}
