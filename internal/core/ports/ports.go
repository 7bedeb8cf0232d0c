// Package ports provides domain-centric interfaces for external collaborators
// of the page-session core. The session depends on these interfaces only;
// the HTTP client adapters in internal/api implement them against the query
// service, and tests substitute in-memory fakes.
package ports

import (
	"context"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
)

// QueryService exposes the filtered read endpoints of the analytics backend.
// All reads are idempotent and fail independently of each other.
type QueryService interface {
	KPIs(ctx context.Context, filters domain.FilterSet) (domain.KPISummary, error)
	MonthlyComments(ctx context.Context, filters domain.FilterSet) ([]domain.MonthlyCount, error)
	MonthlyENPS(ctx context.Context, filters domain.FilterSet) ([]domain.MonthlyENPS, error)
	TopicHotness(ctx context.Context, filters domain.FilterSet) ([]domain.ThemeHotnessRow, error)
	SubThemeHotness(ctx context.Context, baseTheme string, filters domain.FilterSet) ([]domain.ThemeHotnessRow, error)
}

// InsightService returns the precomputed AI insight for one theme.
type InsightService interface {
	ThemeInsight(ctx context.Context, themeType, themeName string) (domain.ThemeInsight, error)
}

// OptionsService returns the selectable filter vocabulary. Consumed once at
// session start.
type OptionsService interface {
	FilterOptions(ctx context.Context) (domain.FilterOptions, error)
}

// BenchmarkService exposes the two-period comparison reads used by the
// radar and flow views. Metric is "count" or "enps"; dimension is a column
// name such as "source" or "language".
type BenchmarkService interface {
	RadarByMonth(ctx context.Context, monthA, monthB, metric string) (domain.RadarSeriesPair, error)
	RadarByYear(ctx context.Context, yearA, yearB, metric string) (domain.RadarSeriesPair, error)
	RadarByDimension(ctx context.Context, dimension, valueA, valueB, metric string) (domain.RadarSeriesPair, error)
}
