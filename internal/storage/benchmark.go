package db

import (
	"context"
	"fmt"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
)

// Period selects one slice of comments for a benchmark comparison: a date
// window, a dimension value, or both. The date window is half-open
// [StartDate, EndDate).
type Period struct {
	StartDate string
	EndDate   string
	Dimension string // "language" or "source", empty for none
	Value     string
}

// ThemePeriodStats is the per-base-theme volume of one benchmark period.
type ThemePeriodStats struct {
	Theme    string
	Total    int
	Positive int
}

// Dimensions that may be compared in benchmark queries. Restricting to
// known columns keeps user input out of the SQL text.
var benchmarkDimensions = map[string]string{
	"language": "language",
	"source":   "source",
}

// ErrUnknownDimension is returned when a benchmark request names a
// dimension that is not comparable.
var ErrUnknownDimension = fmt.Errorf("unknown benchmark dimension")

// ThemeStatsByPeriod aggregates comment counts per base theme for one
// benchmark period.
func (db *DB) ThemeStatsByPeriod(ctx context.Context, p Period) ([]ThemePeriodStats, error) {
	b := &condBuilder{}
	b.add("(base_theme IS NULL OR NOT (base_theme = ANY($%d)))", excludedThemes)
	b.add("(sub_theme IS NULL OR NOT (sub_theme = ANY($%d)))", excludedThemes)
	b.add("base_theme IS NOT NULL")

	if p.StartDate != "" {
		b.add("date >= $%d", p.StartDate)
	}

	if p.EndDate != "" {
		b.add("date < $%d", p.EndDate)
	}

	if p.Dimension != "" {
		column, ok := benchmarkDimensions[p.Dimension]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, p.Dimension)
		}

		b.add(column+" = $%d", p.Value)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT base_theme,
		       count(*) AS total,
		       count(*) FILTER (WHERE `+positiveCond+`) AS positive
		FROM comments`+b.where()+`
		GROUP BY base_theme`, b.args...)
	if err != nil {
		return nil, fmt.Errorf("theme stats by period: %w", err)
	}
	defer rows.Close()

	var out []ThemePeriodStats

	for rows.Next() {
		var (
			theme           string
			total, positive int64
		)

		if err := rows.Scan(&theme, &total, &positive); err != nil {
			return nil, fmt.Errorf("scan period stats: %w", err)
		}

		out = append(out, ThemePeriodStats{
			Theme:    theme,
			Total:    safeInt64ToInt(total),
			Positive: safeInt64ToInt(positive),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("period stats rows: %w", err)
	}

	return out, nil
}

// SubThemeYearStats aggregates sentiment counts per sub-theme for one
// calendar year, used by the risky and positive theme rankings.
func (db *DB) SubThemeYearStats(ctx context.Context, year int) ([]domain.ThemeYearStats, error) {
	b := &condBuilder{}
	b.add("(base_theme IS NULL OR NOT (base_theme = ANY($%d)))", excludedThemes)
	b.add("(sub_theme IS NULL OR NOT (sub_theme = ANY($%d)))", excludedThemes)
	b.add("sub_theme IS NOT NULL")
	b.add("date >= $%d", fmt.Sprintf("%04d-01-01", year))
	b.add("date < $%d", fmt.Sprintf("%04d-01-01", year+1))

	// Per-theme ratings use a lower likes threshold than the headline
	// aggregates so sparse sub-themes still split into polarities.
	rows, err := db.Pool.Query(ctx, `
		SELECT sub_theme,
		       count(*) AS total,
		       count(*) FILTER (WHERE sentiment = 'positive' OR (sentiment IS NULL AND likes > 0)) AS positive,
		       count(*) FILTER (WHERE sentiment = 'negative' OR (sentiment IS NULL AND likes < 0)) AS negative
		FROM comments`+b.where()+`
		GROUP BY sub_theme`, b.args...)
	if err != nil {
		return nil, fmt.Errorf("sub-theme year stats: %w", err)
	}
	defer rows.Close()

	var out []domain.ThemeYearStats

	for rows.Next() {
		var (
			theme                     string
			total, positive, negative int64
		)

		if err := rows.Scan(&theme, &total, &positive, &negative); err != nil {
			return nil, fmt.Errorf("scan year stats: %w", err)
		}

		out = append(out, domain.ThemeYearStats{
			Theme:    theme,
			Count:    safeInt64ToInt(total),
			Positive: safeInt64ToInt(positive),
			Negative: safeInt64ToInt(negative),
			Neutral:  safeInt64ToInt(total - positive - negative),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("year stats rows: %w", err)
	}

	return out, nil
}
