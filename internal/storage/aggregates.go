package db

import (
	"context"
	"fmt"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
)

// KPIs computes the headline numbers for the current filter selection:
// total comment count, eNPS, positive ratio and the base theme distribution.
func (db *DB) KPIs(ctx context.Context, filters domain.FilterSet) (domain.KPISummary, error) {
	b := filterBuilder(filters)

	row := db.Pool.QueryRow(ctx, `
		SELECT count(*) AS total,
		       count(*) FILTER (WHERE `+positiveCond+`) AS positive,
		       count(*) FILTER (WHERE `+negativeCond+`) AS negative
		FROM comments`+b.where(), b.args...)

	var total, positive, negative int64

	if err := row.Scan(&total, &positive, &negative); err != nil {
		return domain.KPISummary{}, fmt.Errorf("kpi counts: %w", err)
	}

	summary := domain.KPISummary{
		TotalComments:    safeInt64ToInt(total),
		PositiveComments: safeInt64ToInt(positive),
		NegativeComments: safeInt64ToInt(negative),
	}

	if total > 0 {
		summary.ENPS = round2(float64(positive) / float64(total) * 100)
	}

	distribution, err := db.themeDistribution(ctx, filters)
	if err != nil {
		return domain.KPISummary{}, err
	}

	summary.ThemeDistribution = distribution

	return summary, nil
}

func (db *DB) themeDistribution(ctx context.Context, filters domain.FilterSet) (map[string]int, error) {
	b := filterBuilder(filters)
	b.add("base_theme IS NOT NULL")

	rows, err := db.Pool.Query(ctx, `
		SELECT base_theme, count(*)
		FROM comments`+b.where()+`
		GROUP BY base_theme`, b.args...)
	if err != nil {
		return nil, fmt.Errorf("theme distribution: %w", err)
	}
	defer rows.Close()

	distribution := make(map[string]int)

	for rows.Next() {
		var (
			theme string
			count int64
		)

		if err := rows.Scan(&theme, &count); err != nil {
			return nil, fmt.Errorf("scan theme distribution: %w", err)
		}

		distribution[theme] = safeInt64ToInt(count)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("theme distribution rows: %w", err)
	}

	return distribution, nil
}

// MonthlyComments returns comment counts grouped by calendar month,
// oldest first.
func (db *DB) MonthlyComments(ctx context.Context, filters domain.FilterSet) ([]domain.MonthlyCount, error) {
	b := filterBuilder(filters)
	b.add("date IS NOT NULL")

	rows, err := db.Pool.Query(ctx, `
		SELECT to_char(date, 'YYYY-MM') AS month, count(*)
		FROM comments`+b.where()+`
		GROUP BY 1
		ORDER BY 1`, b.args...)
	if err != nil {
		return nil, fmt.Errorf("monthly comments: %w", err)
	}
	defer rows.Close()

	var out []domain.MonthlyCount

	for rows.Next() {
		var (
			month string
			count int64
		)

		if err := rows.Scan(&month, &count); err != nil {
			return nil, fmt.Errorf("scan monthly comments: %w", err)
		}

		out = append(out, domain.MonthlyCount{Month: month, Count: safeInt64ToInt(count)})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("monthly comments rows: %w", err)
	}

	return out, nil
}

// MonthlyENPS returns the eNPS score per calendar month, oldest first.
// Months with no comments are omitted rather than reported as zero.
func (db *DB) MonthlyENPS(ctx context.Context, filters domain.FilterSet) ([]domain.MonthlyENPS, error) {
	b := filterBuilder(filters)
	b.add("date IS NOT NULL")

	rows, err := db.Pool.Query(ctx, `
		SELECT to_char(date, 'YYYY-MM') AS month,
		       count(*) AS total,
		       count(*) FILTER (WHERE `+positiveCond+`) AS positive
		FROM comments`+b.where()+`
		GROUP BY 1
		ORDER BY 1`, b.args...)
	if err != nil {
		return nil, fmt.Errorf("monthly enps: %w", err)
	}
	defer rows.Close()

	var out []domain.MonthlyENPS

	for rows.Next() {
		var (
			month           string
			total, positive int64
		)

		if err := rows.Scan(&month, &total, &positive); err != nil {
			return nil, fmt.Errorf("scan monthly enps: %w", err)
		}

		entry := domain.MonthlyENPS{
			Month:    month,
			Total:    safeInt64ToInt(total),
			Positive: safeInt64ToInt(positive),
		}
		if total > 0 {
			entry.ENPS = round2(float64(positive) / float64(total) * 100)
		}

		out = append(out, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("monthly enps rows: %w", err)
	}

	return out, nil
}

// TopicHotness ranks base themes by summed likes under the current filters.
func (db *DB) TopicHotness(ctx context.Context, filters domain.FilterSet) ([]domain.ThemeHotnessRow, error) {
	b := filterBuilder(filters)
	b.add("base_theme IS NOT NULL")

	return db.hotnessRows(ctx, "base_theme", b)
}

// SubThemeHotness ranks the sub-themes of one base theme by summed likes.
func (db *DB) SubThemeHotness(ctx context.Context, baseTheme string, filters domain.FilterSet) ([]domain.ThemeHotnessRow, error) {
	b := filterBuilder(filters)
	b.add("base_theme = $%d", baseTheme)
	b.add("sub_theme IS NOT NULL")

	return db.hotnessRows(ctx, "sub_theme", b)
}

func (db *DB) hotnessRows(ctx context.Context, themeColumn string, b *condBuilder) ([]domain.ThemeHotnessRow, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+themeColumn+`,
		       COALESCE(sum(likes), 0) AS hotness,
		       count(*) AS total,
		       count(*) FILTER (WHERE `+positiveCond+`) AS positive
		FROM comments`+b.where()+`
		GROUP BY 1
		ORDER BY 2 DESC, 1`, b.args...)
	if err != nil {
		return nil, fmt.Errorf("hotness by %s: %w", themeColumn, err)
	}
	defer rows.Close()

	var out []domain.ThemeHotnessRow

	for rows.Next() {
		var (
			theme                    string
			hotness, total, positive int64
		)

		if err := rows.Scan(&theme, &hotness, &total, &positive); err != nil {
			return nil, fmt.Errorf("scan hotness row: %w", err)
		}

		row := domain.ThemeHotnessRow{
			Theme:         theme,
			HotnessScore:  float64(hotness),
			TotalComments: safeInt64ToInt(total),
		}
		if total > 0 {
			row.ENPSNow = round2(float64(positive) / float64(total) * 100)
		}

		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("hotness rows: %w", err)
	}

	return out, nil
}
