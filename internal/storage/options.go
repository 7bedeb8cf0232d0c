package db

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
)

// FilterOptions loads the selectable filter vocabulary: the theme hierarchy,
// languages ordered by comment volume, sources, and the available date range.
func (db *DB) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	options := domain.FilterOptions{ThemeMapping: map[string][]string{}}

	if err := db.loadThemeMapping(ctx, &options); err != nil {
		return domain.FilterOptions{}, err
	}

	languages, err := db.languagesByVolume(ctx)
	if err != nil {
		return domain.FilterOptions{}, err
	}

	options.Languages = languages

	sources, err := db.distinctSources(ctx)
	if err != nil {
		return domain.FilterOptions{}, err
	}

	options.Sources = sources

	dateRange, err := db.commentDateRange(ctx)
	if err != nil {
		return domain.FilterOptions{}, err
	}

	options.DateRange = dateRange

	return options, nil
}

func (db *DB) loadThemeMapping(ctx context.Context, options *domain.FilterOptions) error {
	rows, err := db.Pool.Query(ctx, `
		SELECT DISTINCT base_theme, sub_theme
		FROM comments
		WHERE base_theme IS NOT NULL
		  AND NOT (base_theme = ANY($1))
		  AND (sub_theme IS NULL OR NOT (sub_theme = ANY($1)))
		ORDER BY base_theme, sub_theme`, excludedThemes)
	if err != nil {
		return fmt.Errorf("theme mapping: %w", err)
	}
	defer rows.Close()

	seenSub := map[string]bool{}

	for rows.Next() {
		var (
			base string
			sub  pgtype.Text
		)

		if err := rows.Scan(&base, &sub); err != nil {
			return fmt.Errorf("scan theme mapping: %w", err)
		}

		if _, ok := options.ThemeMapping[base]; !ok {
			options.BaseThemes = append(options.BaseThemes, base)
			options.ThemeMapping[base] = []string{}
		}

		if sub.Valid {
			options.ThemeMapping[base] = append(options.ThemeMapping[base], sub.String)

			if !seenSub[sub.String] {
				seenSub[sub.String] = true
				options.SubThemes = append(options.SubThemes, sub.String)
			}
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("theme mapping rows: %w", err)
	}

	sort.Strings(options.SubThemes)

	return nil
}

// languagesByVolume returns languages ordered by comment count so the UI can
// surface the dominant ones first.
func (db *DB) languagesByVolume(ctx context.Context) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT language
		FROM comments
		WHERE language IS NOT NULL
		GROUP BY language
		ORDER BY count(*) DESC, language`)
	if err != nil {
		return nil, fmt.Errorf("languages: %w", err)
	}
	defer rows.Close()

	var out []string

	for rows.Next() {
		var language string

		if err := rows.Scan(&language); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}

		out = append(out, language)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("language rows: %w", err)
	}

	return out, nil
}

func (db *DB) distinctSources(ctx context.Context) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT DISTINCT source
		FROM comments
		WHERE source IS NOT NULL
		ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("sources: %w", err)
	}
	defer rows.Close()

	var out []string

	for rows.Next() {
		var source string

		if err := rows.Scan(&source); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}

		out = append(out, source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("source rows: %w", err)
	}

	return out, nil
}

func (db *DB) commentDateRange(ctx context.Context) (*domain.DateRange, error) {
	var minDate, maxDate pgtype.Date

	err := db.Pool.QueryRow(ctx, `SELECT min(date), max(date) FROM comments`).Scan(&minDate, &maxDate)
	if err != nil {
		return nil, fmt.Errorf("date range: %w", err)
	}

	if !minDate.Valid || !maxDate.Valid {
		return nil, nil
	}

	return &domain.DateRange{
		MinDate:  fromDate(minDate),
		MaxDate:  fromDate(maxDate),
		MinYear:  minDate.Time.Year(),
		MinMonth: int(minDate.Time.Month()),
		MaxYear:  maxDate.Time.Year(),
		MaxMonth: int(maxDate.Time.Month()),
	}, nil
}
