package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
)

// ErrInsightNotFound is returned when no insight has been generated for a theme.
var ErrInsightNotFound = errors.New("theme insight not found")

// ThemeInsightEntry is one persisted AI insight, keyed by theme type and name.
type ThemeInsightEntry struct {
	ThemeType string
	ThemeName string
	Insight   domain.ThemeInsight
	Model     string
	UpdatedAt time.Time
}

func (db *DB) GetThemeInsight(ctx context.Context, themeType, themeName string) (*ThemeInsightEntry, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT theme_type,
		       theme_name,
		       positive_summary,
		       negative_summary,
		       positive_recommendations,
		       negative_recommendations,
		       model,
		       updated_at
		FROM theme_insights
		WHERE theme_type = $1 AND theme_name = $2
	`, themeType, themeName)

	var (
		entry    ThemeInsightEntry
		posRecs  []byte
		negRecs  []byte
		recLists = [2]*[]string{
			&entry.Insight.PositiveRecommendations,
			&entry.Insight.NegativeRecommendations,
		}
	)

	err := row.Scan(
		&entry.ThemeType,
		&entry.ThemeName,
		&entry.Insight.PositiveSummary,
		&entry.Insight.NegativeSummary,
		&posRecs,
		&negRecs,
		&entry.Model,
		&entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInsightNotFound
		}

		return nil, fmt.Errorf("get theme insight: %w", err)
	}

	for i, raw := range [][]byte{posRecs, negRecs} {
		if len(raw) == 0 {
			continue
		}

		if err := json.Unmarshal(raw, recLists[i]); err != nil {
			return nil, fmt.Errorf("decode recommendations: %w", err)
		}
	}

	for _, recs := range recLists {
		if *recs == nil {
			*recs = []string{}
		}
	}

	return &entry, nil
}

func (db *DB) UpsertThemeInsight(ctx context.Context, entry *ThemeInsightEntry) error {
	if entry == nil {
		return nil
	}

	posRecs, err := json.Marshal(entry.Insight.PositiveRecommendations)
	if err != nil {
		return fmt.Errorf("encode positive recommendations: %w", err)
	}

	negRecs, err := json.Marshal(entry.Insight.NegativeRecommendations)
	if err != nil {
		return fmt.Errorf("encode negative recommendations: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO theme_insights (
			theme_type,
			theme_name,
			positive_summary,
			negative_summary,
			positive_recommendations,
			negative_recommendations,
			model,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (theme_type, theme_name) DO UPDATE SET
			positive_summary = EXCLUDED.positive_summary,
			negative_summary = EXCLUDED.negative_summary,
			positive_recommendations = EXCLUDED.positive_recommendations,
			negative_recommendations = EXCLUDED.negative_recommendations,
			model = EXCLUDED.model,
			updated_at = now()
	`, entry.ThemeType, entry.ThemeName,
		SanitizeUTF8(entry.Insight.PositiveSummary), SanitizeUTF8(entry.Insight.NegativeSummary),
		posRecs, negRecs, toText(entry.Model))
	if err != nil {
		return fmt.Errorf("upsert theme insight: %w", err)
	}

	return nil
}
