package db

import (
	"context"
	"fmt"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
)

// DailySentimentRow is one (theme, day, sentiment) bucket of a hot-topics
// window. Unlabeled rows count as neutral.
type DailySentimentRow struct {
	Theme     string
	Day       string // YYYY-MM-DD
	Sentiment string
	Count     int
	Likes     int
}

// ThemeDailySentiment aggregates sentiment counts and likes per base theme
// and day over the inclusive [start, end] window.
func (db *DB) ThemeDailySentiment(ctx context.Context, start, end string) ([]DailySentimentRow, error) {
	b := filterBuilder(domain.FilterSet{StartDate: start, EndDate: end})
	b.add("base_theme IS NOT NULL")

	rows, err := db.Pool.Query(ctx, `
		SELECT base_theme,
		       to_char(date, 'YYYY-MM-DD') AS day,
		       COALESCE(sentiment, 'neutral') AS sentiment,
		       count(*) AS total,
		       COALESCE(sum(likes), 0) AS likes
		FROM comments`+b.where()+`
		GROUP BY 1, 2, 3
		ORDER BY 1, 2`, b.args...)
	if err != nil {
		return nil, fmt.Errorf("daily sentiment: %w", err)
	}
	defer rows.Close()

	var out []DailySentimentRow

	for rows.Next() {
		var (
			row          DailySentimentRow
			count, likes int64
		)

		if err := rows.Scan(&row.Theme, &row.Day, &row.Sentiment, &count, &likes); err != nil {
			return nil, fmt.Errorf("scan daily sentiment: %w", err)
		}

		row.Count = safeInt64ToInt(count)
		row.Likes = safeInt64ToInt(likes)
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("daily sentiment rows: %w", err)
	}

	return out, nil
}

// ThemeSampleContents returns up to perTheme recent comment excerpts per base
// theme inside the window, truncated to 200 characters.
func (db *DB) ThemeSampleContents(ctx context.Context, start, end string, perTheme int) (map[string][]string, error) {
	b := filterBuilder(domain.FilterSet{StartDate: start, EndDate: end})
	b.add("base_theme IS NOT NULL")
	b.add("content IS NOT NULL AND content <> ''")

	query := fmt.Sprintf(`
		SELECT base_theme, left(content, 200)
		FROM (
			SELECT base_theme, content,
			       row_number() OVER (PARTITION BY base_theme ORDER BY date DESC, id) AS rn
			FROM comments%s
		) samples
		WHERE rn <= $%d`, b.where(), len(b.args)+1)

	rows, err := db.Pool.Query(ctx, query, append(b.args, perTheme)...)
	if err != nil {
		return nil, fmt.Errorf("sample contents: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)

	for rows.Next() {
		var theme, content string

		if err := rows.Scan(&theme, &content); err != nil {
			return nil, fmt.Errorf("scan sample content: %w", err)
		}

		out[theme] = append(out[theme], content)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sample content rows: %w", err)
	}

	return out, nil
}
