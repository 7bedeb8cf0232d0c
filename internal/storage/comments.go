package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pgvector/pgvector-go"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
)

// themeTypeColumns maps insight theme types to the comment column holding
// that theme level.
var themeTypeColumns = map[string]string{
	domain.ThemeTypeBase: "base_theme",
	domain.ThemeTypeSub:  "sub_theme",
}

// ErrUnknownThemeType is returned when a theme type is neither base nor sub.
var ErrUnknownThemeType = fmt.Errorf("unknown theme type")

// CommentsForTheme fetches up to limit comments of one polarity for a theme,
// most liked first. Cached embeddings come back with the rows so callers can
// skip re-embedding.
func (db *DB) CommentsForTheme(ctx context.Context, themeType, themeName string, positive bool, limit int) ([]domain.Comment, error) {
	column, ok := themeTypeColumns[themeType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownThemeType, themeType)
	}

	polarity := positiveCond
	if !positive {
		polarity = negativeCond
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, content, language, source, base_theme, sub_theme, sentiment, likes, date, embedding
		FROM comments
		WHERE `+column+` = $1 AND `+polarity+`
		ORDER BY abs(likes) DESC, id
		LIMIT $2`, themeName, limit)
	if err != nil {
		return nil, fmt.Errorf("comments for theme: %w", err)
	}
	defer rows.Close()

	var out []domain.Comment

	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("comment rows: %w", err)
	}

	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComment(row rowScanner) (domain.Comment, error) {
	var (
		id        pgtype.UUID
		content   string
		language  pgtype.Text
		source    pgtype.Text
		baseTheme pgtype.Text
		subTheme  pgtype.Text
		sentiment pgtype.Text
		likes     pgtype.Int8
		date      pgtype.Date
		embedding *pgvector.Vector
	)

	if err := row.Scan(&id, &content, &language, &source, &baseTheme, &subTheme, &sentiment, &likes, &date, &embedding); err != nil {
		return domain.Comment{}, fmt.Errorf("scan comment: %w", err)
	}

	comment := domain.Comment{
		ID:        fromUUID(id),
		Content:   content,
		Language:  fromText(language),
		Source:    fromText(source),
		BaseTheme: fromText(baseTheme),
		SubTheme:  fromText(subTheme),
		Sentiment: fromText(sentiment),
		Likes:     fromInt8(likes),
		Date:      fromDate(date),
	}

	if embedding != nil {
		comment.Embedding = embedding.Slice()
	}

	return comment, nil
}

// SaveCommentEmbedding caches the embedding vector for one comment.
func (db *DB) SaveCommentEmbedding(ctx context.Context, id string, embedding []float32) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE comments SET embedding = $2 WHERE id = $1
	`, toUUID(id), pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("save comment embedding: %w", err)
	}

	return nil
}
