package insightgen

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
	"github.com/culturepulse/culture-pulse/internal/llm"
	"github.com/culturepulse/culture-pulse/internal/platform/config"
	"github.com/culturepulse/culture-pulse/internal/platform/observability"
	db "github.com/culturepulse/culture-pulse/internal/storage"
)

// maxCommentsPerTheme caps how many comments are fetched per theme and
// polarity before sampling.
const maxCommentsPerTheme = 600

type Generator struct {
	db     *db.DB
	llm    llm.Client
	cfg    *config.Config
	logger *zerolog.Logger
}

func New(database *db.DB, client llm.Client, cfg *config.Config, logger *zerolog.Logger) *Generator {
	return &Generator{db: database, llm: client, cfg: cfg, logger: logger}
}

// Run generates and persists insights for every base theme and sub-theme,
// processing themes concurrently. A failed theme is logged and does not stop
// the rest.
func (g *Generator) Run(ctx context.Context) error {
	options, err := g.db.FilterOptions(ctx)
	if err != nil {
		return fmt.Errorf("load themes: %w", err)
	}

	type themeRef struct {
		themeType string
		name      string
	}

	var themes []themeRef
	for _, name := range options.BaseThemes {
		themes = append(themes, themeRef{domain.ThemeTypeBase, name})
	}

	for _, name := range options.SubThemes {
		themes = append(themes, themeRef{domain.ThemeTypeSub, name})
	}

	g.logger.Info().Int("themes", len(themes)).Msg("Starting insight generation")

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(g.cfg.InsightConcurrency)

	for _, theme := range themes {
		group.Go(func() error {
			if err := g.GenerateTheme(groupCtx, theme.themeType, theme.name); err != nil {
				observability.InsightsGenerated.WithLabelValues("error").Inc()
				g.logger.Error().Err(err).
					Str("theme_type", theme.themeType).
					Str("theme", theme.name).
					Msg("Insight generation failed")

				return nil
			}

			observability.InsightsGenerated.WithLabelValues("ok").Inc()

			return nil
		})
	}

	return group.Wait()
}

// GenerateTheme builds and persists the insight for one theme.
func (g *Generator) GenerateTheme(ctx context.Context, themeType, themeName string) error {
	positive, err := g.polarityInsight(ctx, themeType, themeName, true)
	if err != nil {
		return err
	}

	negative, err := g.polarityInsight(ctx, themeType, themeName, false)
	if err != nil {
		return err
	}

	entry := &db.ThemeInsightEntry{
		ThemeType: themeType,
		ThemeName: themeName,
		Insight: domain.ThemeInsight{
			PositiveSummary:         positive.Summary,
			NegativeSummary:         negative.Summary,
			PositiveRecommendations: positive.Recommendations,
			NegativeRecommendations: negative.Recommendations,
		},
		Model: g.cfg.LLMModel,
	}

	if err := g.db.UpsertThemeInsight(ctx, entry); err != nil {
		return fmt.Errorf("persist insight: %w", err)
	}

	g.logger.Info().
		Str("theme_type", themeType).
		Str("theme", themeName).
		Msg("Insight stored")

	return nil
}

func (g *Generator) polarityInsight(ctx context.Context, themeType, themeName string, positive bool) (llm.InsightResult, error) {
	label := llm.LabelNegative
	if positive {
		label = llm.LabelPositive
	}

	comments, err := g.db.CommentsForTheme(ctx, themeType, themeName, positive, maxCommentsPerTheme)
	if err != nil {
		return llm.InsightResult{}, fmt.Errorf("fetch %s comments: %w", label, err)
	}

	comments = evenlySample(comments, g.cfg.InsightMaxPerPolarity)
	if len(comments) == 0 {
		return llm.InsightResult{Recommendations: []string{}}, nil
	}

	embeddings, err := g.ensureEmbeddings(ctx, comments)
	if err != nil {
		return llm.InsightResult{}, err
	}

	groups := clusterEmbeddings(embeddings, g.cfg.InsightMinComments, g.cfg.InsightMaxClusters)

	digests, err := g.buildDigests(ctx, comments, groups)
	if err != nil {
		return llm.InsightResult{}, err
	}

	result, err := g.llm.GenerateInsight(ctx, llm.InsightRequest{
		ThemeType:      themeType,
		ThemeName:      themeName,
		SentimentLabel: label,
		TotalComments:  len(comments),
		Clusters:       digests,
	})
	if err != nil {
		return llm.InsightResult{}, fmt.Errorf("generate %s insight: %w", label, err)
	}

	return result, nil
}

// ensureEmbeddings returns one vector per comment, embedding and caching
// the ones the database does not have yet.
func (g *Generator) ensureEmbeddings(ctx context.Context, comments []domain.Comment) ([][]float32, error) {
	embeddings := make([][]float32, len(comments))

	var (
		missingIdx   []int
		missingTexts []string
	)

	for i, comment := range comments {
		if len(comment.Embedding) > 0 {
			embeddings[i] = comment.Embedding
			continue
		}

		missingIdx = append(missingIdx, i)
		missingTexts = append(missingTexts, comment.Content)
	}

	if len(missingIdx) == 0 {
		return embeddings, nil
	}

	fresh, err := g.llm.EmbedTexts(ctx, missingTexts)
	if err != nil {
		return nil, fmt.Errorf("embed comments: %w", err)
	}

	for j, i := range missingIdx {
		embeddings[i] = fresh[j]

		if err := g.db.SaveCommentEmbedding(ctx, comments[i].ID, fresh[j]); err != nil {
			g.logger.Warn().Err(err).Str("comment_id", comments[i].ID).Msg("Failed to cache embedding")
		}
	}

	return embeddings, nil
}

// buildDigests summarizes a few example comments per cluster and extracts
// keywords over the full cluster text.
func (g *Generator) buildDigests(ctx context.Context, comments []domain.Comment, groups []clusterGroup) ([]llm.ClusterDigest, error) {
	digests := make([]llm.ClusterDigest, 0, len(groups))

	for _, group := range groups {
		texts := make([]string, len(group.Indices))
		for i, idx := range group.Indices {
			texts[i] = comments[idx].Content
		}

		var examples []string

		for _, idx := range evenlySample(group.Indices, examplesPerCluster) {
			lines, err := g.llm.SummarizeFeedback(ctx, comments[idx].Content)
			if err != nil {
				g.logger.Warn().Err(err).Msg("Summary failed, using truncated comment")

				content := comments[idx].Content
				if len(content) > 150 {
					content = content[:150]
				}

				lines = []string{"- " + content}
			}

			examples = append(examples, lines...)
		}

		digests = append(digests, llm.ClusterDigest{
			Size:     len(group.Indices),
			Keywords: keywordsFromTexts(texts, topKeywords),
			Examples: examples,
		})
	}

	return digests, nil
}
