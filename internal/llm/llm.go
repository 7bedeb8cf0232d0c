package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/culturepulse/culture-pulse/internal/platform/config"
)

// ClusterDigest is one sub-topic of a theme's feedback, produced by
// clustering summarized comments.
type ClusterDigest struct {
	Size     int
	Keywords []string
	Examples []string
}

// InsightRequest carries everything the insight prompt needs for one theme
// and polarity.
type InsightRequest struct {
	ThemeType      string
	ThemeName      string
	SentimentLabel string // LabelPositive or LabelNegative
	TotalComments  int
	Clusters       []ClusterDigest
}

// InsightResult is the model's answer for one theme and polarity.
type InsightResult struct {
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
}

// Turn is one prior exchange in an ad hoc question conversation.
type Turn struct {
	Role    string
	Content string
}

// AnalysisRequest carries the context for explaining query results: the
// user's question, the executed SQL, and a JSON sample of the rows.
type AnalysisRequest struct {
	Question string
	SQL      string
	RowCount int
	RowsJSON string
}

type Client interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	SummarizeFeedback(ctx context.Context, text string) ([]string, error)
	GenerateInsight(ctx context.Context, req InsightRequest) (InsightResult, error)
	GenerateSQL(ctx context.Context, question string, history []Turn) (string, error)
	AnalyzeRows(ctx context.Context, req AnalysisRequest) (string, error)
}

type mockClient struct {
	cfg *config.Config
}

func New(cfg *config.Config, logger *zerolog.Logger) Client {
	if cfg.LLMAPIKey == "" || cfg.LLMAPIKey == "mock" {
		return &mockClient{cfg: cfg}
	}

	return NewOpenAI(cfg, logger)
}

func (c *mockClient) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Mock embedding (dimensions as in schema)
	emb := make([]float32, mockEmbeddingDimensions)
	for i := 0; i < len(emb); i++ {
		emb[i] = 0.1
	}

	return emb, nil
}

func (c *mockClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		emb, _ := c.GetEmbedding(ctx, texts[i])
		out[i] = emb
	}

	return out, nil
}

func (c *mockClient) SummarizeFeedback(ctx context.Context, text string) ([]string, error) {
	line := text
	if len(line) > 150 {
		line = line[:150]
	}

	return []string{"- " + strings.TrimSpace(line)}, nil
}

func (c *mockClient) GenerateSQL(ctx context.Context, question string, history []Turn) (string, error) {
	return "Counting comments per theme.\n" +
		"```sql\nSELECT base_theme, count(*) AS total FROM comments " +
		"WHERE base_theme IS NOT NULL GROUP BY base_theme ORDER BY total DESC LIMIT 10\n```", nil
}

func (c *mockClient) AnalyzeRows(ctx context.Context, req AnalysisRequest) (string, error) {
	return fmt.Sprintf("Mock analysis of %d rows for %q.", req.RowCount, req.Question), nil
}

func (c *mockClient) GenerateInsight(ctx context.Context, req InsightRequest) (InsightResult, error) {
	return InsightResult{
		Summary: fmt.Sprintf("Mock %s insight for %s %q based on %d comments.",
			req.SentimentLabel, req.ThemeType, req.ThemeName, req.TotalComments),
		Recommendations: []string{"Mock recommendation."},
	}, nil
}
