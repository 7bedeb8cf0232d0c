package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/culturepulse/culture-pulse/internal/platform/config"
	"github.com/culturepulse/culture-pulse/internal/platform/observability"
)

type openaiClient struct {
	cfg         *config.Config
	client      *openai.Client
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter

	// Circuit breaker state
	consecutiveFailures int
	circuitOpenUntil    time.Time
	mu                  sync.Mutex
}

const (
	circuitBreakerThreshold = 5
	circuitBreakerTimeout   = 1 * time.Minute
)

func NewOpenAI(cfg *config.Config, logger *zerolog.Logger) Client {
	return &openaiClient{
		cfg:         cfg,
		client:      openai.NewClient(cfg.LLMAPIKey),
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(float64(cfg.LLMRateLimitRPS)), 5), // User-defined RPS, burst 5
	}
}

func (c *openaiClient) checkCircuit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().Before(c.circuitOpenUntil) {
		return fmt.Errorf("circuit breaker is open until %v", c.circuitOpenUntil)
	}

	return nil
}

func (c *openaiClient) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutiveFailures = 0
}

func (c *openaiClient) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutiveFailures++

	if c.consecutiveFailures >= circuitBreakerThreshold {
		c.circuitOpenUntil = time.Now().Add(circuitBreakerTimeout)
		c.logger.Warn().
			Int("consecutive_failures", c.consecutiveFailures).
			Time("open_until", c.circuitOpenUntil).
			Msg("Circuit breaker opened")
	}
}

func (c *openaiClient) embeddingModel() openai.EmbeddingModel {
	if c.cfg.LLMEmbeddingModel != "" {
		return openai.EmbeddingModel(c.cfg.LLMEmbeddingModel)
	}

	return openai.SmallEmbedding3
}

func (c *openaiClient) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	return embeddings[0], nil
}

func (c *openaiClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if err := c.checkCircuit(); err != nil {
		return nil, err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf(errRateLimiter, err)
	}

	start := time.Now()

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: c.embeddingModel(),
	})
	observability.LLMRequestDuration.WithLabelValues(string(c.embeddingModel())).Observe(time.Since(start).Seconds())

	if err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}

	c.recordSuccess()

	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}

	return out, nil
}

// SummarizeFeedback condenses one comment into bullet point lines. Lines not
// starting with "-" are dropped; an empty answer falls back to a truncated
// echo of the comment.
func (c *openaiClient) SummarizeFeedback(ctx context.Context, text string) ([]string, error) {
	content, err := c.chat(ctx, summarizeSystemPrompt, buildSummarizePrompt(text), false)
	if err != nil {
		return nil, err
	}

	var lines []string

	for _, ln := range strings.Split(content, "\n") {
		ln = strings.TrimSpace(ln)
		if strings.HasPrefix(ln, "-") {
			lines = append(lines, ln)
		}
	}

	if len(lines) == 0 {
		lines = []string{"- " + truncate(text, 150)}
	}

	return lines, nil
}

func (c *openaiClient) GenerateInsight(ctx context.Context, req InsightRequest) (InsightResult, error) {
	if len(req.Clusters) == 0 || req.TotalComments == 0 {
		return InsightResult{Recommendations: []string{}}, nil
	}

	content, err := c.chat(ctx, insightSystemPrompt, buildInsightPrompt(req), true)
	if err != nil {
		return InsightResult{}, err
	}

	var result InsightResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return InsightResult{}, fmt.Errorf("decode insight response: %w", err)
	}

	result.Summary = strings.TrimSpace(result.Summary)

	recs := make([]string, 0, len(result.Recommendations))

	for _, rec := range result.Recommendations {
		rec = strings.TrimSpace(rec)
		if rec != "" {
			recs = append(recs, rec)
		}
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}

	result.Recommendations = recs

	return result, nil
}

// GenerateSQL asks the model for a read-only query answering the question.
// The raw completion is returned; the caller extracts the fenced SQL block.
func (c *openaiClient) GenerateSQL(ctx context.Context, question string, history []Turn) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleSystem, Content: sqlSystemPrompt,
	})

	if len(history) > maxChatHistoryTurns {
		history = history[len(history)-maxChatHistoryTurns:]
	}

	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == openai.ChatMessageRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}

		messages = append(messages, openai.ChatCompletionMessage{
			Role: role, Content: truncate(turn.Content, 1000),
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser, Content: buildSQLPrompt(question),
	})

	return c.complete(ctx, messages, false)
}

func (c *openaiClient) AnalyzeRows(ctx context.Context, req AnalysisRequest) (string, error) {
	return c.chat(ctx, analysisSystemPrompt, buildAnalysisPrompt(req), false)
}

func (c *openaiClient) chat(ctx context.Context, system, user string, jsonResponse bool) (string, error) {
	return c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: user},
	}, jsonResponse)
}

func (c *openaiClient) complete(ctx context.Context, messages []openai.ChatCompletionMessage, jsonResponse bool) (string, error) {
	if err := c.checkCircuit(); err != nil {
		return "", err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf(errRateLimiter, err)
	}

	model := c.cfg.LLMModel
	if model == "" {
		model = openai.GPT4oMini
	}

	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}
	if jsonResponse {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	observability.LLMRequestDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())

	if err != nil {
		c.recordFailure()
		return "", fmt.Errorf(errOpenAIChatCompletion, err)
	}

	c.recordSuccess()

	content := resp.Choices[0].Message.Content
	c.logger.Debug().Str("content", content).Msg("LLM response")

	return strings.TrimSpace(content), nil
}
