package llm

// Error message templates
const (
	errRateLimiter          = "rate limiter error: %w"
	errOpenAIChatCompletion = "openai chat completion error: %w"
)

// Sentiment labels used in prompts.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
)

// mockEmbeddingDimensions matches the vector column width in the schema.
const mockEmbeddingDimensions = 1536

// Recommendation list cap per insight.
const maxRecommendations = 3

// Prior conversation turns forwarded to the SQL prompt.
const maxChatHistoryTurns = 10
