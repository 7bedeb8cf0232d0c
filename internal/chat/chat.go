// Package chat answers free-form questions about the feedback data by having
// the model write a SQL query, running it read-only, and having the model
// explain the rows.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
	"github.com/culturepulse/culture-pulse/internal/llm"
)

const (
	// Rows included in the response payload.
	maxResponseRows = 100
	// Rows serialized into the analysis prompt.
	analysisSampleRows = 1000
)

var (
	// ErrNoSQL means the model's answer carried no usable SELECT statement.
	ErrNoSQL = errors.New("no sql statement in model response")
	// ErrUnsafeSQL means the generated statement failed the read-only checks.
	ErrUnsafeSQL = errors.New("generated sql rejected")
)

// Store runs ad hoc read-only queries.
type Store interface {
	RunReadOnlyQuery(ctx context.Context, sql string) (domain.Unstructured, error)
}

// Generator is the slice of the LLM client the chat flow needs.
type Generator interface {
	GenerateSQL(ctx context.Context, question string, history []llm.Turn) (string, error)
	AnalyzeRows(ctx context.Context, req llm.AnalysisRequest) (string, error)
}

type Service struct {
	store  Store
	llm    Generator
	logger *zerolog.Logger
}

func New(store Store, client Generator, logger *zerolog.Logger) *Service {
	return &Service{store: store, llm: client, logger: logger}
}

// Ask turns the question into SQL, executes it, and wraps the rows in a
// tagged key/value result with a natural-language summary. The query runs in
// a read-only transaction regardless of what validation lets through.
func (s *Service) Ask(ctx context.Context, message string, history []domain.ChatMessage) (domain.ChatAnswer, error) {
	content, err := s.llm.GenerateSQL(ctx, message, toTurns(history))
	if err != nil {
		return domain.ChatAnswer{}, fmt.Errorf("generate sql: %w", err)
	}

	sql, ok := extractSQL(content)
	if !ok {
		return domain.ChatAnswer{}, ErrNoSQL
	}

	sql, err = cleanSQL(sql)
	if err != nil {
		return domain.ChatAnswer{}, err
	}

	if err := validateSQL(sql); err != nil {
		return domain.ChatAnswer{}, err
	}

	s.logger.Debug().Str("sql", sql).Msg("Running generated query")

	result, err := s.store.RunReadOnlyQuery(ctx, sql)
	if err != nil {
		return domain.ChatAnswer{}, fmt.Errorf("run generated query: %w", err)
	}

	total := len(result.Rows)
	response := s.analyze(ctx, message, sql, result)

	if len(result.Rows) > maxResponseRows {
		result.Rows = result.Rows[:maxResponseRows]
	}

	return domain.ChatAnswer{
		Response:  response,
		SQL:       sql,
		Data:      result,
		TotalRows: total,
	}, nil
}

// analyze asks the model to explain the rows. A failed analysis degrades to a
// row-count summary instead of failing the whole request.
func (s *Service) analyze(ctx context.Context, question, sql string, result domain.Unstructured) string {
	sample := result.Rows
	if len(sample) > analysisSampleRows {
		sample = sample[:analysisSampleRows]
	}

	rowsJSON, err := json.Marshal(sample)
	if err != nil {
		rowsJSON = []byte("[]")
	}

	response, err := s.llm.AnalyzeRows(ctx, llm.AnalysisRequest{
		Question: question,
		SQL:      sql,
		RowCount: len(result.Rows),
		RowsJSON: string(rowsJSON),
	})
	if err != nil || strings.TrimSpace(response) == "" {
		if err != nil {
			s.logger.Warn().Err(err).Msg("Row analysis failed, falling back to row count")
		}

		return fmt.Sprintf("The query returned %d rows.", len(result.Rows))
	}

	return response
}

func toTurns(history []domain.ChatMessage) []llm.Turn {
	turns := make([]llm.Turn, 0, len(history))
	for _, msg := range history {
		turns = append(turns, llm.Turn{Role: msg.Role, Content: msg.Content})
	}

	return turns
}

var (
	sqlFenceRe     = regexp.MustCompile("(?s)```sql\\s*(.*?)```")
	genericFenceRe = regexp.MustCompile("(?s)```\\s*(.*?)```")
	forbiddenRe    = regexp.MustCompile(`\b(DROP|DELETE|UPDATE|INSERT|ALTER|CREATE|TRUNCATE|EXEC|EXECUTE|GRANT|REVOKE|MERGE|COPY)\b`)
	lineCommentRe  = regexp.MustCompile(`--[^\n]*`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// extractSQL pulls the statement out of the model's answer: a ```sql fence
// first, then any fence holding a SELECT, then the bare answer itself.
func extractSQL(content string) (string, bool) {
	if m := sqlFenceRe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1]), true
	}

	if m := genericFenceRe.FindStringSubmatch(content); m != nil {
		candidate := strings.TrimSpace(m[1])
		if startsSelect(candidate) {
			return candidate, true
		}
	}

	if candidate := strings.TrimSpace(content); startsSelect(candidate) {
		return candidate, true
	}

	return "", false
}

func startsSelect(sql string) bool {
	upper := strings.ToUpper(sql)

	return strings.HasPrefix(upper, "SELECT") || strings.HasPrefix(upper, "WITH")
}

// cleanSQL normalizes the extracted statement. Unbalanced single quotes mean
// the model truncated a literal; such statements are unsafe to run.
func cleanSQL(sql string) (string, error) {
	sql = strings.ReplaceAll(sql, "`", "")
	sql = strings.TrimSpace(sql)
	sql = strings.TrimRight(sql, "; \t\n")

	if strings.Count(sql, "'")%2 != 0 {
		return "", fmt.Errorf("%w: unbalanced quotes", ErrUnsafeSQL)
	}

	if sql == "" {
		return "", ErrNoSQL
	}

	return sql, nil
}

// validateSQL accepts a single SELECT (or WITH) statement and rejects any
// statement carrying a mutating keyword, comments stripped first.
func validateSQL(sql string) error {
	stripped := blockCommentRe.ReplaceAllString(sql, " ")
	stripped = lineCommentRe.ReplaceAllString(stripped, " ")
	stripped = strings.TrimSpace(stripped)

	if !startsSelect(stripped) {
		return fmt.Errorf("%w: not a select statement", ErrUnsafeSQL)
	}

	if strings.Contains(stripped, ";") {
		return fmt.Errorf("%w: multiple statements", ErrUnsafeSQL)
	}

	if m := forbiddenRe.FindString(strings.ToUpper(stripped)); m != "" {
		return fmt.Errorf("%w: forbidden keyword %s", ErrUnsafeSQL, m)
	}

	return nil
}
