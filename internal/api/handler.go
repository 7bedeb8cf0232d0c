// Package api exposes the dashboard query service over HTTP: KPI and time
// series aggregates, theme hotness, rankings, benchmark comparisons, filter
// vocabulary and precomputed theme insights. JSON in, JSON out.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog"

	"github.com/culturepulse/culture-pulse/internal/analysis"
	"github.com/culturepulse/culture-pulse/internal/chat"
	"github.com/culturepulse/culture-pulse/internal/core/domain"
	"github.com/culturepulse/culture-pulse/internal/platform/observability"
	db "github.com/culturepulse/culture-pulse/internal/storage"
)

const (
	maxBodyBytes = 1 << 20

	// Route path constants.
	routeKPIs            = "dashboard/kpis"
	routeFilterOptions   = "dashboard/filters/options"
	routeMonthlyComments = "analysis/monthly-comments"
	routeMonthlyENPS     = "analysis/monthly-enps"
	routeTopicHotness    = "analysis/topic-hotness"
	routeSubThemeHotness = "analysis/sub-theme-hotness"
	routeRiskyThemes     = "analysis/risky-themes"
	routePositiveThemes  = "analysis/positive-themes"
	routeThemeInsights   = "analysis/theme-insights"
	routeHotTopics       = "analysis/hot-topics-sentiment"
	routeChat            = "analysis/chat"
	routeRadarData       = "benchmark/radar-data"
	routeYearData        = "benchmark/year-data"
	routeDimensionData   = "benchmark/dimension-data"
	routeThemeFlow       = "benchmark/theme-flow"
	routeYearFlow        = "benchmark/year-flow"
	routeDimensionFlow   = "benchmark/dimension-flow"

	// Content type constants.
	contentTypeHeader = "Content-Type"
	contentTypeJSON   = "application/json; charset=utf-8"

	// Fallback insight text for themes without a generated insight.
	noInsightMessage = "No insights available for this theme."

	// Hot topics report window and samples per topic.
	hotTopicsWindowDays    = 30
	sampleContentsPerTopic = 5
)

// Static errors for request validation.
var (
	errMonthsRequired    = errors.New("both month_a and month_b are required")
	errYearsRequired     = errors.New("both year_a and year_b are required")
	errDimensionRequired = errors.New("dimension, value_a, and value_b are required")
	errThemeRequired     = errors.New("theme_type and theme_name are required")
	errBaseThemeRequired = errors.New("base_theme is required")
	errMessageRequired   = errors.New("message is required")
)

// Store is the storage surface the handler needs. *db.DB satisfies it.
type Store interface {
	KPIs(ctx context.Context, filters domain.FilterSet) (domain.KPISummary, error)
	MonthlyComments(ctx context.Context, filters domain.FilterSet) ([]domain.MonthlyCount, error)
	MonthlyENPS(ctx context.Context, filters domain.FilterSet) ([]domain.MonthlyENPS, error)
	TopicHotness(ctx context.Context, filters domain.FilterSet) ([]domain.ThemeHotnessRow, error)
	SubThemeHotness(ctx context.Context, baseTheme string, filters domain.FilterSet) ([]domain.ThemeHotnessRow, error)
	FilterOptions(ctx context.Context) (domain.FilterOptions, error)
	ThemeStatsByPeriod(ctx context.Context, p db.Period) ([]db.ThemePeriodStats, error)
	SubThemeYearStats(ctx context.Context, year int) ([]domain.ThemeYearStats, error)
	GetThemeInsight(ctx context.Context, themeType, themeName string) (*db.ThemeInsightEntry, error)
	ThemeDailySentiment(ctx context.Context, start, end string) ([]db.DailySentimentRow, error)
	ThemeSampleContents(ctx context.Context, start, end string, perTheme int) (map[string][]string, error)
}

// Asker answers free-form data questions. *chat.Service satisfies it.
type Asker interface {
	Ask(ctx context.Context, message string, history []domain.ChatMessage) (domain.ChatAnswer, error)
}

// Handler serves the dashboard JSON API.
type Handler struct {
	store  Store
	chat   Asker
	logger *zerolog.Logger
	now    func() time.Time
}

// NewHandler creates the API handler.
func NewHandler(store Store, chat Asker, logger *zerolog.Logger) *Handler {
	return &Handler{store: store, chat: chat, logger: logger, now: time.Now}
}

// ServeHTTP routes requests to API endpoints.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	route, status := h.dispatch(w, r)

	observability.QueryDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	observability.QueryRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request) (string, int) {
	path := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api"), "/")

	switch path {
	case routeKPIs:
		return path, h.handleKPIs(w, r)
	case routeFilterOptions:
		return path, h.handleFilterOptions(w, r)
	case routeMonthlyComments:
		return path, h.handleFilteredQuery(w, r, h.monthlyComments)
	case routeMonthlyENPS:
		return path, h.handleFilteredQuery(w, r, h.monthlyENPS)
	case routeTopicHotness:
		return path, h.handleFilteredQuery(w, r, h.topicHotness)
	case routeSubThemeHotness:
		return path, h.handleSubThemeHotness(w, r)
	case routeRiskyThemes:
		return path, h.handleRating(w, r, analysis.RankRisky)
	case routePositiveThemes:
		return path, h.handleRating(w, r, analysis.RankPositive)
	case routeThemeInsights:
		return path, h.handleThemeInsights(w, r)
	case routeHotTopics:
		return path, h.handleHotTopics(w, r)
	case routeChat:
		return path, h.handleChat(w, r)
	case routeRadarData, routeThemeFlow:
		return path, h.handleMonthBenchmark(w, r, path == routeThemeFlow)
	case routeYearData, routeYearFlow:
		return path, h.handleYearBenchmark(w, r, path == routeYearFlow)
	case routeDimensionData, routeDimensionFlow:
		return path, h.handleDimensionBenchmark(w, r, path == routeDimensionFlow)
	default:
		return "not_found", h.writeError(w, http.StatusNotFound, "unknown endpoint")
	}
}

func (h *Handler) handleKPIs(w http.ResponseWriter, r *http.Request) int {
	filters, status := h.readFilters(w, r)
	if status != 0 {
		return status
	}

	summary, err := h.store.KPIs(r.Context(), filters)
	if err != nil {
		return h.serverError(w, routeKPIs, err)
	}

	return h.writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleFilterOptions(w http.ResponseWriter, r *http.Request) int {
	if r.Method != http.MethodGet {
		return h.writeError(w, http.StatusMethodNotAllowed, "use GET")
	}

	options, err := h.store.FilterOptions(r.Context())
	if err != nil {
		return h.serverError(w, routeFilterOptions, err)
	}

	return h.writeJSON(w, http.StatusOK, options)
}

func (h *Handler) monthlyComments(ctx context.Context, filters domain.FilterSet) (any, error) {
	rows, err := h.store.MonthlyComments(ctx, filters)
	return orEmpty(rows), err
}

func (h *Handler) monthlyENPS(ctx context.Context, filters domain.FilterSet) (any, error) {
	rows, err := h.store.MonthlyENPS(ctx, filters)
	return orEmpty(rows), err
}

func (h *Handler) topicHotness(ctx context.Context, filters domain.FilterSet) (any, error) {
	rows, err := h.store.TopicHotness(ctx, filters)
	return orEmpty(rows), err
}

// handleFilteredQuery runs one aggregate that takes only a FilterSet.
func (h *Handler) handleFilteredQuery(w http.ResponseWriter, r *http.Request, query func(context.Context, domain.FilterSet) (any, error)) int {
	filters, status := h.readFilters(w, r)
	if status != 0 {
		return status
	}

	payload, err := query(r.Context(), filters)
	if err != nil {
		return h.serverError(w, r.URL.Path, err)
	}

	return h.writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) handleSubThemeHotness(w http.ResponseWriter, r *http.Request) int {
	var req struct {
		BaseTheme string           `json:"base_theme"`
		Filters   domain.FilterSet `json:"filters"`
	}

	if status := h.readJSON(w, r, &req); status != 0 {
		return status
	}

	if req.BaseTheme == "" {
		return h.writeError(w, http.StatusBadRequest, errBaseThemeRequired.Error())
	}

	rows, err := h.store.SubThemeHotness(r.Context(), req.BaseTheme, normalizeFilters(req.Filters))
	if err != nil {
		return h.serverError(w, routeSubThemeHotness, err)
	}

	return h.writeJSON(w, http.StatusOK, orEmpty(rows))
}

func (h *Handler) handleRating(w http.ResponseWriter, r *http.Request, rank func(cur, prev []domain.ThemeYearStats) domain.ThemeRating) int {
	if r.Method != http.MethodGet {
		return h.writeError(w, http.StatusMethodNotAllowed, "use GET")
	}

	year := h.now().Year()

	cur, err := h.store.SubThemeYearStats(r.Context(), year)
	if err != nil {
		return h.serverError(w, r.URL.Path, err)
	}

	prev, err := h.store.SubThemeYearStats(r.Context(), year-1)
	if err != nil {
		return h.serverError(w, r.URL.Path, err)
	}

	return h.writeJSON(w, http.StatusOK, rank(cur, prev))
}

func (h *Handler) handleThemeInsights(w http.ResponseWriter, r *http.Request) int {
	var req struct {
		ThemeType string `json:"theme_type"`
		ThemeName string `json:"theme_name"`
	}

	if status := h.readJSON(w, r, &req); status != 0 {
		return status
	}

	if req.ThemeType == "" || req.ThemeName == "" {
		return h.writeError(w, http.StatusBadRequest, errThemeRequired.Error())
	}

	if req.ThemeType != domain.ThemeTypeBase && req.ThemeType != domain.ThemeTypeSub {
		return h.writeError(w, http.StatusBadRequest, `theme_type must be either "base_theme" or "sub_theme"`)
	}

	entry, err := h.store.GetThemeInsight(r.Context(), req.ThemeType, req.ThemeName)
	if err != nil {
		if errors.Is(err, db.ErrInsightNotFound) {
			// Missing insight is a soft miss, not an error.
			return h.writeJSON(w, http.StatusOK, domain.ThemeInsight{
				PositiveSummary:         noInsightMessage,
				NegativeSummary:         noInsightMessage,
				PositiveRecommendations: []string{},
				NegativeRecommendations: []string{},
			})
		}

		return h.serverError(w, routeThemeInsights, err)
	}

	return h.writeJSON(w, http.StatusOK, entry.Insight)
}

// handleHotTopics reports the last 30 days: top themes ranked by a blend of
// comment volume and likes, with daily sentiment trends and sample comments.
func (h *Handler) handleHotTopics(w http.ResponseWriter, r *http.Request) int {
	if r.Method != http.MethodGet {
		return h.writeError(w, http.StatusMethodNotAllowed, "use GET")
	}

	end := h.now()
	start := end.AddDate(0, 0, -hotTopicsWindowDays)
	period := domain.ReportPeriod{
		Start: start.Format("2006-01-02"),
		End:   end.Format("2006-01-02"),
	}

	rows, err := h.store.ThemeDailySentiment(r.Context(), period.Start, period.End)
	if err != nil {
		return h.serverError(w, routeHotTopics, err)
	}

	samples, err := h.store.ThemeSampleContents(r.Context(), period.Start, period.End, sampleContentsPerTopic)
	if err != nil {
		return h.serverError(w, routeHotTopics, err)
	}

	return h.writeJSON(w, http.StatusOK, domain.HotTopicsReport{
		Period: period,
		Topics: orEmpty(analysis.BuildHotTopics(rows, samples)),
	})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) int {
	var req struct {
		Message string               `json:"message"`
		History []domain.ChatMessage `json:"conversation_history"`
	}

	if status := h.readJSON(w, r, &req); status != 0 {
		return status
	}

	if strings.TrimSpace(req.Message) == "" {
		return h.writeError(w, http.StatusBadRequest, errMessageRequired.Error())
	}

	answer, err := h.chat.Ask(r.Context(), req.Message, req.History)
	if err != nil {
		if errors.Is(err, chat.ErrNoSQL) || errors.Is(err, chat.ErrUnsafeSQL) {
			// The model produced nothing runnable; not the server's fault.
			return h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		}

		return h.serverError(w, routeChat, err)
	}

	return h.writeJSON(w, http.StatusOK, answer)
}

func (h *Handler) handleMonthBenchmark(w http.ResponseWriter, r *http.Request, flow bool) int {
	var req struct {
		MonthA string `json:"month_a"`
		MonthB string `json:"month_b"`
		Metric string `json:"metric"`
	}

	if status := h.readJSON(w, r, &req); status != 0 {
		return status
	}

	if req.MonthA == "" || req.MonthB == "" {
		return h.writeError(w, http.StatusBadRequest, errMonthsRequired.Error())
	}

	periodA, err := monthPeriod(req.MonthA)
	if err != nil {
		return h.writeError(w, http.StatusBadRequest, err.Error())
	}

	periodB, err := monthPeriod(req.MonthB)
	if err != nil {
		return h.writeError(w, http.StatusBadRequest, err.Error())
	}

	return h.benchmark(w, r, periodA, periodB, req.MonthA, req.MonthB, req.Metric, flow)
}

func (h *Handler) handleYearBenchmark(w http.ResponseWriter, r *http.Request, flow bool) int {
	var req struct {
		YearA  string `json:"year_a"`
		YearB  string `json:"year_b"`
		Metric string `json:"metric"`
	}

	if status := h.readJSON(w, r, &req); status != 0 {
		return status
	}

	if req.YearA == "" || req.YearB == "" {
		return h.writeError(w, http.StatusBadRequest, errYearsRequired.Error())
	}

	periodA, err := yearPeriod(req.YearA)
	if err != nil {
		return h.writeError(w, http.StatusBadRequest, err.Error())
	}

	periodB, err := yearPeriod(req.YearB)
	if err != nil {
		return h.writeError(w, http.StatusBadRequest, err.Error())
	}

	return h.benchmark(w, r, periodA, periodB, req.YearA, req.YearB, req.Metric, flow)
}

func (h *Handler) handleDimensionBenchmark(w http.ResponseWriter, r *http.Request, flow bool) int {
	var req struct {
		Dimension string `json:"dimension"`
		ValueA    string `json:"value_a"`
		ValueB    string `json:"value_b"`
		Metric    string `json:"metric"`
	}

	if status := h.readJSON(w, r, &req); status != 0 {
		return status
	}

	if req.Dimension == "" || req.ValueA == "" || req.ValueB == "" {
		return h.writeError(w, http.StatusBadRequest, errDimensionRequired.Error())
	}

	periodA := db.Period{Dimension: req.Dimension, Value: req.ValueA}
	periodB := db.Period{Dimension: req.Dimension, Value: req.ValueB}

	return h.benchmark(w, r, periodA, periodB, req.ValueA, req.ValueB, req.Metric, flow)
}

func (h *Handler) benchmark(w http.ResponseWriter, r *http.Request, periodA, periodB db.Period, labelA, labelB, metric string, flow bool) int {
	if metric == "" {
		metric = domain.MetricCount
	}

	statsA, err := h.store.ThemeStatsByPeriod(r.Context(), periodA)
	if err != nil {
		return h.benchmarkError(w, err)
	}

	statsB, err := h.store.ThemeStatsByPeriod(r.Context(), periodB)
	if err != nil {
		return h.benchmarkError(w, err)
	}

	if flow {
		return h.writeJSON(w, http.StatusOK, analysis.MergeFlow(statsA, statsB))
	}

	return h.writeJSON(w, http.StatusOK, analysis.MergeRadar(statsA, statsB, labelA, labelB, metric))
}

func (h *Handler) benchmarkError(w http.ResponseWriter, err error) int {
	if errors.Is(err, db.ErrUnknownDimension) {
		return h.writeError(w, http.StatusBadRequest, err.Error())
	}

	return h.serverError(w, "benchmark", err)
}

// monthPeriod converts "YYYY-MM" into the half-open month date window.
func monthPeriod(month string) (db.Period, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return db.Period{}, fmt.Errorf("invalid month %q, expected YYYY-MM", month)
	}

	return db.Period{
		StartDate: start.Format("2006-01-02"),
		EndDate:   start.AddDate(0, 1, 0).Format("2006-01-02"),
	}, nil
}

// yearPeriod converts "YYYY" into the half-open year date window.
func yearPeriod(year string) (db.Period, error) {
	start, err := time.Parse("2006", year)
	if err != nil {
		return db.Period{}, fmt.Errorf("invalid year %q, expected YYYY", year)
	}

	return db.Period{
		StartDate: start.Format("2006-01-02"),
		EndDate:   start.AddDate(1, 0, 0).Format("2006-01-02"),
	}, nil
}

func (h *Handler) readFilters(w http.ResponseWriter, r *http.Request) (domain.FilterSet, int) {
	var filters domain.FilterSet

	if status := h.readJSON(w, r, &filters); status != 0 {
		return domain.FilterSet{}, status
	}

	return normalizeFilters(filters), 0
}

// normalizeFilters coerces loosely formatted date inputs ("Jan 2, 2024",
// "2024/01/02") to the canonical ISO form the queries expect. Unparseable
// dates are dropped rather than rejected.
func normalizeFilters(filters domain.FilterSet) domain.FilterSet {
	filters.StartDate = normalizeDate(filters.StartDate)
	filters.EndDate = normalizeDate(filters.EndDate)

	return filters
}

func normalizeDate(value string) string {
	if value == "" {
		return ""
	}

	t, err := dateparse.ParseAny(value)
	if err != nil {
		return ""
	}

	return t.Format("2006-01-02")
}

// readJSON decodes a POST body into dst. Returns 0 on success, or the
// already-written error status.
func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, dst any) int {
	if r.Method != http.MethodPost {
		return h.writeError(w, http.StatusMethodNotAllowed, "use POST")
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	// An empty body means no filters, matching a bare `{}`.
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return h.writeError(w, http.StatusBadRequest, "invalid JSON body")
	}

	return 0
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) int {
	w.Header().Set(contentTypeHeader, contentTypeJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("write json failed")
	}

	return status
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) int {
	return h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) serverError(w http.ResponseWriter, route string, err error) int {
	h.logger.Error().Err(err).Str("route", route).Msg("query failed")

	return h.writeError(w, http.StatusInternalServerError, "query failed")
}

// orEmpty keeps JSON arrays as [] instead of null.
func orEmpty[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}

	return rows
}
