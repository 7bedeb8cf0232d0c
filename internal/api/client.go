package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
)

const defaultClientTimeout = 30 * time.Second

// Client calls the dashboard query service over HTTP and satisfies the
// session's QueryService, InsightService, OptionsService and
// BenchmarkService ports.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zerolog.Logger
}

// NewClient creates an HTTP client against baseURL (e.g.
// "http://localhost:8080/api").
func NewClient(baseURL string, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: defaultClientTimeout},
		logger:  logger,
	}
}

func (c *Client) KPIs(ctx context.Context, filters domain.FilterSet) (domain.KPISummary, error) {
	var out domain.KPISummary
	err := c.post(ctx, routeKPIs, filters, &out)

	return out, err
}

func (c *Client) MonthlyComments(ctx context.Context, filters domain.FilterSet) ([]domain.MonthlyCount, error) {
	var out []domain.MonthlyCount
	err := c.post(ctx, routeMonthlyComments, filters, &out)

	return out, err
}

func (c *Client) MonthlyENPS(ctx context.Context, filters domain.FilterSet) ([]domain.MonthlyENPS, error) {
	var out []domain.MonthlyENPS
	err := c.post(ctx, routeMonthlyENPS, filters, &out)

	return out, err
}

func (c *Client) TopicHotness(ctx context.Context, filters domain.FilterSet) ([]domain.ThemeHotnessRow, error) {
	var out []domain.ThemeHotnessRow
	err := c.post(ctx, routeTopicHotness, filters, &out)

	return out, err
}

func (c *Client) SubThemeHotness(ctx context.Context, baseTheme string, filters domain.FilterSet) ([]domain.ThemeHotnessRow, error) {
	req := struct {
		BaseTheme string           `json:"base_theme"`
		Filters   domain.FilterSet `json:"filters"`
	}{BaseTheme: baseTheme, Filters: filters}

	var out []domain.ThemeHotnessRow
	err := c.post(ctx, routeSubThemeHotness, req, &out)

	return out, err
}

func (c *Client) ThemeInsight(ctx context.Context, themeType, themeName string) (domain.ThemeInsight, error) {
	req := struct {
		ThemeType string `json:"theme_type"`
		ThemeName string `json:"theme_name"`
	}{ThemeType: themeType, ThemeName: themeName}

	var out domain.ThemeInsight
	err := c.post(ctx, routeThemeInsights, req, &out)

	return out, err
}

func (c *Client) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	var out domain.FilterOptions
	err := c.get(ctx, routeFilterOptions, &out)

	return out, err
}

func (c *Client) RadarByMonth(ctx context.Context, monthA, monthB, metric string) (domain.RadarSeriesPair, error) {
	req := struct {
		MonthA string `json:"month_a"`
		MonthB string `json:"month_b"`
		Metric string `json:"metric"`
	}{MonthA: monthA, MonthB: monthB, Metric: metric}

	var out domain.RadarSeriesPair
	err := c.post(ctx, routeRadarData, req, &out)

	return out, err
}

func (c *Client) RadarByYear(ctx context.Context, yearA, yearB, metric string) (domain.RadarSeriesPair, error) {
	req := struct {
		YearA  string `json:"year_a"`
		YearB  string `json:"year_b"`
		Metric string `json:"metric"`
	}{YearA: yearA, YearB: yearB, Metric: metric}

	var out domain.RadarSeriesPair
	err := c.post(ctx, routeYearData, req, &out)

	return out, err
}

func (c *Client) RadarByDimension(ctx context.Context, dimension, valueA, valueB, metric string) (domain.RadarSeriesPair, error) {
	req := struct {
		Dimension string `json:"dimension"`
		ValueA    string `json:"value_a"`
		ValueB    string `json:"value_b"`
		Metric    string `json:"metric"`
	}{Dimension: dimension, ValueA: valueA, ValueB: valueB, Metric: metric}

	var out domain.RadarSeriesPair
	err := c.post(ctx, routeDimensionData, req, &out)

	return out, err
}

func (c *Client) HotTopicsSentiment(ctx context.Context) (domain.HotTopicsReport, error) {
	var out domain.HotTopicsReport
	err := c.get(ctx, routeHotTopics, &out)

	return out, err
}

func (c *Client) Chat(ctx context.Context, message string, history []domain.ChatMessage) (domain.ChatAnswer, error) {
	req := struct {
		Message string               `json:"message"`
		History []domain.ChatMessage `json:"conversation_history"`
	}{Message: message, History: history}

	var out domain.ChatAnswer
	err := c.post(ctx, routeChat, req, &out)

	return out, err
}

func (c *Client) post(ctx context.Context, route string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", route, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+route, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", route, err)
	}

	req.Header.Set(contentTypeHeader, contentTypeJSON)

	return c.do(req, route, out)
}

func (c *Client) get(ctx context.Context, route string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+route, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", route, err)
	}

	return c.do(req, route, out)
}

func (c *Client) do(req *http.Request, route string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", route, err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s request: unexpected status %d", route, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", route, err)
	}

	return nil
}
