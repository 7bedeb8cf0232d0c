package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
)

func TestClient_KPIs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/dashboard/kpis", r.URL.Path)

		var filters domain.FilterSet
		require.NoError(t, json.NewDecoder(r.Body).Decode(&filters))
		assert.Equal(t, []string{"Workload"}, filters.BaseThemes)

		json.NewEncoder(w).Encode(domain.KPISummary{TotalComments: 7, ENPS: 42.86})
	}))
	defer srv.Close()

	logger := zerolog.Nop()
	client := NewClient(srv.URL+"/api", &logger)

	summary, err := client.KPIs(context.Background(), domain.FilterSet{BaseThemes: []string{"Workload"}})

	require.NoError(t, err)
	assert.Equal(t, 7, summary.TotalComments)
	assert.InDelta(t, 42.86, summary.ENPS, 0.001)
}

func TestClient_SubThemeHotnessWrapsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			BaseTheme string           `json:"base_theme"`
			Filters   domain.FilterSet `json:"filters"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Workload", req.BaseTheme)
		assert.Equal(t, []string{"en"}, req.Filters.Languages)

		json.NewEncoder(w).Encode([]domain.ThemeHotnessRow{{Theme: "Overtime"}})
	}))
	defer srv.Close()

	logger := zerolog.Nop()
	client := NewClient(srv.URL+"/api", &logger)

	rows, err := client.SubThemeHotness(context.Background(), "Workload", domain.FilterSet{Languages: []string{"en"}})

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Overtime", rows[0].Theme)
}

func TestClient_FilterOptionsUsesGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/dashboard/filters/options", r.URL.Path)

		json.NewEncoder(w).Encode(domain.FilterOptions{Languages: []string{"en", "de"}})
	}))
	defer srv.Close()

	logger := zerolog.Nop()
	client := NewClient(srv.URL+"/api", &logger)

	options, err := client.FilterOptions(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"en", "de"}, options.Languages)
}

func TestClient_RadarByMonth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/benchmark/radar-data", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2025-01", req["month_a"])
		assert.Equal(t, "enps", req["metric"])

		json.NewEncoder(w).Encode(domain.RadarSeriesPair{
			LabelA: "2025-01",
			LabelB: "2025-06",
			Metric: domain.MetricENPS,
			Rows:   []domain.RadarRow{{Theme: "workload", ValueA: 33.33, ValueB: 50}},
		})
	}))
	defer srv.Close()

	logger := zerolog.Nop()
	client := NewClient(srv.URL+"/api", &logger)

	pair, err := client.RadarByMonth(context.Background(), "2025-01", "2025-06", domain.MetricENPS)

	require.NoError(t, err)
	require.Len(t, pair.Rows, 1)
	assert.Equal(t, domain.MetricENPS, pair.Metric)
}

func TestClient_HotTopicsSentimentUsesGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/analysis/hot-topics-sentiment", r.URL.Path)

		json.NewEncoder(w).Encode(domain.HotTopicsReport{
			Period: domain.ReportPeriod{Start: "2025-05-02", End: "2025-06-01"},
			Topics: []domain.HotTopic{{Theme: "Workload", HotnessScore: 17}},
		})
	}))
	defer srv.Close()

	logger := zerolog.Nop()
	client := NewClient(srv.URL+"/api", &logger)

	report, err := client.HotTopicsSentiment(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "2025-05-02", report.Period.Start)
	require.Len(t, report.Topics, 1)
	assert.Equal(t, "Workload", report.Topics[0].Theme)
}

func TestClient_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/analysis/chat", r.URL.Path)

		var req struct {
			Message string               `json:"message"`
			History []domain.ChatMessage `json:"conversation_history"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "busiest theme?", req.Message)
		require.Len(t, req.History, 1)

		json.NewEncoder(w).Encode(domain.ChatAnswer{
			Response:  "Workload, with 42 comments.",
			SQL:       "SELECT base_theme, count(*) FROM comments GROUP BY base_theme",
			Data:      domain.Unstructured{Columns: []string{"base_theme", "count"}},
			TotalRows: 7,
		})
	}))
	defer srv.Close()

	logger := zerolog.Nop()
	client := NewClient(srv.URL+"/api", &logger)

	answer, err := client.Chat(context.Background(), "busiest theme?",
		[]domain.ChatMessage{{Role: "user", Content: "hi"}})

	require.NoError(t, err)
	assert.Equal(t, "Workload, with 42 comments.", answer.Response)
	assert.Equal(t, 7, answer.TotalRows)
	assert.Equal(t, []string{"base_theme", "count"}, answer.Data.Columns)
}

func TestClient_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"query failed"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	logger := zerolog.Nop()
	client := NewClient(srv.URL+"/api", &logger)

	_, err := client.ThemeInsight(context.Background(), domain.ThemeTypeBase, "Workload")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}
