// Package domain defines the core entities of the culture-pulse dashboard:
// filter state, aggregated analytics rows, benchmark series, and AI-generated
// theme insights. These types are shared by the query service, the HTTP API,
// and the page-session core.
package domain

// FilterSet is the complete set of active filter dimensions for one dashboard
// view. Dates are ISO "2006-01-02" strings; an empty string means unset.
// An empty BaseThemes slice means all base themes (and therefore all
// sub-themes) are eligible.
type FilterSet struct {
	BaseThemes []string `json:"base_themes,omitempty"`
	SubThemes  []string `json:"sub_themes,omitempty"`
	Languages  []string `json:"languages,omitempty"`
	Sources    []string `json:"sources,omitempty"`
	StartDate  string   `json:"start_date,omitempty"`
	EndDate    string   `json:"end_date,omitempty"`
}

// FilterChange is a partial FilterSet mutation. Nil fields keep the current
// value; non-nil fields replace it wholesale.
type FilterChange struct {
	BaseThemes *[]string
	SubThemes  *[]string
	Languages  *[]string
	Sources    *[]string
	StartDate  *string
	EndDate    *string
}

// KPISummary is the headline aggregate for the current filter selection.
type KPISummary struct {
	TotalComments     int            `json:"total_comments"`
	PositiveComments  int            `json:"positive_comments"`
	NegativeComments  int            `json:"negative_comments"`
	ENPS              float64        `json:"enps"`
	ThemeDistribution map[string]int `json:"theme_distribution"`
}

// MonthlyCount is one month bucket of comment volume.
type MonthlyCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int    `json:"count"`
}

// MonthlyENPS is one month bucket of the eNPS time series.
type MonthlyENPS struct {
	Month    string  `json:"month"`
	ENPS     float64 `json:"enps"`
	Total    int     `json:"total"`
	Positive int     `json:"positive"`
}

// ThemeHotnessRow is one theme (base or sub) ranked by engagement magnitude.
// HotnessScore is the summed likes for the theme under the current filters.
type ThemeHotnessRow struct {
	Theme         string  `json:"theme"`
	HotnessScore  float64 `json:"hotness_score"`
	ENPSNow       float64 `json:"enps_now"`
	TotalComments int     `json:"total_comments"`
}

// ThemeYearStats summarizes one sub-theme for a single year, used by the
// risky/positive theme rankings.
type ThemeYearStats struct {
	Theme    string
	Count    int
	Positive int
	Negative int
	Neutral  int
}

// RatedTheme is one entry of the risky-themes or positive-themes ranking.
// Score is the risk score or positive score depending on the ranking.
type RatedTheme struct {
	SubTheme       string  `json:"sub_theme"`
	Score          float64 `json:"score"`
	TotalCount     int     `json:"total_count"`
	PrevTotalCount int     `json:"total_count_prev"`
	CommentsYoY    float64 `json:"comments_yoy_change"`
	ENPS           float64 `json:"enps"`
	PrevENPS       float64 `json:"enps_prev"`
	ENPSYoY        float64 `json:"enps_yoy_change"`
	PositiveRate   float64 `json:"positive_rate"`
	NegativeRate   float64 `json:"negative_rate"`
}

// ThemeRating is a full risky- or positive-themes response.
type ThemeRating struct {
	TotalResponses int          `json:"total_responses"`
	OverallRating  float64      `json:"overall_rating"`
	RiskLevel      string       `json:"risk_level,omitempty"`
	Themes         []RatedTheme `json:"themes"`
}

// ThemeFlowRow is one theme of a two-period flow comparison.
type ThemeFlowRow struct {
	Theme         string  `json:"theme"`
	CountA        int     `json:"count_a"`
	CountB        int     `json:"count_b"`
	Change        int     `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// RadarRow is one theme axis of a two-series comparison, before scaling.
type RadarRow struct {
	Theme  string  `json:"theme"`
	ValueA float64 `json:"value_a"`
	ValueB float64 `json:"value_b"`
}

// RadarSeriesPair is a raw two-series benchmark comparison: one value per
// theme for each of two periods or dimension values.
type RadarSeriesPair struct {
	LabelA string     `json:"label_a"`
	LabelB string     `json:"label_b"`
	Metric string     `json:"metric"` // "count" or "enps"
	Rows   []RadarRow `json:"rows"`
}

// Benchmark metric values.
const (
	MetricCount = "count"
	MetricENPS  = "enps"
)

// ThemeInsight is the AI-generated insight payload for one theme, keyed by
// theme type ("base_theme" or "sub_theme") and theme name.
type ThemeInsight struct {
	PositiveSummary         string   `json:"positive_summary"`
	NegativeSummary         string   `json:"negative_summary"`
	PositiveRecommendations []string `json:"positive_recommendations"`
	NegativeRecommendations []string `json:"negative_recommendations"`
}

// Theme type values for insight keys.
const (
	ThemeTypeBase = "base_theme"
	ThemeTypeSub  = "sub_theme"
)

// InsightKey derives the cache/storage key for a theme insight.
func InsightKey(themeType, themeName string) string {
	return themeType + "_" + themeName
}

// DateRange describes the span of comment dates available for filtering.
type DateRange struct {
	MinDate  string `json:"min_date"`
	MaxDate  string `json:"max_date"`
	MinYear  int    `json:"min_year"`
	MinMonth int    `json:"min_month"`
	MaxYear  int    `json:"max_year"`
	MaxMonth int    `json:"max_month"`
}

// FilterOptions is the selectable filter vocabulary, consumed once at session
// start. ThemeMapping maps each base theme to its sub-themes.
type FilterOptions struct {
	BaseThemes   []string            `json:"base_themes"`
	SubThemes    []string            `json:"sub_themes"`
	ThemeMapping map[string][]string `json:"theme_mapping"`
	Languages    []string            `json:"languages"`
	Sources      []string            `json:"sources"`
	DateRange    *DateRange          `json:"date_range"`
}

// Comment is one analyzed text record. Sentiment is "positive", "negative",
// "neutral", or empty when the classifier has not labeled the record; likes
// act as a sentiment proxy in that case.
type Comment struct {
	ID        string
	Content   string
	Language  string
	Source    string
	BaseTheme string
	SubTheme  string
	Sentiment string
	Likes     int
	Date      string // YYYY-MM-DD, empty when unknown
	Embedding []float32
}

// Sentiment label values.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// SentimentDistribution is the positive/negative/neutral split of one theme's
// comments over a window, with rates as percentages.
type SentimentDistribution struct {
	Positive     int     `json:"positive"`
	Negative     int     `json:"negative"`
	Neutral      int     `json:"neutral"`
	PositiveRate float64 `json:"positive_rate"`
	NegativeRate float64 `json:"negative_rate"`
	NeutralRate  float64 `json:"neutral_rate"`
}

// DailySentiment is one day of a theme's sentiment trend.
type DailySentiment struct {
	Date         string  `json:"date"` // YYYY-MM-DD
	Positive     int     `json:"positive"`
	Negative     int     `json:"negative"`
	Neutral      int     `json:"neutral"`
	PositiveRate float64 `json:"positive_rate"`
	NegativeRate float64 `json:"negative_rate"`
	Total        int     `json:"total"`
}

// HotTopic is one base theme of the recent hot-topics ranking. HotnessScore
// blends volume and engagement: count*0.3 + likes*0.7.
type HotTopic struct {
	Theme                 string                `json:"theme"`
	HotnessScore          float64               `json:"hotness_score"`
	TotalComments         int                   `json:"total_comments"`
	TotalLikes            int                   `json:"total_likes"`
	SentimentDistribution SentimentDistribution `json:"sentiment_distribution"`
	DailyTrends           []DailySentiment      `json:"daily_trends"`
	SampleContents        []string              `json:"sample_contents"`
}

// ReportPeriod is the date window a report covers, inclusive on both ends.
type ReportPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// HotTopicsReport is the full hot-topics-sentiment response.
type HotTopicsReport struct {
	Period ReportPeriod `json:"period"`
	Topics []HotTopic   `json:"topics"`
}

// Unstructured carries query rows whose shape is not one of the known
// response types. Columns preserves the select-list order so consumers can
// render the rows generically as key/value pairs instead of guessing field
// names.
type Unstructured struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// ChatMessage is one turn of a chat conversation history.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatAnswer is the result of one chat request: the model's prose answer,
// the SQL it ran, and the raw rows as an explicitly unstructured payload.
// TotalRows is the full result size; Data may carry a truncated sample.
type ChatAnswer struct {
	Response  string       `json:"response"`
	SQL       string       `json:"sql_query"`
	Data      Unstructured `json:"data"`
	TotalRows int          `json:"total_rows"`
}
