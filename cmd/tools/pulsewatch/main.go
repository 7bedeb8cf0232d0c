// pulsewatch is a terminal smoke client for the dashboard API. It opens one
// page session against a running pulse server, applies the filters given on
// the command line, waits for the fetch cycle to settle, and prints the
// resulting dashboard snapshot as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/culturepulse/culture-pulse/internal/api"
	"github.com/culturepulse/culture-pulse/internal/core/domain"
	"github.com/culturepulse/culture-pulse/internal/radar"
	"github.com/culturepulse/culture-pulse/internal/session"
)

func main() {
	var (
		apiURL     = flag.String("api", "http://localhost:8080", "pulse server base URL")
		baseThemes = flag.String("base-themes", "", "comma-separated base theme filter")
		subThemes  = flag.String("sub-themes", "", "comma-separated sub theme filter")
		languages  = flag.String("languages", "", "comma-separated language filter")
		sources    = flag.String("sources", "", "comma-separated source filter")
		startDate  = flag.String("from", "", "start date filter, YYYY-MM-DD")
		endDate    = flag.String("to", "", "end date filter, YYYY-MM-DD")
		expand     = flag.String("expand", "", "base theme to expand into sub-theme hotness")
		insight    = flag.String("insight", "", "theme to fetch insights for, as theme_type:theme_name")
		radarSpec  = flag.String("radar", "", "compare two months, as YYYY-MM:YYYY-MM")
		hotTopics  = flag.Bool("hot-topics", false, "include the 30-day hot topics report")
		ask        = flag.String("ask", "", "free-form question answered via the chat endpoint")
		metric     = flag.String("metric", domain.MetricCount, "radar metric: count or enps")
		timeout    = flag.Duration("timeout", 30*time.Second, "overall deadline")
	)
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := api.NewClient(*apiURL, &logger)
	sess := session.New(ctx, session.Deps{
		Queries:  client,
		Insights: client,
		Options:  client,
		Logger:   &logger,
	})

	sess.ApplyFilter(ctx, domain.FilterChange{
		BaseThemes: splitList(*baseThemes),
		SubThemes:  splitList(*subThemes),
		Languages:  splitList(*languages),
		Sources:    splitList(*sources),
		StartDate:  optional(*startDate),
		EndDate:    optional(*endDate),
	})

	if !waitForCycle(ctx, sess) {
		logger.Fatal().Msg("timed out waiting for the fetch cycle to settle")
	}

	snapshot := map[string]any{
		"filters":          sess.Filters(),
		"kpis":             sess.KPIs(),
		"monthly_comments": sess.MonthlyComments(),
		"monthly_enps":     sess.MonthlyENPS(),
		"topic_hotness":    sess.TopicHotness(),
	}

	if *expand != "" {
		sess.ToggleTheme(ctx, *expand)
		if _, state := sess.SubThemeRows(*expand); state == session.ExpansionLoading {
			waitForSlice(ctx, sess, session.SliceSubThemes)
		}

		rows, state := sess.SubThemeRows(*expand)
		snapshot["sub_theme_hotness"] = rows
		snapshot["sub_theme_state"] = state
	}

	if *insight != "" {
		themeType, themeName, ok := strings.Cut(*insight, ":")
		if !ok {
			logger.Fatal().Str("insight", *insight).Msg("expected theme_type:theme_name")
		}

		sess.RequestInsight(ctx, themeType, themeName)
		if sess.InsightLoading(themeType, themeName) {
			waitForSlice(ctx, sess, session.SliceInsight)
		}

		if entry, cached := sess.Insight(themeType, themeName); cached {
			snapshot["insight"] = entry
		}
	}

	if *radarSpec != "" {
		monthA, monthB, ok := strings.Cut(*radarSpec, ":")
		if !ok {
			logger.Fatal().Str("radar", *radarSpec).Msg("expected YYYY-MM:YYYY-MM")
		}

		pair, err := client.RadarByMonth(ctx, monthA, monthB, *metric)
		if err != nil {
			logger.Fatal().Err(err).Msg("radar comparison failed")
		}

		snapshot["radar"] = radar.ForMetric(pair)
	}

	if *hotTopics {
		report, err := client.HotTopicsSentiment(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("hot topics report failed")
		}

		snapshot["hot_topics"] = report
	}

	if *ask != "" {
		answer, err := client.Chat(ctx, *ask, nil)
		if err != nil {
			logger.Fatal().Err(err).Msg("chat question failed")
		}

		snapshot["chat"] = answer
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if err := enc.Encode(snapshot); err != nil {
		logger.Fatal().Err(err).Msg("failed to encode snapshot")
	}
}

// waitForCycle drains session updates until the loading flag drops.
func waitForCycle(ctx context.Context, sess *session.Session) bool {
	for {
		select {
		case u := <-sess.Updates():
			if u.Slice == session.SliceLoading && u.Payload == false {
				return true
			}
		case <-ctx.Done():
			return false
		}
	}
}

// waitForSlice drains session updates until one for the given slice arrives.
func waitForSlice(ctx context.Context, sess *session.Session, slice session.Slice) {
	for {
		select {
		case u := <-sess.Updates():
			if u.Slice == slice {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func splitList(raw string) *[]string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	return &parts
}

func optional(raw string) *string {
	if raw == "" {
		return nil
	}

	return &raw
}
