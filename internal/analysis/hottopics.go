package analysis

import (
	"sort"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
	db "github.com/culturepulse/culture-pulse/internal/storage"
)

const (
	hotTopicsLimit = 10
	countWeight    = 0.3
	likesWeight    = 0.7
)

// BuildHotTopics folds per-day sentiment buckets into the ranked hot-topics
// list: hotness = comment count*0.3 + likes*0.7, top 10 by hotness. Days keep
// chronological order inside each topic.
func BuildHotTopics(rows []db.DailySentimentRow, samples map[string][]string) []domain.HotTopic {
	type dayCounts struct {
		positive, negative, neutral int
	}

	type topicAccum struct {
		count, likes int
		days         map[string]*dayCounts
		dayOrder     []string
	}

	perTheme := map[string]*topicAccum{}

	for _, row := range rows {
		acc := perTheme[row.Theme]
		if acc == nil {
			acc = &topicAccum{days: map[string]*dayCounts{}}
			perTheme[row.Theme] = acc
		}

		acc.count += row.Count
		acc.likes += row.Likes

		day := acc.days[row.Day]
		if day == nil {
			day = &dayCounts{}
			acc.days[row.Day] = day
			acc.dayOrder = append(acc.dayOrder, row.Day)
		}

		switch row.Sentiment {
		case domain.SentimentPositive:
			day.positive += row.Count
		case domain.SentimentNegative:
			day.negative += row.Count
		default:
			day.neutral += row.Count
		}
	}

	topics := make([]domain.HotTopic, 0, len(perTheme))

	for theme, acc := range perTheme {
		sort.Strings(acc.dayOrder)

		var trends []domain.DailySentiment
		var positive, negative, neutral int

		for _, date := range acc.dayOrder {
			day := acc.days[date]
			total := day.positive + day.negative + day.neutral
			if total == 0 {
				continue
			}

			positive += day.positive
			negative += day.negative
			neutral += day.neutral

			trends = append(trends, domain.DailySentiment{
				Date:         date,
				Positive:     day.positive,
				Negative:     day.negative,
				Neutral:      day.neutral,
				PositiveRate: round2(percent(day.positive, total)),
				NegativeRate: round2(percent(day.negative, total)),
				Total:        total,
			})
		}

		total := positive + negative + neutral

		topics = append(topics, domain.HotTopic{
			Theme:         theme,
			HotnessScore:  round2(float64(acc.count)*countWeight + float64(acc.likes)*likesWeight),
			TotalComments: acc.count,
			TotalLikes:    acc.likes,
			SentimentDistribution: domain.SentimentDistribution{
				Positive:     positive,
				Negative:     negative,
				Neutral:      neutral,
				PositiveRate: round2(percent(positive, total)),
				NegativeRate: round2(percent(negative, total)),
				NeutralRate:  round2(percent(neutral, total)),
			},
			DailyTrends:    trends,
			SampleContents: samples[theme],
		})
	}

	sort.Slice(topics, func(i, j int) bool {
		if topics[i].HotnessScore != topics[j].HotnessScore {
			return topics[i].HotnessScore > topics[j].HotnessScore
		}

		return topics[i].Theme < topics[j].Theme
	})

	if len(topics) > hotTopicsLimit {
		topics = topics[:hotTopicsLimit]
	}

	return topics
}
