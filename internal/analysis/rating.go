// Package analysis contains the pure computation behind the ranking and
// benchmark endpoints: risky/positive sub-theme ratings with year-over-year
// comparison, and the merging of two aggregate periods into radar and flow
// series.
package analysis

import (
	"math"
	"sort"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
)

const (
	// minThemeComments is the minimum current-year volume for a sub-theme
	// to enter a ranking.
	minThemeComments = 5
	// volumeSaturation is the comment count at which the volume factor
	// stops growing.
	volumeSaturation = 50.0
	// topThemes caps both rankings and the overall rating average.
	topThemes = 10

	rateWeight   = 0.7
	volumeWeight = 0.3
	volumeScale  = 30.0
)

// RankRisky rates sub-themes by negative sentiment pressure in the current
// year, with the previous year as the comparison baseline. Returns the top
// themes sorted by descending risk score.
func RankRisky(cur, prev []domain.ThemeYearStats) domain.ThemeRating {
	rating := rank(cur, prev, func(st domain.ThemeYearStats) float64 {
		return percent(st.Negative, st.Count)
	})
	rating.RiskLevel = riskLevel(rating.OverallRating)

	return rating
}

// RankPositive rates sub-themes by positive sentiment strength, the mirror
// image of RankRisky.
func RankPositive(cur, prev []domain.ThemeYearStats) domain.ThemeRating {
	return rank(cur, prev, func(st domain.ThemeYearStats) float64 {
		return percent(st.Positive, st.Count)
	})
}

func rank(cur, prev []domain.ThemeYearStats, rateOf func(domain.ThemeYearStats) float64) domain.ThemeRating {
	prevByTheme := make(map[string]domain.ThemeYearStats, len(prev))
	for _, st := range prev {
		prevByTheme[st.Theme] = st
	}

	rating := domain.ThemeRating{Themes: []domain.RatedTheme{}}

	for _, st := range cur {
		rating.TotalResponses += st.Count

		if st.Count < minThemeComments {
			continue
		}

		rating.Themes = append(rating.Themes, rateTheme(st, prevByTheme[st.Theme], rateOf))
	}

	sort.Slice(rating.Themes, func(i, j int) bool {
		if rating.Themes[i].Score != rating.Themes[j].Score {
			return rating.Themes[i].Score > rating.Themes[j].Score
		}

		return rating.Themes[i].SubTheme < rating.Themes[j].SubTheme
	})

	if len(rating.Themes) > topThemes {
		rating.Themes = rating.Themes[:topThemes]
	}

	var scoreSum float64
	for _, theme := range rating.Themes {
		scoreSum += theme.Score
	}

	if len(rating.Themes) > 0 {
		rating.OverallRating = round1(scoreSum / float64(len(rating.Themes)))
	}

	return rating
}

func rateTheme(cur, prev domain.ThemeYearStats, rateOf func(domain.ThemeYearStats) float64) domain.RatedTheme {
	enps := percent(cur.Positive, cur.Count)
	prevENPS := percent(prev.Positive, prev.Count)

	volumeFactor := math.Min(float64(cur.Count)/volumeSaturation, 1)
	score := rateOf(cur)*rateWeight + volumeFactor*volumeScale*volumeWeight
	score = math.Min(math.Max(score, 0), 100)

	return domain.RatedTheme{
		SubTheme:       cur.Theme,
		Score:          round1(score),
		TotalCount:     cur.Count,
		PrevTotalCount: prev.Count,
		CommentsYoY:    round1(yoyChange(float64(cur.Count), float64(prev.Count))),
		ENPS:           round1(enps),
		PrevENPS:       round1(prevENPS),
		ENPSYoY:        round1(yoyChange(enps, prevENPS)),
		PositiveRate:   round1(percent(cur.Positive, cur.Count)),
		NegativeRate:   round1(percent(cur.Negative, cur.Count)),
	}
}

// yoyChange is the relative change in percent. A metric appearing from zero
// counts as +100%.
func yoyChange(cur, prev float64) float64 {
	if prev > 0 {
		return (cur - prev) / prev * 100
	}

	if cur > 0 {
		return 100
	}

	return 0
}

func percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}

	return float64(part) / float64(total) * 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// riskLevel buckets the overall rating into the labels the dashboard shows.
func riskLevel(rating float64) string {
	switch {
	case rating >= 50:
		return "Very High"
	case rating >= 40:
		return "High"
	case rating >= 35:
		return "Moderate-High"
	case rating >= 25:
		return "Moderate"
	case rating >= 20:
		return "Low-Moderate"
	case rating >= 5:
		return "Low"
	default:
		return "Very Low"
	}
}
