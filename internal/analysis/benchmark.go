package analysis

import (
	"math"
	"sort"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
	db "github.com/culturepulse/culture-pulse/internal/storage"
)

// MergeRadar combines two benchmark periods into one radar series pair over
// the union of their themes. Themes absent from one period get a zero value.
func MergeRadar(a, b []db.ThemePeriodStats, labelA, labelB, metric string) domain.RadarSeriesPair {
	valuesA := metricValues(a, metric)
	valuesB := metricValues(b, metric)

	pair := domain.RadarSeriesPair{
		LabelA: labelA,
		LabelB: labelB,
		Metric: metric,
		Rows:   []domain.RadarRow{},
	}

	for _, theme := range unionThemes(valuesA, valuesB) {
		pair.Rows = append(pair.Rows, domain.RadarRow{
			Theme:  theme,
			ValueA: valuesA[theme],
			ValueB: valuesB[theme],
		})
	}

	return pair
}

// MergeFlow compares comment volume between two periods, sorted by absolute
// change, largest movement first.
func MergeFlow(a, b []db.ThemePeriodStats) []domain.ThemeFlowRow {
	countsA := metricValues(a, domain.MetricCount)
	countsB := metricValues(b, domain.MetricCount)

	rows := []domain.ThemeFlowRow{}

	for _, theme := range unionThemes(countsA, countsB) {
		countA := int(countsA[theme])
		countB := int(countsB[theme])
		change := countB - countA

		row := domain.ThemeFlowRow{
			Theme:  theme,
			CountA: countA,
			CountB: countB,
			Change: change,
		}
		if change != 0 && countA > 0 {
			row.ChangePercent = math.Round(float64(change)/float64(countA)*100*10) / 10
		}

		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		ci, cj := abs(rows[i].Change), abs(rows[j].Change)
		if ci != cj {
			return ci > cj
		}

		return rows[i].Theme < rows[j].Theme
	})

	return rows
}

func metricValues(stats []db.ThemePeriodStats, metric string) map[string]float64 {
	values := make(map[string]float64, len(stats))

	for _, st := range stats {
		if metric == domain.MetricENPS {
			values[st.Theme] = math.Round(percent(st.Positive, st.Total)*100) / 100
			continue
		}

		values[st.Theme] = float64(st.Total)
	}

	return values
}

func unionThemes(a, b map[string]float64) []string {
	seen := make(map[string]bool, len(a)+len(b))
	themes := make([]string, 0, len(a)+len(b))

	for theme := range a {
		seen[theme] = true
		themes = append(themes, theme)
	}

	for theme := range b {
		if !seen[theme] {
			themes = append(themes, theme)
		}
	}

	sort.Strings(themes)

	return themes
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
