package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
	db "github.com/culturepulse/culture-pulse/internal/storage"
)

func TestMergeRadar_CountUnionSorted(t *testing.T) {
	a := []db.ThemePeriodStats{
		{Theme: "workload", Total: 12, Positive: 3},
		{Theme: "leadership", Total: 5, Positive: 5},
	}
	b := []db.ThemePeriodStats{
		{Theme: "workload", Total: 20, Positive: 10},
		{Theme: "compensation", Total: 7, Positive: 1},
	}

	pair := MergeRadar(a, b, "2025-01", "2025-06", domain.MetricCount)

	assert.Equal(t, "2025-01", pair.LabelA)
	assert.Equal(t, "2025-06", pair.LabelB)
	assert.Equal(t, []domain.RadarRow{
		{Theme: "compensation", ValueA: 0, ValueB: 7},
		{Theme: "leadership", ValueA: 5, ValueB: 0},
		{Theme: "workload", ValueA: 12, ValueB: 20},
	}, pair.Rows)
}

func TestMergeRadar_ENPSMetric(t *testing.T) {
	a := []db.ThemePeriodStats{{Theme: "workload", Total: 3, Positive: 1}}

	pair := MergeRadar(a, nil, "2024", "2025", domain.MetricENPS)

	assert.Equal(t, domain.MetricENPS, pair.Metric)
	assert.InDelta(t, 33.33, pair.Rows[0].ValueA, 0.001)
	assert.Zero(t, pair.Rows[0].ValueB)
}

func TestMergeFlow_SortedByAbsoluteChange(t *testing.T) {
	a := []db.ThemePeriodStats{
		{Theme: "workload", Total: 10},
		{Theme: "leadership", Total: 8},
		{Theme: "compensation", Total: 6},
	}
	b := []db.ThemePeriodStats{
		{Theme: "workload", Total: 11},
		{Theme: "leadership", Total: 2},
		{Theme: "compensation", Total: 6},
	}

	rows := MergeFlow(a, b)

	assert.Equal(t, "leadership", rows[0].Theme)
	assert.Equal(t, -6, rows[0].Change)
	assert.InDelta(t, -75.0, rows[0].ChangePercent, 0.01)
	assert.Equal(t, "workload", rows[1].Theme)
	assert.Equal(t, "compensation", rows[2].Theme)
	assert.Zero(t, rows[2].Change)
	assert.Zero(t, rows[2].ChangePercent)
}

func TestMergeFlow_NewThemeHasZeroPercent(t *testing.T) {
	rows := MergeFlow(nil, []db.ThemePeriodStats{{Theme: "return to office", Total: 9}})

	assert.Equal(t, 9, rows[0].Change)
	assert.Zero(t, rows[0].ChangePercent)
}
