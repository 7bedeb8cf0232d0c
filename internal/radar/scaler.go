// Package radar transforms raw two-series benchmark data into a bounded,
// visually comparable scale for radar charts. Comment-count magnitudes across
// themes can differ by orders of magnitude; a linear axis would be dominated
// by a single theme, so count-like series are compressed with a square-root
// scale while rate-like series (already bounded, e.g. eNPS percentages) pass
// through unchanged.
package radar

import (
	"math"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
)

const scaleCeiling = 100

// ScaledRow carries both the original and the transformed value per theme so
// that tooltips can still display true magnitudes.
type ScaledRow struct {
	Theme   string  `json:"theme"`
	ValueA  float64 `json:"value_a"`
	ValueB  float64 `json:"value_b"`
	ScaledA float64 `json:"scaled_a"`
	ScaledB float64 `json:"scaled_b"`
}

// ScaledPair is a RadarSeriesPair after scaling. MaxValue is the global
// maximum across both input series, floored at 1.
type ScaledPair struct {
	LabelA   string      `json:"label_a"`
	LabelB   string      `json:"label_b"`
	Metric   string      `json:"metric"`
	MaxValue float64     `json:"max_value"`
	Rows     []ScaledRow `json:"rows"`
}

// Scale compresses a count-like series pair into [0, 100] using
// sqrt(v/M)*100 where M = max(1, max over both series). The transform is
// sub-linear, preserves rank order, and never divides by zero.
func Scale(pair domain.RadarSeriesPair) ScaledPair {
	out := ScaledPair{
		LabelA:   pair.LabelA,
		LabelB:   pair.LabelB,
		Metric:   pair.Metric,
		MaxValue: 1,
	}
	if len(pair.Rows) == 0 {
		return out
	}

	for _, r := range pair.Rows {
		out.MaxValue = math.Max(out.MaxValue, math.Max(r.ValueA, r.ValueB))
	}

	out.Rows = make([]ScaledRow, 0, len(pair.Rows))
	for _, r := range pair.Rows {
		out.Rows = append(out.Rows, ScaledRow{
			Theme:   r.Theme,
			ValueA:  r.ValueA,
			ValueB:  r.ValueB,
			ScaledA: scaleValue(r.ValueA, out.MaxValue),
			ScaledB: scaleValue(r.ValueB, out.MaxValue),
		})
	}

	return out
}

// PassThrough keeps a rate-like series pair unscaled; scaled values equal the
// originals. MaxValue still reports the observed maximum for axis sizing.
func PassThrough(pair domain.RadarSeriesPair) ScaledPair {
	out := ScaledPair{
		LabelA:   pair.LabelA,
		LabelB:   pair.LabelB,
		Metric:   pair.Metric,
		MaxValue: 1,
	}

	out.Rows = make([]ScaledRow, 0, len(pair.Rows))
	for _, r := range pair.Rows {
		out.MaxValue = math.Max(out.MaxValue, math.Max(r.ValueA, r.ValueB))
		out.Rows = append(out.Rows, ScaledRow{
			Theme:   r.Theme,
			ValueA:  r.ValueA,
			ValueB:  r.ValueB,
			ScaledA: r.ValueA,
			ScaledB: r.ValueB,
		})
	}

	return out
}

// ForMetric applies the scaling policy for the given benchmark metric:
// volumetric series are square-root scaled, rate-like series pass through.
func ForMetric(pair domain.RadarSeriesPair) ScaledPair {
	if pair.Metric == domain.MetricENPS {
		return PassThrough(pair)
	}

	return Scale(pair)
}

func scaleValue(v, maxValue float64) float64 {
	if v <= 0 {
		return 0
	}

	return math.Sqrt(v/maxValue) * scaleCeiling
}
