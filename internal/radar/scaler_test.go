package radar

import (
	"math"
	"testing"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
)

func pairOf(a, b []float64) domain.RadarSeriesPair {
	rows := make([]domain.RadarRow, len(a))
	for i := range a {
		rows[i] = domain.RadarRow{Theme: "t", ValueA: a[i], ValueB: b[i]}
	}

	return domain.RadarSeriesPair{LabelA: "2024", LabelB: "2025", Metric: domain.MetricCount, Rows: rows}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.1
}

func TestScale_KnownValues(t *testing.T) {
	// A = [0, 50, 100], B = [10, 0, 200] -> M = 200
	got := Scale(pairOf([]float64{0, 50, 100}, []float64{10, 0, 200}))

	if got.MaxValue != 200 {
		t.Fatalf("MaxValue = %v, want 200", got.MaxValue)
	}

	wantA := []float64{0, 50, 70.7}
	wantB := []float64{22.4, 0, 100}

	for i, row := range got.Rows {
		if !almostEqual(row.ScaledA, wantA[i]) {
			t.Errorf("ScaledA[%d] = %v, want %v", i, row.ScaledA, wantA[i])
		}

		if !almostEqual(row.ScaledB, wantB[i]) {
			t.Errorf("ScaledB[%d] = %v, want %v", i, row.ScaledB, wantB[i])
		}
	}
}

func TestScale_RetainsOriginals(t *testing.T) {
	got := Scale(pairOf([]float64{3, 1200}, []float64{7, 4}))

	for i, want := range []float64{3, 1200} {
		if got.Rows[i].ValueA != want {
			t.Errorf("ValueA[%d] = %v, want %v", i, got.Rows[i].ValueA, want)
		}
	}
}

func TestScale_Bounds(t *testing.T) {
	got := Scale(pairOf([]float64{0, 1, 17, 400000}, []float64{9, 0, 123456, 2}))

	for i, row := range got.Rows {
		for _, v := range []float64{row.ScaledA, row.ScaledB} {
			if v < 0 || v > 100 {
				t.Errorf("row %d: scaled value %v out of [0, 100]", i, v)
			}
		}
	}
}

func TestScale_Monotonic(t *testing.T) {
	in := []float64{0, 3, 3, 10, 250, 9001}
	got := Scale(pairOf(in, make([]float64, len(in))))

	for i := 1; i < len(in); i++ {
		if got.Rows[i].ScaledA < got.Rows[i-1].ScaledA {
			t.Errorf("scaling not monotonic at %d: %v < %v", i, got.Rows[i].ScaledA, got.Rows[i-1].ScaledA)
		}
	}
}

func TestScale_Empty(t *testing.T) {
	got := Scale(domain.RadarSeriesPair{Metric: domain.MetricCount})

	if len(got.Rows) != 0 {
		t.Fatalf("expected empty output, got %d rows", len(got.Rows))
	}

	if got.MaxValue != 1 {
		t.Errorf("MaxValue = %v, want 1 for empty input", got.MaxValue)
	}
}

func TestScale_AllZero(t *testing.T) {
	got := Scale(pairOf([]float64{0, 0, 0}, []float64{0, 0, 0}))

	if got.MaxValue != 1 {
		t.Fatalf("MaxValue = %v, want floor of 1", got.MaxValue)
	}

	for i, row := range got.Rows {
		if row.ScaledA != 0 || row.ScaledB != 0 {
			t.Errorf("row %d: expected all-zero outputs, got %v/%v", i, row.ScaledA, row.ScaledB)
		}
	}
}

func TestForMetric_ENPSPassesThrough(t *testing.T) {
	pair := pairOf([]float64{42.5, 88}, []float64{13, 67.2})
	pair.Metric = domain.MetricENPS

	got := ForMetric(pair)

	for i, row := range got.Rows {
		if row.ScaledA != row.ValueA || row.ScaledB != row.ValueB {
			t.Errorf("row %d: rate-like series must pass through unscaled", i)
		}
	}
}

func TestForMetric_CountScales(t *testing.T) {
	got := ForMetric(pairOf([]float64{4, 10000}, []float64{0, 0}))

	if got.Rows[1].ScaledA != 100 {
		t.Errorf("max count should scale to 100, got %v", got.Rows[1].ScaledA)
	}

	if got.Rows[0].ScaledA == got.Rows[0].ValueA {
		t.Error("count metric should be sqrt-scaled, not passed through")
	}
}
