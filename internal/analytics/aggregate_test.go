package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupSum_InsertionOrder(t *testing.T) {
	type row struct {
		key string
		v   float64
	}
	rows := []row{{"b", 1}, {"a", 2}, {"b", 3}, {"c", 4}}

	g := GroupSum(rows, func(r row) string { return r.key }, func(r row) float64 { return r.v })

	assert.Equal(t, []string{"b", "a", "c"}, g.Keys())
	assert.Equal(t, []string{"a", "b", "c"}, g.SortedKeys(func(x, y string) bool { return x < y }))
	assert.Equal(t, 4.0, g.Get("b"))
	assert.Equal(t, 2, g.Count("b"))
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, 0.0, g.Get("missing"))
}

func TestCumulativeSum(t *testing.T) {
	assert.Equal(t, []float64{1, 3, 0, 10}, CumulativeSum([]float64{1, 2, -3, 10}))
	assert.Empty(t, CumulativeSum(nil))
}

func TestSummarizeDrawdowns(t *testing.T) {
	points := Drawdowns([]float64{100, 50, 250, 200})
	stats := SummarizeDrawdowns(points, 0)

	assert.Equal(t, 50.0, stats.Max)
	assert.Equal(t, 1, stats.MaxIndex)
	assert.Equal(t, 50.0, stats.MaxPercent)
	assert.Equal(t, 50.0, stats.Current)

	flat := SummarizeDrawdowns(Drawdowns([]float64{-10, -20}), 0)
	assert.Equal(t, 20.0, flat.Max)
	assert.Equal(t, 0.0, flat.MaxPercent, "zero peak guards the percentage")

	empty := SummarizeDrawdowns(nil, 0)
	assert.Equal(t, -1, empty.MaxIndex)
	assert.Equal(t, 0.0, empty.Current)
}

func TestStreaks(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   StreakStats
	}{
		{"empty", nil, StreakStats{}},
		{"three wins two losses", []float64{1, 2, 3, -1, -2}, StreakStats{Current: -2, LongestWin: 3, LongestLoss: 2}},
		{"zero is a loss", []float64{5, 0, 0, 0}, StreakStats{Current: -3, LongestWin: 1, LongestLoss: 3}},
		{"ends on wins", []float64{-1, -1, -1, 2, 2}, StreakStats{Current: 2, LongestWin: 2, LongestLoss: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Streaks(tt.values))
		})
	}
}

func TestHistogram_ExhaustiveAndDisjoint(t *testing.T) {
	for i := 1; i < len(DefaultBuckets); i++ {
		assert.Equal(t, DefaultBuckets[i-1].Max, DefaultBuckets[i].Min, "buckets %d and %d must touch", i-1, i)
	}
	assert.True(t, math.IsInf(DefaultBuckets[0].Min, -1))
	assert.True(t, math.IsInf(DefaultBuckets[len(DefaultBuckets)-1].Max, 1))

	out := Histogram([]float64{math.NaN(), -1e12, 1e12}, DefaultBuckets)
	total := 0
	for _, b := range out {
		total += b.Count
	}
	assert.Equal(t, 2, total)
}

func TestSafeDiv(t *testing.T) {
	assert.Equal(t, 7.0, safeDiv(1, 0, 7))
	assert.Equal(t, 0.5, safeDiv(1, 2, 7))
	assert.Equal(t, 0.0, finite(math.Inf(1)))
	assert.Equal(t, 0.0, finite(math.NaN()))
}
