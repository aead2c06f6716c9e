// Package analytics computes trading performance metrics and time series
// from a list of closed trades. Every function is pure: inputs are never
// mutated and no package state is read or written.
package analytics

import (
	"math"
	"sort"

	"trade-journal/internal/models"
)

// Grouped holds per-key sums in first-occurrence order.
type Grouped[K comparable] struct {
	keys   []K
	sums   map[K]float64
	counts map[K]int
}

// GroupSum sums valueFn over items grouped by keyFn.
// Keys() preserves the order in which each key was first seen.
func GroupSum[T any, K comparable](items []T, keyFn func(T) K, valueFn func(T) float64) *Grouped[K] {
	g := &Grouped[K]{
		sums:   make(map[K]float64),
		counts: make(map[K]int),
	}
	for _, item := range items {
		k := keyFn(item)
		if _, ok := g.sums[k]; !ok {
			g.keys = append(g.keys, k)
		}
		g.sums[k] += valueFn(item)
		g.counts[k]++
	}
	return g
}

// Keys returns the keys in insertion order.
func (g *Grouped[K]) Keys() []K {
	out := make([]K, len(g.keys))
	copy(out, g.keys)
	return out
}

// SortedKeys returns the keys ordered by less.
func (g *Grouped[K]) SortedKeys(less func(a, b K) bool) []K {
	out := g.Keys()
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Get returns the sum for k.
func (g *Grouped[K]) Get(k K) float64 {
	return g.sums[k]
}

// Count returns how many items contributed to k.
func (g *Grouped[K]) Count(k K) int {
	return g.counts[k]
}

// Len returns the number of distinct keys.
func (g *Grouped[K]) Len() int {
	return len(g.keys)
}

// Map returns a copy of the sums.
func (g *Grouped[K]) Map() map[K]float64 {
	out := make(map[K]float64, len(g.sums))
	for k, v := range g.sums {
		out[k] = v
	}
	return out
}

// CumulativeSum returns the prefix sums of values.
func CumulativeSum(values []float64) []float64 {
	out := make([]float64, len(values))
	var running float64
	for i, v := range values {
		running += v
		out[i] = running
	}
	return out
}

// DrawdownPoint is the peak-tracking state at one point of a cumulative series.
type DrawdownPoint struct {
	Value    float64
	Peak     float64
	Drawdown float64
}

// Drawdowns tracks the running peak over a cumulative series. The peak
// starts at zero, so an equity curve that opens with a loss is already
// in drawdown.
func Drawdowns(cumulative []float64) []DrawdownPoint {
	out := make([]DrawdownPoint, len(cumulative))
	peak := 0.0
	for i, v := range cumulative {
		if v > peak {
			peak = v
		}
		out[i] = DrawdownPoint{Value: v, Peak: peak, Drawdown: peak - v}
	}
	return out
}

// DrawdownStats summarizes a drawdown series.
type DrawdownStats struct {
	Max        float64
	MaxPercent float64
	Current    float64
	// MaxIndex is the point where the maximum drawdown occurred, -1 when there is none.
	MaxIndex int
}

// SummarizeDrawdowns finds the maximum drawdown and expresses it as a
// percentage of base plus the peak at that point. A zero or negative
// denominator yields a percentage of 0.
func SummarizeDrawdowns(points []DrawdownPoint, base float64) DrawdownStats {
	stats := DrawdownStats{MaxIndex: -1}
	for i, p := range points {
		if p.Drawdown > stats.Max {
			stats.Max = p.Drawdown
			stats.MaxIndex = i
		}
	}
	if stats.MaxIndex >= 0 {
		denom := base + points[stats.MaxIndex].Peak
		if denom > 0 {
			stats.MaxPercent = stats.Max / denom * 100
		}
	}
	if n := len(points); n > 0 {
		stats.Current = points[n-1].Drawdown
	}
	return stats
}

// StreakStats holds consecutive win/loss run lengths.
type StreakStats struct {
	// Current is positive for a win streak and negative for a loss streak.
	Current     int
	LongestWin  int
	LongestLoss int
}

// Streaks walks values in order. A value > 0 is a win, anything else a loss.
func Streaks(values []float64) StreakStats {
	var s StreakStats
	for _, v := range values {
		if v > 0 {
			if s.Current > 0 {
				s.Current++
			} else {
				s.Current = 1
			}
			if s.Current > s.LongestWin {
				s.LongestWin = s.Current
			}
		} else {
			if s.Current < 0 {
				s.Current--
			} else {
				s.Current = -1
			}
			if -s.Current > s.LongestLoss {
				s.LongestLoss = -s.Current
			}
		}
	}
	return s
}

// Bucket is a half-open [Min, Max) range of a histogram.
type Bucket struct {
	Label string
	Min   float64
	Max   float64
}

// Contains reports whether v falls in [Min, Max).
func (b Bucket) Contains(v float64) bool {
	return v >= b.Min && v < b.Max
}

// DefaultBuckets is the fixed net P&L distribution. The ranges are
// exhaustive and non-overlapping.
var DefaultBuckets = []Bucket{
	{Label: "< -5000", Min: math.Inf(-1), Max: -5000},
	{Label: "-5000 to -1000", Min: -5000, Max: -1000},
	{Label: "-1000 to -500", Min: -1000, Max: -500},
	{Label: "-500 to 0", Min: -500, Max: 0},
	{Label: "0 to 500", Min: 0, Max: 500},
	{Label: "500 to 1000", Min: 500, Max: 1000},
	{Label: "1000 to 5000", Min: 1000, Max: 5000},
	{Label: "> 5000", Min: 5000, Max: math.Inf(1)},
}

// Histogram counts values into buckets, returned in bucket order. Each
// value lands in the first bucket that contains it; NaN is not counted.
func Histogram(values []float64, buckets []Bucket) []models.DistributionBucket {
	out := make([]models.DistributionBucket, len(buckets))
	for i, b := range buckets {
		out[i] = models.DistributionBucket{Label: b.Label, Min: b.Min, Max: b.Max}
	}
	for _, v := range values {
		for i, b := range buckets {
			if b.Contains(v) {
				out[i].Count++
				break
			}
		}
	}
	return out
}

// sortedByDate returns a date-ascending copy of trades. Trades on the same
// date keep their input order.
func sortedByDate(trades []models.Trade) []models.Trade {
	out := make([]models.Trade, len(trades))
	copy(out, trades)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func netValues(trades []models.Trade) []float64 {
	out := make([]float64, len(trades))
	for i, t := range trades {
		out[i] = t.NetPnL
	}
	return out
}

// finite maps NaN and ±Inf to 0.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// safeDiv divides a by b, returning fallback when b is zero.
func safeDiv(a, b, fallback float64) float64 {
	if b == 0 {
		return fallback
	}
	return finite(a / b)
}
