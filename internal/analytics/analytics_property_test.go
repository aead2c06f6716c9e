package analytics

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"trade-journal/internal/models"
)

// genTrades builds trade lists from generated P&L values, spread over
// consecutive days with a second trade on every third day.
func genTrades(values []float64) []models.Trade {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	trades := make([]models.Trade, len(values))
	offset := 0
	for i, v := range values {
		if i%3 != 2 {
			offset++
		}
		charges := math.Abs(v) * 0.001
		trades[i] = models.NewTrade(start.AddDate(0, 0, offset), "SYM", 1, 0, 0, v, charges)
	}
	return trades
}

func pnlSliceGen() gopter.Gen {
	return gen.SliceOf(gen.Float64Range(-20000, 20000))
}

// Property 1: Win/loss classification is exhaustive
// For any trade list, every trade is either a win or a loss and the win
// rate stays within [0, 100].
func TestProperty1_WinLossPartition(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("winning + losing == total", prop.ForAll(
		func(values []float64) bool {
			m := Calculate(genTrades(values), DefaultOptions())
			return m.WinningTrades+m.LosingTrades == m.TotalTrades
		},
		pnlSliceGen(),
	))

	properties.Property("win rate within [0, 100]", prop.ForAll(
		func(values []float64) bool {
			m := Calculate(genTrades(values), DefaultOptions())
			return m.WinRate >= 0 && m.WinRate <= 100
		},
		pnlSliceGen(),
	))

	properties.TestingRun(t)
}

// Property 2: Every metric is finite
// No input list may produce NaN or Inf in the metrics record.
func TestProperty2_MetricsFinite(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("all float fields finite", prop.ForAll(
		func(values []float64, capital float64) bool {
			opts := DefaultOptions()
			opts.InitialCapital = capital
			m := Calculate(genTrades(values), opts)

			v := reflect.ValueOf(m)
			for i := 0; i < v.NumField(); i++ {
				f := v.Field(i)
				if f.Kind() != reflect.Float64 {
					continue
				}
				x := f.Float()
				if math.IsNaN(x) || math.IsInf(x, 0) {
					t.Logf("%s = %v for %v", v.Type().Field(i).Name, x, values)
					return false
				}
			}
			return true
		},
		pnlSliceGen(),
		gen.OneConstOf(0.0, 50000.0, 1e6),
	))

	properties.TestingRun(t)
}

// Property 3: Equity curve peak tracking
// The running peak never decreases, never sits below the cumulative value,
// and drawdown is never negative.
func TestProperty3_EquityCurvePeaks(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("peak monotonic and above cumulative", prop.ForAll(
		func(values []float64) bool {
			curve := EquityCurve(genTrades(values))
			for i, p := range curve {
				if p.Peak < p.CumulativePnL || p.Drawdown < 0 {
					return false
				}
				if i > 0 && p.Peak < curve[i-1].Peak {
					return false
				}
				if i > 0 && p.Date < curve[i-1].Date {
					return false
				}
			}
			return true
		},
		pnlSliceGen(),
	))

	properties.TestingRun(t)
}

// Property 4: Net P&L invariant and purity
// Trades keep net == gross - charges through every builder, and repeated
// calculations are identical.
func TestProperty4_PureAndConsistent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("calculate is idempotent", prop.ForAll(
		func(values []float64) bool {
			trades := genTrades(values)
			return reflect.DeepEqual(Calculate(trades, DefaultOptions()), Calculate(trades, DefaultOptions()))
		},
		pnlSliceGen(),
	))

	properties.Property("top trades preserve net invariant", prop.ForAll(
		func(values []float64) bool {
			winners, losers := TopTrades(genTrades(values), 5)
			for _, tr := range append(winners, losers...) {
				if tr.NetPnL != tr.GrossPnL-tr.Charges {
					return false
				}
			}
			return true
		},
		pnlSliceGen(),
	))

	properties.Property("distribution counts every trade", prop.ForAll(
		func(values []float64) bool {
			total := 0
			for _, b := range Distribution(genTrades(values)) {
				total += b.Count
			}
			return total == len(values)
		},
		pnlSliceGen(),
	))

	properties.Property("monthly totals match overall net", prop.ForAll(
		func(values []float64) bool {
			trades := genTrades(values)
			var monthly float64
			for _, mo := range MonthlyPnL(trades) {
				monthly += mo.NetPnL
			}
			m := Calculate(trades, DefaultOptions())
			return math.Abs(monthly-m.TotalNetPnL) < 1e-6
		},
		pnlSliceGen(),
	))

	properties.TestingRun(t)
}
