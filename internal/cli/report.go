package cli

import (
	"context"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trade-journal/internal/analytics"
	"trade-journal/internal/format"
	"trade-journal/internal/logging"
	"trade-journal/internal/models"
	"trade-journal/internal/performance"
)

// barWidth is the widest text bar drawn in monthly and distribution tables.
const barWidth = 30

// addReportCommands adds the analytics commands.
func addReportCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newReportCmd(app))
	rootCmd.AddCommand(newTradesCmd(app))
	rootCmd.AddCommand(newEquityCmd(app))
	rootCmd.AddCommand(newMonthlyCmd(app))
	rootCmd.AddCommand(newCalendarCmd(app))
	rootCmd.AddCommand(newDistributionCmd(app))
	rootCmd.AddCommand(newSymbolsCmd(app))
	rootCmd.AddCommand(newTopCmd(app))
	rootCmd.AddCommand(newWeekdaysCmd(app))
	rootCmd.AddCommand(newAccountsCmd(app))
}

func newReportCmd(app *App) *cobra.Command {
	var allAccounts bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Full performance report",
		Long: `Compute the performance summary for the selected trades: totals, win rate,
profit factor, expectancy, Sharpe/Sortino/Calmar/Omega ratios, drawdowns,
streaks, best and worst days, holding durations and the Kelly percentage.

With --all-accounts one report is built per account.`,
		Example: `  journal report
  journal report --from 2024-04-01 --to 2025-03-31
  journal report --all-accounts --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			trades, filter, err := app.loadTrades(cmd)
			if err != nil {
				return err
			}
			if err := requireTrades(len(trades)); err != nil {
				return err
			}

			var reports []*analytics.Report
			if allAccounts && filter.Account == "" {
				reports, err = app.accountReports(cmd.Context(), trades)
				if err != nil {
					return err
				}
			} else {
				start := time.Now()
				report := analytics.BuildReport(trades, reportOptions(app.Config))
				report.Account = filter.Account
				logging.LogReport(app.Logger, report.Account, len(trades), report.Metrics.TotalNetPnL, time.Since(start))
				reports = []*analytics.Report{report}
			}

			if output.IsStructured() {
				if allAccounts {
					return output.Structured(reports)
				}
				return output.Structured(reports[0])
			}
			for i, r := range reports {
				if i > 0 {
					output.Println()
				}
				printReport(output, r)
			}
			return nil
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().BoolVar(&allAccounts, "all-accounts", false, "build one report per account")
	return cmd
}

// accountReports builds one report per account on a worker pool.
func (a *App) accountReports(ctx context.Context, trades []models.Trade) ([]*analytics.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var accounts []string
	byAccount := map[string][]models.Trade{}
	for _, t := range trades {
		if _, ok := byAccount[t.Account]; !ok {
			accounts = append(accounts, t.Account)
		}
		byAccount[t.Account] = append(byAccount[t.Account], t)
	}

	pool := performance.NewWorkerPool(min(len(accounts), runtime.NumCPU()))
	pool.Start()

	opts := reportOptions(a.Config)
	reports, err := performance.Map(ctx, pool, accounts, func(_ context.Context, account string) *analytics.Report {
		start := time.Now()
		trades := byAccount[account]
		report := analytics.BuildReport(trades, opts)
		report.Account = account
		logging.LogReport(a.Logger, account, len(trades), report.Metrics.TotalNetPnL, time.Since(start))
		return report
	})
	pool.Stop()

	stats := pool.Stats()
	a.Logger.Debug().
		Int("workers", stats.Workers).
		Uint64("tasks_done", stats.TasksDone).
		Int("accounts", len(accounts)).
		Msg("account reports built")
	return reports, err
}

func printReport(output *Output, r *analytics.Report) {
	m := r.Metrics

	title := "Performance Report"
	if r.Account != "" {
		title += " - " + r.Account
	}
	output.Bold("%s", title)
	output.Dim("%s to %s, %d trading days", m.StartDate, m.EndDate, m.TradingDays)
	output.Println()

	output.Bold("Overview")
	output.KeyValue("Trades", strconv.Itoa(m.TotalTrades)+" ("+strconv.Itoa(m.WinningTrades)+" W / "+strconv.Itoa(m.LosingTrades)+" L)")
	output.KeyValue("Win rate", format.FormatPercent(m.WinRate))
	output.KeyValue("Gross P&L", output.Money(m.TotalGrossPnL))
	output.KeyValue("Charges", output.Amount(m.TotalCharges))
	output.KeyValue("Net P&L", output.Money(m.TotalNetPnL))
	output.KeyValue("Profit factor", format.FormatRatio(m.ProfitFactor))
	output.KeyValue("Expectancy", output.Money(m.Expectancy))
	output.Println()

	output.Bold("Wins and Losses")
	output.KeyValue("Average win", output.Money(m.AvgWin))
	output.KeyValue("Average loss", output.Money(-m.AvgLoss))
	output.KeyValue("Payoff ratio", format.FormatRatio(m.PayoffRatio))
	output.KeyValue("Largest win", output.Money(m.LargestWin))
	output.KeyValue("Largest loss", output.Money(m.LargestLoss))
	output.KeyValue("Current streak", streakText(m.CurrentStreak))
	output.KeyValue("Longest streaks", strconv.Itoa(m.LongestWinStreak)+" W / "+strconv.Itoa(m.LongestLossStreak)+" L")
	output.Println()

	output.Bold("Risk")
	output.KeyValue("Sharpe ratio", format.FormatRatio(m.SharpeRatio))
	output.KeyValue("Sortino ratio", format.FormatRatio(m.SortinoRatio))
	output.KeyValue("Calmar ratio", format.FormatRatio(m.CalmarRatio))
	output.KeyValue("Omega ratio", format.FormatRatio(m.OmegaRatio))
	output.KeyValue("Recovery factor", format.FormatRatio(m.RecoveryFactor))
	output.KeyValue("Annualized return", output.Percent(m.AnnualizedReturn))
	output.KeyValue("Max drawdown", output.Money(-m.MaxDrawdown)+" ("+format.FormatPercent(m.MaxDrawdownPercent)+")")
	output.KeyValue("Current drawdown", output.Money(-m.CurrentDrawdown))
	output.KeyValue("Drawdown duration", strconv.Itoa(m.MaxDrawdownDuration)+" days")
	output.KeyValue("Kelly criterion", format.FormatPercent(m.KellyCriterion))
	output.Println()

	output.Bold("Best and Worst")
	if m.BestDay != nil {
		output.KeyValue("Best day", m.BestDay.Date+"  "+output.Money(m.BestDay.PnL))
	}
	if m.WorstDay != nil {
		output.KeyValue("Worst day", m.WorstDay.Date+"  "+output.Money(m.WorstDay.PnL))
	}
	if m.BestTrade != nil {
		output.KeyValue("Best trade", m.BestTrade.Symbol+" "+m.BestTrade.DateKey()+"  "+output.Money(m.BestTrade.NetPnL))
	}
	if m.WorstTrade != nil {
		output.KeyValue("Worst trade", m.WorstTrade.Symbol+" "+m.WorstTrade.DateKey()+"  "+output.Money(m.WorstTrade.NetPnL))
	}
	output.Println()

	output.Bold("Holding")
	output.KeyValue("Average duration", format.FormatDays(m.AvgTradeDuration))
	output.KeyValue("Longest trade", format.FormatDays(m.LongestTrade))
	output.KeyValue("Intraday", format.FormatPercent(m.IntradayPercent))
}

func streakText(n int) string {
	switch {
	case n > 0:
		return strconv.Itoa(n) + " wins"
	case n < 0:
		return strconv.Itoa(-n) + " losses"
	default:
		return "-"
	}
}

func newTradesCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "trades",
		Short: "List trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			trades, _, err := app.loadTrades(cmd)
			if err != nil {
				return err
			}
			// Most recent trades when limited
			if limit > 0 && len(trades) > limit {
				trades = trades[len(trades)-limit:]
			}
			if output.IsStructured() {
				return output.Structured(trades)
			}
			if len(trades) == 0 {
				output.Dim("No trades found.")
				return nil
			}

			table := NewTable(output, "Date", "Symbol", "Qty", "Gross", "Charges", "Net", "Account").AlignRight(2, 3, 4, 5)
			var net float64
			for _, t := range trades {
				net += t.NetPnL
				table.AddRow(
					t.DateKey(),
					format.TruncateString(t.Symbol, 20),
					format.FormatQuantity(t.Quantity, output.currency),
					output.Amount(t.GrossPnL),
					output.Amount(t.Charges),
					output.Money(t.NetPnL),
					orDash(t.Account),
				)
			}
			table.Render()
			output.Println()
			output.Printf("%d trades, net %s\n", len(trades), output.Money(net))
			return nil
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the most recent N trades")
	return cmd
}

func newEquityCmd(app *App) *cobra.Command {
	var width, height int

	cmd := &cobra.Command{
		Use:   "equity",
		Short: "Equity curve with drawdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			trades, _, err := app.loadTrades(cmd)
			if err != nil {
				return err
			}
			if err := requireTrades(len(trades)); err != nil {
				return err
			}

			curve := analytics.EquityCurve(trades)
			if output.IsStructured() {
				return output.Structured(curve)
			}

			if width <= 0 {
				width = app.Config.Display.ChartWidth
			}
			if height <= 0 {
				height = app.Config.Display.ChartHeight
			}
			output.Printf("%s", equityChart(curve, width, height, output.Compact))

			last := curve[len(curve)-1]
			output.Println()
			output.KeyValue("Cumulative P&L", output.Money(last.CumulativePnL))
			output.KeyValue("Peak", output.Amount(last.Peak))
			output.KeyValue("Current drawdown", output.Money(-last.Drawdown))
			return nil
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().IntVar(&width, "width", 0, "chart width in columns (default from config)")
	cmd.Flags().IntVar(&height, "height", 0, "chart height in rows (default from config)")
	return cmd
}

func newMonthlyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Monthly P&L",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			trades, _, err := app.loadTrades(cmd)
			if err != nil {
				return err
			}
			if err := requireTrades(len(trades)); err != nil {
				return err
			}

			months := analytics.MonthlyPnL(trades)
			if output.IsStructured() {
				return output.Structured(months)
			}

			var scale float64
			for _, m := range months {
				scale = max(scale, abs(m.NetPnL))
			}

			table := NewTable(output, "Month", "Trades", "Gross", "Net", "").AlignRight(1, 2, 3)
			for _, m := range months {
				table.AddRow(m.Month, strconv.Itoa(m.TradeCount), output.Amount(m.GrossPnL), output.Money(m.NetPnL), output.bar(m.NetPnL, scale))
			}
			table.Render()
			return nil
		},
	}
	addFilterFlags(cmd)
	return cmd
}

func newCalendarCmd(app *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Daily P&L calendar heatmap",
		Long:  "Show daily net P&L for the last N days ending at --to or the most recent trade.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			trades, filter, err := app.loadTrades(cmd)
			if err != nil {
				return err
			}
			if err := requireTrades(len(trades)); err != nil {
				return err
			}

			if days <= 0 {
				days = app.Config.Display.CalendarDays
			}
			end := filter.To
			if end.IsZero() {
				end = trades[len(trades)-1].Date
			}
			start := end.AddDate(0, 0, -(days - 1))
			if !filter.From.IsZero() && filter.From.After(start) {
				start = filter.From
			}

			cells := analytics.WindowCalendar(analytics.CalendarCells(trades), start, end)
			if output.IsStructured() {
				return output.Structured(cells)
			}
			printCalendar(output, cells, start, end)
			return nil
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().IntVar(&days, "days", 0, "number of days to show (default from config)")
	return cmd
}

// printCalendar draws one row per weekday and one column per week.
func printCalendar(output *Output, cells []models.CalendarCell, start, end time.Time) {
	pnl := make(map[string]float64, len(cells))
	var green, red int
	var net float64
	for _, c := range cells {
		pnl[c.Date] = c.PnL
		net += c.PnL
		if c.PnL > 0 {
			green++
		} else {
			red++
		}
	}

	// Align the first column to Monday
	first := start.AddDate(0, 0, -((int(start.Weekday()) + 6) % 7))
	weeks := int(end.Sub(first).Hours()/24)/7 + 1

	output.Bold("Daily P&L %s to %s", start.Format(models.DateLayout), end.Format(models.DateLayout))
	names := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	for d := 0; d < 7; d++ {
		var sb strings.Builder
		sb.WriteString(names[d] + " ")
		for w := 0; w < weeks; w++ {
			day := first.AddDate(0, 0, w*7+d)
			switch v, ok := pnl[day.Format(models.DateLayout)]; {
			case day.Before(start) || day.After(end):
				sb.WriteString("  ")
			case !ok:
				sb.WriteString(output.DimText("·") + " ")
			case v > 0:
				sb.WriteString(output.Green("■") + " ")
			default:
				sb.WriteString(output.Red("■") + " ")
			}
		}
		output.Println(strings.TrimRight(sb.String(), " "))
	}
	output.Println()
	output.Printf("%d green days, %d red days, net %s\n", green, red, output.Money(net))
}

func newDistributionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distribution",
		Short: "Trade P&L distribution",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			trades, _, err := app.loadTrades(cmd)
			if err != nil {
				return err
			}
			if err := requireTrades(len(trades)); err != nil {
				return err
			}

			buckets := analytics.Distribution(trades)
			if output.IsStructured() {
				return output.Structured(buckets)
			}

			var scale float64
			for _, b := range buckets {
				scale = max(scale, float64(b.Count))
			}
			table := NewTable(output, "Net P&L", "Trades", "Share", "").AlignRight(1, 2)
			for _, b := range buckets {
				share := float64(b.Count) / float64(len(trades)) * 100
				table.AddRow(b.Label, strconv.Itoa(b.Count), format.FormatPercent(share), output.bar(float64(b.Count), scale))
			}
			table.Render()
			return nil
		},
	}
	addFilterFlags(cmd)
	return cmd
}

func newSymbolsCmd(app *App) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "symbols",
		Short: "Per-symbol performance",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			trades, _, err := app.loadTrades(cmd)
			if err != nil {
				return err
			}
			if err := requireTrades(len(trades)); err != nil {
				return err
			}

			if !cmd.Flags().Changed("top") {
				top = app.Config.Analytics.TopSymbols
			}
			symbols := analytics.SymbolPerformance(trades, top)
			if output.IsStructured() {
				return output.Structured(symbols)
			}

			table := NewTable(output, "Symbol", "Trades", "Win Rate", "Avg P&L", "Total P&L").AlignRight(1, 2, 3, 4)
			for _, s := range symbols {
				table.AddRow(s.Symbol, strconv.Itoa(s.Count), format.FormatPercent(s.WinRate), output.Money(s.AvgPnL), output.Money(s.TotalPnL))
			}
			table.Render()
			return nil
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().IntVar(&top, "top", 0, "number of symbols, 0 for all (default from config)")
	return cmd
}

func newTopCmd(app *App) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Best and worst trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			trades, _, err := app.loadTrades(cmd)
			if err != nil {
				return err
			}
			if err := requireTrades(len(trades)); err != nil {
				return err
			}

			if !cmd.Flags().Changed("count") {
				n = app.Config.Analytics.TopTrades
			}
			winners, losers := analytics.TopTrades(trades, n)
			if output.IsStructured() {
				return output.Structured(map[string][]models.Trade{"winners": winners, "losers": losers})
			}

			output.Bold("Top Winners")
			printTradeRanking(output, winners)
			output.Println()
			output.Bold("Top Losers")
			printTradeRanking(output, losers)
			return nil
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().IntVarP(&n, "count", "n", 0, "number of trades per side (default from config)")
	return cmd
}

func printTradeRanking(output *Output, trades []models.Trade) {
	table := NewTable(output, "#", "Date", "Symbol", "Net P&L").AlignRight(0, 3)
	for i, t := range trades {
		table.AddRow(strconv.Itoa(i+1), t.DateKey(), t.Symbol, output.Money(t.NetPnL))
	}
	table.Render()
}

func newWeekdaysCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weekdays",
		Short: "Performance by weekday",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			trades, _, err := app.loadTrades(cmd)
			if err != nil {
				return err
			}
			if err := requireTrades(len(trades)); err != nil {
				return err
			}

			days := analytics.WeekdayPerformance(trades)
			if output.IsStructured() {
				return output.Structured(days)
			}

			table := NewTable(output, "Weekday", "Trades", "Win Rate", "Net P&L").AlignRight(1, 2, 3)
			for _, d := range days {
				table.AddRow(d.Weekday, strconv.Itoa(d.Count), format.FormatPercent(d.WinRate), output.Money(d.TotalPnL))
			}
			table.Render()
			return nil
		},
	}
	addFilterFlags(cmd)
	return cmd
}

func newAccountsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List accounts in the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			s, err := app.store()
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			accounts, err := s.Accounts(ctx)
			if err != nil {
				return err
			}
			if output.IsStructured() {
				return output.Structured(accounts)
			}
			if len(accounts) == 0 {
				output.Dim("No accounts yet.")
				return nil
			}

			table := NewTable(output, "Account", "Trades", "First", "Last", "Net P&L").AlignRight(1, 4)
			for _, a := range accounts {
				table.AddRow(orDash(a.Account), strconv.Itoa(a.Trades), a.FirstDate, a.LastDate, output.Money(a.NetPnL))
			}
			table.Render()
			return nil
		},
	}
}

// bar draws a horizontal bar for v scaled against scale, colored by sign.
func (o *Output) bar(v, scale float64) string {
	if scale <= 0 {
		return ""
	}
	n := int(abs(v) / scale * barWidth)
	if n == 0 && v != 0 {
		n = 1
	}
	return o.pnlColor(v).Sprint(strings.Repeat("█", n))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
