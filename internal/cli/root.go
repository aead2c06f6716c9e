package cli

import (
	"context"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trade-journal/internal/analytics"
	"trade-journal/internal/config"
	"trade-journal/internal/errors"
	"trade-journal/internal/format"
	"trade-journal/internal/logging"
	"trade-journal/internal/store"
)

// Version information
const (
	Version   = "0.3.0"
	BuildDate = "2024-06-01"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.TradeStore
	Now    func() time.Time

	// OpenStore opens the trade store on first use.
	OpenStore func(cfg *config.Config, logger zerolog.Logger) (store.TradeStore, error)
}

func defaultOpenStore(cfg *config.Config, logger zerolog.Logger) (store.TradeStore, error) {
	return store.NewSQLiteStore(cfg.Store.Path,
		store.WithLogger(logger),
		store.WithBatchSize(cfg.Import.BatchSize),
	)
}

// store returns the trade store, opening it if necessary.
func (a *App) store() (store.TradeStore, error) {
	if a.Store != nil {
		return a.Store, nil
	}
	open := a.OpenStore
	if open == nil {
		open = defaultOpenStore
	}
	s, err := open(a.Config, a.Logger)
	if err != nil {
		return nil, err
	}
	a.Store = s
	a.Logger.Debug().Str("path", a.Config.Store.Path).Msg("Trade store opened")
	return s, nil
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// close releases the store.
func (a *App) close() error {
	if a.Store == nil {
		return nil
	}
	err := a.Store.Close()
	a.Store = nil
	return err
}

// Execute runs the CLI with os.Args and releases the store afterwards,
// including when the command failed.
func Execute(ctx context.Context) error {
	app := &App{}
	err := NewRootCmd(app).ExecuteContext(ctx)
	if cerr := app.close(); err == nil {
		err = cerr
	}
	return err
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "journal",
		Short: "Trading journal and performance analytics",
		Long: `journal imports broker P&L statements into a local SQLite journal and
reports trading performance: win rate, profit factor, Sharpe/Sortino/Calmar,
drawdowns, streaks, equity curve, monthly and calendar breakdowns.

Use 'journal import <file.csv>' to load a Zerodha Console P&L export.
Use 'journal report' for the full performance summary.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/trade-journal)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("yaml", false, "output in YAML format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	addCoreCommands(rootCmd, app)
	addImportCommands(rootCmd, app)
	addReportCommands(rootCmd, app)

	return rootCmd
}

// init loads configuration and builds the logger.
func (a *App) init(cmd *cobra.Command) error {
	if a.Config == nil {
		dir, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(dir)
		if err != nil {
			return err
		}
		a.Config = cfg
	}

	debug, _ := cmd.Flags().GetBool("debug")
	noColor, _ := cmd.Flags().GetBool("no-color")

	logCfg := logging.LogConfig{
		Level:      a.Config.Logging.Level,
		Console:    true,
		Output:     cmd.ErrOrStderr(),
		NoColor:    noColor || !a.Config.Display.ColorEnabled,
		File:       a.Config.Logging.File,
		FilePath:   filepath.Join(a.Config.LogDir(), "journal.log"),
		MaxSize:    a.Config.Logging.MaxSizeMB,
		MaxBackups: a.Config.Logging.MaxBackups,
		MaxAge:     a.Config.Logging.MaxAgeDays,
	}
	if debug {
		logCfg.Level = "debug"
	}
	a.Logger = logging.NewLoggerWithConfig(logCfg).With().Str("command", cmd.Name()).Logger()
	a.Logger.Debug().Str("config_dir", a.Config.Dir).Msg("Configuration loaded")
	return nil
}

// metricOptions maps the analytics section onto calculator options.
func metricOptions(cfg *config.Config) analytics.Options {
	return analytics.Options{
		AnnualizationFactor: cfg.Analytics.AnnualizationFactor,
		RiskFreeRate:        cfg.Analytics.RiskFreeRate,
		OmegaThreshold:      cfg.Analytics.OmegaThreshold,
		InitialCapital:      cfg.Analytics.InitialCapital,
		KellyClamp:          cfg.Analytics.KellyClamp,
	}
}

func reportOptions(cfg *config.Config) analytics.ReportOptions {
	return analytics.ReportOptions{
		Metrics:    metricOptions(cfg),
		TopSymbols: cfg.Analytics.TopSymbols,
		TopTrades:  cfg.Analytics.TopTrades,
	}
}

func currencyFromConfig(cfg *config.Config) format.Currency {
	return format.Currency{
		Symbol:   cfg.Display.CurrencySymbol,
		Locale:   cfg.Display.Locale,
		Decimals: cfg.Display.Decimals,
	}
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, 2*time.Minute)
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd(app))
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			if output.IsStructured() {
				return output.Structured(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("trade-journal v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			if output.IsStructured() {
				return output.Structured(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			path := config.FilePath(app.Config.Dir)
			if output.IsStructured() {
				return output.Structured(map[string]string{"path": path, "database": app.Config.Store.Path})
			}
			output.Println(path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsStructured() {
				return output.Structured(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Analytics")
	output.KeyValue("Annualization", format.FormatRatio(cfg.Analytics.AnnualizationFactor))
	output.KeyValue("Risk-free rate", format.FormatPercent(cfg.Analytics.RiskFreeRate*100))
	output.KeyValue("Omega threshold", output.Amount(cfg.Analytics.OmegaThreshold))
	output.KeyValue("Initial capital", output.Amount(cfg.Analytics.InitialCapital))
	output.KeyValue("Kelly clamp", format.FormatPercent(cfg.Analytics.KellyClamp))
	output.Println()

	output.Bold("Import")
	output.KeyValue("Format", cfg.Import.Format)
	output.KeyValue("Skip zero P&L", boolText(cfg.Import.SkipZeroPnL))
	output.KeyValue("Default account", orDash(cfg.Import.DefaultAccount))
	output.Println()

	output.Bold("Display")
	output.KeyValue("Currency", cfg.Display.CurrencySymbol+" ("+cfg.Display.Locale+")")
	output.KeyValue("Calendar days", strconv.Itoa(cfg.Display.CalendarDays))
	output.Println()

	output.Bold("Storage")
	output.KeyValue("Database", cfg.Store.Path)
	output.KeyValue("Log level", cfg.Logging.Level)
}

func boolText(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// requireTrades returns ErrNoTrades when the filter matched nothing.
func requireTrades(n int) error {
	if n == 0 {
		return errors.Wrapf(errors.ErrNoTrades, "no trades match the filter; import a statement with 'journal import'")
	}
	return nil
}
