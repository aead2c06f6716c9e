package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trade-journal/internal/errors"
	"trade-journal/internal/format"
	"trade-journal/internal/importer"
	"trade-journal/internal/logging"
	"trade-journal/internal/models"
	"trade-journal/internal/normalize"
	"trade-journal/internal/store"
)

// maxIssuesShown bounds the issue table printed after an import.
const maxIssuesShown = 20

// importSummary is the structured result of an import.
type importSummary struct {
	Batch  *models.ImportBatch `json:"batch,omitempty" yaml:"batch,omitempty"`
	DryRun bool                `json:"dry_run" yaml:"dry_run"`
	Rows   int                 `json:"rows" yaml:"rows"`
	Trades int                 `json:"trades" yaml:"trades"`
	Skip   int                 `json:"skipped" yaml:"skipped"`
	Issues []string            `json:"issues" yaml:"issues"`
	NetPnL float64             `json:"net_pnl" yaml:"net_pnl"`
}

// addImportCommands adds statement import and batch management commands.
func addImportCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newImportCmd(app))
	rootCmd.AddCommand(newImportsCmd(app))
	rootCmd.AddCommand(newExportCmd(app))
}

func newImportCmd(app *App) *cobra.Command {
	var (
		formatName string
		account    string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "import <statement.csv>",
		Short: "Import a P&L statement",
		Long: `Import a broker P&L statement into the journal.

Rows with unparsable fields are kept with the field zeroed and reported as
issues. Rows whose gross P&L is exactly zero are skipped when
import.skip_zero_pnl is set. Re-importing the same trades is detected and
counted as duplicates.`,
		Example: `  journal import ~/Downloads/pnl-AB1234.csv
  journal import trades.csv --format generic --account swing
  journal import pnl.csv --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			path := args[0]
			logger := logging.WithOperation(app.Logger, "import")

			if formatName == "" {
				formatName = app.Config.Import.Format
			}
			statementFormat, err := importer.ParseFormat(formatName)
			if err != nil {
				return err
			}

			start := time.Now()
			statement, err := importer.ReadFile(path, statementFormat)
			if err != nil {
				return err
			}
			if len(statement.Rows) == 0 {
				return errors.NewDataError("statement", path, "no trade rows found", errors.ErrNoTrades)
			}

			if account == "" {
				account = statement.Account
			}
			if account == "" {
				account = app.Config.Import.DefaultAccount
			}

			results := normalize.Normalize(statement.Rows, normalize.Options{
				SkipZeroGross: app.Config.Import.SkipZeroPnL,
				Account:       account,
				Now:           app.now,
			})
			trades := normalize.Trades(results)
			if cmd.Flags().Changed("account") {
				for i := range trades {
					trades[i].Account = account
				}
			}
			issues := normalize.Issues(results)

			summary := importSummary{
				DryRun: dryRun,
				Rows:   len(results),
				Trades: len(trades),
				Skip:   len(results) - len(trades),
				Issues: make([]string, len(issues)),
			}
			for i, issue := range issues {
				summary.Issues[i] = issue.Error()
			}
			for _, t := range trades {
				summary.NetPnL += t.NetPnL
			}

			if !dryRun {
				s, err := app.store()
				if err != nil {
					return err
				}
				ctx, cancel := commandContext(cmd)
				defer cancel()

				batch, err := s.SaveImport(ctx, store.ImportMeta{
					Source:  filepath.Base(path),
					Account: account,
					Skipped: summary.Skip,
				}, trades)
				if err != nil {
					return errors.Wrap(err, "saving import")
				}
				summary.Batch = batch
				logging.LogImport(logger, batch.ID, batch.Source, batch.TradeCount, batch.Skipped, len(issues))
			}
			logger.Debug().Dur("elapsed", time.Since(start)).Msg("Import finished")

			if output.IsStructured() {
				return output.Structured(summary)
			}
			printImportSummary(output, summary, issues)
			return nil
		},
	}

	cmd.Flags().StringVar(&formatName, "format", "", "statement format: zerodha, generic (default from config)")
	cmd.Flags().StringVar(&account, "account", "", "account to file the trades under")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and validate without saving")

	return cmd
}

func printImportSummary(output *Output, summary importSummary, issues []*errors.ParseError) {
	if summary.DryRun {
		output.Info("Dry run: nothing was saved")
	} else if summary.Batch != nil {
		output.Success("✓ Imported %d trades (batch %s)", summary.Batch.TradeCount, shortID(summary.Batch.ID))
		if summary.Batch.Duplicates > 0 {
			output.Warning("%d trades were already in the journal and were not imported again", summary.Batch.Duplicates)
		}
	}

	output.KeyValue("Rows read", strconv.Itoa(summary.Rows))
	output.KeyValue("Trades", strconv.Itoa(summary.Trades))
	output.KeyValue("Skipped (zero P&L)", strconv.Itoa(summary.Skip))
	output.KeyValue("Net P&L", output.Money(summary.NetPnL))

	if len(issues) == 0 {
		return
	}

	output.Println()
	output.Warning("%d data issues (fields defaulted to zero):", len(issues))
	table := NewTable(output, "Row", "Field", "Value", "Problem").AlignRight(0)
	for i, issue := range issues {
		if i == maxIssuesShown {
			break
		}
		value := ""
		if issue.Value != nil {
			value = format.TruncateString(fmt.Sprint(issue.Value), 24)
		}
		table.AddRow(strconv.Itoa(issue.Row), issue.Field, value, issue.Err.Error())
	}
	table.Render()
	if len(issues) > maxIssuesShown {
		output.Dim("... and %d more", len(issues)-maxIssuesShown)
	}
}

func newImportsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imports",
		Short: "List imported statements",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			s, err := app.store()
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			batches, err := s.ListImports(ctx)
			if err != nil {
				return err
			}
			if output.IsStructured() {
				return output.Structured(batches)
			}
			if len(batches) == 0 {
				output.Dim("No imports yet. Use 'journal import <file.csv>' to add one.")
				return nil
			}

			table := NewTable(output, "ID", "Imported", "Account", "Source", "Trades", "Skipped", "Dupes").AlignRight(4, 5, 6)
			for _, b := range batches {
				table.AddRow(
					shortID(b.ID),
					b.ImportedAt,
					orDash(b.Account),
					b.Source,
					strconv.Itoa(b.TradeCount),
					strconv.Itoa(b.Skipped),
					strconv.Itoa(b.Duplicates),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an import and its trades",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			s, err := app.store()
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			id, err := resolveImportID(ctx, s, args[0])
			if err != nil {
				return err
			}
			if err := s.DeleteImport(ctx, id); err != nil {
				return err
			}
			app.Logger.Info().Str("batch_id", id).Msg("Import deleted")

			if output.IsStructured() {
				return output.Structured(map[string]string{"deleted": id})
			}
			output.Success("✓ Deleted import %s", shortID(id))
			return nil
		},
	})

	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file.csv>",
		Short: "Export trades as CSV",
		Long:  "Write the selected trades in the generic CSV layout, which 'journal import --format generic' reads back.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			trades, _, err := app.loadTrades(cmd)
			if err != nil {
				return err
			}
			if err := requireTrades(len(trades)); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if args[0] != "-" {
				f, err := os.Create(args[0])
				if err != nil {
					return errors.NewDataError("export", args[0], "create failed", err)
				}
				defer f.Close()
				w = f
			}
			if err := importer.WriteCSV(w, trades); err != nil {
				return errors.NewDataError("export", args[0], "write failed", err)
			}

			if args[0] != "-" {
				output.Success("✓ Exported %d trades to %s", len(trades), args[0])
			}
			return nil
		},
	}
	addFilterFlags(cmd)
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveImportID expands a unique id prefix, as printed by 'journal imports'.
func resolveImportID(ctx context.Context, s store.TradeStore, prefix string) (string, error) {
	batches, err := s.ListImports(ctx)
	if err != nil {
		return "", err
	}

	var matches []string
	for _, b := range batches {
		if b.ID == prefix {
			return b.ID, nil
		}
		if strings.HasPrefix(b.ID, prefix) {
			matches = append(matches, b.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", errors.Wrapf(errors.ErrDataNotFound, "import %s", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", errors.NewValidationError("id", prefix, "matches more than one import")
	}
}
