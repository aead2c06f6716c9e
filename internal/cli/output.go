// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"trade-journal/internal/format"
)

// Output modes
const (
	ModeText = "text"
	ModeJSON = "json"
	ModeYAML = "yaml"
)

// Output handles formatted output for the CLI.
type Output struct {
	writer       io.Writer
	mode         string
	colorEnabled bool
	currency     format.Currency

	green, red, yellow, cyan, bold, dim *color.Color
}

// NewOutput creates a new Output instance for cmd.
func NewOutput(cmd *cobra.Command, app *App) *Output {
	jsonMode, _ := cmd.Flags().GetBool("json")
	yamlMode, _ := cmd.Flags().GetBool("yaml")
	noColor, _ := cmd.Flags().GetBool("no-color")

	mode := ModeText
	switch {
	case jsonMode:
		mode = ModeJSON
	case yamlMode:
		mode = ModeYAML
	}

	colorEnabled := mode == ModeText && !noColor && isTerminal(cmd.OutOrStdout())
	currency := format.DefaultCurrency()
	if app != nil && app.Config != nil {
		colorEnabled = colorEnabled && app.Config.Display.ColorEnabled
		currency = currencyFromConfig(app.Config)
	}

	return newOutput(cmd.OutOrStdout(), mode, colorEnabled, currency)
}

func newOutput(w io.Writer, mode string, colorEnabled bool, currency format.Currency) *Output {
	o := &Output{
		writer:       w,
		mode:         mode,
		colorEnabled: colorEnabled,
		currency:     currency,
		green:        color.New(color.FgGreen),
		red:          color.New(color.FgRed),
		yellow:       color.New(color.FgYellow),
		cyan:         color.New(color.FgCyan),
		bold:         color.New(color.Bold),
		dim:          color.New(color.Faint),
	}
	for _, c := range []*color.Color{o.green, o.red, o.yellow, o.cyan, o.bold, o.dim} {
		if colorEnabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return o
}

// isTerminal checks if w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// IsStructured reports whether output is JSON or YAML.
func (o *Output) IsStructured() bool {
	return o.mode != ModeText
}

// Structured writes data as JSON or YAML according to the output mode.
func (o *Output) Structured(data interface{}) error {
	if o.mode == ModeYAML {
		return o.YAML(data)
	}
	return o.JSON(data)
}

// JSON outputs data as JSON.
func (o *Output) JSON(data interface{}) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// YAML outputs data as YAML.
func (o *Output) YAML(data interface{}) error {
	encoder := yaml.NewEncoder(o.writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// Println prints a message with newline.
func (o *Output) Println(args ...interface{}) {
	fmt.Fprintln(o.writer, args...)
}

// Printf prints a formatted message.
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format, args...)
}

// Success prints a success message in green.
func (o *Output) Success(format string, args ...interface{}) {
	o.green.Fprintf(o.writer, format+"\n", args...)
}

// Error prints an error message in red.
func (o *Output) Error(format string, args ...interface{}) {
	o.red.Fprintf(o.writer, format+"\n", args...)
}

// Warning prints a warning message in yellow.
func (o *Output) Warning(format string, args ...interface{}) {
	o.yellow.Fprintf(o.writer, format+"\n", args...)
}

// Info prints an info message in cyan.
func (o *Output) Info(format string, args ...interface{}) {
	o.cyan.Fprintf(o.writer, format+"\n", args...)
}

// Bold prints a bold message.
func (o *Output) Bold(format string, args ...interface{}) {
	o.bold.Fprintf(o.writer, format+"\n", args...)
}

// Dim prints a dimmed message.
func (o *Output) Dim(format string, args ...interface{}) {
	o.dim.Fprintf(o.writer, format+"\n", args...)
}

// Green returns green colored text.
func (o *Output) Green(text string) string {
	return o.green.Sprint(text)
}

// Red returns red colored text.
func (o *Output) Red(text string) string {
	return o.red.Sprint(text)
}

// DimText returns dimmed text.
func (o *Output) DimText(text string) string {
	return o.dim.Sprint(text)
}

// pnlColor colors an amount by its sign.
func (o *Output) pnlColor(v float64) *color.Color {
	switch {
	case v > 0:
		return o.green
	case v < 0:
		return o.red
	default:
		return o.dim
	}
}

// Money formats an amount with an explicit sign, colored by sign.
func (o *Output) Money(v float64) string {
	return o.pnlColor(v).Sprint(format.FormatSignedCurrency(v, o.currency))
}

// Amount formats an unsigned-style amount without color.
func (o *Output) Amount(v float64) string {
	return format.FormatCurrency(v, o.currency)
}

// Compact formats a large amount in L/Cr or K/M/B units.
func (o *Output) Compact(v float64) string {
	return format.FormatCompact(v, o.currency)
}

// Percent formats a percentage value colored by sign.
func (o *Output) Percent(v float64) string {
	return o.pnlColor(v).Sprint(format.FormatSignedPercent(v))
}

// KeyValue prints an indented, aligned label/value line.
func (o *Output) KeyValue(label, value string) {
	fmt.Fprintf(o.writer, "  %s %s\n", format.PadRight(label+":", 22), value)
}

// Table represents a simple table for output.
type Table struct {
	headers []string
	right   map[int]bool
	rows    [][]string
	output  *Output
}

// NewTable creates a new table.
func NewTable(output *Output, headers ...string) *Table {
	return &Table{
		headers: headers,
		right:   map[int]bool{},
		output:  output,
	}
}

// AlignRight right-aligns the given columns.
func (t *Table) AlignRight(cols ...int) *Table {
	for _, c := range cols {
		t.right[c] = true
	}
	return t
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render renders the table.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visibleLen(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && visibleLen(cell) > widths[i] {
				widths[i] = visibleLen(cell)
			}
		}
	}

	t.printRow(t.headers, widths, true)
	t.printSeparator(widths)
	for _, row := range t.rows {
		t.printRow(row, widths, false)
	}
}

func (t *Table) printRow(cells []string, widths []int, isHeader bool) {
	parts := make([]string, 0, len(cells))
	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		padding := strings.Repeat(" ", max(widths[i]-visibleLen(cell), 0))
		padded := cell + padding
		if t.right[i] {
			padded = padding + cell
		}
		if isHeader {
			padded = t.output.bold.Sprint(padded)
		}
		parts = append(parts, padded)
	}
	t.output.Println(strings.TrimRight(strings.Join(parts, "  "), " "))
}

func (t *Table) printSeparator(widths []int) {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w)
	}
	t.output.Println(t.output.dim.Sprint(strings.Join(parts, "──")))
}

// visibleLen is the rune width of s without ANSI escape sequences.
func visibleLen(s string) int {
	n := 0
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		default:
			n++
		}
	}
	return n
}
