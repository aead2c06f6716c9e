// Package importer reads P&L statements exported by brokers into rows for
// the normalizer, and writes trades back out as CSV.
package importer

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"trade-journal/internal/errors"
	"trade-journal/internal/models"
	"trade-journal/internal/normalize"
)

// Format identifies a statement layout.
type Format string

const (
	// FormatZerodha is a Console P&L export: a preamble of key/value lines
	// (client id, period, summary charges) followed by the trade table.
	FormatZerodha Format = "zerodha"
	// FormatGeneric is a plain CSV whose first line is the header.
	FormatGeneric Format = "generic"
)

// maxPreamble bounds how far the header search looks into a Zerodha export.
const maxPreamble = 50

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatZerodha, FormatGeneric:
		return f, nil
	case "":
		return FormatZerodha, nil
	default:
		return "", errors.Wrapf(errors.ErrUnsupportedFormat, "format %q", s)
	}
}

// columnAliases maps lower-cased header names to row keys.
var columnAliases = map[string]string{
	"symbol":           "symbol",
	"tradingsymbol":    "symbol",
	"scrip":            "symbol",
	"trade date":       "trade_date",
	"trade_date":       "trade_date",
	"date":             "trade_date",
	"entry date":       "trade_date",
	"buy date":         "trade_date",
	"exit date":        "exit_date",
	"exit_date":        "exit_date",
	"sell date":        "exit_date",
	"sell_date":        "exit_date",
	"quantity":         "quantity",
	"qty":              "quantity",
	"buy value":        "buy_value",
	"buy_value":        "buy_value",
	"sell value":       "sell_value",
	"sell_value":       "sell_value",
	"realized p&l":     "gross_pnl",
	"realised p&l":     "gross_pnl",
	"realized_pnl":     "gross_pnl",
	"gross p&l":        "gross_pnl",
	"gross_pnl":        "gross_pnl",
	"p&l":              "gross_pnl",
	"charges":          "charges",
	"total charges":    "charges",
	"net p&l":          "net_pnl",
	"net realized p&l": "net_pnl",
	"net_pnl":          "net_pnl",
	"account":          "account",
	"client id":        "account",
	"client_id":        "account",
}

// statementRow is one trade line after header canonicalization.
type statementRow struct {
	TradeDate string `csv:"trade_date"`
	ExitDate  string `csv:"exit_date"`
	Symbol    string `csv:"symbol"`
	Quantity  string `csv:"quantity"`
	BuyValue  string `csv:"buy_value"`
	SellValue string `csv:"sell_value"`
	GrossPnL  string `csv:"gross_pnl"`
	Charges   string `csv:"charges"`
	NetPnL    string `csv:"net_pnl"`
	Account   string `csv:"account"`
}

func (r *statementRow) toRow(account string) normalize.Row {
	row := normalize.Row{
		"trade_date": r.TradeDate,
		"exit_date":  r.ExitDate,
		"symbol":     r.Symbol,
		"quantity":   r.Quantity,
		"buy_value":  r.BuyValue,
		"sell_value": r.SellValue,
		"gross_pnl":  r.GrossPnL,
		"charges":    r.Charges,
		"net_pnl":    r.NetPnL,
		"account":    r.Account,
	}
	if strings.TrimSpace(r.Account) == "" {
		row["account"] = account
	}
	return row
}

// Statement is a parsed export.
type Statement struct {
	// Account is the client id from the preamble, if any.
	Account string
	// Preamble holds key/value lines found above the header.
	Preamble map[string]string
	Rows     []normalize.Row
}

// ReadFile opens and parses a statement file.
func ReadFile(path string, format Format) (*Statement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDataError("statement", path, "open failed", err)
	}
	defer f.Close()

	st, err := Read(f, format)
	if err != nil {
		return nil, errors.NewDataError("statement", path, "parse failed", err)
	}
	return st, nil
}

// Read parses a statement from r.
func Read(r io.Reader, format Format) (*Statement, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	st := &Statement{Preamble: map[string]string{}}

	header, err := findHeader(reader, format, st)
	if err != nil {
		return nil, err
	}

	var rows []*statementRow
	if err := gocsv.UnmarshalCSV(&headerReader{header: header, rest: reader}, &rows); err != nil {
		return nil, errors.Wrap(err, "decoding trade table")
	}

	st.Rows = make([]normalize.Row, 0, len(rows))
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		st.Rows = append(st.Rows, row.toRow(st.Account))
	}
	return st, nil
}

// findHeader consumes records up to and including the trade table header and
// returns it with canonical column names.
func findHeader(reader *csv.Reader, format Format, st *Statement) ([]string, error) {
	limit := maxPreamble
	if format == FormatGeneric {
		limit = 1
	}

	for i := 0; i < limit; i++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading csv")
		}

		header, ok := canonicalHeader(record)
		if ok {
			return header, nil
		}
		recordPreamble(record, st)
	}
	return nil, errors.Wrapf(errors.ErrUnsupportedFormat, "no header with symbol and P&L columns in the first %d lines", limit)
}

func canonicalHeader(record []string) ([]string, bool) {
	header := make([]string, len(record))
	var hasSymbol, hasPnL bool
	for i, col := range record {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if alias, ok := columnAliases[key]; ok {
			key = alias
		}
		switch key {
		case "symbol":
			hasSymbol = true
		case "gross_pnl", "net_pnl":
			hasPnL = true
		}
		header[i] = key
	}
	return header, hasSymbol && hasPnL
}

func recordPreamble(record []string, st *Statement) {
	var fields []string
	for _, f := range record {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) < 2 {
		return
	}
	key := strings.ToLower(fields[0])
	st.Preamble[key] = fields[1]
	if columnAliases[key] == "account" {
		st.Account = fields[1]
	}
}

func isBlankRow(r *statementRow) bool {
	return strings.TrimSpace(r.Symbol) == "" &&
		strings.TrimSpace(r.GrossPnL) == "" &&
		strings.TrimSpace(r.NetPnL) == ""
}

// headerReader replays a canonical header before the remaining records.
type headerReader struct {
	header []string
	sent   bool
	rest   *csv.Reader
}

func (h *headerReader) Read() ([]string, error) {
	if !h.sent {
		h.sent = true
		return h.header, nil
	}
	return h.rest.Read()
}

func (h *headerReader) ReadAll() ([][]string, error) {
	var out [][]string
	for {
		record, err := h.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
}

// exportRow is the generic CSV layout written by WriteCSV.
type exportRow struct {
	TradeDate string  `csv:"trade_date"`
	ExitDate  string  `csv:"exit_date"`
	Symbol    string  `csv:"symbol"`
	Quantity  float64 `csv:"quantity"`
	BuyValue  float64 `csv:"buy_value"`
	SellValue float64 `csv:"sell_value"`
	GrossPnL  float64 `csv:"gross_pnl"`
	Charges   float64 `csv:"charges"`
	NetPnL    float64 `csv:"net_pnl"`
	Account   string  `csv:"account"`
}

// WriteCSV writes trades in the generic layout, which Read accepts back.
func WriteCSV(w io.Writer, trades []models.Trade) error {
	rows := make([]*exportRow, len(trades))
	for i, t := range trades {
		row := &exportRow{
			TradeDate: t.DateKey(),
			Symbol:    t.Symbol,
			Quantity:  t.Quantity,
			BuyValue:  t.BuyValue,
			SellValue: t.SellValue,
			GrossPnL:  t.GrossPnL,
			Charges:   t.Charges,
			NetPnL:    t.NetPnL,
			Account:   t.Account,
		}
		if t.HasExit() {
			row.ExitDate = t.ExitDate.Format(models.DateLayout)
		}
		rows[i] = row
	}
	return gocsv.Marshal(rows, w)
}
