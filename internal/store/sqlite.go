// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"trade-journal/internal/errors"
	"trade-journal/internal/logging"
	"trade-journal/internal/models"
	"trade-journal/internal/performance"
)

// DefaultBatchSize is the number of trades inserted per statement.
const DefaultBatchSize = 100

// SQLiteStore implements TradeStore using SQLite.
type SQLiteStore struct {
	db        *sqlx.DB
	logger    zerolog.Logger
	batchSize int
	retry     retryConfig
	now       func() time.Time
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithLogger sets the logger used for store call tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *SQLiteStore) { s.logger = logger }
}

// WithBatchSize sets how many trades are written per insert.
func WithBatchSize(n int) Option {
	return func(s *SQLiteStore) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithRetry sets how often a write is attempted while the database is locked
// by another process, and the delay before the first retry.
func WithRetry(attempts int, initialDelay time.Duration) Option {
	return func(s *SQLiteStore) {
		if attempts > 0 {
			s.retry.MaxAttempts = attempts
		}
		if initialDelay > 0 {
			s.retry.InitialDelay = initialDelay
		}
	}
}

// WithClock overrides the clock used for import timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) { s.now = now }
}

// NewSQLiteStore opens (creating if needed) the journal database at dbPath.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, fmt.Sprintf("failed to open database: %v", err))
	}

	// Configure connection pool
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{
		db:        db,
		logger:    zerolog.Nop(),
		batchSize: DefaultBatchSize,
		retry:     defaultRetryConfig(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- One row per imported statement
	CREATE TABLE IF NOT EXISTS imports (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		account TEXT NOT NULL DEFAULT '',
		trade_count INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		duplicates INTEGER NOT NULL DEFAULT 0,
		imported_at TEXT NOT NULL
	);

	-- Closed trades; dates are stored as YYYY-MM-DD so they sort as text
	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		import_id TEXT NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
		trade_date TEXT NOT NULL,
		exit_date TEXT NOT NULL DEFAULT '',
		symbol TEXT NOT NULL,
		quantity REAL NOT NULL DEFAULT 0,
		buy_value REAL NOT NULL DEFAULT 0,
		sell_value REAL NOT NULL DEFAULT 0,
		gross_pnl REAL NOT NULL,
		charges REAL NOT NULL DEFAULT 0,
		account TEXT NOT NULL DEFAULT '',
		occurrence INTEGER NOT NULL DEFAULT 0,
		UNIQUE(account, trade_date, exit_date, symbol, quantity, buy_value, sell_value, gross_pnl, charges, occurrence)
	);

	CREATE INDEX IF NOT EXISTS idx_trades_date ON trades(trade_date);
	CREATE INDEX IF NOT EXISTS idx_trades_account ON trades(account, trade_date);
	CREATE INDEX IF NOT EXISTS idx_trades_import ON trades(import_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return errors.Wrap(errors.ErrDatabaseError, err.Error())
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// tradeRecord is the row layout of the trades table. Net P&L is not stored;
// it is derived from gross P&L and charges on read.
type tradeRecord struct {
	ID        int64   `db:"id"`
	ImportID  string  `db:"import_id"`
	TradeDate string  `db:"trade_date"`
	ExitDate  string  `db:"exit_date"`
	Symbol    string  `db:"symbol"`
	Quantity  float64 `db:"quantity"`
	BuyValue  float64 `db:"buy_value"`
	SellValue float64 `db:"sell_value"`
	GrossPnL  float64 `db:"gross_pnl"`
	Charges   float64 `db:"charges"`
	Account   string  `db:"account"`

	// Occurrence numbers identical trades within one statement from 0, so
	// they stay distinct rows while a re-import of the statement collides.
	Occurrence int `db:"occurrence"`
}

// key identifies a trade by content, without its import or occurrence.
func (r tradeRecord) key() string {
	return fmt.Sprintf("%s|%s|%s|%s|%v|%v|%v|%v|%v",
		r.Account, r.TradeDate, r.ExitDate, r.Symbol, r.Quantity, r.BuyValue, r.SellValue, r.GrossPnL, r.Charges)
}

func newTradeRecord(importID string, t models.Trade) tradeRecord {
	rec := tradeRecord{
		ImportID:  importID,
		TradeDate: t.DateKey(),
		Symbol:    t.Symbol,
		Quantity:  t.Quantity,
		BuyValue:  t.BuyValue,
		SellValue: t.SellValue,
		GrossPnL:  t.GrossPnL,
		Charges:   t.Charges,
		Account:   t.Account,
	}
	if t.HasExit() {
		rec.ExitDate = t.ExitDate.Format(models.DateLayout)
	}
	return rec
}

func (r tradeRecord) toTrade() (models.Trade, error) {
	date, err := models.ParseDay(r.TradeDate)
	if err != nil {
		return models.Trade{}, errors.NewDataError("trade", fmt.Sprintf("row %d", r.ID), "bad trade_date", err)
	}
	t := models.NewTrade(date, r.Symbol, r.Quantity, r.BuyValue, r.SellValue, r.GrossPnL, r.Charges)
	t.Account = r.Account
	if r.ExitDate != "" {
		exit, err := models.ParseDay(r.ExitDate)
		if err != nil {
			return models.Trade{}, errors.NewDataError("trade", fmt.Sprintf("row %d", r.ID), "bad exit_date", err)
		}
		t.ExitDate = exit
	}
	return t, nil
}

type importRecord struct {
	ID         string `db:"id"`
	Source     string `db:"source"`
	Account    string `db:"account"`
	TradeCount int    `db:"trade_count"`
	Skipped    int    `db:"skipped"`
	Duplicates int    `db:"duplicates"`
	ImportedAt string `db:"imported_at"`
}

func (r importRecord) toBatch() models.ImportBatch {
	return models.ImportBatch(r)
}

const insertTrade = `
	INSERT OR IGNORE INTO trades
		(import_id, trade_date, exit_date, symbol, quantity, buy_value, sell_value, gross_pnl, charges, account, occurrence)
	VALUES
		(:import_id, :trade_date, :exit_date, :symbol, :quantity, :buy_value, :sell_value, :gross_pnl, :charges, :account, :occurrence)`

// SaveImport stores trades under a new import batch in one transaction.
// Identical trades within trades are all kept. A trade is a duplicate only
// when an earlier import already holds the same trade at the same occurrence,
// as happens when a statement or an overlapping period is imported again.
func (s *SQLiteStore) SaveImport(ctx context.Context, meta ImportMeta, trades []models.Trade) (batch *models.ImportBatch, err error) {
	start := time.Now()
	defer func() { logging.LogStoreCall(s.logger, "save_import", len(trades), time.Since(start), err) }()

	err = retry(ctx, s.retry, isBusy, func() error {
		var txErr error
		batch, txErr = s.saveImport(ctx, meta, trades)
		return txErr
	})
	return batch, err
}

func (s *SQLiteStore) saveImport(ctx context.Context, meta ImportMeta, trades []models.Trade) (batch *models.ImportBatch, err error) {
	rec := importRecord{
		ID:         uuid.NewString(),
		Source:     meta.Source,
		Account:    meta.Account,
		Skipped:    meta.Skipped,
		ImportedAt: s.now().UTC().Format(time.RFC3339),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, err.Error())
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.NamedExecContext(ctx, `
		INSERT INTO imports (id, source, account, trade_count, skipped, duplicates, imported_at)
		VALUES (:id, :source, :account, 0, :skipped, 0, :imported_at)`, rec); err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, fmt.Sprintf("insert import: %v", err))
	}

	inserted := 0
	batcher := performance.NewBatchProcessor(s.batchSize, func(items []tradeRecord) error {
		res, err := tx.NamedExecContext(ctx, insertTrade, items)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		inserted += int(n)
		return nil
	})
	seen := make(map[string]int, len(trades))
	for _, t := range trades {
		tr := newTradeRecord(rec.ID, t)
		k := tr.key()
		tr.Occurrence = seen[k]
		seen[k]++
		if err = batcher.Add(tr); err != nil {
			return nil, errors.Wrap(errors.ErrDatabaseError, fmt.Sprintf("insert trades: %v", err))
		}
	}
	if err = batcher.Flush(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, fmt.Sprintf("insert trades: %v", err))
	}

	rec.TradeCount = inserted
	rec.Duplicates = batcher.Processed() - inserted
	if _, err = tx.ExecContext(ctx, `UPDATE imports SET trade_count = ?, duplicates = ? WHERE id = ?`,
		rec.TradeCount, rec.Duplicates, rec.ID); err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, fmt.Sprintf("update import: %v", err))
	}

	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, fmt.Sprintf("commit: %v", err))
	}

	b := rec.toBatch()
	return &b, nil
}

// GetTrades returns trades matching filter in ascending date order.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) (trades []models.Trade, err error) {
	start := time.Now()
	defer func() { logging.LogStoreCall(s.logger, "get_trades", len(trades), time.Since(start), err) }()

	var where []string
	var args []interface{}

	if filter.Account != "" {
		where = append(where, "account = ?")
		args = append(args, filter.Account)
	}
	if filter.Symbol != "" {
		where = append(where, "symbol = ?")
		args = append(args, strings.ToUpper(filter.Symbol))
	}
	if filter.ImportID != "" {
		where = append(where, "import_id = ?")
		args = append(args, filter.ImportID)
	}
	if !filter.From.IsZero() {
		where = append(where, "trade_date >= ?")
		args = append(args, filter.From.Format(models.DateLayout))
	}
	if !filter.To.IsZero() {
		where = append(where, "trade_date <= ?")
		args = append(args, filter.To.Format(models.DateLayout))
	}

	query := "SELECT id, import_id, trade_date, exit_date, symbol, quantity, buy_value, sell_value, gross_pnl, charges, account FROM trades"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY trade_date ASC, id ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	var records []tradeRecord
	if err = s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, fmt.Sprintf("failed to query trades: %v", err))
	}

	trades = make([]models.Trade, 0, len(records))
	for _, r := range records {
		t, err := r.toTrade()
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, nil
}

// ListImports returns all import batches, newest first.
func (s *SQLiteStore) ListImports(ctx context.Context) ([]models.ImportBatch, error) {
	var records []importRecord
	if err := s.db.SelectContext(ctx, &records,
		`SELECT id, source, account, trade_count, skipped, duplicates, imported_at FROM imports ORDER BY imported_at DESC, id`); err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, fmt.Sprintf("failed to query imports: %v", err))
	}

	batches := make([]models.ImportBatch, len(records))
	for i, r := range records {
		batches[i] = r.toBatch()
	}
	return batches, nil
}

// DeleteImport removes an import batch and its trades.
func (s *SQLiteStore) DeleteImport(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { logging.LogStoreCall(s.logger, "delete_import", 0, time.Since(start), err) }()

	return retry(ctx, s.retry, isBusy, func() error {
		return s.deleteImport(ctx, id)
	})
}

func (s *SQLiteStore) deleteImport(ctx context.Context, id string) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrDatabaseError, err.Error())
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM trades WHERE import_id = ?`, id); err != nil {
		return errors.Wrap(errors.ErrDatabaseError, fmt.Sprintf("delete trades: %v", err))
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM imports WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(errors.ErrDatabaseError, fmt.Sprintf("delete import: %v", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(errors.ErrDatabaseError, err.Error())
	}
	if n == 0 {
		err = errors.Wrapf(errors.ErrDataNotFound, "import %s", id)
		return err
	}

	return tx.Commit()
}

// Accounts summarizes stored trades per account.
func (s *SQLiteStore) Accounts(ctx context.Context) ([]models.AccountSummary, error) {
	var rows []struct {
		Account   string          `db:"account"`
		Trades    int             `db:"trades"`
		NetPnL    sql.NullFloat64 `db:"net_pnl"`
		FirstDate string          `db:"first_date"`
		LastDate  string          `db:"last_date"`
	}
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT account,
			COUNT(*) AS trades,
			SUM(gross_pnl - charges) AS net_pnl,
			MIN(trade_date) AS first_date,
			MAX(trade_date) AS last_date
		FROM trades
		GROUP BY account
		ORDER BY account`); err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, fmt.Sprintf("failed to query accounts: %v", err))
	}

	out := make([]models.AccountSummary, len(rows))
	for i, r := range rows {
		out[i] = models.AccountSummary{
			Account:   r.Account,
			Trades:    r.Trades,
			NetPnL:    r.NetPnL.Float64,
			FirstDate: r.FirstDate,
			LastDate:  r.LastDate,
		}
	}
	return out, nil
}
