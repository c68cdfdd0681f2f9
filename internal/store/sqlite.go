package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	apperrors "tradeverse/internal/errors"
	"tradeverse/internal/models"
)

// SQLiteStore implements TradeStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based trade store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the trades table and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		direction TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL,
		quantity REAL NOT NULL,
		entry_time DATETIME NOT NULL,
		exit_time DATETIME,
		fees REAL NOT NULL DEFAULT 0,
		strategy TEXT,
		tags TEXT,
		notes TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
	CREATE INDEX IF NOT EXISTS idx_trades_entry_time ON trades(entry_time);
	CREATE INDEX IF NOT EXISTS idx_trades_exit_time ON trades(exit_time);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveTrade validates and persists a trade. A missing ID is assigned a ULID,
// which keeps insertion order sortable.
func (s *SQLiteStore) SaveTrade(ctx context.Context, trade *models.Trade) error {
	if err := trade.Validate(); err != nil {
		return err
	}
	if trade.ID == "" {
		trade.ID = ulid.Make().String()
	}
	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = time.Now().UTC()
	}

	tags, err := json.Marshal(trade.Tags)
	if err != nil {
		return apperrors.NewStoreError("save", trade.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO trades (id, symbol, direction, entry_price, exit_price, quantity, entry_time, exit_time, fees, strategy, tags, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, trade.ID, trade.Symbol, string(trade.Direction), trade.EntryPrice, nullFloat(trade.ExitPrice),
		trade.Quantity, trade.EntryTime, nullTime(trade.ExitTime), trade.Fees,
		trade.Strategy, string(tags), trade.Notes, trade.CreatedAt)
	if err != nil {
		return apperrors.NewStoreError("save", trade.ID, err)
	}
	return nil
}

// GetTrade returns a single trade by ID.
func (s *SQLiteStore) GetTrade(ctx context.Context, id string) (*models.Trade, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, symbol, direction, entry_price, exit_price, quantity, entry_time, exit_time, fees, strategy, tags, notes, created_at
		FROM trades WHERE id = ?
	`, id)

	trade, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrTradeNotFound
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get", id, err)
	}
	return trade, nil
}

// ListTrades returns trades matching the filter, ordered by entry time
// ascending with the ULID breaking ties.
func (s *SQLiteStore) ListTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	query := `SELECT id, symbol, direction, entry_price, exit_price, quantity, entry_time, exit_time, fees, strategy, tags, notes, created_at FROM trades WHERE 1=1`
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.Direction != "" {
		query += " AND direction = ?"
		args = append(args, string(filter.Direction))
	}
	if filter.Strategy != "" {
		query += " AND strategy = ?"
		args = append(args, filter.Strategy)
	}
	if !filter.From.IsZero() {
		query += " AND entry_time >= ?"
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		query += " AND entry_time <= ?"
		args = append(args, filter.To)
	}
	if filter.OnlyOpen {
		query += " AND exit_time IS NULL"
	}
	if filter.OnlyClosed {
		query += " AND exit_time IS NOT NULL"
	}
	query += " ORDER BY entry_time ASC, id ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("list", "", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("list", "", err)
		}
		trades = append(trades, *trade)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("list", "", err)
	}

	return trades, nil
}

// UpdateTrade validates and replaces an existing trade.
func (s *SQLiteStore) UpdateTrade(ctx context.Context, trade *models.Trade) error {
	if err := trade.Validate(); err != nil {
		return err
	}

	tags, err := json.Marshal(trade.Tags)
	if err != nil {
		return apperrors.NewStoreError("update", trade.ID, err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE trades
		SET symbol = ?, direction = ?, entry_price = ?, exit_price = ?, quantity = ?,
		    entry_time = ?, exit_time = ?, fees = ?, strategy = ?, tags = ?, notes = ?
		WHERE id = ?
	`, trade.Symbol, string(trade.Direction), trade.EntryPrice, nullFloat(trade.ExitPrice),
		trade.Quantity, trade.EntryTime, nullTime(trade.ExitTime), trade.Fees,
		trade.Strategy, string(tags), trade.Notes, trade.ID)
	if err != nil {
		return apperrors.NewStoreError("update", trade.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewStoreError("update", trade.ID, err)
	}
	if affected == 0 {
		return apperrors.ErrTradeNotFound
	}
	return nil
}

// DeleteTrade removes a trade by ID.
func (s *SQLiteStore) DeleteTrade(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, id)
	if err != nil {
		return apperrors.NewStoreError("delete", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewStoreError("delete", id, err)
	}
	if affected == 0 {
		return apperrors.ErrTradeNotFound
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanTrade.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row scanner) (*models.Trade, error) {
	var (
		trade     models.Trade
		direction string
		exitPrice sql.NullFloat64
		exitTime  sql.NullTime
		tags      sql.NullString
	)

	err := row.Scan(&trade.ID, &trade.Symbol, &direction, &trade.EntryPrice, &exitPrice,
		&trade.Quantity, &trade.EntryTime, &exitTime, &trade.Fees,
		&trade.Strategy, &tags, &trade.Notes, &trade.CreatedAt)
	if err != nil {
		return nil, err
	}

	trade.Direction = models.Direction(direction)
	if exitPrice.Valid {
		p := exitPrice.Float64
		trade.ExitPrice = &p
	}
	if exitTime.Valid {
		t := exitTime.Time
		trade.ExitTime = &t
	}
	if tags.Valid && tags.String != "" && tags.String != "null" {
		if err := json.Unmarshal([]byte(tags.String), &trade.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	}

	return &trade, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}
