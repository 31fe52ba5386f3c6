package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"signal-relay/internal/domain"
)

// SQLiteStore caches exchange lot-size metadata between refreshes. It holds
// no trade state; rows are overwritten wholesale on each refresh.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `CREATE TABLE IF NOT EXISTS instruments (
		symbol TEXT PRIMARY KEY,
		base_coin TEXT NOT NULL,
		quote_coin TEXT NOT NULL,
		qty_step REAL NOT NULL,
		min_qty REAL NOT NULL,
		updated_at DATETIME NOT NULL
	);`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to exec query %s: %w", query, err)
	}
	return nil
}

// InstrumentRepository Implementation

func (s *SQLiteStore) SaveInstrument(ctx context.Context, inst *domain.Instrument) error {
	query := `INSERT INTO instruments (symbol, base_coin, quote_coin, qty_step, min_qty, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?)
			  ON CONFLICT(symbol) DO UPDATE SET
				base_coin = excluded.base_coin,
				quote_coin = excluded.quote_coin,
				qty_step = excluded.qty_step,
				min_qty = excluded.min_qty,
				updated_at = excluded.updated_at`
	_, err := s.db.ExecContext(ctx, query,
		inst.Symbol, inst.BaseCoin, inst.QuoteCoin, inst.QtyStep, inst.MinQty, inst.UpdatedAt)
	return err
}

func (s *SQLiteStore) GetInstrument(ctx context.Context, symbol string) (*domain.Instrument, error) {
	query := `SELECT symbol, base_coin, quote_coin, qty_step, min_qty, updated_at FROM instruments WHERE symbol = ?`
	row := s.db.QueryRowContext(ctx, query, symbol)

	var inst domain.Instrument
	err := row.Scan(&inst.Symbol, &inst.BaseCoin, &inst.QuoteCoin, &inst.QtyStep, &inst.MinQty, &inst.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

func (s *SQLiteStore) ListInstruments(ctx context.Context) ([]*domain.Instrument, error) {
	query := `SELECT symbol, base_coin, quote_coin, qty_step, min_qty, updated_at FROM instruments`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var instruments []*domain.Instrument
	for rows.Next() {
		var inst domain.Instrument
		if err := rows.Scan(&inst.Symbol, &inst.BaseCoin, &inst.QuoteCoin, &inst.QtyStep, &inst.MinQty, &inst.UpdatedAt); err != nil {
			return nil, err
		}
		instruments = append(instruments, &inst)
	}
	return instruments, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
