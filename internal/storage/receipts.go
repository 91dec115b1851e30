package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"go.uber.org/zap"
)

// Receipt is a persisted transfer record. Amounts are stored as
// decimal strings since they exceed int64 range at 18 decimals.
type Receipt struct {
	ID        string
	From      string
	To        string
	Requested *big.Int
	Tax       *big.Int
	Net       *big.Int
	Direction string
	CreatedAt time.Time
}

// ReceiptStore persists transfer receipts to SQLite.
type ReceiptStore struct {
	logger *zap.Logger
	db     *sql.DB
}

const receiptSchema = `
CREATE TABLE IF NOT EXISTS receipts (
	id         TEXT PRIMARY KEY,
	from_addr  TEXT NOT NULL,
	to_addr    TEXT NOT NULL,
	requested  TEXT NOT NULL,
	tax        TEXT NOT NULL,
	net        TEXT NOT NULL,
	direction  TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_receipts_from ON receipts(from_addr);
CREATE INDEX IF NOT EXISTS idx_receipts_to ON receipts(to_addr);
`

// NewReceiptStore opens (and if needed initializes) the store at path.
// Use ":memory:" for an ephemeral store.
func NewReceiptStore(logger *zap.Logger, path string) (*ReceiptStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open receipt store: %w", err)
	}

	// An in-memory database exists per connection; keep the pool at
	// one so every query sees the same database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(receiptSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize receipt schema: %w", err)
	}

	return &ReceiptStore{logger: logger, db: db}, nil
}

// Close closes the underlying database.
func (s *ReceiptStore) Close() error {
	return s.db.Close()
}

// Save persists a receipt and returns its assigned ID.
func (s *ReceiptStore) Save(ctx context.Context, r *Receipt) (string, error) {
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO receipts (id, from_addr, to_addr, requested, tax, net, direction, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, r.From, r.To, r.Requested.String(), r.Tax.String(), r.Net.String(), r.Direction, r.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to save receipt: %w", err)
	}

	return id, nil
}

// ByAddress returns the most recent receipts where addr is either
// party, newest first.
func (s *ReceiptStore) ByAddress(ctx context.Context, addr string, limit int) ([]*Receipt, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, from_addr, to_addr, requested, tax, net, direction, created_at
		 FROM receipts
		 WHERE from_addr = ? OR to_addr = ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		addr, addr, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	var receipts []*Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, r)
	}

	return receipts, rows.Err()
}

// Count returns the total number of stored receipts.
func (s *ReceiptStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM receipts`).Scan(&n)
	return n, err
}

func scanReceipt(rows *sql.Rows) (*Receipt, error) {
	var (
		r                    Receipt
		requested, tax, net  string
	)
	if err := rows.Scan(&r.ID, &r.From, &r.To, &requested, &tax, &net, &r.Direction, &r.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan receipt: %w", err)
	}

	var ok bool
	if r.Requested, ok = new(big.Int).SetString(requested, 10); !ok {
		return nil, fmt.Errorf("corrupt requested amount: %q", requested)
	}
	if r.Tax, ok = new(big.Int).SetString(tax, 10); !ok {
		return nil, fmt.Errorf("corrupt tax amount: %q", tax)
	}
	if r.Net, ok = new(big.Int).SetString(net, 10); !ok {
		return nil, fmt.Errorf("corrupt net amount: %q", net)
	}

	return &r, nil
}
