// Package storage keeps journal sheets in a SQLite database. Each sheet
// is one row holding its records as a JSON grid.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	ports "tradejournal/internal/sheets"
)

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ ports.Backend     = (*SQLiteRepository)(nil)
	_ ports.SheetLister = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database answers.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) ReadSheet(ctx context.Context, name string) ([][]string, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT records FROM sheets WHERE name = ?`, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		var n int
		if cerr := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sheets`).Scan(&n); cerr == nil && n == 0 {
			return nil, ports.ErrStoreNotFound
		}
		return nil, ports.ErrSheetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select sheet %s: %w", name, err)
	}
	var records [][]string
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("decode sheet %s: %w", name, err)
	}
	return records, nil
}

func (r *SQLiteRepository) WriteSheet(ctx context.Context, name string, records [][]string) error {
	if records == nil {
		records = [][]string{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode sheet %s: %w", name, err)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sheets (name, position, records, updated_at)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM sheets), ?, ?)
		ON CONFLICT(name) DO UPDATE SET records = excluded.records, updated_at = excluded.updated_at`,
		name, string(raw), r.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert sheet %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sheet %s: %w", name, err)
	}
	slog.DebugContext(ctx, "Sheet saved to SQLite", "sheet", name, "rows", len(records))
	return nil
}

func (r *SQLiteRepository) ListSheets(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM sheets ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// UpdatedAt returns when a sheet was last written.
func (r *SQLiteRepository) UpdatedAt(ctx context.Context, name string) (time.Time, error) {
	var ts string
	err := r.db.QueryRowContext(ctx, `SELECT updated_at FROM sheets WHERE name = ?`, name).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ports.ErrSheetNotFound
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, ts)
}
