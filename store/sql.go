package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"github.com/exascience/strataboot"
)

// ErrNotFound is returned by Load for an unknown run identifier.
var ErrNotFound = errors.New("store: run not found")

const (
	sqliteDriver   = "sqlite"
	postgresDriver = "pgx"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// SQLStore saves result tables to a results table, one row per group.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// OpenSQLite opens or creates the SQLite database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	return open(ctx, sqliteDriver, path)
}

// OpenPostgres connects to the Postgres database at dsn.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	return open(ctx, postgresDriver, dsn)
}

func open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	openMu.Lock()
	db, err := sqlOpen(driver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	s := &SQLStore{db: db, driver: driver}
	if err := s.ensureTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an open database. Driver must be "sqlite" or "pgx".
func NewSQLStore(ctx context.Context, db *sql.DB, driver string) (*SQLStore, error) {
	if driver != sqliteDriver && driver != postgresDriver {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	s := &SQLStore{db: db, driver: driver}
	if err := s.ensureTable(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) ensureTable(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS results (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		survey TEXT NOT NULL,
		year INTEGER NOT NULL,
		est DOUBLE PRECISION NOT NULL,
		lwr DOUBLE PRECISION NOT NULL,
		upr DOUBLE PRECISION NOT NULL,
		cv DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, position)
	)`); err != nil {
		return fmt.Errorf("create results table: %w", err)
	}
	return nil
}

// placeholders returns n bind parameters in the syntax of the driver.
func (s *SQLStore) placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		if s.driver == postgresDriver {
			ps[i] = "$" + strconv.Itoa(i+1)
		} else {
			ps[i] = "?"
		}
	}
	return strings.Join(ps, ", ")
}

// Save inserts all rows of table in a single transaction.
func (s *SQLStore) Save(ctx context.Context, runID string, table strataboot.ResultTable) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO results (run_id, position, survey, year, est, lwr, upr, cv) VALUES (`+s.placeholders(8)+`)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for i, r := range table {
		if _, err := stmt.ExecContext(ctx, runID, i, r.Survey, r.Year, r.Est, r.Lwr, r.Upr, r.CV); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load returns the rows saved under runID in their original order.
func (s *SQLStore) Load(ctx context.Context, runID string) (strataboot.ResultTable, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT survey, year, est, lwr, upr, cv FROM results WHERE run_id = `+s.placeholders(1)+` ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("select results: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var table strataboot.ResultTable
	for rows.Next() {
		var r strataboot.GroupResult
		if err := rows.Scan(&r.Survey, &r.Year, &r.Est, &r.Lwr, &r.Upr, &r.CV); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		table = append(table, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return table, nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
