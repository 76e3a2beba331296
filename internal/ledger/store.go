package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists ledger entries to SQLite so usage survives restarts. The
// in-memory ledger stays authoritative during a run; the store is a Sink
// plus query surface for operator tooling.
type Store struct {
	conn *sql.DB
	path string
}

// OpenStore opens (or creates) the ledger database at the given path.
// WAL mode is enabled for concurrent reads.
func OpenStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS usage_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at DATETIME NOT NULL,
			model_id TEXT NOT NULL,
			tokens_used INTEGER NOT NULL,
			cost_incurred REAL NOT NULL,
			quality_score INTEGER NOT NULL
		)
	`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create usage_entries table: %w", err)
	}

	return &Store{conn: conn, path: path}, nil
}

// Append implements Sink. Entries are insert-only; there is no update or
// delete path.
func (s *Store) Append(entry Entry) error {
	_, err := s.conn.Exec(`
		INSERT INTO usage_entries (recorded_at, model_id, tokens_used, cost_incurred, quality_score)
		VALUES (?, ?, ?, ?, ?)`,
		entry.Timestamp.UTC().Format(time.RFC3339Nano),
		entry.ModelID,
		entry.TokensUsed,
		entry.CostIncurred,
		entry.QualityScore,
	)
	if err != nil {
		return fmt.Errorf("append usage entry: %w", err)
	}
	return nil
}

// LoadSummary computes aggregates over all persisted entries.
func (s *Store) LoadSummary() (Summary, error) {
	row := s.conn.QueryRow(`
		SELECT COALESCE(SUM(cost_incurred), 0),
		       COUNT(*),
		       COALESCE(AVG(quality_score), 0)
		FROM usage_entries`)

	var summary Summary
	if err := row.Scan(&summary.TotalCost, &summary.CallCount, &summary.AverageQuality); err != nil {
		return Summary{}, fmt.Errorf("load usage summary: %w", err)
	}
	return summary, nil
}

// LoadEntries returns all persisted entries in append order.
func (s *Store) LoadEntries() ([]Entry, error) {
	rows, err := s.conn.Query(`
		SELECT recorded_at, model_id, tokens_used, cost_incurred, quality_score
		FROM usage_entries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load usage entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var recorded string
		if err := rows.Scan(&recorded, &e.ModelID, &e.TokensUsed, &e.CostIncurred, &e.QualityScore); err != nil {
			return nil, fmt.Errorf("scan usage entry: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, recorded)
		if err != nil {
			return nil, fmt.Errorf("parse entry timestamp: %w", err)
		}
		e.Timestamp = ts
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear deletes all persisted entries. Explicit operator action only.
func (s *Store) Clear() error {
	if _, err := s.conn.Exec(`DELETE FROM usage_entries`); err != nil {
		return fmt.Errorf("clear usage entries: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}
