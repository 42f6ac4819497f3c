package metrics

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ptit-ai/unirag/internal/types"
)

// Mode represents the surface through which a query arrived.
type Mode string

const (
	ModeQuery Mode = "query"
	ModeChat  Mode = "chat"
	ModeServe Mode = "serve"
)

// AllModes lists every tracked invocation mode.
var AllModes = []Mode{ModeQuery, ModeChat, ModeServe}

// AllAnswerSources lists every answer-source outcome the router can produce.
var AllAnswerSources = []types.AnswerSource{
	types.AnswerSourceKnowledgeBase,
	types.AnswerSourceWebSearch,
	types.AnswerSourceHybrid,
	types.AnswerSourceLLMOnly,
}

// Store manages SQLite persistence for invocation and outcome counts.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store with the database at ~/.unirag/stats.db. The
// directory and database file are created if they don't exist.
func NewStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".unirag")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .unirag directory: %w", err)
	}

	return NewStoreWithPath(filepath.Join(dir, "stats.db"))
}

// NewStoreWithPath creates a Store with a custom database path.
// This is useful for testing.
func NewStoreWithPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS invocation_counts (
			mode TEXT NOT NULL,
			date TEXT NOT NULL,
			count INTEGER DEFAULT 0,
			PRIMARY KEY (mode, date)
		);
		CREATE TABLE IF NOT EXISTS answer_source_counts (
			source TEXT NOT NULL,
			date TEXT NOT NULL,
			count INTEGER DEFAULT 0,
			PRIMARY KEY (source, date)
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Increment increments the count for the given mode for today's date.
func (s *Store) Increment(mode Mode) error {
	today := time.Now().Format("2006-01-02")

	upsertSQL := `
		INSERT INTO invocation_counts (mode, date, count)
		VALUES (?, ?, 1)
		ON CONFLICT(mode, date) DO UPDATE SET count = count + 1;
	`
	if _, err := s.db.Exec(upsertSQL, string(mode), today); err != nil {
		return fmt.Errorf("failed to increment count: %w", err)
	}

	return nil
}

// IncrementAnswerSource increments the outcome count for today's date.
func (s *Store) IncrementAnswerSource(source types.AnswerSource) error {
	today := time.Now().Format("2006-01-02")

	upsertSQL := `
		INSERT INTO answer_source_counts (source, date, count)
		VALUES (?, ?, 1)
		ON CONFLICT(source, date) DO UPDATE SET count = count + 1;
	`
	if _, err := s.db.Exec(upsertSQL, string(source), today); err != nil {
		return fmt.Errorf("failed to increment answer source count: %w", err)
	}

	return nil
}

// GetTotalByMode returns the cumulative count for a mode across all dates.
func (s *Store) GetTotalByMode(mode Mode) (int64, error) {
	var total int64
	row := s.db.QueryRow(
		"SELECT COALESCE(SUM(count), 0) FROM invocation_counts WHERE mode = ?",
		string(mode),
	)
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to get total for mode %s: %w", mode, err)
	}
	return total, nil
}

// GetAllTotals returns cumulative invocation counts for all modes.
func (s *Store) GetAllTotals() (map[Mode]int64, error) {
	result := make(map[Mode]int64)
	for _, mode := range AllModes {
		result[mode] = 0
	}

	rows, err := s.db.Query(
		"SELECT mode, COALESCE(SUM(count), 0) FROM invocation_counts GROUP BY mode",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var modeStr string
		var total int64
		if err := rows.Scan(&modeStr, &total); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result[Mode(modeStr)] = total
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// GetAnswerSourceTotals returns cumulative outcome counts for all sources.
func (s *Store) GetAnswerSourceTotals() (map[types.AnswerSource]int64, error) {
	result := make(map[types.AnswerSource]int64)
	for _, source := range AllAnswerSources {
		result[source] = 0
	}

	rows, err := s.db.Query(
		"SELECT source, COALESCE(SUM(count), 0) FROM answer_source_counts GROUP BY source",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query answer source totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sourceStr string
		var total int64
		if err := rows.Scan(&sourceStr, &total); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result[types.AnswerSource(sourceStr)] = total
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// GetCountByDate returns the count for a specific mode and date.
func (s *Store) GetCountByDate(mode Mode, date string) (int64, error) {
	var count int64
	row := s.db.QueryRow(
		"SELECT COALESCE(count, 0) FROM invocation_counts WHERE mode = ? AND date = ?",
		string(mode), date,
	)
	if err := row.Scan(&count); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get count: %w", err)
	}
	return count, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
