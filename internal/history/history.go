// Package history persists finished quiz sessions so a child's progress
// survives restarts. Backed by a local sqlite file; an empty path disables
// the store entirely.
package history

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Result is one finished quiz session.
type Result struct {
	ID        int64     `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	Category  string    `db:"category" json:"category"`
	Score     int       `db:"score" json:"score"`
	Total     int       `db:"total" json:"total"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS quiz_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	category TEXT NOT NULL,
	score INTEGER NOT NULL,
	total INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quiz_results_created_at ON quiz_results (created_at);
`

// Repository handles database operations for quiz results.
type Repository struct {
	db *sqlx.DB
}

// NewRepository opens the sqlite database and ensures the schema exists.
func NewRepository(databasePath string) (*Repository, error) {
	db, err := sqlx.Connect("sqlite3", databasePath)
	if err != nil {
		return nil, fmt.Errorf("sqlx.Connect(%s): %w", databasePath, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create quiz_results schema: %w", err)
	}
	return &Repository{db: db}, nil
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Record inserts a finished quiz session.
func (r *Repository) Record(result *Result) error {
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO quiz_results (session_id, category, score, total, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	res, err := r.db.Exec(query,
		result.SessionID,
		result.Category,
		result.Score,
		result.Total,
		result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert quiz result: %w", err)
	}
	result.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted quiz result id: %w", err)
	}
	return nil
}

// Recent returns the most recent quiz results, newest first.
func (r *Repository) Recent(limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}

	var results []Result
	err := r.db.Select(&results,
		"SELECT * FROM quiz_results ORDER BY created_at DESC, id DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz results: %w", err)
	}
	return results, nil
}

// CategoryStats returns per-category totals across all recorded sessions.
func (r *Repository) CategoryStats() (map[string]Stats, error) {
	rows := []struct {
		Category string `db:"category"`
		Sessions int    `db:"sessions"`
		Score    int    `db:"score"`
		Total    int    `db:"total"`
	}{}
	err := r.db.Select(&rows, `
		SELECT category, COUNT(*) AS sessions, SUM(score) AS score, SUM(total) AS total
		FROM quiz_results
		GROUP BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get category stats: %w", err)
	}

	stats := make(map[string]Stats, len(rows))
	for _, row := range rows {
		stats[row.Category] = Stats{
			Sessions: row.Sessions,
			Score:    row.Score,
			Total:    row.Total,
		}
	}
	return stats, nil
}

// Stats aggregates a category's recorded sessions.
type Stats struct {
	Sessions int `json:"sessions"`
	Score    int `json:"score"`
	Total    int `json:"total"`
}
