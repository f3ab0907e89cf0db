package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists feedback records in SQLite.
type Store struct {
	db *sql.DB
}

const feedbackSchema = `
CREATE TABLE IF NOT EXISTS feedback (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at TEXT NOT NULL,
	test_name TEXT NOT NULL,
	signature TEXT,
	keywords TEXT,
	issue_id TEXT NOT NULL,
	issue_summary TEXT,
	issue_description TEXT,
	relevant INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_feedback_issue ON feedback(issue_id);
`

// OpenStore opens or creates the feedback database at path, creating the
// parent directory if needed.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(feedbackSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create feedback schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Add inserts a record and returns its ID. A zero CreatedAt is stamped
// with the current UTC time.
func (s *Store) Add(ctx context.Context, rec Record) (int64, error) {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback
			(created_at, test_name, signature, keywords, issue_id, issue_summary, issue_description, relevant)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		created.Format(time.RFC3339),
		rec.Test,
		rec.Signature,
		strings.Join(rec.SignatureKeywords, " "),
		rec.IssueID,
		rec.IssueSummary,
		rec.IssueDescription,
		boolToInt(rec.Relevant),
	)
	if err != nil {
		return 0, fmt.Errorf("insert feedback: %w", err)
	}
	return res.LastInsertId()
}

// List returns records oldest first, up to limit (0 = all).
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	q := `
		SELECT id, created_at, test_name, signature, keywords, issue_id, issue_summary, issue_description, relevant
		FROM feedback ORDER BY id`
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec       Record
			createdAt string
			keywords  sql.NullString
			sig       sql.NullString
			summary   sql.NullString
			desc      sql.NullString
			relevant  int
		)
		if err := rows.Scan(&rec.ID, &createdAt, &rec.Test, &sig, &keywords,
			&rec.IssueID, &summary, &desc, &relevant); err != nil {
			return nil, fmt.Errorf("scan feedback row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			rec.CreatedAt = t
		}
		rec.Signature = sig.String
		rec.IssueSummary = summary.String
		rec.IssueDescription = desc.String
		if kw := strings.TrimSpace(keywords.String); kw != "" {
			rec.SignatureKeywords = strings.Fields(kw)
		}
		rec.Relevant = relevant != 0
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback rows: %w", err)
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feedback").Scan(&n); err != nil {
		return 0, fmt.Errorf("count feedback: %w", err)
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
