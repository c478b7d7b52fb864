// Package index maintains a derived SQLite search index over tasks and
// tickets. The JSON snapshots remain the source of truth: the index is
// rebuilt from store state and can be deleted at any time.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/untoldecay/flowai/internal/types"

	// Import SQLite driver (embedded build, no cgo)
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    id TEXT NOT NULL,
    kind TEXT NOT NULL CHECK(kind IN ('task', 'ticket')),
    title TEXT NOT NULL,
    body TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT '',
    priority TEXT NOT NULL DEFAULT '',
    assignee TEXT NOT NULL DEFAULT '',
    updated_at DATETIME NOT NULL,
    PRIMARY KEY (kind, id)
);

CREATE INDEX IF NOT EXISTS idx_documents_kind ON documents(kind);
CREATE INDEX IF NOT EXISTS idx_documents_updated_at ON documents(updated_at);
`

// Result is one search hit.
type Result struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"` // "task" or "ticket"
	Title    string `json:"title"`
	Snippet  string `json:"snippet,omitempty"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

// Index is a rebuildable search index stored in a single SQLite file.
type Index struct {
	db *sql.DB
}

// Open opens (creating if needed) the index database at path.
func Open(ctx context.Context, path string) (*Index, error) {
	// Use file: prefix as required by ncruces/go-sqlite3 driver
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize search index schema: %w", err)
	}
	return &Index{db: db}, nil
}

// Close releases the underlying database handle.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Rebuild replaces the index contents with the given store state in one
// transaction. Called after snapshot loads and mutations; always safe to
// re-run.
func (ix *Index) Rebuild(ctx context.Context, tasks []types.Task, tickets []types.Ticket) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin index rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (id, kind, title, body, status, priority, assignee, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare index insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		if _, err := stmt.ExecContext(ctx, t.ID, "task", t.Title, t.Description,
			string(t.Status), string(t.Priority), t.Assignee, t.UpdatedAt); err != nil {
			return fmt.Errorf("failed to index task %s: %w", t.ID, err)
		}
	}
	for _, t := range tickets {
		// Tags and customer name are searchable alongside the description.
		body := t.Description
		if len(t.Tags) > 0 {
			body += "\n" + strings.Join(t.Tags, " ")
		}
		if t.Customer.Name != "" {
			body += "\n" + t.Customer.Name
		}
		if _, err := stmt.ExecContext(ctx, t.ID, "ticket", t.Title, body,
			string(t.Status), string(t.Priority), t.Assignee, t.UpdatedAt); err != nil {
			return fmt.Errorf("failed to index ticket %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit index rebuild: %w", err)
	}
	return nil
}

// Search returns documents whose title or body contains the query,
// case-insensitive, most recently updated first. kind filters to "task" or
// "ticket" when non-empty.
func (ix *Index) Search(ctx context.Context, query, kind string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + escapeLike(query) + "%"

	q := `
		SELECT id, kind, title, body, status, priority
		FROM documents
		WHERE (title LIKE ? ESCAPE '\' OR body LIKE ? ESCAPE '\')
	`
	args := []interface{}{pattern, pattern}
	if kind != "" {
		q += ` AND kind = ?`
		args = append(args, kind)
	}
	q += ` ORDER BY updated_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := ix.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var body string
		if err := rows.Scan(&r.ID, &r.Kind, &r.Title, &body, &r.Status, &r.Priority); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		r.Snippet = snippet(body, query)
		results = append(results, r)
	}
	return results, rows.Err()
}

// escapeLike escapes LIKE metacharacters so user queries match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// snippet returns a short window of body text around the first match.
func snippet(body, query string) string {
	const window = 60
	if body == "" {
		return ""
	}
	idx := strings.Index(strings.ToLower(body), strings.ToLower(query))
	if idx < 0 {
		if len(body) > window {
			return body[:window] + "..."
		}
		return body
	}
	start := idx - window/2
	if start < 0 {
		start = 0
	}
	end := idx + len(query) + window/2
	if end > len(body) {
		end = len(body)
	}
	out := strings.TrimSpace(strings.ReplaceAll(body[start:end], "\n", " "))
	if start > 0 {
		out = "..." + out
	}
	if end < len(body) {
		out += "..."
	}
	return out
}
