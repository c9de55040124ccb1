package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Entry is one persisted traffic exchange.
type Entry struct {
	ID            int64
	SessionHandle string
	Resource      string
	Device        string
	Query         string
	Response      string
	Replied       bool
	Took          time.Duration
	CreatedAt     time.Time
}

// Repository stores traffic entries in SQLite.
type Repository struct {
	db *sql.DB

	// maxEntries caps rows kept per resource; 0 keeps everything.
	maxEntries int
}

// NewRepository creates a repository over an open, migrated database.
func NewRepository(db *sql.DB, maxEntries int) *Repository {
	return &Repository{db: db, maxEntries: maxEntries}
}

// Record appends one traffic entry and prunes old rows for the same
// resource when a cap is configured.
func (r *Repository) Record(ctx context.Context, entry Entry) error {
	if entry.Resource == "" {
		return fmt.Errorf("resource is required")
	}

	replied := 0
	if entry.Replied {
		replied = 1
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO traffic_log (session_handle, resource, device, query, response, replied, took_us)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionHandle,
		entry.Resource,
		entry.Device,
		entry.Query,
		entry.Response,
		replied,
		entry.Took.Microseconds(),
	)
	if err != nil {
		return fmt.Errorf("inserting traffic entry: %w", err)
	}

	if r.maxEntries > 0 {
		if err := r.prune(ctx, entry.Resource); err != nil {
			return err
		}
	}
	return nil
}

// prune removes rows beyond the per-resource cap, oldest first.
func (r *Repository) prune(ctx context.Context, resourceName string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM traffic_log
		 WHERE resource = ?
		   AND id NOT IN (
		     SELECT id FROM traffic_log
		     WHERE resource = ?
		     ORDER BY id DESC
		     LIMIT ?
		   )`,
		resourceName,
		resourceName,
		r.maxEntries,
	)
	if err != nil {
		return fmt.Errorf("pruning traffic entries: %w", err)
	}
	return nil
}

// ListByResource returns recent traffic for one resource, newest
// first.
func (r *Repository) ListByResource(ctx context.Context, resourceName string, limit int) ([]Entry, error) {
	if resourceName == "" {
		return nil, fmt.Errorf("resource is required")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_handle, resource, device, query, response, replied, took_us, created_at
		 FROM traffic_log
		 WHERE resource = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		resourceName,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying traffic log: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows, limit)
}

// ListBySession returns the traffic a single session produced, newest
// first.
func (r *Repository) ListBySession(ctx context.Context, handle string, limit int) ([]Entry, error) {
	if handle == "" {
		return nil, fmt.Errorf("session handle is required")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_handle, resource, device, query, response, replied, took_us, created_at
		 FROM traffic_log
		 WHERE session_handle = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		handle,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying traffic log: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows, limit)
}

func scanEntries(rows *sql.Rows, capacity int) ([]Entry, error) {
	entries := make([]Entry, 0, capacity)
	for rows.Next() {
		var (
			entry     Entry
			replied   int
			tookMicro int64
			createdAt string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.SessionHandle,
			&entry.Resource,
			&entry.Device,
			&entry.Query,
			&entry.Response,
			&replied,
			&tookMicro,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning traffic entry: %w", err)
		}
		entry.Replied = replied != 0
		entry.Took = time.Duration(tookMicro) * time.Microsecond
		// Timestamp format is controlled by the schema default.
		entry.CreatedAt, _ = time.Parse("2006-01-02T15:04:05.999Z", createdAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating traffic log: %w", err)
	}
	return entries, nil
}
