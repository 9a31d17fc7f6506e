// Package history keeps an append-only log of executed operation items in
// SQLite. Rows are written by the Store observer and never read back into an
// execution; the log exists for auditing with `chatwoot history`.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/tracing"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Config configures a Store.
type Config struct {
	// Path is the database file, or MemoryPath
	Path string

	// Logger receives write failures (default: slog.Default())
	Logger *slog.Logger
}

// Entry is one recorded item execution.
type Entry struct {
	ID            int64
	CorrelationID string
	API           string
	Resource      string
	Operation     string
	ItemIndex     int
	Outcome       string
	Records       int
	Duration      time.Duration
	Error         string
	CreatedAt     time.Time
}

// Query narrows List results. Zero values match everything.
type Query struct {
	Limit         int
	Resource      string
	Outcome       string
	CorrelationID string
}

// DefaultLimit caps List when Query.Limit is zero.
const DefaultLimit = 50

// Store persists item outcomes. It implements operation.Observer.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

var _ operation.Observer = (*Store)(nil)

// Open opens or creates the history database and applies the schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("history path is required")
	}

	dsn := cfg.Path
	if cfg.Path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", cfg.Path, err)
		}
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// Each in-memory connection is its own database.
	if cfg.Path == MemoryPath {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{db: db, logger: logger, now: time.Now}
	if err := s.migrate(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS executions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		correlation_id TEXT NOT NULL DEFAULT '',
		api TEXT NOT NULL,
		resource TEXT NOT NULL,
		operation TEXT NOT NULL,
		item_index INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		records INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_executions_correlation ON executions(correlation_id);
	CREATE INDEX IF NOT EXISTS idx_executions_resource ON executions(resource, operation);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// ItemCompleted appends one row. Write failures are logged and otherwise
// ignored so history never fails a run.
func (s *Store) ItemCompleted(ctx context.Context, outcome operation.ItemOutcome) {
	if err := s.Append(ctx, outcome); err != nil {
		s.logger.Warn("failed to record execution history",
			slog.String("resource", outcome.Resource),
			slog.String("operation", outcome.Operation),
			slog.Int("item_index", outcome.ItemIndex),
			slog.String("error", err.Error()),
		)
	}
}

// Append inserts one outcome. The correlation ID is taken from ctx.
func (s *Store) Append(ctx context.Context, outcome operation.ItemOutcome) error {
	var errText string
	if outcome.Err != nil {
		errText = operation.Message(outcome.Err)
	}

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO executions (
		correlation_id, api, resource, operation, item_index,
		outcome, records, duration_ms, error, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tracing.FromContext(ctx).String(),
		string(outcome.API),
		outcome.Resource,
		outcome.Operation,
		outcome.ItemIndex,
		outcome.Outcome,
		outcome.Records,
		outcome.Duration.Milliseconds(),
		errText,
		s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert execution: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, q Query) ([]Entry, error) {
	var (
		where []string
		args  []interface{}
	)
	if q.Resource != "" {
		where = append(where, "resource = ?")
		args = append(args, q.Resource)
	}
	if q.Outcome != "" {
		where = append(where, "outcome = ?")
		args = append(args, q.Outcome)
	}
	if q.CorrelationID != "" {
		where = append(where, "correlation_id = ?")
		args = append(args, q.CorrelationID)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := `
	SELECT id, correlation_id, api, resource, operation, item_index,
	       outcome, records, duration_ms, error, created_at
	FROM executions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			durationMs int64
			createdAt  int64
		)
		if err := rows.Scan(
			&e.ID, &e.CorrelationID, &e.API, &e.Resource, &e.Operation, &e.ItemIndex,
			&e.Outcome, &e.Records, &durationMs, &e.Error, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.CreatedAt = time.UnixMilli(createdAt).UTC()
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
