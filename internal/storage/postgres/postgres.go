// Package postgres persists events in a PostgreSQL table.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/Santhoshkumar2302/langfuse/pkg/model"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS events (
	id           TEXT PRIMARY KEY,
	type         TEXT NOT NULL,
	user_id      TEXT NOT NULL DEFAULT 'unknown',
	trace_id     TEXT,
	timestamp    TIMESTAMPTZ NOT NULL DEFAULT now(),
	model        TEXT,
	prompt       TEXT,
	output       TEXT,
	tokens_used  DOUBLE PRECISION,
	cost_usd     DOUBLE PRECISION,
	url          TEXT,
	method       TEXT,
	status_code  INTEGER,
	duration_sec DOUBLE PRECISION
);
CREATE INDEX IF NOT EXISTS events_timestamp_idx ON events (timestamp DESC);
CREATE INDEX IF NOT EXISTS events_user_id_idx ON events (user_id);
`

// Store is a PostgreSQL-backed event store.
type Store struct {
	db *sql.DB
}

// Open connects to the database and ensures the events table exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create events table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InsertEvent writes one event. Re-inserting an existing id is a no-op,
// so replayed batches are safe.
func (s *Store) InsertEvent(ctx context.Context, e model.Event) error {
	ts, ok := e.Time()
	if !ok {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (
			id, type, user_id, trace_id, timestamp, model, prompt, output,
			tokens_used, cost_usd, url, method, status_code, duration_sec
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO NOTHING`,
		e.ID, e.Type, e.User(), nullString(e.TraceID), ts,
		nullString(e.Model), nullString(e.Prompt), nullString(e.Output),
		e.TokensUsed, e.CostUSD,
		nullString(e.URL), nullString(e.Method), e.StatusCode, e.DurationSec,
	)
	if err != nil {
		return fmt.Errorf("insert event %s: %w", e.ID, err)
	}
	return nil
}

// FetchEvents returns events matching the filter, newest first.
func (s *Store) FetchEvents(ctx context.Context, f model.Filter) ([]model.Event, error) {
	f = f.Normalized()
	query, args := buildFetchQuery(f)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func buildFetchQuery(f model.Filter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, type, user_id, trace_id, timestamp, model, prompt, output,
		tokens_used, cost_usd, url, method, status_code, duration_sec
		FROM events`)

	var (
		conds []string
		args  []any
	)
	conds = append(conds, fmt.Sprintf("timestamp >= now() - ($%d || ' days')::interval", len(args)+1))
	args = append(args, f.LastNDays)

	if f.User != "" {
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, f.User)
	}

	sb.WriteString(" WHERE ")
	sb.WriteString(strings.Join(conds, " AND "))
	sb.WriteString(fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d", len(args)+1))
	args = append(args, f.Limit)

	return sb.String(), args
}

func scanEvent(rows *sql.Rows) (model.Event, error) {
	var (
		e           model.Event
		ts          time.Time
		traceID     sql.NullString
		modelName   sql.NullString
		prompt      sql.NullString
		output      sql.NullString
		tokensUsed  sql.NullFloat64
		costUSD     sql.NullFloat64
		url         sql.NullString
		method      sql.NullString
		statusCode  sql.NullInt64
		durationSec sql.NullFloat64
	)
	if err := rows.Scan(
		&e.ID, &e.Type, &e.UserID, &traceID, &ts, &modelName, &prompt, &output,
		&tokensUsed, &costUSD, &url, &method, &statusCode, &durationSec,
	); err != nil {
		return model.Event{}, fmt.Errorf("scan event: %w", err)
	}

	e.Timestamp = ts.UTC().Format(time.RFC3339Nano)
	e.TraceID = traceID.String
	e.Model = modelName.String
	e.Prompt = prompt.String
	e.Output = output.String
	e.TokensUsed = tokensUsed.Float64
	e.CostUSD = costUSD.Float64
	e.URL = url.String
	e.Method = method.String
	e.StatusCode = int(statusCode.Int64)
	e.DurationSec = durationSec.Float64
	return e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
