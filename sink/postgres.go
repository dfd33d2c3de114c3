package sink

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/gurre/cloud-api-samples/apierr"
)

// Execer is the subset of *sql.DB the Postgres sink uses.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const createResultsTable = `
create table if not exists sample_results(
	run_id       text        not null,
	name         text        not null,
	content_type text        not null,
	body         bytea       not null,
	created_at   timestamptz not null default now(),
	primary key (run_id, name)
)`

const upsertResult = `
insert into sample_results(run_id, name, content_type, body)
values ($1,$2,$3,$4)
on conflict (run_id, name)
do update set content_type=excluded.content_type, body=excluded.body, created_at=now()`

// OpenPostgres connects with the pgx driver and makes sure the results table exists.
func OpenPostgres(ctx context.Context, dsn string) (Execer, io.Closer, error) {
	const op = "sink.OpenPostgres"
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, apierr.Configf(op, "invalid database DSN: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, apierr.New(apierr.KindTransport, op, fmt.Errorf("failed to reach database: %w", err))
	}
	if _, err := db.ExecContext(ctx, createResultsTable); err != nil {
		_ = db.Close()
		return nil, nil, apierr.New(apierr.KindProvider, op, fmt.Errorf("failed to create results table: %w", err))
	}
	return db, db, nil
}

// PostgresSink upserts artifacts into the sample_results table.
type PostgresSink struct {
	db     Execer
	closer io.Closer
	runID  string
}

// NewPostgresSink creates a PostgresSink. closer may be nil.
func NewPostgresSink(db Execer, closer io.Closer, runID string) *PostgresSink {
	return &PostgresSink{db: db, closer: closer, runID: runID}
}

// Write stores one row per artifact.
func (p *PostgresSink) Write(ctx context.Context, a Artifact) error {
	const op = "sink.PostgresSink.Write"
	if err := ValidateName(a.Name); err != nil {
		return apierr.New(apierr.KindLocalIO, op, err)
	}
	if _, err := p.db.ExecContext(ctx, upsertResult, p.runID, a.Name, a.ContentType, a.Body); err != nil {
		return apierr.Classify(op, fmt.Errorf("failed to store %s: %w", a.Name, err))
	}
	return nil
}

// Close releases the connection pool.
func (p *PostgresSink) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}
