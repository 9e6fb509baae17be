package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq" // registers the "postgres" driver

	"github.com/couchcryptid/ili-nowcast-eval/internal/domain"
)

// Table is the nowcast table name.
const Table = "nowcasts"

const schema = `CREATE TABLE IF NOT EXISTS ` + Table + ` (
	epiweek  INTEGER NOT NULL,
	location VARCHAR(12) NOT NULL,
	value    REAL NOT NULL,
	std      REAL NOT NULL,
	PRIMARY KEY (epiweek, location)
)`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repository upserts nowcast records into Postgres.
// It implements pipeline.RecordLoader.
type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open connects to databaseURL and verifies the connection.
func Open(ctx context.Context, databaseURL string, logger *slog.Logger) (*Repository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewRepository(db, logger), nil
}

// NewRepository wraps an existing connection pool.
func NewRepository(db *sql.DB, logger *slog.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// EnsureSchema creates the nowcast table if it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create %s table: %w", Table, err)
	}
	return nil
}

// LoadBatch upserts records in one statement inside a transaction.
func (r *Repository) LoadBatch(ctx context.Context, records []domain.NowcastRecord) error {
	if len(records) == 0 {
		return nil
	}
	query, args, err := buildUpsert(records)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert nowcasts: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit nowcasts: %w", err)
	}
	r.logger.Debug("nowcast batch upserted", "records", len(records))
	return nil
}

// LastUpdate reads the timestamp stored in the update sentinel. ok is false
// when no publication has completed yet.
func (r *Repository) LastUpdate(ctx context.Context) (t time.Time, ok bool, err error) {
	query, args, err := buildLastUpdate()
	if err != nil {
		return time.Time{}, false, err
	}

	rec := domain.NowcastRecord{Week: domain.UpdateSentinelWeek, Location: domain.UpdateSentinelLocation}
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&rec.Value, &rec.StdDev)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read update sentinel: %w", err)
	}
	t, ok = domain.DecodeUpdateSentinel(rec)
	return t, ok, nil
}

// CheckReadiness pings the database.
func (r *Repository) CheckReadiness(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// buildUpsert renders a multi-row INSERT that overwrites value and std on a
// key conflict. Duplicate keys within one statement are rejected by Postgres,
// so callers must dedupe first.
func buildUpsert(records []domain.NowcastRecord) (string, []any, error) {
	b := psql.Insert(Table).Columns("epiweek", "location", "value", "std")
	for _, rec := range records {
		b = b.Values(int(rec.Week), rec.Location, rec.Value, rec.StdDev)
	}
	query, args, err := b.
		Suffix("ON CONFLICT (epiweek, location) DO UPDATE SET value = EXCLUDED.value, std = EXCLUDED.std").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build upsert: %w", err)
	}
	return query, args, nil
}

func buildLastUpdate() (string, []any, error) {
	query, args, err := psql.Select("value", "std").
		From(Table).
		Where(sq.Eq{"epiweek": int(domain.UpdateSentinelWeek), "location": domain.UpdateSentinelLocation}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build last update query: %w", err)
	}
	return query, args, nil
}
