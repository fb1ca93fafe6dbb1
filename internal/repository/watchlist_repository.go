package repository

import (
	"context"
	"strings"

	"pythia/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

// PgxPool is the subset of pgxpool.Pool the repositories use.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type WatchlistRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewWatchlistRepository(pool PgxPool, tracer trace.Tracer) *WatchlistRepository {
	return &WatchlistRepository{pool: pool, tracer: tracer}
}

func (r *WatchlistRepository) RunMigrations(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS watchlist (
			id BIGSERIAL PRIMARY KEY,
			symbol TEXT NOT NULL UNIQUE,
			note TEXT NOT NULL DEFAULT '',
			added_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

func (r *WatchlistRepository) Add(ctx context.Context, symbol, note string) (*domain.WatchlistEntry, error) {
	_, span := r.tracer.Start(ctx, "watchlist-repo.add")
	defer span.End()

	entry := &domain.WatchlistEntry{}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO watchlist (symbol, note)
		 VALUES ($1, $2)
		 ON CONFLICT (symbol) DO UPDATE SET note = EXCLUDED.note
		 RETURNING id, symbol, note, added_at`,
		strings.ToUpper(symbol), note,
	).Scan(&entry.ID, &entry.Symbol, &entry.Note, &entry.AddedAt)
	if err != nil {
		return nil, err
	}
	entry.AddedAt = entry.AddedAt.UTC()
	return entry, nil
}

func (r *WatchlistRepository) Remove(ctx context.Context, symbol string) (bool, error) {
	_, span := r.tracer.Start(ctx, "watchlist-repo.remove")
	defer span.End()

	tag, err := r.pool.Exec(ctx, `DELETE FROM watchlist WHERE symbol = $1`, strings.ToUpper(symbol))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *WatchlistRepository) List(ctx context.Context) ([]domain.WatchlistEntry, error) {
	_, span := r.tracer.Start(ctx, "watchlist-repo.list")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT id, symbol, note, added_at FROM watchlist ORDER BY added_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.WatchlistEntry
	for rows.Next() {
		var e domain.WatchlistEntry
		if err := rows.Scan(&e.ID, &e.Symbol, &e.Note, &e.AddedAt); err != nil {
			return nil, err
		}
		e.AddedAt = e.AddedAt.UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
