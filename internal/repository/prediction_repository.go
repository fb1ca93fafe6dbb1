package repository

import (
	"context"
	"strings"
	"time"

	"pythia/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type PredictionRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewPredictionRepository(pool PgxPool, tracer trace.Tracer) *PredictionRepository {
	return &PredictionRepository{pool: pool, tracer: tracer}
}

func (r *PredictionRepository) RunMigrations(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS predictions (
			id BIGSERIAL PRIMARY KEY,
			symbol TEXT NOT NULL,
			timeframe TEXT NOT NULL,
			prediction TEXT NOT NULL,
			score DOUBLE PRECISION NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			agreement TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_predictions_symbol_created
			ON predictions (symbol, created_at DESC)`)
	return err
}

// Insert records one fused prediction for history queries.
func (r *PredictionRepository) Insert(ctx context.Context, result domain.CompositeResult) (*domain.PredictionRecord, error) {
	_, span := r.tracer.Start(ctx, "prediction-repo.insert")
	defer span.End()

	rec := &domain.PredictionRecord{}
	var timeframe, prediction, agreement string
	var createdAt time.Time
	err := r.pool.QueryRow(ctx,
		`INSERT INTO predictions (symbol, timeframe, prediction, score, confidence, agreement, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, symbol, timeframe, prediction, score, confidence, agreement, created_at`,
		result.Symbol,
		string(result.Timeframe),
		string(result.Prediction),
		result.Score,
		result.Confidence,
		string(result.Agreement),
		result.AnalyzedAt.UTC(),
	).Scan(&rec.ID, &rec.Symbol, &timeframe, &prediction, &rec.Score, &rec.Confidence, &agreement, &createdAt)
	if err != nil {
		return nil, err
	}
	rec.Timeframe = domain.Timeframe(timeframe)
	rec.Prediction = domain.Prediction(prediction)
	rec.Agreement = domain.Agreement(agreement)
	rec.CreatedAt = createdAt.UTC()
	return rec, nil
}

func (r *PredictionRepository) List(ctx context.Context, symbol string, limit int) ([]domain.PredictionRecord, error) {
	_, span := r.tracer.Start(ctx, "prediction-repo.list")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	query := `SELECT id, symbol, timeframe, prediction, score, confidence, agreement, created_at
		FROM predictions`
	args := make([]any, 0, 2)
	if symbol != "" {
		args = append(args, strings.ToUpper(symbol))
		query += ` WHERE symbol = $1`
	}
	args = append(args, limit)
	if symbol != "" {
		query += ` ORDER BY created_at DESC LIMIT $2`
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1`
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.PredictionRecord, 0, limit)
	for rows.Next() {
		var rec domain.PredictionRecord
		var timeframe, prediction, agreement string
		var createdAt time.Time
		if err := rows.Scan(&rec.ID, &rec.Symbol, &timeframe, &prediction, &rec.Score, &rec.Confidence, &agreement, &createdAt); err != nil {
			return nil, err
		}
		rec.Timeframe = domain.Timeframe(timeframe)
		rec.Prediction = domain.Prediction(prediction)
		rec.Agreement = domain.Agreement(agreement)
		rec.CreatedAt = createdAt.UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}
