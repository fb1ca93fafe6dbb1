// Package db holds the shared Postgres pool. The database is optional:
// when DATABASE_URL is unset or unreachable the pool stays nil and the
// watchlist and prediction history degrade to unavailable.
package db

import (
	"context"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Pool *pgxpool.Pool

func InitPostgres(ctx context.Context) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Println("DATABASE_URL not set, skipping Postgres connection")
		return
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Printf("Warning: could not open Postgres pool, persistence disabled: %v", err)
		return
	}
	if err := pool.Ping(ctx); err != nil {
		log.Printf("Warning: could not reach Postgres, persistence disabled: %v", err)
		pool.Close()
		return
	}
	Pool = pool
	log.Println("Connected to Postgres")
}
