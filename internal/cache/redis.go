// Package cache holds the shared redis client and the JSON TTL cache that
// stores analysis and backtest results.
package cache

import (
	"context"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

// Client is the shared redis client. It stays nil when redis is
// unreachable; the TTL cache treats a nil client as a permanent miss.
var Client *redis.Client

func InitRedis(ctx context.Context) {
	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: redis unreachable at %s, result caching disabled: %v", addr, err)
		Client = nil
		return
	}
	Client = client
	log.Println("Connected to Redis")
}
