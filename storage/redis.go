package storage

import (
	"log"
	"os"

	"github.com/go-redis/redis/v8"
)

// InitializeRedis builds a redis client from REDIS_URL. Returns nil when no
// URL is configured; the sync channel then falls back to its in-process bus.
func InitializeRedis() *redis.Client {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	log.Println("Redis initialized with address:", redisURL)
	return client
}
