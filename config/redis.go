package config

import (
	"context"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// InitRedis connects the optional Redis client used for the advisory
// availability cache and rate limiting. A missing or unreachable Redis
// disables both; the core never depends on it.
func InitRedis() {
	addr := os.Getenv("REDIS_HOST")
	if addr == "" {
		log.Println("REDIS_HOST not set, caching and rate limiting disabled")
		return
	}

	RedisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	if err := RedisClient.Ping(context.Background()).Err(); err != nil {
		log.Printf("⚠️ Failed to connect to Redis: %v. Caching disabled.", err)
		RedisClient = nil
		return
	}
	log.Println("✅ Connected to Redis")
}
