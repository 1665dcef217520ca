package storage

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// InitRedis connects the optional project-document cache. Caching is off when
// REDIS_ADDR is unset; a nil client means every read goes to Postgres.
func InitRedis() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Println("REDIS_ADDR not set, project cache disabled")
		return nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    os.Getenv("REDIS_PASSWORD"),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Redis not reachable (%v), project cache disabled", err)
		_ = redisClient.Close()
		return nil
	}

	log.Println("Redis project cache connected")
	return redisClient
}
