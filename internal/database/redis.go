package database

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

func ConnectRedis(redisURL string) error {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("unable to parse redis url: %w", err)
	}

	Redis = redis.NewClient(opts)

	if err := Redis.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("unable to ping redis: %w", err)
	}

	log.Println("Connected to Redis successfully")
	return nil
}

func CloseRedis() {
	if Redis != nil {
		_ = Redis.Close()
	}
}
