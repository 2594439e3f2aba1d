package config

import (
	"context"
	"log"
	"time"

	"github.com/redis/rueidis"
)

// NewRedisClient connects to the revoked-session store and fails fast when
// the server does not answer a PING.
func NewRedisClient(addr string) rueidis.Client {
	redisClient, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{addr},
		ClientName:   "task-tracker",
		DisableCache: true,
	})
	if err != nil {
		log.Fatalf("failed to create redis client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisClient.Do(ctx, redisClient.B().Ping().Build()).Error(); err != nil {
		redisClient.Close()
		log.Fatalf("redis at %s is unreachable: %v", addr, err)
	}

	return redisClient
}
