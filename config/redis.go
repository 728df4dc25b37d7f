package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	redisMu     sync.RWMutex
	redisClient *redis.Client
	redisOnce   sync.Once
)

const redisPingTimeout = 2 * time.Second

func redisOptions(cfg *Config) *redis.Options {
	return &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}

// ConnectRedis dials the shared Redis client once. It returns (nil, nil) when REDIS_ENABLED is
// not "true" or APPENV=test; a failed ping leaves the client unset and reports the error.
func ConnectRedis() (*redis.Client, error) {
	var err error
	redisOnce.Do(func() {
		cfg := LoadConfig()
		if !cfg.RedisEnabled || cfg.IsTest() {
			return
		}

		rdb := redis.NewClient(redisOptions(cfg))
		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()
		if err = rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			err = fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
			return
		}
		setRedisClient(rdb)
	})
	return GetRedisClient(), err
}

// GetRedisClient returns the shared client, or nil when Redis is disabled or unreachable.
func GetRedisClient() *redis.Client {
	redisMu.RLock()
	defer redisMu.RUnlock()
	return redisClient
}

func setRedisClient(rdb *redis.Client) {
	redisMu.Lock()
	defer redisMu.Unlock()
	redisClient = rdb
}
