package config

import (
	"sync"

	"github.com/redis/go-redis/v9"
)

// SetRedisClientForTest installs client (typically a redismock client) as the shared Redis client.
func SetRedisClientForTest(client *redis.Client) {
	setRedisClient(client)
}

// ResetRedisClientForTest clears the shared client and lets ConnectRedis dial again.
func ResetRedisClientForTest() {
	setRedisClient(nil)
	redisMu.Lock()
	redisOnce = sync.Once{}
	redisMu.Unlock()
}
