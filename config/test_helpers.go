package config

import "sync"

// ResetConfigForTest clears the configuration singleton so the next
// LoadConfig call re-reads the environment. Test use only.
func ResetConfigForTest() {
	config = nil
	once = sync.Once{}
}

// ResetRedisClientForTest clears the Redis singleton so ConnectRedis can run
// again under different environment variables. Test use only.
func ResetRedisClientForTest() {
	redisClient = nil
	redisOnce = sync.Once{}
}
