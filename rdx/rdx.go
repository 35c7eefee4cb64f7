package rdx

import (
	"os"
	"time"

	"tattootime/globals"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

func init() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	Conn = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
}

// RdxSetNX acquires key as a lock if it is not held. Returns true when the
// lock was acquired.
func RdxSetNX(key, value string, ttl time.Duration) (bool, error) {
	return Conn.SetNX(globals.Ctx, key, value, ttl).Result()
}

func RdxDel(key string) error {
	return Conn.Del(globals.Ctx, key).Err()
}

func RdxGet(key string) (string, error) {
	return Conn.Get(globals.Ctx, key).Result()
}

func RdxSet(key, value string, ttl time.Duration) error {
	return Conn.Set(globals.Ctx, key, value, ttl).Err()
}
