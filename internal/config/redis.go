package config

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the connection settings for the optional shared
// rate-window store.  Address resolution prefers REDIS_HOST/REDIS_PORT
// over the REDIS_ADDR shorthand.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
}

// LoadRedisConfig reads the Redis settings from the environment.
func LoadRedisConfig() RedisConfig {
	rc := RedisConfig{
		Addr:     envStr("REDIS_ADDR", "localhost:6379"),
		Password: envStr("REDIS_PASSWORD", ""),
		DB:       envInt("REDIS_DB", 0),
		TLS:      envBool("REDIS_TLS", false),
	}
	if host := envStr("REDIS_HOST", ""); host != "" {
		rc.Addr = host + ":" + envStr("REDIS_PORT", "6379")
	}
	return rc
}

// NewRedisClient connects to the Redis instance backing the shared
// rate-window store for multi-instance deployments.  A nil return means
// Redis is unreachable and the caller falls back to the in-process store.
func NewRedisClient() *redis.Client {
	rc := LoadRedisConfig()

	opts := &redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	}
	if rc.TLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
