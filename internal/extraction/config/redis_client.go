package config

import (
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig points at the Redis instance that keeps the run journal. The
// journal is off when Addr is empty.
type RedisConfig struct {
	Addr          string `env:"REDIS_ADDR"`
	Password      string `env:"REDIS_PASSWORD"`
	Database      int    `env:"REDIS_DB" envDefault:"0"`
	EnableTLS     bool   `env:"REDIS_TLS" envDefault:"false"`
	JournalStream string `env:"REDIS_JOURNAL_STREAM" envDefault:"rta-sync:runs"`
	JournalMaxLen int64  `env:"REDIS_JOURNAL_MAXLEN" envDefault:"10000"`
}

// Enabled reports whether a Redis address is configured
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// NewRedisClient creates a client for cfg
func NewRedisClient(cfg RedisConfig) *redis.Client {
	opts := &redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.Database,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	if cfg.EnableTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts)
}
