package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/backoffice-service/internal/config"
)

const defaultKeyPrefix = "backoffice"

// Redis wraps the go-redis client and the key namespace of this service.
type Redis struct {
	Client *redis.Client
	prefix string
}

// NewRedis builds the client. An unreachable server is only logged so the
// service can start with the roster cache cold; readiness reports it.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) (*Redis, error) {
	if cfg.DB < 0 || cfg.DB > 15 {
		return nil, fmt.Errorf("invalid REDIS_DB %d: must be between 0 and 15", cfg.DB)
	}
	prefix := strings.Trim(cfg.KeyPrefix, ":")
	if prefix == "" {
		prefix = defaultKeyPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	}

	return &Redis{Client: client, prefix: prefix}, nil
}

// Key joins parts under the service prefix, e.g. Key("roster", "data")
// gives "backoffice:roster:data".
func (r *Redis) Key(parts ...string) string {
	prefix := defaultKeyPrefix
	if r != nil && r.prefix != "" {
		prefix = r.prefix
	}
	return strings.Join(append([]string{prefix}, parts...), ":")
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
