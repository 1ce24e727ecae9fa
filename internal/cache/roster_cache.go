package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/backoffice-service/internal/config"
	"github.com/spec-kit/backoffice-service/internal/domain"
	"github.com/spec-kit/backoffice-service/internal/persistence"
)

// Generation is the roster version a snapshot was read against. Every
// Invalidate moves it forward.
type Generation int64

// RosterCache stores read-only roster snapshots between writes. A reader that
// misses gets the current generation and passes it back to Set after loading
// from the database; Set drops the snapshot when a write invalidated the
// roster in between.
type RosterCache interface {
	Get(ctx context.Context) ([]domain.Employee, Generation, bool)
	Set(ctx context.Context, gen Generation, roster []domain.Employee)
	Invalidate(ctx context.Context)
}

// cachedRoster is the value kept in Redis. The generation is stored with the
// data so an entry written against an older generation is never served.
type cachedRoster struct {
	Generation Generation       `json:"generation"`
	Employees  []cachedEmployee `json:"employees"`
}

// cachedEmployee never carries password hashes.
type cachedEmployee struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Department string    `json:"department,omitempty"`
	Active     bool      `json:"active"`
	Status     string    `json:"status,omitempty"`
	WorkDays   []string  `json:"work_days"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

var errStaleGeneration = errors.New("roster generation moved")

type redisRosterCache struct {
	client  *redis.Client
	dataKey string
	genKey  string
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu sync.Mutex
	// bypassUntil disables reads after a failed invalidation, since another
	// node may still hold the old entry until its TTL runs out.
	bypassUntil time.Time
}

// NewRedisRosterCache returns a Redis-backed cache, or a no-op cache when
// Redis is not configured, caching is disabled or the TTL is zero.
func NewRedisRosterCache(r *persistence.Redis, cfg config.CacheConfig, logger *zap.Logger) RosterCache {
	if r == nil || r.Client == nil || !cfg.Enabled || cfg.RosterTTL() <= 0 {
		return NoopRosterCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisRosterCache{
		client:  r.Client,
		dataKey: r.Key("roster", "v2", "data"),
		genKey:  r.Key("roster", "v2", "generation"),
		ttl:     cfg.RosterTTL(),
		logger:  logger,
		now:     time.Now,
	}
}

func (c *redisRosterCache) Get(ctx context.Context) ([]domain.Employee, Generation, bool) {
	values, err := c.client.MGet(ctx, c.genKey, c.dataKey).Result()
	if err != nil {
		c.logger.Warn("roster cache read failed", zap.Error(err))
		return nil, 0, false
	}
	gen, err := parseGeneration(values[0])
	if err != nil {
		c.logger.Warn("roster cache generation corrupt", zap.Error(err))
		return nil, 0, false
	}
	if c.bypassed() {
		return nil, gen, false
	}
	raw, ok := values[1].(string)
	if !ok {
		return nil, gen, false
	}
	stored, roster, err := decodeRoster([]byte(raw))
	if err != nil {
		c.logger.Warn("roster cache entry corrupt", zap.Error(err))
		return nil, gen, false
	}
	if stored != gen {
		return nil, gen, false
	}
	return roster, gen, true
}

// Set writes the snapshot only if the generation is still gen, using
// WATCH so a concurrent Invalidate aborts the transaction.
func (c *redisRosterCache) Set(ctx context.Context, gen Generation, roster []domain.Employee) {
	raw, err := encodeRoster(gen, roster)
	if err != nil {
		c.logger.Warn("roster cache encode failed", zap.Error(err))
		return
	}
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, c.genKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		cur, err := parseGeneration(current)
		if err != nil {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.dataKey, raw, c.ttl)
			return nil
		})
		return err
	}, c.genKey)
	switch {
	case err == nil, errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
	default:
		c.logger.Warn("roster cache write failed", zap.Error(err))
	}
}

func (c *redisRosterCache) Invalidate(ctx context.Context) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey)
		pipe.Del(ctx, c.dataKey)
		return nil
	})
	if err != nil {
		c.logger.Error("roster cache invalidate failed; bypassing cache reads", zap.Duration("for", c.ttl), zap.Error(err))
		c.mu.Lock()
		c.bypassUntil = c.now().Add(c.ttl)
		c.mu.Unlock()
	}
}

func (c *redisRosterCache) bypassed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Before(c.bypassUntil)
}

// parseGeneration reads the counter as returned by GET or MGET; a missing
// key is generation zero.
func parseGeneration(v any) (Generation, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case string:
		if val == "" {
			return 0, nil
		}
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, err
		}
		return Generation(n), nil
	default:
		return 0, fmt.Errorf("unexpected generation value %T", v)
	}
}

// NoopRosterCache never holds anything.
type NoopRosterCache struct{}

func (NoopRosterCache) Get(context.Context) ([]domain.Employee, Generation, bool) {
	return nil, 0, false
}
func (NoopRosterCache) Set(context.Context, Generation, []domain.Employee) {}
func (NoopRosterCache) Invalidate(context.Context)                         {}

func encodeRoster(gen Generation, roster []domain.Employee) ([]byte, error) {
	out := make([]cachedEmployee, 0, len(roster))
	for _, e := range roster {
		days := make([]string, 0, len(e.WorkDays))
		for _, d := range e.WorkDays {
			days = append(days, string(d))
		}
		out = append(out, cachedEmployee{
			ID:         e.ID,
			Name:       e.Name,
			Email:      e.Email,
			Role:       string(e.Role),
			Department: string(e.Department),
			Active:     e.Active,
			Status:     string(e.Status),
			WorkDays:   days,
			CreatedAt:  e.CreatedAt,
			UpdatedAt:  e.UpdatedAt,
		})
	}
	return json.Marshal(cachedRoster{Generation: gen, Employees: out})
}

func decodeRoster(raw []byte) (Generation, []domain.Employee, error) {
	var entry cachedRoster
	if err := json.Unmarshal(raw, &entry); err != nil {
		return 0, nil, err
	}
	roster := make([]domain.Employee, 0, len(entry.Employees))
	for _, c := range entry.Employees {
		days := make([]domain.Weekday, 0, len(c.WorkDays))
		for _, d := range c.WorkDays {
			days = append(days, domain.Weekday(d))
		}
		roster = append(roster, domain.Employee{
			ID:         c.ID,
			Name:       c.Name,
			Email:      c.Email,
			Role:       domain.Role(c.Role),
			Department: domain.Department(c.Department),
			Active:     c.Active,
			Status:     domain.EmployeeStatus(c.Status),
			WorkDays:   days,
			CreatedAt:  c.CreatedAt,
			UpdatedAt:  c.UpdatedAt,
		})
	}
	return entry.Generation, roster, nil
}
