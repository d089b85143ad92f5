package slots

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xndbogdan/doctor-appointments-api/pkg/logging"
)

const cacheKeyPrefix = "available_slots"

// DateKeyFormat is the canonical cache date key layout.
const DateKeyFormat = "2006-01-02"

// AvailabilityCache stores a doctor/date's computed available-slot list in
// Redis, TTL-bounded. It is a pure performance layer: a missing entry only
// means "recompute", never "no slots exist". All methods are safe on a nil
// receiver so the service degrades to recomputation when Redis is not
// configured.
type AvailabilityCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewAvailabilityCache creates the cache. A nil client yields a nil cache.
func NewAvailabilityCache(client *redis.Client, ttl time.Duration, logger *logging.Logger) *AvailabilityCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AvailabilityCache{redis: client, ttl: ttl, logger: logger}
}

// Get returns the cached slot list for (doctor, date). Any failure, including
// a corrupt payload, is reported as a miss.
func (c *AvailabilityCache) Get(ctx context.Context, doctorID int64, date string) ([]VirtualSlot, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, cacheKey(doctorID, date)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("availability cache read failed", "error", err, "doctor_id", doctorID, "date", date)
		}
		return nil, false
	}
	var cached []VirtualSlot
	if err := json.Unmarshal(data, &cached); err != nil {
		c.logger.Warn("availability cache payload corrupt", "error", err, "doctor_id", doctorID, "date", date)
		return nil, false
	}
	return cached, true
}

// Set stores the already-sorted, already-filtered slot list verbatim.
func (c *AvailabilityCache) Set(ctx context.Context, doctorID int64, date string, list []VirtualSlot) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("slots: marshal cached slots: %w", err)
	}
	if err := c.redis.Set(ctx, cacheKey(doctorID, date), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("slots: cache set: %w", err)
	}
	return nil
}

// Invalidate drops the single (doctor, date) entry.
func (c *AvailabilityCache) Invalidate(ctx context.Context, doctorID int64, date string) error {
	if c == nil {
		return nil
	}
	if err := c.redis.Del(ctx, cacheKey(doctorID, date)).Err(); err != nil {
		return fmt.Errorf("slots: cache invalidate: %w", err)
	}
	return nil
}

// InvalidateAll removes every cached date for the doctor. Pattern writes use
// this since a pattern can affect unboundedly many future dates.
func (c *AvailabilityCache) InvalidateAll(ctx context.Context, doctorID int64) error {
	if c == nil {
		return nil
	}
	match := fmt.Sprintf("%s:%d:*", cacheKeyPrefix, doctorID)
	iter := c.redis.Scan(ctx, 0, match, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("slots: cache scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("slots: cache invalidate all: %w", err)
	}
	return nil
}

func cacheKey(doctorID int64, date string) string {
	return fmt.Sprintf("%s:%d:%s", cacheKeyPrefix, doctorID, date)
}
