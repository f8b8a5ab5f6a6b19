package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/brightcare/clinic-scheduler/internal/config"
)

// SlotCache keeps computed availability per doctor/day. It is strictly
// best effort: a miss, a marshalling problem or a dead redis never fails
// the request, the caller just recomputes.
type SlotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisClient(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}

func NewSlotCache(rdb *redis.Client) *SlotCache {
	if rdb == nil {
		return nil
	}
	return &SlotCache{
		rdb: rdb,
		ttl: 60 * time.Second,
	}
}

func slotKey(doctorID uint, date time.Time) string {
	return fmt.Sprintf("slots:%d:%s", doctorID, date.Format("2006-01-02"))
}

func (c *SlotCache) Get(ctx context.Context, doctorID uint, date time.Time) ([]string, bool) {
	if c == nil {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, slotKey(doctorID, date)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Println("slot cache get:", err)
		}
		return nil, false
	}

	var slots []string
	if err := json.Unmarshal([]byte(raw), &slots); err != nil {
		return nil, false
	}
	return slots, true
}

func (c *SlotCache) Set(ctx context.Context, doctorID uint, date time.Time, slots []string) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, slotKey(doctorID, date), raw, c.ttl).Err(); err != nil {
		log.Println("slot cache set:", err)
	}
}

// Invalidate drops the cached day after any write that changes which
// slots are free (create, cancel).
func (c *SlotCache) Invalidate(ctx context.Context, doctorID uint, date time.Time) {
	if c == nil {
		return
	}

	if err := c.rdb.Del(ctx, slotKey(doctorID, date)).Err(); err != nil {
		log.Println("slot cache invalidate:", err)
	}
}
