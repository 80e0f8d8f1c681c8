// services/portal/client/cache.go
package client

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/payment-portal/internal/session"
)

// KV is the part of *redis.Client the cache needs.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedLookup keeps found recipients in Redis for ttl. Misses, including
// unknown portals, always go to next.
type CachedLookup struct {
	next session.RecipientLookup
	kv   KV
	ttl  time.Duration
	log  *slog.Logger
}

func NewCachedLookup(log *slog.Logger, next session.RecipientLookup, kv KV, ttl time.Duration) *CachedLookup {
	return &CachedLookup{next: next, kv: kv, ttl: ttl, log: log}
}

func cacheKey(env, portalCode string) string {
	return "recipient:" + env + ":" + portalCode
}

func (c *CachedLookup) Recipient(ctx context.Context, portalCode, env string) (session.Recipient, error) {
	if portalCode == "" {
		return c.next.Recipient(ctx, portalCode, env)
	}
	key := cacheKey(env, portalCode)

	raw, err := c.kv.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var r session.Recipient
		if uerr := json.Unmarshal(raw, &r); uerr == nil && r.ID != "" {
			return r, nil
		}
		c.log.Warn("recipient cache entry unreadable", "key", key)
	case !errors.Is(err, redis.Nil):
		c.log.Warn("recipient cache get failed", "key", key, "err", err)
	}

	r, err := c.next.Recipient(ctx, portalCode, env)
	if err != nil || r.ID == "" {
		return r, err
	}

	b, _ := json.Marshal(r)
	if serr := c.kv.Set(ctx, key, b, c.ttl).Err(); serr != nil {
		c.log.Warn("recipient cache set failed", "key", key, "err", serr)
	}
	return r, nil
}
