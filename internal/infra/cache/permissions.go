package cache

import (
	"context"
	"encoding/json"
	"time"

	"officine/internal/domain"
	"officine/internal/infra/auth/rbac"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PermissionCache is a read-through cache over a role's permission set with a
// bounded staleness window. It is a convenience layer, never a source of
// truth: any cache failure falls through to the underlying source, so a deny
// can never be minted out of a cache error.
// redisCommands is the slice of the redis client the cache uses. Tests stand
// in a recording fake.
type redisCommands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type PermissionCache struct {
	client redisCommands
	source rbac.PermissionSource
	ttl    time.Duration
	logger *zap.Logger
}

func NewPermissionCache(addr, password string, db int, source rbac.PermissionSource, ttl time.Duration, logger *zap.Logger) *PermissionCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &PermissionCache{client: client, source: source, ttl: ttl, logger: logger}
}

func permKey(tenantID, roleID string) string {
	return "perm:" + tenantID + ":" + roleID
}

func (c *PermissionCache) ListByRole(ctx context.Context, tenantID, roleID string) ([]domain.Permission, error) {
	key := permKey(tenantID, roleID)
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var perms []domain.Permission
		if err := json.Unmarshal(raw, &perms); err == nil {
			return perms, nil
		}
		// Corrupt entry; drop it and reload.
		c.client.Del(ctx, key)
	} else if err != redis.Nil {
		c.logger.Warn("permission cache read failed", zap.Error(err))
	}

	perms, err := c.source.ListByRole(ctx, tenantID, roleID)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(perms); err == nil {
		if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.logger.Warn("permission cache write failed", zap.Error(err))
		}
	}
	return perms, nil
}

// Invalidate drops the cached set for a role, called on every role update so
// staleness never exceeds the TTL and shrinks to zero on known transitions.
func (c *PermissionCache) Invalidate(ctx context.Context, tenantID, roleID string) {
	if err := c.client.Del(ctx, permKey(tenantID, roleID)).Err(); err != nil {
		c.logger.Warn("permission cache invalidate failed", zap.Error(err))
	}
}

var _ rbac.PermissionSource = (*PermissionCache)(nil)
