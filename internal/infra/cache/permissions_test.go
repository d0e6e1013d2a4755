package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"officine/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type setCall struct {
	key   string
	value any
	ttl   time.Duration
}

type fakeRedis struct {
	vals   map[string]string
	getErr error
	sets   []setCall
	dels   []string
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if value, ok := f.vals[key]; ok {
		return redis.NewStringResult(value, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.sets = append(f.sets, setCall{key: key, value: value, ttl: ttl})
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.dels = append(f.dels, keys...)
	return redis.NewIntResult(int64(len(keys)), nil)
}

type countingSource struct {
	perms []domain.Permission
	err   error
	calls int
}

func (s *countingSource) ListByRole(context.Context, string, string) ([]domain.Permission, error) {
	s.calls++
	return s.perms, s.err
}

func newTestCache(client *fakeRedis, source *countingSource) *PermissionCache {
	return &PermissionCache{client: client, source: source, ttl: 30 * time.Second, logger: zap.NewNop()}
}

var cashierPerms = []domain.Permission{
	{Module: domain.ModuleVentes, Action: domain.ActionCreer},
}

func TestPermissionCacheMissLoadsAndStores(t *testing.T) {
	client := &fakeRedis{vals: map[string]string{}}
	source := &countingSource{perms: cashierPerms}
	c := newTestCache(client, source)

	perms, err := c.ListByRole(context.Background(), "owner-1", "role-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("source calls: %d", source.calls)
	}
	if len(perms) != 1 || perms[0].Module != domain.ModuleVentes {
		t.Fatalf("unexpected perms: %v", perms)
	}
	if len(client.sets) != 1 || client.sets[0].key != "perm:owner-1:role-1" {
		t.Fatalf("expected cache write under the role key, got %v", client.sets)
	}
	if client.sets[0].ttl != 30*time.Second {
		t.Fatalf("ttl: %v", client.sets[0].ttl)
	}
}

func TestPermissionCacheHitSkipsSource(t *testing.T) {
	encoded, err := json.Marshal(cashierPerms)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	client := &fakeRedis{vals: map[string]string{"perm:owner-1:role-1": string(encoded)}}
	source := &countingSource{perms: nil}
	c := newTestCache(client, source)

	perms, err := c.ListByRole(context.Background(), "owner-1", "role-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if source.calls != 0 {
		t.Fatalf("cache hit must not consult the source, calls: %d", source.calls)
	}
	if len(perms) != 1 || perms[0].Action != domain.ActionCreer {
		t.Fatalf("unexpected perms: %v", perms)
	}
}

func TestPermissionCacheReadErrorFallsBackToSource(t *testing.T) {
	client := &fakeRedis{getErr: errors.New("redis down")}
	source := &countingSource{perms: cashierPerms}
	c := newTestCache(client, source)

	perms, err := c.ListByRole(context.Background(), "owner-1", "role-1")
	if err != nil {
		t.Fatalf("cache failure must fall through, got %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("source calls: %d", source.calls)
	}
	if len(perms) != 1 {
		t.Fatalf("unexpected perms: %v", perms)
	}
}

func TestPermissionCacheCorruptEntryDroppedAndReloaded(t *testing.T) {
	client := &fakeRedis{vals: map[string]string{"perm:owner-1:role-1": "{not json"}}
	source := &countingSource{perms: cashierPerms}
	c := newTestCache(client, source)

	perms, err := c.ListByRole(context.Background(), "owner-1", "role-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(client.dels) != 1 || client.dels[0] != "perm:owner-1:role-1" {
		t.Fatalf("corrupt entry should be dropped, dels: %v", client.dels)
	}
	if source.calls != 1 {
		t.Fatalf("source calls: %d", source.calls)
	}
	if len(perms) != 1 {
		t.Fatalf("unexpected perms: %v", perms)
	}
}

func TestPermissionCacheSourceErrorPropagates(t *testing.T) {
	client := &fakeRedis{vals: map[string]string{}}
	source := &countingSource{err: errors.New("store down")}
	c := newTestCache(client, source)

	if _, err := c.ListByRole(context.Background(), "owner-1", "role-1"); err == nil {
		t.Fatal("a source failure must surface, never an empty allow set")
	}
	if len(client.sets) != 0 {
		t.Fatalf("nothing should be cached on source failure, sets: %v", client.sets)
	}
}

func TestPermissionCacheInvalidateDeletesKey(t *testing.T) {
	client := &fakeRedis{vals: map[string]string{}}
	c := newTestCache(client, &countingSource{})

	c.Invalidate(context.Background(), "owner-1", "role-1")
	if len(client.dels) != 1 || client.dels[0] != "perm:owner-1:role-1" {
		t.Fatalf("expected the role key deleted, got %v", client.dels)
	}
}
