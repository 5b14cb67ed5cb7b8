package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	ok, _ := s.Reserve(ctx, "k", time.Minute)
	if !ok {
		t.Fatal("expected first reservation to succeed")
	}
	if ok, _ := s.Reserve(ctx, "k", time.Minute); ok {
		t.Error("expected replay to be rejected")
	}

	now = now.Add(2 * time.Minute)
	if ok, _ := s.Reserve(ctx, "k", time.Minute); !ok {
		t.Error("expected expired key to be reservable")
	}

	if err := s.Release(ctx, "k"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if ok, _ := s.Reserve(ctx, "k", time.Minute); !ok {
		t.Error("expected released key to be reservable")
	}
}

func TestKey(t *testing.T) {
	if got := Key("5551234567", "/splitify.v1.ExpenseService/RecordExpense", "abc"); got != "5551234567|/splitify.v1.ExpenseService/RecordExpense|abc" {
		t.Errorf("unexpected key %q", got)
	}
}

type fakeRedis struct {
	data   map[string]any
	ttl    map[string]time.Duration
	setErr error
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if f.setErr != nil {
		return redis.NewBoolResult(false, f.setErr)
	}
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = value
	f.ttl[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRedis{data: map[string]any{}, ttl: map[string]time.Duration{}}
	s := &RedisStore{client: fake}

	ok, err := s.Reserve(ctx, "k", time.Hour)
	if err != nil || !ok {
		t.Fatalf("expected reservation, got %v, %v", ok, err)
	}
	if fake.ttl[keyPrefix+"k"] != time.Hour {
		t.Errorf("expected namespaced key with ttl, got %v", fake.ttl)
	}
	if ok, _ := s.Reserve(ctx, "k", time.Hour); ok {
		t.Error("expected replay to be rejected")
	}
	if err := s.Release(ctx, "k"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if ok, _ := s.Reserve(ctx, "k", time.Hour); !ok {
		t.Error("expected released key to be reservable")
	}

	fake.setErr = errors.New("connection refused")
	if _, err := s.Reserve(ctx, "other", time.Hour); err == nil {
		t.Error("expected error from redis")
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close without a pool should be a no-op, got %v", err)
	}
}
