package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	allowed, count, err := client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatalf("expected allowed on first request")
	}
	if count != 1 {
		t.Fatalf("expected counter 1 got %d", count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expected expire for first increment")
	}

	allowed, count, err = client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 2 {
		t.Fatalf("unexpected second call state allowed=%v count=%d", allowed, count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expire should not be set again")
	}

	allowed, _, err = client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("expected limit reached")
	}
}

func TestPresenceLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	seen := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	if err := client.SetPresence(ctx, "user-1", seen); err != nil {
		t.Fatalf("set presence failed: %v", err)
	}
	if err := client.SetPresence(ctx, "user-2", seen.Add(time.Minute)); err != nil {
		t.Fatalf("set presence failed: %v", err)
	}

	got, err := client.GetPresence(ctx, "user-1")
	if err != nil {
		t.Fatalf("get presence failed: %v", err)
	}
	if !got.Equal(seen) {
		t.Fatalf("expected %v got %v", seen, got)
	}

	all, err := client.AllPresence(ctx)
	if err != nil {
		t.Fatalf("all presence failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 entries got %d", len(all))
	}

	if err := client.RemovePresence(ctx, "user-1"); err != nil {
		t.Fatalf("remove presence failed: %v", err)
	}
	got, err = client.GetPresence(ctx, "user-1")
	if err != nil {
		t.Fatalf("get presence after removal failed: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("expected zero time after removal, got %v", got)
	}
}

func TestAllPresenceSkipsBadTimestamps(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	mock.hashes[presenceKey] = map[string]string{
		"user-good": "2026-03-14T09:30:00Z",
		"user-bad":  "not-a-timestamp",
	}
	client := &Client{store: mock}

	all, err := client.AllPresence(ctx)
	if err != nil {
		t.Fatalf("all presence failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 valid entry got %d", len(all))
	}
	if _, ok := all["user-good"]; !ok {
		t.Fatalf("expected user-good to survive")
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.RateLimitKey("scope"); got != "gg:rate_limit:scope" {
		t.Fatalf("unexpected rate limit key %s", got)
	}
	if got := client.CounterKey("hits"); got != "gg:counter:hits" {
		t.Fatalf("unexpected counter key %s", got)
	}
	if got := client.AccessSessionKey("abc"); got != "gg:session:access:abc" {
		t.Fatalf("unexpected session key %s", got)
	}
}

type mockCmdable struct {
	data        map[string]string
	incr        map[string]int64
	hashes      map[string]map[string]string
	expireCalls []expireCall
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data:   make(map[string]string),
		incr:   make(map[string]int64),
		hashes: make(map[string]map[string]string),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: expiration})
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mockCmdable) HSet(ctx context.Context, key string, values ...any) *redis.IntCmd {
	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string)
		m.hashes[key] = h
	}
	var added int64
	for i := 0; i+1 < len(values); i += 2 {
		field := fmt.Sprint(values[i])
		if _, exists := h[field]; !exists {
			added++
		}
		h[field] = fmt.Sprint(values[i+1])
	}
	return redis.NewIntResult(added, nil)
}

func (m *mockCmdable) HGet(ctx context.Context, key, field string) *redis.StringCmd {
	h, ok := m.hashes[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	v, ok := h[field]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	h := m.hashes[key]
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return redis.NewMapStringStringResult(out, nil)
}

func (m *mockCmdable) HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd {
	h, ok := m.hashes[key]
	if !ok {
		return redis.NewIntResult(0, nil)
	}
	var removed int64
	for _, field := range fields {
		if _, exists := h[field]; exists {
			delete(h, field)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}
