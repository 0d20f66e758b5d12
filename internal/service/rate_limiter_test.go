package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisEvaler struct {
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
	result     int64
	err        error
}

func (m *mockRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	cmd.SetVal(m.result)
	return cmd
}

func TestMemoryRequestLimiter(t *testing.T) {
	l := NewMemoryRequestLimiter(time.Minute, 2).(*memoryRequestLimiter)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("Member@TTU.edu") || !l.Allow("member@ttu.edu ") {
		t.Fatalf("expected first two requests to pass")
	}
	if l.Allow("member@ttu.edu") {
		t.Fatalf("expected third request in window to be denied")
	}
	if !l.Allow("other@ttu.edu") {
		t.Fatalf("expected independent keys")
	}

	now = now.Add(61 * time.Second)
	if !l.Allow("member@ttu.edu") {
		t.Fatalf("expected window to slide")
	}
	if l.Allow("   ") {
		t.Fatalf("expected empty key to be rejected")
	}
}

func TestRedisRequestLimiterAllow(t *testing.T) {
	t.Run("nil client returns nil limiter", func(t *testing.T) {
		if NewRedisRequestLimiter(nil, "forgot", time.Minute, 3) != nil {
			t.Fatalf("expected nil limiter")
		}
	})

	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisRequestLimiter
		if !l.Allow("user@example.com") {
			t.Fatalf("expected fail-open for nil limiter")
		}
	})

	t.Run("empty key rejected", func(t *testing.T) {
		l := NewRedisRequestLimiter(&mockRedisEvaler{result: 1}, "forgot", time.Minute, 3)
		if l.Allow("   ") {
			t.Fatalf("expected empty key to be rejected")
		}
	})

	t.Run("allow when count within max", func(t *testing.T) {
		mock := &mockRedisEvaler{result: 2}
		l := NewRedisRequestLimiter(mock, "forgot", 2*time.Minute, 3)
		if !l.Allow(" User@Example.com ") {
			t.Fatalf("expected allow when count <= max")
		}
		if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "acm:rl:forgot:user@example.com" {
			t.Fatalf("unexpected key normalization, got %+v", mock.lastKeys)
		}
		if len(mock.lastArgs) != 1 || mock.lastArgs[0] != 120 {
			t.Fatalf("expected TTL seconds=120, got %+v", mock.lastArgs)
		}
		if mock.lastScript != redisAllowScript {
			t.Fatalf("expected script to match")
		}
	})

	t.Run("deny when count exceeds max", func(t *testing.T) {
		l := NewRedisRequestLimiter(&mockRedisEvaler{result: 4}, "contact", time.Minute, 3)
		if l.Allow("user@example.com") {
			t.Fatalf("expected deny when count > max")
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := NewRedisRequestLimiter(&mockRedisEvaler{err: errors.New("redis down")}, "forgot", time.Minute, 3)
		if !l.Allow("user@example.com") {
			t.Fatalf("expected fail-open on redis errors")
		}
	})
}
