package redis

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

func TestCache_SetGetDelete(t *testing.T) {
	client, _ := newTestRedisClient(t)
	cache := NewCache(client, nil)
	ctx := context.Background()

	if err := cache.Set(ctx, "quote:AAPL", []byte("150.00"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	val, err := cache.Get(ctx, "quote:AAPL")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(val) != "150.00" {
		t.Errorf("value = %s, want 150.00", val)
	}

	if err := cache.Delete(ctx, "quote:AAPL"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := cache.Get(ctx, "quote:AAPL"); err != redislib.Nil {
		t.Errorf("expected redis.Nil after delete, got %v", err)
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	client, mr := newTestRedisClient(t)
	cache := NewCache(client, nil)
	ctx := context.Background()

	if err := cache.Set(ctx, "quote:TSLA", []byte("720.50"), time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}

	mr.FastForward(2 * time.Second)

	if _, err := cache.Get(ctx, "quote:TSLA"); err != redislib.Nil {
		t.Errorf("expected redis.Nil after expiry, got %v", err)
	}
}
