package client

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/soulteary/redis-lock/testutil"
)

func TestNewClient(t *testing.T) {
	t.Run("successful creation with mock dialer", func(t *testing.T) {
		mock := testutil.NewMockRedis()
		client, err := NewClient(DefaultConfig().WithAddr("mock").WithDialer(mock.Dialer()))
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		defer client.Close()

		if got := mock.Calls("PING"); got < 1 {
			t.Errorf("NewClient() sent %d PING, want at least 1", got)
		}
	})

	t.Run("empty address error", func(t *testing.T) {
		_, err := NewClient(DefaultConfig().WithAddr(""))
		if err == nil {
			t.Fatal("NewClient() with empty address should return error")
		}
		if err.Error() != "redis address is required" {
			t.Errorf("NewClient() error = %q, want %q", err.Error(), "redis address is required")
		}
	})

	t.Run("connection failure", func(t *testing.T) {
		cfg := DefaultConfig().WithAddr("invalid:6379").WithDialTimeout(100 * time.Millisecond)
		if _, err := NewClient(cfg); err == nil {
			t.Error("NewClient() with invalid address should return error")
		}
	})

	t.Run("ping rejected", func(t *testing.T) {
		mock := testutil.NewMockRedis()
		mock.SetShouldFail(true)
		cfg := DefaultConfig().WithAddr("mock").WithDialer(mock.Dialer()).WithDialTimeout(time.Second)
		if _, err := NewClient(cfg); err == nil {
			t.Error("NewClient() against a failing server should return error")
		}
	})
}

func TestNewClientWithURL(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClientWithURL("redis://" + mr.Addr() + "/0")
	if err != nil {
		t.Fatalf("NewClientWithURL() error = %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, _ := mr.Get("k"); got != "v" {
		t.Errorf("miniredis value = %q, want %q", got, "v")
	}

	if _, err := NewClientWithURL("not a url"); err == nil {
		t.Error("NewClientWithURL() with a bad url should return error")
	}
}

func TestPing(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		client, _ := testutil.NewMockRedisClient()
		defer client.Close()

		if err := Ping(context.Background(), client); err != nil {
			t.Errorf("Ping() error = %v, want nil", err)
		}
	})

	t.Run("nil client error", func(t *testing.T) {
		err := Ping(context.Background(), nil)
		if err == nil {
			t.Fatal("Ping() with nil client should return error")
		}
		if err.Error() != "redis client is nil" {
			t.Errorf("Ping() error = %q, want %q", err.Error(), "redis client is nil")
		}
	})

	t.Run("ping failure", func(t *testing.T) {
		client := redis.NewClient(&redis.Options{
			Addr: "invalid:6379",
		})
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		if err := Ping(ctx, client); err == nil {
			t.Error("Ping() with invalid client should return error")
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		client, _ := testutil.NewMockRedisClient()
		defer client.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := Ping(ctx, client); err == nil {
			t.Error("Ping() with cancelled context should return error")
		}
	})
}

func TestClose(t *testing.T) {
	t.Run("successful close", func(t *testing.T) {
		client, _ := testutil.NewMockRedisClient()
		if err := Close(client); err != nil {
			t.Errorf("Close() error = %v, want nil", err)
		}
	})

	t.Run("nil client", func(t *testing.T) {
		if err := Close(nil); err != nil {
			t.Errorf("Close() with nil client should return nil, got %v", err)
		}
	})
}
