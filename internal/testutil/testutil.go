// Package testutil provides shared helpers for integration-style tests.
package testutil

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// TestingTB is the subset of *testing.T used by the helpers. Keeping it
// an interface lets helpers be used from TestMain-style call sites.
type TestingTB interface {
	Helper()
	Logf(format string, args ...any)
	Skip(args ...any)
	Skipf(format string, args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// requireRedis reports whether tests must fail (rather than skip) when
// Redis is unreachable. Set TEST_REQUIRE_REDIS=1 in CI.
func requireRedis() bool {
	return os.Getenv("TEST_REQUIRE_REDIS") == "1"
}

// GetTestRedisAddr returns the Redis address for tests and whether a
// listener was reachable. Controlled by TEST_REDIS_ADDR.
func GetTestRedisAddr(t TestingTB) (string, bool) {
	t.Helper()

	addr := getEnvOrDefault("TEST_REDIS_ADDR", "localhost:6379")
	conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
	if err != nil {
		return addr, false
	}
	if cerr := conn.Close(); cerr != nil {
		t.Logf("warning: failed to close probe connection: %v", cerr)
	}
	return addr, true
}

// SetupTestRedis creates a Redis client for testing. Tests are skipped
// when Redis is not available unless TEST_REQUIRE_REDIS=1.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	addr, ok := GetTestRedisAddr(t)
	if !ok {
		if requireRedis() {
			t.Fatal("Redis not available for testing")
		}
		t.Skip("Redis not available for testing")
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   getTestRedisDB(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			t.Logf("warning: failed to close redis client after ping error: %v", cerr)
		}
		if requireRedis() {
			t.Fatalf("Redis not available for testing at %s: %v", addr, err)
		}
		t.Skipf("Redis not available for testing at %s: %v", addr, err)
	}

	// Start each test from a clean database.
	client.FlushDB(ctx)

	return client
}

func getTestRedisDB() int {
	// DB 15 keeps test keys away from any local development data.
	if os.Getenv("TEST_REDIS_DB") == "0" {
		return 0
	}
	return 15
}
