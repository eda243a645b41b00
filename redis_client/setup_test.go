package redis_client

import (
	"context"
	"net"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func fieldValue(fields []zap.Field, key string) string {
	for _, f := range fields {
		if f.Key == key {
			return f.String
		}
	}
	return ""
}

func TestRedisConfigLogFields_RedactsPassword(t *testing.T) {
	config := Config{
		Host:     "127.0.0.1",
		Port:     "6379",
		Password: "super-secret",
		DB:       2,
	}

	if got := fieldValue(redisConfigLogFields(config), "password"); got != "[REDACTED]" {
		t.Fatalf("password field = %q, want redaction marker", got)
	}
}

func TestRedisConfigLogFields_EmptyPassword(t *testing.T) {
	config := Config{Host: "127.0.0.1", Port: "6379"}

	if got := fieldValue(redisConfigLogFields(config), "password"); got != "<empty>" {
		t.Fatalf("password field = %q, want <empty>", got)
	}
}

func integrationRedisConfig(t *testing.T) Config {
	t.Helper()

	addr := strings.TrimSpace(os.Getenv("REDIS_TEST_ADDR"))
	if addr == "" {
		t.Skip("set REDIS_TEST_ADDR to run redis integration tests")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("invalid REDIS_TEST_ADDR %q: %v", addr, err)
	}

	db := 0
	if dbRaw := strings.TrimSpace(os.Getenv("REDIS_TEST_DB")); dbRaw != "" {
		parsed, parseErr := strconv.Atoi(dbRaw)
		if parseErr != nil {
			t.Fatalf("invalid REDIS_TEST_DB %q: %v", dbRaw, parseErr)
		}
		db = parsed
	}

	return Config{
		Host:        host,
		Port:        port,
		Password:    os.Getenv("REDIS_TEST_PASSWORD"),
		DB:          db,
		DialTimeout: 2 * time.Second,
	}
}

func TestNewRedis_ConnectionFailure_UnreachablePort(t *testing.T) {
	config := Config{
		Host:        "127.0.0.1",
		Port:        "1",
		DialTimeout: time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := NewRedis(ctx, config, nil); err == nil {
		t.Fatal("NewRedis() should fail when port is unreachable")
	}
}

func TestNewRedis_ListOperations(t *testing.T) {
	config := integrationRedisConfig(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := NewRedis(ctx, config, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRedis() failed: %v", err)
	}
	defer client.Close()

	key := "logprovider:test:" + strconv.FormatInt(time.Now().UnixNano(), 10)
	defer client.Del(ctx, key)

	if err := client.RPush(ctx, key, "a", "b", "c").Err(); err != nil {
		t.Fatalf("RPush() failed: %v", err)
	}
	if err := client.LTrim(ctx, key, -2, -1).Err(); err != nil {
		t.Fatalf("LTrim() failed: %v", err)
	}

	values, err := client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		t.Fatalf("LRange() failed: %v", err)
	}
	if len(values) != 2 || values[0] != "b" {
		t.Errorf("LRange() = %v, want [b c]", values)
	}
}
