package redis_client

import (
	"context"

	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// NewClient builds a client without touching the network. go-redis dials
// on the first command.
func NewClient(cnf Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        cnf.Addr(),
		Password:    cnf.Password,
		DB:          cnf.DB,
		DialTimeout: cnf.DialTimeout,
	})
}

// NewRedis builds a client and verifies the connection with PING.
func NewRedis(ctx context.Context, cnf Config, logger *zap.Logger) (*redis.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := NewClient(cnf)
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	logger.Debug("redis connected", append(redisConfigLogFields(cnf), zap.String("pong", pong))...)
	return client, nil
}

func redisConfigLogFields(cnf Config) []zap.Field {
	return []zap.Field{
		zap.String("addr", cnf.Addr()),
		zap.Int("db", cnf.DB),
		zap.String("password", redactedPassword(cnf.Password)),
	}
}

func redactedPassword(password string) string {
	if password == "" {
		return "<empty>"
	}
	return "[REDACTED]"
}
