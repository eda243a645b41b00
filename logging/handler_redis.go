package logging

import (
	"context"
	"fmt"
	"time"

	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap/zapcore"

	"github.com/leeforge/logprovider/redis_client"
)

// RedisOptions configures the redis handler. Records are pushed onto the
// list Key. A positive CapSize trims the list to its newest entries.
type RedisOptions struct {
	HandlerOptions      `mapstructure:",squash"`
	redis_client.Config `mapstructure:",squash"`
	Key                 string        `mapstructure:"key" json:"key" yaml:"key" validate:"required"`
	CapSize             int64         `mapstructure:"cap_size" json:"capSize" yaml:"cap_size" validate:"gte=0"`
	WriteTimeout        time.Duration `mapstructure:"write_timeout" json:"writeTimeout" yaml:"write_timeout" default:"3s"`
}

// RedisHandler appends JSON records to a Redis list.
type RedisHandler struct {
	BaseHandler
	client  redis.Cmdable
	closer  func() error
	key     string
	capSize int64
	timeout time.Duration
}

// NewRedisHandler builds its own client from opts. The client is closed by Close.
func NewRedisHandler(opts RedisOptions) (*RedisHandler, error) {
	client := redis_client.NewClient(opts.Config)
	h, err := NewRedisHandlerWithClient(client, opts)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	h.closer = client.Close
	return h, nil
}

// NewRedisHandlerWithClient uses a caller owned client. Close leaves it open.
func NewRedisHandlerWithClient(client redis.Cmdable, opts RedisOptions) (*RedisHandler, error) {
	if client == nil {
		return nil, fmt.Errorf("redis handler: client is nil")
	}
	if opts.Key == "" {
		return nil, fmt.Errorf("redis handler: key is required")
	}
	h := &RedisHandler{
		client:  client,
		key:     opts.Key,
		capSize: opts.CapSize,
		timeout: opts.WriteTimeout,
	}
	if err := h.init(opts.HandlerOptions, NewJSONFormatter(DefaultFormatterConfig())); err != nil {
		return nil, err
	}
	return h, nil
}

// Key returns the list the handler pushes to.
func (h *RedisHandler) Key() string {
	return h.key
}

func (h *RedisHandler) Handle(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := h.encode(ent, fields)
	if err != nil {
		return err
	}
	defer buf.Free()

	ctx := context.Background()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	if h.capSize <= 0 {
		return h.client.RPush(ctx, h.key, buf.String()).Err()
	}

	_, err = h.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, h.key, buf.String())
		pipe.LTrim(ctx, h.key, -h.capSize, -1)
		return nil
	})
	return err
}

func (h *RedisHandler) Sync() error { return nil }

func (h *RedisHandler) Close() error {
	if h.closer == nil {
		return nil
	}
	return h.closer()
}

func newRedisHandlerFromParams(params map[string]any) (Handler, error) {
	var opts RedisOptions
	if err := decodeParams(params, &opts); err != nil {
		return nil, err
	}
	return NewRedisHandler(opts)
}
