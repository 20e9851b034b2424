package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/domain/ports"
)

// redisSetter is the part of *redis.Client the publisher uses.
type redisSetter interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Close() error
}

// RedisPublisher stores the latest report of each switch under
// <prefix><target>.
type RedisPublisher struct {
	client redisSetter
	prefix string
	ttl    time.Duration
	log    *zap.Logger
}

var _ ports.Publisher = (*RedisPublisher)(nil)

func NewRedisPublisher(addr, password string, db int, prefix string, ttl time.Duration, log *zap.Logger) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return newRedisPublisher(client, prefix, ttl, log)
}

func newRedisPublisher(client redisSetter, prefix string, ttl time.Duration, log *zap.Logger) *RedisPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisPublisher{client: client, prefix: prefix, ttl: ttl, log: log}
}

func (p *RedisPublisher) Publish(ctx context.Context, report entities.InventoryReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report for %s: %w", report.Target, err)
	}
	key := p.prefix + report.Target
	if err := p.client.Set(ctx, key, body, p.ttl).Err(); err != nil {
		return fmt.Errorf("store report for %s: %w", report.Target, err)
	}
	p.log.Debug("report stored", zap.String("key", key), zap.Duration("ttl", p.ttl))
	return nil
}

// Latest returns the stored report of target.
func (p *RedisPublisher) Latest(ctx context.Context, target string) (entities.InventoryReport, error) {
	var report entities.InventoryReport
	raw, err := p.client.Get(ctx, p.prefix+target).Bytes()
	if err == redis.Nil {
		return report, fmt.Errorf("report for %s: %w", target, entities.ErrNotFound)
	}
	if err != nil {
		return report, fmt.Errorf("read report for %s: %w", target, err)
	}
	if err := json.Unmarshal(raw, &report); err != nil {
		return report, fmt.Errorf("decode report for %s: %v: %w", target, err, entities.ErrMalformedPayload)
	}
	return report, nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
