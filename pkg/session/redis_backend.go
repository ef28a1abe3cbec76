package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend archives records in Redis, suitable for multi-node
// deployments where several engine instances share one archive.
type RedisBackend struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	mu     sync.RWMutex
	closed bool
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string
	// Password is the Redis password (optional).
	Password string
	// DB is the Redis database number.
	DB int
	// Prefix is the key prefix for all archive keys (default: "triagekit:session:").
	Prefix string
	// RecordTTL is the record expiry duration (0 = never expire).
	RecordTTL time.Duration
	// PoolSize is the connection pool size (default: 10).
	PoolSize int
}

// NewRedisBackend creates a Redis archive backend and verifies the
// connection.
func NewRedisBackend(cfg RedisConfig) (*RedisBackend, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: poolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisBackendFromClient(client, cfg.Prefix, cfg.RecordTTL), nil
}

// NewRedisBackendFromClient wraps an existing client. Useful for testing
// with miniredis.
func NewRedisBackendFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisBackend {
	if prefix == "" {
		prefix = "triagekit:session:"
	}
	return &RedisBackend{client: client, prefix: prefix, ttl: ttl}
}

func (b *RedisBackend) recordKey(sessionID string) string {
	return b.prefix + "record:" + sessionID
}

func (b *RedisBackend) customerKey(customerID string) string {
	return b.prefix + "customer:" + customerID
}

// Save implements Backend.
func (b *RedisBackend) Save(ctx context.Context, rec *Record) error {
	if err := b.checkOpen(); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	pipe := b.client.TxPipeline()
	pipe.Set(ctx, b.recordKey(rec.Result.SessionID), data, b.ttl)
	pipe.ZAdd(ctx, b.customerKey(rec.CustomerID), redis.Z{
		Score:  float64(rec.ArchivedAt.Unix()),
		Member: rec.Result.SessionID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

// Load implements Backend.
func (b *RedisBackend) Load(ctx context.Context, sessionID string) (*Record, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	data, err := b.client.Get(ctx, b.recordKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &rec, nil
}

// List implements Backend.
func (b *RedisBackend) List(ctx context.Context, customerID string, limit int) ([]*Record, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	ids, err := b.client.ZRevRange(ctx, b.customerKey(customerID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	records := make([]*Record, 0, len(ids))
	for _, id := range ids {
		rec, err := b.Load(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue // record expired, index entry is stale
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Purge implements Backend. It walks the customer indexes, removing index
// entries and record keys older than the cutoff.
func (b *RedisBackend) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	if err := b.checkOpen(); err != nil {
		return 0, err
	}

	removed := 0
	max := strconv.FormatInt(cutoff.Unix()-1, 10)

	var cursor uint64
	for {
		keys, next, err := b.client.Scan(ctx, cursor, b.prefix+"customer:*", 100).Result()
		if err != nil {
			return removed, fmt.Errorf("scan indexes: %w", err)
		}

		for _, key := range keys {
			ids, err := b.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{Min: "-inf", Max: max}).Result()
			if err != nil {
				return removed, fmt.Errorf("range index %s: %w", key, err)
			}
			for _, id := range ids {
				if err := b.client.Del(ctx, b.recordKey(id)).Err(); err != nil {
					return removed, fmt.Errorf("delete record %s: %w", id, err)
				}
			}
			if len(ids) > 0 {
				if err := b.client.ZRemRangeByScore(ctx, key, "-inf", max).Err(); err != nil {
					return removed, fmt.Errorf("trim index %s: %w", key, err)
				}
				removed += len(ids)
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}
	return removed, nil
}

// Close implements Backend.
func (b *RedisBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.client.Close()
}

func (b *RedisBackend) checkOpen() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	return nil
}
