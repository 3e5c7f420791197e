// internal/storage/redis.go
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix 為帳戶記錄的 key 命名空間。
const DefaultRedisPrefix = "accounts:"

// RedisOptions 為 Redis 後端連線設定。
type RedisOptions struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

// RedisStore 將每筆記錄存成單一 Redis string，key 為 Prefix + 帳戶 key。
// 單一 GET/SET/DEL 在 Redis 端即為原子操作，符合 Store 的單呼叫原子性要求。
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore 建立連線並以 PING 確認可用。
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.Address == "" {
		return nil, errors.New("storage: redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("storage: ping redis %s: %w", opts.Address, err)
	}
	return NewRedisStoreFromClient(client, opts.Prefix), nil
}

// NewRedisStoreFromClient 以既有 client 建立後端；prefix 為空時使用 DefaultRedisPrefix。
func NewRedisStoreFromClient(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(k []byte) string {
	return s.prefix + string(k)
}

func (s *RedisStore) Get(ctx context.Context, key []byte) (Record, error) {
	b, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("storage: redis get %s: %w", key, err)
	}
	return DecodeRecord(b)
}

func (s *RedisStore) Put(ctx context.Context, key []byte, rec Record) error {
	b, err := EncodeRecord(rec)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(key), b, 0).Err(); err != nil {
		return fmt.Errorf("storage: redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key []byte) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("storage: redis del %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
