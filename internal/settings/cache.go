package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

type SettingCache interface {
	Get(ctx context.Context) (*TaxSetting, error)
	Set(ctx context.Context, setting *TaxSetting) error
	Delete(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")

const taxSettingKey = "settings:tax"

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 5 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) Get(ctx context.Context) (*TaxSetting, error) {
	data, err := r.client.Get(ctx, taxSettingKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var setting TaxSetting
	if err2 := json.Unmarshal(data, &setting); err2 != nil {
		return nil, fmt.Errorf("unmarshal tax setting failed: %w", err2)
	}
	return &setting, nil
}

func (r RedisCache) Set(ctx context.Context, setting *TaxSetting) error {
	data, err := json.Marshal(setting)
	if err != nil {
		return fmt.Errorf("marshal tax setting failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(30)) * time.Second
	ttl := r.baseTTL + jitter
	if ret := r.client.Set(ctx, taxSettingKey, string(data), ttl); ret.Err() != nil {
		return fmt.Errorf("redis set failed: %w", ret.Err())
	}
	return nil
}

func (r RedisCache) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, taxSettingKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
