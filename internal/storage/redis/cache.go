package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TagCache Redis 标签缓存实现
//
// 缓存条目以普通键值存储，另外为每个标签维护一个 SET 记录
// 挂在该标签下的键。失效标签时删除 SET 中的全部键和 SET 本身。
type TagCache struct {
	client *redis.Client
	ttl    time.Duration
	ctx    context.Context
}

// NewTagCache 创建 Redis 标签缓存实例
func NewTagCache(addr, password string, db int, ttl time.Duration) (*TagCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: 10,
	})

	ctx := context.Background()

	// 测试连接
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &TagCache{
		client: client,
		ttl:    ttl,
		ctx:    ctx,
	}, nil
}

// NewTagCacheFromClient 用已有客户端创建标签缓存（测试用）
func NewTagCacheFromClient(client *redis.Client, ttl time.Duration) *TagCache {
	return &TagCache{
		client: client,
		ttl:    ttl,
		ctx:    context.Background(),
	}
}

func tagSetKey(tag string) string {
	return "cache:tag:" + tag
}

func entryKey(key string) string {
	return "cache:entry:" + key
}

// Get 获取缓存值，未命中时调用 populate 并写入缓存
func (c *TagCache) Get(key string, tags []string, populate func() ([]byte, error)) ([]byte, error) {
	data, err := c.client.Get(c.ctx, entryKey(key)).Bytes()
	if err == nil {
		return data, nil
	}
	if err != redis.Nil {
		return nil, fmt.Errorf("cache read failed: %w", err)
	}

	value, err := populate()
	if err != nil {
		return nil, err
	}

	pipe := c.client.TxPipeline()
	pipe.Set(c.ctx, entryKey(key), value, c.ttl)
	for _, tag := range tags {
		pipe.SAdd(c.ctx, tagSetKey(tag), entryKey(key))
		// 标签集合比条目晚一点过期，保证失效时还能找到键
		pipe.Expire(c.ctx, tagSetKey(tag), c.ttl+time.Minute)
	}
	if _, err := pipe.Exec(c.ctx); err != nil {
		return nil, fmt.Errorf("cache write failed: %w", err)
	}

	return value, nil
}

// InvalidateTags 删除标签下的全部缓存条目
func (c *TagCache) InvalidateTags(tags ...string) error {
	for _, tag := range tags {
		keys, err := c.client.SMembers(c.ctx, tagSetKey(tag)).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return fmt.Errorf("cache invalidation failed: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(c.ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache invalidation failed: %w", err)
			}
		}
		if err := c.client.Del(c.ctx, tagSetKey(tag)).Err(); err != nil {
			return fmt.Errorf("cache invalidation failed: %w", err)
		}
	}
	return nil
}

// Ping 测试 Redis 连接
func (c *TagCache) Ping() error {
	return c.client.Ping(c.ctx).Err()
}

// Close 关闭 Redis 连接
func (c *TagCache) Close() error {
	return c.client.Close()
}
