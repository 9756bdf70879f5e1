package cache

import (
	"sync"
	"time"
)

// LocalCache 进程内标签缓存
//
// 特点：
// - 互斥锁保护的 map 存储，条目支持 TTL 过期
// - 维护标签到键集合的索引，按标签整体失效
// - 后台定期清理过期条目
//
// 用于开发模式和测试；多实例部署时应使用 Redis 实现。
type LocalCache struct {
	mu      sync.RWMutex
	entries map[string]*localEntry
	tags    map[string]map[string]struct{} // tag -> keys
	ttl     time.Duration
}

type localEntry struct {
	value     []byte
	tags      []string
	expiresAt time.Time
}

// NewLocalCache 创建进程内缓存
//
// 参数:
//   - ttl: 条目默认过期时间
func NewLocalCache(ttl time.Duration) *LocalCache {
	c := &LocalCache{
		entries: make(map[string]*localEntry),
		tags:    make(map[string]map[string]struct{}),
		ttl:     ttl,
	}

	// 启动定期清理
	go c.cleanupLoop()

	return c
}

// Get 获取缓存值，未命中时调用 populate 并写入缓存
func (c *LocalCache) Get(key string, tags []string, populate func() ([]byte, error)) ([]byte, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && time.Now().Before(entry.expiresAt) {
		return entry.value, nil
	}

	value, err := populate()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = &localEntry{
		value:     value,
		tags:      tags,
		expiresAt: time.Now().Add(c.ttl),
	}
	for _, tag := range tags {
		keys, ok := c.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}
	c.mu.Unlock()

	return value, nil
}

// InvalidateTags 删除标签下的全部缓存条目
func (c *LocalCache) InvalidateTags(tags ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, tag := range tags {
		for key := range c.tags[tag] {
			delete(c.entries, key)
		}
		delete(c.tags, tag)
	}
	return nil
}

// removeLocked 删除单个条目并维护标签索引，调用方需持有写锁
func (c *LocalCache) removeLocked(key string, entry *localEntry) {
	delete(c.entries, key)
	for _, tag := range entry.tags {
		if keys, ok := c.tags[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.tags, tag)
			}
		}
	}
}

// cleanupLoop 定期清理过期条目
func (c *LocalCache) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for key, entry := range c.entries {
			if now.After(entry.expiresAt) {
				c.removeLocked(key, entry)
			}
		}
		c.mu.Unlock()
	}
}
