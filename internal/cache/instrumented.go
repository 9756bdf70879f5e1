package cache

import "github.com/hmicael/email-api/internal/monitoring"

// InstrumentedCache 在缓存读取上记录命中/未命中指标
//
// 指标按条目的第一个标签归类。
type InstrumentedCache struct {
	next    TagCache
	metrics *monitoring.Metrics
}

// NewInstrumentedCache 包装一个缓存实例并记录指标
func NewInstrumentedCache(next TagCache, metrics *monitoring.Metrics) *InstrumentedCache {
	return &InstrumentedCache{next: next, metrics: metrics}
}

// Get 委托给底层缓存并记录命中情况
func (c *InstrumentedCache) Get(key string, tags []string, populate func() ([]byte, error)) ([]byte, error) {
	missed := false
	value, err := c.next.Get(key, tags, func() ([]byte, error) {
		missed = true
		return populate()
	})
	if err != nil {
		return nil, err
	}

	tag := ""
	if len(tags) > 0 {
		tag = tags[0]
	}
	if missed {
		c.metrics.RecordCacheMiss(tag)
	} else {
		c.metrics.RecordCacheHit(tag)
	}

	return value, nil
}

// InvalidateTags 委托给底层缓存
func (c *InstrumentedCache) InvalidateTags(tags ...string) error {
	return c.next.InvalidateTags(tags...)
}
