package health

import (
	"fmt"
	"net/http"
	"time"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"

	"github.com/hmicael/email-api/internal/domain"
)

// Pinger 可探活的外部依赖（Redis 缓存）
type Pinger interface {
	Ping() error
}

// HealthChecker 健康检查器
type HealthChecker struct {
	health healthcheck.Handler
	store  domain.Store
	cache  Pinger
	logger *zap.Logger
}

// NewHealthChecker 创建健康检查器
//
// cache 为 nil 时跳过缓存检查（进程内缓存无需探活）。
func NewHealthChecker(store domain.Store, cache Pinger, logger *zap.Logger) *HealthChecker {
	hc := &HealthChecker{
		health: healthcheck.NewHandler(),
		store:  store,
		cache:  cache,
		logger: logger,
	}

	hc.addChecks()

	return hc
}

// addChecks 添加健康检查
func (hc *HealthChecker) addChecks() {
	hc.health.AddReadinessCheck("database", func() error {
		return hc.store.Health()
	})

	if hc.cache != nil {
		hc.health.AddReadinessCheck("redis", func() error {
			return hc.cache.Ping()
		})
	}

	// 进程存活即认为 liveness 通过
	hc.health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(1000))
}

// Handler 返回健康检查处理器
func (hc *HealthChecker) Handler() http.Handler {
	return hc.health
}

// CheckHealth 执行健康检查并返回各项结果
func (hc *HealthChecker) CheckHealth() map[string]string {
	results := make(map[string]string)

	if err := hc.store.Health(); err != nil {
		results["database"] = fmt.Sprintf("ERROR: %v", err)
	} else {
		results["database"] = "OK"
	}

	if hc.cache != nil {
		if err := hc.cache.Ping(); err != nil {
			results["redis"] = fmt.Sprintf("ERROR: %v", err)
		} else {
			results["redis"] = "OK"
		}
	} else {
		results["redis"] = "NOT_AVAILABLE"
	}

	results["timestamp"] = time.Now().Format(time.RFC3339)

	return results
}
