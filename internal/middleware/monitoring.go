package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hmicael/email-api/internal/monitoring"
)

// MonitoringMiddleware 监控中间件
type MonitoringMiddleware struct {
	metrics *monitoring.Metrics
}

// NewMonitoringMiddleware 创建监控中间件
func NewMonitoringMiddleware(metrics *monitoring.Metrics) *MonitoringMiddleware {
	return &MonitoringMiddleware{metrics: metrics}
}

// HTTPMetrics HTTP 指标中间件
func (mm *MonitoringMiddleware) HTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		statusCode := strconv.Itoa(c.Writer.Status())

		mm.metrics.RecordHTTPRequest(c.Request.Method, c.FullPath(), statusCode, duration)

		if c.Writer.Status() >= 500 {
			mm.metrics.RecordError("http_error", "http")
		}
	}
}

// BusinessMetrics 业务指标中间件
//
// 按路由统计资源开通和删除次数，只统计成功的写操作。
func (mm *MonitoringMiddleware) BusinessMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusBadRequest {
			return
		}

		created := c.Request.Method == http.MethodPost && status == http.StatusCreated
		deleted := c.Request.Method == http.MethodDelete

		switch c.FullPath() {
		case "/api/domain-names":
			if created {
				mm.metrics.DomainNamesCreated.Inc()
			}
		case "/api/domain-names/:id":
			if deleted {
				mm.metrics.DomainNamesDeleted.Inc()
			}
		case "/api/virtual-users":
			if created {
				mm.metrics.VirtualUsersCreated.Inc()
			}
		case "/api/virtual-users/:id":
			if deleted {
				mm.metrics.VirtualUsersDeleted.Inc()
			}
		case "/api/virtual-aliases":
			if created {
				mm.metrics.AliasesCreated.Inc()
			}
		case "/api/virtual-aliases/:id":
			if deleted {
				mm.metrics.AliasesDeleted.Inc()
			}
		case "/api/virtual-forwards":
			if created {
				mm.metrics.ForwardsCreated.Inc()
			}
		case "/api/virtual-forwards/:id":
			if deleted {
				mm.metrics.ForwardsDeleted.Inc()
			}
		}
	}
}
