package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 监控指标
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 资源开通指标
	DomainNamesCreated  prometheus.Counter
	DomainNamesDeleted  prometheus.Counter
	VirtualUsersCreated prometheus.Counter
	VirtualUsersDeleted prometheus.Counter
	AliasesCreated      prometheus.Counter
	AliasesDeleted      prometheus.Counter
	ForwardsCreated     prometheus.Counter
	ForwardsDeleted     prometheus.Counter

	// 通知邮件指标
	EmailsSent   prometheus.Counter
	EmailsFailed prometheus.Counter

	// 缓存指标
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// 错误指标
	ErrorsTotal *prometheus.CounterVec
	PanicsTotal prometheus.Counter
}

// NewMetrics 创建监控指标
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emailapi_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "emailapi_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		DomainNamesCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "emailapi_domain_names_created_total",
				Help: "Total number of domain names created",
			},
		),

		DomainNamesDeleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "emailapi_domain_names_deleted_total",
				Help: "Total number of domain names deleted",
			},
		),

		VirtualUsersCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "emailapi_virtual_users_created_total",
				Help: "Total number of virtual users created",
			},
		),

		VirtualUsersDeleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "emailapi_virtual_users_deleted_total",
				Help: "Total number of virtual users deleted",
			},
		),

		AliasesCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "emailapi_virtual_aliases_created_total",
				Help: "Total number of virtual aliases created",
			},
		),

		AliasesDeleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "emailapi_virtual_aliases_deleted_total",
				Help: "Total number of virtual aliases deleted",
			},
		),

		ForwardsCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "emailapi_virtual_forwards_created_total",
				Help: "Total number of virtual forwards created",
			},
		),

		ForwardsDeleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "emailapi_virtual_forwards_deleted_total",
				Help: "Total number of virtual forwards deleted",
			},
		),

		EmailsSent: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "emailapi_notification_emails_sent_total",
				Help: "Total number of notification emails sent",
			},
		),

		EmailsFailed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "emailapi_notification_emails_failed_total",
				Help: "Total number of notification emails that failed to send",
			},
		),

		CacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emailapi_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"tag"},
		),

		CacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emailapi_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"tag"},
		),

		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emailapi_errors_total",
				Help: "Total number of errors",
			},
			[]string{"type", "component"},
		),

		PanicsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "emailapi_panics_total",
				Help: "Total number of panics",
			},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordError 记录错误
func (m *Metrics) RecordError(errorType, component string) {
	m.ErrorsTotal.WithLabelValues(errorType, component).Inc()
}

// RecordPanic 记录 panic
func (m *Metrics) RecordPanic() {
	m.PanicsTotal.Inc()
}

// RecordEmailSent 记录通知邮件发送成功
func (m *Metrics) RecordEmailSent() {
	m.EmailsSent.Inc()
}

// RecordEmailFailed 记录通知邮件发送失败
func (m *Metrics) RecordEmailFailed() {
	m.EmailsFailed.Inc()
}

// RecordCacheHit 记录缓存命中
func (m *Metrics) RecordCacheHit(tag string) {
	m.CacheHits.WithLabelValues(tag).Inc()
}

// RecordCacheMiss 记录缓存未命中
func (m *Metrics) RecordCacheMiss(tag string) {
	m.CacheMisses.WithLabelValues(tag).Inc()
}

// HTTPHandler 返回 Prometheus HTTP 处理器
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.Handler()
}
