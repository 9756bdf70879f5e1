package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/hmicael/email-api/internal/monitoring"
)

func TestRecoveryHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	// promauto 注册到默认 registry，整个测试进程只创建一次
	metrics := monitoring.NewMetrics()

	t.Run("panic 返回 500 并计入指标", func(t *testing.T) {
		router := gin.New()
		router.Use(RecoveryHandler(zap.NewNop(), metrics))
		router.GET("/boom", func(c *gin.Context) {
			panic("boom")
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "internal server error")
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.PanicsTotal))
	})

	t.Run("metrics 为 nil 时只记日志", func(t *testing.T) {
		router := gin.New()
		router.Use(RecoveryHandler(zap.NewNop(), nil))
		router.GET("/boom", func(c *gin.Context) {
			panic("boom")
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
