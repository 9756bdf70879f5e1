package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// 请求 ID 头
const RequestIDHeader = "X-Request-ID"

// RequestID 为每个请求生成或透传请求 ID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set("requestID", id)
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}
