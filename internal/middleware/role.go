package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole 要求 JWT 声明中包含指定角色
//
// 必须排在 RequireAuth 之后，角色从上下文读取，不回源查库。
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := RolesFromContext(c)
		if len(roles) == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
			c.Abort()
			return
		}

		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"message": "insufficient permissions"})
		c.Abort()
	}
}
