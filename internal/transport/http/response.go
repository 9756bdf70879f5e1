package httptransport

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hmicael/email-api/internal/domain"
)

// 通用错误消息
const (
	MsgInvalidRequest     = "Invalid request body"
	MsgInvalidID          = "Invalid resource id"
	MsgNotFound           = "Resource not found"
	MsgAuthRequired       = "authentication required"
	MsgInvalidCredentials = "Invalid credentials."
	MsgInternalError      = "Internal server error"
)

// JSON 直接输出服务层缓存的序列化结果，
// 保证同一页的重复读取字节级一致。
func JSON(c *gin.Context, payload []byte) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// Success 成功响应（200）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 创建成功响应（201），Location 指向新资源
func Created(c *gin.Context, location string, data interface{}) {
	c.Header("Location", location)
	c.JSON(http.StatusCreated, data)
}

// NoContent 无内容响应（204），用于更新和删除成功
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest 请求参数错误（400）
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": msg})
}

// Violations 字段校验失败响应（400），逐条返回失败的属性和原因
func Violations(c *gin.Context, violations domain.Violations) {
	c.JSON(http.StatusBadRequest, gin.H{"violations": violations})
}

// Unauthorized 未认证错误（401）
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{"message": msg})
}

// Forbidden 无权限错误（403）
func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, gin.H{"message": msg})
}

// NotFound 资源不存在错误（404）
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{"message": msg})
}

// InternalError 服务器内部错误（500）
func InternalError(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, gin.H{"message": msg})
}

// resourceLocation 构造新资源的 Location 头
func resourceLocation(c *gin.Context, id uint) string {
	return fmt.Sprintf("%s/%d", c.Request.URL.Path, id)
}
