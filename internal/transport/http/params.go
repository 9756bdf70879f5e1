package httptransport

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hmicael/email-api/internal/config"
)

// paramID 解析路径中的数字 ID
func paramID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// searchRequest 搜索请求体，domainNameId 为 0 时不过滤域名
type searchRequest struct {
	Keyword      string `json:"keyword" binding:"required"`
	DomainNameID uint   `json:"domainNameId"`
}

// pagination 解析分页参数，越界时回落到配置的默认值
func pagination(c *gin.Context, cfg config.APIConfig) (page, limit int) {
	page = cfg.DefaultPage
	limit = cfg.DefaultLimit

	if raw := c.Query("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			page = v
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	return page, limit
}
