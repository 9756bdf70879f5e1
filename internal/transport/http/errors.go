package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/hmicael/email-api/internal/domain"
	"github.com/hmicael/email-api/internal/service"
)

// handleServiceError 把服务层错误映射到 HTTP 响应
//
// 映射规则:
//   - 校验失败集合       -> 400，逐条返回
//   - 引用的域名不存在   -> 404，消息带域名 ID
//   - 资源不存在         -> 404
//   - 找回密码令牌无效   -> 404
//   - 其余               -> 500
func handleServiceError(c *gin.Context, err error) {
	var violations domain.Violations
	if errors.As(err, &violations) {
		Violations(c, violations)
		return
	}

	var domainNotFound *service.DomainNotFoundError
	if errors.As(err, &domainNotFound) {
		NotFound(c, domainNotFound.Error())
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		NotFound(c, MsgNotFound)
	case errors.Is(err, service.ErrInvalidResetToken):
		NotFound(c, service.ErrInvalidResetToken.Error())
	default:
		InternalError(c, MsgInternalError)
	}
}
