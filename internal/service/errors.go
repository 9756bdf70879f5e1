package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 资源不存在
	ErrNotFound = errors.New("resource not found")
	// ErrMalformedAddress 地址缺少本地部分或域名部分
	ErrMalformedAddress = errors.New("address must contain a local part and a domain")
	// ErrInvalidResetToken 找回密码令牌无效或已过期
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)

// DomainNotFoundError 引用的域名不存在
//
// 错误消息随响应原样返回，必须带上请求中的域名 ID。
type DomainNotFoundError struct {
	ID uint
}

func (e *DomainNotFoundError) Error() string {
	return fmt.Sprintf("Domain id %d doesn't exist", e.ID)
}
