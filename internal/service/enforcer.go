package service

import (
	"errors"
	"fmt"

	"github.com/hmicael/email-api/internal/domain"
)

// DomainEnforcer 域名一致性约束
//
// 邮箱地址和别名、转发的来源地址必须落在所属域名下。
// Enforce 把地址的域名部分改写成所属域名的名称，调用方用返回值落库，
// 不信任请求里写的域名后缀。
type DomainEnforcer struct {
	store domain.Store
}

// NewDomainEnforcer 创建域名一致性约束
func NewDomainEnforcer(store domain.Store) *DomainEnforcer {
	return &DomainEnforcer{store: store}
}

// Enforce 校验域名存在并改写地址的域名后缀
//
// 返回值:
//   - string: 改写后的地址（"<local>@<domainName>"）
//   - *domain.DomainName: 所属域名
//   - error: 域名不存在时为 *DomainNotFoundError，地址没有 @ 时为 ErrMalformedAddress
func (e *DomainEnforcer) Enforce(address string, domainNameID uint) (string, *domain.DomainName, error) {
	d, err := e.store.GetDomainName(domainNameID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, &DomainNotFoundError{ID: domainNameID}
		}
		return "", nil, err
	}

	local, _, ok := domain.SplitAddress(address)
	if !ok {
		return "", nil, ErrMalformedAddress
	}

	return local + "@" + d.Name, d, nil
}

// checkRewrittenLength 校验改写后的地址长度
//
// 改写把域名后缀换成所属域名的名称，可能让本来合法的输入超长，
// 所以长度在改写之后还要查一次。
func checkRewrittenLength(property, address string) error {
	if len(address) > domain.MaxAddressLength {
		return domain.Violations{{
			Property: property,
			Message:  fmt.Sprintf("This value is too long. It should have %d characters or less", domain.MaxAddressLength),
		}}
	}
	return nil
}

// Maildir 根据域名和地址推导邮箱目录（"<domain>/<local>/"）
func Maildir(d *domain.DomainName, address string) string {
	local, _, ok := domain.SplitAddress(address)
	if !ok {
		return ""
	}
	return d.Name + "/" + local + "/"
}
