package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// 字段长度限制
const (
	MaxDomainNameLength = 20
	MaxNameLength       = 20
	MaxFirstnameLength  = 30
	MaxAddressLength    = 30
	MaxUserEmailLength  = 180
	MaxUserNameLength   = 30
	MinPasswordLength   = 8
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Violation 单条字段校验失败
type Violation struct {
	Property string `json:"property"`
	Message  string `json:"message"`
}

// Violations 校验失败集合，作为 error 在服务层向上传递
type Violations []Violation

func (v Violations) Error() string {
	msgs := make([]string, len(v))
	for i, violation := range v {
		msgs[i] = violation.Property + ": " + violation.Message
	}
	return strings.Join(msgs, "; ")
}

// add 追加一条校验失败
func (v *Violations) add(property, message string) {
	*v = append(*v, Violation{Property: property, Message: message})
}

// AsError 集合为空时返回 nil
func (v Violations) AsError() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// ValidEmail 判断地址是否为合法邮箱格式
func ValidEmail(address string) bool {
	return emailRegex.MatchString(address)
}

// SplitAddress 把邮箱地址拆为本地部分和域名部分。
// 没有 @ 或两侧为空时返回 false。
func SplitAddress(address string) (local, domain string, ok bool) {
	at := strings.LastIndex(address, "@")
	if at <= 0 || at == len(address)-1 {
		return "", "", false
	}
	return address[:at], address[at+1:], true
}

// StrongPassword 校验明文密码强度：
// 至少 8 个字符，且包含字母和数字的组合或至少一个特殊字符。
func StrongPassword(password string) bool {
	if len(password) < MinPasswordLength {
		return false
	}
	var hasLetter, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(`,<>+?)(-/;.!@#$%^&*`, r):
			hasSpecial = true
		}
	}
	return (hasLetter && hasDigit) || hasSpecial
}

// Validate 校验域名实体
func (d *DomainName) Validate() error {
	var v Violations
	name := strings.TrimSpace(d.Name)
	if name == "" {
		v.add("name", "This value should not be blank")
	}
	if len(name) > MaxDomainNameLength {
		v.add("name", fmt.Sprintf("This value is too long. It should have %d characters or less", MaxDomainNameLength))
	}
	return v.AsError()
}

// Validate 校验虚拟用户实体（不含密码，密码在创建输入上单独校验）
func (u *VirtualUser) Validate() error {
	var v Violations
	if strings.TrimSpace(u.Name) == "" {
		v.add("name", "This value should not be blank")
	}
	if len(u.Name) > MaxNameLength {
		v.add("name", fmt.Sprintf("This value is too long. It should have %d characters or less", MaxNameLength))
	}
	if len(u.Firstname) > MaxFirstnameLength {
		v.add("firstname", fmt.Sprintf("This value is too long. It should have %d characters or less", MaxFirstnameLength))
	}
	if strings.TrimSpace(u.Email) == "" {
		v.add("email", "This value should not be blank")
	} else if !ValidEmail(u.Email) {
		v.add("email", "This value is not a valid email address")
	}
	if len(u.Email) > MaxAddressLength {
		v.add("email", fmt.Sprintf("This value is too long. It should have %d characters or less", MaxAddressLength))
	}
	if u.DomainNameID == 0 {
		v.add("domainName", "This value should not be blank")
	}
	return v.AsError()
}

// Validate 校验别名实体
func (a *VirtualAlias) Validate() error {
	return validateSource(a.Source, a.DomainNameID)
}

// Validate 校验转发实体
func (f *VirtualForward) Validate() error {
	return validateSource(f.Source, f.DomainNameID)
}

func validateSource(source string, domainNameID uint) error {
	var v Violations
	if strings.TrimSpace(source) == "" {
		v.add("source", "This value should not be blank")
	} else if !ValidEmail(source) {
		v.add("source", "This value is not a valid email address")
	}
	if len(source) > MaxAddressLength {
		v.add("source", fmt.Sprintf("This value is too long. It should have %d characters or less", MaxAddressLength))
	}
	if domainNameID == 0 {
		v.add("domainName", "This value should not be blank")
	}
	return v.AsError()
}

// Validate 校验管理账号实体
func (u *User) Validate() error {
	var v Violations
	if strings.TrimSpace(u.Email) == "" {
		v.add("email", "This value should not be blank")
	} else if !ValidEmail(u.Email) {
		v.add("email", "This value is not a valid email address")
	}
	if len(u.Email) > MaxUserEmailLength {
		v.add("email", fmt.Sprintf("This value is too long. It should have %d characters or less", MaxUserEmailLength))
	}
	if len(u.Name) > MaxUserNameLength {
		v.add("name", fmt.Sprintf("This value is too long. It should have %d characters or less", MaxUserNameLength))
	}
	if len(u.Firstname) > MaxFirstnameLength {
		v.add("firstname", fmt.Sprintf("This value is too long. It should have %d characters or less", MaxFirstnameLength))
	}
	return v.AsError()
}
