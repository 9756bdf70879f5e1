package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitAddress(t *testing.T) {
	t.Run("正常地址拆分成功", func(t *testing.T) {
		local, domainPart, ok := SplitAddress("contact@example.com")
		assert.True(t, ok)
		assert.Equal(t, "contact", local)
		assert.Equal(t, "example.com", domainPart)
	})

	t.Run("本地部分包含@时按最后一个@拆分", func(t *testing.T) {
		local, domainPart, ok := SplitAddress("a@b@example.com")
		assert.True(t, ok)
		assert.Equal(t, "a@b", local)
		assert.Equal(t, "example.com", domainPart)
	})

	t.Run("没有@的地址拆分失败", func(t *testing.T) {
		_, _, ok := SplitAddress("not-an-address")
		assert.False(t, ok)
	})

	t.Run("缺少本地部分或域名部分拆分失败", func(t *testing.T) {
		_, _, ok := SplitAddress("@example.com")
		assert.False(t, ok)
		_, _, ok = SplitAddress("contact@")
		assert.False(t, ok)
	})
}

func TestStrongPassword(t *testing.T) {
	t.Run("字母加数字通过", func(t *testing.T) {
		assert.True(t, StrongPassword("abcdef12"))
	})

	t.Run("包含特殊字符通过", func(t *testing.T) {
		assert.True(t, StrongPassword("abcdefg!"))
	})

	t.Run("纯字母不通过", func(t *testing.T) {
		assert.False(t, StrongPassword("abcdefgh"))
	})

	t.Run("长度不足不通过", func(t *testing.T) {
		assert.False(t, StrongPassword("ab12!"))
	})
}

func TestDomainNameValidate(t *testing.T) {
	t.Run("合法域名通过", func(t *testing.T) {
		d := &DomainName{Name: "example.com"}
		assert.NoError(t, d.Validate())
	})

	t.Run("空名称返回违规", func(t *testing.T) {
		d := &DomainName{Name: "  "}
		err := d.Validate()
		assert.Error(t, err)

		var violations Violations
		assert.ErrorAs(t, err, &violations)
		assert.Equal(t, "name", violations[0].Property)
	})

	t.Run("超长名称返回违规", func(t *testing.T) {
		d := &DomainName{Name: "really-long-domain-name.example.com"}
		assert.Error(t, d.Validate())
	})
}

func TestVirtualUserValidate(t *testing.T) {
	t.Run("完整字段通过", func(t *testing.T) {
		u := &VirtualUser{Name: "doe", Email: "doe@example.com", DomainNameID: 1}
		assert.NoError(t, u.Validate())
	})

	t.Run("非法邮箱返回违规", func(t *testing.T) {
		u := &VirtualUser{Name: "doe", Email: "not-an-email", DomainNameID: 1}
		err := u.Validate()
		assert.Error(t, err)

		var violations Violations
		assert.ErrorAs(t, err, &violations)
		assert.Equal(t, "email", violations[0].Property)
	})

	t.Run("缺少域名返回违规", func(t *testing.T) {
		u := &VirtualUser{Name: "doe", Email: "doe@example.com"}
		err := u.Validate()
		assert.Error(t, err)

		var violations Violations
		assert.ErrorAs(t, err, &violations)
		assert.Equal(t, "domainName", violations[0].Property)
	})
}

func TestVirtualAliasValidate(t *testing.T) {
	t.Run("合法来源通过", func(t *testing.T) {
		a := &VirtualAlias{Source: "sales@example.com", DomainNameID: 1}
		assert.NoError(t, a.Validate())
	})

	t.Run("空来源同时报两条违规", func(t *testing.T) {
		a := &VirtualAlias{}
		err := a.Validate()
		assert.Error(t, err)

		var violations Violations
		assert.ErrorAs(t, err, &violations)
		assert.Len(t, violations, 2)
	})
}

func TestUserEffectiveRoles(t *testing.T) {
	t.Run("始终包含基础角色", func(t *testing.T) {
		u := &User{}
		assert.Contains(t, u.EffectiveRoles(), RoleUser)
	})

	t.Run("管理员保留两个角色", func(t *testing.T) {
		u := &User{Roles: []string{RoleAdmin}}
		roles := u.EffectiveRoles()
		assert.Contains(t, roles, RoleAdmin)
		assert.Contains(t, roles, RoleUser)
		assert.True(t, u.IsAdmin())
	})

	t.Run("重复角色去重", func(t *testing.T) {
		u := &User{Roles: []string{RoleUser, RoleUser}}
		assert.Len(t, u.EffectiveRoles(), 1)
	})
}
