package domain

import "time"

// 角色常量
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// User 后台管理账号
//
// Roles 以 JSON 数组存储，读取时始终补充 ROLE_USER，
// 保证每个账号至少具备基础角色。
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:180;uniqueIndex;not null" json:"email"`
	Roles     []string  `gorm:"serializer:json" json:"roles"`
	Password  string    `gorm:"size:255" json:"-"`
	Name      string    `gorm:"size:30" json:"name"`
	Firstname string    `gorm:"size:30" json:"firstname"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// EffectiveRoles 返回角色列表，始终包含 ROLE_USER
func (u *User) EffectiveRoles() []string {
	roles := make([]string, 0, len(u.Roles)+1)
	seen := map[string]bool{}
	for _, r := range u.Roles {
		if r != "" && !seen[r] {
			roles = append(roles, r)
			seen[r] = true
		}
	}
	if !seen[RoleUser] {
		roles = append(roles, RoleUser)
	}
	return roles
}

// HasRole 判断账号是否具备指定角色
func (u *User) HasRole(role string) bool {
	for _, r := range u.EffectiveRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin 判断账号是否为管理员
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// PasswordResetToken 管理员找回密码的一次性令牌
type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	Token     string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName 指定表名
func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

// Expired 判断令牌是否已过期
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
