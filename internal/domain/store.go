package domain

import (
	"errors"
	"time"
)

// 存储层通用错误
var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate 唯一键冲突
	ErrDuplicate = errors.New("duplicate record")
)

// Store 聚合所有存储接口
//
// 实现：storage/gorm（MySQL/PostgreSQL）与 storage/memory（开发模式和测试）。
// Save* 方法按主键判断插入或更新；Get* 找不到记录时返回 ErrNotFound；
// 唯一键冲突返回 ErrDuplicate。
type Store interface {
	// ========== DomainName Repository ==========
	SaveDomainName(d *DomainName) error
	GetDomainName(id uint) (*DomainName, error)
	ListDomainNames(offset, limit int) ([]DomainName, error)
	CountDomainNames() (int64, error)
	SearchDomainNames(keyword string) ([]DomainName, error)
	DeleteDomainName(id uint) error

	// ========== VirtualUser Repository ==========
	SaveVirtualUser(u *VirtualUser) error
	GetVirtualUser(id uint) (*VirtualUser, error)
	ListVirtualUsers(offset, limit int) ([]VirtualUser, error)
	CountVirtualUsers() (int64, error)
	SearchVirtualUsers(keyword string, domainNameID uint) ([]VirtualUser, error)
	DeleteVirtualUser(id uint) error

	// ========== VirtualAlias Repository ==========
	SaveVirtualAlias(a *VirtualAlias) error
	GetVirtualAlias(id uint) (*VirtualAlias, error)
	ListVirtualAliases(offset, limit int) ([]VirtualAlias, error)
	CountVirtualAliases() (int64, error)
	SearchVirtualAliases(keyword string, domainNameID uint) ([]VirtualAlias, error)
	DeleteVirtualAlias(id uint) error
	AttachAliasUser(aliasID, userID uint) error
	DetachAliasUser(aliasID, userID uint) error

	// ========== VirtualForward Repository ==========
	SaveVirtualForward(f *VirtualForward) error
	GetVirtualForward(id uint) (*VirtualForward, error)
	ListVirtualForwards(offset, limit int) ([]VirtualForward, error)
	CountVirtualForwards() (int64, error)
	SearchVirtualForwards(keyword string, domainNameID uint) ([]VirtualForward, error)
	DeleteVirtualForward(id uint) error
	AttachForwardUser(forwardID, userID uint) error
	DetachForwardUser(forwardID, userID uint) error

	// ========== User Repository ==========
	SaveUser(u *User) error
	GetUser(id uint) (*User, error)
	GetUserByEmail(email string) (*User, error)
	ListUsers(offset, limit int) ([]User, error)
	CountUsers() (int64, error)
	SearchUsers(keyword string) ([]User, error)
	DeleteUser(id uint) error

	// ========== PasswordResetToken Repository ==========
	SaveResetToken(t *PasswordResetToken) error
	GetResetToken(token string) (*PasswordResetToken, error)
	DeleteResetToken(token string) error
	DeleteExpiredResetTokens(before time.Time) (int, error)

	Health() error
	Close() error
}
