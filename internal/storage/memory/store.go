package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/hmicael/email-api/internal/domain"
)

// Store 内存存储实现
//
// 行为与 GORM 存储保持一致：Get* 找不到返回 domain.ErrNotFound，
// 唯一键冲突返回 domain.ErrDuplicate，删除域名时级联删除其下资源。
// 用于开发模式（不配置数据库时）和服务层测试。
type Store struct {
	mu sync.RWMutex

	domains  map[uint]domain.DomainName
	users    map[uint]domain.VirtualUser
	aliases  map[uint]domain.VirtualAlias
	forwards map[uint]domain.VirtualForward
	admins   map[uint]domain.User
	tokens   map[string]domain.PasswordResetToken

	// 多对多关联：alias/forward ID -> 用户 ID 集合
	aliasUsers   map[uint]map[uint]struct{}
	forwardUsers map[uint]map[uint]struct{}

	nextDomainID  uint
	nextUserID    uint
	nextAliasID   uint
	nextForwardID uint
	nextAdminID   uint
	nextTokenID   uint
}

// NewStore 创建内存存储
func NewStore() *Store {
	return &Store{
		domains:      make(map[uint]domain.DomainName),
		users:        make(map[uint]domain.VirtualUser),
		aliases:      make(map[uint]domain.VirtualAlias),
		forwards:     make(map[uint]domain.VirtualForward),
		admins:       make(map[uint]domain.User),
		tokens:       make(map[string]domain.PasswordResetToken),
		aliasUsers:   make(map[uint]map[uint]struct{}),
		forwardUsers: make(map[uint]map[uint]struct{}),
	}
}

// Health 内存存储始终健康
func (s *Store) Health() error {
	return nil
}

// Close 内存存储无需关闭
func (s *Store) Close() error {
	return nil
}

// containsFold 大小写不敏感的子串匹配
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// paginate 对已排序的切片应用偏移和上限
func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// DeleteExpiredResetTokens 清理过期的找回密码令牌
func (s *Store) DeleteExpiredResetTokens(before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for token, t := range s.tokens {
		if t.ExpiresAt.Before(before) {
			delete(s.tokens, token)
			deleted++
		}
	}
	return deleted, nil
}
