package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hmicael/email-api/internal/auth"
	"github.com/hmicael/email-api/internal/cache"
	"github.com/hmicael/email-api/internal/domain"
	"github.com/hmicael/email-api/internal/mailer"
)

// 找回密码令牌的随机字节数（十六进制编码后 64 字符）
const resetTokenBytes = 32

// UserService 后台管理账号服务
type UserService struct {
	store    domain.Store
	cache    cache.TagCache
	mailer   mailer.Mailer
	log      *zap.Logger
	resetURL string
	resetTTL time.Duration
}

// NewUserService 创建后台管理账号服务
func NewUserService(
	store domain.Store,
	tagCache cache.TagCache,
	m mailer.Mailer,
	log *zap.Logger,
	resetURL string,
	resetTTL time.Duration,
) *UserService {
	return &UserService{
		store:    store,
		cache:    tagCache,
		mailer:   m,
		log:      log,
		resetURL: resetURL,
		resetTTL: resetTTL,
	}
}

// CreateUserInput 管理账号创建输入
type CreateUserInput struct {
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Roles     []string `json:"roles"`
	Name      string   `json:"name"`
	Firstname string   `json:"firstname"`
}

// UpdateUserInput 管理账号更新输入（不含密码）
type UpdateUserInput struct {
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	Name      string   `json:"name"`
	Firstname string   `json:"firstname"`
}

// List 分页获取管理账号列表（缓存）
func (s *UserService) List(page, limit int) ([]byte, error) {
	key := fmt.Sprintf("listUsers%d-%d", page, limit)
	return s.cache.Get(key, []string{cache.TagUsers}, func() ([]byte, error) {
		users, err := s.store.ListUsers((page-1)*limit, limit)
		if err != nil {
			return nil, err
		}
		total, err := s.store.CountUsers()
		if err != nil {
			return nil, err
		}

		views := make([]UserView, 0, len(users))
		for i := range users {
			views = append(views, toUserView(&users[i]))
		}
		return json.Marshal(Page{Page: page, Limit: limit, Total: total, Data: views})
	})
}

// Get 按 ID 获取管理账号
func (s *UserService) Get(id uint) (*UserView, error) {
	u, err := s.store.GetUser(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	view := toUserView(u)
	return &view, nil
}

// Search 按邮箱搜索管理账号（不缓存）
func (s *UserService) Search(keyword string) ([]UserView, error) {
	users, err := s.store.SearchUsers(keyword)
	if err != nil {
		return nil, err
	}
	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, toUserView(&users[i]))
	}
	return views, nil
}

// Create 创建管理账号
//
// 邮箱统一存成小写，登录时的大小写无关匹配依赖这一点。
func (s *UserService) Create(input CreateUserInput) (*UserView, error) {
	u := &domain.User{
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Roles:     input.Roles,
		Name:      input.Name,
		Firstname: input.Firstname,
	}

	var violations domain.Violations
	if err := u.Validate(); err != nil {
		errors.As(err, &violations)
	}
	if !domain.StrongPassword(input.Password) {
		violations = append(violations, domain.Violation{
			Property: "password",
			Message:  "Password must be at least 8 characters long and mix letters with numbers or contain a special character",
		})
	}
	if err := violations.AsError(); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateTags(cache.TagUsers); err != nil {
		return nil, fmt.Errorf("failed to invalidate cache: %w", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	u.Password = hash

	if err := s.store.SaveUser(u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Violations{{Property: "email", Message: "This value is already used"}}
		}
		return nil, err
	}

	s.log.Info("user created", zap.Uint("id", u.ID), zap.String("email", u.Email))

	view := toUserView(u)
	return &view, nil
}

// Update 更新管理账号（不改密码）
func (s *UserService) Update(id uint, input UpdateUserInput) error {
	u, err := s.store.GetUser(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	u.Email = strings.ToLower(strings.TrimSpace(input.Email))
	u.Roles = input.Roles
	u.Name = input.Name
	u.Firstname = input.Firstname

	if err := u.Validate(); err != nil {
		return err
	}

	if err := s.cache.InvalidateTags(cache.TagUsers); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	if err := s.store.SaveUser(u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return domain.Violations{{Property: "email", Message: "This value is already used"}}
		}
		return err
	}

	s.log.Info("user updated", zap.Uint("id", u.ID), zap.String("email", u.Email))
	return nil
}

// Delete 删除管理账号
func (s *UserService) Delete(id uint) error {
	if err := s.cache.InvalidateTags(cache.TagUsers); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	if err := s.store.DeleteUser(id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.log.Info("user deleted", zap.Uint("id", id))
	return nil
}

// ForgotPassword 发起找回密码流程
//
// 为避免账号枚举，邮箱不存在时同样静默返回成功。
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.store.GetUserByEmail(strings.ToLower(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Info("forgot password requested for unknown email", zap.String("email", email))
			return nil
		}
		return err
	}

	token, err := auth.GenerateToken(resetTokenBytes)
	if err != nil {
		return err
	}

	reset := &domain.PasswordResetToken{
		UserID:    u.ID,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(s.resetTTL),
	}
	if err := s.store.SaveResetToken(reset); err != nil {
		return err
	}

	msg, err := mailer.ForgotPasswordMessage(u.Email, s.resetURL, token, s.resetTTL.String())
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send forgot password email: %w", err)
	}

	s.log.Info("forgot password email sent", zap.Uint("userId", u.ID))
	return nil
}

// ResetPassword 用找回密码令牌设置新密码
//
// 令牌一次性有效，成功后立即删除。
func (s *UserService) ResetPassword(token, password string) error {
	reset, err := s.store.GetResetToken(token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if reset.Expired(time.Now().UTC()) {
		_ = s.store.DeleteResetToken(token)
		return ErrInvalidResetToken
	}

	if !domain.StrongPassword(password) {
		return domain.Violations{{
			Property: "password",
			Message:  "Password must be at least 8 characters long and mix letters with numbers or contain a special character",
		}}
	}

	u, err := s.store.GetUser(reset.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.Password = hash

	if err := s.store.SaveUser(u); err != nil {
		return err
	}
	if err := s.store.DeleteResetToken(token); err != nil {
		return err
	}

	s.log.Info("user password reset", zap.Uint("id", u.ID))
	return nil
}

// CleanupExpiredTokens 清理过期的找回密码令牌
func (s *UserService) CleanupExpiredTokens() error {
	n, err := s.store.DeleteExpiredResetTokens(time.Now().UTC())
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Info("expired reset tokens removed", zap.Int("count", n))
	}
	return nil
}
