package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hmicael/email-api/internal/auth"
	"github.com/hmicael/email-api/internal/cache"
	"github.com/hmicael/email-api/internal/domain"
	"github.com/hmicael/email-api/internal/mailer"
)

// 重置密码生成的随机密码长度
const generatedPasswordLength = 12

// VirtualUserService 虚拟邮箱用户管理服务
type VirtualUserService struct {
	store    domain.Store
	cache    cache.TagCache
	enforcer *DomainEnforcer
	mailer   mailer.Mailer
	log      *zap.Logger
}

// NewVirtualUserService 创建虚拟邮箱用户管理服务
func NewVirtualUserService(
	store domain.Store,
	tagCache cache.TagCache,
	enforcer *DomainEnforcer,
	m mailer.Mailer,
	log *zap.Logger,
) *VirtualUserService {
	return &VirtualUserService{
		store:    store,
		cache:    tagCache,
		enforcer: enforcer,
		mailer:   m,
		log:      log,
	}
}

// CreateVirtualUserInput 虚拟用户创建输入
type CreateVirtualUserInput struct {
	Name         string `json:"name"`
	Firstname    string `json:"firstname"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	DomainNameID uint   `json:"domainNameId"`
}

// UpdateVirtualUserInput 虚拟用户更新输入（不含密码）
type UpdateVirtualUserInput struct {
	Name         string `json:"name"`
	Firstname    string `json:"firstname"`
	Email        string `json:"email"`
	DomainNameID uint   `json:"domainNameId"`
}

// List 分页获取虚拟用户列表（缓存）
func (s *VirtualUserService) List(page, limit int) ([]byte, error) {
	key := fmt.Sprintf("listVirtualUsers%d-%d", page, limit)
	return s.cache.Get(key, []string{cache.TagVirtualUsers}, func() ([]byte, error) {
		users, err := s.store.ListVirtualUsers((page-1)*limit, limit)
		if err != nil {
			return nil, err
		}
		total, err := s.store.CountVirtualUsers()
		if err != nil {
			return nil, err
		}

		views := make([]VirtualUserView, 0, len(users))
		for i := range users {
			views = append(views, toVirtualUserView(&users[i]))
		}
		return json.Marshal(Page{Page: page, Limit: limit, Total: total, Data: views})
	})
}

// Get 按 ID 获取虚拟用户详情
func (s *VirtualUserService) Get(id uint) (*VirtualUserDetail, error) {
	u, err := s.store.GetVirtualUser(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toVirtualUserDetail(u), nil
}

// Search 按关键字搜索虚拟用户，可选按域名过滤（不缓存）
func (s *VirtualUserService) Search(keyword string, domainNameID uint) ([]VirtualUserView, error) {
	users, err := s.store.SearchVirtualUsers(keyword, domainNameID)
	if err != nil {
		return nil, err
	}
	views := make([]VirtualUserView, 0, len(users))
	for i := range users {
		views = append(views, toVirtualUserView(&users[i]))
	}
	return views, nil
}

// Create 创建虚拟用户
//
// 流程：字段校验 → 域名一致性改写 → 缓存失效 → 密码哈希并落库 →
// 发送带明文密码的开通邮件。明文密码只在这封邮件里出现一次。
func (s *VirtualUserService) Create(ctx context.Context, input CreateVirtualUserInput) (*VirtualUserDetail, error) {
	u := &domain.VirtualUser{
		Name:         input.Name,
		Firstname:    input.Firstname,
		Email:        input.Email,
		DomainNameID: input.DomainNameID,
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

	email, d, err := s.enforcer.Enforce(u.Email, u.DomainNameID)
	if err != nil {
		if errors.Is(err, ErrMalformedAddress) {
			return nil, domain.Violations{{Property: "email", Message: "This value is not a valid email address"}}
		}
		return nil, err
	}
	if err := checkRewrittenLength("email", email); err != nil {
		return nil, err
	}
	u.Email = email
	u.Maildir = Maildir(d, email)

	if err := s.cache.InvalidateTags(cache.TagVirtualUsers); err != nil {
		return nil, fmt.Errorf("failed to invalidate cache: %w", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	u.Password = hash

	if err := s.store.SaveVirtualUser(u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Violations{{Property: "email", Message: "This value is already used"}}
		}
		return nil, err
	}

	msg, err := mailer.NewAccountMessage(u.Name, u.Firstname, u.Email, input.Password)
	if err != nil {
		return nil, err
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send account creation email: %w", err)
	}

	s.log.Info("virtual user created",
		zap.Uint("id", u.ID),
		zap.String("email", u.Email),
		zap.String("domain", d.Name),
	)

	created, err := s.store.GetVirtualUser(u.ID)
	if err != nil {
		return nil, err
	}
	return toVirtualUserDetail(created), nil
}

// Update 更新虚拟用户（不改密码）
func (s *VirtualUserService) Update(id uint, input UpdateVirtualUserInput) error {
	u, err := s.store.GetVirtualUser(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	u.Name = input.Name
	u.Firstname = input.Firstname
	u.Email = input.Email
	u.DomainNameID = input.DomainNameID

	if err := u.Validate(); err != nil {
		return err
	}

	email, d, err := s.enforcer.Enforce(u.Email, u.DomainNameID)
	if err != nil {
		if errors.Is(err, ErrMalformedAddress) {
			return domain.Violations{{Property: "email", Message: "This value is not a valid email address"}}
		}
		return err
	}
	if err := checkRewrittenLength("email", email); err != nil {
		return err
	}
	u.Email = email
	u.Maildir = Maildir(d, email)

	if err := s.cache.InvalidateTags(cache.TagVirtualUsers); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	if err := s.store.SaveVirtualUser(u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return domain.Violations{{Property: "email", Message: "This value is already used"}}
		}
		return err
	}

	s.log.Info("virtual user updated", zap.Uint("id", u.ID), zap.String("email", u.Email))
	return nil
}

// ResetPassword 重置虚拟用户密码
//
// 生成随机密码并发送通知邮件。密码不是列表字段，列表缓存不失效。
func (s *VirtualUserService) ResetPassword(ctx context.Context, id uint) error {
	u, err := s.store.GetVirtualUser(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	password, err := auth.RandomPassword(generatedPasswordLength)
	if err != nil {
		return fmt.Errorf("failed to generate password: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.Password = hash

	if err := s.store.SaveVirtualUser(u); err != nil {
		return err
	}

	msg, err := mailer.PasswordResetMessage(u.Name, u.Firstname, u.Email, password)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	s.log.Info("virtual user password reset", zap.Uint("id", u.ID), zap.String("email", u.Email))
	return nil
}

// Delete 删除虚拟用户
func (s *VirtualUserService) Delete(id uint) error {
	if err := s.cache.InvalidateTags(cache.TagVirtualUsers); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	if err := s.store.DeleteVirtualUser(id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.log.Info("virtual user deleted", zap.Uint("id", id))
	return nil
}
