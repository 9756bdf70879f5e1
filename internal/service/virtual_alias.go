package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hmicael/email-api/internal/cache"
	"github.com/hmicael/email-api/internal/domain"
)

// VirtualAliasService 别名管理服务
type VirtualAliasService struct {
	store    domain.Store
	cache    cache.TagCache
	enforcer *DomainEnforcer
	log      *zap.Logger
}

// NewVirtualAliasService 创建别名管理服务
func NewVirtualAliasService(store domain.Store, tagCache cache.TagCache, enforcer *DomainEnforcer, log *zap.Logger) *VirtualAliasService {
	return &VirtualAliasService{
		store:    store,
		cache:    tagCache,
		enforcer: enforcer,
		log:      log,
	}
}

// VirtualAliasInput 别名创建/更新输入
type VirtualAliasInput struct {
	Source       string `json:"source"`
	DomainNameID uint   `json:"domainNameId"`
}

// List 分页获取别名列表（缓存）
func (s *VirtualAliasService) List(page, limit int) ([]byte, error) {
	key := fmt.Sprintf("listVirtualAliases%d-%d", page, limit)
	return s.cache.Get(key, []string{cache.TagVirtualAliases}, func() ([]byte, error) {
		aliases, err := s.store.ListVirtualAliases((page-1)*limit, limit)
		if err != nil {
			return nil, err
		}
		total, err := s.store.CountVirtualAliases()
		if err != nil {
			return nil, err
		}

		views := make([]VirtualAliasView, 0, len(aliases))
		for i := range aliases {
			views = append(views, toVirtualAliasView(&aliases[i]))
		}
		return json.Marshal(Page{Page: page, Limit: limit, Total: total, Data: views})
	})
}

// Get 按 ID 获取别名详情
func (s *VirtualAliasService) Get(id uint) (*VirtualAliasDetail, error) {
	a, err := s.store.GetVirtualAlias(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toVirtualAliasDetail(a), nil
}

// Search 按来源地址搜索别名，可选按域名过滤（不缓存）
func (s *VirtualAliasService) Search(keyword string, domainNameID uint) ([]VirtualAliasView, error) {
	aliases, err := s.store.SearchVirtualAliases(keyword, domainNameID)
	if err != nil {
		return nil, err
	}
	views := make([]VirtualAliasView, 0, len(aliases))
	for i := range aliases {
		views = append(views, toVirtualAliasView(&aliases[i]))
	}
	return views, nil
}

// Create 创建别名
func (s *VirtualAliasService) Create(input VirtualAliasInput) (*VirtualAliasDetail, error) {
	a := &domain.VirtualAlias{
		Source:       input.Source,
		DomainNameID: input.DomainNameID,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	source, _, err := s.enforcer.Enforce(a.Source, a.DomainNameID)
	if err != nil {
		if errors.Is(err, ErrMalformedAddress) {
			return nil, domain.Violations{{Property: "source", Message: "This value is not a valid email address"}}
		}
		return nil, err
	}
	if err := checkRewrittenLength("source", source); err != nil {
		return nil, err
	}
	a.Source = source

	if err := s.cache.InvalidateTags(cache.TagVirtualAliases); err != nil {
		return nil, fmt.Errorf("failed to invalidate cache: %w", err)
	}

	if err := s.store.SaveVirtualAlias(a); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Violations{{Property: "source", Message: "This value is already used"}}
		}
		return nil, err
	}

	s.log.Info("virtual alias created", zap.Uint("id", a.ID), zap.String("source", a.Source))

	created, err := s.store.GetVirtualAlias(a.ID)
	if err != nil {
		return nil, err
	}
	return toVirtualAliasDetail(created), nil
}

// Update 更新别名
func (s *VirtualAliasService) Update(id uint, input VirtualAliasInput) error {
	a, err := s.store.GetVirtualAlias(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	a.Source = input.Source
	a.DomainNameID = input.DomainNameID

	if err := a.Validate(); err != nil {
		return err
	}

	source, _, err := s.enforcer.Enforce(a.Source, a.DomainNameID)
	if err != nil {
		if errors.Is(err, ErrMalformedAddress) {
			return domain.Violations{{Property: "source", Message: "This value is not a valid email address"}}
		}
		return err
	}
	if err := checkRewrittenLength("source", source); err != nil {
		return err
	}
	a.Source = source

	if err := s.cache.InvalidateTags(cache.TagVirtualAliases); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	if err := s.store.SaveVirtualAlias(a); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return domain.Violations{{Property: "source", Message: "This value is already used"}}
		}
		return err
	}

	s.log.Info("virtual alias updated", zap.Uint("id", a.ID), zap.String("source", a.Source))
	return nil
}

// Delete 删除别名
func (s *VirtualAliasService) Delete(id uint) error {
	if err := s.cache.InvalidateTags(cache.TagVirtualAliases); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	if err := s.store.DeleteVirtualAlias(id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.log.Info("virtual alias deleted", zap.Uint("id", id))
	return nil
}

// Attach 把虚拟用户挂到别名上
func (s *VirtualAliasService) Attach(aliasID, userID uint) error {
	if err := s.cache.InvalidateTags(cache.TagVirtualAliases); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	if err := s.store.AttachAliasUser(aliasID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.log.Info("virtual user attached to alias", zap.Uint("aliasId", aliasID), zap.Uint("userId", userID))
	return nil
}

// Detach 把虚拟用户从别名上摘掉
func (s *VirtualAliasService) Detach(aliasID, userID uint) error {
	if err := s.cache.InvalidateTags(cache.TagVirtualAliases); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	if err := s.store.DetachAliasUser(aliasID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.log.Info("virtual user detached from alias", zap.Uint("aliasId", aliasID), zap.Uint("userId", userID))
	return nil
}
