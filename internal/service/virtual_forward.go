package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hmicael/email-api/internal/cache"
	"github.com/hmicael/email-api/internal/domain"
)

// VirtualForwardService 转发管理服务
type VirtualForwardService struct {
	store    domain.Store
	cache    cache.TagCache
	enforcer *DomainEnforcer
	log      *zap.Logger
}

// NewVirtualForwardService 创建转发管理服务
func NewVirtualForwardService(store domain.Store, tagCache cache.TagCache, enforcer *DomainEnforcer, log *zap.Logger) *VirtualForwardService {
	return &VirtualForwardService{
		store:    store,
		cache:    tagCache,
		enforcer: enforcer,
		log:      log,
	}
}

// VirtualForwardInput 转发创建/更新输入
type VirtualForwardInput struct {
	Source       string `json:"source"`
	DomainNameID uint   `json:"domainNameId"`
}

// List 分页获取转发列表（缓存）
func (s *VirtualForwardService) List(page, limit int) ([]byte, error) {
	key := fmt.Sprintf("listVirtualForwards%d-%d", page, limit)
	return s.cache.Get(key, []string{cache.TagVirtualForwards}, func() ([]byte, error) {
		forwards, err := s.store.ListVirtualForwards((page-1)*limit, limit)
		if err != nil {
			return nil, err
		}
		total, err := s.store.CountVirtualForwards()
		if err != nil {
			return nil, err
		}

		views := make([]VirtualForwardView, 0, len(forwards))
		for i := range forwards {
			views = append(views, toVirtualForwardView(&forwards[i]))
		}
		return json.Marshal(Page{Page: page, Limit: limit, Total: total, Data: views})
	})
}

// Get 按 ID 获取转发详情
func (s *VirtualForwardService) Get(id uint) (*VirtualForwardDetail, error) {
	f, err := s.store.GetVirtualForward(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toVirtualForwardDetail(f), nil
}

// Search 按来源地址搜索转发，可选按域名过滤（不缓存）
func (s *VirtualForwardService) Search(keyword string, domainNameID uint) ([]VirtualForwardView, error) {
	forwards, err := s.store.SearchVirtualForwards(keyword, domainNameID)
	if err != nil {
		return nil, err
	}
	views := make([]VirtualForwardView, 0, len(forwards))
	for i := range forwards {
		views = append(views, toVirtualForwardView(&forwards[i]))
	}
	return views, nil
}

// Create 创建转发
func (s *VirtualForwardService) Create(input VirtualForwardInput) (*VirtualForwardDetail, error) {
	f := &domain.VirtualForward{
		Source:       input.Source,
		DomainNameID: input.DomainNameID,
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	source, _, err := s.enforcer.Enforce(f.Source, f.DomainNameID)
	if err != nil {
		if errors.Is(err, ErrMalformedAddress) {
			return nil, domain.Violations{{Property: "source", Message: "This value is not a valid email address"}}
		}
		return nil, err
	}
	if err := checkRewrittenLength("source", source); err != nil {
		return nil, err
	}
	f.Source = source

	if err := s.cache.InvalidateTags(cache.TagVirtualForwards); err != nil {
		return nil, fmt.Errorf("failed to invalidate cache: %w", err)
	}

	if err := s.store.SaveVirtualForward(f); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Violations{{Property: "source", Message: "This value is already used"}}
		}
		return nil, err
	}

	s.log.Info("virtual forward created", zap.Uint("id", f.ID), zap.String("source", f.Source))

	created, err := s.store.GetVirtualForward(f.ID)
	if err != nil {
		return nil, err
	}
	return toVirtualForwardDetail(created), nil
}

// Update 更新转发
func (s *VirtualForwardService) Update(id uint, input VirtualForwardInput) error {
	f, err := s.store.GetVirtualForward(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	f.Source = input.Source
	f.DomainNameID = input.DomainNameID

	if err := f.Validate(); err != nil {
		return err
	}

	source, _, err := s.enforcer.Enforce(f.Source, f.DomainNameID)
	if err != nil {
		if errors.Is(err, ErrMalformedAddress) {
			return domain.Violations{{Property: "source", Message: "This value is not a valid email address"}}
		}
		return err
	}
	if err := checkRewrittenLength("source", source); err != nil {
		return err
	}
	f.Source = source

	if err := s.cache.InvalidateTags(cache.TagVirtualForwards); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	if err := s.store.SaveVirtualForward(f); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return domain.Violations{{Property: "source", Message: "This value is already used"}}
		}
		return err
	}

	s.log.Info("virtual forward updated", zap.Uint("id", f.ID), zap.String("source", f.Source))
	return nil
}

// Delete 删除转发
func (s *VirtualForwardService) Delete(id uint) error {
	if err := s.cache.InvalidateTags(cache.TagVirtualForwards); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	if err := s.store.DeleteVirtualForward(id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.log.Info("virtual forward deleted", zap.Uint("id", id))
	return nil
}

// Attach 把虚拟用户挂到转发上
func (s *VirtualForwardService) Attach(forwardID, userID uint) error {
	if err := s.cache.InvalidateTags(cache.TagVirtualForwards); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	if err := s.store.AttachForwardUser(forwardID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.log.Info("virtual user attached to forward", zap.Uint("forwardId", forwardID), zap.Uint("userId", userID))
	return nil
}

// Detach 把虚拟用户从转发上摘掉
func (s *VirtualForwardService) Detach(forwardID, userID uint) error {
	if err := s.cache.InvalidateTags(cache.TagVirtualForwards); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	if err := s.store.DetachForwardUser(forwardID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.log.Info("virtual user detached from forward", zap.Uint("forwardId", forwardID), zap.Uint("userId", userID))
	return nil
}
