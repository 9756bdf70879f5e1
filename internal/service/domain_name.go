package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hmicael/email-api/internal/cache"
	"github.com/hmicael/email-api/internal/domain"
)

// DomainNameService 域名管理服务
type DomainNameService struct {
	store domain.Store
	cache cache.TagCache
	log   *zap.Logger
}

// NewDomainNameService 创建域名管理服务
func NewDomainNameService(store domain.Store, tagCache cache.TagCache, log *zap.Logger) *DomainNameService {
	return &DomainNameService{
		store: store,
		cache: tagCache,
		log:   log,
	}
}

// DomainNameInput 域名创建/更新输入
type DomainNameInput struct {
	Name string `json:"name"`
}

// List 分页获取域名列表（缓存）
//
// 返回序列化好的 JSON，同一页的重复读取字节级一致。
func (s *DomainNameService) List(page, limit int) ([]byte, error) {
	key := fmt.Sprintf("listDomainNames%d-%d", page, limit)
	return s.cache.Get(key, []string{cache.TagDomainNames}, func() ([]byte, error) {
		domains, err := s.store.ListDomainNames((page-1)*limit, limit)
		if err != nil {
			return nil, err
		}
		total, err := s.store.CountDomainNames()
		if err != nil {
			return nil, err
		}

		views := make([]DomainNameView, 0, len(domains))
		for i := range domains {
			views = append(views, toDomainNameView(&domains[i]))
		}
		return json.Marshal(Page{Page: page, Limit: limit, Total: total, Data: views})
	})
}

// Get 按 ID 获取域名
func (s *DomainNameService) Get(id uint) (*DomainNameView, error) {
	d, err := s.store.GetDomainName(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	view := toDomainNameView(d)
	return &view, nil
}

// Search 按名称模糊搜索域名（不缓存）
func (s *DomainNameService) Search(keyword string) ([]DomainNameView, error) {
	domains, err := s.store.SearchDomainNames(keyword)
	if err != nil {
		return nil, err
	}
	views := make([]DomainNameView, 0, len(domains))
	for i := range domains {
		views = append(views, toDomainNameView(&domains[i]))
	}
	return views, nil
}

// Create 创建域名
//
// 缓存先于写入失效，保证后续列表读取看到新数据。
func (s *DomainNameService) Create(input DomainNameInput) (*DomainNameView, error) {
	d := &domain.DomainName{Name: input.Name}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateTags(cache.TagDomainNames); err != nil {
		return nil, fmt.Errorf("failed to invalidate cache: %w", err)
	}

	if err := s.store.SaveDomainName(d); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Violations{{Property: "name", Message: "This value is already used"}}
		}
		return nil, err
	}

	s.log.Info("domain name created", zap.Uint("id", d.ID), zap.String("name", d.Name))

	view := toDomainNameView(d)
	return &view, nil
}

// Update 更新域名
func (s *DomainNameService) Update(id uint, input DomainNameInput) error {
	d, err := s.store.GetDomainName(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	d.Name = input.Name
	if err := d.Validate(); err != nil {
		return err
	}

	if err := s.cache.InvalidateTags(cache.TagDomainNames); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	if err := s.store.SaveDomainName(d); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return domain.Violations{{Property: "name", Message: "This value is already used"}}
		}
		return err
	}

	s.log.Info("domain name updated", zap.Uint("id", d.ID), zap.String("name", d.Name))
	return nil
}

// Delete 删除域名（级联删除其下的邮箱、别名和转发）
func (s *DomainNameService) Delete(id uint) error {
	// 级联删除会影响其他资源的列表，相关标签一并失效
	if err := s.cache.InvalidateTags(
		cache.TagDomainNames,
		cache.TagVirtualUsers,
		cache.TagVirtualAliases,
		cache.TagVirtualForwards,
	); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	if err := s.store.DeleteDomainName(id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.log.Info("domain name deleted", zap.Uint("id", id))
	return nil
}
