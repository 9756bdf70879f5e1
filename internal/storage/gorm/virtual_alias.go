package gorm

import (
	"github.com/hmicael/email-api/internal/domain"
	"gorm.io/gorm"
)

// SaveVirtualAlias 插入或更新别名
func (s *Store) SaveVirtualAlias(a *domain.VirtualAlias) error {
	return translate(s.gormDB.Omit("VirtualUsers", "DomainName").Save(a).Error)
}

// GetVirtualAlias 按 ID 获取别名，预加载域名和关联用户
func (s *Store) GetVirtualAlias(id uint) (*domain.VirtualAlias, error) {
	var a domain.VirtualAlias
	err := s.gormDB.
		Preload("DomainName").
		Preload("VirtualUsers").
		First(&a, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// ListVirtualAliases 分页获取别名列表，按来源地址升序
func (s *Store) ListVirtualAliases(offset, limit int) ([]domain.VirtualAlias, error) {
	var aliases []domain.VirtualAlias
	err := s.gormDB.
		Preload("DomainName").
		Order("source asc").
		Offset(offset).
		Limit(limit).
		Find(&aliases).Error
	return aliases, translate(err)
}

// CountVirtualAliases 统计别名总数
func (s *Store) CountVirtualAliases() (int64, error) {
	var count int64
	err := s.gormDB.Model(&domain.VirtualAlias{}).Count(&count).Error
	return count, translate(err)
}

// SearchVirtualAliases 按来源地址模糊搜索，可选按域名过滤
func (s *Store) SearchVirtualAliases(keyword string, domainNameID uint) ([]domain.VirtualAlias, error) {
	query := s.gormDB.
		Preload("DomainName").
		Where(s.searchClause("source"), likePattern(keyword))
	if domainNameID != 0 {
		query = query.Where("domain_name_id = ?", domainNameID)
	}

	var aliases []domain.VirtualAlias
	err := query.Order("source asc").Find(&aliases).Error
	return aliases, translate(err)
}

// DeleteVirtualAlias 删除别名及其多对多关联
func (s *Store) DeleteVirtualAlias(id uint) error {
	return translate(s.gormDB.Transaction(func(tx *gorm.DB) error {
		var a domain.VirtualAlias
		if err := tx.First(&a, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&a).Association("VirtualUsers").Clear(); err != nil {
			return err
		}
		return tx.Delete(&a).Error
	}))
}

// AttachAliasUser 把虚拟用户挂到别名上（幂等）
func (s *Store) AttachAliasUser(aliasID, userID uint) error {
	return translate(s.gormDB.Transaction(func(tx *gorm.DB) error {
		var a domain.VirtualAlias
		if err := tx.First(&a, aliasID).Error; err != nil {
			return err
		}
		var u domain.VirtualUser
		if err := tx.First(&u, userID).Error; err != nil {
			return err
		}
		return tx.Model(&a).Association("VirtualUsers").Append(&u)
	}))
}

// DetachAliasUser 把虚拟用户从别名上摘掉（幂等）
func (s *Store) DetachAliasUser(aliasID, userID uint) error {
	return translate(s.gormDB.Transaction(func(tx *gorm.DB) error {
		var a domain.VirtualAlias
		if err := tx.First(&a, aliasID).Error; err != nil {
			return err
		}
		var u domain.VirtualUser
		if err := tx.First(&u, userID).Error; err != nil {
			return err
		}
		return tx.Model(&a).Association("VirtualUsers").Delete(&u)
	}))
}
