package gorm

import (
	"github.com/hmicael/email-api/internal/domain"
	"gorm.io/gorm"
)

// SaveVirtualForward 插入或更新转发
func (s *Store) SaveVirtualForward(f *domain.VirtualForward) error {
	return translate(s.gormDB.Omit("VirtualUsers", "DomainName").Save(f).Error)
}

// GetVirtualForward 按 ID 获取转发，预加载域名和关联用户
func (s *Store) GetVirtualForward(id uint) (*domain.VirtualForward, error) {
	var f domain.VirtualForward
	err := s.gormDB.
		Preload("DomainName").
		Preload("VirtualUsers").
		First(&f, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

// ListVirtualForwards 分页获取转发列表，按来源地址升序
func (s *Store) ListVirtualForwards(offset, limit int) ([]domain.VirtualForward, error) {
	var forwards []domain.VirtualForward
	err := s.gormDB.
		Preload("DomainName").
		Order("source asc").
		Offset(offset).
		Limit(limit).
		Find(&forwards).Error
	return forwards, translate(err)
}

// CountVirtualForwards 统计转发总数
func (s *Store) CountVirtualForwards() (int64, error) {
	var count int64
	err := s.gormDB.Model(&domain.VirtualForward{}).Count(&count).Error
	return count, translate(err)
}

// SearchVirtualForwards 按来源地址模糊搜索，可选按域名过滤
func (s *Store) SearchVirtualForwards(keyword string, domainNameID uint) ([]domain.VirtualForward, error) {
	query := s.gormDB.
		Preload("DomainName").
		Where(s.searchClause("source"), likePattern(keyword))
	if domainNameID != 0 {
		query = query.Where("domain_name_id = ?", domainNameID)
	}

	var forwards []domain.VirtualForward
	err := query.Order("source asc").Find(&forwards).Error
	return forwards, translate(err)
}

// DeleteVirtualForward 删除转发及其多对多关联
func (s *Store) DeleteVirtualForward(id uint) error {
	return translate(s.gormDB.Transaction(func(tx *gorm.DB) error {
		var f domain.VirtualForward
		if err := tx.First(&f, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&f).Association("VirtualUsers").Clear(); err != nil {
			return err
		}
		return tx.Delete(&f).Error
	}))
}

// AttachForwardUser 把虚拟用户挂到转发上（幂等）
func (s *Store) AttachForwardUser(forwardID, userID uint) error {
	return translate(s.gormDB.Transaction(func(tx *gorm.DB) error {
		var f domain.VirtualForward
		if err := tx.First(&f, forwardID).Error; err != nil {
			return err
		}
		var u domain.VirtualUser
		if err := tx.First(&u, userID).Error; err != nil {
			return err
		}
		return tx.Model(&f).Association("VirtualUsers").Append(&u)
	}))
}

// DetachForwardUser 把虚拟用户从转发上摘掉（幂等）
func (s *Store) DetachForwardUser(forwardID, userID uint) error {
	return translate(s.gormDB.Transaction(func(tx *gorm.DB) error {
		var f domain.VirtualForward
		if err := tx.First(&f, forwardID).Error; err != nil {
			return err
		}
		var u domain.VirtualUser
		if err := tx.First(&u, userID).Error; err != nil {
			return err
		}
		return tx.Model(&f).Association("VirtualUsers").Delete(&u)
	}))
}
