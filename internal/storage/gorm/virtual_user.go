package gorm

import (
	"github.com/hmicael/email-api/internal/domain"
	"gorm.io/gorm"
)

// SaveVirtualUser 插入或更新虚拟邮箱用户
func (s *Store) SaveVirtualUser(u *domain.VirtualUser) error {
	return translate(s.gormDB.Transaction(func(tx *gorm.DB) error {
		// 关联对象由服务层单独维护，这里只写用户本身
		return tx.Omit("VirtualAliases", "VirtualForwards", "DomainName").Save(u).Error
	}))
}

// GetVirtualUser 按 ID 获取虚拟用户，预加载域名和关联的别名、转发
func (s *Store) GetVirtualUser(id uint) (*domain.VirtualUser, error) {
	var u domain.VirtualUser
	err := s.gormDB.
		Preload("DomainName").
		Preload("VirtualAliases").
		Preload("VirtualForwards").
		First(&u, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// ListVirtualUsers 分页获取虚拟用户列表，按名称升序
func (s *Store) ListVirtualUsers(offset, limit int) ([]domain.VirtualUser, error) {
	var users []domain.VirtualUser
	err := s.gormDB.
		Preload("DomainName").
		Order("name asc").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	return users, translate(err)
}

// CountVirtualUsers 统计虚拟用户总数
func (s *Store) CountVirtualUsers() (int64, error) {
	var count int64
	err := s.gormDB.Model(&domain.VirtualUser{}).Count(&count).Error
	return count, translate(err)
}

// SearchVirtualUsers 按姓名、名字或邮箱模糊搜索，可选按域名过滤
func (s *Store) SearchVirtualUsers(keyword string, domainNameID uint) ([]domain.VirtualUser, error) {
	query := s.gormDB.
		Preload("DomainName").
		Where(
			s.gormDB.Where(s.searchClause("name"), likePattern(keyword)).
				Or(s.searchClause("firstname"), likePattern(keyword)).
				Or(s.searchClause("email"), likePattern(keyword)),
		)
	if domainNameID != 0 {
		query = query.Where("domain_name_id = ?", domainNameID)
	}

	var users []domain.VirtualUser
	err := query.Order("name asc").Find(&users).Error
	return users, translate(err)
}

// DeleteVirtualUser 删除虚拟用户及其多对多关联
func (s *Store) DeleteVirtualUser(id uint) error {
	return translate(s.gormDB.Transaction(func(tx *gorm.DB) error {
		var u domain.VirtualUser
		if err := tx.First(&u, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&u).Association("VirtualAliases").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&u).Association("VirtualForwards").Clear(); err != nil {
			return err
		}
		return tx.Delete(&u).Error
	}))
}
