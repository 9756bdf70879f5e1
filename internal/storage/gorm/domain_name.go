package gorm

import (
	"github.com/hmicael/email-api/internal/domain"
	"gorm.io/gorm"
)

// SaveDomainName 插入或更新域名
func (s *Store) SaveDomainName(d *domain.DomainName) error {
	return translate(s.gormDB.Save(d).Error)
}

// GetDomainName 按 ID 获取域名
func (s *Store) GetDomainName(id uint) (*domain.DomainName, error) {
	var d domain.DomainName
	if err := s.gormDB.First(&d, id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

// ListDomainNames 分页获取域名列表，按名称升序
func (s *Store) ListDomainNames(offset, limit int) ([]domain.DomainName, error) {
	var domains []domain.DomainName
	err := s.gormDB.
		Order("name asc").
		Offset(offset).
		Limit(limit).
		Find(&domains).Error
	return domains, translate(err)
}

// CountDomainNames 统计域名总数
func (s *Store) CountDomainNames() (int64, error) {
	var count int64
	err := s.gormDB.Model(&domain.DomainName{}).Count(&count).Error
	return count, translate(err)
}

// SearchDomainNames 按名称模糊搜索域名，不分页
func (s *Store) SearchDomainNames(keyword string) ([]domain.DomainName, error) {
	var domains []domain.DomainName
	err := s.gormDB.
		Where(s.searchClause("name"), likePattern(keyword)).
		Order("name asc").
		Find(&domains).Error
	return domains, translate(err)
}

// DeleteDomainName 删除域名并级联删除其下的邮箱、别名和转发
func (s *Store) DeleteDomainName(id uint) error {
	return translate(s.gormDB.Transaction(func(tx *gorm.DB) error {
		var d domain.DomainName
		if err := tx.First(&d, id).Error; err != nil {
			return err
		}

		var users []domain.VirtualUser
		if err := tx.Where("domain_name_id = ?", id).Find(&users).Error; err != nil {
			return err
		}
		for i := range users {
			if err := tx.Model(&users[i]).Association("VirtualAliases").Clear(); err != nil {
				return err
			}
			if err := tx.Model(&users[i]).Association("VirtualForwards").Clear(); err != nil {
				return err
			}
		}

		if err := tx.Where("domain_name_id = ?", id).Delete(&domain.VirtualUser{}).Error; err != nil {
			return err
		}
		if err := tx.Where("domain_name_id = ?", id).Delete(&domain.VirtualAlias{}).Error; err != nil {
			return err
		}
		if err := tx.Where("domain_name_id = ?", id).Delete(&domain.VirtualForward{}).Error; err != nil {
			return err
		}

		return tx.Delete(&d).Error
	}))
}
