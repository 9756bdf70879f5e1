package gorm

import (
	"time"

	"github.com/hmicael/email-api/internal/domain"
)

// SaveUser 插入或更新管理账号
func (s *Store) SaveUser(u *domain.User) error {
	return translate(s.gormDB.Save(u).Error)
}

// GetUser 按 ID 获取管理账号
func (s *Store) GetUser(id uint) (*domain.User, error) {
	var u domain.User
	if err := s.gormDB.First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// GetUserByEmail 按邮箱获取管理账号
func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	var u domain.User
	if err := s.gormDB.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// ListUsers 分页获取管理账号列表，按邮箱升序
func (s *Store) ListUsers(offset, limit int) ([]domain.User, error) {
	var users []domain.User
	err := s.gormDB.
		Order("email asc").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	return users, translate(err)
}

// CountUsers 统计管理账号总数
func (s *Store) CountUsers() (int64, error) {
	var count int64
	err := s.gormDB.Model(&domain.User{}).Count(&count).Error
	return count, translate(err)
}

// SearchUsers 按邮箱、姓名或名字模糊搜索管理账号
func (s *Store) SearchUsers(keyword string) ([]domain.User, error) {
	var users []domain.User
	err := s.gormDB.
		Where(
			s.gormDB.Where(s.searchClause("email"), likePattern(keyword)).
				Or(s.searchClause("name"), likePattern(keyword)).
				Or(s.searchClause("firstname"), likePattern(keyword)),
		).
		Order("email asc").
		Find(&users).Error
	return users, translate(err)
}

// DeleteUser 删除管理账号
func (s *Store) DeleteUser(id uint) error {
	var u domain.User
	if err := s.gormDB.First(&u, id).Error; err != nil {
		return translate(err)
	}
	return translate(s.gormDB.Delete(&u).Error)
}

// SaveResetToken 保存找回密码令牌
func (s *Store) SaveResetToken(t *domain.PasswordResetToken) error {
	return translate(s.gormDB.Save(t).Error)
}

// GetResetToken 按令牌值查找找回密码令牌
func (s *Store) GetResetToken(token string) (*domain.PasswordResetToken, error) {
	var t domain.PasswordResetToken
	if err := s.gormDB.Where("token = ?", token).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// DeleteResetToken 删除找回密码令牌
func (s *Store) DeleteResetToken(token string) error {
	return translate(s.gormDB.Where("token = ?", token).Delete(&domain.PasswordResetToken{}).Error)
}

// DeleteExpiredResetTokens 清理过期的找回密码令牌，返回删除数量
func (s *Store) DeleteExpiredResetTokens(before time.Time) (int, error) {
	result := s.gormDB.Where("expires_at < ?", before).Delete(&domain.PasswordResetToken{})
	return int(result.RowsAffected), translate(result.Error)
}
