package memory

import (
	"sort"
	"time"

	"github.com/hmicael/email-api/internal/domain"
)

// SaveUser 插入或更新管理账号
func (s *Store) SaveUser(u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.admins {
		if existing.Email == u.Email && id != u.ID {
			return domain.ErrDuplicate
		}
	}

	now := time.Now()
	if u.ID == 0 {
		s.nextAdminID++
		u.ID = s.nextAdminID
		u.CreatedAt = now
	} else if _, ok := s.admins[u.ID]; !ok && u.ID > s.nextAdminID {
		s.nextAdminID = u.ID
	}
	u.UpdatedAt = now

	s.admins[u.ID] = *u
	return nil
}

// GetUser 按 ID 获取管理账号
func (s *Store) GetUser(id uint) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.admins[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := u
	return &out, nil
}

// GetUserByEmail 按邮箱获取管理账号
func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.admins {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) sortedAdminsLocked() []domain.User {
	admins := make([]domain.User, 0, len(s.admins))
	for _, u := range s.admins {
		admins = append(admins, u)
	}
	sort.Slice(admins, func(i, j int) bool { return admins[i].Email < admins[j].Email })
	return admins
}

// ListUsers 分页获取管理账号列表，按邮箱升序
func (s *Store) ListUsers(offset, limit int) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return paginate(s.sortedAdminsLocked(), offset, limit), nil
}

// CountUsers 统计管理账号总数
func (s *Store) CountUsers() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.admins)), nil
}

// SearchUsers 按邮箱、姓名或名字模糊搜索管理账号
func (s *Store) SearchUsers(keyword string) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.User
	for _, u := range s.sortedAdminsLocked() {
		if containsFold(u.Email, keyword) || containsFold(u.Name, keyword) || containsFold(u.Firstname, keyword) {
			out = append(out, u)
		}
	}
	return out, nil
}

// DeleteUser 删除管理账号
func (s *Store) DeleteUser(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.admins[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.admins, id)
	return nil
}

// SaveResetToken 保存找回密码令牌
func (s *Store) SaveResetToken(t *domain.PasswordResetToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == 0 {
		s.nextTokenID++
		t.ID = s.nextTokenID
		t.CreatedAt = time.Now()
	}
	s.tokens[t.Token] = *t
	return nil
}

// GetResetToken 按令牌值查找找回密码令牌
func (s *Store) GetResetToken(token string) (*domain.PasswordResetToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := t
	return &out, nil
}

// DeleteResetToken 删除找回密码令牌
func (s *Store) DeleteResetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, token)
	return nil
}
