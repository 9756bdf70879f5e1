package memory

import (
	"sort"

	"github.com/hmicael/email-api/internal/domain"
)

// SaveVirtualUser 插入或更新虚拟邮箱用户
func (s *Store) SaveVirtualUser(u *domain.VirtualUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.users {
		if existing.Email == u.Email && id != u.ID {
			return domain.ErrDuplicate
		}
	}

	if u.ID == 0 {
		s.nextUserID++
		u.ID = s.nextUserID
	} else if _, ok := s.users[u.ID]; !ok && u.ID > s.nextUserID {
		s.nextUserID = u.ID
	}

	s.users[u.ID] = domain.VirtualUser{
		ID:           u.ID,
		Name:         u.Name,
		Firstname:    u.Firstname,
		Email:        u.Email,
		Maildir:      u.Maildir,
		Password:     u.Password,
		DomainNameID: u.DomainNameID,
	}
	return nil
}

// loadUserLocked 组装带关联的用户副本，调用方需持有读锁
func (s *Store) loadUserLocked(u domain.VirtualUser) domain.VirtualUser {
	if d, ok := s.domains[u.DomainNameID]; ok {
		dd := d
		u.DomainName = &dd
	}
	for aliasID, members := range s.aliasUsers {
		if _, ok := members[u.ID]; ok {
			if a, found := s.aliases[aliasID]; found {
				u.VirtualAliases = append(u.VirtualAliases, a)
			}
		}
	}
	for forwardID, members := range s.forwardUsers {
		if _, ok := members[u.ID]; ok {
			if f, found := s.forwards[forwardID]; found {
				u.VirtualForwards = append(u.VirtualForwards, f)
			}
		}
	}
	sort.Slice(u.VirtualAliases, func(i, j int) bool { return u.VirtualAliases[i].ID < u.VirtualAliases[j].ID })
	sort.Slice(u.VirtualForwards, func(i, j int) bool { return u.VirtualForwards[i].ID < u.VirtualForwards[j].ID })
	return u
}

// GetVirtualUser 按 ID 获取虚拟用户及其关联
func (s *Store) GetVirtualUser(id uint) (*domain.VirtualUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := s.loadUserLocked(u)
	return &out, nil
}

func (s *Store) sortedUsersLocked() []domain.VirtualUser {
	users := make([]domain.VirtualUser, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users
}

// ListVirtualUsers 分页获取虚拟用户列表，按名称升序
func (s *Store) ListVirtualUsers(offset, limit int) ([]domain.VirtualUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page := paginate(s.sortedUsersLocked(), offset, limit)
	out := make([]domain.VirtualUser, 0, len(page))
	for _, u := range page {
		if d, ok := s.domains[u.DomainNameID]; ok {
			dd := d
			u.DomainName = &dd
		}
		out = append(out, u)
	}
	return out, nil
}

// CountVirtualUsers 统计虚拟用户总数
func (s *Store) CountVirtualUsers() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.users)), nil
}

// SearchVirtualUsers 按姓名、名字或邮箱模糊搜索，可选按域名过滤
func (s *Store) SearchVirtualUsers(keyword string, domainNameID uint) ([]domain.VirtualUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.VirtualUser
	for _, u := range s.sortedUsersLocked() {
		if domainNameID != 0 && u.DomainNameID != domainNameID {
			continue
		}
		if !containsFold(u.Name, keyword) && !containsFold(u.Firstname, keyword) && !containsFold(u.Email, keyword) {
			continue
		}
		if d, ok := s.domains[u.DomainNameID]; ok {
			dd := d
			u.DomainName = &dd
		}
		out = append(out, u)
	}
	return out, nil
}

// removeUserAssociations 清理用户的多对多关联，调用方需持有写锁
func (s *Store) removeUserAssociations(userID uint) {
	for _, members := range s.aliasUsers {
		delete(members, userID)
	}
	for _, members := range s.forwardUsers {
		delete(members, userID)
	}
}

// DeleteVirtualUser 删除虚拟用户及其多对多关联
func (s *Store) DeleteVirtualUser(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return domain.ErrNotFound
	}
	s.removeUserAssociations(id)
	delete(s.users, id)
	return nil
}
