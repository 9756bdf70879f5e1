package memory

import (
	"sort"

	"github.com/hmicael/email-api/internal/domain"
)

// SaveVirtualAlias 插入或更新别名
func (s *Store) SaveVirtualAlias(a *domain.VirtualAlias) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.aliases {
		if existing.Source == a.Source && id != a.ID {
			return domain.ErrDuplicate
		}
	}

	if a.ID == 0 {
		s.nextAliasID++
		a.ID = s.nextAliasID
	} else if _, ok := s.aliases[a.ID]; !ok && a.ID > s.nextAliasID {
		s.nextAliasID = a.ID
	}

	s.aliases[a.ID] = domain.VirtualAlias{
		ID:           a.ID,
		Source:       a.Source,
		DomainNameID: a.DomainNameID,
	}
	if _, ok := s.aliasUsers[a.ID]; !ok {
		s.aliasUsers[a.ID] = make(map[uint]struct{})
	}
	return nil
}

// loadAliasLocked 组装带关联的别名副本，调用方需持有读锁
func (s *Store) loadAliasLocked(a domain.VirtualAlias) domain.VirtualAlias {
	if d, ok := s.domains[a.DomainNameID]; ok {
		dd := d
		a.DomainName = &dd
	}
	for userID := range s.aliasUsers[a.ID] {
		if u, found := s.users[userID]; found {
			a.VirtualUsers = append(a.VirtualUsers, u)
		}
	}
	sort.Slice(a.VirtualUsers, func(i, j int) bool { return a.VirtualUsers[i].ID < a.VirtualUsers[j].ID })
	return a
}

// GetVirtualAlias 按 ID 获取别名及其关联
func (s *Store) GetVirtualAlias(id uint) (*domain.VirtualAlias, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.aliases[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := s.loadAliasLocked(a)
	return &out, nil
}

func (s *Store) sortedAliasesLocked() []domain.VirtualAlias {
	aliases := make([]domain.VirtualAlias, 0, len(s.aliases))
	for _, a := range s.aliases {
		aliases = append(aliases, a)
	}
	sort.Slice(aliases, func(i, j int) bool { return aliases[i].Source < aliases[j].Source })
	return aliases
}

// ListVirtualAliases 分页获取别名列表，按来源地址升序
func (s *Store) ListVirtualAliases(offset, limit int) ([]domain.VirtualAlias, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page := paginate(s.sortedAliasesLocked(), offset, limit)
	out := make([]domain.VirtualAlias, 0, len(page))
	for _, a := range page {
		if d, ok := s.domains[a.DomainNameID]; ok {
			dd := d
			a.DomainName = &dd
		}
		out = append(out, a)
	}
	return out, nil
}

// CountVirtualAliases 统计别名总数
func (s *Store) CountVirtualAliases() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.aliases)), nil
}

// SearchVirtualAliases 按来源地址模糊搜索，可选按域名过滤
func (s *Store) SearchVirtualAliases(keyword string, domainNameID uint) ([]domain.VirtualAlias, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.VirtualAlias
	for _, a := range s.sortedAliasesLocked() {
		if domainNameID != 0 && a.DomainNameID != domainNameID {
			continue
		}
		if !containsFold(a.Source, keyword) {
			continue
		}
		if d, ok := s.domains[a.DomainNameID]; ok {
			dd := d
			a.DomainName = &dd
		}
		out = append(out, a)
	}
	return out, nil
}

// DeleteVirtualAlias 删除别名及其多对多关联
func (s *Store) DeleteVirtualAlias(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.aliases[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.aliasUsers, id)
	delete(s.aliases, id)
	return nil
}

// AttachAliasUser 把虚拟用户挂到别名上（幂等）
func (s *Store) AttachAliasUser(aliasID, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.aliases[aliasID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := s.users[userID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := s.aliasUsers[aliasID]; !ok {
		s.aliasUsers[aliasID] = make(map[uint]struct{})
	}
	s.aliasUsers[aliasID][userID] = struct{}{}
	return nil
}

// DetachAliasUser 把虚拟用户从别名上摘掉（幂等）
func (s *Store) DetachAliasUser(aliasID, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.aliases[aliasID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := s.users[userID]; !ok {
		return domain.ErrNotFound
	}
	delete(s.aliasUsers[aliasID], userID)
	return nil
}
