package memory

import (
	"sort"

	"github.com/hmicael/email-api/internal/domain"
)

// SaveVirtualForward 插入或更新转发
func (s *Store) SaveVirtualForward(f *domain.VirtualForward) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.forwards {
		if existing.Source == f.Source && id != f.ID {
			return domain.ErrDuplicate
		}
	}

	if f.ID == 0 {
		s.nextForwardID++
		f.ID = s.nextForwardID
	} else if _, ok := s.forwards[f.ID]; !ok && f.ID > s.nextForwardID {
		s.nextForwardID = f.ID
	}

	s.forwards[f.ID] = domain.VirtualForward{
		ID:           f.ID,
		Source:       f.Source,
		DomainNameID: f.DomainNameID,
	}
	if _, ok := s.forwardUsers[f.ID]; !ok {
		s.forwardUsers[f.ID] = make(map[uint]struct{})
	}
	return nil
}

// GetVirtualForward 按 ID 获取转发及其关联
func (s *Store) GetVirtualForward(id uint) (*domain.VirtualForward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.forwards[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	if d, found := s.domains[f.DomainNameID]; found {
		dd := d
		f.DomainName = &dd
	}
	for userID := range s.forwardUsers[f.ID] {
		if u, found := s.users[userID]; found {
			f.VirtualUsers = append(f.VirtualUsers, u)
		}
	}
	sort.Slice(f.VirtualUsers, func(i, j int) bool { return f.VirtualUsers[i].ID < f.VirtualUsers[j].ID })
	return &f, nil
}

func (s *Store) sortedForwardsLocked() []domain.VirtualForward {
	forwards := make([]domain.VirtualForward, 0, len(s.forwards))
	for _, f := range s.forwards {
		forwards = append(forwards, f)
	}
	sort.Slice(forwards, func(i, j int) bool { return forwards[i].Source < forwards[j].Source })
	return forwards
}

// ListVirtualForwards 分页获取转发列表，按来源地址升序
func (s *Store) ListVirtualForwards(offset, limit int) ([]domain.VirtualForward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page := paginate(s.sortedForwardsLocked(), offset, limit)
	out := make([]domain.VirtualForward, 0, len(page))
	for _, f := range page {
		if d, ok := s.domains[f.DomainNameID]; ok {
			dd := d
			f.DomainName = &dd
		}
		out = append(out, f)
	}
	return out, nil
}

// CountVirtualForwards 统计转发总数
func (s *Store) CountVirtualForwards() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.forwards)), nil
}

// SearchVirtualForwards 按来源地址模糊搜索，可选按域名过滤
func (s *Store) SearchVirtualForwards(keyword string, domainNameID uint) ([]domain.VirtualForward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.VirtualForward
	for _, f := range s.sortedForwardsLocked() {
		if domainNameID != 0 && f.DomainNameID != domainNameID {
			continue
		}
		if !containsFold(f.Source, keyword) {
			continue
		}
		if d, ok := s.domains[f.DomainNameID]; ok {
			dd := d
			f.DomainName = &dd
		}
		out = append(out, f)
	}
	return out, nil
}

// DeleteVirtualForward 删除转发及其多对多关联
func (s *Store) DeleteVirtualForward(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.forwards[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.forwardUsers, id)
	delete(s.forwards, id)
	return nil
}

// AttachForwardUser 把虚拟用户挂到转发上（幂等）
func (s *Store) AttachForwardUser(forwardID, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.forwards[forwardID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := s.users[userID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := s.forwardUsers[forwardID]; !ok {
		s.forwardUsers[forwardID] = make(map[uint]struct{})
	}
	s.forwardUsers[forwardID][userID] = struct{}{}
	return nil
}

// DetachForwardUser 把虚拟用户从转发上摘掉（幂等）
func (s *Store) DetachForwardUser(forwardID, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.forwards[forwardID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := s.users[userID]; !ok {
		return domain.ErrNotFound
	}
	delete(s.forwardUsers[forwardID], userID)
	return nil
}
