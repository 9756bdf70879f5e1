package memory

import (
	"sort"

	"github.com/hmicael/email-api/internal/domain"
)

// SaveDomainName 插入或更新域名
func (s *Store) SaveDomainName(d *domain.DomainName) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.domains {
		if existing.Name == d.Name && id != d.ID {
			return domain.ErrDuplicate
		}
	}

	if d.ID == 0 {
		s.nextDomainID++
		d.ID = s.nextDomainID
	} else if _, ok := s.domains[d.ID]; !ok && d.ID > s.nextDomainID {
		s.nextDomainID = d.ID
	}

	s.domains[d.ID] = domain.DomainName{ID: d.ID, Name: d.Name}
	return nil
}

// GetDomainName 按 ID 获取域名
func (s *Store) GetDomainName(id uint) (*domain.DomainName, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.domains[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := d
	return &out, nil
}

func (s *Store) sortedDomains() []domain.DomainName {
	domains := make([]domain.DomainName, 0, len(s.domains))
	for _, d := range s.domains {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool { return domains[i].Name < domains[j].Name })
	return domains
}

// ListDomainNames 分页获取域名列表，按名称升序
func (s *Store) ListDomainNames(offset, limit int) ([]domain.DomainName, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return paginate(s.sortedDomains(), offset, limit), nil
}

// CountDomainNames 统计域名总数
func (s *Store) CountDomainNames() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.domains)), nil
}

// SearchDomainNames 按名称模糊搜索域名
func (s *Store) SearchDomainNames(keyword string) ([]domain.DomainName, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.DomainName
	for _, d := range s.sortedDomains() {
		if containsFold(d.Name, keyword) {
			out = append(out, d)
		}
	}
	return out, nil
}

// DeleteDomainName 删除域名并级联删除其下的邮箱、别名和转发
func (s *Store) DeleteDomainName(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.domains[id]; !ok {
		return domain.ErrNotFound
	}

	for userID, u := range s.users {
		if u.DomainNameID == id {
			s.removeUserAssociations(userID)
			delete(s.users, userID)
		}
	}
	for aliasID, a := range s.aliases {
		if a.DomainNameID == id {
			delete(s.aliasUsers, aliasID)
			delete(s.aliases, aliasID)
		}
	}
	for forwardID, f := range s.forwards {
		if f.DomainNameID == id {
			delete(s.forwardUsers, forwardID)
			delete(s.forwards, forwardID)
		}
	}

	delete(s.domains, id)
	return nil
}
