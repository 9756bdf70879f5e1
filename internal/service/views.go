package service

import "github.com/hmicael/email-api/internal/domain"

// Page 分页列表响应
type Page struct {
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Total int64       `json:"total"`
	Data  interface{} `json:"data"`
}

// DomainNameView 域名视图
type DomainNameView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// AddressRef 别名或转发的简要引用
type AddressRef struct {
	ID     uint   `json:"id"`
	Source string `json:"source"`
}

// VirtualUserRef 虚拟用户的简要引用
type VirtualUserRef struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

// VirtualUserView 虚拟用户列表视图
type VirtualUserView struct {
	ID         uint           `json:"id"`
	Name       string         `json:"name"`
	Firstname  string         `json:"firstname,omitempty"`
	Email      string         `json:"email"`
	Maildir    string         `json:"maildir"`
	DomainName DomainNameView `json:"domainName"`
}

// VirtualUserDetail 虚拟用户详情视图，附带关联的别名和转发
type VirtualUserDetail struct {
	VirtualUserView
	VirtualAliases  []AddressRef `json:"virtualAliases"`
	VirtualForwards []AddressRef `json:"virtualForwards"`
}

// VirtualAliasView 别名列表视图
type VirtualAliasView struct {
	ID         uint           `json:"id"`
	Source     string         `json:"source"`
	DomainName DomainNameView `json:"domainName"`
}

// VirtualAliasDetail 别名详情视图，附带投递到的虚拟用户
type VirtualAliasDetail struct {
	VirtualAliasView
	VirtualUsers []VirtualUserRef `json:"virtualUsers"`
}

// VirtualForwardView 转发列表视图
type VirtualForwardView struct {
	ID         uint           `json:"id"`
	Source     string         `json:"source"`
	DomainName DomainNameView `json:"domainName"`
}

// VirtualForwardDetail 转发详情视图，附带关联的虚拟用户
type VirtualForwardDetail struct {
	VirtualForwardView
	VirtualUsers []VirtualUserRef `json:"virtualUsers"`
}

// UserView 管理账号视图
type UserView struct {
	ID        uint     `json:"id"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	Name      string   `json:"name,omitempty"`
	Firstname string   `json:"firstname,omitempty"`
}

func toDomainNameView(d *domain.DomainName) DomainNameView {
	if d == nil {
		return DomainNameView{}
	}
	return DomainNameView{ID: d.ID, Name: d.Name}
}

func toVirtualUserView(u *domain.VirtualUser) VirtualUserView {
	return VirtualUserView{
		ID:         u.ID,
		Name:       u.Name,
		Firstname:  u.Firstname,
		Email:      u.Email,
		Maildir:    u.Maildir,
		DomainName: toDomainNameView(u.DomainName),
	}
}

func toVirtualUserDetail(u *domain.VirtualUser) *VirtualUserDetail {
	detail := &VirtualUserDetail{
		VirtualUserView: toVirtualUserView(u),
		VirtualAliases:  make([]AddressRef, 0, len(u.VirtualAliases)),
		VirtualForwards: make([]AddressRef, 0, len(u.VirtualForwards)),
	}
	for _, a := range u.VirtualAliases {
		detail.VirtualAliases = append(detail.VirtualAliases, AddressRef{ID: a.ID, Source: a.Source})
	}
	for _, f := range u.VirtualForwards {
		detail.VirtualForwards = append(detail.VirtualForwards, AddressRef{ID: f.ID, Source: f.Source})
	}
	return detail
}

func toVirtualAliasView(a *domain.VirtualAlias) VirtualAliasView {
	return VirtualAliasView{
		ID:         a.ID,
		Source:     a.Source,
		DomainName: toDomainNameView(a.DomainName),
	}
}

func toVirtualAliasDetail(a *domain.VirtualAlias) *VirtualAliasDetail {
	detail := &VirtualAliasDetail{
		VirtualAliasView: toVirtualAliasView(a),
		VirtualUsers:     make([]VirtualUserRef, 0, len(a.VirtualUsers)),
	}
	for _, u := range a.VirtualUsers {
		detail.VirtualUsers = append(detail.VirtualUsers, VirtualUserRef{ID: u.ID, Email: u.Email})
	}
	return detail
}

func toVirtualForwardView(f *domain.VirtualForward) VirtualForwardView {
	return VirtualForwardView{
		ID:         f.ID,
		Source:     f.Source,
		DomainName: toDomainNameView(f.DomainName),
	}
}

func toVirtualForwardDetail(f *domain.VirtualForward) *VirtualForwardDetail {
	detail := &VirtualForwardDetail{
		VirtualForwardView: toVirtualForwardView(f),
		VirtualUsers:       make([]VirtualUserRef, 0, len(f.VirtualUsers)),
	}
	for _, u := range f.VirtualUsers {
		detail.VirtualUsers = append(detail.VirtualUsers, VirtualUserRef{ID: u.ID, Email: u.Email})
	}
	return detail
}

func toUserView(u *domain.User) UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		Roles:     u.EffectiveRoles(),
		Name:      u.Name,
		Firstname: u.Firstname,
	}
}
