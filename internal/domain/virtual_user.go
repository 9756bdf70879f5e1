package domain

// VirtualUser 虚拟邮箱用户
//
// Email 的域名部分必须与所属 DomainName 一致，
// Maildir 由域名和本地部分推导（"<domain>/<local>/"），两者都在服务层写入。
type VirtualUser struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Name         string      `gorm:"size:20;not null" json:"name"`
	Firstname    string      `gorm:"size:30" json:"firstname,omitempty"`
	Email        string      `gorm:"size:30;uniqueIndex;not null" json:"email"`
	Maildir      string      `gorm:"size:50" json:"maildir"`
	Password     string      `gorm:"size:106" json:"-"`
	DomainNameID uint        `gorm:"not null;index" json:"domainNameId"`
	DomainName   *DomainName `json:"domainName,omitempty"`

	VirtualAliases  []VirtualAlias   `gorm:"many2many:virtual_user_aliases" json:"-"`
	VirtualForwards []VirtualForward `gorm:"many2many:virtual_user_forwards" json:"-"`
}

// TableName 指定表名
func (VirtualUser) TableName() string {
	return "virtual_users"
}
