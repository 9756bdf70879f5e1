package domain

// VirtualAlias 邮箱别名
//
// Source 是别名地址，域名部分必须与所属 DomainName 一致；
// 通过多对多关联投递到若干虚拟用户。
type VirtualAlias struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Source       string      `gorm:"size:30;uniqueIndex;not null" json:"source"`
	DomainNameID uint        `gorm:"not null;index" json:"domainNameId"`
	DomainName   *DomainName `json:"domainName,omitempty"`

	VirtualUsers []VirtualUser `gorm:"many2many:virtual_user_aliases" json:"-"`
}

// TableName 指定表名
func (VirtualAlias) TableName() string {
	return "virtual_aliases"
}
