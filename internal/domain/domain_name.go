package domain

// DomainName 托管域名
//
// 平台上所有邮箱、别名和转发都归属于某个域名，
// 删除域名时级联删除其下的全部资源。
type DomainName struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:20;uniqueIndex;not null" json:"name"`

	VirtualUsers    []VirtualUser    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	VirtualAliases  []VirtualAlias   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	VirtualForwards []VirtualForward `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (DomainName) TableName() string {
	return "domain_names"
}
