package domain

// VirtualForward 邮件转发
//
// 结构与 VirtualAlias 相同，但在邮件系统中语义不同：
// 别名是投递别称，转发是把邮件复制到其他邮箱。
type VirtualForward struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Source       string      `gorm:"size:30;uniqueIndex;not null" json:"source"`
	DomainNameID uint        `gorm:"not null;index" json:"domainNameId"`
	DomainName   *DomainName `json:"domainName,omitempty"`

	VirtualUsers []VirtualUser `gorm:"many2many:virtual_user_forwards" json:"-"`
}

// TableName 指定表名
func (VirtualForward) TableName() string {
	return "virtual_forwards"
}
