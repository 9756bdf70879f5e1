package cache

// 缓存标签常量
//
// 每种资源的列表页都挂在同一个标签下，
// 写操作前按标签整体失效，保证后续读取看到最新数据。
const (
	TagDomainNames     = "domainNamesCache"
	TagVirtualUsers    = "virtualUserCache"
	TagVirtualAliases  = "virtualAliasesCache"
	TagVirtualForwards = "virtualForwardsCache"
	TagUsers           = "usersCache"
)

// TagCache 带标签的只读缓存
//
// Get 命中时返回缓存的序列化结果；未命中时调用 populate 生成结果，
// 写入缓存并关联到给定标签。InvalidateTags 删除标签下的全部条目。
type TagCache interface {
	Get(key string, tags []string, populate func() ([]byte, error)) ([]byte, error)
	InvalidateTags(tags ...string) error
}
