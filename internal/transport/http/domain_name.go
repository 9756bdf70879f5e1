package httptransport

import (
	"github.com/gin-gonic/gin"

	"github.com/hmicael/email-api/internal/config"
	"github.com/hmicael/email-api/internal/service"
)

// DomainNameHandler 域名处理器
type DomainNameHandler struct {
	domains *service.DomainNameService
	api     config.APIConfig
}

// NewDomainNameHandler 创建域名处理器
func NewDomainNameHandler(domains *service.DomainNameService, api config.APIConfig) *DomainNameHandler {
	return &DomainNameHandler{domains: domains, api: api}
}

// List godoc
// @Summary 获取域名列表
// @Description 分页返回域名列表，结果走标签缓存
// @Tags DomainNames
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页条数"
// @Success 200 {object} service.Page
// @Router /api/domain-names [get]
func (h *DomainNameHandler) List(c *gin.Context) {
	page, limit := pagination(c, h.api)

	payload, err := h.domains.List(page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	JSON(c, payload)
}

// Search godoc
// @Summary 搜索域名
// @Description 按名称模糊搜索域名
// @Tags DomainNames
// @Accept json
// @Produce json
// @Param request body searchRequest true "搜索条件"
// @Success 200 {array} service.DomainNameView
// @Router /api/domain-names/search [post]
func (h *DomainNameHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	views, err := h.domains.Search(req.Keyword)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	Success(c, views)
}

// Get godoc
// @Summary 获取域名详情
// @Tags DomainNames
// @Produce json
// @Param id path int true "域名ID"
// @Success 200 {object} service.DomainNameView
// @Failure 404 {object} object{message=string}
// @Router /api/domain-names/{id} [get]
func (h *DomainNameHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		BadRequest(c, MsgInvalidID)
		return
	}

	view, err := h.domains.Get(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	Success(c, view)
}

// Create godoc
// @Summary 创建域名
// @Tags DomainNames
// @Accept json
// @Produce json
// @Param request body service.DomainNameInput true "域名"
// @Success 201 {object} service.DomainNameView
// @Failure 400 {object} object{violations=[]domain.Violation}
// @Router /api/domain-names [post]
func (h *DomainNameHandler) Create(c *gin.Context) {
	var input service.DomainNameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	view, err := h.domains.Create(input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	Created(c, resourceLocation(c, view.ID), view)
}

// Update godoc
// @Summary 更新域名
// @Tags DomainNames
// @Accept json
// @Param id path int true "域名ID"
// @Param request body service.DomainNameInput true "域名"
// @Success 204
// @Failure 404 {object} object{message=string}
// @Router /api/domain-names/{id} [put]
func (h *DomainNameHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		BadRequest(c, MsgInvalidID)
		return
	}

	var input service.DomainNameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	if err := h.domains.Update(id, input); err != nil {
		handleServiceError(c, err)
		return
	}
	NoContent(c)
}

// Delete godoc
// @Summary 删除域名
// @Description 级联删除域名下的邮箱、别名和转发
// @Tags DomainNames
// @Param id path int true "域名ID"
// @Success 204
// @Failure 404 {object} object{message=string}
// @Router /api/domain-names/{id} [delete]
func (h *DomainNameHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		BadRequest(c, MsgInvalidID)
		return
	}

	if err := h.domains.Delete(id); err != nil {
		handleServiceError(c, err)
		return
	}
	NoContent(c)
}
