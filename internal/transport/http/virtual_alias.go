package httptransport

import (
	"github.com/gin-gonic/gin"

	"github.com/hmicael/email-api/internal/config"
	"github.com/hmicael/email-api/internal/service"
)

// VirtualAliasHandler 别名处理器
type VirtualAliasHandler struct {
	aliases *service.VirtualAliasService
	api     config.APIConfig
}

// NewVirtualAliasHandler 创建别名处理器
func NewVirtualAliasHandler(aliases *service.VirtualAliasService, api config.APIConfig) *VirtualAliasHandler {
	return &VirtualAliasHandler{aliases: aliases, api: api}
}

// List godoc
// @Summary 获取别名列表
// @Tags VirtualAliases
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页条数"
// @Success 200 {object} service.Page
// @Router /api/virtual-aliases [get]
func (h *VirtualAliasHandler) List(c *gin.Context) {
	page, limit := pagination(c, h.api)

	payload, err := h.aliases.List(page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	JSON(c, payload)
}

// Search godoc
// @Summary 搜索别名
// @Description 按来源地址搜索，可选按域名过滤
// @Tags VirtualAliases
// @Accept json
// @Produce json
// @Param request body searchRequest true "搜索条件"
// @Success 200 {array} service.VirtualAliasView
// @Router /api/virtual-aliases/search [post]
func (h *VirtualAliasHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	views, err := h.aliases.Search(req.Keyword, req.DomainNameID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	Success(c, views)
}

// Get godoc
// @Summary 获取别名详情
// @Description 返回别名及投递到的虚拟用户
// @Tags VirtualAliases
// @Produce json
// @Param id path int true "别名ID"
// @Success 200 {object} service.VirtualAliasDetail
// @Failure 404 {object} object{message=string}
// @Router /api/virtual-aliases/{id} [get]
func (h *VirtualAliasHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		BadRequest(c, MsgInvalidID)
		return
	}

	detail, err := h.aliases.Get(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	Success(c, detail)
}

// Create godoc
// @Summary 创建别名
// @Tags VirtualAliases
// @Accept json
// @Produce json
// @Param request body service.VirtualAliasInput true "别名"
// @Success 201 {object} service.VirtualAliasDetail
// @Failure 400 {object} object{violations=[]domain.Violation}
// @Failure 404 {object} object{message=string}
// @Router /api/virtual-aliases [post]
func (h *VirtualAliasHandler) Create(c *gin.Context) {
	var input service.VirtualAliasInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	detail, err := h.aliases.Create(input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	Created(c, resourceLocation(c, detail.ID), detail)
}

// Update godoc
// @Summary 更新别名
// @Tags VirtualAliases
// @Accept json
// @Param id path int true "别名ID"
// @Param request body service.VirtualAliasInput true "别名"
// @Success 204
// @Failure 404 {object} object{message=string}
// @Router /api/virtual-aliases/{id} [put]
func (h *VirtualAliasHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		BadRequest(c, MsgInvalidID)
		return
	}

	var input service.VirtualAliasInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	if err := h.aliases.Update(id, input); err != nil {
		handleServiceError(c, err)
		return
	}
	NoContent(c)
}

// Delete godoc
// @Summary 删除别名
// @Tags VirtualAliases
// @Param id path int true "别名ID"
// @Success 204
// @Failure 404 {object} object{message=string}
// @Router /api/virtual-aliases/{id} [delete]
func (h *VirtualAliasHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		BadRequest(c, MsgInvalidID)
		return
	}

	if err := h.aliases.Delete(id); err != nil {
		handleServiceError(c, err)
		return
	}
	NoContent(c)
}

// Attach godoc
// @Summary 挂载虚拟用户
// @Description 把虚拟用户加入别名的投递目标
// @Tags VirtualAliases
// @Param id path int true "别名ID"
// @Param userId path int true "虚拟用户ID"
// @Success 204
// @Failure 404 {object} object{message=string}
// @Router /api/virtual-aliases/{id}/attach/{userId} [patch]
func (h *VirtualAliasHandler) Attach(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		BadRequest(c, MsgInvalidID)
		return
	}
	userID, ok := paramID(c, "userId")
	if !ok {
		BadRequest(c, MsgInvalidID)
		return
	}

	if err := h.aliases.Attach(id, userID); err != nil {
		handleServiceError(c, err)
		return
	}
	NoContent(c)
}

// Detach godoc
// @Summary 摘除虚拟用户
// @Description 把虚拟用户从别名的投递目标中移除
// @Tags VirtualAliases
// @Param id path int true "别名ID"
// @Param userId path int true "虚拟用户ID"
// @Success 204
// @Failure 404 {object} object{message=string}
// @Router /api/virtual-aliases/{id}/dettach/{userId} [delete]
func (h *VirtualAliasHandler) Detach(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		BadRequest(c, MsgInvalidID)
		return
	}
	userID, ok := paramID(c, "userId")
	if !ok {
		BadRequest(c, MsgInvalidID)
		return
	}

	if err := h.aliases.Detach(id, userID); err != nil {
		handleServiceError(c, err)
		return
	}
	NoContent(c)
}
