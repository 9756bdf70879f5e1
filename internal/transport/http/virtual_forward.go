package httptransport

import (
	"github.com/gin-gonic/gin"

	"github.com/hmicael/email-api/internal/config"
	"github.com/hmicael/email-api/internal/service"
)

// VirtualForwardHandler 转发处理器
type VirtualForwardHandler struct {
	forwards *service.VirtualForwardService
	api      config.APIConfig
}

// NewVirtualForwardHandler 创建转发处理器
func NewVirtualForwardHandler(forwards *service.VirtualForwardService, api config.APIConfig) *VirtualForwardHandler {
	return &VirtualForwardHandler{forwards: forwards, api: api}
}

// List godoc
// @Summary 获取转发列表
// @Tags VirtualForwards
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页条数"
// @Success 200 {object} service.Page
// @Router /api/virtual-forwards [get]
func (h *VirtualForwardHandler) List(c *gin.Context) {
	page, limit := pagination(c, h.api)

	payload, err := h.forwards.List(page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	JSON(c, payload)
}

// Search godoc
// @Summary 搜索转发
// @Description 按来源地址搜索，可选按域名过滤
// @Tags VirtualForwards
// @Accept json
// @Produce json
// @Param request body searchRequest true "搜索条件"
// @Success 200 {array} service.VirtualForwardView
// @Router /api/virtual-forwards/search [post]
func (h *VirtualForwardHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	views, err := h.forwards.Search(req.Keyword, req.DomainNameID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	Success(c, views)
}

// Get godoc
// @Summary 获取转发详情
// @Tags VirtualForwards
// @Produce json
// @Param id path int true "转发ID"
// @Success 200 {object} service.VirtualForwardDetail
// @Failure 404 {object} object{message=string}
// @Router /api/virtual-forwards/{id} [get]
func (h *VirtualForwardHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		BadRequest(c, MsgInvalidID)
		return
	}

	detail, err := h.forwards.Get(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	Success(c, detail)
}

// Create godoc
// @Summary 创建转发
// @Tags VirtualForwards
// @Accept json
// @Produce json
// @Param request body service.VirtualForwardInput true "转发"
// @Success 201 {object} service.VirtualForwardDetail
// @Failure 400 {object} object{violations=[]domain.Violation}
// @Failure 404 {object} object{message=string}
// @Router /api/virtual-forwards [post]
func (h *VirtualForwardHandler) Create(c *gin.Context) {
	var input service.VirtualForwardInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	detail, err := h.forwards.Create(input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	Created(c, resourceLocation(c, detail.ID), detail)
}

// Update godoc
// @Summary 更新转发
// @Tags VirtualForwards
// @Accept json
// @Param id path int true "转发ID"
// @Param request body service.VirtualForwardInput true "转发"
// @Success 204
// @Failure 404 {object} object{message=string}
// @Router /api/virtual-forwards/{id} [put]
func (h *VirtualForwardHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		BadRequest(c, MsgInvalidID)
		return
	}

	var input service.VirtualForwardInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	if err := h.forwards.Update(id, input); err != nil {
		handleServiceError(c, err)
		return
	}
	NoContent(c)
}

// Delete godoc
// @Summary 删除转发
// @Tags VirtualForwards
// @Param id path int true "转发ID"
// @Success 204
// @Failure 404 {object} object{message=string}
// @Router /api/virtual-forwards/{id} [delete]
func (h *VirtualForwardHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		BadRequest(c, MsgInvalidID)
		return
	}

	if err := h.forwards.Delete(id); err != nil {
		handleServiceError(c, err)
		return
	}
	NoContent(c)
}

// Attach godoc
// @Summary 挂载虚拟用户
// @Tags VirtualForwards
// @Param id path int true "转发ID"
// @Param userId path int true "虚拟用户ID"
// @Success 204
// @Failure 404 {object} object{message=string}
// @Router /api/virtual-forwards/{id}/attach/{userId} [patch]
func (h *VirtualForwardHandler) Attach(c *gin.Context) {
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

	if err := h.forwards.Attach(id, userID); err != nil {
		handleServiceError(c, err)
		return
	}
	NoContent(c)
}

// Detach godoc
// @Summary 摘除虚拟用户
// @Tags VirtualForwards
// @Param id path int true "转发ID"
// @Param userId path int true "虚拟用户ID"
// @Success 204
// @Failure 404 {object} object{message=string}
// @Router /api/virtual-forwards/{id}/dettach/{userId} [delete]
func (h *VirtualForwardHandler) Detach(c *gin.Context) {
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

	if err := h.forwards.Detach(id, userID); err != nil {
		handleServiceError(c, err)
		return
	}
	NoContent(c)
}
