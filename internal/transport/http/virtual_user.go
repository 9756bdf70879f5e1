package httptransport

import (
	"github.com/gin-gonic/gin"

	"github.com/hmicael/email-api/internal/config"
	"github.com/hmicael/email-api/internal/service"
)

// VirtualUserHandler 虚拟邮箱用户处理器
type VirtualUserHandler struct {
	users *service.VirtualUserService
	api   config.APIConfig
}

// NewVirtualUserHandler 创建虚拟邮箱用户处理器
func NewVirtualUserHandler(users *service.VirtualUserService, api config.APIConfig) *VirtualUserHandler {
	return &VirtualUserHandler{users: users, api: api}
}

// List godoc
// @Summary 获取虚拟用户列表
// @Description 分页返回虚拟用户列表，结果走标签缓存
// @Tags VirtualUsers
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页条数"
// @Success 200 {object} service.Page
// @Router /api/virtual-users [get]
func (h *VirtualUserHandler) List(c *gin.Context) {
	page, limit := pagination(c, h.api)

	payload, err := h.users.List(page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	JSON(c, payload)
}

// Search godoc
// @Summary 搜索虚拟用户
// @Description 按姓名或邮箱搜索，可选按域名过滤
// @Tags VirtualUsers
// @Accept json
// @Produce json
// @Param request body searchRequest true "搜索条件"
// @Success 200 {array} service.VirtualUserView
// @Router /api/virtual-users/search [post]
func (h *VirtualUserHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	views, err := h.users.Search(req.Keyword, req.DomainNameID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	Success(c, views)
}

// Get godoc
// @Summary 获取虚拟用户详情
// @Description 返回虚拟用户及其关联的别名和转发
// @Tags VirtualUsers
// @Produce json
// @Param id path int true "虚拟用户ID"
// @Success 200 {object} service.VirtualUserDetail
// @Failure 404 {object} object{message=string}
// @Router /api/virtual-users/{id} [get]
func (h *VirtualUserHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		BadRequest(c, MsgInvalidID)
		return
	}

	detail, err := h.users.Get(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	Success(c, detail)
}

// Create godoc
// @Summary 创建虚拟用户
// @Description 创建邮箱账号，发送带初始密码的通知邮件
// @Tags VirtualUsers
// @Accept json
// @Produce json
// @Param request body service.CreateVirtualUserInput true "虚拟用户"
// @Success 201 {object} service.VirtualUserDetail
// @Failure 400 {object} object{violations=[]domain.Violation}
// @Failure 404 {object} object{message=string}
// @Router /api/virtual-users [post]
func (h *VirtualUserHandler) Create(c *gin.Context) {
	var input service.CreateVirtualUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	detail, err := h.users.Create(c.Request.Context(), input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	Created(c, resourceLocation(c, detail.ID), detail)
}

// Update godoc
// @Summary 更新虚拟用户
// @Description 更新基本信息，密码不在此处修改
// @Tags VirtualUsers
// @Accept json
// @Param id path int true "虚拟用户ID"
// @Param request body service.UpdateVirtualUserInput true "虚拟用户"
// @Success 204
// @Failure 404 {object} object{message=string}
// @Router /api/virtual-users/{id} [put]
func (h *VirtualUserHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		BadRequest(c, MsgInvalidID)
		return
	}

	var input service.UpdateVirtualUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	if err := h.users.Update(id, input); err != nil {
		handleServiceError(c, err)
		return
	}
	NoContent(c)
}

// ResetPassword godoc
// @Summary 重置虚拟用户密码
// @Description 生成随机密码并邮件通知用户
// @Tags VirtualUsers
// @Param id path int true "虚拟用户ID"
// @Success 204
// @Failure 404 {object} object{message=string}
// @Router /api/virtual-users/{id}/reset-password [patch]
func (h *VirtualUserHandler) ResetPassword(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		BadRequest(c, MsgInvalidID)
		return
	}

	if err := h.users.ResetPassword(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	NoContent(c)
}

// Delete godoc
// @Summary 删除虚拟用户
// @Tags VirtualUsers
// @Param id path int true "虚拟用户ID"
// @Success 204
// @Failure 404 {object} object{message=string}
// @Router /api/virtual-users/{id} [delete]
func (h *VirtualUserHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		BadRequest(c, MsgInvalidID)
		return
	}

	if err := h.users.Delete(id); err != nil {
		handleServiceError(c, err)
		return
	}
	NoContent(c)
}
