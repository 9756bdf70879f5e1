package httptransport

import (
	"github.com/gin-gonic/gin"

	"github.com/hmicael/email-api/internal/config"
	"github.com/hmicael/email-api/internal/service"
)

// UserHandler 后台管理账号处理器
type UserHandler struct {
	users *service.UserService
	api   config.APIConfig
}

// NewUserHandler 创建后台管理账号处理器
func NewUserHandler(users *service.UserService, api config.APIConfig) *UserHandler {
	return &UserHandler{users: users, api: api}
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// List godoc
// @Summary 获取管理账号列表
// @Tags Users
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页条数"
// @Success 200 {object} service.Page
// @Router /api/users [get]
func (h *UserHandler) List(c *gin.Context) {
	page, limit := pagination(c, h.api)

	payload, err := h.users.List(page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	JSON(c, payload)
}

// Search godoc
// @Summary 搜索管理账号
// @Tags Users
// @Accept json
// @Produce json
// @Param request body searchRequest true "搜索条件"
// @Success 200 {array} service.UserView
// @Router /api/users/search [post]
func (h *UserHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	views, err := h.users.Search(req.Keyword)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	Success(c, views)
}

// Get godoc
// @Summary 获取管理账号详情
// @Tags Users
// @Produce json
// @Param id path int true "账号ID"
// @Success 200 {object} service.UserView
// @Failure 404 {object} object{message=string}
// @Router /api/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		BadRequest(c, MsgInvalidID)
		return
	}

	view, err := h.users.Get(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	Success(c, view)
}

// Create godoc
// @Summary 创建管理账号
// @Tags Users
// @Accept json
// @Produce json
// @Param request body service.CreateUserInput true "管理账号"
// @Success 201 {object} service.UserView
// @Failure 400 {object} object{violations=[]domain.Violation}
// @Router /api/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var input service.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	view, err := h.users.Create(input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	Created(c, resourceLocation(c, view.ID), view)
}

// Update godoc
// @Summary 更新管理账号
// @Tags Users
// @Accept json
// @Param id path int true "账号ID"
// @Param request body service.UpdateUserInput true "管理账号"
// @Success 204
// @Failure 404 {object} object{message=string}
// @Router /api/users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		BadRequest(c, MsgInvalidID)
		return
	}

	var input service.UpdateUserInput
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

// Delete godoc
// @Summary 删除管理账号
// @Tags Users
// @Param id path int true "账号ID"
// @Success 204
// @Failure 404 {object} object{message=string}
// @Router /api/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
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

// ForgotPassword godoc
// @Summary 发起找回密码
// @Description 给账号邮箱发送带一次性令牌的重置链接；邮箱不存在时同样返回成功
// @Tags Users
// @Accept json
// @Param request body forgotPasswordRequest true "账号邮箱"
// @Success 204
// @Router /api/users/forgot-password [post]
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	if err := h.users.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		handleServiceError(c, err)
		return
	}
	NoContent(c)
}

// ResetPassword godoc
// @Summary 用令牌重置密码
// @Tags Users
// @Accept json
// @Param token path string true "找回密码令牌"
// @Param request body resetPasswordRequest true "新密码"
// @Success 204
// @Failure 400 {object} object{violations=[]domain.Violation}
// @Failure 404 {object} object{message=string}
// @Router /api/users/reset-password/{token} [post]
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	if err := h.users.ResetPassword(c.Param("token"), req.Password); err != nil {
		handleServiceError(c, err)
		return
	}
	NoContent(c)
}
