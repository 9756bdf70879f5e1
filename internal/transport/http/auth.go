package httptransport

import (
	"github.com/gin-gonic/gin"

	"github.com/hmicael/email-api/internal/auth"
	jwtpkg "github.com/hmicael/email-api/internal/auth/jwt"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	authService *auth.Service
	jwtManager  *jwtpkg.Manager
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authService *auth.Service, jwtManager *jwtpkg.Manager) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtManager:  jwtManager,
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LoginCheck godoc
// @Summary 管理账号登录
// @Description 用邮箱和密码换取 JWT 令牌
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录凭证"
// @Success 200 {object} jwtpkg.TokenPair
// @Failure 401 {object} object{message=string}
// @Router /api/login_check [post]
func (h *AuthHandler) LoginCheck(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	user, err := h.authService.Login(auth.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		Unauthorized(c, MsgInvalidCredentials)
		return
	}

	pair, err := h.jwtManager.GenerateTokenPair(user.ID, user.Email, user.EffectiveRoles())
	if err != nil {
		InternalError(c, MsgInternalError)
		return
	}

	Success(c, pair)
}

// Refresh godoc
// @Summary 刷新访问令牌
// @Description 用刷新令牌换取新的访问令牌
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body refreshRequest true "刷新令牌"
// @Success 200 {object} object{token=string}
// @Failure 401 {object} object{message=string}
// @Router /api/token_refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	token, err := h.jwtManager.RefreshAccessToken(req.RefreshToken)
	if err != nil {
		Unauthorized(c, "invalid or expired token")
		return
	}

	Success(c, gin.H{"token": token})
}
