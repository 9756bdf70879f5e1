package httptransport

import (
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hmicael/email-api/internal/auth"
	jwtpkg "github.com/hmicael/email-api/internal/auth/jwt"
	"github.com/hmicael/email-api/internal/config"
	"github.com/hmicael/email-api/internal/domain"
	"github.com/hmicael/email-api/internal/health"
	"github.com/hmicael/email-api/internal/middleware"
	"github.com/hmicael/email-api/internal/monitoring"
	"github.com/hmicael/email-api/internal/service"
)

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config                *config.Config
	DomainNameService     *service.DomainNameService
	VirtualUserService    *service.VirtualUserService
	VirtualAliasService   *service.VirtualAliasService
	VirtualForwardService *service.VirtualForwardService
	UserService           *service.UserService
	AuthService           *auth.Service
	JWTManager            *jwtpkg.Manager
	Metrics               *monitoring.Metrics
	HealthChecker         *health.HealthChecker
	Logger                *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryHandler(deps.Logger, deps.Metrics))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders())

	// 管理 API 只收 JSON，1MB 足够
	router.Use(middleware.BodySizeLimit(1 * 1024 * 1024))

	// CORS 配置
	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Location", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// 如果允许所有来源，则需清空凭证支持。
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	if deps.Metrics != nil {
		monitoringMiddleware := middleware.NewMonitoringMiddleware(deps.Metrics)
		router.Use(monitoringMiddleware.HTTPMetrics())
		router.Use(monitoringMiddleware.BusinessMetrics())
		router.GET("/metrics", gin.WrapH(deps.Metrics.HTTPHandler()))
	}

	if deps.HealthChecker != nil {
		router.GET("/live", gin.WrapH(deps.HealthChecker.Handler()))
		router.GET("/ready", gin.WrapH(deps.HealthChecker.Handler()))
	}

	// 创建处理器
	authHandler := NewAuthHandler(deps.AuthService, deps.JWTManager)
	domainNameHandler := NewDomainNameHandler(deps.DomainNameService, deps.Config.API)
	virtualUserHandler := NewVirtualUserHandler(deps.VirtualUserService, deps.Config.API)
	virtualAliasHandler := NewVirtualAliasHandler(deps.VirtualAliasService, deps.Config.API)
	virtualForwardHandler := NewVirtualForwardHandler(deps.VirtualForwardService, deps.Config.API)
	userHandler := NewUserHandler(deps.UserService, deps.Config.API)

	// 创建中间件
	jwtAuth := middleware.NewJWTAuth(deps.JWTManager, deps.Logger)
	requireAdmin := middleware.RequireRole(domain.RoleAdmin)
	requireUser := middleware.RequireRole(domain.RoleUser)

	// 未认证端点限流，防止暴力破解
	loginLimiter := middleware.NewRateLimiter(5, 10)

	api := router.Group("/api")
	{
		// ========== Public Routes ==========
		api.POST("/login_check", loginLimiter.Limit(), authHandler.LoginCheck)
		api.POST("/token_refresh", loginLimiter.Limit(), authHandler.Refresh)
		api.POST("/users/forgot-password", loginLimiter.Limit(), userHandler.ForgotPassword)
		api.POST("/users/reset-password/:token", loginLimiter.Limit(), userHandler.ResetPassword)

		// ========== Domain Name Routes ==========
		domainRoutes := api.Group("/domain-names")
		domainRoutes.Use(jwtAuth.RequireAuth())
		{
			domainRoutes.GET("", domainNameHandler.List)
			domainRoutes.POST("/search", domainNameHandler.Search)
			domainRoutes.GET("/:id", domainNameHandler.Get)

			// 域名写操作只对管理员开放
			domainRoutes.POST("", requireAdmin, domainNameHandler.Create)
			domainRoutes.PUT("/:id", requireAdmin, domainNameHandler.Update)
			domainRoutes.DELETE("/:id", requireAdmin, domainNameHandler.Delete)
		}

		// ========== Virtual User Routes ==========
		virtualUserRoutes := api.Group("/virtual-users")
		virtualUserRoutes.Use(jwtAuth.RequireAuth())
		{
			virtualUserRoutes.GET("", virtualUserHandler.List)
			virtualUserRoutes.POST("/search", virtualUserHandler.Search)
			virtualUserRoutes.GET("/:id", virtualUserHandler.Get)
			virtualUserRoutes.POST("", requireUser, virtualUserHandler.Create)
			virtualUserRoutes.PUT("/:id", requireUser, virtualUserHandler.Update)
			virtualUserRoutes.PATCH("/:id/reset-password", requireUser, virtualUserHandler.ResetPassword)
			virtualUserRoutes.DELETE("/:id", requireUser, virtualUserHandler.Delete)
		}

		// ========== Virtual Alias Routes ==========
		virtualAliasRoutes := api.Group("/virtual-aliases")
		virtualAliasRoutes.Use(jwtAuth.RequireAuth())
		{
			virtualAliasRoutes.GET("", virtualAliasHandler.List)
			virtualAliasRoutes.POST("/search", virtualAliasHandler.Search)
			virtualAliasRoutes.GET("/:id", virtualAliasHandler.Get)
			virtualAliasRoutes.POST("", requireUser, virtualAliasHandler.Create)
			virtualAliasRoutes.PUT("/:id", requireUser, virtualAliasHandler.Update)
			virtualAliasRoutes.DELETE("/:id", requireUser, virtualAliasHandler.Delete)
			virtualAliasRoutes.PATCH("/:id/attach/:userId", requireUser, virtualAliasHandler.Attach)
			virtualAliasRoutes.DELETE("/:id/dettach/:userId", requireUser, virtualAliasHandler.Detach)
		}

		// ========== Virtual Forward Routes ==========
		virtualForwardRoutes := api.Group("/virtual-forwards")
		virtualForwardRoutes.Use(jwtAuth.RequireAuth())
		{
			virtualForwardRoutes.GET("", virtualForwardHandler.List)
			virtualForwardRoutes.POST("/search", virtualForwardHandler.Search)
			virtualForwardRoutes.GET("/:id", virtualForwardHandler.Get)
			virtualForwardRoutes.POST("", requireUser, virtualForwardHandler.Create)
			virtualForwardRoutes.PUT("/:id", requireUser, virtualForwardHandler.Update)
			virtualForwardRoutes.DELETE("/:id", requireUser, virtualForwardHandler.Delete)
			virtualForwardRoutes.PATCH("/:id/attach/:userId", requireUser, virtualForwardHandler.Attach)
			virtualForwardRoutes.DELETE("/:id/dettach/:userId", requireUser, virtualForwardHandler.Detach)
		}

		// ========== User Routes ==========
		// 管理账号的全部操作只对管理员开放
		userRoutes := api.Group("/users")
		userRoutes.Use(jwtAuth.RequireAuth(), requireAdmin)
		{
			userRoutes.GET("", userHandler.List)
			userRoutes.POST("/search", userHandler.Search)
			userRoutes.GET("/:id", userHandler.Get)
			userRoutes.POST("", userHandler.Create)
			userRoutes.PUT("/:id", userHandler.Update)
			userRoutes.DELETE("/:id", userHandler.Delete)
		}
	}

	return router
}
